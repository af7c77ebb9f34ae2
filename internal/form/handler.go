package form

import (
	apiError "collaborative-hiring-intake/internal/errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit < 1 || limit > 100 {
		limit = 100
	}

	forms, err := h.service.ListForms(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, forms)
}

func (h *Handler) Show(c *gin.Context) {
	f, err := h.service.GetForm(c.Request.Context(), c.Param("formId"))
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, f)
}

type CreateRequest struct {
	FormID string   `json:"formId"`
	Data   Document `json:"data"`
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	// Body is optional: an empty POST creates a form with a generated id
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(apiError.BadRequest("Invalid request body", err))
			return
		}
	}

	f, created, err := h.service.CreateForm(c.Request.Context(), req.FormID, req.Data)
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(c, status, f)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.DeleteForm(c.Request.Context(), c.Param("formId")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type SaveRequest struct {
	Data Document `json:"data" binding:"required"`
}

func (h *Handler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apiError.BadRequest("Invalid request body", err))
		return
	}

	f, err := h.service.SaveForm(c.Request.Context(), c.Param("formId"), req.Data)
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, f)
}

func (h *Handler) Sync(c *gin.Context) {
	result, err := h.service.SyncForm(c.Request.Context(), c.Param("formId"))
	if err != nil {
		c.Error(err)
		return
	}

	respond(c, http.StatusOK, result)
}
