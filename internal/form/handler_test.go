package form

import (
	"bytes"
	apiError "collaborative-hiring-intake/internal/errors"
	"collaborative-hiring-intake/internal/loxo"
	"collaborative-hiring-intake/internal/middleware"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) ListForms(ctx context.Context, limit int) ([]Form, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Form), args.Error(1)
}

func (m *MockService) GetForm(ctx context.Context, formID string) (*Form, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Form), args.Error(1)
}

func (m *MockService) CreateForm(ctx context.Context, formID string, data Document) (*Form, bool, error) {
	args := m.Called(ctx, formID, data)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*Form), args.Bool(1), args.Error(2)
}

func (m *MockService) DeleteForm(ctx context.Context, formID string) error {
	args := m.Called(ctx, formID)
	return args.Error(0)
}

func (m *MockService) SaveForm(ctx context.Context, formID string, data Document) (*Form, error) {
	args := m.Called(ctx, formID, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Form), args.Error(1)
}

func (m *MockService) SyncForm(ctx context.Context, formID string) (*loxo.SyncResult, error) {
	args := m.Called(ctx, formID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loxo.SyncResult), args.Error(1)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.GET("/hiring-forms", handler.List)
	router.POST("/hiring-forms", handler.Create)
	router.GET("/hiring-forms/:formId", handler.Show)
	router.DELETE("/hiring-forms/:formId", handler.Delete)
	router.POST("/hiring-forms/:formId/save", handler.Save)
	router.POST("/hiring-forms/:formId/sync", handler.Sync)
	return router
}

type envelope struct {
	Success bool                  `json:"success"`
	Data    json.RawMessage       `json:"data"`
	Error   string                `json:"error"`
	Details []apiError.FieldError `json:"details"`
}

func doRequest(router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestListForms_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	forms := []Form{{FormID: "abc123", Status: StatusDraft}}
	mockService.On("ListForms", mock.Anything, 100).Return(forms, nil)

	w, env := doRequest(router, http.MethodGet, "/hiring-forms", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var got []Form
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "abc123", got[0].FormID)
	mockService.AssertExpectations(t)
}

func TestListForms_ClampsLimit(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("ListForms", mock.Anything, 100).Return([]Form{}, nil)

	w, _ := doRequest(router, http.MethodGet, "/hiring-forms?limit=5000", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestShowForm_NotFound(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("GetForm", mock.Anything, "nope").
		Return(nil, apiError.NotFound("Form not found", nil))

	w, env := doRequest(router, http.MethodGet, "/hiring-forms/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Form not found", env.Error)
}

func TestCreateForm_New(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	created := &Form{FormID: "abc123", Status: StatusDraft}
	mockService.On("CreateForm", mock.Anything, "abc123", mock.Anything).
		Return(created, true, nil)

	w, env := doRequest(router, http.MethodPost, "/hiring-forms", gin.H{"formId": "abc123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
}

func TestCreateForm_AlreadyExists(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	existing := &Form{FormID: "abc123", Status: StatusInProgress}
	mockService.On("CreateForm", mock.Anything, "abc123", mock.Anything).
		Return(existing, false, nil)

	w, env := doRequest(router, http.MethodPost, "/hiring-forms", gin.H{"formId": "abc123"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestSaveForm_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	data := Document{"jobTitle": "Senior Engineer"}
	saved := &Form{FormID: "abc123", Status: StatusInProgress, Data: data}
	mockService.On("SaveForm", mock.Anything, "abc123", data).Return(saved, nil)

	w, env := doRequest(router, http.MethodPost, "/hiring-forms/abc123/save", gin.H{"data": data})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var got Form
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, StatusInProgress, got.Status)
}

func TestSaveForm_MissingData(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	w, env := doRequest(router, http.MethodPost, "/hiring-forms/abc123/save", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	mockService.AssertNotCalled(t, "SaveForm", mock.Anything, mock.Anything, mock.Anything)
}

func TestSyncFormHandler_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	result := &loxo.SyncResult{Action: "created", JobID: 42, CompanyID: 7}
	mockService.On("SyncForm", mock.Anything, "abc123").Return(result, nil)

	w, env := doRequest(router, http.MethodPost, "/hiring-forms/abc123/sync", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var got loxo.SyncResult
	assert.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "created", got.Action)
	assert.Equal(t, int64(42), got.JobID)
}

func TestSyncFormHandler_ValidationFailure(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("SyncForm", mock.Anything, "abc123").
		Return(nil, apiError.Validation([]apiError.FieldError{
			{Field: "jobTitle", Message: "Job title is required"},
		}))

	w, env := doRequest(router, http.MethodPost, "/hiring-forms/abc123/sync", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Error)
	assert.Len(t, env.Details, 1)
	assert.Equal(t, "jobTitle", env.Details[0].Field)
}

func TestDeleteForm_Success(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("DeleteForm", mock.Anything, "abc123").Return(nil)

	w, env := doRequest(router, http.MethodDelete, "/hiring-forms/abc123", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
}

func TestDeleteForm_NotFound(t *testing.T) {
	mockService := new(MockService)
	router := setupRouter(NewHandler(mockService))

	mockService.On("DeleteForm", mock.Anything, "nope").
		Return(apiError.NotFound("Form not found", nil))

	w, env := doRequest(router, http.MethodDelete, "/hiring-forms/nope", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}
