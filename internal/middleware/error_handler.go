package middleware

import (
	apiError "collaborative-hiring-intake/internal/errors"
	"errors"
	"log"

	"github.com/gin-gonic/gin"
)

// ErrorHandler turns errors collected on the gin context into the uniform
// {success:false, error, details?} envelope.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next() // Execute the handler first

		// detect any errors
		if len(c.Errors) > 0 {
			err := c.Errors.Last().Err

			var apiErr *apiError.APIError

			// if it's our custom APIError
			if !errors.As(err, &apiErr) {
				// If it's a raw error we didn't wrap, treat as Internal
				apiErr = apiError.Internal(err)
			}

			// LOGGING
			if apiErr.Status >= 500 {
				log.Printf("[ERROR] %v\n", apiErr.Error())
			} else {
				log.Printf("[INFO] %s\n", apiErr.Error())
			}

			body := gin.H{"success": false, "error": apiErr.Message}
			if len(apiErr.Details) > 0 {
				body["details"] = apiErr.Details
			}
			c.AbortWithStatusJSON(apiErr.Status, body)
		}
	}
}
