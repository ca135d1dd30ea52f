package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Status   string      `json:"status"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, status int, data interface{}, warnings ...string) {
	c.JSON(status, Response{
		Status:   "success",
		Data:     data,
		Warnings: warnings,
	})
}

// RespondWithError maps err to a status code and sends the error envelope.
// Errors that are not an AppError are reported as internal without detail.
func RespondWithError(c *gin.Context, err error) {
	_ = c.Error(err)

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), Response{
		Status:  "error",
		Message: appErr.Message,
	})
}

// RespondWithMessage sends an error envelope with a fixed status.
func RespondWithMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  "error",
		Message: message,
	})
}

// BadRequest is shorthand for malformed input.
func BadRequest(c *gin.Context, message string) {
	RespondWithMessage(c, http.StatusBadRequest, message)
}
