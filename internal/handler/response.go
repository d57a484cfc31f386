package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medscanhq/medscan-api/pkg/errors"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Response{Success: true, Data: data})
}

// Fail maps the error's classification onto an HTTP status. Storage
// errors surface as a generic 500; their detail stays in the logs.
func Fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch apperrors.CodeOf(err) {
	case apperrors.CodeValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperrors.CodeConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperrors.CodeUnauthorized:
		status = http.StatusUnauthorized
		message = err.Error()
	}

	c.JSON(status, Response{Success: false, Error: message})
}

// FailBinding reports a request-shape error from gin binding.
func FailBinding(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid request: " + err.Error()})
}
