package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/verifact/verifact-server-go/internal/httperror"
	"github.com/verifact/verifact-server-go/internal/middleware"
)

// writeError: converts an error into the API error body.
func writeError(c *gin.Context, err error) {
	status, payload := httperror.Response(err, middleware.GetRequestID(c))
	c.JSON(status, payload)
}

// bindJSONAllowEmpty: parses the request body, treating an empty body as
// an empty struct. Missing-field semantics are enforced by the caller.
func bindJSONAllowEmpty(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		writeError(c, httperror.NewValidationError(err))
		return false
	}
	return true
}
