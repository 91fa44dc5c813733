package errors

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/crmsync/internal/middleware"
)

// Messages returned to clients. Internal details never leave the process.
const (
	MsgInternalServer = "internal server error"
	MsgNotFound       = "not found"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NotFound responds 404 with a generic body.
func NotFound(c *gin.Context) {
	if log := middleware.GetLogger(c); log != nil {
		log.Warn("Route not found", map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	}

	c.JSON(http.StatusNotFound, ErrorResponse{Error: MsgNotFound})
}

// InternalServerError logs err with the request context and the stack of
// the failing handler, then responds 500. The error is also attached to the
// gin context so the request logger reports it alongside the status.
func InternalServerError(c *gin.Context, message string, err error) {
	if log := middleware.GetLogger(c); log != nil {
		log.Error(message, err, map[string]interface{}{
			"request_id": middleware.GetRequestID(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"stack":      string(debug.Stack()),
		})
	}
	if err != nil {
		_ = c.Error(err)
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: MsgInternalServer})
}
