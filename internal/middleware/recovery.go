package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Recovery converts panics into 500 responses and logs the stack trace.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				handlePanic(c, r)
			}
		}()
		c.Next()
	}
}

func handlePanic(c *gin.Context, r interface{}) {
	requestID := c.GetString(ContextRequestID)

	log.Error().
		Interface("panic", r).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("client_ip", c.ClientIP()).
		Str("request_id", requestID).
		Bytes("stack", debug.Stack()).
		Msg("request panic recovered")

	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
		Code:    http.StatusInternalServerError,
		Message: "internal server error",
		TraceID: requestID,
	})
}
