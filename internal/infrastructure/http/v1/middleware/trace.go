package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "tillbook/internal/core/context"
	"tillbook/internal/core/id"
)

const requestIDHeader = "X-Request-ID"

// Trace assigns every request an ID and carries it in the context so
// log lines across the request correlate. An incoming header wins so
// IDs survive proxies.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = id.New().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceInfo{
			RequestID: requestID,
		})
		c.Request = c.Request.WithContext(ctx)

		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()
	}
}
