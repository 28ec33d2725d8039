package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger writes one access-log line per request, tagged with the request id
// so it can be joined with the application log.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Printf("[HTTP] request_id=%s method=%s path=%s status=%d latency_ms=%.3f size=%d ip=%s",
			GetRequestID(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(time.Since(start).Microseconds())/1000.0,
			c.Writer.Size(),
			c.ClientIP(),
		)
	}
}
