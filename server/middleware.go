package server

import (
	"crypto/rand"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jxskiss/base62"

	"llm_api/logger"
)

// RequestLogger tags each request with a short id, echoes it in the
// X-Request-ID header and writes one log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID()
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)

		start := time.Now()
		c.Next()

		logger.Info("%s %s %d %s id=%s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Round(time.Microsecond),
			id,
		)
	}
}

func requestID() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "00000000"
	}
	return base62.EncodeToString(buf[:])
}
