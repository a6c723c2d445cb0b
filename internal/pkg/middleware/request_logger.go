package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func RequestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()

	event := log.Info()
	if c.Writer.Status() >= 500 {
		event = log.Warn()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Msg("Request handled")
}
