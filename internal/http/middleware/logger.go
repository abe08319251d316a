package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/metrics"
)

// Logger writes one structured line per request and records HTTP metrics.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		metrics.RecordHTTP(route, c.Request.Method, status, latency)

		var ev *zerolog.Event
		log := logging.Ctx(c.Request.Context())
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Float64("latency_ms", float64(latency.Microseconds())/1000.0).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}
