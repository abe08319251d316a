package middleware

import (
	"math"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/metrics"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/ratelimit"
)

// RateLimit admits the request through l before anything else runs. Every
// reply carries the X-RateLimit-* headers.
func RateLimit(l *ratelimit.Limiter, clientHeaders []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := l.Admit(ratelimit.ClientID(c.Request.Header, clientHeaders))
		metrics.RecordAdmission(d.Allowed, l.Len())

		reset := int64(math.Ceil(float64(d.ResetAt.UnixMilli()) / 1000))
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

		if !d.Allowed {
			_ = c.Error(domain.RateLimitError{Limit: d.Limit, ResetAt: d.ResetAt})
			c.Abort()
			return
		}
		c.Next()
	}
}
