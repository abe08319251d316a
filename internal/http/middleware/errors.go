package middleware

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// Errors renders the last error attached with c.Error once the handler chain
// has finished, unless a response was already written.
func Errors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		RespondError(c, c.Errors.Last().Err)
	}
}

// Recovery turns a panic into a 500 reply of the usual shape.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.Ctx(c.Request.Context()).Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")
		RespondError(c, domain.InternalError{})
	})
}

// RespondError maps a domain error to its status and writes the reply.
// Store and unknown failures are logged here and never described to clients.
func RespondError(c *gin.Context, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}

	var rl domain.RateLimitError
	if errors.As(err, &rl) {
		c.Header("Retry-After", strconv.Itoa(retryAfter(rl.ResetAt, time.Now())))
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     msg,
		Code:      code,
		Status:    status,
		RequestID: GetRequestID(c),
	})
}

func classify(err error) (int, string, string) {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest, "validation_error", err.Error()
	case domain.IsAuthentication(err):
		return http.StatusUnauthorized, "unauthorized", err.Error()
	case domain.IsAuthorization(err):
		return http.StatusForbidden, "forbidden", err.Error()
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found", err.Error()
	case domain.IsRateLimit(err):
		return http.StatusTooManyRequests, "rate_limited", err.Error()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable"
	default:
		return http.StatusInternalServerError, "internal_error", "Internal server error"
	}
}

// retryAfter is the whole number of seconds until reset, at least 1.
func retryAfter(reset, now time.Time) int {
	secs := int(math.Ceil(reset.Sub(now).Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
