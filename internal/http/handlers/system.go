package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
)

const (
	APIName    = "OWASP BLT API"
	APIVersion = "1.0.0"
	docsURL    = "https://github.com/OWASP-BLT/OWASP-BLT-API"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":          APIName,
		"version":       APIVersion,
		"status":        "healthy",
		"timestamp":     h.Now().Format(time.RFC3339Nano),
		"documentation": docsURL,
	})
}

func (h *Handlers) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        APIName,
		"version":     APIVersion,
		"description": "REST API for OWASP Bug Logging Tool",
		"endpoints": gin.H{
			"issues":        "/api/issues",
			"users":         "/api/users",
			"domains":       "/api/domains",
			"organizations": "/api/organizations",
			"leaderboard":   "/api/leaderboard",
			"hunts":         "/api/hunts",
			"stats":         "/api/stats",
		},
		"features": []string{
			"PostgreSQL backend",
			"Token-based authentication",
			"CORS support",
			"Rate limiting",
			"Pagination",
			"Comprehensive filtering and search",
		},
	})
}

// DBCheck reports whether the store answers a ping and carries every table
// the API reads.
func (h *Handlers) DBCheck(c *gin.Context) {
	if h.DB == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not connected"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("db check ping failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database ping failed"})
		return
	}
	missing, err := h.DB.MissingTables(ctx, repositories.Tables)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("db check schema lookup failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "schema lookup failed"})
		return
	}
	if len(missing) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "missing_tables": missing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "tables": len(repositories.Tables)})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method": rt.Method,
			"path":   rt.Path,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

// NotFound is the reply for unmatched routes.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "Not Found",
		"message": "The requested endpoint does not exist",
		"path":    c.Request.URL.Path,
	})
}
