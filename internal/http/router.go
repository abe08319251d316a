package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/config"
	h "github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http/handlers"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http/middleware"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/identity"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/logging"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/ratelimit"
)

// Deps are the process-wide components the router is built from.
type Deps struct {
	Config   *config.Config
	Handlers *h.Handlers
	Limiter  *ratelimit.Limiter
	Resolver *identity.Resolver
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.CORS(cfg.CORS), middleware.Errors())

	if err := r.SetTrustedProxies(nil); err != nil {
		logging.Warn().Err(err).Msg("failed to set trusted proxies")
	}

	r.NoRoute(h.NotFound)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	root := r.Group("")
	if cfg.RateLimit.Enabled && d.Limiter != nil {
		root.Use(middleware.RateLimit(d.Limiter, cfg.RateLimit.ClientHeaders))
	}

	required := middleware.AuthRequired(d.Resolver)
	optional := middleware.AuthOptional(d.Resolver)
	hs := d.Handlers

	root.GET("/", hs.Health)

	api := root.Group("/api")
	{
		api.GET("", hs.Info)
		api.GET("/db-check", hs.DBCheck)
		api.GET("/routes", h.Routes)

		issues := api.Group("/issues")
		issues.GET("", optional, hs.ListIssues)
		issues.GET("/:id", optional, hs.GetIssue)
		issues.POST("/:id/like", required, hs.LikeIssue)
		issues.POST("/:id/flag", required, hs.FlagIssue)

		users := api.Group("/users")
		users.GET("/:id", optional, hs.GetUser)
		users.PUT("/:id", required, hs.UpdateUser)
		users.GET("/:id/issues", optional, hs.GetUserIssues)
		users.GET("/:id/points", hs.GetUserPoints)

		domains := api.Group("/domains")
		domains.GET("", hs.ListDomains)
		domains.GET("/:id", hs.GetDomain)
		domains.GET("/:id/issues", hs.GetDomainIssues)

		orgs := api.Group("/organizations")
		orgs.GET("", hs.ListOrganizations)
		orgs.GET("/:id", hs.GetOrganization)
		orgs.GET("/:id/repositories", hs.GetOrganizationRepositories)
		orgs.GET("/:id/members", hs.GetOrganizationMembers)

		leaderboard := api.Group("/leaderboard")
		leaderboard.GET("", hs.GetLeaderboard)
		leaderboard.GET("/monthly", hs.GetMonthlyLeaderboard)

		hunts := api.Group("/hunts")
		hunts.GET("", hs.ListHunts)
		hunts.GET("/:id", hs.GetHunt)
		hunts.GET("/:id/issues", hs.GetHuntIssues)

		stats := api.Group("/stats")
		stats.GET("", hs.GetStats)
		stats.GET("/activity", hs.GetActivity)
		stats.GET("/issues-by-label", hs.GetIssuesByLabel)
		stats.GET("/top-domains", hs.GetTopDomains)
	}

	h.SetRouter(r)
	return r
}
