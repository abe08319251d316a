package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http/middleware"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/services"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

// Handlers serves every API route from one set of services.
type Handlers struct {
	Issues        services.IssueService
	Users         services.UserService
	Domains       services.DomainService
	Organizations services.OrganizationService
	Hunts         services.HuntService
	Leaderboard   services.LeaderboardService
	Stats         services.StatsService

	DB  *store.DB
	Now func() time.Time
}

// New wires the services over db.
func New(db *store.DB) *Handlers {
	issues := repositories.IssueRepository{DB: db}
	users := repositories.UserRepository{DB: db}
	return &Handlers{
		Issues:        services.IssueService{Issues: issues, Users: users},
		Users:         services.UserService{Users: users, IssueRepo: issues},
		Domains:       services.DomainService{Domains: repositories.DomainRepository{DB: db}, IssueRepo: issues},
		Organizations: services.OrganizationService{Organizations: repositories.OrganizationRepository{DB: db}},
		Hunts:         services.HuntService{Hunts: repositories.HuntRepository{DB: db}, IssueRepo: issues},
		Leaderboard:   services.LeaderboardService{Leaderboard: repositories.LeaderboardRepository{DB: db}},
		Stats:         services.StatsService{Stats: repositories.StatsRepository{DB: db}},
		DB:            db,
		Now:           func() time.Time { return time.Now().UTC() },
	}
}

func (h *Handlers) request(c *gin.Context) services.Request {
	return services.Request{
		Query:  c.Request.URL.Query(),
		Caller: middleware.CurrentUser(c),
		Now:    h.Now(),
	}
}

// fail hands err to the error middleware and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// pathID parses the :id segment, failing the request with a 404 for resource
// when it is not a positive integer.
func pathID(c *gin.Context, resource string) (int64, bool) {
	id, err := domain.ParseID(c.Param("id"), resource)
	if err != nil {
		fail(c, err)
		return 0, false
	}
	return id, true
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		fail(c, domain.ValidationError{Msg: "Request body is required"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, domain.ValidationError{Msg: "Invalid JSON body", Err: err})
		return false
	}
	return true
}
