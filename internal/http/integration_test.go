//go:build integration

package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/config"
	api "github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/http/handlers"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/identity"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/ratelimit"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

type page struct {
	Count    int64            `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []map[string]any `json:"results"`
}

var _ = Describe("API against PostgreSQL", func() {
	var router *gin.Engine

	do := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Token "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) page {
		var p page
		ExpectWithOffset(1, json.Unmarshal(w.Body.Bytes(), &p)).To(Succeed())
		return p
	}

	BeforeEach(func() {
		truncate()
		gin.SetMode(gin.TestMode)

		os.Setenv("DATABASE_URL", connStr)
		DeferCleanup(os.Unsetenv, "DATABASE_URL")
		cfg, err := config.Load("")
		Expect(err).ToNot(HaveOccurred())
		cfg.RateLimit.Enabled = false

		db := store.New(sqlDB, store.DefaultBreakerConfig())
		router = api.NewRouter(api.Deps{
			Config:   cfg,
			Handlers: handlers.New(db),
			Limiter:  ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window),
			Resolver: identity.NewResolver(repositories.TokenRepository{DB: db}),
		})

		mustExec(`INSERT INTO auth_user (username, email) VALUES ('alice', 'alice@example.com'), ('bob', 'bob@example.com'), ('carol', 'carol@example.com')`)
		mustExec(`INSERT INTO website_userprofile (user_id) VALUES (1), (2), (3)`)
		mustExec(`INSERT INTO authtoken_token (key, user_id) VALUES ('alice-token', 1)`)
		mustExec(`INSERT INTO website_domain (name, url) VALUES ('example', 'https://example.com')`)
	})

	Describe("issue listing", func() {
		BeforeEach(func() {
			mustExec(`INSERT INTO website_issue (user_id, domain_id, url, description, created)
				SELECT 2, 1, 'https://example.com/' || g, 'issue ' || g, NOW() - g * INTERVAL '1 minute'
				FROM generate_series(1, 25) g`)
		})

		It("serves the second page of ten with links to both neighbours", func() {
			w := do(http.MethodGet, "/api/issues?page=2&per_page=10", "")
			Expect(w.Code).To(Equal(http.StatusOK))

			p := decode(w)
			Expect(p.Count).To(BeEquivalentTo(25))
			Expect(p.Results).To(HaveLen(10))
			Expect(p.Next).ToNot(BeNil())
			Expect(*p.Next).To(Equal("/api/issues?page=3&per_page=10"))
			Expect(p.Previous).ToNot(BeNil())
			Expect(*p.Previous).To(Equal("/api/issues?page=1&per_page=10"))
			Expect(p.Results[0]["description"]).To(Equal("issue 11"))
		})

		It("returns an empty last page past the end", func() {
			p := decode(do(http.MethodGet, "/api/issues?page=4&per_page=10", ""))
			Expect(p.Count).To(BeEquivalentTo(25))
			Expect(p.Results).To(BeEmpty())
			Expect(p.Next).To(BeNil())
		})

		It("shows hidden issues only to their reporter", func() {
			mustExec(`UPDATE website_issue SET is_hidden = true, user_id = 1 WHERE id = 1`)

			Expect(decode(do(http.MethodGet, "/api/issues", "")).Count).To(BeEquivalentTo(24))
			Expect(decode(do(http.MethodGet, "/api/issues", "alice-token")).Count).To(BeEquivalentTo(25))
			Expect(do(http.MethodGet, "/api/issues/1", "").Code).To(Equal(http.StatusNotFound))
			Expect(do(http.MethodGet, "/api/issues/1", "alice-token").Code).To(Equal(http.StatusOK))
		})

		It("treats search input as literal text", func() {
			mustExec(`UPDATE website_issue SET description = '100% broken' WHERE id = 3`)

			p := decode(do(http.MethodGet, "/api/issues?search=100%25", ""))
			Expect(p.Count).To(BeEquivalentTo(1))
			Expect(p.Results[0]["id"]).To(BeEquivalentTo(3))
		})
	})

	Describe("likes", func() {
		BeforeEach(func() {
			mustExec(`INSERT INTO website_issue (user_id, domain_id, description) VALUES (2, 1, 'liked')`)
		})

		It("toggles the caller's upvote", func() {
			w := do(http.MethodPost, "/api/issues/1/like", "alice-token")
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring(`"liked":true`))

			var detail map[string]any
			Expect(json.Unmarshal(do(http.MethodGet, "/api/issues/1", "alice-token").Body.Bytes(), &detail)).To(Succeed())
			Expect(detail["upvotes"]).To(BeEquivalentTo(1))
			Expect(detail["is_upvoted"]).To(BeTrue())

			w = do(http.MethodPost, "/api/issues/1/like", "alice-token")
			Expect(w.Body.String()).To(ContainSubstring(`"liked":false`))
		})

		It("rejects unknown tokens", func() {
			Expect(do(http.MethodPost, "/api/issues/1/like", "nope").Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("leaderboard", func() {
		BeforeEach(func() {
			mustExec(`INSERT INTO website_points (user_id, score) VALUES (1, 10), (2, 30), (3, 30), (1, 5)`)
		})

		It("ranks by score then by user id", func() {
			p := decode(do(http.MethodGet, "/api/leaderboard", ""))
			Expect(p.Count).To(BeEquivalentTo(3))

			var order []string
			for _, r := range p.Results {
				order = append(order, r["username"].(string))
			}
			Expect(order).To(Equal([]string{"bob", "carol", "alice"}))
			Expect(p.Results[2]["rank"]).To(BeEquivalentTo(3))
			Expect(p.Results[2]["total_score"]).To(BeEquivalentTo(15))
		})

		It("keeps global ranks on later pages", func() {
			p := decode(do(http.MethodGet, "/api/leaderboard?page=2&per_page=2", ""))
			Expect(p.Results).To(HaveLen(1))
			Expect(p.Results[0]["rank"]).To(BeEquivalentTo(3))
		})
	})
})
