package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListDomains(c *gin.Context) {
	env, err := h.Domains.List(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handlers) GetDomain(c *gin.Context) {
	id, ok := pathID(c, "Domain")
	if !ok {
		return
	}
	d, err := h.Domains.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handlers) GetDomainIssues(c *gin.Context) {
	id, ok := pathID(c, "Domain")
	if !ok {
		return
	}
	env, err := h.Domains.Issues(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}
