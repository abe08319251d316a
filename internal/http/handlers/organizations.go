package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListOrganizations(c *gin.Context) {
	env, err := h.Organizations.List(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handlers) GetOrganization(c *gin.Context) {
	id, ok := pathID(c, "Organization")
	if !ok {
		return
	}
	o, err := h.Organizations.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handlers) GetOrganizationRepositories(c *gin.Context) {
	id, ok := pathID(c, "Organization")
	if !ok {
		return
	}
	env, err := h.Organizations.Repositories(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handlers) GetOrganizationMembers(c *gin.Context) {
	id, ok := pathID(c, "Organization")
	if !ok {
		return
	}
	env, err := h.Organizations.Members(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}
