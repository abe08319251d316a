package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListHunts(c *gin.Context) {
	env, err := h.Hunts.List(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handlers) GetHunt(c *gin.Context) {
	id, ok := pathID(c, "Hunt")
	if !ok {
		return
	}
	hunt, err := h.Hunts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hunt)
}

func (h *Handlers) GetHuntIssues(c *gin.Context) {
	id, ok := pathID(c, "Hunt")
	if !ok {
		return
	}
	env, err := h.Hunts.Issues(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}
