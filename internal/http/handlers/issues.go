package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) ListIssues(c *gin.Context) {
	env, err := h.Issues.List(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handlers) GetIssue(c *gin.Context) {
	id, ok := pathID(c, "Issue")
	if !ok {
		return
	}
	issue, err := h.Issues.Get(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (h *Handlers) LikeIssue(c *gin.Context) {
	id, ok := pathID(c, "Issue")
	if !ok {
		return
	}
	res, err := h.Issues.ToggleLike(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) FlagIssue(c *gin.Context) {
	id, ok := pathID(c, "Issue")
	if !ok {
		return
	}
	res, err := h.Issues.ToggleFlag(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
