package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetStats(c *gin.Context) {
	st, err := h.Stats.Overview(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handlers) GetActivity(c *gin.Context) {
	act, err := h.Stats.Activity(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, act)
}

func (h *Handlers) GetIssuesByLabel(c *gin.Context) {
	labels, err := h.Stats.IssuesByLabel(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *Handlers) GetTopDomains(c *gin.Context) {
	domains, err := h.Stats.TopDomains(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"top_domains": domains})
}
