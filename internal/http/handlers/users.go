package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c, "User")
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser edits the caller's own profile.
func (h *Handlers) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "User")
	if !ok {
		return
	}
	var body map[string]any
	if !BindJSONOrError(c, &body) {
		return
	}
	res, err := h.Users.UpdateProfile(c.Request.Context(), id, h.request(c), body)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) GetUserIssues(c *gin.Context) {
	id, ok := pathID(c, "User")
	if !ok {
		return
	}
	env, err := h.Users.Issues(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}

func (h *Handlers) GetUserPoints(c *gin.Context) {
	id, ok := pathID(c, "User")
	if !ok {
		return
	}
	env, err := h.Users.Points(c.Request.Context(), id, h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, env)
}
