package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard serves the user or organization board chosen by ?type=.
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	board, err := h.Leaderboard.Board(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (h *Handlers) GetMonthlyLeaderboard(c *gin.Context) {
	board, err := h.Leaderboard.Monthly(c.Request.Context(), h.request(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}
