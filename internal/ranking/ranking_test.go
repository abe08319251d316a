package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
)

func TestAssign_RebasesOnOffset(t *testing.T) {
	rows := []models.UserRank{{ID: 5}, {ID: 9}, {ID: 2}}
	Assign(rows, 50)
	assert.Equal(t, 51, rows[0].Rank)
	assert.Equal(t, 52, rows[1].Rank)
	assert.Equal(t, 53, rows[2].Rank)
}

func TestAssign_NoGapsNoDuplicates(t *testing.T) {
	rows := make([]models.OrgRank, 37)
	Assign(rows, 0)
	for i, r := range rows {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestAssign_PagesConcatenateToGlobalRanking(t *testing.T) {
	all := make([]models.UserRank, 25)
	for i := range all {
		all[i] = models.UserRank{ID: int64(i + 1), TotalScore: int64(100 - i)}
	}
	var ranks []int
	for offset := 0; offset < len(all); offset += 10 {
		end := offset + 10
		if end > len(all) {
			end = len(all)
		}
		page := append([]models.UserRank(nil), all[offset:end]...)
		for _, r := range Assign(page, offset) {
			ranks = append(ranks, r.Rank)
		}
	}
	for i, r := range ranks {
		assert.Equal(t, i+1, r)
	}
}

func TestLess_TieBreaksOnID(t *testing.T) {
	assert.True(t, Less(Entry{ID: 9, Score: 10}, Entry{ID: 1, Score: 5}))
	assert.True(t, Less(Entry{ID: 1, Score: 10}, Entry{ID: 2, Score: 10}))
	assert.False(t, Less(Entry{ID: 2, Score: 10}, Entry{ID: 1, Score: 10}))
	assert.False(t, Less(Entry{ID: 1, Score: 10}, Entry{ID: 1, Score: 10}))
}

func TestMonthlyBoard_EmptyYear(t *testing.T) {
	board := MonthlyBoard(2023, nil)
	assert.Equal(t, 2023, board.Year)
	require.Len(t, board.Months, 12)
	for i, m := range board.Months {
		assert.Equal(t, i+1, m.MonthNumber)
		assert.Nil(t, m.Winner)
	}
	assert.Equal(t, "January", board.Months[0].Month)
	assert.Equal(t, "December", board.Months[11].Month)
}

func TestMonthlyBoard_PlacesWinners(t *testing.T) {
	board := MonthlyBoard(2024, []models.MonthlyWinner{
		{Month: 3, UserID: 8, Username: "eve", TotalScore: 40},
		{Month: 3, UserID: 2, Username: "bob", TotalScore: 40},
		{Month: 11, UserID: 5, Username: "amy", TotalScore: 12},
		{Month: 13, UserID: 1, Username: "bad", TotalScore: 99},
	})
	require.Len(t, board.Months, 12)
	require.NotNil(t, board.Months[2].Winner)
	assert.Equal(t, "bob", board.Months[2].Winner.Username)
	require.NotNil(t, board.Months[10].Winner)
	assert.Equal(t, "amy", board.Months[10].Winner.Username)

	filled := 0
	for _, m := range board.Months {
		if m.Winner != nil {
			filled++
		}
	}
	assert.Equal(t, 2, filled)
}
