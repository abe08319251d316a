// Package ranking assigns leaderboard ranks and shapes the monthly board.
//
// Ordering itself happens in the store; every ranked query orders by its
// score key descending and then by entity id ascending, so equal scores
// always rank in the same order. This package re-bases ranks onto the page
// offset and applies the same ordering when picking monthly winners.
package ranking

import (
	"time"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain/models"
)

// Rankable is implemented by pointer row types that carry a rank.
type Rankable[T any] interface {
	*T
	SetRank(int)
}

// Assign sets rank offset+i+1 on row i. rows must already be in global order.
func Assign[T any, P Rankable[T]](rows []T, offset int) []T {
	for i := range rows {
		P(&rows[i]).SetRank(offset + i + 1)
	}
	return rows
}

// Entry is the ordering key of a ranked row.
type Entry struct {
	ID    int64
	Score int64
}

// Less orders by score descending, then id ascending.
func Less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.ID < b.ID
}

// MonthlyBoard lays winners out over the twelve months of year. Months
// without a winner carry a nil Winner. When two rows claim the same month the
// higher score wins, then the lower user id.
func MonthlyBoard(year int, winners []models.MonthlyWinner) models.MonthlyBoard {
	byMonth := make(map[int]*models.MonthlyWinner, len(winners))
	for i := range winners {
		w := &winners[i]
		if w.Month < 1 || w.Month > 12 {
			continue
		}
		cur, ok := byMonth[w.Month]
		if !ok || Less(Entry{ID: w.UserID, Score: w.TotalScore}, Entry{ID: cur.UserID, Score: cur.TotalScore}) {
			byMonth[w.Month] = w
		}
	}

	board := models.MonthlyBoard{Year: year, Months: make([]models.MonthEntry, 12)}
	for m := 1; m <= 12; m++ {
		entry := models.MonthEntry{Month: time.Month(m).String(), MonthNumber: m}
		if w, ok := byMonth[m]; ok {
			cp := *w
			entry.Winner = &cp
		}
		board.Months[m-1] = entry
	}
	return board
}
