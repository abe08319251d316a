package models

// UserRank is a row of the global leaderboard.
type UserRank struct {
	Rank       int     `json:"rank"`
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	UserAvatar *string `json:"user_avatar"`
	Title      *int    `json:"title"`
	TotalScore int64   `json:"total_score"`
	IssueCount int64   `json:"issue_count"`
}

func (u *UserRank) SetRank(rank int) { u.Rank = rank }

// OrgRank is a row of the organization leaderboard.
type OrgRank struct {
	Rank        int     `json:"rank"`
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Logo        *string `json:"logo"`
	TeamPoints  int64   `json:"team_points"`
	IssueCount  int64   `json:"issue_count"`
	MemberCount int64   `json:"member_count"`
}

func (o *OrgRank) SetRank(rank int) { o.Rank = rank }

// MonthlyWinner is the top scorer of one calendar month.
type MonthlyWinner struct {
	Month      int     `json:"month"`
	UserID     int64   `json:"user_id"`
	Username   string  `json:"username"`
	UserAvatar *string `json:"user_avatar"`
	TotalScore int64   `json:"total_score"`
}

type MonthEntry struct {
	Month       string         `json:"month"`
	MonthNumber int            `json:"month_number"`
	Winner      *MonthlyWinner `json:"winner"`
}

type MonthlyBoard struct {
	Year   int          `json:"year"`
	Months []MonthEntry `json:"months"`
}
