package models

import "time"

type UserRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Badge struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        *string   `json:"icon"`
	AwardedAt   time.Time `json:"awarded_at"`
}

// UserProfile is the public view of an account and its profile row.
type UserProfile struct {
	ID                   int64     `json:"id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	FirstName            string    `json:"first_name"`
	LastName             string    `json:"last_name"`
	DateJoined           time.Time `json:"date_joined"`
	UserAvatar           *string   `json:"user_avatar"`
	Title                *int      `json:"title"`
	Role                 *string   `json:"role"`
	Description          *string   `json:"description"`
	Winnings             *float64  `json:"winnings"`
	BTCAddress           *string   `json:"btc_address"`
	BCHAddress           *string   `json:"bch_address"`
	ETHAddress           *string   `json:"eth_address"`
	VisitCount           *int64    `json:"visit_count"`
	MergedPRCount        *int64    `json:"merged_pr_count"`
	ContributionRank     *int64    `json:"contribution_rank"`
	CurrentStreak        *int64    `json:"current_streak"`
	LongestStreak        *int64    `json:"longest_streak"`
	XUsername            *string   `json:"x_username"`
	LinkedinURL          *string   `json:"linkedin_url"`
	GithubURL            *string   `json:"github_url"`
	WebsiteURL           *string   `json:"website_url"`
	DiscountedHourlyRate *float64  `json:"discounted_hourly_rate"`
	TeamID               *int64    `json:"team_id"`
	TeamName             *string   `json:"team_name"`
	TeamSlug             *string   `json:"team_slug"`
	TotalScore           int64     `json:"total_score"`
	IssuesCount          int64     `json:"issues_count"`
	Badges               []Badge   `json:"badges"`
}

// Profile is the editable profile row returned after an update.
type Profile struct {
	ID                   int64     `json:"id"`
	UserID               int64     `json:"user_id"`
	Role                 *string   `json:"role"`
	Description          *string   `json:"description"`
	BTCAddress           *string   `json:"btc_address"`
	BCHAddress           *string   `json:"bch_address"`
	ETHAddress           *string   `json:"eth_address"`
	XUsername            *string   `json:"x_username"`
	LinkedinURL          *string   `json:"linkedin_url"`
	GithubURL            *string   `json:"github_url"`
	WebsiteURL           *string   `json:"website_url"`
	DiscountedHourlyRate *float64  `json:"discounted_hourly_rate"`
	Modified             time.Time `json:"modified"`
}

type ProfileUpdateResult struct {
	Message string  `json:"message"`
	Profile Profile `json:"profile"`
}

// PointEntry is one row of a user's points history.
type PointEntry struct {
	ID               int64     `json:"id"`
	Score            int64     `json:"score"`
	Reason           *string   `json:"reason"`
	Created          time.Time `json:"created"`
	IssueID          *int64    `json:"issue_id"`
	IssueDescription *string   `json:"issue_description"`
	DomainID         *int64    `json:"domain_id"`
	DomainName       *string   `json:"domain_name"`
}
