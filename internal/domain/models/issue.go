package models

import "time"

// IssueSummary is the row shape shared by every issue listing.
type IssueSummary struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	Description  string    `json:"description"`
	Label        int       `json:"label"`
	Verified     bool      `json:"verified"`
	Score        *int64    `json:"score"`
	Status       string    `json:"status"`
	Screenshot   *string   `json:"screenshot"`
	Created      time.Time `json:"created"`
	Modified     time.Time `json:"modified"`
	Views        *int64    `json:"views"`
	Rewarded     int64     `json:"rewarded"`
	CVEID        *string   `json:"cve_id"`
	CVEScore     *float64  `json:"cve_score"`
	UserID       *int64    `json:"user_id"`
	UserUsername *string   `json:"user_username"`
	UserAvatar   *string   `json:"user_avatar"`
	DomainID     *int64    `json:"domain_id"`
	DomainName   *string   `json:"domain_name"`
	DomainURL    *string   `json:"domain_url"`
	HuntID       *int64    `json:"hunt_id"`
	HuntName     *string   `json:"hunt_name"`
	Upvotes      int64     `json:"upvotes"`
}

// IssueDetail extends the summary with the single-issue enrichment.
type IssueDetail struct {
	IssueSummary
	MarkdownDescription *string    `json:"markdown_description"`
	UserAgent           *string    `json:"user_agent"`
	OCR                 *string    `json:"ocr"`
	GithubURL           *string    `json:"github_url"`
	IsHidden            bool       `json:"is_hidden"`
	UserEmail           *string    `json:"user_email"`
	ClosedByID          *int64     `json:"closed_by_id"`
	ClosedByUsername    *string    `json:"closed_by_username"`
	ClosedDate          *time.Time `json:"closed_date"`
	Flags               int64      `json:"flags"`
	Screenshots         []string   `json:"screenshots"`
	Tags                []Tag      `json:"tags"`
	IsUpvoted           bool       `json:"is_upvoted"`
	IsFlagged           bool       `json:"is_flagged"`
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ToggleResult is returned by the like and flag endpoints.
type ToggleResult struct {
	Message string `json:"message"`
	Liked   *bool  `json:"liked,omitempty"`
	Flagged *bool  `json:"flagged,omitempty"`
}

var labelNames = [...]string{
	"General",
	"Number Error",
	"Functional",
	"Performance",
	"Security",
	"Typo",
	"Design",
	"Server Down",
	"Trademark Squatting",
}

// LabelName returns the display name of an issue label code.
func LabelName(label int) string {
	if label < 0 || label >= len(labelNames) {
		return "Unknown"
	}
	return labelNames[label]
}
