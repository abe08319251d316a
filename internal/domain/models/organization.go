package models

import "time"

type Organization struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  *string   `json:"description"`
	Logo         *string   `json:"logo"`
	URL          string    `json:"url"`
	Email        *string   `json:"email"`
	Twitter      *string   `json:"twitter"`
	Created      time.Time `json:"created"`
	Type         string    `json:"type"`
	TeamPoints   int64     `json:"team_points"`
	Tagline      *string   `json:"tagline"`
	License      *string   `json:"license"`
	Categories   []string  `json:"categories"`
	TechTags     []string  `json:"tech_tags"`
	TopicTags    []string  `json:"topic_tags"`
	DomainCount  int64     `json:"domain_count"`
	ProjectCount int64     `json:"project_count"`
	MemberCount  int64     `json:"member_count"`
}

type OrganizationDetail struct {
	Organization
	Modified      time.Time `json:"modified"`
	IsActive      bool      `json:"is_active"`
	SourceCode    *string   `json:"source_code"`
	AdminID       *int64    `json:"admin_id"`
	AdminUsername *string   `json:"admin_username"`
	Tags          []Tag     `json:"tags"`
	Managers      []UserRef `json:"managers"`
}

type Repository struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	GithubURL   *string    `json:"github_url"`
	Description *string    `json:"description"`
	Stars       int64      `json:"stars"`
	Forks       int64      `json:"forks"`
	Watchers    int64      `json:"watchers"`
	OpenIssues  int64      `json:"open_issues"`
	Language    *string    `json:"language"`
	Homepage    *string    `json:"homepage"`
	Topics      *string    `json:"topics"`
	Archived    bool       `json:"archived"`
	Disabled    bool       `json:"disabled"`
	Created     time.Time  `json:"created"`
	Modified    time.Time  `json:"modified"`
	LastPushed  *time.Time `json:"last_pushed"`
}

// Member is a ranked organization member.
type Member struct {
	Rank             int     `json:"rank"`
	ID               int64   `json:"id"`
	Username         string  `json:"username"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	UserAvatar       *string `json:"user_avatar"`
	Title            *int    `json:"title"`
	Role             *string `json:"role"`
	GithubURL        *string `json:"github_url"`
	ContributionRank *int64  `json:"contribution_rank"`
	MergedPRCount    *int64  `json:"merged_pr_count"`
	TotalScore       int64   `json:"total_score"`
}

func (m *Member) SetRank(rank int) { m.Rank = rank }
