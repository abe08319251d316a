package models

type Stats struct {
	TotalIssues        int64 `json:"total_issues"`
	TotalUsers         int64 `json:"total_users"`
	TotalDomains       int64 `json:"total_domains"`
	TotalHunts         int64 `json:"total_hunts"`
	TotalOrganizations int64 `json:"total_organizations"`
	TotalPointsAwarded int64 `json:"total_points_awarded"`
	IssuesThisWeek     int64 `json:"issues_this_week"`
	NewUsersThisWeek   int64 `json:"new_users_this_week"`
}

type ActivityDay struct {
	Date        string `json:"date"`
	IssuesCount int64  `json:"issues_count"`
}

type Activity struct {
	PeriodDays int           `json:"period_days"`
	Activity   []ActivityDay `json:"activity"`
}

type LabelCount struct {
	Label     int    `json:"label"`
	Count     int64  `json:"count"`
	LabelName string `json:"label_name"`
}

type TopDomain struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	URL          string  `json:"url"`
	Logo         *string `json:"logo"`
	IssueCount   int64   `json:"issue_count"`
	OpenIssues   int64   `json:"open_issues"`
	ClosedIssues int64   `json:"closed_issues"`
}
