package models

import "time"

// Domain is a website registered for bug reports.
type Domain struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	Logo             *string   `json:"logo"`
	Webshot          *string   `json:"webshot"`
	Email            *string   `json:"email"`
	Twitter          *string   `json:"twitter"`
	Facebook         *string   `json:"facebook"`
	Created          time.Time `json:"created"`
	HasSecurityTxt   bool      `json:"has_security_txt"`
	OrganizationID   *int64    `json:"organization_id"`
	OrganizationName *string   `json:"organization_name"`
	OrganizationSlug *string   `json:"organization_slug"`
	OpenIssues       int64     `json:"open_issues"`
	ClosedIssues     int64     `json:"closed_issues"`
}

type DomainDetail struct {
	Domain
	Color           *string    `json:"color"`
	Github          *string    `json:"github"`
	Clicks          *int64     `json:"clicks"`
	Modified        time.Time  `json:"modified"`
	IsActive        bool       `json:"is_active"`
	OrganizationURL *string    `json:"organization_url"`
	TopTester       *TopTester `json:"top_tester"`
	Tags            []Tag      `json:"tags"`
}

type TopTester struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	IssueCount int64  `json:"issue_count"`
}
