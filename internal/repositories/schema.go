package repositories

// Tables lists every table the repositories read or write.
var Tables = []string{
	"auth_user",
	"authtoken_token",
	"website_userprofile",
	"website_userprofile_issue_upvoted",
	"website_userprofile_issue_flaged",
	"website_issue",
	"website_issuescreenshot",
	"website_issue_tags",
	"website_tag",
	"website_domain",
	"website_domain_tags",
	"website_organization",
	"website_organization_tags",
	"website_organization_managers",
	"website_repo",
	"website_project",
	"website_hunt",
	"website_huntprize",
	"website_points",
	"website_badge",
	"website_userbadge",
}
