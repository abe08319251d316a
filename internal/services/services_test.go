package services

import (
	"context"
	"database/sql/driver"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/domain"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/repositories"
	"github.com/OWASP-BLT/BLT-API-on-Cloudflare/internal/store"
)

func newStore(t *testing.T) (*store.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return store.New(db, store.DefaultBreakerConfig()), mock
}

var issueColumns = []string{
	"id", "url", "description", "label", "verified", "score", "status", "screenshot",
	"created", "modified", "views", "rewarded", "cve_id", "cve_score",
	"user_id", "username", "user_avatar", "domain_id", "domain_name", "domain_url",
	"hunt_id", "hunt_name", "upvotes",
}

func issueRow(id int64) []driver.Value {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, "https://example.com", "report", 0, false, nil, "open", nil,
		ts, ts, nil, 0, nil, nil,
		nil, nil, nil, nil, nil, nil,
		nil, nil, int64(0),
	}
}

func TestIssueList_EnvelopeForSecondPage(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM website_issue i")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	rows := sqlmock.NewRows(issueColumns)
	for id := int64(11); id <= 20; id++ {
		rows.AddRow(issueRow(id)...)
	}
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).WithArgs(10, 10).WillReturnRows(rows)

	svc := IssueService{Issues: repositories.IssueRepository{DB: db}}
	env, err := svc.List(context.Background(), Request{Query: url.Values{"page": {"2"}, "per_page": {"10"}}})
	require.NoError(t, err)

	assert.Equal(t, int64(25), env.Count)
	require.NotNil(t, env.Previous)
	require.NotNil(t, env.Next)
	assert.Equal(t, "/api/issues?page=1&per_page=10", *env.Previous)
	assert.Equal(t, "/api/issues?page=3&per_page=10", *env.Next)
	require.Len(t, env.Results, 10)
	assert.Equal(t, int64(11), env.Results[0].ID)
	assert.Equal(t, int64(20), env.Results[9].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIssueList_LinksKeepFilters(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("closed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs("closed", 20, 0).
		WillReturnRows(sqlmock.NewRows(issueColumns).AddRow(issueRow(1)...))

	svc := IssueService{Issues: repositories.IssueRepository{DB: db}}
	env, err := svc.List(context.Background(), Request{Query: url.Values{"status": {"closed"}, "page": {"0"}}})
	require.NoError(t, err)
	assert.Nil(t, env.Previous)
	require.NotNil(t, env.Next)
	assert.Equal(t, "/api/issues?page=2&per_page=20&status=closed", *env.Next)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLike_RequiresProfile(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM website_issue i WHERE (i.is_hidden = false OR i.user_id = $1) AND i.id = $2")).
		WithArgs(int64(7), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM website_userprofile WHERE user_id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	svc := IssueService{Issues: repositories.IssueRepository{DB: db}, Users: repositories.UserRepository{DB: db}}
	_, err := svc.ToggleLike(context.Background(), 3, Request{Caller: &domain.User{ID: 7}})
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
	assert.Equal(t, "User profile not found", err.Error())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleFlag_Flags(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM website_issue i")).
		WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM website_userprofile")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(40)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM website_userprofile_issue_flaged")).
		WithArgs(int64(40), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO website_userprofile_issue_flaged")).
		WithArgs(int64(40), int64(3)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	svc := IssueService{Issues: repositories.IssueRepository{DB: db}, Users: repositories.UserRepository{DB: db}}
	res, err := svc.ToggleFlag(context.Background(), 3, Request{Caller: &domain.User{ID: 7}})
	require.NoError(t, err)
	assert.Equal(t, "Issue flagged", res.Message)
	require.NotNil(t, res.Flagged)
	assert.True(t, *res.Flagged)
	assert.Nil(t, res.Liked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProfile_Guards(t *testing.T) {
	db, mock := newStore(t)
	svc := UserService{Users: repositories.UserRepository{DB: db}}
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, 7, Request{}, map[string]any{"role": "x"})
	assert.True(t, domain.IsAuthentication(err))

	_, err = svc.UpdateProfile(ctx, 7, Request{Caller: &domain.User{ID: 8}}, map[string]any{"role": "x"})
	assert.True(t, domain.IsAuthorization(err))

	_, err = svc.UpdateProfile(ctx, 7, Request{Caller: &domain.User{ID: 7}}, map[string]any{"role": []any{"x"}})
	assert.True(t, domain.IsValidation(err))

	_, err = svc.UpdateProfile(ctx, 7, Request{Caller: &domain.User{ID: 7}}, map[string]any{"username": "root"})
	assert.True(t, domain.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardUsers_RanksFollowOffset(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM (SELECT 1 FROM auth_user u")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`ORDER BY total_score DESC, u.id ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "user_avatar", "title", "total_score", "issue_count"}).
			AddRow(int64(3), "c", nil, nil, int64(20), int64(0)).
			AddRow(int64(9), "d", nil, nil, int64(20), int64(4)))

	svc := LeaderboardService{Leaderboard: repositories.LeaderboardRepository{DB: db}}
	env, err := svc.Users(context.Background(), Request{Query: url.Values{"page": {"2"}, "per_page": {"2"}}})
	require.NoError(t, err)
	require.Len(t, env.Results, 2)
	assert.Equal(t, 3, env.Results[0].Rank)
	assert.Equal(t, 4, env.Results[1].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardBoard_DispatchesOnType(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM (SELECT 1 FROM website_organization o")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	svc := LeaderboardService{Leaderboard: repositories.LeaderboardRepository{DB: db}}
	out, err := svc.Board(context.Background(), Request{Query: url.Values{"type": {"organizations"}}})
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthly_EmptyYearHasTwelveMonths(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery("WITH monthly AS").
		WithArgs(2019).
		WillReturnRows(sqlmock.NewRows([]string{"month", "id", "username", "user_avatar", "total_score"}))

	svc := LeaderboardService{Leaderboard: repositories.LeaderboardRepository{DB: db}}
	board, err := svc.Monthly(context.Background(), Request{Query: url.Values{"year": {"2019"}}})
	require.NoError(t, err)
	assert.Equal(t, 2019, board.Year)
	require.Len(t, board.Months, 12)
	for i, m := range board.Months {
		assert.Equal(t, i+1, m.MonthNumber)
		assert.Nil(t, m.Winner)
	}
	assert.Equal(t, "January", board.Months[0].Month)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthly_DefaultsToCurrentYear(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery("WITH monthly AS").
		WithArgs(2031).
		WillReturnRows(sqlmock.NewRows([]string{"month", "id", "username", "user_avatar", "total_score"}).
			AddRow(2, int64(5), "eve", nil, int64(80)))

	svc := LeaderboardService{Leaderboard: repositories.LeaderboardRepository{DB: db}}
	now := time.Date(2031, 6, 1, 0, 0, 0, 0, time.UTC)
	board, err := svc.Monthly(context.Background(), Request{Query: url.Values{"year": {"soon"}}, Now: now})
	require.NoError(t, err)
	assert.Equal(t, 2031, board.Year)
	require.NotNil(t, board.Months[1].Winner)
	assert.Equal(t, "eve", board.Months[1].Winner.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsOverview(t *testing.T) {
	db, mock := newStore(t)
	mock.MatchExpectationsInOrder(false)
	for i, total := range repositories.Totals {
		mock.ExpectQuery(regexp.QuoteMeta(total.Query)).
			WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(i + 1)))
	}

	st, err := StatsService{Stats: repositories.StatsRepository{DB: db}}.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.TotalIssues)
	assert.Equal(t, int64(6), st.TotalPointsAwarded)
	assert.Equal(t, int64(8), st.NewUsersThisWeek)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsActivity_ClampsDays(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("make_interval(days => $1)")).
		WithArgs(int64(MaxActivityDays)).
		WillReturnRows(sqlmock.NewRows([]string{"date", "issues_count"}))

	act, err := StatsService{Stats: repositories.StatsRepository{DB: db}}.Activity(context.Background(), Request{Query: url.Values{"days": {"5000"}}})
	require.NoError(t, err)
	assert.Equal(t, MaxActivityDays, act.PeriodDays)
	assert.NotNil(t, act.Activity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsTopDomains_DefaultLimit(t *testing.T) {
	db, mock := newStore(t)
	mock.ExpectQuery(`LIMIT \$1`).
		WithArgs(DefaultTopDomains).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "url", "logo", "issue_count", "open", "closed"}))

	_, err := StatsService{Stats: repositories.StatsRepository{DB: db}}.TopDomains(context.Background(), Request{Query: url.Values{"limit": {"lots"}}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScopedIssueLists_QueryTheIssueRepository(t *testing.T) {
	db, mock := newStore(t)
	issues := repositories.IssueRepository{DB: db}
	r := Request{Query: url.Values{"status": {"open"}}}

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM website_issue i.*i\.user_id = \$1`).
		WithArgs(4).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM website_issue i.*i\.domain_id = \$1 AND i\.status = \$2`).
		WithArgs(7, "open").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM website_issue i.*i\.hunt_id = \$1`).
		WithArgs(9).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	byUser, err := UserService{IssueRepo: issues}.Issues(context.Background(), 4, r)
	require.NoError(t, err)
	assert.Equal(t, int64(0), byUser.Count)
	assert.Empty(t, byUser.Results)

	byDomain, err := DomainService{IssueRepo: issues}.Issues(context.Background(), 7, r)
	require.NoError(t, err)
	assert.Empty(t, byDomain.Results)

	byHunt, err := HuntService{IssueRepo: issues}.Issues(context.Background(), 9, r)
	require.NoError(t, err)
	assert.Empty(t, byHunt.Results)
	assert.Nil(t, byHunt.Next)

	require.NoError(t, mock.ExpectationsWereMet())
}
