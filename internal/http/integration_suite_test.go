//go:build integration

package api_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	_ "github.com/lib/pq"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Integration Suite")
}

var (
	ctx       context.Context
	container *postgres.PostgresContainer
	connStr   string
	sqlDB     *sql.DB
)

var _ = BeforeSuite(func() {
	ctx = context.Background()
	var err error

	container, err = postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("blt"),
		postgres.WithUsername("blt"),
		postgres.WithPassword("blt"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	Expect(err).ToNot(HaveOccurred())

	connStr, err = container.ConnectionString(ctx, "sslmode=disable")
	Expect(err).ToNot(HaveOccurred())

	sqlDB, err = sql.Open("postgres", connStr)
	Expect(err).ToNot(HaveOccurred())
	Expect(sqlDB.PingContext(ctx)).To(Succeed())

	_, err = sqlDB.ExecContext(ctx, schema)
	Expect(err).ToNot(HaveOccurred())
	GinkgoWriter.Printf("PostgreSQL container started: %s\n", connStr)
})

var _ = AfterSuite(func() {
	if sqlDB != nil {
		sqlDB.Close()
	}
	if container != nil {
		Expect(container.Terminate(ctx)).To(Succeed())
	}
})

// truncate empties every table and restarts identity sequences.
func truncate() {
	_, err := sqlDB.ExecContext(ctx, `TRUNCATE
		authtoken_token, website_points, website_userprofile_issue_upvoted,
		website_userprofile_issue_flaged, website_issue_tags, website_issuescreenshot,
		website_issue, website_hunt, website_domain, website_organization,
		website_tag, website_userprofile, auth_user
		RESTART IDENTITY CASCADE`)
	Expect(err).ToNot(HaveOccurred())
}

func mustExec(q string, args ...any) {
	_, err := sqlDB.ExecContext(ctx, q, args...)
	ExpectWithOffset(1, err).ToNot(HaveOccurred(), fmt.Sprintf("exec %q", q))
}

// schema is the subset of the BLT tables the API reads.
const schema = `
CREATE TABLE auth_user (
	id SERIAL PRIMARY KEY,
	username VARCHAR(150) NOT NULL UNIQUE,
	email VARCHAR(254) NOT NULL DEFAULT '',
	first_name VARCHAR(150) NOT NULL DEFAULT '',
	last_name VARCHAR(150) NOT NULL DEFAULT '',
	is_active BOOLEAN NOT NULL DEFAULT true,
	is_staff BOOLEAN NOT NULL DEFAULT false,
	is_superuser BOOLEAN NOT NULL DEFAULT false,
	date_joined TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_login TIMESTAMPTZ
);

CREATE TABLE authtoken_token (
	key VARCHAR(40) PRIMARY KEY,
	user_id INTEGER NOT NULL UNIQUE REFERENCES auth_user(id),
	created TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_organization (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	slug VARCHAR(255) NOT NULL,
	logo VARCHAR(255),
	team_points INTEGER NOT NULL DEFAULT 0,
	is_active BOOLEAN NOT NULL DEFAULT true,
	created TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_userprofile (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL UNIQUE REFERENCES auth_user(id),
	user_avatar VARCHAR(255),
	title INTEGER,
	description TEXT,
	team_id INTEGER REFERENCES website_organization(id),
	modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_domain (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	url VARCHAR(200) NOT NULL,
	logo VARCHAR(255),
	webshot VARCHAR(255),
	email VARCHAR(254),
	twitter VARCHAR(30),
	facebook VARCHAR(200),
	has_security_txt BOOLEAN NOT NULL DEFAULT false,
	is_active BOOLEAN NOT NULL DEFAULT true,
	organization_id INTEGER REFERENCES website_organization(id),
	created TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_hunt (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	domain_id INTEGER REFERENCES website_domain(id),
	is_published BOOLEAN NOT NULL DEFAULT true,
	starts_on TIMESTAMPTZ,
	end_on TIMESTAMPTZ,
	created TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_issue (
	id SERIAL PRIMARY KEY,
	user_id INTEGER REFERENCES auth_user(id),
	domain_id INTEGER REFERENCES website_domain(id),
	hunt_id INTEGER REFERENCES website_hunt(id),
	closed_by_id INTEGER REFERENCES auth_user(id),
	url VARCHAR(200) NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	markdown_description TEXT,
	label INTEGER NOT NULL DEFAULT 0,
	verified BOOLEAN NOT NULL DEFAULT false,
	score INTEGER,
	status VARCHAR(10) NOT NULL DEFAULT 'open',
	screenshot VARCHAR(255),
	user_agent VARCHAR(255),
	ocr TEXT,
	github_url VARCHAR(200),
	is_hidden BOOLEAN NOT NULL DEFAULT false,
	views INTEGER,
	rewarded INTEGER NOT NULL DEFAULT 0,
	cve_id VARCHAR(16),
	cve_score NUMERIC(3,1),
	closed_date TIMESTAMPTZ,
	created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	modified TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_issuescreenshot (
	id SERIAL PRIMARY KEY,
	issue_id INTEGER NOT NULL REFERENCES website_issue(id),
	image VARCHAR(255) NOT NULL,
	created TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE website_tag (
	id SERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	slug VARCHAR(255) NOT NULL
);

CREATE TABLE website_issue_tags (
	id SERIAL PRIMARY KEY,
	issue_id INTEGER NOT NULL REFERENCES website_issue(id),
	tag_id INTEGER NOT NULL REFERENCES website_tag(id)
);

CREATE TABLE website_userprofile_issue_upvoted (
	id SERIAL PRIMARY KEY,
	userprofile_id INTEGER NOT NULL REFERENCES website_userprofile(id),
	issue_id INTEGER NOT NULL REFERENCES website_issue(id),
	UNIQUE (userprofile_id, issue_id)
);

CREATE TABLE website_userprofile_issue_flaged (
	id SERIAL PRIMARY KEY,
	userprofile_id INTEGER NOT NULL REFERENCES website_userprofile(id),
	issue_id INTEGER NOT NULL REFERENCES website_issue(id),
	UNIQUE (userprofile_id, issue_id)
);

CREATE TABLE website_points (
	id SERIAL PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES auth_user(id),
	score INTEGER NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	created TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
