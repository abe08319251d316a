package models

import "time"

type Hunt struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Description       *string    `json:"description"`
	URL               string     `json:"url"`
	Prize             *float64   `json:"prize"`
	PrizeWinner       float64    `json:"prize_winner"`
	PrizeRunner       float64    `json:"prize_runner"`
	PrizeSecondRunner float64    `json:"prize_second_runner"`
	Logo              *string    `json:"logo"`
	Banner            *string    `json:"banner"`
	Plan              string     `json:"plan"`
	Color             *string    `json:"color"`
	Created           time.Time  `json:"created"`
	StartsOn          *time.Time `json:"starts_on"`
	EndOn             *time.Time `json:"end_on"`
	ResultPublished   bool       `json:"result_published"`
	DomainID          int64      `json:"domain_id"`
	DomainName        string     `json:"domain_name"`
	DomainURL         string     `json:"domain_url"`
	IssueCount        int64      `json:"issue_count"`
	Prizes            []Prize    `json:"prizes"`
}

type HuntDetail struct {
	Hunt
	IsPublished      bool         `json:"is_published"`
	Modified         time.Time    `json:"modified"`
	DomainLogo       *string      `json:"domain_logo"`
	ParticipantCount int64        `json:"participant_count"`
	Leaderboard      []HuntLeader `json:"leaderboard"`
}

type Prize struct {
	ID                       int64     `json:"id"`
	HuntID                   int64     `json:"-"`
	Name                     string    `json:"name"`
	Value                    float64   `json:"value"`
	NoOfEligibleProjects     int64     `json:"no_of_eligible_projects"`
	ValidSubmissionsEligible bool      `json:"valid_submissions_eligible"`
	PrizeInCrypto            bool      `json:"prize_in_crypto"`
	Description              *string   `json:"description"`
	Created                  time.Time `json:"created"`
}

// HuntLeader is one ranked reporter within a hunt.
type HuntLeader struct {
	Rank       int     `json:"rank"`
	ID         int64   `json:"id"`
	Username   string  `json:"username"`
	UserAvatar *string `json:"user_avatar"`
	IssueCount int64   `json:"issue_count"`
	TotalScore int64   `json:"total_score"`
}

func (h *HuntLeader) SetRank(rank int) { h.Rank = rank }
