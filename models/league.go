package models

import "time"

type League struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   int       `json:"owner_id" db:"owner_id"`
	JoinCode  string    `json:"join_code" db:"join_code"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	MemberCount int `json:"member_count" db:"-"`
}

// LeagueStanding is one row of a league table. Rank is filled by the service.
type LeagueStanding struct {
	UserID          int    `json:"user_id" db:"user_id"`
	Nickname        string `json:"nickname" db:"nickname"`
	Points          int    `json:"points" db:"points"`
	Predictions     int    `json:"predictions" db:"predictions"`
	ExactScores     int    `json:"exact_scores" db:"exact_scores"`
	CorrectOutcomes int    `json:"correct_outcomes" db:"correct_outcomes"`
	Rank            int    `json:"rank" db:"-"`
}
