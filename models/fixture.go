package models

import "time"

type FixtureStatus string

const (
	FixtureScheduled FixtureStatus = "scheduled"
	FixtureCompleted FixtureStatus = "completed"
)

type Fixture struct {
	ID          int           `json:"id" db:"id"`
	Gameweek    int           `json:"gameweek" db:"gameweek"`
	HomeTeam    string        `json:"home_team" db:"home_team"`
	AwayTeam    string        `json:"away_team" db:"away_team"`
	KickoffAt   time.Time     `json:"kickoff_at" db:"kickoff_at"`
	Status      FixtureStatus `json:"status" db:"status"`
	HomeScore   *int          `json:"home_score,omitempty" db:"home_score"`
	AwayScore   *int          `json:"away_score,omitempty" db:"away_score"`
	HomeScorers []string      `json:"home_scorers,omitempty" db:"home_scorers"`
	AwayScorers []string      `json:"away_scorers,omitempty" db:"away_scorers"`
	ExternalRef *string       `json:"external_ref,omitempty" db:"external_ref"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
}

// Deadline is the last moment predictions for this fixture may be submitted or edited.
func (f *Fixture) Deadline(buffer time.Duration) time.Time {
	return f.KickoffAt.Add(-buffer)
}

// FixtureResult is the final score and scorers of a match.
type FixtureResult struct {
	HomeScore   int      `json:"home_score" validate:"min=0"`
	AwayScore   int      `json:"away_score" validate:"min=0"`
	HomeScorers []string `json:"home_scorers" validate:"dive,required"`
	AwayScorers []string `json:"away_scorers" validate:"dive,required"`
}
