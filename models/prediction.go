package models

import "time"

// PredictionStatus соответствует ENUM prediction_status в БД.
type PredictionStatus string

const (
	PredictionPending   PredictionStatus = "pending"
	PredictionCompleted PredictionStatus = "completed"
)

// Prediction is a user's score/goalscorer guess for one fixture.
// The Actual* fields are nil until the fixture has a final result.
type Prediction struct {
	ID          int              `json:"id" db:"id"`
	UserID      int              `json:"user_id" db:"user_id"`
	FixtureID   int              `json:"fixture_id" db:"fixture_id"`
	Gameweek    int              `json:"gameweek" db:"gameweek"`
	HomeScore   int              `json:"home_score" db:"home_score"`
	AwayScore   int              `json:"away_score" db:"away_score"`
	HomeScorers []string         `json:"home_scorers" db:"home_scorers"`
	AwayScorers []string         `json:"away_scorers" db:"away_scorers"`
	Chips       []ChipID         `json:"chips" db:"chips"`
	Status      PredictionStatus `json:"status" db:"-"`
	Points      *int             `json:"points,omitempty" db:"points"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`

	ActualHomeScore   *int     `json:"actual_home_score,omitempty" db:"-"`
	ActualAwayScore   *int     `json:"actual_away_score,omitempty" db:"-"`
	ActualHomeScorers []string `json:"actual_home_scorers,omitempty" db:"-"`
	ActualAwayScorers []string `json:"actual_away_scorers,omitempty" db:"-"`

	// Заполняется сервисом для ответа API
	Fixture *Fixture `json:"fixture,omitempty" db:"-"`
}

// HasChip reports whether the chip is attached to this prediction.
func (p *Prediction) HasChip(id ChipID) bool {
	for _, c := range p.Chips {
		if c == id {
			return true
		}
	}
	return false
}

// IsPending is true while the fixture has no final score.
func (p *Prediction) IsPending() bool {
	return p.ActualHomeScore == nil || p.ActualAwayScore == nil
}

// ApplyResult copies the fixture's final result onto the prediction and derives its status.
func (p *Prediction) ApplyResult(f *Fixture) {
	if f == nil || f.Status != FixtureCompleted || f.HomeScore == nil || f.AwayScore == nil {
		p.Status = PredictionPending
		return
	}
	home, away := *f.HomeScore, *f.AwayScore
	p.ActualHomeScore = &home
	p.ActualAwayScore = &away
	p.ActualHomeScorers = f.HomeScorers
	p.ActualAwayScorers = f.AwayScorers
	p.Status = PredictionCompleted
}

// PredictionFilter - фильтры для листинга прогнозов пользователя.
type PredictionFilter struct {
	Gameweek *int
	Status   *PredictionStatus
}
