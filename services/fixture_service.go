package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
)

type FixtureService interface {
	Create(ctx context.Context, input CreateFixtureInput) (*models.Fixture, error)
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListByGameweek(ctx context.Context, gameweek int) ([]*models.Fixture, error)
	CurrentGameweek(ctx context.Context) (int, error)
	// RecordResult stores the final score, marks the fixture completed and settles the points
	// of every prediction made for it. Recording again overwrites the result and re-settles.
	RecordResult(ctx context.Context, fixtureID int, result models.FixtureResult) (*models.Fixture, error)
}

type CreateFixtureInput struct {
	Gameweek    int       `json:"gameweek" validate:"required,min=1"`
	HomeTeam    string    `json:"home_team" validate:"required,max=64"`
	AwayTeam    string    `json:"away_team" validate:"required,max=64"`
	KickoffAt   time.Time `json:"kickoff_at" validate:"required"`
	ExternalRef *string   `json:"external_ref,omitempty" validate:"omitempty,max=64"`
}

// ResultRecordedPayload is broadcast to the gameweek room.
type ResultRecordedPayload struct {
	FixtureID          int `json:"fixture_id"`
	Gameweek           int `json:"gameweek"`
	HomeScore          int `json:"home_score"`
	AwayScore          int `json:"away_score"`
	SettledPredictions int `json:"settled_predictions"`
}

type fixtureService struct {
	fixtureRepo    repositories.FixtureRepository
	predictionRepo repositories.PredictionRepository
	tx             repositories.Transactor
	broadcaster    Broadcaster
	logger         *slog.Logger
}

func NewFixtureService(
	fixtureRepo repositories.FixtureRepository,
	predictionRepo repositories.PredictionRepository,
	tx repositories.Transactor,
	broadcaster Broadcaster,
	logger *slog.Logger,
) FixtureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &fixtureService{
		fixtureRepo:    fixtureRepo,
		predictionRepo: predictionRepo,
		tx:             tx,
		broadcaster:    broadcasterOrNop(broadcaster),
		logger:         logger,
	}
}

func (s *fixtureService) Create(ctx context.Context, input CreateFixtureInput) (*models.Fixture, error) {
	home := strings.TrimSpace(input.HomeTeam)
	away := strings.TrimSpace(input.AwayTeam)
	if input.Gameweek < 1 || home == "" || away == "" || strings.EqualFold(home, away) || input.KickoffAt.IsZero() {
		return nil, ErrValidationFailed
	}

	var ref *string
	if input.ExternalRef != nil {
		if trimmed := strings.TrimSpace(*input.ExternalRef); trimmed != "" {
			ref = &trimmed
		}
	}

	fixture := &models.Fixture{
		Gameweek:    input.Gameweek,
		HomeTeam:    home,
		AwayTeam:    away,
		KickoffAt:   input.KickoffAt.UTC(),
		Status:      models.FixtureScheduled,
		ExternalRef: ref,
	}
	if err := s.fixtureRepo.Create(ctx, fixture); err != nil {
		if errors.Is(err, repositories.ErrFixtureExternalRefConflict) {
			return nil, ErrFixtureExternalRefConflict
		}
		return nil, fmt.Errorf("failed to create fixture: %w", err)
	}
	return fixture, nil
}

func (s *fixtureService) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	fixture, err := s.fixtureRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to get fixture %d: %w", id, err)
	}
	return fixture, nil
}

func (s *fixtureService) ListByGameweek(ctx context.Context, gameweek int) ([]*models.Fixture, error) {
	if gameweek < 1 {
		return nil, ErrInvalidGameweek
	}
	fixtures, err := s.fixtureRepo.ListByGameweek(ctx, gameweek)
	if err != nil {
		return nil, fmt.Errorf("failed to list fixtures for gameweek %d: %w", gameweek, err)
	}
	return fixtures, nil
}

func (s *fixtureService) CurrentGameweek(ctx context.Context) (int, error) {
	gw, err := s.fixtureRepo.CurrentGameweek(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrNoFixtures) {
			return 0, ErrNoFixtures
		}
		return 0, fmt.Errorf("failed to resolve current gameweek: %w", err)
	}
	return gw, nil
}

func (s *fixtureService) RecordResult(ctx context.Context, fixtureID int, result models.FixtureResult) (*models.Fixture, error) {
	result.HomeScorers = cleanNames(result.HomeScorers)
	result.AwayScorers = cleanNames(result.AwayScorers)
	if result.HomeScore < 0 || result.AwayScore < 0 {
		return nil, ErrValidationFailed
	}
	if len(result.HomeScorers) > result.HomeScore || len(result.AwayScorers) > result.AwayScore {
		return nil, ErrTooManyScorers
	}

	fixture, err := s.GetByID(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	settled := 0
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.fixtureRepo.SetResult(ctx, exec, fixtureID, result); err != nil {
			return err
		}
		predictions, err := s.predictionRepo.ListByFixture(ctx, exec, fixtureID)
		if err != nil {
			return err
		}
		for _, p := range predictions {
			points, ok := scoring.Calculate(p)
			if !ok {
				continue
			}
			if err := s.predictionRepo.SetPoints(ctx, exec, p.ID, points); err != nil {
				return err
			}
			settled++
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to record result for fixture %d: %w", fixtureID, err)
	}

	fixture.Status = models.FixtureCompleted
	fixture.HomeScore = intPtr(result.HomeScore)
	fixture.AwayScore = intPtr(result.AwayScore)
	fixture.HomeScorers = result.HomeScorers
	fixture.AwayScorers = result.AwayScorers

	s.logger.Info("fixture result recorded",
		"fixture_id", fixtureID,
		"gameweek", fixture.Gameweek,
		"score", fmt.Sprintf("%d-%d", result.HomeScore, result.AwayScore),
		"settled_predictions", settled)

	s.broadcaster.BroadcastToRoom(live.GameweekRoom(fixture.Gameweek), live.Message{
		Type: live.MessageResultRecorded,
		Payload: ResultRecordedPayload{
			FixtureID:          fixtureID,
			Gameweek:           fixture.Gameweek,
			HomeScore:          result.HomeScore,
			AwayScore:          result.AwayScore,
			SettledPredictions: settled,
		},
	})
	return fixture, nil
}

// cleanNames trims names and drops empty entries; duplicates are kept (braces count twice).
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
