package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/chips"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/scoring"
)

type PredictionService interface {
	// Submit creates the user's prediction for a fixture or replaces the existing one.
	Submit(ctx context.Context, userID int, input PredictionInput) (*models.Prediction, error)
	Update(ctx context.Context, userID, predictionID int, input PredictionInput) (*models.Prediction, error)
	List(ctx context.Context, userID int, filter models.PredictionFilter) ([]*models.Prediction, error)
	Get(ctx context.Context, userID, predictionID int) (*PredictionDetails, error)
}

type PredictionInput struct {
	FixtureID   int             `json:"fixture_id" validate:"omitempty,min=1"`
	HomeScore   int             `json:"home_score" validate:"min=0,max=99"`
	AwayScore   int             `json:"away_score" validate:"min=0,max=99"`
	HomeScorers []string        `json:"home_scorers" validate:"dive,required,max=64"`
	AwayScorers []string        `json:"away_scorers" validate:"dive,required,max=64"`
	Chips       []models.ChipID `json:"chips" validate:"dive,required"`
}

// PredictionDetails is a prediction with its points breakdown once the fixture is completed.
type PredictionDetails struct {
	Prediction *models.Prediction `json:"prediction"`
	Breakdown  *scoring.Breakdown `json:"breakdown,omitempty"`
}

type predictionService struct {
	predictionRepo repositories.PredictionRepository
	fixtureRepo    repositories.FixtureRepository
	deadlineBuffer time.Duration
	now            clock
}

func NewPredictionService(
	predictionRepo repositories.PredictionRepository,
	fixtureRepo repositories.FixtureRepository,
	deadlineBuffer time.Duration,
) PredictionService {
	return &predictionService{
		predictionRepo: predictionRepo,
		fixtureRepo:    fixtureRepo,
		deadlineBuffer: deadlineBuffer,
		now:            time.Now,
	}
}

func (s *predictionService) Submit(ctx context.Context, userID int, input PredictionInput) (*models.Prediction, error) {
	if input.FixtureID < 1 {
		return nil, ErrValidationFailed
	}
	clean, err := normalizePredictionInput(input)
	if err != nil {
		return nil, err
	}

	fixture, err := s.fixtureRepo.GetByID(ctx, input.FixtureID)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to load fixture %d: %w", input.FixtureID, err)
	}
	if err := s.checkOpen(fixture); err != nil {
		return nil, err
	}

	prediction := &models.Prediction{
		UserID:      userID,
		FixtureID:   fixture.ID,
		Gameweek:    fixture.Gameweek,
		HomeScore:   clean.HomeScore,
		AwayScore:   clean.AwayScore,
		HomeScorers: clean.HomeScorers,
		AwayScorers: clean.AwayScorers,
		Chips:       clean.Chips,
	}
	if err := s.predictionRepo.Upsert(ctx, prediction); err != nil {
		if errors.Is(err, repositories.ErrPredictionFixtureInvalid) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}
	return s.reload(ctx, prediction.ID)
}

func (s *predictionService) Update(ctx context.Context, userID, predictionID int, input PredictionInput) (*models.Prediction, error) {
	clean, err := normalizePredictionInput(input)
	if err != nil {
		return nil, err
	}

	existing, err := s.getOwned(ctx, userID, predictionID)
	if err != nil {
		return nil, err
	}
	if input.FixtureID != 0 && input.FixtureID != existing.FixtureID {
		return nil, ErrValidationFailed
	}
	if err := s.checkOpen(existing.Fixture); err != nil {
		return nil, err
	}

	existing.HomeScore = clean.HomeScore
	existing.AwayScore = clean.AwayScore
	existing.HomeScorers = clean.HomeScorers
	existing.AwayScorers = clean.AwayScorers
	existing.Chips = clean.Chips
	if err := s.predictionRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to update prediction %d: %w", predictionID, err)
	}
	return s.reload(ctx, predictionID)
}

func (s *predictionService) List(ctx context.Context, userID int, filter models.PredictionFilter) ([]*models.Prediction, error) {
	if filter.Gameweek != nil && *filter.Gameweek < 1 {
		return nil, ErrInvalidGameweek
	}
	predictions, err := s.predictionRepo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions for user %d: %w", userID, err)
	}
	for _, p := range predictions {
		withPoints(p)
	}
	return predictions, nil
}

func (s *predictionService) Get(ctx context.Context, userID, predictionID int) (*PredictionDetails, error) {
	p, err := s.getOwned(ctx, userID, predictionID)
	if err != nil {
		return nil, err
	}
	details := &PredictionDetails{Prediction: withPoints(p)}
	if b, ok := scoring.Explain(p); ok {
		details.Breakdown = &b
	}
	return details, nil
}

func (s *predictionService) getOwned(ctx context.Context, userID, predictionID int) (*models.Prediction, error) {
	p, err := s.predictionRepo.GetByID(ctx, predictionID)
	if err != nil {
		if errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to get prediction %d: %w", predictionID, err)
	}
	// Чужие прогнозы не раскрываем
	if p.UserID != userID {
		return nil, ErrPredictionNotFound
	}
	return p, nil
}

func (s *predictionService) reload(ctx context.Context, predictionID int) (*models.Prediction, error) {
	p, err := s.predictionRepo.GetByID(ctx, predictionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload prediction %d: %w", predictionID, err)
	}
	return withPoints(p), nil
}

func (s *predictionService) checkOpen(fixture *models.Fixture) error {
	if fixture == nil {
		return ErrFixtureNotFound
	}
	if fixture.Status == models.FixtureCompleted {
		return ErrPredictionLocked
	}
	if !s.now().Before(fixture.Deadline(s.deadlineBuffer)) {
		return ErrPredictionDeadlinePassed
	}
	return nil
}

// withPoints sets Points from the scoring rules for completed predictions.
func withPoints(p *models.Prediction) *models.Prediction {
	if p == nil {
		return nil
	}
	if points, ok := scoring.Calculate(p); ok {
		p.Points = &points
	} else {
		p.Points = nil
	}
	return p
}

func normalizePredictionInput(input PredictionInput) (PredictionInput, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return input, ErrValidationFailed
	}
	input.HomeScorers = cleanNames(input.HomeScorers)
	input.AwayScorers = cleanNames(input.AwayScorers)
	if len(input.HomeScorers) > input.HomeScore || len(input.AwayScorers) > input.AwayScore {
		return input, ErrTooManyScorers
	}

	seen := make(map[models.ChipID]bool, len(input.Chips))
	unique := make([]models.ChipID, 0, len(input.Chips))
	for _, id := range input.Chips {
		if !chips.IsKnown(id) {
			return input, fmt.Errorf("%w: %s", ErrUnknownChip, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}
	input.Chips = unique
	return input, nil
}
