package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/chips"
	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"golang.org/x/time/rate"
)

type ChipService interface {
	ListCatalog() []models.Chip
	Activate(ctx context.Context, userID, gameweek int, chipID models.ChipID) (*models.ActiveGameweekChip, error)
	Deactivate(ctx context.Context, userID, gameweek int, chipID models.ChipID) error
	ActiveChips(ctx context.Context, userID int) (models.ActiveChips, error)
	// Validate reports the user's pending predictions of the gameweek that lack active chips.
	Validate(ctx context.Context, userID, gameweek int) (chips.ValidationResult, error)
	Dismiss(ctx context.Context, userID, gameweek int, predictionIDs []int) (chips.ValidationResult, error)
	// Sync attaches the missing chips. Update failures are reported in the result, not as error.
	Sync(ctx context.Context, userID, gameweek int) (chips.SyncResult, error)
}

type ChipServiceConfig struct {
	DeadlineBuffer  time.Duration
	SyncConcurrency int
	SyncRatePerSec  float64
}

// PredictionsSyncedPayload is pushed to the user room after a sync touched predictions.
// Remaining is the number of predictions still flagged afterwards; nil when it could not
// be recomputed.
type PredictionsSyncedPayload struct {
	Gameweek      int   `json:"gameweek"`
	PredictionIDs []int `json:"prediction_ids"`
	Remaining     *int  `json:"remaining,omitempty"`
}

type chipService struct {
	predictionRepo repositories.PredictionRepository
	activeChipRepo repositories.ActiveChipRepository
	fixtureRepo    repositories.FixtureRepository
	broadcaster    Broadcaster
	logger         *slog.Logger
	cfg            ChipServiceConfig
	limiter        *rate.Limiter
	now            clock

	mu         sync.Mutex
	validators map[int]*chips.Validator
}

func NewChipService(
	predictionRepo repositories.PredictionRepository,
	activeChipRepo repositories.ActiveChipRepository,
	fixtureRepo repositories.FixtureRepository,
	broadcaster Broadcaster,
	cfg ChipServiceConfig,
	logger *slog.Logger,
) ChipService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SyncConcurrency <= 0 {
		cfg.SyncConcurrency = 4
	}
	if cfg.SyncRatePerSec <= 0 {
		cfg.SyncRatePerSec = 10
	}
	return &chipService{
		predictionRepo: predictionRepo,
		activeChipRepo: activeChipRepo,
		fixtureRepo:    fixtureRepo,
		broadcaster:    broadcasterOrNop(broadcaster),
		logger:         logger,
		cfg:            cfg,
		// Один лимитер на процесс: ограничивает нагрузку на БД от всех синхронизаций сразу
		limiter:    rate.NewLimiter(rate.Limit(cfg.SyncRatePerSec), cfg.SyncConcurrency),
		now:        time.Now,
		validators: make(map[int]*chips.Validator),
	}
}

func (s *chipService) ListCatalog() []models.Chip {
	return chips.Catalog()
}

func (s *chipService) Activate(ctx context.Context, userID, gameweek int, chipID models.ChipID) (*models.ActiveGameweekChip, error) {
	chip, ok := chips.Lookup(chipID)
	if !ok {
		return nil, ErrUnknownChip
	}
	if !chip.GameweekApplicable && chip.Scope != models.ChipScopeGameweek {
		return nil, ErrChipNotGameweekScoped
	}
	if err := s.checkGameweekOpen(ctx, gameweek); err != nil {
		return nil, err
	}

	active := &models.ActiveGameweekChip{UserID: userID, Gameweek: gameweek, ChipID: chipID}
	if err := s.activeChipRepo.Activate(ctx, active); err != nil {
		if errors.Is(err, repositories.ErrActiveChipConflict) {
			return nil, ErrChipAlreadyActive
		}
		return nil, fmt.Errorf("failed to activate chip %s: %w", chipID, err)
	}
	s.logger.Info("gameweek chip activated", "user_id", userID, "gameweek", gameweek, "chip", chipID)
	return active, nil
}

func (s *chipService) Deactivate(ctx context.Context, userID, gameweek int, chipID models.ChipID) error {
	if !chips.IsKnown(chipID) {
		return ErrUnknownChip
	}
	if err := s.checkGameweekOpen(ctx, gameweek); err != nil {
		return err
	}
	if err := s.activeChipRepo.Deactivate(ctx, userID, gameweek, chipID); err != nil {
		if errors.Is(err, repositories.ErrActiveChipNotFound) {
			return ErrChipNotActive
		}
		return fmt.Errorf("failed to deactivate chip %s: %w", chipID, err)
	}
	return nil
}

func (s *chipService) ActiveChips(ctx context.Context, userID int) (models.ActiveChips, error) {
	rows, err := s.activeChipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active chips for user %d: %w", userID, err)
	}
	return models.GroupActiveChips(rows), nil
}

func (s *chipService) Validate(ctx context.Context, userID, gameweek int) (chips.ValidationResult, error) {
	predictions, active, err := s.load(ctx, userID, gameweek)
	if err != nil {
		return chips.ValidationResult{}, err
	}

	v := s.validatorFor(userID)
	result := v.Validate(predictions, active, gameweek)
	if len(predictions) == 0 {
		// Все прогнозы тура закрыты: скрытия для него больше не нужны
		v.ForgetGameweek(gameweek)
	}
	s.releaseValidator(userID, v)
	return result, nil
}

func (s *chipService) Dismiss(ctx context.Context, userID, gameweek int, predictionIDs []int) (chips.ValidationResult, error) {
	if gameweek < 1 {
		return chips.ValidationResult{}, ErrInvalidGameweek
	}
	s.mu.Lock()
	s.validatorLocked(userID).MarkDismissed(gameweek, predictionIDs...)
	s.mu.Unlock()
	return s.Validate(ctx, userID, gameweek)
}

func (s *chipService) Sync(ctx context.Context, userID, gameweek int) (chips.SyncResult, error) {
	predictions, active, err := s.load(ctx, userID, gameweek)
	if err != nil {
		return chips.SyncResult{}, err
	}

	touched := &syncedPredictions{}
	updater := &deadlineGuardedUpdater{
		repo:         s.predictionRepo,
		kickoffAfter: s.now().Add(s.cfg.DeadlineBuffer),
	}
	executor := chips.NewSyncExecutor(updater, chips.SyncOptions{
		Concurrency: s.cfg.SyncConcurrency,
		Limiter:     s.limiter,
		Retryable:   retryableUpdateError,
		Invalidator: touched,
		Logger:      s.logger.With("user_id", userID),
	})

	v := s.validatorFor(userID)
	result := executor.Sync(ctx, v, predictions, active, gameweek)
	s.releaseValidator(userID, v)

	if len(touched.ids) > 0 {
		s.notifySynced(context.WithoutCancel(ctx), userID, gameweek, touched.ids)
	}
	return result, nil
}

// notifySynced tells the user's clients which predictions changed and how many are still
// missing chips after the sync.
func (s *chipService) notifySynced(ctx context.Context, userID, gameweek int, predictionIDs []int) {
	payload := PredictionsSyncedPayload{Gameweek: gameweek, PredictionIDs: predictionIDs}
	remaining, err := s.Validate(ctx, userID, gameweek)
	if err != nil {
		s.logger.Warn("failed to revalidate after chip sync", "user_id", userID, "gameweek", gameweek, "error", err)
	} else {
		payload.Remaining = &remaining.Count
	}
	s.broadcaster.BroadcastToRoom(live.UserRoom(userID), live.Message{
		Type:    live.MessagePredictionsSynced,
		Payload: payload,
	})
}

// load returns the user's predictions of the gameweek that can still be edited, plus the
// user's active chips. Predictions of started or finished fixtures are left out.
func (s *chipService) load(ctx context.Context, userID, gameweek int) ([]*models.Prediction, models.ActiveChips, error) {
	if gameweek < 1 {
		return nil, nil, ErrInvalidGameweek
	}
	predictions, err := s.predictionRepo.ListByUser(ctx, userID, models.PredictionFilter{Gameweek: &gameweek})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list predictions for chip validation: %w", err)
	}
	active, err := s.ActiveChips(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	open := make([]*models.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.Fixture != nil &&
			(p.Fixture.Status != models.FixtureScheduled || !now.Before(p.Fixture.Deadline(s.cfg.DeadlineBuffer))) {
			continue
		}
		open = append(open, p)
	}
	return open, active, nil
}

func (s *chipService) validatorFor(userID int) *chips.Validator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validatorLocked(userID)
}

func (s *chipService) validatorLocked(userID int) *chips.Validator {
	v, ok := s.validators[userID]
	if !ok {
		v = chips.NewValidator()
		s.validators[userID] = v
	}
	return v
}

// releaseValidator drops the user's validator once it holds no dismissals. A fresh
// validator behaves the same, so only users with live dismissals keep an entry.
func (s *chipService) releaseValidator(userID int, v *chips.Validator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.validators[userID] == v && !v.HasDismissals() {
		delete(s.validators, userID)
	}
}

// checkGameweekOpen rejects changes once the gameweek's first fixture is past its deadline.
func (s *chipService) checkGameweekOpen(ctx context.Context, gameweek int) error {
	if gameweek < 1 {
		return ErrInvalidGameweek
	}
	firstKickoff, err := s.fixtureRepo.FirstKickoff(ctx, gameweek)
	if err != nil {
		if errors.Is(err, repositories.ErrFixtureNotFound) {
			return ErrInvalidGameweek
		}
		return fmt.Errorf("failed to check gameweek %d: %w", gameweek, err)
	}
	if !s.now().Before(firstKickoff.Add(-s.cfg.DeadlineBuffer)) {
		return ErrGameweekLocked
	}
	return nil
}

func retryableUpdateError(err error) bool {
	return !errors.Is(err, repositories.ErrPredictionNotFound) &&
		!errors.Is(err, repositories.ErrPredictionLocked) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// deadlineGuardedUpdater refuses to touch predictions whose fixture kicks off before
// kickoffAfter, in case a fixture locked between loading and updating.
type deadlineGuardedUpdater struct {
	repo         repositories.PredictionRepository
	kickoffAfter time.Time
}

func (u *deadlineGuardedUpdater) UnionChips(ctx context.Context, predictionID int, ids []models.ChipID) error {
	return u.repo.UnionChips(ctx, predictionID, ids, u.kickoffAfter)
}

type syncedPredictions struct {
	mu  sync.Mutex
	ids []int
}

func (i *syncedPredictions) Invalidate(_ context.Context, _ int, predictionIDs []int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ids = append(i.ids, predictionIDs...)
}
