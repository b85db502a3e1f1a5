package chips

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultSyncConcurrency = 4
	defaultSyncRate        = 10
	defaultMaxRetries      = 3
)

// PredictionUpdater adds chips to a stored prediction. Implementations must use union
// semantics: adding a chip that is already present is a no-op.
type PredictionUpdater interface {
	UnionChips(ctx context.Context, predictionID int, chips []models.ChipID) error
}

// Invalidator is told which predictions changed so cached copies get refetched.
type Invalidator interface {
	Invalidate(ctx context.Context, gameweek int, predictionIDs []int)
}

type SyncResult struct {
	Success   bool     `json:"success"`
	Synced    int      `json:"synced"`
	ChipNames []string `json:"chip_names"`
	Error     string   `json:"error,omitempty"`
	SyncedIDs []int    `json:"synced_ids,omitempty"`
	FailedIDs []int    `json:"failed_ids,omitempty"`
}

type SyncOptions struct {
	Concurrency   int
	RatePerSecond float64
	MaxRetries    uint64
	// Retryable decides whether an update error is worth retrying. Nil retries everything
	// except context cancellation.
	Retryable   func(error) bool
	Invalidator Invalidator
	// Limiter is shared between executors when set; otherwise one is built from RatePerSecond.
	Limiter *rate.Limiter
	Logger  *slog.Logger
	// newBackOff is overridden in tests to avoid real sleeps.
	newBackOff func() backoff.BackOff
}

// SyncExecutor attaches missing gameweek chips to flagged predictions.
type SyncExecutor struct {
	updater     PredictionUpdater
	invalidator Invalidator
	limiter     *rate.Limiter
	concurrency int
	maxRetries  uint64
	retryable   func(error) bool
	newBackOff  func() backoff.BackOff
	logger      *slog.Logger
}

func NewSyncExecutor(updater PredictionUpdater, opts SyncOptions) *SyncExecutor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultSyncConcurrency
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = defaultSyncRate
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.Retryable == nil {
		opts.Retryable = func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}
	}
	if opts.newBackOff == nil {
		opts.newBackOff = func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxElapsedTime = 5 * time.Second
			return b
		}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Concurrency)
	}

	return &SyncExecutor{
		updater:     updater,
		invalidator: opts.Invalidator,
		limiter:     opts.Limiter,
		concurrency: opts.Concurrency,
		maxRetries:  opts.MaxRetries,
		retryable:   opts.Retryable,
		newBackOff:  opts.newBackOff,
		logger:      opts.Logger,
	}
}

// Sync recomputes the flagged predictions (respecting v's dismissals when v is non-nil)
// and unions each one's chips with the active gameweek chips. It never returns an error:
// failures are reported in the result. The predictions slice is not modified; callers
// refetch after the invalidation signal.
func (e *SyncExecutor) Sync(ctx context.Context, v *Validator, predictions []*models.Prediction, active models.ActiveChips, gameweek int) SyncResult {
	var flagged []FlaggedPrediction
	if v != nil {
		flagged = v.Validate(predictions, active, gameweek).Predictions
	} else {
		flagged = findMissing(predictions, applicableChips(active[gameweek]), gameweek)
	}

	result := SyncResult{
		ChipNames: Names(missingUnion(flagged)),
	}
	if len(flagged) == 0 {
		result.Success = true
		return result
	}

	var (
		mu       sync.Mutex
		synced   []int
		failed   []int
		firstErr error
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for _, f := range flagged {
		f := f
		g.Go(func() error {
			// После первой неудачи новые обновления не запускаем
			if gCtx.Err() != nil {
				return nil
			}
			if err := e.limiter.Wait(gCtx); err != nil {
				return nil
			}
			// Uses the parent ctx so in-flight updates finish even after a sibling failed.
			err := e.updateWithRetry(ctx, f.Prediction.ID, f.MissingChips)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed = append(failed, f.Prediction.ID)
				if firstErr == nil {
					firstErr = fmt.Errorf("prediction %d: %w", f.Prediction.ID, err)
				}
				return err
			}
			synced = append(synced, f.Prediction.ID)
			return nil
		})
	}
	_ = g.Wait()

	sort.Ints(synced)
	sort.Ints(failed)
	result.Synced = len(synced)
	result.SyncedIDs = synced
	result.FailedIDs = failed

	switch {
	case firstErr != nil:
		result.Error = fmt.Sprintf("synced %d of %d predictions: %v", len(synced), len(flagged), firstErr)
	case len(synced) < len(flagged):
		// Ничего не упало, но контекст отменили до того, как все обновления стартовали
		cause := ctx.Err()
		if cause == nil {
			cause = errors.New("sync interrupted")
		}
		result.Error = fmt.Sprintf("synced %d of %d predictions: %v", len(synced), len(flagged), cause)
	default:
		result.Success = true
	}

	if !result.Success {
		e.logger.Warn("chip sync incomplete",
			slog.Int("gameweek", gameweek),
			slog.Int("synced", result.Synced),
			slog.Int("flagged", len(flagged)),
			slog.String("error", result.Error))
	} else {
		e.logger.Info("chip sync complete",
			slog.Int("gameweek", gameweek),
			slog.Int("synced", result.Synced),
			slog.Any("chips", result.ChipNames))
	}

	if e.invalidator != nil {
		e.invalidator.Invalidate(context.WithoutCancel(ctx), gameweek, synced)
	}
	return result
}

func (e *SyncExecutor) updateWithRetry(ctx context.Context, predictionID int, chips []models.ChipID) error {
	operation := func() error {
		err := e.updater.UnionChips(ctx, predictionID, chips)
		if err != nil && !e.retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), e.maxRetries), ctx)
	return backoff.Retry(operation, policy)
}
