package chips

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Dosada05/prediction-league/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store unavailable")

// memoryStore is a PredictionUpdater over an in-memory prediction table.
type memoryStore struct {
	mu          sync.Mutex
	predictions map[int]*models.Prediction
	failIDs     map[int]error
	failTimes   map[int]int // fail this many times, then succeed
	calls       map[int]int
}

func newMemoryStore(predictions ...*models.Prediction) *memoryStore {
	s := &memoryStore{
		predictions: make(map[int]*models.Prediction),
		failIDs:     make(map[int]error),
		failTimes:   make(map[int]int),
		calls:       make(map[int]int),
	}
	for _, p := range predictions {
		cp := *p
		cp.Chips = append([]models.ChipID(nil), p.Chips...)
		s.predictions[p.ID] = &cp
	}
	return s
}

func (s *memoryStore) UnionChips(_ context.Context, predictionID int, chips []models.ChipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[predictionID]++
	if err, ok := s.failIDs[predictionID]; ok {
		return err
	}
	if s.failTimes[predictionID] > 0 {
		s.failTimes[predictionID]--
		return errStoreDown
	}
	p, ok := s.predictions[predictionID]
	if !ok {
		return errors.New("not found")
	}
	for _, c := range chips {
		if !p.HasChip(c) {
			p.Chips = append(p.Chips, c)
		}
	}
	return nil
}

// list returns copies, the way a refetch from the store would.
func (s *memoryStore) list() []*models.Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Prediction, 0, len(s.predictions))
	for id := 1; len(out) < len(s.predictions); id++ {
		if p, ok := s.predictions[id]; ok {
			cp := *p
			cp.Chips = append([]models.ChipID(nil), p.Chips...)
			out = append(out, &cp)
		}
	}
	return out
}

type recordingInvalidator struct {
	mu    sync.Mutex
	calls [][]int
}

func (r *recordingInvalidator) Invalidate(_ context.Context, _ int, ids []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ids)
}

func newTestExecutor(store PredictionUpdater, inv Invalidator, concurrency int) *SyncExecutor {
	return NewSyncExecutor(store, SyncOptions{
		Concurrency:   concurrency,
		RatePerSecond: 1000,
		MaxRetries:    2,
		Invalidator:   inv,
		newBackOff:    func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
}

func TestSync_AttachesMissingChipAndRevalidates(t *testing.T) {
	store := newMemoryStore(pending(1, 36))
	inv := &recordingInvalidator{}
	exec := newTestExecutor(store, inv, 1)
	v := NewValidator()
	active := models.ActiveChips{36: {models.ChipOpportunist}}

	require.True(t, v.Validate(store.list(), active, 36).ShouldShow)

	res := exec.Sync(context.Background(), v, store.list(), active, 36)

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, []string{"Opportunist"}, res.ChipNames)
	assert.Empty(t, res.Error)
	assert.Equal(t, []models.ChipID{models.ChipOpportunist}, store.list()[0].Chips)
	assert.False(t, v.Validate(store.list(), active, 36).ShouldShow)
	assert.Equal(t, [][]int{{1}}, inv.calls)
}

func TestSync_IsIdempotent(t *testing.T) {
	store := newMemoryStore(pending(1, 2), pending(2, 2, models.ChipWildcard), pending(3, 2))
	exec := newTestExecutor(store, nil, 3)
	active := models.ActiveChips{2: {models.ChipWildcard, models.ChipDefensePlusPlus}}

	first := exec.Sync(context.Background(), nil, store.list(), active, 2)
	require.True(t, first.Success)
	assert.Equal(t, 3, first.Synced)

	second := exec.Sync(context.Background(), nil, store.list(), active, 2)
	assert.True(t, second.Success)
	assert.Zero(t, second.Synced)

	for _, p := range store.list() {
		assert.ElementsMatch(t, []models.ChipID{models.ChipWildcard, models.ChipDefensePlusPlus}, p.Chips)
	}
}

func TestSync_StaleInputDoesNotDuplicateChips(t *testing.T) {
	store := newMemoryStore(pending(1, 2))
	exec := newTestExecutor(store, nil, 1)
	active := models.ActiveChips{2: {models.ChipDoubleDown}}
	stale := store.list()

	exec.Sync(context.Background(), nil, stale, active, 2)
	res := exec.Sync(context.Background(), nil, stale, active, 2)

	assert.True(t, res.Success)
	assert.Equal(t, []models.ChipID{models.ChipDoubleDown}, store.list()[0].Chips)
}

func TestSync_NothingFlagged(t *testing.T) {
	store := newMemoryStore(pending(1, 1))
	inv := &recordingInvalidator{}
	exec := newTestExecutor(store, inv, 1)

	res := exec.Sync(context.Background(), nil, store.list(), nil, 1)

	assert.True(t, res.Success)
	assert.Zero(t, res.Synced)
	assert.Empty(t, inv.calls)
	assert.Zero(t, store.calls[1])
}

func TestSync_PartialFailureReportsProgress(t *testing.T) {
	store := newMemoryStore(pending(1, 8), pending(2, 8), pending(3, 8))
	store.failIDs[2] = errStoreDown
	inv := &recordingInvalidator{}
	exec := NewSyncExecutor(store, SyncOptions{
		Concurrency:   1,
		RatePerSecond: 1000,
		Retryable:     func(error) bool { return false },
		Invalidator:   inv,
		newBackOff:    func() backoff.BackOff { return &backoff.ZeroBackOff{} },
	})
	v := NewValidator()
	active := models.ActiveChips{8: {models.ChipDoubleDown}}

	res := exec.Sync(context.Background(), v, store.list(), active, 8)

	assert.False(t, res.Success)
	assert.Equal(t, 1, res.Synced)
	assert.Equal(t, []int{1}, res.SyncedIDs)
	assert.Equal(t, []int{2}, res.FailedIDs)
	assert.Contains(t, res.Error, "synced 1 of 3 predictions")
	assert.Contains(t, res.Error, errStoreDown.Error())
	assert.Equal(t, 1, store.calls[2], "permanent errors are not retried")
	assert.Zero(t, store.calls[3], "no new updates after a failure")
	require.Len(t, inv.calls, 1, "invalidation happens after partial failure too")

	// Re-validation shows exactly what is still missing.
	res2 := v.Validate(store.list(), active, 8)
	require.Equal(t, 2, res2.Count)
	assert.Equal(t, 2, res2.Predictions[0].Prediction.ID)
	assert.Equal(t, 3, res2.Predictions[1].Prediction.ID)
}

func TestSync_RetriesTransientErrors(t *testing.T) {
	store := newMemoryStore(pending(1, 3))
	store.failTimes[1] = 2
	exec := newTestExecutor(store, nil, 1)

	res := exec.Sync(context.Background(), nil, store.list(), models.ActiveChips{3: {models.ChipWildcard}}, 3)

	assert.True(t, res.Success)
	assert.Equal(t, 3, store.calls[1])
}

func TestSync_GivesUpAfterMaxRetries(t *testing.T) {
	store := newMemoryStore(pending(1, 3))
	store.failTimes[1] = 10
	exec := newTestExecutor(store, nil, 1)

	res := exec.Sync(context.Background(), nil, store.list(), models.ActiveChips{3: {models.ChipWildcard}}, 3)

	assert.False(t, res.Success)
	assert.Zero(t, res.Synced)
	assert.Equal(t, 3, store.calls[1])
}

func TestSync_CanceledContext(t *testing.T) {
	store := newMemoryStore(pending(1, 3), pending(2, 3))
	exec := newTestExecutor(store, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := exec.Sync(ctx, nil, store.list(), models.ActiveChips{3: {models.ChipWildcard}}, 3)

	assert.False(t, res.Success)
	assert.Zero(t, res.Synced)
	assert.Contains(t, res.Error, context.Canceled.Error())
}

func TestSync_RespectsDismissals(t *testing.T) {
	store := newMemoryStore(pending(1, 6), pending(2, 6))
	exec := newTestExecutor(store, nil, 2)
	v := NewValidator()
	active := models.ActiveChips{6: {models.ChipOpportunist}}

	v.Validate(store.list(), active, 6)
	v.MarkDismissed(6, 2)

	res := exec.Sync(context.Background(), v, store.list(), active, 6)

	assert.True(t, res.Success)
	assert.Equal(t, []int{1}, res.SyncedIDs)
	assert.Empty(t, store.list()[1].Chips)
}
