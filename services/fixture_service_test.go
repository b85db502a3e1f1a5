package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFixtureServiceForTest(store *memStore) (FixtureService, *fakeBroadcaster, *memTx) {
	b := &fakeBroadcaster{}
	tx := &memTx{}
	return NewFixtureService(memFixtures{store}, memPredictions{store}, tx, b, quietLogger()), b, tx
}

func TestFixtureService_RecordResultSettlesPoints(t *testing.T) {
	store := newMemStore()
	svc, broadcaster, tx := newFixtureServiceForTest(store)
	ctx := context.Background()

	f := store.seedFixture(36, time.Now().Add(-2*time.Hour))
	exact := store.seedPrediction(1, f.ID, 2, 1, models.ChipDoubleDown)
	outcome := store.seedPrediction(2, f.ID, 3, 0)
	wrong := store.seedPrediction(3, f.ID, 0, 2)

	updated, err := svc.RecordResult(ctx, f.ID, models.FixtureResult{
		HomeScore: 2, AwayScore: 1, HomeScorers: []string{"Saka", " "}, AwayScorers: []string{"Son"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.FixtureCompleted, updated.Status)
	assert.Equal(t, []string{"Saka"}, updated.HomeScorers)
	assert.Equal(t, 1, tx.calls)

	points := func(id int) int {
		p := store.predictions[id]
		require.NotNil(t, p.Points, "prediction %d not settled", id)
		return *p.Points
	}
	assert.Equal(t, 20, points(exact.ID))
	assert.Equal(t, 5, points(outcome.ID))
	assert.Equal(t, 0, points(wrong.ID))

	msgs := broadcaster.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, live.GameweekRoom(36), msgs[0].Room)
	assert.Equal(t, live.MessageResultRecorded, msgs[0].Message.Type)
	payload, ok := msgs[0].Message.Payload.(ResultRecordedPayload)
	require.True(t, ok)
	assert.Equal(t, 3, payload.SettledPredictions)
}

func TestFixtureService_RecordResultValidation(t *testing.T) {
	store := newMemStore()
	svc, broadcaster, _ := newFixtureServiceForTest(store)
	ctx := context.Background()
	f := store.seedFixture(1, time.Now())

	_, err := svc.RecordResult(ctx, f.ID, models.FixtureResult{HomeScore: 1, AwayScore: 0, HomeScorers: []string{"A", "B"}})
	assert.ErrorIs(t, err, ErrTooManyScorers)

	_, err = svc.RecordResult(ctx, f.ID, models.FixtureResult{HomeScore: -1})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.RecordResult(ctx, 404, models.FixtureResult{})
	assert.ErrorIs(t, err, ErrFixtureNotFound)

	assert.Empty(t, broadcaster.all())
}

func TestFixtureService_CreateAndCurrentGameweek(t *testing.T) {
	store := newMemStore()
	svc, _, _ := newFixtureServiceForTest(store)
	ctx := context.Background()

	_, err := svc.CurrentGameweek(ctx)
	assert.ErrorIs(t, err, ErrNoFixtures)

	kickoff := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	ref := " ext-1 "
	f1, err := svc.Create(ctx, CreateFixtureInput{Gameweek: 37, HomeTeam: "Arsenal", AwayTeam: "Spurs", KickoffAt: kickoff, ExternalRef: &ref})
	require.NoError(t, err)
	require.NotNil(t, f1.ExternalRef)
	assert.Equal(t, "ext-1", *f1.ExternalRef)

	_, err = svc.Create(ctx, CreateFixtureInput{Gameweek: 38, HomeTeam: "Chelsea", AwayTeam: "Fulham", KickoffAt: kickoff.Add(7 * 24 * time.Hour)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateFixtureInput{Gameweek: 38, HomeTeam: "Leeds", AwayTeam: "Everton", KickoffAt: kickoff, ExternalRef: &ref})
	assert.ErrorIs(t, err, ErrFixtureExternalRefConflict)

	_, err = svc.Create(ctx, CreateFixtureInput{Gameweek: 38, HomeTeam: "Leeds", AwayTeam: "leeds", KickoffAt: kickoff})
	assert.ErrorIs(t, err, ErrValidationFailed)

	gw, err := svc.CurrentGameweek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 37, gw)

	_, err = svc.RecordResult(ctx, f1.ID, models.FixtureResult{HomeScore: 0, AwayScore: 0})
	require.NoError(t, err)
	gw, err = svc.CurrentGameweek(ctx)
	require.NoError(t, err)
	assert.Equal(t, 38, gw)

	fixtures, err := svc.ListByGameweek(ctx, 38)
	require.NoError(t, err)
	assert.Len(t, fixtures, 1)

	_, err = svc.ListByGameweek(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidGameweek)
}
