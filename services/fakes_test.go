package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/live"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/storage"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory stand-in for every repository, sharing state so that
// predictions see their fixtures the way the SQL joins do.
type memStore struct {
	mu sync.Mutex

	nextID      int
	users       map[int]*models.User
	fixtures    map[int]*models.Fixture
	predictions map[int]*models.Prediction
	activeChips []*models.ActiveGameweekChip
	leagues     map[int]*models.League
	members     map[int][]int

	unionErr   map[int]error
	unionCalls map[int]int
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int]*models.User),
		fixtures:    make(map[int]*models.Fixture),
		predictions: make(map[int]*models.Prediction),
		leagues:     make(map[int]*models.League),
		members:     make(map[int][]int),
		unionErr:    make(map[int]error),
		unionCalls:  make(map[int]int),
	}
}

func (m *memStore) id() int {
	m.nextID++
	return m.nextID
}

func copyStrings(s []string) []string {
	return append([]string(nil), s...)
}

// --- users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
		if u.Nickname == user.Nickname {
			return repositories.ErrUserNicknameConflict
		}
	}
	user.ID = r.id()
	user.CreatedAt = time.Now()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r memUsers) UpdateAvatarKey(_ context.Context, id int, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.AvatarKey = key
	return nil
}

// --- fixtures

type memFixtures struct{ *memStore }

func (r memFixtures) Create(_ context.Context, f *models.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f.ExternalRef != nil {
		for _, existing := range r.fixtures {
			if existing.ExternalRef != nil && *existing.ExternalRef == *f.ExternalRef {
				return repositories.ErrFixtureExternalRefConflict
			}
		}
	}
	if f.Status == "" {
		f.Status = models.FixtureScheduled
	}
	f.ID = r.id()
	cp := *f
	r.fixtures[f.ID] = &cp
	return nil
}

func (r memFixtures) GetByID(_ context.Context, id int) (*models.Fixture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fixtures[id]
	if !ok {
		return nil, repositories.ErrFixtureNotFound
	}
	cp := *f
	return &cp, nil
}

func (r memFixtures) ListByGameweek(_ context.Context, gameweek int) ([]*models.Fixture, error) {
	return r.filter(func(f *models.Fixture) bool { return f.Gameweek == gameweek }), nil
}

func (r memFixtures) ListAwaitingResult(_ context.Context, before time.Time) ([]*models.Fixture, error) {
	return r.filter(func(f *models.Fixture) bool {
		return f.Status == models.FixtureScheduled && f.ExternalRef != nil && f.KickoffAt.Before(before)
	}), nil
}

func (r memFixtures) filter(keep func(*models.Fixture) bool) []*models.Fixture {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Fixture, 0)
	for _, f := range r.fixtures {
		if keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memFixtures) SetResult(_ context.Context, _ repositories.SQLExecutor, id int, result models.FixtureResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fixtures[id]
	if !ok {
		return repositories.ErrFixtureNotFound
	}
	home, away := result.HomeScore, result.AwayScore
	f.Status = models.FixtureCompleted
	f.HomeScore = &home
	f.AwayScore = &away
	f.HomeScorers = copyStrings(result.HomeScorers)
	f.AwayScorers = copyStrings(result.AwayScorers)
	return nil
}

func (r memFixtures) CurrentGameweek(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	minScheduled, maxAny := 0, 0
	for _, f := range r.fixtures {
		if f.Gameweek > maxAny {
			maxAny = f.Gameweek
		}
		if f.Status == models.FixtureScheduled && (minScheduled == 0 || f.Gameweek < minScheduled) {
			minScheduled = f.Gameweek
		}
	}
	switch {
	case minScheduled > 0:
		return minScheduled, nil
	case maxAny > 0:
		return maxAny, nil
	}
	return 0, repositories.ErrNoFixtures
}

func (r memFixtures) FirstKickoff(_ context.Context, gameweek int) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first time.Time
	for _, f := range r.fixtures {
		if f.Gameweek == gameweek && (first.IsZero() || f.KickoffAt.Before(first)) {
			first = f.KickoffAt
		}
	}
	if first.IsZero() {
		return time.Time{}, repositories.ErrFixtureNotFound
	}
	return first, nil
}

// --- predictions

type memPredictions struct{ *memStore }

// hydrateLocked returns a copy joined with its fixture.
func (r memPredictions) hydrateLocked(p *models.Prediction) *models.Prediction {
	cp := *p
	cp.HomeScorers = copyStrings(p.HomeScorers)
	cp.AwayScorers = copyStrings(p.AwayScorers)
	cp.Chips = append([]models.ChipID(nil), p.Chips...)
	if f, ok := r.fixtures[p.FixtureID]; ok {
		fc := *f
		cp.Gameweek = f.Gameweek
		cp.Fixture = &fc
		cp.ApplyResult(&fc)
	}
	return &cp
}

func (r memPredictions) Upsert(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fixtures[p.FixtureID]; !ok {
		return repositories.ErrPredictionFixtureInvalid
	}
	for _, existing := range r.predictions {
		if existing.UserID == p.UserID && existing.FixtureID == p.FixtureID {
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			p.UpdatedAt = time.Now()
			cp := *p
			r.predictions[p.ID] = &cp
			return nil
		}
	}
	p.ID = r.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	r.predictions[p.ID] = &cp
	return nil
}

func (r memPredictions) GetByID(_ context.Context, id int) (*models.Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.predictions[id]
	if !ok {
		return nil, repositories.ErrPredictionNotFound
	}
	return r.hydrateLocked(p), nil
}

func (r memPredictions) ListByUser(_ context.Context, userID int, filter models.PredictionFilter) ([]*models.Prediction, error) {
	return r.list(func(p *models.Prediction) bool {
		if p.UserID != userID {
			return false
		}
		if filter.Gameweek != nil && p.Gameweek != *filter.Gameweek {
			return false
		}
		if filter.Status != nil && p.Status != *filter.Status {
			return false
		}
		return true
	}), nil
}

func (r memPredictions) ListByFixture(_ context.Context, _ repositories.SQLExecutor, fixtureID int) ([]*models.Prediction, error) {
	return r.list(func(p *models.Prediction) bool { return p.FixtureID == fixtureID }), nil
}

func (r memPredictions) list(keep func(*models.Prediction) bool) []*models.Prediction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Prediction, 0)
	for _, p := range r.predictions {
		h := r.hydrateLocked(p)
		if keep(h) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memPredictions) Update(_ context.Context, p *models.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.predictions[p.ID]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	existing.HomeScore = p.HomeScore
	existing.AwayScore = p.AwayScore
	existing.HomeScorers = copyStrings(p.HomeScorers)
	existing.AwayScorers = copyStrings(p.AwayScorers)
	existing.Chips = append([]models.ChipID(nil), p.Chips...)
	existing.UpdatedAt = time.Now()
	return nil
}

func (r memPredictions) UnionChips(_ context.Context, id int, chips []models.ChipID, kickoffAfter time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unionCalls[id]++
	if err := r.unionErr[id]; err != nil {
		return err
	}
	p, ok := r.predictions[id]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	f, ok := r.fixtures[p.FixtureID]
	if !ok || f.Status != models.FixtureScheduled || !f.KickoffAt.After(kickoffAfter) {
		return repositories.ErrPredictionLocked
	}
	for _, c := range chips {
		if !p.HasChip(c) {
			p.Chips = append(p.Chips, c)
		}
	}
	return nil
}

func (r memPredictions) SetPoints(_ context.Context, _ repositories.SQLExecutor, id int, points int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.predictions[id]
	if !ok {
		return repositories.ErrPredictionNotFound
	}
	p.Points = &points
	return nil
}

// --- active chips

type memActiveChips struct{ *memStore }

func (r memActiveChips) Activate(_ context.Context, c *models.ActiveGameweekChip) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.activeChips {
		if existing.UserID == c.UserID && existing.Gameweek == c.Gameweek && existing.ChipID == c.ChipID {
			return repositories.ErrActiveChipConflict
		}
	}
	c.ID = r.id()
	c.ActivatedAt = time.Now()
	cp := *c
	r.activeChips = append(r.activeChips, &cp)
	return nil
}

func (r memActiveChips) Deactivate(_ context.Context, userID, gameweek int, chipID models.ChipID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.activeChips {
		if existing.UserID == userID && existing.Gameweek == gameweek && existing.ChipID == chipID {
			r.activeChips = append(r.activeChips[:i], r.activeChips[i+1:]...)
			return nil
		}
	}
	return repositories.ErrActiveChipNotFound
}

func (r memActiveChips) ListByUser(_ context.Context, userID int) ([]*models.ActiveGameweekChip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ActiveGameweekChip, 0)
	for _, c := range r.activeChips {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- leagues

type memLeagues struct {
	*memStore
	standings map[int][]*models.LeagueStanding
}

func (r memLeagues) Create(_ context.Context, _ repositories.SQLExecutor, l *models.League) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.leagues {
		if existing.JoinCode == l.JoinCode {
			return repositories.ErrLeagueJoinCodeConflict
		}
	}
	l.ID = r.id()
	l.CreatedAt = time.Now()
	cp := *l
	r.leagues[l.ID] = &cp
	return nil
}

func (r memLeagues) AddMember(_ context.Context, _ repositories.SQLExecutor, leagueID, userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leagues[leagueID]; !ok {
		return repositories.ErrLeagueNotFound
	}
	for _, id := range r.members[leagueID] {
		if id == userID {
			return repositories.ErrLeagueMemberConflict
		}
	}
	r.members[leagueID] = append(r.members[leagueID], userID)
	return nil
}

func (r memLeagues) withCountLocked(l *models.League) *models.League {
	cp := *l
	cp.MemberCount = len(r.members[l.ID])
	return &cp
}

func (r memLeagues) GetByID(_ context.Context, id int) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	return r.withCountLocked(l), nil
}

func (r memLeagues) GetByJoinCode(_ context.Context, code string) (*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.leagues {
		if strings.EqualFold(l.JoinCode, code) {
			return r.withCountLocked(l), nil
		}
	}
	return nil, repositories.ErrLeagueNotFound
}

func (r memLeagues) ListForUser(_ context.Context, userID int) ([]*models.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.League, 0)
	for id, members := range r.members {
		for _, m := range members {
			if m == userID {
				out = append(out, r.withCountLocked(r.leagues[id]))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memLeagues) IsMember(_ context.Context, leagueID, userID int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members[leagueID] {
		if m == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r memLeagues) Standings(_ context.Context, leagueID int) ([]*models.LeagueStanding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LeagueStanding, 0)
	for _, s := range r.standings[leagueID] {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

// --- infrastructure

type memTx struct{ calls int }

func (t *memTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.calls++
	return fn(nil)
}

type recordedMessage struct {
	Room    string
	Message live.Message
}

type fakeBroadcaster struct {
	mu       sync.Mutex
	messages []recordedMessage
}

func (b *fakeBroadcaster) BroadcastToRoom(room string, message live.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, recordedMessage{Room: room, Message: message})
}

func (b *fakeBroadcaster) all() []recordedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedMessage(nil), b.messages...)
}

type fakeUploader struct {
	objects   map[string]string
	uploadErr error
	deleted   []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.objects[key] = string(data)
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return fmt.Sprintf("https://cdn.example.com/%s", key)
}

// seedFixture stores a scheduled fixture kicking off at kickoff.
func (m *memStore) seedFixture(gameweek int, kickoff time.Time) *models.Fixture {
	f := &models.Fixture{Gameweek: gameweek, HomeTeam: "Arsenal", AwayTeam: "Spurs", KickoffAt: kickoff}
	_ = memFixtures{m}.Create(context.Background(), f)
	return f
}

func (m *memStore) seedPrediction(userID, fixtureID, home, away int, chips ...models.ChipID) *models.Prediction {
	p := &models.Prediction{UserID: userID, FixtureID: fixtureID, HomeScore: home, AwayScore: away, Chips: chips}
	_ = memPredictions{m}.Upsert(context.Background(), p)
	return p
}
