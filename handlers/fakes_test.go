package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/Dosada05/prediction-league/chips"
	"github.com/Dosada05/prediction-league/middleware"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/services"
	"github.com/go-chi/chi/v5"
)

type fakeAuthService struct {
	user *models.User
	err  error
}

func (f *fakeAuthService) Register(_ context.Context, input services.RegisterInput) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: 1, Nickname: input.Nickname, Email: input.Email, Role: models.RolePlayer}, nil
}

func (f *fakeAuthService) Login(context.Context, services.LoginInput) (*models.User, error) {
	return f.user, f.err
}

type fakeUserService struct {
	gotContentType string
	gotBody        []byte
	err            error
}

func (f *fakeUserService) GetProfile(_ context.Context, userID int) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.User{ID: userID, Nickname: "neo"}, nil
}

func (f *fakeUserService) UploadAvatar(_ context.Context, userID int, contentType string, file io.Reader) (*models.User, error) {
	f.gotContentType = contentType
	f.gotBody, _ = io.ReadAll(file)
	if f.err != nil {
		return nil, f.err
	}
	url := "https://cdn.example.com/avatars/1.png"
	return &models.User{ID: userID, AvatarURL: &url}, nil
}

type fakeFixtureService struct {
	current      int
	currentErr   error
	listGameweek int
	fixtures     []*models.Fixture
	err          error
}

func (f *fakeFixtureService) Create(_ context.Context, input services.CreateFixtureInput) (*models.Fixture, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Fixture{ID: 1, Gameweek: input.Gameweek, HomeTeam: input.HomeTeam, AwayTeam: input.AwayTeam}, nil
}

func (f *fakeFixtureService) GetByID(_ context.Context, id int) (*models.Fixture, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Fixture{ID: id}, nil
}

func (f *fakeFixtureService) ListByGameweek(_ context.Context, gameweek int) ([]*models.Fixture, error) {
	f.listGameweek = gameweek
	return f.fixtures, f.err
}

func (f *fakeFixtureService) CurrentGameweek(context.Context) (int, error) {
	return f.current, f.currentErr
}

func (f *fakeFixtureService) RecordResult(_ context.Context, fixtureID int, result models.FixtureResult) (*models.Fixture, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Fixture{ID: fixtureID, Status: models.FixtureCompleted, HomeScore: &result.HomeScore, AwayScore: &result.AwayScore}, nil
}

type fakePredictionService struct {
	gotUserID int
	gotFilter models.PredictionFilter
	gotInput  services.PredictionInput
	err       error
}

func (f *fakePredictionService) Submit(_ context.Context, userID int, input services.PredictionInput) (*models.Prediction, error) {
	f.gotUserID, f.gotInput = userID, input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Prediction{ID: 10, UserID: userID, FixtureID: input.FixtureID, HomeScore: input.HomeScore, AwayScore: input.AwayScore}, nil
}

func (f *fakePredictionService) Update(_ context.Context, userID, predictionID int, input services.PredictionInput) (*models.Prediction, error) {
	f.gotUserID, f.gotInput = userID, input
	if f.err != nil {
		return nil, f.err
	}
	return &models.Prediction{ID: predictionID, UserID: userID}, nil
}

func (f *fakePredictionService) List(_ context.Context, userID int, filter models.PredictionFilter) ([]*models.Prediction, error) {
	f.gotUserID, f.gotFilter = userID, filter
	return []*models.Prediction{}, f.err
}

func (f *fakePredictionService) Get(_ context.Context, userID, predictionID int) (*services.PredictionDetails, error) {
	f.gotUserID = userID
	if f.err != nil {
		return nil, f.err
	}
	return &services.PredictionDetails{Prediction: &models.Prediction{ID: predictionID, UserID: userID}}, nil
}

type fakeChipService struct {
	gotUserID   int
	gotGameweek int
	gotChip     models.ChipID
	gotIDs      []int
	syncResult  chips.SyncResult
	err         error
}

func (f *fakeChipService) ListCatalog() []models.Chip { return chips.Catalog() }

func (f *fakeChipService) Activate(_ context.Context, userID, gameweek int, chipID models.ChipID) (*models.ActiveGameweekChip, error) {
	f.gotUserID, f.gotGameweek, f.gotChip = userID, gameweek, chipID
	if f.err != nil {
		return nil, f.err
	}
	return &models.ActiveGameweekChip{ID: 1, UserID: userID, Gameweek: gameweek, ChipID: chipID}, nil
}

func (f *fakeChipService) Deactivate(_ context.Context, userID, gameweek int, chipID models.ChipID) error {
	f.gotUserID, f.gotGameweek, f.gotChip = userID, gameweek, chipID
	return f.err
}

func (f *fakeChipService) ActiveChips(context.Context, int) (models.ActiveChips, error) {
	return models.ActiveChips{}, f.err
}

func (f *fakeChipService) Validate(_ context.Context, userID, gameweek int) (chips.ValidationResult, error) {
	f.gotUserID, f.gotGameweek = userID, gameweek
	return chips.ValidationResult{}, f.err
}

func (f *fakeChipService) Dismiss(_ context.Context, userID, gameweek int, ids []int) (chips.ValidationResult, error) {
	f.gotUserID, f.gotGameweek, f.gotIDs = userID, gameweek, ids
	return chips.ValidationResult{}, f.err
}

func (f *fakeChipService) Sync(_ context.Context, userID, gameweek int) (chips.SyncResult, error) {
	f.gotUserID, f.gotGameweek = userID, gameweek
	return f.syncResult, f.err
}

type fakeLeagueService struct {
	gotCode string
	err     error
}

func (f *fakeLeagueService) Create(_ context.Context, ownerID int, name string) (*models.League, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.League{ID: 1, Name: name, OwnerID: ownerID, JoinCode: "ABCD1234", MemberCount: 1}, nil
}

func (f *fakeLeagueService) Join(_ context.Context, _ int, code string) (*models.League, error) {
	f.gotCode = code
	if f.err != nil {
		return nil, f.err
	}
	return &models.League{ID: 1, JoinCode: code, MemberCount: 2}, nil
}

func (f *fakeLeagueService) ListForUser(context.Context, int) ([]*models.League, error) {
	return []*models.League{}, f.err
}

func (f *fakeLeagueService) Standings(context.Context, int, int) ([]*models.LeagueStanding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*models.LeagueStanding{{UserID: 1, Nickname: "neo", Points: 42, Rank: 1}}, nil
}

// serve runs the handler behind a chi route so URL params resolve, with claims for userID (0 = anonymous).
func serve(method, pattern, target string, body string, userID int, h http.HandlerFunc) *httptest.ResponseRecorder {
	router := chi.NewRouter()
	router.MethodFunc(method, pattern, h)

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID > 0 {
		req = req.WithContext(middleware.WithClaims(req.Context(), userID, models.RolePlayer))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}
