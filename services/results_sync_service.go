package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/prediction-league/feed"
	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

// ResultsFeed is the external source of final scores. *feed.Client implements it.
type ResultsFeed interface {
	Results(ctx context.Context, gameweek int) ([]feed.MatchResult, error)
}

type ResultsSyncService interface {
	// Run records results for every started fixture the feed reports as finished and
	// returns how many fixtures were completed.
	Run(ctx context.Context) (int, error)
}

type resultsSyncService struct {
	feed           ResultsFeed
	fixtureRepo    repositories.FixtureRepository
	fixtureService FixtureService
	logger         *slog.Logger
	now            clock
}

func NewResultsSyncService(
	resultsFeed ResultsFeed,
	fixtureRepo repositories.FixtureRepository,
	fixtureService FixtureService,
	logger *slog.Logger,
) ResultsSyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultsSyncService{
		feed:           resultsFeed,
		fixtureRepo:    fixtureRepo,
		fixtureService: fixtureService,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *resultsSyncService) Run(ctx context.Context) (int, error) {
	awaiting, err := s.fixtureRepo.ListAwaitingResult(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list fixtures awaiting results: %w", err)
	}
	if len(awaiting) == 0 {
		return 0, nil
	}

	byGameweek := make(map[int]map[string]*models.Fixture)
	for _, f := range awaiting {
		if f.ExternalRef == nil {
			continue
		}
		if byGameweek[f.Gameweek] == nil {
			byGameweek[f.Gameweek] = make(map[string]*models.Fixture)
		}
		byGameweek[f.Gameweek][*f.ExternalRef] = f
	}
	gameweeks := make([]int, 0, len(byGameweek))
	for gw := range byGameweek {
		gameweeks = append(gameweeks, gw)
	}
	sort.Ints(gameweeks)

	recorded := 0
	var errs []error
	for _, gw := range gameweeks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		results, err := s.feed.Results(ctx, gw)
		if err != nil {
			errs = append(errs, fmt.Errorf("gameweek %d: %w", gw, err))
			continue
		}
		for _, match := range results {
			fixture, ok := byGameweek[gw][match.Ref]
			if !ok || !match.Finished() {
				continue
			}
			_, err := s.fixtureService.RecordResult(ctx, fixture.ID, models.FixtureResult{
				HomeScore:   match.HomeScore,
				AwayScore:   match.AwayScore,
				HomeScorers: match.HomeScorers,
				AwayScorers: match.AwayScorers,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("fixture %d (%s): %w", fixture.ID, match.Ref, err))
				continue
			}
			recorded++
		}
	}

	if recorded > 0 {
		s.logger.Info("results imported from feed", "recorded", recorded, "awaiting", len(awaiting))
	}
	return recorded, errors.Join(errs...)
}
