package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
)

const (
	joinCodeBytes    = 4
	joinCodeAttempts = 5
	maxLeagueName    = 64
)

type LeagueService interface {
	Create(ctx context.Context, ownerID int, name string) (*models.League, error)
	Join(ctx context.Context, userID int, code string) (*models.League, error)
	ListForUser(ctx context.Context, userID int) ([]*models.League, error)
	Standings(ctx context.Context, leagueID, userID int) ([]*models.LeagueStanding, error)
}

type leagueService struct {
	leagueRepo repositories.LeagueRepository
	tx         repositories.Transactor
	newCode    func() (string, error)
}

func NewLeagueService(leagueRepo repositories.LeagueRepository, tx repositories.Transactor) LeagueService {
	return &leagueService{
		leagueRepo: leagueRepo,
		tx:         tx,
		newCode:    generateJoinCode,
	}
}

func (s *leagueService) Create(ctx context.Context, ownerID int, name string) (*models.League, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrLeagueNameRequired
	}
	if len(name) > maxLeagueName {
		return nil, ErrValidationFailed
	}

	for attempt := 1; attempt <= joinCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}
		league := &models.League{Name: name, OwnerID: ownerID, JoinCode: code}

		err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
			if err := s.leagueRepo.Create(ctx, exec, league); err != nil {
				return err
			}
			return s.leagueRepo.AddMember(ctx, exec, league.ID, ownerID)
		})
		if errors.Is(err, repositories.ErrLeagueJoinCodeConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create league: %w", err)
		}
		league.MemberCount = 1
		return league, nil
	}
	return nil, fmt.Errorf("failed to create league: no free join code after %d attempts", joinCodeAttempts)
}

func (s *leagueService) Join(ctx context.Context, userID int, code string) (*models.League, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrValidationFailed
	}
	league, err := s.leagueRepo.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to find league by code: %w", err)
	}

	if err := s.leagueRepo.AddMember(ctx, nil, league.ID, userID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrLeagueMemberConflict):
			return nil, ErrAlreadyLeagueMember
		case errors.Is(err, repositories.ErrLeagueNotFound):
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to join league %d: %w", league.ID, err)
	}
	league.MemberCount++
	return league, nil
}

func (s *leagueService) ListForUser(ctx context.Context, userID int) ([]*models.League, error) {
	leagues, err := s.leagueRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues for user %d: %w", userID, err)
	}
	return leagues, nil
}

func (s *leagueService) Standings(ctx context.Context, leagueID, userID int) ([]*models.LeagueStanding, error) {
	if _, err := s.leagueRepo.GetByID(ctx, leagueID); err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to get league %d: %w", leagueID, err)
	}
	member, err := s.leagueRepo.IsMember(ctx, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, ErrNotLeagueMember
	}

	standings, err := s.leagueRepo.Standings(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings for league %d: %w", leagueID, err)
	}
	RankStandings(standings)
	return standings, nil
}

// RankStandings sorts by points, exact scores, then correct outcomes (all descending) and
// user id. Rows equal on the three scoring keys share a rank; the next rank skips (1, 1, 3).
func RankStandings(standings []*models.LeagueStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.ExactScores != b.ExactScores {
			return a.ExactScores > b.ExactScores
		}
		if a.CorrectOutcomes != b.CorrectOutcomes {
			return a.CorrectOutcomes > b.CorrectOutcomes
		}
		return a.UserID < b.UserID
	})
	for i, st := range standings {
		if i > 0 && sameStandingKey(standings[i-1], st) {
			st.Rank = standings[i-1].Rank
			continue
		}
		st.Rank = i + 1
	}
}

func sameStandingKey(a, b *models.LeagueStanding) bool {
	return a.Points == b.Points && a.ExactScores == b.ExactScores && a.CorrectOutcomes == b.CorrectOutcomes
}

func generateJoinCode() (string, error) {
	b := make([]byte, joinCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
