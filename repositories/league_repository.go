package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrLeagueNotFound         = errors.New("league not found")
	ErrLeagueJoinCodeConflict = errors.New("league join code conflict")
	ErrLeagueMemberConflict   = errors.New("user is already a league member")
)

type LeagueRepository interface {
	Create(ctx context.Context, exec SQLExecutor, league *models.League) error
	AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error
	GetByID(ctx context.Context, id int) (*models.League, error)
	GetByJoinCode(ctx context.Context, code string) (*models.League, error)
	ListForUser(ctx context.Context, userID int) ([]*models.League, error)
	IsMember(ctx context.Context, leagueID, userID int) (bool, error)
	// Standings returns unranked rows for every member; settled points only.
	Standings(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error)
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) Create(ctx context.Context, exec SQLExecutor, league *models.League) error {
	query := `
		INSERT INTO leagues (name, owner_id, join_code)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query, league.Name, league.OwnerID, league.JoinCode).
		Scan(&league.ID, &league.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "leagues_join_code_key" {
			return ErrLeagueJoinCodeConflict
		}
		return fmt.Errorf("failed to insert league: %w", err)
	}
	return nil
}

func (r *postgresLeagueRepository) AddMember(ctx context.Context, exec SQLExecutor, leagueID, userID int) error {
	_, err := getExecutor(r.db, exec).ExecContext(ctx,
		`INSERT INTO league_members (league_id, user_id) VALUES ($1, $2)`, leagueID, userID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case "23505":
				return ErrLeagueMemberConflict
			case "23503":
				return ErrLeagueNotFound
			}
		}
		return fmt.Errorf("failed to add league member: %w", err)
	}
	return nil
}

const leagueSelect = `
	SELECT l.id, l.name, l.owner_id, l.join_code, l.created_at,
		(SELECT COUNT(*) FROM league_members m WHERE m.league_id = l.id)
	FROM leagues l`

func scanLeague(row rowScanner) (*models.League, error) {
	var l models.League
	if err := row.Scan(&l.ID, &l.Name, &l.OwnerID, &l.JoinCode, &l.CreatedAt, &l.MemberCount); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	return r.getOne(ctx, leagueSelect+` WHERE l.id = $1`, id)
}

func (r *postgresLeagueRepository) GetByJoinCode(ctx context.Context, code string) (*models.League, error) {
	return r.getOne(ctx, leagueSelect+` WHERE l.join_code = $1`, code)
}

func (r *postgresLeagueRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.League, error) {
	l, err := scanLeague(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league: %w", err)
	}
	return l, nil
}

func (r *postgresLeagueRepository) ListForUser(ctx context.Context, userID int) ([]*models.League, error) {
	query := leagueSelect + `
		JOIN league_members lm ON lm.league_id = l.id
		WHERE lm.user_id = $1
		ORDER BY l.created_at ASC, l.id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues for user %d: %w", userID, err)
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		l, scanErr := scanLeague(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", scanErr)
		}
		leagues = append(leagues, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during league rows iteration: %w", err)
	}
	return leagues, nil
}

func (r *postgresLeagueRepository) IsMember(ctx context.Context, leagueID, userID int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM league_members WHERE league_id = $1 AND user_id = $2)`,
		leagueID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check league membership: %w", err)
	}
	return exists, nil
}

func (r *postgresLeagueRepository) Standings(ctx context.Context, leagueID int) ([]*models.LeagueStanding, error) {
	query := `
		SELECT
			u.id,
			u.nickname,
			COALESCE(SUM(p.points), 0),
			COUNT(p.id) FILTER (WHERE f.status = $2),
			COUNT(p.id) FILTER (WHERE f.status = $2
				AND p.home_score = f.home_score AND p.away_score = f.away_score),
			COUNT(p.id) FILTER (WHERE f.status = $2
				AND SIGN(p.home_score - p.away_score) = SIGN(f.home_score - f.away_score))
		FROM league_members lm
		JOIN users u ON u.id = lm.user_id
		LEFT JOIN predictions p ON p.user_id = u.id
		LEFT JOIN fixtures f ON f.id = p.fixture_id
		WHERE lm.league_id = $1
		GROUP BY u.id, u.nickname`
	rows, err := r.db.QueryContext(ctx, query, leagueID, models.FixtureCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	standings := make([]*models.LeagueStanding, 0)
	for rows.Next() {
		var s models.LeagueStanding
		if err := rows.Scan(&s.UserID, &s.Nickname, &s.Points, &s.Predictions, &s.ExactScores, &s.CorrectOutcomes); err != nil {
			return nil, fmt.Errorf("failed to scan standing row: %w", err)
		}
		standings = append(standings, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during standing rows iteration: %w", err)
	}
	return standings, nil
}
