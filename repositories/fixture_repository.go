package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrFixtureNotFound            = errors.New("fixture not found")
	ErrFixtureExternalRefConflict = errors.New("fixture external reference conflict")
	ErrNoFixtures                 = errors.New("no fixtures scheduled")
)

type FixtureRepository interface {
	Create(ctx context.Context, fixture *models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	ListByGameweek(ctx context.Context, gameweek int) ([]*models.Fixture, error)
	// ListAwaitingResult returns scheduled fixtures with an external reference whose kickoff is before the given time.
	ListAwaitingResult(ctx context.Context, kickoffBefore time.Time) ([]*models.Fixture, error)
	SetResult(ctx context.Context, exec SQLExecutor, id int, result models.FixtureResult) error
	CurrentGameweek(ctx context.Context) (int, error)
	FirstKickoff(ctx context.Context, gameweek int) (time.Time, error)
}

type postgresFixtureRepository struct {
	db *sql.DB
}

func NewPostgresFixtureRepository(db *sql.DB) FixtureRepository {
	return &postgresFixtureRepository{db: db}
}

const fixtureColumns = `id, gameweek, home_team, away_team, kickoff_at, status, home_score, away_score,
	home_scorers, away_scorers, external_ref, created_at`

func scanFixture(row rowScanner) (*models.Fixture, error) {
	var f models.Fixture
	var homeScore, awayScore sql.NullInt64
	var homeScorers, awayScorers []string
	var externalRef sql.NullString
	err := row.Scan(
		&f.ID, &f.Gameweek, &f.HomeTeam, &f.AwayTeam, &f.KickoffAt, &f.Status,
		&homeScore, &awayScore, pq.Array(&homeScorers), pq.Array(&awayScorers), &externalRef, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if homeScore.Valid {
		v := int(homeScore.Int64)
		f.HomeScore = &v
	}
	if awayScore.Valid {
		v := int(awayScore.Int64)
		f.AwayScore = &v
	}
	f.HomeScorers = homeScorers
	f.AwayScorers = awayScorers
	if externalRef.Valid {
		f.ExternalRef = &externalRef.String
	}
	return &f, nil
}

func (r *postgresFixtureRepository) Create(ctx context.Context, fixture *models.Fixture) error {
	if fixture.Status == "" {
		fixture.Status = models.FixtureScheduled
	}
	query := `
		INSERT INTO fixtures (gameweek, home_team, away_team, kickoff_at, status, external_ref)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		fixture.Gameweek,
		fixture.HomeTeam,
		fixture.AwayTeam,
		fixture.KickoffAt,
		fixture.Status,
		fixture.ExternalRef,
	).Scan(&fixture.ID, &fixture.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "fixtures_external_ref_key" {
			return ErrFixtureExternalRefConflict
		}
		return fmt.Errorf("failed to insert fixture: %w", err)
	}
	return nil
}

func (r *postgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE id = $1`
	f, err := scanFixture(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFixtureNotFound
		}
		return nil, fmt.Errorf("failed to scan fixture by id %d: %w", id, err)
	}
	return f, nil
}

func (r *postgresFixtureRepository) ListByGameweek(ctx context.Context, gameweek int) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE gameweek = $1 ORDER BY kickoff_at ASC, id ASC`
	return r.list(ctx, query, gameweek)
}

func (r *postgresFixtureRepository) ListAwaitingResult(ctx context.Context, kickoffBefore time.Time) ([]*models.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures
		WHERE status = $1 AND external_ref IS NOT NULL AND kickoff_at < $2
		ORDER BY kickoff_at ASC, id ASC`
	return r.list(ctx, query, models.FixtureScheduled, kickoffBefore)
}

func (r *postgresFixtureRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Fixture, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	fixtures := make([]*models.Fixture, 0)
	for rows.Next() {
		f, scanErr := scanFixture(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan fixture row: %w", scanErr)
		}
		fixtures = append(fixtures, f)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during fixture rows iteration: %w", err)
	}
	return fixtures, nil
}

func (r *postgresFixtureRepository) SetResult(ctx context.Context, exec SQLExecutor, id int, result models.FixtureResult) error {
	query := `
		UPDATE fixtures
		SET status = $1, home_score = $2, away_score = $3, home_scorers = $4, away_scorers = $5
		WHERE id = $6`
	res, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		models.FixtureCompleted,
		result.HomeScore,
		result.AwayScore,
		pq.Array(nonNil(result.HomeScorers)),
		pq.Array(nonNil(result.AwayScorers)),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to set result for fixture %d: %w", id, err)
	}
	return checkAffectedRows(res, ErrFixtureNotFound)
}

// CurrentGameweek is the lowest gameweek that still has a scheduled fixture, or the
// last gameweek once everything is played.
func (r *postgresFixtureRepository) CurrentGameweek(ctx context.Context) (int, error) {
	query := `
		SELECT COALESCE(
			(SELECT MIN(gameweek) FROM fixtures WHERE status = $1),
			(SELECT MAX(gameweek) FROM fixtures)
		)`
	var gameweek sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, models.FixtureScheduled).Scan(&gameweek); err != nil {
		return 0, fmt.Errorf("failed to query current gameweek: %w", err)
	}
	if !gameweek.Valid {
		return 0, ErrNoFixtures
	}
	return int(gameweek.Int64), nil
}

func (r *postgresFixtureRepository) FirstKickoff(ctx context.Context, gameweek int) (time.Time, error) {
	var kickoff sql.NullTime
	err := r.db.QueryRowContext(ctx, `SELECT MIN(kickoff_at) FROM fixtures WHERE gameweek = $1`, gameweek).Scan(&kickoff)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query first kickoff of gameweek %d: %w", gameweek, err)
	}
	if !kickoff.Valid {
		return time.Time{}, ErrFixtureNotFound
	}
	return kickoff.Time, nil
}
