package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/lib/pq"
)

var (
	ErrPredictionNotFound       = errors.New("prediction not found")
	ErrPredictionFixtureInvalid = errors.New("prediction references a missing fixture or user")
	ErrPredictionLocked         = errors.New("prediction fixture is past its deadline")
)

type PredictionRepository interface {
	// Upsert creates the prediction or overwrites the user's existing one for the same fixture.
	Upsert(ctx context.Context, prediction *models.Prediction) error
	GetByID(ctx context.Context, id int) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID int, filter models.PredictionFilter) ([]*models.Prediction, error)
	ListByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) ([]*models.Prediction, error)
	Update(ctx context.Context, prediction *models.Prediction) error
	// UnionChips adds chips to the prediction's chip set, keeping existing order and never duplicating.
	// Only predictions of scheduled fixtures kicking off after kickoffAfter are touched;
	// otherwise ErrPredictionLocked is returned.
	UnionChips(ctx context.Context, id int, chips []models.ChipID, kickoffAfter time.Time) error
	SetPoints(ctx context.Context, exec SQLExecutor, id int, points int) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionSelect = `
	SELECT
		p.id, p.user_id, p.fixture_id, p.home_score, p.away_score,
		p.home_scorers, p.away_scorers, p.chips, p.points, p.created_at, p.updated_at,
		f.id, f.gameweek, f.home_team, f.away_team, f.kickoff_at, f.status, f.home_score, f.away_score,
		f.home_scorers, f.away_scorers, f.external_ref, f.created_at
	FROM predictions p
	JOIN fixtures f ON f.id = p.fixture_id`

func scanPrediction(row rowScanner) (*models.Prediction, error) {
	var p models.Prediction
	var f models.Fixture
	var homeScorers, awayScorers, chips []string
	var points sql.NullInt64
	var fHomeScore, fAwayScore sql.NullInt64
	var fHomeScorers, fAwayScorers []string
	var externalRef sql.NullString

	err := row.Scan(
		&p.ID, &p.UserID, &p.FixtureID, &p.HomeScore, &p.AwayScore,
		pq.Array(&homeScorers), pq.Array(&awayScorers), pq.Array(&chips), &points, &p.CreatedAt, &p.UpdatedAt,
		&f.ID, &f.Gameweek, &f.HomeTeam, &f.AwayTeam, &f.KickoffAt, &f.Status, &fHomeScore, &fAwayScore,
		pq.Array(&fHomeScorers), pq.Array(&fAwayScorers), &externalRef, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.HomeScorers = homeScorers
	p.AwayScorers = awayScorers
	p.Chips = stringsToChips(chips)
	if points.Valid {
		v := int(points.Int64)
		p.Points = &v
	}
	if fHomeScore.Valid {
		v := int(fHomeScore.Int64)
		f.HomeScore = &v
	}
	if fAwayScore.Valid {
		v := int(fAwayScore.Int64)
		f.AwayScore = &v
	}
	f.HomeScorers = fHomeScorers
	f.AwayScorers = fAwayScorers
	if externalRef.Valid {
		f.ExternalRef = &externalRef.String
	}

	p.Gameweek = f.Gameweek
	p.Fixture = &f
	p.ApplyResult(&f)
	return &p, nil
}

func (r *postgresPredictionRepository) Upsert(ctx context.Context, prediction *models.Prediction) error {
	query := `
		INSERT INTO predictions (user_id, fixture_id, home_score, away_score, home_scorers, away_scorers, chips)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT ON CONSTRAINT predictions_user_fixture_key DO UPDATE
		SET home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			home_scorers = EXCLUDED.home_scorers,
			away_scorers = EXCLUDED.away_scorers,
			chips = EXCLUDED.chips,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		prediction.UserID,
		prediction.FixtureID,
		prediction.HomeScore,
		prediction.AwayScore,
		pq.Array(nonNil(prediction.HomeScorers)),
		pq.Array(nonNil(prediction.AwayScorers)),
		pq.Array(chipsToStrings(prediction.Chips)),
	).Scan(&prediction.ID, &prediction.CreatedAt, &prediction.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" { // foreign_key_violation
			return ErrPredictionFixtureInvalid
		}
		return fmt.Errorf("failed to upsert prediction: %w", err)
	}
	return nil
}

func (r *postgresPredictionRepository) GetByID(ctx context.Context, id int) (*models.Prediction, error) {
	p, err := scanPrediction(r.db.QueryRowContext(ctx, predictionSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPredictionNotFound
		}
		return nil, fmt.Errorf("failed to scan prediction by id %d: %w", id, err)
	}
	return p, nil
}

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID int, filter models.PredictionFilter) ([]*models.Prediction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(predictionSelect)
	queryBuilder.WriteString(` WHERE p.user_id = $1`)

	args := []interface{}{userID}
	argID := 2

	if filter.Gameweek != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND f.gameweek = $%d", argID))
		args = append(args, *filter.Gameweek)
		argID++
	}
	if filter.Status != nil {
		fixtureStatus := models.FixtureScheduled
		if *filter.Status == models.PredictionCompleted {
			fixtureStatus = models.FixtureCompleted
		}
		queryBuilder.WriteString(fmt.Sprintf(" AND f.status = $%d", argID))
		args = append(args, fixtureStatus)
	}
	queryBuilder.WriteString(` ORDER BY f.gameweek ASC, f.kickoff_at ASC, p.id ASC`)

	return r.list(ctx, r.db, queryBuilder.String(), args...)
}

func (r *postgresPredictionRepository) ListByFixture(ctx context.Context, exec SQLExecutor, fixtureID int) ([]*models.Prediction, error) {
	return r.list(ctx, getExecutor(r.db, exec), predictionSelect+` WHERE p.fixture_id = $1 ORDER BY p.id ASC`, fixtureID)
}

func (r *postgresPredictionRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Prediction, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]*models.Prediction, 0)
	for rows.Next() {
		p, scanErr := scanPrediction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", scanErr)
		}
		predictions = append(predictions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during prediction rows iteration: %w", err)
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) Update(ctx context.Context, prediction *models.Prediction) error {
	query := `
		UPDATE predictions
		SET home_score = $1, away_score = $2, home_scorers = $3, away_scorers = $4, chips = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query,
		prediction.HomeScore,
		prediction.AwayScore,
		pq.Array(nonNil(prediction.HomeScorers)),
		pq.Array(nonNil(prediction.AwayScorers)),
		pq.Array(chipsToStrings(prediction.Chips)),
		prediction.ID,
	).Scan(&prediction.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPredictionNotFound
		}
		return fmt.Errorf("failed to update prediction %d: %w", prediction.ID, err)
	}
	return nil
}

func (r *postgresPredictionRepository) UnionChips(ctx context.Context, id int, chips []models.ChipID, kickoffAfter time.Time) error {
	// Порядок существующих фишек сохраняется, новые добавляются в конец.
	query := `
		UPDATE predictions p
		SET chips = ARRAY(
				SELECT c
				FROM unnest(p.chips || $1::text[]) WITH ORDINALITY AS t(c, n)
				GROUP BY c
				ORDER BY MIN(n)
			),
			updated_at = NOW()
		FROM fixtures f
		WHERE p.id = $2
		  AND f.id = p.fixture_id
		  AND f.status = $3
		  AND f.kickoff_at > $4`
	result, err := r.db.ExecContext(ctx, query,
		pq.Array(chipsToStrings(chips)), id, string(models.FixtureScheduled), kickoffAfter)
	if err != nil {
		return fmt.Errorf("failed to union chips for prediction %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM predictions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check prediction %d: %w", id, err)
	}
	if exists {
		return ErrPredictionLocked
	}
	return ErrPredictionNotFound
}

func (r *postgresPredictionRepository) SetPoints(ctx context.Context, exec SQLExecutor, id int, points int) error {
	result, err := getExecutor(r.db, exec).ExecContext(ctx,
		`UPDATE predictions SET points = $1 WHERE id = $2`, points, id)
	if err != nil {
		return fmt.Errorf("failed to set points for prediction %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}
