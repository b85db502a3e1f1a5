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
	ErrActiveChipNotFound = errors.New("active chip not found")
	ErrActiveChipConflict = errors.New("chip is already active for this gameweek")
)

type ActiveChipRepository interface {
	Activate(ctx context.Context, chip *models.ActiveGameweekChip) error
	Deactivate(ctx context.Context, userID, gameweek int, chipID models.ChipID) error
	ListByUser(ctx context.Context, userID int) ([]*models.ActiveGameweekChip, error)
}

type postgresActiveChipRepository struct {
	db *sql.DB
}

func NewPostgresActiveChipRepository(db *sql.DB) ActiveChipRepository {
	return &postgresActiveChipRepository{db: db}
}

func (r *postgresActiveChipRepository) Activate(ctx context.Context, chip *models.ActiveGameweekChip) error {
	query := `
		INSERT INTO active_gameweek_chips (user_id, gameweek, chip_id)
		VALUES ($1, $2, $3)
		RETURNING id, activated_at`
	err := r.db.QueryRowContext(ctx, query, chip.UserID, chip.Gameweek, chip.ChipID).
		Scan(&chip.ID, &chip.ActivatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == "active_gameweek_chips_user_gameweek_chip_key" {
			return ErrActiveChipConflict
		}
		return fmt.Errorf("failed to activate chip: %w", err)
	}
	return nil
}

func (r *postgresActiveChipRepository) Deactivate(ctx context.Context, userID, gameweek int, chipID models.ChipID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM active_gameweek_chips WHERE user_id = $1 AND gameweek = $2 AND chip_id = $3`,
		userID, gameweek, chipID)
	if err != nil {
		return fmt.Errorf("failed to deactivate chip: %w", err)
	}
	return checkAffectedRows(result, ErrActiveChipNotFound)
}

func (r *postgresActiveChipRepository) ListByUser(ctx context.Context, userID int) ([]*models.ActiveGameweekChip, error) {
	query := `
		SELECT id, user_id, gameweek, chip_id, activated_at
		FROM active_gameweek_chips
		WHERE user_id = $1
		ORDER BY gameweek ASC, activated_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active chips: %w", err)
	}
	defer rows.Close()

	chips := make([]*models.ActiveGameweekChip, 0)
	for rows.Next() {
		var c models.ActiveGameweekChip
		if err := rows.Scan(&c.ID, &c.UserID, &c.Gameweek, &c.ChipID, &c.ActivatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan active chip row: %w", err)
		}
		chips = append(chips, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during active chip rows iteration: %w", err)
	}
	return chips, nil
}
