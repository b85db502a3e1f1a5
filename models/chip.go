package models

import "time"

// ChipID идентификатор фишки (соответствует значениям в БД и в API).
type ChipID string

const (
	ChipDoubleDown      ChipID = "doubleDown"
	ChipWildcard        ChipID = "wildcard"
	ChipOpportunist     ChipID = "opportunist"
	ChipScorerFocus     ChipID = "scorerFocus"
	ChipDefensePlusPlus ChipID = "defensePlusPlus"
	ChipAllInWeek       ChipID = "allInWeek"
)

type ChipScope string

const (
	ChipScopePrediction ChipScope = "prediction"
	ChipScopeGameweek   ChipScope = "gameweek"
)

type ChipEffect string

const (
	ChipEffectMultiplier       ChipEffect = "multiplier"
	ChipEffectFlatBonus        ChipEffect = "flat_bonus"
	ChipEffectScopedMultiplier ChipEffect = "scoped_multiplier"
)

// Chip describes a scoring modifier from the catalog.
type Chip struct {
	ID          ChipID     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Scope       ChipScope  `json:"scope"`
	Effect      ChipEffect `json:"effect"`
	// GameweekApplicable reports whether a gameweek-wide activation is mirrored
	// onto every pending prediction of that gameweek.
	GameweekApplicable bool `json:"gameweek_applicable"`
}

// ActiveGameweekChip is a chip a user toggled on for a whole gameweek.
type ActiveGameweekChip struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	Gameweek    int       `json:"gameweek" db:"gameweek"`
	ChipID      ChipID    `json:"chip_id" db:"chip_id"`
	ActivatedAt time.Time `json:"activated_at" db:"activated_at"`
}

// ActiveChips maps gameweek -> chips active for that gameweek.
type ActiveChips map[int][]ChipID

// GroupActiveChips builds the gameweek lookup, dropping duplicates.
func GroupActiveChips(rows []*ActiveGameweekChip) ActiveChips {
	result := make(ActiveChips)
	seen := make(map[int]map[ChipID]bool)
	for _, row := range rows {
		if row == nil {
			continue
		}
		if seen[row.Gameweek] == nil {
			seen[row.Gameweek] = make(map[ChipID]bool)
		}
		if seen[row.Gameweek][row.ChipID] {
			continue
		}
		seen[row.Gameweek][row.ChipID] = true
		result[row.Gameweek] = append(result[row.Gameweek], row.ChipID)
	}
	return result
}
