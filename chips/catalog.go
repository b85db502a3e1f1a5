// Package chips holds the chip catalog and reconciles saved predictions with the chips a
// user activated for a whole gameweek.
package chips

import "github.com/Dosada05/prediction-league/models"

var catalog = []models.Chip{
	{
		ID:                 models.ChipDoubleDown,
		Name:               "Double Down",
		Description:        "Doubles the points of the prediction.",
		Scope:              models.ChipScopePrediction,
		Effect:             models.ChipEffectMultiplier,
		GameweekApplicable: true,
	},
	{
		ID:                 models.ChipWildcard,
		Name:               "Wildcard",
		Description:        "Triples the points of the prediction.",
		Scope:              models.ChipScopePrediction,
		Effect:             models.ChipEffectMultiplier,
		GameweekApplicable: true,
	},
	{
		ID:                 models.ChipOpportunist,
		Name:               "Opportunist",
		Description:        "Adds a flat 15 points bonus.",
		Scope:              models.ChipScopePrediction,
		Effect:             models.ChipEffectFlatBonus,
		GameweekApplicable: true,
	},
	{
		ID:          models.ChipScorerFocus,
		Name:        "Scorer Focus",
		Description: "Doubles only the goalscorer points.",
		Scope:       models.ChipScopePrediction,
		Effect:      models.ChipEffectScopedMultiplier,
	},
	{
		ID:                 models.ChipDefensePlusPlus,
		Name:               "Defense++",
		Description:        "Adds 10 points when a predicted clean sheet is kept.",
		Scope:              models.ChipScopePrediction,
		Effect:             models.ChipEffectFlatBonus,
		GameweekApplicable: true,
	},
	{
		ID:                 models.ChipAllInWeek,
		Name:               "All-In Week",
		Description:        "Doubles the points of every prediction in the gameweek.",
		Scope:              models.ChipScopeGameweek,
		Effect:             models.ChipEffectMultiplier,
		GameweekApplicable: true,
	},
}

var catalogByID = func() map[models.ChipID]models.Chip {
	m := make(map[models.ChipID]models.Chip, len(catalog))
	for _, c := range catalog {
		m[c.ID] = c
	}
	return m
}()

// Catalog returns a copy of all known chips.
func Catalog() []models.Chip {
	out := make([]models.Chip, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(id models.ChipID) (models.Chip, bool) {
	c, ok := catalogByID[id]
	return c, ok
}

func IsKnown(id models.ChipID) bool {
	_, ok := catalogByID[id]
	return ok
}

// IsGameweekApplicable reports whether activating id for a gameweek should be mirrored onto
// the gameweek's predictions.
func IsGameweekApplicable(id models.ChipID) bool {
	c, ok := catalogByID[id]
	return ok && c.GameweekApplicable
}

// Names maps chip ids to display names. Unknown ids fall back to the raw id.
func Names(ids []models.ChipID) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if c, ok := catalogByID[id]; ok {
			names = append(names, c.Name)
			continue
		}
		names = append(names, string(id))
	}
	return names
}
