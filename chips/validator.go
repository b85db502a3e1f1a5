package chips

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Dosada05/prediction-league/models"
)

// FlaggedPrediction is a pending prediction that lacks one or more active gameweek chips.
type FlaggedPrediction struct {
	Prediction       *models.Prediction `json:"prediction"`
	MissingChips     []models.ChipID    `json:"missing_chips"`
	MissingChipNames []string           `json:"missing_chip_names"`
}

type ValidationResult struct {
	ShouldShow      bool                `json:"should_show"`
	Predictions     []FlaggedPrediction `json:"predictions"`
	Count           int                 `json:"count"`
	Summary         string              `json:"summary"`
	ActiveChipNames []string            `json:"active_chip_names"`
}

// Validator finds predictions missing gameweek chips and remembers which of them the user
// dismissed. A dismissal lasts until a chip that was not seen before becomes active for
// the same gameweek. Safe for concurrent use.
type Validator struct {
	mu        sync.Mutex
	dismissed map[int]int                     // prediction id -> gameweek
	seen      map[int]map[models.ChipID]bool // gameweek -> chips observed active
}

func NewValidator() *Validator {
	return &Validator{
		dismissed: make(map[int]int),
		seen:      make(map[int]map[models.ChipID]bool),
	}
}

// Validate never fails: empty or malformed input yields ShouldShow == false.
func (v *Validator) Validate(predictions []*models.Prediction, active models.ActiveChips, gameweek int) ValidationResult {
	v.mu.Lock()
	defer v.mu.Unlock()

	activeChips := applicableChips(active[gameweek])
	v.observeLocked(gameweek, activeChips)

	flagged := make([]FlaggedPrediction, 0)
	for _, f := range findMissing(predictions, activeChips, gameweek) {
		if _, ok := v.dismissed[f.Prediction.ID]; ok {
			continue
		}
		flagged = append(flagged, f)
	}

	return buildResult(flagged, activeChips)
}

// MarkDismissed hides the given predictions of a gameweek from subsequent results.
func (v *Validator) MarkDismissed(gameweek int, predictionIDs ...int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, id := range predictionIDs {
		v.dismissed[id] = gameweek
	}
}

// ClearDismissed forgets every dismissal and every observed chip.
func (v *Validator) ClearDismissed() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.dismissed = make(map[int]int)
	v.seen = make(map[int]map[models.ChipID]bool)
}

// ForgetGameweek drops the dismissals and observed chips of one gameweek.
func (v *Validator) ForgetGameweek(gameweek int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.seen, gameweek)
	for id, gw := range v.dismissed {
		if gw == gameweek {
			delete(v.dismissed, id)
		}
	}
}

func (v *Validator) HasDismissals() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.dismissed) > 0
}

func (v *Validator) IsDismissed(predictionID int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.dismissed[predictionID]
	return ok
}

// observeLocked records the active chips of a gameweek and drops that gameweek's
// dismissals when a chip shows up for the first time.
func (v *Validator) observeLocked(gameweek int, activeChips []models.ChipID) {
	known, initialized := v.seen[gameweek]
	if !initialized {
		known = make(map[models.ChipID]bool, len(activeChips))
		v.seen[gameweek] = known
	}

	newChip := false
	for _, id := range activeChips {
		if !known[id] {
			known[id] = true
			newChip = true
		}
	}

	if initialized && newChip {
		for id, gw := range v.dismissed {
			if gw == gameweek {
				delete(v.dismissed, id)
			}
		}
	}
}

// findMissing computes, without any dismissal state, which pending predictions of the
// gameweek lack some of the active chips.
func findMissing(predictions []*models.Prediction, activeChips []models.ChipID, gameweek int) []FlaggedPrediction {
	if len(activeChips) == 0 || len(predictions) == 0 {
		return nil
	}

	var flagged []FlaggedPrediction
	for _, p := range predictions {
		if p == nil || p.Gameweek != gameweek || !isPending(p) {
			continue
		}
		var missing []models.ChipID
		for _, id := range activeChips {
			if !p.HasChip(id) {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 {
			continue
		}
		flagged = append(flagged, FlaggedPrediction{
			Prediction:       p,
			MissingChips:     missing,
			MissingChipNames: Names(missing),
		})
	}
	return flagged
}

// applicableChips keeps known gameweek-applicable chips, de-duplicated, in input order.
func applicableChips(ids []models.ChipID) []models.ChipID {
	out := make([]models.ChipID, 0, len(ids))
	seen := make(map[models.ChipID]bool, len(ids))
	for _, id := range ids {
		if seen[id] || !IsGameweekApplicable(id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func isPending(p *models.Prediction) bool {
	switch p.Status {
	case models.PredictionPending:
		return true
	case models.PredictionCompleted:
		return false
	default:
		return p.IsPending()
	}
}

func buildResult(flagged []FlaggedPrediction, activeChips []models.ChipID) ValidationResult {
	result := ValidationResult{
		ShouldShow:      len(flagged) > 0,
		Predictions:     flagged,
		Count:           len(flagged),
		ActiveChipNames: Names(activeChips),
	}
	if result.ShouldShow {
		noun := "predictions are"
		if result.Count == 1 {
			noun = "prediction is"
		}
		result.Summary = fmt.Sprintf("%d %s missing %s", result.Count, noun, strings.Join(Names(missingUnion(flagged)), ", "))
	}
	return result
}

// missingUnion collects missing chips across flagged predictions, first occurrence order.
func missingUnion(flagged []FlaggedPrediction) []models.ChipID {
	var out []models.ChipID
	seen := make(map[models.ChipID]bool)
	for _, f := range flagged {
		for _, id := range f.MissingChips {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
