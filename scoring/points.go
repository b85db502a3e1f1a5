// Package scoring computes the points a prediction earns once its fixture has a result.
package scoring

import "github.com/Dosada05/prediction-league/models"

const (
	ExactScorePoints     = 10
	CorrectOutcomePoints = 5
	ScorerPoints         = 2
	OpportunistBonus     = 15
	DefenseBonus         = 10
)

// multiplierPriority lists multiplier chips from strongest to weakest. Only the first
// one found on a prediction is applied.
var multiplierPriority = []models.ChipID{
	models.ChipWildcard,
	models.ChipDoubleDown,
	models.ChipAllInWeek,
	models.ChipScorerFocus,
}

// Breakdown explains how a prediction's total was reached.
type Breakdown struct {
	ScorePoints      int           `json:"score_points"`
	ScorerPoints     int           `json:"scorer_points"`
	MatchedScorers   int           `json:"matched_scorers"`
	ExactScore       bool          `json:"exact_score"`
	CorrectOutcome   bool          `json:"correct_outcome"`
	Multiplier       models.ChipID `json:"multiplier,omitempty"`
	MultipliedPoints int           `json:"multiplied_points"`
	OpportunistBonus int           `json:"opportunist_bonus"`
	DefenseBonus     int           `json:"defense_bonus"`
	Total            int           `json:"total"`
}

// Calculate returns the points for p. ok is false while the actual score is unknown.
func Calculate(p *models.Prediction) (points int, ok bool) {
	b, ok := Explain(p)
	if !ok {
		return 0, false
	}
	return b.Total, true
}

// Explain is Calculate with the intermediate components kept.
func Explain(p *models.Prediction) (Breakdown, bool) {
	if p == nil || p.ActualHomeScore == nil || p.ActualAwayScore == nil {
		return Breakdown{}, false
	}
	actualHome, actualAway := *p.ActualHomeScore, *p.ActualAwayScore

	var b Breakdown
	if validScore(p.HomeScore, p.AwayScore) && validScore(actualHome, actualAway) {
		switch {
		case p.HomeScore == actualHome && p.AwayScore == actualAway:
			b.ExactScore = true
			b.CorrectOutcome = true
			b.ScorePoints = ExactScorePoints
		case outcome(p.HomeScore, p.AwayScore) == outcome(actualHome, actualAway):
			b.CorrectOutcome = true
			b.ScorePoints = CorrectOutcomePoints
		}
	}

	b.MatchedScorers = matchScorers(p.HomeScorers, p.ActualHomeScorers) +
		matchScorers(p.AwayScorers, p.ActualAwayScorers)
	b.ScorerPoints = b.MatchedScorers * ScorerPoints

	base := b.ScorePoints + b.ScorerPoints
	b.Multiplier = pickMultiplier(p.Chips)
	switch b.Multiplier {
	case models.ChipWildcard:
		b.MultipliedPoints = base * 3
	case models.ChipDoubleDown, models.ChipAllInWeek:
		b.MultipliedPoints = base * 2
	case models.ChipScorerFocus:
		b.MultipliedPoints = b.ScorePoints + b.ScorerPoints*2
	default:
		b.MultipliedPoints = base
	}

	if hasChip(p.Chips, models.ChipOpportunist) {
		b.OpportunistBonus = OpportunistBonus
	}
	if hasChip(p.Chips, models.ChipDefensePlusPlus) && cleanSheetCalled(p.HomeScore, p.AwayScore, actualHome, actualAway) {
		b.DefenseBonus = DefenseBonus
	}

	b.Total = max(0, b.MultipliedPoints+b.OpportunistBonus+b.DefenseBonus)
	return b, true
}

func validScore(home, away int) bool {
	return home >= 0 && away >= 0
}

// outcome: 1 home win, -1 away win, 0 draw.
func outcome(home, away int) int {
	switch {
	case home > away:
		return 1
	case home < away:
		return -1
	default:
		return 0
	}
}

// matchScorers counts the multiset intersection of predicted and actual names, so a name
// predicted twice only earns twice if it appears twice in the result.
func matchScorers(predicted, actual []string) int {
	if len(predicted) == 0 || len(actual) == 0 {
		return 0
	}
	remaining := make(map[string]int, len(actual))
	for _, name := range actual {
		if name != "" {
			remaining[name]++
		}
	}
	matched := 0
	for _, name := range predicted {
		if remaining[name] > 0 {
			remaining[name]--
			matched++
		}
	}
	return matched
}

func pickMultiplier(chips []models.ChipID) models.ChipID {
	for _, candidate := range multiplierPriority {
		if hasChip(chips, candidate) {
			return candidate
		}
	}
	return ""
}

func hasChip(chips []models.ChipID, id models.ChipID) bool {
	for _, c := range chips {
		if c == id {
			return true
		}
	}
	return false
}

// cleanSheetCalled is true when a side was predicted to concede nothing and did not.
func cleanSheetCalled(predHome, predAway, actualHome, actualAway int) bool {
	return (predAway == 0 && actualAway == 0) || (predHome == 0 && actualHome == 0)
}
