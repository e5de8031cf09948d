package oracle

import (
	"context"
	"strings"

	"safar/internal/model"
	"safar/internal/utils"
)

// Per person per day rates used when no model answers
const (
	BudgetDailyRate   = 4500
	StandardDailyRate = 6000
)

const fallbackConfidence = 0.5

var fallbackDestinations = map[string]model.Recommendation{
	"Varanasi": {
		Destination: "Varanasi",
		Confidence:  fallbackConfidence,
		Reason:      "While chaotic outside, the early morning boat rides offer profound stillness.",
	},
	"Sikkim": {
		Destination: "Sikkim",
		Confidence:  fallbackConfidence,
		Reason:      "Monasteries, organic kitchens and mountain air at an unhurried pace.",
	},
	"Hampta Pass": {
		Destination: "Hampta Pass",
		Confidence:  fallbackConfidence,
		Reason:      "A moderate high-altitude crossing with big rewards for a first trek.",
	},
}

// Fallback answers every prediction with fixed arithmetic and rules
type Fallback struct{}

// PredictBudget implements BudgetPredictor
func (Fallback) PredictBudget(_ context.Context, features FeatureSet) (float64, error) {
	return float64(FallbackBudget(features.NumDays, features.NumPeople, features.ComfortLevel)), nil
}

// RecommendDestination implements DestinationRecommender
func (Fallback) RecommendDestination(_ context.Context, query VibeQuery) ([]model.Recommendation, error) {
	return []model.Recommendation{fallbackDestinations[FallbackDestination(query)]}, nil
}

// FallbackBudget is days * people * daily rate for the comfort level
func FallbackBudget(days, people int, comfortLevel string) int64 {
	rate := StandardDailyRate
	if comfortLevel == model.ComfortBudget {
		rate = BudgetDailyRate
	}
	return int64(days) * int64(people) * int64(rate)
}

// FallbackDestination picks a destination by simple rules, first match wins:
// thrills, then nature, then culture or food, then a fast pace outside the
// monsoon. Everything else goes to Varanasi. A missing focus is inferred
// from the vibe text.
func FallbackDestination(query VibeQuery) string {
	focus := utils.NormalizeFocus(query.Focus)
	if focus == "" {
		focus = utils.InferFocus(query.Vibe)
	}

	switch focus {
	case utils.FocusThrills:
		return "Hampta Pass"
	case utils.FocusNature:
		return "Sikkim"
	case utils.FocusCulture, utils.FocusFood:
		return "Varanasi"
	}

	if strings.EqualFold(query.Pace, "Fast") && !strings.EqualFold(query.Season, "Monsoon") {
		return "Hampta Pass"
	}
	return "Varanasi"
}
