package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// maxINR bounds amounts decoded from clients so they convert to int64 exactly
const maxINR = 1 << 53

// CandidateOption is one generated itinerary shape
type CandidateOption struct {
	CandidateID        int     `json:"candidate_id"`
	DailyActivityHours float64 `json:"daily_activity_hours"`
	RestDays           int     `json:"rest_days"`
	SightseeingDensity float64 `json:"sightseeing_density"`
	EstimatedBudget    int64   `json:"estimated_budget"`
	TravelFatigueScore float64 `json:"travel_fatigue_score"`
}

// UnmarshalJSON accepts a fractional estimated_budget and rounds it to
// whole rupees
func (c *CandidateOption) UnmarshalJSON(data []byte) error {
	type plain CandidateOption
	aux := struct {
		*plain
		EstimatedBudget float64 `json:"estimated_budget"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if math.Abs(aux.EstimatedBudget) > maxINR {
		return fmt.Errorf("estimated_budget out of range: %v", aux.EstimatedBudget)
	}
	c.EstimatedBudget = RoundINR(aux.EstimatedBudget)
	return nil
}

// RoundINR rounds an amount half up to whole rupees
func RoundINR(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}

// ScoringBreakdown lists the components behind an itinerary score
type ScoringBreakdown struct {
	SafetyCompliance     float64 `json:"safety_compliance"`
	FatiguePenalty       float64 `json:"fatigue_penalty"`
	BudgetDeviation      float64 `json:"budget_deviation"`
	BudgetPenalty        float64 `json:"budget_penalty"`
	ActivityBalanceBonus float64 `json:"activity_balance_bonus"`
	RestDayBonus         float64 `json:"rest_day_bonus"`
}

// ItineraryCandidate is a scored CandidateOption
type ItineraryCandidate struct {
	Candidate        CandidateOption  `json:"candidate"`
	ItineraryScore   float64          `json:"itinerary_score"`
	ScoringBreakdown ScoringBreakdown `json:"scoring_breakdown"`
}

// CandidatesResponse is the getCandidates payload
type CandidatesResponse struct {
	TripID     string               `json:"tripId"`
	Candidates []ItineraryCandidate `json:"candidates"`
}
