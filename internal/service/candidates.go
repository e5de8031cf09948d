package service

import (
	"math/rand/v2"
	"sync"
	"time"

	"safar/internal/model"
)

// candidateShape is one fixed itinerary template
type candidateShape struct {
	hours      float64
	restDays   int
	density    float64
	multiplier float64
	fatigue    float64
}

// Balanced, intense and relaxed, in that order
var candidateShapes = [...]candidateShape{
	{hours: 6, restDays: 1, density: 1.0, multiplier: 0.98, fatigue: 2.4},
	{hours: 8, restDays: 0, density: 1.4, multiplier: 1.15, fatigue: 4.8},
	{hours: 4, restDays: 2, density: 0.7, multiplier: 0.78, fatigue: 0},
}

// Score bounds. The jittered terms stand in for a real optimizer.
const (
	scoreBase            = 0.8
	scoreJitter          = 0.2
	maxFatiguePenalty    = 0.15
	maxBudgetDeviation   = 0.1
	maxBudgetPenalty     = 0.05
	safetyCompliance     = 1.0
	activityBalanceBonus = 0.05
	restDayBonus         = 0.05
)

// CandidateScorer generates the three itinerary candidates for a budget
type CandidateScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewCandidateScorer creates a scorer; a nil rng is seeded from the clock
func NewCandidateScorer(rng *rand.Rand) *CandidateScorer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &CandidateScorer{rng: rng}
}

// Candidates returns exactly three scored candidates for budget
func (s *CandidateScorer) Candidates(budget float64) []model.ItineraryCandidate {
	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := make([]model.ItineraryCandidate, 0, len(candidateShapes))
	for i, shape := range candidateShapes {
		candidates = append(candidates, model.ItineraryCandidate{
			Candidate: model.CandidateOption{
				CandidateID:        i + 1,
				DailyActivityHours: shape.hours,
				RestDays:           shape.restDays,
				SightseeingDensity: shape.density,
				EstimatedBudget:    roundINR(budget * shape.multiplier),
				TravelFatigueScore: shape.fatigue,
			},
			ItineraryScore: scoreBase + s.rng.Float64()*scoreJitter,
			ScoringBreakdown: model.ScoringBreakdown{
				SafetyCompliance:     safetyCompliance,
				FatiguePenalty:       s.rng.Float64() * maxFatiguePenalty,
				BudgetDeviation:      s.rng.Float64() * maxBudgetDeviation,
				BudgetPenalty:        s.rng.Float64() * maxBudgetPenalty,
				ActivityBalanceBonus: activityBalanceBonus,
				RestDayBonus:         restDayBonus,
			},
		})
	}
	return candidates
}
