// Package oracle talks to the budget and destination prediction models.
//
// The models are unreliable collaborators: a Python script run as a
// subprocess or an HTTP service. Every caller goes through Chain, which
// tries the available oracles in order and degrades to Fallback so a
// prediction is always produced.
package oracle

import (
	"context"
	"errors"

	"safar/internal/model"
)

// Operations understood by the prediction models
const (
	OpPredictBudget        = "predict_budget"
	OpRecommendDestination = "recommend_destination"
)

// Source labels reported with every answer
const (
	SourceProcess  = "process"
	SourceHTTP     = "http"
	SourceFallback = "fallback"
)

// Feature defaults sent when the traveller left a field empty
const (
	DefaultSeason       = "Winter"
	DefaultComfortLevel = model.ComfortStandard
	DefaultTripType     = model.TripTypeCultural
	DefaultAirportDist  = 50.0
)

// ErrUnavailable is returned by an oracle that cannot be reached at all
var ErrUnavailable = errors.New("oracle unavailable")

// FeatureSet is the input of the budget model
type FeatureSet struct {
	Destination  string  `json:"destination"`
	NumDays      int     `json:"numDays"`
	NumPeople    int     `json:"numPeople"`
	Season       string  `json:"season"`
	ComfortLevel string  `json:"comfortLevel"`
	TripType     string  `json:"tripType"`
	AirportDist  float64 `json:"airportDist"`
}

// WithDefaults fills empty categorical features
func (f FeatureSet) WithDefaults() FeatureSet {
	if f.Season == "" {
		f.Season = DefaultSeason
	}
	if f.ComfortLevel == "" {
		f.ComfortLevel = DefaultComfortLevel
	}
	if f.TripType == "" {
		f.TripType = DefaultTripType
	}
	if f.AirportDist == 0 {
		f.AirportDist = DefaultAirportDist
	}
	return f
}

// VibeQuery is the input of the destination recommender.
// Empty fields are omitted so the model applies its own defaults.
type VibeQuery struct {
	Vibe    string  `json:"vibe,omitempty"`
	Pace    string  `json:"pace,omitempty"`
	Focus   string  `json:"focus,omitempty"`
	Season  string  `json:"season,omitempty"`
	Budget  float64 `json:"budget,omitempty"`
	NumDays int     `json:"numDays,omitempty"`
}

// BudgetPredictor predicts the total trip cost in INR
type BudgetPredictor interface {
	PredictBudget(ctx context.Context, features FeatureSet) (float64, error)
}

// DestinationRecommender ranks destinations for a vibe, best first
type DestinationRecommender interface {
	RecommendDestination(ctx context.Context, query VibeQuery) ([]model.Recommendation, error)
}

// Oracle is a remote prediction backend
type Oracle interface {
	BudgetPredictor
	DestinationRecommender

	// Name is the source label used in logs and metrics
	Name() string

	// Available reports whether the backend can be tried at all
	Available() bool
}
