package model

// Trip lifecycle actions accepted by POST /api/trips
const (
	ActionCreateIntent  = "createIntent"
	ActionGetBudget     = "getBudget"
	ActionGetCandidates = "getCandidates"
	ActionCreateBooking = "createBooking"
)

// CurrencyINR is the only currency the planner prices in
const CurrencyINR = "INR"

// Comfort levels and trip types used by the budget model
const (
	ComfortBudget   = "Budget"
	ComfortStandard = "Standard"
	ComfortLuxury   = "Luxury"

	TripTypeCultural   = "Cultural"
	TripTypeAdventure  = "Adventure"
	TripTypeRelaxation = "Relaxation"
)

// TripRequest is the envelope posted to the trip lifecycle endpoint.
// It carries the union of every action's fields; createIntent accepts
// the flat shape, the nested form shape and the simplified style shape.
type TripRequest struct {
	Action string `json:"action"`
	TripID string `json:"tripId,omitempty"`

	Destination  string           `json:"destination,omitempty"`
	NumDays      *FlexNumber      `json:"numDays,omitempty"`
	Days         *FlexNumber      `json:"days,omitempty"`
	NumPeople    *FlexNumber      `json:"numPeople,omitempty"`
	TripDuration *TripDuration    `json:"tripDuration,omitempty"`
	Preferences  *TripPreferences `json:"preferences,omitempty"`
	Season       string           `json:"season,omitempty"`
	ComfortLevel string           `json:"comfortLevel,omitempty"`
	TripType     string           `json:"tripType,omitempty"`
	BudgetStyle  string           `json:"budgetStyle,omitempty"`
	TravelStyle  string           `json:"travelStyle,omitempty"`
	Interests    []string         `json:"interests,omitempty"`
	BudgetRange  *BudgetRange     `json:"budgetRange,omitempty"`

	// getCandidates
	Budget *FlexNumber `json:"budget,omitempty"`

	// createBooking
	SelectedCandidate *CandidateOption `json:"selectedCandidate,omitempty"`
	UserContact       *UserContact     `json:"userContact,omitempty"`
}

// TripDuration is the nested duration block sent by the trip form
type TripDuration struct {
	Days   *FlexNumber `json:"days,omitempty"`
	People *FlexNumber `json:"people,omitempty"`
}

// TripPreferences is the nested preference block sent by the trip form
type TripPreferences struct {
	Season       string   `json:"season,omitempty"`
	ComfortLevel string   `json:"comfortLevel,omitempty"`
	TripType     string   `json:"tripType,omitempty"`
	Interests    []string `json:"interests,omitempty"`
}

// BudgetRange is an optional spend range given by the traveller
type BudgetRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TripIntent identifies one planning session
type TripIntent struct {
	TripID          string          `json:"tripId"`
	Destination     string          `json:"destination"`
	NumDays         int             `json:"numDays"`
	NumPeople       int             `json:"numPeople"`
	Season          string          `json:"season,omitempty"`
	ComfortLevel    string          `json:"comfortLevel,omitempty"`
	TripType        string          `json:"tripType,omitempty"`
	Interests       []string        `json:"interests,omitempty"`
	BudgetRange     *BudgetRange    `json:"budgetRange,omitempty"`
	PredictedBudget PredictedBudget `json:"predictedBudget"`
}

// PredictedBudget is a currency-tagged total
type PredictedBudget struct {
	TotalINR int64  `json:"totalINR"`
	Currency string `json:"currency"`
}

// BudgetEstimate is the predicted total with per-person and per-day views
type BudgetEstimate struct {
	TotalINR     int64 `json:"totalINR"`
	PerPersonINR int64 `json:"perPersonINR"`
	PerDayINR    int64 `json:"perDayINR"`
}

// BudgetBreakdown partitions a total into four categories.
// Stay + Travel + Food + Activities == Total always holds.
type BudgetBreakdown struct {
	Stay       int64  `json:"stay"`
	Travel     int64  `json:"travel"`
	Food       int64  `json:"food"`
	Activities int64  `json:"activities"`
	Total      int64  `json:"total"`
	Currency   string `json:"currency"`
}

// Sum returns the sum of the four categories
func (b BudgetBreakdown) Sum() int64 {
	return b.Stay + b.Travel + b.Food + b.Activities
}

// ModelMetrics reports the offline accuracy of the budget model
type ModelMetrics struct {
	R2Score float64 `json:"r2_score"`
	MAE     float64 `json:"mae"`
}

// BudgetResponse is the getBudget payload
type BudgetResponse struct {
	TripID          string          `json:"tripId"`
	PredictedBudget BudgetEstimate  `json:"predictedBudget"`
	BudgetBreakdown BudgetBreakdown `json:"budgetBreakdown"`
	ModelMetrics    ModelMetrics    `json:"modelMetrics"`
}
