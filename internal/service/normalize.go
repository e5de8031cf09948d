package service

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"safar/internal/apperrors"
	"safar/internal/model"
)

// Upper bounds on trip size, so days * people * rate stays far from overflow
const (
	maxTripDays  = 365
	maxTravelers = 1000
)

// intentInput is a createIntent payload after shape normalization
type intentInput struct {
	Destination  string
	NumDays      int
	NumPeople    int
	Season       string
	ComfortLevel string
	TripType     string
	Interests    []string
	BudgetRange  *model.BudgetRange
}

// normalizeIntent accepts the flat API shape, the nested form shape
// ({tripDuration, preferences}) and the simplified {budgetStyle, travelStyle}
// shape, and maps them to one input.
func normalizeIntent(req *model.TripRequest) (intentInput, error) {
	prefs := req.Preferences
	if prefs == nil {
		prefs = &model.TripPreferences{}
	}
	duration := req.TripDuration
	if duration == nil {
		duration = &model.TripDuration{}
	}

	days := firstPresent(req.NumDays, req.Days, duration.Days)
	people := firstPresent(req.NumPeople, duration.People)
	if err := checkTripSize(days, people); err != nil {
		return intentInput{}, err
	}

	in := intentInput{
		Destination: strings.TrimSpace(req.Destination),
		NumDays:     positiveOr(days.Int(0), 1),
		NumPeople:   positiveOr(people.Int(0), 1),
		Season:      lo.Ternary(req.Season != "", req.Season, prefs.Season),
		BudgetRange: req.BudgetRange,
	}

	in.ComfortLevel = comfortLevelFor(req, prefs)
	in.TripType = tripTypeFor(req, prefs)

	interests := req.Interests
	if len(interests) == 0 {
		interests = prefs.Interests
	}
	in.Interests = cleanList(interests)

	return in, nil
}

// checkTripSize rejects day and traveller counts above the supported maximum
func checkTripSize(days, people *model.FlexNumber) error {
	if days.Float(0) > maxTripDays {
		return apperrors.Validation(fmt.Sprintf("numDays must be at most %d", maxTripDays))
	}
	if people.Float(0) > maxTravelers {
		return apperrors.Validation(fmt.Sprintf("numPeople must be at most %d", maxTravelers))
	}
	return nil
}

func comfortLevelFor(req *model.TripRequest, prefs *model.TripPreferences) string {
	switch {
	case req.ComfortLevel != "":
		return req.ComfortLevel
	case req.BudgetStyle == model.ComfortBudget:
		return model.ComfortBudget
	case req.BudgetStyle != "":
		return model.ComfortStandard
	case prefs.ComfortLevel != "":
		return prefs.ComfortLevel
	default:
		return model.ComfortStandard
	}
}

func tripTypeFor(req *model.TripRequest, prefs *model.TripPreferences) string {
	switch {
	case req.TripType != "":
		return req.TripType
	case prefs.TripType != "":
		return prefs.TripType
	case req.TravelStyle == "Relaxed":
		return model.TripTypeRelaxation
	case req.TravelStyle == "Adventure":
		return model.TripTypeAdventure
	default:
		return model.TripTypeCultural
	}
}

// firstPresent returns the first number that was sent at all
func firstPresent(nums ...*model.FlexNumber) *model.FlexNumber {
	for _, n := range nums {
		if n.Present() {
			return n
		}
	}
	return nil
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// cleanList trims, drops empties and removes duplicates, keeping order
func cleanList(items []string) []string {
	cleaned := lo.Uniq(lo.Compact(lo.Map(items, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}
