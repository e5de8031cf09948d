package model

import "time"

// Fixed booking states. No other states are reachable.
const (
	BookingStatusConfirmed   = "CONFIRMED"
	PaymentStatusMockSuccess = "MOCK_SUCCESS"
)

// BookingValidity is how long a confirmation stays valid after booking
const BookingValidity = 24 * time.Hour

var defaultNextSteps = []string{
	"Save this confirmation for your records",
	"Review your day-by-day plan before you go",
	"Reach out to us if your plans change",
	"Travel safe and enjoy your trip",
}

// DefaultNextSteps returns a fresh copy of the post-booking guidance
func DefaultNextSteps() JSONArray {
	steps := make(JSONArray, len(defaultNextSteps))
	copy(steps, defaultNextSteps)
	return steps
}

// UserContact is the traveller contact captured at booking time
type UserContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingItinerary is the condensed copy of the chosen candidate
type BookingItinerary struct {
	DailyActivityHours float64 `json:"dailyActivityHours"`
	RestDays           int     `json:"restDays"`
	TravelFatigueScore float64 `json:"travelFatigueScore"`
}

// BookingConfirmation is a confirmed mock booking
type BookingConfirmation struct {
	BookingID          string           `json:"bookingId" db:"booking_id"`
	ConfirmationNumber string           `json:"confirmationNumber" db:"confirmation_number"`
	TripID             string           `json:"tripId" db:"trip_id"`
	Status             string           `json:"status" db:"status"`
	PaymentStatus      string           `json:"paymentStatus" db:"payment_status"`
	LockedBudget       int64            `json:"lockedBudget" db:"locked_budget"`
	UserContact        UserContact      `json:"userContact" db:"user_contact"`
	Itinerary          BookingItinerary `json:"itinerary" db:"itinerary"`
	BookedAt           time.Time        `json:"bookedAt" db:"booked_at"`
	ValidUntil         time.Time        `json:"validUntil" db:"valid_until"`
	NextSteps          JSONArray        `json:"nextSteps" db:"next_steps"`
}
