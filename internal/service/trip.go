package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"safar/internal/apperrors"
	"safar/internal/logger"
	"safar/internal/metrics"
	"safar/internal/model"
	"safar/internal/oracle"
	"safar/internal/repository"
)

// defaultBudgetDestination is priced when getBudget names no destination
const defaultBudgetDestination = "Varanasi"

// BudgetOracle predicts trip budgets and never fails
type BudgetOracle interface {
	Budget(ctx context.Context, features oracle.FeatureSet) oracle.BudgetResult
}

// TripService implements the trip lifecycle: intent, budget, candidates, booking
type TripService struct {
	oracle   BudgetOracle
	intents  repository.IntentStore
	bookings repository.BookingStore
	scorer   *CandidateScorer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewTripService creates a trip service. bookings may be nil, in which
// case bookings are returned to the caller but never stored.
func NewTripService(
	budgetOracle BudgetOracle,
	intents repository.IntentStore,
	bookings repository.BookingStore,
	scorer *CandidateScorer,
	m *metrics.Metrics,
	log *zap.Logger,
) *TripService {
	if scorer == nil {
		scorer = NewCandidateScorer(nil)
	}
	return &TripService{
		oracle:   budgetOracle,
		intents:  intents,
		bookings: bookings,
		scorer:   scorer,
		metrics:  m,
		logger:   logger.OrNop(log).Named("trips"),
		now:      time.Now,
	}
}

// CreateIntent starts a planning session and predicts its budget.
// Every call creates a new trip, even for identical input.
func (s *TripService) CreateIntent(ctx context.Context, req *model.TripRequest) (*model.TripIntent, error) {
	in, err := normalizeIntent(req)
	if err != nil {
		return nil, err
	}
	if in.Destination == "" {
		return nil, apperrors.Validation("Destination is required")
	}

	prediction := s.oracle.Budget(ctx, oracle.FeatureSet{
		Destination:  in.Destination,
		NumDays:      in.NumDays,
		NumPeople:    in.NumPeople,
		Season:       in.Season,
		ComfortLevel: in.ComfortLevel,
		TripType:     in.TripType,
	})

	intent := &model.TripIntent{
		TripID:       NewTripID(s.now()),
		Destination:  in.Destination,
		NumDays:      in.NumDays,
		NumPeople:    in.NumPeople,
		Season:       in.Season,
		ComfortLevel: in.ComfortLevel,
		TripType:     in.TripType,
		Interests:    in.Interests,
		BudgetRange:  in.BudgetRange,
		PredictedBudget: model.PredictedBudget{
			TotalINR: roundINR(prediction.Amount),
			Currency: model.CurrencyINR,
		},
	}

	// Best effort: the intent is returned even if it could not be stored
	if err := s.intents.SaveIntent(ctx, intent); err != nil {
		s.metrics.ObservePersistenceFailure("trip_intent")
		s.logger.Error("trip intent not persisted",
			zap.String("trip_id", intent.TripID),
			zap.Error(err))
	}

	s.logger.Info("trip intent created",
		zap.String("trip_id", intent.TripID),
		zap.String("destination", intent.Destination),
		zap.Int64("total_inr", intent.PredictedBudget.TotalINR),
		zap.String("source", prediction.Source))

	return intent, nil
}

// GetBudget recomputes the budget for a trip and splits it by category.
// The trip does not need to exist.
func (s *TripService) GetBudget(ctx context.Context, req *model.TripRequest) (*model.BudgetResponse, error) {
	days := firstPresent(req.NumDays, req.Days)
	if err := checkTripSize(days, req.NumPeople); err != nil {
		return nil, err
	}
	numDays := days.Int(0)
	if numDays < 0 {
		numDays = 0
	}
	numPeople := positiveOr(req.NumPeople.Int(1), 1)

	comfortLevel := req.ComfortLevel
	season, tripType := req.Season, req.TripType
	if req.Preferences != nil {
		comfortLevel = firstNonEmpty(comfortLevel, req.Preferences.ComfortLevel)
		season = firstNonEmpty(season, req.Preferences.Season)
		tripType = firstNonEmpty(tripType, req.Preferences.TripType)
	}

	prediction := s.oracle.Budget(ctx, oracle.FeatureSet{
		Destination:  firstNonEmpty(req.Destination, defaultBudgetDestination),
		NumDays:      numDays,
		NumPeople:    numPeople,
		Season:       season,
		ComfortLevel: comfortLevel,
		TripType:     tripType,
	})
	total := roundINR(prediction.Amount)

	return &model.BudgetResponse{
		TripID:          req.TripID,
		PredictedBudget: estimateBudget(total, numDays, numPeople),
		BudgetBreakdown: SplitBudget(total, comfortLevel),
		ModelMetrics:    budgetModelMetrics,
	}, nil
}

// GetCandidates generates three scored itinerary shapes for a budget.
// Candidates are not stored.
func (s *TripService) GetCandidates(_ context.Context, req *model.TripRequest) (*model.CandidatesResponse, error) {
	budget := req.Budget.Float(0)
	if budget < 0 {
		return nil, apperrors.Validation("Budget must not be negative")
	}

	return &model.CandidatesResponse{
		TripID:     req.TripID,
		Candidates: s.scorer.Candidates(budget),
	}, nil
}

// CreateBooking confirms a mock booking for the selected candidate
func (s *TripService) CreateBooking(ctx context.Context, req *model.TripRequest) (*model.BookingConfirmation, error) {
	selected := req.SelectedCandidate
	if selected == nil {
		return nil, apperrors.Validation("Selected candidate is required")
	}

	contact := model.UserContact{}
	if req.UserContact != nil {
		contact = *req.UserContact
	}

	now := s.now()
	bookedAt := now.UTC().Truncate(time.Millisecond)

	booking := &model.BookingConfirmation{
		BookingID:          NewBookingID(now),
		ConfirmationNumber: NewConfirmationNumber(now),
		TripID:             req.TripID,
		Status:             model.BookingStatusConfirmed,
		PaymentStatus:      model.PaymentStatusMockSuccess,
		LockedBudget:       selected.EstimatedBudget,
		UserContact:        contact,
		Itinerary: model.BookingItinerary{
			DailyActivityHours: selected.DailyActivityHours,
			RestDays:           selected.RestDays,
			TravelFatigueScore: selected.TravelFatigueScore,
		},
		BookedAt:   bookedAt,
		ValidUntil: bookedAt.Add(model.BookingValidity),
		NextSteps:  model.DefaultNextSteps(),
	}

	if s.bookings != nil {
		if err := s.bookings.SaveBooking(ctx, booking); err != nil {
			s.metrics.ObservePersistenceFailure("booking")
			s.logger.Error("booking not persisted",
				zap.String("booking_id", booking.BookingID),
				zap.String("trip_id", booking.TripID),
				zap.Error(err))
		}
	}

	s.logger.Info("booking confirmed",
		zap.String("booking_id", booking.BookingID),
		zap.String("trip_id", booking.TripID),
		zap.Int64("locked_budget", booking.LockedBudget))

	return booking, nil
}

// GetTrip reads back a stored trip intent
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*model.TripIntent, error) {
	intent, err := s.intents.GetIntent(ctx, tripID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if intent == nil {
		return nil, apperrors.NotFound("Trip not found")
	}
	return intent, nil
}

// GetBooking reads back a stored booking. Without a booking store nothing is found.
func (s *TripService) GetBooking(ctx context.Context, bookingID string) (*model.BookingConfirmation, error) {
	if s.bookings == nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if booking == nil {
		return nil, apperrors.NotFound("Booking not found")
	}
	return booking, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
