package funnel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"safar/internal/model"
)

// Step is a screen of the funnel
type Step string

const (
	StepIntent        Step = "intent"
	StepDiscovery     Step = "discovery"
	StepJustification Step = "justification"
	StepPlanning      Step = "planning"
	StepBudget        Step = "budget"
	StepItinerary     Step = "itinerary"
	StepBooking       Step = "booking"
	StepConfirmation  Step = "confirmation"
)

var (
	// ErrBusy is returned while another call is in flight
	ErrBusy = errors.New("another request is in flight")

	// ErrUnknownCandidate is returned when selecting an id that was not offered
	ErrUnknownCandidate = errors.New("unknown candidate")
)

// TransitionError reports a move the funnel does not allow
type TransitionError struct {
	From Step
	To   Step
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move from %s to %s", e.From, e.To)
}

// API is the server surface the machine drives; *Client implements it
type API interface {
	CreateIntent(ctx context.Context, req *model.TripRequest) (*model.TripIntent, error)
	GetBudget(ctx context.Context, intent *model.TripIntent) (*model.BudgetResponse, error)
	GetCandidates(ctx context.Context, tripID string, budget int64, numDays int) (*model.CandidatesResponse, error)
	CreateBooking(ctx context.Context, tripID string, selected model.CandidateOption, contact model.UserContact) (*model.BookingConfirmation, error)
	Discover(ctx context.Context, req *model.DiscoveryRequest) (*model.DiscoveryResponse, error)
	Auth(ctx context.Context, action string, req *model.AuthRequest) (*model.UserSummary, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*model.SessionInfo, error)
	Onboard(ctx context.Context, req *model.OnboardingRequest) (*model.OnboardingResponse, error)
}

var _ API = (*Client)(nil)

// State is everything the funnel has collected so far
type State struct {
	Step      Step
	LoggedIn  bool
	Onboarded bool
	User      *model.UserSummary

	// Set by discovery, consumed by the next intent
	SuggestedDestination string
	JustificationReason  string

	Trip       *model.TripIntent
	Budget     *model.BudgetResponse
	Candidates []model.ItineraryCandidate
	Selected   *model.CandidateOption
	Booking    *model.BookingConfirmation
}

// Machine sequences one traveller's funnel run. Transitions only move
// forward, except booking back to itinerary and restarting at intent,
// which discards everything downstream.
type Machine struct {
	api API

	mu       sync.Mutex
	inFlight bool
	state    State
}

// NewMachine creates a machine at the intent step
func NewMachine(api API) *Machine {
	return &Machine{api: api, state: State{Step: StepIntent}}
}

// State returns a copy of the current state
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	s.Candidates = append([]model.ItineraryCandidate(nil), m.state.Candidates...)
	return s
}

// Step returns the current step
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Step
}

// begin claims the machine for one call after checking the transition
func (m *Machine) begin(to Step, allowed ...Step) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.inFlight {
		return ErrBusy
	}
	if len(allowed) > 0 && !lo.Contains(allowed, m.state.Step) {
		return &TransitionError{From: m.state.Step, To: to}
	}
	m.inFlight = true
	return nil
}

// finish releases the machine and applies commit under the lock
func (m *Machine) finish(commit func(s *State)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.inFlight = false
	if commit != nil {
		commit(&m.state)
	}
}

// CheckSession loads the signed-in user, if any
func (m *Machine) CheckSession(ctx context.Context) error {
	if err := m.begin(""); err != nil {
		return err
	}

	info, err := m.api.Me(ctx)
	if err != nil {
		m.finish(nil)
		return err
	}

	m.finish(func(s *State) {
		if info == nil {
			s.LoggedIn, s.Onboarded, s.User = false, false, nil
			return
		}
		s.LoggedIn = true
		s.Onboarded = info.Onboarded
		s.User = &model.UserSummary{UserID: info.UserID, Name: info.Name, Email: info.Email}
	})
	return nil
}

// SignIn runs register, login or oauth_mock
func (m *Machine) SignIn(ctx context.Context, action string, req *model.AuthRequest) error {
	if err := m.begin(""); err != nil {
		return err
	}

	user, err := m.api.Auth(ctx, action, req)
	if err != nil {
		m.finish(nil)
		return err
	}

	m.finish(func(s *State) {
		s.LoggedIn = true
		s.User = user
	})
	return nil
}

// SignOut ends the session and forgets the user
func (m *Machine) SignOut(ctx context.Context) error {
	if err := m.begin(""); err != nil {
		return err
	}

	err := m.api.Logout(ctx)
	m.finish(func(s *State) {
		if err == nil {
			s.LoggedIn, s.Onboarded, s.User = false, false, nil
		}
	})
	return err
}

// Onboard submits the onboarding answers
func (m *Machine) Onboard(ctx context.Context, req *model.OnboardingRequest) error {
	if err := m.begin(""); err != nil {
		return err
	}

	_, err := m.api.Onboard(ctx, req)
	m.finish(func(s *State) {
		if err == nil {
			s.Onboarded = true
		}
	})
	return err
}

// Discover asks for a destination and moves to the justification screen
func (m *Machine) Discover(ctx context.Context, req *model.DiscoveryRequest) error {
	if err := m.begin(StepDiscovery, StepIntent, StepDiscovery, StepJustification); err != nil {
		return err
	}

	m.mu.Lock()
	m.state.Step = StepDiscovery
	m.mu.Unlock()

	resp, err := m.api.Discover(ctx, req)
	if err == nil && len(resp.Recommendations) == 0 {
		err = errors.New("no destination recommended")
	}
	if err != nil {
		m.finish(nil)
		return err
	}

	best := resp.Recommendations[0]
	m.finish(func(s *State) {
		s.SuggestedDestination = best.Destination
		s.JustificationReason = best.Reason
		s.Step = StepJustification
	})
	return nil
}

// AcceptSuggestion takes the discovered destination to the intent step
func (m *Machine) AcceptSuggestion() error {
	if err := m.begin(StepIntent, StepJustification); err != nil {
		return err
	}
	m.finish(func(s *State) { s.Step = StepIntent })
	return nil
}

// SubmitIntent creates a trip. Submitting from any step restarts the
// funnel and discards the previous trip's budget, candidates and booking.
// An empty destination falls back to the discovered one.
func (m *Machine) SubmitIntent(ctx context.Context, req *model.TripRequest) error {
	if err := m.begin(StepPlanning); err != nil {
		return err
	}

	m.mu.Lock()
	body := *req
	if body.Destination == "" {
		body.Destination = m.state.SuggestedDestination
	}
	resetDownstream(&m.state)
	m.state.Step = StepPlanning
	m.mu.Unlock()

	intent, err := m.api.CreateIntent(ctx, &body)
	if err != nil {
		m.finish(func(s *State) { s.Step = StepIntent })
		return err
	}

	m.finish(func(s *State) {
		s.Trip = intent
		s.SuggestedDestination = ""
		s.JustificationReason = ""
	})
	return nil
}

// FetchBudget loads the budget of the current trip
func (m *Machine) FetchBudget(ctx context.Context) error {
	if err := m.begin(StepBudget, StepPlanning); err != nil {
		return err
	}

	trip := m.State().Trip
	if trip == nil {
		m.finish(nil)
		return &TransitionError{From: StepPlanning, To: StepBudget}
	}

	budget, err := m.api.GetBudget(ctx, trip)
	if err != nil {
		m.finish(nil)
		return err
	}

	m.finish(func(s *State) {
		s.Budget = budget
		s.Step = StepBudget
	})
	return nil
}

// FetchCandidates loads the itinerary candidates for the budget
func (m *Machine) FetchCandidates(ctx context.Context) error {
	if err := m.begin(StepItinerary, StepBudget); err != nil {
		return err
	}

	st := m.State()
	resp, err := m.api.GetCandidates(ctx, st.Trip.TripID, st.Budget.PredictedBudget.TotalINR, st.Trip.NumDays)
	if err != nil {
		m.finish(nil)
		return err
	}

	m.finish(func(s *State) {
		s.Candidates = resp.Candidates
		s.Selected = nil
		s.Step = StepItinerary
	})
	return nil
}

// SelectCandidate picks one of the offered candidates and moves to booking
func (m *Machine) SelectCandidate(candidateID int) error {
	if err := m.begin(StepBooking, StepItinerary); err != nil {
		return err
	}

	var err error
	m.finish(func(s *State) {
		c, ok := lo.Find(s.Candidates, func(c model.ItineraryCandidate) bool {
			return c.Candidate.CandidateID == candidateID
		})
		if !ok {
			err = ErrUnknownCandidate
			return
		}
		selected := c.Candidate
		s.Selected = &selected
		s.Step = StepBooking
	})
	return err
}

// BackToItinerary returns from booking to re-select a candidate
func (m *Machine) BackToItinerary() error {
	if err := m.begin(StepItinerary, StepBooking); err != nil {
		return err
	}
	m.finish(func(s *State) {
		s.Selected = nil
		s.Step = StepItinerary
	})
	return nil
}

// Book confirms the selected candidate
func (m *Machine) Book(ctx context.Context, contact model.UserContact) error {
	if err := m.begin(StepConfirmation, StepBooking); err != nil {
		return err
	}

	st := m.State()
	booking, err := m.api.CreateBooking(ctx, st.Trip.TripID, *st.Selected, contact)
	if err != nil {
		m.finish(nil)
		return err
	}

	m.finish(func(s *State) {
		s.Booking = booking
		s.Step = StepConfirmation
	})
	return nil
}

// Restart goes back to the intent step and discards the current trip
func (m *Machine) Restart() error {
	if err := m.begin(StepIntent); err != nil {
		return err
	}
	m.finish(func(s *State) {
		resetDownstream(s)
		s.SuggestedDestination = ""
		s.JustificationReason = ""
		s.Step = StepIntent
	})
	return nil
}

func resetDownstream(s *State) {
	s.Trip = nil
	s.Budget = nil
	s.Candidates = nil
	s.Selected = nil
	s.Booking = nil
}
