package funnel

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safar/internal/model"
)

type fakeAPI struct {
	mu          sync.Mutex
	intents     int
	lastIntent  model.TripRequest
	budgetTotal int64
	recs        []model.Recommendation
	intentErr   error
	// block, when set, holds CreateIntent until closed
	block   chan struct{}
	entered chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		budgetTotal: 18000,
		recs:        []model.Recommendation{{Destination: "Sikkim", Confidence: 0.5, Reason: "Mountain air"}},
	}
}

func (f *fakeAPI) CreateIntent(_ context.Context, req *model.TripRequest) (*model.TripIntent, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.intentErr != nil {
		return nil, f.intentErr
	}
	f.intents++
	f.lastIntent = *req
	return &model.TripIntent{
		TripID:      "TRIP_" + string(rune('A'+f.intents)),
		Destination: req.Destination,
		NumDays:     req.NumDays.Int(1),
		NumPeople:   1,
	}, nil
}

func (f *fakeAPI) GetBudget(_ context.Context, intent *model.TripIntent) (*model.BudgetResponse, error) {
	return &model.BudgetResponse{
		TripID:          intent.TripID,
		PredictedBudget: model.BudgetEstimate{TotalINR: f.budgetTotal},
	}, nil
}

func (f *fakeAPI) GetCandidates(_ context.Context, tripID string, budget int64, _ int) (*model.CandidatesResponse, error) {
	cands := make([]model.ItineraryCandidate, 0, 3)
	for i, mult := range []float64{0.98, 1.15, 0.78} {
		cands = append(cands, model.ItineraryCandidate{Candidate: model.CandidateOption{
			CandidateID:     i + 1,
			EstimatedBudget: int64(math.Round(float64(budget) * mult)),
		}})
	}
	return &model.CandidatesResponse{TripID: tripID, Candidates: cands}, nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, tripID string, selected model.CandidateOption, contact model.UserContact) (*model.BookingConfirmation, error) {
	return &model.BookingConfirmation{
		BookingID:    "BK_1",
		TripID:       tripID,
		Status:       model.BookingStatusConfirmed,
		LockedBudget: selected.EstimatedBudget,
		UserContact:  contact,
	}, nil
}

func (f *fakeAPI) Discover(context.Context, *model.DiscoveryRequest) (*model.DiscoveryResponse, error) {
	return &model.DiscoveryResponse{Recommendations: f.recs}, nil
}

func (f *fakeAPI) Auth(_ context.Context, _ string, req *model.AuthRequest) (*model.UserSummary, error) {
	return &model.UserSummary{UserID: "USR_1", Name: req.Name, Email: req.Email}, nil
}

func (f *fakeAPI) Logout(context.Context) error { return nil }

func (f *fakeAPI) Me(context.Context) (*model.SessionInfo, error) {
	return &model.SessionInfo{UserID: "USR_1", Name: "Asha", Onboarded: true}, nil
}

func (f *fakeAPI) Onboard(context.Context, *model.OnboardingRequest) (*model.OnboardingResponse, error) {
	return &model.OnboardingResponse{Success: true}, nil
}

func runToBooking(t *testing.T, m *Machine) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, m.SubmitIntent(ctx, &model.TripRequest{Destination: "Varanasi", NumDays: model.Num(3)}))
	require.NoError(t, m.FetchBudget(ctx))
	require.NoError(t, m.FetchCandidates(ctx))
	require.NoError(t, m.SelectCandidate(2))
}

func TestMachine_ForwardFunnel(t *testing.T) {
	m := NewMachine(newFakeAPI())
	ctx := context.Background()
	assert.Equal(t, StepIntent, m.Step())

	require.NoError(t, m.SubmitIntent(ctx, &model.TripRequest{Destination: "Varanasi", NumDays: model.Num(3)}))
	assert.Equal(t, StepPlanning, m.Step())

	require.NoError(t, m.FetchBudget(ctx))
	assert.Equal(t, StepBudget, m.Step())
	assert.Equal(t, int64(18000), m.State().Budget.PredictedBudget.TotalINR)

	require.NoError(t, m.FetchCandidates(ctx))
	assert.Equal(t, StepItinerary, m.Step())
	assert.Len(t, m.State().Candidates, 3)

	require.NoError(t, m.SelectCandidate(2))
	assert.Equal(t, StepBooking, m.Step())
	assert.Equal(t, 2, m.State().Selected.CandidateID)

	require.NoError(t, m.Book(ctx, model.UserContact{Name: "Asha"}))
	st := m.State()
	assert.Equal(t, StepConfirmation, st.Step)
	assert.Equal(t, int64(20700), st.Booking.LockedBudget)
	assert.Equal(t, st.Trip.TripID, st.Booking.TripID)
}

func TestMachine_RejectsSkippingAhead(t *testing.T) {
	m := NewMachine(newFakeAPI())
	ctx := context.Background()

	var te *TransitionError
	require.ErrorAs(t, m.FetchBudget(ctx), &te)
	assert.Equal(t, StepIntent, te.From)
	assert.Equal(t, StepBudget, te.To)

	require.ErrorAs(t, m.FetchCandidates(ctx), &te)
	require.ErrorAs(t, m.Book(ctx, model.UserContact{}), &te)
	require.ErrorAs(t, m.BackToItinerary(), &te)

	require.NoError(t, m.SubmitIntent(ctx, &model.TripRequest{Destination: "Goa"}))
	require.ErrorAs(t, m.FetchCandidates(ctx), &te, "budget must come first")

	// Moving backward is not allowed either
	require.NoError(t, m.FetchBudget(ctx))
	require.ErrorAs(t, m.FetchBudget(ctx), &te)
}

func TestMachine_BackToItinerary(t *testing.T) {
	m := NewMachine(newFakeAPI())
	runToBooking(t, m)

	require.NoError(t, m.BackToItinerary())
	st := m.State()
	assert.Equal(t, StepItinerary, st.Step)
	assert.Nil(t, st.Selected)
	assert.Len(t, st.Candidates, 3, "candidates survive going back")

	require.NoError(t, m.SelectCandidate(3))
	assert.Equal(t, 3, m.State().Selected.CandidateID)

	require.NoError(t, m.BackToItinerary())
	assert.ErrorIs(t, m.SelectCandidate(9), ErrUnknownCandidate)
	assert.Equal(t, StepItinerary, m.Step())
}

func TestMachine_ReenteringIntentDiscardsDownstream(t *testing.T) {
	api := newFakeAPI()
	m := NewMachine(api)
	runToBooking(t, m)
	first := m.State().Trip.TripID

	require.NoError(t, m.SubmitIntent(context.Background(), &model.TripRequest{Destination: "Leh", NumDays: model.Num(5)}))
	st := m.State()
	assert.Equal(t, StepPlanning, st.Step)
	assert.NotEqual(t, first, st.Trip.TripID)
	assert.Nil(t, st.Budget)
	assert.Nil(t, st.Candidates)
	assert.Nil(t, st.Selected)
	assert.Nil(t, st.Booking)

	require.NoError(t, m.Restart())
	st = m.State()
	assert.Equal(t, StepIntent, st.Step)
	assert.Nil(t, st.Trip)
}

func TestMachine_FailedIntentReturnsToIntent(t *testing.T) {
	api := newFakeAPI()
	api.intentErr = &APIError{Status: 500, Message: "Internal server error"}
	m := NewMachine(api)

	err := m.SubmitIntent(context.Background(), &model.TripRequest{Destination: "Goa"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StepIntent, m.Step())
	assert.Nil(t, m.State().Trip)
}

func TestMachine_DiscoveryBranch(t *testing.T) {
	api := newFakeAPI()
	m := NewMachine(api)
	ctx := context.Background()

	require.NoError(t, m.Discover(ctx, &model.DiscoveryRequest{Vibe: "quiet mountains"}))
	st := m.State()
	assert.Equal(t, StepJustification, st.Step)
	assert.Equal(t, "Sikkim", st.SuggestedDestination)
	assert.Equal(t, "Mountain air", st.JustificationReason)

	require.NoError(t, m.AcceptSuggestion())
	require.NoError(t, m.SubmitIntent(ctx, &model.TripRequest{NumDays: model.Num(4)}))
	assert.Equal(t, "Sikkim", api.lastIntent.Destination)
	assert.Empty(t, m.State().SuggestedDestination)

	// Discovery is only offered before a trip exists
	var te *TransitionError
	require.ErrorAs(t, m.Discover(ctx, &model.DiscoveryRequest{}), &te)

	api.recs = nil
	m = NewMachine(api)
	require.Error(t, m.Discover(ctx, &model.DiscoveryRequest{}))
	assert.Equal(t, StepDiscovery, m.Step())
}

func TestMachine_SecondSubmissionWhileInFlightIsIgnored(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	api.entered = make(chan struct{}, 1)
	m := NewMachine(api)

	done := make(chan error, 1)
	go func() {
		done <- m.SubmitIntent(context.Background(), &model.TripRequest{Destination: "Varanasi"})
	}()
	<-api.entered

	assert.ErrorIs(t, m.SubmitIntent(context.Background(), &model.TripRequest{Destination: "Goa"}), ErrBusy)
	assert.ErrorIs(t, m.Restart(), ErrBusy)
	assert.ErrorIs(t, m.CheckSession(context.Background()), ErrBusy)

	close(api.block)
	require.NoError(t, <-done)

	assert.Equal(t, 1, api.intents)
	assert.Equal(t, "Varanasi", m.State().Trip.Destination)
}

func TestMachine_Auth(t *testing.T) {
	m := NewMachine(newFakeAPI())
	ctx := context.Background()

	require.NoError(t, m.CheckSession(ctx))
	st := m.State()
	assert.True(t, st.LoggedIn)
	assert.True(t, st.Onboarded)
	assert.Equal(t, "Asha", st.User.Name)

	require.NoError(t, m.SignOut(ctx))
	assert.False(t, m.State().LoggedIn)

	require.NoError(t, m.SignIn(ctx, "login", &model.AuthRequest{Name: "Ravi", Email: "ravi@example.com"}))
	assert.True(t, m.State().LoggedIn)
	assert.False(t, m.State().Onboarded)

	require.NoError(t, m.Onboard(ctx, &model.OnboardingRequest{TravelStyle: "fast"}))
	assert.True(t, m.State().Onboarded)
}

func TestTransitionError(t *testing.T) {
	err := error(&TransitionError{From: StepIntent, To: StepBooking})
	assert.EqualError(t, err, "cannot move from intent to booking")
	assert.False(t, errors.Is(err, ErrBusy))
}
