package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"safar/internal/config"
	"safar/internal/metrics"
	"safar/internal/model"
	"safar/internal/oracle"
	"safar/internal/repository"
	"safar/internal/service"
	"safar/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// userStore is a minimal in-memory UserStore
type userStore struct {
	mu     sync.Mutex
	users  map[string]*model.User
	traits map[string]*model.UserTraits
}

func newUserStore() *userStore {
	return &userStore{users: map[string]*model.User{}, traits: map[string]*model.UserTraits{}}
}

func (s *userStore) CreateUser(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *userStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *userStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *userStore) TouchLastLogin(context.Context, string) error { return nil }

func (s *userStore) UpsertTraits(_ context.Context, t *model.UserTraits, _ []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.traits[t.UserID] = &cp
	return nil
}

func (s *userStore) GetTraits(_ context.Context, id string) (*model.UserTraits, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.traits[id], nil
}

type bookingStore struct {
	mu    sync.Mutex
	items map[string]*model.BookingConfirmation
}

func (s *bookingStore) SaveBooking(_ context.Context, b *model.BookingConfirmation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[b.BookingID] = b
	return nil
}

func (s *bookingStore) GetBooking(_ context.Context, id string) (*model.BookingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id], nil
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("dial tcp: connection refused") }

type testServer struct {
	router  *gin.Engine
	metrics *metrics.Metrics
	users   *userStore
}

// newTestServer assembles the router with no oracle, so every prediction
// comes from the fallback. users may be nil to run without a database.
func newTestServer(t *testing.T, users *userStore, checks map[string]Pinger) *testServer {
	t.Helper()
	log := zaptest.NewLogger(t)
	m := metrics.NewMetrics("test")

	var userRepo repository.UserStore
	var bookings repository.BookingStore
	if users != nil {
		userRepo = users
		bookings = &bookingStore{items: map[string]*model.BookingConfirmation{}}
	}

	chain := oracle.NewChain(log, m)
	trips := service.NewTripService(chain, repository.NewMemoryStore(), bookings,
		service.NewCandidateScorer(rand.New(rand.NewPCG(3, 4))), m, log)

	sessions := session.NewManager(&config.SessionConfig{
		Secret:     "test-secret",
		TTL:        7 * 24 * time.Hour,
		CookieName: "session",
	}, nil)

	router := NewRouter(Deps{
		Trips:          NewTripHandler(trips, m, log),
		Auth:           NewAuthHandler(service.NewAuthService(userRepo, log), service.NewOnboardingService(userRepo, log), sessions, log),
		Discovery:      NewDiscoveryHandler(service.NewDiscoveryService(chain, log), log),
		Sessions:       sessions,
		Metrics:        m,
		Logger:         log,
		Build:          BuildInfo{Version: "1.2.3", BuildTime: "today", GitCommit: "abc123"},
		AllowedOrigins: "*",
		Checks:         checks,
	})

	return &testServer{router: router, metrics: m, users: users}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestTrips_Funnel(t *testing.T) {
	srv := newTestServer(t, newUserStore(), nil)

	w := srv.do(t, http.MethodPost, "/api/trips", map[string]any{
		"action":       "createIntent",
		"destination":  "Varanasi",
		"numDays":      "3",
		"numPeople":    1,
		"comfortLevel": "Standard",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	intent := decode[model.TripIntent](t, w)
	assert.Equal(t, int64(18000), intent.PredictedBudget.TotalINR)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = srv.do(t, http.MethodPost, "/api/trips", map[string]any{
		"action": "getBudget", "tripId": intent.TripID, "numDays": 3, "numPeople": 1, "comfortLevel": "Standard",
	})
	require.Equal(t, http.StatusOK, w.Code)
	budget := decode[model.BudgetResponse](t, w)
	assert.Equal(t, int64(6300), budget.BudgetBreakdown.Stay)
	assert.Equal(t, int64(2700), budget.BudgetBreakdown.Activities)

	w = srv.do(t, http.MethodPost, "/api/trips", map[string]any{
		"action": "getCandidates", "tripId": intent.TripID, "budget": 18000, "numDays": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)
	cands := decode[model.CandidatesResponse](t, w)
	require.Len(t, cands.Candidates, 3)
	assert.Contains(t, w.Body.String(), `"estimated_budget":17640`)

	w = srv.do(t, http.MethodPost, "/api/trips", map[string]any{
		"action":            "createBooking",
		"tripId":            intent.TripID,
		"selectedCandidate": cands.Candidates[0].Candidate,
		"userContact":       map[string]string{"name": "Asha", "email": "asha@example.com", "phone": "99999"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	booking := decode[model.BookingConfirmation](t, w)
	assert.Equal(t, "CONFIRMED", booking.Status)
	assert.Equal(t, int64(17640), booking.LockedBudget)
	assert.Equal(t, 24*time.Hour, booking.ValidUntil.Sub(booking.BookedAt))

	w = srv.do(t, http.MethodGet, "/api/trips/"+intent.TripID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, intent.TripID, decode[model.TripIntent](t, w).TripID)

	w = srv.do(t, http.MethodGet, "/api/bookings/"+booking.BookingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, booking.ConfirmationNumber, decode[model.BookingConfirmation](t, w).ConfirmationNumber)

	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.TripActions.WithLabelValues("createIntent", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.TripActions.WithLabelValues("createBooking", "ok")))
}

func TestTrips_Errors(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
		wantError  string
	}{
		{"unknown action", http.MethodPost, "/api/trips", map[string]any{"action": "cancelTrip"}, http.StatusBadRequest, "Invalid action"},
		{"missing action", http.MethodPost, "/api/trips", map[string]any{}, http.StatusBadRequest, "Invalid action"},
		{"malformed body", http.MethodPost, "/api/trips", `{"action":`, http.StatusBadRequest, "Invalid request body"},
		{"missing destination", http.MethodPost, "/api/trips", map[string]any{"action": "createIntent"}, http.StatusBadRequest, "Destination is required"},
		{"booking without candidate", http.MethodPost, "/api/trips", map[string]any{"action": "createBooking"}, http.StatusBadRequest, "Selected candidate is required"},
		{"unknown trip", http.MethodGet, "/api/trips/TRIP_NOPE", nil, http.StatusNotFound, "Trip not found"},
		{"booking without store", http.MethodGet, "/api/bookings/BK_NOPE", nil, http.StatusNotFound, "Booking not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := srv.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantError, decode[errorResponse](t, w).Error)
		})
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(srv.metrics.TripActions.WithLabelValues("unknown", "invalid")))
}

func TestTrips_WithoutDatabase(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := srv.do(t, http.MethodPost, "/api/trips", map[string]any{"action": "createIntent", "destination": "Goa", "numDays": 2})
	require.Equal(t, http.StatusOK, w.Code)
	intent := decode[model.TripIntent](t, w)

	w = srv.do(t, http.MethodPost, "/api/trips", map[string]any{
		"action":            "createBooking",
		"tripId":            intent.TripID,
		"selectedCandidate": map[string]any{"candidate_id": 3, "rest_days": 2, "estimated_budget": 9360},
	})
	require.Equal(t, http.StatusOK, w.Code)
	booking := decode[model.BookingConfirmation](t, w)
	assert.Equal(t, "MOCK_SUCCESS", booking.PaymentStatus)
	assert.Equal(t, model.UserContact{}, booking.UserContact)

	w = srv.do(t, http.MethodPost, "/api/trips", map[string]any{
		"action":            "createBooking",
		"tripId":            intent.TripID,
		"selectedCandidate": map[string]any{"candidate_id": 1, "estimated_budget": 17640.5},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(17641), decode[model.BookingConfirmation](t, w).LockedBudget)
}

func TestAuth_Flow(t *testing.T) {
	srv := newTestServer(t, newUserStore(), nil)

	w := srv.do(t, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":null}`, w.Body.String())

	w = srv.do(t, http.MethodPost, "/api/auth/register", model.AuthRequest{Name: "Asha", Email: "asha@example.com", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[model.AuthResponse](t, w)
	assert.True(t, resp.Success)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	w = srv.do(t, http.MethodPost, "/api/auth/register", model.AuthRequest{Name: "Asha", Email: "asha@example.com", Password: "pw"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decode[errorResponse](t, w).Error)

	w = srv.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		Session *model.SessionInfo `json:"session"`
	}](t, w)
	require.NotNil(t, me.Session)
	assert.Equal(t, resp.User.UserID, me.Session.UserID)
	assert.False(t, me.Session.Onboarded)
	assert.NotNil(t, sessionCookie(w), "session is renewed")

	w = srv.do(t, http.MethodPost, "/api/auth/onboarding", model.OnboardingRequest{
		TravelStyle: "adventure", BudgetComfort: "premium", GroupType: "solo", Interests: []string{"treks"},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true,"inferred_pace":"Fast","inferred_bias":"Comfort"}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Contains(t, w.Body.String(), `"onboarded":true`)
	assert.Contains(t, w.Body.String(), `"travel_style":"adventure"`)

	w = srv.do(t, http.MethodPost, "/api/auth/login", model.AuthRequest{Email: "asha@example.com", Password: "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", decode[errorResponse](t, w).Error)

	w = srv.do(t, http.MethodPost, "/api/auth/login", model.AuthRequest{Email: "asha@example.com", Password: "pw"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, w.Header().Values("Set-Cookie"), 1, "logout must not renew the session")
	cleared := sessionCookie(w)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)
}

func TestAuth_Errors(t *testing.T) {
	srv := newTestServer(t, newUserStore(), nil)

	w := srv.do(t, http.MethodPost, "/api/auth/impersonate", model.AuthRequest{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invalid action", decode[errorResponse](t, w).Error)

	w = srv.do(t, http.MethodPost, "/api/auth/onboarding", model.OnboardingRequest{TravelStyle: "fast"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", decode[errorResponse](t, w).Error)

	w = srv.do(t, http.MethodPost, "/api/auth/register", model.AuthRequest{Name: "Asha", Email: "not-an-email", Password: "pw"})
	assert.Equal(t, "Invalid email", decode[errorResponse](t, w).Error)

	w = srv.do(t, http.MethodPost, "/api/auth/oauth_mock", model.AuthRequest{Name: "Ravi"})
	assert.Equal(t, "Missing mock data", decode[errorResponse](t, w).Error)

	tampered := &http.Cookie{Name: "session", Value: "eyJhbGciOiJIUzI1NiJ9.e30.bad"}
	w = srv.do(t, http.MethodGet, "/api/auth/me", nil, tampered)
	assert.JSONEq(t, `{"session":null}`, w.Body.String())
}

func TestAuth_WithoutDatabase(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	for _, action := range []string{"register", "login", "oauth_mock", "logout"} {
		w := srv.do(t, http.MethodPost, "/api/auth/"+action, model.AuthRequest{Name: "A", Email: "a@b.co", Password: "pw"})
		assert.Equal(t, http.StatusInternalServerError, w.Code, action)
		assert.Equal(t, "Database not connected", decode[errorResponse](t, w).Error, action)
	}

	w := srv.do(t, http.MethodPost, "/api/auth/onboarding", model.OnboardingRequest{TravelStyle: "slow"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Database not connected", decode[errorResponse](t, w).Error)

	w = srv.do(t, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session":null}`, w.Body.String())
}

func TestDiscovery_Fallback(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := srv.do(t, http.MethodPost, "/api/discovery", map[string]any{
		"vibe": "white water and a high pass", "pace": "Fast", "focus": "Thrills", "season": "Summer", "budget": "25000", "numDays": 5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[model.DiscoveryResponse](t, w)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "Hampta Pass", resp.Recommendations[0].Destination)
	assert.True(t, resp.Fallback)

	w = srv.do(t, http.MethodPost, "/api/discovery", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t, nil, nil)

	w := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w = srv.do(t, http.MethodGet, "/version", nil)
	assert.JSONEq(t, `{"version":"1.2.3","build_time":"today","git_commit":"abc123"}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "test_http_request_duration_seconds"))

	degraded := newTestServer(t, nil, map[string]Pinger{"postgres": failingPinger{}})
	w = degraded.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"postgres":"unhealthy"`)
}
