// Package funnel drives the trip planning funnel from the client side:
// an HTTP client for the trip API and the state machine that sequences
// its calls.
package funnel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"safar/internal/model"
)

// APIError is a non-2xx response from the server
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the trip, auth and discovery endpoints. It keeps the
// session cookie between calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}
}

// CreateIntent starts a trip
func (c *Client) CreateIntent(ctx context.Context, req *model.TripRequest) (*model.TripIntent, error) {
	body := *req
	body.Action = model.ActionCreateIntent

	var intent model.TripIntent
	if err := c.post(ctx, "/api/trips", body, &intent); err != nil {
		return nil, fmt.Errorf("failed to create trip intent: %w", err)
	}
	return &intent, nil
}

// GetBudget fetches the budget breakdown of a trip
func (c *Client) GetBudget(ctx context.Context, intent *model.TripIntent) (*model.BudgetResponse, error) {
	body := model.TripRequest{
		Action:       model.ActionGetBudget,
		TripID:       intent.TripID,
		NumDays:      model.Num(float64(intent.NumDays)),
		NumPeople:    model.Num(float64(intent.NumPeople)),
		Season:       intent.Season,
		ComfortLevel: intent.ComfortLevel,
		TripType:     intent.TripType,
		Destination:  intent.Destination,
	}

	var budget model.BudgetResponse
	if err := c.post(ctx, "/api/trips", body, &budget); err != nil {
		return nil, fmt.Errorf("failed to fetch budget: %w", err)
	}
	return &budget, nil
}

// GetCandidates fetches the three itinerary candidates for a budget
func (c *Client) GetCandidates(ctx context.Context, tripID string, budget int64, numDays int) (*model.CandidatesResponse, error) {
	body := model.TripRequest{
		Action:  model.ActionGetCandidates,
		TripID:  tripID,
		Budget:  model.Num(float64(budget)),
		NumDays: model.Num(float64(numDays)),
	}

	var resp model.CandidatesResponse
	if err := c.post(ctx, "/api/trips", body, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	return &resp, nil
}

// CreateBooking books the selected candidate
func (c *Client) CreateBooking(ctx context.Context, tripID string, selected model.CandidateOption, contact model.UserContact) (*model.BookingConfirmation, error) {
	body := model.TripRequest{
		Action:            model.ActionCreateBooking,
		TripID:            tripID,
		SelectedCandidate: &selected,
		UserContact:       &contact,
	}

	var booking model.BookingConfirmation
	if err := c.post(ctx, "/api/trips", body, &booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	return &booking, nil
}

// Discover asks for destination recommendations
func (c *Client) Discover(ctx context.Context, req *model.DiscoveryRequest) (*model.DiscoveryResponse, error) {
	var resp model.DiscoveryResponse
	if err := c.post(ctx, "/api/discovery", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to discover destinations: %w", err)
	}
	return &resp, nil
}

// Auth runs register, login or oauth_mock
func (c *Client) Auth(ctx context.Context, action string, req *model.AuthRequest) (*model.UserSummary, error) {
	var resp model.AuthResponse
	if err := c.post(ctx, "/api/auth/"+action, req, &resp); err != nil {
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return resp.User, nil
}

// Logout ends the session
func (c *Client) Logout(ctx context.Context) error {
	if err := c.post(ctx, "/api/auth/logout", struct{}{}, nil); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// Me returns the current session, or nil when signed out
func (c *Client) Me(ctx context.Context) (*model.SessionInfo, error) {
	var resp struct {
		Session *model.SessionInfo `json:"session"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	return resp.Session, nil
}

// Onboard submits the onboarding answers
func (c *Client) Onboard(ctx context.Context, req *model.OnboardingRequest) (*model.OnboardingResponse, error) {
	var resp model.OnboardingResponse
	if err := c.post(ctx, "/api/auth/onboarding", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to submit onboarding: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
