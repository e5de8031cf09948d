package model

import "time"

// Auth providers
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// User is a registered traveller
type User struct {
	ID           string     `json:"userId" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	Provider     string     `json:"-" db:"auth_provider"`
	CreatedAt    time.Time  `json:"-" db:"created_at"`
	LastLogin    *time.Time `json:"-" db:"last_login"`
}

// UserTraits are the onboarding answers plus the values inferred from them
type UserTraits struct {
	UserID        string    `json:"user_id" db:"user_id"`
	TravelStyle   string    `json:"travel_style" db:"travel_style"`
	BudgetComfort string    `json:"budget_comfort" db:"budget_comfort"`
	GroupType     string    `json:"group_type" db:"group_type"`
	Interests     JSONArray `json:"interests" db:"interests"`
	InferredPace  string    `json:"inferred_pace" db:"inferred_pace"`
	InferredBias  string    `json:"inferred_bias" db:"inferred_bias"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SessionInfo is what GET /api/auth/me reports for a signed-in user
type SessionInfo struct {
	UserID    string      `json:"userId"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Onboarded bool        `json:"onboarded"`
	Traits    *UserTraits `json:"traits"`
}

// UserSummary is returned by the auth actions
type UserSummary struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
}

// AuthRequest is the body of every /api/auth/:action call
type AuthRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the success body of register, login and oauth_mock
type AuthResponse struct {
	Success bool         `json:"success"`
	User    *UserSummary `json:"user,omitempty"`
}

// OnboardingRequest carries the four onboarding answers
type OnboardingRequest struct {
	TravelStyle   string   `json:"travel_style"`
	BudgetComfort string   `json:"budget_comfort"`
	GroupType     string   `json:"group_type"`
	Interests     []string `json:"interests"`
}

// OnboardingResponse reports the inferred traits
type OnboardingResponse struct {
	Success      bool   `json:"success"`
	InferredPace string `json:"inferred_pace"`
	InferredBias string `json:"inferred_bias"`
}
