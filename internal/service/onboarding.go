package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"safar/internal/apperrors"
	"safar/internal/logger"
	"safar/internal/model"
	"safar/internal/repository"
)

// Inferred trait values
const (
	PaceFast = "Fast"
	PaceSlow = "Slow"

	BiasComfort    = "Comfort"
	BiasExperience = "Experience"
)

// Interest counts above this saturate the breadth dimension
const maxInterestBreadth = 5

// groupSizeWeights places each group type on the group-size axis
var groupSizeWeights = map[string]float32{
	"solo":   0.25,
	"couple": 0.5,
	"family": 0.75,
	"group":  1.0,
}

// OnboardingService stores a traveller's onboarding answers
type OnboardingService struct {
	users  repository.UserStore
	logger *zap.Logger
}

// NewOnboardingService creates an onboarding service; users may be nil
func NewOnboardingService(users repository.UserStore, log *zap.Logger) *OnboardingService {
	return &OnboardingService{
		users:  users,
		logger: logger.OrNop(log).Named("onboarding"),
	}
}

// InferPace maps a travel style to a pace
func InferPace(travelStyle string) string {
	if travelStyle == "adventure" || travelStyle == "fast" {
		return PaceFast
	}
	return PaceSlow
}

// InferBias maps a budget comfort answer to a spending bias
func InferBias(budgetComfort string) string {
	if budgetComfort == "premium" {
		return BiasComfort
	}
	return BiasExperience
}

// TraitVector encodes traits as pace, bias, group size and interest
// breadth, each in [0,1].
func TraitVector(traits *model.UserTraits) []float32 {
	vec := make([]float32, 4)
	if traits.InferredPace == PaceFast {
		vec[0] = 1
	}
	if traits.InferredBias == BiasComfort {
		vec[1] = 1
	}
	vec[2] = groupSizeWeights[strings.ToLower(traits.GroupType)]
	vec[3] = float32(min(len(traits.Interests), maxInterestBreadth)) / maxInterestBreadth
	return vec
}

// Submit infers pace and bias from the answers and upserts the user's traits
func (s *OnboardingService) Submit(ctx context.Context, userID string, req *model.OnboardingRequest) (*model.OnboardingResponse, error) {
	if s.users == nil {
		return nil, databaseNotConnected()
	}

	traits := &model.UserTraits{
		UserID:        userID,
		TravelStyle:   req.TravelStyle,
		BudgetComfort: req.BudgetComfort,
		GroupType:     req.GroupType,
		Interests:     model.JSONArray(cleanList(req.Interests)),
		InferredPace:  InferPace(req.TravelStyle),
		InferredBias:  InferBias(req.BudgetComfort),
	}

	if err := s.users.UpsertTraits(ctx, traits, TraitVector(traits)); err != nil {
		return nil, apperrors.Internalf("Internal error updating traits", err)
	}

	s.logger.Info("onboarding saved",
		zap.String("user_id", userID),
		zap.String("inferred_pace", traits.InferredPace),
		zap.String("inferred_bias", traits.InferredBias))

	return &model.OnboardingResponse{
		Success:      true,
		InferredPace: traits.InferredPace,
		InferredBias: traits.InferredBias,
	}, nil
}
