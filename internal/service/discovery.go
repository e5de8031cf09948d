package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"safar/internal/logger"
	"safar/internal/model"
	"safar/internal/oracle"
)

const maxRecommendations = 3

// DestinationOracle ranks destinations and never fails
type DestinationOracle interface {
	Recommend(ctx context.Context, query oracle.VibeQuery) oracle.RecommendResult
}

// DiscoveryService suggests destinations to travellers without one
type DiscoveryService struct {
	oracle DestinationOracle
	logger *zap.Logger
}

// NewDiscoveryService creates a discovery service
func NewDiscoveryService(destinationOracle DestinationOracle, log *zap.Logger) *DiscoveryService {
	return &DiscoveryService{
		oracle: destinationOracle,
		logger: logger.OrNop(log).Named("discovery"),
	}
}

// Recommend returns up to three destinations, best first
func (s *DiscoveryService) Recommend(ctx context.Context, req *model.DiscoveryRequest) (*model.DiscoveryResponse, error) {
	query := oracle.VibeQuery{
		Vibe:    strings.TrimSpace(req.Vibe),
		Pace:    req.Pace,
		Focus:   req.Focus,
		Season:  req.Season,
		Budget:  req.Budget.Float(0),
		NumDays: req.NumDays.Int(0),
	}

	result := s.oracle.Recommend(ctx, query)
	recs := result.Recommendations
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	s.logger.Debug("destinations recommended",
		zap.Int("count", len(recs)),
		zap.String("source", result.Source))

	return &model.DiscoveryResponse{
		Recommendations: recs,
		Fallback:        result.IsFallback(),
	}, nil
}
