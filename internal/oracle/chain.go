package oracle

import (
	"context"

	"go.uber.org/zap"

	"safar/internal/config"
	"safar/internal/logger"
	"safar/internal/metrics"
	"safar/internal/model"
)

// BudgetResult is a predicted total and the source that produced it
type BudgetResult struct {
	Amount float64
	Source string
}

// RecommendResult is a ranked destination list and the source that produced it
type RecommendResult struct {
	Recommendations []model.Recommendation
	Source          string
}

// IsFallback reports whether no model answered
func (r RecommendResult) IsFallback() bool {
	return r.Source == SourceFallback
}

// Chain tries each available oracle in order and answers from Fallback
// when none succeeds. It never fails.
type Chain struct {
	oracles  []Oracle
	fallback Fallback
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewChain creates a chain over the given oracles
func NewChain(log *zap.Logger, m *metrics.Metrics, oracles ...Oracle) *Chain {
	return &Chain{
		oracles: oracles,
		metrics: m,
		logger:  logger.OrNop(log).Named("oracle"),
	}
}

// FromConfig builds the chain selected by ORACLE_MODE
func FromConfig(cfg *config.OracleConfig, log *zap.Logger, m *metrics.Metrics) *Chain {
	switch cfg.Mode {
	case "process":
		return NewChain(log, m, NewProcessOracle(cfg, log))
	case "http":
		return NewChain(log, m, NewHTTPOracle(cfg))
	default:
		return NewChain(log, m)
	}
}

// Budget predicts a total for the features, defaults applied
func (c *Chain) Budget(ctx context.Context, features FeatureSet) BudgetResult {
	features = features.WithDefaults()

	for _, o := range c.oracles {
		if !o.Available() {
			continue
		}
		amount, err := o.PredictBudget(ctx, features)
		if err == nil {
			c.metrics.ObserveOracle(OpPredictBudget, o.Name())
			return BudgetResult{Amount: amount, Source: o.Name()}
		}
		c.logger.Warn("budget prediction failed, trying next source",
			zap.String("source", o.Name()),
			zap.String("destination", features.Destination),
			zap.Error(err))
	}

	amount, _ := c.fallback.PredictBudget(ctx, features)
	c.metrics.ObserveOracle(OpPredictBudget, SourceFallback)
	return BudgetResult{Amount: amount, Source: SourceFallback}
}

// Recommend ranks destinations for the query
func (c *Chain) Recommend(ctx context.Context, query VibeQuery) RecommendResult {
	for _, o := range c.oracles {
		if !o.Available() {
			continue
		}
		recs, err := o.RecommendDestination(ctx, query)
		if err == nil {
			c.metrics.ObserveOracle(OpRecommendDestination, o.Name())
			return RecommendResult{Recommendations: recs, Source: o.Name()}
		}
		c.logger.Warn("destination recommendation failed, trying next source",
			zap.String("source", o.Name()),
			zap.Error(err))
	}

	recs, _ := c.fallback.RecommendDestination(ctx, query)
	c.metrics.ObserveOracle(OpRecommendDestination, SourceFallback)
	return RecommendResult{Recommendations: recs, Source: SourceFallback}
}

// PredictBudget implements BudgetPredictor
func (c *Chain) PredictBudget(ctx context.Context, features FeatureSet) (float64, error) {
	return c.Budget(ctx, features).Amount, nil
}

// RecommendDestination implements DestinationRecommender
func (c *Chain) RecommendDestination(ctx context.Context, query VibeQuery) ([]model.Recommendation, error) {
	return c.Recommend(ctx, query).Recommendations, nil
}
