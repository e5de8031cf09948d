package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"safar/internal/config"
	"safar/internal/model"
)

// HTTPOracle calls a prediction service that exposes one POST endpoint
// per operation: {base}/predict_budget and {base}/recommend_destination.
type HTTPOracle struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPOracle creates an HTTP oracle from configuration
func NewHTTPOracle(cfg *config.OracleConfig) *HTTPOracle {
	return &HTTPOracle{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name implements Oracle
func (h *HTTPOracle) Name() string {
	return SourceHTTP
}

// Available reports whether a base URL is configured
func (h *HTTPOracle) Available() bool {
	return h.baseURL != ""
}

// PredictBudget implements BudgetPredictor
func (h *HTTPOracle) PredictBudget(ctx context.Context, features FeatureSet) (float64, error) {
	raw, err := h.post(ctx, OpPredictBudget, features)
	if err != nil {
		return 0, err
	}
	return decodeBudget(raw)
}

// RecommendDestination implements DestinationRecommender
func (h *HTTPOracle) RecommendDestination(ctx context.Context, query VibeQuery) ([]model.Recommendation, error) {
	raw, err := h.post(ctx, OpRecommendDestination, query)
	if err != nil {
		return nil, err
	}
	return decodeRecommendations(raw)
}

func (h *HTTPOracle) post(ctx context.Context, operation string, payload interface{}) ([]byte, error) {
	if !h.Available() {
		return nil, ErrUnavailable
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", h.baseURL, operation)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s failed with status %d: %s", operation, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}
