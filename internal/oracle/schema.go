package oracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"safar/internal/model"
)

const budgetResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["predicted_budget"],
  "properties": {
    "predicted_budget": {"type": "number", "exclusiveMinimum": 0}
  }
}`

const recommendationResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["recommendations"],
  "properties": {
    "recommendations": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["destination"],
        "properties": {
          "destination": {"type": "string", "minLength": 1},
          "confidence": {"type": "number"},
          "reason": {"type": "string"}
        }
      }
    }
  }
}`

var (
	budgetSchema         = mustSchema(budgetResponseSchema)
	recommendationSchema = mustSchema(recommendationResponseSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("invalid oracle schema: %v", err))
	}
	return schema
}

// modelError is the {"error": "..."} body the models return on failure
type modelError struct {
	Error string `json:"error"`
}

func validate(schema *gojsonschema.Schema, raw []byte) error {
	var failure modelError
	if err := json.Unmarshal(raw, &failure); err == nil && failure.Error != "" {
		return fmt.Errorf("model error: %s", failure.Error)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("invalid model response: %s", strings.Join(errs, "; "))
	}

	return nil
}

// decodeBudget validates and decodes a predict_budget response
func decodeBudget(raw []byte) (float64, error) {
	if err := validate(budgetSchema, raw); err != nil {
		return 0, err
	}

	var resp struct {
		PredictedBudget float64 `json:"predicted_budget"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode budget response: %w", err)
	}
	return resp.PredictedBudget, nil
}

// decodeRecommendations validates and decodes a recommend_destination response
func decodeRecommendations(raw []byte) ([]model.Recommendation, error) {
	if err := validate(recommendationSchema, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Recommendations []model.Recommendation `json:"recommendations"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations: %w", err)
	}
	return resp.Recommendations, nil
}
