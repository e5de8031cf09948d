package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexNumber_Unmarshal(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantNil   bool
		wantValid bool
		wantValue float64
	}{
		{"number", `{"n": 3}`, false, true, 3},
		{"fraction", `{"n": 2.7}`, false, true, 2.7},
		{"numeric string", `{"n": " 4 "}`, false, true, 4},
		{"empty string", `{"n": ""}`, false, true, 0},
		{"garbage string", `{"n": "three"}`, false, false, 0},
		{"bool", `{"n": true}`, false, false, 0},
		{"null", `{"n": null}`, true, false, 0},
		{"absent", `{}`, true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body struct {
				N *FlexNumber `json:"n"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &body))

			if tt.wantNil {
				assert.Nil(t, body.N)
				return
			}
			require.NotNil(t, body.N)
			assert.Equal(t, tt.wantValid, body.N.Valid)
			assert.Equal(t, tt.wantValue, body.N.Value)
		})
	}
}

func TestCandidateOption_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int64
		wantErr bool
	}{
		{"whole rupees", `{"candidate_id": 2, "estimated_budget": 20700}`, 20700, false},
		{"fraction rounds half up", `{"candidate_id": 2, "estimated_budget": 17640.5}`, 17641, false},
		{"fraction rounds down", `{"candidate_id": 2, "estimated_budget": 17640.4}`, 17640, false},
		{"absent", `{"candidate_id": 2}`, 0, false},
		{"out of range", `{"candidate_id": 2, "estimated_budget": 1e300}`, 0, true},
		{"not a number", `{"candidate_id": 2, "estimated_budget": "lots"}`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c CandidateOption
			err := json.Unmarshal([]byte(tt.body), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, c.CandidateID)
			assert.Equal(t, tt.want, c.EstimatedBudget)
		})
	}
}

func TestFlexNumber_Int(t *testing.T) {
	var missing *FlexNumber
	assert.Equal(t, 7, missing.Int(7))
	assert.Equal(t, 7, (&FlexNumber{}).Int(7))
	assert.Equal(t, 2, Num(2.9).Int(7))
	assert.Equal(t, -1, Num(-1.5).Int(7))
}

func TestJSONColumns(t *testing.T) {
	contact := UserContact{Name: "Asha", Email: "asha@example.com", Phone: "+91 98"}
	v, err := contact.Value()
	require.NoError(t, err)

	var scanned UserContact
	require.NoError(t, scanned.Scan([]byte(v.(string))))
	assert.Equal(t, contact, scanned)

	var steps JSONArray
	require.NoError(t, steps.Scan(`["a","b"]`))
	assert.Equal(t, JSONArray{"a", "b"}, steps)

	var empty JSONArray
	v, err = empty.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	assert.Error(t, scanned.Scan(42))
}

func TestDefaultNextSteps_ReturnsCopy(t *testing.T) {
	steps := DefaultNextSteps()
	require.Len(t, steps, 4)
	steps[0] = "changed"
	assert.Equal(t, "Save this confirmation for your records", DefaultNextSteps()[0])
}
