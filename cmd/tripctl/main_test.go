package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safar/internal/model"
)

func TestDiscoverCommand(t *testing.T) {
	var got model.DiscoveryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/discovery", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.DiscoveryResponse{
			Recommendations: []model.Recommendation{{Destination: "Rishikesh", Confidence: 0.85, Reason: "Adventure sports"}},
			Fallback:        true,
		})
	}))
	defer srv.Close()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--server", srv.URL, "discover", "--focus", "Thrills", "--days", "4"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Thrills", got.Focus)
	require.NotNil(t, got.NumDays)
	assert.Equal(t, 4.0, got.NumDays.Value)
	assert.Nil(t, got.Budget)
	assert.Contains(t, out.String(), "1. Rishikesh (85%) Adventure sports")
	assert.Contains(t, out.String(), "rule-based suggestion")
}

func TestPlanCommand_Validation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no destination or vibe", []string{"plan"}, "either --destination or --vibe is required"},
		{"candidate out of range", []string{"plan", "--destination", "Goa", "--candidate", "4"}, "--candidate must be 1, 2 or 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := newRootCmd()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
