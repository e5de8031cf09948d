package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindConflict, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindNotFound, http.StatusNotFound},
		{KindInternal, http.StatusInternalServerError},
		{Kind("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.kind))
		})
	}
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	plain := errors.New("connection refused")
	got := From(plain)
	assert.Equal(t, KindInternal, got.Kind)
	assert.Equal(t, GenericMessage, got.PublicMessage())
	assert.ErrorIs(t, got, plain)

	wrapped := fmt.Errorf("create intent: %w", Validation("destination is required"))
	got = From(wrapped)
	assert.Equal(t, KindValidation, got.Kind)
	assert.Equal(t, "destination is required", got.PublicMessage())
}

func TestIsKind(t *testing.T) {
	err := fmt.Errorf("login: %w", Unauthorized("Invalid credentials"))
	assert.True(t, IsKind(err, KindUnauthorized))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("x"), KindInternal))
}
