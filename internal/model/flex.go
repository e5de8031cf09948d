package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexNumber is a JSON number that clients sometimes send as a string.
// Values that are neither decode as invalid instead of failing the request.
type FlexNumber struct {
	Value float64
	Valid bool
}

// Num returns a valid FlexNumber
func Num(v float64) *FlexNumber {
	return &FlexNumber{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	*f = FlexNumber{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.Value, f.Valid = n, true
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			// Number("") is 0 in the browser
			f.Valid = true
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			f.Value, f.Valid = v, true
		}
	}

	return nil
}

// MarshalJSON implements json.Marshaler
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Float returns the value, or def if f is nil or invalid
func (f *FlexNumber) Float(def float64) float64 {
	if f == nil || !f.Valid {
		return def
	}
	return f.Value
}

// Int returns the value truncated toward zero, or def if f is nil or invalid
func (f *FlexNumber) Int(def int) int {
	if f == nil || !f.Valid {
		return def
	}
	return int(f.Value)
}

// Present reports whether the field was sent with a non-null value
func (f *FlexNumber) Present() bool {
	return f != nil
}
