package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONArray represents a JSON array column
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	return marshalColumn(j)
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	return scanColumn(value, j)
}

// Value implements driver.Valuer interface
func (c UserContact) Value() (driver.Value, error) {
	return marshalColumn(c)
}

// Scan implements sql.Scanner interface
func (c *UserContact) Scan(value interface{}) error {
	if value == nil {
		*c = UserContact{}
		return nil
	}
	return scanColumn(value, c)
}

// Value implements driver.Valuer interface
func (i BookingItinerary) Value() (driver.Value, error) {
	return marshalColumn(i)
}

// Scan implements sql.Scanner interface
func (i *BookingItinerary) Scan(value interface{}) error {
	if value == nil {
		*i = BookingItinerary{}
		return nil
	}
	return scanColumn(value, i)
}

func marshalColumn(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func scanColumn(value interface{}, target interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
}
