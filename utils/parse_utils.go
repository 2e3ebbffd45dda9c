package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Numeric parsing for the CSV ingestion boundary. External records are
// converted into typed values exactly once here; the forecasting and
// alerting engines never re-parse strings.

// ParsePositiveFloat parses a strictly positive number (prices).
func ParsePositiveFloat(field, raw string) (float64, error) {
	v, err := parseFloat(field, raw)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %v", field, v)
	}
	return v, nil
}

// ParseNonNegativeFloat parses a number clamped at zero (sales rates,
// quantities).
func ParseNonNegativeFloat(field, raw string) (float64, error) {
	v, err := parseFloat(field, raw)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, nil
	}
	return v, nil
}

// ParseNonNegativeInt parses an integer clamped at zero (inventory levels).
func ParseNonNegativeInt(field, raw string) (int, error) {
	v, err := ParseNonNegativeFloat(field, raw)
	if err != nil {
		return 0, err
	}
	return int(math.Round(v)), nil
}

// ParseOptionalFloat returns nil for an empty field.
func ParseOptionalFloat(field, raw string) (*float64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := parseFloat(field, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ParseDate accepts the date formats upload files arrive in.
func ParseDate(field, raw string) (time.Time, error) {
	formats := []string{time.RFC3339, "2006-01-02", "02/01/2006"}
	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(raw)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s has unrecognized date %q", field, raw)
}

func parseFloat(field, raw string) (float64, error) {
	cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "£"))
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %q", field, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s is not a finite number: %q", field, raw)
	}
	return v, nil
}
