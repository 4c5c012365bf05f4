package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
)

// marshalBreakdown serializes a factor breakdown for a text column.
func marshalBreakdown(b scoring.Breakdown) (string, error) {
	if len(b) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to marshal breakdown: %w", err)
	}
	return string(data), nil
}

// unmarshalBreakdown deserializes a factor breakdown. Empty columns
// (rows written before scoring ran) yield a nil breakdown.
func unmarshalBreakdown(s string) (scoring.Breakdown, error) {
	if s == "" {
		return nil, nil
	}
	var b scoring.Breakdown
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
	}
	return b, nil
}
