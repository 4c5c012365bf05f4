package helpers

import (
	"context"

	"github.com/castlebay/warroom-go/internal/domain/nation"
)

// MockWarGauge is a canned-answer nation.WarGauge for tests.
type MockWarGauge struct {
	// Counts is returned by CountActive per nation ID.
	Counts map[int]nation.WarCounts

	// Between is returned by CountActiveBetween per nation ID.
	Between map[int]int
}

// NewMockWarGauge creates an empty gauge reporting no active wars.
func NewMockWarGauge() *MockWarGauge {
	return &MockWarGauge{
		Counts:  make(map[int]nation.WarCounts),
		Between: make(map[int]int),
	}
}

func (m *MockWarGauge) CountActive(_ context.Context, nationIDs []int) (map[int]nation.WarCounts, error) {
	out := make(map[int]nation.WarCounts)
	for _, id := range nationIDs {
		if c, ok := m.Counts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (m *MockWarGauge) CountActiveBetween(_ context.Context, nationIDs, _ []int) (map[int]int, error) {
	out := make(map[int]int)
	for _, id := range nationIDs {
		if c, ok := m.Between[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}
