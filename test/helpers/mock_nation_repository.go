package helpers

import (
	"context"
	"sort"

	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// MockNationRepository is a map-backed nation.Repository for tests.
type MockNationRepository struct {
	Nations map[int]*nation.Nation
}

// NewMockNationRepository creates a repository holding the given nations.
func NewMockNationRepository(nations ...*nation.Nation) *MockNationRepository {
	m := &MockNationRepository{Nations: make(map[int]*nation.Nation)}
	for _, n := range nations {
		m.Nations[n.ID] = n
	}
	return m
}

// Add stores more nations.
func (m *MockNationRepository) Add(nations ...*nation.Nation) {
	for _, n := range nations {
		m.Nations[n.ID] = n
	}
}

func (m *MockNationRepository) FindByID(_ context.Context, nationID int) (*nation.Nation, error) {
	n, ok := m.Nations[nationID]
	if !ok {
		return nil, shared.NewNationNotFoundError(nationID)
	}
	return n, nil
}

func (m *MockNationRepository) ListByIDs(_ context.Context, ids []int) ([]*nation.Nation, error) {
	var out []*nation.Nation
	for _, id := range ids {
		if n, ok := m.Nations[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *MockNationRepository) ListByAlliances(_ context.Context, allianceIDs []int) ([]*nation.Nation, error) {
	want := make(map[int]bool, len(allianceIDs))
	for _, id := range allianceIDs {
		want[id] = true
	}
	var out []*nation.Nation
	for _, n := range m.Nations {
		if want[n.AllianceID] {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
