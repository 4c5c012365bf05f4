package helpers

import (
	"fmt"
	"time"

	"github.com/castlebay/warroom-go/internal/domain/nation"
)

// BaseTime is the fixed instant tests anchor their clocks to.
var BaseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// NewNation builds a combat-ready member nation with sensible defaults.
// Mods adjust individual fields.
func NewNation(id int, mods ...func(*nation.Nation)) *nation.Nation {
	active := BaseTime.Add(-2 * time.Hour)
	n := &nation.Nation{
		ID:         id,
		Name:       fmt.Sprintf("Nation %d", id),
		AllianceID: 1,
		Position:   nation.PositionMember,
		Cities:     10,
		Score:      1000,
		Military: nation.Military{
			Soldiers: 100000,
			Tanks:    8000,
			Aircraft: 600,
			Ships:    100,
		},
		LastActive: &active,
	}
	for _, mod := range mods {
		mod(n)
	}
	return n
}

// WithScore sets the nation's aggregate score.
func WithScore(score float64) func(*nation.Nation) {
	return func(n *nation.Nation) { n.Score = score }
}

// WithAlliance sets the nation's alliance.
func WithAlliance(allianceID int) func(*nation.Nation) {
	return func(n *nation.Nation) { n.AllianceID = allianceID }
}

// WithCities sets the nation's city count.
func WithCities(cities int) func(*nation.Nation) {
	return func(n *nation.Nation) { n.Cities = cities }
}

// WithPosition sets the nation's alliance position.
func WithPosition(p nation.Position) func(*nation.Nation) {
	return func(n *nation.Nation) { n.Position = p }
}

// WithLastActive sets the activity timestamp; nil means never seen.
func WithLastActive(t *time.Time) func(*nation.Nation) {
	return func(n *nation.Nation) { n.LastActive = t }
}

// HoursAgo returns a pointer to BaseTime minus the given hours.
func HoursAgo(hours float64) *time.Time {
	t := BaseTime.Add(-time.Duration(hours * float64(time.Hour)))
	return &t
}
