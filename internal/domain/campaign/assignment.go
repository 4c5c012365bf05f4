package campaign

import (
	"time"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
)

// AssignmentStatus is the workflow state of one assignment.
type AssignmentStatus string

const (
	// AssignmentProposed rows are owned by the generator and may be
	// deleted or rescored on the next pass.
	AssignmentProposed AssignmentStatus = "proposed"

	// AssignmentFinalized rows have been confirmed and pushed out; the
	// generator never touches them.
	AssignmentFinalized AssignmentStatus = "finalized"
)

// Assignment pairs one friendly nation with one target. At most one
// assignment exists per (target, nation) pair, enforced by a unique key
// in storage.
type Assignment struct {
	ID         uint
	CampaignID string
	TargetID   uint

	NationID int

	Score     float64
	Breakdown scoring.Breakdown

	Status AssignmentStatus

	// Locked rows are pinned by an operator and never touched by
	// regeneration, regardless of scores.
	Locked bool

	// Overridden marks rows created or edited manually. Regeneration
	// preserves them like locked rows.
	Overridden bool

	// SquadID groups co-assigned friendlies; nil when unsquadded.
	SquadID *uint

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Preserved reports whether automatic regeneration must leave this row
// untouched: locked, overridden, or past the proposed state.
func (a *Assignment) Preserved() bool {
	return a.Locked || a.Overridden || a.Status != AssignmentProposed
}
