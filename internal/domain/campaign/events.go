package campaign

import "time"

// Event is a lifecycle event emitted for the notification subsystem.
type Event interface {
	EventName() string
}

// WarPlanActivated fires when a plan transitions draft -> active.
type WarPlanActivated struct {
	CampaignID string
	Name       string
	OccurredAt time.Time
}

func (WarPlanActivated) EventName() string { return "war_plan.activated" }

// CounterFinalized fires when a counter's proposed assignments are
// confirmed and the counter goes active.
type CounterFinalized struct {
	CampaignID        string
	AggressorNationID int
	AssignmentCount   int
	OccurredAt        time.Time
}

func (CounterFinalized) EventName() string { return "counter.finalized" }

// AssignmentsPublished fires when a campaign's assignment set is pushed
// to the outbound notification layer.
type AssignmentsPublished struct {
	CampaignID      string
	AssignmentCount int
	OccurredAt      time.Time
}

func (AssignmentsPublished) EventName() string { return "campaign.assignments_published" }
