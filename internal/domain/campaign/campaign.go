package campaign

import (
	"time"

	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// Kind distinguishes proactively-planned campaigns from reactive ones.
type Kind string

const (
	// KindWarPlan is a proactive campaign against one or more enemy
	// alliances, with many targets.
	KindWarPlan Kind = "war_plan"

	// KindCounter is a reactive campaign against a single aggressor
	// nation, with one team.
	KindCounter Kind = "counter"
)

// Status is a campaign's lifecycle state. Transitions only move forward:
// draft -> active -> archived, with archiving allowed directly from draft.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// AllianceRole marks which side of a campaign an alliance is on.
type AllianceRole string

const (
	RoleFriendly AllianceRole = "friendly"
	RoleEnemy    AllianceRole = "enemy"
)

// WarType is the declared war type carried onto assignments.
type WarType string

const (
	WarTypeOrdinary  WarType = "ordinary"
	WarTypeRaid      WarType = "raid"
	WarTypeAttrition WarType = "attrition"
)

// Params are the per-campaign generator tunables. Parameter edits are
// allowed in any non-archived state.
type Params struct {
	// PreferredAssignees is how many friendlies each target should get
	// (the counter team size for KindCounter).
	PreferredAssignees int

	// MaxSquadSize bounds squad membership.
	MaxSquadSize int

	// CohesionToleranceHours scales the cohesion bonus of the match
	// scorer.
	CohesionToleranceHours float64

	// ActivityWindowHours drives activity decay in both scorers.
	ActivityWindowHours float64

	// SuppressCounters opts this campaign's enemy alliances out of
	// reactive counter generation while it is active.
	SuppressCounters bool
}

// Campaign is a named unit of war work: a proactive plan or a reactive
// counter.
type Campaign struct {
	ID     string
	Name   string
	Kind   Kind
	Status Status

	DefaultWarType WarType
	Params         Params

	// AggressorNationID is set only for counters.
	AggressorNationID int

	// AssignmentsPublishedAt records when assignments were last pushed
	// to the notification layer.
	AssignmentsPublishedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCampaign creates a campaign in draft state.
func NewCampaign(id, name string, kind Kind, warType WarType, params Params, now time.Time) (*Campaign, error) {
	if id == "" {
		return nil, shared.NewValidationError("id", "must not be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "must not be empty")
	}
	if params.PreferredAssignees <= 0 {
		return nil, shared.NewValidationError("preferred_assignees", "must be positive")
	}
	if params.MaxSquadSize <= 0 {
		return nil, shared.NewValidationError("max_squad_size", "must be positive")
	}
	return &Campaign{
		ID:             id,
		Name:           name,
		Kind:           kind,
		Status:         StatusDraft,
		DefaultWarType: warType,
		Params:         params,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Activate transitions draft -> active.
func (c *Campaign) Activate(now time.Time) error {
	if c.Status != StatusDraft {
		return shared.NewCampaignStateError(c.ID, string(c.Status), string(StatusActive))
	}
	c.Status = StatusActive
	c.UpdatedAt = now
	return nil
}

// Archive ends the campaign. Archiving is terminal and allowed from both
// draft and active.
func (c *Campaign) Archive(now time.Time) error {
	if c.Status == StatusArchived {
		return shared.NewCampaignStateError(c.ID, string(c.Status), string(StatusArchived))
	}
	c.Status = StatusArchived
	c.UpdatedAt = now
	return nil
}

// UpdateParams edits the tunables of a non-archived campaign.
func (c *Campaign) UpdateParams(params Params, warType WarType, now time.Time) error {
	if c.Status == StatusArchived {
		return shared.NewCampaignStateError(c.ID, string(c.Status), string(c.Status))
	}
	if params.PreferredAssignees <= 0 {
		return shared.NewValidationError("preferred_assignees", "must be positive")
	}
	if params.MaxSquadSize <= 0 {
		return shared.NewValidationError("max_squad_size", "must be positive")
	}
	c.Params = params
	c.DefaultWarType = warType
	c.UpdatedAt = now
	return nil
}

// MarkAssignmentsPublished stamps the publication time.
func (c *Campaign) MarkAssignmentsPublished(now time.Time) {
	t := now
	c.AssignmentsPublishedAt = &t
	c.UpdatedAt = now
}

// Suppressing reports whether this campaign currently contributes to the
// counter suppression set.
func (c *Campaign) Suppressing() bool {
	return c.Status == StatusActive && c.Params.SuppressCounters
}
