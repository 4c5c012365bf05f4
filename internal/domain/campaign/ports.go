package campaign

import "context"

// Repository stores campaigns and their alliance membership.
type Repository interface {
	Save(ctx context.Context, c *Campaign) error

	// FindByID returns the campaign or a shared.CampaignNotFoundError.
	FindByID(ctx context.Context, id string) (*Campaign, error)

	// FindActive returns all campaigns in active state.
	FindActive(ctx context.Context) ([]*Campaign, error)

	// ListAlliances returns the alliance IDs attached to the campaign in
	// the given role.
	ListAlliances(ctx context.Context, campaignID string, role AllianceRole) ([]int, error)

	// AddAlliance and RemoveAlliance edit membership one row at a time;
	// the orchestrator diffs desired against current.
	AddAlliance(ctx context.Context, campaignID string, role AllianceRole, allianceID int) error
	RemoveAlliance(ctx context.Context, campaignID string, role AllianceRole, allianceID int) error
}

// TargetRepository stores campaign targets.
type TargetRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]*Target, error)

	// Save upserts by (campaign, enemy nation); the unique key prevents
	// duplicate targets structurally.
	Save(ctx context.Context, t *Target) error

	Delete(ctx context.Context, targetID uint) error
}

// AssignmentRepository stores assignments.
type AssignmentRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]*Assignment, error)
	ListByTarget(ctx context.Context, targetID uint) ([]*Assignment, error)

	// Save upserts by (target, nation); the unique key makes duplicate
	// assignments structurally impossible.
	Save(ctx context.Context, a *Assignment) error

	DeleteByIDs(ctx context.Context, ids []uint) error
}

// SquadRepository stores squads.
type SquadRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]*Squad, error)
	Save(ctx context.Context, s *Squad) error
	DeleteByIDs(ctx context.Context, ids []uint) error
}

// Repos bundles the repositories participating in one transaction.
type Repos struct {
	Campaigns   Repository
	Targets     TargetRepository
	Assignments AssignmentRepository
	Squads      SquadRepository
}

// UnitOfWork runs fn inside one storage transaction. Either every write
// fn makes is persisted or none are; the generators rely on this so a
// failed regeneration never leaves a partial assignment set behind.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(repos Repos) error) error
}

// EventPublisher emits lifecycle events toward the out-of-scope
// notification subsystem. Publishing must never block campaign work.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}
