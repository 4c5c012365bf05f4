package nation

import "context"

// Repository provides read access to the nation intel store.
type Repository interface {
	// FindByID returns the nation or a shared.NationNotFoundError.
	FindByID(ctx context.Context, nationID int) (*Nation, error)

	// ListByIDs returns the nations that exist among ids; missing IDs are
	// silently skipped (stale targets must not abort a regeneration).
	ListByIDs(ctx context.Context, ids []int) ([]*Nation, error)

	// ListByAlliances returns all nations belonging to the given alliances.
	ListByAlliances(ctx context.Context, allianceIDs []int) ([]*Nation, error)
}

// WarCounts summarizes a nation's currently active wars.
type WarCounts struct {
	Offensive int
	Defensive int
}

// WarGauge counts active wars. Implemented against the war read model;
// the engine only ever reads it.
type WarGauge interface {
	// CountActive returns active war counts keyed by nation ID. Nations
	// with no active wars may be absent from the result.
	CountActive(ctx context.Context, nationIDs []int) (map[int]WarCounts, error)

	// CountActiveBetween returns, for each nation in nationIDs, how many
	// of its active wars are against someone in opponentIDs.
	CountActiveBetween(ctx context.Context, nationIDs, opponentIDs []int) (map[int]int, error)
}
