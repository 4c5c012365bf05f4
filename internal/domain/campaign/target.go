package campaign

import (
	"time"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
)

// Target is one enemy nation under consideration within a campaign,
// carrying its cached priority score.
type Target struct {
	ID         uint
	CampaignID string

	EnemyNationID int

	// Priority and its breakdown are recomputed by the priority scorer
	// and persisted here so a cold cache never yields a transient score.
	Priority          float64
	PriorityBreakdown scoring.Breakdown
	PriorityComputedAt *time.Time

	// WarType defaults to the campaign's declared type.
	WarType WarType
}

// PriorityStale reports whether the cached priority is older than ttl at
// instant now. A never-computed priority is always stale.
func (t *Target) PriorityStale(now time.Time, ttl time.Duration) bool {
	if t.PriorityComputedAt == nil {
		return true
	}
	return now.Sub(*t.PriorityComputedAt) > ttl
}

// SetPriority records a freshly computed priority.
func (t *Target) SetPriority(score float64, breakdown scoring.Breakdown, now time.Time) {
	t.Priority = score
	t.PriorityBreakdown = breakdown
	computed := now
	t.PriorityComputedAt = &computed
}
