package config

import (
	"time"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
)

// ScoringConfig groups every tunable of the two scoring engines. The
// embedded parameter structs are handed to the scorers as immutable
// values; nothing in scoring math reads configuration at call time.
type ScoringConfig struct {
	Match    scoring.MatchParams    `mapstructure:"match"`
	Priority scoring.PriorityParams `mapstructure:"priority"`

	// AutoFloor is the minimum relative-power parity a candidate must
	// reach to survive automatic selection.
	AutoFloor float64 `mapstructure:"auto_floor" validate:"gte=0,lte=1"`

	// PriorityCacheTTL bounds how long a computed target priority is
	// reused before recomputation.
	PriorityCacheTTL time.Duration `mapstructure:"priority_cache_ttl"`

	// PriorityWaitTimeout is how long a caller waits on another
	// in-flight priority computation before computing independently.
	PriorityWaitTimeout time.Duration `mapstructure:"priority_wait_timeout"`
}

// GeneratorConfig holds the assignment generator tunables.
type GeneratorConfig struct {
	// LockWait is the advisory-lock acquisition budget per regeneration.
	LockWait time.Duration `mapstructure:"lock_wait"`

	// BaseSlotCap is the game's baseline offensive war slot count.
	BaseSlotCap int `mapstructure:"base_slot_cap" validate:"min=1"`

	// ProjectSlotModifiers adds slots per national project slug.
	ProjectSlotModifiers map[string]int `mapstructure:"project_slot_modifiers"`

	// MemberMaxAssignments and LeaderMaxAssignments cap concurrent
	// assignments per nation; leadership gets a reduced ceiling.
	MemberMaxAssignments int `mapstructure:"member_max_assignments" validate:"min=0"`
	LeaderMaxAssignments int `mapstructure:"leader_max_assignments" validate:"min=0"`

	// OffensiveLoadPenalty and DefensiveLoadPenalty are flat score
	// deductions per existing war commitment during candidate ranking.
	OffensiveLoadPenalty float64 `mapstructure:"offensive_load_penalty" validate:"gte=0"`
	DefensiveLoadPenalty float64 `mapstructure:"defensive_load_penalty" validate:"gte=0"`

	// TempoDeclareNorm is the recent-declare count at which enemy tempo
	// saturates to 1.
	TempoDeclareNorm int `mapstructure:"tempo_declare_norm" validate:"min=1"`

	// Campaign parameter defaults applied at creation time.
	DefaultPreferredAssignees int     `mapstructure:"default_preferred_assignees" validate:"min=1"`
	DefaultMaxSquadSize       int     `mapstructure:"default_max_squad_size" validate:"min=1"`
	DefaultCohesionTolerance  float64 `mapstructure:"default_cohesion_tolerance" validate:"gt=0"`
	DefaultActivityWindow     float64 `mapstructure:"default_activity_window" validate:"gt=0"`

	// TriggerRate and TriggerBurst throttle event-driven regeneration
	// per campaign (regenerations per second and burst allowance).
	TriggerRate  float64 `mapstructure:"trigger_rate" validate:"gt=0"`
	TriggerBurst int     `mapstructure:"trigger_burst" validate:"min=1"`

	// SuppressionCacheTTL bounds the suppression-set cache; the set is
	// also invalidated eagerly on every lifecycle change.
	SuppressionCacheTTL time.Duration `mapstructure:"suppression_cache_ttl"`
}
