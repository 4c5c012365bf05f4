package warplan

import "time"

// GeneratorParams are the immutable generator tunables, mapped from
// configuration at wiring time so the generators never read ambient
// config.
type GeneratorParams struct {
	// LockWait is the advisory-lock acquisition budget per invocation.
	LockWait time.Duration

	// AutoFloor discards candidates whose relative-power parity falls
	// below it during automatic selection.
	AutoFloor float64

	// BaseSlotCap is the baseline offensive war slot count; projects
	// listed in ProjectSlotModifiers add to it.
	BaseSlotCap          int
	ProjectSlotModifiers map[string]int

	// MemberMaxAssignments and LeaderMaxAssignments cap concurrent
	// assignments per nation.
	MemberMaxAssignments int
	LeaderMaxAssignments int

	// OffensiveLoadPenalty and DefensiveLoadPenalty deduct flat points
	// per existing war commitment during candidate ranking.
	OffensiveLoadPenalty float64
	DefensiveLoadPenalty float64

	// TempoDeclareNorm is the recent-declare count at which enemy tempo
	// saturates.
	TempoDeclareNorm int
}
