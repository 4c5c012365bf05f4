package nation

import "time"

// Position is a nation's role within its alliance. Higher values carry
// more seniority and more leadership responsibility.
type Position int

const (
	PositionApplicant Position = iota
	PositionMember
	PositionOfficer
	PositionHeir
	PositionLeader
)

// IsLeadership reports whether the position carries day-to-day alliance
// duties. Leadership nations get a reduced assignment ceiling so war
// duty does not crowd out their administrative load.
func (p Position) IsLeadership() bool {
	return p >= PositionOfficer
}

// Military is a snapshot of a nation's standing forces.
type Military struct {
	Soldiers int
	Tanks    int
	Aircraft int
	Ships    int
}

// Nation is the read model this engine scores against. It is assembled by
// the intel sync layer and never mutated here.
type Nation struct {
	ID         int
	Name       string
	AllianceID int
	Position   Position

	Cities int
	Score  float64

	Military Military

	// Projects are national project slugs. Some projects grant extra
	// offensive war slots; the mapping lives in configuration.
	Projects []string

	// LastActive is nil when the intel feed has never seen the nation
	// log in. Scoring treats that as "assume inactive" rather than an
	// error.
	LastActive *time.Time

	OffensiveWars int
	DefensiveWars int

	// RecentWarDeclares counts wars this nation declared inside the
	// intel window, a proxy for its current operational tempo.
	RecentWarDeclares int

	// WarWins and InfraDestroyed summarize prior war performance.
	WarWins        int
	InfraDestroyed float64

	// Beige and VacationMode are the game's protection states. A nation
	// under either cannot be engaged normally.
	Beige        bool
	VacationMode bool
}

// Protected reports whether the nation is under any protection state.
func (n *Nation) Protected() bool {
	return n.Beige || n.VacationMode
}

// HoursSinceActive returns the hours elapsed since the nation was last
// seen, measured at now. The second return is false when no activity has
// ever been recorded.
func (n *Nation) HoursSinceActive(now time.Time) (float64, bool) {
	if n.LastActive == nil {
		return 0, false
	}
	return now.Sub(*n.LastActive).Hours(), true
}

// HasProject reports whether the nation has the given project slug.
func (n *Nation) HasProject(slug string) bool {
	for _, p := range n.Projects {
		if p == slug {
			return true
		}
	}
	return false
}
