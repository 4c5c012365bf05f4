package warplan

import (
	"sort"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
)

// FriendlyProfile carries one candidate's slot and load situation,
// computed once per generator pass and shared across all targets.
type FriendlyProfile struct {
	Nation *nation.Nation

	// Slots is the nation's offensive slot budget: base cap plus
	// project modifiers, minus currently active offensive wars.
	Slots int

	// Load is the number of assignments currently counted against the
	// nation, starting from preserved rows and incremented as the pass
	// selects it.
	Load int

	// MaxAssignments caps Load; reduced for leadership positions.
	MaxAssignments int

	OffensiveWars int
	DefensiveWars int
}

// Headroom is the effective free slot count after assignment load.
func (p *FriendlyProfile) Headroom() int {
	return p.Slots - p.Load
}

// Selectable reports whether the nation can take one more assignment.
func (p *FriendlyProfile) Selectable() bool {
	return p.Headroom() > 0 && p.Load < p.MaxAssignments
}

// BuildProfiles computes a profile per pool member. preserved counts
// pre-existing assignments that regeneration will not touch; proposed
// rows are excluded so rescoring stays idempotent across runs.
func BuildProfiles(
	pool []*nation.Nation,
	warCounts map[int]nation.WarCounts,
	preserved []*campaign.Assignment,
	params GeneratorParams,
) map[int]*FriendlyProfile {
	preservedLoad := make(map[int]int)
	for _, a := range preserved {
		preservedLoad[a.NationID]++
	}

	profiles := make(map[int]*FriendlyProfile, len(pool))
	for _, n := range pool {
		wc := warCounts[n.ID]

		slots := params.BaseSlotCap
		for slug, bonus := range params.ProjectSlotModifiers {
			if n.HasProject(slug) {
				slots += bonus
			}
		}
		slots -= wc.Offensive

		maxAssignments := params.MemberMaxAssignments
		if n.Position.IsLeadership() {
			maxAssignments = params.LeaderMaxAssignments
		}

		profiles[n.ID] = &FriendlyProfile{
			Nation:         n,
			Slots:          slots,
			Load:           preservedLoad[n.ID],
			MaxAssignments: maxAssignments,
			OffensiveWars:  wc.Offensive,
			DefensiveWars:  wc.Defensive,
		}
	}
	return profiles
}

// SortPool orders a candidate pool by nation ID so every pass iterates
// candidates in the same order. Candidate ranking is score-based; this
// only pins the tie-break.
func SortPool(pool []*nation.Nation) []*nation.Nation {
	sorted := make([]*nation.Nation, len(pool))
	copy(sorted, pool)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	return sorted
}
