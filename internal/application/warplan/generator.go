package warplan

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/pkg/utils"
)

// Generator produces the assignment set of a war plan. One generation
// runs per campaign at a time, guarded by an advisory lock, and all
// writes happen inside a single transaction so a failed pass never
// leaves partial assignments behind.
type Generator struct {
	matcher  *scoring.MatchScorer
	priority *PriorityScorer
	wars     nation.WarGauge
	uow      campaign.UnitOfWork
	locks    *common.KeyedLock
	clock    shared.Clock
	params   GeneratorParams
}

// NewGenerator creates a generator.
func NewGenerator(
	matcher *scoring.MatchScorer,
	priority *PriorityScorer,
	wars nation.WarGauge,
	uow campaign.UnitOfWork,
	locks *common.KeyedLock,
	clock shared.Clock,
	params GeneratorParams,
) *Generator {
	return &Generator{
		matcher:  matcher,
		priority: priority,
		wars:     wars,
		uow:      uow,
		locks:    locks,
		clock:    clock,
		params:   params,
	}
}

// GenerationResult summarizes one generation pass.
type GenerationResult struct {
	TargetsScored        int
	AssignmentsProposed  int
	AssignmentsPreserved int
	AssignmentsRemoved   int
	SquadsBuilt          int
}

// candidate is one scored friendly option for a target.
type candidate struct {
	profile   *FriendlyProfile
	result    scoring.Result
	penalized float64
	prevSquad *uint
}

// Generate regenerates the proposed assignments of the campaign from the
// given enemy and friendly pools. Rows that are locked, overridden, or
// finalized survive untouched when respectLocks is true; with it false
// every existing row is up for replacement. Running the pass twice with
// unchanged inputs produces the identical assignment set.
func (g *Generator) Generate(
	ctx context.Context,
	camp *campaign.Campaign,
	enemies []*nation.Nation,
	pool []*nation.Nation,
	respectLocks bool,
) (*GenerationResult, error) {
	release, err := g.locks.Acquire(ctx, "campaign:"+camp.ID, g.params.LockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	pool = SortPool(pool)

	var result *GenerationResult
	err = g.uow.Do(ctx, func(repos campaign.Repos) error {
		r, err := g.generate(ctx, repos, camp, enemies, pool, respectLocks)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (g *Generator) generate(
	ctx context.Context,
	repos campaign.Repos,
	camp *campaign.Campaign,
	enemies []*nation.Nation,
	pool []*nation.Nation,
	respectLocks bool,
) (*GenerationResult, error) {
	logger := common.LoggerFromContext(ctx)
	now := g.clock.Now()

	targets, err := g.priority.ComputeAndStore(ctx, camp, enemies, pool, repos.Targets)
	if err != nil {
		return nil, err
	}

	enemyByID := make(map[int]*nation.Nation, len(enemies))
	for _, e := range enemies {
		enemyByID[e.ID] = e
	}

	existing, err := repos.Assignments.ListByCampaign(ctx, camp.ID)
	if err != nil {
		return nil, err
	}

	// Previous squad membership survives row deletion only through this
	// map; the rebuild pass uses it to keep squadmates together.
	prevSquad := make(map[int]*uint, len(existing))
	for _, a := range existing {
		if a.SquadID != nil {
			prevSquad[a.NationID] = a.SquadID
		}
	}

	var preserved, regenerable []*campaign.Assignment
	for _, a := range existing {
		if respectLocks && a.Preserved() {
			preserved = append(preserved, a)
		} else {
			regenerable = append(regenerable, a)
		}
	}

	poolIDs := make([]int, 0, len(pool))
	for _, n := range pool {
		poolIDs = append(poolIDs, n.ID)
	}
	warCounts, err := g.wars.CountActive(ctx, poolIDs)
	if err != nil {
		return nil, err
	}
	profiles := BuildProfiles(pool, warCounts, preserved, g.params)

	friendlyRanks := strengthRanks(pool, g.matcher.UnitWeights())
	enemyRanks := strengthRanks(enemies, g.matcher.UnitWeights())
	rankCount := len(pool)
	if len(enemies) > rankCount {
		rankCount = len(enemies)
	}

	// Highest priority claims candidates first; ID pins the tie-break so
	// the pass is deterministic.
	sort.Slice(targets, func(i, j int) bool {
		if targets[i].Priority != targets[j].Priority {
			return targets[i].Priority > targets[j].Priority
		}
		return targets[i].ID < targets[j].ID
	})

	preservedByTarget := make(map[uint][]*campaign.Assignment)
	for _, a := range preserved {
		preservedByTarget[a.TargetID] = append(preservedByTarget[a.TargetID], a)
	}
	regenerableByTarget := make(map[uint]map[int]*campaign.Assignment)
	for _, a := range regenerable {
		if regenerableByTarget[a.TargetID] == nil {
			regenerableByTarget[a.TargetID] = make(map[int]*campaign.Assignment)
		}
		regenerableByTarget[a.TargetID][a.NationID] = a
	}

	res := &GenerationResult{
		TargetsScored:        len(targets),
		AssignmentsPreserved: len(preserved),
	}
	var removeIDs []uint

	for _, t := range targets {
		enemy, ok := enemyByID[t.EnemyNationID]
		if !ok {
			// Stale target: the enemy left the tracked alliances. Leave
			// its rows alone rather than guessing.
			logger.Log("WARN", "target enemy missing from intel, skipped", map[string]interface{}{
				"campaign_id": camp.ID,
				"target_id":   t.ID,
				"enemy_id":    t.EnemyNationID,
			})
			continue
		}

		kept := preservedByTarget[t.ID]
		keptNations := make(map[int]bool, len(kept))
		for _, a := range kept {
			keptNations[a.NationID] = true
		}

		need := camp.Params.PreferredAssignees - len(kept)
		leftover := regenerableByTarget[t.ID]

		if need <= 0 {
			for _, a := range leftover {
				removeIDs = append(removeIDs, a.ID)
			}
			continue
		}

		mctx := scoring.MatchContext{
			Mode:                   scoring.ModeAuto,
			Now:                    now,
			ActivityWindowHours:    camp.Params.ActivityWindowHours,
			CohesionToleranceHours: camp.Params.CohesionToleranceHours,
			CohesionReference:      cohesionReference(kept, profiles, now),
			EnemyTempo:             g.enemyTempo(enemy),
			TargetRank:             enemyRanks[enemy.ID],
			RankCount:              rankCount,
		}

		candidates := g.scoreCandidates(pool, enemy, profiles, keptNations, friendlyRanks, mctx)
		ordered := orderCandidates(candidates, prevSquad)
		selected := selectCandidates(ordered, need, keptSquads(kept))

		selectedNations := make(map[int]bool, len(selected))
		for _, c := range selected {
			selectedNations[c.profile.Nation.ID] = true
		}
		for nationID, a := range leftover {
			if !selectedNations[nationID] {
				removeIDs = append(removeIDs, a.ID)
			}
		}

		for _, c := range selected {
			row := &campaign.Assignment{
				CampaignID: camp.ID,
				TargetID:   t.ID,
				NationID:   c.profile.Nation.ID,
				Score:      c.result.Score,
				Breakdown:  c.result.Breakdown,
				Status:     campaign.AssignmentProposed,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if prev, ok := leftover[row.NationID]; ok {
				row.ID = prev.ID
				row.CreatedAt = prev.CreatedAt
			}
			if err := repos.Assignments.Save(ctx, row); err != nil {
				return nil, err
			}
			res.AssignmentsProposed++
		}
	}

	if len(removeIDs) > 0 {
		if err := repos.Assignments.DeleteByIDs(ctx, removeIDs); err != nil {
			return nil, err
		}
		res.AssignmentsRemoved = len(removeIDs)
	}

	squads, err := g.rebuildSquads(ctx, repos, camp, prevSquad)
	if err != nil {
		return nil, err
	}
	res.SquadsBuilt = squads

	return res, nil
}

// scoreCandidates evaluates every eligible pool member against the enemy
// and drops the ones the hard gates exclude.
func (g *Generator) scoreCandidates(
	pool []*nation.Nation,
	enemy *nation.Nation,
	profiles map[int]*FriendlyProfile,
	alreadyAssigned map[int]bool,
	friendlyRanks map[int]int,
	mctx scoring.MatchContext,
) []*candidate {
	var out []*candidate
	for _, n := range pool {
		if alreadyAssigned[n.ID] {
			continue
		}
		p := profiles[n.ID]
		if p == nil || !p.Selectable() {
			continue
		}
		if !scoring.CanAttack(n, enemy) {
			continue
		}

		c := mctx
		c.AvailableSlots = p.Headroom()
		c.AssignmentLoad = p.Load
		c.MaxAssignments = p.MaxAssignments
		c.SourceRank = friendlyRanks[n.ID]

		r := g.matcher.Evaluate(n, enemy, c)
		if r.Parity < g.params.AutoFloor {
			continue
		}

		penalized := r.Score -
			g.params.OffensiveLoadPenalty*float64(p.OffensiveWars) -
			g.params.DefensiveLoadPenalty*float64(p.DefensiveWars)
		if penalized <= 0 {
			continue
		}

		out = append(out, &candidate{profile: p, result: r, penalized: penalized})
	}
	return out
}

// orderCandidates annotates previous squad membership and ranks by
// penalized score, nation ID as the deterministic tie-break.
func orderCandidates(candidates []*candidate, prevSquad map[int]*uint) []*candidate {
	for _, c := range candidates {
		c.prevSquad = prevSquad[c.profile.Nation.ID]
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].penalized != candidates[j].penalized {
			return candidates[i].penalized > candidates[j].penalized
		}
		return candidates[i].profile.Nation.ID < candidates[j].profile.Nation.ID
	})
	return candidates
}

// selectCandidates fills up to need seats from the ranked candidates.
// Former squadmates of the target's preserved assignees go first,
// pulled as a whole group when the group fits the remaining seats. A
// group that would overflow contributes only its best member; the rest
// of the group competes on score like everyone else, so an existing
// squad is never fragmented across the cutoff.
func selectCandidates(ordered []*candidate, need int, squadIDs map[uint]bool) []*candidate {
	selected := make([]*candidate, 0, need)
	taken := make(map[*candidate]bool, need)
	take := func(c *candidate) {
		c.profile.Load++
		taken[c] = true
		selected = append(selected, c)
	}

	if len(squadIDs) > 0 {
		groups := make(map[uint][]*candidate)
		var groupOrder []uint
		for _, c := range ordered {
			if !inSquads(c, squadIDs) || !c.profile.Selectable() {
				continue
			}
			id := *c.prevSquad
			if groups[id] == nil {
				groupOrder = append(groupOrder, id)
			}
			groups[id] = append(groups[id], c)
		}
		for _, id := range groupOrder {
			remaining := need - len(selected)
			if remaining <= 0 {
				break
			}
			group := groups[id]
			if len(group) > remaining {
				group = group[:1]
			}
			for _, c := range group {
				take(c)
			}
		}
	}

	for _, c := range ordered {
		if len(selected) == need {
			break
		}
		if taken[c] || !c.profile.Selectable() {
			continue
		}
		take(c)
	}
	return selected
}

func inSquads(c *candidate, squadIDs map[uint]bool) bool {
	return c.prevSquad != nil && squadIDs[*c.prevSquad]
}

func keptSquads(kept []*campaign.Assignment) map[uint]bool {
	out := make(map[uint]bool)
	for _, a := range kept {
		if a.SquadID != nil {
			out[*a.SquadID] = true
		}
	}
	return out
}

// cohesionReference is the mean hours-inactive across the target's
// preserved assignees, or nil when none of them has a known timestamp.
func cohesionReference(kept []*campaign.Assignment, profiles map[int]*FriendlyProfile, now time.Time) *float64 {
	var hours []float64
	for _, a := range kept {
		p := profiles[a.NationID]
		if p == nil {
			continue
		}
		if h, ok := p.Nation.HoursSinceActive(now); ok {
			hours = append(hours, h)
		}
	}
	if len(hours) == 0 {
		return nil
	}
	mean := utils.Mean(hours)
	return &mean
}

// enemyTempo normalizes recent war declares into [0, 1].
func (g *Generator) enemyTempo(enemy *nation.Nation) float64 {
	if g.params.TempoDeclareNorm <= 0 {
		return 0
	}
	return math.Min(1, float64(enemy.RecentWarDeclares)/float64(g.params.TempoDeclareNorm))
}

// strengthRanks assigns 1-based ranks by estimated strength, strongest
// first. Nations without a derivable strength rank last, by ID.
func strengthRanks(cohort []*nation.Nation, weights scoring.UnitWeights) map[int]int {
	type entry struct {
		id       int
		strength float64
		known    bool
	}
	entries := make([]entry, 0, len(cohort))
	for _, n := range cohort {
		st, ok := scoring.EstimatedStrength(n, weights)
		entries = append(entries, entry{id: n.ID, strength: st, known: ok})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].known != entries[j].known {
			return entries[i].known
		}
		if entries[i].strength != entries[j].strength {
			return entries[i].strength > entries[j].strength
		}
		return entries[i].id < entries[j].id
	})
	ranks := make(map[int]int, len(entries))
	for i, e := range entries {
		ranks[e.id] = i + 1
	}
	return ranks
}
