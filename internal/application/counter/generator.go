// Package counter implements reactive counter campaigns: when an enemy
// declares on a friendly nation, a single-target campaign proposes a
// team of counters against the aggressor.
package counter

import (
	"context"
	"sort"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/application/warplan"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// Generator proposes one team of counters against a counter campaign's
// aggressor. It shares the war plan generator's candidate pipeline but
// serves a single target and builds no squads.
type Generator struct {
	matcher *scoring.MatchScorer
	wars    nation.WarGauge
	uow     campaign.UnitOfWork
	locks   *common.KeyedLock
	clock   shared.Clock
	params  warplan.GeneratorParams
}

// NewGenerator creates a counter generator.
func NewGenerator(
	matcher *scoring.MatchScorer,
	wars nation.WarGauge,
	uow campaign.UnitOfWork,
	locks *common.KeyedLock,
	clock shared.Clock,
	params warplan.GeneratorParams,
) *Generator {
	return &Generator{
		matcher: matcher,
		wars:    wars,
		uow:     uow,
		locks:   locks,
		clock:   clock,
		params:  params,
	}
}

// ProposalResult summarizes one proposal pass.
type ProposalResult struct {
	TargetID  uint
	Proposed  int
	Preserved int
	Removed   int
}

// Propose regenerates the counter team against the aggressor. With
// respectLocks false every existing row is rebuilt from a fresh intel
// snapshot, locked and overridden rows included.
func (g *Generator) Propose(
	ctx context.Context,
	camp *campaign.Campaign,
	aggressor *nation.Nation,
	pool []*nation.Nation,
	respectLocks bool,
) (*ProposalResult, error) {
	release, err := g.locks.Acquire(ctx, "campaign:"+camp.ID, g.params.LockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	pool = warplan.SortPool(pool)
	now := g.clock.Now()

	var result *ProposalResult
	err = g.uow.Do(ctx, func(repos campaign.Repos) error {
		target, err := g.ensureTarget(ctx, repos, camp, aggressor)
		if err != nil {
			return err
		}

		existing, err := repos.Assignments.ListByCampaign(ctx, camp.ID)
		if err != nil {
			return err
		}
		var preserved []*campaign.Assignment
		leftover := make(map[int]*campaign.Assignment)
		keptNations := make(map[int]bool)
		for _, a := range existing {
			if respectLocks && a.Preserved() {
				preserved = append(preserved, a)
				keptNations[a.NationID] = true
			} else {
				leftover[a.NationID] = a
			}
		}

		poolIDs := make([]int, 0, len(pool))
		for _, n := range pool {
			poolIDs = append(poolIDs, n.ID)
		}
		warCounts, err := g.wars.CountActive(ctx, poolIDs)
		if err != nil {
			return err
		}
		profiles := warplan.BuildProfiles(pool, warCounts, preserved, g.params)

		need := camp.Params.PreferredAssignees - len(preserved)
		result = &ProposalResult{TargetID: target.ID, Preserved: len(preserved)}
		if need <= 0 {
			return g.removeAll(ctx, repos, leftover, result)
		}

		tempo := 0.0
		if g.params.TempoDeclareNorm > 0 {
			tempo = float64(aggressor.RecentWarDeclares) / float64(g.params.TempoDeclareNorm)
			if tempo > 1 {
				tempo = 1
			}
		}

		type scored struct {
			profile   *warplan.FriendlyProfile
			result    scoring.Result
			penalized float64
		}
		var candidates []scored
		for _, n := range pool {
			if keptNations[n.ID] {
				continue
			}
			p := profiles[n.ID]
			if p == nil || !p.Selectable() {
				continue
			}
			if !scoring.CanAttack(n, aggressor) {
				continue
			}
			r := g.matcher.Evaluate(n, aggressor, scoring.MatchContext{
				Mode:                   scoring.ModeAuto,
				Now:                    now,
				AvailableSlots:         p.Headroom(),
				AssignmentLoad:         p.Load,
				MaxAssignments:         p.MaxAssignments,
				ActivityWindowHours:    camp.Params.ActivityWindowHours,
				CohesionToleranceHours: camp.Params.CohesionToleranceHours,
				EnemyTempo:             tempo,
			})
			if r.Parity < g.params.AutoFloor {
				continue
			}
			penalized := r.Score -
				g.params.OffensiveLoadPenalty*float64(p.OffensiveWars) -
				g.params.DefensiveLoadPenalty*float64(p.DefensiveWars)
			if penalized <= 0 {
				continue
			}
			candidates = append(candidates, scored{profile: p, result: r, penalized: penalized})
		}

		sort.Slice(candidates, func(i, j int) bool {
			if candidates[i].penalized != candidates[j].penalized {
				return candidates[i].penalized > candidates[j].penalized
			}
			return candidates[i].profile.Nation.ID < candidates[j].profile.Nation.ID
		})
		if len(candidates) > need {
			candidates = candidates[:need]
		}

		selected := make(map[int]bool, len(candidates))
		for _, c := range candidates {
			selected[c.profile.Nation.ID] = true
		}
		var removeIDs []uint
		for nationID, a := range leftover {
			if !selected[nationID] {
				removeIDs = append(removeIDs, a.ID)
			}
		}
		if err := repos.Assignments.DeleteByIDs(ctx, removeIDs); err != nil {
			return err
		}
		result.Removed = len(removeIDs)

		for _, c := range candidates {
			row := &campaign.Assignment{
				CampaignID: camp.ID,
				TargetID:   target.ID,
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
				return err
			}
			result.Proposed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ensureTarget upserts the campaign's single target row for the
// aggressor. Counter priority is moot with one target; the row exists so
// assignments have somewhere to hang.
func (g *Generator) ensureTarget(ctx context.Context, repos campaign.Repos, camp *campaign.Campaign, aggressor *nation.Nation) (*campaign.Target, error) {
	targets, err := repos.Targets.ListByCampaign(ctx, camp.ID)
	if err != nil {
		return nil, err
	}
	for _, t := range targets {
		if t.EnemyNationID == aggressor.ID {
			return t, nil
		}
	}
	t := &campaign.Target{
		CampaignID:    camp.ID,
		EnemyNationID: aggressor.ID,
		WarType:       camp.DefaultWarType,
	}
	if err := repos.Targets.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (g *Generator) removeAll(ctx context.Context, repos campaign.Repos, leftover map[int]*campaign.Assignment, result *ProposalResult) error {
	var ids []uint
	for _, a := range leftover {
		ids = append(ids, a.ID)
	}
	if err := repos.Assignments.DeleteByIDs(ctx, ids); err != nil {
		return err
	}
	result.Removed = len(ids)
	return nil
}
