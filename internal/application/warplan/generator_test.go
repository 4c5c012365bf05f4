package warplan_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/adapters/cache"
	"github.com/castlebay/warroom-go/internal/adapters/persistence"
	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/application/warplan"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/internal/infrastructure/config"
	"github.com/castlebay/warroom-go/test/helpers"
)

// fixture wires a generator against an in-memory database, a canned war
// gauge, and a frozen clock.
type fixture struct {
	t     *testing.T
	db    *gorm.DB
	cfg   *config.Config
	repos campaign.Repos
	uow   campaign.UnitOfWork
	gauge *helpers.MockWarGauge
	clock *shared.MockClock
	cache *cache.MemoryCache
	gen   *warplan.Generator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := helpers.NewTestDB(t)
	cfg := config.DefaultConfig()
	clock := shared.NewMockClock(helpers.BaseTime)
	gauge := helpers.NewMockWarGauge()
	memCache := cache.NewMemoryCache(clock)

	repos := campaign.Repos{
		Campaigns:   persistence.NewGormCampaignRepository(db),
		Targets:     persistence.NewGormTargetRepository(db),
		Assignments: persistence.NewGormAssignmentRepository(db),
		Squads:      persistence.NewGormSquadRepository(db),
	}
	uow := persistence.NewGormUnitOfWork(db)

	priority := warplan.NewPriorityScorer(
		scoring.NewPriorityScorer(cfg.Scoring.Priority),
		memCache,
		gauge,
		clock,
		cfg.Scoring.PriorityCacheTTL,
		cfg.Scoring.PriorityWaitTimeout,
	)
	gen := warplan.NewGenerator(
		scoring.NewMatchScorer(cfg.Scoring.Match),
		priority,
		gauge,
		uow,
		common.NewKeyedLock(),
		clock,
		generatorParams(cfg),
	)

	return &fixture{t: t, db: db, cfg: cfg, repos: repos, uow: uow, gauge: gauge, clock: clock, cache: memCache, gen: gen}
}

func generatorParams(cfg *config.Config) warplan.GeneratorParams {
	return warplan.GeneratorParams{
		LockWait:             cfg.Generator.LockWait,
		AutoFloor:            cfg.Scoring.AutoFloor,
		BaseSlotCap:          cfg.Generator.BaseSlotCap,
		ProjectSlotModifiers: cfg.Generator.ProjectSlotModifiers,
		MemberMaxAssignments: cfg.Generator.MemberMaxAssignments,
		LeaderMaxAssignments: cfg.Generator.LeaderMaxAssignments,
		OffensiveLoadPenalty: cfg.Generator.OffensiveLoadPenalty,
		DefensiveLoadPenalty: cfg.Generator.DefensiveLoadPenalty,
		TempoDeclareNorm:     cfg.Generator.TempoDeclareNorm,
	}
}

func (f *fixture) campaign(id string, params campaign.Params) *campaign.Campaign {
	f.t.Helper()
	c, err := campaign.NewCampaign(id, "Plan "+id, campaign.KindWarPlan, campaign.WarTypeOrdinary, params, f.clock.Now())
	require.NoError(f.t, err)
	require.NoError(f.t, f.repos.Campaigns.Save(context.Background(), c))
	return c
}

func defaultParams() campaign.Params {
	return campaign.Params{
		PreferredAssignees:     3,
		MaxSquadSize:           4,
		CohesionToleranceHours: 48,
		ActivityWindowHours:    72,
	}
}

func (f *fixture) assignments(campaignID string) []*campaign.Assignment {
	f.t.Helper()
	all, err := f.repos.Assignments.ListByCampaign(context.Background(), campaignID)
	require.NoError(f.t, err)
	return all
}

func assignedNations(assignments []*campaign.Assignment) map[int]int {
	counts := make(map[int]int)
	for _, a := range assignments {
		counts[a.NationID]++
	}
	return counts
}

func pairKeys(assignments []*campaign.Assignment) []string {
	keys := make([]string, 0, len(assignments))
	for _, a := range assignments {
		keys = append(keys, fmt.Sprintf("%d:%d:%.6f", a.TargetID, a.NationID, a.Score))
	}
	return keys
}

func TestGeneratorProposesAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-basic", defaultParams())

	enemies := []*nation.Nation{
		helpers.NewNation(101, helpers.WithAlliance(900)),
		helpers.NewNation(102, helpers.WithAlliance(900)),
	}
	pool := []*nation.Nation{
		helpers.NewNation(1),
		helpers.NewNation(2),
		helpers.NewNation(3),
		helpers.NewNation(4),
	}

	result, err := f.gen.Generate(ctx, camp, enemies, pool, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TargetsScored)
	assert.Equal(t, 6, result.AssignmentsProposed)
	assert.Zero(t, result.AssignmentsPreserved)

	all := f.assignments(camp.ID)
	require.Len(t, all, 6)
	for _, a := range all {
		assert.Equal(t, campaign.AssignmentProposed, a.Status)
		assert.NotEmpty(t, a.Breakdown)
		assert.Greater(t, a.Score, 0.0)
	}

	targets, err := f.repos.Targets.ListByCampaign(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	for _, target := range targets {
		assert.Greater(t, target.Priority, 0.0)
		assert.NotNil(t, target.PriorityComputedAt)
	}
}

func TestGeneratorIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-idem", defaultParams())

	enemies := []*nation.Nation{
		helpers.NewNation(101, helpers.WithAlliance(900)),
		helpers.NewNation(102, helpers.WithAlliance(900), helpers.WithCities(11)),
		helpers.NewNation(103, helpers.WithAlliance(900), helpers.WithScore(1200)),
	}
	pool := []*nation.Nation{
		helpers.NewNation(1),
		helpers.NewNation(2, helpers.WithLastActive(helpers.HoursAgo(10))),
		helpers.NewNation(3, helpers.WithCities(12)),
		helpers.NewNation(4, helpers.WithScore(1100)),
		helpers.NewNation(5),
	}

	_, err := f.gen.Generate(ctx, camp, enemies, pool, true)
	require.NoError(t, err)
	first := f.assignments(camp.ID)
	require.NotEmpty(t, first)

	second := first
	for run := 0; run < 2; run++ {
		_, err = f.gen.Generate(ctx, camp, enemies, pool, true)
		require.NoError(t, err)
		second = f.assignments(camp.ID)
		assert.ElementsMatch(t, pairKeys(first), pairKeys(second))
	}

	// The upsert reuses rows, so even the IDs survive a rerun.
	firstIDs := make([]uint, 0, len(first))
	for _, a := range first {
		firstIDs = append(firstIDs, a.ID)
	}
	secondIDs := make([]uint, 0, len(second))
	for _, a := range second {
		secondIDs = append(secondIDs, a.ID)
	}
	assert.ElementsMatch(t, firstIDs, secondIDs)
}

func TestGeneratorSkipsNationsWithoutFreeSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-slots", defaultParams())

	enemies := []*nation.Nation{helpers.NewNation(101, helpers.WithAlliance(900))}
	saturated := helpers.NewNation(1)
	free := helpers.NewNation(2)
	f.gauge.Counts[saturated.ID] = nation.WarCounts{Offensive: f.cfg.Generator.BaseSlotCap}

	_, err := f.gen.Generate(ctx, camp, enemies, []*nation.Nation{saturated, free}, true)
	require.NoError(t, err)

	counts := assignedNations(f.assignments(camp.ID))
	assert.Zero(t, counts[saturated.ID], "a nation with every offensive slot in use must never be selected")
	assert.Equal(t, 1, counts[free.ID])
}

func TestGeneratorRespectsAssignmentCaps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	params := defaultParams()
	params.PreferredAssignees = 2
	camp := f.campaign("plan-caps", params)

	enemies := []*nation.Nation{
		helpers.NewNation(101, helpers.WithAlliance(900)),
		helpers.NewNation(102, helpers.WithAlliance(900)),
		helpers.NewNation(103, helpers.WithAlliance(900)),
		helpers.NewNation(104, helpers.WithAlliance(900)),
	}
	// Two members against eight requested seats: the per-nation cap has
	// to leave some seats unfilled.
	pool := []*nation.Nation{helpers.NewNation(1), helpers.NewNation(2)}

	_, err := f.gen.Generate(ctx, camp, enemies, pool, true)
	require.NoError(t, err)

	counts := assignedNations(f.assignments(camp.ID))
	for id, n := range counts {
		assert.LessOrEqual(t, n, f.cfg.Generator.MemberMaxAssignments, "nation %d over cap", id)
	}
}

func TestGeneratorAppliesLeaderCap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	params := defaultParams()
	params.PreferredAssignees = 1
	camp := f.campaign("plan-leader", params)

	enemies := []*nation.Nation{
		helpers.NewNation(101, helpers.WithAlliance(900)),
		helpers.NewNation(102, helpers.WithAlliance(900)),
		helpers.NewNation(103, helpers.WithAlliance(900)),
	}
	leader := helpers.NewNation(1, helpers.WithPosition(nation.PositionLeader))

	_, err := f.gen.Generate(ctx, camp, enemies, []*nation.Nation{leader}, true)
	require.NoError(t, err)

	counts := assignedNations(f.assignments(camp.ID))
	assert.Equal(t, f.cfg.Generator.LeaderMaxAssignments, counts[leader.ID])
}

func TestGeneratorPreservesLockedRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-locks", defaultParams())

	enemies := []*nation.Nation{helpers.NewNation(101, helpers.WithAlliance(900))}
	pool := []*nation.Nation{
		helpers.NewNation(1),
		helpers.NewNation(2),
		helpers.NewNation(3),
		helpers.NewNation(4),
	}

	_, err := f.gen.Generate(ctx, camp, enemies, pool, true)
	require.NoError(t, err)

	all := f.assignments(camp.ID)
	require.Len(t, all, 3)
	locked := all[0]
	locked.Locked = true
	require.NoError(t, f.repos.Assignments.Save(ctx, locked))

	// Make the locked nation unselectable on merit. Regeneration must
	// keep the row anyway.
	f.gauge.Counts[locked.NationID] = nation.WarCounts{Offensive: f.cfg.Generator.BaseSlotCap}

	result, err := f.gen.Generate(ctx, camp, enemies, pool, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.AssignmentsPreserved)

	counts := assignedNations(f.assignments(camp.ID))
	assert.Equal(t, 1, counts[locked.NationID])

	reloaded := f.assignments(camp.ID)
	for _, a := range reloaded {
		if a.ID == locked.ID {
			assert.True(t, a.Locked)
			assert.Equal(t, locked.Score, a.Score, "a preserved row keeps its score")
		}
	}

	// Without lock protection the saturated nation loses the seat.
	_, err = f.gen.Generate(ctx, camp, enemies, pool, false)
	require.NoError(t, err)
	counts = assignedNations(f.assignments(camp.ID))
	assert.Zero(t, counts[locked.NationID])
}

func TestGeneratorPrefersSquadmatesOfLockedMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-squadmates", defaultParams())

	enemy := helpers.NewNation(101, helpers.WithAlliance(900))
	anchor := helpers.NewNation(1)
	mateA := helpers.NewNation(2, helpers.WithLastActive(helpers.HoursAgo(40)))
	mateB := helpers.NewNation(3, helpers.WithLastActive(helpers.HoursAgo(40)))
	outsider := helpers.NewNation(4, helpers.WithLastActive(helpers.HoursAgo(1)))
	pool := []*nation.Nation{anchor, mateA, mateB, outsider}

	_, err := f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
	require.NoError(t, err)

	targets, err := f.repos.Targets.ListByCampaign(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	target := targets[0]

	// Seed an established squad of anchor + both mates, lock the anchor,
	// and drop the mates' rows so regeneration has to re-earn them.
	squad := &campaign.Squad{CampaignID: camp.ID, TargetID: target.ID, Label: "Squad 1", Round: 1}
	require.NoError(t, f.repos.Squads.Save(ctx, squad))

	now := f.clock.Now()
	var dropIDs []uint
	for _, a := range f.assignments(camp.ID) {
		switch a.NationID {
		case anchor.ID:
			a.Locked = true
			a.SquadID = &squad.ID
			require.NoError(t, f.repos.Assignments.Save(ctx, a))
		default:
			dropIDs = append(dropIDs, a.ID)
		}
	}
	require.NoError(t, f.repos.Assignments.DeleteByIDs(ctx, dropIDs))
	for _, mate := range []*nation.Nation{mateA, mateB} {
		require.NoError(t, f.repos.Assignments.Save(ctx, &campaign.Assignment{
			CampaignID: camp.ID, TargetID: target.ID, NationID: mate.ID,
			Score: 50, Breakdown: scoring.Breakdown{}, Status: campaign.AssignmentProposed,
			SquadID: &squad.ID, CreatedAt: now, UpdatedAt: now,
		}))
	}

	// The outsider outscores both mates on activity, but shared squad
	// history with the locked anchor wins the two open seats.
	_, err = f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
	require.NoError(t, err)

	counts := assignedNations(f.assignments(camp.ID))
	assert.Equal(t, 1, counts[anchor.ID])
	assert.Equal(t, 1, counts[mateA.ID])
	assert.Equal(t, 1, counts[mateB.ID])
	assert.Zero(t, counts[outsider.ID])
}

func TestGeneratorOverflowingSquadGroupYieldsOneSeat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-squad-overflow", defaultParams())

	enemy := helpers.NewNation(101, helpers.WithAlliance(900))
	anchor := helpers.NewNation(1)
	mates := []*nation.Nation{
		helpers.NewNation(2, helpers.WithLastActive(helpers.HoursAgo(40))),
		helpers.NewNation(3, helpers.WithLastActive(helpers.HoursAgo(40))),
		helpers.NewNation(4, helpers.WithLastActive(helpers.HoursAgo(40))),
	}
	outsider := helpers.NewNation(5, helpers.WithLastActive(helpers.HoursAgo(1)))
	pool := append([]*nation.Nation{anchor}, mates...)
	pool = append(pool, outsider)

	_, err := f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
	require.NoError(t, err)

	targets, err := f.repos.Targets.ListByCampaign(ctx, camp.ID)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	target := targets[0]

	squad := &campaign.Squad{CampaignID: camp.ID, TargetID: target.ID, Label: "Squad 1", Round: 1}
	require.NoError(t, f.repos.Squads.Save(ctx, squad))

	now := f.clock.Now()
	var dropIDs []uint
	for _, a := range f.assignments(camp.ID) {
		if a.NationID == anchor.ID {
			a.Locked = true
			a.SquadID = &squad.ID
			require.NoError(t, f.repos.Assignments.Save(ctx, a))
		} else {
			dropIDs = append(dropIDs, a.ID)
		}
	}
	require.NoError(t, f.repos.Assignments.DeleteByIDs(ctx, dropIDs))
	for _, mate := range mates {
		require.NoError(t, f.repos.Assignments.Save(ctx, &campaign.Assignment{
			CampaignID: camp.ID, TargetID: target.ID, NationID: mate.ID,
			Score: 50, Breakdown: scoring.Breakdown{}, Status: campaign.AssignmentProposed,
			SquadID: &squad.ID, CreatedAt: now, UpdatedAt: now,
		}))
	}

	// Three former squadmates compete for two open seats. The group does
	// not fit, so it yields a single seat and the best-scoring outsider
	// claims the other instead of a second mate.
	_, err = f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
	require.NoError(t, err)

	counts := assignedNations(f.assignments(camp.ID))
	assert.Equal(t, 1, counts[anchor.ID])
	assert.Equal(t, 1, counts[outsider.ID])
	mateSeats := 0
	for _, m := range mates {
		mateSeats += counts[m.ID]
	}
	assert.Equal(t, 1, mateSeats, "an overflowing squad group falls back to one member")
}

func enemySet(ns ...*nation.Nation) []*nation.Nation { return ns }

func TestGeneratorSquadConstruction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("splits oversized teams into bounded squads", func(t *testing.T) {
		params := defaultParams()
		params.PreferredAssignees = 6
		camp := f.campaign("plan-squads", params)

		pool := make([]*nation.Nation, 0, 6)
		for i := 1; i <= 6; i++ {
			pool = append(pool, helpers.NewNation(i))
		}

		result, err := f.gen.Generate(ctx, camp, enemySet(helpers.NewNation(101, helpers.WithAlliance(900))), pool, true)
		require.NoError(t, err)
		assert.Equal(t, 2, result.SquadsBuilt)

		squads, err := f.repos.Squads.ListByCampaign(ctx, camp.ID)
		require.NoError(t, err)
		require.Len(t, squads, 2)

		members := make(map[uint]int)
		for _, a := range f.assignments(camp.ID) {
			require.NotNil(t, a.SquadID, "every assignment belongs to a squad")
			members[*a.SquadID]++
		}
		for id, n := range members {
			assert.LessOrEqual(t, n, params.MaxSquadSize, "squad %d over size", id)
		}
		for _, s := range squads {
			assert.Greater(t, s.Cohesion, 0.0)
		}
	})

	t.Run("deletes squads left empty by regeneration", func(t *testing.T) {
		camp := f.campaign("plan-empty-squads", defaultParams())
		enemy := helpers.NewNation(102, helpers.WithAlliance(900))
		pool := []*nation.Nation{helpers.NewNation(11), helpers.NewNation(12)}

		_, err := f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
		require.NoError(t, err)
		squads, err := f.repos.Squads.ListByCampaign(ctx, camp.ID)
		require.NoError(t, err)
		require.NotEmpty(t, squads)

		// An emptied pool clears every proposed row and with it the squads.
		_, err = f.gen.Generate(ctx, camp, enemySet(enemy), nil, true)
		require.NoError(t, err)
		assert.Empty(t, f.assignments(camp.ID))
		squads, err = f.repos.Squads.ListByCampaign(ctx, camp.ID)
		require.NoError(t, err)
		assert.Empty(t, squads)
	})

	t.Run("shrunken size bound spills preserved members", func(t *testing.T) {
		params := defaultParams()
		params.PreferredAssignees = 4
		camp := f.campaign("plan-squad-shrink", params)
		enemy := helpers.NewNation(103, helpers.WithAlliance(900))

		pool := make([]*nation.Nation, 0, 4)
		for i := 21; i <= 24; i++ {
			pool = append(pool, helpers.NewNation(i))
		}

		_, err := f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
		require.NoError(t, err)
		for _, a := range f.assignments(camp.ID) {
			a.Locked = true
			require.NoError(t, f.repos.Assignments.Save(ctx, a))
		}

		// The operator tightens the squad size after the fact. Locked
		// members over the new bound move to a fresh squad rather than
		// leaving the old one oversized.
		camp.Params.MaxSquadSize = 2
		require.NoError(t, f.repos.Campaigns.Save(ctx, camp))

		_, err = f.gen.Generate(ctx, camp, enemySet(enemy), pool, true)
		require.NoError(t, err)

		members := make(map[uint]int)
		for _, a := range f.assignments(camp.ID) {
			require.NotNil(t, a.SquadID)
			assert.True(t, a.Locked)
			members[*a.SquadID]++
		}
		require.Len(t, members, 2)
		for id, n := range members {
			assert.LessOrEqual(t, n, 2, "squad %d over the tightened size", id)
		}
	})
}

func TestGeneratorLockContention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	camp := f.campaign("plan-contended", defaultParams())

	locks := common.NewKeyedLock()
	gen := warplan.NewGenerator(
		scoring.NewMatchScorer(f.cfg.Scoring.Match),
		warplan.NewPriorityScorer(
			scoring.NewPriorityScorer(f.cfg.Scoring.Priority),
			f.cache, f.gauge, f.clock,
			f.cfg.Scoring.PriorityCacheTTL, f.cfg.Scoring.PriorityWaitTimeout,
		),
		f.gauge, f.uow, locks, f.clock,
		warplan.GeneratorParams{
			LockWait:             20 * time.Millisecond,
			AutoFloor:            f.cfg.Scoring.AutoFloor,
			BaseSlotCap:          f.cfg.Generator.BaseSlotCap,
			MemberMaxAssignments: 3,
			LeaderMaxAssignments: 2,
			TempoDeclareNorm:     3,
		},
	)

	release, err := locks.Acquire(ctx, "campaign:"+camp.ID, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = gen.Generate(ctx, camp, enemySet(helpers.NewNation(101)), []*nation.Nation{helpers.NewNation(1)}, true)
	var timeout *shared.LockTimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "campaign:"+camp.ID, timeout.Key)
}
