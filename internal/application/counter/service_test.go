package counter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/adapters/cache"
	"github.com/castlebay/warroom-go/internal/adapters/persistence"
	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/application/counter"
	"github.com/castlebay/warroom-go/internal/application/warplan"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/internal/infrastructure/config"
	"github.com/castlebay/warroom-go/test/helpers"
)

type fixture struct {
	t       *testing.T
	db      *gorm.DB
	cfg     *config.Config
	repos   campaign.Repos
	nations *helpers.MockNationRepository
	gauge   *helpers.MockWarGauge
	clock   *shared.MockClock
	events  *helpers.EventRecorder
	planner *warplan.Planner
	service *counter.Service
}

func makeGenParams(cfg *config.Config) warplan.GeneratorParams {
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

func makePlannerParams(cfg *config.Config) warplan.PlannerParams {
	return warplan.PlannerParams{
		DefaultPreferredAssignees: cfg.Generator.DefaultPreferredAssignees,
		DefaultMaxSquadSize:       cfg.Generator.DefaultMaxSquadSize,
		DefaultCohesionTolerance:  cfg.Generator.DefaultCohesionTolerance,
		DefaultActivityWindow:     cfg.Generator.DefaultActivityWindow,
		SuppressionCacheTTL:       cfg.Generator.SuppressionCacheTTL,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := helpers.NewTestDB(t)
	cfg := config.DefaultConfig()
	clock := shared.NewMockClock(helpers.BaseTime)
	gauge := helpers.NewMockWarGauge()
	nations := helpers.NewMockNationRepository()
	events := helpers.NewEventRecorder()
	memCache := cache.NewMemoryCache(clock)

	repos := campaign.Repos{
		Campaigns:   persistence.NewGormCampaignRepository(db),
		Targets:     persistence.NewGormTargetRepository(db),
		Assignments: persistence.NewGormAssignmentRepository(db),
		Squads:      persistence.NewGormSquadRepository(db),
	}
	uow := persistence.NewGormUnitOfWork(db)
	matcher := scoring.NewMatchScorer(cfg.Scoring.Match)

	genParams := makeGenParams(cfg)
	plannerParams := makePlannerParams(cfg)

	planner := warplan.NewPlanner(repos, uow, nations, gauge, matcher, events, memCache, clock, plannerParams, genParams)
	generator := counter.NewGenerator(matcher, gauge, uow, common.NewKeyedLock(), clock, genParams)
	service := counter.NewService(repos, nations, generator, planner, events, clock, plannerParams)

	return &fixture{
		t: t, db: db, cfg: cfg, repos: repos, nations: nations, gauge: gauge,
		clock: clock, events: events, planner: planner, service: service,
	}
}

// seedAlliance registers a defender (alliance 1) under attack by an
// aggressor from alliance 900, plus enough members to field a team.
func (f *fixture) seedAlliance() (aggressor, defender *nation.Nation) {
	aggressor = helpers.NewNation(500, helpers.WithAlliance(900))
	defender = helpers.NewNation(1)
	f.nations.Add(
		aggressor,
		defender,
		helpers.NewNation(2),
		helpers.NewNation(3),
		helpers.NewNation(4),
		helpers.NewNation(5, helpers.WithPosition(nation.PositionApplicant)),
	)
	return aggressor, defender
}

func (f *fixture) assignments(campaignID string) []*campaign.Assignment {
	f.t.Helper()
	all, err := f.repos.Assignments.ListByCampaign(context.Background(), campaignID)
	require.NoError(f.t, err)
	return all
}

func TestCounterPropose(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a draft counter with a proposed team", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()

		camp, suppressed, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)
		assert.False(t, suppressed)
		require.NotNil(t, camp)

		assert.Equal(t, campaign.KindCounter, camp.Kind)
		assert.Equal(t, campaign.StatusDraft, camp.Status)
		assert.Equal(t, aggressor.ID, camp.AggressorNationID)
		assert.Contains(t, camp.Name, aggressor.Name)

		friendly, err := f.repos.Campaigns.ListAlliances(ctx, camp.ID, campaign.RoleFriendly)
		require.NoError(t, err)
		assert.Equal(t, []int{defender.AllianceID}, friendly)
		enemy, err := f.repos.Campaigns.ListAlliances(ctx, camp.ID, campaign.RoleEnemy)
		require.NoError(t, err)
		assert.Equal(t, []int{aggressor.AllianceID}, enemy)

		targets, err := f.repos.Targets.ListByCampaign(ctx, camp.ID)
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, aggressor.ID, targets[0].EnemyNationID)

		team := f.assignments(camp.ID)
		assert.Len(t, team, f.cfg.Generator.DefaultPreferredAssignees)
		for _, a := range team {
			assert.Equal(t, campaign.AssignmentProposed, a.Status)
			assert.NotEqual(t, 5, a.NationID, "applicants never counter")
		}
	})

	t.Run("suppressed by an active war plan", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()

		plan, err := f.planner.CreatePlan(ctx, "Winter Offensive", campaign.WarTypeOrdinary, campaign.Params{SuppressCounters: true})
		require.NoError(t, err)
		require.NoError(t, f.planner.SetAlliances(ctx, plan.ID, campaign.RoleEnemy, []int{aggressor.AllianceID}))
		_, err = f.planner.Activate(ctx, plan.ID)
		require.NoError(t, err)

		camp, suppressed, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)
		assert.True(t, suppressed)
		assert.Nil(t, camp)
	})

	t.Run("unknown aggressor fails", func(t *testing.T) {
		f := newFixture(t)
		_, defender := f.seedAlliance()

		_, _, err := f.service.Propose(ctx, 999, defender.ID)
		var notFound *shared.NationNotFoundError
		assert.ErrorAs(t, err, &notFound)
	})
}

func TestCounterRegenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves locked rows", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()
		camp, _, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)

		team := f.assignments(camp.ID)
		require.NotEmpty(t, team)
		locked := team[0]
		locked.Locked = true
		require.NoError(t, f.repos.Assignments.Save(ctx, locked))
		f.gauge.Counts[locked.NationID] = nation.WarCounts{Offensive: f.cfg.Generator.BaseSlotCap}

		result, err := f.service.Regenerate(ctx, camp.ID, true)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Preserved)

		found := false
		for _, a := range f.assignments(camp.ID) {
			if a.ID == locked.ID {
				found = true
				assert.True(t, a.Locked)
			}
		}
		assert.True(t, found, "locked row must survive regeneration")
	})

	t.Run("forced regeneration replaces locked rows", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()
		camp, _, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)

		team := f.assignments(camp.ID)
		require.NotEmpty(t, team)
		stale := team[0]
		stale.Locked = true
		require.NoError(t, f.repos.Assignments.Save(ctx, stale))
		f.gauge.Counts[stale.NationID] = nation.WarCounts{Offensive: f.cfg.Generator.BaseSlotCap}

		result, err := f.service.Regenerate(ctx, camp.ID, false)
		require.NoError(t, err)
		assert.Zero(t, result.Preserved)

		for _, a := range f.assignments(camp.ID) {
			assert.NotEqual(t, stale.NationID, a.NationID, "a saturated nation has no place on a force-rebuilt team")
		}
	})

	t.Run("rejects a non-counter campaign", func(t *testing.T) {
		f := newFixture(t)
		f.seedAlliance()
		plan, err := f.planner.CreatePlan(ctx, "Winter Offensive", campaign.WarTypeOrdinary, campaign.Params{})
		require.NoError(t, err)

		_, err = f.service.Regenerate(ctx, plan.ID, true)
		var valErr *shared.ValidationError
		assert.ErrorAs(t, err, &valErr)
	})

	t.Run("rejects an archived counter", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()
		camp, _, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)
		_, err = f.service.Archive(ctx, camp.ID)
		require.NoError(t, err)

		_, err = f.service.Regenerate(ctx, camp.ID, true)
		var stateErr *shared.CampaignStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestCounterFinalize(t *testing.T) {
	ctx := context.Background()

	t.Run("flips the proposed team in place", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()
		camp, _, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)

		// Lock a member and then saturate their slots. Finalization
		// confirms the team as the operator left it, so the pinned
		// member stays on it regardless of fresh intel.
		team := f.assignments(camp.ID)
		require.NotEmpty(t, team)
		pinned := team[0]
		pinned.Locked = true
		require.NoError(t, f.repos.Assignments.Save(ctx, pinned))
		f.gauge.Counts[pinned.NationID] = nation.WarCounts{Offensive: f.cfg.Generator.BaseSlotCap}

		finalized, err := f.service.Finalize(ctx, camp.ID)
		require.NoError(t, err)
		assert.Equal(t, campaign.StatusActive, finalized.Status)

		confirmed := f.assignments(camp.ID)
		require.Len(t, confirmed, len(team))
		pinnedSurvived := false
		for _, a := range confirmed {
			assert.Equal(t, campaign.AssignmentFinalized, a.Status)
			if a.ID == pinned.ID {
				pinnedSurvived = true
				assert.True(t, a.Locked)
			}
		}
		assert.True(t, pinnedSurvived, "finalize must not replace a locked row")

		published := f.events.Named("counter.finalized")
		require.Len(t, published, 1)
		event := published[0].(campaign.CounterFinalized)
		assert.Equal(t, camp.ID, event.CampaignID)
		assert.Equal(t, aggressor.ID, event.AggressorNationID)
		assert.Equal(t, len(confirmed), event.AssignmentCount)
	})

	t.Run("a second finalize fails", func(t *testing.T) {
		f := newFixture(t)
		aggressor, defender := f.seedAlliance()
		camp, _, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
		require.NoError(t, err)

		_, err = f.service.Finalize(ctx, camp.ID)
		require.NoError(t, err)

		_, err = f.service.Finalize(ctx, camp.ID)
		var stateErr *shared.CampaignStateError
		assert.ErrorAs(t, err, &stateErr)
		assert.Len(t, f.events.Named("counter.finalized"), 1)
	})
}

func TestCounterFinalizeLockContention(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	aggressor, defender := f.seedAlliance()
	camp, _, err := f.service.Propose(ctx, aggressor.ID, defender.ID)
	require.NoError(t, err)

	locks := common.NewKeyedLock()
	genParams := makeGenParams(f.cfg)
	genParams.LockWait = 20 * time.Millisecond
	generator := counter.NewGenerator(
		scoring.NewMatchScorer(f.cfg.Scoring.Match),
		f.gauge, persistence.NewGormUnitOfWork(f.db), locks, f.clock, genParams,
	)
	contended := counter.NewService(f.repos, f.nations, generator, f.planner, f.events, f.clock, makePlannerParams(f.cfg))

	release, err := locks.Acquire(ctx, "campaign:"+camp.ID, time.Second)
	require.NoError(t, err)
	defer release()

	_, err = contended.Finalize(ctx, camp.ID)
	var timeout *shared.LockTimeoutError
	require.ErrorAs(t, err, &timeout)

	// The held lock kept the flip from touching anything.
	for _, a := range f.assignments(camp.ID) {
		assert.Equal(t, campaign.AssignmentProposed, a.Status)
	}
	fresh, err := f.repos.Campaigns.FindByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, campaign.StatusDraft, fresh.Status)
}
