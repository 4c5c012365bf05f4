package steps

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/cucumber/godog"

	"github.com/castlebay/warroom-go/internal/adapters/cache"
	"github.com/castlebay/warroom-go/internal/adapters/persistence"
	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/application/counter"
	"github.com/castlebay/warroom-go/internal/application/mediator"
	"github.com/castlebay/warroom-go/internal/application/warplan"
	"github.com/castlebay/warroom-go/internal/application/warplan/commands"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/internal/infrastructure/config"
	"github.com/castlebay/warroom-go/internal/infrastructure/database"
	"github.com/castlebay/warroom-go/test/helpers"
)

// warRoomContext wires the full application stack against an in-memory
// database for one scenario.
type warRoomContext struct {
	cfg     *config.Config
	repos   campaign.Repos
	nations *helpers.MockNationRepository
	gauge   *helpers.MockWarGauge
	clock   *shared.MockClock
	events  *helpers.EventRecorder
	planner *warplan.Planner
	counters *counter.Service
	med     *mediator.Mediator

	camp        *campaign.Campaign
	counterCamp *campaign.Campaign
	suppressed  bool
	lockedID    uint
	lockedNation int
	snapshot    []string
}

func (w *warRoomContext) reset() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return err
	}

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

	genParams := warplan.GeneratorParams{
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
	plannerParams := warplan.PlannerParams{
		DefaultPreferredAssignees: cfg.Generator.DefaultPreferredAssignees,
		DefaultMaxSquadSize:       cfg.Generator.DefaultMaxSquadSize,
		DefaultCohesionTolerance:  cfg.Generator.DefaultCohesionTolerance,
		DefaultActivityWindow:     cfg.Generator.DefaultActivityWindow,
		SuppressionCacheTTL:       cfg.Generator.SuppressionCacheTTL,
	}

	locks := common.NewKeyedLock()
	priority := warplan.NewPriorityScorer(
		scoring.NewPriorityScorer(cfg.Scoring.Priority),
		memCache, gauge, clock,
		cfg.Scoring.PriorityCacheTTL, cfg.Scoring.PriorityWaitTimeout,
	)
	generator := warplan.NewGenerator(matcher, priority, gauge, uow, locks, clock, genParams)
	planner := warplan.NewPlanner(repos, uow, nations, gauge, matcher, events, memCache, clock, plannerParams, genParams)
	counterGen := counter.NewGenerator(matcher, gauge, uow, locks, clock, genParams)
	counters := counter.NewService(repos, nations, counterGen, planner, events, clock, plannerParams)

	med := mediator.New()
	if err := mediator.RegisterHandler[commands.GenerateAssignmentsCommand](
		med, commands.NewGenerateAssignmentsHandler(repos, nations, generator),
	); err != nil {
		return err
	}

	w.cfg = cfg
	w.repos = repos
	w.nations = nations
	w.gauge = gauge
	w.clock = clock
	w.events = events
	w.planner = planner
	w.counters = counters
	w.med = med
	w.camp = nil
	w.counterCamp = nil
	w.suppressed = false
	w.lockedID = 0
	w.lockedNation = 0
	w.snapshot = nil
	return nil
}

func (w *warRoomContext) allianceWithMembers(allianceID int, table *godog.Table) error {
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		id, err := strconv.Atoi(row.Cells[0].Value)
		if err != nil {
			return err
		}
		cities, err := strconv.Atoi(row.Cells[1].Value)
		if err != nil {
			return err
		}
		score, err := strconv.ParseFloat(row.Cells[2].Value, 64)
		if err != nil {
			return err
		}
		w.nations.Add(helpers.NewNation(id,
			helpers.WithAlliance(allianceID),
			helpers.WithCities(cities),
			helpers.WithScore(score),
		))
	}
	return nil
}

func (w *warRoomContext) draftWarPlan(name string, allianceID int) error {
	camp, err := w.planner.CreatePlan(context.Background(), name, campaign.WarTypeOrdinary, campaign.Params{})
	if err != nil {
		return err
	}
	w.camp = camp
	return w.planner.SetAlliances(context.Background(), camp.ID, campaign.RoleEnemy, []int{allianceID})
}

func (w *warRoomContext) activeSuppressingPlan(name string, allianceID int) error {
	camp, err := w.planner.CreatePlan(context.Background(), name, campaign.WarTypeOrdinary, campaign.Params{SuppressCounters: true})
	if err != nil {
		return err
	}
	w.camp = camp
	if err := w.planner.SetAlliances(context.Background(), camp.ID, campaign.RoleEnemy, []int{allianceID}); err != nil {
		return err
	}
	_, err = w.planner.Activate(context.Background(), camp.ID)
	return err
}

func (w *warRoomContext) generateAssignments() error {
	w.snapshot = nil
	current, err := w.repos.Assignments.ListByCampaign(context.Background(), w.camp.ID)
	if err != nil {
		return err
	}
	w.snapshot = assignmentKeys(current)

	_, err = w.med.Send(context.Background(), commands.GenerateAssignmentsCommand{
		CampaignID:   w.camp.ID,
		RespectLocks: true,
	})
	return err
}

func assignmentKeys(assignments []*campaign.Assignment) []string {
	keys := make([]string, 0, len(assignments))
	for _, a := range assignments {
		keys = append(keys, fmt.Sprintf("%d:%d:%.6f", a.TargetID, a.NationID, a.Score))
	}
	sort.Strings(keys)
	return keys
}

func (w *warRoomContext) everyEnemyHasScoredTarget() error {
	targets, err := w.repos.Targets.ListByCampaign(context.Background(), w.camp.ID)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets created")
	}
	for _, t := range targets {
		if t.Priority <= 0 || t.PriorityComputedAt == nil {
			return fmt.Errorf("target %d for enemy %d is unscored", t.ID, t.EnemyNationID)
		}
	}
	return nil
}

func (w *warRoomContext) assignmentsProposed(count int) error {
	all, err := w.repos.Assignments.ListByCampaign(context.Background(), w.camp.ID)
	if err != nil {
		return err
	}
	if len(all) != count {
		return fmt.Errorf("expected %d assignments, got %d", count, len(all))
	}
	return nil
}

func (w *warRoomContext) lockFirstAssignment() error {
	all, err := w.repos.Assignments.ListByCampaign(context.Background(), w.camp.ID)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("no assignments to lock")
	}
	row := all[0]
	row.Locked = true
	if err := w.repos.Assignments.Save(context.Background(), row); err != nil {
		return err
	}
	w.lockedID = row.ID
	w.lockedNation = row.NationID
	return nil
}

func (w *warRoomContext) lockedNationOutOfSlots() error {
	w.gauge.Counts[w.lockedNation] = nation.WarCounts{Offensive: w.cfg.Generator.BaseSlotCap}
	return nil
}

func (w *warRoomContext) lockedAssignmentStillPresent() error {
	all, err := w.repos.Assignments.ListByCampaign(context.Background(), w.camp.ID)
	if err != nil {
		return err
	}
	for _, a := range all {
		if a.ID == w.lockedID && a.Locked {
			return nil
		}
	}
	return fmt.Errorf("locked assignment %d is gone", w.lockedID)
}

func (w *warRoomContext) assignmentSetUnchanged() error {
	current, err := w.repos.Assignments.ListByCampaign(context.Background(), w.camp.ID)
	if err != nil {
		return err
	}
	keys := assignmentKeys(current)
	if len(keys) != len(w.snapshot) {
		return fmt.Errorf("assignment count changed: %d -> %d", len(w.snapshot), len(keys))
	}
	for i := range keys {
		if keys[i] != w.snapshot[i] {
			return fmt.Errorf("assignment changed: %s -> %s", w.snapshot[i], keys[i])
		}
	}
	return nil
}

func (w *warRoomContext) planActivated() error {
	_, err := w.planner.Activate(context.Background(), w.camp.ID)
	return err
}

func (w *warRoomContext) eventPublished(name string) error {
	if len(w.events.Named(name)) == 0 {
		return fmt.Errorf("no %q event published", name)
	}
	return nil
}

// Counter steps

func (w *warRoomContext) declaresWar(aggressorID, defenderID int) error {
	camp, suppressed, err := w.counters.Propose(context.Background(), aggressorID, defenderID)
	if err != nil {
		return err
	}
	w.counterCamp = camp
	w.suppressed = suppressed
	return nil
}

func (w *warRoomContext) draftCounterExists(aggressorID int) error {
	if w.counterCamp == nil {
		return fmt.Errorf("no counter campaign was created")
	}
	if w.counterCamp.Kind != campaign.KindCounter || w.counterCamp.Status != campaign.StatusDraft {
		return fmt.Errorf("campaign %s is %s/%s", w.counterCamp.ID, w.counterCamp.Kind, w.counterCamp.Status)
	}
	if w.counterCamp.AggressorNationID != aggressorID {
		return fmt.Errorf("aggressor %d, expected %d", w.counterCamp.AggressorNationID, aggressorID)
	}
	return nil
}

func (w *warRoomContext) counterTeamSize(size int) error {
	all, err := w.repos.Assignments.ListByCampaign(context.Background(), w.counterCamp.ID)
	if err != nil {
		return err
	}
	if len(all) != size {
		return fmt.Errorf("team of %d, expected %d", len(all), size)
	}
	return nil
}

func (w *warRoomContext) counterFinalized() error {
	camp, err := w.counters.Finalize(context.Background(), w.counterCamp.ID)
	if err != nil {
		return err
	}
	w.counterCamp = camp
	return nil
}

func (w *warRoomContext) counterCampaignActive() error {
	if w.counterCamp.Status != campaign.StatusActive {
		return fmt.Errorf("counter is %s", w.counterCamp.Status)
	}
	return nil
}

func (w *warRoomContext) everyCounterAssignmentFinalized() error {
	all, err := w.repos.Assignments.ListByCampaign(context.Background(), w.counterCamp.ID)
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return fmt.Errorf("no counter assignments")
	}
	for _, a := range all {
		if a.Status != campaign.AssignmentFinalized {
			return fmt.Errorf("assignment %d is %s", a.ID, a.Status)
		}
	}
	return nil
}

func (w *warRoomContext) counterSuppressed() error {
	if !w.suppressed {
		return fmt.Errorf("counter was not suppressed")
	}
	if w.counterCamp != nil {
		return fmt.Errorf("a campaign was created despite suppression")
	}
	return nil
}

// InitializeWarRoomScenario registers the war plan and counter steps.
func InitializeWarRoomScenario(sc *godog.ScenarioContext) {
	ctx := &warRoomContext{}

	sc.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		return c, ctx.reset()
	})

	sc.Step(`^a friendly alliance (\d+) with members:$`, ctx.allianceWithMembers)
	sc.Step(`^an enemy alliance (\d+) with members:$`, ctx.allianceWithMembers)
	sc.Step(`^a draft war plan "([^"]*)" against alliance (\d+)$`, ctx.draftWarPlan)
	sc.Step(`^an active war plan "([^"]*)" against alliance (\d+) with counters suppressed$`, ctx.activeSuppressingPlan)
	sc.Step(`^assignments are generated$`, ctx.generateAssignments)
	sc.Step(`^assignments are regenerated$`, ctx.generateAssignments)
	sc.Step(`^every enemy has a scored target$`, ctx.everyEnemyHasScoredTarget)
	sc.Step(`^(\d+) assignments are proposed$`, ctx.assignmentsProposed)
	sc.Step(`^the first assignment is locked$`, ctx.lockFirstAssignment)
	sc.Step(`^the locked nation runs out of war slots$`, ctx.lockedNationOutOfSlots)
	sc.Step(`^the locked assignment is still present$`, ctx.lockedAssignmentStillPresent)
	sc.Step(`^the assignment set is unchanged$`, ctx.assignmentSetUnchanged)
	sc.Step(`^the plan is activated$`, ctx.planActivated)
	sc.Step(`^a "([^"]*)" event is published$`, ctx.eventPublished)

	sc.Step(`^nation (\d+) declares war on nation (\d+)$`, ctx.declaresWar)
	sc.Step(`^a draft counter campaign against nation (\d+) exists$`, ctx.draftCounterExists)
	sc.Step(`^the counter team has (\d+) members$`, ctx.counterTeamSize)
	sc.Step(`^the counter is finalized$`, ctx.counterFinalized)
	sc.Step(`^the counter campaign is active$`, ctx.counterCampaignActive)
	sc.Step(`^every counter assignment is finalized$`, ctx.everyCounterAssignmentFinalized)
	sc.Step(`^the counter proposal is suppressed$`, ctx.counterSuppressed)
}
