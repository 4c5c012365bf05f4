package cli

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/adapters/cache"
	"github.com/castlebay/warroom-go/internal/adapters/metrics"
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
)

// Container wires the full dependency graph once per process. Commands
// pull the services they need off it instead of constructing anything
// themselves.
type Container struct {
	Config *config.Config
	DB     *gorm.DB

	Repos   campaign.Repos
	Nations nation.Repository
	Wars    nation.WarGauge

	Cache  common.Cache
	Events *common.EventBus
	Locks  *common.KeyedLock
	Clock  shared.Clock

	Mediator *mediator.Mediator
	Planner  *warplan.Planner
	Counters *counter.Service
	Trigger  *warplan.Trigger
}

// NewContainer builds the dependency graph from configuration and runs
// migrations.
func NewContainer(cfg *config.Config) (*Container, error) {
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return NewContainerWithDB(cfg, db)
}

// NewContainerWithDB wires against an existing database handle. Tests
// pass an in-memory connection here.
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) (*Container, error) {
	clock := shared.NewRealClock()

	repos := campaign.Repos{
		Campaigns:   persistence.NewGormCampaignRepository(db),
		Targets:     persistence.NewGormTargetRepository(db),
		Assignments: persistence.NewGormAssignmentRepository(db),
		Squads:      persistence.NewGormSquadRepository(db),
	}
	nations := persistence.NewGormNationRepository(db)
	wars := persistence.NewGormWarRepository(db)
	uow := persistence.NewGormUnitOfWork(db)

	memCache := cache.NewMemoryCache(clock)
	events := common.NewEventBus()
	locks := common.NewKeyedLock()

	matcher := scoring.NewMatchScorer(cfg.Scoring.Match)
	priorityScorer := warplan.NewPriorityScorer(
		scoring.NewPriorityScorer(cfg.Scoring.Priority),
		memCache,
		wars,
		clock,
		cfg.Scoring.PriorityCacheTTL,
		cfg.Scoring.PriorityWaitTimeout,
	)

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

	generator := warplan.NewGenerator(matcher, priorityScorer, wars, uow, locks, clock, genParams)
	planner := warplan.NewPlanner(repos, uow, nations, wars, matcher, events, memCache, clock, plannerParams, genParams)
	counterGen := counter.NewGenerator(matcher, wars, uow, locks, clock, genParams)
	counters := counter.NewService(repos, nations, counterGen, planner, events, clock, plannerParams)

	m := mediator.New()
	generateHandler := commands.NewGenerateAssignmentsHandler(repos, nations, generator)
	if err := mediator.RegisterHandler[commands.GenerateAssignmentsCommand](m, generateHandler); err != nil {
		return nil, err
	}

	var generationMetrics *metrics.GenerationMetricsCollector
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		commandMetrics := metrics.NewCommandMetricsCollector()
		if err := commandMetrics.Register(); err != nil {
			return nil, fmt.Errorf("failed to register command metrics: %w", err)
		}
		m.Use(metrics.PrometheusMiddleware(commandMetrics))

		generationMetrics = metrics.NewGenerationMetricsCollector()
		if err := generationMetrics.Register(); err != nil {
			return nil, fmt.Errorf("failed to register generation metrics: %w", err)
		}
	}

	trigger := warplan.NewTrigger(
		rate.Limit(cfg.Generator.TriggerRate),
		cfg.Generator.TriggerBurst,
		func(ctx context.Context, campaignID string) error {
			response, err := m.Send(ctx, commands.GenerateAssignmentsCommand{CampaignID: campaignID, RespectLocks: true})
			if generationMetrics != nil {
				var result *warplan.GenerationResult
				if r, ok := response.(commands.GenerateAssignmentsResponse); ok {
					result = r.Result
				}
				generationMetrics.RecordGeneration(result, err)
			}
			return err
		},
	)

	return &Container{
		Config:   cfg,
		DB:       db,
		Repos:    repos,
		Nations:  nations,
		Wars:     wars,
		Cache:    memCache,
		Events:   events,
		Locks:    locks,
		Clock:    clock,
		Mediator: m,
		Planner:  planner,
		Counters: counters,
		Trigger:  trigger,
	}, nil
}

// Close releases the container's resources.
func (c *Container) Close() error {
	return database.Close(c.DB)
}
