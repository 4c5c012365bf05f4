package config

import (
	"time"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	setDatabaseDefaults(&cfg.Database)
	setLoggingDefaults(&cfg.Logging)
	setMetricsDefaults(&cfg.Metrics)
	setScoringDefaults(&cfg.Scoring)
	setGeneratorDefaults(&cfg.Generator)
}

func setMetricsDefaults(m *MetricsConfig) {
	if m.Addr == "" {
		m.Addr = ":9100"
	}
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Type == "" {
		db.Type = "postgres"
	}
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == 0 {
		db.Port = 5432
	}
	if db.User == "" {
		db.User = "warroom"
	}
	if db.Name == "" {
		db.Name = "warroom"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.Pool.MaxOpen == 0 {
		db.Pool.MaxOpen = 25
	}
	if db.Pool.MaxIdle == 0 {
		db.Pool.MaxIdle = 5
	}
	if db.Pool.MaxLifetime == 0 {
		db.Pool.MaxLifetime = 5 * time.Minute
	}
}

func setLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
}

func setScoringDefaults(s *ScoringConfig) {
	m := &s.Match
	if m.Weights == (scoring.MatchWeights{}) {
		m.Weights = scoring.MatchWeights{
			RelativePower:     0.20,
			SlotAvailability:  0.05,
			Readiness:         0.20,
			CityAdvantage:     0.10,
			Activity:          0.15,
			LoadPenalty:       0.10,
			Compliance:        0.10,
			Cohesion:          0.10,
			ProtectionPenalty: 0.15,
			TempoBias:         0.05,
			RankPairing:       0.05,
			RankDominance:     0.05,
		}
	}
	if m.Gate.Manual == (scoring.GateParams{}) {
		m.Gate.Manual = scoring.GateParams{Floor: 0.25, Ceiling: 0.85, Exponent: 1.5, MinCap: 25}
	}
	if m.Gate.Auto == (scoring.GateParams{}) {
		m.Gate.Auto = scoring.GateParams{Floor: 0.40, Ceiling: 0.90, Exponent: 2.0, MinCap: 10}
	}
	if m.Caps == (scoring.UnitCaps{}) {
		// The game's per-city build limits.
		m.Caps = scoring.UnitCaps{Soldiers: 15000, Tanks: 1250, Aircraft: 75, Ships: 15}
	}
	if m.UnitWeights == (scoring.UnitWeights{}) {
		m.UnitWeights = scoring.UnitWeights{Soldiers: 0.0005, Tanks: 0.025, Aircraft: 0.5, Ships: 1.0}
	}
	if m.RecommendedFraction == (scoring.UnitWeights{}) {
		m.RecommendedFraction = scoring.UnitWeights{Soldiers: 0.35, Tanks: 0.35, Aircraft: 0.75, Ships: 0.4}
	}
	if m.CityAdvantageScale == 0 {
		m.CityAdvantageScale = 5
	}

	p := &s.Priority
	if p.Weights == (scoring.PriorityWeights{}) {
		p.Weights = scoring.PriorityWeights{
			Seniority:      0.15,
			CitySize:       0.20,
			Activity:       0.20,
			MilitaryOutput: 0.25,
			Scarcity:       0.10,
		}
	}
	if p.Adjustments == (scoring.PriorityAdjustments{}) {
		p.Adjustments = scoring.PriorityAdjustments{
			AtWarWithUs:      10,
			Protected:        -15,
			PerRecentDeclare: 2,
			RecentDeclareCap: 10,
			PerWarWin:        1,
			WarWinCap:        8,
			PerInfraKilo:     1,
			InfraCap:         10,
		}
	}
	if p.UnitWeights == (scoring.UnitWeights{}) {
		p.UnitWeights = m.UnitWeights
	}
	if p.MaxScore == 0 {
		p.MinScore = 0
		p.MaxScore = 100
	}

	if s.AutoFloor == 0 {
		s.AutoFloor = 0.35
	}
	if s.PriorityCacheTTL == 0 {
		s.PriorityCacheTTL = 600 * time.Second
	}
	if s.PriorityWaitTimeout == 0 {
		s.PriorityWaitTimeout = 2 * time.Second
	}
}

func setGeneratorDefaults(g *GeneratorConfig) {
	if g.LockWait == 0 {
		g.LockWait = 5 * time.Second
	}
	if g.BaseSlotCap == 0 {
		g.BaseSlotCap = 5
	}
	if g.ProjectSlotModifiers == nil {
		g.ProjectSlotModifiers = map[string]int{
			"pirate_economy":          1,
			"advanced_pirate_economy": 1,
		}
	}
	if g.MemberMaxAssignments == 0 {
		g.MemberMaxAssignments = 3
	}
	if g.LeaderMaxAssignments == 0 {
		g.LeaderMaxAssignments = 2
	}
	if g.OffensiveLoadPenalty == 0 {
		g.OffensiveLoadPenalty = 5
	}
	if g.DefensiveLoadPenalty == 0 {
		g.DefensiveLoadPenalty = 8
	}
	if g.TempoDeclareNorm == 0 {
		g.TempoDeclareNorm = 3
	}
	if g.DefaultPreferredAssignees == 0 {
		g.DefaultPreferredAssignees = 3
	}
	if g.DefaultMaxSquadSize == 0 {
		g.DefaultMaxSquadSize = 4
	}
	if g.DefaultCohesionTolerance == 0 {
		g.DefaultCohesionTolerance = 48
	}
	if g.DefaultActivityWindow == 0 {
		g.DefaultActivityWindow = 72
	}
	if g.TriggerRate == 0 {
		g.TriggerRate = 1.0 / 30.0 // one regeneration per 30s per campaign
	}
	if g.TriggerBurst == 0 {
		g.TriggerBurst = 2
	}
	if g.SuppressionCacheTTL == 0 {
		g.SuppressionCacheTTL = 5 * time.Minute
	}
}
