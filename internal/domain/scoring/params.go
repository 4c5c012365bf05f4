package scoring

// EvaluationMode selects which relative-power curve applies. Automatic
// regeneration uses a stricter curve than a manual operator pairing, so
// the generator never proposes matchups an operator would have to defend.
type EvaluationMode string

const (
	ModeManual EvaluationMode = "manual"
	ModeAuto   EvaluationMode = "auto"
)

// GateParams shapes the relative-power curve for one evaluation mode.
// Ratios at or below Floor map to 0, at or above Ceiling map to 1, and
// in between follow a power curve with the given exponent.
type GateParams struct {
	Floor    float64 `mapstructure:"floor" validate:"gte=0,lte=1"`
	Ceiling  float64 `mapstructure:"ceiling" validate:"gt=0,lte=1"`
	Exponent float64 `mapstructure:"exponent" validate:"gt=0"`

	// MinCap is the lowest score cap (in points) applied to a pair whose
	// parity is above the floor. It keeps a harsh exponent from zeroing
	// marginally viable pairings. Pairs at or below the floor are always
	// capped to 0 regardless of MinCap.
	MinCap float64 `mapstructure:"min_cap" validate:"gte=0,lte=100"`
}

// PowerGateParams holds the per-mode gate curves.
type PowerGateParams struct {
	Manual GateParams `mapstructure:"manual"`
	Auto   GateParams `mapstructure:"auto"`
}

// ForMode returns the curve for the given evaluation mode. Unknown modes
// fall back to the stricter auto curve.
func (p PowerGateParams) ForMode(mode EvaluationMode) GateParams {
	if mode == ModeManual {
		return p.Manual
	}
	return p.Auto
}

// UnitCaps are the per-city soft caps on each military unit type,
// matching the game's build limits.
type UnitCaps struct {
	Soldiers float64 `mapstructure:"soldiers" validate:"gt=0"`
	Tanks    float64 `mapstructure:"tanks" validate:"gt=0"`
	Aircraft float64 `mapstructure:"aircraft" validate:"gt=0"`
	Ships    float64 `mapstructure:"ships" validate:"gt=0"`
}

// UnitWeights weight each unit type's contribution to readiness and to
// the estimated-strength metric.
type UnitWeights struct {
	Soldiers float64 `mapstructure:"soldiers" validate:"gte=0"`
	Tanks    float64 `mapstructure:"tanks" validate:"gte=0"`
	Aircraft float64 `mapstructure:"aircraft" validate:"gte=0"`
	Ships    float64 `mapstructure:"ships" validate:"gte=0"`
}

// MatchWeights are the per-factor weights of the match scorer.
type MatchWeights struct {
	RelativePower     float64 `mapstructure:"relative_power" validate:"gte=0"`
	SlotAvailability  float64 `mapstructure:"slot_availability" validate:"gte=0"`
	Readiness         float64 `mapstructure:"readiness" validate:"gte=0"`
	CityAdvantage     float64 `mapstructure:"city_advantage" validate:"gte=0"`
	Activity          float64 `mapstructure:"activity" validate:"gte=0"`
	LoadPenalty       float64 `mapstructure:"load_penalty" validate:"gte=0"`
	Compliance        float64 `mapstructure:"compliance" validate:"gte=0"`
	Cohesion          float64 `mapstructure:"cohesion" validate:"gte=0"`
	ProtectionPenalty float64 `mapstructure:"protection_penalty" validate:"gte=0"`
	TempoBias         float64 `mapstructure:"tempo_bias" validate:"gte=0"`
	RankPairing       float64 `mapstructure:"rank_pairing" validate:"gte=0"`
	RankDominance     float64 `mapstructure:"rank_dominance" validate:"gte=0"`
}

// MatchParams is the full, immutable parameter set of the match scorer.
// It is built once from configuration and threaded through constructors;
// scoring math never reads ambient config.
type MatchParams struct {
	Weights MatchWeights    `mapstructure:"weights"`
	Gate    PowerGateParams `mapstructure:"gate"`

	Caps        UnitCaps    `mapstructure:"unit_caps"`
	UnitWeights UnitWeights `mapstructure:"unit_weights"`

	// RecommendedFraction is the readiness-recommendation level as a
	// fraction of the per-city cap, per unit type.
	RecommendedFraction UnitWeights `mapstructure:"recommended_fraction"`

	// CityAdvantageScale controls how fast the tanh city-advantage curve
	// saturates, in cities of difference.
	CityAdvantageScale float64 `mapstructure:"city_advantage_scale" validate:"gt=0"`
}

// PriorityWeights are the per-factor weights of the target priority scorer.
type PriorityWeights struct {
	Seniority      float64 `mapstructure:"seniority" validate:"gte=0"`
	CitySize       float64 `mapstructure:"city_size" validate:"gte=0"`
	Activity       float64 `mapstructure:"activity" validate:"gte=0"`
	MilitaryOutput float64 `mapstructure:"military_output" validate:"gte=0"`
	Scarcity       float64 `mapstructure:"scarcity" validate:"gte=0"`
}

// PriorityAdjustments are flat strategic point adjustments added after the
// weighted factors.
type PriorityAdjustments struct {
	AtWarWithUs      float64 `mapstructure:"at_war_with_us"`
	Protected        float64 `mapstructure:"protected"`
	PerRecentDeclare float64 `mapstructure:"per_recent_declare"`
	RecentDeclareCap float64 `mapstructure:"recent_declare_cap"`
	PerWarWin        float64 `mapstructure:"per_war_win"`
	WarWinCap        float64 `mapstructure:"war_win_cap"`
	PerInfraKilo     float64 `mapstructure:"per_infra_kilo"`
	InfraCap         float64 `mapstructure:"infra_cap"`
}

// PriorityParams is the immutable parameter set of the priority scorer.
type PriorityParams struct {
	Weights     PriorityWeights     `mapstructure:"weights"`
	Adjustments PriorityAdjustments `mapstructure:"adjustments"`

	UnitWeights UnitWeights `mapstructure:"unit_weights"`

	// MinScore and MaxScore bound the final priority.
	MinScore float64 `mapstructure:"min_score"`
	MaxScore float64 `mapstructure:"max_score" validate:"gtfield=MinScore"`
}

// ActivityFallback is the documented neutral value substituted for the
// activity-decay factor when a nation has no recorded activity timestamp.
// Deliberately conservative: an unseen nation is assumed mostly inactive.
const ActivityFallback = 0.25
