package scoring

import (
	"math"
	"time"

	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/pkg/utils"
)

// PriorityContext carries the cohort-level inputs of one target priority
// evaluation. Cohort statistics are computed once per campaign pass and
// shared across all enemies.
type PriorityContext struct {
	Now time.Time

	// ActivityWindowHours drives the activity decay half-life, as in
	// match scoring.
	ActivityWindowHours float64

	// CohortAverageCities is the mean city count over the campaign's
	// enemy pool. Zero means unknown and yields a neutral city factor.
	CohortAverageCities float64

	// CohortMaxStrength is the largest estimated strength in the enemy
	// pool, used to normalize the military-output proxy.
	CohortMaxStrength float64

	// Scarcity is 1 - min(1, availableFriendlies/targetCount): the fewer
	// friendlies per target, the more selective priority must be.
	Scarcity float64

	// AtWarWithUs is true when the enemy has an active war against our
	// pool.
	AtWarWithUs bool
}

// PriorityScorer computes target priority scores. Pure and stateless;
// caching and locking live in the application layer.
type PriorityScorer struct {
	params PriorityParams
}

// NewPriorityScorer creates a priority scorer with the given params.
func NewPriorityScorer(params PriorityParams) *PriorityScorer {
	return &PriorityScorer{params: params}
}

// UnitWeights exposes the strength weights so callers can derive cohort
// statistics with the same estimator the scorer uses.
func (s *PriorityScorer) UnitWeights() UnitWeights {
	return s.params.UnitWeights
}

// Score computes the bounded priority of engaging the enemy, with a full
// factor breakdown. Missing intelligence yields documented fallbacks.
func (s *PriorityScorer) Score(enemy *nation.Nation, ctx PriorityContext) (float64, Breakdown) {
	w := s.params.Weights

	b := Breakdown{}

	// Alliance seniority: leadership targets disrupt the enemy most.
	seniority := float64(enemy.Position) / float64(nation.PositionLeader)
	b = append(b, Factor{
		Name:   "seniority",
		Value:  seniority,
		Weight: w.Seniority,
		Impact: w.Seniority * seniority * 100,
	})

	b = append(b, s.cityFactor(enemy, ctx))
	b = append(b, s.activityFactor(enemy, ctx))
	b = append(b, s.outputFactor(enemy, ctx))

	b = append(b, Factor{
		Name:   "scarcity",
		Value:  utils.Clamp01(ctx.Scarcity),
		Weight: w.Scarcity,
		Impact: w.Scarcity * utils.Clamp01(ctx.Scarcity) * 100,
	})

	b = append(b, s.adjustments(enemy, ctx)...)

	score := utils.Clamp(b.Total(), s.params.MinScore, s.params.MaxScore)
	return score, b
}

// cityFactor compares the enemy's city count to the cohort average,
// saturating at twice the average.
func (s *PriorityScorer) cityFactor(enemy *nation.Nation, ctx PriorityContext) Factor {
	f := Factor{Name: "city_size", Weight: s.params.Weights.CitySize}
	if ctx.CohortAverageCities <= 0 {
		f.Value = 0.5
		f.Rationale = "cohort average unknown, neutral assumed"
	} else {
		f.Value = utils.Clamp01(float64(enemy.Cities) / (2 * ctx.CohortAverageCities))
	}
	f.Impact = f.Weight * f.Value * 100
	return f
}

func (s *PriorityScorer) activityFactor(enemy *nation.Nation, ctx PriorityContext) Factor {
	f := Factor{Name: "activity", Weight: s.params.Weights.Activity}
	hours, known := enemy.HoursSinceActive(ctx.Now)
	switch {
	case !known:
		f.Value = ActivityFallback
		f.Rationale = "no activity timestamp on record, fallback assumed"
	case ctx.ActivityWindowHours <= 0:
		f.Rationale = "activity window not configured, no decay credit"
	default:
		f.Value = math.Pow(0.5, hours/(ctx.ActivityWindowHours/2))
	}
	f.Impact = f.Weight * f.Value * 100
	return f
}

// outputFactor proxies military output by estimated strength relative to
// the strongest enemy in the cohort.
func (s *PriorityScorer) outputFactor(enemy *nation.Nation, ctx PriorityContext) Factor {
	f := Factor{Name: "military_output", Weight: s.params.Weights.MilitaryOutput}
	strength, ok := EstimatedStrength(enemy, s.params.UnitWeights)
	switch {
	case !ok:
		f.Value = ActivityFallback
		f.Rationale = "no strength derivable, conservative fallback assumed"
	case ctx.CohortMaxStrength <= 0:
		f.Value = 0.5
		f.Rationale = "cohort strength unknown, neutral assumed"
	default:
		f.Value = utils.Clamp01(strength / ctx.CohortMaxStrength)
	}
	f.Impact = f.Weight * f.Value * 100
	return f
}

// adjustments are flat strategic point deltas, each capped independently.
func (s *PriorityScorer) adjustments(enemy *nation.Nation, ctx PriorityContext) Breakdown {
	a := s.params.Adjustments
	var b Breakdown

	if ctx.AtWarWithUs {
		b = append(b, Factor{
			Name:      "at_war_with_us",
			Value:     1,
			Impact:    a.AtWarWithUs,
			Rationale: "enemy has an active war against our pool",
		})
	}
	if enemy.Protected() {
		b = append(b, Factor{
			Name:      "protection",
			Value:     1,
			Impact:    a.Protected,
			Rationale: "enemy is under protection",
		})
	}
	if enemy.RecentWarDeclares > 0 {
		impact := math.Min(a.RecentDeclareCap, float64(enemy.RecentWarDeclares)*a.PerRecentDeclare)
		b = append(b, Factor{
			Name:   "recent_declares",
			Value:  float64(enemy.RecentWarDeclares),
			Impact: impact,
		})
	}
	if enemy.WarWins > 0 {
		impact := math.Min(a.WarWinCap, float64(enemy.WarWins)*a.PerWarWin)
		b = append(b, Factor{
			Name:   "war_wins",
			Value:  float64(enemy.WarWins),
			Impact: impact,
		})
	}
	if enemy.InfraDestroyed > 0 {
		impact := math.Min(a.InfraCap, enemy.InfraDestroyed/1000*a.PerInfraKilo)
		b = append(b, Factor{
			Name:   "infra_destroyed",
			Value:  enemy.InfraDestroyed,
			Impact: impact,
		})
	}
	return b
}
