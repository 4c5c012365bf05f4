package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/pkg/utils"
)

// MatchContext carries the situational inputs of one evaluation. Every
// field has a documented default so a partially-populated context yields
// a conservative score instead of an error.
type MatchContext struct {
	// Mode selects the relative-power curve. Zero value evaluates as
	// auto, the stricter mode.
	Mode EvaluationMode

	// Now anchors activity decay. Zero value means "decay fully", the
	// conservative reading.
	Now time.Time

	// AvailableSlots is the friendly nation's remaining offensive war
	// slots. Zero or negative means the slot-availability factor scores 0.
	AvailableSlots int

	// AssignmentLoad and MaxAssignments drive the linear load penalty.
	// MaxAssignments == 0 is treated as fully saturated, never as a
	// division error.
	AssignmentLoad int
	MaxAssignments int

	// ActivityWindowHours is the campaign's activity window; the decay
	// half-life is half of it. Zero disables decay credit entirely.
	ActivityWindowHours float64

	// CohesionReference, when set, is the mean hours-inactive of the
	// target's existing assignees; the cohesion bonus rewards candidates
	// with a similar activity profile. Nil means no squad context and a
	// zero cohesion contribution.
	CohesionReference      *float64
	CohesionToleranceHours float64

	// EnemyTempo is the enemy's normalized operational tempo in [0, 1].
	EnemyTempo float64

	// SourceRank and TargetRank are 1-based strength ranks within their
	// cohorts; RankCount == 0 means no rank context was supplied and the
	// rank factors contribute nothing.
	SourceRank int
	TargetRank int
	RankCount  int
}

// Result is the outcome of one match evaluation.
type Result struct {
	// Score is the final bounded match score in [0, 100].
	Score float64

	// Parity is the relative-power gate value in [0, 1] that capped the
	// score. The generator discards candidates whose parity falls below
	// the configured auto floor.
	Parity float64

	Breakdown Breakdown
}

// MatchScorer evaluates how well a friendly nation matches an enemy
// target. Pure and stateless: identical inputs always produce identical
// results, which is what makes regeneration idempotent.
type MatchScorer struct {
	params MatchParams
}

// NewMatchScorer creates a match scorer with the given immutable params.
func NewMatchScorer(params MatchParams) *MatchScorer {
	return &MatchScorer{params: params}
}

// UnitWeights exposes the strength weights so callers can rank cohorts
// with the same estimator the scorer uses.
func (s *MatchScorer) UnitWeights() UnitWeights {
	return s.params.UnitWeights
}

// Evaluate scores the friendly nation against the enemy under the given
// context. Missing intelligence never fails the evaluation; each factor
// substitutes its documented fallback and records a rationale.
func (s *MatchScorer) Evaluate(friendly, enemy *nation.Nation, ctx MatchContext) Result {
	w := s.params.Weights
	gate := s.params.Gate.ForMode(ctx.Mode)

	ratio := ParityRatio(friendly, enemy, s.params.UnitWeights)
	parity := gate.Apply(ratio)

	b := Breakdown{{
		Name:      "relative_power",
		Value:     parity,
		Weight:    w.RelativePower,
		Impact:    w.RelativePower * parity * 100,
		Rationale: fmt.Sprintf("parity ratio %.2f through %s curve", ratio, ctx.Mode.orAuto()),
	}}

	b = append(b, s.slotFactor(ctx))
	b = append(b, s.readinessFactor(friendly))
	b = append(b, s.cityAdvantageFactor(friendly, enemy))
	b = append(b, s.activityFactor(friendly, ctx))
	b = append(b, s.loadFactor(ctx))
	b = append(b, s.complianceFactor(friendly))
	b = append(b, s.cohesionFactor(friendly, ctx))
	b = append(b, s.protectionFactor(friendly))

	// Tempo bias is scaled by parity so a busy enemy cannot make a
	// hopeless matchup look attractive.
	b = append(b, Factor{
		Name:      "tempo_bias",
		Value:     ctx.EnemyTempo,
		Weight:    w.TempoBias,
		Impact:    w.TempoBias * ctx.EnemyTempo * parity * 100,
		Rationale: "scaled by relative-power multiplier",
	})

	if ctx.RankCount > 0 && ctx.SourceRank > 0 && ctx.TargetRank > 0 {
		b = append(b, s.rankFactors(ctx)...)
	}

	raw := b.Total()
	return Result{
		Score:     gate.Cap(raw, parity),
		Parity:    parity,
		Breakdown: b,
	}
}

func (s *MatchScorer) slotFactor(ctx MatchContext) Factor {
	f := Factor{Name: "slot_availability", Weight: s.params.Weights.SlotAvailability}
	if ctx.AvailableSlots > 0 {
		f.Value = 1
		f.Impact = f.Weight * 100
		return f
	}
	f.Rationale = "no free offensive slots"
	return f
}

// readinessFactor measures standing forces against the per-unit-per-city
// soft caps, weighted per unit type.
func (s *MatchScorer) readinessFactor(friendly *nation.Nation) Factor {
	f := Factor{Name: "military_readiness", Weight: s.params.Weights.Readiness}
	if friendly.Cities <= 0 {
		f.Value = 0.5
		f.Impact = f.Weight * f.Value * 100
		f.Rationale = "city count unknown, neutral readiness assumed"
		return f
	}
	f.Value = s.capRatio(friendly, 1.0)
	f.Impact = f.Weight * f.Value * 100
	return f
}

// complianceFactor measures forces against the readiness recommendation,
// a configured fraction of the caps.
func (s *MatchScorer) complianceFactor(friendly *nation.Nation) Factor {
	f := Factor{Name: "readiness_compliance", Weight: s.params.Weights.Compliance}
	if friendly.Cities <= 0 {
		f.Value = 0.5
		f.Impact = f.Weight * f.Value * 100
		f.Rationale = "city count unknown, neutral compliance assumed"
		return f
	}
	rec := s.params.RecommendedFraction
	caps := s.params.Caps
	uw := s.params.UnitWeights
	cities := float64(friendly.Cities)
	m := friendly.Military

	var value, totalWeight float64
	add := func(units, frac, cap, weight float64) {
		if weight <= 0 || frac <= 0 {
			return
		}
		value += weight * math.Min(1, units/(frac*cap*cities))
		totalWeight += weight
	}
	add(float64(m.Soldiers), rec.Soldiers, caps.Soldiers, uw.Soldiers)
	add(float64(m.Tanks), rec.Tanks, caps.Tanks, uw.Tanks)
	add(float64(m.Aircraft), rec.Aircraft, caps.Aircraft, uw.Aircraft)
	add(float64(m.Ships), rec.Ships, caps.Ships, uw.Ships)

	if totalWeight > 0 {
		f.Value = value / totalWeight
	}
	f.Impact = f.Weight * f.Value * 100
	return f
}

// capRatio is the unit-weighted mean of min(1, units/(frac*cap*cities)).
func (s *MatchScorer) capRatio(n *nation.Nation, frac float64) float64 {
	caps := s.params.Caps
	uw := s.params.UnitWeights
	cities := float64(n.Cities)
	m := n.Military

	var value, totalWeight float64
	add := func(units, cap, weight float64) {
		if weight <= 0 {
			return
		}
		value += weight * math.Min(1, units/(frac*cap*cities))
		totalWeight += weight
	}
	add(float64(m.Soldiers), caps.Soldiers, uw.Soldiers)
	add(float64(m.Tanks), caps.Tanks, uw.Tanks)
	add(float64(m.Aircraft), caps.Aircraft, uw.Aircraft)
	add(float64(m.Ships), caps.Ships, uw.Ships)

	if totalWeight == 0 {
		return 0
	}
	return value / totalWeight
}

// cityAdvantageFactor maps the city-count difference through a tanh curve
// so advantage saturates smoothly instead of stepping.
func (s *MatchScorer) cityAdvantageFactor(friendly, enemy *nation.Nation) Factor {
	delta := float64(friendly.Cities - enemy.Cities)
	value := 0.5 * (1 + math.Tanh(delta/s.params.CityAdvantageScale))
	return Factor{
		Name:   "city_advantage",
		Value:  value,
		Weight: s.params.Weights.CityAdvantage,
		Impact: s.params.Weights.CityAdvantage * value * 100,
	}
}

// activityFactor applies half-life decay to the friendly nation's recency
// of activity. The half-life is half the campaign's activity window.
func (s *MatchScorer) activityFactor(friendly *nation.Nation, ctx MatchContext) Factor {
	f := Factor{Name: "activity", Weight: s.params.Weights.Activity}
	hours, known := friendly.HoursSinceActive(ctx.Now)
	switch {
	case !known:
		f.Value = ActivityFallback
		f.Rationale = "no activity timestamp on record, fallback assumed"
	case ctx.ActivityWindowHours <= 0:
		f.Rationale = "activity window not configured, no decay credit"
	default:
		halfLife := ctx.ActivityWindowHours / 2
		f.Value = math.Pow(0.5, hours/halfLife)
	}
	f.Impact = f.Weight * f.Value * 100
	return f
}

// loadFactor penalizes existing assignment load linearly. A zero max is
// treated as fully saturated rather than a division error.
func (s *MatchScorer) loadFactor(ctx MatchContext) Factor {
	f := Factor{Name: "load_penalty", Weight: s.params.Weights.LoadPenalty}
	if ctx.MaxAssignments <= 0 {
		f.Value = 1
		f.Rationale = "zero max assignments treated as saturated"
	} else {
		f.Value = utils.Clamp01(float64(ctx.AssignmentLoad) / float64(ctx.MaxAssignments))
	}
	f.Impact = -f.Weight * f.Value * 100
	return f
}

// cohesionFactor rewards candidates whose activity profile resembles the
// target's existing assignees, scaled by the cohesion tolerance.
func (s *MatchScorer) cohesionFactor(friendly *nation.Nation, ctx MatchContext) Factor {
	f := Factor{Name: "cohesion", Weight: s.params.Weights.Cohesion}
	if ctx.CohesionReference == nil {
		f.Rationale = "no existing assignees to cohere with"
		return f
	}
	if ctx.CohesionToleranceHours <= 0 {
		f.Rationale = "zero cohesion tolerance, bonus disabled"
		return f
	}
	hours, known := friendly.HoursSinceActive(ctx.Now)
	if !known {
		f.Value = ActivityFallback
		f.Rationale = "no activity timestamp on record, fallback similarity assumed"
	} else {
		gap := math.Abs(hours - *ctx.CohesionReference)
		f.Value = math.Max(0, 1-gap/ctx.CohesionToleranceHours)
	}
	f.Impact = f.Weight * f.Value * 100
	return f
}

// protectionFactor applies a flat penalty when the friendly nation itself
// sits in a protection state and should not be starting wars.
func (s *MatchScorer) protectionFactor(friendly *nation.Nation) Factor {
	f := Factor{Name: "protection_penalty", Weight: s.params.Weights.ProtectionPenalty}
	if friendly.Protected() {
		f.Value = 1
		f.Impact = -f.Weight * 100
		f.Rationale = "friendly nation is under protection"
	}
	return f
}

// rankFactors add pairing and dominance bonuses when strength-rank
// context was supplied. Rank 1 is the strongest.
func (s *MatchScorer) rankFactors(ctx MatchContext) Breakdown {
	w := s.params.Weights
	count := float64(ctx.RankCount)

	pairing := 1 - math.Abs(float64(ctx.SourceRank-ctx.TargetRank))/count
	dominance := math.Max(0, float64(ctx.TargetRank-ctx.SourceRank)) / count

	return Breakdown{
		{
			Name:   "rank_pairing",
			Value:  pairing,
			Weight: w.RankPairing,
			Impact: w.RankPairing * pairing * 100,
		},
		{
			Name:   "rank_dominance",
			Value:  dominance,
			Weight: w.RankDominance,
			Impact: w.RankDominance * dominance * 100,
		},
	}
}

func (m EvaluationMode) orAuto() EvaluationMode {
	if m == ModeManual {
		return ModeManual
	}
	return ModeAuto
}
