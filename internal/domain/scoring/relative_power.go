package scoring

import (
	"math"

	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/pkg/utils"
)

// EstimatedStrength approximates a nation's combat strength as a weighted
// sum of its unit counts with a soft city-scale bonus. The second return
// is false when no strength is derivable (no units at all), in which case
// callers must treat the value as unknown rather than zero.
func EstimatedStrength(n *nation.Nation, w UnitWeights) (float64, bool) {
	m := n.Military
	s := float64(m.Soldiers)*w.Soldiers +
		float64(m.Tanks)*w.Tanks +
		float64(m.Aircraft)*w.Aircraft +
		float64(m.Ships)*w.Ships
	if s <= 0 {
		return 0, false
	}
	// Larger nations project force more effectively; the bonus saturates
	// so city count never dominates the unit counts themselves.
	s *= 1 + 0.25*math.Tanh(float64(n.Cities)/15.0)
	return s, true
}

// ParityRatio computes the worst-case parity between two nations: the
// minimum of the symmetric ratios over city count, aggregate score, and
// estimated strength. The strength dimension is skipped entirely when
// neither side has derivable strength; a one-sided zero yields ratio 0,
// which correctly marks the pairing as hopeless.
func ParityRatio(friendly, enemy *nation.Nation, w UnitWeights) float64 {
	min := utils.SymmetricRatio(float64(friendly.Cities), float64(enemy.Cities))

	if r := utils.SymmetricRatio(friendly.Score, enemy.Score); r < min {
		min = r
	}

	fs, fok := EstimatedStrength(friendly, w)
	es, eok := EstimatedStrength(enemy, w)
	switch {
	case fok && eok:
		if r := utils.SymmetricRatio(fs, es); r < min {
			min = r
		}
	case fok != eok:
		// One side fields a military, the other none at all.
		min = 0
	}
	return min
}

// Apply maps a parity ratio through the gate curve, yielding a parity
// value in [0, 1].
func (g GateParams) Apply(ratio float64) float64 {
	if ratio <= g.Floor {
		return 0
	}
	if ratio >= g.Ceiling {
		return 1
	}
	return math.Pow((ratio-g.Floor)/(g.Ceiling-g.Floor), g.Exponent)
}

// Cap bounds a raw score by the parity value: the final score can never
// exceed max(MinCap, parity*100), and a pair at or below the floor
// (parity 0) is hard-capped to 0.
func (g GateParams) Cap(raw, parity float64) float64 {
	raw = utils.Clamp(raw, 0, 100)
	if parity <= 0 {
		return 0
	}
	cap := parity * 100
	if cap < g.MinCap {
		cap = g.MinCap
	}
	if raw > cap {
		return cap
	}
	return raw
}
