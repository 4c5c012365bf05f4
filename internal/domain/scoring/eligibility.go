package scoring

import "github.com/castlebay/warroom-go/internal/domain/nation"

// Declare-range multipliers fixed by the game's war rules: a nation may
// only declare on targets whose aggregate score falls within this band
// of its own.
const (
	DeclareRangeLower = 0.75
	DeclareRangeUpper = 2.5
)

// CanAttack reports whether source may legally declare war on target.
// This is a hard eligibility gate applied before any scoring; both
// boundary values are attackable.
func CanAttack(source, target *nation.Nation) bool {
	return InDeclareRange(source.Score, target.Score)
}

// InDeclareRange is the score-only form of CanAttack.
func InDeclareRange(sourceScore, targetScore float64) bool {
	return targetScore >= DeclareRangeLower*sourceScore &&
		targetScore <= DeclareRangeUpper*sourceScore
}
