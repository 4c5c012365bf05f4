package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/infrastructure/config"
	"github.com/castlebay/warroom-go/test/helpers"
)

func defaultMatchParams() scoring.MatchParams {
	return config.DefaultConfig().Scoring.Match
}

func readyContext() scoring.MatchContext {
	return scoring.MatchContext{
		Mode:                scoring.ModeAuto,
		Now:                 helpers.BaseTime,
		AvailableSlots:      3,
		AssignmentLoad:      0,
		MaxAssignments:      3,
		ActivityWindowHours: 72,
	}
}

func TestMatchScorerEvaluate(t *testing.T) {
	scorer := scoring.NewMatchScorer(defaultMatchParams())

	t.Run("score is bounded", func(t *testing.T) {
		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), readyContext())
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 100.0)
		assert.NotEmpty(t, r.Breakdown)
	})

	t.Run("parity at or below the floor forces score zero", func(t *testing.T) {
		friendly := helpers.NewNation(1, helpers.WithCities(10), helpers.WithScore(1000))
		// City ratio 3/10 is under the auto floor of 0.40 no matter how
		// strong every other factor is.
		enemy := helpers.NewNation(2, helpers.WithCities(3), helpers.WithScore(1000))

		r := scorer.Evaluate(friendly, enemy, readyContext())
		assert.Equal(t, 0.0, r.Parity)
		assert.Equal(t, 0.0, r.Score)
	})

	t.Run("zero slots zeroes the slot factor", func(t *testing.T) {
		ctx := readyContext()
		ctx.AvailableSlots = 0

		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), ctx)
		f, ok := r.Breakdown.Find("slot_availability")
		require.True(t, ok)
		assert.Equal(t, 0.0, f.Value)
		assert.NotEmpty(t, f.Rationale)
	})

	t.Run("missing activity timestamp falls back with rationale", func(t *testing.T) {
		friendly := helpers.NewNation(1, helpers.WithLastActive(nil))

		r := scorer.Evaluate(friendly, helpers.NewNation(2), readyContext())
		f, ok := r.Breakdown.Find("activity")
		require.True(t, ok)
		assert.Equal(t, scoring.ActivityFallback, f.Value)
		assert.NotEmpty(t, f.Rationale)
	})

	t.Run("load penalty has negative impact", func(t *testing.T) {
		ctx := readyContext()
		ctx.AssignmentLoad = 2
		ctx.MaxAssignments = 3

		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), ctx)
		f, ok := r.Breakdown.Find("load_penalty")
		require.True(t, ok)
		assert.Negative(t, f.Impact)
	})

	t.Run("zero max assignments is treated as saturated", func(t *testing.T) {
		ctx := readyContext()
		ctx.MaxAssignments = 0

		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), ctx)
		f, ok := r.Breakdown.Find("load_penalty")
		require.True(t, ok)
		assert.Equal(t, 1.0, f.Value)
		assert.NotEmpty(t, f.Rationale)
	})

	t.Run("protected friendly takes a flat penalty", func(t *testing.T) {
		friendly := helpers.NewNation(1)
		friendly.Beige = true

		r := scorer.Evaluate(friendly, helpers.NewNation(2), readyContext())
		f, ok := r.Breakdown.Find("protection_penalty")
		require.True(t, ok)
		assert.Negative(t, f.Impact)
	})

	t.Run("cohesion contributes nothing without a reference", func(t *testing.T) {
		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), readyContext())
		f, ok := r.Breakdown.Find("cohesion")
		require.True(t, ok)
		assert.Equal(t, 0.0, f.Impact)
	})

	t.Run("cohesion rewards a similar activity profile", func(t *testing.T) {
		ref := 2.0
		ctx := readyContext()
		ctx.CohesionReference = &ref
		ctx.CohesionToleranceHours = 48

		// Default fixture was active two hours ago, matching the
		// reference exactly.
		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), ctx)
		f, ok := r.Breakdown.Find("cohesion")
		require.True(t, ok)
		assert.InDelta(t, 1.0, f.Value, 1e-9)
	})

	t.Run("rank factors only appear with rank context", func(t *testing.T) {
		r := scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), readyContext())
		_, ok := r.Breakdown.Find("rank_pairing")
		assert.False(t, ok)

		ctx := readyContext()
		ctx.SourceRank = 1
		ctx.TargetRank = 2
		ctx.RankCount = 10
		r = scorer.Evaluate(helpers.NewNation(1), helpers.NewNation(2), ctx)
		_, ok = r.Breakdown.Find("rank_pairing")
		assert.True(t, ok)
	})

	t.Run("identical inputs produce identical results", func(t *testing.T) {
		friendly := helpers.NewNation(1)
		enemy := helpers.NewNation(2, helpers.WithCities(9))
		ctx := readyContext()

		first := scorer.Evaluate(friendly, enemy, ctx)
		second := scorer.Evaluate(friendly, enemy, ctx)
		assert.Equal(t, first, second)
	})

	t.Run("manual mode is laxer than auto at moderate parity", func(t *testing.T) {
		friendly := helpers.NewNation(1, helpers.WithCities(10))
		enemy := helpers.NewNation(2, helpers.WithCities(6))

		auto := readyContext()
		manual := readyContext()
		manual.Mode = scoring.ModeManual

		ra := scorer.Evaluate(friendly, enemy, auto)
		rm := scorer.Evaluate(friendly, enemy, manual)
		assert.GreaterOrEqual(t, rm.Parity, ra.Parity)
	})
}
