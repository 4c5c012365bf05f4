package warplan

import (
	"context"
	"fmt"
	"time"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// PriorityScorer computes and caches target priority scores for a
// campaign. Scoring math is delegated to the pure domain scorer; this
// layer owns staleness, the per-(campaign, enemy) flight dedup, and
// persistence onto the Target row.
type PriorityScorer struct {
	scorer  *scoring.PriorityScorer
	cache   common.Cache
	flights *common.FlightGroup
	wars    nation.WarGauge
	clock   shared.Clock

	ttl         time.Duration
	waitTimeout time.Duration
}

// NewPriorityScorer creates a priority scorer.
func NewPriorityScorer(
	scorer *scoring.PriorityScorer,
	cache common.Cache,
	wars nation.WarGauge,
	clock shared.Clock,
	ttl time.Duration,
	waitTimeout time.Duration,
) *PriorityScorer {
	return &PriorityScorer{
		scorer:      scorer,
		cache:       cache,
		flights:     common.NewFlightGroup(),
		wars:        wars,
		clock:       clock,
		ttl:         ttl,
		waitTimeout: waitTimeout,
	}
}

type priorityResult struct {
	score     float64
	breakdown scoring.Breakdown
}

// ComputeAndStore ensures every enemy has a Target row with a fresh
// priority score, creating rows for new enemies and recomputing expired
// ones. Concurrent computations of the same (campaign, enemy) pair are
// deduplicated; a caller whose wait budget expires computes anyway and
// the contention is logged. The score is always persisted on the row, so
// a cold cache never yields a transient score.
func (s *PriorityScorer) ComputeAndStore(
	ctx context.Context,
	camp *campaign.Campaign,
	enemies []*nation.Nation,
	friendlyPool []*nation.Nation,
	targets campaign.TargetRepository,
) ([]*campaign.Target, error) {
	logger := common.LoggerFromContext(ctx)
	now := s.clock.Now()

	existing, err := targets.ListByCampaign(ctx, camp.ID)
	if err != nil {
		return nil, err
	}
	byEnemy := make(map[int]*campaign.Target, len(existing))
	for _, t := range existing {
		byEnemy[t.EnemyNationID] = t
	}

	pctx := s.buildContext(ctx, camp, enemies, friendlyPool, now)

	result := make([]*campaign.Target, 0, len(enemies))
	for _, enemy := range enemies {
		t := byEnemy[enemy.ID]
		if t == nil {
			t = &campaign.Target{
				CampaignID:    camp.ID,
				EnemyNationID: enemy.ID,
				WarType:       camp.DefaultWarType,
			}
		}
		if !t.PriorityStale(now, s.ttl) {
			result = append(result, t)
			continue
		}

		key := fmt.Sprintf("tps:%s:%d", camp.ID, enemy.ID)
		enemyCtx := pctx
		enemyCtx.AtWarWithUs = pctx.atWar[enemy.ID] > 0

		value, _, contended, err := s.flights.Do(key, s.waitTimeout, func() (interface{}, error) {
			if cached, ok := s.cache.Get(key); ok {
				return cached, nil
			}
			score, breakdown := s.scorer.Score(enemy, enemyCtx.PriorityContext)
			r := priorityResult{score: score, breakdown: breakdown}
			s.cache.Put(key, r, s.ttl)
			return r, nil
		})
		if err != nil {
			return nil, err
		}
		if contended {
			logger.Log("WARN", "priority computation contended, computed independently", map[string]interface{}{
				"campaign_id": camp.ID,
				"enemy_id":    enemy.ID,
			})
		}

		r := value.(priorityResult)
		t.SetPriority(r.score, r.breakdown, now)
		if err := targets.Save(ctx, t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

// enemyContext pairs the shared cohort context with the per-enemy war map.
type enemyContext struct {
	scoring.PriorityContext
	atWar map[int]int
}

// buildContext computes the cohort statistics shared across the pass.
func (s *PriorityScorer) buildContext(
	ctx context.Context,
	camp *campaign.Campaign,
	enemies []*nation.Nation,
	friendlyPool []*nation.Nation,
	now time.Time,
) enemyContext {
	logger := common.LoggerFromContext(ctx)

	var citySum float64
	var maxStrength float64
	for _, e := range enemies {
		citySum += float64(e.Cities)
		if st, ok := scoring.EstimatedStrength(e, s.scorer.UnitWeights()); ok && st > maxStrength {
			maxStrength = st
		}
	}
	avgCities := 0.0
	if len(enemies) > 0 {
		avgCities = citySum / float64(len(enemies))
	}

	scarcity := 0.0
	if len(enemies) > 0 {
		availability := float64(len(friendlyPool)) / float64(len(enemies))
		if availability < 1 {
			scarcity = 1 - availability
		}
	}

	atWar := map[int]int{}
	if s.wars != nil && len(enemies) > 0 && len(friendlyPool) > 0 {
		enemyIDs := make([]int, 0, len(enemies))
		for _, e := range enemies {
			enemyIDs = append(enemyIDs, e.ID)
		}
		friendlyIDs := make([]int, 0, len(friendlyPool))
		for _, f := range friendlyPool {
			friendlyIDs = append(friendlyIDs, f.ID)
		}
		counts, err := s.wars.CountActiveBetween(ctx, enemyIDs, friendlyIDs)
		if err != nil {
			// Missing war intel degrades the at-war adjustment, nothing
			// else; scoring proceeds.
			logger.Log("WARN", "failed to load active wars, at-war adjustment skipped", map[string]interface{}{
				"campaign_id": camp.ID,
				"error":       err.Error(),
			})
		} else {
			atWar = counts
		}
	}

	return enemyContext{
		PriorityContext: scoring.PriorityContext{
			Now:                 now,
			ActivityWindowHours: camp.Params.ActivityWindowHours,
			CohortAverageCities: avgCities,
			CohortMaxStrength:   maxStrength,
			Scarcity:            scarcity,
		},
		atWar: atWar,
	}
}
