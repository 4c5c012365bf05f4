package warplan

import (
	"context"
	"sort"
	"time"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/scoring"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/pkg/ids"
)

// suppressionCacheKey caches the set of enemy alliance IDs whose active
// campaigns opt out of reactive counters.
const suppressionCacheKey = "warplan:suppressed"

// PlannerParams are the planner's defaults for new campaigns plus the
// suppression cache TTL.
type PlannerParams struct {
	DefaultPreferredAssignees int
	DefaultMaxSquadSize       int
	DefaultCohesionTolerance  float64
	DefaultActivityWindow     float64
	SuppressionCacheTTL       time.Duration
}

// Planner orchestrates war plan lifecycle, alliance membership, and
// manual assignment edits. Generation itself lives in Generator.
type Planner struct {
	repos     campaign.Repos
	uow       campaign.UnitOfWork
	nations   nation.Repository
	wars      nation.WarGauge
	matcher   *scoring.MatchScorer
	events    campaign.EventPublisher
	cache     common.Cache
	clock     shared.Clock
	params    PlannerParams
	genParams GeneratorParams
}

// NewPlanner creates a planner.
func NewPlanner(
	repos campaign.Repos,
	uow campaign.UnitOfWork,
	nations nation.Repository,
	wars nation.WarGauge,
	matcher *scoring.MatchScorer,
	events campaign.EventPublisher,
	cache common.Cache,
	clock shared.Clock,
	params PlannerParams,
	genParams GeneratorParams,
) *Planner {
	return &Planner{
		repos:     repos,
		uow:       uow,
		nations:   nations,
		wars:      wars,
		matcher:   matcher,
		events:    events,
		cache:     cache,
		clock:     clock,
		params:    params,
		genParams: genParams,
	}
}

// fillDefaults substitutes planner defaults for zero-valued tunables.
func (p *Planner) fillDefaults(params campaign.Params) campaign.Params {
	if params.PreferredAssignees == 0 {
		params.PreferredAssignees = p.params.DefaultPreferredAssignees
	}
	if params.MaxSquadSize == 0 {
		params.MaxSquadSize = p.params.DefaultMaxSquadSize
	}
	if params.CohesionToleranceHours == 0 {
		params.CohesionToleranceHours = p.params.DefaultCohesionTolerance
	}
	if params.ActivityWindowHours == 0 {
		params.ActivityWindowHours = p.params.DefaultActivityWindow
	}
	return params
}

// CreatePlan creates a war plan in draft state. Zero-valued tunables
// take the configured defaults.
func (p *Planner) CreatePlan(ctx context.Context, name string, warType campaign.WarType, params campaign.Params) (*campaign.Campaign, error) {
	id := ids.NewCampaignID("plan", name)
	c, err := campaign.NewCampaign(id, name, campaign.KindWarPlan, warType, p.fillDefaults(params), p.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := p.repos.Campaigns.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdatePlan edits the tunables of a non-archived plan.
func (p *Planner) UpdatePlan(ctx context.Context, id string, params campaign.Params, warType campaign.WarType) (*campaign.Campaign, error) {
	c, err := p.repos.Campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateParams(p.fillDefaults(params), warType, p.clock.Now()); err != nil {
		return nil, err
	}
	if err := p.repos.Campaigns.Save(ctx, c); err != nil {
		return nil, err
	}
	p.cache.Forget(suppressionCacheKey)
	return c, nil
}

// Activate transitions the plan to active and announces it.
func (p *Planner) Activate(ctx context.Context, id string) (*campaign.Campaign, error) {
	c, err := p.repos.Campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := p.clock.Now()
	if err := c.Activate(now); err != nil {
		return nil, err
	}
	if err := p.repos.Campaigns.Save(ctx, c); err != nil {
		return nil, err
	}
	p.cache.Forget(suppressionCacheKey)
	p.events.Publish(ctx, campaign.WarPlanActivated{
		CampaignID: c.ID,
		Name:       c.Name,
		OccurredAt: now,
	})
	return c, nil
}

// Archive ends the campaign. Assignments and squads stay behind as the
// historical record.
func (p *Planner) Archive(ctx context.Context, id string) (*campaign.Campaign, error) {
	c, err := p.repos.Campaigns.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Archive(p.clock.Now()); err != nil {
		return nil, err
	}
	if err := p.repos.Campaigns.Save(ctx, c); err != nil {
		return nil, err
	}
	p.cache.Forget(suppressionCacheKey)
	return c, nil
}

// PublishAssignments stamps the campaign's publication time and emits
// the event the notification layer listens for.
func (p *Planner) PublishAssignments(ctx context.Context, id string) error {
	c, err := p.repos.Campaigns.FindByID(ctx, id)
	if err != nil {
		return err
	}
	assignments, err := p.repos.Assignments.ListByCampaign(ctx, id)
	if err != nil {
		return err
	}
	now := p.clock.Now()
	c.MarkAssignmentsPublished(now)
	if err := p.repos.Campaigns.Save(ctx, c); err != nil {
		return err
	}
	p.events.Publish(ctx, campaign.AssignmentsPublished{
		CampaignID:      c.ID,
		AssignmentCount: len(assignments),
		OccurredAt:      now,
	})
	return nil
}

// SetAlliances reconciles the campaign's alliance membership in the
// given role to exactly the desired set, in one transaction.
func (p *Planner) SetAlliances(ctx context.Context, id string, role campaign.AllianceRole, desired []int) error {
	if _, err := p.repos.Campaigns.FindByID(ctx, id); err != nil {
		return err
	}
	err := p.uow.Do(ctx, func(repos campaign.Repos) error {
		current, err := repos.Campaigns.ListAlliances(ctx, id, role)
		if err != nil {
			return err
		}
		have := make(map[int]bool, len(current))
		for _, a := range current {
			have[a] = true
		}
		want := make(map[int]bool, len(desired))
		for _, a := range desired {
			want[a] = true
		}
		for a := range want {
			if !have[a] {
				if err := repos.Campaigns.AddAlliance(ctx, id, role, a); err != nil {
					return err
				}
			}
		}
		for a := range have {
			if !want[a] {
				if err := repos.Campaigns.RemoveAlliance(ctx, id, role, a); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.cache.Forget(suppressionCacheKey)
	return nil
}

// SuppressedAllianceIDs returns the enemy alliance IDs of every active
// campaign marked SuppressCounters. Reactive counter generation checks
// an aggressor's alliance against this set before proposing anything.
// The set is cached; lifecycle and membership edits invalidate it.
func (p *Planner) SuppressedAllianceIDs(ctx context.Context) ([]int, error) {
	value, err := p.cache.Remember(suppressionCacheKey, p.params.SuppressionCacheTTL, func() (interface{}, error) {
		active, err := p.repos.Campaigns.FindActive(ctx)
		if err != nil {
			return nil, err
		}
		set := make(map[int]bool)
		for _, c := range active {
			if !c.Suppressing() {
				continue
			}
			alliances, err := p.repos.Campaigns.ListAlliances(ctx, c.ID, campaign.RoleEnemy)
			if err != nil {
				return nil, err
			}
			for _, a := range alliances {
				set[a] = true
			}
		}
		out := make([]int, 0, len(set))
		for a := range set {
			out = append(out, a)
		}
		sort.Ints(out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return value.([]int), nil
}

// AddTarget attaches an enemy nation to a non-archived campaign. The
// priority score stays zero until the next scoring pass.
func (p *Planner) AddTarget(ctx context.Context, campaignID string, enemyNationID int, warType campaign.WarType) (*campaign.Target, error) {
	c, err := p.repos.Campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == campaign.StatusArchived {
		return nil, shared.NewCampaignStateError(c.ID, string(c.Status), string(c.Status))
	}
	if _, err := p.nations.FindByID(ctx, enemyNationID); err != nil {
		return nil, err
	}
	if warType == "" {
		warType = c.DefaultWarType
	}
	t := &campaign.Target{
		CampaignID:    c.ID,
		EnemyNationID: enemyNationID,
		WarType:       warType,
	}
	if err := p.repos.Targets.Save(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ApplyManualAssignment assigns a friendly nation to a target by
// operator decision. The pair is still scored, under the laxer manual
// power curve, and the declare-range gate still applies; the row is
// marked overridden so regeneration preserves it.
func (p *Planner) ApplyManualAssignment(ctx context.Context, campaignID string, targetID uint, nationID int) (*campaign.Assignment, error) {
	c, err := p.repos.Campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Status == campaign.StatusArchived {
		return nil, shared.NewCampaignStateError(c.ID, string(c.Status), string(c.Status))
	}

	targets, err := p.repos.Targets.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	var target *campaign.Target
	for _, t := range targets {
		if t.ID == targetID {
			target = t
			break
		}
	}
	if target == nil {
		return nil, shared.NewValidationError("target_id", "target not found in campaign")
	}

	friendly, err := p.nations.FindByID(ctx, nationID)
	if err != nil {
		return nil, err
	}
	enemy, err := p.nations.FindByID(ctx, target.EnemyNationID)
	if err != nil {
		return nil, err
	}
	if !scoring.CanAttack(friendly, enemy) {
		return nil, shared.NewValidationError("nation_id", "pair outside the declare range")
	}

	warCounts, err := p.wars.CountActive(ctx, []int{friendly.ID})
	if err != nil {
		return nil, err
	}
	existing, err := p.repos.Assignments.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	load := 0
	for _, a := range existing {
		if a.NationID == friendly.ID {
			load++
		}
	}
	profile := BuildProfiles([]*nation.Nation{friendly}, warCounts, nil, p.genParams)[friendly.ID]

	now := p.clock.Now()
	result := p.matcher.Evaluate(friendly, enemy, scoring.MatchContext{
		Mode:                   scoring.ModeManual,
		Now:                    now,
		AvailableSlots:         profile.Slots - load,
		AssignmentLoad:         load,
		MaxAssignments:         profile.MaxAssignments,
		ActivityWindowHours:    c.Params.ActivityWindowHours,
		CohesionToleranceHours: c.Params.CohesionToleranceHours,
	})

	row := &campaign.Assignment{
		CampaignID: c.ID,
		TargetID:   target.ID,
		NationID:   friendly.ID,
		Score:      result.Score,
		Breakdown:  result.Breakdown,
		Status:     campaign.AssignmentProposed,
		Overridden: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.repos.Assignments.Save(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}
