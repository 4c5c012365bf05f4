package counter

import (
	"context"
	"fmt"

	"github.com/castlebay/warroom-go/internal/application/common"
	"github.com/castlebay/warroom-go/internal/application/warplan"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/shared"
	"github.com/castlebay/warroom-go/pkg/ids"
)

// Service orchestrates the counter lifecycle: propose on an incoming
// declare, finalize into an active campaign, archive when the war winds
// down.
type Service struct {
	repos     campaign.Repos
	nations   nation.Repository
	generator *Generator
	planner   *warplan.Planner
	events    campaign.EventPublisher
	clock     shared.Clock

	// teamSize and squadSize seed the params of new counter campaigns.
	teamSize  int
	squadSize int

	cohesionTolerance float64
	activityWindow    float64
}

// NewService creates a counter service. defaults carries the same
// campaign defaults the planner uses.
func NewService(
	repos campaign.Repos,
	nations nation.Repository,
	generator *Generator,
	planner *warplan.Planner,
	events campaign.EventPublisher,
	clock shared.Clock,
	defaults warplan.PlannerParams,
) *Service {
	return &Service{
		repos:             repos,
		nations:           nations,
		generator:         generator,
		planner:           planner,
		events:            events,
		clock:             clock,
		teamSize:          defaults.DefaultPreferredAssignees,
		squadSize:         defaults.DefaultMaxSquadSize,
		cohesionTolerance: defaults.DefaultCohesionTolerance,
		activityWindow:    defaults.DefaultActivityWindow,
	}
}

// Propose reacts to a war declared by aggressor on defender: it creates
// a draft counter campaign with a proposed team, unless an active war
// plan suppresses counters against the aggressor's alliance. The second
// return is true when the proposal was suppressed.
func (s *Service) Propose(ctx context.Context, aggressorNationID, defenderNationID int) (*campaign.Campaign, bool, error) {
	logger := common.LoggerFromContext(ctx)

	aggressor, err := s.nations.FindByID(ctx, aggressorNationID)
	if err != nil {
		return nil, false, err
	}
	defender, err := s.nations.FindByID(ctx, defenderNationID)
	if err != nil {
		return nil, false, err
	}

	suppressed, err := s.planner.SuppressedAllianceIDs(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, allianceID := range suppressed {
		if allianceID == aggressor.AllianceID {
			logger.Log("INFO", "counter suppressed by active war plan", map[string]interface{}{
				"aggressor_id": aggressor.ID,
				"alliance_id":  aggressor.AllianceID,
			})
			return nil, true, nil
		}
	}

	name := fmt.Sprintf("Counter %s", aggressor.Name)
	camp, err := campaign.NewCampaign(
		ids.NewCampaignID("counter", name),
		name,
		campaign.KindCounter,
		campaign.WarTypeOrdinary,
		campaign.Params{
			PreferredAssignees:     s.teamSize,
			MaxSquadSize:           s.squadSize,
			CohesionToleranceHours: s.cohesionTolerance,
			ActivityWindowHours:    s.activityWindow,
		},
		s.clock.Now(),
	)
	if err != nil {
		return nil, false, err
	}
	camp.AggressorNationID = aggressor.ID

	if err := s.repos.Campaigns.Save(ctx, camp); err != nil {
		return nil, false, err
	}
	if err := s.repos.Campaigns.AddAlliance(ctx, camp.ID, campaign.RoleFriendly, defender.AllianceID); err != nil {
		return nil, false, err
	}
	if aggressor.AllianceID != 0 {
		if err := s.repos.Campaigns.AddAlliance(ctx, camp.ID, campaign.RoleEnemy, aggressor.AllianceID); err != nil {
			return nil, false, err
		}
	}

	pool, err := s.friendlyPool(ctx, camp)
	if err != nil {
		return nil, false, err
	}
	if _, err := s.generator.Propose(ctx, camp, aggressor, pool, true); err != nil {
		return nil, false, err
	}
	return camp, false, nil
}

// Regenerate rebuilds the proposed team of a draft counter from current
// intel. With respectLocks true, locked and overridden rows survive
// untouched; with it false even those rows are replaced, which is how
// an operator forces a clean slate.
func (s *Service) Regenerate(ctx context.Context, campaignID string, respectLocks bool) (*ProposalResult, error) {
	camp, aggressor, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if camp.Status == campaign.StatusArchived {
		return nil, shared.NewCampaignStateError(camp.ID, string(camp.Status), string(camp.Status))
	}
	pool, err := s.friendlyPool(ctx, camp)
	if err != nil {
		return nil, err
	}
	return s.generator.Propose(ctx, camp, aggressor, pool, respectLocks)
}

// Finalize confirms a draft counter: every proposed row flips to
// finalized, the campaign goes active, and the finalization event
// fires. Locked and overridden rows stay exactly as the operator left
// them; refreshing the team beforehand is Regenerate's job. The flip
// runs under the campaign lock inside one transaction so a concurrent
// regeneration can never observe a half-finalized team.
func (s *Service) Finalize(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	camp, _, err := s.load(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	release, err := s.generator.locks.Acquire(ctx, "campaign:"+camp.ID, s.generator.params.LockWait)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.clock.Now()
	var confirmed int
	err = s.generator.uow.Do(ctx, func(repos campaign.Repos) error {
		if err := camp.Activate(now); err != nil {
			return err
		}
		assignments, err := repos.Assignments.ListByCampaign(ctx, camp.ID)
		if err != nil {
			return err
		}
		for _, a := range assignments {
			if a.Status != campaign.AssignmentProposed {
				continue
			}
			a.Status = campaign.AssignmentFinalized
			a.UpdatedAt = now
			if err := repos.Assignments.Save(ctx, a); err != nil {
				return err
			}
		}
		confirmed = len(assignments)
		return repos.Campaigns.Save(ctx, camp)
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, campaign.CounterFinalized{
		CampaignID:        camp.ID,
		AggressorNationID: camp.AggressorNationID,
		AssignmentCount:   confirmed,
		OccurredAt:        now,
	})
	return camp, nil
}

// Archive ends a counter campaign.
func (s *Service) Archive(ctx context.Context, campaignID string) (*campaign.Campaign, error) {
	camp, err := s.repos.Campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if err := camp.Archive(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repos.Campaigns.Save(ctx, camp); err != nil {
		return nil, err
	}
	return camp, nil
}

func (s *Service) load(ctx context.Context, campaignID string) (*campaign.Campaign, *nation.Nation, error) {
	camp, err := s.repos.Campaigns.FindByID(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if camp.Kind != campaign.KindCounter {
		return nil, nil, shared.NewValidationError("campaign_id", "not a counter campaign")
	}
	aggressor, err := s.nations.FindByID(ctx, camp.AggressorNationID)
	if err != nil {
		return nil, nil, err
	}
	return camp, aggressor, nil
}

func (s *Service) friendlyPool(ctx context.Context, camp *campaign.Campaign) ([]*nation.Nation, error) {
	allianceIDs, err := s.repos.Campaigns.ListAlliances(ctx, camp.ID, campaign.RoleFriendly)
	if err != nil {
		return nil, err
	}
	members, err := s.nations.ListByAlliances(ctx, allianceIDs)
	if err != nil {
		return nil, err
	}
	pool := make([]*nation.Nation, 0, len(members))
	for _, n := range members {
		if n.VacationMode || n.Position == nation.PositionApplicant {
			continue
		}
		pool = append(pool, n)
	}
	return pool, nil
}
