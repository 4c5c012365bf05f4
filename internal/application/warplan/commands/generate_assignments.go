// Package commands holds the war plan write operations dispatched
// through the mediator.
package commands

import (
	"context"

	"github.com/castlebay/warroom-go/internal/application/mediator"
	"github.com/castlebay/warroom-go/internal/application/warplan"
	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// GenerateAssignmentsCommand regenerates a campaign's proposed
// assignment set from current intel.
type GenerateAssignmentsCommand struct {
	CampaignID string

	// RespectLocks preserves locked, overridden, and finalized rows.
	// Only counter finalization regenerates with it false.
	RespectLocks bool
}

// GenerateAssignmentsResponse summarizes the pass.
type GenerateAssignmentsResponse struct {
	CampaignID string
	Result     *warplan.GenerationResult
}

// GenerateAssignmentsHandler assembles the enemy and friendly pools and
// runs the generator.
type GenerateAssignmentsHandler struct {
	repos     campaign.Repos
	nations   nation.Repository
	generator *warplan.Generator
}

// NewGenerateAssignmentsHandler creates the handler.
func NewGenerateAssignmentsHandler(repos campaign.Repos, nations nation.Repository, generator *warplan.Generator) *GenerateAssignmentsHandler {
	return &GenerateAssignmentsHandler{repos: repos, nations: nations, generator: generator}
}

// Handle implements mediator.Handler.
func (h *GenerateAssignmentsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	cmd := request.(GenerateAssignmentsCommand)

	camp, err := h.repos.Campaigns.FindByID(ctx, cmd.CampaignID)
	if err != nil {
		return nil, err
	}
	if camp.Status == campaign.StatusArchived {
		return nil, shared.NewCampaignStateError(camp.ID, string(camp.Status), string(camp.Status))
	}

	enemies, err := h.enemyPool(ctx, camp)
	if err != nil {
		return nil, err
	}
	pool, err := h.friendlyPool(ctx, camp)
	if err != nil {
		return nil, err
	}

	result, err := h.generator.Generate(ctx, camp, enemies, pool, cmd.RespectLocks)
	if err != nil {
		return nil, err
	}
	return GenerateAssignmentsResponse{CampaignID: camp.ID, Result: result}, nil
}

// enemyPool is the union of enemy-alliance members and the nations of
// manually added targets, so targets outside the tracked alliances keep
// getting scored.
func (h *GenerateAssignmentsHandler) enemyPool(ctx context.Context, camp *campaign.Campaign) ([]*nation.Nation, error) {
	allianceIDs, err := h.repos.Campaigns.ListAlliances(ctx, camp.ID, campaign.RoleEnemy)
	if err != nil {
		return nil, err
	}
	enemies, err := h.nations.ListByAlliances(ctx, allianceIDs)
	if err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(enemies))
	for _, e := range enemies {
		seen[e.ID] = true
	}

	targets, err := h.repos.Targets.ListByCampaign(ctx, camp.ID)
	if err != nil {
		return nil, err
	}
	var missing []int
	for _, t := range targets {
		if !seen[t.EnemyNationID] {
			missing = append(missing, t.EnemyNationID)
		}
	}
	if len(missing) > 0 {
		extra, err := h.nations.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		enemies = append(enemies, extra...)
	}
	return enemies, nil
}

// friendlyPool lists friendly-alliance members fit for duty. Vacation
// mode removes a nation from the pool outright; beige only penalizes it
// during scoring.
func (h *GenerateAssignmentsHandler) friendlyPool(ctx context.Context, camp *campaign.Campaign) ([]*nation.Nation, error) {
	allianceIDs, err := h.repos.Campaigns.ListAlliances(ctx, camp.ID, campaign.RoleFriendly)
	if err != nil {
		return nil, err
	}
	members, err := h.nations.ListByAlliances(ctx, allianceIDs)
	if err != nil {
		return nil, err
	}
	pool := make([]*nation.Nation, 0, len(members))
	for _, n := range members {
		if n.VacationMode {
			continue
		}
		if n.Position == nation.PositionApplicant {
			continue
		}
		pool = append(pool, n)
	}
	return pool, nil
}
