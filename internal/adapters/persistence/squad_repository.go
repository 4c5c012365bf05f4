package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

// GormSquadRepository implements campaign.SquadRepository using GORM
type GormSquadRepository struct {
	db *gorm.DB
}

// NewGormSquadRepository creates a new GORM squad repository
func NewGormSquadRepository(db *gorm.DB) *GormSquadRepository {
	return &GormSquadRepository{db: db}
}

// ListByCampaign retrieves all squads of a campaign, lowest ID first.
// The rebuild pass relies on this order for its deterministic tie-break.
func (r *GormSquadRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*campaign.Squad, error) {
	var models []SquadModel
	result := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list squads: %w", result.Error)
	}

	squads := make([]*campaign.Squad, 0, len(models))
	for i := range models {
		m := &models[i]
		squads = append(squads, &campaign.Squad{
			ID:         m.ID,
			CampaignID: m.CampaignID,
			TargetID:   m.TargetID,
			Label:      m.Label,
			Round:      m.Round,
			Cohesion:   m.Cohesion,
		})
	}
	return squads, nil
}

// Save upserts a squad and writes the generated ID back onto the entity
func (r *GormSquadRepository) Save(ctx context.Context, s *campaign.Squad) error {
	model := &SquadModel{
		ID:         s.ID,
		CampaignID: s.CampaignID,
		TargetID:   s.TargetID,
		Label:      s.Label,
		Round:      s.Round,
		Cohesion:   s.Cohesion,
	}
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save squad %q: %w", s.Label, result.Error)
	}
	s.ID = model.ID
	return nil
}

// DeleteByIDs removes squads in bulk
func (r *GormSquadRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&SquadModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete squads: %w", result.Error)
	}
	return nil
}
