package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

// GormTargetRepository implements campaign.TargetRepository using GORM
type GormTargetRepository struct {
	db *gorm.DB
}

// NewGormTargetRepository creates a new GORM target repository
func NewGormTargetRepository(db *gorm.DB) *GormTargetRepository {
	return &GormTargetRepository{db: db}
}

// ListByCampaign retrieves all targets of a campaign
func (r *GormTargetRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*campaign.Target, error) {
	var models []TargetModel
	result := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list targets: %w", result.Error)
	}

	targets := make([]*campaign.Target, 0, len(models))
	for i := range models {
		t, err := modelToTarget(&models[i])
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// Save upserts a target by its (campaign, enemy nation) unique key and
// writes the generated ID back onto the entity.
func (r *GormTargetRepository) Save(ctx context.Context, t *campaign.Target) error {
	model, err := targetToModel(t)
	if err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "campaign_id"}, {Name: "enemy_nation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"priority", "priority_breakdown", "priority_computed_at", "war_type",
		}),
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save target for nation %d: %w", t.EnemyNationID, result.Error)
	}

	if model.ID != 0 {
		t.ID = model.ID
	} else {
		// Conflict path on some drivers does not report the existing ID;
		// read it back by the unique key.
		var existing TargetModel
		if err := r.db.WithContext(ctx).
			Where("campaign_id = ? AND enemy_nation_id = ?", t.CampaignID, t.EnemyNationID).
			First(&existing).Error; err != nil {
			return fmt.Errorf("failed to reload target: %w", err)
		}
		t.ID = existing.ID
	}
	return nil
}

// Delete removes a target by ID
func (r *GormTargetRepository) Delete(ctx context.Context, targetID uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", targetID).Delete(&TargetModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete target %d: %w", targetID, result.Error)
	}
	return nil
}

func targetToModel(t *campaign.Target) (*TargetModel, error) {
	breakdown, err := marshalBreakdown(t.PriorityBreakdown)
	if err != nil {
		return nil, err
	}
	return &TargetModel{
		ID:                 t.ID,
		CampaignID:         t.CampaignID,
		EnemyNationID:      t.EnemyNationID,
		Priority:           t.Priority,
		PriorityBreakdown:  breakdown,
		PriorityComputedAt: t.PriorityComputedAt,
		WarType:            string(t.WarType),
	}, nil
}

func modelToTarget(m *TargetModel) (*campaign.Target, error) {
	breakdown, err := unmarshalBreakdown(m.PriorityBreakdown)
	if err != nil {
		return nil, fmt.Errorf("target %d: %w", m.ID, err)
	}
	return &campaign.Target{
		ID:                 m.ID,
		CampaignID:         m.CampaignID,
		EnemyNationID:      m.EnemyNationID,
		Priority:           m.Priority,
		PriorityBreakdown:  breakdown,
		PriorityComputedAt: m.PriorityComputedAt,
		WarType:            campaign.WarType(m.WarType),
	}, nil
}
