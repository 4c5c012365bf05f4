package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// GormCampaignRepository implements campaign.Repository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GORM campaign repository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// Save upserts a campaign by ID
func (r *GormCampaignRepository) Save(ctx context.Context, c *campaign.Campaign) error {
	model := campaignToModel(c)
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save campaign %s: %w", c.ID, result.Error)
	}
	return nil
}

// FindByID retrieves a campaign by ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id string) (*campaign.Campaign, error) {
	var model CampaignModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewCampaignNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to find campaign: %w", result.Error)
	}
	return modelToCampaign(&model), nil
}

// FindActive retrieves all active campaigns
func (r *GormCampaignRepository) FindActive(ctx context.Context) ([]*campaign.Campaign, error) {
	var models []CampaignModel
	result := r.db.WithContext(ctx).Where("status = ?", string(campaign.StatusActive)).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to find active campaigns: %w", result.Error)
	}

	campaigns := make([]*campaign.Campaign, 0, len(models))
	for i := range models {
		campaigns = append(campaigns, modelToCampaign(&models[i]))
	}
	return campaigns, nil
}

// ListAlliances returns alliance IDs attached to a campaign in a role
func (r *GormCampaignRepository) ListAlliances(ctx context.Context, campaignID string, role campaign.AllianceRole) ([]int, error) {
	var ids []int
	result := r.db.WithContext(ctx).
		Model(&CampaignAllianceModel{}).
		Where("campaign_id = ? AND role = ?", campaignID, string(role)).
		Order("alliance_id").
		Pluck("alliance_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list alliances: %w", result.Error)
	}
	return ids, nil
}

// AddAlliance attaches an alliance to a campaign; attaching an existing
// row is a no-op.
func (r *GormCampaignRepository) AddAlliance(ctx context.Context, campaignID string, role campaign.AllianceRole, allianceID int) error {
	model := CampaignAllianceModel{
		CampaignID: campaignID,
		AllianceID: allianceID,
		Role:       string(role),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
	if result.Error != nil {
		return fmt.Errorf("failed to add alliance %d: %w", allianceID, result.Error)
	}
	return nil
}

// RemoveAlliance detaches an alliance from a campaign
func (r *GormCampaignRepository) RemoveAlliance(ctx context.Context, campaignID string, role campaign.AllianceRole, allianceID int) error {
	result := r.db.WithContext(ctx).
		Where("campaign_id = ? AND role = ? AND alliance_id = ?", campaignID, string(role), allianceID).
		Delete(&CampaignAllianceModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove alliance %d: %w", allianceID, result.Error)
	}
	return nil
}

func campaignToModel(c *campaign.Campaign) *CampaignModel {
	return &CampaignModel{
		ID:                     c.ID,
		Name:                   c.Name,
		Kind:                   string(c.Kind),
		Status:                 string(c.Status),
		DefaultWarType:         string(c.DefaultWarType),
		PreferredAssignees:     c.Params.PreferredAssignees,
		MaxSquadSize:           c.Params.MaxSquadSize,
		CohesionToleranceHours: c.Params.CohesionToleranceHours,
		ActivityWindowHours:    c.Params.ActivityWindowHours,
		SuppressCounters:       c.Params.SuppressCounters,
		AggressorNationID:      c.AggressorNationID,
		AssignmentsPublishedAt: c.AssignmentsPublishedAt,
		CreatedAt:              c.CreatedAt,
		UpdatedAt:              c.UpdatedAt,
	}
}

func modelToCampaign(m *CampaignModel) *campaign.Campaign {
	return &campaign.Campaign{
		ID:             m.ID,
		Name:           m.Name,
		Kind:           campaign.Kind(m.Kind),
		Status:         campaign.Status(m.Status),
		DefaultWarType: campaign.WarType(m.DefaultWarType),
		Params: campaign.Params{
			PreferredAssignees:     m.PreferredAssignees,
			MaxSquadSize:           m.MaxSquadSize,
			CohesionToleranceHours: m.CohesionToleranceHours,
			ActivityWindowHours:    m.ActivityWindowHours,
			SuppressCounters:       m.SuppressCounters,
		},
		AggressorNationID:      m.AggressorNationID,
		AssignmentsPublishedAt: m.AssignmentsPublishedAt,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}
