package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

// GormAssignmentRepository implements campaign.AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GORM assignment repository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// ListByCampaign retrieves all assignments of a campaign
func (r *GormAssignmentRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*campaign.Assignment, error) {
	var models []AssignmentModel
	result := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", result.Error)
	}
	return modelsToAssignments(models)
}

// ListByTarget retrieves all assignments of one target
func (r *GormAssignmentRepository) ListByTarget(ctx context.Context, targetID uint) ([]*campaign.Assignment, error) {
	var models []AssignmentModel
	result := r.db.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("id").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", result.Error)
	}
	return modelsToAssignments(models)
}

// Save upserts an assignment by its (target, nation) unique key and
// writes the generated ID back onto the entity.
func (r *GormAssignmentRepository) Save(ctx context.Context, a *campaign.Assignment) error {
	model, err := assignmentToModel(a)
	if err != nil {
		return err
	}

	updates := clause.AssignmentColumns([]string{
		"score", "breakdown", "status", "is_overridden", "squad_id", "updated_at",
	})
	// A conflicting write may set a lock but never clears one, so a
	// manual re-score cannot drop an operator's pin.
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "is_locked"},
		Value:  gorm.Expr("is_locked OR excluded.is_locked"),
	})
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "target_id"}, {Name: "nation_id"}},
		DoUpdates: updates,
	}).Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to save assignment for nation %d: %w", a.NationID, result.Error)
	}

	if model.ID != 0 {
		a.ID = model.ID
	} else {
		var existing AssignmentModel
		if err := r.db.WithContext(ctx).
			Where("target_id = ? AND nation_id = ?", a.TargetID, a.NationID).
			First(&existing).Error; err != nil {
			return fmt.Errorf("failed to reload assignment: %w", err)
		}
		a.ID = existing.ID
	}
	return nil
}

// DeleteByIDs removes assignments in bulk
func (r *GormAssignmentRepository) DeleteByIDs(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&AssignmentModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete assignments: %w", result.Error)
	}
	return nil
}

func modelsToAssignments(models []AssignmentModel) ([]*campaign.Assignment, error) {
	assignments := make([]*campaign.Assignment, 0, len(models))
	for i := range models {
		a, err := modelToAssignment(&models[i])
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}

func assignmentToModel(a *campaign.Assignment) (*AssignmentModel, error) {
	breakdown, err := marshalBreakdown(a.Breakdown)
	if err != nil {
		return nil, err
	}
	return &AssignmentModel{
		ID:           a.ID,
		CampaignID:   a.CampaignID,
		TargetID:     a.TargetID,
		NationID:     a.NationID,
		Score:        a.Score,
		Breakdown:    breakdown,
		Status:       string(a.Status),
		IsLocked:     a.Locked,
		IsOverridden: a.Overridden,
		SquadID:      a.SquadID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}, nil
}

func modelToAssignment(m *AssignmentModel) (*campaign.Assignment, error) {
	breakdown, err := unmarshalBreakdown(m.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("assignment %d: %w", m.ID, err)
	}
	return &campaign.Assignment{
		ID:         m.ID,
		CampaignID: m.CampaignID,
		TargetID:   m.TargetID,
		NationID:   m.NationID,
		Score:      m.Score,
		Breakdown:  breakdown,
		Status:     campaign.AssignmentStatus(m.Status),
		Locked:     m.IsLocked,
		Overridden: m.IsOverridden,
		SquadID:    m.SquadID,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}, nil
}
