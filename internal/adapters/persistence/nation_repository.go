package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/domain/nation"
	"github.com/castlebay/warroom-go/internal/domain/shared"
)

// GormNationRepository implements nation.Repository using GORM. The
// engine only reads nations; writes belong to the intel sync layer.
type GormNationRepository struct {
	db *gorm.DB
}

// NewGormNationRepository creates a new GORM nation repository
func NewGormNationRepository(db *gorm.DB) *GormNationRepository {
	return &GormNationRepository{db: db}
}

// FindByID retrieves a nation by ID
func (r *GormNationRepository) FindByID(ctx context.Context, nationID int) (*nation.Nation, error) {
	var model NationModel
	result := r.db.WithContext(ctx).Where("id = ?", nationID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNationNotFoundError(nationID)
		}
		return nil, fmt.Errorf("failed to find nation: %w", result.Error)
	}
	return modelToNation(&model)
}

// ListByIDs retrieves the nations that exist among ids
func (r *GormNationRepository) ListByIDs(ctx context.Context, ids []int) ([]*nation.Nation, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []NationModel
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list nations: %w", result.Error)
	}
	return modelsToNations(models)
}

// ListByAlliances retrieves all nations of the given alliances
func (r *GormNationRepository) ListByAlliances(ctx context.Context, allianceIDs []int) ([]*nation.Nation, error) {
	if len(allianceIDs) == 0 {
		return nil, nil
	}
	var models []NationModel
	result := r.db.WithContext(ctx).Where("alliance_id IN ?", allianceIDs).Order("id").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list nations by alliance: %w", result.Error)
	}
	return modelsToNations(models)
}

func modelsToNations(models []NationModel) ([]*nation.Nation, error) {
	nations := make([]*nation.Nation, 0, len(models))
	for i := range models {
		n, err := modelToNation(&models[i])
		if err != nil {
			return nil, err
		}
		nations = append(nations, n)
	}
	return nations, nil
}

func modelToNation(m *NationModel) (*nation.Nation, error) {
	var projects []string
	if m.Projects != "" {
		if err := json.Unmarshal([]byte(m.Projects), &projects); err != nil {
			return nil, fmt.Errorf("nation %d: failed to unmarshal projects: %w", m.ID, err)
		}
	}
	return &nation.Nation{
		ID:         m.ID,
		Name:       m.Name,
		AllianceID: m.AllianceID,
		Position:   nation.Position(m.Position),
		Cities:     m.Cities,
		Score:      m.Score,
		Military: nation.Military{
			Soldiers: m.Soldiers,
			Tanks:    m.Tanks,
			Aircraft: m.Aircraft,
			Ships:    m.Ships,
		},
		Projects:          projects,
		LastActive:        m.LastActive,
		OffensiveWars:     m.OffensiveWars,
		DefensiveWars:     m.DefensiveWars,
		RecentWarDeclares: m.RecentWarDeclares,
		WarWins:           m.WarWins,
		InfraDestroyed:    m.InfraDestroyed,
		Beige:             m.Beige,
		VacationMode:      m.VacationMode,
	}, nil
}
