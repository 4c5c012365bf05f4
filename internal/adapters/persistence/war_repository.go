package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/domain/nation"
)

// GormWarRepository implements nation.WarGauge against the wars read
// model. A war is active while ended_at is null.
type GormWarRepository struct {
	db *gorm.DB
}

// NewGormWarRepository creates a new GORM war repository
func NewGormWarRepository(db *gorm.DB) *GormWarRepository {
	return &GormWarRepository{db: db}
}

// CountActive returns active war counts keyed by nation ID
func (r *GormWarRepository) CountActive(ctx context.Context, nationIDs []int) (map[int]nation.WarCounts, error) {
	counts := make(map[int]nation.WarCounts, len(nationIDs))
	if len(nationIDs) == 0 {
		return counts, nil
	}

	type row struct {
		NationID int
		Total    int
	}

	var offensive []row
	err := r.db.WithContext(ctx).
		Model(&WarModel{}).
		Select("attacker_id AS nation_id, COUNT(*) AS total").
		Where("attacker_id IN ? AND ended_at IS NULL", nationIDs).
		Group("attacker_id").
		Scan(&offensive).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count offensive wars: %w", err)
	}
	for _, o := range offensive {
		c := counts[o.NationID]
		c.Offensive = o.Total
		counts[o.NationID] = c
	}

	var defensive []row
	err = r.db.WithContext(ctx).
		Model(&WarModel{}).
		Select("defender_id AS nation_id, COUNT(*) AS total").
		Where("defender_id IN ? AND ended_at IS NULL", nationIDs).
		Group("defender_id").
		Scan(&defensive).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count defensive wars: %w", err)
	}
	for _, d := range defensive {
		c := counts[d.NationID]
		c.Defensive = d.Total
		counts[d.NationID] = c
	}

	return counts, nil
}

// CountActiveBetween returns, per nation, how many of its active wars
// are against the opponent set (either direction).
func (r *GormWarRepository) CountActiveBetween(ctx context.Context, nationIDs, opponentIDs []int) (map[int]int, error) {
	counts := make(map[int]int, len(nationIDs))
	if len(nationIDs) == 0 || len(opponentIDs) == 0 {
		return counts, nil
	}

	var wars []WarModel
	err := r.db.WithContext(ctx).
		Where("ended_at IS NULL").
		Where(
			r.db.Where("attacker_id IN ? AND defender_id IN ?", nationIDs, opponentIDs).
				Or("defender_id IN ? AND attacker_id IN ?", nationIDs, opponentIDs),
		).
		Find(&wars).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count wars between sets: %w", err)
	}

	inSet := make(map[int]bool, len(nationIDs))
	for _, id := range nationIDs {
		inSet[id] = true
	}
	for _, w := range wars {
		if inSet[w.AttackerID] {
			counts[w.AttackerID]++
		}
		if inSet[w.DefenderID] {
			counts[w.DefenderID]++
		}
	}
	return counts, nil
}
