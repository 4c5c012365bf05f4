package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/castlebay/warroom-go/internal/domain/campaign"
)

// GormUnitOfWork implements campaign.UnitOfWork on a GORM transaction.
// Every repository handed to fn shares the same transaction; a returned
// error rolls back all of it.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a unit of work over the given connection
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// Do runs fn inside one transaction
func (u *GormUnitOfWork) Do(ctx context.Context, fn func(repos campaign.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(campaign.Repos{
			Campaigns:   NewGormCampaignRepository(tx),
			Targets:     NewGormTargetRepository(tx),
			Assignments: NewGormAssignmentRepository(tx),
			Squads:      NewGormSquadRepository(tx),
		})
	})
}
