package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inmoventa/commission-engine/models"
)

// BillingTargetRepositoryImpl implements BillingTargetRepository interface
type BillingTargetRepositoryImpl struct {
	db *gorm.DB
}

// NewBillingTargetRepository creates a new billing target repository
func NewBillingTargetRepository(db *gorm.DB) BillingTargetRepository {
	return &BillingTargetRepositoryImpl{db: db}
}

func (r *BillingTargetRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// UpsertByPeriod inserts or overwrites the target of one (year, month)
func (r *BillingTargetRepositoryImpl) UpsertByPeriod(ctx context.Context, target *models.BillingTarget) error {
	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_by", "updated_at"}),
	}).Create(target).Error
}

// ListByYear returns the targets of one year ordered by month
func (r *BillingTargetRepositoryImpl) ListByYear(ctx context.Context, year int) ([]*models.BillingTarget, error) {
	db := r.getDB(ctx)
	var targets []*models.BillingTarget
	err := db.Where("year = ?", year).Order("month").Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}

// SalesTargetRepositoryImpl implements SalesTargetRepository interface
type SalesTargetRepositoryImpl struct {
	db *gorm.DB
}

// NewSalesTargetRepository creates a new sales target repository
func NewSalesTargetRepository(db *gorm.DB) SalesTargetRepository {
	return &SalesTargetRepositoryImpl{db: db}
}

func (r *SalesTargetRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// UpsertByPeriod inserts or overwrites the target of one (year, month)
func (r *SalesTargetRepositoryImpl) UpsertByPeriod(ctx context.Context, target *models.SalesTarget) error {
	db := r.getDB(ctx)
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_by", "updated_at"}),
	}).Create(target).Error
}

// ListByYear returns the targets of one year ordered by month
func (r *SalesTargetRepositoryImpl) ListByYear(ctx context.Context, year int) ([]*models.SalesTarget, error) {
	db := r.getDB(ctx)
	var targets []*models.SalesTarget
	err := db.Where("year = ?", year).Order("month").Find(&targets).Error
	if err != nil {
		return nil, err
	}
	return targets, nil
}
