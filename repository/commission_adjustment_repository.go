package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/models"
)

// CommissionAdjustmentRepositoryImpl implements CommissionAdjustmentRepository
// interface. The ledger is append-only: there is deliberately no update or
// delete operation.
type CommissionAdjustmentRepositoryImpl struct {
	*BaseRepository[models.CommissionAdjustment, models.CommissionAdjustmentFilter]
}

// NewCommissionAdjustmentRepository creates a new commission adjustment repository
func NewCommissionAdjustmentRepository(db *gorm.DB) CommissionAdjustmentRepository {
	return &CommissionAdjustmentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionAdjustment, models.CommissionAdjustmentFilter](db),
	}
}

// BySale returns the adjustment history of one sale, newest first
func (r *CommissionAdjustmentRepositoryImpl) BySale(ctx context.Context, saleID uint) ([]*models.CommissionAdjustment, error) {
	db := r.getDB(ctx)
	var adjustments []*models.CommissionAdjustment
	err := db.Where("sale_id = ?", saleID).Order("created_at DESC, id DESC").Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// ByFilter retrieves adjustments based on filter criteria
func (r *CommissionAdjustmentRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionAdjustmentFilter, orderBy string, limit, offset int) ([]*models.CommissionAdjustment, error) {
	db := r.getDB(ctx)
	var adjustments []*models.CommissionAdjustment

	query := r.applyFilter(db.Model(&models.CommissionAdjustment{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("created_at DESC, id DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&adjustments).Error
	if err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Count returns the number of adjustments matching the filter
func (r *CommissionAdjustmentRepositoryImpl) Count(ctx context.Context, filter models.CommissionAdjustmentFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.CommissionAdjustment{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any adjustment matching the filter exists
func (r *CommissionAdjustmentRepositoryImpl) Exists(ctx context.Context, filter models.CommissionAdjustmentFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionAdjustmentRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionAdjustmentFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.DistributionID != nil {
		query = query.Where("distribution_id = ?", *filter.DistributionID)
	}
	if filter.Actor != nil {
		query = query.Where("actor = ?", *filter.Actor)
	}
	return query
}
