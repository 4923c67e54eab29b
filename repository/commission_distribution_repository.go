package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/models"
)

// CommissionDistributionRepositoryImpl implements CommissionDistributionRepository interface
type CommissionDistributionRepositoryImpl struct {
	*BaseRepository[models.CommissionDistribution, models.CommissionDistributionFilter]
}

// NewCommissionDistributionRepository creates a new commission distribution repository
func NewCommissionDistributionRepository(db *gorm.DB) CommissionDistributionRepository {
	return &CommissionDistributionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionDistribution, models.CommissionDistributionFilter](db),
	}
}

// BySale returns every distribution row of one sale
func (r *CommissionDistributionRepositoryImpl) BySale(ctx context.Context, saleID uint) ([]*models.CommissionDistribution, error) {
	db := r.getDB(ctx)
	var dists []*models.CommissionDistribution
	err := db.Where("sale_id = ?", saleID).Order("phase, role_type, id").Find(&dists).Error
	if err != nil {
		return nil, err
	}
	return dists, nil
}

// DeleteBySale removes every distribution row of one sale. Callers replacing
// a sale's distribution set must run this inside the same transaction as the
// insert of the new set.
func (r *CommissionDistributionRepositoryImpl) DeleteBySale(ctx context.Context, saleID uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Where("sale_id = ?", saleID).Delete(&models.CommissionDistribution{}).Error
	return err
}

// Update persists every field of an existing distribution row
func (r *CommissionDistributionRepositoryImpl) Update(ctx context.Context, dist *models.CommissionDistribution) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(dist).Error
	return err
}

// ByFilter retrieves distributions based on filter criteria
func (r *CommissionDistributionRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionDistributionFilter, orderBy string, limit, offset int) ([]*models.CommissionDistribution, error) {
	db := r.getDB(ctx)
	var dists []*models.CommissionDistribution

	query := r.applyFilter(db.Model(&models.CommissionDistribution{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("sale_id, phase, role_type")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&dists).Error
	if err != nil {
		return nil, err
	}
	return dists, nil
}

// Count returns the number of distributions matching the filter
func (r *CommissionDistributionRepositoryImpl) Count(ctx context.Context, filter models.CommissionDistributionFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.CommissionDistribution{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any distribution matching the filter exists
func (r *CommissionDistributionRepositoryImpl) Exists(ctx context.Context, filter models.CommissionDistributionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionDistributionRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionDistributionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.RoleType != nil {
		query = query.Where("role_type = ?", *filter.RoleType)
	}
	if filter.Phase != nil {
		query = query.Where("phase = ?", *filter.Phase)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	return query
}
