package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/models"
)

// PartnerCommissionRepositoryImpl implements PartnerCommissionRepository interface
type PartnerCommissionRepositoryImpl struct {
	*BaseRepository[models.PartnerCommission, models.PartnerCommissionFilter]
}

// NewPartnerCommissionRepository creates a new partner commission repository
func NewPartnerCommissionRepository(db *gorm.DB) PartnerCommissionRepository {
	return &PartnerCommissionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PartnerCommission, models.PartnerCommissionFilter](db),
	}
}

// BySale returns the partner commissions of one sale
func (r *PartnerCommissionRepositoryImpl) BySale(ctx context.Context, saleID uint) ([]*models.PartnerCommission, error) {
	db := r.getDB(ctx)
	var pcs []*models.PartnerCommission
	err := db.Where("sale_id = ?", saleID).Order("partner_name").Find(&pcs).Error
	if err != nil {
		return nil, err
	}
	return pcs, nil
}

// Update persists every field of an existing partner commission
func (r *PartnerCommissionRepositoryImpl) Update(ctx context.Context, pc *models.PartnerCommission) error {
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

	err = db.Save(pc).Error
	return err
}

// DeleteByID removes one partner commission row
func (r *PartnerCommissionRepositoryImpl) DeleteByID(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.PartnerCommission{}, id).Error
	return err
}

// ListVisible retrieves partner commissions excluding partners on the hidden
// list. Historical rows of hidden partners survive in the table; they are
// only filtered out of this reporting view.
func (r *PartnerCommissionRepositoryImpl) ListVisible(ctx context.Context, filter models.PartnerCommissionFilter, limit, offset int) ([]*models.PartnerCommission, error) {
	db := r.getDB(ctx)
	var pcs []*models.PartnerCommission

	query := r.applyFilter(db.Model(&models.PartnerCommission{}), filter).
		Where("partner_name NOT IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&models.HiddenPartner{}).Select("name")).
		Order("sale_id, partner_name")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&pcs).Error
	if err != nil {
		return nil, err
	}
	return pcs, nil
}

// ByFilter retrieves partner commissions based on filter criteria
func (r *PartnerCommissionRepositoryImpl) ByFilter(ctx context.Context, filter models.PartnerCommissionFilter, orderBy string, limit, offset int) ([]*models.PartnerCommission, error) {
	db := r.getDB(ctx)
	var pcs []*models.PartnerCommission

	query := r.applyFilter(db.Model(&models.PartnerCommission{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("sale_id, partner_name")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&pcs).Error
	if err != nil {
		return nil, err
	}
	return pcs, nil
}

// Count returns the number of partner commissions matching the filter
func (r *PartnerCommissionRepositoryImpl) Count(ctx context.Context, filter models.PartnerCommissionFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.PartnerCommission{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any partner commission matching the filter exists
func (r *PartnerCommissionRepositoryImpl) Exists(ctx context.Context, filter models.PartnerCommissionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *PartnerCommissionRepositoryImpl) applyFilter(query *gorm.DB, filter models.PartnerCommissionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.PartnerName != nil {
		query = query.Where("partner_name = ?", *filter.PartnerName)
	}
	return query
}
