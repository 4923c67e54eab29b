package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/models"
)

// ProductPartnerRepositoryImpl implements ProductPartnerRepository interface
type ProductPartnerRepositoryImpl struct {
	*BaseRepository[models.ProductPartner, models.ProductPartnerFilter]
}

// NewProductPartnerRepository creates a new product partner repository
func NewProductPartnerRepository(db *gorm.DB) ProductPartnerRepository {
	return &ProductPartnerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ProductPartner, models.ProductPartnerFilter](db),
	}
}

// BySale returns the co-owners of one sale's product
func (r *ProductPartnerRepositoryImpl) BySale(ctx context.Context, saleID uint) ([]*models.ProductPartner, error) {
	db := r.getDB(ctx)
	var partners []*models.ProductPartner
	err := db.Where("sale_id = ?", saleID).Order("name").Find(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

// ReplaceForSale swaps a sale's full partner set in one transaction
func (r *ProductPartnerRepositoryImpl) ReplaceForSale(ctx context.Context, saleID uint, partners []*models.ProductPartner) error {
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

	err = db.Where("sale_id = ?", saleID).Delete(&models.ProductPartner{}).Error
	if err != nil {
		return err
	}
	if len(partners) == 0 {
		return nil
	}
	for _, p := range partners {
		p.SaleID = saleID
	}
	err = db.CreateInBatches(partners, 100).Error
	return err
}

// ByFilter retrieves product partners based on filter criteria
func (r *ProductPartnerRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductPartnerFilter, orderBy string, limit, offset int) ([]*models.ProductPartner, error) {
	db := r.getDB(ctx)
	var partners []*models.ProductPartner

	query := r.applyFilter(db.Model(&models.ProductPartner{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("sale_id, name")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

// Count returns the number of product partners matching the filter
func (r *ProductPartnerRepositoryImpl) Count(ctx context.Context, filter models.ProductPartnerFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.ProductPartner{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any product partner matching the filter exists
func (r *ProductPartnerRepositoryImpl) Exists(ctx context.Context, filter models.ProductPartnerFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *ProductPartnerRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProductPartnerFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.SaleID != nil {
		query = query.Where("sale_id = ?", *filter.SaleID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	return query
}
