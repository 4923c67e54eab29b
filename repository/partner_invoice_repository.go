package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/models"
)

// PartnerInvoiceRepositoryImpl implements PartnerInvoiceRepository interface
type PartnerInvoiceRepositoryImpl struct {
	*BaseRepository[models.PartnerInvoice, models.PartnerInvoiceFilter]
}

// NewPartnerInvoiceRepository creates a new partner invoice repository
func NewPartnerInvoiceRepository(db *gorm.DB) PartnerInvoiceRepository {
	return &PartnerInvoiceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PartnerInvoice, models.PartnerInvoiceFilter](db),
	}
}

// ByPartnerCommission returns the invoices recorded against one partner commission
func (r *PartnerInvoiceRepositoryImpl) ByPartnerCommission(ctx context.Context, partnerCommissionID uint) ([]*models.PartnerInvoice, error) {
	db := r.getDB(ctx)
	var invoices []*models.PartnerInvoice
	err := db.Where("partner_commission_id = ?", partnerCommissionID).
		Order("issued_at DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// ByFilter retrieves invoices based on filter criteria
func (r *PartnerInvoiceRepositoryImpl) ByFilter(ctx context.Context, filter models.PartnerInvoiceFilter, orderBy string, limit, offset int) ([]*models.PartnerInvoice, error) {
	db := r.getDB(ctx)
	var invoices []*models.PartnerInvoice

	query := r.applyFilter(db.Model(&models.PartnerInvoice{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("issued_at DESC, id DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// Count returns the number of invoices matching the filter
func (r *PartnerInvoiceRepositoryImpl) Count(ctx context.Context, filter models.PartnerInvoiceFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.PartnerInvoice{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any invoice matching the filter exists
func (r *PartnerInvoiceRepositoryImpl) Exists(ctx context.Context, filter models.PartnerInvoiceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *PartnerInvoiceRepositoryImpl) applyFilter(query *gorm.DB, filter models.PartnerInvoiceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.PartnerCommissionID != nil {
		query = query.Where("partner_commission_id = ?", *filter.PartnerCommissionID)
	}
	if filter.Phase != nil {
		query = query.Where("phase = ?", *filter.Phase)
	}
	return query
}
