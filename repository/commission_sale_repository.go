package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inmoventa/commission-engine/models"
)

// CommissionSaleRepositoryImpl implements CommissionSaleRepository interface
type CommissionSaleRepositoryImpl struct {
	*BaseRepository[models.CommissionSale, models.CommissionSaleFilter]
}

// NewCommissionSaleRepository creates a new commission sale repository
func NewCommissionSaleRepository(db *gorm.DB) CommissionSaleRepository {
	return &CommissionSaleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionSale, models.CommissionSaleFilter](db),
	}
}

// ByDealID finds a sale by its upstream deal identifier
func (r *CommissionSaleRepositoryImpl) ByDealID(ctx context.Context, dealID string) (*models.CommissionSale, error) {
	db := r.getDB(ctx)
	var sale models.CommissionSale
	err := db.Where("deal_id = ?", dealID).Last(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// Upsert inserts or updates the sale keyed by deal_id. On conflict every
// sync-owned field is overwritten except the payment term: an empty incoming
// term never clobbers a stored non-empty one. Calculation fields are owned by
// the distribution calculator and are never touched here.
func (r *CommissionSaleRepositoryImpl) Upsert(ctx context.Context, sale *models.CommissionSale) (bool, error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
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

	var existing models.CommissionSale
	err = db.Where("deal_id = ?", sale.DealID).Last(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Create(sale).Error
		if err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	updates := map[string]any{
		"client_name":      sale.ClientName,
		"product":          sale.Product,
		"development":      sale.Development,
		"owner_id":         sale.OwnerID,
		"owner_name":       sale.OwnerName,
		"area_m2":          sale.AreaM2,
		"price_per_area":   sale.PricePerArea,
		"total_value":      sale.TotalValue,
		"signing_date":     sale.SigningDate,
		"external_advisor": sale.ExternalAdvisor,
		"raw_payload":      sale.RawPayload,
		"updated_at":       time.Now().UTC(),
	}
	if sale.HasTerm() {
		updates["term_months"] = sale.TermMonths
	}

	err = db.Model(&models.CommissionSale{}).Where("id = ?", existing.ID).Updates(updates).Error
	if err != nil {
		return false, err
	}

	sale.ID = existing.ID
	sale.UUID = existing.UUID
	if !sale.HasTerm() {
		sale.TermMonths = existing.TermMonths
	}
	return false, nil
}

// LockByID loads a sale under a row-level lock. Must run inside a
// transaction; concurrent recalculations of the same sale serialize here.
func (r *CommissionSaleRepositoryImpl) LockByID(ctx context.Context, id uint) (*models.CommissionSale, error) {
	db := r.getDB(ctx)
	var sale models.CommissionSale
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Last(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

// CountSignedInWindow counts sales of one development signed inside
// [start, end), ignoring sales signed after notAfter (future-dated records
// must not inflate rule unit counts).
func (r *CommissionSaleRepositoryImpl) CountSignedInWindow(ctx context.Context, dev models.DevelopmentKey, start, end, notAfter time.Time) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.CommissionSale{}).
		Where("development = ?", dev).
		Where("signing_date >= ? AND signing_date < ?", start, end).
		Where("signing_date <= ?", notAfter).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateCalculation persists the calculator-owned fields of a sale: the
// calculated flag, the totals and the percentages actually used.
func (r *CommissionSaleRepositoryImpl) UpdateCalculation(ctx context.Context, sale *models.CommissionSale) error {
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

	err = db.Model(&models.CommissionSale{}).Where("id = ?", sale.ID).Updates(map[string]any{
		"calculated":             sale.Calculated,
		"total_commission":       sale.TotalCommission,
		"sale_phase_amount":      sale.SalePhaseAmount,
		"post_sale_phase_amount": sale.PostSalePhaseAmount,
		"sale_percent_used":      sale.SalePercentUsed,
		"post_sale_percent_used": sale.PostSalePercentUsed,
		"updated_at":             time.Now().UTC(),
	}).Error
	return err
}

// ByFilter retrieves sales based on filter criteria
func (r *CommissionSaleRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionSaleFilter, orderBy string, limit, offset int) ([]*models.CommissionSale, error) {
	db := r.getDB(ctx)
	var sales []*models.CommissionSale

	query := r.applyFilter(db.Model(&models.CommissionSale{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("signing_date DESC, id DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

// Count returns the number of sales matching the filter
func (r *CommissionSaleRepositoryImpl) Count(ctx context.Context, filter models.CommissionSaleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.CommissionSale{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any sale matching the filter exists
func (r *CommissionSaleRepositoryImpl) Exists(ctx context.Context, filter models.CommissionSaleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionSaleRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionSaleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.DealID != nil {
		query = query.Where("deal_id = ?", *filter.DealID)
	}
	if filter.Development != nil {
		query = query.Where("development = ?", *filter.Development)
	}
	if filter.Calculated != nil {
		query = query.Where("calculated = ?", *filter.Calculated)
	}
	if filter.SignedYear != nil {
		query = query.Where("EXTRACT(YEAR FROM signing_date) = ?", *filter.SignedYear)
	}
	if filter.SignedMonth != nil {
		query = query.Where("EXTRACT(MONTH FROM signing_date) = ?", *filter.SignedMonth)
	}
	return query
}
