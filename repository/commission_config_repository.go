package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inmoventa/commission-engine/models"
)

// CommissionConfigRepositoryImpl implements CommissionConfigRepository interface
type CommissionConfigRepositoryImpl struct {
	*BaseRepository[models.CommissionConfig, models.CommissionConfigFilter]
}

// NewCommissionConfigRepository creates a new commission config repository
func NewCommissionConfigRepository(db *gorm.DB) CommissionConfigRepository {
	return &CommissionConfigRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionConfig, models.CommissionConfigFilter](db),
	}
}

// ByDevelopment finds the configuration of one canonical development
func (r *CommissionConfigRepositoryImpl) ByDevelopment(ctx context.Context, dev models.DevelopmentKey) (*models.CommissionConfig, error) {
	db := r.getDB(ctx)
	var config models.CommissionConfig
	err := db.Where("development = ?", dev).Last(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// Upsert inserts or fully overwrites the configuration keyed by development.
// Configs are never deleted; an update clobbers every field.
func (r *CommissionConfigRepositoryImpl) Upsert(ctx context.Context, config *models.CommissionConfig) error {
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

	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "development"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sale_percent", "post_sale_percent",
			"sale_manager_percent", "deal_owner_percent", "external_advisor_percent",
			"pool_enabled", "pool_percent",
			"customer_service_enabled", "customer_service_percent",
			"deliveries_enabled", "deliveries_percent",
			"bonds_enabled", "bonds_percent",
			"updated_by", "updated_at",
		}),
	}).Create(config).Error
	return err
}

// ByFilter retrieves configs based on filter criteria
func (r *CommissionConfigRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionConfigFilter, orderBy string, limit, offset int) ([]*models.CommissionConfig, error) {
	db := r.getDB(ctx)
	var configs []*models.CommissionConfig

	query := r.applyFilter(db.Model(&models.CommissionConfig{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("development")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// Count returns the number of configs matching the filter
func (r *CommissionConfigRepositoryImpl) Count(ctx context.Context, filter models.CommissionConfigFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.CommissionConfig{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any config matching the filter exists
func (r *CommissionConfigRepositoryImpl) Exists(ctx context.Context, filter models.CommissionConfigFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionConfigRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionConfigFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Development != nil {
		query = query.Where("development = ?", *filter.Development)
	}
	if filter.PoolEnabled != nil {
		query = query.Where("pool_enabled = ?", *filter.PoolEnabled)
	}
	return query
}
