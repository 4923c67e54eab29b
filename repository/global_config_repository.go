package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inmoventa/commission-engine/models"
)

// GlobalConfigRepositoryImpl implements GlobalConfigRepository interface
type GlobalConfigRepositoryImpl struct {
	*BaseRepository[models.GlobalConfig, models.GlobalConfigFilter]
}

// NewGlobalConfigRepository creates a new global config repository
func NewGlobalConfigRepository(db *gorm.DB) GlobalConfigRepository {
	return &GlobalConfigRepositoryImpl{
		BaseRepository: NewBaseRepository[models.GlobalConfig, models.GlobalConfigFilter](db),
	}
}

// ByKey finds one entry of the fixed key set
func (r *GlobalConfigRepositoryImpl) ByKey(ctx context.Context, key string) (*models.GlobalConfig, error) {
	db := r.getDB(ctx)
	var entry models.GlobalConfig
	err := db.Where("key = ?", key).Last(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// Upsert inserts or overwrites the percent of one key
func (r *GlobalConfigRepositoryImpl) Upsert(ctx context.Context, entry *models.GlobalConfig) error {
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
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"percent", "updated_by", "updated_at"}),
	}).Create(entry).Error
	return err
}

// ListAll returns every stored entry ordered by key
func (r *GlobalConfigRepositoryImpl) ListAll(ctx context.Context) ([]*models.GlobalConfig, error) {
	db := r.getDB(ctx)
	var entries []*models.GlobalConfig
	err := db.Order("key").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ByFilter retrieves entries based on filter criteria
func (r *GlobalConfigRepositoryImpl) ByFilter(ctx context.Context, filter models.GlobalConfigFilter, orderBy string, limit, offset int) ([]*models.GlobalConfig, error) {
	db := r.getDB(ctx)
	var entries []*models.GlobalConfig

	query := r.applyFilter(db.Model(&models.GlobalConfig{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("key")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries matching the filter
func (r *GlobalConfigRepositoryImpl) Count(ctx context.Context, filter models.GlobalConfigFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.GlobalConfig{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any entry matching the filter exists
func (r *GlobalConfigRepositoryImpl) Exists(ctx context.Context, filter models.GlobalConfigFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *GlobalConfigRepositoryImpl) applyFilter(query *gorm.DB, filter models.GlobalConfigFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.Key != nil {
		query = query.Where("key = ?", *filter.Key)
	}
	return query
}
