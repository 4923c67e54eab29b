package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/models"
)

// CommissionRuleRepositoryImpl implements CommissionRuleRepository interface
type CommissionRuleRepositoryImpl struct {
	*BaseRepository[models.CommissionRule, models.CommissionRuleFilter]
}

// NewCommissionRuleRepository creates a new commission rule repository
func NewCommissionRuleRepository(db *gorm.DB) CommissionRuleRepository {
	return &CommissionRuleRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CommissionRule, models.CommissionRuleFilter](db),
	}
}

// ByUUID finds a rule by UUID
func (r *CommissionRuleRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.CommissionRule, error) {
	db := r.getDB(ctx)
	var rule models.CommissionRule
	err := db.Where("uuid = ?", id).Last(&rule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// ListActiveByDevelopment returns every active rule of one development,
// highest priority first.
func (r *CommissionRuleRepositoryImpl) ListActiveByDevelopment(ctx context.Context, dev models.DevelopmentKey) ([]*models.CommissionRule, error) {
	db := r.getDB(ctx)
	var rules []*models.CommissionRule
	err := db.Where("development = ? AND active = ?", dev, true).
		Order("priority DESC, id").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// Update persists every field of an existing rule
func (r *CommissionRuleRepositoryImpl) Update(ctx context.Context, rule *models.CommissionRule) error {
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

	err = db.Save(rule).Error
	return err
}

// Delete removes a rule permanently (hard delete per rule lifecycle)
func (r *CommissionRuleRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	res := db.Delete(&models.CommissionRule{}, id)
	if res.Error != nil {
		err = res.Error
		return err
	}
	if res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
		return err
	}
	return nil
}

// ByFilter retrieves rules based on filter criteria
func (r *CommissionRuleRepositoryImpl) ByFilter(ctx context.Context, filter models.CommissionRuleFilter, orderBy string, limit, offset int) ([]*models.CommissionRule, error) {
	db := r.getDB(ctx)
	var rules []*models.CommissionRule

	query := r.applyFilter(db.Model(&models.CommissionRule{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	} else {
		query = query.Order("development, priority DESC")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// Count returns the number of rules matching the filter
func (r *CommissionRuleRepositoryImpl) Count(ctx context.Context, filter models.CommissionRuleFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := r.applyFilter(db.Model(&models.CommissionRule{}), filter).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any rule matching the filter exists
func (r *CommissionRuleRepositoryImpl) Exists(ctx context.Context, filter models.CommissionRuleFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies the filter to the query
func (r *CommissionRuleRepositoryImpl) applyFilter(query *gorm.DB, filter models.CommissionRuleFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Development != nil {
		query = query.Where("development = ?", *filter.Development)
	}
	if filter.PeriodType != nil {
		query = query.Where("period_type = ?", *filter.PeriodType)
	}
	if filter.PeriodYear != nil {
		query = query.Where("period_year = ?", *filter.PeriodYear)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	return query
}
