package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/inmoventa/commission-engine/models"
)

// HiddenPartnerRepositoryImpl implements HiddenPartnerRepository interface
type HiddenPartnerRepositoryImpl struct {
	db *gorm.DB
}

// NewHiddenPartnerRepository creates a new hidden partner repository
func NewHiddenPartnerRepository(db *gorm.DB) HiddenPartnerRepository {
	return &HiddenPartnerRepositoryImpl{db: db}
}

func (r *HiddenPartnerRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db
}

// Hide adds a partner name to the exclusion list. Hiding an already hidden
// partner is a no-op.
func (r *HiddenPartnerRepositoryImpl) Hide(ctx context.Context, name, actor string) error {
	db := r.getDB(ctx)
	entry := &models.HiddenPartner{Name: name, HiddenBy: actor}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(entry).Error
}

// Restore removes a partner name from the exclusion list
func (r *HiddenPartnerRepositoryImpl) Restore(ctx context.Context, name string) error {
	db := r.getDB(ctx)
	return db.Where("name = ?", name).Delete(&models.HiddenPartner{}).Error
}

// IsHidden reports whether a partner name is on the exclusion list
func (r *HiddenPartnerRepositoryImpl) IsHidden(ctx context.Context, name string) (bool, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.HiddenPartner{}).Where("name = ?", name).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListNames returns every hidden partner name
func (r *HiddenPartnerRepositoryImpl) ListNames(ctx context.Context) ([]string, error) {
	db := r.getDB(ctx)
	var names []string
	err := db.Model(&models.HiddenPartner{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
