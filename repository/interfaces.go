// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inmoventa/commission-engine/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// CommissionConfigRepository defines operations for per-development commission configuration
type CommissionConfigRepository interface {
	Repository[models.CommissionConfig, models.CommissionConfigFilter]
	ByDevelopment(ctx context.Context, dev models.DevelopmentKey) (*models.CommissionConfig, error)
	Upsert(ctx context.Context, config *models.CommissionConfig) error
}

// GlobalConfigRepository defines operations for the global key/value percent table
type GlobalConfigRepository interface {
	Repository[models.GlobalConfig, models.GlobalConfigFilter]
	ByKey(ctx context.Context, key string) (*models.GlobalConfig, error)
	Upsert(ctx context.Context, entry *models.GlobalConfig) error
	ListAll(ctx context.Context) ([]*models.GlobalConfig, error)
}

// CommissionRuleRepository defines operations for tiered bonus rules
type CommissionRuleRepository interface {
	Repository[models.CommissionRule, models.CommissionRuleFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.CommissionRule, error)
	ListActiveByDevelopment(ctx context.Context, dev models.DevelopmentKey) ([]*models.CommissionRule, error)
	Update(ctx context.Context, rule *models.CommissionRule) error
	Delete(ctx context.Context, id uint) error
}

// CommissionSaleRepository defines operations for the sale ledger
type CommissionSaleRepository interface {
	Repository[models.CommissionSale, models.CommissionSaleFilter]
	ByDealID(ctx context.Context, dealID string) (*models.CommissionSale, error)
	Upsert(ctx context.Context, sale *models.CommissionSale) (created bool, err error)
	LockByID(ctx context.Context, id uint) (*models.CommissionSale, error)
	CountSignedInWindow(ctx context.Context, dev models.DevelopmentKey, start, end, notAfter time.Time) (int64, error)
	UpdateCalculation(ctx context.Context, sale *models.CommissionSale) error
}

// CommissionDistributionRepository defines operations for distribution rows
type CommissionDistributionRepository interface {
	Repository[models.CommissionDistribution, models.CommissionDistributionFilter]
	BySale(ctx context.Context, saleID uint) ([]*models.CommissionDistribution, error)
	DeleteBySale(ctx context.Context, saleID uint) error
	Update(ctx context.Context, dist *models.CommissionDistribution) error
}

// CommissionAdjustmentRepository defines operations for the append-only adjustment ledger
type CommissionAdjustmentRepository interface {
	Repository[models.CommissionAdjustment, models.CommissionAdjustmentFilter]
	BySale(ctx context.Context, saleID uint) ([]*models.CommissionAdjustment, error)
}

// ProductPartnerRepository defines operations for product co-owners
type ProductPartnerRepository interface {
	Repository[models.ProductPartner, models.ProductPartnerFilter]
	BySale(ctx context.Context, saleID uint) ([]*models.ProductPartner, error)
	ReplaceForSale(ctx context.Context, saleID uint, partners []*models.ProductPartner) error
}

// PartnerCommissionRepository defines operations for partner commission rows
type PartnerCommissionRepository interface {
	Repository[models.PartnerCommission, models.PartnerCommissionFilter]
	BySale(ctx context.Context, saleID uint) ([]*models.PartnerCommission, error)
	Update(ctx context.Context, pc *models.PartnerCommission) error
	DeleteByID(ctx context.Context, id uint) error
	ListVisible(ctx context.Context, filter models.PartnerCommissionFilter, limit, offset int) ([]*models.PartnerCommission, error)
}

// PartnerInvoiceRepository defines operations for partner invoices
type PartnerInvoiceRepository interface {
	Repository[models.PartnerInvoice, models.PartnerInvoiceFilter]
	ByPartnerCommission(ctx context.Context, partnerCommissionID uint) ([]*models.PartnerInvoice, error)
}

// HiddenPartnerRepository defines operations for the partner exclusion list
type HiddenPartnerRepository interface {
	Hide(ctx context.Context, name, actor string) error
	Restore(ctx context.Context, name string) error
	IsHidden(ctx context.Context, name string) (bool, error)
	ListNames(ctx context.Context) ([]string, error)
}

// BillingTargetRepository defines operations for billing planning targets
type BillingTargetRepository interface {
	UpsertByPeriod(ctx context.Context, target *models.BillingTarget) error
	ListByYear(ctx context.Context, year int) ([]*models.BillingTarget, error)
}

// SalesTargetRepository defines operations for sales planning targets
type SalesTargetRepository interface {
	UpsertByPeriod(ctx context.Context, target *models.SalesTarget) error
	ListByYear(ctx context.Context, year int) ([]*models.SalesTarget, error)
}
