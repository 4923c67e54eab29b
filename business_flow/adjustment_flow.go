package businessflow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
)

// AdjustmentFlow handles manual corrections and their append-only audit trail
type AdjustmentFlow interface {
	RecordAdjustment(ctx context.Context, req *dto.RecordAdjustmentRequest, metadata *ClientMetadata) (*dto.RecordAdjustmentResponse, error)
	ListAdjustments(ctx context.Context, req *dto.ListAdjustmentsRequest, metadata *ClientMetadata) (*dto.ListAdjustmentsResponse, error)
}

// AdjustmentFlowImpl implements AdjustmentFlow
type AdjustmentFlowImpl struct {
	saleRepo       repository.CommissionSaleRepository
	distRepo       repository.CommissionDistributionRepository
	adjustmentRepo repository.CommissionAdjustmentRepository
	db             *gorm.DB
}

// NewAdjustmentFlow creates a new adjustment flow instance
func NewAdjustmentFlow(
	saleRepo repository.CommissionSaleRepository,
	distRepo repository.CommissionDistributionRepository,
	adjustmentRepo repository.CommissionAdjustmentRepository,
	db *gorm.DB,
) AdjustmentFlow {
	return &AdjustmentFlowImpl{
		saleRepo:       saleRepo,
		distRepo:       distRepo,
		adjustmentRepo: adjustmentRepo,
		db:             db,
	}
}

// RecordAdjustment corrects one distribution's amount or role and appends the
// correction to the audit ledger in the same transaction. Ledger entries are
// never mutated or deleted afterwards.
func (f *AdjustmentFlowImpl) RecordAdjustment(ctx context.Context, req *dto.RecordAdjustmentRequest, metadata *ClientMetadata) (*dto.RecordAdjustmentResponse, error) {
	dist, err := f.getDistribution(ctx, req.DistributionUUID)
	if err != nil {
		return nil, err
	}
	if dist.PaymentStatus == models.PaymentStatusNotApplicable {
		return nil, ErrDistributionImmutable
	}

	valueChanged := req.NewValue != dist.Amount
	roleChanged := req.NewRole != nil && *req.NewRole != dist.RoleType
	if !valueChanged && !roleChanged {
		return nil, ErrAdjustmentUnchanged
	}

	oldRole := dist.RoleType
	entry := &models.CommissionAdjustment{
		DistributionID: dist.ID,
		SaleID:         dist.SaleID,
		OldValue:       dist.Amount,
		NewValue:       req.NewValue,
		AmountImpact:   req.NewValue - dist.Amount,
		Actor:          actorOf(metadata),
		Reason:         req.Reason,
	}
	if roleChanged {
		entry.OldRole = &oldRole
		entry.NewRole = req.NewRole
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.adjustmentRepo.Save(txCtx, entry); err != nil {
			return err
		}

		dist.Amount = req.NewValue
		if roleChanged {
			dist.RoleType = *req.NewRole
		}
		return f.distRepo.Update(txCtx, dist)
	})
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to record adjustment", err)
	}

	return &dto.RecordAdjustmentResponse{
		Message:      "Adjustment recorded successfully",
		Adjustment:   ToAdjustmentDTO(entry),
		Distribution: ToDistributionDTO(dist, nil),
	}, nil
}

// ListAdjustments returns a sale's adjustment history, newest first
func (f *AdjustmentFlowImpl) ListAdjustments(ctx context.Context, req *dto.ListAdjustmentsRequest, metadata *ClientMetadata) (*dto.ListAdjustmentsResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}

	entries, err := f.adjustmentRepo.BySale(ctx, sale.ID)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list adjustments", err)
	}

	out := make([]dto.AdjustmentDTO, 0, len(entries))
	for _, a := range entries {
		out = append(out, ToAdjustmentDTO(a))
	}
	return &dto.ListAdjustmentsResponse{Adjustments: out}, nil
}

func (f *AdjustmentFlowImpl) getDistribution(ctx context.Context, rawUUID string) (*models.CommissionDistribution, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, ErrDistributionNotFound
	}
	rows, err := f.distRepo.ByFilter(ctx, models.CommissionDistributionFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch distribution", err)
	}
	if len(rows) == 0 {
		return nil, ErrDistributionNotFound
	}
	return rows[0], nil
}
