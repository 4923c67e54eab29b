package businessflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/config"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	"github.com/inmoventa/commission-engine/utils"
)

// PartnerFlow handles partner commission splits, collection state and invoices
type PartnerFlow interface {
	CalculatePartnerCommissions(ctx context.Context, req *dto.CalculatePartnerCommissionsRequest, metadata *ClientMetadata) (*dto.CalculatePartnerCommissionsResponse, error)
	ListPartnerCommissions(ctx context.Context, req *dto.ListPartnerCommissionsRequest, metadata *ClientMetadata) (*dto.ListPartnerCommissionsResponse, error)
	UpdatePartnerPhase(ctx context.Context, req *dto.UpdatePartnerPhaseRequest, metadata *ClientMetadata) (*dto.UpdatePartnerPhaseResponse, error)
	CreatePartnerInvoice(ctx context.Context, req *dto.CreatePartnerInvoiceRequest, metadata *ClientMetadata) (*dto.CreatePartnerInvoiceResponse, error)
	HidePartner(ctx context.Context, req *dto.HidePartnerRequest, metadata *ClientMetadata) (*dto.HidePartnerResponse, error)
	RestorePartner(ctx context.Context, req *dto.RestorePartnerRequest, metadata *ClientMetadata) (*dto.RestorePartnerResponse, error)
	ListHiddenPartners(ctx context.Context, metadata *ClientMetadata) (*dto.ListHiddenPartnersResponse, error)
}

// PartnerFlowImpl implements PartnerFlow
type PartnerFlowImpl struct {
	saleRepo    repository.CommissionSaleRepository
	productRepo repository.ProductPartnerRepository
	pcRepo      repository.PartnerCommissionRepository
	invoiceRepo repository.PartnerInvoiceRepository
	hiddenRepo  repository.HiddenPartnerRepository
	engineCfg   config.EngineConfig
	db          *gorm.DB
}

// NewPartnerFlow creates a new partner flow instance
func NewPartnerFlow(
	saleRepo repository.CommissionSaleRepository,
	productRepo repository.ProductPartnerRepository,
	pcRepo repository.PartnerCommissionRepository,
	invoiceRepo repository.PartnerInvoiceRepository,
	hiddenRepo repository.HiddenPartnerRepository,
	engineCfg config.EngineConfig,
	db *gorm.DB,
) PartnerFlow {
	return &PartnerFlowImpl{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		pcRepo:      pcRepo,
		invoiceRepo: invoiceRepo,
		hiddenRepo:  hiddenRepo,
		engineCfg:   engineCfg,
		db:          db,
	}
}

// CalculatePartnerCommissions splits a calculated sale's commission between
// its product partners. Recalculation merges instead of replacing: amounts
// are refreshed, but the per-phase collection state of surviving partners is
// preserved.
func (f *PartnerFlowImpl) CalculatePartnerCommissions(ctx context.Context, req *dto.CalculatePartnerCommissionsRequest, metadata *ClientMetadata) (*dto.CalculatePartnerCommissionsResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}
	if !sale.Calculated {
		return nil, ErrSaleNotCalculated
	}

	partners, err := f.productRepo.BySale(ctx, sale.ID)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list product partners", err)
	}
	if len(partners) == 0 {
		return nil, ErrNoProductPartners
	}

	var result []*models.PartnerCommission
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.pcRepo.BySale(txCtx, sale.ID)
		if err != nil {
			return err
		}
		byName := make(map[string]*models.PartnerCommission, len(existing))
		for _, pc := range existing {
			byName[pc.PartnerName] = pc
		}

		for _, p := range partners {
			total := utils.Round2(utils.Percent(sale.TotalCommission, p.ParticipationPercent))
			salePart := utils.Round2(utils.Percent(sale.SalePhaseAmount, p.ParticipationPercent))
			postPart := utils.Round2(utils.Percent(sale.PostSalePhaseAmount, p.ParticipationPercent))

			if pc, ok := byName[p.Name]; ok {
				pc.ParticipationPercent = p.ParticipationPercent
				pc.TotalAmount = total
				pc.SalePhaseAmount = salePart
				pc.PostSalePhaseAmount = postPart
				if err := f.pcRepo.Update(txCtx, pc); err != nil {
					return err
				}
				result = append(result, pc)
				delete(byName, p.Name)
				continue
			}

			pc := &models.PartnerCommission{
				SaleID:               sale.ID,
				PartnerName:          p.Name,
				ParticipationPercent: p.ParticipationPercent,
				TotalAmount:          total,
				SalePhaseAmount:      salePart,
				PostSalePhaseAmount:  postPart,
				SaleStatus:           models.PartnerStatusPendingInvoice,
				PostSaleStatus:       models.PartnerStatusPendingInvoice,
			}
			if err := f.pcRepo.Save(txCtx, pc); err != nil {
				return err
			}
			result = append(result, pc)
		}

		// Partners dropped from the product lose their rows
		for _, leftover := range byName {
			if err := f.pcRepo.DeleteByID(txCtx, leftover.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("CALCULATION_FAILED", "Failed to calculate partner commissions", err)
	}

	out := make([]dto.PartnerCommissionDTO, 0, len(result))
	for _, pc := range result {
		out = append(out, ToPartnerCommissionDTO(pc))
	}
	return &dto.CalculatePartnerCommissionsResponse{
		Message:  "Partner commissions calculated successfully",
		Partners: out,
	}, nil
}

// ListPartnerCommissions lists partner commissions, excluding hidden partners
// unless explicitly asked otherwise. Hidden partners' rows survive in the
// table; they are only filtered from this view.
func (f *PartnerFlowImpl) ListPartnerCommissions(ctx context.Context, req *dto.ListPartnerCommissionsRequest, metadata *ClientMetadata) (*dto.ListPartnerCommissionsResponse, error) {
	var filter models.PartnerCommissionFilter
	if req.DealID != "" {
		sale, err := getSale(ctx, f.saleRepo, req.DealID)
		if err != nil {
			return nil, err
		}
		filter.SaleID = &sale.ID
	}

	var pcs []*models.PartnerCommission
	var err error
	if req.IncludeHidden {
		pcs, err = f.pcRepo.ByFilter(ctx, filter, "", 0, 0)
	} else {
		pcs, err = f.pcRepo.ListVisible(ctx, filter, 0, 0)
	}
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list partner commissions", err)
	}

	out := make([]dto.PartnerCommissionDTO, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, ToPartnerCommissionDTO(pc))
	}
	return &dto.ListPartnerCommissionsResponse{Partners: out}, nil
}

// UpdatePartnerPhase moves one phase of a partner commission through its
// collection state machine. The other phase is never touched.
func (f *PartnerFlowImpl) UpdatePartnerPhase(ctx context.Context, req *dto.UpdatePartnerPhaseRequest, metadata *ClientMetadata) (*dto.UpdatePartnerPhaseResponse, error) {
	if req.Phase != models.PhaseSale && req.Phase != models.PhasePostSale {
		return nil, ErrInvalidPhase
	}

	pc, err := f.getPartnerCommission(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !models.IsValidPartnerStatus(*req.Status) {
			return nil, ErrInvalidPartnerStatus
		}
		pc.SetPhaseStatus(req.Phase, *req.Status, utils.UTCNow())
	}
	if req.Cash != nil {
		pc.SetPhaseCash(req.Phase, *req.Cash)
	}

	if err := f.pcRepo.Update(ctx, pc); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to update partner commission", err)
	}

	return &dto.UpdatePartnerPhaseResponse{
		Message: "Partner commission updated successfully",
		Partner: ToPartnerCommissionDTO(pc),
	}, nil
}

// CreatePartnerInvoice records an invoice against one phase of a partner
// commission and advances that phase to invoiced if it was still pending.
func (f *PartnerFlowImpl) CreatePartnerInvoice(ctx context.Context, req *dto.CreatePartnerInvoiceRequest, metadata *ClientMetadata) (*dto.CreatePartnerInvoiceResponse, error) {
	if req.Phase != models.PhaseSale && req.Phase != models.PhasePostSale {
		return nil, ErrInvalidPhase
	}

	pc, err := f.getPartnerCommission(ctx, req.PartnerCommissionUUID)
	if err != nil {
		return nil, err
	}

	vat := f.engineCfg.DefaultVATPercent
	if req.VATPercent != nil {
		vat = *req.VATPercent
	}

	issuedAt := utils.UTCNow()
	if req.IssuedAt != nil && *req.IssuedAt != "" {
		parsed, err := time.Parse("2006-01-02", *req.IssuedAt)
		if err != nil {
			parsed, err = time.Parse(time.RFC3339, *req.IssuedAt)
		}
		if err == nil {
			issuedAt = parsed.UTC()
		}
	}

	amount := pc.PhaseAmount(req.Phase)
	invoice := &models.PartnerInvoice{
		PartnerCommissionID: pc.ID,
		Phase:               req.Phase,
		InvoiceNumber:       strings.TrimSpace(req.InvoiceNumber),
		Amount:              amount,
		VATPercent:          vat,
		Total:               utils.Round2(amount * (1 + vat/100)),
		IssuedAt:            issuedAt,
		CreatedBy:           actorOf(metadata),
	}

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.invoiceRepo.Save(txCtx, invoice); err != nil {
			return err
		}
		if pc.PhaseStatus(req.Phase) == models.PartnerStatusPendingInvoice {
			pc.SetPhaseStatus(req.Phase, models.PartnerStatusInvoiced, utils.UTCNow())
			return f.pcRepo.Update(txCtx, pc)
		}
		return nil
	})
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to record invoice", err)
	}

	return &dto.CreatePartnerInvoiceResponse{
		Message: "Invoice recorded successfully",
		Invoice: ToPartnerInvoiceDTO(invoice),
		Partner: ToPartnerCommissionDTO(pc),
	}, nil
}

// HidePartner adds a partner name to the reporting exclusion list
func (f *PartnerFlowImpl) HidePartner(ctx context.Context, req *dto.HidePartnerRequest, metadata *ClientMetadata) (*dto.HidePartnerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrPartnerNameRequired
	}
	if err := f.hiddenRepo.Hide(ctx, name, actorOf(metadata)); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to hide partner", err)
	}
	return &dto.HidePartnerResponse{Message: "Partner hidden successfully"}, nil
}

// RestorePartner removes a partner name from the exclusion list
func (f *PartnerFlowImpl) RestorePartner(ctx context.Context, req *dto.RestorePartnerRequest, metadata *ClientMetadata) (*dto.RestorePartnerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrPartnerNameRequired
	}
	if err := f.hiddenRepo.Restore(ctx, name); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to restore partner", err)
	}
	return &dto.RestorePartnerResponse{Message: "Partner restored successfully"}, nil
}

// ListHiddenPartners returns every hidden partner name
func (f *PartnerFlowImpl) ListHiddenPartners(ctx context.Context, metadata *ClientMetadata) (*dto.ListHiddenPartnersResponse, error) {
	names, err := f.hiddenRepo.ListNames(ctx)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list hidden partners", err)
	}
	return &dto.ListHiddenPartnersResponse{Names: names}, nil
}

func (f *PartnerFlowImpl) getPartnerCommission(ctx context.Context, rawUUID string) (*models.PartnerCommission, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, ErrPartnerCommissionNotFound
	}
	pcs, err := f.pcRepo.ByFilter(ctx, models.PartnerCommissionFilter{UUID: &id}, "", 1, 0)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch partner commission", err)
	}
	if len(pcs) == 0 {
		return nil, ErrPartnerCommissionNotFound
	}
	return pcs[0], nil
}
