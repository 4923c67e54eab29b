package businessflow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	"github.com/inmoventa/commission-engine/utils"
)

// DistributionFlow handles the commission distribution calculator
type DistributionFlow interface {
	CalculateDistributions(ctx context.Context, req *dto.CalculateDistributionsRequest, metadata *ClientMetadata) (*dto.CalculateDistributionsResponse, error)
	ListDistributions(ctx context.Context, req *dto.ListDistributionsRequest, metadata *ClientMetadata) (*dto.ListDistributionsResponse, error)
	UpdateDistributionStatus(ctx context.Context, req *dto.UpdateDistributionStatusRequest, metadata *ClientMetadata) (*dto.UpdateDistributionStatusResponse, error)
	ResetDistributions(ctx context.Context, req *dto.ResetDistributionsRequest, metadata *ClientMetadata) (*dto.ResetDistributionsResponse, error)
}

// DistributionFlowImpl implements DistributionFlow
type DistributionFlowImpl struct {
	saleRepo   repository.CommissionSaleRepository
	configRepo repository.CommissionConfigRepository
	globalRepo repository.GlobalConfigRepository
	ruleRepo   repository.CommissionRuleRepository
	distRepo   repository.CommissionDistributionRepository
	db         *gorm.DB
}

// NewDistributionFlow creates a new distribution flow instance
func NewDistributionFlow(
	saleRepo repository.CommissionSaleRepository,
	configRepo repository.CommissionConfigRepository,
	globalRepo repository.GlobalConfigRepository,
	ruleRepo repository.CommissionRuleRepository,
	distRepo repository.CommissionDistributionRepository,
	db *gorm.DB,
) DistributionFlow {
	return &DistributionFlowImpl{
		saleRepo:   saleRepo,
		configRepo: configRepo,
		globalRepo: globalRepo,
		ruleRepo:   ruleRepo,
		distRepo:   distRepo,
		db:         db,
	}
}

// CalculateDistributions computes the full distribution set of one sale and
// replaces whatever set existed before, in one transaction. The sale row is
// locked for the duration so concurrent recalculations serialize.
func (f *DistributionFlowImpl) CalculateDistributions(ctx context.Context, req *dto.CalculateDistributionsRequest, metadata *ClientMetadata) (*dto.CalculateDistributionsResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}

	cfg, err := f.configRepo.ByDevelopment(ctx, sale.Development)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch configuration", err)
	}
	if cfg == nil {
		return nil, ErrConfigNotFound
	}

	globals, err := f.globalRepo.ListAll(ctx)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch global configuration", err)
	}

	var rows []*models.CommissionDistribution
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.saleRepo.LockByID(txCtx, sale.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrSaleNotFound
		}
		sale = locked

		rules, _, err := applicableRules(txCtx, f.ruleRepo, f.saleRepo, sale)
		if err != nil {
			return err
		}

		rows = buildDistributions(sale, cfg, globals, rules)

		if err := f.distRepo.DeleteBySale(txCtx, sale.ID); err != nil {
			return err
		}
		if err := f.distRepo.SaveBatch(txCtx, rows); err != nil {
			return err
		}

		sale.Calculated = true
		return f.saleRepo.UpdateCalculation(txCtx, sale)
	})
	if err != nil {
		if IsSaleNotFound(err) {
			return nil, err
		}
		return nil, NewBusinessError("CALCULATION_FAILED", "Failed to calculate distributions", err)
	}

	return &dto.CalculateDistributionsResponse{
		Message:       "Distributions calculated successfully",
		Sale:          ToSaleDTO(sale),
		Distributions: f.toDistributionDTOs(ctx, rows),
	}, nil
}

// ListDistributions returns the stored distribution set of one sale,
// optionally narrowed by phase and payment status.
func (f *DistributionFlowImpl) ListDistributions(ctx context.Context, req *dto.ListDistributionsRequest, metadata *ClientMetadata) (*dto.ListDistributionsResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}

	var rows []*models.CommissionDistribution
	if req.Phase != "" || req.PaymentStatus != "" {
		filter := models.CommissionDistributionFilter{SaleID: &sale.ID}
		if req.Phase != "" {
			if !models.IsValidDistributionPhase(req.Phase) {
				return nil, ErrInvalidPhase
			}
			filter.Phase = &req.Phase
		}
		if req.PaymentStatus != "" {
			if !models.IsValidPaymentStatus(req.PaymentStatus) {
				return nil, ErrInvalidPaymentStatus
			}
			filter.PaymentStatus = &req.PaymentStatus
		}
		rows, err = f.distRepo.ByFilter(ctx, filter, "phase, role_type, id", 0, 0)
	} else {
		rows, err = f.distRepo.BySale(ctx, sale.ID)
	}
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list distributions", err)
	}

	return &dto.ListDistributionsResponse{
		Sale:          ToSaleDTO(sale),
		Distributions: f.toDistributionDTOs(ctx, rows),
	}, nil
}

// UpdateDistributionStatus updates the payment status or cash flag of one
// distribution. NO_APLICA rows are immutable; moving a row to NO_APLICA
// zeroes its amount.
func (f *DistributionFlowImpl) UpdateDistributionStatus(ctx context.Context, req *dto.UpdateDistributionStatusRequest, metadata *ClientMetadata) (*dto.UpdateDistributionStatusResponse, error) {
	dist, err := f.getDistribution(ctx, req.UUID)
	if err != nil {
		return nil, err
	}
	if dist.PaymentStatus == models.PaymentStatusNotApplicable {
		return nil, ErrDistributionImmutable
	}

	if req.PaymentStatus != nil {
		if !models.IsValidPaymentStatus(*req.PaymentStatus) {
			return nil, ErrInvalidPaymentStatus
		}
		dist.PaymentStatus = *req.PaymentStatus
		if dist.PaymentStatus == models.PaymentStatusNotApplicable {
			dist.Amount = 0
		}
	}
	if req.CashPayment != nil {
		dist.CashPayment = *req.CashPayment
	}

	if err := f.distRepo.Update(ctx, dist); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to update distribution", err)
	}

	return &dto.UpdateDistributionStatusResponse{
		Message:      "Distribution updated successfully",
		Distribution: ToDistributionDTO(dist, f.ruleUUIDOf(ctx, dist)),
	}, nil
}

// ResetDistributions deletes a sale's distribution set and clears its
// calculation results, in one transaction under the same row lock the
// calculator takes.
func (f *DistributionFlowImpl) ResetDistributions(ctx context.Context, req *dto.ResetDistributionsRequest, metadata *ClientMetadata) (*dto.ResetDistributionsResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}

	deleted := 0
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		locked, err := f.saleRepo.LockByID(txCtx, sale.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrSaleNotFound
		}

		rows, err := f.distRepo.BySale(txCtx, locked.ID)
		if err != nil {
			return err
		}
		deleted = len(rows)

		if err := f.distRepo.DeleteBySale(txCtx, locked.ID); err != nil {
			return err
		}

		locked.Calculated = false
		locked.TotalCommission = 0
		locked.SalePhaseAmount = 0
		locked.PostSalePhaseAmount = 0
		locked.SalePercentUsed = 0
		locked.PostSalePercentUsed = 0
		return f.saleRepo.UpdateCalculation(txCtx, locked)
	})
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to reset distributions", err)
	}

	return &dto.ResetDistributionsResponse{
		Message: "Distributions reset successfully",
		Deleted: deleted,
	}, nil
}

// buildDistributions derives the full distribution set of a sale from its
// configuration, the global indirect-role percents and the applicable rules.
// It also writes the phase amounts and percents used back onto the sale.
func buildDistributions(sale *models.CommissionSale, cfg *models.CommissionConfig, globals []*models.GlobalConfig, rules []*models.CommissionRule) []*models.CommissionDistribution {
	salePhase := utils.Round2(utils.Percent(sale.TotalValue, cfg.SalePercent))
	postSalePhase := utils.Round2(utils.Percent(sale.TotalValue, cfg.PostSalePercent))
	total := utils.Round2(salePhase + postSalePhase)

	sale.SalePhaseAmount = salePhase
	sale.PostSalePhaseAmount = postSalePhase
	sale.TotalCommission = total
	sale.SalePercentUsed = cfg.SalePercent
	sale.PostSalePercentUsed = cfg.PostSalePercent

	var rows []*models.CommissionDistribution

	addRow := func(role, person, phase string, pct, base float64, status string) {
		amount := utils.Round2(utils.Percent(base, pct))
		if status == models.PaymentStatusNotApplicable {
			// NO_APLICA rows never carry money
			amount = 0
		}
		rows = append(rows, &models.CommissionDistribution{
			SaleID:        sale.ID,
			RoleType:      role,
			Person:        person,
			Phase:         phase,
			Percent:       pct,
			Amount:        amount,
			PaymentStatus: status,
		})
	}

	phases := []struct {
		name   string
		amount float64
	}{
		{models.PhaseSale, salePhase},
		{models.PhasePostSale, postSalePhase},
	}

	for _, phase := range phases {
		addRow(models.RoleSaleManager, "", phase.name, cfg.SaleManagerPercent, phase.amount, models.PaymentStatusPending)
		addRow(models.RoleDealOwner, sale.OwnerName, phase.name, cfg.DealOwnerPercent, phase.amount, models.PaymentStatusPending)

		advisorStatus := models.PaymentStatusPending
		if sale.ExternalAdvisor == "" {
			advisorStatus = models.PaymentStatusNotApplicable
		}
		addRow(models.RoleExternalAdvisor, sale.ExternalAdvisor, phase.name, cfg.ExternalAdvisorPercent, phase.amount, advisorStatus)

		if cfg.PoolEnabled {
			addRow(models.RolePool, "", phase.name, cfg.PoolPercent, phase.amount, models.PaymentStatusPending)
		}
		if cfg.CustomerServiceEnabled {
			addRow(models.RoleCustomerService, "", phase.name, cfg.CustomerServicePercent, phase.amount, models.PaymentStatusPending)
		}
		if cfg.DeliveriesEnabled {
			addRow(models.RoleDeliveries, "", phase.name, cfg.DeliveriesPercent, phase.amount, models.PaymentStatusPending)
		}
		if cfg.BondsEnabled {
			addRow(models.RoleBonds, "", phase.name, cfg.BondsPercent, phase.amount, models.PaymentStatusPending)
		}
	}

	// Indirect roles are paid on the total commission, outside both phases
	for _, g := range globals {
		if g.Percent <= 0 {
			continue
		}
		addRow(g.Key, "", models.PhaseUtility, g.Percent, total, models.PaymentStatusPending)
	}

	// Tiered bonuses stack on the sale phase
	for _, rule := range rules {
		ruleID := rule.ID
		amount := utils.Round2(utils.Percent(salePhase, rule.CommissionPercent))
		rows = append(rows, &models.CommissionDistribution{
			SaleID:        sale.ID,
			RuleID:        &ruleID,
			RoleType:      models.RoleRuleBonus,
			Person:        sale.OwnerName,
			Phase:         models.PhaseSale,
			Percent:       rule.CommissionPercent,
			Amount:        amount,
			PaymentStatus: models.PaymentStatusPending,
		})
	}

	return rows
}

func (f *DistributionFlowImpl) toDistributionDTOs(ctx context.Context, rows []*models.CommissionDistribution) []dto.DistributionDTO {
	out := make([]dto.DistributionDTO, 0, len(rows))
	for _, d := range rows {
		out = append(out, ToDistributionDTO(d, f.ruleUUIDOf(ctx, d)))
	}
	return out
}

// ruleUUIDOf resolves the originating rule of a bonus row, best-effort.
func (f *DistributionFlowImpl) ruleUUIDOf(ctx context.Context, d *models.CommissionDistribution) *string {
	if d.RuleID == nil {
		return nil
	}
	rule, err := f.ruleRepo.ByID(ctx, *d.RuleID)
	if err != nil || rule == nil {
		return nil
	}
	s := rule.UUID.String()
	return &s
}

func (f *DistributionFlowImpl) getDistribution(ctx context.Context, rawUUID string) (*models.CommissionDistribution, error) {
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
