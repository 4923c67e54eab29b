package businessflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	"github.com/inmoventa/commission-engine/utils"
)

// RuleFlow handles tiered bonus rule management and evaluation
type RuleFlow interface {
	CreateRule(ctx context.Context, req *dto.CreateRuleRequest, metadata *ClientMetadata) (*dto.CreateRuleResponse, error)
	UpdateRule(ctx context.Context, req *dto.UpdateRuleRequest, metadata *ClientMetadata) (*dto.UpdateRuleResponse, error)
	DeleteRule(ctx context.Context, req *dto.DeleteRuleRequest, metadata *ClientMetadata) (*dto.DeleteRuleResponse, error)
	ListRules(ctx context.Context, req *dto.ListRulesRequest, metadata *ClientMetadata) (*dto.ListRulesResponse, error)
	GetApplicableRules(ctx context.Context, req *dto.GetApplicableRulesRequest, metadata *ClientMetadata) (*dto.GetApplicableRulesResponse, error)
	GetRuleUnitCounts(ctx context.Context, req *dto.GetRuleUnitCountsRequest, metadata *ClientMetadata) (*dto.GetRuleUnitCountsResponse, error)
}

// RuleFlowImpl implements RuleFlow
type RuleFlowImpl struct {
	ruleRepo repository.CommissionRuleRepository
	saleRepo repository.CommissionSaleRepository
}

// NewRuleFlow creates a new rule flow instance
func NewRuleFlow(ruleRepo repository.CommissionRuleRepository, saleRepo repository.CommissionSaleRepository) RuleFlow {
	return &RuleFlowImpl{ruleRepo: ruleRepo, saleRepo: saleRepo}
}

// CreateRule creates a tiered bonus rule for a development
func (f *RuleFlowImpl) CreateRule(ctx context.Context, req *dto.CreateRuleRequest, metadata *ClientMetadata) (*dto.CreateRuleResponse, error) {
	dev := models.NormalizeDevelopment(req.Development)
	if dev.IsZero() {
		return nil, ErrDevelopmentRequired
	}
	if err := validatePeriod(req.PeriodType, req.PeriodMonth); err != nil {
		return nil, err
	}
	if !isValidOperator(req.Operator) {
		return nil, ErrInvalidOperator
	}
	if req.UnitThreshold < 1 {
		return nil, ErrThresholdRequired
	}
	if req.CommissionPercent <= 0 || req.CommissionPercent > 100 {
		return nil, ErrPercentOutOfRange
	}

	rule := &models.CommissionRule{
		Development:       dev,
		PeriodType:        req.PeriodType,
		PeriodYear:        req.PeriodYear,
		PeriodMonth:       req.PeriodMonth,
		Operator:          req.Operator,
		UnitThreshold:     req.UnitThreshold,
		CommissionPercent: req.CommissionPercent,
		VATPercent:        req.VATPercent,
		Active:            true,
		Priority:          req.Priority,
	}
	if err := f.ruleRepo.Save(ctx, rule); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to save rule", err)
	}

	return &dto.CreateRuleResponse{
		Message: "Rule created successfully",
		Rule:    ToRuleDTO(rule),
	}, nil
}

// UpdateRule applies the non-nil fields of the request to an existing rule
func (f *RuleFlowImpl) UpdateRule(ctx context.Context, req *dto.UpdateRuleRequest, metadata *ClientMetadata) (*dto.UpdateRuleResponse, error) {
	rule, err := f.getRule(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	if req.PeriodType == nil && req.PeriodYear == nil && req.PeriodMonth == nil &&
		req.Operator == nil && req.UnitThreshold == nil && req.CommissionPercent == nil &&
		req.VATPercent == nil && req.Active == nil && req.Priority == nil {
		return nil, ErrRuleUpdateRequired
	}

	if req.PeriodType != nil {
		rule.PeriodType = *req.PeriodType
	}
	if req.PeriodYear != nil {
		rule.PeriodYear = *req.PeriodYear
	}
	if req.PeriodMonth != nil {
		rule.PeriodMonth = req.PeriodMonth
	}
	if err := validatePeriod(rule.PeriodType, rule.PeriodMonth); err != nil {
		return nil, err
	}

	if req.Operator != nil {
		if !isValidOperator(*req.Operator) {
			return nil, ErrInvalidOperator
		}
		rule.Operator = *req.Operator
	}
	if req.UnitThreshold != nil {
		if *req.UnitThreshold < 1 {
			return nil, ErrThresholdRequired
		}
		rule.UnitThreshold = *req.UnitThreshold
	}
	if req.CommissionPercent != nil {
		if *req.CommissionPercent <= 0 || *req.CommissionPercent > 100 {
			return nil, ErrPercentOutOfRange
		}
		rule.CommissionPercent = *req.CommissionPercent
	}
	if req.VATPercent != nil {
		if *req.VATPercent < 0 || *req.VATPercent > 100 {
			return nil, ErrPercentOutOfRange
		}
		rule.VATPercent = *req.VATPercent
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}

	if err := f.ruleRepo.Update(ctx, rule); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to update rule", err)
	}

	return &dto.UpdateRuleResponse{
		Message: "Rule updated successfully",
		Rule:    ToRuleDTO(rule),
	}, nil
}

// DeleteRule removes a rule. Already-calculated sales keep their bonus rows;
// deletion only affects future calculations.
func (f *RuleFlowImpl) DeleteRule(ctx context.Context, req *dto.DeleteRuleRequest, metadata *ClientMetadata) (*dto.DeleteRuleResponse, error) {
	rule, err := f.getRule(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	if err := f.ruleRepo.Delete(ctx, rule.ID); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to delete rule", err)
	}
	return &dto.DeleteRuleResponse{Message: "Rule deleted successfully"}, nil
}

// ListRules returns the rules of one development
func (f *RuleFlowImpl) ListRules(ctx context.Context, req *dto.ListRulesRequest, metadata *ClientMetadata) (*dto.ListRulesResponse, error) {
	dev := models.NormalizeDevelopment(req.Development)
	if dev.IsZero() {
		return nil, ErrDevelopmentRequired
	}

	filter := models.CommissionRuleFilter{Development: &dev}
	if req.ActiveOnly {
		active := true
		filter.Active = &active
	}

	rules, err := f.ruleRepo.ByFilter(ctx, filter, "priority DESC, id", 0, 0)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list rules", err)
	}

	out := make([]dto.RuleDTO, 0, len(rules))
	for _, r := range rules {
		out = append(out, ToRuleDTO(r))
	}
	return &dto.ListRulesResponse{Rules: out, Total: int64(len(out))}, nil
}

// GetApplicableRules evaluates every active rule of a sale's development
// against that sale's signing date. All passing rules are returned: rules
// stack, they are never mutually exclusive.
func (f *RuleFlowImpl) GetApplicableRules(ctx context.Context, req *dto.GetApplicableRulesRequest, metadata *ClientMetadata) (*dto.GetApplicableRulesResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}

	applicable, counts, err := applicableRules(ctx, f.ruleRepo, f.saleRepo, sale)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ApplicableRuleDTO, 0, len(applicable))
	for i, r := range applicable {
		out = append(out, dto.ApplicableRuleDTO{
			Rule:      ToRuleDTO(r),
			UnitCount: counts[i],
		})
	}
	return &dto.GetApplicableRulesResponse{
		DealID:      sale.DealID,
		Development: sale.Development.String(),
		Rules:       out,
	}, nil
}

// GetRuleUnitCounts exposes the raw unit count of every active rule whose
// period contains the reference date, whether or not the threshold passes.
// The reference date selects the period window; counting matches the
// applicability check (all sales already signed in the window, capped at now).
func (f *RuleFlowImpl) GetRuleUnitCounts(ctx context.Context, req *dto.GetRuleUnitCountsRequest, metadata *ClientMetadata) (*dto.GetRuleUnitCountsResponse, error) {
	dev := models.NormalizeDevelopment(req.Development)
	if dev.IsZero() {
		return nil, ErrDevelopmentRequired
	}
	ref, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidReferenceDate
	}
	ref = ref.UTC()

	rules, err := f.ruleRepo.ListActiveByDevelopment(ctx, dev)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list rules", err)
	}

	windowCounts := make(map[[2]int64]int64)
	out := make([]dto.RuleUnitCountDTO, 0, len(rules))
	now := utils.UTCNow()
	for _, rule := range rules {
		start, end, ok := rule.PeriodWindow(ref)
		if !ok {
			continue
		}

		wk := [2]int64{start.Unix(), end.Unix()}
		count, cached := windowCounts[wk]
		if !cached {
			count, err = f.saleRepo.CountSignedInWindow(ctx, dev, start, end, now)
			if err != nil {
				return nil, NewBusinessError("DB_ERROR", "Failed to count units in period", err)
			}
			windowCounts[wk] = count
		}

		out = append(out, dto.RuleUnitCountDTO{
			Rule:      ToRuleDTO(rule),
			UnitCount: count,
			Satisfied: rule.ThresholdSatisfied(count),
		})
	}

	return &dto.GetRuleUnitCountsResponse{
		Development: dev.String(),
		Date:        ref.Format("2006-01-02"),
		Counts:      out,
	}, nil
}

// applicableRules returns the active rules whose period contains the sale's
// signing date and whose threshold the period unit count satisfies. The
// period window derives from the signing date; the unit count covers every
// sale already signed inside it, never future-dated sales, so a threshold
// can be reached by sales signed after the evaluated one once the period fills.
func applicableRules(ctx context.Context, ruleRepo repository.CommissionRuleRepository, saleRepo repository.CommissionSaleRepository, sale *models.CommissionSale) ([]*models.CommissionRule, []int64, error) {
	rules, err := ruleRepo.ListActiveByDevelopment(ctx, sale.Development)
	if err != nil {
		return nil, nil, NewBusinessError("DB_ERROR", "Failed to list rules", err)
	}

	var applicable []*models.CommissionRule
	var counts []int64
	windowCounts := make(map[[2]int64]int64)
	now := utils.UTCNow()

	for _, rule := range rules {
		start, end, ok := rule.PeriodWindow(sale.SigningDate)
		if !ok {
			continue
		}

		wk := [2]int64{start.Unix(), end.Unix()}
		count, cached := windowCounts[wk]
		if !cached {
			count, err = saleRepo.CountSignedInWindow(ctx, sale.Development, start, end, now)
			if err != nil {
				return nil, nil, NewBusinessError("DB_ERROR", "Failed to count units in period", err)
			}
			windowCounts[wk] = count
		}

		if rule.ThresholdSatisfied(count) {
			applicable = append(applicable, rule)
			counts = append(counts, count)
		}
	}
	return applicable, counts, nil
}

func (f *RuleFlowImpl) getRule(ctx context.Context, rawUUID string) (*models.CommissionRule, error) {
	id, err := uuid.Parse(rawUUID)
	if err != nil {
		return nil, ErrRuleNotFound
	}
	rule, err := f.ruleRepo.ByUUID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch rule", err)
	}
	if rule == nil {
		return nil, ErrRuleNotFound
	}
	return rule, nil
}

func validatePeriod(periodType string, periodMonth *int) error {
	switch periodType {
	case models.PeriodTypeYear, models.PeriodTypeQuarter:
		return nil
	case models.PeriodTypeMonth:
		if periodMonth == nil || *periodMonth < 1 || *periodMonth > 12 {
			return ErrPeriodMonthRequired
		}
		return nil
	default:
		return ErrInvalidPeriodType
	}
}

func isValidOperator(op string) bool {
	switch op {
	case models.RuleOperatorEq, models.RuleOperatorGte, models.RuleOperatorLte:
		return true
	}
	return false
}
