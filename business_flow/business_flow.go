// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"time"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/config"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for audit attribution
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	Operator   string            `json:"operator,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// SetOperator sets the authenticated operator performing the request
func (cm *ClientMetadata) SetOperator(operator string) {
	cm.Operator = operator
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// actorOf resolves the audit actor from metadata, defaulting to "system" for
// unauthenticated paths like scheduled syncs.
func actorOf(metadata *ClientMetadata) string {
	if metadata != nil && metadata.Operator != "" {
		return metadata.Operator
	}
	return "system"
}

func redisKey(c config.CacheConfig, key string) string {
	return c.RedisPrefix + key
}

// getSale fetches a sale by its upstream deal ID, translating absence into
// the domain error.
func getSale(ctx context.Context, saleRepo repository.CommissionSaleRepository, dealID string) (*models.CommissionSale, error) {
	if dealID == "" {
		return nil, ErrDealIDRequired
	}
	sale, err := saleRepo.ByDealID(ctx, dealID)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to fetch sale", err)
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	return sale, nil
}

// ToSaleDTO converts a sale model for API responses
func ToSaleDTO(sale *models.CommissionSale) dto.SaleDTO {
	return dto.SaleDTO{
		UUID:                sale.UUID.String(),
		DealID:              sale.DealID,
		ClientName:          sale.ClientName,
		Product:             sale.Product,
		Development:         sale.Development.String(),
		OwnerID:             sale.OwnerID,
		OwnerName:           sale.OwnerName,
		TermMonths:          sale.TermMonths,
		AreaM2:              sale.AreaM2,
		PricePerArea:        sale.PricePerArea,
		TotalValue:          sale.TotalValue,
		SigningDate:         sale.SigningDate.Format(time.RFC3339),
		ExternalAdvisor:     sale.ExternalAdvisor,
		Calculated:          sale.Calculated,
		TotalCommission:     sale.TotalCommission,
		SalePhaseAmount:     sale.SalePhaseAmount,
		PostSalePhaseAmount: sale.PostSalePhaseAmount,
		CreatedAt:           sale.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           sale.UpdatedAt.Format(time.RFC3339),
	}
}

// ToConfigDTO converts a configuration model for API responses
func ToConfigDTO(c *models.CommissionConfig) dto.ConfigDTO {
	return dto.ConfigDTO{
		UUID:                   c.UUID.String(),
		Development:            c.Development.String(),
		SalePercent:            c.SalePercent,
		PostSalePercent:        c.PostSalePercent,
		SaleManagerPercent:     c.SaleManagerPercent,
		DealOwnerPercent:       c.DealOwnerPercent,
		ExternalAdvisorPercent: c.ExternalAdvisorPercent,
		PoolEnabled:            c.PoolEnabled,
		PoolPercent:            c.PoolPercent,
		CustomerServiceEnabled: c.CustomerServiceEnabled,
		CustomerServicePercent: c.CustomerServicePercent,
		DeliveriesEnabled:      c.DeliveriesEnabled,
		DeliveriesPercent:      c.DeliveriesPercent,
		BondsEnabled:           c.BondsEnabled,
		BondsPercent:           c.BondsPercent,
		UpdatedBy:              c.UpdatedBy,
		UpdatedAt:              c.UpdatedAt.Format(time.RFC3339),
	}
}

// ToGlobalConfigDTO converts a global config entry for API responses
func ToGlobalConfigDTO(g *models.GlobalConfig) dto.GlobalConfigDTO {
	return dto.GlobalConfigDTO{
		Key:       g.Key,
		Percent:   g.Percent,
		UpdatedBy: g.UpdatedBy,
		UpdatedAt: g.UpdatedAt.Format(time.RFC3339),
	}
}

// ToRuleDTO converts a rule model for API responses
func ToRuleDTO(r *models.CommissionRule) dto.RuleDTO {
	return dto.RuleDTO{
		UUID:              r.UUID.String(),
		Development:       r.Development.String(),
		PeriodType:        r.PeriodType,
		PeriodYear:        r.PeriodYear,
		PeriodMonth:       r.PeriodMonth,
		Operator:          r.Operator,
		UnitThreshold:     r.UnitThreshold,
		CommissionPercent: r.CommissionPercent,
		VATPercent:        r.VATPercent,
		Active:            r.Active,
		Priority:          r.Priority,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         r.UpdatedAt.Format(time.RFC3339),
	}
}

// ToDistributionDTO converts a distribution model for API responses. The
// rule UUID, when present, is resolved by the caller.
func ToDistributionDTO(d *models.CommissionDistribution, ruleUUID *string) dto.DistributionDTO {
	return dto.DistributionDTO{
		UUID:          d.UUID.String(),
		SaleID:        d.SaleID,
		RoleType:      d.RoleType,
		Person:        d.Person,
		Phase:         d.Phase,
		Percent:       d.Percent,
		Amount:        d.Amount,
		PaymentStatus: d.PaymentStatus,
		CashPayment:   d.CashPayment,
		RuleUUID:      ruleUUID,
		CreatedAt:     d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     d.UpdatedAt.Format(time.RFC3339),
	}
}

// ToAdjustmentDTO converts an adjustment ledger entry for API responses
func ToAdjustmentDTO(a *models.CommissionAdjustment) dto.AdjustmentDTO {
	return dto.AdjustmentDTO{
		UUID:           a.UUID.String(),
		DistributionID: a.DistributionID,
		SaleID:         a.SaleID,
		OldValue:       a.OldValue,
		NewValue:       a.NewValue,
		OldRole:        a.OldRole,
		NewRole:        a.NewRole,
		AmountImpact:   a.AmountImpact,
		Actor:          a.Actor,
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

// ToPartnerCommissionDTO converts a partner commission model for API responses
func ToPartnerCommissionDTO(p *models.PartnerCommission) dto.PartnerCommissionDTO {
	out := dto.PartnerCommissionDTO{
		UUID:                 p.UUID.String(),
		SaleID:               p.SaleID,
		PartnerName:          p.PartnerName,
		ParticipationPercent: p.ParticipationPercent,
		TotalAmount:          p.TotalAmount,
		SalePhaseAmount:      p.SalePhaseAmount,
		PostSalePhaseAmount:  p.PostSalePhaseAmount,
		SaleStatus:           p.SaleStatus,
		SaleCash:             p.SaleCash,
		PostSaleStatus:       p.PostSaleStatus,
		PostSaleCash:         p.PostSaleCash,
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            p.UpdatedAt.Format(time.RFC3339),
	}
	if p.SaleCollectedAt != nil {
		s := p.SaleCollectedAt.Format(time.RFC3339)
		out.SaleCollectedAt = &s
	}
	if p.PostSaleCollectedAt != nil {
		s := p.PostSaleCollectedAt.Format(time.RFC3339)
		out.PostSaleCollectedAt = &s
	}
	return out
}

// ToPartnerInvoiceDTO converts a partner invoice model for API responses
func ToPartnerInvoiceDTO(i *models.PartnerInvoice) dto.PartnerInvoiceDTO {
	return dto.PartnerInvoiceDTO{
		UUID:                i.UUID.String(),
		PartnerCommissionID: i.PartnerCommissionID,
		Phase:               i.Phase,
		InvoiceNumber:       i.InvoiceNumber,
		Amount:              i.Amount,
		VATPercent:          i.VATPercent,
		Total:               i.Total,
		IssuedAt:            i.IssuedAt.Format(time.RFC3339),
		CreatedBy:           i.CreatedBy,
	}
}
