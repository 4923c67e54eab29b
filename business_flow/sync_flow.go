package businessflow

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/app/services"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	"github.com/inmoventa/commission-engine/utils"
)

// SyncFlow handles ingestion of closed-won deals from the CRM feed
type SyncFlow interface {
	SyncSale(ctx context.Context, req *dto.SyncSaleRequest, metadata *ClientMetadata) (*dto.SyncSaleResponse, error)
	SyncAllClosedWon(ctx context.Context, metadata *ClientMetadata) (*dto.SyncAllResponse, error)
	RefreshSalePartners(ctx context.Context, req *dto.RefreshSalePartnersRequest, metadata *ClientMetadata) (*dto.RefreshSalePartnersResponse, error)
}

// SyncFlowImpl implements SyncFlow
type SyncFlowImpl struct {
	crm         services.CRMClient
	saleRepo    repository.CommissionSaleRepository
	partnerRepo repository.ProductPartnerRepository
}

// NewSyncFlow creates a new sync flow instance
func NewSyncFlow(
	crm services.CRMClient,
	saleRepo repository.CommissionSaleRepository,
	partnerRepo repository.ProductPartnerRepository,
) SyncFlow {
	return &SyncFlowImpl{
		crm:         crm,
		saleRepo:    saleRepo,
		partnerRepo: partnerRepo,
	}
}

const closedWonStage = "closedwon"

// SyncSale pulls one deal from the feed and upserts it into the ledger.
// Re-syncing the same deal updates the existing row in place; it never
// duplicates and never touches calculation results.
func (f *SyncFlowImpl) SyncSale(ctx context.Context, req *dto.SyncSaleRequest, metadata *ClientMetadata) (*dto.SyncSaleResponse, error) {
	if strings.TrimSpace(req.DealID) == "" {
		return nil, ErrDealIDRequired
	}

	deal, err := f.crm.FetchDeal(ctx, req.DealID)
	if err != nil {
		return nil, NewBusinessError("CRM_ERROR", "Failed to fetch deal from CRM", err)
	}

	sale, created, err := f.upsertDeal(ctx, deal)
	if err != nil {
		return nil, err
	}

	// Partner refresh is best-effort: a feed hiccup here must not fail the
	// sync that already landed.
	if err := f.refreshPartners(ctx, sale); err != nil {
		log.Printf("partner refresh failed for deal %s: %v", sale.DealID, err)
	}

	msg := "Sale updated successfully"
	if created {
		msg = "Sale created successfully"
	}
	return &dto.SyncSaleResponse{
		Message: msg,
		Created: created,
		Sale:    ToSaleDTO(sale),
	}, nil
}

// SyncAllClosedWon pulls the whole closed-won batch and syncs each deal.
// The batch is fail-soft: one bad deal is reported, not fatal.
func (f *SyncFlowImpl) SyncAllClosedWon(ctx context.Context, metadata *ClientMetadata) (*dto.SyncAllResponse, error) {
	deals, err := f.crm.FetchClosedWonDeals(ctx, utils.MaxClosedWonBatch)
	if err != nil {
		return nil, NewBusinessError("CRM_ERROR", "Failed to fetch closed-won deals from CRM", err)
	}

	resp := &dto.SyncAllResponse{}
	for _, deal := range deals {
		resp.Processed++

		sale, created, err := f.upsertDeal(ctx, deal)
		if err != nil {
			resp.Errors++
			resp.ErrorMessages = append(resp.ErrorMessages, fmt.Sprintf("deal %s: %v", deal.ID, err))
			continue
		}
		if created {
			resp.Created++
		} else {
			resp.Updated++
		}

		if err := f.refreshPartners(ctx, sale); err != nil {
			log.Printf("partner refresh failed for deal %s: %v", sale.DealID, err)
		}
	}

	resp.Message = fmt.Sprintf("Sync finished: %d processed, %d created, %d updated, %d errors",
		resp.Processed, resp.Created, resp.Updated, resp.Errors)
	return resp, nil
}

// RefreshSalePartners re-pulls one sale's product partners from the feed and
// replaces the stored set wholesale.
func (f *SyncFlowImpl) RefreshSalePartners(ctx context.Context, req *dto.RefreshSalePartnersRequest, metadata *ClientMetadata) (*dto.RefreshSalePartnersResponse, error) {
	sale, err := getSale(ctx, f.saleRepo, req.DealID)
	if err != nil {
		return nil, err
	}

	if err := f.refreshPartners(ctx, sale); err != nil {
		return nil, NewBusinessError("CRM_ERROR", "Failed to refresh partners", err)
	}

	partners, err := f.partnerRepo.BySale(ctx, sale.ID)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list partners", err)
	}

	out := make([]dto.ProductPartnerDTO, 0, len(partners))
	for _, p := range partners {
		out = append(out, dto.ProductPartnerDTO{
			Name:                 p.Name,
			ParticipationPercent: p.ParticipationPercent,
		})
	}
	return &dto.RefreshSalePartnersResponse{
		Message:  "Partners refreshed successfully",
		Partners: out,
	}, nil
}

// upsertDeal validates one feed deal and writes it into the sale ledger.
func (f *SyncFlowImpl) upsertDeal(ctx context.Context, deal *services.RawDeal) (*models.CommissionSale, bool, error) {
	if strings.TrimSpace(deal.ID) == "" {
		return nil, false, ErrDealIDRequired
	}
	if deal.Stage != closedWonStage {
		return nil, false, ErrDealNotClosedWon
	}
	if deal.Amount <= 0 {
		return nil, false, ErrSaleAmountInvalid
	}
	if deal.ClosingDate.IsZero() {
		return nil, false, ErrSigningDateMissing
	}

	dev := models.NormalizeDevelopment(deal.Development)
	if dev.IsZero() {
		return nil, false, ErrDevelopmentRequired
	}

	clientName, product := splitDealName(deal.Name)
	if clientName == "" {
		clientName = deal.AccountName
	}

	if deal.TermMonths == nil {
		log.Printf("deal %s: no term field carried a value, storing sale without a term", deal.ID)
	}

	area := deal.AreaM2
	if area <= 0 {
		area = utils.DefaultSaleAreaM2
	}

	sale := &models.CommissionSale{
		DealID:          deal.ID,
		ClientName:      clientName,
		Product:         product,
		Development:     dev,
		OwnerID:         deal.OwnerID,
		OwnerName:       deal.OwnerName,
		TermMonths:      deal.TermMonths,
		AreaM2:          area,
		PricePerArea:    utils.Round2(deal.Amount / area),
		TotalValue:      deal.Amount,
		SigningDate:     deal.ClosingDate,
		ExternalAdvisor: deal.ExternalAdvisorName,
		RawPayload:      deal.Extra,
	}

	created, err := f.saleRepo.Upsert(ctx, sale)
	if err != nil {
		return nil, false, NewBusinessError("DB_ERROR", "Failed to save sale", err)
	}
	return sale, created, nil
}

func (f *SyncFlowImpl) refreshPartners(ctx context.Context, sale *models.CommissionSale) error {
	feed, err := f.crm.FetchDealPartners(ctx, sale.DealID)
	if err != nil {
		return err
	}

	partners := make([]*models.ProductPartner, 0, len(feed))
	for _, p := range feed {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		partners = append(partners, &models.ProductPartner{
			SaleID:               sale.ID,
			Name:                 name,
			ParticipationPercent: p.ParticipationPercent,
		})
	}
	return f.partnerRepo.ReplaceForSale(ctx, sale.ID, partners)
}

// splitDealName splits the upstream composite deal name into client and
// product on the first separator. Names without a separator are all client.
func splitDealName(name string) (client string, product *string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	idx := strings.Index(name, utils.DealNameSeparator)
	if idx < 0 {
		return name, nil
	}
	client = strings.TrimSpace(name[:idx])
	rest := strings.TrimSpace(name[idx+len(utils.DealNameSeparator):])
	if rest == "" {
		return client, nil
	}
	return client, &rest
}
