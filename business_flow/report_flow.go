package businessflow

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/inmoventa/commission-engine/app/dto"
	"github.com/inmoventa/commission-engine/models"
	"github.com/inmoventa/commission-engine/repository"
	"github.com/inmoventa/commission-engine/utils"
)

// ReportFlow handles sale listings, exports and planning targets
type ReportFlow interface {
	ListSales(ctx context.Context, req *dto.ListSalesRequest, metadata *ClientMetadata) (*dto.ListSalesResponse, error)
	ExportSales(ctx context.Context, req *dto.ExportSalesRequest, metadata *ClientMetadata) (string, []byte, error)
	CommissionSummary(ctx context.Context, req *dto.CommissionSummaryRequest, metadata *ClientMetadata) (*dto.CommissionSummaryResponse, error)
	UpsertBillingTarget(ctx context.Context, req *dto.UpsertTargetRequest, metadata *ClientMetadata) (*dto.UpsertTargetResponse, error)
	UpsertSalesTarget(ctx context.Context, req *dto.UpsertTargetRequest, metadata *ClientMetadata) (*dto.UpsertTargetResponse, error)
	ListBillingTargets(ctx context.Context, req *dto.ListTargetsRequest, metadata *ClientMetadata) (*dto.ListTargetsResponse, error)
	ListSalesTargets(ctx context.Context, req *dto.ListTargetsRequest, metadata *ClientMetadata) (*dto.ListTargetsResponse, error)
}

// ReportFlowImpl implements ReportFlow
type ReportFlowImpl struct {
	saleRepo          repository.CommissionSaleRepository
	billingTargetRepo repository.BillingTargetRepository
	salesTargetRepo   repository.SalesTargetRepository
}

// NewReportFlow creates a new report flow instance
func NewReportFlow(
	saleRepo repository.CommissionSaleRepository,
	billingTargetRepo repository.BillingTargetRepository,
	salesTargetRepo repository.SalesTargetRepository,
) ReportFlow {
	return &ReportFlowImpl{
		saleRepo:          saleRepo,
		billingTargetRepo: billingTargetRepo,
		salesTargetRepo:   salesTargetRepo,
	}
}

const defaultPageSize = 50

// ListSales returns a filtered, paginated page of synced sales
func (f *ReportFlowImpl) ListSales(ctx context.Context, req *dto.ListSalesRequest, metadata *ClientMetadata) (*dto.ListSalesResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	if page < 1 {
		return nil, ErrInvalidPage
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = defaultPageSize
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, ErrInvalidPageSize
	}

	filter, err := saleFilterOf(req.Development, req.Calculated, req.SignedYear, req.SignedMonth)
	if err != nil {
		return nil, err
	}

	total, err := f.saleRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to count sales", err)
	}

	sales, err := f.saleRepo.ByFilter(ctx, filter, "signing_date DESC, id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list sales", err)
	}

	out := make([]dto.SaleDTO, 0, len(sales))
	for _, s := range sales {
		out = append(out, ToSaleDTO(s))
	}
	return &dto.ListSalesResponse{
		Sales:    out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// ExportSales writes the filtered sales into an XLSX workbook and returns the
// suggested filename and file content.
func (f *ReportFlowImpl) ExportSales(ctx context.Context, req *dto.ExportSalesRequest, metadata *ClientMetadata) (string, []byte, error) {
	filter, err := saleFilterOf(req.Development, nil, req.SignedYear, req.SignedMonth)
	if err != nil {
		return "", nil, err
	}

	sales, err := f.saleRepo.ByFilter(ctx, filter, "signing_date, id", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("DB_ERROR", "Failed to list sales", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	sheet := "Sales"
	xl.SetSheetName(xl.GetSheetName(0), sheet)

	header := []string{
		"deal_id", "client", "product", "development", "owner",
		"term_months", "area_m2", "price_per_area", "total_value",
		"signing_date", "external_advisor", "calculated",
		"total_commission", "sale_phase", "post_sale_phase",
	}
	_ = xl.SetSheetRow(sheet, "A1", &header)

	for ri, s := range sales {
		product := ""
		if s.Product != nil {
			product = *s.Product
		}
		term := ""
		if s.TermMonths != nil {
			term = *s.TermMonths
		}
		record := []any{
			s.DealID,
			s.ClientName,
			product,
			s.Development.String(),
			s.OwnerName,
			term,
			s.AreaM2,
			s.PricePerArea,
			s.TotalValue,
			s.SigningDate.UTC().Format("2006-01-02"),
			s.ExternalAdvisor,
			strconv.FormatBool(s.Calculated),
			s.TotalCommission,
			s.SalePhaseAmount,
			s.PostSalePhaseAmount,
		}
		cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
		_ = xl.SetSheetRow(sheet, cellRef, &record)
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXCEL_WRITE_ERROR", "Failed to write Excel file", err)
	}

	filename := fmt.Sprintf("commission_sales_%s.xlsx", utils.UTCNow().Format("2006-01-02"))
	return filename, buf.Bytes(), nil
}

// CommissionSummary aggregates sales and commissions per development
func (f *ReportFlowImpl) CommissionSummary(ctx context.Context, req *dto.CommissionSummaryRequest, metadata *ClientMetadata) (*dto.CommissionSummaryResponse, error) {
	filter := models.CommissionSaleFilter{SignedYear: req.SignedYear}

	sales, err := f.saleRepo.ByFilter(ctx, filter, "", 0, 0)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list sales", err)
	}

	byDev := make(map[string]*dto.CommissionSummaryRow)
	for _, s := range sales {
		dev := s.Development.String()
		row, ok := byDev[dev]
		if !ok {
			row = &dto.CommissionSummaryRow{Development: dev}
			byDev[dev] = row
		}
		row.SaleCount++
		row.TotalValue = utils.Round2(row.TotalValue + s.TotalValue)
		row.TotalCommission = utils.Round2(row.TotalCommission + s.TotalCommission)
	}

	rows := make([]dto.CommissionSummaryRow, 0, len(byDev))
	for _, row := range byDev {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Development < rows[j].Development })

	return &dto.CommissionSummaryResponse{Rows: rows}, nil
}

// UpsertBillingTarget sets the billing target of one (year, month)
func (f *ReportFlowImpl) UpsertBillingTarget(ctx context.Context, req *dto.UpsertTargetRequest, metadata *ClientMetadata) (*dto.UpsertTargetResponse, error) {
	if err := validateTargetPeriod(req.Year, req.Month); err != nil {
		return nil, err
	}

	target := &models.BillingTarget{
		Year:      req.Year,
		Month:     req.Month,
		Amount:    req.Amount,
		UpdatedBy: actorOf(metadata),
	}
	if err := f.billingTargetRepo.UpsertByPeriod(ctx, target); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to save billing target", err)
	}

	return &dto.UpsertTargetResponse{
		Message: "Billing target saved successfully",
		Target: dto.TargetDTO{
			Year:      target.Year,
			Month:     target.Month,
			Amount:    target.Amount,
			UpdatedBy: target.UpdatedBy,
			UpdatedAt: target.UpdatedAt.Format(time.RFC3339),
		},
	}, nil
}

// UpsertSalesTarget sets the sales target of one (year, month)
func (f *ReportFlowImpl) UpsertSalesTarget(ctx context.Context, req *dto.UpsertTargetRequest, metadata *ClientMetadata) (*dto.UpsertTargetResponse, error) {
	if err := validateTargetPeriod(req.Year, req.Month); err != nil {
		return nil, err
	}

	target := &models.SalesTarget{
		Year:      req.Year,
		Month:     req.Month,
		Amount:    req.Amount,
		UpdatedBy: actorOf(metadata),
	}
	if err := f.salesTargetRepo.UpsertByPeriod(ctx, target); err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to save sales target", err)
	}

	return &dto.UpsertTargetResponse{
		Message: "Sales target saved successfully",
		Target: dto.TargetDTO{
			Year:      target.Year,
			Month:     target.Month,
			Amount:    target.Amount,
			UpdatedBy: target.UpdatedBy,
			UpdatedAt: target.UpdatedAt.Format(time.RFC3339),
		},
	}, nil
}

// ListBillingTargets returns one year's billing targets ordered by month
func (f *ReportFlowImpl) ListBillingTargets(ctx context.Context, req *dto.ListTargetsRequest, metadata *ClientMetadata) (*dto.ListTargetsResponse, error) {
	targets, err := f.billingTargetRepo.ListByYear(ctx, req.Year)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list billing targets", err)
	}

	out := make([]dto.TargetDTO, 0, len(targets))
	for _, t := range targets {
		out = append(out, dto.TargetDTO{
			Year:      t.Year,
			Month:     t.Month,
			Amount:    t.Amount,
			UpdatedBy: t.UpdatedBy,
			UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		})
	}
	return &dto.ListTargetsResponse{Targets: out}, nil
}

// ListSalesTargets returns one year's sales targets ordered by month
func (f *ReportFlowImpl) ListSalesTargets(ctx context.Context, req *dto.ListTargetsRequest, metadata *ClientMetadata) (*dto.ListTargetsResponse, error) {
	targets, err := f.salesTargetRepo.ListByYear(ctx, req.Year)
	if err != nil {
		return nil, NewBusinessError("DB_ERROR", "Failed to list sales targets", err)
	}

	out := make([]dto.TargetDTO, 0, len(targets))
	for _, t := range targets {
		out = append(out, dto.TargetDTO{
			Year:      t.Year,
			Month:     t.Month,
			Amount:    t.Amount,
			UpdatedBy: t.UpdatedBy,
			UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
		})
	}
	return &dto.ListTargetsResponse{Targets: out}, nil
}

func saleFilterOf(development *string, calculated *bool, signedYear, signedMonth *int) (models.CommissionSaleFilter, error) {
	filter := models.CommissionSaleFilter{
		Calculated:  calculated,
		SignedYear:  signedYear,
		SignedMonth: signedMonth,
	}
	if development != nil && *development != "" {
		dev := models.NormalizeDevelopment(*development)
		if dev.IsZero() {
			return filter, ErrDevelopmentRequired
		}
		filter.Development = &dev
	}
	return filter, nil
}

func validateTargetPeriod(year, month int) error {
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return ErrInvalidTargetPeriod
	}
	return nil
}
