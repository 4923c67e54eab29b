// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/inmoventa/commission-engine/app/dto"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/utils"
)

// ReportHandlerInterface defines the contract for report handlers
type ReportHandlerInterface interface {
	ListSales(c fiber.Ctx) error
	ExportSales(c fiber.Ctx) error
	Summary(c fiber.Ctx) error
	UpsertBillingTarget(c fiber.Ctx) error
	UpsertSalesTarget(c fiber.Ctx) error
	ListBillingTargets(c fiber.Ctx) error
	ListSalesTargets(c fiber.Ctx) error
}

// ReportHandler handles sale listing, export and target HTTP requests
type ReportHandler struct {
	flow      businessflow.ReportFlow
	validator *validator.Validate
}

func (h *ReportHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ReportHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewReportHandler creates a new report handler
func NewReportHandler(flow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// ListSales
// @Summary List synced sales
// @Description List synced sales with optional development, calculation and period filters
// @Tags Reports
// @Accept json
// @Produce json
// @Param development query string false "Development name or alias"
// @Param calculated query boolean false "Filter by calculation state"
// @Param signed_year query integer false "Signing year"
// @Param signed_month query integer false "Signing month (1-12)"
// @Param page query integer false "Page number (default: 1)"
// @Param page_size query integer false "Items per page (default: 50, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListSalesResponse} "Sales retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales [get]
func (h *ReportHandler) ListSales(c fiber.Ctx) error {
	req := dto.ListSalesRequest{
		Development: queryString(c, "development"),
		Calculated:  queryBool(c, "calculated"),
		SignedYear:  queryInt(c, "signed_year"),
		SignedMonth: queryInt(c, "signed_month"),
	}
	if v := queryInt(c, "page"); v != nil {
		req.Page = *v
	}
	if v := queryInt(c, "page_size"); v != nil {
		req.PageSize = *v
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListSales(h.createRequestContext(c, "/api/v1/sales"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidPage(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Page must be at least 1", "INVALID_PAGE", nil)
		}
		if businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Page size must be between 1 and 100", "INVALID_PAGE_SIZE", nil)
		}
		if businessflow.IsDevelopmentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown development", "DEVELOPMENT_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list sales", "LIST_SALES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sales retrieved successfully", result)
}

// ExportSales
// @Summary Export sales to XLSX
// @Description Export the filtered sales as a downloadable spreadsheet
// @Tags Reports
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param development query string false "Development name or alias"
// @Param signed_year query integer false "Signing year"
// @Param signed_month query integer false "Signing month (1-12)"
// @Success 200 {file} binary "XLSX file"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales/export [get]
func (h *ReportHandler) ExportSales(c fiber.Ctx) error {
	req := dto.ExportSalesRequest{
		Development: queryString(c, "development"),
		SignedYear:  queryInt(c, "signed_year"),
		SignedMonth: queryInt(c, "signed_month"),
	}

	metadata := h.clientMetadata(c)
	filename, content, err := h.flow.ExportSales(h.createRequestContext(c, "/api/v1/sales/export"), &req, metadata)
	if err != nil {
		if businessflow.IsDevelopmentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown development", "DEVELOPMENT_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export sales", "EXPORT_SALES_FAILED", nil)
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

// Summary
// @Summary Per-development commission summary
// @Description Aggregate sale counts, total value and total commission per development
// @Tags Reports
// @Accept json
// @Produce json
// @Param signed_year query integer false "Signing year"
// @Success 200 {object} dto.APIResponse{data=dto.CommissionSummaryResponse} "Summary retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/reports/summary [get]
func (h *ReportHandler) Summary(c fiber.Ctx) error {
	req := dto.CommissionSummaryRequest{SignedYear: queryInt(c, "signed_year")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.CommissionSummary(h.createRequestContext(c, "/api/v1/reports/summary"), &req, metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to build summary", "SUMMARY_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Summary retrieved successfully", result)
}

// UpsertBillingTarget
// @Summary Set a billing target
// @Description Set the billing target of one month. Re-setting the same month overwrites it.
// @Tags Targets
// @Accept json
// @Produce json
// @Param request body dto.UpsertTargetRequest true "Target payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpsertTargetResponse} "Billing target saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid period"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/targets/billing [put]
func (h *ReportHandler) UpsertBillingTarget(c fiber.Ctx) error {
	var req dto.UpsertTargetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.UpsertBillingTarget(h.createRequestContext(c, "/api/v1/targets/billing"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidTargetPeriod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Target period is invalid", "INVALID_TARGET_PERIOD", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save billing target", "UPSERT_BILLING_TARGET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// UpsertSalesTarget
// @Summary Set a sales target
// @Description Set the sales target of one month. Re-setting the same month overwrites it.
// @Tags Targets
// @Accept json
// @Produce json
// @Param request body dto.UpsertTargetRequest true "Target payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpsertTargetResponse} "Sales target saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid period"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/targets/sales [put]
func (h *ReportHandler) UpsertSalesTarget(c fiber.Ctx) error {
	var req dto.UpsertTargetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.UpsertSalesTarget(h.createRequestContext(c, "/api/v1/targets/sales"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidTargetPeriod(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Target period is invalid", "INVALID_TARGET_PERIOD", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save sales target", "UPSERT_SALES_TARGET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListBillingTargets
// @Summary List billing targets
// @Description List one year's billing targets ordered by month
// @Tags Targets
// @Accept json
// @Produce json
// @Param year path integer true "Year"
// @Success 200 {object} dto.APIResponse{data=dto.ListTargetsResponse} "Billing targets retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/targets/billing/{year} [get]
func (h *ReportHandler) ListBillingTargets(c fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid year", "INVALID_YEAR", nil)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListBillingTargets(h.createRequestContext(c, "/api/v1/targets/billing/:year"), &dto.ListTargetsRequest{Year: year}, metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list billing targets", "LIST_BILLING_TARGETS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Billing targets retrieved successfully", result)
}

// ListSalesTargets
// @Summary List sales targets
// @Description List one year's sales targets ordered by month
// @Tags Targets
// @Accept json
// @Produce json
// @Param year path integer true "Year"
// @Success 200 {object} dto.APIResponse{data=dto.ListTargetsResponse} "Sales targets retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/targets/sales/{year} [get]
func (h *ReportHandler) ListSalesTargets(c fiber.Ctx) error {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid year", "INVALID_YEAR", nil)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListSalesTargets(h.createRequestContext(c, "/api/v1/targets/sales/:year"), &dto.ListTargetsRequest{Year: year}, metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list sales targets", "LIST_SALES_TARGETS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Sales targets retrieved successfully", result)
}

func queryString(c fiber.Ctx, name string) *string {
	if v := c.Query(name); v != "" {
		return &v
	}
	return nil
}

func queryInt(c fiber.Ctx, name string) *int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return &n
		}
	}
	return nil
}

func queryBool(c fiber.Ctx, name string) *bool {
	switch c.Query(name) {
	case "true", "1":
		b := true
		return &b
	case "false", "0":
		b := false
		return &b
	}
	return nil
}

func (h *ReportHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *ReportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
