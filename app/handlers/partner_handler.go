// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/inmoventa/commission-engine/app/dto"
	businessflow "github.com/inmoventa/commission-engine/business_flow"
	"github.com/inmoventa/commission-engine/utils"
)

// PartnerHandlerInterface defines the contract for partner commission handlers
type PartnerHandlerInterface interface {
	Calculate(c fiber.Ctx) error
	List(c fiber.Ctx) error
	UpdatePhase(c fiber.Ctx) error
	CreateInvoice(c fiber.Ctx) error
	Hide(c fiber.Ctx) error
	Restore(c fiber.Ctx) error
	ListHidden(c fiber.Ctx) error
}

// PartnerHandler handles partner commission HTTP requests
type PartnerHandler struct {
	flow      businessflow.PartnerFlow
	validator *validator.Validate
}

func (h *PartnerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PartnerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(flow businessflow.PartnerFlow) *PartnerHandler {
	return &PartnerHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Calculate Partner Commissions
// @Summary Calculate a sale's partner split
// @Description Split a calculated sale's commission among its product partners by participation percent. Recalculating preserves each surviving partner's collection state.
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body dto.CalculatePartnerCommissionsRequest true "Sale to split"
// @Success 200 {object} dto.APIResponse{data=dto.CalculatePartnerCommissionsResponse} "Partner commissions calculated successfully"
// @Failure 400 {object} dto.APIResponse "Sale not calculated or no partners"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/partners/calculate [post]
func (h *PartnerHandler) Calculate(c fiber.Ctx) error {
	var req dto.CalculatePartnerCommissionsRequest
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
	result, err := h.flow.CalculatePartnerCommissions(h.createRequestContext(c, "/api/v1/partners/calculate"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		if businessflow.IsSaleNotCalculated(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sale has not been calculated yet", "SALE_NOT_CALCULATED", nil)
		}
		if businessflow.IsNoProductPartners(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Sale has no product partners", "NO_PRODUCT_PARTNERS", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to calculate partner commissions", "CALCULATE_PARTNERS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List Partner Commissions
// @Summary List a sale's partner commissions
// @Description List the partner commissions of one sale. Hidden partners are omitted unless include_hidden is set.
// @Tags Partners
// @Accept json
// @Produce json
// @Param deal_id path string true "Upstream deal ID"
// @Param include_hidden query boolean false "Include hidden partners"
// @Success 200 {object} dto.APIResponse{data=dto.ListPartnerCommissionsResponse} "Partner commissions retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales/{deal_id}/partners [get]
func (h *PartnerHandler) List(c fiber.Ctx) error {
	req := dto.ListPartnerCommissionsRequest{
		DealID:        c.Params("deal_id"),
		IncludeHidden: c.Query("include_hidden") == "true" || c.Query("include_hidden") == "1",
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListPartnerCommissions(h.createRequestContext(c, "/api/v1/sales/:deal_id/partners"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list partner commissions", "LIST_PARTNERS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Partner commissions retrieved successfully", result)
}

// UpdatePhase
// @Summary Update a partner phase
// @Description Move one phase of one partner commission through its collection state machine or toggle its cash flag. The two phases advance independently.
// @Tags Partners
// @Accept json
// @Produce json
// @Param uuid path string true "Partner commission UUID"
// @Param request body dto.UpdatePartnerPhaseRequest true "Phase update"
// @Success 200 {object} dto.APIResponse{data=dto.UpdatePartnerPhaseResponse} "Partner phase updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid transition"
// @Failure 404 {object} dto.APIResponse "Partner commission not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/partners/{uuid}/phase [patch]
func (h *PartnerHandler) UpdatePhase(c fiber.Ctx) error {
	var req dto.UpdatePartnerPhaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.UpdatePartnerPhase(h.createRequestContext(c, "/api/v1/partners/:uuid/phase"), &req, metadata)
	if err != nil {
		if businessflow.IsPartnerCommissionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Partner commission not found", "PARTNER_COMMISSION_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidPhase(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phase", "INVALID_PHASE", nil)
		}
		if businessflow.IsInvalidPartnerStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid collection status", "INVALID_PARTNER_STATUS", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update partner phase", "UPDATE_PHASE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// CreateInvoice
// @Summary Record a partner invoice
// @Description Record an invoice against one phase of one partner commission. The phase advances to invoiced when it was pending.
// @Tags Partners
// @Accept json
// @Produce json
// @Param uuid path string true "Partner commission UUID"
// @Param request body dto.CreatePartnerInvoiceRequest true "Invoice payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreatePartnerInvoiceResponse} "Invoice recorded successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Partner commission not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/partners/{uuid}/invoices [post]
func (h *PartnerHandler) CreateInvoice(c fiber.Ctx) error {
	var req dto.CreatePartnerInvoiceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.PartnerCommissionUUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.CreatePartnerInvoice(h.createRequestContext(c, "/api/v1/partners/:uuid/invoices"), &req, metadata)
	if err != nil {
		if businessflow.IsPartnerCommissionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Partner commission not found", "PARTNER_COMMISSION_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidPhase(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phase", "INVALID_PHASE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record invoice", "CREATE_INVOICE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Hide Partner
// @Summary Hide a partner
// @Description Exclude a partner name from partner listings and reports. Hiding never deletes commission data.
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body dto.HidePartnerRequest true "Partner to hide"
// @Success 200 {object} dto.APIResponse{data=dto.HidePartnerResponse} "Partner hidden successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/partners/hidden [post]
func (h *PartnerHandler) Hide(c fiber.Ctx) error {
	var req dto.HidePartnerRequest
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
	result, err := h.flow.HidePartner(h.createRequestContext(c, "/api/v1/partners/hidden"), &req, metadata)
	if err != nil {
		if businessflow.IsPartnerNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Partner name is required", "PARTNER_NAME_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to hide partner", "HIDE_PARTNER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Restore Partner
// @Summary Restore a hidden partner
// @Description Re-include a previously hidden partner name in listings and reports
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body dto.RestorePartnerRequest true "Partner to restore"
// @Success 200 {object} dto.APIResponse{data=dto.RestorePartnerResponse} "Partner restored successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/partners/hidden/restore [post]
func (h *PartnerHandler) Restore(c fiber.Ctx) error {
	var req dto.RestorePartnerRequest
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
	result, err := h.flow.RestorePartner(h.createRequestContext(c, "/api/v1/partners/hidden/restore"), &req, metadata)
	if err != nil {
		if businessflow.IsPartnerNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Partner name is required", "PARTNER_NAME_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to restore partner", "RESTORE_PARTNER_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListHidden Partners
// @Summary List hidden partners
// @Description List the partner names currently excluded from listings and reports
// @Tags Partners
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListHiddenPartnersResponse} "Hidden partners retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/partners/hidden [get]
func (h *PartnerHandler) ListHidden(c fiber.Ctx) error {
	metadata := h.clientMetadata(c)
	result, err := h.flow.ListHiddenPartners(h.createRequestContext(c, "/api/v1/partners/hidden"), metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list hidden partners", "LIST_HIDDEN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Hidden partners retrieved successfully", result)
}

func (h *PartnerHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *PartnerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
