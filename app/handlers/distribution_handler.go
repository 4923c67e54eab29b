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

// DistributionHandlerInterface defines the contract for distribution handlers
type DistributionHandlerInterface interface {
	Calculate(c fiber.Ctx) error
	List(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Reset(c fiber.Ctx) error
}

// DistributionHandler handles commission distribution HTTP requests
type DistributionHandler struct {
	flow      businessflow.DistributionFlow
	validator *validator.Validate
}

func (h *DistributionHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DistributionHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewDistributionHandler creates a new distribution handler
func NewDistributionHandler(flow businessflow.DistributionFlow) *DistributionHandler {
	return &DistributionHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Calculate Distributions
// @Summary Calculate a sale's distributions
// @Description Compute every payable line item of one sale from its development configuration, the global percents and the passing rules. Recalculating replaces the previous rows atomically.
// @Tags Distributions
// @Accept json
// @Produce json
// @Param request body dto.CalculateDistributionsRequest true "Sale to calculate"
// @Success 200 {object} dto.APIResponse{data=dto.CalculateDistributionsResponse} "Distributions calculated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Sale or configuration not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/distributions/calculate [post]
func (h *DistributionHandler) Calculate(c fiber.Ctx) error {
	var req dto.CalculateDistributionsRequest
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
	result, err := h.flow.CalculateDistributions(h.createRequestContext(c, "/api/v1/distributions/calculate"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		if businessflow.IsConfigNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Development has no commission configuration", "CONFIG_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to calculate distributions", "CALCULATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List Distributions
// @Summary List a sale's distributions
// @Description List the distribution rows of one synced sale, optionally filtered by phase and payment status
// @Tags Distributions
// @Accept json
// @Produce json
// @Param deal_id path string true "Upstream deal ID"
// @Param phase query string false "Filter by phase (sale, post_sale, utility)"
// @Param payment_status query string false "Filter by payment status (SOLICITADA, pending, paid, NO_APLICA)"
// @Success 200 {object} dto.APIResponse{data=dto.ListDistributionsResponse} "Distributions retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid filter"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales/{deal_id}/distributions [get]
func (h *DistributionHandler) List(c fiber.Ctx) error {
	req := dto.ListDistributionsRequest{
		DealID:        c.Params("deal_id"),
		Phase:         c.Query("phase"),
		PaymentStatus: c.Query("payment_status"),
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListDistributions(h.createRequestContext(c, "/api/v1/sales/:deal_id/distributions"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsInvalidPhase(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid phase filter", "INVALID_PHASE", nil)
		}
		if businessflow.IsInvalidPaymentStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid payment status filter", "INVALID_PAYMENT_STATUS", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list distributions", "LIST_DISTRIBUTIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Distributions retrieved successfully", result)
}

// UpdateStatus
// @Summary Update a distribution's payment status
// @Description Update the payment status or the cash flag of one distribution row. NO_APLICA rows are immutable.
// @Tags Distributions
// @Accept json
// @Produce json
// @Param uuid path string true "Distribution UUID"
// @Param request body dto.UpdateDistributionStatusRequest true "Status update"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateDistributionStatusResponse} "Distribution updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or immutable row"
// @Failure 404 {object} dto.APIResponse "Distribution not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/distributions/{uuid}/status [patch]
func (h *DistributionHandler) UpdateStatus(c fiber.Ctx) error {
	var req dto.UpdateDistributionStatusRequest
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
	result, err := h.flow.UpdateDistributionStatus(h.createRequestContext(c, "/api/v1/distributions/:uuid/status"), &req, metadata)
	if err != nil {
		if businessflow.IsDistributionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Distribution not found", "DISTRIBUTION_NOT_FOUND", nil)
		}
		if businessflow.IsDistributionImmutable(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "NO_APLICA distributions cannot be updated", "DISTRIBUTION_IMMUTABLE", nil)
		}
		if businessflow.IsInvalidPaymentStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid payment status", "INVALID_PAYMENT_STATUS", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update distribution", "UPDATE_STATUS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Reset Distributions
// @Summary Reset a sale's calculation
// @Description Delete every distribution row of one sale and clear its calculated amounts
// @Tags Distributions
// @Accept json
// @Produce json
// @Param request body dto.ResetDistributionsRequest true "Sale to reset"
// @Success 200 {object} dto.APIResponse{data=dto.ResetDistributionsResponse} "Distributions reset successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/distributions/reset [post]
func (h *DistributionHandler) Reset(c fiber.Ctx) error {
	var req dto.ResetDistributionsRequest
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
	result, err := h.flow.ResetDistributions(h.createRequestContext(c, "/api/v1/distributions/reset"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to reset distributions", "RESET_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *DistributionHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *DistributionHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
