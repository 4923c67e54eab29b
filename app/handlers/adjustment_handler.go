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

// AdjustmentHandlerInterface defines the contract for adjustment handlers
type AdjustmentHandlerInterface interface {
	Record(c fiber.Ctx) error
	List(c fiber.Ctx) error
}

// AdjustmentHandler handles manual correction HTTP requests
type AdjustmentHandler struct {
	flow      businessflow.AdjustmentFlow
	validator *validator.Validate
}

func (h *AdjustmentHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdjustmentHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAdjustmentHandler creates a new adjustment handler
func NewAdjustmentHandler(flow businessflow.AdjustmentFlow) *AdjustmentHandler {
	return &AdjustmentHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Record Adjustment
// @Summary Record a manual correction
// @Description Correct one distribution's amount or role. Every correction lands in the append-only audit ledger in the same transaction.
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param uuid path string true "Distribution UUID"
// @Param request body dto.RecordAdjustmentRequest true "Correction payload"
// @Success 201 {object} dto.APIResponse{data=dto.RecordAdjustmentResponse} "Adjustment recorded successfully"
// @Failure 400 {object} dto.APIResponse "Validation error, immutable row or no-op correction"
// @Failure 404 {object} dto.APIResponse "Distribution not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/distributions/{uuid}/adjustments [post]
func (h *AdjustmentHandler) Record(c fiber.Ctx) error {
	var req dto.RecordAdjustmentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.DistributionUUID = c.Params("uuid")

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.RecordAdjustment(h.createRequestContext(c, "/api/v1/distributions/:uuid/adjustments"), &req, metadata)
	if err != nil {
		if businessflow.IsDistributionNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Distribution not found", "DISTRIBUTION_NOT_FOUND", nil)
		}
		if businessflow.IsDistributionImmutable(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "NO_APLICA distributions cannot be adjusted", "DISTRIBUTION_IMMUTABLE", nil)
		}
		if businessflow.IsAdjustmentUnchanged(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Adjustment must change the value or the role", "ADJUSTMENT_UNCHANGED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record adjustment", "RECORD_ADJUSTMENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// List Adjustments
// @Summary List a sale's adjustment history
// @Description List every correction ever applied to one sale's distributions, newest first
// @Tags Adjustments
// @Accept json
// @Produce json
// @Param deal_id path string true "Upstream deal ID"
// @Success 200 {object} dto.APIResponse{data=dto.ListAdjustmentsResponse} "Adjustments retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales/{deal_id}/adjustments [get]
func (h *AdjustmentHandler) List(c fiber.Ctx) error {
	req := dto.ListAdjustmentsRequest{DealID: c.Params("deal_id")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListAdjustments(h.createRequestContext(c, "/api/v1/sales/:deal_id/adjustments"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list adjustments", "LIST_ADJUSTMENTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Adjustments retrieved successfully", result)
}

func (h *AdjustmentHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *AdjustmentHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
