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

// SyncHandlerInterface defines the contract for CRM sync handlers
type SyncHandlerInterface interface {
	SyncSale(c fiber.Ctx) error
	SyncAll(c fiber.Ctx) error
	RefreshPartners(c fiber.Ctx) error
}

// SyncHandler handles CRM feed synchronization HTTP requests
type SyncHandler struct {
	flow      businessflow.SyncFlow
	validator *validator.Validate
}

func (h *SyncHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *SyncHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(flow businessflow.SyncFlow) *SyncHandler {
	return &SyncHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// SyncSale
// @Summary Sync one deal
// @Description Pull one closed-won deal from the CRM feed and upsert it as a sale. Re-syncing the same deal updates it in place.
// @Tags Sync
// @Accept json
// @Produce json
// @Param request body dto.SyncSaleRequest true "Deal to sync"
// @Success 200 {object} dto.APIResponse{data=dto.SyncSaleResponse} "Deal synced successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or deal not eligible"
// @Failure 502 {object} dto.APIResponse "CRM feed unavailable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sync/sale [post]
func (h *SyncHandler) SyncSale(c fiber.Ctx) error {
	var req dto.SyncSaleRequest
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
	result, err := h.flow.SyncSale(h.createRequestContext(c, "/api/v1/sync/sale", 60*time.Second), &req, metadata)
	if err != nil {
		if handled := h.dealError(c, err); handled != nil {
			return handled
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to sync deal", "SYNC_SALE_FAILED", nil)
	}

	status := fiber.StatusOK
	if result.Created {
		status = fiber.StatusCreated
	}
	return h.SuccessResponse(c, status, result.Message, result)
}

// SyncAll
// @Summary Sync all closed-won deals
// @Description Pull the closed-won feed and upsert every eligible deal. Individual deal failures are collected and do not abort the batch.
// @Tags Sync
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.SyncAllResponse} "Batch sync finished"
// @Failure 502 {object} dto.APIResponse "CRM feed unavailable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sync/all [post]
func (h *SyncHandler) SyncAll(c fiber.Ctx) error {
	metadata := h.clientMetadata(c)
	result, err := h.flow.SyncAllClosedWon(h.createRequestContext(c, "/api/v1/sync/all", 5*time.Minute), metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "CRM_ERROR" {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "CRM feed unavailable", be.Code, nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Batch sync failed", "SYNC_ALL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// RefreshPartners
// @Summary Refresh a sale's product partners
// @Description Re-pull the partner participation list of one synced sale from the CRM
// @Tags Sync
// @Accept json
// @Produce json
// @Param deal_id path string true "Upstream deal ID"
// @Success 200 {object} dto.APIResponse{data=dto.RefreshSalePartnersResponse} "Partners refreshed successfully"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales/{deal_id}/partners/refresh [post]
func (h *SyncHandler) RefreshPartners(c fiber.Ctx) error {
	req := dto.RefreshSalePartnersRequest{DealID: c.Params("deal_id")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.RefreshSalePartners(h.createRequestContext(c, "/api/v1/sales/:deal_id/partners/refresh", 60*time.Second), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to refresh partners", "REFRESH_PARTNERS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// dealError maps per-deal eligibility failures, returning nil when the error
// is not one of them.
func (h *SyncHandler) dealError(c fiber.Ctx, err error) error {
	if businessflow.IsDealIDRequired(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
	}
	if businessflow.IsDealNotClosedWon(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal is not in the closed-won stage", "DEAL_NOT_CLOSED_WON", nil)
	}
	if businessflow.IsSigningDateMissing(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal carries no signing date", "SIGNING_DATE_MISSING", nil)
	}
	if businessflow.IsSaleAmountInvalid(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal amount must be positive", "SALE_AMOUNT_INVALID", nil)
	}
	if businessflow.IsDevelopmentRequired(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal carries no recognizable development", "DEVELOPMENT_REQUIRED", nil)
	}
	if be, ok := err.(*businessflow.BusinessError); ok && be.Code == "CRM_ERROR" {
		return h.ErrorResponse(c, fiber.StatusBadGateway, "Failed to fetch deal from CRM", be.Code, nil)
	}
	return nil
}

func (h *SyncHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *SyncHandler) createRequestContext(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
