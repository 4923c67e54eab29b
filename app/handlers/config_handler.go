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

// ConfigHandlerInterface defines the contract for configuration handlers
type ConfigHandlerInterface interface {
	Get(c fiber.Ctx) error
	Upsert(c fiber.Ctx) error
	List(c fiber.Ctx) error
	GetGlobal(c fiber.Ctx) error
	UpsertGlobal(c fiber.Ctx) error
	ListGlobal(c fiber.Ctx) error
}

// ConfigHandler handles commission configuration HTTP requests
type ConfigHandler struct {
	flow      businessflow.ConfigFlow
	validator *validator.Validate
}

func (h *ConfigHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ConfigHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewConfigHandler creates a new configuration handler
func NewConfigHandler(flow businessflow.ConfigFlow) *ConfigHandler {
	return &ConfigHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Get Configuration
// @Summary Get development configuration
// @Description Fetch the commission configuration of one development. Aliases and case variants resolve to the same development.
// @Tags Configuration
// @Accept json
// @Produce json
// @Param development path string true "Development name or alias"
// @Success 200 {object} dto.APIResponse{data=dto.GetConfigResponse} "Configuration retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Configuration not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/configs/{development} [get]
func (h *ConfigHandler) Get(c fiber.Ctx) error {
	req := dto.GetConfigRequest{Development: c.Params("development")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.GetConfig(h.createRequestContext(c, "/api/v1/configs/:development"), &req, metadata)
	if err != nil {
		if businessflow.IsDevelopmentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Development is required", "DEVELOPMENT_REQUIRED", nil)
		}
		if businessflow.IsConfigNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Configuration not found", "CONFIG_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch configuration", "GET_CONFIG_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Configuration retrieved successfully", result)
}

// Upsert Configuration
// @Summary Create or overwrite development configuration
// @Description Set the full commission configuration of one development in a single write
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body dto.UpsertConfigRequest true "Configuration payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpsertConfigResponse} "Configuration saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/configs [put]
func (h *ConfigHandler) Upsert(c fiber.Ctx) error {
	var req dto.UpsertConfigRequest
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
	result, err := h.flow.UpsertConfig(h.createRequestContext(c, "/api/v1/configs"), &req, metadata)
	if err != nil {
		if businessflow.IsDevelopmentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Development is required", "DEVELOPMENT_REQUIRED", nil)
		}
		if businessflow.IsPercentOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Percent must be between 0 and 100", "PERCENT_OUT_OF_RANGE", nil)
		}
		if businessflow.IsPoolPercentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Pool percent is required when the pool is enabled", "POOL_PERCENT_REQUIRED", nil)
		}
		if businessflow.IsAddOnPercentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Add-on percent is required when the add-on is enabled", "ADDON_PERCENT_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save configuration", "UPSERT_CONFIG_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List Configurations
// @Summary List development configurations
// @Description List the commission configuration of every development
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListConfigsResponse} "Configurations retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/configs [get]
func (h *ConfigHandler) List(c fiber.Ctx) error {
	metadata := h.clientMetadata(c)
	result, err := h.flow.ListConfigs(h.createRequestContext(c, "/api/v1/configs"), metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list configurations", "LIST_CONFIGS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Configurations retrieved successfully", result)
}

// GetGlobal Configuration
// @Summary Get a global indirect-role percent
// @Description Fetch one global key with its current percent. A key that was never set reports zero.
// @Tags Configuration
// @Accept json
// @Produce json
// @Param key path string true "Global configuration key"
// @Success 200 {object} dto.APIResponse{data=dto.GetGlobalConfigResponse} "Global entry retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Unknown key"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/global-configs/{key} [get]
func (h *ConfigHandler) GetGlobal(c fiber.Ctx) error {
	req := dto.GetGlobalConfigRequest{Key: c.Params("key")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.GetGlobalConfig(h.createRequestContext(c, "/api/v1/global-configs/:key"), &req, metadata)
	if err != nil {
		if businessflow.IsGlobalKeyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Unknown global configuration key", "GLOBAL_KEY_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch global entry", "GET_GLOBAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Global entry retrieved successfully", result)
}

// UpsertGlobal Configuration
// @Summary Set a global indirect-role percent
// @Description Set the percent of one indirect role paid from the total commission of every sale
// @Tags Configuration
// @Accept json
// @Produce json
// @Param request body dto.UpsertGlobalConfigRequest true "Global entry payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpsertGlobalConfigResponse} "Global entry saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or unknown key"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/global-configs [put]
func (h *ConfigHandler) UpsertGlobal(c fiber.Ctx) error {
	var req dto.UpsertGlobalConfigRequest
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
	result, err := h.flow.UpsertGlobalConfig(h.createRequestContext(c, "/api/v1/global-configs"), &req, metadata)
	if err != nil {
		if businessflow.IsGlobalKeyNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown global configuration key", "GLOBAL_KEY_NOT_FOUND", nil)
		}
		if businessflow.IsPercentOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Percent must be between 0 and 100", "PERCENT_OUT_OF_RANGE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save global entry", "UPSERT_GLOBAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListGlobal Configurations
// @Summary List global indirect-role percents
// @Description List every global key with its current percent. Keys that were never set report zero.
// @Tags Configuration
// @Accept json
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListGlobalConfigsResponse} "Global entries retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/global-configs [get]
func (h *ConfigHandler) ListGlobal(c fiber.Ctx) error {
	metadata := h.clientMetadata(c)
	result, err := h.flow.ListGlobalConfigs(h.createRequestContext(c, "/api/v1/global-configs"), metadata)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list global entries", "LIST_GLOBAL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Global entries retrieved successfully", result)
}

func (h *ConfigHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *ConfigHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
