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

// RuleHandlerInterface defines the contract for rule handlers
type RuleHandlerInterface interface {
	Create(c fiber.Ctx) error
	Update(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Applicable(c fiber.Ctx) error
	UnitCounts(c fiber.Ctx) error
}

// RuleHandler handles tiered bonus rule HTTP requests
type RuleHandler struct {
	flow      businessflow.RuleFlow
	validator *validator.Validate
}

func (h *RuleHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RuleHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewRuleHandler creates a new rule handler
func NewRuleHandler(flow businessflow.RuleFlow) *RuleHandler {
	return &RuleHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

// Create Rule
// @Summary Create a bonus rule
// @Description Create a tiered bonus rule for one development. Quarter rules encode only the year; the quarter window follows each sale's signing date.
// @Tags Rules
// @Accept json
// @Produce json
// @Param request body dto.CreateRuleRequest true "Rule payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateRuleResponse} "Rule created successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rules [post]
func (h *RuleHandler) Create(c fiber.Ctx) error {
	var req dto.CreateRuleRequest
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
	result, err := h.flow.CreateRule(h.createRequestContext(c, "/api/v1/rules"), &req, metadata)
	if err != nil {
		if handled := h.ruleValidationError(c, err); handled != nil {
			return handled
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create rule", "CREATE_RULE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// Update Rule
// @Summary Update a bonus rule
// @Description Apply a partial update to an existing rule. Only provided fields change.
// @Tags Rules
// @Accept json
// @Produce json
// @Param uuid path string true "Rule UUID"
// @Param request body dto.UpdateRuleRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateRuleResponse} "Rule updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rules/{uuid} [patch]
func (h *RuleHandler) Update(c fiber.Ctx) error {
	var req dto.UpdateRuleRequest
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
	result, err := h.flow.UpdateRule(h.createRequestContext(c, "/api/v1/rules/:uuid"), &req, metadata)
	if err != nil {
		if businessflow.IsRuleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rule not found", "RULE_NOT_FOUND", nil)
		}
		if businessflow.IsRuleUpdateRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "At least one field must be provided", "RULE_UPDATE_REQUIRED", nil)
		}
		if handled := h.ruleValidationError(c, err); handled != nil {
			return handled
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update rule", "UPDATE_RULE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// Delete Rule
// @Summary Delete a bonus rule
// @Description Delete one rule. Already-calculated distributions keep their bonus rows.
// @Tags Rules
// @Accept json
// @Produce json
// @Param uuid path string true "Rule UUID"
// @Success 200 {object} dto.APIResponse{data=dto.DeleteRuleResponse} "Rule deleted successfully"
// @Failure 404 {object} dto.APIResponse "Rule not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rules/{uuid} [delete]
func (h *RuleHandler) Delete(c fiber.Ctx) error {
	req := dto.DeleteRuleRequest{UUID: c.Params("uuid")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.DeleteRule(h.createRequestContext(c, "/api/v1/rules/:uuid"), &req, metadata)
	if err != nil {
		if businessflow.IsRuleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Rule not found", "RULE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete rule", "DELETE_RULE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// List Rules
// @Summary List bonus rules
// @Description List the rules of one development ordered by priority
// @Tags Rules
// @Accept json
// @Produce json
// @Param development query string true "Development name or alias"
// @Param active_only query boolean false "Only include active rules"
// @Success 200 {object} dto.APIResponse{data=dto.ListRulesResponse} "Rules retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rules [get]
func (h *RuleHandler) List(c fiber.Ctx) error {
	req := dto.ListRulesRequest{
		Development: c.Query("development"),
		ActiveOnly:  c.Query("active_only") == "true" || c.Query("active_only") == "1",
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.ListRules(h.createRequestContext(c, "/api/v1/rules"), &req, metadata)
	if err != nil {
		if businessflow.IsDevelopmentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Development is required", "DEVELOPMENT_REQUIRED", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list rules", "LIST_RULES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Rules retrieved successfully", result)
}

// Applicable Rules
// @Summary Evaluate rules against a sale
// @Description Return the rules that currently pass for one synced sale together with the unit counts that unlocked them
// @Tags Rules
// @Accept json
// @Produce json
// @Param deal_id path string true "Upstream deal ID"
// @Success 200 {object} dto.APIResponse{data=dto.GetApplicableRulesResponse} "Applicable rules retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Sale not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/sales/{deal_id}/applicable-rules [get]
func (h *RuleHandler) Applicable(c fiber.Ctx) error {
	req := dto.GetApplicableRulesRequest{DealID: c.Params("deal_id")}

	metadata := h.clientMetadata(c)
	result, err := h.flow.GetApplicableRules(h.createRequestContext(c, "/api/v1/sales/:deal_id/applicable-rules"), &req, metadata)
	if err != nil {
		if businessflow.IsDealIDRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Deal ID is required", "DEAL_ID_REQUIRED", nil)
		}
		if businessflow.IsSaleNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Sale not found", "SALE_NOT_FOUND", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to evaluate rules", "APPLICABLE_RULES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Applicable rules retrieved successfully", result)
}

// Rule Unit Counts
// @Summary Audit per-rule unit counts
// @Description Return the raw unit count of every active rule of one development at a reference date, including rules whose threshold is not met
// @Tags Rules
// @Accept json
// @Produce json
// @Param development query string true "Development name or alias"
// @Param date query string true "Reference date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.GetRuleUnitCountsResponse} "Unit counts retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid request"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/rules/unit-counts [get]
func (h *RuleHandler) UnitCounts(c fiber.Ctx) error {
	req := dto.GetRuleUnitCountsRequest{
		Development: c.Query("development"),
		Date:        c.Query("date"),
	}

	metadata := h.clientMetadata(c)
	result, err := h.flow.GetRuleUnitCounts(h.createRequestContext(c, "/api/v1/rules/unit-counts"), &req, metadata)
	if err != nil {
		if businessflow.IsDevelopmentRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Development is required", "DEVELOPMENT_REQUIRED", nil)
		}
		if businessflow.IsInvalidReferenceDate(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Date must be YYYY-MM-DD", "INVALID_REFERENCE_DATE", nil)
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count units", "RULE_UNIT_COUNTS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Unit counts retrieved successfully", result)
}

// ruleValidationError maps rule domain validation failures, returning nil when
// the error is not one of them.
func (h *RuleHandler) ruleValidationError(c fiber.Ctx, err error) error {
	if businessflow.IsDevelopmentRequired(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Development is required", "DEVELOPMENT_REQUIRED", nil)
	}
	if businessflow.IsInvalidPeriodType(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid period type", "INVALID_PERIOD_TYPE", nil)
	}
	if businessflow.IsPeriodMonthRequired(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Period month is required for month rules", "PERIOD_MONTH_REQUIRED", nil)
	}
	if businessflow.IsInvalidOperator(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid operator", "INVALID_OPERATOR", nil)
	}
	if businessflow.IsThresholdRequired(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Unit threshold must be at least 1", "THRESHOLD_REQUIRED", nil)
	}
	if businessflow.IsPercentOutOfRange(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Percent must be between 0 and 100", "PERCENT_OUT_OF_RANGE", nil)
	}
	return nil
}

func (h *RuleHandler) clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if operator, ok := c.Locals("operator").(string); ok {
		metadata.SetOperator(operator)
	}
	return metadata
}

func (h *RuleHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
