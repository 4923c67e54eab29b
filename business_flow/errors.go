// Package businessflow contains the core business logic and use cases for commission workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Configuration errors
	ErrConfigNotFound       = errors.New("commission configuration not found")
	ErrGlobalKeyNotFound    = errors.New("global configuration key not found")
	ErrDevelopmentRequired  = errors.New("development is required")
	ErrPercentOutOfRange    = errors.New("percent must be between 0 and 100")
	ErrPoolPercentRequired  = errors.New("pool percent is required when the pool is enabled")
	ErrAddOnPercentRequired = errors.New("add-on percent is required when the add-on is enabled")

	// Rule errors
	ErrRuleNotFound         = errors.New("commission rule not found")
	ErrInvalidPeriodType    = errors.New("invalid period type")
	ErrInvalidOperator      = errors.New("invalid operator")
	ErrPeriodMonthRequired  = errors.New("period month is required for month rules")
	ErrThresholdRequired    = errors.New("unit threshold must be at least 1")
	ErrRuleUpdateRequired   = errors.New("at least one field must be provided for update")
	ErrInvalidReferenceDate = errors.New("reference date must be YYYY-MM-DD")

	// Sale and sync errors
	ErrSaleNotFound       = errors.New("sale not found")
	ErrDealIDRequired     = errors.New("deal ID is required")
	ErrDealNotClosedWon   = errors.New("deal is not in the closed-won stage")
	ErrSigningDateMissing = errors.New("deal carries no signing date")
	ErrSaleAmountInvalid  = errors.New("deal amount must be positive")

	// Distribution errors
	ErrDistributionNotFound  = errors.New("distribution not found")
	ErrSaleNotCalculated     = errors.New("sale has not been calculated yet")
	ErrInvalidPaymentStatus  = errors.New("invalid payment status")
	ErrDistributionImmutable = errors.New("NO_APLICA distributions cannot be updated")

	// Partner errors
	ErrPartnerCommissionNotFound = errors.New("partner commission not found")
	ErrNoProductPartners         = errors.New("sale has no product partners")
	ErrInvalidPartnerStatus      = errors.New("invalid partner collection status")
	ErrInvalidPhase              = errors.New("invalid phase")
	ErrPartnerNameRequired       = errors.New("partner name is required")

	// Adjustment errors
	ErrAdjustmentUnchanged = errors.New("adjustment must change the value or the role")

	// Auth errors
	ErrIncorrectCredentials = errors.New("incorrect username or password")

	// Target errors
	ErrInvalidTargetPeriod = errors.New("target period is invalid")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsConfigNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}

func IsGlobalKeyNotFound(err error) bool {
	return errors.Is(err, ErrGlobalKeyNotFound)
}

func IsDevelopmentRequired(err error) bool {
	return errors.Is(err, ErrDevelopmentRequired)
}

func IsPercentOutOfRange(err error) bool {
	return errors.Is(err, ErrPercentOutOfRange)
}

func IsPoolPercentRequired(err error) bool {
	return errors.Is(err, ErrPoolPercentRequired)
}

func IsAddOnPercentRequired(err error) bool {
	return errors.Is(err, ErrAddOnPercentRequired)
}

func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

func IsInvalidPeriodType(err error) bool {
	return errors.Is(err, ErrInvalidPeriodType)
}

func IsInvalidOperator(err error) bool {
	return errors.Is(err, ErrInvalidOperator)
}

func IsPeriodMonthRequired(err error) bool {
	return errors.Is(err, ErrPeriodMonthRequired)
}

func IsThresholdRequired(err error) bool {
	return errors.Is(err, ErrThresholdRequired)
}

func IsRuleUpdateRequired(err error) bool {
	return errors.Is(err, ErrRuleUpdateRequired)
}

func IsInvalidReferenceDate(err error) bool {
	return errors.Is(err, ErrInvalidReferenceDate)
}

func IsSaleNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound)
}

func IsDealIDRequired(err error) bool {
	return errors.Is(err, ErrDealIDRequired)
}

func IsDealNotClosedWon(err error) bool {
	return errors.Is(err, ErrDealNotClosedWon)
}

func IsSigningDateMissing(err error) bool {
	return errors.Is(err, ErrSigningDateMissing)
}

func IsSaleAmountInvalid(err error) bool {
	return errors.Is(err, ErrSaleAmountInvalid)
}

func IsDistributionNotFound(err error) bool {
	return errors.Is(err, ErrDistributionNotFound)
}

func IsSaleNotCalculated(err error) bool {
	return errors.Is(err, ErrSaleNotCalculated)
}

func IsInvalidPaymentStatus(err error) bool {
	return errors.Is(err, ErrInvalidPaymentStatus)
}

func IsDistributionImmutable(err error) bool {
	return errors.Is(err, ErrDistributionImmutable)
}

func IsPartnerCommissionNotFound(err error) bool {
	return errors.Is(err, ErrPartnerCommissionNotFound)
}

func IsNoProductPartners(err error) bool {
	return errors.Is(err, ErrNoProductPartners)
}

func IsInvalidPartnerStatus(err error) bool {
	return errors.Is(err, ErrInvalidPartnerStatus)
}

func IsInvalidPhase(err error) bool {
	return errors.Is(err, ErrInvalidPhase)
}

func IsPartnerNameRequired(err error) bool {
	return errors.Is(err, ErrPartnerNameRequired)
}

func IsAdjustmentUnchanged(err error) bool {
	return errors.Is(err, ErrAdjustmentUnchanged)
}

func IsIncorrectCredentials(err error) bool {
	return errors.Is(err, ErrIncorrectCredentials)
}

func IsInvalidTargetPeriod(err error) bool {
	return errors.Is(err, ErrInvalidTargetPeriod)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
