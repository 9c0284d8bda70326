package apperrors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer already exists")
	ErrInvalidPaymentAmount  = errors.New("invalid payment amount")
	ErrInvalidStatus         = errors.New("invalid customer status")
	ErrValidation            = errors.New("validation failed")
	ErrUnauthorized          = errors.New("unauthorized")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCustomerNotFound      = "CUSTOMER_NOT_FOUND"
	ErrCodeCustomerAlreadyExists = "CUSTOMER_ALREADY_EXISTS"
	ErrCodeInvalidPaymentAmount  = "INVALID_PAYMENT_AMOUNT"
	ErrCodeInvalidStatus         = "INVALID_STATUS"
	ErrCodeValidation            = "VALIDATION_FAILED"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeDatabaseError         = "DATABASE_ERROR"
	ErrCodeCacheError            = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapCustomerNotFound(applicationNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerNotFound,
		fmt.Sprintf("Customer with application number %s not found", applicationNumber),
		ErrCustomerNotFound,
	)
}

func WrapCustomerAlreadyExists(applicationNumber string) *BusinessError {
	return NewBusinessError(
		ErrCodeCustomerAlreadyExists,
		fmt.Sprintf("Customer with application number %s already exists", applicationNumber),
		ErrCustomerAlreadyExists,
	)
}

func WrapInvalidPaymentAmount(amount string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidPaymentAmount,
		fmt.Sprintf("Invalid payment amount: %s", amount),
		ErrInvalidPaymentAmount,
	)
}

func WrapInvalidStatus(status string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidStatus,
		fmt.Sprintf("Status must be pending or completed, got %q", status),
		ErrInvalidStatus,
	)
}

func WrapValidationError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		"request validation failed",
		fmt.Errorf("%w: %w", ErrValidation, err),
	)
}

func WrapUnauthorized(message string) *BusinessError {
	return NewBusinessError(
		ErrCodeUnauthorized,
		message,
		ErrUnauthorized,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
