package models

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Validation errors - aggregation never starts
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeInvalidAddress ErrorCode = "INVALID_TOKEN_ADDRESS"
	ErrorCodeEmptyTokenList ErrorCode = "EMPTY_TOKEN_LIST"
	ErrorCodeTooManyTokens  ErrorCode = "TOO_MANY_TOKENS"
	ErrorCodeMalformedJSON  ErrorCode = "MALFORMED_JSON"

	// Payment gate errors
	ErrorCodePaymentRequired ErrorCode = "PAYMENT_REQUIRED"
	ErrorCodeInvalidPayment  ErrorCode = "INVALID_PAYMENT"

	// Rate limiting errors
	ErrorCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Aggregation errors. Provider and analyzer failures are absorbed
	// into degraded scored results; this code is only used when the
	// metadata lookup and every analyzer fail at once.
	ErrorCodeAggregationFailed ErrorCode = "AGGREGATION_FAILED"

	// Internal errors
	ErrorCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// ErrorResponse represents the standardized error response format
type ErrorResponse struct {
	Error     ErrorDetail `json:"error"`
	Timestamp time.Time   `json:"timestamp"`
}

// HTTPStatusCode returns the appropriate HTTP status code for each error type
func (e ErrorCode) HTTPStatusCode() int {
	switch e {
	case ErrorCodeInvalidRequest, ErrorCodeInvalidAddress, ErrorCodeEmptyTokenList,
		ErrorCodeTooManyTokens, ErrorCodeMalformedJSON:
		return http.StatusBadRequest
	case ErrorCodePaymentRequired, ErrorCodeInvalidPayment:
		return http.StatusPaymentRequired
	case ErrorCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrorCodeAggregationFailed:
		return http.StatusBadGateway
	case ErrorCodeDatabaseError, ErrorCodeInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorResponse creates a new error response with timestamp
func NewErrorResponse(code ErrorCode, message, details string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now().UTC(),
	}
}

// AppError represents an application error with context
type AppError struct {
	Code       ErrorCode
	Message    string
	Details    string
	Cause      error
	Context    map[string]interface{}
	StatusCode int
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: code.HTTPStatusCode(),
		Context:    make(map[string]interface{}),
	}
}

// NewAppErrorWithCause creates a new application error with underlying cause
func NewAppErrorWithCause(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Cause:      cause,
		StatusCode: code.HTTPStatusCode(),
		Context:    make(map[string]interface{}),
	}
}

// NewAppErrorWithDetails creates a new application error with details
func NewAppErrorWithDetails(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Details:    details,
		StatusCode: code.HTTPStatusCode(),
		Context:    make(map[string]interface{}),
	}
}

// errorLogger is the logging surface HandleError needs
type errorLogger interface {
	Error(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
}

// HandleError handles application errors and sends appropriate HTTP response
func HandleError(c *gin.Context, err error, logger interface{}) {
	var appErr *AppError

	if appError, ok := err.(*AppError); ok {
		appErr = appError
	} else {
		appErr = NewAppErrorWithCause(ErrorCodeInternalError, "Internal server error", err)
	}

	appErr.WithContext("method", c.Request.Method).
		WithContext("path", c.Request.URL.Path).
		WithContext("client_ip", c.ClientIP())

	if log, ok := logger.(errorLogger); ok {
		logFields := []zap.Field{
			zap.String("error_code", string(appErr.Code)),
			zap.String("error_message", appErr.Message),
			zap.Any("error_context", appErr.Context),
		}
		if appErr.Cause != nil {
			logFields = append(logFields, zap.Error(appErr.Cause))
		}

		if appErr.StatusCode >= 500 {
			log.Error("Application error", logFields...)
		} else {
			log.Warn("Client error", logFields...)
		}
	}

	c.JSON(appErr.StatusCode, NewErrorResponse(appErr.Code, appErr.Message, appErr.Details))
}

// NewValidationError creates a validation error
func NewValidationError(message, details string) *AppError {
	return NewAppErrorWithDetails(ErrorCodeInvalidRequest, message, details)
}

// NewInvalidAddressError creates an invalid token address error
func NewInvalidAddressError(address string) *AppError {
	return NewAppErrorWithDetails(
		ErrorCodeInvalidAddress,
		"Invalid Solana token address",
		fmt.Sprintf("Address %q must be 32-44 base58 characters", address),
	)
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError() *AppError {
	return NewAppError(ErrorCodeRateLimitExceeded, "Rate limit exceeded")
}

// NewAggregationError creates an error for total data unavailability
func NewAggregationError(address string) *AppError {
	return NewAppErrorWithDetails(
		ErrorCodeAggregationFailed,
		"Unable to calculate trust score",
		fmt.Sprintf("No data source returned usable data for %s", address),
	)
}
