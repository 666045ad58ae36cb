package job

import (
	"fmt"
	"net/http"

	"docmill/internal/models"
)

// ServiceError represents errors from the job pipeline with HTTP context
type ServiceError struct {
	Code       string
	Message    string
	StatusCode int
	RetryAfter int // seconds; zero means no retry hint
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Error constructors for common pipeline errors

func NewMissingInputError() *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeBadRequest,
		Message:    "no document payload attached",
		StatusCode: http.StatusBadRequest,
	}
}

func NewInvalidParameterError(message string) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeBadRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewCapacityError(retryAfterSecs int) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeCapacityExceeded,
		Message:    "all processing slots are busy, try again shortly",
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: retryAfterSecs,
	}
}

func NewCredentialRequiredError() *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeCredentialRequired,
		Message:    "document requires a password",
		StatusCode: http.StatusUnauthorized,
	}
}

func NewToolFailedError(err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeToolFailed,
		Message:    "document processing failed",
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewEmptyResultError(message string) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeEmptyResult,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

func NewInternalError(message string, err error) *ServiceError {
	return &ServiceError{
		Code:       models.ErrorCodeInternalError,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}
