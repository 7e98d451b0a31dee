package errors

import "errors"

// Codes shared across the pipeline and the transport layer.
const (
	CodeInvalidInput      = "invalid_input"
	CodeValidation        = "validation_error"
	CodeCalculation       = "calculation_service_error"
	CodeNarrative         = "narrative_service_error"
	CodeReportRender      = "report_render_error"
	CodeReportConversion  = "report_conversion_error"
	CodeRateLimitExceeded = "rate_limit_exceeded"
	CodeNotFound          = "not_found"
	CodeInternal          = "internal_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf returns the outermost AppError code, or fallback when err carries none.
func CodeOf(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != "" {
		return appErr.Code
	}
	return fallback
}
