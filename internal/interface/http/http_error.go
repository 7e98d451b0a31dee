package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/pipeline"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Stage   string
	Fields  []birth.FieldResult
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// statusForKind maps a pipeline error kind to its HTTP status.
func statusForKind(kind string) int {
	switch kind {
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperrors.CodeCalculation, apperrors.CodeNarrative:
		return http.StatusServiceUnavailable
	case apperrors.CodeReportRender, apperrors.CodeReportConversion:
		return http.StatusInternalServerError
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func failureError(f *pipeline.Failure) *HTTPError {
	status := statusForKind(f.Kind)
	code := f.Kind
	if status == http.StatusInternalServerError && code != apperrors.CodeReportRender && code != apperrors.CodeReportConversion {
		code = apperrors.CodeInternal
	}
	return &HTTPError{
		Status:  status,
		Code:    code,
		Message: f.Message,
		Stage:   string(f.Stage),
		Fields:  f.Fields,
		Err:     f,
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
