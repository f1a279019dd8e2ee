// Package apierror defines the closed set of error codes the API returns and
// the single serialization path for them. Every error body is
// {"error": <code>, "message": <text>} regardless of which feature produced it.
package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Code is an externally visible error code. The set is closed; handlers must
// not invent codes outside it.
type Code string

const (
	CodeValidationError      Code = "validation_error"
	CodeNotFound             Code = "not_found"
	CodeStockConflict        Code = "stock_conflict"
	CodeCategoryNameConflict Code = "category_name_conflict"
	CodeAdminAuthRequired    Code = "admin_auth_required"
	CodeInvalidCredentials   Code = "invalid_credentials"
	CodeTokenExpired         Code = "token_expired"
	CodeForbiddenAdminRole   Code = "forbidden_admin_role"
	CodeRateLimited          Code = "rate_limited"
	CodeInternal             Code = "internal_error"
)

// Body is the uniform error response shape.
type Body struct {
	Error   Code   `json:"error"`
	Message string `json:"message"`
}

// Status maps each code to its HTTP status.
func (c Code) Status() int {
	switch c {
	case CodeValidationError:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeStockConflict, CodeCategoryNameConflict:
		return http.StatusConflict
	case CodeAdminAuthRequired, CodeInvalidCredentials, CodeTokenExpired:
		return http.StatusUnauthorized
	case CodeForbiddenAdminRole:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure carrying its external code. It satisfies the
// error interface so services can return it through normal error paths.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// New builds a classified error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Write serializes the error to the response writer with its mapped status.
func Write(w http.ResponseWriter, code Code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.Status())
	json.NewEncoder(w).Encode(Body{Error: code, Message: message})
}

// WriteError classifies err and writes it. Unclassified errors become a
// generic internal_error; redacted hides the underlying message, which
// production environments must do.
func WriteError(w http.ResponseWriter, err error, redacted bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		Write(w, apiErr.Code, apiErr.Message)
		return
	}

	message := "internal error"
	if !redacted && err != nil {
		message = err.Error()
	}
	Write(w, CodeInternal, message)
}
