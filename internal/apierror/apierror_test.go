package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCodeStatusMapping(t *testing.T) {
	cases := map[Code]int{
		CodeValidationError:      http.StatusBadRequest,
		CodeNotFound:             http.StatusNotFound,
		CodeStockConflict:        http.StatusConflict,
		CodeCategoryNameConflict: http.StatusConflict,
		CodeAdminAuthRequired:    http.StatusUnauthorized,
		CodeInvalidCredentials:   http.StatusUnauthorized,
		CodeTokenExpired:         http.StatusUnauthorized,
		CodeForbiddenAdminRole:   http.StatusForbidden,
		CodeRateLimited:          http.StatusTooManyRequests,
		CodeInternal:             http.StatusInternalServerError,
	}

	for code, want := range cases {
		if got := code.Status(); got != want {
			t.Errorf("Status(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestWrite_UniformBody(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, CodeStockConflict, "stock changed concurrently; order aborted")

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if len(body) != 2 {
		t.Errorf("body has %d keys, want exactly error and message", len(body))
	}
	if body["error"] != "stock_conflict" {
		t.Errorf("error = %q, want stock_conflict", body["error"])
	}
	if body["message"] == "" {
		t.Error("message is empty")
	}
}

func TestWriteError_ClassifiedAndWrapped(t *testing.T) {
	wrapped := fmt.Errorf("placing order: %w", New(CodeNotFound, "product missing"))

	w := httptest.NewRecorder()
	WriteError(w, wrapped, true)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error != CodeNotFound || body.Message != "product missing" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteError_RedactsInternalMessages(t *testing.T) {
	dbErr := errors.New("pq: connection refused on 10.0.0.3")

	w := httptest.NewRecorder()
	WriteError(w, dbErr, true)

	var body Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error != CodeInternal {
		t.Errorf("error = %q, want internal_error", body.Error)
	}
	if body.Message != "internal error" {
		t.Errorf("message %q leaks internals", body.Message)
	}

	w = httptest.NewRecorder()
	WriteError(w, dbErr, false)
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Message != dbErr.Error() {
		t.Errorf("non-production message = %q, want real error", body.Message)
	}
}

func TestDeprecatedInsufficientStockNeverAppears(t *testing.T) {
	codes := []Code{
		CodeValidationError, CodeNotFound, CodeStockConflict,
		CodeCategoryNameConflict, CodeAdminAuthRequired, CodeInvalidCredentials,
		CodeTokenExpired, CodeForbiddenAdminRole, CodeRateLimited, CodeInternal,
	}
	for _, c := range codes {
		if c == "insufficient_stock" {
			t.Fatal("deprecated alias insufficient_stock is present in the code set")
		}
	}
}
