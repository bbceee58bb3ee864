// Package httputil centralizes JSON response writing and request decoding so
// every handler speaks the same envelope.
//
// Error responses follow the {"error": "...", "error_description": "..."}
// shape. Internal failures never leak details: the description is omitted and
// only the generic code is returned.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "watchgate/pkg/domain-errors"
	"watchgate/pkg/platform/sentinel"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the wire shape for all error responses.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// Validatable is implemented by request types that validate and parse
// themselves after JSON decoding.
type Validatable interface {
	Validate() error
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	// Encoding failures past this point cannot be reported to the client;
	// the status line is already written.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to an HTTP status and the error envelope.
// Unknown and internal errors collapse to a blank 500 body.
func WriteError(w http.ResponseWriter, err error) {
	status, code, describable := classify(err)

	resp := ErrorResponse{Error: code}
	if describable {
		var de *dErrors.Error
		if errors.As(err, &de) {
			resp.Description = de.Message()
		}
	}
	WriteJSON(w, status, resp)
}

// classify resolves an error chain to (status, wire code, include description).
func classify(err error) (int, string, bool) {
	switch {
	case dErrors.HasCode(err, dErrors.CodeBadRequest):
		return http.StatusBadRequest, "bad_request", true
	case dErrors.HasCode(err, dErrors.CodeInvalidRequest):
		return http.StatusBadRequest, "invalid_request", true
	case dErrors.HasCode(err, dErrors.CodeValidation):
		return http.StatusBadRequest, "validation_error", true
	case dErrors.HasCode(err, dErrors.CodeInvalidInput):
		return http.StatusBadRequest, "invalid_input", true
	case dErrors.HasCode(err, dErrors.CodeUnauthorized):
		return http.StatusUnauthorized, "unauthorized", true
	case dErrors.HasCode(err, dErrors.CodeForbidden):
		return http.StatusForbidden, "forbidden", true
	case dErrors.HasCode(err, dErrors.CodeNotFound), errors.Is(err, sentinel.ErrNotFound):
		return http.StatusNotFound, "not_found", true
	case dErrors.HasCode(err, dErrors.CodeConflict), errors.Is(err, sentinel.ErrConflict):
		return http.StatusConflict, "conflict", true
	case dErrors.HasCode(err, dErrors.CodePrecondition):
		return http.StatusPreconditionFailed, "precondition_failed", true
	case dErrors.HasCode(err, dErrors.CodeTimeout):
		return http.StatusGatewayTimeout, "timeout", true
	case dErrors.HasCode(err, dErrors.CodeUnavailable), errors.Is(err, sentinel.ErrUnavailable):
		return http.StatusBadGateway, "upstream_unavailable", true
	default:
		// CodeInternal, CodeInvariantViolation, and anything uncoded.
		return http.StatusInternalServerError, "internal_error", false
	}
}

// DecodeAndPrepare decodes a JSON request body into T and runs its Validate
// method. On any failure it writes the error response itself and returns
// ok=false; handlers just return.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	var req T

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(ctx, "request body decode failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "request body must be valid JSON"))
		return nil, false
	}

	if err := PT(&req).Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}

	return &req, true
}
