package handler

// RESPONSE ENVELOPE:
// Every API response is a JSON object. Successful responses carry
// "success": true next to the route's fields:
//
//	{"success": true, "data": [...]}
//	{"success": true, "bookmarkId": 42}
//
// (a few routes answer with bare fields, e.g. {"summary": "..."}).
//
// Every error response has the same shape, whatever the status:
//
//	{"success": false, "error": "title is required"}
//
// ERROR MAPPING:
//
//	apperror.ErrValidation      → 400, the validation message
//	apperror.ErrUnauthenticated → 401, "Unauthorized"
//	apperror.ErrNotFound        → 404, the not-found message
//	anything else               → 500, a generic per-route message
//
// The cause of a 500 is logged and never sent to the client.

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/savebox/internal/apperror"
	"github.com/sakif/savebox/internal/auth"
)

// maxBodyBytes bounds a JSON request body. Image uploads have their own limit.
const maxBodyBytes = 1 << 20

// envelope is a response body. writeSuccess adds "success": true.
type envelope map[string]any

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// writeJSON sends data as JSON with the given status code.
//
// Headers and status must be written BEFORE the body: once Encode writes,
// the headers are on the wire and later changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeSuccess sends a 200 envelope with "success": true merged into fields.
func writeSuccess(w http.ResponseWriter, fields envelope) {
	if fields == nil {
		fields = envelope{}
	}
	fields["success"] = true
	writeJSON(w, http.StatusOK, fields)
}

// writeError maps err onto the envelope. fallback is the client-facing
// message for unexpected errors; the real cause only goes to the log.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error, fallback string) {
	status, message := http.StatusInternalServerError, fallback

	var appErr *apperror.AppError
	switch {
	case errors.Is(err, apperror.ErrValidation):
		status, message = http.StatusBadRequest, apperror.ErrValidation.Error()
		if errors.As(err, &appErr) && appErr.Message != "" {
			message = appErr.Message
		}
	case errors.Is(err, apperror.ErrUnauthenticated):
		status, message = http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}

	if status == http.StatusInternalServerError {
		logger.Error(fallback,
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, ErrorResponse{Success: false, Error: message})
}

// decodeJSON reads a single JSON value from the body into dst. A malformed
// or oversized body is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeJSONLimit(w, r, dst, maxBodyBytes)
}

func decodeJSONLimit(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", "request body is too large")
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is required")
		default:
			return apperror.ValidationFailed("body", "Invalid JSON body")
		}
	}
	return nil
}

// ownerKey returns the session's owner key, or "" for anonymous requests.
func ownerKey(r *http.Request) string {
	key, _ := auth.OwnerKeyFromContext(r.Context())
	return key
}
