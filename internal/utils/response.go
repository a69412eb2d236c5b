package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"PARTYCONNECT_BACK-END/internal/dto"
)

// Context keys populated by the auth middleware.
type contextKey string

const (
	ContextKeyUserID contextKey = "user_id"
	ContextKeyEmail  contextKey = "email"
	ContextKeyRole   contextKey = "role"
)

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteErrorResponse writes a JSON error envelope
func WriteErrorResponse(w http.ResponseWriter, status int, errorTitle, detail string) {
	WriteJSONResponse(w, status, dto.ErrorResponse{Error: errorTitle, Detail: detail})
}

// DecodeJSONRequest decodes the request body into dst and writes the error
// response itself on failure, so callers can just return
func DecodeJSONRequest(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return err
	}
	return nil
}

// GetUserIDFromContext extracts the authenticated user id set by the auth
// middleware
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ContextKeyUserID).(uuid.UUID)
	return id, ok
}

// GetUserRoleFromContext extracts the authenticated user's role
func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(ContextKeyRole).(string)
	return role, ok
}

// ParseDate parses ISO 8601 dates (YYYY-MM-DD or RFC3339)
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("date must be ISO 8601 format (YYYY-MM-DD or RFC3339)")
}

// FormatDate renders a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatTimestamp renders a full RFC3339 timestamp
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// FormatTimestampPtr renders an optional timestamp, empty when nil
func FormatTimestampPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatTimestamp(*t)
}
