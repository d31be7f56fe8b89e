package web

// errors.go maps errors to client-facing messages and writes JSON error
// responses.
//
// Error codes, for support reference:
//
//	DB001   duplicate record (natural key or unique constraint)
//	DB002   invalid value for a column
//	DB003   unknown column
//	DB004   database unavailable
//	DB005   connection interrupted
//	DB006   timeout
//	DB007   query failed
//	CFG001  backend misconfigured
//	CFG002  backend not implemented
//	TBL001  unknown table
//	AUTH001 invalid credentials
//	REQ001  malformed request
//	EXP001  invalid export request
//	EXP002  export failed
//	EXP003  too many exports in progress
//	RATE001 rate limited
//	ERR000  anything else; check the server log for the technical error
//
// Typed errors are matched first with errors.As; the remaining errors fall
// through to case-insensitive substring patterns. The first match wins.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/I2Cprogramacion/SEI-sub000/internal/export"
	"github.com/I2Cprogramacion/SEI-sub000/internal/logging"
	"github.com/I2Cprogramacion/SEI-sub000/internal/store"
)

// UserMessage is the client-facing description of an error.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// requestError is a malformed request detected by a handler.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error { return &requestError{msg: msg} }

var (
	msgConfig = UserMessage{
		Message: "The storage backend is not configured correctly",
		Action:  "Check DB_KIND and the connection settings",
		Code:    "CFG001",
	}
	msgNotImplemented = UserMessage{
		Message: "The configured storage backend is not available",
		Action:  "Use a postgresql or sqlite backend",
		Code:    "CFG002",
	}
	msgUnavailable = UserMessage{
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
		Code:    "DB004",
	}
	msgInvalidCredentials = UserMessage{
		Message: "Invalid email or password",
		Action:  "Check your credentials and try again",
		Code:    "AUTH001",
	}
	msgUnknownTable = UserMessage{
		Message: "The requested table does not exist",
		Action:  "Verify the table name is correct",
		Code:    "TBL001",
	}
	msgQuery = UserMessage{
		Message: "The database rejected the query",
		Action:  "Review the statement and try again",
		Code:    "DB007",
	}
	msgExportBusy = UserMessage{
		Message: "Too many exports are in progress",
		Action:  "Please try again in a few moments",
		Code:    "EXP003",
	}
	msgExportFailed = UserMessage{
		Message: "The export could not be generated",
		Action:  "Please try again or contact support",
		Code:    "EXP002",
	}
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"export could not be generated", msgExportFailed},
	{"already exists", UserMessage{"A record with this key already exists", "Search for the existing record instead of registering again", "DB001"}},
	{"duplicate key", UserMessage{"A record with this key already exists", "Search for the existing record instead of registering again", "DB001"}},
	{"unique constraint", UserMessage{"This value must be unique but already exists", "Use a different email address", "DB001"}},
	{"invalid number", UserMessage{"Invalid number format detected", "Remove currency symbols and use a plain decimal", "DB002"}},
	{"invalid date", UserMessage{"Invalid date format detected", "Use YYYY-MM-DD", "DB002"}},
	{"invalid enum", UserMessage{"Value is not in the allowed list", "Use true/false or si/no", "DB002"}},
	{"column not found", UserMessage{"The request contains an unknown field", "Remove fields that are not part of the record", "DB003"}},
	{"no fields to insert", UserMessage{"The request contains no values", "Send at least one field", "REQ001"}},
	{"connection refused", msgUnavailable},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB005"}},
	{"deadline exceeded", UserMessage{"Operation timed out", "Please try again later", "DB006"}},
	{"timeout", UserMessage{"Operation timed out", "Please try again later", "DB006"}},
	{"rate limit", UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts an error to a client-facing message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var (
		reqErr  *requestError
		valErr  *export.ValidationError
		confErr *store.ConfigurationError
		connErr *store.ConnectionError
		qErr    *store.QueryError
	)
	switch {
	case errors.As(err, &reqErr):
		return UserMessage{Message: reqErr.msg, Action: "Fix the request and try again", Code: "REQ001"}
	case errors.As(err, &valErr):
		return UserMessage{Message: valErr.Message, Action: "Check the type, fields and format parameters", Code: "EXP001"}
	case errors.Is(err, export.ErrBusy):
		return msgExportBusy
	case errors.Is(err, store.ErrNotImplemented):
		return msgNotImplemented
	case errors.As(err, &confErr):
		return msgConfig
	case errors.As(err, &connErr):
		return msgUnavailable
	case errors.Is(err, store.ErrUnknownTable):
		return msgUnknownTable
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if errors.As(err, &qErr) {
		return msgQuery
	}
	return defaultMessage
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		reqErr *requestError
		qErr   *store.QueryError
	)
	switch {
	case errors.As(err, &reqErr), export.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotImplemented):
		return http.StatusNotImplemented
	case errors.Is(err, store.ErrUnknownTable):
		return http.StatusNotFound
	case store.IsConnection(err), errors.Is(err, export.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.As(err, &qErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and writes the mapped message.
// A zero status is derived from the error.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	respondMessage(w, msg, status)
}

// respondMessage writes msg as an ErrorResponse.
func respondMessage(w http.ResponseWriter, msg UserMessage, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
