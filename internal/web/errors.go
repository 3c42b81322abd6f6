package web

// errors.go maps errors to API responses.
//
// Every error is logged with its technical detail and the request id, and
// the client receives a UserMessage in the ErrorResponse envelope. The code
// is stable so clients can switch on it.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/tablesort/internal/htmltable"
	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/sorting"
	"github.com/JonMunkholm/tablesort/internal/store"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

var (
	// errBadRequest marks malformed request bodies and parameters.
	errBadRequest = errors.New("bad request")

	// errTooMany marks requests over the configured row or value limits.
	errTooMany = errors.New("too many values")

	// errUnknownColumn is returned when an HTML sort names a missing column.
	errUnknownColumn = errors.New("unknown column")
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// UserMessage is the client-facing form of an error.
type UserMessage struct {
	Status  int
	Code    string
	Message string
	Action  string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []struct {
	target error
	msg    UserMessage
}{
	{store.ErrNotFound, UserMessage{http.StatusNotFound, "PROFILE_NOT_FOUND",
		"Profile not found", "List the profiles with GET /api/profiles"}},
	{store.ErrInvalidName, UserMessage{http.StatusBadRequest, "PROFILE_INVALID_NAME",
		"Invalid profile name", "Use 1-64 letters, digits, '.', '_' or '-'"}},
	{widget.ErrInvalidRule, UserMessage{http.StatusBadRequest, "RULE_INVALID",
		"Row rule does not compile", "rowClass must yield a string, rowCss a string or map"}},
	{widget.ErrInvalidOption, UserMessage{http.StatusBadRequest, "OPTION_INVALID",
		"Invalid table option", ""}},
	{sorting.ErrUnsupportedFormat, UserMessage{http.StatusBadRequest, "DATE_FORMAT_UNSUPPORTED",
		"Date format is not supported", "Use moment tokens such as YYYY-MM-DD HH:mm"}},
	{sorting.ErrUnknownLocale, UserMessage{http.StatusBadRequest, "LOCALE_UNKNOWN",
		"Date locale is not known", "Use a locale such as en, de or fr_FR"}},
	{sorting.ErrColumnRange, UserMessage{http.StatusBadRequest, "COLUMN_RANGE",
		"Sort column is out of range", "Every row must have the sorted columns"}},
	{errUnknownColumn, UserMessage{http.StatusBadRequest, "COLUMN_UNKNOWN",
		"Sort column not found", "Name a header or give a column index"}},
	{htmltable.ErrNoTable, UserMessage{http.StatusBadRequest, "HTML_NO_TABLE",
		"No table found in the document", ""}},
	{errBusy, UserMessage{http.StatusServiceUnavailable, "SORT_BUSY",
		"Too many sorts are running", "Please try again in a few moments"}},
	{errTooMany, UserMessage{http.StatusRequestEntityTooLarge, "REQUEST_TOO_MANY",
		"Too many values in one request", "Split the request"}},
	{errBadRequest, UserMessage{http.StatusBadRequest, "REQUEST_INVALID",
		"Malformed request", "Check the request body against the API"}},
}

var internalError = UserMessage{http.StatusInternalServerError, "INTERNAL",
	"Internal error", "Please try again"}

// MapError converts err to its client-facing message.
func MapError(err error) UserMessage {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return UserMessage{http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE",
			"Request body is too large", "Send a smaller table"}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return internalError
}

// respondError logs err and writes its mapped response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", msg.Status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if msg.Status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	writeJSONStatus(w, msg.Status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// writeJSON encodes v as a 200 response.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Component("web").Error("json encode error", "error", err)
	}
}
