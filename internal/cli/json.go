package cli

import (
	stderrors "errors"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeAPIUnavailable = "API_UNAVAILABLE"
	ErrCodeAPIRejected    = "API_REQUEST_REJECTED"
	ErrCodeAPIError       = "API_ERROR"
	ErrCodeFetchFailed    = "FETCH_FAILED"
	ErrCodeExportFailed   = "EXPORT_FAILED"
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: true,
		Data:    data,
	})
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	})
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	return writeJSONEnvelope(w, JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	})
}

func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
// API status details ride along so scripts can tell a 404 from a 403.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var details interface{}
	var statusErr *api.StatusError
	if stderrors.As(err, &statusErr) {
		details = map[string]interface{}{
			"status":  statusErr.StatusCode,
			"message": statusErr.Message,
		}
	}

	var adminErr *errors.Error
	if stderrors.As(err, &adminErr) {
		return &JSONError{
			Code:       mapErrorCode(adminErr),
			Message:    adminErr.Message,
			Suggestion: adminErr.Suggestion,
			Details:    details,
		}
	}

	return &JSONError{
		Code:    apiCode(err, ErrCodeUnknown),
		Message: err.Error(),
		Details: details,
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(e *errors.Error) string {
	switch e.Code {
	case errors.ErrConfig:
		msgLower := strings.ToLower(e.Message)
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrAPI:
		return apiCode(e.Cause, ErrCodeAPIError)
	case errors.ErrFetch:
		return ErrCodeFetchFailed
	case errors.ErrExport:
		return ErrCodeExportFailed
	case errors.ErrInput:
		return ErrCodeInvalidInput
	}
	return ErrCodeUnknown
}

func apiCode(err error, fallback string) string {
	switch {
	case err == nil:
		return fallback
	case stderrors.Is(err, api.ErrUnavailable):
		return ErrCodeAPIUnavailable
	case stderrors.Is(err, api.ErrRequest):
		return ErrCodeAPIRejected
	}
	return fallback
}
