// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger logs internal faults and writes the generic 500 response.
// Details stay in the log; the client only ever sees the generic body.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

// apiError is the JSON body for every failed API call.
type apiError struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// InternalMessage is the only text a client sees for a 500.
const InternalMessage = "Internal Server Error"

// InternalError logs err under op and writes a plain-text 500.
func (e *ErrorLogger) InternalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.log(r, op, err)
	http.Error(w, InternalMessage, http.StatusInternalServerError)
}

// InternalJSON logs err under op and writes a JSON 500.
func (e *ErrorLogger) InternalJSON(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.log(r, op, err)
	WriteJSON(w, http.StatusInternalServerError, apiError{Error: InternalMessage})
}

func (e *ErrorLogger) log(r *http.Request, op string, err error) {
	if e == nil || e.Log == nil {
		return
	}
	e.Log.Error("request failed",
		zap.String("op", op),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
}

// WriteJSON writes v as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Reject writes a client-facing JSON error. msg describes the defect.
func Reject(w http.ResponseWriter, status int, field, msg string) {
	WriteJSON(w, status, apiError{Error: msg, Field: field})
}

// NotFound writes a plain-text 404.
func NotFound(w http.ResponseWriter) {
	http.Error(w, "Not found", http.StatusNotFound)
}
