package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/services/quotes"
	"github.com/ternarybob/stockanalyzer/internal/services/scheduler"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteServiceError maps a service error onto a status code:
// missing records 404, invalid input 400, a running job 409, everything else 500.
func WriteServiceError(w http.ResponseWriter, logger arbor.ILogger, err error) {
	var invalid validator.ValidationErrors
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &invalid):
		status = http.StatusBadRequest
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, scheduler.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, quotes.ErrInvalidRange), errors.Is(err, ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, scheduler.ErrJobRunning):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("Request failed")
	} else {
		logger.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	WriteError(w, status, err.Error())
}

// ErrBadRequest marks malformed request input
var ErrBadRequest = errors.New("bad request")

// PathSegment returns the first path segment after prefix, e.g.
// PathSegment("/api/fundamentals/SAP.DE/refresh", "/api/fundamentals/") is "SAP.DE".
func PathSegment(path, prefix string) string {
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.Index(rest, "/"); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest)
}
