package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

// FundamentalsService is the service behind the fundamentals endpoints
type FundamentalsService interface {
	Get(ctx context.Context, symbol string) (*models.FundamentalMetrics, error)
	List(ctx context.Context) ([]*models.FundamentalMetrics, error)
	Save(ctx context.Context, fd *models.FundamentalMetrics) (*models.FundamentalMetrics, error)
	Delete(ctx context.Context, symbol string) error
	Refresh(ctx context.Context, symbol string) (*models.FundamentalMetrics, error)
	EnableAutomaticRating(ctx context.Context, symbol string) (*models.FundamentalMetrics, error)
	EnableAllAutomaticRatings(ctx context.Context) (int, error)
}

// FundamentalsPrefix is the path prefix of single-stock routes
const FundamentalsPrefix = "/api/fundamentals/"

// FundamentalsHandler serves stored fundamental data and rating refreshes
type FundamentalsHandler struct {
	service FundamentalsService
	logger  arbor.ILogger
}

// NewFundamentalsHandler creates a new fundamentals handler
func NewFundamentalsHandler(service FundamentalsService, logger arbor.ILogger) *FundamentalsHandler {
	return &FundamentalsHandler{
		service: service,
		logger:  logger,
	}
}

// ListHandler returns the latest record of every stock
func (h *FundamentalsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	records, err := h.service.List(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

// SaveHandler stores the posted record
func (h *FundamentalsHandler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var fd models.FundamentalMetrics
	if err := json.NewDecoder(r.Body).Decode(&fd); err != nil {
		WriteServiceError(w, h.logger, fmt.Errorf("%w: invalid JSON: %v", ErrBadRequest, err))
		return
	}

	saved, err := h.service.Save(r.Context(), &fd)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, saved)
}

// GetHandler returns the latest record of /api/fundamentals/{symbol}
func (h *FundamentalsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	h.respond(w, r, h.service.Get)
}

// DeleteHandler removes every record of /api/fundamentals/{symbol}
func (h *FundamentalsHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	symbol, ok := h.symbol(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), symbol); err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteSuccess(w, "Deleted "+symbol)
}

// RefreshHandler scrapes and re-rates /api/fundamentals/{symbol}/refresh
func (h *FundamentalsHandler) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	h.respond(w, r, h.service.Refresh)
}

// EnableRatingsHandler re-enables automatic rating of /api/fundamentals/{symbol}/enable-ratings
func (h *FundamentalsHandler) EnableRatingsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	h.respond(w, r, h.service.EnableAutomaticRating)
}

// EnableAllRatingsHandler re-enables automatic rating of every stock
func (h *FundamentalsHandler) EnableAllRatingsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	changed, err := h.service.EnableAllAutomaticRatings(r.Context())
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"changed": changed,
	})
}

func (h *FundamentalsHandler) respond(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*models.FundamentalMetrics, error)) {
	symbol, ok := h.symbol(w, r)
	if !ok {
		return
	}

	fd, err := fn(r.Context(), symbol)
	if err != nil {
		WriteServiceError(w, h.logger, err)
		return
	}
	WriteJSON(w, http.StatusOK, fd)
}

func (h *FundamentalsHandler) symbol(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := PathSegment(r.URL.Path, FundamentalsPrefix)
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return "", false
	}
	return symbol, true
}
