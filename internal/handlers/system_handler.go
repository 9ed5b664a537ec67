package handlers

import (
	"net/http"
	"sort"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/stockanalyzer/internal/common"
	"github.com/ternarybob/stockanalyzer/internal/interfaces"
)

// SystemHandler serves version, health and the JSON fallback for unknown API routes.
type SystemHandler struct {
	jobs   interfaces.SchedulerService
	logger arbor.ILogger
}

func NewSystemHandler(jobs interfaces.SchedulerService, logger arbor.ILogger) *SystemHandler {
	return &SystemHandler{jobs: jobs, logger: logger}
}

// HealthResponse reports whether the rating jobs can fire and which of them failed last time.
type HealthResponse struct {
	Status     string   `json:"status"`
	Scheduler  bool     `json:"scheduler_running"`
	Jobs       int      `json:"jobs"`
	FailedJobs []string `json:"failed_jobs,omitempty"`
}

func (h *SystemHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"service": "stockanalyzer",
		"version": common.GetVersion(),
		"full":    common.GetFullVersion(),
	})
}

// HealthHandler answers 503 while the scheduler is stopped, since no rating or
// quarterly check runs in that state.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	resp := h.health()
	WriteJSON(w, resp.statusCode(), resp)
}

func (h *SystemHandler) health() HealthResponse {
	resp := HealthResponse{Status: "ok"}
	if h.jobs == nil {
		resp.Status = "degraded"
		return resp
	}

	resp.Scheduler = h.jobs.IsRunning()
	statuses := h.jobs.GetAllJobStatuses()
	resp.Jobs = len(statuses)
	for name, st := range statuses {
		if st != nil && st.LastError != "" {
			resp.FailedJobs = append(resp.FailedJobs, name)
		}
	}
	sort.Strings(resp.FailedJobs)

	if !resp.Scheduler {
		resp.Status = "degraded"
	}
	return resp
}

func (r HealthResponse) statusCode() int {
	if r.Status != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// NotFoundHandler is the catch-all for /api/ paths no route claims.
func (h *SystemHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("No API route")
	WriteError(w, http.StatusNotFound, "no route for "+r.URL.Path)
}
