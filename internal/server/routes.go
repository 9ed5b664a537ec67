package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/stockanalyzer/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - System
	mux.HandleFunc("/api/version", s.app.SystemHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.SystemHandler.HealthHandler)

	// API routes - Fundamental data
	mux.HandleFunc("/api/fundamentals", s.handleFundamentalsRoute)                                        // GET (list), POST (save)
	mux.HandleFunc("/api/fundamentals/enable-ratings", s.app.FundamentalsHandler.EnableAllRatingsHandler) // POST
	mux.HandleFunc(handlers.FundamentalsPrefix, s.handleFundamentalRoutes)                                // /{symbol} and subpaths

	// API routes - Quotes
	mux.HandleFunc(handlers.ExchangeRatePrefix, s.app.ExchangeRateHandler.GetHandler) // GET /{symbol}?from=&to=

	// API routes - Scheduled jobs
	mux.HandleFunc("/api/jobs", s.app.SchedulerHandler.ListJobsHandler)
	mux.HandleFunc(handlers.JobsPrefix, s.handleJobRoutes)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.SystemHandler.NotFoundHandler)

	return mux
}

// handleFundamentalsRoute routes /api/fundamentals requests (list and save)
func (s *Server) handleFundamentalsRoute(w http.ResponseWriter, r *http.Request) {
	RouteResourceCollection(w, r,
		s.app.FundamentalsHandler.ListHandler,
		s.app.FundamentalsHandler.SaveHandler,
	)
}

// handleFundamentalRoutes routes /api/fundamentals/{symbol} requests
func (s *Server) handleFundamentalRoutes(w http.ResponseWriter, r *http.Request) {
	// POST /api/fundamentals/{symbol}/refresh
	// POST /api/fundamentals/{symbol}/enable-ratings
	if RouteByPathSuffix(w, r, handlers.FundamentalsPrefix, []PathSuffixRouter{
		{Suffix: "/refresh", Handler: s.app.FundamentalsHandler.RefreshHandler},
		{Suffix: "/enable-ratings", Handler: s.app.FundamentalsHandler.EnableRatingsHandler},
	}) {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, handlers.FundamentalsPrefix)
	if rest == "" || strings.Contains(rest, "/") {
		s.app.SystemHandler.NotFoundHandler(w, r)
		return
	}

	// GET|DELETE /api/fundamentals/{symbol}
	RouteResourceItem(w, r,
		s.app.FundamentalsHandler.GetHandler,
		s.app.FundamentalsHandler.DeleteHandler,
	)
}

// handleJobRoutes routes /api/jobs/{name} requests
func (s *Server) handleJobRoutes(w http.ResponseWriter, r *http.Request) {
	// POST /api/jobs/{name}/trigger
	if RouteByPathSuffix(w, r, handlers.JobsPrefix, []PathSuffixRouter{
		{Suffix: "/trigger", Handler: s.app.SchedulerHandler.TriggerJobHandler},
	}) {
		return
	}

	s.app.SystemHandler.NotFoundHandler(w, r)
}
