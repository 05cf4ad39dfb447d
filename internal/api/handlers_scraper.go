package api

import (
	"net/http"
	"time"

	"github.com/airdrop-scanner/internal/service"
	"github.com/airdrop-scanner/internal/types"
)

// TriggerScraperRequest selects the adapters and limits for a manual run.
type TriggerScraperRequest struct {
	Sources       []types.SourceType `json:"sources,omitempty"`
	Limit         int                `json:"limit,omitempty"`
	Chains        []types.ChainID    `json:"chains,omitempty"`
	MinConfidence float64            `json:"minConfidence,omitempty"`
}

// handleTriggerScraper handles POST /api/scraper/run
func (s *Server) handleTriggerScraper(w http.ResponseWriter, r *http.Request) {
	var req TriggerScraperRequest
	if r.ContentLength > 0 {
		if err := parseJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body: "+err.Error(), nil)
			return
		}
	}

	summary, err := s.discoveryService.Run(r.Context(), service.RunOptions{
		Sources:       req.Sources,
		Limit:         req.Limit,
		Chains:        req.Chains,
		MinConfidence: req.MinConfidence,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err.Error(), nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"run":     summary,
	})
}

// handleScraperStatus handles GET /api/scraper/run
func (s *Server) handleScraperStatus(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"success": true,
		"nextRun": s.discoveryService.NextScheduledRun(r.Context()).Format(time.RFC3339),
	}

	if last, ok := s.discoveryService.LastRun(r.Context()); ok {
		response["lastRun"] = last
	}

	if history, err := s.discoveryService.RunHistory(r.Context(), 20); err == nil && len(history) > 0 {
		response["history"] = history
	}

	if stats, err := s.airdropService.Stats(r.Context()); err == nil {
		response["stats"] = stats
	}

	respondJSON(w, http.StatusOK, response)
}
