package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/airdrop-scanner/internal/service"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

// ListAirdropsResponse is the public catalog listing payload.
type ListAirdropsResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Count   int         `json:"count"`
}

// handleListAirdrops handles GET /api/airdrops
func (s *Server) handleListAirdrops(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filters := &storage.AirdropFilters{
		Status:   types.AirdropStatus(query.Get("status")),
		Category: query.Get("category"),
		Friction: types.FrictionLevel(query.Get("friction")),
		Search:   query.Get("search"),
	}
	if v := query.Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "verified must be true or false", nil)
			return
		}
		filters.Verified = &verified
	}
	if v := query.Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "featured must be true or false", nil)
			return
		}
		filters.Featured = &featured
	}
	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "limit must be a non-negative integer", nil)
			return
		}
		filters.Limit = limit
	}
	if v := query.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "offset must be a non-negative integer", nil)
			return
		}
		filters.Offset = offset
	}

	airdrops, err := s.airdropService.List(r.Context(), filters)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, ListAirdropsResponse{
		Success: true,
		Data:    airdrops,
		Count:   len(airdrops),
	})
}

// handleGetAirdrop handles GET /api/airdrops/{id}
func (s *Server) handleGetAirdrop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	airdrop, err := s.airdropService.Get(r.Context(), id)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    airdrop,
	})
}

// handleUpdateAirdrop handles PUT /api/airdrops/{id}
func (s *Server) handleUpdateAirdrop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var update service.AirdropUpdate
	if err := parseJSONBody(r, &update); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body: "+err.Error(), nil)
		return
	}

	airdrop, err := s.airdropService.Update(r.Context(), id, &update)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    airdrop,
	})
}

// handleDeleteAirdrop handles DELETE /api/airdrops/{id}
func (s *Server) handleDeleteAirdrop(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.airdropService.Delete(r.Context(), id); err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      id,
	})
}
