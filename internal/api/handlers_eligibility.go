package api

import (
	"net/http"
	"regexp"

	"github.com/ethereum/go-ethereum/common"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

// Solana addresses are base58, 32-44 characters.
var solanaAddressRegex = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

// CheckEligibilityRequest asks whether a wallet qualifies for one airdrop
// or, with no airdropId, for everything currently live.
type CheckEligibilityRequest struct {
	WalletAddress string `json:"walletAddress"`
	AirdropID     string `json:"airdropId,omitempty"`
}

// validWalletAddress accepts EVM hex addresses and Solana base58 addresses.
func validWalletAddress(address string) bool {
	return common.IsHexAddress(address) || solanaAddressRegex.MatchString(address)
}

// handleCheckEligibility handles POST /api/eligibility/check
func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	var req CheckEligibilityRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body: "+err.Error(), nil)
		return
	}
	if !validWalletAddress(req.WalletAddress) {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid wallet address format", map[string]interface{}{
			"walletAddress": req.WalletAddress,
		})
		return
	}
	if s.scanner == nil || !s.scanner.Configured() {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Wallet activity scanner is not configured", nil)
		return
	}

	activity, err := s.scanner.Scan(r.Context(), req.WalletAddress)
	if err != nil {
		respondError(w, http.StatusBadGateway, ErrCodeServiceUnavailable, "Failed to scan wallet activity: "+err.Error(), nil)
		return
	}

	if req.AirdropID != "" {
		s.checkSingleAirdrop(w, r, activity, req.AirdropID)
		return
	}
	s.checkAllAirdrops(w, r, activity)
}

func (s *Server) checkSingleAirdrop(w http.ResponseWriter, r *http.Request, activity *models.WalletActivity, airdropID string) {
	airdrop, err := s.airdropService.Get(r.Context(), airdropID)
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	// Per-rule detail stays internal; callers only see the verdict and
	// the summary reason.
	result := s.eligibilityService.Evaluate(activity, airdrop).Redacted()

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result,
	})
}

func (s *Server) checkAllAirdrops(w http.ResponseWriter, r *http.Request, activity *models.WalletActivity) {
	airdrops, err := s.airdropService.List(r.Context(), &storage.AirdropFilters{Status: types.StatusLive})
	if err != nil {
		status, code, message := mapServiceError(err)
		respondError(w, status, code, message, nil)
		return
	}

	// Listing strips rules, so reload each record before evaluation.
	full := make([]*models.Airdrop, 0, len(airdrops))
	for _, a := range airdrops {
		record, err := s.airdropService.Get(r.Context(), a.ID)
		if err != nil {
			continue
		}
		full = append(full, record)
	}

	results := s.eligibilityService.EvaluateAll(activity, full)

	eligibleCount := 0
	totalValue := 0.0
	redacted := make([]models.EligibilityResult, 0, len(results))
	for _, result := range results {
		if result.Eligible {
			eligibleCount++
			if result.EstimatedValueUSD != nil {
				totalValue += *result.EstimatedValueUSD
			}
		}
		redacted = append(redacted, result.Redacted())
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":             true,
		"data":                redacted,
		"eligibleCount":       eligibleCount,
		"totalEstimatedValue": totalValue,
	})
}
