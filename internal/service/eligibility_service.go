package service

import (
	"fmt"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// EligibilityService matches a wallet's activity snapshot against airdrop
// rule predicates. Evaluation is a pure function over its inputs.
type EligibilityService struct{}

// NewEligibilityService creates an eligibility service.
func NewEligibilityService() *EligibilityService {
	return &EligibilityService{}
}

// Evaluate checks every populated predicate field and collects all failures.
// No check short-circuits the others, so the result explains every gap.
func (s *EligibilityService) Evaluate(activity *models.WalletActivity, airdrop *models.Airdrop) models.EligibilityResult {
	result := models.EligibilityResult{
		AirdropID:         airdrop.ID,
		AirdropName:       airdrop.Name,
		EstimatedValueUSD: airdrop.EstimatedValueUSD,
		ClaimURL:          airdrop.ClaimURL,
		FrictionLevel:     airdrop.FrictionLevel,
		Categories:        airdrop.Categories,
	}

	rules := airdrop.Rules
	if rules.IsEmpty() {
		result.Eligible = true
		result.Reason = "No on-chain requirements; open to all wallets"
		return result
	}

	var missing []string

	for _, program := range rules.RequiredPrograms {
		if !activity.HasProgram(program) {
			missing = append(missing, fmt.Sprintf("No interaction with required program %s", program))
		}
	}

	for _, req := range rules.RequiredTokens {
		label := req.Symbol
		if label == "" {
			label = req.Mint
		}
		balance, held := activity.TokenBalances[req.Mint]
		if !held {
			missing = append(missing, fmt.Sprintf("Wallet does not hold required token %s", label))
			continue
		}
		if req.MinBalance > 0 && balance < req.MinBalance {
			missing = append(missing, fmt.Sprintf("Holds %.4f of %s, requires at least %.4f", balance, label, req.MinBalance))
		}
	}

	for _, mint := range rules.RequiredNFTs {
		if !activity.HasNFT(mint) {
			missing = append(missing, fmt.Sprintf("Wallet does not hold an NFT from collection %s", mint))
		}
	}

	if rules.MinTransactions > 0 {
		total := activity.TotalTransactions()
		if total < rules.MinTransactions {
			missing = append(missing, fmt.Sprintf("Requires at least %d transactions, wallet has %d", rules.MinTransactions, total))
		}
	}

	for _, action := range rules.GovernanceActions {
		if !activity.HasGovernanceAction(action) {
			missing = append(missing, fmt.Sprintf("Missing governance action: %s", action))
		}
	}

	for _, bridge := range rules.RequiredBridges {
		if !activity.HasBridge(bridge) {
			missing = append(missing, fmt.Sprintf("No usage of required bridge %s", bridge))
		}
	}

	// There is no automated testnet-activity signal, so this predicate is
	// always treated as unsatisfied. Conservative on purpose.
	if rules.TestnetParticipation {
		missing = append(missing, "Testnet participation requires manual verification")
	}

	// Absence of timestamps is not disqualifying; only explicit
	// contradicting data fails a time-window check.
	if rules.EarliestTransaction != nil && activity.LastTransaction != nil {
		if activity.LastTransaction.Before(*rules.EarliestTransaction) {
			missing = append(missing, fmt.Sprintf("No activity after required start date %s", rules.EarliestTransaction.Format("2006-01-02")))
		}
	}
	if rules.LatestTransaction != nil && activity.FirstTransaction != nil {
		if activity.FirstTransaction.After(*rules.LatestTransaction) {
			missing = append(missing, fmt.Sprintf("No activity before snapshot date %s", rules.LatestTransaction.Format("2006-01-02")))
		}
	}

	result.MissingRequirements = missing
	result.Eligible = len(missing) == 0
	if result.Eligible {
		result.Reason = "All requirements satisfied"
	} else {
		result.Reason = fmt.Sprintf("%d requirement(s) not met", len(missing))
	}
	return result
}

// EvaluateAll evaluates the wallet against every live airdrop. Order of
// results is not a contract.
func (s *EligibilityService) EvaluateAll(activity *models.WalletActivity, airdrops []*models.Airdrop) []models.EligibilityResult {
	results := make([]models.EligibilityResult, 0, len(airdrops))
	for _, a := range airdrops {
		if a.Status != types.StatusLive {
			continue
		}
		results = append(results, s.Evaluate(activity, a))
	}
	return results
}

// TotalEstimatedValue sums the point estimates of eligible results only.
func TotalEstimatedValue(results []models.EligibilityResult) float64 {
	total := 0.0
	for _, r := range results {
		if r.Eligible && r.EstimatedValueUSD != nil {
			total += *r.EstimatedValueUSD
		}
	}
	return total
}
