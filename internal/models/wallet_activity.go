package models

import (
	"time"

	"github.com/airdrop-scanner/internal/types"
)

// WalletActivity is a request-scoped snapshot of observed on-chain activity
// for a single wallet. It is produced fresh per eligibility check by an
// external scanner and never persisted.
type WalletActivity struct {
	Address           string                     `json:"address"`
	Programs          []string                   `json:"programs,omitempty"`
	TokenBalances     map[string]float64         `json:"tokenBalances,omitempty"`
	NFTMints          []string                   `json:"nftMints,omitempty"`
	GovernanceActions []types.GovernanceAction   `json:"governanceActions,omitempty"`
	BridgesUsed       []string                   `json:"bridgesUsed,omitempty"`
	TransactionCounts map[string]int             `json:"transactionCounts,omitempty"`
	FirstTransaction  *time.Time                 `json:"firstTransaction,omitempty"`
	LastTransaction   *time.Time                 `json:"lastTransaction,omitempty"`
}

// TotalTransactions sums per-program transaction counts.
func (a *WalletActivity) TotalTransactions() int {
	total := 0
	for _, n := range a.TransactionCounts {
		total += n
	}
	return total
}

// HasProgram reports whether the wallet interacted with the given program.
func (a *WalletActivity) HasProgram(program string) bool {
	for _, p := range a.Programs {
		if p == program {
			return true
		}
	}
	return false
}

// HasNFT reports whether the wallet holds the given NFT mint or an item of
// the given collection.
func (a *WalletActivity) HasNFT(mint string) bool {
	for _, m := range a.NFTMints {
		if m == mint {
			return true
		}
	}
	return false
}

// HasBridge reports whether the wallet used the given bridge.
func (a *WalletActivity) HasBridge(bridge string) bool {
	for _, b := range a.BridgesUsed {
		if b == bridge {
			return true
		}
	}
	return false
}

// HasGovernanceAction reports whether the wallet performed the given action kind.
func (a *WalletActivity) HasGovernanceAction(action types.GovernanceAction) bool {
	for _, g := range a.GovernanceActions {
		if g == action {
			return true
		}
	}
	return false
}
