package adapter

import (
	"strings"

	"github.com/airdrop-scanner/internal/types"
)

// chainMarkers maps lexical markers to the chain they indicate. Detection
// order is fixed so the first matching entry becomes the primary chain.
var chainMarkers = []struct {
	chain   types.ChainID
	phrases []string
}{
	{types.ChainSolana, []string{"solana", "spl token", "phantom wallet", "@solana"}},
	{types.ChainEthereum, []string{"ethereum", "eth mainnet", "erc-20", "erc20"}},
	{types.ChainArbitrum, []string{"arbitrum"}},
	{types.ChainOptimism, []string{"optimism", "op mainnet", "superchain"}},
	{types.ChainBase, []string{"base network", "base mainnet", "base chain", "on base"}},
	{types.ChainPolygon, []string{"polygon", "matic"}},
}

// detectChains scans announcement text for chain vocabulary.
func detectChains(text string) []types.ChainID {
	lower := strings.ToLower(text)
	var chains []types.ChainID
	for _, m := range chainMarkers {
		for _, p := range m.phrases {
			if strings.Contains(lower, p) {
				chains = append(chains, m.chain)
				break
			}
		}
	}
	return chains
}

func primaryChain(chains []types.ChainID) types.ChainID {
	if len(chains) == 0 {
		return ""
	}
	return chains[0]
}
