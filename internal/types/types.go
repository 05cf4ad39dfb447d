// Package types provides common type definitions for the airdrop scanner system.
package types

// AirdropStatus represents the lifecycle status of an airdrop record
type AirdropStatus string

const (
	// StatusLive represents an airdrop that is currently claimable
	StatusLive AirdropStatus = "live"
	// StatusUpcoming represents an announced airdrop not yet claimable
	StatusUpcoming AirdropStatus = "upcoming"
	// StatusEnded represents an airdrop whose claim window has closed
	StatusEnded AirdropStatus = "ended"
	// StatusUnverified represents a discovered airdrop awaiting verification
	StatusUnverified AirdropStatus = "unverified"
)

// ClaimType represents where the claim flow happens
type ClaimType string

const (
	// ClaimOnChain represents claims executed through an on-chain transaction
	ClaimOnChain ClaimType = "on-chain"
	// ClaimOffChain represents claims executed through a website or form
	ClaimOffChain ClaimType = "off-chain"
	// ClaimMixed represents claims requiring both on-chain and off-chain steps
	ClaimMixed ClaimType = "mixed"
)

// FrictionLevel represents the qualitative difficulty of claiming
type FrictionLevel string

const (
	// FrictionLow represents a single-step claim
	FrictionLow FrictionLevel = "low"
	// FrictionMedium represents a claim with a few manual steps
	FrictionMedium FrictionLevel = "medium"
	// FrictionHigh represents quest/points style multi-step campaigns
	FrictionHigh FrictionLevel = "high"
)

// SourceType identifies the external surface a candidate was discovered on
type SourceType string

const (
	// SourceGitHub represents source-control release and issue feeds
	SourceGitHub SourceType = "github"
	// SourceRSS represents blog RSS/Atom feeds
	SourceRSS SourceType = "rss"
	// SourceSocial represents social-media timeline posts
	SourceSocial SourceType = "social"
	// SourceForum represents forum/subreddit community posts
	SourceForum SourceType = "forum"
	// SourceSearch represents generic web search results
	SourceSearch SourceType = "search"
	// SourceManual represents records entered through the admin path
	SourceManual SourceType = "manual"
)

// ChainID represents supported blockchain networks
type ChainID string

const (
	// ChainEthereum represents the Ethereum mainnet
	ChainEthereum ChainID = "ethereum"
	// ChainSolana represents the Solana network
	ChainSolana ChainID = "solana"
	// ChainArbitrum represents the Arbitrum network
	ChainArbitrum ChainID = "arbitrum"
	// ChainOptimism represents the Optimism network
	ChainOptimism ChainID = "optimism"
	// ChainBase represents the Base network
	ChainBase ChainID = "base"
	// ChainPolygon represents the Polygon network
	ChainPolygon ChainID = "polygon"
)

// GovernanceAction represents a kind of governance participation
type GovernanceAction string

const (
	// GovernanceVote represents voting on a governance proposal
	GovernanceVote GovernanceAction = "vote"
	// GovernanceDelegate represents delegating voting power
	GovernanceDelegate GovernanceAction = "delegate"
	// GovernancePropose represents authoring a proposal
	GovernancePropose GovernanceAction = "propose"
)

// ServiceError represents a structured error response
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}
