package service

import (
	"context"
	"errors"
	"time"

	"github.com/airdrop-scanner/internal/logging"
	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/storage"
	"github.com/airdrop-scanner/internal/types"
)

// AirdropService wraps the store with the read/update semantics the API
// exposes: default-live listing, rules stripped from list output, and the
// administrative partial update path.
type AirdropService struct {
	store storage.AirdropStore
	cache *storage.CacheService
}

// NewAirdropService creates an airdrop service. cache is optional.
func NewAirdropService(store storage.AirdropStore, cache *storage.CacheService) *AirdropService {
	return &AirdropService{store: store, cache: cache}
}

// ErrAirdropNotFound is returned for unknown ids.
var ErrAirdropNotFound = &types.ServiceError{
	Code:    "AIRDROP_NOT_FOUND",
	Message: "airdrop not found",
}

// List returns airdrops matching the filters with the rules field stripped.
// An unset status defaults to live so the public listing shows claimable
// airdrops unless the caller asks otherwise.
func (s *AirdropService) List(ctx context.Context, filters *storage.AirdropFilters) ([]*models.Airdrop, error) {
	if filters == nil {
		filters = &storage.AirdropFilters{}
	}
	if filters.Status == "" {
		filters.Status = types.StatusLive
	}

	if s.cache != nil {
		key := s.cache.GenerateListKey(filters)
		var cached []*models.Airdrop
		if found, err := s.cache.Get(ctx, key, &cached); err == nil && found {
			return cached, nil
		}
	}

	airdrops, err := s.store.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	for _, a := range airdrops {
		a.Rules = nil
	}

	if s.cache != nil {
		key := s.cache.GenerateListKey(filters)
		if err := s.cache.Set(ctx, key, airdrops); err != nil {
			logging.FromContext(ctx).WithError(err).Warn("Failed to cache airdrop list")
		}
	}
	return airdrops, nil
}

// Get returns one airdrop with its rules intact.
func (s *AirdropService) Get(ctx context.Context, id string) (*models.Airdrop, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAirdropNotFound
		}
		return nil, err
	}
	return a, nil
}

// AirdropUpdate is the administrative partial-update payload. Nil fields
// are left untouched.
type AirdropUpdate struct {
	Name              *string              `json:"name,omitempty"`
	Symbol            *string              `json:"symbol,omitempty"`
	Description       *string              `json:"description,omitempty"`
	Website           *string              `json:"website,omitempty"`
	TwitterURL        *string              `json:"twitterUrl,omitempty"`
	DiscordURL        *string              `json:"discordUrl,omitempty"`
	ClaimURL          *string              `json:"claimUrl,omitempty"`
	ClaimType         *types.ClaimType     `json:"claimType,omitempty"`
	EstimatedValueUSD *float64             `json:"estimatedValueUsd,omitempty"`
	FrictionLevel     *types.FrictionLevel `json:"frictionLevel,omitempty"`
	Status            *types.AirdropStatus `json:"status,omitempty"`
	Verified          *bool                `json:"verified,omitempty"`
	Featured          *bool                `json:"featured,omitempty"`
	Categories        []string             `json:"categories,omitempty"`
	Rules             *models.AirdropRule  `json:"rules,omitempty"`
}

// Update applies a partial administrative update. Unlike the automated
// merge path, this may set any field in any direction, including revoking
// verified or demoting status.
func (s *AirdropService) Update(ctx context.Context, id string, update *AirdropUpdate) (*models.Airdrop, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		a.Name = *update.Name
	}
	if update.Symbol != nil {
		a.Symbol = *update.Symbol
	}
	if update.Description != nil {
		a.Description = *update.Description
	}
	if update.Website != nil {
		a.Website = *update.Website
	}
	if update.TwitterURL != nil {
		a.TwitterURL = *update.TwitterURL
	}
	if update.DiscordURL != nil {
		a.DiscordURL = *update.DiscordURL
	}
	if update.ClaimURL != nil {
		a.ClaimURL = *update.ClaimURL
	}
	if update.ClaimType != nil {
		a.ClaimType = *update.ClaimType
	}
	if update.EstimatedValueUSD != nil {
		a.EstimatedValueUSD = update.EstimatedValueUSD
	}
	if update.FrictionLevel != nil {
		a.FrictionLevel = *update.FrictionLevel
	}
	if update.Status != nil {
		a.Status = *update.Status
	}
	if update.Verified != nil {
		a.Verified = *update.Verified
		if *update.Verified {
			now := time.Now()
			a.LastVerifiedAt = &now
		}
	}
	if update.Featured != nil {
		a.Featured = *update.Featured
	}
	if update.Categories != nil {
		a.Categories = update.Categories
	}
	if update.Rules != nil {
		a.Rules = update.Rules
	}
	a.UpdatedAt = time.Now()

	if err := s.store.Upsert(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return a, nil
}

// Delete removes an airdrop. Deletion is an explicit administrative
// action; nothing in the pipeline deletes records.
func (s *AirdropService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrAirdropNotFound
		}
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Stats returns aggregate store counts.
func (s *AirdropService) Stats(ctx context.Context) (*storage.StoreStats, error) {
	return s.store.Stats(ctx)
}

func (s *AirdropService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateLists(ctx); err != nil {
		logging.FromContext(ctx).WithError(err).Warn("Failed to invalidate list cache")
	}
}
