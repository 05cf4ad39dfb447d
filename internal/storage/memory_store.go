package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/airdrop-scanner/internal/models"
	"github.com/airdrop-scanner/internal/types"
)

// MemoryStore is an in-process AirdropStore used in tests and for running
// the pipeline without Postgres. Reads return copies so callers can never
// mutate the stored record through a returned pointer.
type MemoryStore struct {
	mu       sync.RWMutex
	airdrops map[string]*models.Airdrop
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{airdrops: make(map[string]*models.Airdrop)}
}

// Get retrieves an airdrop by id
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.airdrops[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *a
	return &copied, nil
}

// List retrieves airdrops matching the filters, newest first
func (s *MemoryStore) List(ctx context.Context, filters *AirdropFilters) ([]*models.Airdrop, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Airdrop
	for _, a := range s.airdrops {
		if !matchesFilters(a, filters) {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].DiscoveredAt.After(out[j].DiscoveredAt)
	})

	if filters != nil {
		if filters.Offset > 0 {
			if filters.Offset >= len(out) {
				return nil, nil
			}
			out = out[filters.Offset:]
		}
		if filters.Limit > 0 && len(out) > filters.Limit {
			out = out[:filters.Limit]
		}
	}
	return out, nil
}

// Upsert inserts or replaces an airdrop record by id
func (s *MemoryStore) Upsert(ctx context.Context, airdrop *models.Airdrop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *airdrop
	s.airdrops[airdrop.ID] = &copied
	return nil
}

// Delete removes an airdrop by id
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.airdrops[id]; !ok {
		return ErrNotFound
	}
	delete(s.airdrops, id)
	return nil
}

// Stats aggregates record counts by status and flags
func (s *MemoryStore) Stats(ctx context.Context) (*StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &StoreStats{ByStatus: make(map[types.AirdropStatus]int)}
	for _, a := range s.airdrops {
		stats.Total++
		stats.ByStatus[a.Status]++
		if a.Verified {
			stats.Verified++
		}
		if a.Featured {
			stats.Featured++
		}
		if !a.Rules.IsEmpty() {
			stats.WithRules++
		}
	}
	return stats, nil
}

func matchesFilters(a *models.Airdrop, filters *AirdropFilters) bool {
	if filters == nil {
		return true
	}
	if filters.Status != "" && a.Status != filters.Status {
		return false
	}
	if filters.Category != "" && !containsString(a.Categories, filters.Category) {
		return false
	}
	if filters.Friction != "" && a.FrictionLevel != filters.Friction {
		return false
	}
	if filters.Verified != nil && a.Verified != *filters.Verified {
		return false
	}
	if filters.Featured != nil && a.Featured != *filters.Featured {
		return false
	}
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		if !strings.Contains(strings.ToLower(a.Name), needle) &&
			!strings.Contains(strings.ToLower(a.Symbol), needle) &&
			!strings.Contains(strings.ToLower(a.Description), needle) {
			return false
		}
	}
	return true
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
