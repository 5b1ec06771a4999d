package storage

import (
	"context"
	"sync"

	"github.com/example/provider-matching/internal/models"
)

// HistoryStore retrieves a client's past requests, newest first.
type HistoryStore interface {
	RecentHistory(ctx context.Context, clientID string, limit int) ([]models.HistoryRecord, error)
}

// ProviderDirectory lists the candidate providers for a service type.
// Candidates are already filtered to available providers offering that type.
type ProviderDirectory interface {
	Candidates(ctx context.Context, serviceTypeID string) ([]models.CandidateProvider, error)
}

// MemoryStore backs both interfaces with in-memory data. Used for tests and
// local runs without Postgres.
type MemoryStore struct {
	mu        sync.RWMutex
	history   map[string][]models.HistoryRecord // clientID → newest-first records
	providers map[string][]models.CandidateProvider
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		history:   make(map[string][]models.HistoryRecord),
		providers: make(map[string][]models.CandidateProvider),
	}
}

func (m *MemoryStore) AddHistory(clientID string, recs ...models.HistoryRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history[clientID] = append(m.history[clientID], recs...)
}

func (m *MemoryStore) AddProviders(serviceTypeID string, ps ...models.CandidateProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[serviceTypeID] = append(m.providers[serviceTypeID], ps...)
}

func (m *MemoryStore) RecentHistory(ctx context.Context, clientID string, limit int) ([]models.HistoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	recs := m.history[clientID]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return append([]models.HistoryRecord(nil), recs...), nil
}

func (m *MemoryStore) Candidates(ctx context.Context, serviceTypeID string) ([]models.CandidateProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.CandidateProvider, 0)
	for _, p := range m.providers[serviceTypeID] {
		if p.IsAvailable {
			out = append(out, p)
		}
	}
	return out, nil
}
