package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/dmitrijs2005/gophjournal/internal/common"
	"github.com/google/uuid"
)

// MemoryClient is an in-process Client. It backs the "memory" backend used
// for offline sessions and tests, and follows the same upsert rules as the
// other backends: one record per natural key, canonical ID reused.
type MemoryClient struct {
	mu      sync.RWMutex
	records map[string]map[string]models.Record // user -> id -> record
	now     func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		records: make(map[string]map[string]models.Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source used for CreatedAt and UpdatedAt.
func (m *MemoryClient) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Seed stores records as they are, bypassing timestamps and validation.
func (m *MemoryClient) Seed(userID string, recs ...models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := m.userRecords(userID)
	for _, r := range recs {
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		byID[r.ID] = r
	}
}

func (m *MemoryClient) userRecords(userID string) map[string]models.Record {
	byID, ok := m.records[userID]
	if !ok {
		byID = make(map[string]models.Record)
		m.records[userID] = byID
	}
	return byID
}

func (m *MemoryClient) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryClient) ListKeys(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.records[userID]))
	for _, r := range m.records[userID] {
		keys = append(keys, r.NaturalKey)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryClient) FetchByKeys(ctx context.Context, userID string, keys []string) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k] = struct{}{}
	}
	return m.collect(userID, func(r models.Record) bool {
		_, ok := want[r.NaturalKey]
		return ok
	}), nil
}

func (m *MemoryClient) FetchAll(ctx context.Context, userID string) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.collect(userID, func(models.Record) bool { return true }), nil
}

func (m *MemoryClient) collect(userID string, keep func(models.Record) bool) []models.Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Record, 0)
	for _, r := range m.records[userID] {
		if keep(r) {
			out = append(out, r)
		}
	}
	models.SortByKeyDesc(out)
	return out
}

func (m *MemoryClient) Upsert(ctx context.Context, userID string, rec models.Record) (models.Record, error) {
	if err := ctx.Err(); err != nil {
		return models.Record{}, err
	}
	if err := rec.Validate(); err != nil {
		return models.Record{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := m.userRecords(userID)
	for id, r := range byID {
		if r.NaturalKey != rec.NaturalKey {
			continue
		}
		if rec.ID == "" {
			rec.ID = id
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = r.CreatedAt
		}
		delete(byID, id)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := m.now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	byID[rec.ID] = rec
	return rec, nil
}

func (m *MemoryClient) Delete(ctx context.Context, userID string, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	byID := m.records[userID]
	if _, ok := byID[id]; !ok {
		return false, nil
	}
	delete(byID, id)
	return true, nil
}

func (m *MemoryClient) DeleteOlderThan(ctx context.Context, userID string, kind models.Kind, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if kind != models.KindEntry && kind != models.KindTopic {
		return 0, common.ErrValidation
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, r := range m.records[userID] {
		if r.Kind == kind && r.OlderThan(cutoff) {
			delete(m.records[userID], id)
			n++
		}
	}
	return n, nil
}

func (m *MemoryClient) Close() error { return nil }
