package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockStore is an in-memory Store for tests. Setting SaveErr makes every
// SaveConfiguration and UpdateConfiguration call fail with that error.
type MockStore struct {
	mu       sync.RWMutex
	records  map[string]*Record
	profiles map[string]*Profile

	SaveErr     error
	SaveCalls   int
	UpdateCalls int
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		records:  make(map[string]*Record),
		profiles: make(map[string]*Profile),
	}
}

func (m *MockStore) SaveConfiguration(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if existing, ok := m.records[rec.ID]; ok {
		if existing.UserID != rec.UserID {
			return errors.New("configuration owned by another user")
		}
		rec.CreatedAt = existing.CreatedAt
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	r := *rec
	m.records[r.ID] = &r
	return nil
}

func (m *MockStore) UpdateConfiguration(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	existing, ok := m.records[rec.ID]
	if !ok || existing.UserID != rec.UserID {
		return ErrNotFound
	}
	rec.CreatedAt = existing.CreatedAt
	rec.UpdatedAt = time.Now().UTC()

	r := *rec
	m.records[r.ID] = &r
	return nil
}

func (m *MockStore) GetConfiguration(_ context.Context, userID, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok || rec.UserID != userID {
		return nil, ErrNotFound
	}
	r := *rec
	return &r, nil
}

func (m *MockStore) ListConfigurations(_ context.Context, userID string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Record
	for _, rec := range m.records {
		if rec.UserID == userID {
			r := *rec
			out = append(out, &r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MockStore) DeleteConfiguration(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || rec.UserID != userID {
		return ErrNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MockStore) GetProfile(_ context.Context, userID string) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockStore) UpsertProfile(_ context.Context, p *Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.UpdatedAt = time.Now().UTC()
	cp := *p
	m.profiles[cp.UserID] = &cp
	return nil
}

func (m *MockStore) Close() error { return nil }

var _ Store = (*MockStore)(nil)
var _ Store = (*SQLiteStore)(nil)
