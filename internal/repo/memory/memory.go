package memory

import (
	"context"
	"sync"

	"github.com/hamed0406/timetablesvc/internal/repo"
)

type Store struct {
	mu     sync.RWMutex
	byCode map[string]string
	byURL  map[string]string // first code allocated for each long URL
}

func New() *Store {
	return &Store{
		byCode: make(map[string]string),
		byURL:  make(map[string]string),
	}
}

func (m *Store) FindByCode(ctx context.Context, code string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byCode[code]
	if !ok {
		return "", repo.ErrNotFound
	}
	return u, nil
}

func (m *Store) FindByURL(ctx context.Context, longURL string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.byURL[longURL]
	if !ok {
		return "", repo.ErrNotFound
	}
	return c, nil
}

func (m *Store) Insert(ctx context.Context, code, longURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byCode[code]; taken {
		return repo.ErrConflict
	}
	m.byCode[code] = longURL
	if _, ok := m.byURL[longURL]; !ok {
		m.byURL[longURL] = code
	}
	return nil
}

// Len is the number of stored mappings.
func (m *Store) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byCode)
}

var _ repo.URLStore = (*Store)(nil)
