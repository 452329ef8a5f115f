package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/tinyurl-go/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository, used in
// tests and for running without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	links  map[string]*shortener.ShortLink // short code -> link
	nextID int64
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{links: make(map[string]*shortener.ShortLink)}
}

func (m *MemoryStore) Create(_ context.Context, link *shortener.ShortLink) (*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[link.ShortCode]; ok {
		return nil, shortener.ErrCodeTaken
	}

	m.nextID++
	now := time.Now()

	saved := *link
	saved.ID = m.nextID
	saved.Clicks = 0
	saved.CreatedAt = now
	saved.UpdatedAt = now

	m.links[saved.ShortCode] = &saved

	copied := saved

	return &copied, nil
}

func (m *MemoryStore) FindByShortCode(_ context.Context, code string) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	copied := *link

	return &copied, nil
}

func (m *MemoryStore) FindByLongURL(_ context.Context, longURL string) (*shortener.ShortLink, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Most recently created wins; ID breaks creation-time ties.
	var latest *shortener.ShortLink

	for _, link := range m.links {
		if link.LongURL != longURL {
			continue
		}

		if latest == nil || link.CreatedAt.After(latest.CreatedAt) ||
			(link.CreatedAt.Equal(latest.CreatedAt) && link.ID > latest.ID) {
			latest = link
		}
	}

	if latest == nil {
		return nil, shortener.ErrNotFound
	}

	copied := *latest

	return &copied, nil
}

func (m *MemoryStore) Update(_ context.Context, link *shortener.ShortLink) (*shortener.ShortLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.links[link.ShortCode]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	updated := *link
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	m.links[updated.ShortCode] = &updated

	copied := updated

	return &copied, nil
}

func (m *MemoryStore) DeleteByShortCode(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.links[code]; !ok {
		return false, nil
	}

	delete(m.links, code)

	return true, nil
}

func (m *MemoryStore) GetStats(ctx context.Context, code string) (*shortener.ShortLink, error) {
	return m.FindByShortCode(ctx, code)
}

func (m *MemoryStore) Exists(_ context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.links[code]

	return ok, nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
