package staging

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	entry     Entry
	expiresAt time.Time
}

// Memory is an in-process Stager with TTL expiry
type Memory struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]memoryItem
	clock func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:   ttl,
		items: make(map[string]memoryItem),
		clock: time.Now,
	}
}

func memoryKey(scope, entityID string) string {
	return scope + "/" + Key(entityID)
}

func (m *Memory) Save(_ context.Context, scope, entityID string, e Entry) error {
	if err := checkKey(scope, entityID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	e.SavedAt = now
	m.items[memoryKey(scope, entityID)] = memoryItem{entry: e, expiresAt: now.Add(m.ttl)}
	m.evictLocked(now)
	return nil
}

func (m *Memory) Load(_ context.Context, scope, entityID string) (Entry, bool, error) {
	if err := checkKey(scope, entityID); err != nil {
		return Entry{}, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey(scope, entityID)
	it, ok := m.items[key]
	if !ok {
		return Entry{}, false, nil
	}
	if m.ttl > 0 && !m.clock().Before(it.expiresAt) {
		delete(m.items, key)
		return Entry{}, false, nil
	}
	return it.entry, true, nil
}

func (m *Memory) Clear(_ context.Context, scope, entityID string) error {
	if err := checkKey(scope, entityID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, memoryKey(scope, entityID))
	return nil
}

// Len returns the number of live drafts
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictLocked(m.clock())
	return len(m.items)
}

func (m *Memory) evictLocked(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for k, it := range m.items {
		if !now.Before(it.expiresAt) {
			delete(m.items, k)
		}
	}
}
