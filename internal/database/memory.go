package database

import (
	"context"
	"sync"
	"time"

	"github.com/natindo/CountdownBot/internal/models"
)

// MemoryStore держит события в памяти процесса. После перезапуска всё теряется.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[models.EventKey]models.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[models.EventKey]models.Event)}
}

func (m *MemoryStore) Insert(_ context.Context, ev models.Event, overwrite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ev.Key()
	if _, exists := m.events[key]; exists && !overwrite {
		return ErrDuplicate
	}
	m.events[key] = ev
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key models.EventKey) (*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ev, ok := m.events[key]
	if !ok {
		return nil, nil
	}
	return &ev, nil
}

func (m *MemoryStore) Delete(_ context.Context, key models.EventKey) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[key]; !ok {
		return false, nil
	}
	delete(m.events, key)
	return true, nil
}

// DeleteExact удаляет запись, только если в хранилище лежит то же поколение (ID).
func (m *MemoryStore) DeleteExact(_ context.Context, ev models.Event) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ev.Key()
	cur, ok := m.events[key]
	if !ok || cur.ID != ev.ID {
		return false, nil
	}
	delete(m.events, key)
	return true, nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for key, ev := range m.events {
		if ev.Deadline.Before(before) {
			delete(m.events, key)
			n++
		}
	}
	return n, nil
}

// Len нужен тестам и логам.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}
