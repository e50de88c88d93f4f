package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

// MockStorage is a mock implementation of Storage for testing
type MockStorage struct {
	mu        sync.RWMutex
	saves     map[uuid.UUID]*scenario.SaveData
	scripts   map[string]*scenario.Script
	pingError error
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		saves:   make(map[uuid.UUID]*scenario.SaveData),
		scripts: make(map[string]*scenario.Script),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping mocks storage ping
func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close mocks storage close
func (m *MockStorage) Close() error {
	return nil
}

// SaveGame mocks saving a save slot. The slot is copied so later changes to
// save do not leak into storage.
func (m *MockStorage) SaveGame(ctx context.Context, save *scenario.SaveData) error {
	if save == nil {
		return errors.New("save data cannot be nil")
	}
	save.UpdatedAt = time.Now()

	cp := *save
	cp.Properties = append([]scenario.Property(nil), save.Properties...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[save.ID] = &cp
	return nil
}

// LoadGame mocks loading a save slot
func (m *MockStorage) LoadGame(ctx context.Context, id uuid.UUID) (*scenario.SaveData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	save, exists := m.saves[id]
	if !exists {
		return nil, nil // Return nil for not found
	}
	cp := *save
	cp.Properties = append([]scenario.Property(nil), save.Properties...)
	return &cp, nil
}

// DeleteGame mocks deleting a save slot
func (m *MockStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

// ListGames mocks listing save slot IDs
func (m *MockStorage) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.saves))
	for id := range m.saves {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

// ListScripts mocks listing scripts, keyed by script name
func (m *MockStorage) ListScripts(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string]string)
	for filename, s := range m.scripts {
		result[s.Name] = filename
	}
	return result, nil
}

// GetScript mocks getting a script by filename
func (m *MockStorage) GetScript(ctx context.Context, filename string) (*scenario.Script, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scripts[filename]
	if !ok {
		return nil, fmt.Errorf("script not found: %s", filename)
	}
	return s, nil
}

// AddScript adds a script to the mock storage
func (m *MockStorage) AddScript(filename string, s *scenario.Script) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripts[filename] = s
}
