package attributes

import (
	"context"
	"fmt"
	"sync"

	"github.com/tempora-io/tempora/core"
)

// InMemoryStore is a process-local attribute store for tests and
// single-binary deployments.
type InMemoryStore struct {
	mu       sync.RWMutex
	values   map[string]string
	readOnly map[string]bool
}

func NewInMemoryStore(initial map[string]string) *InMemoryStore {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &InMemoryStore{
		values:   values,
		readOnly: make(map[string]bool),
	}
}

// SetReadOnly freezes a key so later Set calls on it fail with
// ErrAttributeNotWriteable.
func (s *InMemoryStore) SetReadOnly(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly[key] = true
}

func (s *InMemoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrAttributeNotFound, key)
	}
	return value, nil
}

func (s *InMemoryStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly[key] {
		return fmt.Errorf("%w: %s", core.ErrAttributeNotWriteable, key)
	}
	s.values[key] = value
	return nil
}
