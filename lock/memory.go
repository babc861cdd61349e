package lock

import (
	"context"
	"sync"

	"github.com/nanoncore/nano-devctl/types"
)

// Memory is an in-process Locker. Nothing outlives the process, so a
// crashed holder never leaves a stale key behind.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ Locker = (*Memory)(nil)

// NewMemory returns an empty in-process locker.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]struct{})}
}

// TryLock implements Locker.
func (m *Memory) TryLock(ctx context.Context, key string) (Unlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.Wrap(types.KindTimeout, err, "lock: %s", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.held[key]; busy {
		return nil, locked(key)
	}
	m.held[key] = struct{}{}

	var once sync.Once
	return func() error {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
		return nil
	}, nil
}

// Held reports whether key is currently held.
func (m *Memory) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, busy := m.held[key]
	return busy
}
