package cache

import (
	"reflect"
	"sync"

	"github.com/jkaberg/bms-hass/internal/domain"
	"github.com/sirupsen/logrus"
)

// Manager keeps the last published derived state and answers the question:
// "has anything changed since the last time I asked?".
// It is concurrency-safe for the simple read-then-write pattern used by the
// scheduler.
//
// Behaviour:
//   - First call to Changed() always returns true and stores the state.
//   - States are compared field by field, so a recompute that yields the
//     same values is not a change.
//   - Reset() forgets the stored state so the next call reports a change;
//     the scheduler uses it to retry a failed publish.
type Manager struct {
	mu     sync.Mutex
	prev   *domain.State
	logger *logrus.Logger
}

// NewManager returns a ready-to-use cache manager.
func NewManager(logger *logrus.Logger) *Manager {
	return &Manager{logger: logger}
}

// Changed compares cur against the previously stored state. If a change is
// detected it stores cur and returns true. A nil state is never a change.
func (m *Manager) Changed(cur *domain.State) bool {
	if cur == nil {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prev != nil && reflect.DeepEqual(m.prev, cur) {
		return false
	}
	m.prev = cur
	if m.logger != nil {
		m.logger.WithField("alarms", len(cur.Alarms)).Debug("Derived state changed")
	}
	return true
}

// Reset forgets the stored state.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.prev = nil
	m.mu.Unlock()
}
