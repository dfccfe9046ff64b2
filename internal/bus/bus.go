package bus

import (
	"sync"

	"github.com/jkaberg/bms-hass/internal/hass"
)

// Bus provides fan-out pub/sub semantics for hass.StateMap snapshots.
// Each Subscribe call gets its own channel that receives every future
// publication. Past messages are not replayed. The implementation is safe for
// concurrent publishers and subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan hass.StateMap
	closed      bool
}

// New creates a ready-to-use Bus.
func New() *Bus { return &Bus{} }

// Subscribe returns a read-only channel that will receive all future
// snapshots.
func (b *Bus) Subscribe() <-chan hass.StateMap {
	ch := make(chan hass.StateMap, 1) // small buffer avoids blocking
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers the snapshot to all subscribers without blocking. A
// subscriber whose buffer is full has its pending snapshot replaced: every
// snapshot is complete, so only the newest one matters. Publishing on a
// closed bus is a no-op.
func (b *Bus) Publish(s hass.StateMap) {
	// Sends never block, so holding the read lock keeps Close from closing a
	// channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- s:
			continue
		default:
		}
		// Drop the stale snapshot, then retry once. A concurrent reader may
		// have emptied the buffer already, so neither step may block.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}

// Close closes every subscriber channel. Later Publish calls are dropped and
// later Subscribe calls get a closed channel.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
