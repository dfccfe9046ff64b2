package hass

import (
	"time"
)

// Reserved state strings Home Assistant uses for entities without a value.
const (
	StateUnknown     = "unknown"
	StateUnavailable = "unavailable"
	StateOn          = "on"
)

// State is a single entity record. Once a State is placed in a StateMap it is
// never mutated; a changed value always gets a fresh record so consumers can
// detect changes by pointer identity.
type State struct {
	EntityID    string    `json:"entity_id"`
	State       string    `json:"state"`
	LastUpdated time.Time `json:"last_updated"`
}

// Snapshot is a read-only view of all entity states at one point in time.
type Snapshot interface {
	// Get returns the record for entityID, or nil when the entity is unknown.
	Get(entityID string) *State
}

// StateMap is the concrete Snapshot produced by Store.
type StateMap map[string]*State

// Get implements Snapshot.
func (m StateMap) Get(entityID string) *State {
	return m[entityID]
}

// IsSentinel reports whether s is one of the reserved "no value" states.
func IsSentinel(s string) bool {
	return s == StateUnknown || s == StateUnavailable
}
