package hass

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Store accumulates entity states from a live feed and hands out immutable
// StateMap snapshots. Every change produces a new map; records of entities
// that did not change are shared with the previous map.
type Store struct {
	mu  sync.Mutex
	cur StateMap
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{cur: StateMap{}}
}

// Apply records value for entityID. It returns the new snapshot and true when
// the value differs from the stored one, or the current snapshot and false
// when nothing changed.
func (s *Store) Apply(entityID, value string, at time.Time) (StateMap, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.cur[entityID]; ok && prev.State == value {
		return s.cur, false
	}

	next := make(StateMap, len(s.cur)+1)
	for id, st := range s.cur {
		next[id] = st
	}
	next[entityID] = &State{EntityID: entityID, State: value, LastUpdated: at}
	s.cur = next
	return next, true
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() StateMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// ParseStatestreamTopic maps a mqtt_statestream topic of the form
// <prefix>/<domain>/<object_id>/state to the entity id "<domain>.<object_id>".
// Attribute topics and topics outside prefix are rejected.
func ParseStatestreamTopic(prefix, topic string) (string, bool) {
	prefix = strings.TrimSuffix(prefix, "/")
	rest, ok := strings.CutPrefix(topic, prefix+"/")
	if !ok {
		return "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "state" || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0] + "." + parts[1], true
}

// DecodePayload turns a statestream payload into a raw state string. Payloads
// published with publish_attributes are JSON encoded and arrive quoted.
func DecodePayload(payload []byte) string {
	value := strings.TrimSpace(string(payload))
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		if unq, err := strconv.Unquote(value); err == nil {
			return unq
		}
	}
	return value
}
