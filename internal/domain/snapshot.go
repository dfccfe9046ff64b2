package domain

import (
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/hass"
)

// Changed returns true if any entity the resolver touches has a different
// record in cur than in prev. Records are compared by identity: the host
// keeps the same *hass.State for entities whose value did not change, so
// updates to unrelated entities never trigger a recompute.
func Changed(r *entities.Resolver, prev, cur hass.Snapshot) bool {
	if prev == nil && cur == nil {
		return false
	}
	if prev == nil || cur == nil {
		return true
	}
	for _, id := range r.AllEntityIDs() {
		if prev.Get(id) != cur.Get(id) {
			return true
		}
	}
	return false
}
