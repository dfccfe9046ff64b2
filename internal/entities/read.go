package entities

import (
	"math"
	"strconv"
	"strings"

	"github.com/jkaberg/bms-hass/internal/hass"
)

// lookup returns the usable state string of id, or false for a missing
// entity or a sentinel state.
func lookup(snap hass.Snapshot, id string) (string, bool) {
	if snap == nil || id == "" {
		return "", false
	}
	st := snap.Get(id)
	if st == nil || hass.IsSentinel(st.State) {
		return "", false
	}
	return st.State, true
}

// EntityExists reports whether the snapshot holds a record for id.
func EntityExists(snap hass.Snapshot, id string) bool {
	return snap != nil && id != "" && snap.Get(id) != nil
}

// NumericState parses the leading number of the state of id, so "3.3 V"
// reads as 3.3. It returns nil for a missing entity, a sentinel state or
// text that does not start with a finite number.
func NumericState(snap hass.Snapshot, id string) *float64 {
	raw, ok := lookup(snap, id)
	if !ok {
		return nil
	}
	num, ok := leadingFloat(strings.TrimSpace(raw))
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// leadingFloat returns the longest prefix of s shaped like a decimal number:
// optional sign, digits with at most one '.', optional exponent.
func leadingFloat(s string) (string, bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(s) && isDigit(s[i]); i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && isDigit(s[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return "", false
	}
	end := i

	// An exponent only counts when digits follow it.
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for ; k < len(s) && isDigit(s[k]); k++ {
		}
		if k > j {
			end = k
		}
	}
	return s[:end], true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// BinaryState is true only when the state of id is exactly "on".
func BinaryState(snap hass.Snapshot, id string) bool {
	raw, ok := lookup(snap, id)
	return ok && raw == hass.StateOn
}

// StringState returns the raw state of id, or nil for a missing entity or a
// sentinel state.
func StringState(snap hass.Snapshot, id string) *string {
	raw, ok := lookup(snap, id)
	if !ok {
		return nil
	}
	return &raw
}

// Numeric reads the key through the resolved map as a number.
func (r *Resolver) Numeric(snap hass.Snapshot, key string) *float64 {
	id, _ := r.Lookup(key)
	return NumericState(snap, id)
}

// Binary reads the key through the resolved map as an on/off flag.
func (r *Resolver) Binary(snap hass.Snapshot, key string) bool {
	id, _ := r.Lookup(key)
	return BinaryState(snap, id)
}

// Text reads the key through the resolved map as a raw string.
func (r *Resolver) Text(snap hass.Snapshot, key string) *string {
	id, _ := r.Lookup(key)
	return StringState(snap, id)
}
