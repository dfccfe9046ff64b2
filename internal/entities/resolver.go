// Package entities maps logical BMS sensor keys to concrete Home Assistant
// entity ids and reads their values from a host snapshot.
package entities

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jkaberg/bms-hass/internal/config"
)

// Resolver holds the logical key to entity id mapping built from one card
// configuration. It is read-only after New returns.
type Resolver struct {
	preset    *Preset
	prefix    string
	cellCount int

	resolved   map[string]string
	allIDs     []string
	tempIDs    []string
	tempLabels []string
	alarms     []config.AlarmConfig
}

// CellVoltageKey is the resolved map key of cell n's voltage entity.
func CellVoltageKey(n int) string { return "cell_voltage_" + strconv.Itoa(n) }

// CellBalancingKey is the resolved map key of cell n's balancing entity.
func CellBalancingKey(n int) string { return "cell_balancing_" + strconv.Itoa(n) }

// TempCellKey is the resolved map key of the i-th (0-based) cell temperature
// sensor.
func TempCellKey(i int) string { return "temp_cell_" + strconv.Itoa(i) }

// AlarmKey is the resolved map key of the i-th (0-based) alarm entity.
func AlarmKey(i int) string { return "alarm_" + strconv.Itoa(i) }

// New resolves every entity the card references. Resolution never fails;
// keys without an explicit override or a usable template are left out.
func New(card *config.Card) *Resolver {
	r := &Resolver{
		preset:    PresetFor(card.Integration()),
		prefix:    card.Prefix(),
		cellCount: card.Cells.Count,
		resolved:  make(map[string]string),
	}

	r.resolveStandard(&card.Entities)
	r.resolveCellVoltages(card.Entities.CellVoltages)
	r.resolveCellBalancing(card.Entities.CellBalancing)
	r.resolveTempCells(card.Entities.TempCells)
	r.resolveAlarms(&card.Entities)
	return r
}

func (r *Resolver) vars() expandVars {
	return expandVars{prefix: r.prefix}
}

func (r *Resolver) cellVars(n int) expandVars {
	return expandVars{prefix: r.prefix, n: n}
}

func (r *Resolver) set(key, id string) {
	if id == "" {
		return
	}
	r.resolved[key] = id
	r.allIDs = append(r.allIDs, id)
}

func (r *Resolver) resolveStandard(ec *config.EntityConfig) {
	for _, key := range config.StandardKeys {
		override, _ := ec.Override(key)
		tpl, ok := r.preset.Template(key)
		r.set(string(key), firstOf(
			explicit(override),
			template(tpl, ok, r.vars()),
		))
	}
}

func (r *Resolver) resolveCellVoltages(src *config.CellSource) {
	var list []string
	var explicitPattern string
	if src != nil {
		switch src.Kind {
		case config.CellSourceList:
			list = src.List
		case config.CellSourcePattern:
			explicitPattern = src.Pattern
		}
	}
	tpl, ok := r.preset.Template(config.KeyCellVoltagePattern)

	for n := 1; n <= r.cellCount; n++ {
		listed := ""
		if n <= len(list) {
			listed = list[n-1]
		}
		r.set(CellVoltageKey(n), firstOf(
			explicit(listed),
			pattern(explicitPattern, r.cellVars(n)),
			template(tpl, ok, r.cellVars(n)),
		))
	}
}

func (r *Resolver) resolveCellBalancing(explicitPattern string) {
	// Balancing is an optional feature; without a pattern or prefix it is
	// not configured at all.
	if explicitPattern == "" && r.prefix == "" {
		return
	}
	tpl, ok := r.preset.Template(config.KeyCellBalancingPattern)

	for n := 1; n <= r.cellCount; n++ {
		r.set(CellBalancingKey(n), firstOf(
			pattern(explicitPattern, r.cellVars(n)),
			template(tpl, ok, r.cellVars(n)),
		))
	}
}

func (r *Resolver) resolveTempCells(list []string) {
	if list != nil {
		for i, id := range list {
			r.addTempCell(i, id, strconv.Itoa(i+1))
		}
		return
	}

	tpl, ok := r.preset.Template(config.KeyTempCellPattern)
	if !ok || r.prefix == "" {
		return
	}

	count := r.preset.TempSensorCount()
	switch {
	case strings.Contains(tpl, "{n}"):
		for i := 0; i < count; i++ {
			r.addTempCell(i, r.cellVars(i+1).apply(tpl), strconv.Itoa(i+1))
		}
	case strings.Contains(tpl, "{range}"):
		for i, span := range PartitionSpans(r.cellCount, count) {
			vars := expandVars{prefix: r.prefix, span: span.Key()}
			r.addTempCell(i, vars.apply(tpl), span.Label())
		}
	default:
		r.addTempCell(0, r.vars().apply(tpl), "1")
	}
}

// addTempCell keeps a slot for every sensor, even an unnamed one, so the
// temperature array never shrinks.
func (r *Resolver) addTempCell(i int, id, label string) {
	r.tempIDs = append(r.tempIDs, id)
	r.tempLabels = append(r.tempLabels, label)
	r.set(TempCellKey(i), id)
}

func (r *Resolver) resolveAlarms(ec *config.EntityConfig) {
	switch {
	case len(ec.Alarms) > 0:
		r.alarms = append(r.alarms, ec.Alarms...)

	case r.prefix != "" && len(r.preset.TextAlarms()) > 0:
		for _, a := range r.preset.TextAlarms() {
			tpl, ok := r.preset.Template(a.Key)
			id := firstOf(template(tpl, ok, r.vars()))
			if id == "" {
				continue
			}
			r.alarms = append(r.alarms, config.AlarmConfig{
				Entity:   id,
				Label:    a.Label,
				Severity: a.Severity,
				Kind:     config.AlarmText,
			})
		}

	case r.prefix != "":
		for _, a := range DefaultAlarms {
			tpl, ok := r.preset.Template(a.Key)
			if !ok {
				continue
			}
			id := firstOf(
				explicit(ec.AlarmOverrides[a.Key]),
				template(tpl, ok, r.vars()),
			)
			r.alarms = append(r.alarms, config.AlarmConfig{
				Entity:   id,
				Label:    a.Label,
				Severity: a.Severity,
				Kind:     config.AlarmBinary,
			})
		}
	}

	for i, a := range r.alarms {
		r.set(AlarmKey(i), a.Entity)
	}
}

// Entity returns the entity id resolved for a standard key.
func (r *Resolver) Entity(key config.Key) (string, bool) {
	return r.Lookup(string(key))
}

// Lookup returns the entity id resolved for any key of the resolved map,
// including synthesized per-cell keys.
func (r *Resolver) Lookup(key string) (string, bool) {
	id, ok := r.resolved[key]
	return id, ok
}

// CellVoltageEntity returns the voltage entity of 1-based cell n.
func (r *Resolver) CellVoltageEntity(n int) (string, bool) {
	return r.Lookup(CellVoltageKey(n))
}

// CellBalancingEntity returns the balancing entity of 1-based cell n.
func (r *Resolver) CellBalancingEntity(n int) (string, bool) {
	return r.Lookup(CellBalancingKey(n))
}

// TempCellEntities returns the cell temperature sensors in sensor order. An
// empty id marks a configured slot without an entity.
func (r *Resolver) TempCellEntities() []string {
	return append([]string(nil), r.tempIDs...)
}

// TempCellLabels returns a display label per temperature sensor: the cell
// span it covers for range named sensors, its 1-based index otherwise.
func (r *Resolver) TempCellLabels() []string {
	return append([]string(nil), r.tempLabels...)
}

// Alarms returns the resolved alarm definitions in evaluation order.
func (r *Resolver) Alarms() []config.AlarmConfig {
	return append([]config.AlarmConfig(nil), r.alarms...)
}

// AllEntityIDs returns every resolved entity id in resolution order.
// Duplicates are kept.
func (r *Resolver) AllEntityIDs() []string {
	return append([]string(nil), r.allIDs...)
}

// Entities returns a copy of the resolved key to entity id map.
func (r *Resolver) Entities() map[string]string {
	out := make(map[string]string, len(r.resolved))
	for k, v := range r.resolved {
		out[k] = v
	}
	return out
}

// CellCount is the number of configured cells.
func (r *Resolver) CellCount() int { return r.cellCount }

// Integration is the name of the preset in use.
func (r *Resolver) Integration() config.Integration { return r.preset.Name() }

func (r *Resolver) String() string {
	return fmt.Sprintf("Resolver{integration=%s prefix=%q cells=%d entities=%d alarms=%d}",
		r.preset.Name(), r.prefix, r.cellCount, len(r.resolved), len(r.alarms))
}
