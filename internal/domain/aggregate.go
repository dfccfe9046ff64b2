// Package domain derives the BMS state from a host snapshot and decides when
// a new snapshot is worth recomputing.
package domain

import (
	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/hass"
)

// Recompute reads every resolved entity from snap and returns a fresh State.
// It keeps no state between calls.
func Recompute(r *entities.Resolver, snap hass.Snapshot) *State {
	num := func(k config.Key) *float64 { return r.Numeric(snap, string(k)) }
	flag := func(k config.Key) bool { return r.Binary(snap, string(k)) }

	s := &State{
		SOC:               num(config.KeySOC),
		Voltage:           num(config.KeyVoltage),
		Current:           num(config.KeyCurrent),
		CapacityRemaining: num(config.KeyCapacityRemaining),
		CapacityFull:      num(config.KeyCapacityFull),
		CycleCount:        num(config.KeyCycleCount),
		SOH:               num(config.KeySOH),
		Status:            r.Text(snap, string(config.KeyStatus)),

		TempMOS: num(config.KeyTempMOS),
		TempEnv: num(config.KeyTempEnv),
		MinTemp: num(config.KeyMinTemp),
		MaxTemp: num(config.KeyMaxTemp),

		Charging:    flag(config.KeyCharging),
		Discharging: flag(config.KeyDischarging),
		Balancing:   flag(config.KeyBalancingActive),
		Heater:      flag(config.KeyHeater),
	}

	s.Power = num(config.KeyPower)
	if s.Power == nil && s.Voltage != nil && s.Current != nil {
		s.Power = floatPtr(*s.Voltage * *s.Current)
	}

	s.Cells = readCells(r, snap)
	stats := cellStats(s.Cells)
	s.MinCellVoltage, s.MaxCellVoltage = stats.min, stats.max
	s.MinCell, s.MaxCell = stats.minCell, stats.maxCell

	s.DeltaVoltage = num(config.KeyDeltaVoltage)
	if s.DeltaVoltage == nil && stats.count > 0 {
		s.DeltaVoltage = floatPtr(*stats.max - *stats.min)
	}
	s.AverageCellVoltage = num(config.KeyAverageCellVoltage)
	if s.AverageCellVoltage == nil && stats.count > 0 {
		s.AverageCellVoltage = floatPtr(stats.sum / float64(stats.count))
	}

	ids := r.TempCellEntities()
	s.TempCells = make([]*float64, len(ids))
	for i, id := range ids {
		s.TempCells[i] = entities.NumericState(snap, id)
	}

	s.Alarms = activeAlarms(r.Alarms(), snap)
	return s
}

func readCells(r *entities.Resolver, snap hass.Snapshot) []Cell {
	cells := make([]Cell, 0, r.CellCount())
	for n := 1; n <= r.CellCount(); n++ {
		c := Cell{Number: n}
		if id, ok := r.CellVoltageEntity(n); ok {
			c.Voltage = entities.NumericState(snap, id)
		}
		if id, ok := r.CellBalancingEntity(n); ok {
			c.Balancing = entities.BinaryState(snap, id)
		}
		cells = append(cells, c)
	}
	return cells
}

type voltageStats struct {
	min, max         *float64
	minCell, maxCell *int
	sum              float64
	count            int
}

// cellStats scans cells in order; the first cell holding an extreme wins.
func cellStats(cells []Cell) voltageStats {
	var st voltageStats
	for i := range cells {
		c := &cells[i]
		if c.Voltage == nil {
			continue
		}
		v := *c.Voltage
		st.sum += v
		st.count++
		if st.min == nil || v < *st.min {
			st.min, st.minCell = floatPtr(v), intPtr(c.Number)
		}
		if st.max == nil || v > *st.max {
			st.max, st.maxCell = floatPtr(v), intPtr(c.Number)
		}
	}
	return st
}

func activeAlarms(alarms []config.AlarmConfig, snap hass.Snapshot) []ActiveAlarm {
	active := make([]ActiveAlarm, 0)
	for _, a := range alarms {
		if a.IsText() {
			msg := entities.StringState(snap, a.Entity)
			if msg == nil || *msg == "" {
				continue
			}
			active = append(active, ActiveAlarm{Label: a.Label, Severity: a.Severity, Message: msg})
			continue
		}
		if entities.BinaryState(snap, a.Entity) {
			active = append(active, ActiveAlarm{Label: a.Label, Severity: a.Severity})
		}
	}
	return active
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }
