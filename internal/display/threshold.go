// Package display classifies and formats derived BMS values for rendering.
// Every function is pure; nil inputs classify into the neutral bucket.
package display

import "github.com/jkaberg/bms-hass/internal/config"

// VoltageState buckets a cell voltage against the four point thresholds.
type VoltageState string

const (
	VoltageCriticalLow  VoltageState = "critical-low"
	VoltageWarningLow   VoltageState = "warning-low"
	VoltageNominal      VoltageState = "nominal"
	VoltageWarningHigh  VoltageState = "warning-high"
	VoltageCriticalHigh VoltageState = "critical-high"
)

// Level is the three step bucket used for temperatures and cell spread.
type Level string

const (
	LevelNormal   Level = "normal"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// SOCState buckets the state of charge.
type SOCState string

const (
	SOCAlarm    SOCState = "alarm"
	SOCCritical SOCState = "critical"
	SOCWarning  SOCState = "warning"
	SOCHealthy  SOCState = "healthy"
)

// SOC limits in percent, inclusive.
const (
	SOCCriticalLimit = 10
	SOCWarningLimit  = 20
)

// ClassifyVoltage checks the critical bound before the warning bound on each
// side. Values equal to cell_low or cell_high are nominal.
func ClassifyVoltage(v *float64, t config.Thresholds) VoltageState {
	if v == nil {
		return VoltageNominal
	}
	switch {
	case *v < t.CellMin:
		return VoltageCriticalLow
	case *v < t.CellLow:
		return VoltageWarningLow
	case *v > t.CellMax:
		return VoltageCriticalHigh
	case *v > t.CellHigh:
		return VoltageWarningHigh
	default:
		return VoltageNominal
	}
}

// ClassifyTemperature compares a temperature in °C against the thresholds.
func ClassifyTemperature(v *float64, t config.TemperatureConfig) Level {
	if v == nil {
		return LevelNormal
	}
	return level(*v, t.Warning, t.Critical)
}

// ClassifyDelta compares a delta given in volts against thresholds given in
// millivolts.
func ClassifyDelta(v *float64, t config.Thresholds) Level {
	if v == nil {
		return LevelNormal
	}
	return level(*v*1000, t.DeltaWarning, t.DeltaCritical)
}

func level(v, warning, critical float64) Level {
	switch {
	case v >= critical:
		return LevelCritical
	case v >= warning:
		return LevelWarning
	default:
		return LevelNormal
	}
}

// ClassifySOC returns SOCAlarm whenever a critical alarm is active. A missing
// SOC is healthy.
func ClassifySOC(soc *float64, criticalAlarm bool) SOCState {
	switch {
	case criticalAlarm:
		return SOCAlarm
	case soc == nil:
		return SOCHealthy
	case *soc <= SOCCriticalLimit:
		return SOCCritical
	case *soc <= SOCWarningLimit:
		return SOCWarning
	default:
		return SOCHealthy
	}
}

// BarWidth maps a voltage linearly onto [cell_min, cell_max] as a percentage
// clamped to 0..100. A nil voltage or an empty range yields 0.
func BarWidth(v *float64, t config.Thresholds) float64 {
	if v == nil {
		return 0
	}
	span := t.CellMax - t.CellMin
	if span == 0 {
		return 0
	}
	return clamp((*v-t.CellMin)/span*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
