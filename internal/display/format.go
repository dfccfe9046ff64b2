package display

import (
	"fmt"
	"strconv"

	"github.com/jkaberg/bms-hass/internal/config"
)

// Placeholder is shown in place of a missing value.
const Placeholder = "---"

// Decimal places per quantity.
const (
	VoltageDecimals     = 3
	PackVoltageDecimals = 2
	CurrentDecimals     = 1
	PowerDecimals       = 0
	TemperatureDecimals = 1
	SOCDecimals         = 1
	CapacityDecimals    = 2
	CycleCountDecimals  = 0
)

// FormatNumber renders v with a fixed number of decimals.
func FormatNumber(v *float64, decimals int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.FormatFloat(*v, 'f', decimals, 64)
}

func FormatVoltage(v *float64) string     { return FormatNumber(v, VoltageDecimals) }
func FormatPower(v *float64) string       { return FormatNumber(v, PowerDecimals) }
func FormatTemperature(v *float64) string { return FormatNumber(v, TemperatureDecimals) }
func FormatSOC(v *float64) string         { return FormatNumber(v, SOCDecimals) }
func FormatCapacity(v *float64) string    { return FormatNumber(v, CapacityDecimals) }
func FormatCycleCount(v *float64) string  { return FormatNumber(v, CycleCountDecimals) }

// FormatCurrent prefixes positive (charging) currents with "+".
func FormatCurrent(v *float64) string {
	if v == nil {
		return Placeholder
	}
	s := FormatNumber(v, CurrentDecimals)
	if *v > 0 {
		return "+" + s
	}
	return s
}

// FormatDelta renders a delta given in volts in the configured unit.
func FormatDelta(v *float64, unit config.DeltaUnit) string {
	if v == nil {
		return Placeholder
	}
	if unit == config.DeltaUnitVolt {
		return FormatNumber(v, 3)
	}
	mv := *v * 1000
	return FormatNumber(&mv, 0)
}

// FormatCellNumber pads a cell number to two digits.
func FormatCellNumber(n int) string {
	return fmt.Sprintf("%02d", n)
}
