package domain

import "github.com/jkaberg/bms-hass/internal/config"

// State is the derived BMS state for one host snapshot. Numeric fields are
// pointers so a missing value (nil) is distinguishable from 0. A State is
// never mutated after Recompute returns it.
type State struct {
	// --- Pack ---
	SOC               *float64 `json:"soc"`
	Voltage           *float64 `json:"voltage"`
	Current           *float64 `json:"current"`
	Power             *float64 `json:"power"`
	CapacityRemaining *float64 `json:"capacity_remaining"`
	CapacityFull      *float64 `json:"capacity_full"`
	CycleCount        *float64 `json:"cycle_count"`
	SOH               *float64 `json:"soh"`
	Status            *string  `json:"status"`

	// --- Temperatures ---
	TempMOS   *float64   `json:"temp_mos"`
	TempEnv   *float64   `json:"temp_env"`
	MinTemp   *float64   `json:"min_temp"`
	MaxTemp   *float64   `json:"max_temp"`
	TempCells []*float64 `json:"temp_cells"`

	// --- Cells ---
	Cells              []Cell   `json:"cells"`
	MinCellVoltage     *float64 `json:"min_cell_voltage"`
	MaxCellVoltage     *float64 `json:"max_cell_voltage"`
	MinCell            *int     `json:"min_cell"`
	MaxCell            *int     `json:"max_cell"`
	DeltaVoltage       *float64 `json:"delta_voltage"`
	AverageCellVoltage *float64 `json:"average_cell_voltage"`

	// --- System flags ---
	Charging    bool `json:"charging"`
	Discharging bool `json:"discharging"`
	Balancing   bool `json:"balancing"`
	Heater      bool `json:"heater"`

	Alarms []ActiveAlarm `json:"alarms"`
}

// Cell is one battery cell. Number is 1-based.
type Cell struct {
	Number    int      `json:"number"`
	Voltage   *float64 `json:"voltage"`
	Balancing bool     `json:"balancing"`
}

// ActiveAlarm is an alarm whose entity currently signals a condition.
// Message carries the raw text of text alarms.
type ActiveAlarm struct {
	Label    string          `json:"label"`
	Severity config.Severity `json:"severity"`
	Message  *string         `json:"message,omitempty"`
}

// HasCriticalAlarm reports whether any active alarm is critical.
func (s *State) HasCriticalAlarm() bool {
	if s == nil {
		return false
	}
	for _, a := range s.Alarms {
		if a.Severity == config.SeverityCritical {
			return true
		}
	}
	return false
}

// IsMinCell reports whether cell n holds the lowest voltage.
func (s *State) IsMinCell(n int) bool {
	return s != nil && s.MinCell != nil && *s.MinCell == n
}

// IsMaxCell reports whether cell n holds the highest voltage.
func (s *State) IsMaxCell(n int) bool {
	return s != nil && s.MaxCell != nil && *s.MaxCell == n
}
