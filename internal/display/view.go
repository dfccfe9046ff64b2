package display

import (
	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/domain"
)

// View is a derived state annotated with every classification a dashboard
// needs. It is what leaves the process, over MQTT and HTTP alike.
type View struct {
	*domain.State

	Cells     []CellView     `json:"cells"`
	TempCells []TempCellView `json:"temp_cells"`

	MinCellState  VoltageState `json:"min_cell_state"`
	MaxCellState  VoltageState `json:"max_cell_state"`
	DeltaState    Level        `json:"delta_state"`
	SOCState      SOCState     `json:"soc_state"`
	MOSTempState  Level        `json:"temp_mos_state"`
	EnvTempState  Level        `json:"temp_env_state"`
	AlarmCount    int          `json:"alarm_count"`
	CriticalAlarm bool         `json:"critical_alarm"`

	Formatted Formatted `json:"formatted"`
}

// Formatted holds the pack values as display strings, Placeholder when
// missing.
type Formatted struct {
	SOC                string `json:"soc"`
	Voltage            string `json:"voltage"`
	Current            string `json:"current"`
	Power              string `json:"power"`
	CapacityRemaining  string `json:"capacity_remaining"`
	CapacityFull       string `json:"capacity_full"`
	CycleCount         string `json:"cycle_count"`
	SOH                string `json:"soh"`
	TempMOS            string `json:"temp_mos"`
	TempEnv            string `json:"temp_env"`
	MinTemp            string `json:"min_temp"`
	MaxTemp            string `json:"max_temp"`
	MinCellVoltage     string `json:"min_cell_voltage"`
	MaxCellVoltage     string `json:"max_cell_voltage"`
	AverageCellVoltage string `json:"average_cell_voltage"`
	DeltaVoltage       string `json:"delta_voltage"`
}

// CellView is one cell with its voltage bucket and bar fill.
type CellView struct {
	domain.Cell
	Label    string       `json:"label"`
	Text     string       `json:"text"`
	State    VoltageState `json:"state"`
	BarWidth float64      `json:"bar_width"`
	IsMin    bool         `json:"is_min"`
	IsMax    bool         `json:"is_max"`
}

// TempCellView is one cell temperature sensor.
type TempCellView struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
	Text  string   `json:"text"`
	State Level    `json:"state"`
}

// NewView classifies s against the card thresholds. labels names the
// temperature sensors in order; missing labels are left empty.
func NewView(s *domain.State, card *config.Card, labels []string) *View {
	critical := s.HasCriticalAlarm()
	v := &View{
		State:         s,
		Cells:         make([]CellView, len(s.Cells)),
		TempCells:     make([]TempCellView, len(s.TempCells)),
		MinCellState:  ClassifyVoltage(s.MinCellVoltage, card.Thresholds),
		MaxCellState:  ClassifyVoltage(s.MaxCellVoltage, card.Thresholds),
		DeltaState:    ClassifyDelta(s.DeltaVoltage, card.Thresholds),
		SOCState:      ClassifySOC(s.SOC, critical),
		MOSTempState:  ClassifyTemperature(s.TempMOS, card.Temperature),
		EnvTempState:  ClassifyTemperature(s.TempEnv, card.Temperature),
		AlarmCount:    len(s.Alarms),
		CriticalAlarm: critical,
		Formatted:     format(s, card.Display.DeltaUnit),
	}

	for i, c := range s.Cells {
		v.Cells[i] = CellView{
			Cell:     c,
			Label:    FormatCellNumber(c.Number),
			Text:     FormatVoltage(c.Voltage),
			State:    ClassifyVoltage(c.Voltage, card.Thresholds),
			BarWidth: BarWidth(c.Voltage, card.Thresholds),
			IsMin:    s.IsMinCell(c.Number),
			IsMax:    s.IsMaxCell(c.Number),
		}
	}
	for i, t := range s.TempCells {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		v.TempCells[i] = TempCellView{
			Label: label,
			Value: t,
			Text:  FormatTemperature(t),
			State: ClassifyTemperature(t, card.Temperature),
		}
	}
	return v
}

func format(s *domain.State, deltaUnit config.DeltaUnit) Formatted {
	return Formatted{
		SOC:                FormatSOC(s.SOC),
		Voltage:            FormatNumber(s.Voltage, PackVoltageDecimals),
		Current:            FormatCurrent(s.Current),
		Power:              FormatPower(s.Power),
		CapacityRemaining:  FormatCapacity(s.CapacityRemaining),
		CapacityFull:       FormatCapacity(s.CapacityFull),
		CycleCount:         FormatCycleCount(s.CycleCount),
		SOH:                FormatSOC(s.SOH),
		TempMOS:            FormatTemperature(s.TempMOS),
		TempEnv:            FormatTemperature(s.TempEnv),
		MinTemp:            FormatTemperature(s.MinTemp),
		MaxTemp:            FormatTemperature(s.MaxTemp),
		MinCellVoltage:     FormatVoltage(s.MinCellVoltage),
		MaxCellVoltage:     FormatVoltage(s.MaxCellVoltage),
		AverageCellVoltage: FormatVoltage(s.AverageCellVoltage),
		DeltaVoltage:       FormatDelta(s.DeltaVoltage, deltaUnit),
	}
}

// GridCells returns the cell views in the order the card grid renders them.
func (v *View) GridCells(card *config.Card) []CellView {
	return OrderCells(v.Cells, card.Cells.Columns, card.Cells.Layout)
}
