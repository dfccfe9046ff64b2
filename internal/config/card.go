package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Layout selects how cells flow through the grid.
type Layout string

const (
	LayoutIncremental Layout = "incremental" // 1,2,3,4 across columns then rows
	LayoutBank        Layout = "bank"        // each column holds a contiguous run of cells
)

// Orientation of the cell grid.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
)

// DeltaUnit is the unit delta voltage is displayed in.
type DeltaUnit string

const (
	DeltaUnitMillivolt DeltaUnit = "mV"
	DeltaUnitVolt      DeltaUnit = "V"
)

// Integration names an entity naming preset.
type Integration string

const (
	IntegrationDefault Integration = "default"
	IntegrationYamBMS  Integration = "yambms"
)

// Integrations lists every preset name accepted in entity_pattern.integration.
var Integrations = []Integration{IntegrationDefault, IntegrationYamBMS}

// SupportedCellCounts are the pack sizes the card layout is built for.
var SupportedCellCounts = []int{4, 8, 12, 16, 20, 24, 28, 32}

// Column counts accepted for the cell grid.
const (
	MinColumns = 1
	MaxColumns = 4
)

// Card is the declarative BMS card configuration. Field names and nesting are
// the wire contract shared with the settings editor and the host's storage.
type Card struct {
	Title         string            `yaml:"title"`
	Cells         CellConfig        `yaml:"cells"`
	Thresholds    Thresholds        `yaml:"thresholds"`
	Temperature   TemperatureConfig `yaml:"temperature"`
	Display       DisplayConfig     `yaml:"display"`
	EntityPattern *EntityPattern    `yaml:"entity_pattern,omitempty"`
	Entities      EntityConfig      `yaml:"entities"`
}

// CellConfig describes the pack and its grid.
type CellConfig struct {
	Count         int         `yaml:"count"`
	Columns       int         `yaml:"columns"`
	ColumnsMobile int         `yaml:"columns_mobile,omitempty"`
	Layout        Layout      `yaml:"layout"`
	Orientation   Orientation `yaml:"orientation"`
}

// Thresholds for cell voltage coloring (volts) and cell spread (millivolts).
type Thresholds struct {
	CellMin       float64 `yaml:"cell_min"`
	CellLow       float64 `yaml:"cell_low"`
	CellHigh      float64 `yaml:"cell_high"`
	CellMax       float64 `yaml:"cell_max"`
	DeltaWarning  float64 `yaml:"delta_warning"`
	DeltaCritical float64 `yaml:"delta_critical"`
}

// TemperatureConfig holds temperature thresholds in °C.
type TemperatureConfig struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`
}

// DisplayConfig toggles which derived values are shown.
type DisplayConfig struct {
	DeltaUnit        DeltaUnit `yaml:"delta_unit"`
	ShowPower        bool      `yaml:"show_power"`
	ShowTemperatures bool      `yaml:"show_temperatures"`
	ShowCycleCount   bool      `yaml:"show_cycle_count"`
	ShowCapacity     bool      `yaml:"show_capacity"`
	ShowSOH          bool      `yaml:"show_soh"`
	ShowStatus       bool      `yaml:"show_status"`
	CompactMode      bool      `yaml:"compact_mode"`
}

// EntityPattern enables template based entity naming.
type EntityPattern struct {
	Prefix      string      `yaml:"prefix"`
	Integration Integration `yaml:"integration,omitempty"`
}

// DefaultCard returns a card with the defaults for a 16 cell LiFePO4 pack.
func DefaultCard() *Card {
	return &Card{
		Title: "Battery Pack",
		Cells: CellConfig{
			Count:       16,
			Columns:     2,
			Layout:      LayoutBank,
			Orientation: OrientationHorizontal,
		},
		Thresholds: Thresholds{
			CellMin:       2.8,
			CellLow:       3.0,
			CellHigh:      3.45,
			CellMax:       3.65,
			DeltaWarning:  20,
			DeltaCritical: 50,
		},
		Temperature: TemperatureConfig{
			Warning:  40,
			Critical: 50,
		},
		Display: DisplayConfig{
			DeltaUnit:        DeltaUnitMillivolt,
			ShowPower:        true,
			ShowTemperatures: true,
			ShowCycleCount:   true,
			ShowCapacity:     true,
		},
	}
}

// Prefix returns the configured template prefix, or "" when templating is off.
func (c *Card) Prefix() string {
	if c.EntityPattern == nil {
		return ""
	}
	return c.EntityPattern.Prefix
}

// Integration returns the selected preset name, defaulting to IntegrationDefault.
func (c *Card) Integration() Integration {
	if c.EntityPattern == nil || c.EntityPattern.Integration == "" {
		return IntegrationDefault
	}
	return c.EntityPattern.Integration
}

// ParseCard decodes a YAML card document on top of DefaultCard. Fields absent
// from the document keep their defaults.
func ParseCard(data []byte) (*Card, error) {
	card := DefaultCard()
	if err := yaml.Unmarshal(data, card); err != nil {
		return nil, fmt.Errorf("failed to decode card config: %w", err)
	}
	if card.Title == "" {
		card.Title = DefaultCard().Title
	}
	if card.EntityPattern != nil && card.EntityPattern.Integration == "" {
		card.EntityPattern.Integration = IntegrationDefault
	}
	return card, nil
}

// LoadCard reads and decodes the card config at path.
func LoadCard(path string) (*Card, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card config %s: %w", path, err)
	}
	return ParseCard(data)
}

// Validate checks the card against the schema constraints the settings editor
// enforces. The resolver and aggregator never call it; they degrade gracefully
// on out-of-range input instead.
func (c *Card) Validate() error {
	var errs []error

	if !containsInt(SupportedCellCounts, c.Cells.Count) {
		errs = append(errs, fmt.Errorf("cells.count %d is not one of %v", c.Cells.Count, SupportedCellCounts))
	}
	if c.Cells.Columns < MinColumns || c.Cells.Columns > MaxColumns {
		errs = append(errs, fmt.Errorf("cells.columns must be between %d and %d", MinColumns, MaxColumns))
	}
	if c.Cells.ColumnsMobile != 0 && (c.Cells.ColumnsMobile < MinColumns || c.Cells.ColumnsMobile > MaxColumns) {
		errs = append(errs, fmt.Errorf("cells.columns_mobile must be between %d and %d", MinColumns, MaxColumns))
	}
	switch c.Cells.Layout {
	case LayoutIncremental, LayoutBank:
	default:
		errs = append(errs, fmt.Errorf("cells.layout %q is not supported", c.Cells.Layout))
	}
	switch c.Cells.Orientation {
	case OrientationHorizontal, OrientationVertical:
	default:
		errs = append(errs, fmt.Errorf("cells.orientation %q is not supported", c.Cells.Orientation))
	}

	t := c.Thresholds
	if !(t.CellMin <= t.CellLow && t.CellLow <= t.CellHigh && t.CellHigh <= t.CellMax) {
		errs = append(errs, errors.New("thresholds must satisfy cell_min <= cell_low <= cell_high <= cell_max"))
	}
	if t.DeltaWarning > t.DeltaCritical {
		errs = append(errs, errors.New("thresholds.delta_warning must not exceed delta_critical"))
	}
	if c.Temperature.Warning > c.Temperature.Critical {
		errs = append(errs, errors.New("temperature.warning must not exceed temperature.critical"))
	}

	switch c.Display.DeltaUnit {
	case DeltaUnitMillivolt, DeltaUnitVolt:
	default:
		errs = append(errs, fmt.Errorf("display.delta_unit %q is not supported", c.Display.DeltaUnit))
	}

	if c.EntityPattern != nil && !containsIntegration(c.Integration()) {
		errs = append(errs, fmt.Errorf("entity_pattern.integration %q is not supported", c.EntityPattern.Integration))
	}

	for i, alarm := range c.Entities.Alarms {
		if err := alarm.validate(); err != nil {
			errs = append(errs, fmt.Errorf("entities.alarms[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

func containsInt(values []int, v int) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsIntegration(name Integration) bool {
	for _, candidate := range Integrations {
		if candidate == name {
			return true
		}
	}
	return false
}
