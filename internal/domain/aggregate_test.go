package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/hass"
)

func snapshotOf(kv map[string]string) hass.StateMap {
	m := make(hass.StateMap, len(kv))
	for id, v := range kv {
		m[id] = &hass.State{EntityID: id, State: v}
	}
	return m
}

func fourCellCard() *config.Card {
	card := config.DefaultCard()
	card.Cells.Count = 4
	card.Entities.CellVoltages = config.CellPattern("sensor.cell_{n}")
	card.Entities.Overrides = map[config.Key]string{
		config.KeyVoltage: "sensor.pack_voltage",
		config.KeyCurrent: "sensor.pack_current",
	}
	return card
}

func TestRecompute_CellStatistics(t *testing.T) {
	r := entities.New(fourCellCard())
	snap := snapshotOf(map[string]string{
		"sensor.cell_1": "3.30",
		"sensor.cell_2": "3.32",
		"sensor.cell_3": "unavailable",
		"sensor.cell_4": "3.28",
	})

	s := Recompute(r, snap)

	require.Len(t, s.Cells, 4)
	assert.Nil(t, s.Cells[2].Voltage)
	assert.Equal(t, 3, s.Cells[2].Number)

	require.NotNil(t, s.MinCellVoltage)
	require.NotNil(t, s.MaxCellVoltage)
	assert.Equal(t, 3.28, *s.MinCellVoltage)
	assert.Equal(t, 3.32, *s.MaxCellVoltage)
	assert.Equal(t, 4, *s.MinCell)
	assert.Equal(t, 2, *s.MaxCell)
	assert.True(t, s.IsMinCell(4))
	assert.True(t, s.IsMaxCell(2))
	assert.False(t, s.IsMinCell(1))

	require.NotNil(t, s.DeltaVoltage)
	assert.InDelta(t, 0.04, *s.DeltaVoltage, 1e-9)
	require.NotNil(t, s.AverageCellVoltage)
	assert.InDelta(t, (3.30+3.32+3.28)/3, *s.AverageCellVoltage, 1e-9)
}

func TestRecompute_NoCellVoltages(t *testing.T) {
	r := entities.New(fourCellCard())
	s := Recompute(r, snapshotOf(nil))

	assert.Len(t, s.Cells, 4)
	assert.Nil(t, s.MinCellVoltage)
	assert.Nil(t, s.MaxCellVoltage)
	assert.Nil(t, s.MinCell)
	assert.Nil(t, s.MaxCell)
	assert.Nil(t, s.DeltaVoltage)
	assert.Nil(t, s.AverageCellVoltage)
	assert.False(t, s.IsMinCell(1))
	assert.Empty(t, s.Alarms)
}

func TestRecompute_TieBreakFirstCellWins(t *testing.T) {
	r := entities.New(fourCellCard())
	s := Recompute(r, snapshotOf(map[string]string{
		"sensor.cell_1": "3.30",
		"sensor.cell_2": "3.25",
		"sensor.cell_3": "3.25",
		"sensor.cell_4": "3.30",
	}))

	assert.Equal(t, 2, *s.MinCell)
	assert.Equal(t, 1, *s.MaxCell)
}

func TestRecompute_SensorsPreferredOverDerived(t *testing.T) {
	card := fourCellCard()
	card.Entities.Overrides[config.KeyDeltaVoltage] = "sensor.delta"
	card.Entities.Overrides[config.KeyAverageCellVoltage] = "sensor.avg"
	r := entities.New(card)

	s := Recompute(r, snapshotOf(map[string]string{
		"sensor.cell_1": "3.30",
		"sensor.cell_2": "3.40",
		"sensor.delta":  "0.011",
		"sensor.avg":    "3.333",
	}))
	assert.Equal(t, 0.011, *s.DeltaVoltage)
	assert.Equal(t, 3.333, *s.AverageCellVoltage)

	// Sensor values are used even when no cell was read.
	s = Recompute(r, snapshotOf(map[string]string{"sensor.delta": "0.005"}))
	assert.Equal(t, 0.005, *s.DeltaVoltage)
	assert.Nil(t, s.AverageCellVoltage)

	// A sensor without a value falls back to the derived figure.
	s = Recompute(r, snapshotOf(map[string]string{
		"sensor.cell_1": "3.30",
		"sensor.cell_2": "3.40",
		"sensor.delta":  "unknown",
	}))
	assert.InDelta(t, 0.1, *s.DeltaVoltage, 1e-9)
	assert.InDelta(t, 3.35, *s.AverageCellVoltage, 1e-9)
}

func TestRecompute_PowerFallback(t *testing.T) {
	card := fourCellCard()
	r := entities.New(card)

	s := Recompute(r, snapshotOf(map[string]string{
		"sensor.pack_voltage": "52.0",
		"sensor.pack_current": "10.0",
	}))
	require.NotNil(t, s.Power)
	assert.Equal(t, 520.0, *s.Power)

	s = Recompute(r, snapshotOf(map[string]string{"sensor.pack_voltage": "52.0"}))
	assert.Nil(t, s.Power)

	card.Entities.Overrides[config.KeyPower] = "sensor.pack_power"
	r = entities.New(card)
	s = Recompute(r, snapshotOf(map[string]string{
		"sensor.pack_voltage": "52.0",
		"sensor.pack_current": "10.0",
		"sensor.pack_power":   "500.0",
	}))
	assert.Equal(t, 500.0, *s.Power)
}

func TestRecompute_TemperatureArrayKeepsLength(t *testing.T) {
	card := config.DefaultCard()
	card.EntityPattern = &config.EntityPattern{Prefix: "jk", Integration: config.IntegrationDefault}
	r := entities.New(card)

	s := Recompute(r, snapshotOf(map[string]string{
		"sensor.jk_cell_temp_5_8": "24.5",
		"sensor.jk_mos_temp":      "31",
	}))
	require.Len(t, s.TempCells, 4)
	assert.Nil(t, s.TempCells[0])
	assert.Equal(t, 24.5, *s.TempCells[1])
	assert.Nil(t, s.TempCells[3])
	assert.Equal(t, 31.0, *s.TempMOS)
}

func TestRecompute_Alarms(t *testing.T) {
	card := config.DefaultCard()
	card.Entities.Alarms = []config.AlarmConfig{
		{Entity: "binary_sensor.ovp", Label: "OVP", Severity: config.SeverityCritical},
		{Entity: "binary_sensor.low", Label: "Low", Severity: config.SeverityWarning},
		{Entity: "sensor.faults", Label: "Faults", Severity: config.SeverityCritical, Kind: config.AlarmText},
		{Entity: "sensor.warnings", Label: "Warnings", Severity: config.SeverityWarning, Kind: config.AlarmText},
		{Entity: "sensor.protections", Label: "Protections", Severity: config.SeverityCritical, Kind: config.AlarmText},
	}
	r := entities.New(card)

	s := Recompute(r, snapshotOf(map[string]string{
		"binary_sensor.ovp":  "off",
		"binary_sensor.low":  "on",
		"sensor.faults":      "Cell 3 open wire",
		"sensor.warnings":    "",
		"sensor.protections": "unavailable",
	}))

	require.Len(t, s.Alarms, 2)
	assert.Equal(t, ActiveAlarm{Label: "Low", Severity: config.SeverityWarning}, s.Alarms[0])
	assert.Equal(t, "Faults", s.Alarms[1].Label)
	require.NotNil(t, s.Alarms[1].Message)
	assert.Equal(t, "Cell 3 open wire", *s.Alarms[1].Message)
	assert.True(t, s.HasCriticalAlarm())
}

func TestRecompute_FlagsAndText(t *testing.T) {
	card := config.DefaultCard()
	card.Cells.Count = 4
	card.EntityPattern = &config.EntityPattern{Prefix: "yb", Integration: config.IntegrationYamBMS}
	r := entities.New(card)

	s := Recompute(r, snapshotOf(map[string]string{
		"binary_sensor.yb_charging":         "on",
		"binary_sensor.yb_discharging":      "off",
		"binary_sensor.yb_equalizing":       "on",
		"binary_sensor.yb_cell_balancing_2": "on",
		"sensor.yb_status":                  "Charging",
		"sensor.yb_state_of_health":         "98",
	}))

	assert.True(t, s.Charging)
	assert.False(t, s.Discharging)
	assert.True(t, s.Balancing)
	assert.False(t, s.Heater)
	assert.True(t, s.Cells[1].Balancing)
	assert.False(t, s.Cells[0].Balancing)
	assert.Equal(t, "Charging", *s.Status)
	assert.Equal(t, 98.0, *s.SOH)
	assert.False(t, s.HasCriticalAlarm())
}

func TestRecompute_Idempotent(t *testing.T) {
	card := fourCellCard()
	card.EntityPattern = &config.EntityPattern{Prefix: "jk", Integration: config.IntegrationDefault}
	r := entities.New(card)
	snap := snapshotOf(map[string]string{
		"sensor.cell_1":             "3.30",
		"sensor.cell_2":             "3.31",
		"binary_sensor.jk_cell_ovp": "on",
		"sensor.pack_voltage":       "53.1",
	})

	a := Recompute(r, snap)
	b := Recompute(r, snap)
	assert.Equal(t, a, b)
	assert.NotSame(t, a, b)
}
