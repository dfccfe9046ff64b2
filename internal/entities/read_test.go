package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/hass"
)

func snapshotOf(kv map[string]string) hass.StateMap {
	m := make(hass.StateMap, len(kv))
	for id, v := range kv {
		m[id] = &hass.State{EntityID: id, State: v}
	}
	return m
}

func TestNumericState(t *testing.T) {
	snap := snapshotOf(map[string]string{
		"sensor.ok":      "3.301",
		"sensor.padded":  " 52.4 ",
		"sensor.neg":     "-12.5",
		"sensor.unknown": "unknown",
		"sensor.na":      "unavailable",
		"sensor.text":    "charging",
		"sensor.units":   "3.3 V",
		"sensor.suffix":  "3.30V",
		"sensor.abc":     "12abc",
		"sensor.exp":     "1.5e3kWh",
		"sensor.bare_e":  "7e",
		"sensor.dot":     ".5",
		"sensor.two_dot": "1.2.3",
		"sensor.sign":    "-",
		"sensor.huge":    "1e999",
		"sensor.nan":     "NaN",
		"sensor.inf":     "Infinity",
		"sensor.hex":     "0x10",
		"sensor.empty":   "",
	})

	tests := []struct {
		id   string
		want *float64
	}{
		{"sensor.ok", ptr(3.301)},
		{"sensor.padded", ptr(52.4)},
		{"sensor.neg", ptr(-12.5)},
		{"sensor.unknown", nil},
		{"sensor.na", nil},
		{"sensor.text", nil},
		{"sensor.units", ptr(3.3)},
		{"sensor.suffix", ptr(3.3)},
		{"sensor.abc", ptr(12)},
		{"sensor.exp", ptr(1500)},
		{"sensor.bare_e", ptr(7)},
		{"sensor.dot", ptr(0.5)},
		{"sensor.two_dot", ptr(1.2)},
		{"sensor.sign", nil},
		{"sensor.huge", nil},
		{"sensor.nan", nil},
		{"sensor.inf", nil},
		{"sensor.hex", ptr(0)},
		{"sensor.empty", nil},
		{"sensor.missing", nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumericState(snap, tt.id), tt.id)
	}
	assert.Nil(t, NumericState(nil, "sensor.ok"))
}

func TestBinaryState(t *testing.T) {
	snap := snapshotOf(map[string]string{
		"binary_sensor.on":  "on",
		"binary_sensor.off": "off",
		"binary_sensor.ON":  "ON",
		"binary_sensor.na":  "unavailable",
	})

	assert.True(t, BinaryState(snap, "binary_sensor.on"))
	assert.False(t, BinaryState(snap, "binary_sensor.off"))
	assert.False(t, BinaryState(snap, "binary_sensor.ON"))
	assert.False(t, BinaryState(snap, "binary_sensor.na"))
	assert.False(t, BinaryState(snap, "binary_sensor.missing"))
	assert.False(t, BinaryState(nil, "binary_sensor.on"))
}

func TestStringState(t *testing.T) {
	snap := snapshotOf(map[string]string{
		"sensor.status":  "Charging",
		"sensor.faults":  "",
		"sensor.unknown": "unknown",
	})

	s := StringState(snap, "sensor.status")
	require.NotNil(t, s)
	assert.Equal(t, "Charging", *s)

	s = StringState(snap, "sensor.faults")
	require.NotNil(t, s)
	assert.Empty(t, *s)

	assert.Nil(t, StringState(snap, "sensor.unknown"))
	assert.Nil(t, StringState(snap, "sensor.missing"))
}

func TestEntityExists(t *testing.T) {
	snap := snapshotOf(map[string]string{"sensor.x": "unavailable"})
	assert.True(t, EntityExists(snap, "sensor.x"))
	assert.False(t, EntityExists(snap, "sensor.y"))
	assert.False(t, EntityExists(snap, ""))
	assert.False(t, EntityExists(nil, "sensor.x"))
}

func TestResolver_ReadsWithoutConfigurationAreEmpty(t *testing.T) {
	r := New(config.DefaultCard())
	snap := snapshotOf(map[string]string{"sensor.jk_battery_soc": "80"})

	for _, key := range config.StandardKeys {
		assert.Nil(t, r.Numeric(snap, string(key)), key)
		assert.False(t, r.Binary(snap, string(key)), key)
		assert.Nil(t, r.Text(snap, string(key)), key)
	}
}

func TestResolver_ReadsThroughMap(t *testing.T) {
	r := New(cardWithPrefix("jk", config.IntegrationDefault))
	snap := snapshotOf(map[string]string{
		"sensor.jk_battery_soc":       "80",
		"binary_sensor.jk_charge_mos": "on",
	})

	assert.Equal(t, ptr(80.0), r.Numeric(snap, string(config.KeySOC)))
	assert.True(t, r.Binary(snap, string(config.KeyCharging)))
	assert.False(t, r.Binary(snap, string(config.KeyDischarging)))
}

func ptr(v float64) *float64 { return &v }
