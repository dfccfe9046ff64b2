package transmission

import "github.com/jkaberg/bms-hass/internal/display"

// SensorDefinition describes one derived output exposed to Home Assistant
// through MQTT discovery. Field is the key in the state payload.
type SensorDefinition struct {
	Field             string
	Name              string
	Category          string // "sensor" or "binary_sensor"
	DeviceClass       string
	UnitOfMeasurement string
	StateClass        string
	Icon              string
	EntityCategory    string
	Options           []string // enum states
}

var (
	voltageStates = []string{
		string(display.VoltageCriticalLow), string(display.VoltageWarningLow), string(display.VoltageNominal),
		string(display.VoltageWarningHigh), string(display.VoltageCriticalHigh),
	}
	levels    = []string{string(display.LevelNormal), string(display.LevelWarning), string(display.LevelCritical)}
	socStates = []string{string(display.SOCHealthy), string(display.SOCWarning), string(display.SOCCritical), string(display.SOCAlarm)}
)

// DerivedSensors lists the values this process computes. Raw readings are
// already Home Assistant entities and are not republished.
var DerivedSensors = []SensorDefinition{
	{Field: "delta_voltage", Name: "Cell Delta Voltage", Category: "sensor", DeviceClass: "voltage", UnitOfMeasurement: "V", StateClass: "measurement", Icon: "mdi:delta"},
	{Field: "min_cell_voltage", Name: "Min Cell Voltage", Category: "sensor", DeviceClass: "voltage", UnitOfMeasurement: "V", StateClass: "measurement"},
	{Field: "max_cell_voltage", Name: "Max Cell Voltage", Category: "sensor", DeviceClass: "voltage", UnitOfMeasurement: "V", StateClass: "measurement"},
	{Field: "average_cell_voltage", Name: "Average Cell Voltage", Category: "sensor", DeviceClass: "voltage", UnitOfMeasurement: "V", StateClass: "measurement"},
	{Field: "min_cell", Name: "Min Cell", Category: "sensor", Icon: "mdi:battery-arrow-down"},
	{Field: "max_cell", Name: "Max Cell", Category: "sensor", Icon: "mdi:battery-arrow-up"},
	{Field: "power", Name: "Pack Power", Category: "sensor", DeviceClass: "power", UnitOfMeasurement: "W", StateClass: "measurement"},
	{Field: "alarm_count", Name: "Active Alarms", Category: "sensor", StateClass: "measurement", Icon: "mdi:alert"},
	{Field: "min_cell_state", Name: "Min Cell State", Category: "sensor", DeviceClass: "enum", EntityCategory: "diagnostic", Options: voltageStates},
	{Field: "max_cell_state", Name: "Max Cell State", Category: "sensor", DeviceClass: "enum", EntityCategory: "diagnostic", Options: voltageStates},
	{Field: "delta_state", Name: "Cell Delta State", Category: "sensor", DeviceClass: "enum", EntityCategory: "diagnostic", Options: levels},
	{Field: "soc_state", Name: "SOC State", Category: "sensor", DeviceClass: "enum", EntityCategory: "diagnostic", Options: socStates},
	{Field: "critical_alarm", Name: "Critical Alarm", Category: "binary_sensor", DeviceClass: "problem"},
}

// valueTemplate renders the payload field as a Home Assistant state. Null
// fields render as "None", which MQTT sensors treat as unknown.
func (d SensorDefinition) valueTemplate() string {
	if d.Category == "binary_sensor" {
		return "{{ 'ON' if value_json." + d.Field + " else 'OFF' }}"
	}
	return "{{ value_json." + d.Field + " }}"
}
