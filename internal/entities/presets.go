package entities

import "github.com/jkaberg/bms-hass/internal/config"

// Preset is an immutable table of entity naming templates matching one
// upstream integration. Templates use {prefix}, and per-cell or per-range
// templates additionally use {n} or {range}.
type Preset struct {
	name            config.Integration
	templates       map[config.Key]string
	textAlarms      []AlarmTemplate
	tempSensorCount int
}

// AlarmTemplate is one synthesized alarm: the key whose template names the
// entity, plus its fixed label and severity.
type AlarmTemplate struct {
	Key      config.Key
	Label    string
	Severity config.Severity
}

// Name returns the integration name of the preset.
func (p *Preset) Name() config.Integration { return p.name }

// Template returns the template registered for key.
func (p *Preset) Template(key config.Key) (string, bool) {
	tpl, ok := p.templates[key]
	return tpl, ok && tpl != ""
}

// TextAlarms returns the aggregate text alarm convention of the preset, or
// nil when the integration exposes one binary sensor per alarm.
func (p *Preset) TextAlarms() []AlarmTemplate {
	return append([]AlarmTemplate(nil), p.textAlarms...)
}

// TempSensorCount is the number of cell temperature sensors the integration
// exposes by default.
func (p *Preset) TempSensorCount() int { return p.tempSensorCount }

// DefaultAlarms is the binary alarm table used with template naming. Only the
// most relevant protections and faults are included to avoid clutter.
var DefaultAlarms = []AlarmTemplate{
	// Protection status
	{config.KeyAlarmCellOVP, "Cell OVP", config.SeverityCritical},
	{config.KeyAlarmCellUVP, "Cell UVP", config.SeverityCritical},
	{config.KeyAlarmPackUVP, "Pack UVP", config.SeverityCritical},
	{config.KeyAlarmDischargeOCP, "Discharge OCP", config.SeverityCritical},
	{config.KeyAlarmChargeOCP, "Charge OCP", config.SeverityCritical},
	{config.KeyAlarmSCP, "Short Circuit", config.SeverityCritical},

	// Temperature protection
	{config.KeyAlarmMOSOTP, "MOS Over Temp", config.SeverityCritical},
	{config.KeyAlarmEnvOTP, "Env Over Temp", config.SeverityWarning},
	{config.KeyAlarmDischargeOTP, "Discharge OT", config.SeverityWarning},
	{config.KeyAlarmChargeOTP, "Charge OT", config.SeverityWarning},

	// Hardware faults
	{config.KeyAlarmCellFault, "Cell Fault", config.SeverityCritical},
	{config.KeyAlarmNTCFault, "NTC Fault", config.SeverityCritical},

	// Pre-protection warnings
	{config.KeyAlarmSOCLow, "Low SOC", config.SeverityWarning},
	{config.KeyAlarmBatteryLow, "Low Battery", config.SeverityWarning},
}

var defaultPreset = &Preset{
	name:            config.IntegrationDefault,
	tempSensorCount: 4,
	templates: map[config.Key]string{
		config.KeySOC:               "sensor.{prefix}_battery_soc",
		config.KeyVoltage:           "sensor.{prefix}_battery_voltage",
		config.KeyCurrent:           "sensor.{prefix}_battery_current",
		config.KeyPower:             "sensor.{prefix}_battery_power",
		config.KeyCapacityRemaining: "sensor.{prefix}_remaining_capacity",
		config.KeyCapacityFull:      "sensor.{prefix}_battery_full_capacity",
		config.KeyCycleCount:        "sensor.{prefix}_cycle_count",

		config.KeyDeltaVoltage:       "sensor.{prefix}_delta_voltage",
		config.KeyAverageCellVoltage: "sensor.{prefix}_avg_cell_voltage",
		config.KeyMinCellVoltage:     "sensor.{prefix}_min_cell_voltage",
		config.KeyMaxCellVoltage:     "sensor.{prefix}_max_cell_voltage",

		config.KeyTempMOS:         "sensor.{prefix}_mos_temp",
		config.KeyTempEnv:         "sensor.{prefix}_env_temp",
		config.KeyTempCellPattern: "sensor.{prefix}_cell_temp_{range}",

		config.KeyCellVoltagePattern:   "sensor.{prefix}_cell_{n}_voltage",
		config.KeyCellBalancingPattern: "binary_sensor.{prefix}_cell_{n}_balancing",

		config.KeyCharging:        "binary_sensor.{prefix}_charge_mos",
		config.KeyDischarging:     "binary_sensor.{prefix}_discharge_mos",
		config.KeyBalancingActive: "binary_sensor.{prefix}_balancing",
		config.KeyHeater:          "binary_sensor.{prefix}_heater",

		config.KeyAlarmCellOVP:      "binary_sensor.{prefix}_cell_ovp",
		config.KeyAlarmCellUVP:      "binary_sensor.{prefix}_cell_uvp",
		config.KeyAlarmPackUVP:      "binary_sensor.{prefix}_pack_uvp",
		config.KeyAlarmDischargeOCP: "binary_sensor.{prefix}_dsg_ocp",
		config.KeyAlarmChargeOCP:    "binary_sensor.{prefix}_chg_ocp",
		config.KeyAlarmSCP:          "binary_sensor.{prefix}_scp_protection",
		config.KeyAlarmMOSOTP:       "binary_sensor.{prefix}_mos_otp",
		config.KeyAlarmEnvOTP:       "binary_sensor.{prefix}_env_otp",
		config.KeyAlarmDischargeOTP: "binary_sensor.{prefix}_dsg_otp",
		config.KeyAlarmChargeOTP:    "binary_sensor.{prefix}_chg_otp",
		config.KeyAlarmCellFault:    "binary_sensor.{prefix}_bms_cell_fault",
		config.KeyAlarmNTCFault:     "binary_sensor.{prefix}_bms_ntc_fault",
		config.KeyAlarmSOCLow:       "binary_sensor.{prefix}_alarm_soc_low",
		config.KeyAlarmBatteryLow:   "binary_sensor.{prefix}_battery_low_power",
	},
}

// yamBMSPreset matches the YamBMS / BMS_BLE naming conventions.
var yamBMSPreset = &Preset{
	name:            config.IntegrationYamBMS,
	tempSensorCount: 4,
	templates: map[config.Key]string{
		config.KeySOC:               "sensor.{prefix}_battery_soc",
		config.KeyVoltage:           "sensor.{prefix}_total_voltage",
		config.KeyCurrent:           "sensor.{prefix}_current",
		config.KeyPower:             "sensor.{prefix}_power",
		config.KeyCapacityRemaining: "sensor.{prefix}_battery_capacity_remaining",
		config.KeyCapacityFull:      "sensor.{prefix}_full_capacity",
		config.KeyCycleCount:        "sensor.{prefix}_charging_cycles",

		config.KeySOH:    "sensor.{prefix}_state_of_health",
		config.KeyStatus: "sensor.{prefix}_status",

		config.KeyDeltaVoltage:       "sensor.{prefix}_delta_cell_voltage",
		config.KeyAverageCellVoltage: "sensor.{prefix}_average_cell_voltage",
		config.KeyMinCellVoltage:     "sensor.{prefix}_min_cell_voltage",
		config.KeyMaxCellVoltage:     "sensor.{prefix}_max_cell_voltage",

		config.KeyTempMOS:         "sensor.{prefix}_mosfet_temperature",
		config.KeyTempEnv:         "sensor.{prefix}_environment_temperature",
		config.KeyMinTemp:         "sensor.{prefix}_min_temperature",
		config.KeyMaxTemp:         "sensor.{prefix}_max_temperature",
		config.KeyTempCellPattern: "sensor.{prefix}_battery_temperature_{n}",

		config.KeyCellVoltagePattern:   "sensor.{prefix}_cell_voltage_{n}",
		config.KeyCellBalancingPattern: "binary_sensor.{prefix}_cell_balancing_{n}",

		config.KeyCharging:        "binary_sensor.{prefix}_charging",
		config.KeyDischarging:     "binary_sensor.{prefix}_discharging",
		config.KeyBalancingActive: "binary_sensor.{prefix}_equalizing",

		config.KeyAlarmWarnings:    "sensor.{prefix}_warnings",
		config.KeyAlarmProtections: "sensor.{prefix}_protections",
		config.KeyAlarmFaults:      "sensor.{prefix}_faults",
	},
	textAlarms: []AlarmTemplate{
		{config.KeyAlarmWarnings, "Warnings", config.SeverityWarning},
		{config.KeyAlarmProtections, "Protections", config.SeverityCritical},
		{config.KeyAlarmFaults, "Faults", config.SeverityCritical},
	},
}

var presets = map[config.Integration]*Preset{
	config.IntegrationDefault: defaultPreset,
	config.IntegrationYamBMS:  yamBMSPreset,
}

// PresetFor returns the preset registered under name, falling back to the
// default preset for unknown names.
func PresetFor(name config.Integration) *Preset {
	if p, ok := presets[name]; ok {
		return p
	}
	return defaultPreset
}
