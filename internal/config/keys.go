package config

// Key names one logical sensor slot. The set of keys is closed: anything not
// listed here is ignored when a card configuration is decoded.
type Key string

// Standard single-value keys.
const (
	KeySOC                Key = "soc"
	KeyVoltage            Key = "voltage"
	KeyCurrent            Key = "current"
	KeyPower              Key = "power"
	KeyCapacityRemaining  Key = "capacity_remaining"
	KeyCapacityFull       Key = "capacity_full"
	KeyCycleCount         Key = "cycle_count"
	KeySOH                Key = "soh"
	KeyStatus             Key = "status"
	KeyDeltaVoltage       Key = "delta_voltage"
	KeyAverageCellVoltage Key = "average_cell_voltage"
	KeyMinCellVoltage     Key = "min_cell_voltage"
	KeyMaxCellVoltage     Key = "max_cell_voltage"
	KeyMinTemp            Key = "min_temp"
	KeyMaxTemp            Key = "max_temp"
	KeyTempMOS            Key = "temp_mos"
	KeyTempEnv            Key = "temp_env"
	KeyCharging           Key = "charging"
	KeyDischarging        Key = "discharging"
	KeyBalancingActive    Key = "balancing_active"
	KeyHeater             Key = "heater"
)

// Per-cell and per-range template keys. These only exist in presets.
const (
	KeyCellVoltagePattern   Key = "cell_voltage_pattern"
	KeyCellBalancingPattern Key = "cell_balancing_pattern"
	KeyTempCellPattern      Key = "temp_cell_pattern"
)

// Alarm keys. The last three name the aggregate text sensors some
// integrations expose instead of one binary sensor per condition.
const (
	KeyAlarmCellOVP      Key = "alarm_cell_ovp"
	KeyAlarmCellUVP      Key = "alarm_cell_uvp"
	KeyAlarmPackUVP      Key = "alarm_pack_uvp"
	KeyAlarmDischargeOCP Key = "alarm_discharge_ocp"
	KeyAlarmChargeOCP    Key = "alarm_charge_ocp"
	KeyAlarmSCP          Key = "alarm_scp"
	KeyAlarmMOSOTP       Key = "alarm_mos_otp"
	KeyAlarmEnvOTP       Key = "alarm_env_otp"
	KeyAlarmDischargeOTP Key = "alarm_dsg_otp"
	KeyAlarmChargeOTP    Key = "alarm_chg_otp"
	KeyAlarmCellFault    Key = "alarm_cell_fault"
	KeyAlarmNTCFault     Key = "alarm_ntc_fault"
	KeyAlarmSOCLow       Key = "alarm_soc_low"
	KeyAlarmBatteryLow   Key = "alarm_battery_low"
	KeyAlarmWarnings     Key = "alarm_warnings"
	KeyAlarmProtections  Key = "alarm_protections"
	KeyAlarmFaults       Key = "alarm_faults"
)

// StandardKeys lists every single-value key in resolution order.
var StandardKeys = []Key{
	KeySOC,
	KeyVoltage,
	KeyCurrent,
	KeyPower,
	KeyCapacityRemaining,
	KeyCapacityFull,
	KeyCycleCount,
	KeySOH,
	KeyStatus,
	KeyDeltaVoltage,
	KeyAverageCellVoltage,
	KeyMinCellVoltage,
	KeyMaxCellVoltage,
	KeyMinTemp,
	KeyMaxTemp,
	KeyTempMOS,
	KeyTempEnv,
	KeyCharging,
	KeyDischarging,
	KeyBalancingActive,
	KeyHeater,
}

// AlarmKeys lists the keys accepted under entities.alarm_overrides.
var AlarmKeys = []Key{
	KeyAlarmCellOVP,
	KeyAlarmCellUVP,
	KeyAlarmPackUVP,
	KeyAlarmDischargeOCP,
	KeyAlarmChargeOCP,
	KeyAlarmSCP,
	KeyAlarmMOSOTP,
	KeyAlarmEnvOTP,
	KeyAlarmDischargeOTP,
	KeyAlarmChargeOTP,
	KeyAlarmCellFault,
	KeyAlarmNTCFault,
	KeyAlarmSOCLow,
	KeyAlarmBatteryLow,
}

func isStandardKey(k Key) bool { return containsKey(StandardKeys, k) }

func isAlarmKey(k Key) bool { return containsKey(AlarmKeys, k) }

func containsKey(keys []Key, k Key) bool {
	for _, candidate := range keys {
		if candidate == k {
			return true
		}
	}
	return false
}
