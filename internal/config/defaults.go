package config

import "time"

// Central place for all application-wide timing constants and other defaults.
// Changing a value here immediately affects all components that import
// github.com/jkaberg/bms-hass/internal/config.

const (
	// Scheduling
	SchedulerTick          = 1 * time.Second // How often the publisher checks for pending state
	DefaultPublishInterval = 5 * time.Second // Publish derived state to MQTT at most this often

	// Operation time-outs (to avoid blocking goroutines)
	MQTTTimeout         = 5 * time.Second // MQTT publish / subscribe
	HTTPShutdownTimeout = 5 * time.Second // Graceful API shutdown
	HTTPReadTimeout     = 10 * time.Second
)
