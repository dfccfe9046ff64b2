package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all configuration options for the BMS-HASS process
type Config struct {
	// MQTT Configuration
	MQTTUrl           string `json:"mqtt_url"`           // MQTT URL (supports both WebSocket and standard MQTT)
	StatestreamPrefix string `json:"statestream_prefix"` // Base topic of Home Assistant's mqtt_statestream
	DiscoveryPrefix   string `json:"discovery_prefix"`   // Home Assistant discovery prefix

	// Device Configuration
	DeviceID string `json:"device_id"` // Unique device identifier

	// Card Configuration
	CardConfigPath string `json:"card_config_path"` // YAML card config describing the pack

	// Application Configuration
	Verbose  bool   `json:"verbose"`   // Enable verbose logging
	HTTPAddr string `json:"http_addr"` // Listen address of the read-only API, empty disables it

	// Publishing
	PublishInterval     time.Duration `json:"publish_interval"`      // Minimum time between MQTT state publishes
	ForceUpdateInterval time.Duration `json:"force_update_interval"` // Republish unchanged state after this long, 0 disables
}

// GetDefaultConfig returns a configuration with sensible defaults
func GetDefaultConfig() *Config {
	return &Config{
		StatestreamPrefix: "homeassistant/statestream",
		DiscoveryPrefix:   "homeassistant",
		DeviceID:          "bms_pack",
		CardConfigPath:    "bms-card.yaml",
		Verbose:           false,
		HTTPAddr:          ":8099",

		PublishInterval:     DefaultPublishInterval,
		ForceUpdateInterval: 0, // disabled
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device ID is required")
	}

	// Statestream is the only source of entity states
	if c.MQTTUrl == "" {
		return fmt.Errorf("MQTT URL is required")
	}
	if !strings.HasPrefix(c.MQTTUrl, "ws://") &&
		!strings.HasPrefix(c.MQTTUrl, "wss://") &&
		!strings.HasPrefix(c.MQTTUrl, "mqtt://") &&
		!strings.HasPrefix(c.MQTTUrl, "mqtts://") {
		return fmt.Errorf("MQTT URL must use supported protocol (ws://, wss://, mqtt://, or mqtts://)")
	}

	if c.StatestreamPrefix == "" {
		return fmt.Errorf("statestream prefix is required")
	}
	if c.CardConfigPath == "" {
		return fmt.Errorf("card config path is required")
	}

	// Set defaults for invalid values
	if c.PublishInterval <= 0 {
		c.PublishInterval = DefaultPublishInterval
	}
	if c.ForceUpdateInterval < 0 {
		c.ForceUpdateInterval = 0
	}

	return nil
}

// HasHTTP returns true if the read-only API should be served
func (c *Config) HasHTTP() bool {
	return c.HTTPAddr != ""
}

// StatestreamFilter returns the wildcard subscription covering every entity state topic
func (c *Config) StatestreamFilter() string {
	return strings.TrimSuffix(c.StatestreamPrefix, "/") + "/+/+/state"
}
