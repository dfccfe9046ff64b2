package transmission

import (
	"encoding/json"
	"fmt"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/display"
	"github.com/jkaberg/bms-hass/internal/domain"
	"github.com/jkaberg/bms-hass/internal/mqtt"
	"github.com/sirupsen/logrus"
)

// MQTTTransmitter publishes derived BMS state via MQTT
type MQTTTransmitter struct {
	client           Publisher
	card             *config.Card
	tempLabels       []string
	deviceID         string
	discoveryPrefix  string
	logger           *logrus.Logger
	publishedSensors map[string]bool // Tracks published discovery configs
}

// HADiscoveryConfig represents Home Assistant MQTT discovery configuration
type HADiscoveryConfig struct {
	Name              string   `json:"name"`
	UniqueID          string   `json:"unique_id"`
	ObjectID          string   `json:"object_id,omitempty"`
	StateTopic        string   `json:"state_topic"`
	ValueTemplate     string   `json:"value_template,omitempty"`
	DeviceClass       string   `json:"device_class,omitempty"`
	UnitOfMeasurement string   `json:"unit_of_measurement,omitempty"`
	Device            HADevice `json:"device"`
	AvailabilityTopic string   `json:"availability_topic"`
	Icon              string   `json:"icon,omitempty"`
	StateClass        string   `json:"state_class,omitempty"`
	EntityCategory    string   `json:"entity_category,omitempty"`
	Options           []string `json:"options,omitempty"`
}

// HADevice represents the device information for Home Assistant
type HADevice struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
	SWVersion    string   `json:"sw_version,omitempty"`
}

// NewMQTTTransmitter creates a new MQTT transmitter. tempLabels names the
// cell temperature sensors in the order the state lists them.
func NewMQTTTransmitter(client Publisher, card *config.Card, tempLabels []string, deviceID, discoveryPrefix string, logger *logrus.Logger) *MQTTTransmitter {
	return &MQTTTransmitter{
		client:           client,
		card:             card,
		tempLabels:       tempLabels,
		deviceID:         deviceID,
		discoveryPrefix:  discoveryPrefix,
		logger:           logger,
		publishedSensors: make(map[string]bool),
	}
}

func (t *MQTTTransmitter) device() HADevice {
	return HADevice{
		Identifiers:  []string{fmt.Sprintf("%s_%s", mqtt.TopicRoot, t.deviceID)},
		Name:         t.card.Title,
		Model:        fmt.Sprintf("%d cell pack", t.card.Cells.Count),
		Manufacturer: "BMS-HASS",
		SWVersion:    "1.0.0",
	}
}

// publishDiscoveryForSensor publishes the discovery config for a single sensor.
func (t *MQTTTransmitter) publishDiscoveryForSensor(sensor SensorDefinition, device HADevice) error {
	uniqueID := fmt.Sprintf("%s_%s", t.deviceID, sensor.Field)

	// Skip if already published
	if t.publishedSensors[uniqueID] {
		return nil
	}

	cfg := HADiscoveryConfig{
		Name:              sensor.Name,
		UniqueID:          uniqueID,
		ObjectID:          fmt.Sprintf("%s_%s", t.deviceID, sensor.Field),
		StateTopic:        mqtt.StateTopic(t.deviceID),
		ValueTemplate:     sensor.valueTemplate(),
		AvailabilityTopic: mqtt.AvailabilityTopic(t.deviceID),
		Device:            device,
		DeviceClass:       sensor.DeviceClass,
		UnitOfMeasurement: sensor.UnitOfMeasurement,
		Icon:              sensor.Icon,
		StateClass:        sensor.StateClass,
		EntityCategory:    sensor.EntityCategory,
		Options:           sensor.Options,
	}

	topic := mqtt.DiscoveryTopic(t.discoveryPrefix, sensor.Category, t.deviceID, sensor.Field)

	if err := t.publishConfigRaw(topic, cfg); err != nil {
		return fmt.Errorf("failed to publish %s discovery config: %w", sensor.Name, err)
	}

	t.logger.WithFields(logrus.Fields{
		"sensor_name": sensor.Name,
		"field":       sensor.Field,
		"topic":       topic,
	}).Info("Published sensor discovery config")

	// Mark as published
	t.publishedSensors[uniqueID] = true
	return nil
}

// publishDiscoveryConfigs ensures all derived sensors have their discovery
// configs published. Failed sensors are retried on the next transmit.
func (t *MQTTTransmitter) publishDiscoveryConfigs() {
	device := t.device()
	for _, sensor := range DerivedSensors {
		if err := t.publishDiscoveryForSensor(sensor, device); err != nil {
			t.logger.WithError(err).WithField("sensor", sensor.Name).Error("Failed to publish discovery config")
			// Continue to the next sensor
		}
	}
}

// publishConfigRaw publishes a raw configuration object
func (t *MQTTTransmitter) publishConfigRaw(topic string, cfg interface{}) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal discovery config: %w", err)
	}

	if err := t.client.Publish(topic, payload, true); err != nil {
		return fmt.Errorf("failed to publish discovery config to %s: %w", topic, err)
	}

	return nil
}

// Transmit sends the derived state to MQTT
func (t *MQTTTransmitter) Transmit(state *domain.State) error {
	if state == nil {
		return nil
	}
	if !t.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	// Publish discovery config for derived sensors if it hasn't been done
	t.publishDiscoveryConfigs()

	// Publish state
	if err := t.publishState(state); err != nil {
		return fmt.Errorf("failed to publish state: %w", err)
	}

	// Publish availability
	if err := t.PublishAvailability(true); err != nil {
		return fmt.Errorf("failed to publish availability: %w", err)
	}

	t.logger.Debug("Data transmitted successfully")
	return nil
}

// publishState publishes the derived state payload
func (t *MQTTTransmitter) publishState(state *domain.State) error {
	payload, err := json.Marshal(display.NewView(state, t.card, t.tempLabels))
	if err != nil {
		return fmt.Errorf("failed to build state payload: %w", err)
	}

	topic := mqtt.StateTopic(t.deviceID)
	if err := t.client.Publish(topic, payload, true); err != nil {
		return fmt.Errorf("failed to publish state to %s: %w", topic, err)
	}

	t.logger.WithFields(logrus.Fields{
		"topic":  topic,
		"size":   len(payload),
		"alarms": len(state.Alarms),
	}).Info("Published BMS state")

	return nil
}

// PublishAvailability publishes the availability status
func (t *MQTTTransmitter) PublishAvailability(online bool) error {
	payload := "online"
	if !online {
		payload = "offline"
	}

	topic := mqtt.AvailabilityTopic(t.deviceID)
	if err := t.client.Publish(topic, []byte(payload), true); err != nil {
		return fmt.Errorf("failed to publish availability to %s: %w", topic, err)
	}
	return nil
}

// IsConnected checks if the MQTT client is connected
func (t *MQTTTransmitter) IsConnected() bool {
	return t.client.IsConnected()
}
