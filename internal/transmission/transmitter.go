package transmission

import "github.com/jkaberg/bms-hass/internal/domain"

// Transmitter defines the interface for transmitting derived BMS state
type Transmitter interface {
	Transmit(state *domain.State) error
	IsConnected() bool
}

// Publisher is the subset of the MQTT client the transmitter needs
type Publisher interface {
	Publish(topic string, payload []byte, retained bool) error
	IsConnected() bool
}
