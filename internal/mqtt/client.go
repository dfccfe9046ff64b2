package mqtt

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/jkaberg/bms-hass/internal/config"
)

// TopicRoot is the first level of every topic this process publishes.
const TopicRoot = "bms_hass"

// MessageHandler receives the topic and raw payload of an incoming message.
type MessageHandler func(topic string, payload []byte)

// Client wraps the MQTT client with additional functionality
type Client struct {
	client mqtt.Client
	logger *logrus.Logger

	mu   sync.Mutex
	subs map[string]MessageHandler
}

// NewClient creates a new MQTT client with support for both WebSocket and standard MQTT protocols
func NewClient(mqttURL, deviceID string, logger *logrus.Logger) (*Client, error) {
	// Parse the MQTT URL
	parsedURL, err := url.Parse(mqttURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL: %w", err)
	}

	c := &Client{
		logger: logger,
		subs:   make(map[string]MessageHandler),
	}

	// Generate client ID
	clientID := fmt.Sprintf("bms-hass-%s", deviceID)

	// Configure MQTT client options
	opts := mqtt.NewClientOptions()

	// Handle different protocol schemes
	brokerURL, err := brokerAddress(parsedURL, mqttURL)
	if err != nil {
		return nil, err
	}
	switch parsedURL.Scheme {
	case "wss", "mqtts":
		// Disable certificate verification to support self-signed certs
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}
	logger.WithField("scheme", parsedURL.Scheme).Debug("Using MQTT broker connection")

	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetConnectTimeout(config.MQTTTimeout)
	opts.SetMaxReconnectInterval(10 * time.Second)

	// Dashboards mark the derived sensors unavailable when we drop off
	opts.SetWill(AvailabilityTopic(deviceID), "offline", 1, true)

	// Set credentials if provided in URL
	if parsedURL.User != nil {
		username := parsedURL.User.Username()
		password, _ := parsedURL.User.Password()
		opts.SetUsername(username)
		opts.SetPassword(password)
	}

	// Set connection handlers
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		logger.WithError(err).Warn("MQTT connection lost")
	})

	opts.SetReconnectingHandler(func(client mqtt.Client, opts *mqtt.ClientOptions) {
		logger.Debug("MQTT reconnecting...")
	})

	firstConnect := true
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		if firstConnect {
			logger.Debug("MQTT connected")
			firstConnect = false
			return
		}
		logger.Info("MQTT reconnected")
		// Clean sessions drop subscriptions on the broker side
		c.resubscribe(client)
	})

	// Create client
	c.client = mqtt.NewClient(opts)

	// Connect to broker
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	logger.WithFields(logrus.Fields{
		"broker":    cleanURL(mqttURL),
		"protocol":  parsedURL.Scheme,
		"client_id": clientID,
	}).Info("MQTT client connected")

	return c, nil
}

// brokerAddress converts the user facing URL into the form paho expects.
func brokerAddress(parsed *url.URL, raw string) (string, error) {
	switch parsed.Scheme {
	case "ws", "wss":
		// WebSocket MQTT - use URL as-is
		return raw, nil
	case "mqtt":
		// Standard MQTT - convert to tcp://
		return strings.Replace(raw, "mqtt://", "tcp://", 1), nil
	case "mqtts":
		// Secure MQTT - convert to ssl://
		return strings.Replace(raw, "mqtts://", "ssl://", 1), nil
	default:
		return "", fmt.Errorf("unsupported protocol scheme: %s (supported: ws, wss, mqtt, mqtts)", parsed.Scheme)
	}
}

// Publish publishes a message to the specified topic
func (c *Client) Publish(topic string, payload []byte, retained bool) error {
	qos := byte(1) // At least once delivery
	token := c.client.Publish(topic, qos, retained, payload)

	// Avoid potential deadlocks: wait for completion with a timeout instead of indefinitely.
	if !token.WaitTimeout(config.MQTTTimeout) {
		return fmt.Errorf("publish to topic %s timed out after %s", topic, config.MQTTTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, token.Error())
	}

	c.logger.WithFields(logrus.Fields{
		"topic":    topic,
		"size":     len(payload),
		"retained": retained,
	}).Debug("Published MQTT message")

	return nil
}

// Subscribe subscribes to a topic filter. The subscription is restored after
// every reconnect.
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	c.mu.Lock()
	c.subs[topic] = handler
	c.mu.Unlock()
	return c.subscribe(c.client, topic, handler)
}

func (c *Client) subscribe(client mqtt.Client, topic string, handler MessageHandler) error {
	qos := byte(1)
	token := client.Subscribe(topic, qos, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})

	// Prevent indefinite blocking on slow or lost connections.
	if !token.WaitTimeout(config.MQTTTimeout) {
		return fmt.Errorf("subscribe to topic %s timed out after %s", topic, config.MQTTTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}

	c.logger.WithField("topic", topic).Debug("Subscribed to MQTT topic")
	return nil
}

func (c *Client) resubscribe(client mqtt.Client) {
	c.mu.Lock()
	subs := make(map[string]MessageHandler, len(c.subs))
	for topic, h := range c.subs {
		subs[topic] = h
	}
	c.mu.Unlock()

	// The connect handler runs on paho's goroutine; waiting on tokens there
	// would block the client.
	go func() {
		for topic, h := range subs {
			if err := c.subscribe(client, topic, h); err != nil {
				c.logger.WithError(err).WithField("topic", topic).Warn("MQTT resubscribe failed")
			}
		}
	}()
}

// IsConnected returns true if the client is connected
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Disconnect disconnects the client
func (c *Client) Disconnect(quiesce uint) {
	c.client.Disconnect(quiesce)
	c.logger.Debug("MQTT client disconnected")
}

// cleanURL removes credentials from URL for logging
func cleanURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	if parsed.User != nil {
		parsed.User = url.UserPassword("***", "***")
	}

	return parsed.String()
}

// BaseTopic returns the topic prefix for deviceID.
func BaseTopic(deviceID string) string {
	return BuildCleanTopic(TopicRoot, deviceID)
}

// StateTopic returns the retained derived state topic for deviceID.
func StateTopic(deviceID string) string {
	return fmt.Sprintf("%s/state", BaseTopic(deviceID))
}

// AvailabilityTopic returns the online/offline topic for deviceID.
func AvailabilityTopic(deviceID string) string {
	return fmt.Sprintf("%s/availability", BaseTopic(deviceID))
}

// DiscoveryTopic returns the Home Assistant discovery topic of one entity
func DiscoveryTopic(prefix, entityType, deviceID, objectID string) string {
	return fmt.Sprintf("%s/%s/%s_%s/%s/config", prefix, entityType, TopicRoot, BuildCleanTopic(deviceID), objectID)
}

// BuildCleanTopic ensures topic follows MQTT standards
func BuildCleanTopic(parts ...string) string {
	var cleanParts []string
	for _, part := range parts {
		// Replace invalid characters
		clean := strings.ReplaceAll(part, " ", "_")
		clean = strings.ReplaceAll(clean, "+", "plus")
		clean = strings.ReplaceAll(clean, "#", "hash")
		clean = strings.ToLower(clean)
		cleanParts = append(cleanParts, clean)
	}
	return strings.Join(cleanParts, "/")
}
