package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jkaberg/bms-hass/internal/api"
	"github.com/jkaberg/bms-hass/internal/app"
	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/mqtt"
	"github.com/jkaberg/bms-hass/internal/transmission"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// version is injected at build time via ldflags
var version = "dev"

func main() {
	// A missing .env is normal; report it once the logger exists.
	envErr := godotenv.Load()

	cfg, resolveMode := parseFlags()

	logger := setupLogger(cfg.Verbose)
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.WithError(envErr).Warn("Failed to load .env file")
	}

	card, err := config.LoadCard(cfg.CardConfigPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load card config")
	}
	if err := card.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid card config")
	}
	for _, key := range card.Entities.Ignored {
		logger.WithField("key", key).Warn("Ignoring unknown entities key")
	}

	resolver := entities.New(card)

	// Resolve path ----------------------------------------------------------------
	if resolveMode {
		runResolveMode(resolver, logger)
		return
	}

	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}

	logFields := logrus.Fields{
		"version":     version,
		"device_id":   cfg.DeviceID,
		"card":        cfg.CardConfigPath,
		"integration": resolver.Integration(),
		"entities":    len(resolver.AllEntityIDs()),
		"mqtt_int":    cfg.PublishInterval,
	}
	if cfg.ForceUpdateInterval > 0 {
		logFields["force_update_int"] = cfg.ForceUpdateInterval
	}
	if cfg.HasHTTP() {
		logFields["http"] = cfg.HTTPAddr
	}
	logger.WithFields(logFields).Info("Starting BMS-HASS")
	if len(resolver.AllEntityIDs()) == 0 {
		logger.Warn("No entities resolved; set entity_pattern.prefix or explicit entities in the card config")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("Shutdown signal received")
		cancel()
	}()

	// Core clients ---------------------------------------------------------------
	mqttClient, err := mqtt.NewClient(cfg.MQTTUrl, cfg.DeviceID, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create MQTT client")
	}
	defer mqttClient.Disconnect(250)

	mqttTx := transmission.NewMQTTTransmitter(mqttClient, card, resolver.TempCellLabels(), cfg.DeviceID, cfg.DiscoveryPrefix, logger)
	logger.Info("MQTT transmitter ready")

	apiServer := api.NewServer(card, resolver, logger)

	// Run application ------------------------------------------------------------
	app.Run(ctx, cfg, resolver, mqttClient, mqttTx, apiServer, logger)

	if err := mqttTx.PublishAvailability(false); err != nil {
		logger.WithError(err).Debug("Failed to publish offline availability")
	}
	logger.Info("BMS-HASS stopped")
}

// -----------------------------------------------------------------------------
// Helpers & Flags
// -----------------------------------------------------------------------------

func parseFlags() (*config.Config, bool) {
	cfg := config.GetDefaultConfig()

	showVersion := flag.Bool("version", false, "Show version and exit")
	resolve := flag.Bool("resolve", false, "Print the resolved entity map and exit")

	flag.StringVar(&cfg.MQTTUrl, "mqtt-url", getEnv("BMS_HASS_MQTT_URL", cfg.MQTTUrl), "MQTT URL")
	flag.StringVar(&cfg.StatestreamPrefix, "statestream-prefix", getEnv("BMS_HASS_STATESTREAM_PREFIX", cfg.StatestreamPrefix), "mqtt_statestream base topic")
	flag.StringVar(&cfg.DiscoveryPrefix, "discovery-prefix", getEnv("BMS_HASS_DISCOVERY_PREFIX", cfg.DiscoveryPrefix), "HA discovery prefix")
	flag.StringVar(&cfg.DeviceID, "device-id", getEnv("BMS_HASS_DEVICE_ID", cfg.DeviceID), "Device identifier")
	flag.StringVar(&cfg.CardConfigPath, "card", getEnv("BMS_HASS_CARD", cfg.CardConfigPath), "Card config YAML")
	flag.StringVar(&cfg.HTTPAddr, "http-addr", getEnv("BMS_HASS_HTTP_ADDR", cfg.HTTPAddr), "Read-only API listen address, empty disables it")
	flag.BoolVar(&cfg.Verbose, "verbose", getEnv("BMS_HASS_VERBOSE", "false") == "true", "Verbose logging")

	publishIntervalStr := flag.String("publish-interval", getEnv("BMS_HASS_PUBLISH_INTERVAL", ""), "MQTT publish interval (e.g. 5s)")
	forceUpdateIntervalStr := flag.String("force-update-interval", getEnv("BMS_HASS_FORCE_UPDATE_INTERVAL", ""), "Republish unchanged state at this interval (e.g. 10m, 0 = disabled)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bms-hass %s\n", version)
		os.Exit(0)
	}

	// Duration overrides
	if d, ok := parseInterval(*publishIntervalStr); ok && d > 0 {
		cfg.PublishInterval = d
	}
	if d, ok := parseInterval(*forceUpdateIntervalStr); ok {
		cfg.ForceUpdateInterval = d
	}

	return cfg, *resolve
}

// parseInterval accepts a Go duration or a plain number of seconds.
func parseInterval(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d, true
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return time.Duration(v) * time.Second, true
	}
	return 0, false
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setupLogger(verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return l
}

func runResolveMode(resolver *entities.Resolver, logger *logrus.Logger) {
	out := struct {
		Integration string            `json:"integration"`
		CellCount   int               `json:"cell_count"`
		Entities    map[string]string `json:"entities"`
		TempLabels  []string          `json:"temp_labels"`
		Alarms      interface{}       `json:"alarms"`
	}{
		Integration: string(resolver.Integration()),
		CellCount:   resolver.CellCount(),
		Entities:    resolver.Entities(),
		TempLabels:  resolver.TempCellLabels(),
		Alarms:      resolver.Alarms(),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.WithError(err).Fatal("Resolve mode failed")
	}
}
