package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// DHL Express
	DHLUsername      string        `envconfig:"DHL_USERNAME"`
	DHLPassword      string        `envconfig:"DHL_PASSWORD"`
	DHLAccountNumber string        `envconfig:"DHL_ACCOUNT_NUMBER"`
	DHLTestMode      bool          `envconfig:"DHL_TEST_MODE" default:"true"`
	DHLBaseURL       string        `envconfig:"DHL_BASE_URL"`
	DHLTimeout       time.Duration `envconfig:"DHL_TIMEOUT" default:"30s"`
	DHLUseMock       bool          `envconfig:"DHL_USE_MOCK" default:"false"`
	DHLUTCOffset     string        `envconfig:"DHL_UTC_OFFSET"` // ±HH:MM, empty means the process time zone

	// Labels
	LabelDir string `envconfig:"LABEL_DIR" default:"labels"`

	// Events
	KafkaEnabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"dhl.shipments"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"dhlexpress"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if cfg.DHLUTCOffset != "" {
		if _, err := shipper.ParseOffset(cfg.DHLUTCOffset); err != nil {
			return nil, fmt.Errorf("loading config: DHL_UTC_OFFSET: %w", err)
		}
	}
	if !cfg.DHLUseMock && (cfg.DHLUsername == "" || cfg.DHLPassword == "" || cfg.DHLAccountNumber == "") {
		return nil, fmt.Errorf("loading config: DHL_USERNAME, DHL_PASSWORD and DHL_ACCOUNT_NUMBER are required unless DHL_USE_MOCK is set")
	}
	return &cfg, nil
}

// TimestampFormatter returns the formatter for the configured UTC offset.
func (c *Config) TimestampFormatter() *shipper.TimestampFormatter {
	if c.DHLUTCOffset == "" {
		return shipper.LocalTimestampFormatter()
	}
	offset, err := shipper.ParseOffset(c.DHLUTCOffset)
	if err != nil {
		return shipper.LocalTimestampFormatter()
	}
	return shipper.NewTimestampFormatter(offset)
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("dhl.test_mode", c.DHLTestMode),
		attribute.Bool("dhl.mock", c.DHLUseMock),
		attribute.Bool("kafka.enabled", c.KafkaEnabled),
	}
}
