package main

import (
	"context"

	"github.com/tournevent/dhlexpress/internal/config"
	"github.com/tournevent/dhlexpress/internal/events"
	"github.com/tournevent/dhlexpress/internal/telemetry"
	"github.com/tournevent/dhlexpress/pkg/labelstore"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/tournevent/dhlexpress/pkg/shipper/dhl"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const dhlCarrier = "dhl"

// app holds the wired collaborators shared by every command.
type app struct {
	cfg       *config.Config
	logger    *otelzap.Logger
	registry  *shipper.Registry
	publisher events.Publisher
	shutdown  func(context.Context) error
}

func setup(ctx context.Context, logOutputs ...string) (*app, error) {
	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel, logOutputs...)
	if err != nil {
		return nil, err
	}

	tracer, shutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
		tracer, shutdown = nil, func(context.Context) error { return nil }
	}

	publisher := initPublisher(cfg, logger)
	registry := initShipperRegistry(cfg, logger, tracer, publisher)

	return &app{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		publisher: publisher,
		shutdown:  shutdown,
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("Failed to close event publisher", zap.Error(err))
	}
	if err := a.shutdown(ctx); err != nil {
		a.logger.Warn("Failed to flush traces", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string, outputs ...string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level, outputs...)
}

func initTracer(ctx context.Context, cfg *config.Config) (trace.Tracer, func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return nil, func(context.Context) error { return nil }, nil
	}

	return telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version, cfg.Attributes()...)
}

func initPublisher(cfg *config.Config, logger *otelzap.Logger) events.Publisher {
	if !cfg.KafkaEnabled {
		return events.Nop{}
	}
	logger.Info("Publishing shipment events",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
	)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
}

func initShipperRegistry(cfg *config.Config, logger *otelzap.Logger, tracer trace.Tracer, publisher events.Publisher) *shipper.Registry {
	registry := shipper.NewRegistry()

	client := dhl.New(dhl.Config{
		Username:      cfg.DHLUsername,
		Password:      cfg.DHLPassword,
		AccountNumber: cfg.DHLAccountNumber,
		TestMode:      cfg.DHLTestMode,
		BaseURL:       cfg.DHLBaseURL,
		Timeout:       cfg.DHLTimeout,
		UseMock:       cfg.DHLUseMock,
	}, logger, tracer,
		dhl.WithFormatter(cfg.TimestampFormatter()),
		dhl.WithLabelStore(labelstore.NewFileStore(cfg.LabelDir)),
		dhl.WithPublisher(publisher),
	)
	registry.Register(client)

	return registry
}
