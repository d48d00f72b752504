// Package dhl provides integration with the DHL Express web services.
package dhl

import (
	"context"
	"errors"
	"time"

	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const carrierName = "dhl"

// TrackingBatchSize is the number of waybills DHL accepts per tracking request.
const TrackingBatchSize = 10

// Config holds DHL configuration.
type Config struct {
	Username      string
	Password      string
	AccountNumber string
	TestMode      bool
	BaseURL       string
	Timeout       time.Duration
	UseMock       bool
}

// Client is the DHL Express API client.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	formatter *shipper.TimestampFormatter
	labels    shipper.LabelStore
	publisher shipper.EventPublisher
	now       func() time.Time
}

// Option configures optional collaborators of a Client.
type Option func(*Client)

// WithLabelStore saves the label of every booked shipment.
func WithLabelStore(store shipper.LabelStore) Option {
	return func(c *Client) {
		c.labels = store
	}
}

// WithPublisher publishes a ShipmentCreatedEvent for every booked shipment.
func WithPublisher(p shipper.EventPublisher) Option {
	return func(c *Client) {
		c.publisher = p
	}
}

// WithFormatter overrides the process-local timestamp formatter.
func WithFormatter(f *shipper.TimestampFormatter) Option {
	return func(c *Client) {
		c.formatter = f
	}
}

// WithClock overrides the time source used for defaults.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a new DHL client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer, opts ...Option) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewSOAPAPIClient(SOAPAPIClientConfig{
			Username: cfg.Username,
			Password: cfg.Password,
			Account:  cfg.AccountNumber,
			TestMode: cfg.TestMode,
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer, opts...)
}

// NewWithAPIClient creates a new DHL client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer, opts ...Option) *Client {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	c := &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		formatter: shipper.LocalTimestampFormatter(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// CreateShipment derives the shipment, books it with DHL and attaches the
// result. A shipment that already holds a result is rejected without
// contacting DHL. The guard is not synchronized: a Shipment must not be
// submitted from several goroutines at once.
func (c *Client) CreateShipment(ctx context.Context, s *shipper.Shipment) (*shipper.ShipmentResponse, error) {
	ctx, span := c.tracer.Start(ctx, "dhl.CreateShipment")
	defer span.End()

	if s == nil {
		return nil, shipper.NewInputError("shipment", "is required", shipper.ErrInvalidInput)
	}
	if s.Submitted() {
		span.SetStatus(codes.Error, shipper.ErrAlreadySubmitted.Error())
		return nil, shipper.ErrAlreadySubmitted
	}

	derived, err := s.Derive(c.formatter, c.now())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid shipment")
		return nil, err
	}

	log := c.logger.Ctx(ctx)
	log.Info("Creating DHL shipment",
		zap.String("sender_country", s.Sender.CountryCode),
		zap.String("receiver_country", s.Receiver.CountryCode),
		zap.String("service_type", string(derived.ServiceType)),
		zap.String("drop_off_type", string(derived.DropOffType)),
		zap.Int("package_count", len(s.Packages)),
	)
	span.SetAttributes(
		attribute.String("dhl.service_type", string(derived.ServiceType)),
		attribute.Int("dhl.package_count", len(s.Packages)),
	)

	reply, err := c.apiClient.CreateShipment(ctx, BuildShipmentRequest(s, derived, c.config.AccountNumber))
	if err != nil {
		fault, ferr := c.fault(ctx, span, "create_shipment", err)
		if ferr != nil {
			return nil, ferr
		}
		return &shipper.ShipmentResponse{Response: fault}, nil
	}

	resp := InterpretShipmentReply(reply)
	if !resp.Success {
		log.Warn("DHL rejected shipment", zap.Any("errors", resp.Errors))
		span.SetStatus(codes.Error, "shipment rejected")
		return resp, nil
	}

	if err := s.Attach(resp); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("dhl.waybill", resp.IdentificationNumber))
	log.Info("Created DHL shipment",
		zap.String("waybill", resp.IdentificationNumber),
		zap.Strings("tracking_numbers", resp.TrackingNumbers),
		zap.String("dispatch_number", resp.DispatchNumber),
	)

	c.saveLabel(ctx, resp)
	c.publishCreated(ctx, s, derived, resp)
	return resp, nil
}

// Track returns the checkpoints of the given waybills.
func (c *Client) Track(ctx context.Context, waybills []string) (*shipper.TrackingResponse, error) {
	ctx, span := c.tracer.Start(ctx, "dhl.Track")
	defer span.End()

	if len(waybills) == 0 {
		return nil, shipper.NewInputError("waybills", "at least one waybill is required", shipper.ErrInvalidInput)
	}
	span.SetAttributes(attribute.StringSlice("dhl.waybills", waybills))

	c.logger.Ctx(ctx).Info("Tracking DHL shipments", zap.Strings("waybills", waybills))

	reply, err := c.apiClient.TrackShipment(ctx, waybills)
	if err != nil {
		fault, ferr := c.fault(ctx, span, "track", err)
		if ferr != nil {
			return nil, ferr
		}
		return &shipper.TrackingResponse{Response: fault}, nil
	}

	return InterpretTrackingReply(reply), nil
}

// ProofOfDelivery retrieves the ePOD document of a waybill, in detail or as
// a summary.
func (c *Client) ProofOfDelivery(ctx context.Context, waybill string, detailed bool) (*shipper.ProofOfDeliveryResponse, error) {
	ctx, span := c.tracer.Start(ctx, "dhl.ProofOfDelivery")
	defer span.End()

	if waybill == "" {
		return nil, shipper.NewInputError("waybill", "is required", shipper.ErrInvalidInput)
	}
	span.SetAttributes(
		attribute.String("dhl.waybill", waybill),
		attribute.Bool("dhl.detailed", detailed),
	)

	log := c.logger.Ctx(ctx)
	log.Info("Retrieving DHL proof of delivery",
		zap.String("waybill", waybill),
		zap.Bool("detailed", detailed),
	)

	reply, err := c.apiClient.RetrieveProofOfDelivery(ctx, waybill, detailed)
	if err != nil {
		fault, ferr := c.fault(ctx, span, "proof_of_delivery", err)
		if ferr != nil {
			return nil, ferr
		}
		return &shipper.ProofOfDeliveryResponse{Response: fault}, nil
	}

	resp := InterpretProofOfDeliveryReply(reply)
	if !resp.Success {
		log.Warn("DHL returned no proof of delivery",
			zap.String("waybill", waybill),
			zap.Any("errors", resp.Errors),
		)
	}
	return resp, nil
}

// fault turns a SOAP fault into a failure response. Any other transport
// error is returned as a ShipperError, retryable unless DHL rejected the
// credentials.
func (c *Client) fault(ctx context.Context, span trace.Span, operation string, err error) (shipper.Response, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var apiErr *APIError
	switch {
	case errors.Is(err, shipper.ErrAuthenticationFailed):
		c.logger.Ctx(ctx).Error("DHL rejected credentials", zap.String("operation", operation), zap.Error(err))
		return shipper.Response{}, shipper.NewShipperError(carrierName, "AUTH_ERROR", operation+" request unauthorized").
			WithCause(err)
	case errors.Is(err, shipper.ErrServiceUnavailable):
		c.logger.Ctx(ctx).Warn("DHL unavailable", zap.String("operation", operation), zap.Error(err))
		return shipper.Response{}, shipper.NewShipperError(carrierName, "SERVICE_UNAVAILABLE", operation+" request failed").
			WithCause(err).
			WithRetryable(true)
	case errors.As(err, &apiErr):
		c.logger.Ctx(ctx).Warn("DHL API fault",
			zap.String("operation", operation),
			zap.String("code", apiErr.Code),
			zap.String("description", apiErr.Description),
		)
		return shipper.Failed(shipper.Notification{Code: apiErr.Code, Message: apiErr.Description}), nil
	}

	c.logger.Ctx(ctx).Error("DHL API error", zap.String("operation", operation), zap.Error(err))
	return shipper.Response{}, shipper.NewShipperError(carrierName, "TRANSPORT_ERROR", operation+" request failed").
		WithCause(err).
		WithRetryable(true)
}

func (c *Client) saveLabel(ctx context.Context, resp *shipper.ShipmentResponse) {
	if c.labels == nil {
		return
	}
	if err := c.labels.Save(resp.IdentificationNumber, resp.LabelBytes); err != nil {
		c.logger.Ctx(ctx).Error("Failed to save DHL label",
			zap.String("waybill", resp.IdentificationNumber),
			zap.Error(err),
		)
	}
}

func (c *Client) publishCreated(ctx context.Context, s *shipper.Shipment, d *shipper.Derived, resp *shipper.ShipmentResponse) {
	if c.publisher == nil {
		return
	}
	event := shipper.ShipmentCreatedEvent{
		Carrier:              carrierName,
		IdentificationNumber: resp.IdentificationNumber,
		TrackingNumbers:      resp.TrackingNumbers,
		DispatchNumber:       resp.DispatchNumber,
		ServiceType:          d.ServiceType,
		SenderCountry:        s.Sender.CountryCode,
		ReceiverCountry:      s.Receiver.CountryCode,
		CreatedAt:            c.now().UTC(),
	}
	if err := c.publisher.Publish(ctx, resp.IdentificationNumber, event); err != nil {
		c.logger.Ctx(ctx).Error("Failed to publish shipment event",
			zap.String("waybill", resp.IdentificationNumber),
			zap.Error(err),
		)
	}
}

var _ shipper.Shipper = (*Client)(nil)
