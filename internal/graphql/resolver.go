package graphql

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tournevent/dhlexpress/internal/telemetry"
	"github.com/tournevent/dhlexpress/pkg/shipper"
	"github.com/tournevent/dhlexpress/pkg/shipper/dhl"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const dhlCarrier = "dhl"

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Registry *shipper.Registry
	Logger   *otelzap.Logger
	Metrics  *telemetry.Metrics
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(registry *shipper.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Resolver {
	return &Resolver{
		Registry: registry,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// Query returns the query resolver.
func (r *Resolver) Query() *QueryResolver {
	return &QueryResolver{r}
}

// Mutation returns the mutation resolver.
func (r *Resolver) Mutation() *MutationResolver {
	return &MutationResolver{r}
}

type QueryResolver struct{ *Resolver }

type MutationResolver struct{ *Resolver }

// Health is always "ok" while the process serves requests.
func (r *QueryResolver) Health(ctx context.Context) (string, error) {
	return "ok", nil
}

// Carriers lists the registered carriers in name order.
func (r *QueryResolver) Carriers(ctx context.Context) ([]string, error) {
	names := r.Registry.Names()
	sort.Strings(names)
	return names, nil
}

// DhlTrack tracks the waybills in batches the carrier accepts.
func (r *QueryResolver) DhlTrack(ctx context.Context, input TrackInput) (*TrackPayload, error) {
	start := time.Now()
	if len(input.Waybills) == 0 {
		err := shipper.NewInputError("waybills", "at least one waybill is required", shipper.ErrInvalidInput)
		r.observe("track", start, err, false)
		return nil, err
	}

	resp, err := r.Registry.TrackBatches(ctx, dhlCarrier, input.Waybills, dhl.TrackingBatchSize)
	if err != nil {
		r.observe("track", start, err, false)
		r.Logger.Ctx(ctx).Error("Tracking failed", zap.Int("waybills", len(input.Waybills)), zap.Error(err))
		return nil, err
	}
	r.observe("track", start, nil, resp.Success)
	return trackingToPayload(resp), nil
}

// DhlProofOfDelivery fetches the proof-of-delivery document of a waybill.
func (r *QueryResolver) DhlProofOfDelivery(ctx context.Context, input ProofOfDeliveryInput) (*ProofOfDeliveryPayload, error) {
	start := time.Now()
	carrier, err := r.Registry.Get(dhlCarrier)
	if err != nil {
		r.observe("proof_of_delivery", start, err, false)
		return nil, err
	}

	detailed := input.Detailed != nil && *input.Detailed
	resp, err := carrier.ProofOfDelivery(ctx, input.Waybill, detailed)
	if err != nil {
		r.observe("proof_of_delivery", start, err, false)
		return nil, err
	}
	r.observe("proof_of_delivery", start, nil, resp.Success)
	return proofOfDeliveryToPayload(resp), nil
}

// DhlCreateShipment books a shipment. Carrier rejections are reported in the
// payload, malformed input as an error.
func (r *MutationResolver) DhlCreateShipment(ctx context.Context, input CreateShipmentInput) (*CreateShipmentPayload, error) {
	start := time.Now()
	s, err := shipmentInputToModel(input)
	if err != nil {
		r.observe("create_shipment", start, err, false)
		return nil, err
	}

	carrier, err := r.Registry.Get(dhlCarrier)
	if err != nil {
		r.observe("create_shipment", start, err, false)
		return nil, err
	}

	resp, err := carrier.CreateShipment(ctx, s)
	if err != nil {
		r.observe("create_shipment", start, err, false)
		return nil, err
	}
	if !resp.Success {
		r.Logger.Ctx(ctx).Warn("Shipment rejected",
			zap.String("sender_country", s.Sender.CountryCode),
			zap.String("receiver_country", s.Receiver.CountryCode),
			zap.Int("errors", len(resp.Errors)),
		)
	}
	r.observe("create_shipment", start, nil, resp.Success)
	return shipmentToPayload(s, resp), nil
}

func (r *Resolver) observe(operation string, start time.Time, err error, success bool) {
	if r.Metrics == nil {
		return
	}
	status := "success"
	switch {
	case err != nil:
		status = "error"
		r.Metrics.RecordError(dhlCarrier, errorType(err))
	case !success:
		status = "failure"
	}
	r.Metrics.RecordRequest(operation, dhlCarrier, status, time.Since(start).Seconds())
}

func errorType(err error) string {
	var shipperErr *shipper.ShipperError
	switch {
	case shipper.IsCallerError(err):
		return "input"
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return "not_found"
	case errors.As(err, &shipperErr):
		return "transport"
	default:
		return "internal"
	}
}
