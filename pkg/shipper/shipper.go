// Package shipper provides an abstraction layer for express shipping carriers.
package shipper

import (
	"context"
	"time"
)

// Shipper defines the interface that all shipping carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "dhl").
	Name() string

	// CreateShipment derives the missing fields of s, books it with the
	// carrier and stamps the carrier identifiers onto s on success.
	// Carrier rejections come back as an unsuccessful response, not an error.
	CreateShipment(ctx context.Context, s *Shipment) (*ShipmentResponse, error)

	// Track returns the tracking history of the given waybills.
	Track(ctx context.Context, waybills []string) (*TrackingResponse, error)

	// ProofOfDelivery retrieves the proof-of-delivery document of a waybill.
	ProofOfDelivery(ctx context.Context, waybill string, detailed bool) (*ProofOfDeliveryResponse, error)
}

// LabelStore persists the label document of a booked shipment, keyed by
// its waybill (the shipment identification number).
type LabelStore interface {
	Save(waybill string, label []byte) error
}

// EventPublisher emits domain events keyed by waybill.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// ShipmentCreatedEvent is published after a shipment was booked.
type ShipmentCreatedEvent struct {
	Carrier              string      `json:"carrier"`
	IdentificationNumber string      `json:"identificationNumber"`
	TrackingNumbers      []string    `json:"trackingNumbers"`
	DispatchNumber       string      `json:"dispatchNumber,omitempty"`
	ServiceType          ServiceType `json:"serviceType"`
	SenderCountry        string      `json:"senderCountry"`
	ReceiverCountry      string      `json:"receiverCountry"`
	CreatedAt            time.Time   `json:"createdAt"`
}
