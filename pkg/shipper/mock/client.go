// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/tournevent/dhlexpress/pkg/shipper"
)

// Client is a mock shipper for testing.
type Client struct {
	name   string
	offset time.Duration
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// CreateShipment derives the shipment fields and books it with fake numbers.
func (c *Client) CreateShipment(ctx context.Context, s *shipper.Shipment) (*shipper.ShipmentResponse, error) {
	if s.Submitted() {
		return nil, shipper.ErrAlreadySubmitted
	}
	now := time.Now()
	if _, err := s.Derive(shipper.NewTimestampFormatter(c.offset), now); err != nil {
		return nil, err
	}

	id := fmt.Sprintf("%010d", now.UnixNano()%10000000000)
	tracking := make([]string, len(s.Packages))
	for i := range s.Packages {
		tracking[i] = fmt.Sprintf("JD%s%02d", id, i+1)
	}

	resp := &shipper.ShipmentResponse{
		Response:             shipper.Response{Success: true},
		IdentificationNumber: id,
		TrackingNumbers:      tracking,
		LabelBytes:           []byte("%PDF-1.4 mock " + c.name + " label"),
	}
	if err := s.Attach(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Track returns one transit checkpoint per waybill.
func (c *Client) Track(ctx context.Context, waybills []string) (*shipper.TrackingResponse, error) {
	resp := &shipper.TrackingResponse{
		Response:       shipper.Response{Success: true},
		ShipmentEvents: make([]shipper.TrackingEvent, 0, len(waybills)),
		PieceEvents:    make(map[string][]shipper.TrackingEvent),
	}
	for _, waybill := range waybills {
		resp.ShipmentEvents = append(resp.ShipmentEvents, shipper.TrackingEvent{
			Waybill:             waybill,
			Code:                "PU",
			LocationCode:        "LEJ",
			LocationDescription: "LEIPZIG - GERMANY",
		})
	}
	return resp, nil
}

// ProofOfDelivery returns a placeholder document.
func (c *Client) ProofOfDelivery(ctx context.Context, waybill string, detailed bool) (*shipper.ProofOfDeliveryResponse, error) {
	return &shipper.ProofOfDeliveryResponse{
		Response: shipper.Response{Success: true},
		Document: []byte(fmt.Sprintf("%%PDF-1.4 mock %s POD %s detailed=%t", c.name, waybill, detailed)),
	}, nil
}

var _ shipper.Shipper = (*Client)(nil)
