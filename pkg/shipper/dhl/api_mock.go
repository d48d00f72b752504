package dhl

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnCreateShipment          func(ctx context.Context, req *ShipmentRequest) (*ShipmentReply, error)
	OnRetrieveProofOfDelivery func(ctx context.Context, waybill string, detailed bool) (*PODReply, error)
	OnTrackShipment           func(ctx context.Context, waybills []string) (*TrackingReply, error)

	createCalls atomic.Int32
	podCalls    atomic.Int32
	trackCalls  atomic.Int32
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

// CreateShipmentCalls returns how many shipments were submitted.
func (m *MockAPIClient) CreateShipmentCalls() int {
	return int(m.createCalls.Load())
}

// ProofOfDeliveryCalls returns how many POD lookups were made.
func (m *MockAPIClient) ProofOfDeliveryCalls() int {
	return int(m.podCalls.Load())
}

// TrackShipmentCalls returns how many tracking lookups were made.
func (m *MockAPIClient) TrackShipmentCalls() int {
	return int(m.trackCalls.Load())
}

func (m *MockAPIClient) simulate(ctx context.Context) error {
	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.SimulateErrors {
		return &APIError{Code: "MOCK_ERROR", Description: "Simulated API error"}
	}
	return nil
}

// CreateShipment returns a booked shipment with one tracking number per package.
func (m *MockAPIClient) CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentReply, error) {
	m.createCalls.Add(1)
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	if m.OnCreateShipment != nil {
		return m.OnCreateShipment(ctx, req)
	}

	id := mockWaybill()
	results := make([]PackageResult, len(req.Packages))
	for i, pkg := range req.Packages {
		results[i] = PackageResult{
			Number:         fmt.Sprint(pkg.Number),
			TrackingNumber: fmt.Sprintf("JD01460000%s%02d", id, pkg.Number),
		}
	}

	reply := &ShipmentReply{
		Notifications:                []Notification{{Code: "0"}},
		ShipmentIdentificationNumber: &id,
		PackageResults:               results,
		LabelImages: []LabelImage{{
			Format:       "PDF",
			GraphicImage: []byte("%PDF-1.4 mock label " + id),
		}},
	}
	if req.PickupLocationCloseTime != "" {
		dispatch := "CBJ" + id[:6]
		reply.DispatchConfirmationNumber = &dispatch
	}
	return reply, nil
}

// RetrieveProofOfDelivery returns a placeholder document.
func (m *MockAPIClient) RetrieveProofOfDelivery(ctx context.Context, waybill string, detailed bool) (*PODReply, error) {
	m.podCalls.Add(1)
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	if m.OnRetrieveProofOfDelivery != nil {
		return m.OnRetrieveProofOfDelivery(ctx, waybill, detailed)
	}

	content := podSummaryContent
	if detailed {
		content = podDetailContent
	}
	return &PODReply{
		Shipments: []PODShipment{{
			ID: waybill,
			ShipmentDocuments: []PODShipmentDocumentation{{
				Documents: []PODDocument{{
					Images: []PODImage{{Data: []byte("%PDF-1.4 mock " + content + " " + waybill)}},
				}},
			}},
		}},
	}, nil
}

// TrackShipment returns a pickup and an arrival checkpoint per waybill.
func (m *MockAPIClient) TrackShipment(ctx context.Context, waybills []string) (*TrackingReply, error) {
	m.trackCalls.Add(1)
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}

	if m.OnTrackShipment != nil {
		return m.OnTrackShipment(ctx, waybills)
	}

	now := time.Now()
	date := now.Format("2006-01-02")
	clock := now.Format("15:04:05")

	reply := &TrackingReply{}
	for _, waybill := range waybills {
		pickup := ShipmentEvent{
			Date:         date,
			Time:         clock,
			ServiceEvent: &ServiceEvent{EventCode: "PU", Description: "Shipment picked up"},
			ServiceArea:  &ServiceArea{ServiceAreaCode: "LEJ", Description: "Leipzig - Germany"},
		}
		arrival := ShipmentEvent{
			Date:         date,
			Time:         clock,
			ServiceEvent: &ServiceEvent{EventCode: "AF", Description: "Arrived at Delivery Facility"},
			ServiceArea:  &ServiceArea{ServiceAreaCode: "MAD", Description: "Madrid - Spain"},
		}
		reply.AWBInfos = append(reply.AWBInfos, AWBInfo{
			AWBNumber:    waybill,
			Status:       &AWBStatus{ActionStatus: "success"},
			ShipmentInfo: &ShipmentInfo{Events: []ShipmentEvent{pickup, arrival}},
			Pieces: []PieceInfo{{
				Details: &PieceDetails{LicensePlate: "JD0146" + waybill},
				Events:  []PieceEvent{PieceEvent(pickup), PieceEvent(arrival)},
			}},
		})
	}
	return reply, nil
}

func mockWaybill() string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, uuid.NewString())
	for len(digits) < 10 {
		digits += "0"
	}
	return digits[:10]
}

var _ APIClient = (*MockAPIClient)(nil)
