package shipper

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers.
type Registry struct {
	shippers map[string]Shipper
	mu       sync.RWMutex
}

// NewRegistry creates a new shipper registry.
func NewRegistry() *Registry {
	return &Registry{
		shippers: make(map[string]Shipper),
	}
}

// Register adds a shipper to the registry.
func (r *Registry) Register(s Shipper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shippers[s.Name()] = s
}

// Get returns a shipper by name.
func (r *Registry) Get(name string) (Shipper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.shippers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered shippers.
func (r *Registry) All() []Shipper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Shipper, 0, len(r.shippers))
	for _, s := range r.shippers {
		result = append(result, s)
	}
	return result
}

// Names returns the names of all registered shippers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shippers))
	for name := range r.shippers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered shippers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shippers)
}

// TrackBatches splits waybills into batches of at most batchSize, tracks the
// batches in parallel and merges the results in batch order.
// The merged response is successful only if every batch was.
func (r *Registry) TrackBatches(ctx context.Context, carrier string, waybills []string, batchSize int) (*TrackingResponse, error) {
	s, err := r.Get(carrier)
	if err != nil {
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = len(waybills)
	}

	batches := chunk(waybills, batchSize)
	results := make([]*TrackingResponse, len(batches))

	g, ctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			resp, err := s.Track(ctx, batch)
			if err != nil {
				return fmt.Errorf("%s: batch %d: %w", carrier, i, err)
			}
			results[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeTracking(results), nil
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for size > 0 && len(items) > 0 {
		n := min(size, len(items))
		out = append(out, items[:n])
		items = items[n:]
	}
	return out
}

func mergeTracking(results []*TrackingResponse) *TrackingResponse {
	merged := &TrackingResponse{
		Response:       Response{Success: true},
		ShipmentEvents: []TrackingEvent{},
		PieceEvents:    make(map[string][]TrackingEvent),
	}
	for _, resp := range results {
		if resp == nil {
			continue
		}
		if !resp.Success {
			merged.Success = false
		}
		merged.Errors = append(merged.Errors, resp.Errors...)
		merged.ShipmentEvents = append(merged.ShipmentEvents, resp.ShipmentEvents...)
		for piece, events := range resp.PieceEvents {
			merged.PieceEvents[piece] = append(merged.PieceEvents[piece], events...)
		}
	}
	return merged
}
