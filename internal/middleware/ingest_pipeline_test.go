package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"VoltMetrics/internal/domain/models"
)

type stubProc struct {
	calls int
	err   error
}

func (p *stubProc) Process(ctx context.Context, e *models.SaleEvent) error {
	p.calls++
	return p.err
}

type stubMetrics struct {
	errs map[string]int
}

func newStubMetrics() *stubMetrics { return &stubMetrics{errs: make(map[string]int)} }

func (m *stubMetrics) RecordEventIngested(backend, warehouse string) {}
func (m *stubMetrics) RecordError(kind string) { m.errs[kind]++ }
func (m *stubMetrics) RecordLastOrderValue(warehouse string, value float64) {}
func (m *stubMetrics) RecordLatency(op string, seconds float64) {}
func (m *stubMetrics) RecordCalculation(op string, n int, seconds float64) {}
func (m *stubMetrics) RecordCacheHit(op string) {}
func (m *stubMetrics) RecordCacheMiss(op string) {}

func validSale() *models.SaleEvent {
	return &models.SaleEvent{
		OrderID:   "o-1",
		SKU:       "BAT-18V",
		Warehouse: "wh-east",
		Quantity:  2,
		UnitPrice: 49.9,
		Revenue:   99.8,
		Timestamp: time.Now().Unix(),
	}
}

func TestPipelineRejectsInvalidEvents(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, newStubMetrics())

	cases := []*models.SaleEvent{
		nil,
		{SKU: "x", Warehouse: "w", Timestamp: 1},                               // no order
		{OrderID: "o", SKU: "x", Timestamp: 1},                                 // no warehouse
		{OrderID: "o", SKU: "x", Warehouse: "w"},                               // no timestamp
		{OrderID: "o", SKU: "x", Warehouse: "w", Timestamp: 1, Quantity: -1},   // negative qty
		{OrderID: "o", SKU: "x", Warehouse: "w", Timestamp: 1, UnitPrice: -10}, // negative price
	}
	for i, e := range cases {
		if err := p.Process(context.Background(), e); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if proc.calls != 0 {
		t.Fatalf("invalid events reached processor: %d", proc.calls)
	}
}

func TestPipelineForwardsValidEvent(t *testing.T) {
	proc := &stubProc{}
	p := NewIngestPipeline(proc, newStubMetrics())

	if err := p.Process(context.Background(), validSale()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected 1 processor call, got %d", proc.calls)
	}
}

func TestPipelineThrottlesPerWarehouse(t *testing.T) {
	proc := &stubProc{}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithMaxRPS(1))

	// two events back to back in the same warehouse: second is dropped silently
	if err := p.Process(context.Background(), validSale()); err != nil {
		t.Fatalf("first event: %v", err)
	}
	if err := p.Process(context.Background(), validSale()); err != nil {
		t.Fatalf("throttled event must not error: %v", err)
	}
	if proc.calls != 1 {
		t.Fatalf("expected 1 forwarded event, got %d", proc.calls)
	}
	if m.errs["pipeline_throttle"] != 1 {
		t.Fatalf("expected throttle recorded once, got %d", m.errs["pipeline_throttle"])
	}

	// a different warehouse is not throttled
	other := validSale()
	other.Warehouse = "wh-west"
	if err := p.Process(context.Background(), other); err != nil {
		t.Fatalf("other warehouse: %v", err)
	}
	if proc.calls != 2 {
		t.Fatalf("expected 2 forwarded events, got %d", proc.calls)
	}
}

func TestPipelineBuffersOnDownstreamError(t *testing.T) {
	proc := &stubProc{err: errors.New("kafka down")}
	m := newStubMetrics()
	p := NewIngestPipeline(proc, m, WithBufferSize(4))

	if err := p.Process(context.Background(), validSale()); err == nil {
		t.Fatalf("expected downstream error")
	}
	if len(p.bufCh) != 1 {
		t.Fatalf("expected 1 buffered event, got %d", len(p.bufCh))
	}
	if m.errs["pipeline_process"] != 1 {
		t.Fatalf("expected process error recorded")
	}
}
