package repository

import (
	"context"
	"time"

	"VoltMetrics/internal/domain/models"
)

// EventStream is a live feed of sale events from the storefront gateway.
type EventStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.SaleEvent, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes sale events onto the event bus.
type Publisher interface {
	Publish(ctx context.Context, e *models.SaleEvent) error
	PublishBatch(ctx context.Context, events []*models.SaleEvent) error
	Close() error
}

// Storage persists sale events.
type Storage interface {
	Init(ctx context.Context) error
	Store(ctx context.Context, e *models.SaleEvent) error
	StoreBatch(ctx context.Context, events []*models.SaleEvent) error
	Health(ctx context.Context) error
	Close() error
}

// RecordStore provides read access to persisted events for the metrics
// engine: raw records for sample-level metrics and bucketed series for
// trend/seasonal analysis.
type RecordStore interface {
	GetRecords(ctx context.Context, from, to time.Time) ([]models.Record, error)
	GetSeries(ctx context.Context, field string, agg SeriesAgg, from, to time.Time, tf Timeframe) ([]float64, error)
}

// Metrics is the operational metrics sink (Prometheus in production).
type Metrics interface {
	RecordEventIngested(backend, warehouse string)
	RecordError(kind string)
	RecordLastOrderValue(warehouse string, value float64)
	RecordLatency(op string, seconds float64)
	RecordCalculation(op string, dataPoints int, seconds float64)
	RecordCacheHit(op string)
	RecordCacheMiss(op string)
}

// TelemetrySink receives fire-and-forget calculation events. Emission must
// never block or fail the calculation path.
type TelemetrySink interface {
	Emit(ctx context.Context, ev models.CalculationEvent)
}
