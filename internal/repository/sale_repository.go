package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"VoltMetrics/internal/domain/models"
	"VoltMetrics/internal/domain/repository"
	pkgkafka "VoltMetrics/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

const saleColumns = "ts, event_id, order_id, sku, category, channel, warehouse, quantity, unit_price, revenue, cost, discount, pick_seconds, filled, returned, satisfaction, org_id"

func saleArgs(e *models.SaleEvent) []interface{} {
	eventID := e.EventID
	if eventID == "" {
		// idempotency fallback when the gateway omits an id
		eventID = fmt.Sprintf("%s-%s-%d", e.OrderID, e.SKU, e.Timestamp)
	}
	return []interface{}{
		time.Unix(e.Timestamp, 0),
		eventID,
		e.OrderID,
		e.SKU,
		e.Category,
		e.Channel,
		e.Warehouse,
		e.Quantity,
		e.UnitPrice,
		e.Revenue,
		e.Cost,
		e.Discount,
		e.PickSeconds,
		e.Filled,
		e.Returned,
		e.Satisfaction,
		e.OrgID,
	}
}

func (s *ClickHouseStorage) Store(ctx context.Context, e *models.SaleEvent) error {
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", s.table, saleColumns)
	_, err := s.db.ExecContext(ctx, q, saleArgs(e)...)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, events []*models.SaleEvent) error {
	if len(events) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	const chunkSize = 2000
	for start := 0; start < len(events); start += chunkSize {
		end := start + chunkSize
		if end > len(events) {
			end = len(events)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*17)
		for _, e := range events[start:end] {
			if e == nil || e.OrderID == "" || e.Timestamp == 0 {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, saleArgs(e)...)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, saleColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func salePayload(e *models.SaleEvent) map[string]interface{} {
	return map[string]interface{}{
		"event_id":     e.EventID,
		"order_id":     e.OrderID,
		"sku":          e.SKU,
		"category":     e.Category,
		"channel":      e.Channel,
		"warehouse":    e.Warehouse,
		"quantity":     e.Quantity,
		"unit_price":   e.UnitPrice,
		"revenue":      e.Revenue,
		"cost":         e.Cost,
		"discount":     e.Discount,
		"pick_seconds": e.PickSeconds,
		"filled":       e.Filled,
		"returned":     e.Returned,
		"satisfaction": e.Satisfaction,
		"t":            e.Timestamp,
		"org_id":       e.OrgID,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e *models.SaleEvent) error {
	// key by order id so one order's lines stay in partition order
	return p.producer.Publish(ctx, p.topic, []byte(e.OrderID), salePayload(e))
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, events []*models.SaleEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(events))
	for i, e := range events {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(e.OrderID),
			Value: salePayload(e),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
