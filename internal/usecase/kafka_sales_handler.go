package usecase

import (
	"context"
	"encoding/json"
	"time"

	"VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
	pkgkafka "VoltMetrics/pkg/kafka"
)

// KafkaSalesHandler consumes sale events off the bus and writes them to storage.
type KafkaSalesHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaSalesHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaSalesHandler {
	return &KafkaSalesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaSalesHandler) Topic() string { return h.topic }

func (h *KafkaSalesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		EventID      string  `json:"event_id"`
		OrderID      string  `json:"order_id"`
		SKU          string  `json:"sku"`
		Category     string  `json:"category"`
		Channel      string  `json:"channel"`
		Warehouse    string  `json:"warehouse"`
		Quantity     float64 `json:"quantity"`
		UnitPrice    float64 `json:"unit_price"`
		Revenue      float64 `json:"revenue"`
		Cost         float64 `json:"cost"`
		Discount     float64 `json:"discount"`
		PickSeconds  float64 `json:"pick_seconds"`
		Filled       float64 `json:"filled"`
		Returned     float64 `json:"returned"`
		Satisfaction float64 `json:"satisfaction"`
		T            int64   `json:"t"`
		OrgID        string  `json:"org_id"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.T > 1e11 { // ms
		m.T = m.T / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.T, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.SaleEvent{
		EventID:      m.EventID,
		OrderID:      m.OrderID,
		SKU:          m.SKU,
		Category:     m.Category,
		Channel:      m.Channel,
		Warehouse:    m.Warehouse,
		Quantity:     m.Quantity,
		UnitPrice:    m.UnitPrice,
		Revenue:      m.Revenue,
		Cost:         m.Cost,
		Discount:     m.Discount,
		PickSeconds:  m.PickSeconds,
		Filled:       m.Filled,
		Returned:     m.Returned,
		Satisfaction: m.Satisfaction,
		Timestamp:    m.T,
		OrgID:        m.OrgID,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordEventIngested("clickhouse", m.Warehouse)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSalesHandler)(nil)
