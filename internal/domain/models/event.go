package models

import "time"

// SaleEvent is a single commerce transaction line emitted by the storefront
// event gateway. One event per SKU per order.
type SaleEvent struct {
	EventID      string
	OrderID      string
	SKU          string
	Category     string // "battery", "power_tool", "accessory", ...
	Channel      string // "web", "b2b"
	Warehouse    string
	Quantity     float64
	UnitPrice    float64
	Revenue      float64
	Cost         float64
	Discount     float64
	PickSeconds  float64 // warehouse pick-to-pack duration
	Filled       float64 // 1 if shipped complete, 0 if short-picked
	Returned     float64 // 1 if the line was returned
	Satisfaction float64 // post-purchase survey score, 0 when absent
	Timestamp    int64   // unix seconds
	OrgID        string
}

// Time returns the event timestamp as time.Time.
func (e *SaleEvent) Time() time.Time { return time.Unix(e.Timestamp, 0) }

// Record is a loosely-typed row handed to the metrics engine. Values may be
// missing or non-numeric; extraction filters them.
type Record map[string]any

// Record shapes the event into the field map the metrics engine consumes.
// Derived fields (margin, order_value) are computed here so every
// aggregator sees the same view.
func (e *SaleEvent) Record() Record {
	r := Record{
		"quantity":     e.Quantity,
		"unit_price":   e.UnitPrice,
		"revenue":      e.Revenue,
		"cost":         e.Cost,
		"discount":     e.Discount,
		"margin":       e.Revenue - e.Cost,
		"order_value":  e.Revenue,
		"pick_seconds": e.PickSeconds,
		"filled":       e.Filled,
		"returned":     e.Returned,
	}
	if e.Satisfaction > 0 {
		r["satisfaction"] = e.Satisfaction
	}
	return r
}

// CalculationEvent is the fire-and-forget telemetry payload emitted after
// each top-level engine calculation.
type CalculationEvent struct {
	Operation  string  `json:"operation"`
	DurationMS float64 `json:"duration_ms"`
	DataPoints int     `json:"data_points"`
	CacheHit   bool    `json:"cache_hit"`
}
