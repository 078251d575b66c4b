package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	models "VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
	rescache "VoltMetrics/internal/service/cache"
	"VoltMetrics/internal/services/telemetry"
	"VoltMetrics/internal/usecase"
	xlogger "VoltMetrics/pkg/logger"

	"github.com/labstack/echo/v4"
)

type fakeStore struct {
	records []models.Record
}

func (s *fakeStore) GetRecords(context.Context, time.Time, time.Time) ([]models.Record, error) {
	return s.records, nil
}

func (s *fakeStore) GetSeries(context.Context, string, domrepo.SeriesAgg, time.Time, time.Time, domrepo.Timeframe) ([]float64, error) {
	return nil, nil
}

type memBytesCache struct {
	m map[string][]byte
}

func newMemBytesCache() *memBytesCache { return &memBytesCache{m: make(map[string][]byte)} }

func (c *memBytesCache) GetBytes(key string) ([]byte, bool, error) {
	b, ok := c.m[key]
	return b, ok, nil
}

func (c *memBytesCache) SetBytes(key string, b []byte, _ time.Duration) error {
	c.m[key] = append([]byte(nil), b...)
	return nil
}

type noopMetrics struct{}

func (noopMetrics) RecordEventIngested(string, string)     {}
func (noopMetrics) RecordError(string)                     {}
func (noopMetrics) RecordLastOrderValue(string, float64)   {}
func (noopMetrics) RecordLatency(string, float64)          {}
func (noopMetrics) RecordCalculation(string, int, float64) {}
func (noopMetrics) RecordCacheHit(string)                  {}
func (noopMetrics) RecordCacheMiss(string)                 {}

func newTestHandler(records []models.Record) *AnalyticsHandler {
	store := &fakeStore{records: records}
	rc := rescache.NewResultCache()
	calc := usecase.NewCalculator(rc, noopMetrics{}, telemetry.NoopSink{}, xlogger.NewNop())
	h := NewAnalyticsHandler(xlogger.NewNop(), store, calc, usecase.NewDashboardService(store, calc))
	h.SetCache(newMemBytesCache())
	return h
}

func getMetric(t *testing.T, h *AnalyticsHandler, query string) float64 {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/metric?"+query, nil)
	rec := httptest.NewRecorder()
	if err := h.Metric(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var env struct {
		Status int             `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if env.Status != http.StatusOK {
		t.Fatalf("status = %d, body %s", env.Status, rec.Body.String())
	}
	var res struct {
		Value float64 `json:"value"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("bad result: %v", err)
	}
	return res.Value
}

func revenueRecords(vs ...float64) []models.Record {
	out := make([]models.Record, len(vs))
	for i, v := range vs {
		out[i] = models.Record{"revenue": v}
	}
	return out
}

func TestMetricResponseCacheVariesWithPrecision(t *testing.T) {
	h := newTestHandler(revenueRecords(2.34567, 2.34567, 2.34567))

	if v := getMetric(t, h, "field=revenue&from=100&to=200&precision=5"); v != 2.34567 {
		t.Fatalf("precision=5 value = %v, want 2.34567", v)
	}
	if v := getMetric(t, h, "field=revenue&from=100&to=200&precision=1"); v != 2.3 {
		t.Fatalf("precision=1 value = %v, want 2.3", v)
	}
}

func TestMetricResponseCacheVariesWithOutlierOption(t *testing.T) {
	h := newTestHandler(revenueRecords(1, 2, 3, 4, 5, 100))

	with := getMetric(t, h, "field=revenue&from=100&to=200&outliers=true")
	if with != 3 {
		t.Fatalf("outlier-stripped mean = %v, want 3", with)
	}
	without := getMetric(t, h, "field=revenue&from=100&to=200&outliers=false")
	if without == with {
		t.Fatalf("outliers=false served the stripped result %v", without)
	}
}

func TestMetricCatalogOptionsOverride(t *testing.T) {
	h := newTestHandler(revenueRecords(2.34567, 2.34567, 2.34567))

	// catalog defaults apply when no option parameters are supplied
	if v := getMetric(t, h, "name=financial.revenue&from=100&to=200"); v != 2.35 {
		t.Fatalf("catalog default value = %v, want 2.35", v)
	}
	// an explicit precision overrides the catalog's choice
	if v := getMetric(t, h, "name=financial.revenue&from=100&to=200&precision=1"); v != 2.3 {
		t.Fatalf("precision=1 override value = %v, want 2.3", v)
	}
}
