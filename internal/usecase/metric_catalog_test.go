package usecase

import (
	"context"
	"testing"
	"time"

	"VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
)

func TestLookupMetric(t *testing.T) {
	e, ok := LookupMetric("financial.revenue")
	if !ok || e.Field != "revenue" || e.Domain != "financial" {
		t.Fatalf("lookup failed: %+v %v", e, ok)
	}
	if _, ok := LookupMetric("financial.unknown"); ok {
		t.Fatal("unknown name should not resolve")
	}
}

func TestCatalogDomains(t *testing.T) {
	domains := CatalogDomains()
	want := []string{"customer", "financial", "product", "warehouse"}
	if len(domains) != len(want) {
		t.Fatalf("domains = %v", domains)
	}
	for i, d := range want {
		if domains[i] != d {
			t.Fatalf("domains = %v, want %v", domains, want)
		}
	}
}

func TestDomainEntriesAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, domain := range CatalogDomains() {
		for _, e := range DomainEntries(domain) {
			if seen[e.Name] {
				t.Fatalf("duplicate catalog name %s", e.Name)
			}
			seen[e.Name] = true
			if e.Field == "" {
				t.Fatalf("entry %s has no field", e.Name)
			}
		}
	}
}

type stubRecordStore struct {
	records []models.Record
	calls   int
}

func (s *stubRecordStore) GetRecords(_ context.Context, _, _ time.Time) ([]models.Record, error) {
	s.calls++
	return s.records, nil
}

func (s *stubRecordStore) GetSeries(_ context.Context, _ string, _ domrepo.SeriesAgg, _, _ time.Time, _ domrepo.Timeframe) ([]float64, error) {
	return nil, nil
}

func TestDashboardCompute(t *testing.T) {
	store := &stubRecordStore{records: []models.Record{
		{"revenue": 100.0, "order_value": 100.0, "margin": 40.0, "discount": 5.0},
		{"revenue": 200.0, "order_value": 200.0, "margin": 80.0, "discount": 0.0},
	}}
	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	calc, _, _ := newTestCalculator(clk)
	svc := NewDashboardService(store, calc)

	res, err := svc.Compute(context.Background(), "financial", time.Unix(0, 0), time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("records loaded %d times, want 1", store.calls)
	}
	if len(res.Metrics) != len(DomainEntries("financial")) {
		t.Fatalf("metrics = %v", res.Metrics)
	}
	if got := res.Metrics["financial.revenue"].Value; got != 150 {
		t.Fatalf("revenue = %v, want 150", got)
	}
}
