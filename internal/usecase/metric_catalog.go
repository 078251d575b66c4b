package usecase

import (
	"context"
	"sort"
	"time"

	"VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
)

// CatalogEntry maps a human-readable metric name onto a record field plus
// default calculation options. Domain dashboards are generated from this
// table instead of hand-writing one method per metric.
type CatalogEntry struct {
	Name      string
	Domain    string
	Field     string
	Options   models.MetricOptions
	SeriesAgg domrepo.SeriesAgg
}

// metricCatalog is the declarative registry of business metrics. Recency
// weighting is used where the newest behavior matters more (satisfaction,
// pick times); harmonic for rate-like unit prices; everything else is a
// plain mean.
var metricCatalog = []CatalogEntry{
	{Name: "financial.revenue", Domain: "financial", Field: "revenue", SeriesAgg: domrepo.SeriesSum},
	{Name: "financial.order_value", Domain: "financial", Field: "order_value", Options: models.MetricOptions{OutlierDetection: true}, SeriesAgg: domrepo.SeriesAvg},
	{Name: "financial.margin", Domain: "financial", Field: "margin", SeriesAgg: domrepo.SeriesSum},
	{Name: "financial.discount", Domain: "financial", Field: "discount", SeriesAgg: domrepo.SeriesAvg},

	{Name: "customer.order_value", Domain: "customer", Field: "order_value", Options: models.MetricOptions{OutlierDetection: true}, SeriesAgg: domrepo.SeriesAvg},
	{Name: "customer.basket_size", Domain: "customer", Field: "quantity", SeriesAgg: domrepo.SeriesAvg},
	{Name: "customer.satisfaction", Domain: "customer", Field: "satisfaction", Options: models.MetricOptions{AggregationMethod: models.AggWeighted}, SeriesAgg: domrepo.SeriesAvg},

	{Name: "warehouse.pick_time", Domain: "warehouse", Field: "pick_seconds", Options: models.MetricOptions{AggregationMethod: models.AggWeighted, OutlierDetection: true}, SeriesAgg: domrepo.SeriesAvg},
	{Name: "warehouse.fill_rate", Domain: "warehouse", Field: "filled", SeriesAgg: domrepo.SeriesAvg},

	{Name: "product.unit_price", Domain: "product", Field: "unit_price", Options: models.MetricOptions{AggregationMethod: models.AggHarmonic}, SeriesAgg: domrepo.SeriesAvg},
	{Name: "product.quantity", Domain: "product", Field: "quantity", SeriesAgg: domrepo.SeriesSum},
	{Name: "product.return_rate", Domain: "product", Field: "returned", SeriesAgg: domrepo.SeriesAvg},
}

// LookupMetric resolves a catalog name. The second return is false for
// unknown names.
func LookupMetric(name string) (CatalogEntry, bool) {
	for _, e := range metricCatalog {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// CatalogDomains lists the distinct dashboard domains, sorted.
func CatalogDomains() []string {
	seen := map[string]bool{}
	out := make([]string, 0, 4)
	for _, e := range metricCatalog {
		if !seen[e.Domain] {
			seen[e.Domain] = true
			out = append(out, e.Domain)
		}
	}
	sort.Strings(out)
	return out
}

// DomainEntries returns the catalog subset for one dashboard domain.
func DomainEntries(domain string) []CatalogEntry {
	out := make([]CatalogEntry, 0, 4)
	for _, e := range metricCatalog {
		if e.Domain == domain {
			out = append(out, e)
		}
	}
	return out
}

// DashboardService computes all catalog metrics for a business domain in
// one pass over the stored records.
type DashboardService struct {
	store domrepo.RecordStore
	calc  *Calculator
}

func NewDashboardService(store domrepo.RecordStore, calc *Calculator) *DashboardService {
	return &DashboardService{store: store, calc: calc}
}

// Compute loads the window once and runs every catalog metric of the
// domain against it.
func (s *DashboardService) Compute(ctx context.Context, domain string, from, to time.Time) (*models.DashboardResult, error) {
	records, err := s.store.GetRecords(ctx, from, to)
	if err != nil {
		return nil, err
	}

	res := &models.DashboardResult{
		Domain:   domain,
		Metrics:  make(map[string]models.CalculationResult),
		From:     from.Unix(),
		To:       to.Unix(),
		Computed: time.Now().Unix(),
	}
	for _, e := range DomainEntries(domain) {
		res.Metrics[e.Name] = s.calc.Metric(ctx, e.Name, records, e.Field, from, to, e.Options)
	}
	return res, nil
}
