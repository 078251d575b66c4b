package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
	pkgch "VoltMetrics/pkg/clickhouse"
	applogger "VoltMetrics/pkg/logger"
)

// CHRecordStore implements RecordStore backed by ClickHouse.
type CHRecordStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHRecordStore(ch *pkgch.Client, table string) *CHRecordStore {
	return &CHRecordStore{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (s *CHRecordStore) SetLogger(l *applogger.Logger) { s.l = l }

// GetRecords returns raw sale rows in [from, to] shaped as engine records.
func (s *CHRecordStore) GetRecords(ctx context.Context, from, to time.Time) ([]models.Record, error) {
	start := time.Now()
	const qtpl = `
        SELECT quantity, unit_price, revenue, cost, discount, pick_seconds, filled, returned, satisfaction
        FROM %s
        WHERE ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, s.table)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_records query error",
				applogger.String("table", s.table),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get records: %w", err)
	}
	defer rows.Close()

	out := make([]models.Record, 0, 1024)
	for rows.Next() {
		var e models.SaleEvent
		if err := rows.Scan(&e.Quantity, &e.UnitPrice, &e.Revenue, &e.Cost, &e.Discount,
			&e.PickSeconds, &e.Filled, &e.Returned, &e.Satisfaction); err != nil {
			if s.l != nil {
				s.l.Error("clickhouse get_records scan error",
					applogger.String("table", s.table),
					applogger.Error(err),
				)
			}
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, e.Record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_records ok",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// GetSeries returns one value per time bucket for the given field.
func (s *CHRecordStore) GetSeries(ctx context.Context, field string, agg domrepo.SeriesAgg, from, to time.Time, tf domrepo.Timeframe) ([]float64, error) {
	start := time.Now()
	expr, err := fieldExpr(field)
	if err != nil {
		return nil, err
	}
	bucket, err := bucketForTF(tf)
	if err != nil {
		return nil, err
	}
	aggFn := "sum"
	if agg == domrepo.SeriesAvg {
		aggFn = "avg"
	}

	const qtpl = `
        SELECT %s(ts) AS bucket, %s(%s) AS v
        FROM %s
        WHERE ts >= ? AND ts <= ?
        GROUP BY bucket
        ORDER BY bucket ASC
    `
	q := fmt.Sprintf(qtpl, bucket, aggFn, expr, s.table)
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_series query error",
				applogger.String("table", s.table),
				applogger.String("field", field),
				applogger.String("tf", string(tf)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out := make([]float64, 0, 128)
	for rows.Next() {
		var b time.Time
		var v float64
		if err := rows.Scan(&b, &v); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Info("clickhouse get_series ok",
			applogger.String("table", s.table),
			applogger.String("field", field),
			applogger.String("tf", string(tf)),
			applogger.Int("buckets", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// fieldExpr maps an engine field name to a column expression. The whitelist
// keeps request input out of the SQL text.
func fieldExpr(field string) (string, error) {
	switch field {
	case "quantity", "unit_price", "revenue", "cost", "discount",
		"pick_seconds", "filled", "returned", "satisfaction":
		return field, nil
	case "margin":
		return "revenue - cost", nil
	case "order_value":
		return "revenue", nil
	default:
		return "", fmt.Errorf("unsupported field: %s", field)
	}
}

func bucketForTF(tf domrepo.Timeframe) (string, error) {
	switch tf {
	case domrepo.TF1h:
		return "toStartOfHour", nil
	case domrepo.TF1d:
		return "toStartOfDay", nil
	case domrepo.TF1w:
		return "toStartOfWeek", nil
	default:
		return "", fmt.Errorf("unsupported timeframe: %s", tf)
	}
}

var _ domrepo.RecordStore = (*CHRecordStore)(nil)
