package api

import (
	"encoding/json"
	"strconv"
	"time"

	models "VoltMetrics/internal/domain/models"
	domrepo "VoltMetrics/internal/domain/repository"
	icache "VoltMetrics/internal/service/cache"
	"VoltMetrics/internal/service/metrics"
	"VoltMetrics/internal/service/ratelimit"
	"VoltMetrics/internal/services/stats"
	"VoltMetrics/internal/usecase"
	xhttp "VoltMetrics/pkg/http"
	xlogger "VoltMetrics/pkg/logger"
	xutil "VoltMetrics/pkg/util"

	"github.com/labstack/echo/v4"
)

// defaultWindow is the lookback applied when a request omits time bounds.
const defaultWindow = 30 * 24 * time.Hour

const responseCacheTTL = 30 * time.Second

// AnalyticsHandler serves the metrics engine over Echo.
type AnalyticsHandler struct {
	logger *xlogger.Logger
	store  domrepo.RecordStore
	calc   *usecase.Calculator
	dash   *usecase.DashboardService
	cache  icache.BytesCache
	rl     *ratelimit.Limiter
}

func NewAnalyticsHandler(logger *xlogger.Logger, store domrepo.RecordStore, calc *usecase.Calculator, dash *usecase.DashboardService) *AnalyticsHandler {
	metrics.Register()
	return &AnalyticsHandler{logger: logger, store: store, calc: calc, dash: dash, rl: ratelimit.New()}
}

// SetCache enables L2 response caching.
func (h *AnalyticsHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/metric", h.Metric)
	g.GET("/outliers", h.Outliers)
	g.GET("/significance", h.Significance)
	g.GET("/trend", h.Trend)
	g.GET("/seasonal", h.Seasonal)
	g.GET("/dashboard/:domain", h.Dashboard)
}

// window resolves the request time bounds, defaulting to the last 30 days.
func window(fromRaw, toRaw string) (time.Time, time.Time) {
	to := xutil.ParseTimeDefault(toRaw, time.Now())
	from := xutil.ParseTimeDefault(fromRaw, to.Add(-defaultWindow))
	return from, to
}

// respond serves b from cache semantics: marshal once, optionally store,
// and wrap in the standard envelope.
func (h *AnalyticsHandler) respond(c echo.Context, key string, res interface{}) error {
	b, err := json.Marshal(res)
	if err != nil {
		h.logger.Error("response marshal error", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}
	if h.cache != nil {
		if err := h.cache.SetBytes(key, b, responseCacheTTL); err != nil {
			h.logger.Warn("response cache_set_error", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, json.RawMessage(b))
}

// cached returns a cached response body if present.
func (h *AnalyticsHandler) cached(c echo.Context, key string) (bool, error) {
	if h.cache == nil {
		return false, nil
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("response cache_get_error", xlogger.Error(err))
		return false, nil
	}
	if !ok {
		h.logger.Debug("response cache_miss", xlogger.String("key", key))
		return false, nil
	}
	h.logger.Debug("response cache_hit", xlogger.String("key", key))
	return true, xhttp.SuccessResponse(c, json.RawMessage(b))
}

// overrideOptions layers explicitly supplied query parameters over catalog
// defaults; absent parameters keep the catalog's choice.
func overrideOptions(base models.MetricOptions, c echo.Context, req *models.MetricRequest) models.MetricOptions {
	if c.QueryParam("method") != "" {
		base.AggregationMethod = models.AggregationMethod(req.Method)
	}
	if c.QueryParam("precision") != "" {
		base.Precision = req.Precision
	}
	if c.QueryParam("outliers") != "" {
		base.OutlierDetection = req.Outliers
	}
	if c.QueryParam("ci") != "" {
		base.IncludeConfidenceIntervals = req.CI
	}
	return base
}

// optionsKey folds every option that shapes the result into the response
// cache key.
func optionsKey(o models.MetricOptions) string {
	return string(o.AggregationMethod) + ":" + strconv.Itoa(o.Precision) +
		":" + strconv.FormatBool(o.OutlierDetection) +
		":" + strconv.FormatBool(o.IncludeConfidenceIntervals)
}

func (h *AnalyticsHandler) Metric(c echo.Context) error {
	start := time.Now()
	endpoint := "metric"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.MetricRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":metric", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	field := req.Field
	opts := models.MetricOptions{
		Precision:                  req.Precision,
		IncludeConfidenceIntervals: req.CI,
		AggregationMethod:          models.AggregationMethod(req.Method),
		OutlierDetection:           req.Outliers,
	}
	name := req.Name
	if name != "" {
		entry, ok := usecase.LookupMetric(name)
		if !ok {
			return xhttp.NotFoundResponse(c, "unknown metric: "+name)
		}
		field = entry.Field
		opts = overrideOptions(entry.Options, c, req)
	} else if field == "" {
		return xhttp.BadRequestResponse(c, "name or field required")
	} else {
		name = "field." + field
	}

	from, to := window(req.From, req.To)
	cacheKey := "metric:" + name + ":" + req.From + ":" + req.To + ":" + optionsKey(opts)
	if hit, err := h.cached(c, cacheKey); hit {
		return err
	}

	records, err := h.store.GetRecords(c.Request().Context(), from, to)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("metric store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	res := h.calc.Metric(c.Request().Context(), name, records, field, from, to, opts)
	return h.respond(c, cacheKey, res)
}

func (h *AnalyticsHandler) Outliers(c echo.Context) error {
	start := time.Now()
	endpoint := "outliers"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.OutlierRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":outliers", 3, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	from, to := window(req.From, req.To)
	cacheKey := "outliers:" + req.Field + ":" + req.Method + ":" + req.From + ":" + req.To
	if hit, err := h.cached(c, cacheKey); hit {
		return err
	}

	records, err := h.store.GetRecords(c.Request().Context(), from, to)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("outliers store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	values := usecase.ExtractField(records, req.Field)
	res := h.calc.Outliers(c.Request().Context(), values, stats.OutlierMethod(req.Method), from, to)
	return h.respond(c, cacheKey, res)
}

func (h *AnalyticsHandler) Significance(c echo.Context) error {
	start := time.Now()
	endpoint := "significance"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SignificanceRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":significance", 3, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	fromA, okA := xutil.ParseTime(req.FromA)
	toA, okB := xutil.ParseTime(req.ToA)
	fromB, okC := xutil.ParseTime(req.FromB)
	toB, okD := xutil.ParseTime(req.ToB)
	if !okA || !okB || !okC || !okD {
		return xhttp.BadRequestResponse(c, "invalid time bounds")
	}

	cacheKey := "significance:" + req.Field + ":" + req.FromA + ":" + req.ToA + ":" + req.FromB + ":" + req.ToB +
		":" + strconv.FormatFloat(req.Alpha, 'g', -1, 64)
	if hit, err := h.cached(c, cacheKey); hit {
		return err
	}

	ctx := c.Request().Context()
	recA, err := h.store.GetRecords(ctx, fromA, toA)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("significance store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	recB, err := h.store.GetRecords(ctx, fromB, toB)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("significance store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	a := usecase.ExtractField(recA, req.Field)
	b := usecase.ExtractField(recB, req.Field)
	res := h.calc.Significance(ctx, a, b, req.Alpha)
	return h.respond(c, cacheKey, res)
}

func (h *AnalyticsHandler) Trend(c echo.Context) error {
	start := time.Now()
	endpoint := "trend"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":trend", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	field, agg, name, herr := h.resolveSeries(req.Name, req.Field)
	if herr != nil {
		return herr(c)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	from, to := window(req.From, req.To)
	from, to = xutil.AlignFromTo(from, to, string(tf))

	cacheKey := "trend:" + name + ":" + string(tf) + ":" + req.From + ":" + req.To
	if hit, err := h.cached(c, cacheKey); hit {
		return err
	}

	series, err := h.store.GetSeries(c.Request().Context(), field, agg, from, to, tf)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("trend store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	res := h.calc.Trend(c.Request().Context(), name, series, from, to, 2)
	return h.respond(c, cacheKey, res)
}

func (h *AnalyticsHandler) Seasonal(c echo.Context) error {
	start := time.Now()
	endpoint := "seasonal"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SeasonalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":seasonal", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	field, agg, name, herr := h.resolveSeries(req.Name, req.Field)
	if herr != nil {
		return herr(c)
	}
	tf := domrepo.NormalizeTimeframe(req.TF)
	from, to := window(req.From, req.To)
	from, to = xutil.AlignFromTo(from, to, string(tf))

	cacheKey := "seasonal:" + name + ":" + string(tf) + ":" + strconv.Itoa(req.SeasonLength) + ":" + req.From + ":" + req.To
	if hit, err := h.cached(c, cacheKey); hit {
		return err
	}

	series, err := h.store.GetSeries(c.Request().Context(), field, agg, from, to, tf)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("seasonal store error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	res := h.calc.Seasonal(c.Request().Context(), name, series, from, to, req.SeasonLength)
	return h.respond(c, cacheKey, res)
}

// resolveSeries maps a catalog name or raw field onto the series source.
// The returned function, when non-nil, writes the error response.
func (h *AnalyticsHandler) resolveSeries(name, field string) (string, domrepo.SeriesAgg, string, func(echo.Context) error) {
	if name != "" {
		entry, ok := usecase.LookupMetric(name)
		if !ok {
			return "", "", "", func(c echo.Context) error {
				return xhttp.NotFoundResponse(c, "unknown metric: "+name)
			}
		}
		return entry.Field, entry.SeriesAgg, name, nil
	}
	if field == "" {
		return "", "", "", func(c echo.Context) error {
			return xhttp.BadRequestResponse(c, "name or field required")
		}
	}
	return field, domrepo.SeriesSum, "field." + field, nil
}
