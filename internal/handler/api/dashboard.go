package api

import (
	"time"

	models "VoltMetrics/internal/domain/models"
	"VoltMetrics/internal/service/metrics"
	xhttp "VoltMetrics/pkg/http"
	xlogger "VoltMetrics/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Dashboard computes all catalog metrics of one business domain.
func (h *AnalyticsHandler) Dashboard(c echo.Context) error {
	start := time.Now()
	endpoint := "dashboard"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":dashboard", 2, 1) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "rate limited", 429))
	}

	from, to := window(req.From, req.To)
	cacheKey := "dashboard:" + req.Domain + ":" + req.From + ":" + req.To
	if hit, err := h.cached(c, cacheKey); hit {
		return err
	}

	res, err := h.dash.Compute(c.Request().Context(), req.Domain, from, to)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("dashboard usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return h.respond(c, cacheKey, res)
}
