package telemetry

import (
	"context"
	"time"

	"VoltMetrics/internal/domain/models"
	drepo "VoltMetrics/internal/domain/repository"
	xhttp "VoltMetrics/pkg/http"
	applogger "VoltMetrics/pkg/logger"
	"VoltMetrics/pkg/queue"
)

const eventType = "calculation_event"

// WebhookSink forwards calculation events to the telemetry webhook. When a
// queue is configured, events are published there and a worker delivers them;
// otherwise delivery happens on a detached goroutine. Either way Emit never
// blocks the calculation path and failures are logged, not returned.
type WebhookSink struct {
	queue      queue.QueueService
	client     *xhttp.Client
	webhookURL string
	logger     *applogger.Logger
}

// NewWebhookSink creates a sink that delivers directly over HTTP.
func NewWebhookSink(webhookURL string, timeout time.Duration, lgr *applogger.Logger) *WebhookSink {
	return &WebhookSink{
		client:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		webhookURL: webhookURL,
		logger:     lgr,
	}
}

// NewQueuedSink creates a sink that hands events to the queue for delivery
// by a DispatchJob worker.
func NewQueuedSink(q queue.QueueService, lgr *applogger.Logger) *WebhookSink {
	return &WebhookSink{queue: q, logger: lgr}
}

func (s *WebhookSink) Emit(ctx context.Context, ev models.CalculationEvent) {
	if s.queue != nil {
		if err := s.queue.PublishMessage(ctx, eventType, ev); err != nil {
			s.logger.Warn("telemetry enqueue failed",
				applogger.String("operation", ev.Operation),
				applogger.Error(err))
		}
		return
	}
	if s.webhookURL == "" {
		return
	}
	go func() {
		// detached from the caller's context so a finished request does
		// not cancel delivery
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := post(dctx, s.client, s.webhookURL, ev); err != nil {
			s.logger.Warn("telemetry delivery failed",
				applogger.String("operation", ev.Operation),
				applogger.Error(err))
		}
	}()
}

func post(ctx context.Context, client *xhttp.Client, url string, ev interface{}) error {
	return client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    url,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
		Body: ev,
	}, nil)
}

var _ drepo.TelemetrySink = (*WebhookSink)(nil)

// NoopSink discards all events. Used when telemetry is disabled.
type NoopSink struct{}

func (NoopSink) Emit(context.Context, models.CalculationEvent) {}

var _ drepo.TelemetrySink = NoopSink{}
