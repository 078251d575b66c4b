package telemetry

import (
	"context"
	"time"

	"VoltMetrics/internal/domain/models"
	xhttp "VoltMetrics/pkg/http"
	"VoltMetrics/pkg/queue"
)

// DispatchJob is the queue worker that delivers enqueued calculation events
// to the telemetry webhook.
type DispatchJob struct {
	client     *xhttp.Client
	webhookURL string
}

func NewDispatchJob(webhookURL string, timeout time.Duration) *DispatchJob {
	return &DispatchJob{
		client:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		webhookURL: webhookURL,
	}
}

func (j *DispatchJob) Name() string { return "telemetry_dispatch" }
func (j *DispatchJob) Type() string { return eventType }

func (j *DispatchJob) Handle(ctx context.Context, payload interface{}) error {
	ev, err := queue.ParsePayload[models.CalculationEvent](payload)
	if err != nil {
		return err
	}
	return post(ctx, j.client, j.webhookURL, *ev)
}

var _ queue.Job = (*DispatchJob)(nil)

// ErrorLogJob forwards aggregated error logs collected by the logger to the
// telemetry webhook under a separate event type.
type ErrorLogJob struct {
	client     *xhttp.Client
	webhookURL string
}

func NewErrorLogJob(webhookURL string, timeout time.Duration) *ErrorLogJob {
	return &ErrorLogJob{
		client:     xhttp.NewClient(xhttp.WithTimeout(timeout)),
		webhookURL: webhookURL,
	}
}

func (j *ErrorLogJob) Name() string { return "error_log_dispatch" }
func (j *ErrorLogJob) Type() string { return "error_logs" }

func (j *ErrorLogJob) Handle(ctx context.Context, payload interface{}) error {
	return post(ctx, j.client, j.webhookURL, payload)
}

var _ queue.Job = (*ErrorLogJob)(nil)
