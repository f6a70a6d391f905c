package service

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harborline/freightdesk/internal/domain"
	"github.com/harborline/freightdesk/internal/logger"
)

// Notifier posts a job summary to a configured webhook when a job reaches
// a terminal state. Delivery is best-effort: a failed delivery is logged
// and never affects the job.
type Notifier struct {
	client *resty.Client
	url    string
}

// NotifierConfig holds webhook configuration.
type NotifierConfig struct {
	URL        string
	Timeout    time.Duration
	RetryCount int
}

// NewNotifier creates a webhook notifier. Returns nil when no URL is
// configured, which disables notification.
func NewNotifier(cfg *NotifierConfig) *Notifier {
	if cfg == nil || cfg.URL == "" {
		return nil
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.RetryCount > 0 {
		client.SetRetryCount(cfg.RetryCount)
	}

	return &Notifier{client: client, url: cfg.URL}
}

// jobFinishedPayload is the webhook body for a terminal job.
type jobFinishedPayload struct {
	JobID            string            `json:"job_id"`
	Module           domain.Module     `json:"module"`
	Status           domain.JobStatus  `json:"status"`
	TotalRecords     int               `json:"total_records"`
	CreatedRecords   int               `json:"created_records"`
	DuplicateRecords int               `json:"duplicate_records"`
	ErrorRecords     int               `json:"error_records"`
	Result           *domain.JobResult `json:"result,omitempty"`
}

// JobFinished delivers the terminal summary for a job.
func (n *Notifier) JobFinished(ctx context.Context, job *domain.UploadJob) {
	payload := jobFinishedPayload{
		JobID:            job.ID,
		Module:           job.Module,
		Status:           job.Status,
		TotalRecords:     job.TotalRecords,
		CreatedRecords:   job.CreatedRecords,
		DuplicateRecords: job.DuplicateRecords,
		ErrorRecords:     job.ErrorRecords,
		Result:           job.Result,
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(n.url)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Warn("Webhook delivery failed")
		return
	}
	if resp.IsError() {
		logger.FromContext(ctx).WithField("status_code", resp.StatusCode()).Warn("Webhook rejected")
	}
}
