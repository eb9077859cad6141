package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	apidomain "github.com/Mo-Ibra/next-fullstack-jobs/internal/api/domain"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/events"
	"github.com/Mo-Ibra/next-fullstack-jobs/internal/worker/domain"
)

const defaultTimeout = 10 * time.Second

// Config holds the moderator webhook settings
type Config struct {
	WebhookURL string
	Timeout    time.Duration
	SiteURL    string
}

// Payload is the JSON body posted to the webhook. Text makes it readable by chat incoming-webhooks.
type Payload struct {
	Text       string    `json:"text"`
	Event      string    `json:"event"`
	JobID      string    `json:"job_id"`
	Title      string    `json:"title"`
	Company    string    `json:"company"`
	Status     string    `json:"status"`
	Link       string    `json:"link,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Webhook posts moderator notifications. Without a URL it only logs them.
type Webhook struct {
	url     string
	siteURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Webhook {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Webhook{
		url:     cfg.WebhookURL,
		siteURL: strings.TrimRight(cfg.SiteURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Notify sends one notification. Network errors and 5xx/429 responses come back as
// domain.RetryableError; other non-2xx responses are permanent.
func (w *Webhook) Notify(ctx context.Context, n domain.Notification) error {
	payload := w.payloadFor(n)

	if w.url == "" {
		w.logger.Info("Moderator notification",
			slog.String("event", payload.Event),
			slog.String("job_id", payload.JobID),
			slog.String("text", payload.Text),
		)
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return domain.NewRetryableError(fmt.Errorf("webhook request failed: %w", err))
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		w.logger.Debug("Webhook delivered",
			slog.String("event", payload.Event),
			slog.String("job_id", payload.JobID),
			slog.Int("status", resp.StatusCode),
		)
		return nil
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewRetryableError(fmt.Errorf("webhook returned %d", resp.StatusCode))
	default:
		return fmt.Errorf("webhook rejected notification with %d", resp.StatusCode)
	}
}

func (w *Webhook) payloadFor(n domain.Notification) Payload {
	job := n.Job
	p := Payload{
		Event:      n.Event,
		JobID:      job.ID,
		Title:      job.Title,
		Company:    job.Company,
		Status:     job.Status,
		OccurredAt: n.OccurredAt,
	}

	switch n.Event {
	case events.JobSubmitted:
		p.Text = fmt.Sprintf("New job submitted for review: %s at %s (%s)", job.Title, job.Company, job.Location)
		p.Link = w.link("/admin/jobs/%s/edit", job.ID)
	case events.JobStatusChanged:
		p.Text = fmt.Sprintf("%s at %s is now %s", job.Title, job.Company, job.Status)
		if job.Status == apidomain.JobStatusApproved {
			p.Link = w.link("/jobs/%s", job.ID)
		} else {
			p.Link = w.link("/admin/jobs/%s/edit", job.ID)
		}
	default:
		p.Text = fmt.Sprintf("%s: %s at %s", n.Event, job.Title, job.Company)
	}

	if p.Link != "" {
		p.Text += " " + p.Link
	}
	return p
}

func (w *Webhook) link(format, id string) string {
	if w.siteURL == "" {
		return ""
	}
	return w.siteURL + fmt.Sprintf(format, id)
}
