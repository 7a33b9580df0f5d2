package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/aura-pulse/backend/pkg/queue"
)

// Processor drains notification jobs and POSTs them to the delivery
// collaborator's webhook. Delivery state and user-facing retries are the
// collaborator's concern; the processor only moves jobs, retrying
// transport failures up to the queue's limit.
type Processor struct {
	queue      *queue.Queue
	webhookURL string
	client     *http.Client
	logger     *zap.Logger
}

// NewProcessor creates a notification delivery processor.
func NewProcessor(q *queue.Queue, webhookURL string, timeout time.Duration, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Processor{
		queue:      q,
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Process executes one notification job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeNotification {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.NotificationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if time.Now().After(payload.ExpiresAt) {
		// token already unusable, sending would only confuse the recipient
		p.logger.Info("dropping expired notification", zap.String("invite_id", payload.InviteID.String()))
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("deliver status: %d", resp.StatusCode)
	}

	p.logger.Info("notification handed off",
		zap.String("invite_id", payload.InviteID.String()), zap.String("recipient", payload.Recipient))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
