// Package notify hands invite send requests to the delivery
// collaborator. The engine fires and forgets: an invite row is
// authoritative whether or not the collaborator delivers.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/aura-pulse/backend/pkg/queue"
)

// Notifier accepts a send request for asynchronous delivery.
type Notifier interface {
	Send(ctx context.Context, req queue.NotificationPayload) error
}

// QueueNotifier enqueues send requests on the Redis job queue; the
// worker binary forwards them to the delivery collaborator.
type QueueNotifier struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewQueueNotifier creates a queue-backed notifier.
func NewQueueNotifier(q *queue.Queue, logger *zap.Logger) *QueueNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueueNotifier{queue: q, logger: logger}
}

// Send enqueues the request.
func (n *QueueNotifier) Send(ctx context.Context, req queue.NotificationPayload) error {
	return n.queue.EnqueueNotification(ctx, req)
}
