package service

import (
	"context"

	"go.uber.org/zap"

	"orderdesk/internal/models"
	"orderdesk/internal/queue"
)

// EventKind names a change that requires the customer profile to be rebuilt
type EventKind string

const (
	EventOrderWritten  EventKind = "order_written"
	EventStatusChanged EventKind = "status_changed"
)

// Event is emitted after an order write or a status change. Direct field
// edits and deletions emit nothing.
type Event struct {
	Kind  EventKind
	Phone string
}

// Notifier delivers events to the customer aggregator. Notify never fails the
// caller and runs detached from the caller's cancellation, so a client that
// disconnects after its order was stored does not abort the recompute.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Recomputer rebuilds one customer profile
type Recomputer interface {
	Recompute(ctx context.Context, phone string) error
}

// SyncNotifier recomputes inline on the calling goroutine
type SyncNotifier struct {
	aggregator Recomputer
	logger     *zap.Logger
}

// NewSyncNotifier creates an inline notifier
func NewSyncNotifier(aggregator Recomputer, logger *zap.Logger) *SyncNotifier {
	return &SyncNotifier{aggregator: aggregator, logger: logger.Named("notifier")}
}

func (n *SyncNotifier) Notify(ctx context.Context, event Event) {
	if !models.HasPhone(event.Phone) {
		return
	}
	ctx = context.WithoutCancel(ctx)

	if err := n.aggregator.Recompute(ctx, event.Phone); err != nil {
		n.logger.Warn("Customer recompute failed",
			zap.String("phone", event.Phone),
			zap.String("event", string(event.Kind)),
			zap.Error(err),
		)
	}
}

// JobPublisher publishes recompute jobs to the worker queue
type JobPublisher interface {
	PublishRecompute(ctx context.Context, job queue.RecomputeJob) error
}

// QueueNotifier hands recomputation to the worker. When publishing fails the
// profile is recomputed inline instead.
type QueueNotifier struct {
	publisher JobPublisher
	fallback  *SyncNotifier
	logger    *zap.Logger
}

// NewQueueNotifier creates a notifier that publishes to the recompute queue
func NewQueueNotifier(publisher JobPublisher, fallback Recomputer, logger *zap.Logger) *QueueNotifier {
	return &QueueNotifier{
		publisher: publisher,
		fallback:  NewSyncNotifier(fallback, logger),
		logger:    logger.Named("notifier"),
	}
}

func (n *QueueNotifier) Notify(ctx context.Context, event Event) {
	if !models.HasPhone(event.Phone) {
		return
	}
	ctx = context.WithoutCancel(ctx)


	err := n.publisher.PublishRecompute(ctx, queue.RecomputeJob{Phone: event.Phone, Reason: string(event.Kind)})
	if err == nil {
		return
	}

	n.logger.Warn("Failed to publish recompute job, recomputing inline",
		zap.String("phone", event.Phone),
		zap.Error(err),
	)
	n.fallback.Notify(ctx, event)
}
