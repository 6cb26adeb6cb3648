package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Recompute reasons carried on a job
const (
	ReasonOrderWritten  = "order_written"
	ReasonStatusChanged = "status_changed"
)

// RecomputeJob asks the worker to rebuild one customer's profile
type RecomputeJob struct {
	Phone       string    `json:"phone"`
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requested_at"`
}

// Publisher publishes recompute jobs to RabbitMQ
type Publisher struct {
	conn      *Connection
	queueName string
}

// NewPublisher creates a new publisher instance and declares its queue
func NewPublisher(conn *Connection, queueName string) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	if err := conn.DeclareQueue(queueName); err != nil {
		return nil, err
	}

	return &Publisher{
		conn:      conn,
		queueName: queueName,
	}, nil
}

// PublishRecompute publishes a persistent recompute job
func (p *Publisher) PublishRecompute(ctx context.Context, job RecomputeJob) error {
	if job.RequestedAt.IsZero() {
		job.RequestedAt = time.Now().UTC()
	}

	// Marshal job to JSON
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal recompute job: %w", err)
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	// Publish to the default exchange, routed by queue name
	err = ch.PublishWithContext(
		ctx,
		"",          // exchange (default)
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    job.RequestedAt,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish recompute job: %w", err)
	}

	return nil
}
