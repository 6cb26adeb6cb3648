package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// JobHandler processes one recompute job
type JobHandler func(ctx context.Context, job *RecomputeJob) error

// Consumer consumes recompute jobs from a RabbitMQ queue
type Consumer struct {
	conn      *Connection
	queueName string
	handler   JobHandler
	logger    *zap.Logger
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewConsumer creates a new consumer instance
func NewConsumer(conn *Connection, queueName string, handler JobHandler, logger *zap.Logger) (*Consumer, error) {
	if conn == nil {
		return nil, errors.New("connection cannot be nil")
	}
	if queueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := conn.DeclareQueue(queueName); err != nil {
		return nil, err
	}

	return newConsumer(conn, queueName, handler, logger), nil
}

func newConsumer(conn *Connection, queueName string, handler JobHandler, logger *zap.Logger) *Consumer {
	return &Consumer{
		conn:      conn,
		queueName: queueName,
		handler:   handler,
		logger:    logger.Named("consumer"),
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}
}

// Start starts consuming jobs one at a time with manual acknowledgement
func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to get channel: %w", err)
	}

	// Prefetch one job at a time
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	// Register as a consumer with manual acknowledgement
	msgs, err := ch.Consume(
		c.queueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	// Process deliveries until stopped or the channel closes
	go func() {
		defer close(c.doneChan)

		for {
			select {
			case <-c.stopChan:
				c.logger.Info("Consumer stopping")
				return
			case d, ok := <-msgs:
				if !ok {
					c.logger.Warn("Delivery channel closed")
					return
				}
				c.handleDelivery(ctx, d)
			}
		}
	}()

	c.logger.Info("Consumer started", zap.String("queue", c.queueName))
	return nil
}

// Stop stops consuming and waits for the in-flight job
func (c *Consumer) Stop() error {
	close(c.stopChan)
	<-c.doneChan

	c.logger.Info("Consumer stopped")
	return nil
}

// handleDelivery acks processed jobs. A failed job is requeued once; a job
// that fails again on redelivery, or cannot be decoded, is dropped.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	// Decode the job payload
	var job RecomputeJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.logger.Error("Dropping undecodable job", zap.Error(err))
		c.settle(d.Nack(false, false))
		return
	}

	log := c.logger.With(zap.String("phone", job.Phone), zap.String("reason", job.Reason))

	if err := c.handler(ctx, &job); err != nil {
		if d.Redelivered {
			log.Error("Dropping job after retry", zap.Error(err))
			c.settle(d.Nack(false, false))
			return
		}
		log.Warn("Job failed, requeueing", zap.Error(err))
		c.settle(d.Nack(false, true))
		return
	}

	log.Debug("Job processed")
	c.settle(d.Ack(false))
}

func (c *Consumer) settle(err error) {
	if err != nil {
		c.logger.Error("Failed to settle delivery", zap.Error(err))
	}
}
