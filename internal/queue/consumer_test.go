package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue []bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acked++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	f.nacked++
	f.requeue = append(f.requeue, requeue)
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

func delivery(t *testing.T, ack amqp.Acknowledger, job RecomputeJob, redelivered bool) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(job)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body, Redelivered: redelivered}
}

func TestConsumer_HandleDelivery_Ack(t *testing.T) {
	var got *RecomputeJob
	c := newConsumer(nil, "q", func(ctx context.Context, job *RecomputeJob) error {
		got = job
		return nil
	}, zap.NewNop())

	ack := &fakeAcknowledger{}
	c.handleDelivery(context.Background(), delivery(t, ack, RecomputeJob{Phone: "111", Reason: ReasonOrderWritten}, false))

	require.NotNil(t, got)
	assert.Equal(t, "111", got.Phone)
	assert.Equal(t, ReasonOrderWritten, got.Reason)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestConsumer_HandleDelivery_RequeueOnce(t *testing.T) {
	c := newConsumer(nil, "q", func(ctx context.Context, job *RecomputeJob) error {
		return errors.New("database unavailable")
	}, zap.NewNop())

	ack := &fakeAcknowledger{}
	c.handleDelivery(context.Background(), delivery(t, ack, RecomputeJob{Phone: "111"}, false))
	c.handleDelivery(context.Background(), delivery(t, ack, RecomputeJob{Phone: "111"}, true))

	assert.Zero(t, ack.acked)
	assert.Equal(t, []bool{true, false}, ack.requeue)
}

func TestConsumer_HandleDelivery_DropsGarbage(t *testing.T) {
	called := false
	c := newConsumer(nil, "q", func(ctx context.Context, job *RecomputeJob) error {
		called = true
		return nil
	}, zap.NewNop())

	ack := &fakeAcknowledger{}
	c.handleDelivery(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	assert.False(t, called)
	assert.Equal(t, []bool{false}, ack.requeue)
}

func TestNewConsumer_Validation(t *testing.T) {
	handler := func(ctx context.Context, job *RecomputeJob) error { return nil }

	_, err := NewConsumer(nil, "q", handler, nil)
	assert.EqualError(t, err, "connection cannot be nil")

	_, err = NewConsumer(&Connection{}, "", handler, nil)
	assert.EqualError(t, err, "queue name cannot be empty")

	_, err = NewConsumer(&Connection{}, "q", nil, nil)
	assert.EqualError(t, err, "handler cannot be nil")
}

func TestNewPublisher_Validation(t *testing.T) {
	_, err := NewPublisher(nil, "q")
	assert.EqualError(t, err, "connection cannot be nil")

	_, err = NewPublisher(&Connection{}, "")
	assert.EqualError(t, err, "queue name cannot be empty")
}

func TestNewConnection_EmptyURL(t *testing.T) {
	_, err := NewConnection("", nil)
	assert.EqualError(t, err, "rabbitmq url cannot be empty")
}
