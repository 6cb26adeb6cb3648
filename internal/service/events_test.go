package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderdesk/internal/queue"
)

func TestSyncNotifier_SwallowsFailures(t *testing.T) {
	recomputer := &fakeRecomputer{err: errors.New("database locked")}
	notifier := NewSyncNotifier(recomputer, zap.NewNop())

	notifier.Notify(context.Background(), Event{Kind: EventOrderWritten, Phone: testPhone})
	notifier.Notify(context.Background(), Event{Kind: EventOrderWritten, Phone: ""})

	assert.Equal(t, []string{testPhone}, recomputer.phones)
}

func TestQueueNotifier_Publishes(t *testing.T) {
	publisher := &fakePublisher{}
	recomputer := &fakeRecomputer{}
	notifier := NewQueueNotifier(publisher, recomputer, zap.NewNop())

	notifier.Notify(context.Background(), Event{Kind: EventStatusChanged, Phone: testPhone})

	require.Len(t, publisher.jobs, 1)
	assert.Equal(t, testPhone, publisher.jobs[0].Phone)
	assert.Equal(t, queue.ReasonStatusChanged, publisher.jobs[0].Reason)
	assert.Empty(t, recomputer.phones)
}

func TestQueueNotifier_FallsBackInline(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("channel closed")}
	recomputer := &fakeRecomputer{}
	notifier := NewQueueNotifier(publisher, recomputer, zap.NewNop())

	notifier.Notify(context.Background(), Event{Kind: EventOrderWritten, Phone: testPhone})

	assert.Equal(t, []string{testPhone}, recomputer.phones)
}

func TestNotifiers_SurviveCancelledRequest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("inline", func(t *testing.T) {
		recomputer := &fakeRecomputer{}
		NewSyncNotifier(recomputer, zap.NewNop()).Notify(ctx, Event{Kind: EventOrderWritten, Phone: testPhone})

		require.Len(t, recomputer.ctxErrs, 1)
		assert.NoError(t, recomputer.ctxErrs[0])
	})

	t.Run("queue with inline fallback", func(t *testing.T) {
		publisher := &fakePublisher{err: errors.New("channel closed")}
		recomputer := &fakeRecomputer{}
		NewQueueNotifier(publisher, recomputer, zap.NewNop()).Notify(ctx, Event{Kind: EventOrderWritten, Phone: testPhone})

		assert.Equal(t, []error{nil}, publisher.ctxErrs)
		assert.Equal(t, []error{nil}, recomputer.ctxErrs)
	})
}
