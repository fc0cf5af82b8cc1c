package notify_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aussiebroadwan/campus/internal/campus/notify"
	"github.com/aussiebroadwan/campus/pkg/slogx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLogDispatcherRedactsCodes(t *testing.T) {
	var buf bytes.Buffer
	d := notify.LogDispatcher{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	res, err := d.Send(context.Background(), notify.Message{
		Recipient: "+15551234567",
		Subject:   "Your code",
		Template:  notify.TemplateSMSCode,
		Data:      map[string]string{"code": "987654", "purpose": "login"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.MessageID)

	out := buf.String()
	require.Contains(t, out, res.MessageID)
	require.Contains(t, out, "[redacted]")
	require.Contains(t, out, "login")
	require.NotContains(t, out, "987654")
	require.Contains(t, out, "********4567")
	require.NotContains(t, out, "+15551234567")
}

func TestLogDispatcherMasksEmail(t *testing.T) {
	var buf bytes.Buffer
	d := notify.LogDispatcher{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}

	_, err := d.Send(context.Background(), notify.Message{
		Recipient: "jane@x.edu",
		Template:  notify.TemplateRoleDecision,
		Data:      map[string]string{"status": "approved"},
	})
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "j***@x.edu")
	require.NotContains(t, out, "jane@x.edu")
}

func TestRedisDispatcherAppendsToStream(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	d := notify.RedisDispatcher{Client: client, Stream: "test:notify"}
	res, err := d.Send(context.Background(), notify.Message{
		Recipient: "jane@x.edu",
		Subject:   "Decision",
		Template:  notify.TemplateRoleDecision,
		Data:      map[string]string{"status": "approved"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.MessageID)

	entries, err := client.XRange(context.Background(), "test:notify", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, res.MessageID, entries[0].ID)
	require.Equal(t, "jane@x.edu", entries[0].Values["recipient"])
	require.Equal(t, notify.TemplateRoleDecision, entries[0].Values["template"])
	require.JSONEq(t, `{"status":"approved"}`, entries[0].Values["data"].(string))
}

func TestRedisDispatcherReportsFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err = notify.RedisDispatcher{Client: client}.Send(context.Background(), notify.Message{Recipient: "x"})
	require.Error(t, err)
}

type recorder struct {
	mu   sync.Mutex
	msgs []notify.Message
	gate chan struct{}
	err  error
}

func (r *recorder) Send(_ context.Context, m notify.Message) (notify.Result, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	return notify.Result{MessageID: "x"}, r.err
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestQueueDrainsOnClose(t *testing.T) {
	rec := &recorder{}
	q := notify.NewQueue(rec, notify.QueueConfig{Buffer: 16, Logger: slogx.Discard()})

	for range 10 {
		_, err := q.Send(context.Background(), notify.Message{Recipient: "a"})
		require.NoError(t, err)
	}
	q.Close()
	require.Equal(t, 10, rec.count())

	_, err := q.Send(context.Background(), notify.Message{})
	require.ErrorIs(t, err, notify.ErrClosed)
}

func TestQueueDropsWhenFull(t *testing.T) {
	rec := &recorder{gate: make(chan struct{})}
	q := notify.NewQueue(rec, notify.QueueConfig{Buffer: 1, Logger: slogx.Discard()})

	// The worker picks up the first message and blocks on the gate, the
	// second fills the buffer, everything after that is dropped.
	_, err := q.Send(context.Background(), notify.Message{})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		_, err := q.Send(context.Background(), notify.Message{})
		return err == nil
	}, time.Second, time.Millisecond)

	_, err = q.Send(context.Background(), notify.Message{})
	require.ErrorIs(t, err, notify.ErrQueueFull)
	require.GreaterOrEqual(t, q.Dropped(), uint64(1))

	close(rec.gate)
	q.Close()
	require.Equal(t, 2, rec.count())
}

func TestQueueCountsFailures(t *testing.T) {
	rec := &recorder{err: errors.New("smtp down")}
	q := notify.NewQueue(rec, notify.QueueConfig{Buffer: 4, Logger: slogx.Discard()})

	_, err := q.Send(context.Background(), notify.Message{})
	require.NoError(t, err)
	q.Close()
	require.EqualValues(t, 1, q.Failed())
}
