package notify

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Queue makes a Dispatcher asynchronous. Send never blocks: messages go
// into a bounded buffer and a single worker forwards them. When the buffer
// is full the message is dropped and counted.
type Queue struct {
	next    Dispatcher
	log     *slog.Logger
	timeout time.Duration

	ch        chan queued
	done      chan struct{}
	wg        sync.WaitGroup
	closed    atomic.Bool
	closeOnce sync.Once

	dropped atomic.Uint64
	failed  atomic.Uint64
}

type queued struct {
	id  string
	msg Message
}

type QueueConfig struct {
	Buffer int
	// Timeout bounds each forward to the wrapped dispatcher.
	Timeout time.Duration
	Logger  *slog.Logger
}

func NewQueue(next Dispatcher, cfg QueueConfig) *Queue {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	q := &Queue{
		next:    next,
		log:     cfg.Logger,
		timeout: cfg.Timeout,
		ch:      make(chan queued, cfg.Buffer),
		done:    make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case m := <-q.ch:
			q.forward(m)
		case <-q.done:
			for {
				select {
				case m := <-q.ch:
					q.forward(m)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) forward(m queued) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	res, err := q.next.Send(ctx, m.msg)
	if err != nil {
		q.failed.Add(1)
		q.log.Warn("notification delivery failed",
			"queue_id", m.id, "template", m.msg.Template, "error", err)
		return
	}
	q.log.Debug("notification forwarded", "queue_id", m.id, "message_id", res.MessageID)
}

// Send enqueues msg. The returned id is local to the queue; the delivery
// id is only logged.
func (q *Queue) Send(_ context.Context, msg Message) (Result, error) {
	if q.closed.Load() {
		return Result{}, ErrClosed
	}
	m := queued{id: uuid.NewString(), msg: msg}
	select {
	case q.ch <- m:
		return Result{MessageID: m.id}, nil
	case <-q.done:
		return Result{}, ErrClosed
	default:
		q.dropped.Add(1)
		return Result{}, ErrQueueFull
	}
}

// Close stops accepting messages and waits for the buffer to drain.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		q.closed.Store(true)
		close(q.done)
		q.wg.Wait()
	})
}

// Dropped is the number of messages refused because the buffer was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Failed is the number of messages the wrapped dispatcher rejected.
func (q *Queue) Failed() uint64 { return q.failed.Load() }
