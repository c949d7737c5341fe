package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const consumerGroup = "gateway"

// NewNATS constructs a thin NATS-based queue.
func NewNATS(log *slog.Logger, nc *nats.Conn) Queue {
	return &natsQueue{log: log, nc: nc}
}

type natsQueue struct {
	log *slog.Logger
	nc  *nats.Conn
}

func (q *natsQueue) Publish(_ context.Context, ev SelectionEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.CapturedAt.IsZero() {
		ev.CapturedAt = time.Now().UTC()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode selection: %w", err)
	}
	return q.nc.Publish(SelectionSubject, body)
}

func (q *natsQueue) Consume(ctx context.Context, handler Handler) error {
	sub, err := q.nc.QueueSubscribe(SelectionSubject, consumerGroup, func(msg *nats.Msg) {
		q.handleMessage(ctx, msg.Data, handler)
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	return sub.Unsubscribe()
}

// Close drains pending messages and closes the connection.
func (q *natsQueue) Close() error {
	if q.nc == nil {
		return nil
	}
	return q.nc.Drain()
}

// handleMessage drops malformed events. Handler failures are logged and not
// redelivered.
func (q *natsQueue) handleMessage(ctx context.Context, data []byte, handler Handler) {
	var ev SelectionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		q.log.Error("failed to decode selection", "err", err)
		return
	}
	if err := ev.Validate(); err != nil {
		q.log.Warn("dropping selection", "id", ev.ID, "err", err)
		return
	}
	if err := handler(ctx, ev); err != nil {
		q.log.Error("selection handler failed", "id", ev.ID, "session_id", ev.SessionID, "err", err)
	}
}
