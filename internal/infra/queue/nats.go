package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// queueGroup makes worker replicas share one subscription so each event
// is dispatched exactly once per deployment.
const queueGroup = "notify-workers"

// NATSQueue implements Publisher and Consumer over a core NATS
// connection.
type NATSQueue struct {
	conn *nats.Conn
}

// NewNATSQueue connects to the NATS server at url.
//
// The connection reconnects indefinitely with a short backoff; a worker
// outliving a NATS restart is the normal case, not the exception.
func NewNATSQueue(url string) (*NATSQueue, error) {
	conn, err := nats.Connect(url,
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			slog.Warn("nats disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return &NATSQueue{conn: conn}, nil
}

// PublishJobCreated emits event on SubjectJobCreated.
func (q *NATSQueue) PublishJobCreated(ctx context.Context, event JobCreatedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal job event: %w", err)
	}

	if err := q.conn.Publish(SubjectJobCreated, payload); err != nil {
		return fmt.Errorf("publish %s: %w", SubjectJobCreated, err)
	}
	return nil
}

// ConsumeJobCreated subscribes handler in the worker queue group and
// blocks until ctx is canceled. Malformed or failed events are logged
// and dropped.
func (q *NATSQueue) ConsumeJobCreated(ctx context.Context, handler Handler) error {
	sub, err := q.conn.QueueSubscribe(SubjectJobCreated, queueGroup, func(msg *nats.Msg) {
		var event JobCreatedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Error("drop malformed job event",
				slog.Int("bytes", len(msg.Data)),
				slog.Any("error", err))
			return
		}

		if err := handler(ctx, event); err != nil {
			slog.Error("job event handler failed",
				slog.String("job_id", event.JobID),
				slog.Any("error", err))
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectJobCreated, err)
	}

	slog.Info("consuming job events",
		slog.String("subject", SubjectJobCreated),
		slog.String("queue_group", queueGroup))

	<-ctx.Done()

	if err := sub.Drain(); err != nil {
		slog.Warn("drain subscription", slog.Any("error", err))
	}
	return ctx.Err()
}

// Close drains in-flight messages and closes the connection.
func (q *NATSQueue) Close() error {
	if q.conn == nil || q.conn.IsClosed() {
		return nil
	}
	if err := q.conn.Drain(); err != nil {
		q.conn.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}
