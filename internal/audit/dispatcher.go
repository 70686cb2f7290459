package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

// TaskForward is the queue task type carrying one serialized Event.
const TaskForward = "audit:forward"

// Enqueuer is the slice of asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher hands events to the background queue. Emit never blocks the
// caller on the audit endpoint and never returns an error: enqueue failures
// are logged and swallowed.
type Dispatcher struct {
	queue  Enqueuer
	logger *slog.Logger
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(queue Enqueuer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{queue: queue, logger: logger}
}

// Emit queues the event for delivery.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil || d.queue == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Warn("marshal audit event", slog.Any("error", err))
		return
	}
	task := asynq.NewTask(TaskForward, payload, asynq.MaxRetry(3))
	if _, err := d.queue.EnqueueContext(ctx, task); err != nil {
		d.logger.Warn("enqueue audit event",
			slog.String("accion", event.Accion),
			slog.String("tabla", event.Tabla),
			slog.Any("error", err))
	}
}
