// Package jobs runs background processing on Asynq. The only task today is
// forwarding audit events to the external compliance log.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/andes-erp/cobranzas/internal/audit"
)

// QueueDefault is the default queue name for background jobs.
const QueueDefault = "default"

// AuditForwardJob delivers queued audit events to the external endpoint.
type AuditForwardJob struct {
	forwarder *audit.Forwarder
	logger    *slog.Logger
}

// NewAuditForwardJob constructs the job.
func NewAuditForwardJob(forwarder *audit.Forwarder, logger *slog.Logger) *AuditForwardJob {
	return &AuditForwardJob{forwarder: forwarder, logger: logger}
}

// Handle processes one audit.TaskForward task. Delivery is best-effort:
// transport failures are logged and swallowed rather than retried, so a
// dead audit endpoint never builds a retry backlog.
func (j *AuditForwardJob) Handle(ctx context.Context, t *asynq.Task) error {
	var event audit.Event
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		j.logger.Warn("audit payload malformed", slog.Any("error", err))
		return asynq.SkipRetry
	}
	if err := j.forwarder.Forward(ctx, event); err != nil {
		j.logger.Warn("audit forward failed",
			slog.String("id_evento", event.ID),
			slog.String("accion", event.Accion),
			slog.Any("error", err))
	}
	return nil
}
