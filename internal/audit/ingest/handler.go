// Package ingest moves audit entries and state versions from Kafka topics
// into the services that store them.
package ingest

import (
	"context"
	"encoding/json"
	"log/slog"

	"statedeck/internal/audit/metrics"
	"statedeck/internal/audit/models"
	"statedeck/internal/platform/kafka/consumer"
)

// Job is one queued entry. The Worker reports the outcome on done.
type Job struct {
	Entry models.Entry
	done  chan error
}

// NewJob wraps entry with a buffered outcome channel.
func NewJob(entry models.Entry) Job {
	return Job{Entry: entry, done: make(chan error, 1)}
}

// Done reports the outcome once the Worker has handled the job.
func (j Job) Done() <-chan error {
	return j.done
}

func (j Job) finish(err error) {
	if j.done != nil {
		j.done <- err
	}
}

// EntryHandler decodes audit entries from the audit topic and hands them to
// the Worker, returning only once the entry is stored or skipped. Malformed
// payloads are logged and dropped so the offset still advances.
type EntryHandler struct {
	inbox   chan<- Job
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewEntryHandler creates a handler feeding inbox.
func NewEntryHandler(inbox chan<- Job, logger *slog.Logger, m *metrics.Metrics) *EntryHandler {
	return &EntryHandler{inbox: inbox, logger: logger, metrics: m}
}

// Handle blocks until the Worker has recorded the entry or ctx is done. A
// recording failure is returned so the consumer does not commit the batch.
func (h *EntryHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var entry models.Entry
	if err := json.Unmarshal(msg.Value, &entry); err != nil {
		h.logger.WarnContext(ctx, "failed to unmarshal audit entry",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		h.metrics.IncrementIngestSkipped("malformed")
		return nil
	}
	// the record key carries the entry id when producers leave it out of the body
	if entry.ID == "" && len(msg.Key) > 0 {
		entry.ID = string(msg.Key)
	}

	job := NewJob(entry)
	select {
	case h.inbox <- job:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-job.Done():
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
