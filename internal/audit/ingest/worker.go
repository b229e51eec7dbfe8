package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"statedeck/internal/audit/metrics"
	"statedeck/internal/audit/models"
	dErrors "statedeck/pkg/domain-errors"
)

// Recorder stores one audit entry.
type Recorder interface {
	Record(ctx context.Context, entry models.Entry) (*models.Entry, error)
}

// Worker drains queued jobs into the Recorder. Entries that are already
// recorded or invalid are skipped; any other failure is reported to the job
// and stops the worker.
type Worker struct {
	recorder Recorder
	inbox    <-chan Job
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewWorker(recorder Recorder, inbox <-chan Job, logger *slog.Logger, m *metrics.Metrics) *Worker {
	return &Worker{recorder: recorder, inbox: inbox, logger: logger, metrics: m}
}

// Run returns when ctx is done, the inbox is closed, or recording fails.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case job, ok := <-w.inbox:
			if !ok {
				return nil
			}
			err := w.record(ctx, job.Entry)
			job.finish(err)
			if err != nil {
				return err
			}
		}
	}
}

func (w *Worker) record(ctx context.Context, entry models.Entry) error {
	_, err := w.recorder.Record(ctx, entry)
	switch {
	case err == nil:
		return nil
	case dErrors.HasCode(err, dErrors.CodeConflict):
		w.logger.DebugContext(ctx, "audit entry already recorded", "entry_id", entry.ID)
		w.metrics.IncrementIngestSkipped("duplicate")
		return nil
	case dErrors.HasCode(err, dErrors.CodeValidation):
		w.logger.WarnContext(ctx, "dropping invalid audit entry",
			"entry_id", entry.ID,
			"error", err,
		)
		w.metrics.IncrementIngestSkipped("invalid")
		return nil
	default:
		return fmt.Errorf("record audit entry %s: %w", entry.ID, err)
	}
}
