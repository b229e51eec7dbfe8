package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"statedeck/internal/platform/kafka/consumer"
	"statedeck/internal/versions/models"
	dErrors "statedeck/pkg/domain-errors"
)

// VersionSaver stores one state version.
type VersionSaver interface {
	Save(ctx context.Context, v models.StateVersion) error
}

// VersionHandler saves state versions published on the versions topic.
type VersionHandler struct {
	versions VersionSaver
	logger   *slog.Logger
}

func NewVersionHandler(versions VersionSaver, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{versions: versions, logger: logger}
}

func (h *VersionHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	var v models.StateVersion
	if err := json.Unmarshal(msg.Value, &v); err != nil {
		h.logger.WarnContext(ctx, "failed to unmarshal state version",
			"topic", msg.Topic,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	err := h.versions.Save(ctx, v)
	switch {
	case err == nil:
		h.logger.InfoContext(ctx, "state version ingested", "version_id", v.ID, "version", v.Version)
		return nil
	case dErrors.HasCode(err, dErrors.CodeConflict):
		h.logger.DebugContext(ctx, "state version already stored", "version_id", v.ID)
		return nil
	case dErrors.HasCode(err, dErrors.CodeValidation):
		h.logger.WarnContext(ctx, "dropping invalid state version",
			"version_id", v.ID,
			"error", err,
		)
		return nil
	default:
		return fmt.Errorf("save state version %s: %w", v.ID, err)
	}
}
