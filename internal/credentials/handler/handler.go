package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"statedeck/internal/credentials/models"
	"statedeck/internal/credentials/service"
	dErrors "statedeck/pkg/domain-errors"
	"statedeck/pkg/platform/httputil"
	"statedeck/pkg/requestcontext"
)

// Service defines the credential operations the handler needs.
type Service interface {
	Overview(ctx context.Context, now time.Time) (*service.Overview, error)
	Inspect(ctx context.Context, raw string, now time.Time) (*models.Display, error)
}

// Handler serves the credential management panel.
type Handler struct {
	credentials Service
	logger      *slog.Logger
}

func New(credentials Service, logger *slog.Logger) *Handler {
	return &Handler{credentials: credentials, logger: logger}
}

// Register registers the credential routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/credentials", h.handleOverview)
	r.Post("/credentials/inspect", h.handleInspect)
}

type inspectRequest struct {
	Token string `json:"token"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.credentials.Overview(ctx, requestcontext.Now(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list credentials",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) handleInspect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[inspectRequest](w, r)
	if !ok {
		return
	}

	d, err := h.credentials.Inspect(ctx, req.Token, requestcontext.Now(ctx))
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.ErrorContext(ctx, "failed to inspect token",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}
