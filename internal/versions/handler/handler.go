package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"statedeck/internal/format"
	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/models"
	"statedeck/internal/versions/service"
	dErrors "statedeck/pkg/domain-errors"
	"statedeck/pkg/platform/httputil"
	"statedeck/pkg/requestcontext"
)

// Service defines the version operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]models.StateVersion, error)
	Get(ctx context.Context, id string) (*models.StateVersion, error)
	Compare(ctx context.Context, fromID, toID string) (*service.Comparison, error)
}

// Handler serves version history and comparisons.
type Handler struct {
	versions Service
	logger   *slog.Logger
	location *time.Location
}

// New creates a versions Handler. Timestamps are labelled in loc.
func New(versions Service, logger *slog.Logger, loc *time.Location) *Handler {
	return &Handler{versions: versions, logger: logger, location: loc}
}

// Register registers the version routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/versions", h.handleList)
	// compare must be registered before {id} so it is not captured as an id
	r.Get("/versions/compare", h.handleCompare)
	r.Get("/versions/{id}", h.handleGet)
}

type versionView struct {
	models.StateVersion
	CreatedLabel string `json:"createdLabel"`
	SizeLabel    string `json:"sizeLabel"`
}

type listResponse struct {
	Versions []versionView `json:"versions"`
	Total    int           `json:"total"`
}

type compareResponse struct {
	From          versionView        `json:"from"`
	To            versionView        `json:"to"`
	Stats         diff.Stats         `json:"stats"`
	Unified       []models.DiffChunk `json:"unified"`
	Additions     []models.DiffChunk `json:"additions"`
	Deletions     []models.DiffChunk `json:"deletions"`
	Modifications []models.DiffChunk `json:"modifications"`
	Identical     bool               `json:"identical"`
	Cached        bool               `json:"cached"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versions, err := h.versions.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list versions",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	resp := listResponse{Versions: make([]versionView, 0, len(versions)), Total: len(versions)}
	for _, v := range versions {
		resp.Versions = append(resp.Versions, h.view(v))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	v, err := h.versions.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(ctx, w, "failed to get version", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.view(*v))
}

func (h *Handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	cmp, err := h.versions.Compare(ctx, q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeError(ctx, w, "failed to compare versions", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, compareResponse{
		From:          h.view(cmp.From),
		To:            h.view(cmp.To),
		Stats:         cmp.Stats,
		Unified:       cmp.Unified,
		Additions:     cmp.Diff.Additions,
		Deletions:     cmp.Diff.Deletions,
		Modifications: cmp.Diff.Modifications,
		Identical:     cmp.Diff.Empty(),
		Cached:        cmp.Cached,
	})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		h.logger.WarnContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) view(v models.StateVersion) versionView {
	return versionView{
		StateVersion: v,
		CreatedLabel: format.DateTime(v.CreatedAt, h.location),
		SizeLabel:    format.Size(v.Size),
	}
}
