package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"statedeck/internal/audit/export"
	"statedeck/internal/audit/filter"
	"statedeck/internal/audit/models"
	"statedeck/internal/audit/service"
	"statedeck/internal/audit/timeline"
	"statedeck/internal/format"
	dErrors "statedeck/pkg/domain-errors"
	"statedeck/pkg/platform/httputil"
	pstrings "statedeck/pkg/platform/strings"
	"statedeck/pkg/requestcontext"
)

const defaultRecentLimit = 5

// Service defines the audit operations the handler needs.
type Service interface {
	Search(ctx context.Context, q service.Query) (*service.Result, error)
	Export(ctx context.Context, c filter.Criteria, opts export.Options) (*export.File, error)
	Record(ctx context.Context, entry models.Entry) (*models.Entry, error)
	Recent(ctx context.Context, limit int) ([]models.Entry, error)
}

// Handler serves the audit timeline, exports and entry recording.
type Handler struct {
	audit    Service
	logger   *slog.Logger
	location *time.Location
	validate *validator.Validate
}

// New creates an audit Handler. Timestamps are labelled in loc.
func New(audit Service, logger *slog.Logger, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return &Handler{audit: audit, logger: logger, location: loc, validate: v}
}

// Register registers the audit routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/entries", h.handleSearch)
	r.Post("/audit/entries", h.handleRecord)
	r.Get("/audit/export", h.handleExport)
	r.Get("/audit/recent", h.handleRecent)
}

// entryView adds the display labels the timeline rows render.
type entryView struct {
	models.Entry
	Category      models.Category `json:"category"`
	TypeLabel     string          `json:"typeLabel"`
	TimeLabel     string          `json:"timeLabel"`
	RelativeLabel string          `json:"relativeLabel"`
	DeviceLabel   string          `json:"deviceLabel,omitempty"`
}

type groupView struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Entries []entryView `json:"entries"`
}

type searchResponse struct {
	Groups   []groupView `json:"groups"`
	Total    int         `json:"total"`
	Visible  int         `json:"visible"`
	PageSize int         `json:"pageSize"`
	HasMore  bool        `json:"hasMore"`
}

type recentResponse struct {
	Entries []entryView `json:"entries"`
}

type recordRequest struct {
	ID          string         `json:"id" validate:"omitempty,max=128"`
	Timestamp   string         `json:"timestamp"`
	Type        string         `json:"type" validate:"required,max=64"`
	Description string         `json:"description" validate:"max=1024"`
	User        string         `json:"user" validate:"required,max=256"`
	Workspace   string         `json:"workspace" validate:"max=128"`
	Severity    string         `json:"severity" validate:"omitempty,oneof=info warning critical"`
	Status      string         `json:"status" validate:"omitempty,oneof=success failure pending"`
	IPAddress   string         `json:"ipAddress" validate:"omitempty,ip"`
	UserAgent   string         `json:"userAgent" validate:"max=512"`
	Resource    string         `json:"resource" validate:"max=256"`
	Metadata    map[string]any `json:"metadata"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	group, err := parseBool(q.Get("group"), true)
	if err != nil {
		h.writeError(ctx, w, "invalid audit search", err)
		return
	}
	visible, err := parseInt(q.Get("visible"), 0)
	if err != nil {
		h.writeError(ctx, w, "invalid audit search", err)
		return
	}

	res, err := h.audit.Search(ctx, service.Query{
		Criteria:    criteriaFrom(r),
		GroupByDate: group,
		Visible:     visible,
	})
	if err != nil {
		h.writeError(ctx, w, "failed to search audit log", err)
		return
	}

	now := requestcontext.Now(ctx)
	resp := searchResponse{
		Groups:   make([]groupView, 0, len(res.Groups)),
		Total:    res.Total,
		Visible:  res.Visible,
		PageSize: res.PageSize,
		HasMore:  res.HasMore,
	}
	for _, g := range res.Groups {
		resp.Groups = append(resp.Groups, h.groupView(g, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	f, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		h.writeError(ctx, w, "invalid audit export", err)
		return
	}
	details, err := parseBool(q.Get("details"), false)
	if err != nil {
		h.writeError(ctx, w, "invalid audit export", err)
		return
	}

	file, err := h.audit.Export(ctx, criteriaFrom(r), export.Options{
		Format:         f,
		IncludeDetails: details,
		Now:            requestcontext.Now(ctx),
	})
	if err != nil {
		h.writeError(ctx, w, "failed to export audit log", err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Body)
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[recordRequest](w, r)
	if !ok {
		return
	}
	if err := h.validate.StructCtx(ctx, req); err != nil {
		h.writeError(ctx, w, "invalid audit entry", validationError(err))
		return
	}

	entry := models.Entry{
		ID:          req.ID,
		Type:        models.EventType(req.Type),
		Description: req.Description,
		User:        req.User,
		Workspace:   req.Workspace,
		Severity:    models.Severity(req.Severity),
		Status:      models.Status(req.Status),
		IPAddress:   req.IPAddress,
		UserAgent:   req.UserAgent,
		Resource:    req.Resource,
		Metadata:    req.Metadata,
	}
	if req.Timestamp != "" {
		ts, err := models.ParseTimestamp(req.Timestamp)
		if err != nil {
			h.writeError(ctx, w, "invalid audit entry", err)
			return
		}
		entry.Timestamp = ts
	}
	// the caller's connection stands in for missing client details
	if entry.IPAddress == "" {
		entry.IPAddress = requestcontext.ClientIP(ctx)
	}
	if entry.UserAgent == "" {
		entry.UserAgent = requestcontext.UserAgent(ctx)
	}

	recorded, err := h.audit.Record(ctx, entry)
	if err != nil {
		h.writeError(ctx, w, "failed to record audit entry", err)
		return
	}
	h.logger.InfoContext(ctx, "audit entry recorded",
		"request_id", requestcontext.RequestID(ctx),
		"entry_id", recorded.ID,
		"type", recorded.Type,
	)
	httputil.WriteJSON(w, http.StatusCreated, recorded)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit, err := parseInt(r.URL.Query().Get("limit"), defaultRecentLimit)
	if err != nil {
		h.writeError(ctx, w, "invalid recent activity request", err)
		return
	}

	entries, err := h.audit.Recent(ctx, limit)
	if err != nil {
		h.writeError(ctx, w, "failed to list recent activity", err)
		return
	}

	now := requestcontext.Now(ctx)
	resp := recentResponse{Entries: make([]entryView, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, h.entryView(e, now))
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
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

func (h *Handler) groupView(g timeline.Group, now time.Time) groupView {
	out := groupView{Key: g.Key, Label: g.Label, Entries: make([]entryView, 0, len(g.Entries))}
	for _, e := range g.Entries {
		out.Entries = append(out.Entries, h.entryView(e, now))
	}
	return out
}

func (h *Handler) entryView(e models.Entry, now time.Time) entryView {
	v := entryView{
		Entry:         e,
		Category:      e.Type.Category(),
		TypeLabel:     e.Type.Label(),
		TimeLabel:     format.Time(e.Timestamp, h.location),
		RelativeLabel: format.Relative(e.Timestamp, now),
	}
	if e.UserAgent != "" {
		v.DeviceLabel = format.UserAgent(e.UserAgent)
	}
	return v
}

func criteriaFrom(r *http.Request) filter.Criteria {
	q := r.URL.Query()
	c := filter.Criteria{
		User:        q.Get("user"),
		Workspace:   q.Get("workspace"),
		SearchQuery: q.Get("q"),
		DateFrom:    q.Get("from"),
		DateTo:      q.Get("to"),
	}
	for _, t := range pstrings.SplitList(q["type"]) {
		c.EventTypes = append(c.EventTypes, models.EventType(t))
	}
	return c
}

func parseBool(raw string, fallback bool) (bool, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid boolean %q", raw))
	}
	return v, nil
}

func parseInt(raw string, fallback int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("invalid count %q", raw))
	}
	return v, nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return dErrors.Wrap(err, dErrors.CodeValidation,
			fmt.Sprintf("field %s failed the %s check", fe.Field(), fe.Tag()))
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, "invalid request")
}
