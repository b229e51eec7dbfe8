// Package service runs audit searches, exports and ingestion over a Store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"statedeck/internal/audit/export"
	"statedeck/internal/audit/filter"
	"statedeck/internal/audit/metrics"
	"statedeck/internal/audit/models"
	"statedeck/internal/audit/ports"
	"statedeck/internal/audit/timeline"
	"statedeck/internal/pagination"
	dErrors "statedeck/pkg/domain-errors"
	"statedeck/pkg/platform/sentinel"
	"statedeck/pkg/requestcontext"
)

type Store = ports.Store

// Query is one timeline request. Visible is the number of entries the client
// already shows; zero means one page.
type Query struct {
	Criteria    filter.Criteria
	GroupByDate bool
	Visible     int
}

// Result is the windowed, grouped view of the matching entries.
type Result struct {
	Groups   []timeline.Group `json:"groups"`
	Total    int              `json:"total"`
	Visible  int              `json:"visible"`
	PageSize int              `json:"pageSize"`
	HasMore  bool             `json:"hasMore"`
}

type Service struct {
	store    Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	location *time.Location
	pageSize int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocation sets the zone used for date filters and timeline grouping.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithPageSize sets the "load more" increment.
func WithPageSize(n int) Option {
	return func(s *Service) {
		s.pageSize = n
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("audit store is required")
	}
	svc := &Service{
		store:    store,
		logger:   slog.Default(),
		tracer:   otel.Tracer("statedeck/audit"),
		location: time.UTC,
		pageSize: pagination.DefaultPageSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", svc.pageSize)
	}
	return svc, nil
}

// Location returns the zone used for grouping.
func (s *Service) Location() *time.Location { return s.location }

// Search filters the log, windows the newest-first matches to the requested
// visible count and groups the visible prefix.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Search", trace.WithAttributes(
		attribute.Bool("audit.group_by_date", q.GroupByDate),
		attribute.Int("audit.visible", q.Visible),
	))
	defer span.End()
	start := time.Now()

	matches, err := s.matching(ctx, q.Criteria)
	if err != nil {
		return nil, fail(span, err)
	}

	// pages follow the emitted timeline order
	ordered := timeline.Flatten(timeline.GroupByDate(matches, q.GroupByDate, s.location))
	window, err := pagination.NewWindow(s.pageSize, len(ordered))
	if err != nil {
		return nil, fail(span, err)
	}
	window.Restore(q.Visible)
	visible := pagination.Slice(window, ordered)

	s.metrics.ObserveSearch(time.Since(start), len(matches))
	span.SetAttributes(attribute.Int("audit.matches", len(matches)))

	return &Result{
		Groups:   timeline.GroupByDate(visible, q.GroupByDate, s.location),
		Total:    window.Total(),
		Visible:  window.Visible(),
		PageSize: window.PageSize(),
		HasMore:  window.HasMore(),
	}, nil
}

// Export renders every entry matching c.
func (s *Service) Export(ctx context.Context, c filter.Criteria, opts export.Options) (*export.File, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Export", trace.WithAttributes(
		attribute.String("export.format", string(opts.Format)),
		attribute.Bool("export.details", opts.IncludeDetails),
	))
	defer span.End()

	matches, err := s.matching(ctx, c)
	if err != nil {
		return nil, fail(span, err)
	}
	if opts.Now.IsZero() {
		opts.Now = requestcontext.Now(ctx)
	}

	file, err := export.Render(matches, opts)
	if err != nil {
		return nil, fail(span, err)
	}
	s.metrics.IncrementExport(string(opts.Format), opts.IncludeDetails)
	s.logger.InfoContext(ctx, "audit log exported",
		"request_id", requestcontext.RequestID(ctx),
		"format", opts.Format,
		"details", opts.IncludeDetails,
		"entries", len(matches),
	)
	return file, nil
}

// Recent returns the newest limit entries without filtering.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.Entry, error) {
	if limit <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "limit must be positive")
	}
	entries, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list recent entries")
	}
	return entries, nil
}

// Record validates and appends an entry. A missing id is generated and a
// missing timestamp defaults to the request time.
func (s *Service) Record(ctx context.Context, entry models.Entry) (*models.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "audit.Record")
	defer span.End()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = requestcontext.Now(ctx)
	}
	if err := entry.Validate(); err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(
		attribute.String("audit.entry_id", entry.ID),
		attribute.String("audit.type", string(entry.Type)),
	)

	if err := s.store.Append(ctx, entry); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, fail(span, dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("entry %s already recorded", entry.ID)))
		}
		return nil, fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record entry"))
	}
	s.metrics.IncrementRecorded(string(entry.Type.Category()))
	return &entry, nil
}

func (s *Service) matching(ctx context.Context, c filter.Criteria) ([]models.Entry, error) {
	f, err := filter.Compile(c, s.location)
	if err != nil {
		return nil, err
	}
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit entries")
	}
	if err := models.EnsureUniqueIDs(entries); err != nil {
		return nil, err
	}

	matches := f.Apply(entries)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})
	return matches, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
