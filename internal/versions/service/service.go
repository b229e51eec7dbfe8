// Package service exposes version history and comparisons to transports.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"statedeck/internal/versions/diff"
	"statedeck/internal/versions/metrics"
	"statedeck/internal/versions/models"
	"statedeck/internal/versions/ports"
	dErrors "statedeck/pkg/domain-errors"
	"statedeck/pkg/platform/sentinel"
)

type (
	Store     = ports.Store
	DiffCache = ports.DiffCache
)

// Comparison is a computed diff plus its display projections.
type Comparison struct {
	From    models.StateVersion `json:"from"`
	To      models.StateVersion `json:"to"`
	Diff    diff.Diff           `json:"-"`
	Stats   diff.Stats          `json:"stats"`
	Unified []models.DiffChunk  `json:"unified"`
	Cached  bool                `json:"cached"`
}

type Service struct {
	store   Store
	cache   DiffCache
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
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

// WithCache enables read-through caching of diffs.
func WithCache(cache DiffCache) Option {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("version store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("statedeck/versions"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// List returns the version history, newest first.
func (s *Service) List(ctx context.Context) ([]models.StateVersion, error) {
	versions, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list versions")
	}
	return versions, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.StateVersion, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "version id is required")
	}
	v, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, fmt.Sprintf("version %s not found", id))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load version")
	}
	return v, nil
}

// Save validates and stores a new version.
func (s *Service) Save(ctx context.Context, v models.StateVersion) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(err, dErrors.CodeConflict, fmt.Sprintf("version %s already exists", v.ID))
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save version")
	}
	return nil
}

// Compare diffs two stored versions. Cache failures are logged and the diff
// is computed directly.
func (s *Service) Compare(ctx context.Context, fromID, toID string) (*Comparison, error) {
	ctx, span := s.tracer.Start(ctx, "versions.Compare", trace.WithAttributes(
		attribute.String("version.from", fromID),
		attribute.String("version.to", toID),
	))
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveCompare(time.Since(start)) }()

	if fromID == "" || toID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "both from and to version ids are required")
	}

	from, err := s.Get(ctx, fromID)
	if err != nil {
		return nil, s.fail(span, err)
	}
	to, err := s.Get(ctx, toID)
	if err != nil {
		return nil, s.fail(span, err)
	}

	if d, ok := s.cached(ctx, *from, *to); ok {
		span.SetAttributes(attribute.Bool("diff.cached", true))
		return newComparison(*from, *to, *d, true), nil
	}

	d, err := diff.Compare(*from, *to)
	if err != nil {
		return nil, s.fail(span, err)
	}
	s.metrics.ObserveDiffSize(d.Stats().Total)

	if s.cache != nil {
		if err := s.cache.Put(ctx, *from, *to, d); err != nil {
			s.logger.WarnContext(ctx, "failed to cache diff",
				"from", from.ID,
				"to", to.ID,
				"error", err,
			)
		}
	}
	return newComparison(*from, *to, d, false), nil
}

func (s *Service) cached(ctx context.Context, from, to models.StateVersion) (*diff.Diff, bool) {
	if s.cache == nil {
		return nil, false
	}
	d, err := s.cache.Get(ctx, from, to)
	switch {
	case err == nil:
		s.metrics.IncrementCacheLookup("hit")
		return d, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.IncrementCacheLookup("miss")
	default:
		s.metrics.IncrementCacheLookup("error")
		s.logger.WarnContext(ctx, "diff cache lookup failed",
			"from", from.ID,
			"to", to.ID,
			"error", err,
		)
	}
	return nil, false
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func newComparison(from, to models.StateVersion, d diff.Diff, cached bool) *Comparison {
	return &Comparison{
		From:    from,
		To:      to,
		Diff:    d,
		Stats:   d.Stats(),
		Unified: d.Unified(),
		Cached:  cached,
	}
}
