// Package service assembles credential cards for the management panel.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"statedeck/internal/credentials/inspect"
	"statedeck/internal/credentials/models"
	"statedeck/internal/usage"
	dErrors "statedeck/pkg/domain-errors"
)

// Store lists the credentials known to the issuing system.
type Store interface {
	ListAPIKeys(ctx context.Context) ([]models.APIKey, error)
	ListJWTTokens(ctx context.Context) ([]models.JWTToken, error)
}

// KeyCard is an API key card with its request quota meter.
type KeyCard struct {
	models.Display
	Usage usage.Meter `json:"usage"`
}

// Overview is every credential card, API keys first.
type Overview struct {
	APIKeys []KeyCard        `json:"apiKeys"`
	Tokens  []models.Display `json:"tokens"`
}

type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	svc := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Overview renders every stored credential relative to now.
func (s *Service) Overview(ctx context.Context, now time.Time) (*Overview, error) {
	keys, err := s.store.ListAPIKeys(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list api keys")
	}
	tokens, err := s.store.ListJWTTokens(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tokens")
	}

	out := &Overview{
		APIKeys: make([]KeyCard, 0, len(keys)),
		Tokens:  make([]models.Display, 0, len(tokens)),
	}
	for _, k := range keys {
		d, err := models.Describe(k, now)
		if err != nil {
			return nil, err
		}
		out.APIKeys = append(out.APIKeys, KeyCard{
			Display: d,
			Usage:   usage.NewMeter("Requests", float64(k.UsageCount), float64(k.UsageLimit)),
		})
	}
	for _, t := range tokens {
		d, err := models.Describe(t, now)
		if err != nil {
			return nil, err
		}
		out.Tokens = append(out.Tokens, d)
	}
	return out, nil
}

// Inspect decodes a raw bearer token into a card without verifying it.
func (s *Service) Inspect(ctx context.Context, raw string, now time.Time) (*models.Display, error) {
	tok, err := inspect.JWT(raw)
	if err != nil {
		return nil, err
	}
	d, err := models.Describe(tok, now)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "token inspected", "jti", tok.ID, "issuer", tok.Issuer)
	return &d, nil
}
