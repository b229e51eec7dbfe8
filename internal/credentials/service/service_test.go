package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statedeck/internal/credentials/models"
	"statedeck/internal/credentials/store/memory"
	"statedeck/internal/usage"
	dErrors "statedeck/pkg/domain-errors"
)

var now = time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC)

type brokenStore struct{}

func (brokenStore) ListAPIKeys(context.Context) ([]models.APIKey, error) {
	return nil, errors.New("upstream timeout")
}

func (brokenStore) ListJWTTokens(context.Context) ([]models.JWTToken, error) {
	return nil, nil
}

func newService(t *testing.T) *Service {
	t.Helper()
	store := memory.NewInMemoryStore()
	store.Seed(models.SampleAPIKeys(), models.SampleJWTTokens())
	svc, err := New(store)
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorContains(t, err, "credential store is required")
}

func TestOverview(t *testing.T) {
	t.Run("cards are ordered newest first with usage meters", func(t *testing.T) {
		o, err := newService(t).Overview(context.Background(), now)
		require.NoError(t, err)
		require.Len(t, o.APIKeys, 4)
		require.Len(t, o.Tokens, 2)

		ci := o.APIKeys[0]
		assert.Equal(t, "key-001", ci.ID)
		assert.InDelta(t, 78.2, ci.Usage.Reading.Percentage, 0.001)
		assert.Equal(t, usage.VariantWarning, ci.Usage.Reading.Variant)

		assert.Equal(t, "key-002", o.APIKeys[1].ID)
		assert.Equal(t, usage.VariantDanger, o.APIKeys[1].Usage.Reading.Variant)

		unlimited := o.APIKeys[2]
		assert.Equal(t, "key-004", unlimited.ID)
		assert.True(t, unlimited.Usage.Reading.OverQuota)

		assert.Equal(t, "bob@example.com", o.Tokens[0].Title)
	})

	t.Run("store failure is internal", func(t *testing.T) {
		svc, err := New(brokenStore{})
		require.NoError(t, err)
		_, err = svc.Overview(context.Background(), now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func TestInspect(t *testing.T) {
	svc := newService(t)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        "jti-0001",
		Subject:   "carol@example.com",
		ExpiresAt: jwt.NewNumericDate(now.Add(49 * time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	d, err := svc.Inspect(context.Background(), raw, now)
	require.NoError(t, err)
	assert.Equal(t, models.KindJWT, d.Kind)
	assert.Equal(t, "carol@example.com", d.Title)
	assert.Equal(t, "Expires in 2 days", d.ExpiryLabel)

	_, err = svc.Inspect(context.Background(), "nope", now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
