package consumer

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	seen []string
	err  error
}

func (h *recordingHandler) Handle(_ context.Context, msg *Message) error {
	h.seen = append(h.seen, msg.Topic+"/"+string(msg.Key))
	return h.err
}

func TestRouter(t *testing.T) {
	ctx := context.Background()

	t.Run("dispatches by topic", func(t *testing.T) {
		audit := &recordingHandler{}
		versions := &recordingHandler{}
		r := NewRouter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), nil)
		r.Register("statedeck.audit", audit)
		r.Register("statedeck.versions", versions)

		require.NoError(t, r.Handle(ctx, &Message{Topic: "statedeck.audit", Key: []byte("event-1")}))
		require.NoError(t, r.Handle(ctx, &Message{Topic: "statedeck.versions", Key: []byte("ver-1")}))

		assert.Equal(t, []string{"statedeck.audit/event-1"}, audit.seen)
		assert.Equal(t, []string{"statedeck.versions/ver-1"}, versions.seen)
	})

	t.Run("unknown topic without fallback is skipped", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewRouter(slog.New(slog.NewTextHandler(&buf, nil)), nil)

		require.NoError(t, r.Handle(ctx, &Message{Topic: "other", Key: []byte("k")}))
		assert.Contains(t, buf.String(), "no handler for topic")
	})

	t.Run("unknown topic goes to fallback", func(t *testing.T) {
		fallback := &recordingHandler{err: errors.New("boom")}
		r := NewRouter(slog.Default(), fallback)

		err := r.Handle(ctx, &Message{Topic: "other", Key: []byte("k")})
		assert.EqualError(t, err, "boom")
		assert.Equal(t, []string{"other/k"}, fallback.seen)
	})

	t.Run("handler func adapter", func(t *testing.T) {
		called := false
		r := NewRouter(slog.Default(), nil)
		r.Register("t", HandlerFunc(func(context.Context, *Message) error {
			called = true
			return nil
		}))
		require.NoError(t, r.Handle(ctx, &Message{Topic: "t"}))
		assert.True(t, called)
	})
}
