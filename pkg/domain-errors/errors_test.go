package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapAndHasCode(t *testing.T) {
	cause := errors.New("boom")

	t.Run("wrap nil returns nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("wrapped error keeps cause and code", func(t *testing.T) {
		err := Wrap(cause, CodeInternal, "list entries")
		assert.True(t, HasCode(err, CodeInternal))
		assert.False(t, HasCode(err, CodeValidation))
		assert.True(t, Is(err, cause))
		assert.Equal(t, "list entries: boom", err.Error())
	})

	t.Run("code found through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeValidation, "bad date"))
		assert.True(t, HasCode(err, CodeValidation))

		de, ok := From(err)
		require.True(t, ok)
		assert.Equal(t, "bad date", de.Message)
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		err := Wrap(New(CodeNotFound, "missing"), CodeInternal, "lookup")
		assert.True(t, HasCode(err, CodeInternal))
		assert.True(t, HasCode(err, CodeNotFound))
	})

	t.Run("plain error has no code", func(t *testing.T) {
		assert.False(t, HasCode(cause, CodeInternal))
		_, ok := From(cause)
		assert.False(t, ok)
	})
}
