// Package kvtest is a conformance suite every key-value store driver runs.
package kvtest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncmr/internal/ncmr/local"
	"ncmr/pkg/platform/sentinel"
)

// Run exercises kv with keys unique to the calling test.
func Run(t *testing.T, kv local.KV) {
	t.Helper()
	ctx := context.Background()
	prefix := strings.ReplaceAll(t.Name(), "/", "_") + "-"

	t.Run("missing key", func(t *testing.T) {
		_, err := kv.Get(ctx, prefix+"absent")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"ncmrs", `[{"id":"1"}]`))
		got, err := kv.Get(ctx, prefix+"ncmrs")
		require.NoError(t, err)
		assert.Equal(t, `[{"id":"1"}]`, got)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"ncmrs", "first"))
		require.NoError(t, kv.Set(ctx, prefix+"ncmrs", "second"))
		got, err := kv.Get(ctx, prefix+"ncmrs")
		require.NoError(t, err)
		assert.Equal(t, "second", got)
	})

	t.Run("empty value is stored", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"empty", ""))
		got, err := kv.Get(ctx, prefix+"empty")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, kv.Set(ctx, prefix+"a", "A"))
		require.NoError(t, kv.Set(ctx, prefix+"b", "B"))
		a, err := kv.Get(ctx, prefix+"a")
		require.NoError(t, err)
		assert.Equal(t, "A", a)
	})
}
