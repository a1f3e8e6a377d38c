package cache

import (
	"context"
	"strings"
	"testing"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatchKey(t *testing.T) {
	key := buildMatchKey(42)
	assert.True(t, strings.HasPrefix(key, matchKeyPrefix+":"))

	// Keys are stable for the same order and distinct across orders.
	assert.Equal(t, key, buildMatchKey(42))
	assert.NotEqual(t, key, buildMatchKey(43))
}

func TestNoopMatchCache(t *testing.T) {
	c := NewNoopMatchCache()
	ctx := context.Background()

	candidates, ok, err := c.GetCandidates(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, candidates)

	require.NoError(t, c.SetCandidates(ctx, 1, &domain.MatchCandidates{}))

	// A set never makes a noop cache hit.
	_, ok, err = c.GetCandidates(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Invalidate(ctx, 1))
	require.NoError(t, c.InvalidateAll(ctx))
}
