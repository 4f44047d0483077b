package reqid

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewContextStoresID(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestFromContextEmpty(t *testing.T) {
	_, ok := FromContext(context.Background())
	require.False(t, ok)
}

func TestNestedContextShadowsParentID(t *testing.T) {
	parent, parentID := NewContext(context.Background())
	child, childID := NewContext(parent)

	got, ok := FromContext(child)
	require.True(t, ok)
	require.Equal(t, childID, got)

	// The parent keeps its own ID.
	got, ok = FromContext(parent)
	require.True(t, ok)
	require.Equal(t, parentID, got)
}

func TestIDsVaryAcrossRequests(t *testing.T) {
	seen := map[int64]bool{}
	for range 32 {
		_, id := NewContext(context.Background())
		seen[id] = true
	}
	require.Greater(t, len(seen), 1)
}
