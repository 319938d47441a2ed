package engine_test

import (
	"context"
	"testing"

	"github.com/kref/citadel/pkg/engine"
	"github.com/stretchr/testify/require"
)

// TestMoveResolvesBareCoordinates checks that Engine.Move, given only the
// bare from/to/promotion board.ParseMove extracts from UCI/xboard/console
// input, still applies castling, en passant, and promotion correctly --
// that detail has to come from matching the parsed move against the legal
// move list (search.ThreadContext.MakeUserMove), not from the wire string.
func TestMoveResolvesBareCoordinates(t *testing.T) {
	ctx := context.Background()

	t.Run("castle", func(t *testing.T) {
		e := engine.New(ctx, "test", "test", nil)
		require.NoError(t, e.Reset(ctx, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1"))
		require.NoError(t, e.Move(ctx, "e1g1"))
		require.Equal(t, "r3k2r/8/8/8/8/8/8/R4RK1 b kq - 0 1", e.Position())
	})

	t.Run("en passant", func(t *testing.T) {
		e := engine.New(ctx, "test", "test", nil)
		require.NoError(t, e.Reset(ctx, "4k3/8/8/8/3p4/8/2P5/4K3 w - - 0 1"))
		require.NoError(t, e.Move(ctx, "c2c4"))
		require.NoError(t, e.Move(ctx, "d4c3"))
		require.Equal(t, "4k3/8/8/8/8/2p5/8/4K3 w - - 0 2", e.Position())
	})

	t.Run("promotion", func(t *testing.T) {
		e := engine.New(ctx, "test", "test", nil)
		require.NoError(t, e.Reset(ctx, "k7/4P3/8/8/8/8/8/4K3 w - - 0 1"))
		require.NoError(t, e.Move(ctx, "e7e8q"))
		require.Equal(t, "k3Q3/8/8/8/8/8/8/4K3 b - - 0 1", e.Position())
	})

	t.Run("rejects a move with no matching legal candidate", func(t *testing.T) {
		e := engine.New(ctx, "test", "test", nil)
		require.NoError(t, e.Reset(ctx, "4k3/8/8/8/8/8/8/4K3 w - - 0 1"))
		require.Error(t, e.Move(ctx, "e1e5"))
	})
}
