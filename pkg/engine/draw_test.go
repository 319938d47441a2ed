package engine_test

import (
	"context"
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/engine"
	"github.com/stretchr/testify/require"
)

// TestThreefoldRepetitionDraw checks game-level repetition: a position
// repeated three times in the official game history is reported a draw; a
// position that has only appeared twice is not. Both kings shuffle out and
// back, recreating the starting position every four plies.
func TestThreefoldRepetitionDraw(t *testing.T) {
	ctx := context.Background()

	e := engine.New(ctx, "test", "test", nil)
	require.NoError(t, e.Reset(ctx, "4k3/p7/8/8/8/8/P7/4K3 w - - 0 1"))

	shuffle := []string{"e1d1", "e8d8", "d1e1", "d8e8"}

	// One full shuffle cycle: the starting position has now occurred twice
	// (the initial game position, plus its recurrence after 4 plies).
	for _, mv := range shuffle {
		require.NoError(t, e.Move(ctx, mv))
	}
	require.Equal(t, board.Undecided, e.Result(), "position has recurred only twice")

	// A second full cycle brings the starting position's count to three.
	for _, mv := range shuffle {
		require.NoError(t, e.Move(ctx, mv))
	}
	require.Equal(t, board.Draw, e.Result(), "position has now recurred three times")
}
