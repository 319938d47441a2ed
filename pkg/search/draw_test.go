package search_test

import (
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/require"
)

// TestIsDrawFiftyMoveRule checks that the fifty-move rule triggers exactly
// at fifty counter = 100, not before.
func TestIsDrawFiftyMoveRule(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - - 99 1")
	require.NoError(t, err)

	tc := search.NewThreadContext(pos, 0)
	require.False(t, search.IsDraw(tc), "fifty=99 must not yet be a draw")

	mv := board.NewMove(board.E1, board.D1, board.King, board.NoPiece, board.NoPiece, 0)
	require.True(t, tc.Make(mv))
	require.Equal(t, 100, tc.Pos.Fifty())
	require.True(t, search.IsDraw(tc), "fifty=100 must be a draw")
}

// TestIsDrawAdjacentRepetition checks the in-search repetition scan. Both
// kings shuffle out and back twice: after four plies the game is back at
// the starting position (not flagged -- the root itself is never in the
// ply stack to match against; pkg/engine's persistent history covers that
// case). Two plies later the position from ply 2 recurs, which the ply
// stack does see.
func TestIsDrawAdjacentRepetition(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	tc := search.NewThreadContext(pos, 0)
	require.False(t, search.IsDraw(tc), "starting position has not recurred")

	e1d1 := board.NewMove(board.E1, board.D1, board.King, board.NoPiece, board.NoPiece, 0)
	e8d8 := board.NewMove(board.E8, board.D8, board.King, board.NoPiece, board.NoPiece, 0)
	d1e1 := board.NewMove(board.D1, board.E1, board.King, board.NoPiece, board.NoPiece, 0)
	d8e8 := board.NewMove(board.D8, board.E8, board.King, board.NoPiece, board.NoPiece, 0)

	require.True(t, tc.Make(e1d1))
	require.True(t, tc.Make(e8d8))
	require.True(t, tc.Make(d1e1))
	require.True(t, tc.Make(d8e8))
	require.False(t, search.IsDraw(tc), "back at the root position, not a ply-stack repeat")

	require.True(t, tc.Make(e1d1))
	require.True(t, tc.Make(e8d8))
	require.True(t, search.IsDraw(tc), "the ply-2 position (Kd1/Kd8, white to move) has now recurred")
}
