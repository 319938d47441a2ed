package search_test

import (
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/require"
)

// snapshot captures the Position state the inverse property compares
// field-by-field, since board.Position has no exported equality method.
type snapshot struct {
	fen        string
	signature  uint64
	nonPawnSig uint64
	pawnSig    uint64
}

func snapshotOf(pos *board.Position) snapshot {
	return snapshot{
		fen:        fen.Encode(pos, 1),
		signature:  pos.Signature(),
		nonPawnSig: pos.NonPawnSignature(),
		pawnSig:    pos.PawnSignature(),
	}
}

// TestMakeUnmakeIsInverse checks that Unmake(Make(ctx, mv)) restores ctx to
// its pre-Make snapshot, for every legal move from a suite of positions.
func TestMakeUnmakeIsInverse(t *testing.T) {
	positions := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"5r1k/3KP3/8/8/8/8/8/8 w - - 0 1",
		"8/8/8/2k5/4p3/8/2KP4/8 w - - 0 1",
	}

	for _, f := range positions {
		t.Run(f, func(t *testing.T) {
			pos, _, _, err := fen.Decode(f)
			require.NoError(t, err)

			inCheck := movegen.IsChecked(pos, pos.Turn())
			var moves []board.Move
			if inCheck {
				moves = movegen.GenerateEvasions(pos, board.NoMove)
			} else {
				moves = movegen.GenerateAll(pos, movegen.All, board.NoMove)
			}

			for _, mv := range moves {
				tc := search.NewThreadContext(pos.Clone(), 0)
				before := snapshotOf(tc.Pos)

				if !tc.Make(mv) {
					continue
				}

				// The incrementally maintained signature must equal a
				// from-scratch recomputation via pkg/board/fen round-trip.
				recomputed, _, _, err := fen.Decode(fen.Encode(tc.Pos, 1))
				require.NoError(t, err)
				require.Equal(t, recomputed.Signature(), tc.Pos.Signature(), "mv=%v", mv)

				require.NoError(t, tc.Pos.CheckInvariants(), "mv=%v", mv)

				tc.Unmake()
				after := snapshotOf(tc.Pos)
				require.Equal(t, before, after, "mv=%v", mv)
			}
		})
	}
}

// TestMakeUnmakeEnPassantSequence: three makes (double pawn
// push, en passant capture, recapture) each followed by an invariant
// check, then three unmakes recovering the initial position by signature.
func TestMakeUnmakeEnPassantSequence(t *testing.T) {
	pos, _, _, err := fen.Decode("8/8/8/2k5/4p3/8/2KP4/8 w - - 0 1")
	require.NoError(t, err)

	tc := search.NewThreadContext(pos.Clone(), 0)
	initial := snapshotOf(tc.Pos)

	d2d4 := board.NewMove(board.D2, board.D4, board.Pawn, board.NoPiece, board.NoPiece, board.Special)
	require.True(t, tc.Make(d2d4))
	require.NoError(t, tc.Pos.CheckInvariants())
	require.Equal(t, board.D3, tc.Pos.EnPassant())

	e4d3 := board.NewMove(board.E4, board.D3, board.Pawn, board.Pawn, board.NoPiece, board.Special)
	require.True(t, tc.Make(e4d3))
	require.NoError(t, tc.Pos.CheckInvariants())
	require.True(t, tc.Pos.IsEmpty(board.D4), "captured pawn must be removed from its origin square, not the ep square")

	c2d3 := board.NewMove(board.C2, board.D3, board.King, board.Pawn, board.NoPiece, 0)
	require.True(t, tc.Make(c2d3))
	require.NoError(t, tc.Pos.CheckInvariants())

	tc.Unmake()
	tc.Unmake()
	tc.Unmake()

	require.Equal(t, initial, snapshotOf(tc.Pos))
}

// TestMakeRejectsCastleThroughCheck: a castle whose landing
// square lies on an enemy rook's open file/rank must be rejected. The
// black rook on g6 covers g1 (open g-file), which O-O would land the king
// on.
func TestMakeRejectsCastleThroughCheck(t *testing.T) {
	pos, _, _, err := fen.Decode("3k4/8/6r1/8/8/8/8/R3K2R w KQ - 0 1")
	require.NoError(t, err)

	tc := search.NewThreadContext(pos.Clone(), 0)
	mv := board.NewMove(board.E1, board.G1, board.King, board.NoPiece, board.NoPiece, board.Special)

	require.False(t, tc.Make(mv), "O-O must be rejected: the black rook on g6 covers g1")

	// O-O-O is unaffected by the g-file rook -- it lands on c1, traversing
	// d1, neither attacked here -- confirming the rejection above is about
	// the specific attacked square, not castling in general.
	tc2 := search.NewThreadContext(pos.Clone(), 0)
	queenside := board.NewMove(board.E1, board.C1, board.King, board.NoPiece, board.NoPiece, board.Special)
	require.True(t, tc2.Make(queenside), "O-O-O should be legal: d1/c1 are not attacked")
}
