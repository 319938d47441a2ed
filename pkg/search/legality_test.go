package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/require"
)

// legalMoveExists reports whether the side to move in pos has any reply
// that survives Make, the same probe game.hasLegalMove uses in pkg/engine.
func legalMoveExists(pos *board.Position) bool {
	var candidates []board.Move
	if movegen.IsChecked(pos, pos.Turn()) {
		candidates = movegen.GenerateEvasions(pos, board.NoMove)
	} else {
		candidates = movegen.GenerateAll(pos, movegen.All, board.NoMove)
	}
	for _, mv := range candidates {
		if search.NewThreadContext(pos.Clone(), 0).Make(mv) {
			return true
		}
	}
	return false
}

func newTestSearcher() *search.Searcher {
	return search.NewSearcher(search.NewTranspositionTable(1<<20), search.NewDangerHash(1<<10), eval.Material{})
}

// TestSearchRootLegality: on any legal position, a two-ply
// search returns either a legal move or a terminal sentinel (board.NoMove,
// for checkmate or stalemate).
func TestSearchRootLegality(t *testing.T) {
	tests := []string{
		fen.Initial,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1",
		"7k/6Q1/6K1/8/8/8/8/8 b - - 0 1", // checkmate: Qg7/Kg6 corner mate
		"7k/5K2/6Q1/8/8/8/8/8 b - - 0 1", // stalemate: no legal reply, not in check
	}

	for _, f := range tests {
		t.Run(f, func(t *testing.T) {
			pos, _, _, err := fen.Decode(f)
			require.NoError(t, err)

			s := newTestSearcher()
			tc := search.NewThreadContext(pos, 0)
			res := s.SearchRoot(context.Background(), tc, search.TwoPly, eval.NegInf, eval.Inf, board.NoMove)

			mv := res.Move()
			if mv == board.NoMove {
				require.False(t, legalMoveExists(pos), "NoMove result must mean no legal move exists")
				return
			}

			verify := search.NewThreadContext(pos.Clone(), 0)
			require.True(t, verify.Make(mv), "SearchRoot's move %v must be legal", mv)
		})
	}
}

// TestSanityCheckMove checks the collision guard used on transposition
// moves: a move is only plausible when its named mover and victim match
// the board.
func TestSanityCheckMove(t *testing.T) {
	pos, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	good := board.NewMove(board.E2, board.NewSquare(board.FileE, board.Rank4), board.Pawn, board.NoPiece, board.NoPiece, board.Special)
	require.True(t, search.SanityCheckMove(pos, good))

	// Wrong mover type for the from-square.
	wrongPiece := board.NewMove(board.E2, board.NewSquare(board.FileE, board.Rank4), board.Knight, board.NoPiece, board.NoPiece, 0)
	require.False(t, search.SanityCheckMove(pos, wrongPiece))

	// Claims a capture on an empty square.
	phantomCapture := board.NewMove(board.E2, board.NewSquare(board.FileE, board.Rank4), board.Pawn, board.Rook, board.NoPiece, 0)
	require.False(t, search.SanityCheckMove(pos, phantomCapture))

	// Empty from-square.
	empty := board.NewMove(board.NewSquare(board.FileE, board.Rank5), board.NewSquare(board.FileE, board.Rank6), board.Pawn, board.NoPiece, board.NoPiece, 0)
	require.False(t, search.SanityCheckMove(pos, empty))
}

// TestSearchRootWithinBudget: from the starting position, a
// depth-2 search well within a generous time budget returns a non-null best
// move without the context ever reporting cancellation.
func TestSearchRootWithinBudget(t *testing.T) {
	pos, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Second)
	defer cancel()

	s := newTestSearcher()
	tc := search.NewThreadContext(pos, 0)
	res := s.SearchRoot(ctx, tc, search.TwoPly, eval.NegInf, eval.Inf, board.NoMove)

	require.NoError(t, ctx.Err(), "search must not exhaust a 200s budget at depth 2")
	require.NotEqual(t, board.NoMove, res.Move(), "starting position always has a legal reply")
}
