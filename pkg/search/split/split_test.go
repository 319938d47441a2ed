package split_test

import (
	"context"
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"github.com/kref/citadel/pkg/search/split"
	"github.com/stretchr/testify/require"
)

func newSearcher(pool *split.Pool) *search.Searcher {
	s := search.NewSearcher(search.NewTranspositionTable(1<<20), search.NewDangerHash(1<<10), eval.Material{})
	if pool != nil {
		s.Split = pool
	}
	return s
}

// TestParallelSearchReturnsLegalMove runs a full search with helper
// workers attached and requires the merged result to be a legal move with
// a real score -- the end-to-end YBW property: splitting must never
// surface a move the serial search could not have played.
func TestParallelSearchReturnsLegalMove(t *testing.T) {
	ctx := context.Background()

	pos, _, _, err := fen.Decode("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	pool := split.NewPool(ctx, 2)
	defer pool.Close()

	s := newSearcher(pool)
	tc := search.NewThreadContext(pos.Clone(), 0)
	res := s.SearchRoot(ctx, tc, 3*search.OnePly, eval.NegInf, eval.Inf, board.NoMove)

	require.False(t, res.Score.IsInvalid())
	require.NotEqual(t, board.NoMove, res.Move())

	verify := search.NewThreadContext(pos.Clone(), 0)
	require.True(t, verify.Make(res.Move()), "parallel search returned an illegal move %v", res.Move())
}

// TestPoolDeclinesWithoutIdleWorkers checks the Split contract that a
// saturated pool declines and leaves the caller's move list untouched, so
// the initiating thread can continue searching serially.
func TestPoolDeclinesWithoutIdleWorkers(t *testing.T) {
	ctx := context.Background()

	pos, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	pool := split.NewPool(ctx, 0)
	defer pool.Close()

	s := newSearcher(nil)
	tc := search.NewThreadContext(pos.Clone(), 0)

	moves := board.NewMoveList(
		[]board.Move{board.NewMove(board.E1, board.D1, board.King, board.NoPiece, board.NoPiece, 0)},
		func(board.Move) board.MovePriority { return 0 },
	)

	_, ok := pool.Split(ctx, s, tc, 4*search.OnePly, -100, 100, eval.NegInf, board.NoMove, moves)
	require.False(t, ok)
	require.Equal(t, 1, moves.Size(), "a declined split must not consume the move list")
}
