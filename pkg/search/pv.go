package search

import (
	"context"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
)

// Result is one iteration's outcome from the root of a search: the
// principal variation, its score, the depth searched (OnePly per ply),
// and node counters for UCI/Xboard "info" reporting.
type Result struct {
	PV    []board.Move
	Score eval.Score
	Depth int
	Nodes uint64
}

// Move is the PV's first move, or board.NoMove if the PV is empty (a
// stalemate/checkmate result, or a search aborted before any move
// completed).
func (r Result) Move() board.Move {
	if len(r.PV) == 0 {
		return board.NoMove
	}
	return r.PV[0]
}

// SearchRoot runs AlphaBeta for one full root iteration at depth
// (OnePly per ply) and packages the result. tc must be at ply 0. A prior
// iteration's best move, if any, is passed as seed and stored in
// tc.RootMove; root move ordering does not read it.
func (s *Searcher) SearchRoot(ctx context.Context, tc *ThreadContext, depth int, alpha, beta eval.Score, seed board.Move) Result {
	if seed != board.NoMove {
		tc.RootMove = seed
	}
	tc.RootDepth = depth
	score := s.AlphaBeta(ctx, tc, depth, alpha, beta)
	tc.RootScore = score
	pv := tc.At(0).PV
	if score.IsInvalid() {
		return Result{PV: nil, Score: score, Depth: depth, Nodes: tc.Counters.Nodes}
	}
	return Result{
		PV:    append([]board.Move(nil), pv...),
		Score: score,
		Depth: depth,
		Nodes: tc.Counters.Nodes,
	}
}
