package search

import (
	"context"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
)

// MinSplitDepth is the shallowest depth (OnePly per ply) AlphaBeta will
// offer a node's remaining siblings to helper threads; splitting nearer
// the horizon costs more in synchronization than it recovers.
const MinSplitDepth = FourPly

// SplitResult is the merged outcome of a parallel sub-search over a node's
// remaining sibling moves.
type SplitResult struct {
	Score eval.Score
	Move  board.Move
	PV    []board.Move

	// Searched counts the legal moves the split actually searched, so the
	// initiating node's legal-move tally stays truthful.
	Searched int
}

// Splitter parcels the remaining sibling moves at a node out across helper
// threads. AlphaBeta calls it at a
// qualifying all-node after the first siblings have been searched serially
// without a fail-high; pkg/search/split's Pool is the one implementation.
//
// Split either declines -- no idle helper, remaining left untouched, false
// returned -- or consumes every move in remaining (the initiating thread
// participates in the drain) and returns the best score/move/PV found,
// which may still be the bestScore/bestMove the caller passed in. A
// returned score of eval.InvalidScore means the search was cancelled
// mid-split.
type Splitter interface {
	Split(ctx context.Context, s *Searcher, tc *ThreadContext, depth int, alpha, beta, bestScore eval.Score, bestMove board.Move, remaining *board.MoveList) (SplitResult, bool)
}

// SplitAncestor is the view of an enclosing split point a nested split
// needs: whether some thread already failed high there, mooting every
// descendant line. ThreadContext
// carries the innermost one so nested splits can chain their parents.
type SplitAncestor interface {
	Stopped() bool
}
