package search

import (
	"context"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
)

// evaluate is the search's static-evaluation entry point: the configured
// evaluator plus the cached pawn-structure term, memoized per position in
// the thread's eval hash. Both caches are per-thread and
// unlocked; the stored key validates every hit.
func (s *Searcher) evaluate(ctx context.Context, tc *ThreadContext) eval.Score {
	pos := tc.Pos
	sig := pos.Signature()

	e := &tc.EvalHash[sig&uint64(len(tc.EvalHash)-1)]
	if e.Key == sig {
		return e.Score
	}

	score := s.Eval.Evaluate(ctx, pos) + s.pawnScore(tc)
	e.Key, e.Score = sig, score

	// A fresh static evaluation is the opportunistic moment to census
	// hanging material for the shared danger hash; cache hits skip it.
	if s.Danger != nil {
		FindEnPrise(pos, s.Danger)
	}
	return score
}

// pawnScore returns the pawn-structure differential for the side to move,
// computing both colors' terms at most once per pawn formation via the
// thread's pawn hash. Pawn structure depends only on pawn placement, so
// the pawn signature alone keys it.
func (s *Searcher) pawnScore(tc *ThreadContext) eval.Score {
	pos := tc.Pos
	psig := pos.PawnSignature()

	pe := &tc.PawnHash[psig&uint64(len(tc.PawnHash)-1)]
	if pe.Key != psig {
		pe.Key = psig
		pe.Score[board.White] = eval.PawnStructure(pos, board.White)
		pe.Score[board.Black] = eval.PawnStructure(pos, board.Black)
	}

	turn := pos.Turn()
	return pe.Score[turn] - pe.Score[turn.Opponent()]
}
