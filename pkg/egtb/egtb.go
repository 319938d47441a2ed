// Package egtb defines the endgame tablebase collaborator search consults
// at low-material interior nodes. It ships only a no-op Prober; the
// interface point is load-bearing regardless -- search never
// special-cases "no tablebase" beyond asking for None().
package egtb

import (
	"context"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
)

// Prober answers whether a position's exact result is known from a
// tablebase, without itself doing any search.
type Prober interface {
	// Probe returns an exact score and true if pos's outcome is tabulated,
	// false otherwise. The score is from the perspective of the side to
	// move, following the same negamax convention as eval.Evaluator.
	Probe(ctx context.Context, pos *board.Position) (eval.Score, bool)
}

// None is a Prober that never has an answer, for engines run without a
// tablebase installed.
type None struct{}

func (None) Probe(ctx context.Context, pos *board.Position) (eval.Score, bool) {
	return 0, false
}
