package search

import (
	"context"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/egtb"
	"github.com/kref/citadel/pkg/eval"
)

// RecognizeDraw reports material configurations known dead-drawn regardless
// of position, short-circuiting search before it wastes depth proving the
// obvious. Covers the handful of combinations cheap to check from
// Position's maintained piece counts; KBPvK/KNPvK "wrong bishop" geometry
// is left to the tablebase.
func RecognizeDraw(pos *board.Position) bool {
	for _, c := range [2]board.Color{board.White, board.Black} {
		if pos.Count(c, board.Pawn) > 0 || pos.Count(c, board.Rook) > 0 || pos.Count(c, board.Queen) > 0 {
			return false
		}
	}
	white := pos.Count(board.White, board.Knight) + pos.Count(board.White, board.Bishop)
	black := pos.Count(board.Black, board.Knight) + pos.Count(board.Black, board.Bishop)
	switch {
	case white == 0 && black == 0:
		return true // bare kings
	case white <= 1 && black == 0, white == 0 && black <= 1:
		return true // lone minor can't force mate
	default:
		return false
	}
}

// ProbeInteriorNode asks the recognizer table, then a tablebase, for an
// exact answer at a node before the move loop runs. A hit is exact: the
// caller may return it outright (and cache it at maximal depth).
func ProbeInteriorNode(ctx context.Context, pos *board.Position, prober egtb.Prober) (eval.Score, bool) {
	if RecognizeDraw(pos) {
		return 0, true
	}
	if prober == nil {
		return 0, false
	}
	return prober.Probe(ctx, pos)
}
