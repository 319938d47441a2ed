package split

import (
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMoves() []board.Move {
	return []board.Move{
		board.NewMove(board.E1, board.D1, board.King, board.NoPiece, board.NoPiece, 0),
		board.NewMove(board.E1, board.F1, board.King, board.NoPiece, board.NoPiece, 0),
		board.NewMove(board.A1, board.A8, board.Rook, board.NoPiece, board.NoPiece, 0),
	}
}

// TestSplitPointQueueOrder checks that getNextMove hands out the queued
// siblings in order, exactly once each, with the window in effect at pop
// time.
func TestSplitPointQueueOrder(t *testing.T) {
	moves := testMoves()
	sp := &SplitPoint{alpha: 10, beta: 50, bestScore: eval.NegInf, queue: moves}

	for i := range moves {
		mv, alpha, beta, ok := sp.getNextMove()
		require.True(t, ok)
		assert.True(t, moves[i].Equals(mv))
		assert.Equal(t, eval.Score(10), alpha)
		assert.Equal(t, eval.Score(50), beta)
	}
	_, _, _, ok := sp.getNextMove()
	assert.False(t, ok, "a drained queue must stop handing out moves")
}

// TestSplitPointUpdateRaisesAlphaAndCutsOff checks the update contract: best/alpha rise monotonically, and a score reaching beta sets
// the terminate flag that getNextMove and Stopped observe.
func TestSplitPointUpdateRaisesAlphaAndCutsOff(t *testing.T) {
	moves := testMoves()
	sp := &SplitPoint{alpha: 10, beta: 50, bestScore: eval.NegInf, queue: moves}

	sp.update(moves[0], 30, nil)
	assert.Equal(t, eval.Score(30), sp.alpha)
	assert.True(t, moves[0].Equals(sp.bestMove))
	assert.False(t, sp.Stopped())

	sp.update(moves[1], 20, nil) // worse: must not regress best/alpha
	assert.Equal(t, eval.Score(30), sp.alpha)
	assert.True(t, moves[0].Equals(sp.bestMove))

	sp.update(moves[2], 60, nil) // fail high
	assert.True(t, sp.Stopped(), "reaching beta must terminate the split")

	_, _, _, ok := sp.getNextMove()
	assert.False(t, ok, "a terminated split must stop handing out moves")
}

// TestSplitPointAncestorCancellation checks that a cutoff at an enclosing
// split point is visible from a nested one.
func TestSplitPointAncestorCancellation(t *testing.T) {
	outer := &SplitPoint{alpha: 0, beta: 1, bestScore: eval.NegInf, queue: testMoves()}
	inner := &SplitPoint{parent: outer, alpha: 0, beta: 100, bestScore: eval.NegInf, queue: testMoves()}

	assert.False(t, inner.Stopped())
	outer.update(outer.queue[0], 5, nil) // outer fails high
	assert.True(t, inner.Stopped(), "an ancestor cutoff must stop the nested split")
}
