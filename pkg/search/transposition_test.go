package search_test

import (
	"math/rand"
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/assert"
)

func TestTranspositionTableSizeIsPowerOfTwo(t *testing.T) {
	tt := search.NewTranspositionTable(0x1000)
	assert.Equal(t, uint64(0x1000), tt.Size())

	tt2 := search.NewTranspositionTable(0x1f00)
	assert.Equal(t, uint64(0x1000), tt2.Size())
}

func TestTranspositionTableProbeMiss(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()

	_, _, hit := tt.Probe(hash, 4*search.OnePly, -1000, 1000)
	assert.False(t, hit)
}

func TestTranspositionTableStoreThenProbeExact(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()
	mv := board.NewMove(board.G4, board.G8, board.Pawn, board.NoPiece, board.Queen, board.Special)

	tt.Store(hash, search.ExactBound, 5*search.OnePly, eval.Score(42), mv, false)

	score, hashMove, hit := tt.Probe(hash, 5*search.OnePly, -1000, 1000)
	assert.True(t, hit)
	assert.Equal(t, eval.Score(42), score)
	assert.True(t, mv.Equals(hashMove))
}

func TestTranspositionTableProbeRespectsDepth(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()
	mv := board.NewMove(board.E2, board.E4, board.Pawn, board.NoPiece, board.NoPiece, board.Special)

	tt.Store(hash, search.ExactBound, 2*search.OnePly, eval.Score(10), mv, false)

	_, _, hit := tt.Probe(hash, 5*search.OnePly, -1000, 1000)
	assert.False(t, hit, "entry shallower than the request must not cut off the search")
}

func TestTranspositionTableLowerAndUpperBoundCutoffs(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()
	mv := board.NewMove(board.E2, board.E4, board.Pawn, board.NoPiece, board.NoPiece, board.Special)

	tt.Store(hash, search.LowerBound, 4*search.OnePly, eval.Score(100), mv, false)
	score, _, hit := tt.Probe(hash, 4*search.OnePly, -1000, 50)
	assert.True(t, hit)
	assert.Equal(t, eval.Score(100), score)

	_, _, hit = tt.Probe(hash, 4*search.OnePly, -1000, 200)
	assert.False(t, hit, "lower bound below beta must not cut off")
}

func TestTranspositionTableMateScoreIsClamped(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()
	mv := board.NewMove(board.E2, board.E4, board.Pawn, board.NoPiece, board.NoPiece, board.Special)

	tt.Store(hash, search.ExactBound, 4*search.OnePly, eval.MateIn(3), mv, false)

	score, _, hit := tt.Probe(hash, 4*search.OnePly, eval.NegInf, eval.Inf)
	assert.True(t, hit)
	assert.True(t, score <= eval.NMate, "stored mate score must be clamped to NMate")
}

func TestTranspositionTableAgingMakesSlotZeroStale(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()
	mv := board.NewMove(board.E2, board.E4, board.Pawn, board.NoPiece, board.NoPiece, board.Special)

	tt.Store(hash, search.ExactBound, 10*search.OnePly, eval.Score(1), mv, false)
	tt.NewSearch()

	// A shallower store should still win slot 0 once its occupant is stale.
	tt.Store(hash, search.ExactBound, search.OnePly, eval.Score(2), mv, false)

	score, _, hit := tt.Probe(hash, search.OnePly, -1000, 1000)
	assert.True(t, hit)
	assert.Equal(t, eval.Score(2), score)
}

// TestStoreLowerBoundCutoff: a lower bound of 150 at four
// plies must cut off a four-ply probe whose window tops out at 140.
func TestStoreLowerBoundCutoff(t *testing.T) {
	tt := search.NewTranspositionTable(1 << 16)
	hash := rand.Uint64()
	mv := board.NewMove(board.E2, board.E4, board.Pawn, board.NoPiece, board.NoPiece, board.Special)

	tt.Store(hash, search.LowerBound, 4*search.OnePly, eval.Score(150), mv, false)

	score, _, hit := tt.Probe(hash, 4*search.OnePly, eval.Score(100), eval.Score(140))
	assert.True(t, hit, "a lower bound at or above beta must cut off")
	assert.Equal(t, eval.Score(150), score)
}
