package eval_test

import (
	"context"
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStandardEvaluateSymmetric: a mirror-symmetric position must score
// zero for either side to move (no material edge, no safety edge, no
// noise configured).
func TestStandardEvaluateSymmetric(t *testing.T) {
	ctx := context.Background()

	for _, f := range []string{
		fen.Initial,
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1",
	} {
		pos, _, _, err := fen.Decode(f)
		require.NoError(t, err)
		assert.Equal(t, eval.Score(0), eval.NewStandard().Evaluate(ctx, pos), "fen=%v", f)
	}
}

// TestStandardPenalizesHangingPiece: a knight en prise to a pawn scores
// below its raw material edge.
func TestStandardPenalizesHangingPiece(t *testing.T) {
	ctx := context.Background()

	pos, _, _, err := fen.Decode("4k3/8/8/3p4/4N3/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	material := eval.Material{}.Evaluate(ctx, pos)
	full := eval.NewStandard().Evaluate(ctx, pos)
	assert.Less(t, full, material, "the hanging knight on e4 must cost something")
	assert.Greater(t, full, eval.Score(0), "white is still a knight for a pawn up")
}

// TestPawnStructurePrefersHealthyPawns: two connected pawns outscore the
// same two pawns doubled on one file.
func TestPawnStructurePrefersHealthyPawns(t *testing.T) {
	doubled, _, _, err := fen.Decode("4k3/8/8/8/8/2P5/2P5/4K3 w - - 0 1")
	require.NoError(t, err)
	connected, _, _, err := fen.Decode("4k3/8/8/8/8/8/1PP5/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t,
		eval.PawnStructure(connected, board.White),
		eval.PawnStructure(doubled, board.White))
}

// TestPawnStructurePassedPawnAdvancement: the same passed pawn is worth
// more the further up the board it stands.
func TestPawnStructurePassedPawnAdvancement(t *testing.T) {
	back, _, _, err := fen.Decode("4k3/8/8/8/8/8/2P5/4K3 w - - 0 1")
	require.NoError(t, err)
	far, _, _, err := fen.Decode("4k3/8/2P5/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t,
		eval.PawnStructure(far, board.White),
		eval.PawnStructure(back, board.White))
}

// TestPawnStructureBlockedPasserIsNotPassed: an enemy pawn directly in the
// way disqualifies the passed-pawn bonus.
func TestPawnStructureBlockedPasserIsNotPassed(t *testing.T) {
	blocked, _, _, err := fen.Decode("4k3/8/2p5/2P5/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)
	free, _, _, err := fen.Decode("4k3/8/8/2P5/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	assert.Greater(t,
		eval.PawnStructure(free, board.White),
		eval.PawnStructure(blocked, board.White))
}
