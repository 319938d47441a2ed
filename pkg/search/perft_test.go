package search_test

import (
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/require"
)

// perft counts the leaf nodes reachable from tc.Pos at the given depth,
// making and unmaking every pseudo-legal move in place. Mirrors cmd/perft's driver exactly, since that is the testable
// property the tool exists to check interactively.
func perft(tc *search.ThreadContext, depth int) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range movegen.GenerateAll(tc.Pos, movegen.All, board.NoMove) {
		if !tc.Make(m) {
			continue
		}
		nodes += perft(tc, depth-1)
		tc.Unmake()
	}
	return nodes
}

// TestPerft checks leaf-node counts at low depths from the standard
// starting position and the spec's test-position suite.
func TestPerft(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		counts []int64 // index i = depth i+1
	}{
		{"startpos", fen.Initial, []int64{20, 400, 8902, 197281}},
		{
			"kiwipete",
			"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
			[]int64{48, 2039, 97862},
		},
		{
			"pawns",
			"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
			[]int64{14, 191, 2812, 43238},
		},
		{
			"218-mover",
			"3Q4/1Q4Q1/4Q3/2Q4R/Q4Q2/3Q4/1Q4Rp/1K1BBNNk w - - 0 1",
			[]int64{218},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, _, _, err := fen.Decode(tt.fen)
			require.NoError(t, err)

			for i, want := range tt.counts {
				tc := search.NewThreadContext(pos.Clone(), 0)
				got := perft(tc, i+1)
				require.Equal(t, want, got, "perft(%d) for %s", i+1, tt.name)
			}
		})
	}
}

// TestPerftKiwipeteDepth4Slow is the Kiwipete depth-4 count,
// split out since it is two orders of magnitude slower than the rest of
// the suite.
func TestPerftKiwipeteDepth4Slow(t *testing.T) {
	if testing.Short() {
		t.Skip("slow perft count skipped in -short mode")
	}

	pos, _, _, err := fen.Decode("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	require.NoError(t, err)

	tc := search.NewThreadContext(pos.Clone(), 0)
	require.Equal(t, int64(4085603), perft(tc, 4))
}

// TestPerftPawnsEndgameDepth4 pins the well-known rook-and-pawns
// endgame whose depth-4 count is 43238.
func TestPerftPawnsEndgameDepth4(t *testing.T) {
	pos, _, _, err := fen.Decode("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	require.NoError(t, err)

	tc := search.NewThreadContext(pos.Clone(), 0)
	require.Equal(t, int64(43238), perft(tc, 4))
}
