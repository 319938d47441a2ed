package searchctl_test

import (
	"context"
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/require"
)

func newTestSearcher() *search.Searcher {
	return search.NewSearcher(search.NewTranspositionTable(1<<20), search.NewDangerHash(1<<10), eval.Material{})
}

// TestIterativeDepthLimit drives the iterative-deepening loop to a fixed
// depth limit and checks that each published iteration deepens by one ply,
// ending exactly at the limit.
func TestIterativeDepthLimit(t *testing.T) {
	ctx := context.Background()

	pos, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	tc := search.NewThreadContext(pos.Clone(), 0)
	h, out := searchctl.Iterative{}.Launch(ctx, newTestSearcher(), tc, searchctl.Options{
		DepthLimit: lang.Some(uint(3)),
	})

	var results []search.Result
	for res := range out {
		results = append(results, res)
	}
	require.NotEmpty(t, results)

	last := results[len(results)-1]
	require.Equal(t, 3*search.OnePly, last.Depth)
	require.NotEqual(t, board.NoMove, last.Move())

	// The published sequence deepens monotonically.
	for i := 1; i < len(results); i++ {
		require.Greater(t, results[i].Depth, results[i-1].Depth)
	}

	// Halt after exhaustion is idempotent and returns the final result.
	require.Equal(t, last.Depth, h.Halt().Depth)
}

// TestIterativeMaxNodes checks the node-budget option: the loop stops
// close past the budget rather than running to its depth limit.
func TestIterativeMaxNodes(t *testing.T) {
	ctx := context.Background()

	pos, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	const budget = 5_000

	tc := search.NewThreadContext(pos.Clone(), 0)
	_, out := searchctl.Iterative{}.Launch(ctx, newTestSearcher(), tc, searchctl.Options{
		DepthLimit: lang.Some(uint(32)),
		MaxNodes:   lang.Some(uint64(budget)),
	})

	for range out {
	}

	// The budget is polled on the node-count mask, so the overshoot is
	// bounded by one poll interval plus the unwind.
	require.Less(t, tc.Counters.Nodes, uint64(budget+8_192),
		"a depth-32 search must stop close past a %d-node budget", budget)
}

// TestTimeControlLimits sanity-checks the soft/hard split: the hard limit
// is a multiple of the soft one, and a side with less clock gets less
// time.
func TestTimeControlLimits(t *testing.T) {
	tcs := searchctl.TimeControl{White: 80_000_000_000, Black: 40_000_000_000} // 80s / 40s

	softW, hardW := tcs.Limits(board.White)
	softB, _ := tcs.Limits(board.Black)

	require.Greater(t, hardW, softW)
	require.Greater(t, softW, softB)
}
