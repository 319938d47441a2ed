package main

import (
	"context"
	"fmt"
	"time"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/egtb"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
)

func runBench(ctx context.Context, position string, depth uint) error {
	if position == "" {
		position = fen.Initial
	}
	if depth == 0 {
		depth = 6
	}

	pos, _, _, err := fen.Decode(position)
	if err != nil {
		return fmt.Errorf("invalid fen %q: %w", position, err)
	}

	tt := search.NewTranspositionTable(uint64(hash) << 20)
	s := search.NewSearcher(tt, search.NewDangerHash(1<<16), eval.Material{})
	s.Egtb = egtb.None{}

	tc := search.NewThreadContext(pos.Clone(), 0)

	start := time.Now()
	res := s.SearchRoot(ctx, tc, int(depth)*search.OnePly, eval.NegInf, eval.Inf, board.NoMove)
	duration := time.Since(start)

	nps := float64(tc.Counters.Nodes) / duration.Seconds()
	fmt.Printf("bench,%v,%v,%v,%v,%.0f\n", position, depth, tc.Counters.Nodes, duration.Milliseconds(), nps)
	fmt.Printf("score=%v pv=%v\n", res.Score, board.PrintMoves(res.PV))
	return nil
}
