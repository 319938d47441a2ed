package main

import (
	"fmt"
	"time"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
)

func runPerft(position string, depth int, divide bool) error {
	if position == "" {
		position = fen.Initial
	}
	if depth <= 0 {
		depth = 4
	}

	pos, _, _, err := fen.Decode(position)
	if err != nil {
		return fmt.Errorf("invalid fen %q: %w", position, err)
	}

	for i := 1; i <= depth; i++ {
		tc := search.NewThreadContext(pos.Clone(), 0)

		start := time.Now()
		nodes := perft(tc, i, divide && i == depth)
		duration := time.Since(start)

		fmt.Printf("perft,%v,%v,%v,%v\n", position, i, nodes, duration.Microseconds())
	}
	return nil
}

func perft(tc *search.ThreadContext, depth int, d bool) int64 {
	if depth == 0 {
		return 1
	}

	var nodes int64
	for _, m := range movegen.GenerateAll(tc.Pos, movegen.All, board.NoMove) {
		if !tc.Make(m) {
			continue
		}
		count := perft(tc, depth-1, false)
		tc.Unmake()

		if d {
			fmt.Printf("%v: %v\n", m, count)
		}
		nodes += count
	}
	return nodes
}
