package searchctl

import (
	"context"
	"sync"
	"time"

	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a search harness that repeatedly deepens a search.Searcher
// call one ply at a time, publishing a Result after each completed
// iteration, until it is halted, runs out of depth budget, finds a forced
// mate within the searched window, or exceeds its soft time limit.
type Iterative struct{}

// Launch starts an iterative-deepening search in its own goroutine against
// tc's current position.
func (i Iterative) Launch(ctx context.Context, s *search.Searcher, tc *search.ThreadContext, opt Options) (Handle, <-chan search.Result) {
	out := make(chan search.Result, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, s, tc, opt, out)
	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	result search.Result
	mu     sync.Mutex
}

func (h *handle) process(ctx context.Context, s *search.Searcher, tc *search.ThreadContext, opt Options, out chan search.Result) {
	defer h.init.Close()
	defer close(out)

	s.TT.NewSearch()
	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, tc.Pos.Turn())

	// Counters and the node budget are per-launch: a reused thread context
	// must not inherit the previous search's tally or limit.
	tc.Counters = search.Counters{}
	tc.MaxNodes = 0
	if limit, ok := opt.MaxNodes.V(); ok {
		tc.MaxNodes = limit
	}

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	var prev search.Result
	ply := 1
	for !h.quit.IsClosed() {
		start := time.Now()

		res := s.SearchRoot(wctx, tc, ply*search.OnePly, eval.NegInf, eval.Inf, prev.Move())
		if res.Score.IsInvalid() {
			return // halted mid-iteration; last published result stands
		}
		res.Nodes = tc.Counters.Nodes

		logw.Debugf(ctx, "searched %v: depth=%v score=%v nodes=%v", tc.Pos, res.Depth, res.Score, res.Nodes)

		prev = res
		h.mu.Lock()
		h.result = res
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- res

		h.init.Close()
		if limit, ok := opt.DepthLimit.V(); ok && uint(ply) == limit {
			return
		}
		if md := res.Score.MateDistance(); md > 0 && md <= ply {
			return // forced mate found within full-width search
		}
		if limit, ok := opt.MaxNodes.V(); ok && tc.Counters.Nodes >= limit {
			return
		}
		if useSoft && soft < time.Since(start) {
			return
		}

		search.DecayHistory(tc)
		ply++
	}
}

func (h *handle) Halt() search.Result {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}
