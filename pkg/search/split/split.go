// Package split implements the Young Brothers Wait (YBW) parallel search
// protocol: the first moves at a sufficiently deep node are
// always searched alone (the "oldest brothers"); once two have returned
// without a fail-high, the remaining siblings are shared with a fixed pool
// of worker goroutines through a SplitPoint, the initiating thread draining
// the same queue alongside them. Workers are parked on a notification
// channel, and split completion is a WaitGroup the initiator waits on.
package split

import (
	"context"
	"sync"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"go.uber.org/atomic"
)

// histEntry is one ply of the initiator's path from the search root: the
// move played and the signature reached, which is everything a helper
// needs to replay for in-search repetition detection.
type histEntry struct {
	sig  uint64
	move board.Move
}

// SplitPoint is the state the siblings at a split node share: the move
// queue workers draw from, and the running alpha/best values every worker
// folds its results into under mu.
type SplitPoint struct {
	mu sync.Mutex

	parent   search.SplitAncestor
	ctx      context.Context
	searcher *search.Searcher

	pos         *board.Position // the split node's position; helpers clone it
	history     []histEntry
	gameHistory map[uint64]struct{}
	rootDepth   int

	depth int
	beta  eval.Score

	alpha     eval.Score
	bestScore eval.Score
	bestMove  board.Move
	bestPV    []board.Move
	searched  int

	queue     []board.Move
	next      int
	terminate bool
	invalid   bool

	wg sync.WaitGroup
}

// getNextMove pops the next unclaimed sibling move along with the window
// in effect at the time of the pop.
func (sp *SplitPoint) getNextMove() (mv board.Move, alpha, beta eval.Score, ok bool) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.terminate || sp.next >= len(sp.queue) {
		return board.NoMove, 0, 0, false
	}
	mv = sp.queue[sp.next]
	sp.next++
	return mv, sp.alpha, sp.beta, true
}

// update folds one completed subtree score back into the shared best/alpha
// state; a score reaching beta flags every sibling line moot.
func (sp *SplitPoint) update(mv board.Move, score eval.Score, pv []board.Move) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.searched++
	if score <= sp.bestScore {
		return
	}
	sp.bestScore = score
	sp.bestMove = mv
	sp.bestPV = append([]board.Move{mv}, pv...)
	if score > sp.alpha {
		sp.alpha = score
	}
	if sp.alpha >= sp.beta {
		sp.terminate = true
	}
}

// cancel marks the whole split abandoned (search cancellation observed by
// one thread); the merged result becomes invalid.
func (sp *SplitPoint) cancel() {
	sp.mu.Lock()
	sp.invalid = true
	sp.terminate = true
	sp.mu.Unlock()
}

// Stopped reports whether this split point, or any enclosing one, has
// already found a cutoff -- checked by every participant between moves.
func (sp *SplitPoint) Stopped() bool {
	sp.mu.Lock()
	stopped := sp.terminate
	sp.mu.Unlock()
	if stopped {
		return true
	}
	if sp.parent != nil {
		return sp.parent.Stopped()
	}
	return false
}

// Pool is a fixed set of worker goroutines that sit idle on a notification
// channel until handed a SplitPoint to help at. It implements
// search.Splitter.
type Pool struct {
	notify  chan *SplitPoint
	idle    *atomic.Int32
	workers int
}

// NewPool starts size worker goroutines. They exit when ctx is cancelled
// or Close is called; a pool outlives any individual search, so ctx is
// normally the engine's own lifetime, not a per-search deadline.
func NewPool(ctx context.Context, size int) *Pool {
	p := &Pool{
		notify:  make(chan *SplitPoint, 2*size),
		idle:    atomic.NewInt32(int32(size)),
		workers: size,
	}
	for i := 0; i < size; i++ {
		go p.run(ctx, i+1)
	}
	return p
}

// Close stops the workers once they finish their current split point.
func (p *Pool) Close() {
	close(p.notify)
}

func (p *Pool) run(ctx context.Context, threadNumber int) {
	defer p.idle.Dec() // a gone worker must stop attracting splits

	for {
		select {
		case sp, ok := <-p.notify:
			if !ok {
				return
			}
			p.idle.Dec()
			p.help(sp, threadNumber)
			p.idle.Inc()
		case <-ctx.Done():
			// Dispatch tokens still queued were counted by their senders;
			// release them so no initiator waits on a worker that will
			// never run.
			for {
				select {
				case sp, ok := <-p.notify:
					if !ok {
						return
					}
					sp.wg.Done()
				default:
					return
				}
			}
		}
	}
}

// help reconstructs a worker-local ThreadContext at the split node and
// joins the shared move queue. The dispatch token was added to sp.wg by
// the sender; help only ever releases it.
func (p *Pool) help(sp *SplitPoint, threadNumber int) {
	defer sp.wg.Done()

	tc := search.NewThreadContext(sp.pos.Clone(), threadNumber)
	tc.Ply = len(sp.history)
	for i, h := range sp.history {
		info := tc.At(i)
		info.Move = h.move
		info.Sig = h.sig
	}
	tc.GameHistory = sp.gameHistory
	tc.RootDepth = sp.rootDepth
	tc.CurrentSplit = sp

	drain(sp, sp.searcher, tc)
}

// Split implements search.Splitter: claim the node's remaining siblings,
// offer them to idle workers, and drain the queue with the initiating
// thread until empty or cut off.
func (p *Pool) Split(ctx context.Context, s *search.Searcher, tc *search.ThreadContext, depth int, alpha, beta, bestScore eval.Score, bestMove board.Move, remaining *board.MoveList) (search.SplitResult, bool) {
	if p.idle.Load() <= 0 {
		return search.SplitResult{}, false
	}

	queue := remaining.Drain()

	history := make([]histEntry, tc.Ply)
	for i := range history {
		info := tc.At(i)
		history[i] = histEntry{sig: info.Sig, move: info.Move}
	}

	sp := &SplitPoint{
		parent:      tc.CurrentSplit,
		ctx:         ctx,
		searcher:    s,
		pos:         tc.Pos.Clone(),
		history:     history,
		gameHistory: tc.GameHistory,
		rootDepth:   tc.RootDepth,
		depth:       depth,
		beta:        beta,
		alpha:       alpha,
		bestScore:   bestScore,
		bestMove:    bestMove,
		queue:       queue,
	}

	// Each successful dispatch adds to the WaitGroup here, on the sending
	// side, before the initiator can possibly reach Wait below -- adding
	// from the worker after it receives would let Wait observe a zero
	// counter while a dispatched helper is still about to run.
	for i := 0; i < p.workers; i++ {
		select {
		case p.notify <- sp:
			sp.wg.Add(1)
		default:
		}
	}

	// The initiator helps at its own split with its in-place context, then
	// waits for every helper that claimed a move to report back.
	prior := tc.CurrentSplit
	tc.CurrentSplit = sp
	drain(sp, s, tc)
	tc.CurrentSplit = prior
	sp.wg.Wait()

	sp.mu.Lock()
	defer sp.mu.Unlock()
	if sp.invalid {
		return search.SplitResult{Score: eval.InvalidScore}, true
	}
	return search.SplitResult{
		Score:    sp.bestScore,
		Move:     sp.bestMove,
		PV:       sp.bestPV,
		Searched: sp.searched,
	}, true
}

// drain is the shared sibling loop: pop a move, search its subtree, fold
// the result back in, until the queue empties, a sibling fails high, or
// the search is cancelled. tc must already sit at the split node.
func drain(sp *SplitPoint, s *search.Searcher, tc *search.ThreadContext) {
	for {
		if sp.Stopped() {
			return
		}
		mv, alpha, beta, ok := sp.getNextMove()
		if !ok {
			return
		}
		if !tc.Make(mv) {
			continue
		}
		score := -s.AlphaBeta(sp.ctx, tc, sp.depth-search.OnePly, -beta, -alpha)
		pv := append([]board.Move(nil), tc.Current().PV...)
		tc.Unmake()
		if score.IsInvalid() {
			sp.cancel()
			return
		}
		sp.update(mv, score, pv)
	}
}
