// Package searchctl drives iterative-deepening search against a
// search.Searcher: depth-by-depth calls into search.Searcher.SearchRoot,
// time-control enforcement, and a Handle the engine uses to halt a running
// search and read back its best line so far.
package searchctl

import (
	"context"
	"fmt"
	"strings"

	"github.com/kref/citadel/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
)

// Options hold dynamic search options. The user may change these on a
// particular search.
type Options struct {
	// DepthLimit, if set, limits the search to the given number of full
	// plies. Zero means no limit.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, limits the search to the given time parameters.
	TimeControl lang.Optional[TimeControl]
	// MaxNodes, if set, aborts the search once the node count crosses it,
	// independent of depth and time limits.
	MaxNodes lang.Optional[uint64]
}

func (o Options) String() string {
	var ret []string
	if v, ok := o.DepthLimit.V(); ok {
		ret = append(ret, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		ret = append(ret, fmt.Sprintf("time=%v", v))
	}
	if v, ok := o.MaxNodes.V(); ok {
		ret = append(ret, fmt.Sprintf("nodes=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(ret, ", "))
}

// Launcher manages searches on behalf of the engine.
type Launcher interface {
	// Launch a new search from tc's current position. tc is expected to be
	// exclusively owned by the caller for the duration of the search. It
	// returns a Handle and a channel of successively deeper results; the
	// channel closes when the search is exhausted or halted.
	Launch(ctx context.Context, s *search.Searcher, tc *search.ThreadContext, opt Options) (Handle, <-chan search.Result)
}

// Handle lets the engine halt a running search and read its best line so
// far. Idempotent: repeated Halt calls return the same result.
type Handle interface {
	Halt() search.Result
}
