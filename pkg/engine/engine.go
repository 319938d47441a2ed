// Package engine orchestrates a position, its thread pool, transposition
// table, opening book and tablebase collaborators, and the iterative
// search driver behind a single mutex-guarded handle that a protocol shim
// (pkg/engine/uci, pkg/engine/xboard) can drive without worrying about
// concurrent search access.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/book"
	"github.com/kref/citadel/pkg/egtb"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/search"
	"github.com/kref/citadel/pkg/search/split"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var version = build.NewVersion(0, 1, 0)

// Options are the runtime knobs an engine plays with. Only the subset the
// search core actually consults is modeled here; the rest of the option
// bag (logfile, play_mode, resign_threshold, ...) lives in
// pkg/engine/config and is a GUI-facing concern.
type Options struct {
	// Depth is the search depth limit in full plies. Zero means no limit.
	// Overridden by per-search searchctl.Options if provided.
	Depth uint
	// Hash is the transposition table size in MB. Zero leaves a minimal
	// one-line table in place.
	Hash uint
	// MaxNodes caps a search by node count, in addition to any time or
	// depth limit. Zero means no limit.
	MaxNodes uint64
	// NumProcessors sizes the split-point worker pool. Zero or one means
	// single-threaded search (no split pool).
	NumProcessors uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%vMB, maxNodes=%v, processors=%v}", o.Depth, o.Hash, o.MaxNodes, o.NumProcessors)
}

// Engine encapsulates game-playing logic, search and evaluation.
type Engine struct {
	name, author string

	launcher  searchctl.Launcher
	eval      eval.Evaluator
	book      book.Book
	egtb      egtb.Prober
	opts      Options
	useBook   bool
	observers []func(context.Context, search.Result)

	g      *game
	tc     *search.ThreadContext
	tt     *search.TranspositionTable
	danger *search.DangerHash
	pool   *split.Pool
	active searchctl.Handle
	mu     sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) { e.opts = opts }
}

// WithEvaluator overrides the default evaluator, eval.NewStandard().
func WithEvaluator(ev eval.Evaluator) Option {
	return func(e *Engine) { e.eval = ev }
}

// WithBook configures an opening book. Defaults to book.NoBook.
func WithBook(b book.Book) Option {
	return func(e *Engine) { e.book = b }
}

// WithEgtb configures a tablebase prober. Defaults to egtb.None{}.
func WithEgtb(p egtb.Prober) Option {
	return func(e *Engine) { e.egtb = p }
}

// WithObserver registers fn to be called with every search.Result Analyze
// produces, in addition to whatever protocol shim is consuming them --
// e.g. pkg/engine/remote.Broadcaster.Publish, to mirror progress output to
// websocket spectators without the shim
// needing to fork the result channel itself.
func WithObserver(fn func(context.Context, search.Result)) Option {
	return func(e *Engine) { e.observers = append(e.observers, fn) }
}

// New creates an engine using the given iterative-deepening launcher.
func New(ctx context.Context, name, author string, launcher searchctl.Launcher, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: launcher,
		eval:     eval.NewStandard(),
		book:     book.NoBook,
		egtb:     egtb.None{},
	}
	for _, fn := range opts {
		fn(e)
	}

	// Helper search threads outlive any one search; num_processors counts
	// the main search thread itself, so a setting of N starts
	// N-1 helpers.
	if e.opts.NumProcessors > 1 {
		e.pool = split.NewPool(ctx, int(e.opts.NumProcessors)-1)
	}

	_ = e.Reset(ctx, fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Depth = depth
}

func (e *Engine) SetHash(sizeMB uint) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.Hash = sizeMB
	e.resizeHash()
}

// SetUseBook toggles whether Analyze consults the configured opening book
// before searching. Off by default, matching a GUI's own "OwnBook" option.
func (e *Engine) SetUseBook(use bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.useBook = use
}

func (e *Engine) resizeHash() {
	if e.opts.Hash > 0 {
		e.tt = search.NewTranspositionTable(uint64(e.opts.Hash) << 20)
	} else {
		e.tt = search.NewTranspositionTable(lineEntriesMinSizeBytes)
	}
}

// lineEntriesMinSizeBytes backs a "no hash" engine with the table's own
// one-line floor rather than a nil table, since every AlphaBeta call probes
// one unconditionally.
const lineEntriesMinSizeBytes = 64

// dangerHashEntries sizes the per-engine danger hash independent of the
// transposition table's configurable size.
const dangerHashEntries = 1 << 14

// Position returns the current position in FEN format.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fen.Encode(e.g.Position(), e.g.FullMoves())
}

// Result returns the current game result, if the game has ended.
func (e *Engine) Result() board.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.Result()
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, opt=%v", position, e.opts)

	_, _ = e.haltSearchIfActive(ctx)

	pos, _, fullmoves, err := fen.Decode(position)
	if err != nil {
		return err
	}
	e.g = newGame(pos, fullmoves)
	e.tc = search.NewThreadContext(pos.Clone(), 0)
	e.danger = search.NewDangerHash(dangerHashEntries)
	e.resizeHash()

	logw.Infof(ctx, "New game: %v", e.g)
	return nil
}

// Move selects the given move, usually an opponent move, in pure algebraic
// notation (e.g. "e2e4", "e7e8q").
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	_, _ = e.haltSearchIfActive(ctx)

	if !e.g.PushMove(candidate) {
		return fmt.Errorf("illegal move: %v", candidate)
	}

	logw.Infof(ctx, "Move %v: %v", candidate, e.g)
	return nil
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	m, ok := e.g.PopMove()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze consults the opening book first, if enabled; failing that, it
// launches an iterative-deepening search of the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}
	if _, ok := opt.MaxNodes.V(); !ok && e.opts.MaxNodes > 0 {
		opt.MaxNodes = lang.Some(e.opts.MaxNodes)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.g, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	if e.useBook {
		position := fen.Encode(e.g.Position(), e.g.FullMoves())
		if moves, err := e.book.Find(ctx, position); err == nil && len(moves) > 0 {
			out := make(chan search.Result, 1)
			out <- search.Result{PV: []board.Move{moves[0]}}
			close(out)
			return out, nil
		}
	}

	s := search.NewSearcher(e.tt, e.danger, e.eval)
	s.Egtb = e.egtb
	if e.pool != nil {
		s.Split = e.pool
	}

	e.tc.Pos = e.g.Position().Clone()
	e.tc.Ply = 0
	e.tc.GameHistory = e.g.Signatures()

	handle, out := e.launcher.Launch(ctx, s, e.tc, opt)
	e.active = handle
	return e.observe(ctx, out), nil
}

// observe forwards each result on in to every registered observer before
// re-publishing it on the returned channel, preserving Analyze's contract
// that its channel closes when the search does.
func (e *Engine) observe(ctx context.Context, in <-chan search.Result) <-chan search.Result {
	if len(e.observers) == 0 {
		return in
	}

	out := make(chan search.Result, cap(in))
	go func() {
		defer close(out)
		for res := range in {
			for _, fn := range e.observers {
				fn(ctx, res)
			}
			out <- res
		}
	}()
	return out
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	res, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.Result{}, fmt.Errorf("no active search")
	}
	return res, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.Result, bool) {
	if e.active != nil {
		res := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.g, res)

		e.active = nil
		return res, true
	}
	return search.Result{}, false
}
