package engine

import (
	"fmt"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
)

// repetition3Limit is the game-level repetition draw threshold. The
// fifty-move rule uses search.FiftyMoveLimit directly ("100 plies, no
// half-move grace").
const repetition3Limit = 3

// game tracks one played-out line of a game: the current position plus
// enough history to adjudicate draws and support takeback. Moves are made
// through search.ThreadContext, and package board cannot depend on package
// search, so this history container lives alongside the engine that owns
// it instead of in package board.
type game struct {
	turn      board.Color
	fullmoves int
	result    board.Result

	history []*board.Position // history[i] is the position after i plies
	moves   []board.Move
	sigs    map[uint64]int
}

func newGame(pos *board.Position, fullmoves int) *game {
	return &game{
		turn:      pos.Turn(),
		fullmoves: fullmoves,
		history:   []*board.Position{pos},
		sigs:      map[uint64]int{pos.Signature(): 1},
	}
}

// Fork branches off a game sharing no mutable state with g.
func (g *game) Fork() *game {
	cp := &game{
		turn:      g.turn,
		fullmoves: g.fullmoves,
		result:    g.result,
		history:   append([]*board.Position(nil), g.history...),
		moves:     append([]board.Move(nil), g.moves...),
		sigs:      make(map[uint64]int, len(g.sigs)),
	}
	for k, v := range g.sigs {
		cp.sigs[k] = v
	}
	return cp
}

func (g *game) Position() *board.Position { return g.history[len(g.history)-1] }
func (g *game) Turn() board.Color         { return g.turn }
func (g *game) FullMoves() int            { return g.fullmoves }
func (g *game) Result() board.Result      { return g.result }

// PushMove attempts to make m, resolving it against the legal move list
// first since callers such as Engine.Move hand in moves parsed from bare
// coordinate notation (board.ParseMove) that carry no moved/captured/castle/
// en-passant detail. Returns true iff a matching legal move was found and
// made.
func (g *game) PushMove(m board.Move) bool {
	if g.result != board.Undecided {
		return false
	}

	tc := search.NewThreadContext(g.Position().Clone(), 0)
	resolved, ok := tc.MakeUserMove(m)
	if !ok {
		return false
	}
	m = resolved

	g.history = append(g.history, tc.Pos)
	g.moves = append(g.moves, m)
	g.turn = g.turn.Opponent()
	if g.turn == board.White {
		g.fullmoves++
	}

	sig := tc.Pos.Signature()
	g.sigs[sig]++
	g.updateResult(sig)
	return true
}

// PopMove undoes the latest move.
func (g *game) PopMove() (board.Move, bool) {
	if len(g.moves) == 0 {
		return board.NoMove, false
	}

	m := g.moves[len(g.moves)-1]
	sig := g.Position().Signature()
	g.sigs[sig]--

	g.history = g.history[:len(g.history)-1]
	g.moves = g.moves[:len(g.moves)-1]
	g.turn = g.turn.Opponent()
	if g.turn == board.Black {
		g.fullmoves--
	}
	g.result = board.Undecided
	return m, true
}

func (g *game) updateResult(sig uint64) {
	switch {
	case g.sigs[sig] >= repetition3Limit:
		g.result = board.Draw
	case g.Position().Fifty() >= search.FiftyMoveLimit:
		g.result = board.Draw
	case search.RecognizeDraw(g.Position()):
		g.result = board.Draw
	case !g.hasLegalMove():
		g.adjudicateNoLegalMoves()
	}
}

// hasLegalMove reports whether the side to move has any legal reply,
// actually applying each pseudo-legal candidate (via a scratch
// ThreadContext) rather than trusting the pseudo-legal generator alone,
// since pins and check evasion are only enforced by Make.
func (g *game) hasLegalMove() bool {
	pos := g.Position()
	for _, mv := range movegen.GenerateAll(pos, movegen.All, board.NoMove) {
		tc := search.NewThreadContext(pos.Clone(), 0)
		if tc.Make(mv) {
			return true
		}
	}
	return false
}

func (g *game) adjudicateNoLegalMoves() {
	if movegen.IsChecked(g.Position(), g.Position().Turn()) {
		if g.Position().Turn() == board.White {
			g.result = board.BlackWins
		} else {
			g.result = board.WhiteWins
		}
		return
	}
	g.result = board.Draw // stalemate
}

// Signatures snapshots the signatures of every position in the game
// record, for the search's cross-root repetition detection. The returned map is never mutated afterward, so concurrent
// search threads may read it freely.
func (g *game) Signatures() map[uint64]struct{} {
	out := make(map[uint64]struct{}, len(g.sigs))
	for sig, n := range g.sigs {
		if n > 0 {
			out[sig] = struct{}{}
		}
	}
	return out
}

// LastMove returns the last move played, if any.
func (g *game) LastMove() (board.Move, bool) {
	if len(g.moves) == 0 {
		return board.NoMove, false
	}
	return g.moves[len(g.moves)-1], true
}

func (g *game) String() string {
	return fmt.Sprintf("game{pos=%v, turn=%v, ply=%v, result=%v}", g.Position(), g.turn, len(g.moves), g.result)
}
