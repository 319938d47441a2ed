package search

import (
	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
)

// PlyInfo holds one level of a thread's ply stack: the undo record Make
// pushes and Unmake pops, plus the search flags, PV slot, and signature
// snapshot alphabeta.go and quiescence.go maintain as they recurse.
// Quiescence's own depth counters travel as recursion parameters instead,
// since every Make resets this record wholesale.
type PlyInfo struct {
	Move board.Move

	priorCastling   board.Castling
	priorEpSquare   board.Square
	priorFifty      int
	priorHasCastled bool
	capturedPiece   board.Piece
	capturedColor   board.Color
	capturedSquare  board.Square

	InCheck bool
	Best    board.Move
	PV      []board.Move

	// Sig is the position signature reached after Move was applied (i.e.
	// the signature of the position at the following ply), recorded by
	// Make for draw.go's repetition scan.
	Sig uint64

	// priorEpSquareNull is the null-move equivalent of priorEpSquare,
	// stashed by Searcher.makeNull/unmakeNull in alphabeta.go rather than
	// threaded through Make/Unmake, since a null move touches no piece.
	priorEpSquareNull board.Square
}

// Counters tallies per-thread search statistics, surfaced through UCI "info" output and benchmarking.
type Counters struct {
	Nodes       uint64
	QNodes      uint64
	HashProbes  uint64
	HashHits    uint64
	HashCutoffs uint64
	NullCutoffs uint64
	Extensions  uint64
}

// PawnHashEntry caches a pawn-structure evaluation keyed by pawn
// signature: one score per side, valid for any position sharing the pawn
// formation.
type PawnHashEntry struct {
	Key   uint64
	Score [board.NumColors]eval.Score
}

// EvalHashEntry caches a full static evaluation keyed by the complete
// position signature (side to move included, via the signature's low bit).
type EvalHashEntry struct {
	Key   uint64
	Score eval.Score
}

// DefaultPawnHashSize and DefaultEvalHashSize are the per-thread cache
// entry counts; both are powers of two so a signature masks directly to a
// slot.
const (
	DefaultPawnHashSize = 1 << 14
	DefaultEvalHashSize = 1 << 15
)

// ThreadContext is one search thread's working state: a mutable position, a ply stack of undo/scratch
// records, killer/history move-ordering tables, and root-search bookkeeping.
// A ThreadContext is never shared between goroutines; pkg/search/split
// allocates one per worker.
type ThreadContext struct {
	Pos *board.Position
	Ply int

	stack [MaxPlyPerSearch + 1]PlyInfo

	Killers             [MaxPlyPerSearch][2]board.Move
	KillerIsMate        [MaxPlyPerSearch][2]bool
	NullMoveRefutations [MaxPlyPerSearch]board.Move

	// History/HistoryTries form a per-(color,piece,to-square) fail-high
	// census: History counts beta cutoffs, HistoryTries counts searches.
	// Their ratio is the fail-high percentage history reduction gates on;
	// both are halved together by DecayHistory.
	History      [board.NumColors][board.King + 1][128]int32
	HistoryTries [board.NumColors][board.King + 1][128]int32

	Counters     Counters
	ThreadNumber int

	RootMove  board.Move
	RootScore eval.Score
	RootDepth int

	// MaxNodes, when nonzero, aborts the search once Counters.Nodes
	// crosses it, observed at the same node-count-mask poll as
	// cancellation.
	MaxNodes uint64

	// GameHistory holds the signatures of every position in the persistent
	// game record, so in-search draw detection can see repetitions that
	// straddle the root. Read-only during a
	// search; populated by the engine before launching.
	GameHistory map[uint64]struct{}

	// CurrentSplit is the innermost split point this thread is helping at,
	// nil outside one. A nested split chains it as its parent so
	// cancellation propagates down the ancestor list.
	CurrentSplit SplitAncestor

	// avoidNull suppresses null-move pruning for exactly one node: the
	// null-move verification re-search sets it before recursing.
	avoidNull bool

	PawnHash []PawnHashEntry
	EvalHash []EvalHashEntry
}

// NewThreadContext allocates a thread context operating on pos. pos is
// taken by reference and mutated in place by Make/Unmake; callers that need
// to keep pos pristine should pass pos.Clone().
func NewThreadContext(pos *board.Position, threadNumber int) *ThreadContext {
	return &ThreadContext{
		Pos:          pos,
		ThreadNumber: threadNumber,
		PawnHash:     make([]PawnHashEntry, DefaultPawnHashSize),
		EvalHash:     make([]EvalHashEntry, DefaultEvalHashSize),
	}
}

// Current returns the PlyInfo record for the current ply, for the search
// loop to fill in InCheck/Best/PV as it descends.
func (ctx *ThreadContext) Current() *PlyInfo {
	return &ctx.stack[ctx.Ply]
}

// At returns the PlyInfo record at a specific ply, e.g. for PV extraction
// from an ancestor frame.
func (ctx *ThreadContext) At(ply int) *PlyInfo {
	return &ctx.stack[ply]
}

// Make applies mv to ctx.Pos, pushing an undo record, and reports whether
// the move was legal: it did not leave the mover's own king in check, and
// -- for castles -- did not start in, pass through, or land on an attacked
// square. On an illegal move, Make reverts the position itself before
// returning false; callers only call Unmake after a true result.
func (ctx *ThreadContext) Make(mv board.Move) bool {
	pos := ctx.Pos
	mover := pos.Turn()
	from, to := mv.From(), mv.To()
	wasInCheck := movegen.IsChecked(pos, mover)

	info := &ctx.stack[ctx.Ply]
	*info = PlyInfo{
		Move:          mv,
		priorCastling: pos.Castling(),
		priorEpSquare: pos.EnPassant(),
		priorFifty:    pos.Fifty(),
	}

	switch {
	case mv.IsCastle():
		rookFrom, rookTo := movegen.CastleRookSquares(mover, to)
		pos.RelocatePiece(from, to)
		pos.RelocatePiece(rookFrom, rookTo)
		info.priorHasCastled = pos.HasCastled(mover)
		pos.SetHasCastled(mover)

	case mv.IsEnPassant():
		capSq := movegen.EnPassantCapturedSquare(to, mover)
		cp, cc := pos.RemovePiece(capSq)
		info.capturedPiece, info.capturedColor, info.capturedSquare = cp, cc, capSq
		pos.RelocatePiece(from, to)

	case mv.IsPromotion():
		if mv.IsCapture() {
			cp, cc := pos.RemovePiece(to)
			info.capturedPiece, info.capturedColor, info.capturedSquare = cp, cc, to
		}
		pos.RemovePiece(from)
		pos.PlacePiece(to, mover, mv.Promoted())

	default:
		if mv.IsCapture() {
			cp, cc := pos.RemovePiece(to)
			info.capturedPiece, info.capturedColor, info.capturedSquare = cp, cc, to
		}
		pos.RelocatePiece(from, to)
	}

	pos.SetCastling(pos.Castling() & board.CastlingRightsMask(from) & board.CastlingRightsMask(to))

	if mv.IsDoublePawnPush() && setsEnPassant(pos, to, mover) {
		pos.SetEnPassant(midSquare(from, to))
	} else {
		pos.SetEnPassant(board.NoSquare)
	}

	// Pawn moves, captures, and castling are irreversible.
	if mv.Moved() == board.Pawn || mv.IsCapture() || mv.IsCastle() {
		pos.ResetFifty()
	} else {
		pos.IncrementFifty()
	}

	pos.SetTurn(mover.Opponent())

	if !ctx.selfCheckLegal(mv, mover, wasInCheck, from) {
		ctx.unmakeCurrent()
		return false
	}
	if mv.IsCastle() && (wasInCheck || movegen.IsAttacked(pos, midSquare(from, to), mover.Opponent())) {
		ctx.unmakeCurrent()
		return false
	}

	info.Sig = pos.Signature()
	ctx.Ply++
	return true
}

// Unmake reverts the most recent successful Make call.
func (ctx *ThreadContext) Unmake() {
	ctx.Ply--
	ctx.unmakeCurrent()
}

// MakeUserMove wraps Make for moves of dubious provenance, such as a move
// parsed from UCI/xboard/console input via board.ParseMove, which carries
// only from/to/promotion and none of the moved/captured/castle/en passant
// detail Make relies on. It generates the legal candidate
// list -- evasions if the side to move is in check, else all pseudo-legal
// moves -- finds the entry whose from/to/promotion match mv, and attempts
// Make on that fully-formed entry. Reports the matched, fully-formed move
// and whether it was legal; ok is false both when no candidate matches and
// when the matched candidate fails Make's legality check.
func (ctx *ThreadContext) MakeUserMove(mv board.Move) (board.Move, bool) {
	var candidates []board.Move
	if movegen.IsChecked(ctx.Pos, ctx.Pos.Turn()) {
		candidates = movegen.GenerateEvasions(ctx.Pos, board.NoMove)
	} else {
		candidates = movegen.GenerateAll(ctx.Pos, movegen.All, board.NoMove)
	}

	for _, cand := range candidates {
		if cand.From() != mv.From() || cand.To() != mv.To() || cand.Promoted() != mv.Promoted() {
			continue
		}
		if !ctx.Make(cand) {
			return board.NoMove, false
		}
		return cand, true
	}
	return board.NoMove, false
}

// selfCheckLegal is the specialized post-move legality test: if the
// mover is the king, or the side was already in check before the move, run
// the full is-attacked test against the king's current square; otherwise a
// non-king move can only expose check by unmasking a ray through the square
// it vacated (or, for en passant, the captured pawn's square).
func (ctx *ThreadContext) selfCheckLegal(mv board.Move, mover board.Color, wasInCheck bool, from board.Square) bool {
	pos := ctx.Pos
	if mv.Moved() == board.King || wasInCheck {
		return !movegen.IsChecked(pos, mover)
	}
	if movegen.ExposesCheck(pos, from, mover) {
		return false
	}
	if mv.IsEnPassant() {
		capSq := movegen.EnPassantCapturedSquare(mv.To(), mover)
		if movegen.ExposesCheck(pos, capSq, mover) {
			return false
		}
	}
	return true
}

// unmakeCurrent reverts ctx.stack[ctx.Ply] in place, without adjusting Ply.
// Make calls this directly to back out an illegal move before Ply is ever
// incremented; Unmake calls it after decrementing Ply.
func (ctx *ThreadContext) unmakeCurrent() {
	pos := ctx.Pos
	info := &ctx.stack[ctx.Ply]
	mv := info.Move
	mover := pos.Turn().Opponent() // side that made the move; turn was flipped by Make

	pos.SetTurn(mover)
	pos.SetFifty(info.priorFifty)
	pos.SetEnPassant(info.priorEpSquare)
	pos.SetCastling(info.priorCastling)

	from, to := mv.From(), mv.To()

	switch {
	case mv.IsCastle():
		rookFrom, rookTo := movegen.CastleRookSquares(mover, to)
		pos.RelocatePiece(to, from)
		pos.RelocatePiece(rookTo, rookFrom)
		if !info.priorHasCastled {
			pos.ClearHasCastled(mover)
		}

	case mv.IsEnPassant():
		pos.RelocatePiece(to, from)
		pos.PlacePiece(info.capturedSquare, info.capturedColor, info.capturedPiece)

	case mv.IsPromotion():
		pos.RemovePiece(to)
		pos.PlacePiece(from, mover, board.Pawn)
		if mv.IsCapture() {
			pos.PlacePiece(to, info.capturedColor, info.capturedPiece)
		}

	default:
		pos.RelocatePiece(to, from)
		if mv.IsCapture() {
			pos.PlacePiece(to, info.capturedColor, info.capturedPiece)
		}
	}
}

// setsEnPassant reports whether an enemy pawn stands adjacent to to on the
// same rank, the condition for actually setting the en passant
// square after a double push (avoiding signature churn on a square no
// capture could ever target).
func setsEnPassant(pos *board.Position, to board.Square, mover board.Color) bool {
	for _, d := range [2]int{-1, +1} {
		adj := board.Square(int(to) + d)
		if !adj.IsValid() {
			continue
		}
		if p, c, ok := pos.PieceAt(adj); ok && p == board.Pawn && c != mover {
			return true
		}
	}
	return false
}

// midSquare returns the square halfway between from and to, used to find a
// castling king's pass-through square and a double pawn push's en passant
// square.
func midSquare(from, to board.Square) board.Square {
	return board.Square((int(from) + int(to)) / 2)
}

// SanityCheckMove reports whether mv is plausibly applicable to pos: the
// named mover stands on the from-square, the named victim (if any) on the
// to-square, and both squares are on the board. It does not prove
// pseudo-legality, let alone legality -- it exists to reject a
// transposition-table move whose entry, however improbably, collided with
// another position's key, before Make mutates the board with it.
func SanityCheckMove(pos *board.Position, mv board.Move) bool {
	from, to := mv.From(), mv.To()
	if !from.IsValid() || !to.IsValid() || from == to {
		return false
	}
	piece, color, ok := pos.PieceAt(from)
	if !ok || piece != mv.Moved() || color != pos.Turn() {
		return false
	}
	if mv.IsEnPassant() {
		return to == pos.EnPassant()
	}
	victim, vc, occupied := pos.PieceAt(to)
	if mv.IsCapture() {
		return occupied && victim == mv.Captured() && vc != pos.Turn()
	}
	return !occupied
}
