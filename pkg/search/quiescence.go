package search

import (
	"context"
	"sort"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
)

// qCheckBudget bounds how many check-giving quiet moves a quiescence line
// may play: without a cap, check-evade-check-again chains
// would let qsearch diverge in length from the main search. The budget is
// raised for a side that has not yet stood pat when the position is a
// forced single reply or a double check.
const qCheckBudget = 2

// futilityBase is the fixed slack in the in-danger branch's futility
// computation.
const futilityBase = eval.Score(100)

// Quiescence resolves a leaf position's tactical noise before its static
// evaluation is trusted. Three branches: in check, every
// evasion is searched with no stand-pat; in danger (a piece en prise or
// trapped per the danger hash), captures and budgeted checks are searched,
// again with no stand-pat; otherwise the side may stand pat on the static
// eval and only captures, promotions, and budgeted checks that could still
// raise alpha are explored, filtered by shouldConsider.
func (s *Searcher) Quiescence(ctx context.Context, tc *ThreadContext, alpha, beta eval.Score) eval.Score {
	return s.quiesce(ctx, tc, alpha, beta, 0, 0, [board.NumColors]bool{})
}

// quiesce carries quiescence's own depth counters and per-color stood-pat
// flags as recursion state; AlphaBeta always enters through Quiescence, which zeroes
// them.
func (s *Searcher) quiesce(ctx context.Context, tc *ThreadContext, alpha, beta eval.Score, qDepth, qChecks int, stood [board.NumColors]bool) eval.Score {
	tc.Counters.Nodes++
	tc.Counters.QNodes++
	if tc.Counters.Nodes&NodeCheckMask == 0 {
		if ctx.Err() != nil {
			return eval.InvalidScore
		}
		if tc.MaxNodes > 0 && tc.Counters.Nodes > tc.MaxNodes {
			return eval.InvalidScore
		}
	}

	pos := tc.Pos
	mover := pos.Turn()
	cur := tc.Current()
	cur.PV = nil
	cur.Best = board.NoMove

	var inCheck bool
	if tc.Ply > 0 {
		inCheck = tc.At(tc.Ply - 1).Move.Is(board.Checking)
	} else {
		inCheck = movegen.IsChecked(pos, mover)
	}
	cur.InCheck = inCheck

	if tc.Ply >= MaxPlyPerSearch {
		return s.evaluate(ctx, tc)
	}

	if inCheck {
		return s.quiesceInCheck(ctx, tc, alpha, beta, qDepth, qChecks, stood)
	}

	if s.inDanger(pos) && !stood[mover] {
		return s.quiesceInDanger(ctx, tc, alpha, beta, qDepth, qChecks, stood)
	}

	// Normal branch: stand pat on the static eval, then captures,
	// promotions, and budgeted checks.
	standPat := s.evaluate(ctx, tc)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	stood[mover] = true

	genChecks := qChecks < qCheckBudget && !stood[mover.Opponent()] &&
		pos.NonPawnMaterial(mover) > nonTrivialMaterial
	mode := movegen.CapturesAndPromotions
	if genChecks {
		mode = movegen.CapturesPromotionsAndChecks
	}
	moves := movegen.GenerateAll(pos, mode, board.NoMove)

	return s.quiesceLoop(ctx, tc, moves, alpha, beta, 0, qDepth, qChecks, genChecks, stood, false)
}

// quiesceInCheck searches every evasion; a side in check has no "do
// nothing" option, so there is no stand-pat and no futility filter.
func (s *Searcher) quiesceInCheck(ctx context.Context, tc *ThreadContext, alpha, beta eval.Score, qDepth, qChecks int, stood [board.NumColors]bool) eval.Score {
	pos := tc.Pos
	mover := pos.Turn()

	moves := movegen.GenerateEvasions(pos, board.NoMove)

	// Q-check extensions: a side that never stood pat,
	// forced into a single reply or facing a double check, earns extra
	// check budget for its counterplay.
	if !stood[mover] {
		if len(movegen.Checkers(pos, pos.King(mover), mover.Opponent())) > 1 {
			qChecks -= 2
		} else if len(moves) == 1 {
			qChecks--
		}
		if qChecks < 0 {
			qChecks = 0
		}
	}

	legal := 0
	best := eval.NegInf
	for _, mv := range moves {
		if movegen.WouldGiveCheck(pos, mv) {
			mv = mv.WithFlags(board.Checking)
		}
		if !tc.Make(mv) {
			continue
		}
		legal++
		score := -s.quiesce(ctx, tc, -beta, -alpha, qDepth+1, qChecks, stood)
		tc.Unmake()
		if score.IsInvalid() {
			return eval.InvalidScore
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				return score
			}
		}
	}

	if legal == 0 {
		return eval.MatedAt(tc.Ply)
	}
	return best
}

// quiesceInDanger handles the in-danger branch: material is
// already hanging, so the static eval cannot be trusted as a stand-pat
// floor. Captures, promotions, and budgeted checks are searched against an
// explicit futility threshold; if nothing qualifies and alpha never rose
// off the floor, the side is scored as busted by roughly a queen.
func (s *Searcher) quiesceInDanger(ctx context.Context, tc *ThreadContext, alpha, beta eval.Score, qDepth, qChecks int, stood [board.NumColors]bool) eval.Score {
	pos := tc.Pos

	rough := s.evaluate(ctx, tc)
	futility := alpha - futilityBase - rough
	if futility < 0 {
		futility = 0
	}

	genChecks := qChecks < qCheckBudget
	mode := movegen.CapturesAndPromotions
	if genChecks {
		mode = movegen.CapturesPromotionsAndChecks
	}
	moves := movegen.GenerateAll(pos, mode, board.NoMove)

	floor := alpha
	score := s.quiesceLoop(ctx, tc, moves, alpha, beta, futility, qDepth, qChecks, genChecks, stood, true)
	if score.IsInvalid() {
		return score
	}
	if score <= floor && floor <= -eval.NMate {
		// Nothing raised alpha and alpha was effectively -infinity: the
		// side looks busted, but is not mated.
		return rough - eval.NominalValue(board.Queen)
	}
	return score
}

// quiesceLoop orders and searches a generated move set shared by the
// normal and in-danger branches. Moves are sorted once, best first, and
// the in-danger branch stops at the first non-positive priority: the
// ordering prices every SEE-losing capture below zero, so everything after
// it is losing too.
func (s *Searcher) quiesceLoop(ctx context.Context, tc *ThreadContext, moves []board.Move, alpha, beta eval.Score, futility eval.Score, qDepth, qChecks int, genChecks bool, stood [board.NumColors]bool, inDanger bool) eval.Score {
	pos := tc.Pos
	ply := tc.Ply

	type scored struct {
		mv  board.Move
		pri board.MovePriority
	}
	ordered := make([]scored, 0, len(moves))
	for _, mv := range moves {
		ordered = append(ordered, scored{mv, ScoreMove(tc, pos, ply, mv, board.NoMove, s.Danger)})
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].pri > ordered[j].pri })

	best := alpha
	for _, sc := range ordered {
		if inDanger && sc.pri <= 0 {
			break
		}
		mv := sc.mv
		if !s.shouldConsider(tc, mv, futility, genChecks) {
			continue
		}

		childChecks := qChecks
		if !mv.IsCaptureOrPromotion() && mv.Is(board.Checking) {
			childChecks++
		}

		if !tc.Make(mv) {
			continue
		}
		score := -s.quiesce(ctx, tc, -beta, -alpha, qDepth+1, childChecks, stood)
		tc.Unmake()
		if score.IsInvalid() {
			return eval.InvalidScore
		}

		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
			if alpha >= beta {
				return score
			}
		}
	}
	return best
}

// inDanger reports whether the side to move is in enough material trouble
// for the no-stand-pat branch: two or more pieces en prise, or a trapped
// piece, per the shared danger hash. A single hanging piece stays on the
// cheap stand-pat path -- the capture search resolves it anyway.
func (s *Searcher) inDanger(pos *board.Position) bool {
	if s.Danger == nil {
		return false
	}
	sig := pos.Signature()
	if _, count, ok := s.Danger.EnPrise(sig); ok && count >= 2 {
		return true
	}
	_, ok := s.Danger.Trapped(sig)
	return ok
}

// shouldConsider is quiescence's per-move admission policy:
//
//   - Underpromotions are skipped unless a checking knight promotion while
//     checks are being generated.
//   - Capturing the opponent's last pawn or last piece is always searched
//     (it may force a draw).
//   - A pawn capture that lands on the seventh/second rank is always
//     searched.
//   - Other captures must beat the futility threshold on max(SEE, victim
//     value).
//   - Non-capturing checks pass while futility is below a bishop's worth,
//     or when they at least do not lose material.
func (s *Searcher) shouldConsider(tc *ThreadContext, mv board.Move, futility eval.Score, genChecks bool) bool {
	pos := tc.Pos
	mover := pos.Turn()
	opp := mover.Opponent()

	if mv.IsPromotion() && mv.Promoted() != board.Queen {
		return mv.Promoted() == board.Knight && mv.Is(board.Checking) && genChecks
	}

	if mv.IsCapture() {
		if mv.Captured() == board.Pawn && pos.Count(opp, board.Pawn) == 1 {
			return true
		}
		if mv.Captured() != board.Pawn && len(pos.NonPawns(opp)) == 2 {
			return true // the opponent's last piece beyond the king
		}
		if mv.Moved() == board.Pawn {
			r := mv.To().Rank()
			if (mover == board.White && r == board.Rank7) || (mover == board.Black && r == board.Rank2) {
				return true
			}
		}
		gain := eval.Score(movegen.SEE(pos, mv))
		if victim := eval.NominalValue(mv.Captured()); victim > gain {
			gain = victim
		}
		return gain >= futility
	}

	// Non-capturing check.
	return futility < eval.NominalValue(board.Bishop) || movegen.SEE(pos, mv) >= 0
}
