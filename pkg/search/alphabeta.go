package search

import (
	"context"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/egtb"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
)

// Searcher bundles the collaborators an alpha-beta search node needs beyond
// its ThreadContext: the shared transposition and danger tables, a static
// evaluator, an optional tablebase, and an optional split-point pool. One
// Searcher is shared read-only across every ThreadContext in a
// pkg/search/split pool; none of its fields are mutated
// mid-search except through the thread-safe tables themselves.
type Searcher struct {
	TT     *TranspositionTable
	Danger *DangerHash
	Eval   eval.Evaluator
	Egtb   egtb.Prober
	Split  Splitter

	// NullMove disables null-move pruning when false, e.g. for
	// zugzwang-heavy endgame test positions or unit tests wanting a
	// deterministic tree. VerifyNull enables the low-material verification
	// re-search before trusting a null-move cutoff.
	NullMove   bool
	VerifyNull bool
}

// NewSearcher returns a Searcher with null-move pruning (verified in low
// material) enabled, no tablebase, and no split pool.
func NewSearcher(tt *TranspositionTable, danger *DangerHash, ev eval.Evaluator) *Searcher {
	return &Searcher{TT: tt, Danger: danger, Eval: ev, Egtb: egtb.None{}, NullMove: true, VerifyNull: true}
}

const (
	nullMoveMinDepth = TwoPly

	futilityMaxDepth = TwoPly
	razorMaxDepth    = QuarterPly

	iidMinDepth = FourPly + HalfPly

	lmrMinDepth           = TwoPly
	lmrMinLegal           = 5
	lmrMaxFailHighPercent = 10

	splitMinRemaining = 3
)

// razorMargin is the static-eval shortfall below alpha at which a frontier
// node drops straight to quiescence instead of generating a move list.
func razorMargin(depth int) eval.Score {
	return eval.Score(100 + 120*(depth/QuarterPly))
}

// nonTrivialMaterial is the opponent-material threshold above which a
// checking move's extension is tapered back: king plus two
// minor pieces' worth.
var nonTrivialMaterial = board.PieceValue[board.King] + 2*board.PieceValue[board.Knight]

// endgameMaterial is the combined non-pawn material (kings included) below
// which non-pawn captures earn the endgame extension.
var endgameMaterial = 2*board.PieceValue[board.King] + 2*board.PieceValue[board.Rook]

// AlphaBeta searches the current position (tc.Pos, at tc.Ply) to depth
// (OnePly per ply), returning a score from the side-to-move's perspective and
// leaving the best continuation in tc.At(tc.Ply).PV for the caller to read
// before it unmakes its own move.
func (s *Searcher) AlphaBeta(ctx context.Context, tc *ThreadContext, depth int, alpha, beta eval.Score) eval.Score {
	ply := tc.Ply

	tc.Counters.Nodes++
	if tc.Counters.Nodes&NodeCheckMask == 0 {
		if ctx.Err() != nil {
			return eval.InvalidScore
		}
		if tc.MaxNodes > 0 && tc.Counters.Nodes > tc.MaxNodes {
			return eval.InvalidScore
		}
	}

	avoidNull := tc.avoidNull
	tc.avoidNull = false

	pos := tc.Pos
	mover := pos.Turn()
	pvNode := beta-alpha > 1

	cur := tc.Current()
	cur.PV = nil
	cur.Best = board.NoMove

	// Killer slots two plies ahead belong to a sibling's subtree now gone;
	// clear them before this subtree reuses that ply.
	if ply+2 < MaxPlyPerSearch {
		tc.Killers[ply+2] = [2]board.Move{}
		tc.KillerIsMate[ply+2] = [2]bool{}
	}

	// Mate distance pruning: no continuation from here can
	// be worth more than delivering mate next move, nor worse than being
	// mated right now.
	if a := eval.MatedAt(ply); alpha < a {
		alpha = a
	}
	if b := eval.MateIn(ply + 1); beta > b {
		beta = b
	}
	if alpha >= beta {
		return alpha
	}

	if ply > 0 && IsDraw(tc) {
		return 0
	}

	if depth <= 0 {
		return s.Quiescence(ctx, tc, alpha, beta)
	}

	if ply >= MaxPlyPerSearch {
		return s.evaluate(ctx, tc)
	}

	// The in-check flag arrives on the parent's move (tagged by the move
	// generator or the move loop below); only the root has no parent to
	// ask.
	var inCheck bool
	if ply > 0 {
		inCheck = tc.At(ply - 1).Move.Is(board.Checking)
	} else {
		inCheck = movegen.IsChecked(pos, mover)
	}
	cur.InCheck = inCheck

	if score, ok := ProbeInteriorNode(ctx, pos, s.Egtb); ok && ply > 0 {
		return score
	}

	sig := pos.Signature()
	tc.Counters.HashProbes++
	ttScore, hashMove, hit := s.TT.Probe(sig, depth, alpha, beta)
	if hit && !pvNode {
		tc.Counters.HashHits++
		tc.Counters.HashCutoffs++
		return ttScore
	}
	if hashMove != board.NoMove && !SanityCheckMove(pos, hashMove) {
		hashMove = board.NoMove // key collision; do not trust the move
	}

	threat := false

	// Null-move pruning: if passing still leaves the
	// opponent unable to reach beta, a real move can only do better.
	// Skipped in check, near mate scores, at PV nodes, with bare-pawn
	// material (zugzwang risk), and when a prior hash entry already says
	// the null search would fail low.
	pieces := len(pos.NonPawns(mover)) - 1
	if s.NullMove && !avoidNull && !inCheck && !pvNode && depth >= nullMoveMinDepth &&
		!beta.IsMateScore() && pieces >= 2 {

		r := ThreePly
		if depth <= 8*OnePly && pieces < 3 {
			r = TwoPly
		}
		if !s.TT.AvoidNull(sig, depth-r-OnePly, beta) && s.makeNull(tc) {
			score := -s.AlphaBeta(ctx, tc, depth-r-OnePly, -beta, -beta+1)
			refuter := tc.Current().Best
			s.unmakeNull(tc)
			if score.IsInvalid() {
				return eval.InvalidScore
			}

			if score >= beta {
				verified := true
				if s.VerifyNull && pieces < 3 {
					// Zugzwang check: re-search for real at reduced depth;
					// a fail-low here means passing was the only way to
					// hold, so extend instead of cutting.
					tc.avoidNull = true
					v := s.AlphaBeta(ctx, tc, depth-OnePly, beta-1, beta)
					if v.IsInvalid() {
						return eval.InvalidScore
					}
					if v < beta {
						verified = false
						depth += OnePly
					}
				}
				if verified {
					tc.Counters.NullCutoffs++
					s.TT.Store(sig, LowerBound, depth, score, board.NoMove, false)
					if score > eval.NMate {
						score = eval.NMate
					}
					return score
				}
			} else if refuter != board.NoMove {
				// The null failed low: the opponent has a concrete threat.
				// Remember its shape.
				tc.NullMoveRefutations[ply] = refuter
				if refuter.IsCapture() && refuter.Captured() != board.Pawn && s.Danger != nil {
					s.Danger.Record(sig, []board.Square{refuter.To()}, board.NoSquare)
				}
				if ply >= 2 {
					if prior := tc.NullMoveRefutations[ply-2]; prior != board.NoMove && prior.To() == refuter.To() {
						depth += QuarterPly // Botvinnik-Markoff: the same threat keeps working
					}
				}
				if score < -eval.NMate {
					threat = true
				}
			}
		}
	}

	// Internal iterative deepening: a PV node with no hash
	// move spends a shallow pre-search to find one before committing to
	// full-depth move ordering.
	if pvNode && hashMove == board.NoMove && depth >= iidMinDepth && !inCheck {
		tc.avoidNull = true
		if v := s.AlphaBeta(ctx, tc, depth-IIDRFactor, alpha, beta); v.IsInvalid() {
			return eval.InvalidScore
		}
		hashMove = cur.Best
		cur.PV = nil
		cur.Best = board.NoMove
	}

	// Razoring: near the horizon with the static eval hopelessly below
	// alpha, confirm with quiescence and fail low without a move list.
	if !pvNode && !inCheck && depth <= razorMaxDepth && !alpha.IsMateScore() {
		static := s.evaluate(ctx, tc)
		if static+razorMargin(depth) < alpha {
			q := s.Quiescence(ctx, tc, alpha, beta)
			if q.IsInvalid() {
				return eval.InvalidScore
			}
			if q <= alpha {
				return q
			}
		}
	}

	// Extended futility gate: the margin quiet moves
	// near the horizon must beat to be worth searching at all. Negative
	// means inactive.
	futility := eval.Score(-1)
	if !pvNode && !inCheck && depth <= futilityMaxDepth && !alpha.IsMateScore() {
		static := s.evaluate(ctx, tc)
		if static+eval.NominalValue(board.Rook) <= alpha {
			futility = (alpha - static) / 2
		}
	}

	var moves []board.Move
	if inCheck {
		moves = movegen.GenerateEvasions(pos, board.NoMove)

		// Check-evasion extensions: double
		// check, or no king flight at all, deepens the whole node.
		checkers := movegen.Checkers(pos, pos.King(mover), mover.Opponent())
		if len(checkers) > 1 {
			depth += QuarterPly
		}
		king := pos.King(mover)
		kingMoves := 0
		for _, mv := range moves {
			if mv.From() == king {
				kingMoves++
			}
		}
		if kingMoves == 0 {
			depth += QuarterPly
		}
	} else {
		moves = movegen.GenerateAll(pos, movegen.All, board.NoMove)
	}

	list := board.NewMoveList(moves, func(mv board.Move) board.MovePriority {
		if inCheck {
			return ScoreEvasion(tc, pos, ply, mv, hashMove)
		}
		return ScoreMove(tc, pos, ply, mv, hashMove, s.Danger)
	})

	var bestMove board.Move
	var bestPV []board.Move
	bestScore := eval.NegInf
	origAlpha := alpha
	legal := 0

	for {
		// Offer the remaining siblings to idle helper threads once this
		// node looks like an all-node: two legal moves searched without a
		// fail-high, enough depth, no futility margin in play, and enough
		// moves left to be worth the synchronization.
		if s.Split != nil && !pvNode && !inCheck && legal >= 2 && depth >= MinSplitDepth &&
			futility < 0 && list.Size() > splitMinRemaining {
			if res, ok := s.Split.Split(ctx, s, tc, depth, alpha, beta, bestScore, bestMove, list); ok {
				if res.Score.IsInvalid() {
					return eval.InvalidScore
				}
				if res.Score > bestScore {
					bestScore, bestMove, bestPV = res.Score, res.Move, res.PV
				}
				if bestScore > alpha {
					alpha = bestScore
				}
				if alpha >= beta && bestMove != board.NoMove && !bestMove.IsCaptureOrPromotion() {
					UpdateKillers(tc, ply, bestMove, bestScore)
					UpdateHistory(tc, mover, bestMove, depth/OnePly)
				}
				legal += res.Searched
				break
			}
		}

		mv, ok := list.Next()
		if !ok {
			break
		}
		isQuiet := !mv.IsCaptureOrPromotion()
		givesCheck := mv.Is(board.Checking)
		if !givesCheck && inCheck {
			// Evasion-generated moves carry no Checking tag; compute it so
			// the child node can trust its parent's move flags.
			givesCheck = movegen.WouldGiveCheck(pos, mv)
		}
		if givesCheck {
			mv = mv.WithFlags(board.Checking)
		}

		ext := s.extension(tc, mv, inCheck, givesCheck)

		// Futility pruning: a quiet, non-escaping,
		// unextended move can't close a margin this wide from the static
		// eval; skip it unsearched.
		if futility >= 0 && isQuiet && !givesCheck && !mv.Is(board.EscapingCheck) && ext == 0 && legal > 0 {
			continue
		}

		if !tc.Make(mv) {
			continue
		}
		legal++
		if isQuiet {
			RecordHistoryTry(tc, mover, mv)
		}
		if ext > 0 {
			tc.Counters.Extensions++
		}

		// History reduction: a quiet move far down an
		// already-ordered list, with no redeeming features and a cold
		// fail-high record, is searched a full ply shallower first.
		reduction := 0
		if isQuiet && !inCheck && !givesCheck && ext == 0 && !pvNode &&
			depth >= lmrMinDepth && legal > lmrMinLegal &&
			!mv.Is(board.EscapingCheck) && !isKillerAt(tc, ply, mv) && !isKillerAt(tc, ply-2, mv) &&
			HistoryFailHighPercent(tc, mover, mv) <= lmrMaxFailHighPercent {
			reduction = OnePly
		}

		childDepth := depth - OnePly + ext
		if childDepth < 0 {
			childDepth = 0
		}
		if childDepth >= MaxDepthPerSearch {
			childDepth = MaxDepthPerSearch - 1
		}

		var score eval.Score
		if legal == 1 {
			score = -s.AlphaBeta(ctx, tc, childDepth, -beta, -alpha)
		} else {
			score = -s.AlphaBeta(ctx, tc, childDepth-reduction, -alpha-1, -alpha)
			if !score.IsInvalid() && score > alpha && reduction > 0 {
				// The reduced search failed high; prove it at full depth
				// before trusting it.
				score = -s.AlphaBeta(ctx, tc, childDepth, -alpha-1, -alpha)
			}
			if !score.IsInvalid() && score > alpha && pvNode {
				score = -s.AlphaBeta(ctx, tc, childDepth, -beta, -alpha)
			}
		}

		childPV := append([]board.Move(nil), tc.Current().PV...)
		tc.Unmake()

		if score.IsInvalid() {
			return eval.InvalidScore
		}

		if score > bestScore {
			bestScore = score
			bestMove = mv
			bestPV = append([]board.Move{mv}, childPV...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			if isQuiet {
				UpdateKillers(tc, ply, mv, score)
				UpdateHistory(tc, mover, mv, depth/OnePly)
			}
			break
		}
	}

	if legal == 0 {
		if inCheck {
			bestScore = eval.MatedAt(ply)
		} else {
			bestScore = 0
		}
		bestPV = nil
	}

	cur.PV = bestPV
	cur.Best = bestMove

	bound := ExactBound
	switch {
	case bestScore <= origAlpha:
		bound = UpperBound
	case bestScore >= beta:
		bound = LowerBound
	}
	s.TT.Store(sig, bound, depth, bestScore, bestMove, threat)

	return bestScore
}

func isKillerAt(tc *ThreadContext, ply int, mv board.Move) bool {
	if ply < 0 || ply >= MaxPlyPerSearch {
		return false
	}
	return tc.Killers[ply][0].Equals(mv) || tc.Killers[ply][1].Equals(mv)
}

// extension accumulates a move's fractional-ply extension:
// checks, pawn pushes to the seventh, replies to check, recaptures, and
// endgame piece trades each contribute; the sum is capped at a full ply
// and tapers off as the line outruns the root depth. Called with tc still
// at the pre-move position.
func (s *Searcher) extension(tc *ThreadContext, mv board.Move, wasInCheck, givesCheck bool) int {
	pos := tc.Pos
	ply := tc.Ply
	mover := pos.Turn()
	opp := mover.Opponent()

	ext := 0
	if givesCheck {
		ext += OnePly
		if pos.NonPawnMaterial(opp) > nonTrivialMaterial {
			ext -= ThreeQuarterPly
		}
	}

	if mv.Moved() == board.Pawn {
		r := mv.To().Rank()
		if (mover == board.White && r == board.Rank7) || (mover == board.Black && r == board.Rank2) {
			ext += ThreeQuarterPly
			if chebyshev(mv.To(), pos.King(opp)) <= 2 {
				ext += QuarterPly
			}
		}
	}

	if wasInCheck {
		ext += HalfPly
	}

	if ply > 0 && mv.IsCapture() {
		prev := tc.At(ply - 1).Move
		if prev.IsCapture() && prev.To() == mv.To() &&
			eval.NominalValue(prev.Captured()) == eval.NominalValue(mv.Captured()) {
			ext += HalfPly // recapture on the same square, equal value
		}
		if mv.Captured() != board.Pawn &&
			pos.NonPawnMaterial(board.White)+pos.NonPawnMaterial(board.Black) <= endgameMaterial {
			ext += HalfPly
		}
	}

	if ext > OnePly {
		ext = OnePly
	}
	if ext > 0 {
		ext -= extensionReduction(tc, ply)
		if ext < 0 {
			ext = 0
		}
	}
	return ext
}

// extensionReduction is the monotone taper on extensions: zero while the
// line is no longer than the root depth, a full cancel beyond four times
// it, linear in between.
func extensionReduction(tc *ThreadContext, ply int) int {
	rootPlies := tc.RootDepth / OnePly
	if rootPlies <= 0 || ply <= rootPlies {
		return 0
	}
	if ply >= 4*rootPlies {
		return OnePly
	}
	return OnePly * (ply - rootPlies) / (3 * rootPlies)
}

func chebyshev(a, b board.Square) int {
	df := int(a.File()) - int(b.File())
	if df < 0 {
		df = -df
	}
	dr := int(a.Rank()) - int(b.Rank())
	if dr < 0 {
		dr = -dr
	}
	if df > dr {
		return df
	}
	return dr
}

// makeNull plays a null move: flip the side to move and clear en passant,
// without touching any piece. Reports false if the side to move is in
// check (a null move is illegal there, since "doing nothing" would leave
// the king in an unresolved check).
func (s *Searcher) makeNull(tc *ThreadContext) bool {
	pos := tc.Pos
	if movegen.IsChecked(pos, pos.Turn()) {
		return false
	}
	info := tc.Current()
	info.Move = board.NoMove // a pass never checks; the child reads this flag
	info.priorEpSquareNull = pos.EnPassant()
	pos.SetEnPassant(board.NoSquare)
	pos.SetTurn(pos.Turn().Opponent())
	tc.Ply++
	return true
}

func (s *Searcher) unmakeNull(tc *ThreadContext) {
	tc.Ply--
	pos := tc.Pos
	pos.SetTurn(pos.Turn().Opponent())
	pos.SetEnPassant(tc.Current().priorEpSquareNull)
}
