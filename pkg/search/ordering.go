package search

import (
	"math"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
)

// Move-ordering priority bands. Higher sorts first. Captures
// and promotions are priced above this band or below it depending on their
// static exchange value; quiet moves fall inside it.
const (
	priorityHashMove      = math.MaxInt16
	priorityKillerMate    = 32000
	priorityWinningBase   = 20000
	priorityKiller0       = 15000
	priorityKiller1       = 14000
	priorityCounterKiller = 13000
	priorityHistoryBase   = 1000
	priorityHistoryMax    = 5000
	priorityEnPriseBonus  = 40
	priorityLosingBase    = -25000
)

// ScoreMove assigns a move-ordering priority to mv at the given ply,
// best first: the hash move (if any) sorts absolutely first,
// then SEE-winning captures/promotions scaled by material gained, then
// killer moves (boosted further if the killer previously delivered a mating
// score), counter-killers from two plies back, and finally quiet moves
// ordered by history score with a small bonus for moves escaping an
// en-prise piece (per danger, which may be nil). SEE-losing captures sort
// below all quiet moves, worst first is avoided by pricing them relative to
// a king-sized floor rather than clamping them all to one value.
//
// board.MoveList pops moves off a binary heap in full priority order, so
// there is no separate "sort only the first K, then linear-scan the rest"
// pass -- the heap gives the same ordering without the manual cutoff.
func ScoreMove(tc *ThreadContext, pos *board.Position, ply int, mv, hashMove board.Move, danger *DangerHash) board.MovePriority {
	if hashMove != board.NoMove && mv.Equals(hashMove) {
		return priorityHashMove
	}

	if mv.IsCaptureOrPromotion() {
		see := int(movegen.SEE(pos, mv))
		if see >= 0 {
			gain := int(eval.NominalValueGain(mv))
			return clampPriority(priorityWinningBase + see + gain/10)
		}
		kingValue := int(eval.NominalValue(board.King))
		return clampPriority(priorityLosingBase + see + kingValue/100)
	}

	if ply < MaxPlyPerSearch {
		if tc.Killers[ply][0].Equals(mv) {
			if tc.KillerIsMate[ply][0] {
				return priorityKillerMate
			}
			return priorityKiller0
		}
		if tc.Killers[ply][1].Equals(mv) {
			if tc.KillerIsMate[ply][1] {
				return priorityKillerMate
			}
			return priorityKiller1
		}
	}
	if ply >= 2 {
		if tc.Killers[ply-2][0].Equals(mv) || tc.Killers[ply-2][1].Equals(mv) {
			return priorityCounterKiller
		}
	}

	h := tc.History[pos.Turn()][mv.Moved()][mv.To()]
	score := priorityHistoryBase + clampInt32(h, 0, priorityHistoryMax)
	if danger != nil {
		if sq, _, ok := danger.EnPrise(pos.Signature()); ok && sq == mv.From() {
			score += priorityEnPriseBonus
		}
	}
	return clampPriority(int(score))
}

// ScoreEvasion orders check-evasion moves: SEE-positive blocks/captures
// above quiet flees, and king moves deprioritized relative to non-king
// evasions of equal material value, since a king move can never itself be
// reinforced by a pin the way a blocking piece can.
func ScoreEvasion(tc *ThreadContext, pos *board.Position, ply int, mv, hashMove board.Move) board.MovePriority {
	if hashMove != board.NoMove && mv.Equals(hashMove) {
		return priorityHashMove
	}
	base := ScoreMove(tc, pos, ply, mv, board.NoMove, nil)
	if mv.Moved() == board.King {
		return clampPriority(int(base) - 500)
	}
	return base
}

func clampPriority(v int) board.MovePriority {
	if v > math.MaxInt16 {
		v = math.MaxInt16
	}
	if v < math.MinInt16 {
		v = math.MinInt16
	}
	return board.MovePriority(v)
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const historyCeiling = 1 << 14

// UpdateKillers records mv as a killer at ply on a quiet beta cutoff, and
// remembers whether the cutoff score was a mating one so ScoreMove can rank
// a mate-causing killer above an ordinary one. mv that is
// already the top killer is left in place.
func UpdateKillers(tc *ThreadContext, ply int, mv board.Move, score eval.Score) {
	if mv.IsCaptureOrPromotion() || ply >= MaxPlyPerSearch {
		return
	}
	if tc.Killers[ply][0].Equals(mv) {
		tc.KillerIsMate[ply][0] = tc.KillerIsMate[ply][0] || score.IsMateScore()
		return
	}
	tc.Killers[ply][1] = tc.Killers[ply][0]
	tc.KillerIsMate[ply][1] = tc.KillerIsMate[ply][0]
	tc.Killers[ply][0] = mv
	tc.KillerIsMate[ply][0] = score.IsMateScore()
}

// UpdateHistory bumps the history counter for a quiet move that caused a
// beta cutoff, scaled by depth so deep cutoffs count for more, and
// saturating so one hot square can't dominate ordering indefinitely.
func UpdateHistory(tc *ThreadContext, turn board.Color, mv board.Move, depth int) {
	if mv.IsCaptureOrPromotion() {
		return
	}
	if depth < 0 {
		depth = 0
	}
	h := &tc.History[turn][mv.Moved()][mv.To()]
	*h = clampInt32(*h+int32(depth*depth), 0, historyCeiling)
}

// RecordHistoryTry counts a quiet move actually searched, the denominator
// of the fail-high percentage history reduction gates on.
func RecordHistoryTry(tc *ThreadContext, turn board.Color, mv board.Move) {
	if mv.IsCaptureOrPromotion() {
		return
	}
	t := &tc.HistoryTries[turn][mv.Moved()][mv.To()]
	*t = clampInt32(*t+1, 0, historyCeiling)
}

// HistoryFailHighPercent returns mv's historical fail-high rate in whole
// percent, or 0 for a move never tried.
func HistoryFailHighPercent(tc *ThreadContext, turn board.Color, mv board.Move) int {
	tries := tc.HistoryTries[turn][mv.Moved()][mv.To()]
	if tries == 0 {
		return 0
	}
	hits := tc.History[turn][mv.Moved()][mv.To()]
	return int(int64(hits) * 100 / int64(tries))
}

// DecayHistory halves every history counter, hits and tries alike. Called
// periodically by the iterative-deepening driver (not every node) so
// ordering tracks recent cutoffs instead of accumulating across an entire
// search.
func DecayHistory(tc *ThreadContext) {
	for c := range tc.History {
		for p := range tc.History[c] {
			for sq := range tc.History[c][p] {
				tc.History[c][p][sq] /= 2
				tc.HistoryTries[c][p][sq] /= 2
			}
		}
	}
}
