package search

import "github.com/kref/citadel/pkg/board"

// FiftyMoveLimit is the halfmove-clock value at which a position is drawn:
// fifty full moves, i.e. 100 plies, strictly per the FIDE rule.
const FiftyMoveLimit = 100

// IsDraw reports whether the position at the current ply should be scored
// as a draw: the fifty-move rule, a threefold-adjacent repetition found by
// walking the ply stack backward two plies at a time until an irreversible
// move (pawn move or capture) is crossed, or a recurrence of a position
// from the persistent game record.
//
// The in-stack scan checks for one prior occurrence, not two -- a
// search-tree draw claim only needs to detect the repetition is about to
// recur, since the game history supplies any earlier occurrences toward
// real threefold repetition.
func IsDraw(tc *ThreadContext) bool {
	if tc.Pos.Fifty() >= FiftyMoveLimit {
		return true
	}
	if isRepetition(tc) {
		return true
	}
	if tc.GameHistory != nil && tc.Ply > 0 {
		if _, ok := tc.GameHistory[tc.Pos.Signature()]; ok {
			return true
		}
	}
	return false
}

// isRepetition walks stack entries with the same side to move as the
// current position: since PlyInfo.Sig records the signature reached AFTER
// its move, the nearest same-side entry below tc.Ply-1 (cur's own, trivially
// equal to itself) is tc.Ply-3, not tc.Ply-2.
func isRepetition(tc *ThreadContext) bool {
	cur := tc.Pos.Signature()
	for p := tc.Ply - 3; p >= 0; p -= 2 {
		info := tc.At(p)
		if info.Sig == cur {
			return true
		}
		if info.Move.IsCaptureOrPromotion() || info.Move.Moved() == board.Pawn {
			break
		}
	}
	return false
}
