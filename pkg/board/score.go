package board

import "fmt"

// Score is a signed material value in centipawns, the unit of Position's
// own bookkeeping (PieceValue, the per-color material totals, and the
// balance invariant). Unlike an evaluation score it includes the king's
// nominal value, so a single side's non-pawn total sits near 20000 and the
// theoretical promotion-heavy maximum around 30400 -- comfortably inside
// 16 bits, which is what lets the static exchange evaluator fold capture
// sequences in this type without widening. 16 bits.
type Score int16

func (s Score) String() string {
	return fmt.Sprintf("%.2f", float64(s)/100)
}
