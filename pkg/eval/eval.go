package eval

import (
	"context"

	"github.com/kref/citadel/pkg/board"
)

// Evaluator is a static position evaluator.
type Evaluator interface {
	// Evaluate returns the position score in centipawns from the
	// perspective of the side to move.
	Evaluate(ctx context.Context, pos *board.Position) Score
}

// Material returns the material advantage for the side to move, plus a
// small bishop-pair bonus, read straight off Position's maintained
// material counters.
type Material struct{}

func (Material) Evaluate(ctx context.Context, pos *board.Position) Score {
	turn := pos.Turn()
	opp := turn.Opponent()

	score := Score(pos.Material(turn))

	if pos.Count(turn, board.Bishop) >= 2 {
		score += bishopPairBonus
	}
	if pos.Count(opp, board.Bishop) >= 2 {
		score -= bishopPairBonus
	}
	return score
}

const bishopPairBonus Score = 30

// NominalValue is the absolute nominal value of a piece, in centipawns. It
// matches board.PieceValue's scale (King included, arbitrary for bookkeeping
// only) and exists so search/ordering code can price a move without taking
// a dependency cycle on package board's own value table.
func NominalValue(p board.Piece) Score {
	return Score(board.PieceValue[p])
}

// NominalValueGain is the nominal material gain a move would realize,
// ignoring recapture (used to prune/scan candidates before a full SEE).
func NominalValueGain(m board.Move) Score {
	gain := NominalValue(m.Captured())
	if m.IsPromotion() {
		gain += NominalValue(m.Promoted()) - NominalValue(board.Pawn)
	}
	return gain
}
