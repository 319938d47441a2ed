package eval

import (
	"context"

	"github.com/kref/citadel/pkg/board"
)

const (
	doubledPawnPenalty  Score = 12
	isolatedPawnPenalty Score = 15
	passedPawnBonus     Score = 20
	passedPawnRankStep  Score = 8

	pinnedPiecePenalty  Score = 12
	hangingPiecePenalty Score = 18
)

// Standard is the engine's default evaluator: material plus piece-safety
// terms, with optional noise for self-play variety. Evaluate does not score
// pawn structure; PawnStructure does that separately.
type Standard struct {
	noise Random
}

// NewStandard returns a Standard evaluator with no noise.
func NewStandard() *Standard {
	return &Standard{}
}

// NewStandardWithNoise adds a uniform random term of up to limit
// centipawns, deterministic for a given seed.
func NewStandardWithNoise(limit int, seed int64) *Standard {
	return &Standard{noise: NewRandom(limit, seed)}
}

func (e *Standard) Evaluate(ctx context.Context, pos *board.Position) Score {
	turn := pos.Turn()
	opp := turn.Opponent()

	score := Material{}.Evaluate(ctx, pos)
	score += pieceSafety(pos, turn) - pieceSafety(pos, opp)
	score += e.noise.Evaluate(ctx, pos)
	return score
}

// pieceSafety penalizes pinned and outright hanging pieces for one side.
func pieceSafety(pos *board.Position, c board.Color) Score {
	var score Score

	for _, piece := range [3]board.Piece{board.Queen, board.Rook, board.King} {
		score -= pinnedPiecePenalty * Score(len(FindPins(pos, c, piece)))
	}

	for _, sq := range pos.NonPawns(c)[1:] { // skip the king
		piece, _, _ := pos.PieceAt(sq)
		attackers := SortByNominalValue(FindCapture(pos, c.Opponent(), sq))
		if len(attackers) == 0 {
			continue
		}
		defenders := FindCapture(pos, c, sq)
		if len(defenders) == 0 || NominalValue(attackers[0].Piece) < NominalValue(piece) {
			score -= hangingPiecePenalty
		}
	}
	return score
}

// PawnStructure scores one color's pawn formation: doubled and isolated
// pawns are penalized, passed pawns rewarded by advancement. It depends
// only on pawn placement, so callers may cache the result under the pawn
// signature; package search's per-thread pawn hash does.
func PawnStructure(pos *board.Position, c board.Color) Score {
	var filesWith [board.NumFiles]int8
	for _, sq := range pos.Pawns(c) {
		filesWith[sq.File()]++
	}

	var score Score
	for f := 0; f < board.NumFiles; f++ {
		if filesWith[f] > 1 {
			score -= doubledPawnPenalty * Score(filesWith[f]-1)
		}
	}

	for _, sq := range pos.Pawns(c) {
		f := int(sq.File())
		isolated := true
		for _, adj := range [2]int{f - 1, f + 1} {
			if adj >= 0 && adj < board.NumFiles && filesWith[adj] > 0 {
				isolated = false
				break
			}
		}
		if isolated {
			score -= isolatedPawnPenalty
		}

		if isPassed(pos, sq, c) {
			adv := int(sq.Rank())
			if c == board.Black {
				adv = 7 - adv
			}
			score += passedPawnBonus + passedPawnRankStep*Score(adv)
		}
	}
	return score
}

// isPassed reports whether no enemy pawn stands in front of sq on its own
// or an adjacent file.
func isPassed(pos *board.Position, sq board.Square, c board.Color) bool {
	f := int(sq.File())
	r := int(sq.Rank())
	for _, esq := range pos.Pawns(c.Opponent()) {
		ef, er := int(esq.File()), int(esq.Rank())
		if ef < f-1 || ef > f+1 {
			continue
		}
		if (c == board.White && er > r) || (c == board.Black && er < r) {
			return false
		}
	}
	return true
}
