package movegen

import "github.com/kref/citadel/pkg/board"

// seeValue is the material scale SEE folds over; it intentionally mirrors
// board.PieceValue rather than package eval's (possibly tuned) values,
// since SEE is a cheap tactical filter, not a positional one.
var seeValue = board.PieceValue

// SEE returns a conservative net-material score for mv (which must be a
// capture) assuming both sides recapture with their least valuable attacker
// first, x-ray attackers included as pieces move off the ray.
func SEE(pos *board.Position, mv board.Move) board.Score {
	to := mv.To()
	color := pos.Turn()

	var gain [32]board.Score
	depth := 0

	occupied := map[board.Square]bool{}
	attacker := mv.Moved()
	from := mv.From()
	victim := mv.Captured()
	if mv.IsEnPassant() {
		victim = board.Pawn
	}

	gain[depth] = seeValue[victim]
	side := color

	for {
		depth++
		side = side.Opponent()
		gain[depth] = seeValue[attacker] - gain[depth-1]
		if max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		occupied[from] = true
		nextSq, nextPiece, ok := leastValuableAttacker(pos, to, side, occupied)
		if !ok {
			break
		}
		from = nextSq
		attacker = nextPiece
		if depth >= len(gain)-1 {
			break
		}
	}

	for depth--; depth > 0; depth-- {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
	}
	return gain[0]
}

func max(a, b board.Score) board.Score {
	if a > b {
		return a
	}
	return b
}

// leastValuableAttacker finds the cheapest piece of color "side" that
// attacks sq, excluding any square already marked occupied-as-moved-away
// (so x-ray attackers behind an already-counted piece become visible).
func leastValuableAttacker(pos *board.Position, sq board.Square, side board.Color, moved map[board.Square]bool) (board.Square, board.Piece, bool) {
	for p := board.Pawn; p <= board.King; p++ {
		if best, ok := findAttackerOfType(pos, sq, side, p, moved); ok {
			return best, p, true
		}
	}
	return board.NoSquare, board.NoPiece, false
}

func findAttackerOfType(pos *board.Position, sq board.Square, side board.Color, piece board.Piece, moved map[board.Square]bool) (board.Square, bool) {
	switch piece {
	case board.Pawn:
		deltas := [2]int{17, 15}
		if side == board.Black {
			deltas = [2]int{-17, -15}
		}
		for _, d := range deltas {
			from := board.Square(int(sq) + d)
			if !from.IsValid() || moved[from] {
				continue
			}
			if p, c, ok := pos.PieceAt(from); ok && p == board.Pawn && c == side {
				return from, true
			}
		}
	case board.Knight:
		for _, d := range knightDeltas {
			from := board.Square(int(sq) + d)
			if !from.IsValid() || moved[from] {
				continue
			}
			if p, c, ok := pos.PieceAt(from); ok && p == board.Knight && c == side {
				return from, true
			}
		}
	case board.King:
		for _, d := range queenDeltas {
			from := board.Square(int(sq) + d)
			if !from.IsValid() || moved[from] {
				continue
			}
			if p, c, ok := pos.PieceAt(from); ok && p == board.King && c == side {
				return from, true
			}
		}
	default: // sliders
		for _, d := range queenDeltas {
			if checkVector[side][d+deltaBias]&bit(piece) == 0 {
				continue
			}
			from := board.Square(int(sq) + d)
			for from.IsValid() {
				if moved[from] {
					from = board.Square(int(from) + d)
					continue
				}
				p, c, ok := pos.PieceAt(from)
				if !ok {
					from = board.Square(int(from) + d)
					continue
				}
				if p == piece && c == side {
					return from, true
				}
				break
			}
		}
	}
	return board.NoSquare, false
}
