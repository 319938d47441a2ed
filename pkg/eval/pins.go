package eval

import "github.com/kref/citadel/pkg/board"

// Pin represents a pinned piece. A pinned piece cannot attack anything but
// the attacker itself, if the relative value of attacker/target is high
// enough.
type Pin struct {
	Attacker, Pinned, Target board.Square
}

var rookRays = [4]int{-16, -1, +1, +16}
var bishopRays = [4]int{-17, -15, +15, +17}

// FindPins returns all pins targeting the given piece: for each of the 8
// ray directions from target, the first friendly piece encountered is a pin
// candidate if an enemy slider aligned with that ray is found behind it with
// a clear path, found by a direct 0x88 ray walk.
func FindPins(pos *board.Position, side board.Color, piece board.Piece) []Pin {
	var ret []Pin

	emit := func(p Pin) { ret = append(ret, p) }
	scan := func(targets []board.Square) {
		for _, target := range targets {
			findPinsAt(pos, target, side, rookRays[:], board.Rook, emit)
			findPinsAt(pos, target, side, bishopRays[:], board.Bishop, emit)
		}
	}

	if piece == board.Pawn {
		scan(pos.Pawns(side))
	} else {
		for _, sq := range pos.NonPawns(side) {
			if p, _, _ := pos.PieceAt(sq); p == piece {
				scan([]board.Square{sq})
			}
		}
	}
	return ret
}

func findPinsAt(pos *board.Position, target board.Square, side board.Color, rays []int, sliderType board.Piece, emit func(Pin)) {
	opp := side.Opponent()
	for _, d := range rays {
		sq := board.Square(int(target) + d)
		var pinned board.Square = board.NoSquare
		for sq.IsValid() {
			p, c, ok := pos.PieceAt(sq)
			if !ok {
				sq = board.Square(int(sq) + d)
				continue
			}
			if pinned == board.NoSquare {
				if c != side {
					break // first piece along the ray is enemy: no pin on our side here
				}
				pinned = sq
				sq = board.Square(int(sq) + d)
				continue
			}
			if c == opp && (p == sliderType || p == board.Queen) {
				emit(Pin{Attacker: sq, Pinned: pinned, Target: target})
			}
			break
		}
	}
}
