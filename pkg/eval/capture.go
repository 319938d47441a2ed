package eval

import (
	"sort"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/movegen"
)

// FindCapture returns the pieces of the given color that directly attack
// sq, enumerated by the move generator's Checkers helper (the same
// attacker scan the move generator uses to find checks).
func FindCapture(pos *board.Position, side board.Color, sq board.Square) []board.Placement {
	var ret []board.Placement
	for _, from := range movegen.Checkers(pos, sq, side) {
		if piece, c, ok := pos.PieceAt(from); ok {
			ret = append(ret, board.Placement{Square: from, Color: c, Piece: piece})
		}
	}
	return ret
}

// SortByNominalValue orders the placement list by nominal material value, low to high.
func SortByNominalValue(pieces []board.Placement) []board.Placement {
	sort.SliceStable(pieces, func(i, j int) bool {
		return NominalValue(pieces[i].Piece) < NominalValue(pieces[j].Piece)
	})
	return pieces
}
