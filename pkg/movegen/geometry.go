// Package movegen implements pseudo-legal move generation, check detection,
// and static exchange evaluation over a board.Position.
package movegen

import "github.com/kref/citadel/pkg/board"

// The eight ray/knight deltas, expressed directly in 0x88 index arithmetic
// (no separate file/rank decomposition needed since off-board results are
// caught by the 0x88 mask).
var (
	rookDeltas   = [4]int{-16, -1, +1, +16}
	bishopDeltas = [4]int{-17, -15, +15, +17}
	queenDeltas  = [8]int{-17, -16, -15, -1, +1, +15, +16, +17}
	knightDeltas = [8]int{-33, -31, -18, -14, +14, +18, +31, +33}
)

// pieceBit is a bitmask over board.Piece values, used by the check-vector
// table to say "these piece types can reach along this delta".
type pieceBit uint8

func bit(p board.Piece) pieceBit { return 1 << pieceBit(p) }

const (
	bitPawn   = pieceBit(1) << board.Pawn
	bitKnight = pieceBit(1) << board.Knight
	bitBishop = pieceBit(1) << board.Bishop
	bitRook   = pieceBit(1) << board.Rook
	bitQueen  = pieceBit(1) << board.Queen
	bitKing   = pieceBit(1) << board.King
)

// checkVector and rayStep are indexed by (to - from + 0x80), spanning every
// representable 0x88 delta.
const deltaBias = 0x80
const deltaSpan = 2*deltaBias + 1

var checkVector [2][deltaSpan]pieceBit // indexed by color of the attacking piece, then delta
var rayStep [deltaSpan]int8            // 0 if the delta is not a single ray step repeated

// init fills checkVector/rayStep for every multiple of a ray direction (not
// just the unit step): a rook five squares away is exactly as reachable as
// one square away, provided the path is clear, which callers verify
// separately by walking rayStep one square at a time.
func init() {
	fillRay(rookDeltas[:], bitRook|bitQueen)
	fillRay(bishopDeltas[:], bitBishop|bitQueen)

	for _, d := range knightDeltas {
		checkVector[board.White][d+deltaBias] |= bitKnight
		checkVector[board.Black][d+deltaBias] |= bitKnight
	}
	// A pawn's index delta runs opposite its rank delta (Square's high
	// nibble holds 7-rank, so moving to a higher rank decreases the index).
	// White attacks towards higher ranks, so its attack deltas are negative;
	// Black's are positive.
	checkVector[board.White][-17+deltaBias] |= bitPawn
	checkVector[board.White][-15+deltaBias] |= bitPawn
	checkVector[board.Black][+17+deltaBias] |= bitPawn
	checkVector[board.Black][+15+deltaBias] |= bitPawn
}

func fillRay(deltas []int, bits pieceBit) {
	for _, d := range deltas {
		for dist := 1; dist <= 7; dist++ {
			raw := d * dist
			idx := raw + deltaBias
			if idx < 0 || idx >= deltaSpan {
				continue
			}
			checkVector[board.White][idx] |= bits
			checkVector[board.Black][idx] |= bits
			rayStep[idx] = int8(d)
			if dist == 1 {
				checkVector[board.White][idx] |= bitKing
				checkVector[board.Black][idx] |= bitKing
			}
		}
	}
}

// Attacks reports whether a piece of type p and color c, standing at a
// square with index delta (to-from) away from sq, attacks sq via the given
// delta (a ray piece must also have a clear path, checked by the caller).
func attacksVia(p board.Piece, c board.Color, delta int) bool {
	return checkVector[c][delta+deltaBias]&bit(p) != 0
}

func isSlider(p board.Piece) bool {
	return p == Bishop || p == Rook || p == Queen
}

// convenience re-exports so generate.go/see.go read naturally.
const (
	Pawn   = board.Pawn
	Knight = board.Knight
	Bishop = board.Bishop
	Rook   = board.Rook
	Queen  = board.Queen
	King   = board.King
)

// delta returns to-from as a plain int, valid only when both squares are
// on-board (callers are expected to have checked that already).
func delta(from, to board.Square) int {
	return int(to) - int(from)
}

// step returns the unit ray step from from towards to, or 0 if the two
// squares do not lie on a common rank/file/diagonal.
func step(from, to board.Square) int {
	return int(rayStep[delta(from, to)+deltaBias])
}
