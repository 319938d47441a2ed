package board

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// zobristComparer treats two *ZobristTable pointers as equal iff they are
// the same table (DefaultZobrist, in every test here), rather than walking
// its seed arrays field by field -- grounded on go-cmp's cmp.Comparer
// escape hatch (brighamskarda/chess's go.mod pulls in google/go-cmp for
// the same "compare a rich struct, not a blob" testing style).
var zobristComparer = cmp.Comparer(func(a, b *ZobristTable) bool { return a == b })

// TestClonePreservesStructure is the structural half of position
// round-tripping:
// Clone must reproduce every field of the source position, not just the
// ones the board package's own accessors happen to expose. go-cmp walks
// the struct (including unexported fields, via AllowUnexported) so a
// forgotten field in a future edit to Position fails this test instead of
// silently diverging between the original and its clone.
func TestClonePreservesStructure(t *testing.T) {
	tests := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	}

	for _, tt := range tests {
		p, err := parseTestFEN(tt)
		if err != nil {
			t.Fatalf("parse %q: %v", tt, err)
		}

		clone := p.Clone()

		if diff := cmp.Diff(p, clone, cmp.AllowUnexported(Position{}, cell{}, pieceList{}), zobristComparer); diff != "" {
			t.Errorf("Clone(%q) structurally diverged from source (-want +got):\n%v", tt, diff)
		}
		if clone.Signature() != p.Signature() {
			t.Errorf("Clone(%q) signature = %#x, want %#x", tt, clone.Signature(), p.Signature())
		}
	}
}

// parseTestFEN decodes only the placement/turn/castling/ep fields a
// *Position cares about (package fen's job covers the rest), so this
// internal test file doesn't need to import the fen package.
func parseTestFEN(s string) (*Position, error) {
	fields := strings.Fields(s)

	var pieces []Placement
	file, rank := 0, 7
	for _, r := range fields[0] {
		switch {
		case r == '/':
			rank--
			file = 0
		case r >= '1' && r <= '8':
			file += int(r - '0')
		default:
			c := White
			if r >= 'a' && r <= 'z' {
				c = Black
			}
			pt, ok := pieceFromLetter(r)
			if ok {
				pieces = append(pieces, Placement{Square: NewSquare(File(file), Rank(rank)), Color: c, Piece: pt})
			}
			file++
		}
	}

	turn := White
	if len(fields) > 1 && fields[1] == "b" {
		turn = Black
	}

	var castling Castling
	if len(fields) > 2 {
		for _, r := range fields[2] {
			switch r {
			case 'K':
				castling |= WhiteKingSideCastle
			case 'Q':
				castling |= WhiteQueenSideCastle
			case 'k':
				castling |= BlackKingSideCastle
			case 'q':
				castling |= BlackQueenSideCastle
			}
		}
	}

	ep := NoSquare
	if len(fields) > 3 && fields[3] != "-" {
		runes := []rune(fields[3])
		if len(runes) == 2 {
			if sq, err := ParseSquare(runes[0], runes[1]); err == nil {
				ep = sq
			}
		}
	}

	return NewPosition(pieces, turn, castling, ep)
}

func pieceFromLetter(r rune) (Piece, bool) {
	switch r {
	case 'p', 'P':
		return Pawn, true
	case 'n', 'N':
		return Knight, true
	case 'b', 'B':
		return Bishop, true
	case 'r', 'R':
		return Rook, true
	case 'q', 'Q':
		return Queen, true
	case 'k', 'K':
		return King, true
	default:
		return NoPiece, false
	}
}
