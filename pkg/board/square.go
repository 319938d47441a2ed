// Package board contains the 0x88 mailbox chess board representation: square
// geometry, piece/move encoding, piece lists, castling rights, and the
// incremental Zobrist signature. It is the foundation the move generator and
// search packages build on.
package board

import "fmt"

// Square is a 0x88 board index: the high nibble is (7 - rank), the low
// nibble is the file. A value is on-board iff (value & 0x88) == 0.
// Off-board arithmetic (the 0x88 bits set) is used by the move generator to
// detect ray termination without explicit bounds checks.
type Square uint8

// NoSquare is the sentinel "no square" value (en-passant-none, and similar
// optional-square fields). Deliberately off-board.
const NoSquare Square = 0x78

// NewSquare builds a 0x88 square from a zero-based file and rank.
func NewSquare(f File, r Rank) Square {
	return Square((7-int(r))<<4 | int(f))
}

// IsValid returns true iff the square lies on the board.
func (s Square) IsValid() bool {
	return s&0x88 == 0
}

// File returns the file, FileA=0 .. FileH=7.
func (s Square) File() File {
	return File(s & 0x7)
}

// Rank returns the rank, Rank1=0 .. Rank8=7.
func (s Square) Rank() Rank {
	return Rank(7 - (s >> 4))
}

// Index64 returns a dense 0..63 index, suitable for 64-entry table lookups
// (piece-square tables, Zobrist seeds) keyed independently of the 0x88 gaps.
func (s Square) Index64() int {
	return int(s.Rank())*8 + int(s.File())
}

func ParseSquare(f, r rune) (Square, error) {
	file, ok := ParseFile(f)
	if !ok {
		return NoSquare, fmt.Errorf("invalid file: %v", f)
	}
	rank, ok := ParseRank(r)
	if !ok {
		return NoSquare, fmt.Errorf("invalid rank: %v", r)
	}
	return NewSquare(file, rank), nil
}

func ParseSquareStr(str string) (Square, error) {
	runes := []rune(str)
	if len(runes) != 2 {
		return NoSquare, fmt.Errorf("invalid square: %v", str)
	}
	return ParseSquare(runes[0], runes[1])
}

func (s Square) String() string {
	if !s.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%v%v", s.File(), s.Rank())
}

// Named squares, for table initialization and tests.
var (
	A1 = NewSquare(FileA, Rank1)
	B1 = NewSquare(FileB, Rank1)
	C1 = NewSquare(FileC, Rank1)
	D1 = NewSquare(FileD, Rank1)
	E1 = NewSquare(FileE, Rank1)
	F1 = NewSquare(FileF, Rank1)
	G1 = NewSquare(FileG, Rank1)
	H1 = NewSquare(FileH, Rank1)

	A2 = NewSquare(FileA, Rank2)
	B2 = NewSquare(FileB, Rank2)
	C2 = NewSquare(FileC, Rank2)
	D2 = NewSquare(FileD, Rank2)
	E2 = NewSquare(FileE, Rank2)
	F2 = NewSquare(FileF, Rank2)
	G2 = NewSquare(FileG, Rank2)
	H2 = NewSquare(FileH, Rank2)

	A3 = NewSquare(FileA, Rank3)
	B3 = NewSquare(FileB, Rank3)
	C3 = NewSquare(FileC, Rank3)
	D3 = NewSquare(FileD, Rank3)
	E3 = NewSquare(FileE, Rank3)
	F3 = NewSquare(FileF, Rank3)
	G3 = NewSquare(FileG, Rank3)
	H3 = NewSquare(FileH, Rank3)

	A4 = NewSquare(FileA, Rank4)
	B4 = NewSquare(FileB, Rank4)
	C4 = NewSquare(FileC, Rank4)
	D4 = NewSquare(FileD, Rank4)
	E4 = NewSquare(FileE, Rank4)
	F4 = NewSquare(FileF, Rank4)
	G4 = NewSquare(FileG, Rank4)
	H4 = NewSquare(FileH, Rank4)

	A5 = NewSquare(FileA, Rank5)
	B5 = NewSquare(FileB, Rank5)
	C5 = NewSquare(FileC, Rank5)
	D5 = NewSquare(FileD, Rank5)
	E5 = NewSquare(FileE, Rank5)
	F5 = NewSquare(FileF, Rank5)
	G5 = NewSquare(FileG, Rank5)
	H5 = NewSquare(FileH, Rank5)

	A6 = NewSquare(FileA, Rank6)
	B6 = NewSquare(FileB, Rank6)
	C6 = NewSquare(FileC, Rank6)
	D6 = NewSquare(FileD, Rank6)
	E6 = NewSquare(FileE, Rank6)
	F6 = NewSquare(FileF, Rank6)
	G6 = NewSquare(FileG, Rank6)
	H6 = NewSquare(FileH, Rank6)

	A7 = NewSquare(FileA, Rank7)
	B7 = NewSquare(FileB, Rank7)
	C7 = NewSquare(FileC, Rank7)
	D7 = NewSquare(FileD, Rank7)
	E7 = NewSquare(FileE, Rank7)
	F7 = NewSquare(FileF, Rank7)
	G7 = NewSquare(FileG, Rank7)
	H7 = NewSquare(FileH, Rank7)

	A8 = NewSquare(FileA, Rank8)
	B8 = NewSquare(FileB, Rank8)
	C8 = NewSquare(FileC, Rank8)
	D8 = NewSquare(FileD, Rank8)
	E8 = NewSquare(FileE, Rank8)
	F8 = NewSquare(FileF, Rank8)
	G8 = NewSquare(FileG, Rank8)
	H8 = NewSquare(FileH, Rank8)
)

// Rank represents a chess board rank, Rank1=0 .. Rank8=7. 3 bits.
type Rank uint8

const (
	Rank1 Rank = iota
	Rank2
	Rank3
	Rank4
	Rank5
	Rank6
	Rank7
	Rank8
)

const NumRanks = 8

func ParseRank(r rune) (Rank, bool) {
	if r < '1' || r > '8' {
		return 0, false
	}
	return Rank(r - '1'), true
}

func (r Rank) IsValid() bool {
	return r <= Rank8
}

func (r Rank) V() int {
	return int(r)
}

func (r Rank) String() string {
	return string(rune('1' + r))
}

// File represents a chess board file, FileA=0 .. FileH=7. 3 bits.
type File uint8

const (
	FileA File = iota
	FileB
	FileC
	FileD
	FileE
	FileF
	FileG
	FileH
)

const NumFiles = 8

func ParseFile(r rune) (File, bool) {
	switch {
	case r >= 'a' && r <= 'h':
		return File(r - 'a'), true
	case r >= 'A' && r <= 'H':
		return File(r - 'A'), true
	default:
		return 0, false
	}
}

func (f File) IsValid() bool {
	return f <= FileH
}

func (f File) V() int {
	return int(f)
}

func (f File) String() string {
	return string(rune('a' + f))
}
