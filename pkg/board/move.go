package board

import (
	"fmt"
)

// Flag is a 4-bit set of move flags. Special marks castles,
// double pawn pushes, promotions, and en passant captures. EscapingCheck,
// KillerMate, and Checking are computed on demand during search and are not
// part of move identity.
type Flag uint8

const (
	Special Flag = 1 << iota
	EscapingCheck
	KillerMate
	Checking
)

// Move is a packed 32-bit record: from-square, to-square, moved piece, captured piece (or
// NoPiece), promoted piece (or NoPiece), and a 4-bit flag set. Field layout:
//
//	bits  0- 7: from square (0x88)
//	bits  8-15: to square (0x88)
//	bits 16-18: moved piece type
//	bits 19-21: captured piece type (NoPiece if none)
//	bits 22-24: promoted piece type (NoPiece if none)
//	bits 25-28: flags
//
// Identity comparison (Equals) uses only bits 0-24 (from/to/moved/cap/prom)
// plus the Special bit -- the Checking/EscapingCheck/KillerMate flags are
// excluded.
type Move uint32

const (
	moveFromShift      = 0
	moveToShift        = 8
	movePieceShift     = 16
	moveCaptureShift   = 19
	movePromotionShift = 22
	moveFlagShift      = 25

	moveSquareMask = 0xFF
	movePieceMask  = 0x7
	moveFlagMask   = 0xF

	// identityMask covers from/to/moved/captured/promoted and the Special bit.
	identityMask = (moveSquareMask << moveFromShift) |
		(moveSquareMask << moveToShift) |
		(movePieceMask << movePieceShift) |
		(movePieceMask << moveCaptureShift) |
		(movePieceMask << movePromotionShift) |
		(uint32(Special) << moveFlagShift)
)

// NewMove builds a packed move from its fields. capture/promotion may be
// NoPiece.
func NewMove(from, to Square, moved, capture, promotion Piece, flags Flag) Move {
	return Move(uint32(from)<<moveFromShift |
		uint32(to)<<moveToShift |
		uint32(moved)<<movePieceShift |
		uint32(capture)<<moveCaptureShift |
		uint32(promotion)<<movePromotionShift |
		uint32(flags)<<moveFlagShift)
}

func (m Move) From() Square {
	return Square((uint32(m) >> moveFromShift) & moveSquareMask)
}

func (m Move) To() Square {
	return Square((uint32(m) >> moveToShift) & moveSquareMask)
}

func (m Move) Moved() Piece {
	return Piece((uint32(m) >> movePieceShift) & movePieceMask)
}

func (m Move) Captured() Piece {
	return Piece((uint32(m) >> moveCaptureShift) & movePieceMask)
}

func (m Move) Promoted() Piece {
	return Piece((uint32(m) >> movePromotionShift) & movePieceMask)
}

func (m Move) Flags() Flag {
	return Flag((uint32(m) >> moveFlagShift) & moveFlagMask)
}

func (m Move) Is(f Flag) bool {
	return m.Flags()&f != 0
}

// WithFlags returns a copy of m with the given flags set (in addition to any
// already present). Used to tag Checking/EscapingCheck/KillerMate after the
// fact, without touching move identity.
func (m Move) WithFlags(f Flag) Move {
	return m | Move(uint32(f)<<moveFlagShift)
}

// WithoutFlags returns a copy of m with the given flags cleared.
func (m Move) WithoutFlags(f Flag) Move {
	return m &^ Move(uint32(f)<<moveFlagShift)
}

func (m Move) IsCapture() bool {
	return m.Captured() != NoPiece
}

func (m Move) IsPromotion() bool {
	return m.Promoted() != NoPiece
}

func (m Move) IsCaptureOrPromotion() bool {
	return m.IsCapture() || m.IsPromotion()
}

func (m Move) IsCastle() bool {
	return m.Is(Special) && m.Moved() == King && abs8(int(m.To())-int(m.From())) == 2
}

// IsEnPassant reports whether m is flagged as an en passant capture. The
// captured pawn's square (on the from-rank, not the to-square) is recovered
// by the caller during unmake, not encoded in the move itself.
func (m Move) IsEnPassant() bool {
	return m.Is(Special) && m.Moved() == Pawn && m.Captured() == Pawn && m.To().File() != m.From().File()
}

func (m Move) IsDoublePawnPush() bool {
	return m.Is(Special) && m.Moved() == Pawn && !m.IsCapture() && !m.IsPromotion() && abs8(int(m.Rank8Delta())) == 2
}

// Rank8Delta returns the signed rank delta between to and from, useful for
// double-push/promotion classification independent of side to move.
func (m Move) Rank8Delta() int {
	return int(m.To().Rank()) - int(m.From().Rank())
}

func abs8(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Equals compares move identity: from, to, moved, captured, promoted, and the
// Special flag. Checking/EscapingCheck/KillerMate are excluded.
func (m Move) Equals(o Move) bool {
	return uint32(m)&identityMask == uint32(o)&identityMask
}

// NoMove is the zero-value sentinel: a "move" from A8 to A8 moving NoPiece,
// which is never pseudo-legal and thus safe as a not-present marker.
const NoMove Move = 0

// ParseMove parses a move in pure algebraic coordinate notation, such as
// "a2a4" or "a7a8q". The parsed move carries no contextual information
// (castling, en passant, check) -- those are resolved by matching against
// the pseudo-legal move list (see MakeUserMove in package search).
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return NoMove, fmt.Errorf("invalid move: '%v'", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return NoMove, fmt.Errorf("invalid from: '%v': %v", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return NoMove, fmt.Errorf("invalid to: '%v': %v", str, err)
	}

	promo := NoPiece
	if len(runes) == 5 {
		var ok bool
		promo, ok = ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return NoMove, fmt.Errorf("invalid promotion: '%v'", str)
		}
	}
	return NewMove(from, to, NoPiece, NoPiece, promo, 0), nil
}

func (m Move) String() string {
	if m.IsPromotion() {
		return fmt.Sprintf("%v%v%v", m.From(), m.To(), m.Promoted())
	}
	return fmt.Sprintf("%v%v", m.From(), m.To())
}

// FormatMoves renders a move sequence space-separated using fn.
func FormatMoves(moves []Move, fn func(Move) string) string {
	var out []byte
	for i, m := range moves {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, fn(m)...)
	}
	return string(out)
}

// PrintMoves renders a move sequence using the default String() form.
func PrintMoves(moves []Move) string {
	return FormatMoves(moves, func(m Move) string { return m.String() })
}
