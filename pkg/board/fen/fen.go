// Package fen reads and writes chess positions in Forsyth-Edwards Notation
//: the core consumes no FEN syntax itself, relying
// only on a correctly constructed board.Position; this package is the
// collaborator that produces one.
package fen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kref/citadel/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// Decode returns a new position and game status from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (*board.Position, int, int, error) {
	// A FEN record contains six fields, space-separated: piece placement,
	// active color, castling availability, en passant target, halfmove
	// clock, fullmove number.

	parts := strings.Split(strings.TrimSpace(fen), " ")
	if len(parts) != 6 {
		return nil, 0, 0, fmt.Errorf("invalid number of sections in FEN: '%v'", fen)
	}

	// (1) Piece placement, rank 8 down to rank 1, file a through h within
	// each rank. Digits 1-8 denote consecutive empty squares. In the 0x88
	// encoding this scan order is strictly increasing: a8 is 0x00, h8 is
	// 0x07, and each '/' hops the 8-wide off-board gap to the next rank's
	// a-file.

	var pieces []board.Placement

	sq := board.A8
	for _, r := range []rune(parts[0]) {
		switch {
		case r == '/':
			sq += 8 // skip the 0x88 off-board half-rank

		case unicode.IsDigit(r):
			sq += board.Square(r - '0')

		case unicode.IsLetter(r):
			color, piece, ok := parsePiece(r)
			if !ok {
				return nil, 0, 0, fmt.Errorf("invalid piece '%v' in FEN: '%v'", r, fen)
			}
			pieces = append(pieces, board.Placement{Square: sq, Color: color, Piece: piece})
			sq++

		default:
			return nil, 0, 0, fmt.Errorf("invalid character in FEN: '%v'", fen)
		}
	}
	if sq != board.H1+1 {
		return nil, 0, 0, fmt.Errorf("invalid number of squares in FEN: '%v'", fen)
	}

	// (2) Active color: "w" or "b".

	active, ok := parseColor(parts[1])
	if !ok {
		return nil, 0, 0, fmt.Errorf("invalid active color in FEN: '%v'", fen)
	}

	// (3) Castling availability: "-" or one or more of "KQkq".

	castling, ok := parseCastling(parts[2])
	if !ok {
		return nil, 0, 0, fmt.Errorf("invalid castling in FEN: '%v'", fen)
	}

	// (4) En passant target square, or "-".

	ep := board.NoSquare
	if parts[3] != "-" {
		s, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, 0, 0, fmt.Errorf("invalid en passant in FEN: '%v'", fen)
		}
		ep = s
	}

	// (5) Halfmove clock: plies since the last pawn move or capture.

	np, err := strconv.Atoi(parts[4])
	if err != nil || np < 0 {
		return nil, 0, 0, fmt.Errorf("invalid halfmove in FEN: '%v'", fen)
	}

	// (6) Fullmove number, starting at 1, incremented after Black moves.

	fm, err := strconv.Atoi(parts[5])
	if err != nil || fm < 0 {
		return nil, 0, 0, fmt.Errorf("invalid full moves in FEN: '%v'", fen)
	}

	pos, err := board.NewPosition(pieces, active, castling, ep)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("invalid position in FEN '%v': %w", fen, err)
	}
	pos.SetFifty(np)
	return pos, np, fm, nil
}

// Encode renders pos (plus the halfmove clock and fullmove number, which
// Position itself tracks only the former of) in FEN notation.
func Encode(pos *board.Position, fullmoves int) string {
	var sb strings.Builder
	for r := board.Rank8; ; r-- {
		blanks := 0
		for f := board.FileA; f <= board.FileH; f++ {
			piece, color, ok := pos.PieceAt(board.NewSquare(f, r))
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r == board.Rank1 {
			break
		}
		sb.WriteString("/")
	}

	ep := "-"
	if pos.EnPassant() != board.NoSquare {
		ep = pos.EnPassant().String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), pos.Turn(), pos.Castling(), ep, pos.Fifty(), fullmoves)
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling
	if str == "-" {
		return ret, true
	}
	for _, r := range []rune(str) {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func parseColor(str string) (board.Color, bool) {
	switch str {
	case "w", "W":
		return board.White, true
	case "b", "B":
		return board.Black, true
	default:
		return 0, false
	}
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	switch r {
	case 'P':
		return board.White, board.Pawn, true
	case 'B':
		return board.White, board.Bishop, true
	case 'N':
		return board.White, board.Knight, true
	case 'R':
		return board.White, board.Rook, true
	case 'Q':
		return board.White, board.Queen, true
	case 'K':
		return board.White, board.King, true
	case 'p':
		return board.Black, board.Pawn, true
	case 'b':
		return board.Black, board.Bishop, true
	case 'n':
		return board.Black, board.Knight, true
	case 'r':
		return board.Black, board.Rook, true
	case 'q':
		return board.Black, board.Queen, true
	case 'k':
		return board.Black, board.King, true
	default:
		return 0, 0, false
	}
}

func printPiece(c board.Color, p board.Piece) rune {
	var r rune
	switch p {
	case board.Pawn:
		r = 'p'
	case board.Bishop:
		r = 'b'
	case board.Knight:
		r = 'n'
	case board.Rook:
		r = 'r'
	case board.Queen:
		r = 'q'
	case board.King:
		r = 'k'
	default:
		r = '?'
	}
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
