package movegen

import "github.com/kref/citadel/pkg/board"

// Mode selects which subset of pseudo-legal moves a generation call
// produces.
type Mode uint8

const (
	All Mode = iota
	Evasions
	CapturesAndPromotions
	CapturesPromotionsAndChecks
)

// IsAttacked reports whether sq is attacked by a piece of color by. Sliding
// attacks walk the ray to confirm it is unblocked; knight/king/pawn attacks
// are single-hop lookups against the check-vector table.
func IsAttacked(pos *board.Position, sq board.Square, by board.Color) bool {
	for _, d := range knightDeltas {
		to := board.Square(int(sq) + d)
		if !to.IsValid() {
			continue
		}
		if p, c, ok := pos.PieceAt(to); ok && c == by && p == board.Knight {
			return true
		}
	}
	for _, d := range queenDeltas {
		to := board.Square(int(sq) + d)
		if !to.IsValid() {
			continue
		}
		if p, c, ok := pos.PieceAt(to); ok && c == by && p == board.King {
			return true
		}
	}
	pawnDeltas := [2]int{17, 15}
	if by == board.Black {
		pawnDeltas = [2]int{-17, -15}
	}
	for _, d := range pawnDeltas {
		to := board.Square(int(sq) + d)
		if !to.IsValid() {
			continue
		}
		if p, c, ok := pos.PieceAt(to); ok && c == by && p == board.Pawn {
			return true
		}
	}
	for _, d := range queenDeltas {
		from := board.Square(int(sq) + d)
		for from.IsValid() {
			if p, c, ok := pos.PieceAt(from); ok {
				if c == by && attacksVia(p, by, -d) && isSlider(p) {
					return true
				}
				break
			}
			from = board.Square(int(from) + d)
		}
	}
	return false
}

// IsChecked reports whether c's king is currently attacked.
func IsChecked(pos *board.Position, c board.Color) bool {
	return IsAttacked(pos, pos.King(c), c.Opponent())
}

// ExposesCheck reports whether removing the piece on "from" (e.g. because it
// is about to move away) would expose color c's king to attack along the
// ray through "from". Callers pass the mover's own color; used both for
// pin detection during generation and for Make's specialized self-check
// test.
func ExposesCheck(pos *board.Position, from board.Square, c board.Color) bool {
	king := pos.King(c)
	d := step(king, from)
	if d == 0 {
		return false
	}
	// Walk from the king, through "from", looking for an enemy slider that
	// would see the king if "from" were vacated.
	sq := board.Square(int(king) + d)
	sawMover := false
	for sq.IsValid() {
		if sq == from {
			sawMover = true
			sq = board.Square(int(sq) + d)
			continue
		}
		if p, pc, ok := pos.PieceAt(sq); ok {
			if !sawMover {
				return false // something else is between king and "from"
			}
			return pc != c && isSlider(p) && attacksVia(p, pc, -d)
		}
		sq = board.Square(int(sq) + d)
	}
	return false
}

// GenerateAll produces every pseudo-legal move for the side to move, in the
// given mode, optionally placing skip (a hash move already tried) first.
// Pseudo-legality is deliberate: moves that leave the mover's own
// king in check, or castle through check, are left for Make to reject.
func GenerateAll(pos *board.Position, mode Mode, skip board.Move) []board.Move {
	c := pos.Turn()
	var moves []board.Move

	for _, sq := range pos.Pawns(c) {
		moves = generatePawnMoves(pos, sq, c, mode, moves)
	}
	for _, sq := range pos.NonPawns(c) {
		p, _, _ := pos.PieceAt(sq)
		switch p {
		case board.Knight:
			moves = generateLeaperMoves(pos, sq, c, knightDeltas[:], mode, moves)
		case board.King:
			moves = generateLeaperMoves(pos, sq, c, queenDeltas[:], mode, moves)
			moves = generateCastles(pos, c, moves)
		case board.Bishop:
			moves = generateSliderMoves(pos, sq, c, bishopDeltas[:], mode, moves)
		case board.Rook:
			moves = generateSliderMoves(pos, sq, c, rookDeltas[:], mode, moves)
		case board.Queen:
			moves = generateSliderMoves(pos, sq, c, queenDeltas[:], mode, moves)
		}
	}

	if skip != board.NoMove {
		moves = moveToFront(moves, skip)
	}
	return moves
}

func moveToFront(moves []board.Move, m board.Move) []board.Move {
	for i, mv := range moves {
		if mv.Equals(m) {
			moves[0], moves[i] = moves[i], moves[0]
			return moves
		}
	}
	return moves
}

func wantMove(mode Mode, capture, promo, check bool) bool {
	switch mode {
	case All, Evasions:
		return true
	case CapturesAndPromotions:
		return capture || promo
	case CapturesPromotionsAndChecks:
		return capture || promo || check
	default:
		return true
	}
}

func generateLeaperMoves(pos *board.Position, from board.Square, c board.Color, deltas []int, mode Mode, out []board.Move) []board.Move {
	piece, _, _ := pos.PieceAt(from)
	for _, d := range deltas {
		to := board.Square(int(from) + d)
		if !to.IsValid() {
			continue
		}
		target, oc, occupied := pos.PieceAt(to)
		if occupied && oc == c {
			continue
		}
		capture := board.NoPiece
		if occupied {
			capture = target
		}
		check := WouldGiveCheck(pos, board.NewMove(from, to, piece, capture, board.NoPiece, 0))
		if !wantMove(mode, occupied, false, check) {
			continue
		}
		out = append(out, board.NewMove(from, to, piece, capture, board.NoPiece, flagsFor(check)))
	}
	return out
}

func generateSliderMoves(pos *board.Position, from board.Square, c board.Color, deltas []int, mode Mode, out []board.Move) []board.Move {
	piece, _, _ := pos.PieceAt(from)
	for _, d := range deltas {
		to := board.Square(int(from) + d)
		for to.IsValid() {
			target, oc, occupied := pos.PieceAt(to)
			if occupied && oc == c {
				break
			}
			capture := board.NoPiece
			if occupied {
				capture = target
			}
			check := WouldGiveCheck(pos, board.NewMove(from, to, piece, capture, board.NoPiece, 0))
			if wantMove(mode, occupied, false, check) {
				out = append(out, board.NewMove(from, to, piece, capture, board.NoPiece, flagsFor(check)))
			}
			if occupied {
				break
			}
			to = board.Square(int(to) + d)
		}
	}
	return out
}

func flagsFor(check bool) board.Flag {
	if check {
		return board.Checking
	}
	return 0
}

func generatePawnMoves(pos *board.Position, from board.Square, c board.Color, mode Mode, out []board.Move) []board.Move {
	fwd, startRank, promoRank := -16, board.Rank2, board.Rank8
	if c == board.Black {
		fwd, startRank, promoRank = 16, board.Rank7, board.Rank1
	}

	one := board.Square(int(from) + fwd)
	if one.IsValid() && pos.IsEmpty(one) {
		out = appendPawnMove(pos, from, one, c, board.NoPiece, false, promoRank, mode, out)
		if from.Rank() == startRank {
			two := board.Square(int(one) + fwd)
			if two.IsValid() && pos.IsEmpty(two) {
				special := adjacentEnemyPawn(pos, two, c)
				out = appendDoublePush(pos, from, two, c, special, mode, out)
			}
		}
	}

	capDeltas := [2]int{fwd - 1, fwd + 1}
	for _, cd := range capDeltas {
		to := board.Square(int(from) + cd)
		if !to.IsValid() {
			continue
		}
		if target, oc, ok := pos.PieceAt(to); ok {
			if oc == c {
				continue
			}
			out = appendPawnMove(pos, from, to, c, target, false, promoRank, mode, out)
		} else if to == pos.EnPassant() {
			out = appendPawnMove(pos, from, to, c, board.Pawn, true, promoRank, mode, out)
		}
	}
	return out
}

// adjacentEnemyPawn reports whether an enemy pawn stands on an adjacent
// file on the same rank as sq, the condition for actually setting the en
// passant square after a double push (avoids ep-signature churn when no
// capture is possible).
func adjacentEnemyPawn(pos *board.Position, sq board.Square, c board.Color) bool {
	for _, d := range [2]int{-1, +1} {
		adj := board.Square(int(sq) + d)
		if !adj.IsValid() {
			continue
		}
		if p, oc, ok := pos.PieceAt(adj); ok && p == board.Pawn && oc != c {
			return true
		}
	}
	return false
}

func appendDoublePush(pos *board.Position, from, to board.Square, c board.Color, setsEp bool, mode Mode, out []board.Move) []board.Move {
	piece := board.Pawn
	mv := board.NewMove(from, to, piece, board.NoPiece, board.NoPiece, board.Special)
	check := WouldGiveCheck(pos, mv)
	if check {
		mv = mv.WithFlags(board.Checking)
	}
	if wantMove(mode, false, false, check) {
		out = append(out, mv)
	}
	return out
}

func appendPawnMove(pos *board.Position, from, to board.Square, c board.Color, capture board.Piece, isEnPassant bool, promoRank board.Rank, mode Mode, out []board.Move) []board.Move {
	if to.Rank() == promoRank {
		for _, promo := range [4]board.Piece{board.Queen, board.Rook, board.Bishop, board.Knight} {
			mv := board.NewMove(from, to, board.Pawn, capture, promo, board.Special)
			check := WouldGiveCheck(pos, mv)
			if check {
				mv = mv.WithFlags(board.Checking)
			}
			if wantMove(mode, capture != board.NoPiece, true, check) {
				out = append(out, mv)
			}
		}
		return out
	}

	flags := board.Flag(0)
	if isEnPassant {
		flags = board.Special
	}
	mv := board.NewMove(from, to, board.Pawn, capture, board.NoPiece, flags)
	check := WouldGiveCheck(pos, mv)
	if check {
		mv = mv.WithFlags(board.Checking)
	}
	if wantMove(mode, capture != board.NoPiece, false, check) {
		out = append(out, mv)
	}
	return out
}

func generateCastles(pos *board.Position, c board.Color, out []board.Move) []board.Move {
	rights := pos.Castling()
	king := pos.King(c)

	type side struct {
		right          board.Castling
		kingTo, rookTo board.Square
		mustBeEmpty    []board.Square
	}

	var sides []side
	if c == board.White {
		sides = []side{
			{board.WhiteKingSideCastle, board.G1, board.F1, []board.Square{board.F1, board.G1}},
			{board.WhiteQueenSideCastle, board.C1, board.D1, []board.Square{board.B1, board.C1, board.D1}},
		}
	} else {
		sides = []side{
			{board.BlackKingSideCastle, board.G8, board.F8, []board.Square{board.F8, board.G8}},
			{board.BlackQueenSideCastle, board.C8, board.D8, []board.Square{board.B8, board.C8, board.D8}},
		}
	}

	for _, s := range sides {
		if rights&s.right == 0 {
			continue
		}
		empty := true
		for _, sq := range s.mustBeEmpty {
			if !pos.IsEmpty(sq) {
				empty = false
				break
			}
		}
		if !empty {
			continue
		}
		mv := board.NewMove(king, s.kingTo, board.King, board.NoPiece, board.NoPiece, board.Special)
		out = append(out, mv)
	}
	return out
}

// GenerateEvasions produces pseudo-legal replies when the side to move is
// in check. It still occasionally yields illegal moves (a
// pinned piece capturing the checker); Make filters.
func GenerateEvasions(pos *board.Position, skip board.Move) []board.Move {
	c := pos.Turn()
	king := pos.King(c)
	checkers := Checkers(pos, king, c.Opponent())

	var moves []board.Move
	moves = generateKingEvasions(pos, king, c, checkers, moves)

	if len(checkers) == 1 {
		moves = generateBlockOrCapture(pos, c, checkers[0], moves)
	}

	// Every reply to check carries the EscapingCheck flag, which move
	// ordering, futility pruning, and history reduction consult; the flag
	// is outside move identity so hash-move matching is
	// unaffected.
	for i := range moves {
		moves[i] = moves[i].WithFlags(board.EscapingCheck)
	}

	if skip != board.NoMove {
		moves = moveToFront(moves, skip)
	}
	return moves
}

// Checkers enumerates the squares of pieces of color "by" that attack sq.
func Checkers(pos *board.Position, sq board.Square, by board.Color) []board.Square {
	var out []board.Square
	for _, d := range knightDeltas {
		to := board.Square(int(sq) + d)
		if to.IsValid() {
			if p, c, ok := pos.PieceAt(to); ok && c == by && p == board.Knight {
				out = append(out, to)
			}
		}
	}
	pawnDeltas := [2]int{17, 15}
	if by == board.Black {
		pawnDeltas = [2]int{-17, -15}
	}
	for _, d := range pawnDeltas {
		to := board.Square(int(sq) + d)
		if to.IsValid() {
			if p, c, ok := pos.PieceAt(to); ok && c == by && p == board.Pawn {
				out = append(out, to)
			}
		}
	}
	for _, d := range queenDeltas {
		from := board.Square(int(sq) + d)
		for from.IsValid() {
			if p, c, ok := pos.PieceAt(from); ok {
				if c == by && isSlider(p) && attacksVia(p, by, -d) {
					out = append(out, from)
				}
				break
			}
			from = board.Square(int(from) + d)
		}
	}
	return out
}

func generateKingEvasions(pos *board.Position, king board.Square, c board.Color, checkers []board.Square, out []board.Move) []board.Move {
	behind := map[board.Square]bool{}
	for _, chk := range checkers {
		if p, _, _ := pos.PieceAt(chk); isSlider(p) {
			d := step(chk, king)
			if d != 0 {
				behind[board.Square(int(king)+d)] = true
			}
		}
	}

	for _, d := range queenDeltas {
		to := board.Square(int(king) + d)
		if !to.IsValid() || behind[to] {
			continue
		}
		target, oc, occupied := pos.PieceAt(to)
		if occupied && oc == c {
			continue
		}
		if IsAttacked(pos, to, c.Opponent()) {
			continue
		}
		capture := board.NoPiece
		if occupied {
			capture = target
		}
		out = append(out, board.NewMove(king, to, board.King, capture, board.NoPiece, 0))
	}
	return out
}

func generateBlockOrCapture(pos *board.Position, c board.Color, checker board.Square, out []board.Move) []board.Move {
	king := pos.King(c)
	targets := []board.Square{checker}

	if p, _, _ := pos.PieceAt(checker); isSlider(p) {
		d := step(checker, king)
		if d != 0 {
			for sq := board.Square(int(checker) + d); sq != king; sq = board.Square(int(sq) + d) {
				targets = append(targets, sq)
			}
		}
	}

	for _, sq := range pos.Pawns(c) {
		for _, to := range targets {
			out = appendPawnBlockOrCapture(pos, sq, to, c, out)
		}
	}
	for _, sq := range pos.NonPawns(c) {
		p, _, _ := pos.PieceAt(sq)
		if p == board.King {
			continue
		}
		for _, to := range targets {
			if !canReach(pos, sq, to, p) {
				continue
			}
			capture := board.NoPiece
			if target, _, ok := pos.PieceAt(to); ok {
				capture = target
			}
			out = append(out, board.NewMove(sq, to, p, capture, board.NoPiece, 0))
		}
	}
	return out
}

func appendPawnBlockOrCapture(pos *board.Position, from, to board.Square, c board.Color, out []board.Move) []board.Move {
	fwd := -16
	promoRank := board.Rank8
	if c == board.Black {
		fwd, promoRank = 16, board.Rank1
	}

	d := delta(from, to)
	switch {
	case d == fwd && pos.IsEmpty(to):
		out = appendEvasionPawnMove(from, to, c, board.NoPiece, promoRank, out)
	case d == 2*fwd && pos.IsEmpty(to) && from.Rank() == startRankFor(c):
		mid := board.Square(int(from) + fwd)
		if pos.IsEmpty(mid) {
			out = append(out, board.NewMove(from, to, board.Pawn, board.NoPiece, board.NoPiece, board.Special))
		}
	case (d == fwd-1 || d == fwd+1):
		if target, oc, ok := pos.PieceAt(to); ok && oc != c {
			out = appendEvasionPawnMove(from, to, c, target, promoRank, out)
		} else if to == pos.EnPassant() {
			out = append(out, board.NewMove(from, to, board.Pawn, board.Pawn, board.NoPiece, board.Special))
		}
	}
	return out
}

func appendEvasionPawnMove(from, to board.Square, c board.Color, capture board.Piece, promoRank board.Rank, out []board.Move) []board.Move {
	if to.Rank() == promoRank {
		for _, promo := range [4]board.Piece{board.Queen, board.Rook, board.Bishop, board.Knight} {
			out = append(out, board.NewMove(from, to, board.Pawn, capture, promo, board.Special))
		}
		return out
	}
	return append(out, board.NewMove(from, to, board.Pawn, capture, board.NoPiece, 0))
}

func startRankFor(c board.Color) board.Rank {
	if c == board.White {
		return board.Rank2
	}
	return board.Rank7
}

func canReach(pos *board.Position, from, to board.Square, p board.Piece) bool {
	switch p {
	case board.Knight:
		for _, d := range knightDeltas {
			if board.Square(int(from)+d) == to {
				return true
			}
		}
		return false
	default:
		// The check-vector table also vetoes piece/direction mismatches
		// (a rook never travels a diagonal ray, however clear it is).
		if !attacksVia(p, board.White, delta(from, to)) {
			return false
		}
		d := step(from, to)
		if d == 0 {
			return false
		}
		for sq := board.Square(int(from) + d); sq.IsValid(); sq = board.Square(int(sq) + d) {
			if sq == to {
				return true
			}
			if !pos.IsEmpty(sq) {
				return false
			}
		}
		return false
	}
}
