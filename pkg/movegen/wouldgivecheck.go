package movegen

import "github.com/kref/citadel/pkg/board"

// WouldGiveCheck reports whether mv, played in pos (which still reflects
// the pre-move state), gives check to the opponent: castles via the rook's
// landing square, promotions via the promoted piece, then direct checks,
// discovered checks, and the two rays an en passant capture can unmask.
// Direct ray lookups against the check-vector table replace a per-ply
// "unblocked square" cache -- cheaper to reason about, same result,
// amortization sacrificed for clarity.
func WouldGiveCheck(pos *board.Position, mv board.Move) bool {
	mover := pos.Turn()
	enemyKing := pos.King(mover.Opponent())
	from, to := mv.From(), mv.To()

	// (1) Castling: only the rook's post-castle square can give check.
	if mv.IsCastle() {
		rookFrom, rookTo := CastleRookSquares(mover, to)
		return attacks(pos, rookTo, board.Rook, mover, enemyKing, rookFrom)
	}

	// (2) Promotion substitutes the promoted piece for the check test.
	piece := mv.Moved()
	if mv.IsPromotion() {
		piece = mv.Promoted()
	}

	// (3) Direct check: the moved piece, now standing on "to", attacks the
	// enemy king -- knights by exact hop, others by a table-confirmed ray
	// with a path clear except through the square the piece just vacated.
	if attacks(pos, to, piece, mover, enemyKing, from) {
		return true
	}

	// (4) Discovered check: "from" lay on a ray to the king, "to" does not
	// continue that same ray, and a friendly slider is now unmasked.
	if d := step(enemyKing, from); d != 0 && step(enemyKing, to) != d {
		if sliderBehind(pos, enemyKing, d, from, mover) {
			return true
		}
	}

	// (5) En passant additionally unmasks rays through both the captured
	// pawn's square and the moving pawn's origin.
	if mv.IsEnPassant() {
		capturedSq := EnPassantCapturedSquare(to, mover)
		for _, sq := range [2]board.Square{capturedSq, from} {
			if d := step(enemyKing, sq); d != 0 {
				if sliderBehind(pos, enemyKing, d, sq, mover) {
					return true
				}
			}
		}
	}

	return false
}

// CastleRookSquares returns the rook's pre/post-castle squares for the given
// mover and king destination, shared by the check test above and package
// search's Make/Unmake.
func CastleRookSquares(mover board.Color, kingTo board.Square) (from, to board.Square) {
	switch {
	case mover == board.White && kingTo == board.G1:
		return board.H1, board.F1
	case mover == board.White && kingTo == board.C1:
		return board.A1, board.D1
	case mover == board.Black && kingTo == board.G8:
		return board.H8, board.F8
	default:
		return board.A8, board.D8
	}
}

// EnPassantCapturedSquare returns the square of the pawn captured by an en
// passant move whose destination is epTarget.
func EnPassantCapturedSquare(epTarget board.Square, mover board.Color) board.Square {
	if mover == board.White {
		return board.Square(int(epTarget) + 16)
	}
	return board.Square(int(epTarget) - 16)
}

// attacks reports whether a piece of the given type/color, standing at
// attackerSq, attacks kingSq -- treating vacated as empty regardless of its
// actual occupant (the mover has just left it).
func attacks(pos *board.Position, attackerSq board.Square, piece board.Piece, color board.Color, kingSq board.Square, vacated board.Square) bool {
	if piece == board.Knight {
		for _, d := range knightDeltas {
			if board.Square(int(attackerSq)+d) == kingSq {
				return true
			}
		}
		return false
	}
	return raySees(pos, attackerSq, piece, color, kingSq, vacated, attackerSq)
}

// raySees reports whether piece/color at attackerSq sees kingSq along a
// ray, given the table confirms the piece type can move in that direction,
// and the path between them is clear except for the vacated square and
// attackerSq itself.
func raySees(pos *board.Position, attackerSq board.Square, piece board.Piece, color board.Color, kingSq board.Square, vacated board.Square, ignoreSelf board.Square) bool {
	raw := delta(attackerSq, kingSq)
	idx := raw + deltaBias
	if idx < 0 || idx >= deltaSpan {
		return false
	}
	if checkVector[color][idx]&bit(piece) == 0 {
		return false
	}
	d := int(rayStep[idx])
	if d == 0 {
		return false
	}
	if piece == board.King {
		return board.Square(int(attackerSq)+d) == kingSq
	}
	for sq := board.Square(int(attackerSq) + d); sq != kingSq; sq = board.Square(int(sq) + d) {
		if sq == vacated || sq == ignoreSelf {
			continue
		}
		if !pos.IsEmpty(sq) {
			return false
		}
	}
	return true
}

// sliderBehind reports whether a friendly (to color) slider stands behind
// the vacated square on the ray from kingSq through vacated, with a clear
// path once vacated is excluded.
func sliderBehind(pos *board.Position, kingSq board.Square, d int, vacated board.Square, color board.Color) bool {
	sq := board.Square(int(kingSq) + d)
	for sq.IsValid() {
		if sq == vacated {
			sq = board.Square(int(sq) + d)
			continue
		}
		if p, c, ok := pos.PieceAt(sq); ok {
			return c == color && isSlider(p) && attacksVia(p, color, -d)
		}
		sq = board.Square(int(sq) + d)
	}
	return false
}
