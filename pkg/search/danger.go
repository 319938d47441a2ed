package search

import (
	"sync"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
)

// dangerEntry remembers, for a position signature, which pieces (if any)
// the side to move had en prise the last time the position was analyzed --
// a cheap substitute for recomputing SEE against every one of a side's
// pieces at every node. Up to two en-prise squares are kept: ordering only
// needs the first, but quiescence's in-danger branch triggers on two or
// more, so the count itself is load-bearing.
type dangerEntry struct {
	key          uint64
	enPrise      [2]board.Square
	enPriseCount uint8 // hanging pieces recorded (the scan stops at two)
	trapped      board.Square
	occupied     bool
}

const dangerLocks = 256

// DangerHash is a small shared cache of en-prise/trapped-piece findings,
// keyed by full position signature. A fixed bank of mutexes guards the
// entries, matching TranspositionTable's locking.
type DangerHash struct {
	entries []dangerEntry
	mask    uint64
	locks   []sync.Mutex
}

// NewDangerHash allocates a table with the given entry count, rounded down
// to a power of two (minimum 1024).
func NewDangerHash(entryCount uint64) *DangerHash {
	n := uint64(1024)
	for n*2 <= entryCount {
		n *= 2
	}
	return &DangerHash{
		entries: make([]dangerEntry, n),
		mask:    n - 1,
		locks:   make([]sync.Mutex, dangerLocks),
	}
}

func (d *DangerHash) slot(key uint64) (*dangerEntry, *sync.Mutex) {
	i := key & d.mask
	return &d.entries[i], &d.locks[i%dangerLocks]
}

// recorded returns the entry for key, if this exact position was recorded
// -- including a "nothing hangs" finding, which EnPrise alone cannot
// distinguish from an empty slot.
func (d *DangerHash) recorded(key uint64) (dangerEntry, bool) {
	e, l := d.slot(key)
	l.Lock()
	defer l.Unlock()
	if e.occupied && e.key == key {
		return *e, true
	}
	return dangerEntry{}, false
}

// EnPrise reports the first recorded en-prise square and the total count
// of hanging pieces for the position with the given signature, if this
// exact position was recorded with at least one.
func (d *DangerHash) EnPrise(key uint64) (board.Square, int, bool) {
	e, l := d.slot(key)
	l.Lock()
	defer l.Unlock()
	if e.occupied && e.key == key && e.enPriseCount > 0 {
		return e.enPrise[0], int(e.enPriseCount), true
	}
	return board.NoSquare, 0, false
}

// Trapped reports the square of a piece known to have no safe retreat in
// the position with the given signature.
func (d *DangerHash) Trapped(key uint64) (board.Square, bool) {
	e, l := d.slot(key)
	l.Lock()
	defer l.Unlock()
	if e.occupied && e.key == key && e.trapped != board.NoSquare {
		return e.trapped, true
	}
	return board.NoSquare, false
}

// Record stores the en-prise/trapped findings for a position, overwriting
// whatever previously occupied the slot (always-replace; the cache is a
// speed hint, not a correctness-bearing structure). Only the first two
// en-prise squares are retained; the count keeps the full tally.
func (d *DangerHash) Record(key uint64, enPrise []board.Square, trapped board.Square) {
	entry := dangerEntry{
		key:          key,
		enPrise:      [2]board.Square{board.NoSquare, board.NoSquare},
		enPriseCount: uint8(len(enPrise)),
		trapped:      trapped,
		occupied:     true,
	}
	for i, sq := range enPrise {
		if i >= len(entry.enPrise) {
			break
		}
		entry.enPrise[i] = sq
	}

	e, l := d.slot(key)
	l.Lock()
	defer l.Unlock()
	*e = entry
}

// FindEnPrise scans the side to move's pieces (king excluded; an attacked
// king is check, not material danger) for ones a capture could win
// outright, recording the findings for future probes. Returns the first
// hanging square, or board.NoSquare if nothing hangs.
func FindEnPrise(pos *board.Position, danger *DangerHash) board.Square {
	sig := pos.Signature()
	if e, ok := danger.recorded(sig); ok {
		if e.enPriseCount > 0 {
			return e.enPrise[0]
		}
		return board.NoSquare
	}

	turn := pos.Turn()
	var found []board.Square
	for _, sq := range pos.NonPawns(turn)[1:] {
		if isHanging(pos, sq, turn) {
			found = append(found, sq)
			if len(found) == 2 {
				break // two is all the in-danger gate needs
			}
		}
	}
	danger.Record(sig, found, board.NoSquare)

	if len(found) == 0 {
		return board.NoSquare
	}
	return found[0]
}

// isHanging reports whether the piece on sq is attacked by the opponent by
// a piece of lesser value, or by any piece at all with no defender. It is
// a cheap attacker/defender census via movegen.Checkers, not a full SEE
// simulation -- good enough to seed move-ordering bonuses and the
// quiescence danger gate, not to prune on its own.
func isHanging(pos *board.Position, sq board.Square, c board.Color) bool {
	piece, _, ok := pos.PieceAt(sq)
	if !ok {
		return false
	}
	opp := c.Opponent()
	attackers := movegen.Checkers(pos, sq, opp)
	if len(attackers) == 0 {
		return false
	}
	defenders := movegen.Checkers(pos, sq, c)
	if len(defenders) == 0 {
		return true
	}
	pieceValue := eval.NominalValue(piece)
	for _, a := range attackers {
		ap, _, _ := pos.PieceAt(a)
		if eval.NominalValue(ap) < pieceValue {
			return true
		}
	}
	return false
}
