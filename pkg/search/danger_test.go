package search_test

import (
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDangerHashEnPriseCount checks that the cache reports how many pieces
// hang, not just which one -- the quiescence no-stand-pat branch triggers
// only at two or more.
func TestDangerHashEnPriseCount(t *testing.T) {
	d := search.NewDangerHash(1 << 10)

	d.Record(0xABC, []board.Square{board.D1, board.F1}, board.NoSquare)
	sq, count, ok := d.EnPrise(0xABC)
	require.True(t, ok)
	assert.Equal(t, board.D1, sq)
	assert.Equal(t, 2, count)

	d.Record(0xDEF, []board.Square{board.G1}, board.NoSquare)
	_, count, ok = d.EnPrise(0xDEF)
	require.True(t, ok)
	assert.Equal(t, 1, count)

	d.Record(0x123, nil, board.NoSquare)
	_, _, ok = d.EnPrise(0x123)
	assert.False(t, ok, "a nothing-hangs record must not report en prise")
}

// TestFindEnPriseCountsTwoHangingPieces: both white knights stand attacked
// by black pawns with no defenders, so the census must record two hanging
// pieces.
func TestFindEnPriseCountsTwoHangingPieces(t *testing.T) {
	pos, _, _, err := fen.Decode("4k3/8/8/2p1p3/3N1N2/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	d := search.NewDangerHash(1 << 10)
	sq := search.FindEnPrise(pos, d)
	require.NotEqual(t, board.NoSquare, sq)

	_, count, ok := d.EnPrise(pos.Signature())
	require.True(t, ok)
	assert.Equal(t, 2, count)
}

// TestFindEnPriseRecordsSafePosition: with nothing hanging, the census
// records the negative result too, so the next probe is a cache hit rather
// than a rescan.
func TestFindEnPriseRecordsSafePosition(t *testing.T) {
	pos, _, _, err := fen.Decode(fen.Initial)
	require.NoError(t, err)

	d := search.NewDangerHash(1 << 10)
	assert.Equal(t, board.NoSquare, search.FindEnPrise(pos, d))

	_, _, ok := d.EnPrise(pos.Signature())
	assert.False(t, ok)
}
