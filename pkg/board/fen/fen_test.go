package fen_test

import (
	"testing"

	"github.com/kref/citadel/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []string{
		fen.Initial,
		"4k3/2pppp2/8/4P1K1/4PP2/3P4/8/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/5P2/PPPPP1PP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	}

	for _, tt := range tests {
		p, np, fm, err := fen.Decode(tt)
		require.NoError(t, err)
		require.NoError(t, p.CheckInvariants())

		assert.Equal(t, tt, fen.Encode(p, fm))
		_ = np
	}
}
