package book_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/book"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBook(t *testing.T) {
	ctx := context.Background()

	b, err := book.New([]book.Line{
		{"e2e4", "d7d5", "d2d4"},
		{"e2e4", "d7d6"},
		{"d2d4", "d7d6"},
	})
	require.NoError(t, err)

	tests := []struct {
		pos   string
		moves string
	}{
		{fen.Initial, "d2d4 e2e4"},
		// No en passant square after 1.d4: the double push only records one
		// when an enemy pawn could actually capture, and book keys follow
		// the same normalization.
		{"rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq - 0 1", "d7d6"},
	}

	for _, tt := range tests {
		list, err := b.Find(ctx, tt.pos)
		assert.NoError(t, err)
		assert.Equal(t, tt.moves, board.PrintMoves(list))
	}
}

func TestNoBook(t *testing.T) {
	ctx := context.Background()

	list, err := book.NoBook.Find(ctx, fen.Initial)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewRejectsIllegalMove(t *testing.T) {
	_, err := book.New([]book.Line{{"e2e5"}})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "book.toml")
	require.NoError(t, writeFile(path, `
[lines]
ruy_lopez = "e2e4 e7e5 g1f3"
sicilian  = "e2e4 c7c5"
`))

	b, err := book.LoadFile(path)
	require.NoError(t, err)

	moves, err := b.Find(ctx, fen.Initial)
	require.NoError(t, err)
	assert.Equal(t, "e2e4", board.PrintMoves(moves))
}

func TestLoadFileRejectsIllegalLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, writeFile(path, `
[lines]
bogus = "e2e5"
`))

	_, err := book.LoadFile(path)
	assert.Error(t, err)
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
