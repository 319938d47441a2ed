// Package book defines the opening book collaborator the engine consults
// before falling back to a real search. Every line's moves are validated
// against the position they are played from, using a scratch
// search.ThreadContext as the move-applier.
package book

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
)

// Book represents an opening book.
type Book interface {
	// Find returns a list -- potentially empty -- of moves given a
	// position's FEN. Once an empty list is returned for a game, the book
	// should not be consulted again.
	Find(ctx context.Context, position string) ([]board.Move, error)
}

// Line represents an opening line in pure algebraic notation: "e2e4 d7d5".
type Line []string

func (l Line) String() string {
	return strings.Join(l, " ")
}

// NoBook is an empty opening book.
var NoBook Book = &book{moves: map[string][]board.Move{}}

// New creates an opening book from a set of opening lines, validating that
// every move in every line is legal from the position it is played in.
func New(lines []Line) (Book, error) {
	m := map[string]map[board.Move]bool{}

	for _, line := range lines {
		key := fen.Initial
		for _, str := range line {
			next, err := board.ParseMove(str)
			if err != nil {
				return nil, fmt.Errorf("invalid line %q: %w", line, err)
			}

			pos, _, fullmoves, err := fen.Decode(key)
			if err != nil {
				return nil, fmt.Errorf("invalid line %q: %w", line, err)
			}

			found := false
			for _, candidate := range movegen.GenerateAll(pos, movegen.All, board.NoMove) {
				if !candidate.Equals(next) {
					continue
				}

				tc := search.NewThreadContext(pos.Clone(), 0)
				if !tc.Make(candidate) {
					continue // pseudo-legal but not legal; keep looking
				}
				found = true

				k := fenKey(key)
				if m[k] == nil {
					m[k] = map[board.Move]bool{}
				}
				m[k][candidate] = true

				key = fen.Encode(tc.Pos, fullmoves+boolToInt(pos.Turn() == board.Black))
				break
			}
			if !found {
				return nil, fmt.Errorf("invalid line %q: move %v not legal", line, next)
			}
		}
	}

	out := map[string][]board.Move{}
	for k, set := range m {
		var list []board.Move
		for mv := range set {
			list = append(list, mv)
		}
		// Coordinate order first for determinism (set iteration order is
		// random), then material gain so tactical book lines surface.
		sort.Slice(list, func(i, j int) bool { return list[i].String() < list[j].String() })
		board.SortByPriority(list, func(mv board.Move) board.MovePriority {
			return board.MovePriority(eval.NominalValueGain(mv))
		})
		out[k] = list
	}
	return &book{moves: out}, nil
}

// file is the on-disk TOML shape of an opening book: a flat table of
// named lines, each a space-separated string of pure-algebraic moves, so
// a book can be hand-edited without touching Go source.
type file struct {
	Lines map[string]string `toml:"lines"`
}

// LoadFile reads a TOML opening book from path and builds a Book from it,
// named by the engine's book_name option. A malformed or
// illegal file is a user input error, not fatal.
func LoadFile(path string) (Book, error) {
	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode book %v: %w", path, err)
	}

	var lines []Line
	for _, raw := range f.Lines {
		lines = append(lines, Line(strings.Fields(raw)))
	}
	return New(lines)
}

type book struct {
	moves map[string][]board.Move // cropped FEN -> candidate moves, best first
}

func (b *book) Find(ctx context.Context, position string) ([]board.Move, error) {
	return b.moves[fenKey(position)], nil
}

// fenKey crops a FEN to its position-defining fields (placement, turn,
// castling, en passant), dropping the halfmove/fullmove counters so two
// games reaching the same position via different move orders share a
// book entry.
func fenKey(position string) string {
	parts := strings.Split(position, " ")
	if len(parts) < 4 {
		return position
	}
	return strings.Join(parts[:4], " ")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
