package console

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/egtb"
	"github.com/kref/citadel/pkg/engine"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/movegen"
	"github.com/kref/citadel/pkg/search"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging.
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(line)
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "reset", "r":
				// reset [<fenstring>] moves ...

				d.ensureInactive(ctx)

				pos := fen.Initial
				if len(args) > 0 && args[0] != "moves" {
					pos = strings.Join(args[0:6], " ")
				}
				if err := d.e.Reset(ctx, pos); err != nil {
					logw.Errorf(ctx, "Invalid position: %v", line)
					return
				}
				move := false
				for _, arg := range args {
					if arg == "moves" {
						move = true
						continue
					}
					if !move {
						continue
					}

					if err := d.e.Move(ctx, arg); err != nil {
						logw.Errorf(ctx, "Invalid position move '%v': %v: %v", arg, line, err)
						return
					}
				}
				d.printBoard(ctx)

			case "undo", "u":
				d.ensureInactive(ctx)

				_ = d.e.TakeBack(ctx)
				d.printBoard(ctx)

			case "print", "p":
				d.printBoard(ctx)

			case "analyze", "a":
				d.ensureInactive(ctx)

				var opt searchctl.Options
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					opt.DepthLimit = lang.Some(uint(depth))
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					return
				}
				d.active.Store(true)

				go func() {
					var last search.Result
					for res := range out {
						last = res
						d.out <- printResult(res)
					}
					d.searchCompleted(ctx, last)
				}()

			case "depth", "d":
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					d.e.SetDepth(uint(depth))
				}

			case "hash": // size in MB
				if len(args) > 0 {
					hash, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint(hash))
				}

			case "nohash":
				d.e.SetHash(0)

			case "halt", "stop":
				res, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(ctx, res)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			case "":
				// ignore empty command

			default:
				// Assume move if not a recognized command.

				d.ensureInactive(ctx)
				if err := d.e.Move(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("invalid move: '%v'", cmd)
				} else {
					d.printBoard(ctx)
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, res search.Result) {
	if !d.active.CompareAndSwap(true, false) {
		return // stale or duplicate result
	}

	if len(res.PV) > 0 {
		d.out <- fmt.Sprintf("bestmove %v", res.PV[0])
	}

	d.printStaticBreakdown(ctx, res.Depth)
}

// printStaticBreakdown prints a one-ply-deep score for every legal move
// from the current position, sorted best-first. It re-runs AlphaBeta directly
// from a scratch ThreadContext per candidate, with one fresh transposition
// table and danger hash shared by the candidates of this call, so the
// printed breakdown is reproducible between runs.
func (d *Driver) printStaticBreakdown(ctx context.Context, depth int) {
	if depth <= 0 {
		depth = search.OnePly
	}

	position := d.e.Position()
	pos, _, _, err := fen.Decode(position)
	if err != nil {
		return
	}

	s := search.NewSearcher(search.NewTranspositionTable(64), search.NewDangerHash(1024), eval.Material{})
	s.Egtb = egtb.None{}
	s.NullMove = false

	var rows []breakdownRow
	for _, mv := range movegen.GenerateAll(pos, movegen.All, board.NoMove) {
		tc := search.NewThreadContext(pos.Clone(), 0)
		if !tc.Make(mv) {
			continue
		}
		score := -s.AlphaBeta(ctx, tc, depth-search.OnePly, eval.NegInf, eval.Inf)
		pv := append([]board.Move{mv}, tc.Current().PV...)
		tc.Unmake()

		if score.IsInvalid() {
			continue
		}
		rows = append(rows, breakdownRow{m: mv, s: score, pv: pv})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[j].s < rows[i].s })

	d.out <- fmt.Sprintf("Search, depth=%v", depth/search.OnePly)
	for i, r := range rows {
		d.out <- fmt.Sprintf(" %2d. %v\t%v\t\t(pv %v)", i+1, r.m, r.s, board.PrintMoves(r.pv))
	}
}

type breakdownRow struct {
	m  board.Move
	s  eval.Score
	pv []board.Move
}

func printResult(res search.Result) string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v pv=%v", res.Depth/search.OnePly, res.Score, res.Nodes, board.PrintMoves(res.PV))
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard(ctx context.Context) {
	position := d.e.Position()
	pos, _, _, err := fen.Decode(position)
	if err != nil {
		return
	}

	d.out <- ""
	d.out <- files
	d.out <- horizontal
	for r := board.Rank8; ; r-- {
		var sb strings.Builder
		sb.WriteString(strconv.Itoa(int(r) + 1))
		sb.WriteString(vertical)
		for f := board.FileA; f <= board.FileH; f++ {
			if piece, color, ok := pos.PieceAt(board.NewSquare(f, r)); ok {
				sb.WriteString(printPiece(color, piece))
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal

		if r == board.Rank1 {
			break
		}
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("fen:    %v", position)
	d.out <- fmt.Sprintf("result: %v", d.e.Result())
	d.out <- ""
}

func printPiece(c board.Color, p board.Piece) string {
	if c == board.White {
		return strings.ToUpper(p.String())
	}
	return strings.ToLower(p.String())
}
