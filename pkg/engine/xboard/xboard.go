// Package xboard contains a driver for using the engine under the Xboard /
// Chess Engine Communication Protocol (CECP), the GUI dialect that predates
// UCI and expects "post"-formatted thinking output instead of UCI "info"
// lines.
//
// See: https://www.gnu.org/software/xboard/engine-intf.html
package xboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kref/citadel/pkg/board"
	"github.com/kref/citadel/pkg/board/fen"
	"github.com/kref/citadel/pkg/engine"
	"github.com/kref/citadel/pkg/search"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

const ProtocolName = "xboard"

// Driver implements an Xboard/CECP driver for an engine. It is activated if
// sent "xboard".
type Driver struct {
	e *engine.Engine

	out chan<- string

	forceMode atomic.Bool // "force": GUI is in control, engine must not move on its own
	post      atomic.Bool // emit "post" thinking lines
	active    atomic.Bool

	result chan search.Result

	quit   chan struct{}
	closed atomic.Bool
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		result: make(chan search.Result, 400),
		quit:   make(chan struct{}),
	}
	d.post.Store(true)
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) Close() {
	if d.closed.CompareAndSwap(false, true) {
		close(d.quit)
	}
}

func (d *Driver) Closed() <-chan struct{} {
	return d.quit
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Xboard protocol initialized")

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

			switch cmd {
			case "xboard":
				// Enter xboard mode. No reply required.

			case "protover":
				d.out <- "feature myname=\"" + d.e.Name() + "\" ping=1 setboard=1 usermove=1 colors=0 done=1"

			case "new":
				d.ensureInactive(ctx)
				_ = d.e.Reset(ctx, fen.Initial)
				d.forceMode.Store(false)

			case "force":
				d.ensureInactive(ctx)
				d.forceMode.Store(true)

			case "setboard":
				d.ensureInactive(ctx)
				if err := d.e.Reset(ctx, strings.Join(args, " ")); err != nil {
					logw.Errorf(ctx, "Invalid board: %v: %v", line, err)
				}

			case "go":
				d.forceMode.Store(false)
				d.startThinking(ctx)

			case "usermove", "move":
				d.ensureInactive(ctx)
				if len(args) == 0 {
					break
				}
				if err := d.e.Move(ctx, args[0]); err != nil {
					d.out <- fmt.Sprintf("Illegal move: %v", args[0])
					break
				}
				if !d.forceMode.Load() {
					d.startThinking(ctx)
				}

			case "undo":
				d.ensureInactive(ctx)
				_ = d.e.TakeBack(ctx)

			case "remove":
				d.ensureInactive(ctx)
				_ = d.e.TakeBack(ctx)
				_ = d.e.TakeBack(ctx)

			case "level":
				// level <movesToGo> <minutes>[:seconds] <increment-seconds>
				// Accepted syntactically; clock-driven searches need a GUI
				// that also sends "time"/"otim", which this shim does not
				// track yet.

			case "st", "sd":
				// Fixed time/depth per move: handled at the next "go" via
				// the driver's stored defaults would require more protocol
				// state than this shim tracks; accepted and ignored.

			case "post":
				d.post.Store(true)

			case "nopost":
				d.post.Store(false)

			case "hard", "easy":
				// Pondering is not implemented.

			case "ping":
				if len(args) > 0 {
					d.out <- fmt.Sprintf("pong %v", args[0])
				} else {
					d.out <- "pong"
				}

			case "result":
				d.ensureInactive(ctx)

			case "quit":
				return

			default:
				logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
			}

		case res := <-d.result:
			if d.active.Load() && d.post.Load() {
				d.out <- printPost(res)
			}

		case <-d.quit:
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

func (d *Driver) startThinking(ctx context.Context) {
	d.ensureInactive(ctx)

	out, err := d.e.Analyze(ctx, searchctl.Options{})
	if err != nil {
		logw.Errorf(ctx, "Analyze failed: %v", err)
		return
	}
	d.active.Store(true)

	go func() {
		var last search.Result
		for res := range out {
			last = res
			d.result <- res
		}
		d.searchCompleted(ctx, last)
	}()
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(ctx context.Context, res search.Result) {
	if d.active.CompareAndSwap(true, false) {
		if len(res.PV) > 0 {
			d.out <- fmt.Sprintf("move %v", printMove(res.PV[0]))
		} // else: checkmate or stalemate; xboard expects no move line
	}
}

func printPost(res search.Result) string {
	// "<ply> <score in centipawns> <time in centiseconds> <nodes> <pv>"
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(res.Depth / search.OnePly))
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(int(res.Score)))
	sb.WriteString(" 0 ")
	sb.WriteString(strconv.FormatUint(res.Nodes, 10))
	if len(res.PV) > 0 {
		sb.WriteString(" ")
		sb.WriteString(board.FormatMoves(res.PV, printMove))
	}
	return sb.String()
}

func printMove(m board.Move) string {
	return fmt.Sprintf("%v%v%v", m.From(), m.To(), printPromoPiece(m.Promoted()))
}

func printPromoPiece(p board.Piece) string {
	switch p {
	case board.Queen:
		return "q"
	case board.Rook:
		return "r"
	case board.Knight:
		return "n"
	case board.Bishop:
		return "b"
	default:
		return ""
	}
}
