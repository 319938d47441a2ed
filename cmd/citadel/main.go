// Command citadel is the CITADEL chess engine entrypoint. It exposes each
// external interface as a Cobra subcommand: "uci" and "xboard"
// drive the engine under their respective GUI protocols, "console" is a
// human-friendly debugging shell, and "perft"/"bench" are standalone
// testable-property and throughput tools that never touch a protocol shim.
package main

import (
	"context"
	"net/http"

	"github.com/kref/citadel/pkg/book"
	"github.com/kref/citadel/pkg/engine"
	"github.com/kref/citadel/pkg/engine/config"
	"github.com/kref/citadel/pkg/engine/console"
	"github.com/kref/citadel/pkg/engine/remote"
	"github.com/kref/citadel/pkg/engine/uci"
	"github.com/kref/citadel/pkg/engine/xboard"
	"github.com/kref/citadel/pkg/eval"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/logw"
	"github.com/spf13/cobra"
)

var (
	hash          uint
	depth         uint
	numProcessors uint
	configPath    string
	bookPath      string
	remoteAddr    string
)

func main() {
	ctx := context.Background()

	root := &cobra.Command{
		Use:   "citadel",
		Short: "CITADEL is a UCI/Xboard chess engine",
	}
	root.PersistentFlags().UintVar(&hash, "hash", 64, "Transposition table size in MB")
	root.PersistentFlags().UintVar(&depth, "depth", 0, "Search depth limit in plies (0: unlimited)")
	root.PersistentFlags().UintVar(&numProcessors, "processors", 1, "Number of search worker threads")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Engine options YAML file (overrides --hash/--depth/--processors)")
	root.PersistentFlags().StringVar(&bookPath, "book", "", "Opening book TOML file")
	root.PersistentFlags().StringVar(&remoteAddr, "remote", "", "Address to serve a websocket PV broadcast on (e.g. :8080); disabled if empty")

	root.AddCommand(
		newUCICommand(ctx),
		newXboardCommand(ctx),
		newConsoleCommand(ctx),
		newPerftCommand(),
		newBenchCommand(ctx),
	)

	if err := root.Execute(); err != nil {
		logw.Exitf(ctx, "citadel: %v", err)
	}
}

func newEngine(ctx context.Context) *engine.Engine {
	opts := engine.Options{
		Depth:         depth,
		Hash:          hash,
		NumProcessors: numProcessors,
	}
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			logw.Exitf(ctx, "citadel: %v", err)
		}
		opts = cfg.EngineOptions()
		if bookPath == "" {
			bookPath = cfg.BookName
		}
	}

	options := []engine.Option{engine.WithOptions(opts), engine.WithEvaluator(eval.Material{})}
	if bookPath != "" {
		b, err := book.LoadFile(bookPath)
		if err != nil {
			logw.Exitf(ctx, "citadel: %v", err)
		}
		options = append(options, engine.WithBook(b))
	}
	if b := maybeServeRemote(ctx); b != nil {
		options = append(options, engine.WithObserver(b.Publish))
	}

	return engine.New(ctx, "citadel", "kref", searchctl.Iterative{}, options...)
}

// maybeServeRemote starts the websocket PV broadcast server, if --remote
// names an address, returning the Broadcaster to publish results to; with
// no --remote flag it returns nil and newEngine registers no observer.
func maybeServeRemote(ctx context.Context) *remote.Broadcaster {
	if remoteAddr == "" {
		return nil
	}

	b := remote.NewBroadcaster()
	mux := http.NewServeMux()
	mux.Handle("/pv", b.Handler())

	go func() {
		if err := http.ListenAndServe(remoteAddr, mux); err != nil {
			logw.Errorf(ctx, "citadel: remote server: %v", err)
		}
	}()
	logw.Infof(ctx, "citadel: serving PV broadcast on ws://%v/pv", remoteAddr)
	return b
}

func newUCICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "uci",
		Short: "Run the engine under the UCI protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(ctx)

			in := engine.ReadStdinLines(ctx)
			driver, out := uci.NewDriver(ctx, e, in)
			go engine.WriteStdoutLines(ctx, out)

			<-driver.Closed()
			return nil
		},
	}
}

func newXboardCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "xboard",
		Short: "Run the engine under the Xboard/CECP protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(ctx)

			in := engine.ReadStdinLines(ctx)
			driver, out := xboard.NewDriver(ctx, e, in)
			go engine.WriteStdoutLines(ctx, out)

			<-driver.Closed()
			return nil
		},
	}
}

func newConsoleCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Run the engine under an interactive debugging console",
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(ctx)

			in := engine.ReadStdinLines(ctx)
			driver, out := console.NewDriver(ctx, e, in)
			go engine.WriteStdoutLines(ctx, out)

			<-driver.Closed()
			return nil
		},
	}
}

func newPerftCommand() *cobra.Command {
	var position string
	var divide bool

	cmd := &cobra.Command{
		Use:   "perft",
		Short: "Count leaf nodes at a given search depth from a position",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPerft(position, int(depth), divide)
		},
	}
	cmd.Flags().StringVar(&position, "fen", "", "Start position (default to standard)")
	cmd.Flags().BoolVar(&divide, "divide", false, "Divide counts by initial move")
	return cmd
}

func newBenchCommand(ctx context.Context) *cobra.Command {
	var position string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a fixed-depth search and report nodes and time",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(ctx, position, depth)
		},
	}
	cmd.Flags().StringVar(&position, "fen", "", "Position to benchmark (default to standard)")
	return cmd
}
