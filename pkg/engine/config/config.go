// Package config persists the engine's full option bag to and from a YAML
// file, so the engine can be configured without a GUI sending UCI
// "setoption"/Xboard "level" commands for every run. The shape is a flat
// bag mirroring pkg/engine.Options.
package config

import (
	"fmt"
	"math/bits"
	"os"
	"time"

	"github.com/kref/citadel/pkg/engine"
	"github.com/kref/citadel/pkg/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
	"gopkg.in/yaml.v3"
)

// PlayMode selects who the engine plays, if anyone.
type PlayMode string

const (
	PlayWhite PlayMode = "play-white"
	PlayBlack PlayMode = "play-black"
	Force     PlayMode = "force"
	Edit      PlayMode = "edit"
	Analyze   PlayMode = "analyze"
)

// Config is the engine's full option bag. Only a subset
// (MaxDepth, MaxNodes, NumProcessors, NumHashEntries) is consumed by the
// search core itself via engine.Options; the rest (clocks, paths, play
// mode) is read by the protocol shim or left for a future GUI-facing
// consumer, but all of it round-trips through this file so the whole
// option bag survives a restart.
type Config struct {
	MyClock    time.Duration `yaml:"my_clock"`
	OppClock   time.Duration `yaml:"opp_clock"`
	Increment  time.Duration `yaml:"increment"`
	MovesPerTC int           `yaml:"moves_per_tc"`
	SecPerMove time.Duration `yaml:"sec_per_move"`

	MaxDepth uint   `yaml:"max_depth"`
	MaxNodes uint64 `yaml:"max_nodes"`

	ShouldPonder bool `yaml:"should_ponder"`
	ShouldPost   bool `yaml:"should_post"`

	NumProcessors  uint `yaml:"num_processors"`
	NumHashEntries uint `yaml:"num_hash_entries"`

	EgtbPath string `yaml:"egtb_path"`
	BookName string `yaml:"book_name"`
	Logfile  string `yaml:"logfile"`

	ResignThreshold int      `yaml:"resign_threshold"`
	PlayMode        PlayMode `yaml:"play_mode"`
}

// Default returns the option bag a freshly-started engine plays with:
// single-threaded, no hash table, no time control, analyze mode.
func Default() Config {
	return Config{
		NumProcessors: 1,
		PlayMode:      Analyze,
	}
}

// Load reads a YAML config file. A missing file is not an error: it
// returns Default() so a first run can write one back out via Save.
// A malformed file, or a non-power-of-two NumHashEntries, is a user input
// error reported as a diagnostic, not a panic.
func Load(path string) (Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	} else if err != nil {
		return Config{}, fmt.Errorf("read config %v: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %v: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Save writes c to path as YAML, creating or truncating the file.
func (c Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %v: %w", path, err)
	}
	return nil
}

// Validate reports the one structural option constraint: num_hash_entries
// must be a power of two (zero, meaning "no hash table", is allowed).
func (c Config) Validate() error {
	if c.NumHashEntries != 0 && bits.OnesCount(c.NumHashEntries) != 1 {
		return fmt.Errorf("num_hash_entries %v is not a power of two", c.NumHashEntries)
	}
	return nil
}

// EngineOptions projects the subset of Config the search core consults.
// NumHashEntries converts to engine.Options' megabyte sizing at 16 bytes
// per entry.
func (c Config) EngineOptions() engine.Options {
	return engine.Options{
		Depth:         c.MaxDepth,
		MaxNodes:      c.MaxNodes,
		NumProcessors: c.NumProcessors,
		Hash:          uint(c.NumHashEntries * 16 >> 20),
	}
}

// TimeControl projects the clock fields into a searchctl.TimeControl, if
// any clock is actually set; sec_per_move-only configs report no time
// control here, since SecPerMove is enforced as a flat per-move timeout by
// the caller instead (mirroring UCI's "movetime", not "wtime"/"btime").
func (c Config) TimeControl() lang.Optional[searchctl.TimeControl] {
	if c.MyClock == 0 && c.OppClock == 0 {
		return lang.Optional[searchctl.TimeControl]{}
	}
	return lang.Some(searchctl.TimeControl{
		White: c.MyClock,
		Black: c.OppClock,
		Moves: c.MovesPerTC,
	})
}
