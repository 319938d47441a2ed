package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kref/citadel/pkg/engine/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	c, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "citadel.yaml")

	want := config.Config{
		MyClock:        5 * time.Minute,
		OppClock:       5 * time.Minute,
		Increment:      2 * time.Second,
		MaxDepth:       12,
		MaxNodes:       1_000_000,
		NumProcessors:  4,
		NumHashEntries: 1 << 20,
		BookName:       "book.toml",
		PlayMode:       config.PlayBlack,
	}
	require.NoError(t, want.Save(path))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestValidateRejectsNonPowerOfTwoHash(t *testing.T) {
	c := config.Default()
	c.NumHashEntries = 3
	assert.Error(t, c.Validate())

	path := filepath.Join(t.TempDir(), "bad.yaml")
	assert.Error(t, c.Save(path))
}

func TestTimeControlUnsetWithoutClocks(t *testing.T) {
	c := config.Default()
	_, ok := c.TimeControl().V()
	assert.False(t, ok)
}

func TestTimeControlProjection(t *testing.T) {
	c := config.Default()
	c.MyClock = 3 * time.Minute
	c.OppClock = 2 * time.Minute
	c.MovesPerTC = 40

	tc, ok := c.TimeControl().V()
	require.True(t, ok)
	assert.Equal(t, 3*time.Minute, tc.White)
	assert.Equal(t, 2*time.Minute, tc.Black)
	assert.Equal(t, 40, tc.Moves)
}
