package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	log "github.com/sirupsen/logrus"
)

var keys = []string{
	"PORT", "LOG_LEVEL", "RACE_PLAYERS", "RACE_NAMES", "MAZE_WIDTH", "MAZE_HEIGHT",
	"MOVE_DURATION_MS", "RACE_SEED", "FOG", "SPECIAL_TILES", "DYNAMIC_TILES",
	"DYNAMIC_INTERVAL_MS", "DYNAMIC_MIN", "DYNAMIC_MAX", "SOUND", "TUNING", "LAYOUT_FILE",
}

// clearEnv unsets every variable for the test and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 4, cfg.Players)
	assert.Equal(t, 35, cfg.Width)
	assert.Equal(t, 35, cfg.Height)
	assert.Equal(t, 140*time.Millisecond, cfg.MoveDuration)
	assert.True(t, cfg.Specials)
	assert.False(t, cfg.Dynamic)
	assert.Equal(t, 3*time.Second, cfg.DynamicInterval)
	assert.Equal(t, "classic", cfg.Tuning)
	assert.Nil(t, cfg.Names)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("RACE_PLAYERS", "3")
	t.Setenv("RACE_NAMES", "Ann, Bo ,,Cy")
	t.Setenv("MAZE_WIDTH", "21")
	t.Setenv("MAZE_HEIGHT", "25")
	t.Setenv("MOVE_DURATION_MS", "90")
	t.Setenv("RACE_SEED", "42")
	t.Setenv("FOG", "true")
	t.Setenv("DYNAMIC_TILES", "1")
	t.Setenv("DYNAMIC_INTERVAL_MS", "2000")
	t.Setenv("TUNING", "wild")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"Ann", "Bo", "", "Cy"}, cfg.Names)
	assert.Equal(t, 90*time.Millisecond, cfg.MoveDuration)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.True(t, cfg.Fog)
	assert.True(t, cfg.Dynamic)

	opts, err := cfg.RaceOptions()
	require.NoError(t, err)
	assert.Equal(t, 21, opts.Width)
	assert.Equal(t, 25, opts.Height)
	assert.Equal(t, 3, opts.Players)
	assert.Equal(t, "wild", opts.Tuning.Name)
	assert.True(t, opts.Dynamic.Enabled)
	assert.Equal(t, 2*time.Second, opts.Dynamic.Interval)

	assert.Equal(t, cfg.Rand().Int63(), cfg.Rand().Int63())
}

func TestFromEnvBadValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAZE_WIDTH", "wide")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrBadValue)

	clearEnv(t)
	t.Setenv("FOG", "maybe")
	_, err = FromEnv()
	assert.ErrorIs(t, err, ErrBadValue)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base, err := FromEnv()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "one player", mutate: func(c *Config) { c.Players = 1 }, want: ErrPlayerCount},
		{name: "nine players", mutate: func(c *Config) { c.Players = 9 }, want: ErrPlayerCount},
		{name: "even width", mutate: func(c *Config) { c.Width = 20 }, want: ErrMazeSize},
		{name: "tiny", mutate: func(c *Config) { c.Height = 3 }, want: ErrMazeSize},
		{name: "huge", mutate: func(c *Config) { c.Width = 103 }, want: ErrMazeSize},
		{name: "zero duration", mutate: func(c *Config) { c.MoveDuration = 0 }, want: ErrMoveDuration},
		{name: "inverted range", mutate: func(c *Config) { c.Dynamic = true; c.DynamicMin, c.DynamicMax = 5, 2 }, want: ErrSpawnRange},
		{name: "no interval", mutate: func(c *Config) { c.Dynamic = true; c.DynamicInterval = 0 }, want: ErrSpawnRange},
		{name: "tuning", mutate: func(c *Config) { c.Tuning = "spicy" }, want: ErrTuning},
		{name: "layout skips size", mutate: func(c *Config) { c.Width, c.LayoutFile = 4, "x.txt" }, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			_, err = c.RaceOptions()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadDotEnvAndLayout(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	layout := filepath.Join(dir, "board.txt")
	require.NoError(t, os.WriteFile(layout, []byte("#######\n#.....#\n#....X#\n#######\n"), 0o644))
	env := filepath.Join(dir, "race.env")
	require.NoError(t, os.WriteFile(env, []byte("RACE_PLAYERS=2\nLAYOUT_FILE="+layout+"\nLOG_LEVEL=debug\n"), 0o644))

	cfg, err := Load(env)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Players)

	opts, err := cfg.RaceOptions()
	require.NoError(t, err)
	require.NotNil(t, opts.Layout)
	assert.Equal(t, 7, opts.Width)
	assert.Equal(t, 4, opts.Height)

	level := log.GetLevel()
	defer log.SetLevel(level)
	cfg.ApplyLogLevel()
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestLoadMissingLayout(t *testing.T) {
	clearEnv(t)
	t.Setenv("LAYOUT_FILE", filepath.Join(t.TempDir(), "missing.txt"))
	cfg, err := FromEnv()
	require.NoError(t, err)
	_, err = cfg.RaceOptions()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
