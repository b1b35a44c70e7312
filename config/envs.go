// Package config reads race and server settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/maze"
	"github.com/zucenko/mazerace/race"
)

var (
	ErrBadValue     = errors.New("bad environment value")
	ErrPlayerCount  = errors.New("player count must be between 2 and 8")
	ErrMazeSize     = errors.New("maze sides must be odd and between 5 and 101")
	ErrMoveDuration = errors.New("move duration must be positive")
	ErrSpawnRange   = errors.New("dynamic tile range is invalid")
	ErrTuning       = errors.New("unknown tuning")
)

const (
	MIN_PLAYERS = 2
	MAX_PLAYERS = 8
	MIN_SIDE    = 5
	MAX_SIDE    = 101
)

// Config holds the application's configuration values.
type Config struct {
	Port     string // HTTP port of the spectator server
	LogLevel string // logrus level name

	Players         int
	Names           []string
	Width           int
	Height          int
	MoveDuration    time.Duration
	Seed            int64 // 0 seeds from the clock
	Fog             bool
	Specials        bool
	Dynamic         bool
	DynamicInterval time.Duration
	DynamicMin      int
	DynamicMax      int
	Sound           bool
	Tuning          string
	LayoutFile      string // fixed board instead of a generated one
}

// Load reads the given .env files (".env" when none are named) and then the
// process environment. Missing files are not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debugf(".env file not found or could not be loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (Config, error) {
	defaults := race.DefaultOptions()
	r := reader{}
	cfg := Config{
		Port:            getEnvWithDefault("PORT", "8080"),
		LogLevel:        getEnvWithDefault("LOG_LEVEL", "info"),
		Players:         r.int("RACE_PLAYERS", defaults.Players),
		Names:           splitNames(getEnvWithDefault("RACE_NAMES", "")),
		Width:           r.int("MAZE_WIDTH", defaults.Width),
		Height:          r.int("MAZE_HEIGHT", defaults.Height),
		MoveDuration:    r.millis("MOVE_DURATION_MS", defaults.MoveDuration),
		Seed:            int64(r.int("RACE_SEED", 0)),
		Fog:             r.bool("FOG", false),
		Specials:        r.bool("SPECIAL_TILES", defaults.Specials),
		Dynamic:         r.bool("DYNAMIC_TILES", false),
		DynamicInterval: r.millis("DYNAMIC_INTERVAL_MS", defaults.Dynamic.Interval),
		DynamicMin:      r.int("DYNAMIC_MIN", defaults.Dynamic.Min),
		DynamicMax:      r.int("DYNAMIC_MAX", defaults.Dynamic.Max),
		Sound:           r.bool("SOUND", true),
		Tuning:          getEnvWithDefault("TUNING", defaults.Tuning.Name),
		LayoutFile:      getEnvWithDefault("LAYOUT_FILE", ""),
	}
	if r.err != nil {
		return Config{}, r.err
	}
	return cfg, nil
}

// Validate checks the bounds a race relies on. A layout file replaces the
// maze size check.
func (c Config) Validate() error {
	if c.Players < MIN_PLAYERS || c.Players > MAX_PLAYERS {
		return fmt.Errorf("%w: got %d", ErrPlayerCount, c.Players)
	}
	if c.LayoutFile == "" {
		for _, side := range []int{c.Width, c.Height} {
			if side < MIN_SIDE || side > MAX_SIDE || side%2 == 0 {
				return fmt.Errorf("%w: got %dx%d", ErrMazeSize, c.Width, c.Height)
			}
		}
	}
	if c.MoveDuration <= 0 {
		return fmt.Errorf("%w: got %v", ErrMoveDuration, c.MoveDuration)
	}
	if c.Dynamic && (c.DynamicMin < 0 || c.DynamicMax < c.DynamicMin || c.DynamicInterval <= 0) {
		return fmt.Errorf("%w: %d..%d every %v", ErrSpawnRange, c.DynamicMin, c.DynamicMax, c.DynamicInterval)
	}
	if _, ok := race.TuningByName(c.Tuning); !ok {
		return fmt.Errorf("%w: %q", ErrTuning, c.Tuning)
	}
	return nil
}

// RaceOptions validates the config and converts it for race.New. The layout
// file, when set, is read here.
func (c Config) RaceOptions() (race.Options, error) {
	if err := c.Validate(); err != nil {
		return race.Options{}, err
	}
	tuning, _ := race.TuningByName(c.Tuning)
	opts := race.DefaultOptions()
	opts.Width, opts.Height = c.Width, c.Height
	opts.Players = c.Players
	opts.Names = c.Names
	opts.MoveDuration = c.MoveDuration
	opts.Fog = c.Fog
	opts.Specials = c.Specials
	opts.Tuning = tuning
	opts.Dynamic = race.DynamicOptions{
		Enabled:  c.Dynamic,
		Interval: c.DynamicInterval,
		Min:      c.DynamicMin,
		Max:      c.DynamicMax,
	}
	if c.LayoutFile != "" {
		layout, err := maze.Load(c.LayoutFile)
		if err != nil {
			return race.Options{}, err
		}
		opts.Layout = layout
		opts.Width, opts.Height = layout.Grid.Width, layout.Grid.Height
	}
	return opts, nil
}

// Rand returns the random source for a race, seeded from Seed or the clock.
func (c Config) Rand() *rand.Rand {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ApplyLogLevel sets the logrus level, keeping the current one on a bad name.
func (c Config) ApplyLogLevel() {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Warnf("unknown LOG_LEVEL %q, keeping %s", c.LogLevel, log.GetLevel())
		return
	}
	log.SetLevel(level)
}

func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// reader parses typed variables and keeps the first failure.
type reader struct {
	err error
}

func (r *reader) fail(key, value string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s=%q: %v", ErrBadValue, key, value, err)
	}
}

func (r *reader) int(key string, def int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return def
	}
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return v
}

func (r *reader) bool(key string, def bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return def
	}
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		r.fail(key, value, err)
		return def
	}
	return v
}

func (r *reader) millis(key string, def time.Duration) time.Duration {
	return time.Duration(r.int(key, int(def/time.Millisecond))) * time.Millisecond
}
