package race

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/maze"
	"github.com/zucenko/mazerace/model"
)

func dynamicRace(t *testing.T, interval time.Duration) (*Session, *recorder) {
	t.Helper()
	opts := DefaultOptions()
	opts.Width, opts.Height = 21, 21
	opts.Players = 3
	opts.Dynamic = DynamicOptions{Enabled: true, Interval: interval, Min: 3, Max: 3}
	rec := &recorder{}
	s, err := New(opts, Sinks{Audio: rec, Visual: rec}, rand.New(rand.NewSource(21)))
	require.NoError(t, err)
	return s, rec
}

func countSpecials(g *model.Grid) int {
	n := 0
	for _, k := range SpawnKinds {
		n += g.Count(k)
	}
	return n
}

func TestDynamicFirstWaveIsTracked(t *testing.T) {
	s, _ := dynamicRace(t, 0)
	total := 0
	for _, q := range maze.DynamicQuotas() {
		total += q.Count
	}
	spawned := s.Spawned()
	assert.Len(t, spawned, total)
	for pos, tile := range spawned {
		assert.Equal(t, tile, s.grid.At(pos))
	}
}

func TestSpawnReplacesWave(t *testing.T) {
	s, rec := dynamicRace(t, 0)
	before := s.Spawned()
	s.Start(t0)

	placed := s.Spawn(t0.Add(3 * time.Second))
	assert.Equal(t, 3, placed)

	after := s.Spawned()
	assert.Len(t, after, 3)
	assert.Equal(t, 3, countSpecials(s.grid))
	for pos := range before {
		if _, again := after[pos]; !again {
			assert.Equal(t, model.PATH, s.grid.At(pos))
		}
	}
	assert.Equal(t, 1, s.grid.Count(model.PORTAL_A))
	assert.Equal(t, 1, s.grid.Count(model.PORTAL_B))

	for _, p := range s.Players() {
		_, taken := after[p.Render.Cell()]
		assert.False(t, taken, "tile spawned under %s", p.Name)
	}
	for pos := range after {
		assert.NotEqual(t, s.Exit(), pos)
	}

	assert.Equal(t, []model.Cue{model.CUE_SPAWN}, rec.Cues())
	assert.Equal(t, []string{"NEW TILES!"}, rec.Banners())
	log := s.Snapshot().Log
	require.Len(t, log, 1)
	assert.Equal(t, "spawn", log[0].Kind)
	assert.Equal(t, 3.0, log[0].At)
}

func TestSpawnBeforeStartDoesNothing(t *testing.T) {
	s, rec := dynamicRace(t, 0)
	before := s.Spawned()
	assert.Zero(t, s.Spawn(t0))
	assert.Equal(t, before, s.Spawned())
	assert.Empty(t, rec.Cues())
}

func TestConsumedSpawnIsForgotten(t *testing.T) {
	s, _ := dynamicRace(t, 0)
	s.Start(t0)
	var at model.Pos
	for pos := range s.Spawned() {
		at = pos
		break
	}
	s.mu.Lock()
	s.consume(at)
	s.mu.Unlock()
	_, tracked := s.Spawned()[at]
	assert.False(t, tracked)
}

func TestSpawnerGoroutineStops(t *testing.T) {
	s, rec := dynamicRace(t, 5*time.Millisecond)
	s.Start(time.Now())
	assert.Eventually(t, func() bool {
		for _, c := range rec.Cues() {
			if c == model.CUE_SPAWN {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	cues := len(rec.Cues())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, cues, len(rec.Cues()))
}
