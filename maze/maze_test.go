package maze

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

// scripted replays a fixed sequence of draws, wrapping around.
type scripted struct {
	seq []int
	i   int
}

func (s *scripted) Intn(n int) int {
	v := s.seq[s.i%len(s.seq)] % n
	s.i++
	return v
}

func TestGenerateGolden5x5(t *testing.T) {
	tests := []struct {
		name   string
		script []int
		want   string
	}{
		{
			// every shuffle yields E, S, W, N
			name:   "east first",
			script: []int{0},
			want: "#####\n" +
				"#...#\n" +
				"###.#\n" +
				"#..X#\n" +
				"#####\n",
		},
		{
			// every shuffle yields S, E, W, N
			name:   "south first",
			script: []int{0, 0, 1},
			want: "#####\n" +
				"#.#.#\n" +
				"#.#.#\n" +
				"#..X#\n" +
				"#####\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Generate(Config{Width: 5, Height: 5}, &scripted{seq: tt.script})
			assert.Equal(t, tt.want, Format(res.Grid, res.Exit))
			assert.Equal(t, model.Pos{X: 3, Y: 3}, res.Exit)
			assert.Equal(t, 3, res.Carves)
		})
	}
}

func openCells(g *model.Grid) []model.Pos {
	cells := make([]model.Pos, 0)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.Passable(model.Pos{X: x, Y: y}) {
				cells = append(cells, model.Pos{X: x, Y: y})
			}
		}
	}
	return cells
}

func floodFill(g *model.Grid, from model.Pos) map[model.Pos]struct{} {
	seen := map[model.Pos]struct{}{from: {}}
	stack := []model.Pos{from}
	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range g.Neighbors(curr) {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				stack = append(stack, n)
			}
		}
	}
	return seen
}

func TestGenerateIsSpanningTree(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		res := Generate(Config{Width: 35, Height: 35, Specials: true, Quotas: ClassicQuotas(), StartZone: 5}, rand.New(rand.NewSource(seed)))
		cells := openCells(res.Grid)

		reached := floodFill(res.Grid, model.Pos{X: 1, Y: 1})
		assert.Len(t, reached, len(cells), "seed %d: unreachable open cells", seed)

		edges := 0
		for _, c := range cells {
			if res.Grid.Passable(model.Pos{X: c.X + 1, Y: c.Y}) {
				edges++
			}
			if res.Grid.Passable(model.Pos{X: c.X, Y: c.Y + 1}) {
				edges++
			}
		}
		assert.Equal(t, len(cells)-1, edges, "seed %d: maze has a loop", seed)
		assert.Equal(t, 2*res.Carves+1, len(cells), "seed %d", seed)
	}
}

func TestSeedQuotas(t *testing.T) {
	res := Generate(Config{Width: 35, Height: 35, Specials: true, Quotas: ClassicQuotas(), StartZone: 5}, rand.New(rand.NewSource(42)))

	for _, q := range ClassicQuotas() {
		assert.Equal(t, q.Count, res.Grid.Count(q.Tile), q.Tile.Name())
	}
	assert.Len(t, res.Placements, 8)
	require.NotNil(t, res.PortalA)
	require.NotNil(t, res.PortalB)
	assert.Equal(t, model.PORTAL_A, res.Grid.At(*res.PortalA))
	assert.Equal(t, model.PORTAL_B, res.Grid.At(*res.PortalB))
	assert.Equal(t, 1, res.Grid.Count(model.PORTAL_A))
	assert.Equal(t, 1, res.Grid.Count(model.PORTAL_B))
	assert.Equal(t, model.PATH, res.Grid.At(res.Exit))

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.False(t, res.Grid.At(model.Pos{X: x, Y: y}).Special(), "special tile in start zone at %d,%d", x, y)
		}
	}
}

func TestSeedUnderFillsSilently(t *testing.T) {
	t.Run("fewer cells than quotas", func(t *testing.T) {
		res := Generate(Config{Width: 5, Height: 5, Specials: true, Quotas: ClassicQuotas()}, &scripted{seq: []int{0}})
		assert.Len(t, res.Placements, 6)
		assert.Nil(t, res.PortalA)
		assert.Nil(t, res.PortalB)
		assert.Equal(t, model.PATH, res.Grid.At(res.Exit))
	})

	t.Run("start zone covers the board", func(t *testing.T) {
		res := Generate(Config{Width: 5, Height: 5, Specials: true, Quotas: ClassicQuotas(), StartZone: 5}, &scripted{seq: []int{0}})
		assert.Empty(t, res.Placements)
		assert.Nil(t, res.PortalA)
	})

	t.Run("portals take the leftovers", func(t *testing.T) {
		quotas := []Quota{{Tile: model.BOOST, Count: 4}}
		res := Generate(Config{Width: 5, Height: 5, Specials: true, Quotas: quotas}, &scripted{seq: []int{0}})
		assert.Len(t, res.Placements, 4)
		require.NotNil(t, res.PortalA)
		require.NotNil(t, res.PortalB)
		assert.NotEqual(t, *res.PortalA, *res.PortalB)
	})
}

func TestShortestPath(t *testing.T) {
	res := Generate(Config{Width: 5, Height: 5}, &scripted{seq: []int{0}})

	t.Run("golden route", func(t *testing.T) {
		path := ShortestPath(res.Grid, model.Pos{X: 1, Y: 1}, res.Exit)
		assert.Equal(t, []model.Pos{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 2}, {X: 3, Y: 3}}, path)
	})

	t.Run("start is end", func(t *testing.T) {
		assert.Equal(t, []model.Pos{res.Exit}, ShortestPath(res.Grid, res.Exit, res.Exit))
	})

	t.Run("unreachable", func(t *testing.T) {
		g := res.Grid.Clone()
		g.Set(model.Pos{X: 3, Y: 2}, model.WALL)
		assert.Empty(t, ShortestPath(g, model.Pos{X: 1, Y: 1}, res.Exit))
	})

	t.Run("special tiles are passable", func(t *testing.T) {
		g := res.Grid.Clone()
		g.Set(model.Pos{X: 2, Y: 1}, model.FREEZE)
		g.Set(model.Pos{X: 3, Y: 2}, model.PORTAL_B)
		assert.Len(t, ShortestPath(g, model.Pos{X: 1, Y: 1}, res.Exit), 5)
	})
}

func TestShortestPathValidity(t *testing.T) {
	res := Generate(Config{Width: 35, Height: 35, Specials: true, Quotas: ClassicQuotas(), StartZone: 5}, rand.New(rand.NewSource(9)))
	starts := StartPositions(res.Grid, res.Exit, 8)
	require.Len(t, starts, 8)

	for _, start := range starts {
		path := ShortestPath(res.Grid, start, res.Exit)
		require.NotEmpty(t, path, "no route from %v", start)
		assert.Equal(t, start, path[0])
		assert.Equal(t, res.Exit, path[len(path)-1])
		for i, p := range path {
			assert.NotEqual(t, model.WALL, res.Grid.At(p))
			if i > 0 {
				assert.True(t, path[i-1].Adjacent(p), "%v -> %v", path[i-1], p)
			}
		}
	}
}

func TestStartPositions(t *testing.T) {
	res := Generate(Config{Width: 21, Height: 21}, rand.New(rand.NewSource(3)))

	positions := StartPositions(res.Grid, res.Exit, 12)
	require.Len(t, positions, 8)
	assert.Equal(t, model.Pos{X: 1, Y: 1}, positions[0])

	seen := make(map[model.Pos]bool)
	for _, p := range positions {
		assert.False(t, seen[p], "duplicate start %v", p)
		seen[p] = true
		assert.NotEqual(t, res.Exit, p)
		assert.True(t, res.Grid.Passable(p))
		assert.True(t, p.X > 0 && p.X < 20 && p.Y > 0 && p.Y < 20)
	}
}

func TestLayoutRead(t *testing.T) {
	src := "#######\n" +
		"#.+-A.#\n" +
		"#L*<B.#\n" +
		"#....X#\n" +
		"#######\n"

	res, err := Read(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 7, res.Grid.Width)
	assert.Equal(t, 5, res.Grid.Height)
	assert.Equal(t, model.Pos{X: 5, Y: 3}, res.Exit)
	assert.Equal(t, model.PATH, res.Grid.At(res.Exit))
	require.NotNil(t, res.PortalA)
	assert.Equal(t, model.Pos{X: 4, Y: 1}, *res.PortalA)
	assert.Equal(t, model.Pos{X: 4, Y: 2}, *res.PortalB)
	assert.Len(t, res.Placements, 5)
	assert.Equal(t, src, Format(res.Grid, res.Exit))
}

func TestLayoutReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{name: "empty", src: "\n\n", want: ErrBadLayout},
		{name: "ragged", src: "###\n#X\n###\n", want: ErrBadLayout},
		{name: "unknown rune", src: "###\n#?X\n###\n", want: ErrBadLayout},
		{name: "two exits", src: "####\n#XX#\n####\n", want: ErrBadLayout},
		{name: "no exit", src: "###\n#.#\n###\n", want: ErrNoExit},
		{name: "lonely portal", src: "####\n#AX#\n####\n", want: ErrPortalPair},
		{name: "two A", src: "#####\n#AAX#\n#####\n", want: ErrPortalPair},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
