package race

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/mazerace/model"
)

func entry(name string, color int, finish time.Duration, pathLen int) model.FinishEntry {
	p := model.NewPlayer(name, color)
	p.Finished = true
	p.FinishTime = finish
	p.Path = make([]model.Pos, pathLen)
	return model.FinishEntry{Player: p.Clone(), Color: p.ColorHex()}
}

func TestSortFinishIsStable(t *testing.T) {
	finish := []model.FinishEntry{
		entry("c", 2, 3*time.Second, 10),
		entry("a", 0, time.Second, 10),
		entry("b1", 1, 2*time.Second, 10),
		entry("b2", 3, 2*time.Second, 10),
	}
	sorted := SortFinish(finish)
	names := make([]string, 0, len(sorted))
	for _, f := range sorted {
		names = append(names, f.Player.Name)
	}
	assert.Equal(t, []string{"a", "b1", "b2", "c"}, names)
	assert.Equal(t, "c", finish[0].Player.Name, "input must not be reordered")
}

func TestStandings(t *testing.T) {
	finish := []model.FinishEntry{
		entry("Bo", 1, 4500*time.Millisecond, 40),
		entry("Al", 0, 3200*time.Millisecond, 31),
	}
	dnf := model.NewPlayer("Cy", 2)
	players := []model.Player{finish[1].Player, finish[0].Player, dnf.Clone()}

	standings := Standings(finish, players)
	require.Len(t, standings, 3)

	assert.Equal(t, model.Standing{Rank: 1, Name: "Al", Color: model.COLORS[0], Seconds: 3.2, PathLength: 31, Winner: true}, standings[0])
	assert.Equal(t, model.Standing{Rank: 2, Name: "Bo", Color: model.COLORS[1], Seconds: 4.5, PathLength: 40, Loser: true}, standings[1])
	assert.Equal(t, model.Standing{Rank: 3, Name: "Cy", Color: model.COLORS[2], DNF: true}, standings[2])
}

func TestSummarizeAndExport(t *testing.T) {
	finish := []model.FinishEntry{
		entry("Al", 0, 3200*time.Millisecond, 31),
		entry("Bo", 1, 4500*time.Millisecond, 40),
		entry("Cy", 2, 5100*time.Millisecond, 22),
		entry("Di", 3, 7250*time.Millisecond, 50),
	}
	stats := model.Stats{Boosts: 2, Slows: 1, Portals: 3, Freezes: 2, Reverses: 1}
	sum := Summarize(finish, stats)
	assert.Equal(t, Summary{TotalTime: 7250 * time.Millisecond, TotalItems: 9, Setbacks: 3, Winner: "Al", Loser: "Di"}, sum)

	players := make([]model.Player, 0, len(finish))
	for _, f := range finish {
		players = append(players, f.Player)
	}
	text := Export(Standings(finish, players), sum)
	want := "Maze race results\n\n" +
		"🥇 Al - 3.20s\n" +
		"🥈 Bo - 4.50s\n" +
		"🥉 Cy - 5.10s\n" +
		"4. Di - 7.25s (penalty!)\n" +
		"\nTotal time 7.2s, items 9, setbacks 3\n"
	assert.Equal(t, want, text)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil, model.Stats{})
	assert.Equal(t, Summary{}, sum)
}

func TestEventLogRing(t *testing.T) {
	l := NewEventLog(EVENT_LOG_SIZE)
	assert.Empty(t, l.Entries())

	for i := 0; i < 25; i++ {
		l.Append(model.LogEntry{At: float64(i), Kind: "boost", Message: fmt.Sprintf("e%d", i)})
	}
	entries := l.Entries()
	require.Len(t, entries, EVENT_LOG_SIZE)
	assert.Equal(t, EVENT_LOG_SIZE, l.Len())
	assert.Equal(t, "e24", entries[0].Message)
	assert.Equal(t, "e5", entries[EVENT_LOG_SIZE-1].Message)
}

func TestEventLogPartial(t *testing.T) {
	l := NewEventLog(3)
	l.Append(model.LogEntry{Message: "a"})
	l.Append(model.LogEntry{Message: "b"})
	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Message)
	assert.Equal(t, "a", entries[1].Message)
}
