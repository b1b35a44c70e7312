package race

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zucenko/mazerace/model"
)

// Summary aggregates a finished race.
type Summary struct {
	// TotalTime is the finish time of the last finisher.
	TotalTime  time.Duration `json:"totalTime"`
	TotalItems int           `json:"totalItems"`
	Setbacks   int           `json:"setbacks"`
	Winner     string        `json:"winner"`
	Loser      string        `json:"loser"`
}

// SortFinish orders finish records by finish time. Records with equal times
// keep their append order.
func SortFinish(finish []model.FinishEntry) []model.FinishEntry {
	sorted := append([]model.FinishEntry(nil), finish...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Player.FinishTime < sorted[j].Player.FinishTime
	})
	return sorted
}

// Standings ranks finishers by time. The fastest is the winner and the
// slowest finisher the loser. Racers that never finished follow as DNF.
func Standings(finish []model.FinishEntry, players []model.Player) []model.Standing {
	sorted := SortFinish(finish)
	standings := make([]model.Standing, 0, len(players))
	done := make(map[int]bool, len(sorted))
	for i, f := range sorted {
		done[f.Player.Color] = true
		standings = append(standings, model.Standing{
			Rank:       i + 1,
			Name:       f.Player.Name,
			Color:      f.Color,
			Seconds:    f.Player.FinishTime.Seconds(),
			PathLength: len(f.Player.Path),
			Winner:     i == 0,
			Loser:      i == len(sorted)-1,
		})
	}
	for i := range players {
		p := &players[i]
		if done[p.Color] {
			continue
		}
		standings = append(standings, model.Standing{
			Rank:       len(standings) + 1,
			Name:       p.Name,
			Color:      p.ColorHex(),
			PathLength: len(p.Path),
			DNF:        true,
		})
	}
	return standings
}

func Summarize(finish []model.FinishEntry, stats model.Stats) Summary {
	sorted := SortFinish(finish)
	sum := Summary{TotalItems: stats.Total(), Setbacks: stats.Setbacks()}
	if len(sorted) > 0 {
		sum.Winner = sorted[0].Player.Name
		last := sorted[len(sorted)-1]
		sum.Loser = last.Player.Name
		sum.TotalTime = last.Player.FinishTime
	}
	return sum
}

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// Export renders the standings as shareable plain text.
func Export(standings []model.Standing, sum Summary) string {
	var sb strings.Builder
	sb.WriteString("Maze race results\n\n")
	for _, st := range standings {
		if st.DNF {
			fmt.Fprintf(&sb, "%s %s - DNF\n", medal(st.Rank), st.Name)
			continue
		}
		fmt.Fprintf(&sb, "%s %s - %.2fs", medal(st.Rank), st.Name, st.Seconds)
		if st.Loser {
			sb.WriteString(" (penalty!)")
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "\nTotal time %.1fs, items %d, setbacks %d\n", sum.TotalTime.Seconds(), sum.TotalItems, sum.Setbacks)
	return sb.String()
}

// Results ranks the session's racers.
func (s *Session) Results() []model.Standing {
	return Standings(s.FinishOrder(), s.Players())
}

func (s *Session) Summary() Summary {
	return Summarize(s.FinishOrder(), s.Stats())
}
