package maze

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zucenko/mazerace/model"
)

var (
	ErrBadLayout  = errors.New("bad layout")
	ErrNoExit     = errors.New("layout has no exit")
	ErrPortalPair = errors.New("layout portals are not paired")
)

const EXIT_RUNE = 'X'

var tileRunes = map[model.Tile]rune{
	model.PATH:      '.',
	model.WALL:      '#',
	model.BOOST:     '+',
	model.SLOW:      '-',
	model.PORTAL_A:  'A',
	model.PORTAL_B:  'B',
	model.LIGHTNING: 'L',
	model.FREEZE:    '*',
	model.REVERSE:   '<',
}

var runeTiles = func() map[rune]model.Tile {
	m := make(map[rune]model.Tile, len(tileRunes))
	for t, r := range tileRunes {
		m[r] = t
	}
	return m
}()

// Rune returns the layout character of a tile.
func Rune(t model.Tile) rune {
	if r, ok := tileRunes[t]; ok {
		return r
	}
	return '?'
}

// Load reads a layout file.
func Load(path string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	res, err := Read(file)
	if err != nil {
		log.Printf("failed reading layout %s: %v", path, err)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Read parses an ASCII board, one row per line. Blank lines are skipped.
func Read(reader io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)

	rows := make([][]model.Tile, 0)
	res := &Result{Placements: make([]Placement, 0)}
	exitFound := false

	for scanner.Scan() {
		s := strings.TrimRight(scanner.Text(), "\r")
		if s == "" {
			continue
		}
		line := make([]model.Tile, 0, len(s))
		for col, char := range []rune(s) {
			p := model.Pos{X: col, Y: len(rows)}
			if char == EXIT_RUNE {
				if exitFound {
					return nil, fmt.Errorf("%w: second exit at %v", ErrBadLayout, p)
				}
				exitFound = true
				res.Exit = p
				line = append(line, model.PATH)
				continue
			}
			tile, ok := runeTiles[char]
			if !ok {
				return nil, fmt.Errorf("%w: unknown rune %q at %v", ErrBadLayout, char, p)
			}
			switch tile {
			case model.PORTAL_A:
				if res.PortalA != nil {
					return nil, fmt.Errorf("%w: second A at %v", ErrPortalPair, p)
				}
				res.PortalA = &p
			case model.PORTAL_B:
				if res.PortalB != nil {
					return nil, fmt.Errorf("%w: second B at %v", ErrPortalPair, p)
				}
				res.PortalB = &p
			case model.BOOST, model.SLOW, model.LIGHTNING, model.FREEZE, model.REVERSE:
				res.Placements = append(res.Placements, Placement{Pos: p, Tile: tile})
			case model.PATH, model.WALL:
			}
			line = append(line, tile)
		}
		if len(rows) > 0 && len(line) != len(rows[0]) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrBadLayout, len(rows), len(line), len(rows[0]))
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadLayout)
	}
	if !exitFound {
		return nil, ErrNoExit
	}
	if (res.PortalA == nil) != (res.PortalB == nil) {
		return nil, ErrPortalPair
	}

	res.Grid = &model.Grid{Width: len(rows[0]), Height: len(rows), Cells: rows}
	return res, nil
}

// Format renders a grid in the layout format read by Read.
func Format(grid *model.Grid, exit model.Pos) string {
	var sb strings.Builder
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			p := model.Pos{X: x, Y: y}
			if p == exit {
				sb.WriteRune(EXIT_RUNE)
				continue
			}
			sb.WriteRune(Rune(grid.At(p)))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
