package maze

import "github.com/zucenko/mazerace/model"

const startSearchRadius = 10

// StartAreas are the anchor cells players are spread around, in seat order.
func StartAreas(width, height int) []model.Pos {
	return []model.Pos{
		{X: 1, Y: 1},
		{X: width - 2, Y: 1},
		{X: 1, Y: height - 2},
		{X: width / 2, Y: 1},
		{X: 1, Y: height / 2},
		{X: width - 2, Y: height / 2},
		{X: width / 2, Y: height - 2},
		{X: width / 4, Y: height / 4},
	}
}

// StartPositions picks up to count distinct open interior cells, one per
// anchor, growing a square ring around each anchor until a free cell turns
// up. Seats without an anchor or without a free cell nearby get nothing, so
// the result can be shorter than count.
func StartPositions(grid *model.Grid, exit model.Pos, count int) []model.Pos {
	areas := StartAreas(grid.Width, grid.Height)
	used := make(map[model.Pos]struct{})
	positions := make([]model.Pos, 0, count)

	for i := 0; i < count && i < len(areas); i++ {
		if p, ok := nearestFree(grid, exit, areas[i], used); ok {
			used[p] = struct{}{}
			positions = append(positions, p)
		}
	}
	return positions
}

func nearestFree(grid *model.Grid, exit, area model.Pos, used map[model.Pos]struct{}) (model.Pos, bool) {
	for r := 0; r < startSearchRadius; r++ {
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				p := model.Pos{X: area.X + dx, Y: area.Y + dy}
				if p.X <= 0 || p.X >= grid.Width-1 || p.Y <= 0 || p.Y >= grid.Height-1 {
					continue
				}
				if grid.At(p) == model.WALL || p == exit {
					continue
				}
				if _, taken := used[p]; taken {
					continue
				}
				return p, true
			}
		}
	}
	return model.Pos{}, false
}
