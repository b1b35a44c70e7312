package maze

import "github.com/zucenko/mazerace/model"

// ShortestPath returns the cells from start to end inclusive, or nil when
// end cannot be reached. Every non-WALL tile is passable.
func ShortestPath(grid *model.Grid, start, end model.Pos) []model.Pos {
	if !grid.InBound(start) || !grid.InBound(end) {
		return nil
	}
	if start == end {
		return []model.Pos{start}
	}

	queue := []model.Pos{start}
	cameFrom := make(map[model.Pos]model.Pos)
	visited := map[model.Pos]struct{}{start: {}}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		if curr == end {
			return trace(cameFrom, start, end)
		}

		for _, next := range grid.Neighbors(curr) {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			cameFrom[next] = curr
			queue = append(queue, next)
		}
	}
	return nil
}

func trace(cameFrom map[model.Pos]model.Pos, start, end model.Pos) []model.Pos {
	path := []model.Pos{end}
	for curr := end; curr != start; {
		curr = cameFrom[curr]
		path = append(path, curr)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
