package engine

// CountTiles counts the tiles of the given kind in a layer.
func CountTiles(layer [][]Tile, kind Tile) int {
	count := 0
	for _, row := range layer {
		for _, t := range row {
			if t == kind {
				count++
			}
		}
	}
	return count
}

// FindTiles returns the positions of all tiles of the given kind in
// row-major order.
func FindTiles(layer [][]Tile, kind Tile) []Position {
	var out []Position
	for y, row := range layer {
		for x, t := range row {
			if t == kind {
				out = append(out, Position{X: x, Y: y})
			}
		}
	}
	return out
}

// BorderPositions lists every valid exit position of a width x height
// grid: all cells one step outside the grid, corners excluded.
func BorderPositions(width, height int) []Position {
	var out []Position
	for x := 0; x < width; x++ {
		out = append(out, Position{X: x, Y: -1}, Position{X: x, Y: height})
	}
	for y := 0; y < height; y++ {
		out = append(out, Position{X: -1, Y: y}, Position{X: width, Y: y})
	}
	return out
}

// ManhattanDistance calculates the Manhattan distance between two positions.
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
