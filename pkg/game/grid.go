package game

// Grid is a square board of Size×Size tiles
type Grid struct {
	Size int
}

// NewGrid creates a grid with n tiles per edge
func NewGrid(n int) Grid {
	return Grid{Size: n}
}

// GridForSurface derives the grid from a play surface and tile edge in pixels
func GridForSurface(surfacePx, tilePx int) Grid {
	if tilePx <= 0 {
		return Grid{}
	}
	return Grid{Size: surfacePx / tilePx}
}

// InBounds reports whether p lies on the board
func (g Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.Size && p.Y >= 0 && p.Y < g.Size
}

// Center returns the middle tile (rounded down)
func (g Grid) Center() Point {
	return Point{X: g.Size / 2, Y: g.Size / 2}
}

// Area returns the number of tiles
func (g Grid) Area() int {
	return g.Size * g.Size
}
