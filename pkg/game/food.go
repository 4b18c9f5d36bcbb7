package game

// Rand is the random source used for food placement.
// *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// PlaceFood picks a uniformly random tile not in occupied.
// It returns false when every tile is occupied.
func PlaceFood(occupied map[Point]struct{}, grid Grid, rng Rand) (Point, bool) {
	if grid.Size <= 0 || len(occupied) >= grid.Area() {
		return Point{}, false
	}

	for {
		pos := Point{
			X: rng.Intn(grid.Size),
			Y: rng.Intn(grid.Size),
		}
		if _, taken := occupied[pos]; !taken {
			return pos, true
		}
	}
}
