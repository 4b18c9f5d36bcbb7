package game

// Collides reports whether moving the head to p ends the run.
// Walls are checked first, then every segment of the body including the
// tail, which has not been popped yet at check time.
func Collides(p Point, snake *Snake, grid Grid) bool {
	if !grid.InBounds(p) {
		return true
	}
	return snake.Contains(p)
}
