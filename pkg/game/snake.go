package game

// Snake is the ordered body of the player, head first
type Snake struct {
	body []Point
}

// NewSnake creates a single-segment snake at head
func NewSnake(head Point) *Snake {
	return &Snake{body: []Point{head}}
}

// NewSnakeFrom creates a snake from segments given head first.
// The slice is copied.
func NewSnakeFrom(segments ...Point) *Snake {
	body := make([]Point, len(segments))
	copy(body, segments)
	return &Snake{body: body}
}

// Head returns the first segment
func (s *Snake) Head() Point {
	return s.body[0]
}

// Tail returns the last segment
func (s *Snake) Tail() Point {
	return s.body[len(s.body)-1]
}

// Len returns the number of segments
func (s *Snake) Len() int {
	return len(s.body)
}

// Advance returns the head moved by dir without mutating the snake
func (s *Snake) Advance(dir Point) Point {
	return s.Head().Add(dir)
}

// Grow prepends newHead, lengthening the body by one
func (s *Snake) Grow(newHead Point) {
	s.body = append(s.body, Point{})
	copy(s.body[1:], s.body)
	s.body[0] = newHead
}

// MoveWithoutGrowth prepends newHead and drops the tail
func (s *Snake) MoveWithoutGrowth(newHead Point) {
	copy(s.body[1:], s.body[:len(s.body)-1])
	s.body[0] = newHead
}

// Contains reports whether any segment is at p
func (s *Snake) Contains(p Point) bool {
	for _, seg := range s.body {
		if seg == p {
			return true
		}
	}
	return false
}

// Segments returns a copy of the body, head first
func (s *Snake) Segments() []Point {
	out := make([]Point, len(s.body))
	copy(out, s.body)
	return out
}

// Occupied returns the set of tiles covered by the body
func (s *Snake) Occupied() map[Point]struct{} {
	set := make(map[Point]struct{}, len(s.body))
	for _, seg := range s.body {
		set[seg] = struct{}{}
	}
	return set
}
