package game

import (
	"fmt"
	"time"
)

// Point represents a tile coordinate on the board
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p moved by the delta d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Directions are unit deltas stored as Points
var (
	DirNone  = Point{X: 0, Y: 0}
	DirUp    = Point{X: 0, Y: -1}
	DirDown  = Point{X: 0, Y: 1}
	DirLeft  = Point{X: -1, Y: 0}
	DirRight = Point{X: 1, Y: 0}
)

// State is the phase of the game state machine
type State int

const (
	StateIdle    State = iota // Not yet started
	StateRunning              // Ticks advance the snake
	StatePaused               // Clock stopped, resumable
	StateOver                 // Collision ended the run
	StateWon                  // Snake filled the board
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateOver:
		return "over"
	case StateWon:
		return "won"
	default:
		return "unknown"
	}
}

// Finished reports whether a run has ended
func (s State) Finished() bool {
	return s == StateOver || s == StateWon
}

// MarshalText lets State appear as a string in JSON
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateIdle, StateRunning, StatePaused, StateOver, StateWon} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}

// RunState holds the counters of a single run
type RunState struct {
	Score        int
	Level        int
	FoodEaten    int
	TickInterval time.Duration
	StartedAt    time.Time
	EndedAt      time.Time
	PausedTime   time.Duration // Accumulated pause time
	PauseStart   time.Time
}

// StepResult reports what a single tick did
type StepResult struct {
	Collided  bool `json:"collided"`
	Ate       bool `json:"ate"`
	LeveledUp bool `json:"leveledUp"`
	Won       bool `json:"won,omitempty"`
}

// FoodEvent is emitted when the snake eats
type FoodEvent struct {
	Pos       Point `json:"pos"`
	Score     int   `json:"score"`
	FoodEaten int   `json:"foodEaten"`
}

// LevelEvent is emitted on level-up
type LevelEvent struct {
	Level        int           `json:"level"`
	TickInterval time.Duration `json:"tickInterval"`
}

// RunSummary is the final state of a finished run
type RunSummary struct {
	Score           int       `json:"score"`
	Level           int       `json:"level"`
	FoodEaten       int       `json:"foodEaten"`
	DurationSeconds int       `json:"durationSeconds"`
	Difficulty      string    `json:"difficulty"`
	Won             bool      `json:"won"`
	EndedAt         time.Time `json:"endedAt"`
}

// Snapshot is a copy of the game for rendering and client synchronization
type Snapshot struct {
	Snake          []Point `json:"snake"`
	Food           Point   `json:"food"`
	Score          int     `json:"score"`
	Level          int     `json:"level"`
	FoodEaten      int     `json:"foodEaten"`
	TickIntervalMs float64 `json:"tickIntervalMs"`
	State          State   `json:"state"`
	Direction      Point   `json:"direction"`
	GridSize       int     `json:"gridSize"`
	Difficulty     string  `json:"difficulty"`
	Steps          int     `json:"steps"`
	CrashPoint     *Point  `json:"crashPoint,omitempty"`
}

// GameConfig is a DTO for board settings sent to clients on connect
type GameConfig struct {
	GridSize int `json:"gridSize"`
	TileSize int `json:"tileSize"`
}
