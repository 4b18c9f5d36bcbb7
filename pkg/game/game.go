package game

import (
	"math"
	"math/rand"
	"time"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
)

// Game is the simulation state machine of one player. It is not safe for
// concurrent use: input and ticks must be applied from a single goroutine.
type Game struct {
	grid     Grid
	nextGrid Grid
	rules    config.Rules
	clock    Clock
	rng      Rand
	listener Listener
	now      func() time.Time

	state       State
	difficulty  string
	snake       *Snake
	food        Point
	direction   Point
	lastMoveDir Point // Direction of the last performed move
	run         RunState
	steps       int
	crashPoint  *Point
}

// Option configures a Game
type Option func(*Game)

// WithRules overrides the progression rules
func WithRules(r config.Rules) Option {
	return func(g *Game) { g.rules = r }
}

// WithClock sets the clock driving the run
func WithClock(c Clock) Option {
	return func(g *Game) { g.clock = c }
}

// WithRand sets the random source for food placement
func WithRand(r Rand) Option {
	return func(g *Game) { g.rng = r }
}

// WithListener sets the event listener
func WithListener(l Listener) Option {
	return func(g *Game) { g.listener = l }
}

// WithNow sets the wall clock used for run durations
func WithNow(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// NewGame creates an idle game on grid
func NewGame(grid Grid, opts ...Option) *Game {
	g := &Game{
		grid:     grid,
		nextGrid: grid,
		rules:    config.DefaultRules(),
		clock:    NewManualClock(),
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		listener: Listeners(nil),
		now:      time.Now,
		state:    StateIdle,
		snake:    NewSnake(grid.Center()),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start begins a new run at difficulty. A run in progress is discarded.
func (g *Game) Start(difficulty string) {
	if g.state == StateRunning {
		g.clock.Stop()
	}

	g.grid = g.nextGrid
	g.difficulty = difficulty
	g.snake = NewSnake(g.grid.Center())
	g.direction = DirNone
	g.lastMoveDir = DirNone
	g.steps = 0
	g.crashPoint = nil
	g.run = RunState{
		Level:        1,
		TickInterval: g.rules.Policy.IntervalFor(difficulty),
		StartedAt:    g.now(),
	}

	g.state = StateRunning
	g.clock.Start(g.run.TickInterval)

	food, ok := PlaceFood(g.snake.Occupied(), g.grid, g.rng)
	if !ok {
		g.finish(true)
		return
	}
	g.food = food
}

// Step advances the run by one tick
func (g *Game) Step() StepResult {
	var res StepResult
	if g.state != StateRunning || g.direction == DirNone {
		return res
	}

	g.steps++
	g.lastMoveDir = g.direction
	newHead := g.snake.Advance(g.direction)

	if Collides(newHead, g.snake, g.grid) {
		g.crashPoint = &newHead
		g.finish(false)
		res.Collided = true
		return res
	}

	if newHead != g.food {
		g.snake.MoveWithoutGrowth(newHead)
		return res
	}

	g.snake.Grow(newHead)
	g.run.Score += g.rules.PointsPerFood
	g.run.FoodEaten++
	res.Ate = true
	g.listener.FoodEaten(FoodEvent{Pos: newHead, Score: g.run.Score, FoodEaten: g.run.FoodEaten})

	if g.rules.FoodPerLevel > 0 && g.run.FoodEaten%g.rules.FoodPerLevel == 0 {
		g.levelUp()
		res.LeveledUp = true
	}

	food, ok := PlaceFood(g.snake.Occupied(), g.grid, g.rng)
	if !ok {
		g.finish(true)
		res.Won = true
		return res
	}
	g.food = food
	return res
}

func (g *Game) levelUp() {
	g.run.Level++
	next := time.Duration(math.Round(float64(g.run.TickInterval) * g.rules.SpeedUpFactor))
	if next < g.rules.MinInterval {
		next = g.rules.MinInterval
	}
	g.run.TickInterval = next
	g.clock.Reset(next)
	g.listener.LevelUp(LevelEvent{Level: g.run.Level, TickInterval: next})
}

// finish ends the run, stops the clock and reports the summary
func (g *Game) finish(won bool) {
	g.clock.Stop()
	if won {
		g.state = StateWon
	} else {
		g.state = StateOver
	}
	g.run.EndedAt = g.now()

	g.listener.GameOver(g.Summary())
}

// SetDirection requests a new direction of travel. Only a direction on the
// axis orthogonal to the current travel is accepted; anything else is
// ignored. Accepted input applies immediately, so the last accepted
// request before a tick wins.
func (g *Game) SetDirection(dir Point) bool {
	if g.state != StateRunning || !isUnit(dir) {
		return false
	}

	// LastMoveDir is empty before the very first move
	compareDir := g.lastMoveDir
	if compareDir == DirNone {
		compareDir = g.direction
	}

	if dir.X != 0 && compareDir.X != 0 {
		return false
	}
	if dir.Y != 0 && compareDir.Y != 0 {
		return false
	}

	g.direction = dir
	return true
}

func isUnit(d Point) bool {
	return d == DirUp || d == DirDown || d == DirLeft || d == DirRight
}

// Pause stops the clock of a running game
func (g *Game) Pause() bool {
	if g.state != StateRunning {
		return false
	}
	g.clock.Stop()
	g.state = StatePaused
	g.run.PauseStart = g.now()
	return true
}

// Resume restarts the clock of a paused game at the current interval
func (g *Game) Resume() bool {
	if g.state != StatePaused {
		return false
	}
	g.run.PausedTime += g.now().Sub(g.run.PauseStart)
	g.state = StateRunning
	g.clock.Start(g.run.TickInterval)
	return true
}

// TogglePause pauses a running game or resumes a paused one
func (g *Game) TogglePause() bool {
	if g.state == StatePaused {
		return g.Resume()
	}
	return g.Pause()
}

// Resize sets the grid used from the next Start on
func (g *Game) Resize(grid Grid) {
	g.nextGrid = grid
	if g.state == StateIdle {
		g.grid = grid
		g.snake = NewSnake(grid.Center())
	}
}

// State returns the current phase
func (g *Game) State() State {
	return g.state
}

// Grid returns the board of the current run
func (g *Game) Grid() Grid {
	return g.grid
}

// Difficulty returns the difficulty the current run started with
func (g *Game) Difficulty() string {
	return g.difficulty
}

// Direction returns the current direction of travel
func (g *Game) Direction() Point {
	return g.direction
}

// Run returns a copy of the run counters
func (g *Game) Run() RunState {
	return g.run
}

// Clock returns the clock driving the game
func (g *Game) Clock() Clock {
	return g.clock
}

// Steps returns how many moves the current run has made
func (g *Game) Steps() int {
	return g.steps
}

// Duration returns the play time of the run, excluding pauses
func (g *Game) Duration() time.Duration {
	if g.state == StateIdle {
		return 0
	}
	end := g.now()
	if g.state.Finished() {
		end = g.run.EndedAt
	}
	paused := g.run.PausedTime
	if g.state == StatePaused {
		paused += end.Sub(g.run.PauseStart)
	}
	d := end.Sub(g.run.StartedAt) - paused
	if d < 0 {
		return 0
	}
	return d
}

// Summary returns the counters of the run as reported at game over
func (g *Game) Summary() RunSummary {
	return RunSummary{
		Score:           g.run.Score,
		Level:           g.run.Level,
		FoodEaten:       g.run.FoodEaten,
		DurationSeconds: int(g.Duration() / time.Second),
		Difficulty:      g.difficulty,
		Won:             g.state == StateWon,
		EndedAt:         g.run.EndedAt,
	}
}

// Snapshot returns a copy of the current game state for serialization
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Snake:          g.snake.Segments(),
		Food:           g.food,
		Score:          g.run.Score,
		Level:          g.run.Level,
		FoodEaten:      g.run.FoodEaten,
		TickIntervalMs: float64(g.run.TickInterval) / float64(time.Millisecond),
		State:          g.state,
		Direction:      g.direction,
		GridSize:       g.grid.Size,
		Difficulty:     g.difficulty,
		Steps:          g.steps,
	}
	if g.crashPoint != nil {
		p := *g.crashPoint
		snap.CrashPoint = &p
	}
	return snap
}
