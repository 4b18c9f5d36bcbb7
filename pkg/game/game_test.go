package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
)

// seqRand replays a fixed sequence of values
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

// foodAt returns a source that places food at the given tiles in order
func foodAt(points ...Point) *seqRand {
	r := &seqRand{}
	for _, p := range points {
		r.vals = append(r.vals, p.X, p.Y)
	}
	return r
}

type recordingListener struct {
	food   []FoodEvent
	levels []LevelEvent
	over   []RunSummary
}

func (l *recordingListener) FoodEaten(e FoodEvent) { l.food = append(l.food, e) }
func (l *recordingListener) LevelUp(e LevelEvent) { l.levels = append(l.levels, e) }
func (l *recordingListener) GameOver(s RunSummary) { l.over = append(l.over, s) }

func newTestGame(t *testing.T, size int, rng Rand, opts ...Option) (*Game, *ManualClock, *recordingListener) {
	t.Helper()
	clock := NewManualClock()
	events := &recordingListener{}
	opts = append([]Option{WithClock(clock), WithRand(rng), WithListener(events)}, opts...)
	return NewGame(NewGrid(size), opts...), clock, events
}

func TestStartResetsRun(t *testing.T) {
	g, clock, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))

	assert.Equal(t, StateIdle, g.State())
	g.Start(config.DifficultyNormal)

	snap := g.Snapshot()
	assert.Equal(t, StateRunning, snap.State)
	assert.Equal(t, []Point{{X: 10, Y: 10}}, snap.Snake)
	assert.Equal(t, DirNone, snap.Direction)
	assert.Equal(t, Point{X: 0, Y: 0}, snap.Food)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 1, snap.Level)
	assert.Equal(t, 0, snap.FoodEaten)
	assert.Equal(t, 150.0, snap.TickIntervalMs)

	assert.True(t, clock.Running())
	assert.Equal(t, 150*time.Millisecond, clock.Interval())
}

func TestStartDifficultyPolicy(t *testing.T) {
	tests := []struct {
		difficulty string
		want       time.Duration
	}{
		{"easy", 200 * time.Millisecond},
		{"normal", 150 * time.Millisecond},
		{"hard", 100 * time.Millisecond},
		{"extreme", 75 * time.Millisecond},
		{"unheard-of", 150 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			g, clock, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
			g.Start(tt.difficulty)
			assert.Equal(t, tt.want, g.Run().TickInterval)
			assert.Equal(t, tt.want, clock.Interval())
		})
	}
}

func TestStepIsNoopWhileStationaryOrIdle(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))

	assert.Equal(t, StepResult{}, g.Step())
	assert.False(t, g.SetDirection(DirRight), "direction must be ignored while idle")

	g.Start(config.DifficultyNormal)
	before := g.Snapshot()
	assert.Equal(t, StepResult{}, g.Step())
	assert.Equal(t, before, g.Snapshot())
}

func TestFirstMoveScenario(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)

	require.True(t, g.SetDirection(DirRight))
	res := g.Step()

	assert.Equal(t, StepResult{}, res)
	snap := g.Snapshot()
	assert.Equal(t, []Point{{X: 11, Y: 10}}, snap.Snake)
	assert.Equal(t, StateRunning, snap.State)
}

func TestHeadAdvancesLinearly(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)
	require.True(t, g.SetDirection(DirDown))

	start := g.Snapshot().Snake[0]
	for n := 1; n <= 9; n++ {
		res := g.Step()
		require.False(t, res.Collided, "step %d", n)
		assert.Equal(t, Point{X: start.X, Y: start.Y + n}, g.Snapshot().Snake[0])
	}

	// (10,19) is the last row; the next step hits the wall
	res := g.Step()
	assert.True(t, res.Collided)
	assert.Equal(t, StateOver, g.State())
}

func TestWallCollisionEndsRun(t *testing.T) {
	g, clock, events := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)

	g.snake = NewSnakeFrom(Point{X: 19, Y: 5}, Point{X: 18, Y: 5}, Point{X: 17, Y: 5})
	g.direction = DirRight
	g.lastMoveDir = DirRight

	res := g.Step()
	assert.True(t, res.Collided)
	assert.Equal(t, StateOver, g.State())
	assert.False(t, clock.Running())

	snap := g.Snapshot()
	require.NotNil(t, snap.CrashPoint)
	assert.Equal(t, Point{X: 20, Y: 5}, *snap.CrashPoint)
	assert.Len(t, snap.Snake, 3, "the body is not moved on collision")

	require.Len(t, events.over, 1)
	assert.False(t, events.over[0].Won)

	// Further ticks do nothing
	assert.Equal(t, StepResult{}, g.Step())
	assert.Len(t, events.over, 1)
}

func TestMoveOntoTailCollides(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)

	// Square loop: the head moving down lands on the current tail
	g.snake = NewSnakeFrom(Point{X: 5, Y: 5}, Point{X: 6, Y: 5}, Point{X: 6, Y: 6}, Point{X: 5, Y: 6})
	g.lastMoveDir = DirLeft
	require.True(t, g.SetDirection(DirDown))

	res := g.Step()
	assert.True(t, res.Collided)
	assert.Equal(t, StateOver, g.State())
}

func TestEatingGrowsAndScores(t *testing.T) {
	g, _, events := newTestGame(t, 20, foodAt(Point{X: 11, Y: 10}, Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)
	require.True(t, g.SetDirection(DirRight))

	res := g.Step()
	assert.True(t, res.Ate)
	assert.False(t, res.LeveledUp)

	snap := g.Snapshot()
	assert.Equal(t, []Point{{X: 11, Y: 10}, {X: 10, Y: 10}}, snap.Snake)
	assert.Equal(t, 10, snap.Score)
	assert.Equal(t, 1, snap.FoodEaten)
	assert.Equal(t, Point{X: 0, Y: 0}, snap.Food)

	require.Len(t, events.food, 1)
	assert.Equal(t, FoodEvent{Pos: Point{X: 11, Y: 10}, Score: 10, FoodEaten: 1}, events.food[0])

	// A normal step keeps the length
	g.Step()
	assert.Len(t, g.Snapshot().Snake, 2)
}

func TestLevelUpEveryFiveFoods(t *testing.T) {
	var path []Point
	for x := 11; x <= 17; x++ {
		path = append(path, Point{X: x, Y: 10})
	}
	g, clock, events := newTestGame(t, 20, foodAt(path...))
	g.Start(config.DifficultyNormal)
	require.True(t, g.SetDirection(DirRight))

	for i := 1; i <= 4; i++ {
		res := g.Step()
		require.True(t, res.Ate)
		require.False(t, res.LeveledUp, "food %d", i)
	}

	res := g.Step()
	assert.True(t, res.Ate)
	assert.True(t, res.LeveledUp)

	run := g.Run()
	assert.Equal(t, 2, run.Level)
	assert.Equal(t, 5, run.FoodEaten)
	assert.Equal(t, 50, run.Score)
	assert.Equal(t, 135*time.Millisecond, run.TickInterval)

	assert.Equal(t, []time.Duration{150 * time.Millisecond, 135 * time.Millisecond}, clock.Intervals())
	require.Len(t, events.levels, 1)
	assert.Equal(t, LevelEvent{Level: 2, TickInterval: 135 * time.Millisecond}, events.levels[0])
	assert.Len(t, events.food, 5)
}

func TestSpeedUpIsFlooredAndMonotonic(t *testing.T) {
	rules := config.DefaultRules()
	rules.FoodPerLevel = 1

	var path []Point
	for x := 11; x <= 19; x++ {
		path = append(path, Point{X: x, Y: 10})
	}
	g, _, _ := newTestGame(t, 20, foodAt(path...), WithRules(rules))
	g.Start(config.DifficultyExtreme)
	require.True(t, g.SetDirection(DirRight))

	prev := g.Run().TickInterval
	for i := 0; i < 8; i++ {
		res := g.Step()
		require.True(t, res.LeveledUp)
		cur := g.Run().TickInterval
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 50*time.Millisecond)
		prev = cur
	}
	assert.Equal(t, 50*time.Millisecond, prev)
	assert.Equal(t, 9, g.Run().Level)
}

func TestSetDirectionRejectsReversal(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)

	require.True(t, g.SetDirection(DirRight))
	assert.False(t, g.SetDirection(DirLeft), "reverse before the first move")
	assert.False(t, g.SetDirection(DirRight), "same direction is not a change")
	g.Step()

	assert.False(t, g.SetDirection(DirLeft))
	assert.False(t, g.SetDirection(DirNone))
	assert.False(t, g.SetDirection(Point{X: 1, Y: 1}))

	// Two turns inside one tick: the last valid one wins, but neither may
	// reverse the direction the snake actually moved in.
	assert.True(t, g.SetDirection(DirUp))
	assert.False(t, g.SetDirection(DirLeft))
	assert.True(t, g.SetDirection(DirDown))
	assert.Equal(t, DirDown, g.Direction())

	g.Step()
	assert.Equal(t, Point{X: 11, Y: 11}, g.Snapshot().Snake[0])
}

func TestDirectionNeverReversesAcrossTicks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g, _, _ := newTestGame(t, 20, rng)
	g.Start(config.DifficultyNormal)
	g.SetDirection(DirRight)

	dirs := []Point{DirUp, DirDown, DirLeft, DirRight}
	for tick := 0; tick < 200 && g.State() == StateRunning; tick++ {
		prev := g.lastMoveDir
		for k := 0; k < 3; k++ {
			g.SetDirection(dirs[rng.Intn(len(dirs))])
		}
		if prev != DirNone {
			assert.NotEqual(t, Point{X: -prev.X, Y: -prev.Y}, g.Direction(), "tick %d", tick)
		}
		g.Step()
		assertDistinct(t, g.Snapshot().Snake)
	}
}

func assertDistinct(t *testing.T, body []Point) {
	t.Helper()
	seen := make(map[Point]bool, len(body))
	for _, p := range body {
		if seen[p] {
			t.Fatalf("segment %v repeated in %v", p, body)
		}
		seen[p] = true
	}
}

func TestPauseStopsSteps(t *testing.T) {
	g, clock, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyHard)
	require.True(t, g.SetDirection(DirRight))

	require.True(t, g.Pause())
	assert.Equal(t, StatePaused, g.State())
	assert.False(t, clock.Running())
	assert.False(t, clock.Fire())

	before := g.Snapshot()
	assert.Equal(t, StepResult{}, g.Step())
	assert.Equal(t, before, g.Snapshot())
	assert.False(t, g.SetDirection(DirUp))
	assert.False(t, g.Pause())

	require.True(t, g.Resume())
	assert.Equal(t, StateRunning, g.State())
	assert.True(t, clock.Running())
	assert.Equal(t, 100*time.Millisecond, clock.Interval())
	assert.False(t, g.Resume())

	g.Step()
	assert.Equal(t, Point{X: 11, Y: 10}, g.Snapshot().Snake[0])
}

func TestTogglePause(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	assert.False(t, g.TogglePause())

	g.Start(config.DifficultyNormal)
	assert.True(t, g.TogglePause())
	assert.Equal(t, StatePaused, g.State())
	assert.True(t, g.TogglePause())
	assert.Equal(t, StateRunning, g.State())
}

// script is a direction change applied before a given step
type script map[int]Point

func play(g *Game, turns script, from, to int) {
	for i := from; i < to; i++ {
		if d, ok := turns[i]; ok {
			g.SetDirection(d)
		}
		g.Step()
	}
}

func TestPauseResumeIsTransparent(t *testing.T) {
	turns := script{0: DirRight, 5: DirUp, 9: DirLeft, 15: DirDown, 22: DirRight, 30: DirUp}

	a, _, _ := newTestGame(t, 20, rand.New(rand.NewSource(42)))
	a.Start(config.DifficultyNormal)
	play(a, turns, 0, 12)
	a.Pause()
	a.Resume()
	play(a, turns, 12, 40)

	b, _, _ := newTestGame(t, 20, rand.New(rand.NewSource(42)))
	b.Start(config.DifficultyNormal)
	play(b, turns, 0, 40)

	assert.Equal(t, b.Snapshot(), a.Snapshot())
}

func TestFillingTheBoardWins(t *testing.T) {
	// 2×2 board, start at (1,1)
	rng := foodAt(Point{X: 1, Y: 0}, Point{X: 0, Y: 0}, Point{X: 0, Y: 1})
	g, clock, events := newTestGame(t, 2, rng)
	g.Start(config.DifficultyNormal)
	require.Equal(t, Point{X: 1, Y: 1}, g.Snapshot().Snake[0])

	require.True(t, g.SetDirection(DirUp))
	require.True(t, g.Step().Ate)
	require.True(t, g.SetDirection(DirLeft))
	require.True(t, g.Step().Ate)
	require.True(t, g.SetDirection(DirDown))

	res := g.Step()
	assert.True(t, res.Ate)
	assert.True(t, res.Won)
	assert.Equal(t, StateWon, g.State())
	assert.False(t, clock.Running())
	assert.Len(t, g.Snapshot().Snake, 4)

	require.Len(t, events.over, 1)
	assert.True(t, events.over[0].Won)
	assert.Equal(t, 30, events.over[0].Score)
}

func TestRestartDiscardsPreviousRun(t *testing.T) {
	g, clock, _ := newTestGame(t, 20, foodAt(Point{X: 11, Y: 10}, Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)
	g.SetDirection(DirRight)
	g.Step()
	old := g.Snapshot()

	g.Start(config.DifficultyEasy)
	snap := g.Snapshot()
	assert.Equal(t, []Point{{X: 10, Y: 10}}, snap.Snake)
	assert.Equal(t, 0, snap.Score)
	assert.Equal(t, 200.0, snap.TickIntervalMs)
	assert.Len(t, old.Snake, 2, "earlier snapshots are not aliased")

	starts, stops := clock.Counts()
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, stops)
}

func TestResizeAppliesOnNextStart(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)

	g.Resize(NewGrid(30))
	assert.Equal(t, 20, g.Grid().Size)

	g.Start(config.DifficultyNormal)
	assert.Equal(t, 30, g.Grid().Size)
	assert.Equal(t, Point{X: 15, Y: 15}, g.Snapshot().Snake[0])
}

func TestDurationExcludesPause(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clockNow := func() time.Time { return now }

	g, _, events := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}), WithNow(clockNow))
	g.Start(config.DifficultyNormal)
	g.SetDirection(DirUp)

	now = now.Add(20 * time.Second)
	g.Pause()
	now = now.Add(time.Minute)
	g.Resume()
	now = now.Add(15500 * time.Millisecond)

	for g.State() == StateRunning {
		g.Step()
	}

	require.Len(t, events.over, 1)
	assert.Equal(t, 35, events.over[0].DurationSeconds)
	assert.Equal(t, "normal", events.over[0].Difficulty)
	assert.Equal(t, now, events.over[0].EndedAt)
}

func TestSnapshotIsACopy(t *testing.T) {
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 0, Y: 0}))
	g.Start(config.DifficultyNormal)

	snap := g.Snapshot()
	snap.Snake[0] = Point{X: 99, Y: 99}
	assert.Equal(t, Point{X: 10, Y: 10}, g.Snapshot().Snake[0])
}

func TestEventLogDrain(t *testing.T) {
	var log EventLog
	g, _, _ := newTestGame(t, 20, foodAt(Point{X: 11, Y: 10}, Point{X: 0, Y: 0}))
	g.listener = Listeners{&log}
	g.Start(config.DifficultyNormal)
	g.SetDirection(DirRight)
	g.Step()

	events := log.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, "food", events[0].Type)
	assert.Empty(t, log.Drain())
}

func TestListenerFuncsFanOut(t *testing.T) {
	var ate, over int
	funcs := ListenerFuncs{
		OnFoodEaten: func(FoodEvent) { ate++ },
		OnGameOver:  func(RunSummary) { over++ },
	}
	g, _, rec := newTestGame(t, 20, foodAt(Point{X: 11, Y: 10}, Point{X: 0, Y: 0}))
	g.listener = Listeners{funcs, rec}
	g.Start(config.DifficultyNormal)
	g.SetDirection(DirRight)

	for g.State() == StateRunning {
		g.Step()
	}
	assert.Equal(t, 1, ate)
	assert.Equal(t, 1, over)
	assert.Len(t, rec.food, 1)
	assert.Len(t, rec.over, 1)
}
