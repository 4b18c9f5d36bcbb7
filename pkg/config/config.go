package config

import "time"

// Play surface dimensions
const (
	SurfaceSize = 400 // Play surface edge in pixels
	TileSize    = 20  // Tile edge in pixels
	GridSize    = SurfaceSize / TileSize
)

// Difficulty names
const (
	DifficultyEasy    = "easy"
	DifficultyNormal  = "normal"
	DifficultyHard    = "hard"
	DifficultyExtreme = "extreme"
)

// Speed settings
const (
	EasyInterval    = 200 * time.Millisecond
	NormalInterval  = 150 * time.Millisecond
	HardInterval    = 100 * time.Millisecond
	ExtremeInterval = 75 * time.Millisecond

	DefaultInterval = NormalInterval
	MinTickInterval = 50 * time.Millisecond // Speed-up never goes below this
	SpeedUpFactor   = 0.9                   // Applied to the interval on level-up
)

// Scoring and progression
const (
	PointsPerFood = 10
	FoodPerLevel  = 5 // Level increases every FoodPerLevel foods
)

// Theme names
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeNeon  = "neon"
)

// Volume settings
const (
	DefaultVolume = 50
	MaxVolume     = 100
	VolumeStep    = 10
)

// Difficulties lists the selectable difficulties in menu order.
var Difficulties = []string{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyExtreme}

// Themes lists the selectable themes in menu order.
var Themes = []string{ThemeLight, ThemeDark, ThemeNeon}

// Policy maps a difficulty name to the initial tick interval of a run.
type Policy map[string]time.Duration

// DefaultPolicy returns the stock difficulty table.
func DefaultPolicy() Policy {
	return Policy{
		DifficultyEasy:    EasyInterval,
		DifficultyNormal:  NormalInterval,
		DifficultyHard:    HardInterval,
		DifficultyExtreme: ExtremeInterval,
	}
}

// IntervalFor returns the tick interval for difficulty, falling back to
// DefaultInterval for unknown names.
func (p Policy) IntervalFor(difficulty string) time.Duration {
	if d, ok := p[difficulty]; ok && d > 0 {
		return d
	}
	return DefaultInterval
}

// Rules holds the progression knobs of a run.
type Rules struct {
	PointsPerFood int
	FoodPerLevel  int
	SpeedUpFactor float64
	MinInterval   time.Duration
	Policy        Policy
}

// DefaultRules returns the stock progression rules.
func DefaultRules() Rules {
	return Rules{
		PointsPerFood: PointsPerFood,
		FoodPerLevel:  FoodPerLevel,
		SpeedUpFactor: SpeedUpFactor,
		MinInterval:   MinTickInterval,
		Policy:        DefaultPolicy(),
	}
}

// Characters for terminal rendering
const (
	CharEmpty = "  " // Two spaces to match emoji width
	CharWall  = "⬜"
	CharHead  = "🟢"
	CharBody  = "🟩"
	CharFood  = "🔴"
	CharCrash = "💥"
	CharTile  = "██"
	CharDots  = "░░"
)
