package store

import "github.com/tielmuzi/snake-game-mz92/pkg/game"

// Statistics aggregate every finished run. No field ever decreases.
type Statistics struct {
	MaxScore    int `json:"maxScore"`
	TotalFood   int `json:"totalFood"`
	TotalTime   int `json:"totalTime"` // seconds
	GamesPlayed int `json:"gamesPlayed"`
}

// Fold returns s updated with a finished run
func (s Statistics) Fold(run game.RunSummary) Statistics {
	if run.Score > s.MaxScore {
		s.MaxScore = run.Score
	}
	if run.FoodEaten > 0 {
		s.TotalFood += run.FoodEaten
	}
	if run.DurationSeconds > 0 {
		s.TotalTime += run.DurationSeconds
	}
	s.GamesPlayed++
	return s
}

// TotalMinutes returns the accumulated play time in whole minutes
func (s Statistics) TotalMinutes() int {
	return s.TotalTime / 60
}
