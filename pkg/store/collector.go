package store

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/game"
)

// Collector folds finished runs into the store. It is a game.Listener.
type Collector struct {
	store    *Store
	timeout  time.Duration
	onUpdate func(Statistics)
}

// NewCollector creates a collector writing to s. onUpdate, if set, receives
// the statistics after every recorded run.
func NewCollector(s *Store, onUpdate func(Statistics)) *Collector {
	return &Collector{store: s, timeout: 5 * time.Second, onUpdate: onUpdate}
}

func (c *Collector) FoodEaten(game.FoodEvent) {}

func (c *Collector) LevelUp(game.LevelEvent) {}

func (c *Collector) GameOver(run game.RunSummary) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.store.RecordRun(ctx, run)
	if err != nil {
		log.Error().Err(err).Int("score", run.Score).Msg("recording run")
		return
	}
	log.Info().
		Int("score", run.Score).
		Int("level", run.Level).
		Int("food", run.FoodEaten).
		Int("seconds", run.DurationSeconds).
		Int("gamesPlayed", stats.GamesPlayed).
		Msg("run recorded")

	if c.onUpdate != nil {
		c.onUpdate(stats)
	}
}
