// Package audio turns simulation events into sound cues.
package audio

import (
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/game"
)

// Cue identifies a sound effect
type Cue string

const (
	CueStart    Cue = "start"
	CueEat      Cue = "eat"
	CueLevel    Cue = "level"
	CuePause    Cue = "pause"
	CueContinue Cue = "continue"
	CueDead     Cue = "dead"
)

// Player plays cues at a volume between 0 and 100
type Player interface {
	Play(cue Cue, volume int)
}

// BellPlayer rings the terminal bell for cues worth noticing
type BellPlayer struct {
	mu  sync.Mutex
	out io.Writer
}

// NewBellPlayer creates a player writing BEL to out
func NewBellPlayer(out io.Writer) *BellPlayer {
	return &BellPlayer{out: out}
}

func (p *BellPlayer) Play(cue Cue, volume int) {
	if volume <= 0 {
		return
	}
	switch cue {
	case CueEat, CueLevel, CueDead:
	default:
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := io.WriteString(p.out, "\a"); err != nil {
		log.Debug().Err(err).Str("cue", string(cue)).Msg("bell")
	}
}

// Cues is a game.Listener that plays the matching cue for each event
type Cues struct {
	player Player
	volume func() int
}

// NewCues creates a cue listener. volume is read on every event so
// settings changes apply immediately.
func NewCues(player Player, volume func() int) *Cues {
	return &Cues{player: player, volume: volume}
}

// Play plays cue at the current volume
func (c *Cues) Play(cue Cue) {
	c.player.Play(cue, c.volume())
}

func (c *Cues) FoodEaten(game.FoodEvent) { c.Play(CueEat) }

func (c *Cues) LevelUp(game.LevelEvent) { c.Play(CueLevel) }

func (c *Cues) GameOver(game.RunSummary) { c.Play(CueDead) }
