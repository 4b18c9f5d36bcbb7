// Package menu implements screen navigation around a game: welcome,
// main menu, play, pause, game over, settings, statistics and credits.
package menu

import (
	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/audio"
	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/game"
	"github.com/tielmuzi/snake-game-mz92/pkg/input"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

// Screen is the screen currently shown
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenMenu
	ScreenGame
	ScreenPaused
	ScreenGameOver
	ScreenSettings
	ScreenStatistics
	ScreenCredits
)

func (s Screen) String() string {
	switch s {
	case ScreenWelcome:
		return "welcome"
	case ScreenMenu:
		return "menu"
	case ScreenGame:
		return "game"
	case ScreenPaused:
		return "paused"
	case ScreenGameOver:
		return "gameOver"
	case ScreenSettings:
		return "settings"
	case ScreenStatistics:
		return "statistics"
	case ScreenCredits:
		return "credits"
	default:
		return "unknown"
	}
}

// Main menu entries
const (
	ItemStart = iota
	ItemSettings
	ItemStatistics
	ItemCredits
)

// MenuItems are the labels of the main menu
var MenuItems = []string{"Start game", "Settings", "Statistics", "Credits"}

// Settings rows
const (
	RowDifficulty = iota
	RowTheme
	RowVolume
	RowHighContrast
	RowVisualPatterns
)

// SettingsRows are the labels of the settings screen
var SettingsRows = []string{"Difficulty", "Theme", "Volume", "High contrast", "Visual patterns"}

// SettingsSaver persists settings after every change
type SettingsSaver func(store.Settings) error

// Navigator routes commands to the current screen. Like Game it is driven
// from a single goroutine.
type Navigator struct {
	game     *game.Game
	screen   Screen
	cursor   int
	settings store.Settings
	stats    store.Statistics
	save     SettingsSaver
	cues     *audio.Cues
	quit     bool
}

// New creates a navigator on the welcome screen
func New(g *game.Game, settings store.Settings, stats store.Statistics, save SettingsSaver, cues *audio.Cues) *Navigator {
	return &Navigator{
		game:     g,
		screen:   ScreenWelcome,
		settings: settings.Normalized(),
		stats:    stats,
		save:     save,
		cues:     cues,
	}
}

// View is everything a renderer needs to draw the current screen
type View struct {
	Screen   Screen
	Cursor   int
	Settings store.Settings
	Stats    store.Statistics
	Game     game.Snapshot
}

// View returns the current view
func (n *Navigator) View() View {
	return View{
		Screen:   n.screen,
		Cursor:   n.cursor,
		Settings: n.settings,
		Stats:    n.stats,
		Game:     n.game.Snapshot(),
	}
}

// Screen returns the current screen
func (n *Navigator) Screen() Screen {
	return n.screen
}

// Settings returns the current settings
func (n *Navigator) Settings() store.Settings {
	return n.settings
}

// Quit reports whether the player asked to leave
func (n *Navigator) Quit() bool {
	return n.quit
}

// SetStatistics replaces the statistics shown on the statistics screen
func (n *Navigator) SetStatistics(s store.Statistics) {
	n.stats = s
}

// Tick advances the game by one step and follows it to the game over
// screen when the run ends.
func (n *Navigator) Tick() game.StepResult {
	res := n.game.Step()
	if n.screen == ScreenGame && n.game.State().Finished() {
		n.show(ScreenGameOver)
	}
	return res
}

// Handle applies a command to the current screen
func (n *Navigator) Handle(cmd input.Command) {
	if cmd == input.CmdNone {
		return
	}
	if cmd == input.CmdQuit {
		n.quit = true
		return
	}

	switch n.screen {
	case ScreenWelcome:
		n.show(ScreenMenu)
	case ScreenMenu:
		n.handleMenu(cmd)
	case ScreenGame:
		n.handleGame(cmd)
	case ScreenPaused:
		n.handlePaused(cmd)
	case ScreenGameOver:
		switch cmd {
		case input.CmdRestart, input.CmdConfirm, input.CmdStart:
			n.startGame()
		case input.CmdBack:
			n.show(ScreenMenu)
		}
	case ScreenSettings:
		n.handleSettings(cmd)
	case ScreenStatistics, ScreenCredits:
		if cmd == input.CmdBack || cmd == input.CmdConfirm {
			n.show(ScreenMenu)
		}
	}
}

func (n *Navigator) show(s Screen) {
	n.screen = s
	n.cursor = 0
}

func (n *Navigator) moveCursor(cmd input.Command, rows int) bool {
	switch cmd {
	case input.CmdUp:
		n.cursor = (n.cursor + rows - 1) % rows
	case input.CmdDown:
		n.cursor = (n.cursor + 1) % rows
	default:
		return false
	}
	return true
}

func (n *Navigator) handleMenu(cmd input.Command) {
	if n.moveCursor(cmd, len(MenuItems)) {
		return
	}
	switch cmd {
	case input.CmdStart:
		n.startGame()
	case input.CmdConfirm:
		switch n.cursor {
		case ItemStart:
			n.startGame()
		case ItemSettings:
			n.show(ScreenSettings)
		case ItemStatistics:
			n.show(ScreenStatistics)
		case ItemCredits:
			n.show(ScreenCredits)
		}
	}
}

func (n *Navigator) startGame() {
	n.game.Start(n.settings.Difficulty)
	n.show(ScreenGame)
	n.play(audio.CueStart)
	log.Info().Str("difficulty", n.settings.Difficulty).Msg("run started")
}

func (n *Navigator) handleGame(cmd input.Command) {
	if dir, ok := cmd.Direction(); ok {
		n.game.SetDirection(dir)
		return
	}
	switch cmd {
	case input.CmdPause, input.CmdBack:
		if n.game.Pause() {
			n.show(ScreenPaused)
			n.play(audio.CuePause)
		}
	case input.CmdRestart:
		n.startGame()
	}
}

func (n *Navigator) handlePaused(cmd input.Command) {
	switch cmd {
	case input.CmdPause, input.CmdResume, input.CmdConfirm:
		if n.game.Resume() {
			n.show(ScreenGame)
			n.play(audio.CueContinue)
		}
	case input.CmdBack:
		n.show(ScreenMenu)
	}
}

func (n *Navigator) handleSettings(cmd input.Command) {
	if n.moveCursor(cmd, len(SettingsRows)) {
		return
	}

	next := n.settings
	switch cmd {
	case input.CmdBack:
		n.show(ScreenMenu)
		return
	case input.CmdLeft, input.CmdRight, input.CmdConfirm:
		switch n.cursor {
		case RowDifficulty:
			next = next.NextDifficulty()
		case RowTheme:
			next = next.NextTheme()
		case RowVolume:
			step := config.VolumeStep
			if cmd == input.CmdLeft {
				step = -step
			}
			next = next.AdjustVolume(step)
		case RowHighContrast:
			next.HighContrast = !next.HighContrast
		case RowVisualPatterns:
			next.VisualPatterns = !next.VisualPatterns
		}
	default:
		return
	}

	n.settings = next
	if n.save == nil {
		return
	}
	if err := n.save(next); err != nil {
		log.Error().Err(err).Msg("saving settings")
	}
}

func (n *Navigator) play(cue audio.Cue) {
	if n.cues != nil {
		n.cues.Play(cue)
	}
}
