package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/game"
	"github.com/tielmuzi/snake-game-mz92/pkg/menu"
)

// TerminalRenderer handles terminal-based rendering
type TerminalRenderer struct {
	out    io.Writer
	board  [][]int
	buffer strings.Builder
}

// Cell types for the board
const (
	cellEmpty = iota
	cellWall
	cellHead
	cellBody
	cellFood
	cellCrash
)

// NewTerminalRenderer creates a new terminal renderer writing to out
func NewTerminalRenderer(out io.Writer) *TerminalRenderer {
	return &TerminalRenderer{out: out}
}

// clearScreen clears the terminal using ANSI escape codes
func (r *TerminalRenderer) clearScreen() {
	r.buffer.WriteString("\033[H\033[2J\033[3J")
}

// ShowCursor shows the cursor (call on exit)
func (r *TerminalRenderer) ShowCursor() {
	fmt.Fprint(r.out, "\033[?25h")
}

// HideCursor hides the cursor (call on start)
func (r *TerminalRenderer) HideCursor() {
	fmt.Fprint(r.out, "\033[?25l")
}

// Render draws the current screen
func (r *TerminalRenderer) Render(v menu.View) error {
	r.buffer.Reset()
	r.clearScreen()
	r.buffer.WriteString("\n  🐍 SNAKE GAME - MZ92 🐍\n\n")

	switch v.Screen {
	case menu.ScreenWelcome:
		r.buffer.WriteString("  Press any key to continue\n")
	case menu.ScreenMenu:
		r.writeList(menu.MenuItems, v.Cursor)
		r.buffer.WriteString("\n  ↑/↓ to choose, Enter to select, Q to quit\n")
	case menu.ScreenSettings:
		r.writeSettings(v)
	case menu.ScreenStatistics:
		r.writeStatistics(v)
	case menu.ScreenCredits:
		r.buffer.WriteString("  Snake Game - MZ92 Edition\n")
		r.buffer.WriteString("  Original game by Salatiel Muzi\n\n")
		r.buffer.WriteString("  Esc to go back\n")
	case menu.ScreenGame, menu.ScreenPaused, menu.ScreenGameOver:
		r.writeGame(v)
	}

	_, err := io.WriteString(r.out, r.buffer.String())
	return err
}

func (r *TerminalRenderer) writeList(items []string, cursor int) {
	for i, item := range items {
		marker := "   "
		if i == cursor {
			marker = " ▶ "
		}
		r.buffer.WriteString("  " + marker + item + "\n")
	}
}

func (r *TerminalRenderer) writeSettings(v menu.View) {
	s := v.Settings
	values := []string{
		s.Difficulty,
		s.Theme,
		fmt.Sprintf("%d%%", s.Volume),
		onOff(s.HighContrast),
		onOff(s.VisualPatterns),
	}
	rows := make([]string, len(menu.SettingsRows))
	for i, label := range menu.SettingsRows {
		rows[i] = fmt.Sprintf("%-16s %s", label, values[i])
	}
	r.writeList(rows, v.Cursor)
	r.buffer.WriteString("\n  ←/→ to change, Esc to go back\n")
}

func (r *TerminalRenderer) writeStatistics(v menu.View) {
	st := v.Stats
	fmt.Fprintf(&r.buffer, "  Max score:     %d\n", st.MaxScore)
	fmt.Fprintf(&r.buffer, "  Food eaten:    %d\n", st.TotalFood)
	fmt.Fprintf(&r.buffer, "  Time played:   %dm\n", st.TotalMinutes())
	fmt.Fprintf(&r.buffer, "  Games played:  %d\n", st.GamesPlayed)
	r.buffer.WriteString("\n  Esc to go back\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (r *TerminalRenderer) resetBoard(size int) {
	n := size + 2
	if len(r.board) != n {
		// Pre-allocate board to reduce GC pressure
		r.board = make([][]int, n)
		for i := range r.board {
			r.board[i] = make([]int, n)
		}
	}
	for y := range r.board {
		for x := range r.board[y] {
			r.board[y][x] = cellEmpty
		}
	}
}

func (r *TerminalRenderer) writeGame(v menu.View) {
	g := v.Game
	size := g.GridSize
	r.resetBoard(size)

	// Draw walls around the playfield
	last := size + 1
	for i := 0; i <= last; i++ {
		r.board[0][i] = cellWall
		r.board[last][i] = cellWall
		r.board[i][0] = cellWall
		r.board[i][last] = cellWall
	}

	// Board cells are offset by one for the wall
	set := func(p game.Point, cell int) {
		if p.X >= -1 && p.X <= size && p.Y >= -1 && p.Y <= size {
			r.board[p.Y+1][p.X+1] = cell
		}
	}

	if g.State != game.StateIdle {
		set(g.Food, cellFood)
	}
	for i := len(g.Snake) - 1; i >= 0; i-- {
		if i == 0 {
			set(g.Snake[i], cellHead)
		} else {
			set(g.Snake[i], cellBody)
		}
	}
	if g.CrashPoint != nil {
		set(*g.CrashPoint, cellCrash)
	}

	fmt.Fprintf(&r.buffer, "  Score: %d  |  Level: %d  |  Food: %d  |  Speed: %.0fms  |  %s\n\n",
		g.Score, g.Level, g.FoodEaten, g.TickIntervalMs, g.Difficulty)

	palette := PaletteFor(v.Settings)
	patterns := v.Settings.VisualPatterns
	for _, row := range r.board {
		r.buffer.WriteString("  ")
		for _, cell := range row {
			switch cell {
			case cellEmpty:
				r.buffer.WriteString(bg(palette.Background) + config.CharEmpty + ansiReset)
			case cellWall:
				r.buffer.WriteString(config.CharWall)
			case cellHead:
				r.buffer.WriteString(bg(palette.Snake) + config.CharTile + ansiReset)
			case cellBody:
				tile := config.CharEmpty
				if patterns {
					tile = config.CharDots
				}
				r.buffer.WriteString(bg(palette.Snake) + tile + ansiReset)
			case cellFood:
				tile := config.CharEmpty
				if patterns {
					tile = config.CharFood
				}
				r.buffer.WriteString(bg(palette.Food) + tile + ansiReset)
			case cellCrash:
				r.buffer.WriteString(config.CharCrash)
			}
		}
		r.buffer.WriteString("\n")
	}

	r.buffer.WriteString("\n  Use WASD or Arrow keys to move\n")
	r.buffer.WriteString("  Space/Esc to pause, Q to quit\n")

	switch v.Screen {
	case menu.ScreenPaused:
		r.buffer.WriteString("\n  ⏸️  PAUSED - Space to continue, Esc for menu\n")
	case menu.ScreenGameOver:
		if g.State == game.StateWon {
			r.buffer.WriteString("\n  🏆 BOARD FILLED! Press R to play again or Esc for menu\n")
		} else {
			r.buffer.WriteString("\n  💀 GAME OVER! Press R to restart or Esc for menu\n")
		}
	}
}
