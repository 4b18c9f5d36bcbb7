package input

import (
	"strings"

	"github.com/tielmuzi/snake-game-mz92/pkg/game"
)

// Command is a front-end independent player intent
type Command int

const (
	CmdNone Command = iota
	CmdUp
	CmdDown
	CmdLeft
	CmdRight
	CmdPause   // Space / P
	CmdResume  // Explicit resume (web clients)
	CmdStart   // Start a run from the menu
	CmdRestart // Start over after game over
	CmdConfirm // Enter
	CmdBack    // Escape
	CmdQuit
)

var commandNames = map[Command]string{
	CmdNone:    "none",
	CmdUp:      "up",
	CmdDown:    "down",
	CmdLeft:    "left",
	CmdRight:   "right",
	CmdPause:   "pause",
	CmdResume:  "resume",
	CmdStart:   "start",
	CmdRestart: "restart",
	CmdConfirm: "confirm",
	CmdBack:    "back",
	CmdQuit:    "quit",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// Direction returns the movement delta of a direction command
func (c Command) Direction() (game.Point, bool) {
	switch c {
	case CmdUp:
		return game.DirUp, true
	case CmdDown:
		return game.DirDown, true
	case CmdLeft:
		return game.DirLeft, true
	case CmdRight:
		return game.DirRight, true
	}
	return game.DirNone, false
}

// ParseAction maps a client action name to a command. Button ids of the
// browser menu (start-game, back-to-menu, ...) are accepted too.
func ParseAction(action string) Command {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "up", "arrowup", "w":
		return CmdUp
	case "down", "arrowdown", "s":
		return CmdDown
	case "left", "arrowleft", "a":
		return CmdLeft
	case "right", "arrowright", "d":
		return CmdRight
	case "pause", "escape", " ":
		return CmdPause
	case "resume", "resume-game":
		return CmdResume
	case "start", "start-game":
		return CmdStart
	case "restart", "restart-game":
		return CmdRestart
	case "back", "back-to-menu":
		return CmdBack
	case "quit":
		return CmdQuit
	}
	return CmdNone
}
