package input

import (
	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog/log"
)

// KeyboardHandler handles keyboard input
type KeyboardHandler struct {
	inputChan chan KeyInput
	done      chan struct{}
}

// KeyInput represents a keyboard input event
type KeyInput struct {
	Char rune
	Key  keyboard.Key
}

// NewKeyboardHandler creates a new keyboard input handler
func NewKeyboardHandler() *KeyboardHandler {
	return &KeyboardHandler{
		inputChan: make(chan KeyInput),
		done:      make(chan struct{}),
	}
}

// Start begins listening for keyboard input
func (h *KeyboardHandler) Start() error {
	if err := keyboard.Open(); err != nil {
		return err
	}

	go func() {
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				log.Debug().Err(err).Msg("keyboard reader stopped")
				return
			}
			select {
			case h.inputChan <- KeyInput{Char: char, Key: key}:
			case <-h.done:
				return
			}
		}
	}()

	return nil
}

// Stop stops the keyboard handler
func (h *KeyboardHandler) Stop() {
	close(h.done)
	keyboard.Close()
}

// GetInputChan returns the input channel
func (h *KeyboardHandler) GetInputChan() <-chan KeyInput {
	return h.inputChan
}

// Parse maps a key to a command
func Parse(input KeyInput) Command {
	// Handle special keys
	switch input.Key {
	case keyboard.KeyArrowUp:
		return CmdUp
	case keyboard.KeyArrowDown:
		return CmdDown
	case keyboard.KeyArrowLeft:
		return CmdLeft
	case keyboard.KeyArrowRight:
		return CmdRight
	case keyboard.KeySpace:
		return CmdPause
	case keyboard.KeyEsc:
		return CmdBack
	case keyboard.KeyEnter:
		return CmdConfirm
	case keyboard.KeyCtrlC:
		return CmdQuit
	}

	// Handle WASD and letter keys
	switch input.Char {
	case 'w', 'W':
		return CmdUp
	case 's', 'S':
		return CmdDown
	case 'a', 'A':
		return CmdLeft
	case 'd', 'D':
		return CmdRight
	case 'p', 'P', ' ':
		return CmdPause
	case 'r', 'R':
		return CmdRestart
	case 'q', 'Q':
		return CmdQuit
	}

	return CmdNone
}
