package renderer

import (
	"fmt"
	"strconv"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

// Palette holds the flat tile colors of a theme
type Palette struct {
	Background string
	Snake      string
	Food       string
}

var palettes = map[string]Palette{
	config.ThemeLight: {Background: "#ffffff", Snake: "#4CAF50", Food: "#f44336"},
	config.ThemeDark:  {Background: "#121212", Snake: "#51cf66", Food: "#64338d"},
	config.ThemeNeon:  {Background: "#000000", Snake: "#00ffff", Food: "#ff00ff"},
}

var highContrast = Palette{Background: "#000000", Snake: "#ffff00", Food: "#ff0000"}

// PaletteFor returns the colors for settings. High contrast overrides the
// theme; unknown themes fall back to light.
func PaletteFor(s store.Settings) Palette {
	if s.HighContrast {
		return highContrast
	}
	if p, ok := palettes[s.Theme]; ok {
		return p
	}
	return palettes[config.ThemeLight]
}

// bg returns the ANSI 24-bit background escape for a #rrggbb color
func bg(hex string) string {
	r, g, b, err := parseHex(hex)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\033[48;2;%d;%d;%dm", r, g, b)
}

const ansiReset = "\033[0m"

func parseHex(hex string) (r, g, b uint8, err error) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, fmt.Errorf("bad color %q", hex)
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad color %q: %w", hex, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}
