package store

import "github.com/tielmuzi/snake-game-mz92/pkg/config"

// Settings are the player's preferences. JSON keys match the records the
// browser version kept in local storage.
type Settings struct {
	Difficulty     string `json:"difficulty"`
	Theme          string `json:"theme"`
	Volume         int    `json:"volume"`
	HighContrast   bool   `json:"highContrast"`
	VisualPatterns bool   `json:"visualPatterns"`
}

// DefaultSettings returns the settings of a fresh install
func DefaultSettings() Settings {
	return Settings{
		Difficulty: config.DifficultyNormal,
		Theme:      config.ThemeLight,
		Volume:     config.DefaultVolume,
	}
}

// Normalized clamps the volume and replaces empty names with defaults.
// Unknown difficulty names are kept; the difficulty policy falls back on
// its own.
func (s Settings) Normalized() Settings {
	def := DefaultSettings()
	if s.Difficulty == "" {
		s.Difficulty = def.Difficulty
	}
	if s.Theme == "" {
		s.Theme = def.Theme
	}
	if s.Volume < 0 {
		s.Volume = 0
	}
	if s.Volume > config.MaxVolume {
		s.Volume = config.MaxVolume
	}
	return s
}

// NextDifficulty cycles to the following difficulty in menu order
func (s Settings) NextDifficulty() Settings {
	s.Difficulty = cycle(config.Difficulties, s.Difficulty)
	return s
}

// NextTheme cycles to the following theme in menu order
func (s Settings) NextTheme() Settings {
	s.Theme = cycle(config.Themes, s.Theme)
	return s
}

// AdjustVolume changes the volume by delta, clamped to 0..MaxVolume
func (s Settings) AdjustVolume(delta int) Settings {
	s.Volume += delta
	return s.Normalized()
}

func cycle(options []string, current string) string {
	for i, o := range options {
		if o == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
