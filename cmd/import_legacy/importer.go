package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

// LegacyExport is a dump of the browser's local storage. Each value may be
// the stored JSON text (a string) or the decoded object itself.
type LegacyExport struct {
	Settings json.RawMessage `json:"snakeGameSettings"`
	Stats    json.RawMessage `json:"snakeGameStats"`
}

// Importer writes legacy records into the store
type Importer struct {
	db        *store.Store
	overwrite bool
}

// Import stores whatever the export holds and returns the keys written.
// Keys already present are skipped unless overwrite is set.
func (im *Importer) Import(ctx context.Context, export LegacyExport) ([]string, error) {
	var imported []string

	if len(export.Settings) > 0 {
		// Saved fields override the defaults
		settings := store.DefaultSettings()
		if err := decodeValue(export.Settings, &settings); err != nil {
			return imported, fmt.Errorf("%s: %w", store.SettingsKey, err)
		}
		ok, err := im.shouldWrite(ctx, store.SettingsKey)
		if err != nil {
			return imported, err
		}
		if ok {
			if err := im.db.SaveSettings(ctx, settings.Normalized()); err != nil {
				return imported, err
			}
			imported = append(imported, store.SettingsKey)
		}
	}

	if len(export.Stats) > 0 {
		var stats store.Statistics
		if err := decodeValue(export.Stats, &stats); err != nil {
			return imported, fmt.Errorf("%s: %w", store.StatisticsKey, err)
		}
		ok, err := im.shouldWrite(ctx, store.StatisticsKey)
		if err != nil {
			return imported, err
		}
		if ok {
			if err := im.db.SaveStatistics(ctx, stats); err != nil {
				return imported, err
			}
			imported = append(imported, store.StatisticsKey)
		}
	}

	return imported, nil
}

func (im *Importer) shouldWrite(ctx context.Context, key string) (bool, error) {
	if im.overwrite {
		return true, nil
	}
	_, err := im.db.Get(ctx, key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return true, nil
	case err != nil:
		return false, err
	}
	log.Info().Str("key", key).Msg("already stored, skipping")
	return false, nil
}

// decodeValue accepts either a JSON object or a string holding one
func decodeValue(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		raw = []byte(text)
	}
	return json.Unmarshal(raw, dst)
}

// ParseExport reads either a combined export or a single record. A single
// record is recognised by its fields.
func ParseExport(data []byte) (LegacyExport, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return LegacyExport{}, fmt.Errorf("parsing export: %w", err)
	}

	var export LegacyExport
	_, hasSettings := fields[store.SettingsKey]
	_, hasStats := fields[store.StatisticsKey]
	switch {
	case hasSettings || hasStats:
		export.Settings = fields[store.SettingsKey]
		export.Stats = fields[store.StatisticsKey]
	case fields["gamesPlayed"] != nil || fields["maxScore"] != nil:
		export.Stats = data
	case fields["difficulty"] != nil || fields["theme"] != nil:
		export.Settings = data
	default:
		return export, errors.New("parsing export: no settings or statistics found")
	}
	return export, nil
}
