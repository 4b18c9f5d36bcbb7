package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

func main() {
	configPath := flag.String("config", "snake.yaml", "path to the YAML config file")
	overwrite := flag.Bool("overwrite", false, "replace records already in the database")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: import_legacy [flags] export.json...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	cfg.InitLogging(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}
	defer db.Close()

	im := &Importer{db: db, overwrite: *overwrite}
	ctx := context.Background()
	count := 0
	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("reading export")
			continue
		}
		export, err := ParseExport(data)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("skipping file")
			continue
		}
		keys, err := im.Import(ctx, export)
		count += len(keys)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("import failed")
			continue
		}
		log.Info().Str("file", path).Strs("keys", keys).Msg("imported")
	}

	fmt.Printf("✅ Import complete! %d records written to %s\n", count, cfg.DatabasePath)
}
