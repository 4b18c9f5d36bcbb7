package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/audio"
	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/game"
	"github.com/tielmuzi/snake-game-mz92/pkg/input"
	"github.com/tielmuzi/snake-game-mz92/pkg/menu"
	"github.com/tielmuzi/snake-game-mz92/pkg/renderer"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

func main() {
	configPath := flag.String("config", "snake.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("\n  Thanks for playing! 👋")
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logFile, err := cfg.OpenLogFile()
	if err != nil {
		return err
	}
	defer logFile.Close()
	cfg.InitLogging(logFile)

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	settings, err := db.LoadSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("stored settings unreadable, using defaults")
	}
	stats, err := db.LoadStatistics(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("stored statistics unreadable, starting fresh")
	}

	// The navigator is created after the game, but the listeners it feeds
	// only fire from Step, which runs after both exist.
	var nav *menu.Navigator
	cues := audio.NewCues(audio.NewBellPlayer(os.Stdout), func() int { return nav.Settings().Volume })
	collector := store.NewCollector(db, func(s store.Statistics) { nav.SetStatistics(s) })

	clock := game.NewTickerClock()
	defer clock.Stop()
	g := game.NewGame(
		game.NewGrid(cfg.GridSize()),
		game.WithRules(cfg.Rules()),
		game.WithClock(clock),
		game.WithListener(game.Listeners{collector, cues}),
	)

	save := func(s store.Settings) error { return db.SaveSettings(context.Background(), s) }
	nav = menu.New(g, settings, stats, save, cues)

	var recorder *game.RunRecorder
	if cfg.Record {
		sessionID := uuid.NewString()
		recorder = game.NewRunRecorder(cfg.RecordDir, sessionID)
		defer recorder.Close()
		log.Info().Str("session", sessionID).Str("dir", cfg.RecordDir).Msg("recording runs")
	}

	inputHandler := input.NewKeyboardHandler()
	if err := inputHandler.Start(); err != nil {
		return fmt.Errorf("opening keyboard: %w", err)
	}
	defer inputHandler.Stop()

	render := renderer.NewTerminalRenderer(os.Stdout)
	render.HideCursor()
	defer render.ShowCursor()

	draw := func() {
		if err := render.Render(nav.View()); err != nil {
			log.Error().Err(err).Msg("render")
		}
	}
	draw()

	inputChan := inputHandler.GetInputChan()
	for {
		select {
		case ev := <-inputChan:
			nav.Handle(input.Parse(ev))
			if nav.Quit() {
				return nil
			}
		case <-clock.C():
			steps := g.Steps()
			res := nav.Tick()
			if recorder != nil && g.Steps() != steps {
				if err := recorder.Record(g, res); err != nil {
					log.Error().Err(err).Msg("recording step")
				}
			}
		}
		draw()
	}
}
