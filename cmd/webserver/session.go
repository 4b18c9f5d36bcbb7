package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/game"
	"github.com/tielmuzi/snake-game-mz92/pkg/input"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

type ServerMessage struct {
	Type   string           `json:"type"`
	Config *game.GameConfig `json:"config,omitempty"`
	State  *game.Snapshot   `json:"state,omitempty"`
	Events []game.Event     `json:"events,omitempty"`
}

type ClientMessage struct {
	Action     string `json:"action"`
	Difficulty string `json:"difficulty,omitempty"`
}

// session is one connection playing one game. Only the loop goroutine
// touches the game and writes to the socket.
type session struct {
	id         string
	conn       *websocket.Conn
	game       *game.Game
	clock      *game.TickerClock
	events     *game.EventLog
	recorder   *game.RunRecorder
	tileSize   int
	policy     config.Policy
	difficulty string
}

func (s *Server) newSession(ctx context.Context, conn *websocket.Conn) (*session, error) {
	settings, err := s.db.LoadSettings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("loading settings for session")
	}

	rules := s.cfg.Rules()
	sess := &session{
		id:         uuid.NewString(),
		conn:       conn,
		clock:      game.NewTickerClock(),
		events:     &game.EventLog{},
		tileSize:   s.cfg.TileSize,
		policy:     rules.Policy,
		difficulty: settings.Difficulty,
	}
	if s.cfg.Record {
		sess.recorder = game.NewRunRecorder(s.cfg.RecordDir, sess.id)
	}

	sess.game = game.NewGame(
		game.NewGrid(s.cfg.GridSize()),
		game.WithRules(rules),
		game.WithClock(sess.clock),
		game.WithListener(game.Listeners{sess.events, store.NewCollector(s.db, nil)}),
	)
	return sess, nil
}

// serve runs the session until the client leaves or ctx is done
func (sess *session) serve(ctx context.Context) error {
	defer sess.clock.Stop()
	if sess.recorder != nil {
		defer sess.recorder.Close()
	}

	cfg := game.GameConfig{GridSize: sess.game.Grid().Size, TileSize: sess.tileSize}
	if err := sess.conn.WriteJSON(ServerMessage{Type: "config", Config: &cfg}); err != nil {
		sess.conn.Close()
		return fmt.Errorf("sending config: %w", err)
	}
	if err := sess.sendState(); err != nil {
		sess.conn.Close()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	actions := make(chan ClientMessage)

	g.Go(func() error {
		defer close(actions)
		return sess.readLoop(gctx, actions)
	})
	g.Go(func() error {
		// Closing the socket unblocks the reader
		defer sess.conn.Close()
		return sess.loop(gctx, actions)
	})

	return g.Wait()
}

func (sess *session) readLoop(ctx context.Context, actions chan<- ClientMessage) error {
	for {
		var msg ClientMessage
		if err := sess.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return fmt.Errorf("reading: %w", err)
			}
			return nil
		}
		select {
		case actions <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

func (sess *session) loop(ctx context.Context, actions <-chan ClientMessage) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-actions:
			if !ok {
				return nil
			}
			sess.apply(msg)
		case <-sess.clock.C():
			steps := sess.game.Steps()
			res := sess.game.Step()
			if sess.recorder != nil && sess.game.Steps() != steps {
				if err := sess.recorder.Record(sess.game, res); err != nil {
					log.Error().Err(err).Str("session", sess.id).Msg("recording step")
				}
			}
		}
		if err := sess.sendState(); err != nil {
			return err
		}
	}
}

func (sess *session) sendState() error {
	state := sess.game.Snapshot()
	msg := ServerMessage{Type: "state", State: &state, Events: sess.events.Drain()}
	if err := sess.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	return nil
}

func (sess *session) apply(msg ClientMessage) {
	if _, ok := sess.policy[msg.Difficulty]; ok {
		sess.difficulty = msg.Difficulty
	}

	g := sess.game
	cmd := input.ParseAction(msg.Action)
	if dir, ok := cmd.Direction(); ok {
		// The first arrow key starts a fresh game
		if g.State() == game.StateIdle {
			g.Start(sess.difficulty)
		}
		g.SetDirection(dir)
		return
	}

	switch cmd {
	case input.CmdPause:
		g.TogglePause()
	case input.CmdResume:
		g.Resume()
	case input.CmdStart:
		if g.State() == game.StateIdle || g.State().Finished() {
			g.Start(sess.difficulty)
		}
	case input.CmdRestart:
		g.Start(sess.difficulty)
	default:
		log.Debug().Str("session", sess.id).Str("action", msg.Action).Msg("ignored action")
	}
}
