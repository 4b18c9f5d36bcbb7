package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tielmuzi/snake-game-mz92/pkg/config"
	"github.com/tielmuzi/snake-game-mz92/pkg/game"
	"github.com/tielmuzi/snake-game-mz92/pkg/store"
)

func newTestServer(t *testing.T) (*httptest.Server, config.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(dir, "game.db")
	cfg.RecordDir = filepath.Join(dir, "records")
	cfg.Record = true
	cfg.StaticDir = filepath.Join(dir, "static")
	require.NoError(t, os.MkdirAll(cfg.StaticDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "index.html"), []byte("<h1>snake</h1>"), 0o644))

	db, err := store.Open(cfg.DatabasePath)
	require.NoError(t, err)

	srv := NewServer(cfg, db)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		srv.Shutdown()
		ts.Close()
		db.Close()
	})
	return ts, cfg
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	return conn
}

// readUntil reads state messages until match accepts one
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) ServerMessage {
	t.Helper()
	for {
		var msg ServerMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "state" && match(msg) {
			return msg
		}
	}
}

func hasEvent(msg ServerMessage, typ string) bool {
	for _, e := range msg.Events {
		if e.Type == typ {
			return true
		}
	}
	return false
}

func TestSettingsAPI(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/settings")
	require.NoError(t, err)
	var got store.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, store.DefaultSettings(), got)

	body := `{"difficulty":"hard","theme":"neon","volume":250}`
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/settings", bytes.NewBufferString(body))
	require.NoError(t, err)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/settings")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, "hard", got.Difficulty)
	assert.Equal(t, "neon", got.Theme)
	assert.Equal(t, config.MaxVolume, got.Volume)

	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/settings", bytes.NewBufferString("{"))
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndStatic(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/")
	require.NoError(t, err)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	assert.Contains(t, buf.String(), "snake")

	resp, err = http.Get(ts.URL + "/api/runs?limit=0")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebSocketSession(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, ts)

	var cfgMsg ServerMessage
	require.NoError(t, conn.ReadJSON(&cfgMsg))
	require.Equal(t, "config", cfgMsg.Type)
	require.NotNil(t, cfgMsg.Config)
	assert.Equal(t, 20, cfgMsg.Config.GridSize)
	assert.Equal(t, 20, cfgMsg.Config.TileSize)

	idle := readUntil(t, conn, func(ServerMessage) bool { return true })
	assert.Equal(t, game.StateIdle, idle.State.State)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "start", Difficulty: "extreme"}))
	running := readUntil(t, conn, func(m ServerMessage) bool { return m.State.State == game.StateRunning })
	assert.Equal(t, "extreme", running.State.Difficulty)
	assert.Equal(t, 75.0, running.State.TickIntervalMs)
	assert.Equal(t, []game.Point{{X: 10, Y: 10}}, running.State.Snake)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "pause"}))
	readUntil(t, conn, func(m ServerMessage) bool { return m.State.State == game.StatePaused })

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "resume"}))
	readUntil(t, conn, func(m ServerMessage) bool { return m.State.State == game.StateRunning })

	// Heading up from the centre hits the top wall within a few steps
	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "up"}))
	over := readUntil(t, conn, func(m ServerMessage) bool { return hasEvent(m, "gameOver") })
	assert.Equal(t, game.StateOver, over.State.State)
	require.NotNil(t, over.State.CrashPoint)
	assert.Equal(t, -1, over.State.CrashPoint.Y)

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	var stats store.Statistics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	resp.Body.Close()
	assert.Equal(t, 1, stats.GamesPlayed)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "restart"}))
	restarted := readUntil(t, conn, func(m ServerMessage) bool { return m.State.State == game.StateRunning })
	assert.Equal(t, 0, restarted.State.Score)
}

func TestArrowKeyStartsIdleGame(t *testing.T) {
	ts, cfg := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "left", Difficulty: "nightmare"}))
	msg := readUntil(t, conn, func(m ServerMessage) bool { return m.State.Steps > 0 })
	assert.Equal(t, "normal", msg.State.Difficulty, "unknown difficulty keeps the stored setting")
	assert.Equal(t, game.DirLeft, msg.State.Direction)

	conn.Close()
	require.Eventually(t, func() bool {
		files, _ := filepath.Glob(filepath.Join(cfg.RecordDir, "run_*.jsonl"))
		if len(files) != 1 {
			return false
		}
		f, err := os.Open(files[0])
		if err != nil {
			return false
		}
		defer f.Close()
		recs, err := game.ReadRecords(f)
		return err == nil && len(recs) > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestRestartStartsNewRecording(t *testing.T) {
	ts, cfg := newTestServer(t)
	conn := dial(t, ts)

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "right"}))
	readUntil(t, conn, func(m ServerMessage) bool { return m.State.Steps >= 2 })

	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "restart"}))
	require.NoError(t, conn.WriteJSON(ClientMessage{Action: "up"}))
	readUntil(t, conn, func(m ServerMessage) bool {
		return m.State.Direction == game.DirUp && m.State.Steps >= 2
	})
	conn.Close()

	require.Eventually(t, func() bool {
		files, _ := filepath.Glob(filepath.Join(cfg.RecordDir, "run_*.jsonl"))
		if len(files) != 2 {
			return false
		}
		for _, path := range files {
			f, err := os.Open(path)
			if err != nil {
				return false
			}
			recs, err := game.ReadRecords(f)
			f.Close()
			if err != nil || len(recs) < 2 || recs[0].StepID != 1 {
				return false
			}
			for i, rec := range recs {
				if rec.StepID != i+1 {
					return false
				}
			}
		}
		return true
	}, 5*time.Second, 50*time.Millisecond)
}

func TestShippedClientSteersBySwipe(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(dir, "game.db")
	cfg.StaticDir = filepath.Join("..", "..", "web", "static")

	db, err := store.Open(cfg.DatabasePath)
	require.NoError(t, err)
	srv := NewServer(cfg, db)
	ts := httptest.NewServer(srv.Router())
	defer func() {
		srv.Shutdown()
		ts.Close()
		db.Close()
	}()

	resp, err := http.Get(ts.URL + "/index.html")
	require.NoError(t, err)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := buf.String()
	for _, want := range []string{"touchstart", "touchend", "minSwipe = 50", "s.visualPatterns"} {
		assert.Contains(t, page, want)
	}
}
