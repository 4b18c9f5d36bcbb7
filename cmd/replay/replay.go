package main

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/tielmuzi/snake-game-mz92/pkg/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ReplayServer handles serving replay UI and data
type ReplayServer struct {
	recordDir string
	tileSize  int
	r         *chi.Mux
}

// NewReplayServer serves recordings found in recordDir
func NewReplayServer(recordDir, staticDir string, tileSize int) *ReplayServer {
	s := &ReplayServer{recordDir: recordDir, tileSize: tileSize, r: chi.NewRouter()}

	s.r.Use(chimw.Recoverer)
	s.r.Get("/", s.handleIndex)
	s.r.Get("/view", s.handleView)
	s.r.Get("/ws/replay", s.handleReplayWS)
	s.r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return s
}

// Router exposes the router
func (s *ReplayServer) Router() chi.Router { return s.r }

type RecordFile struct {
	Name      string
	Size      int64
	Time      time.Time
	SessionID string
}

// ListRecords returns the recordings in the record directory, newest first
func (s *ReplayServer) ListRecords() ([]RecordFile, error) {
	files, err := os.ReadDir(s.recordDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	var records []RecordFile
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".jsonl" {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		// expecting format: run_{sessionID}_{timestamp}.jsonl
		sessID := ""
		if parts := strings.Split(strings.TrimSuffix(f.Name(), ".jsonl"), "_"); len(parts) == 3 {
			sessID = parts[1]
		}
		records = append(records, RecordFile{
			Name:      f.Name(),
			Size:      info.Size(),
			Time:      info.ModTime(),
			SessionID: sessID,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Time.After(records[j].Time)
	})
	return records, nil
}

var indexTmpl = template.Must(template.New("index").Parse(`
<!DOCTYPE html>
<html>
<head>
    <title>Snake Replays</title>
    <style>
        body { font-family: monospace; background: #121212; color: #fff; padding: 2rem; }
        h1 { color: #51cf66; }
        .file-list { display: grid; gap: 1rem; }
        .file-item {
            background: #2d3748; padding: 1rem; border-radius: 8px;
            display: flex; justify-content: space-between; align-items: center;
        }
        .file-item:hover { background: #4a5568; }
        a { color: #63b3ed; text-decoration: none; font-weight: bold; }
        .meta { color: #a0aec0; font-size: 0.9em; }
    </style>
</head>
<body>
    <h1>📼 Replay Library</h1>
    <div class="file-list">
        {{range .}}
        <div class="file-item">
            <div>
                <div class="name">{{.Name}}</div>
                <div class="meta">Session: {{.SessionID}} | Size: {{.Size}} bytes | {{.Time.Format "2006-01-02 15:04:05"}}</div>
            </div>
            <a href="/view?file={{.Name}}">WATCH REPLAY ▶</a>
        </div>
        {{else}}
        <p>No recordings found.</p>
        {{end}}
    </div>
</body>
</html>`))

func (s *ReplayServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.ListRecords()
	if err != nil {
		log.Error().Err(err).Msg("listing records")
		http.Error(w, "cannot list records", http.StatusInternalServerError)
		return
	}
	if err := indexTmpl.Execute(w, records); err != nil {
		log.Warn().Err(err).Msg("rendering index")
	}
}

func (s *ReplayServer) handleView(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Query().Get("file")
	if filename == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/static/replay.html?file="+url.QueryEscape(filename), http.StatusFound)
}

// recordPath resolves a file name inside the record directory, rejecting
// anything that would escape it.
func (s *ReplayServer) recordPath(name string) (string, bool) {
	if name == "" || name != filepath.Base(name) || filepath.Ext(name) != ".jsonl" {
		return "", false
	}
	return filepath.Join(s.recordDir, name), true
}

type replayMessage struct {
	Type   string           `json:"type"`
	Config *game.GameConfig `json:"config,omitempty"`
	State  *game.Snapshot   `json:"state,omitempty"`
	Meta   *replayMeta      `json:"meta,omitempty"`
}

type replayMeta struct {
	Step      int             `json:"step"`
	Direction game.Point      `json:"direction"`
	Result    game.StepResult `json:"result"`
}

type replayCommand struct {
	Command string  `json:"command"` // "pause", "resume" or "speed"
	Speed   float64 `json:"speed,omitempty"`
}

func (s *ReplayServer) handleReplayWS(w http.ResponseWriter, r *http.Request) {
	path, ok := s.recordPath(r.URL.Query().Get("file"))
	if !ok {
		http.Error(w, "unknown record", http.StatusNotFound)
		return
	}
	file, err := os.Open(path)
	if err != nil {
		http.Error(w, "unknown record", http.StatusNotFound)
		return
	}
	records, err := game.ReadRecords(file)
	file.Close()
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("reading record")
		http.Error(w, "corrupt record", http.StatusUnprocessableEntity)
		return
	}

	speed := 1.0
	if v := r.URL.Query().Get("speed"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			speed = f
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	controls := make(chan replayCommand)
	go func() {
		defer close(controls)
		for {
			var cmd replayCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			select {
			case controls <- cmd:
			case <-r.Context().Done():
				return
			}
		}
	}()

	if err := s.stream(r.Context(), conn, records, speed, controls); err != nil && !errors.Is(err, context.Canceled) {
		log.Warn().Err(err).Str("file", path).Msg("replay stream ended")
	}
}

// stream plays records at the pace they were recorded, divided by speed
func (s *ReplayServer) stream(ctx context.Context, conn *websocket.Conn, records []game.StepRecord, speed float64, controls <-chan replayCommand) error {
	gridSize := 0
	if len(records) > 0 {
		gridSize = records[0].State.GridSize
	}
	cfg := game.GameConfig{GridSize: gridSize, TileSize: s.tileSize}
	if err := conn.WriteJSON(replayMessage{Type: "config", Config: &cfg}); err != nil {
		return err
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	paused := false
	for i := 0; i < len(records); {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd, ok := <-controls:
			if !ok {
				return nil
			}
			switch cmd.Command {
			case "pause":
				paused = true
				timer.Stop()
			case "resume":
				if paused {
					paused = false
					timer.Reset(0)
				}
			case "speed":
				if cmd.Speed > 0 {
					speed = cmd.Speed
				}
			}
		case <-timer.C:
			rec := records[i]
			i++
			msg := replayMessage{
				Type:  "state",
				State: &rec.State,
				Meta:  &replayMeta{Step: rec.StepID, Direction: rec.Direction, Result: rec.Result},
			}
			if err := conn.WriteJSON(msg); err != nil {
				return err
			}
			timer.Reset(frameDelay(rec, speed))
		}
	}
	return conn.WriteJSON(replayMessage{Type: "end"})
}

func frameDelay(rec game.StepRecord, speed float64) time.Duration {
	ms := rec.State.TickIntervalMs
	if ms <= 0 {
		ms = 100
	}
	return time.Duration(ms / speed * float64(time.Millisecond))
}
