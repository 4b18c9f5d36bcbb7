package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// StepRecord is one line of a run recording
type StepRecord struct {
	StepID    int        `json:"step"`
	Time      time.Time  `json:"time"`
	Direction Point      `json:"direction"`
	Result    StepResult `json:"result"`
	State     Snapshot   `json:"state"`
}

// GameRecorder handles asynchronous logging of game steps
type GameRecorder struct {
	path       string
	file       *os.File
	writer     *bufio.Writer
	recordChan chan StepRecord
	wg         sync.WaitGroup
	mu         sync.Mutex
	closed     bool
	dropped    int
}

// NewRecorder creates a recorder writing to dir.
// Filename format: run_{sessionID}_{unixMilli}.jsonl
func NewRecorder(dir, sessionID string) (*GameRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create records dir: %w", err)
	}

	filename := fmt.Sprintf("run_%s_%d.jsonl", sessionID, time.Now().UnixMilli())
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create record file: %w", err)
	}

	r := &GameRecorder{
		path:       path,
		file:       f,
		writer:     bufio.NewWriter(f),
		recordChan: make(chan StepRecord, 1000), // Buffer up to 1000 frames
	}

	r.wg.Add(1)
	go r.writeLoop()

	return r, nil
}

// Path returns the file the recorder writes to
func (r *GameRecorder) Path() string {
	return r.path
}

// Record captures the game after a step
func (r *GameRecorder) Record(g *Game, res StepResult) {
	r.RecordStep(StepRecord{
		StepID:    g.Steps(),
		Time:      time.Now(),
		Direction: g.Direction(),
		Result:    res,
		State:     g.Snapshot(),
	})
}

// RecordStep queues a record to be written. Non-blocking (drops if full).
func (r *GameRecorder) RecordStep(rec StepRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	select {
	case r.recordChan <- rec:
	default:
		// Channel full, drop frame to protect the game loop
		r.dropped++
	}
}

// Close flushes the buffer and closes the file
func (r *GameRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	dropped := r.dropped
	close(r.recordChan)
	r.mu.Unlock()

	r.wg.Wait()
	if dropped > 0 {
		log.Warn().Int("dropped", dropped).Str("file", r.path).Msg("recorder dropped frames")
	}
	return r.file.Close()
}

func (r *GameRecorder) writeLoop() {
	defer r.wg.Done()

	encoder := json.NewEncoder(r.writer)
	for rec := range r.recordChan {
		if err := encoder.Encode(rec); err != nil {
			log.Error().Err(err).Int("step", rec.StepID).Msg("recording frame")
			continue
		}
	}
	if err := r.writer.Flush(); err != nil {
		log.Error().Err(err).Str("file", r.path).Msg("flushing recording")
	}
}

// RunRecorder records every run of a session to its own file. A run is
// over once the game finishes or a step counter restarts.
type RunRecorder struct {
	dir       string
	sessionID string
	current   *GameRecorder
	lastStep  int
	files     []string
}

// NewRunRecorder creates a recorder for the runs of sessionID
func NewRunRecorder(dir, sessionID string) *RunRecorder {
	return &RunRecorder{dir: dir, sessionID: sessionID}
}

// Record captures the game after a step that moved the snake
func (r *RunRecorder) Record(g *Game, res StepResult) error {
	if r.current != nil && g.Steps() <= r.lastStep {
		// Restarted without finishing
		if err := r.closeCurrent(); err != nil {
			return err
		}
	}
	if r.current == nil {
		rec, err := NewRecorder(r.dir, r.sessionID)
		if err != nil {
			return err
		}
		r.current = rec
		r.files = append(r.files, rec.Path())
	}

	r.current.Record(g, res)
	r.lastStep = g.Steps()
	if g.State().Finished() {
		return r.closeCurrent()
	}
	return nil
}

// Files returns the recordings opened so far, oldest first
func (r *RunRecorder) Files() []string {
	return append([]string(nil), r.files...)
}

// Close finishes the recording in progress, if any
func (r *RunRecorder) Close() error {
	return r.closeCurrent()
}

func (r *RunRecorder) closeCurrent() error {
	if r.current == nil {
		return nil
	}
	err := r.current.Close()
	r.current = nil
	r.lastStep = 0
	return err
}

// ReadRecords decodes a recording produced by GameRecorder
func ReadRecords(rd io.Reader) ([]StepRecord, error) {
	var records []StepRecord
	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var rec StepRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return records, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("reading records: %w", err)
	}
	return records, nil
}
