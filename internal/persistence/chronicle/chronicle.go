// Package chronicle is the town's append-only audit trail: every
// recorded event and case transition as zstd-compressed JSONL, one
// file per simulated day, independent of the index DB.
package chronicle

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"ashvale.town/internal/persistence/store"
)

type Writer struct {
	baseDir string
	prefix  string

	mu     sync.Mutex
	curDay int
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

func NewWriter(baseDir, prefix string) *Writer {
	return &Writer{baseDir: baseDir, prefix: prefix, curDay: -1}
}

// Entry is one chronicle line. Exactly one of Event, Case, or Note is
// set per line.
type Entry struct {
	Day   int    `json:"day"`
	Kind  string `json:"kind"`
	Event any    `json:"event,omitempty"`
	Case  any    `json:"case,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Journal feeds the writer from the store's journal hooks, so every
// event insert and case transition lands in the day files without the
// callers knowing about the chronicle.
type Journal struct {
	w   *Writer
	log *log.Logger
}

func NewJournal(w *Writer, logger *log.Logger) *Journal {
	return &Journal{w: w, log: logger}
}

func (j *Journal) JournalEvent(day int, e store.Event) {
	if err := j.w.Write(day, Entry{Day: day, Kind: "event", Event: e}); err != nil {
		j.log.Printf("chronicle: event #%d dropped: %v", e.ID, err)
	}
}

func (j *Journal) JournalCase(day int, c store.Case) {
	if err := j.w.Write(day, Entry{Day: day, Kind: "case", Case: c}); err != nil {
		j.log.Printf("chronicle: case #%d dropped: %v", c.ID, err)
	}
}

func (w *Writer) Write(day int, e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if day != w.curDay {
		if err := w.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *Writer) rotateLocked(day int) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForDay(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	w.curDay = day
	return nil
}

func (w *Writer) closeLocked() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	w.curDay = -1
	return err1
}

func (w *Writer) pathForDay(day int) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-day-%05d.jsonl.zst", w.prefix, day))
}
