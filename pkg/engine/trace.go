package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StepEvent is one JSONL trace record: a dispatched, skipped, or failed
// step within a run. Pass and StepIndex are 0-based list positions for
// correlating with the macro document; the 1-based numbering is a
// display convention that belongs to the OnStep callback only.
type StepEvent struct {
	MacroID   string    `json:"macro_id"`
	Pass      int       `json:"pass"`
	StepIndex int       `json:"step_index"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"` // executed, skipped, failed
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// TraceWriter appends StepEvents to a JSONL trace file, flushing at
// step boundaries so a crash loses at most the in-flight step.
type TraceWriter struct {
	file   *os.File
	writer *bufio.Writer
	enc    *json.Encoder
}

// NewTraceWriter creates a trace writer that appends to the given file.
func NewTraceWriter(path string) (*TraceWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	w := bufio.NewWriter(f)
	return &TraceWriter{file: f, writer: w, enc: json.NewEncoder(w)}, nil
}

// Write appends one event and flushes.
func (tw *TraceWriter) Write(ev *StepEvent) error {
	if err := tw.enc.Encode(ev); err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}
	if err := tw.writer.Flush(); err != nil {
		return fmt.Errorf("flush trace: %w", err)
	}
	return nil
}

// Close flushes and closes the trace file.
func (tw *TraceWriter) Close() error {
	if err := tw.writer.Flush(); err != nil {
		return err
	}
	return tw.file.Close()
}
