package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunReport summarizes one finished execution: identity, timing, final
// state, and progress counters. Counters reflect work actually done, so
// a stopped or failed run reports the passes and steps that completed
// before the halt.
type RunReport struct {
	MacroID         string    `yaml:"macro_id"`
	Name            string    `yaml:"name"`
	StartedAt       time.Time `yaml:"started_at"`
	EndedAt         time.Time `yaml:"ended_at"`
	State           string    `yaml:"state"`
	Reason          string    `yaml:"reason,omitempty"`
	PassesCompleted int       `yaml:"passes_completed"`
	StepsExecuted   int       `yaml:"steps_executed"`
}

// Duration returns the wall-clock span of the run.
func (r *RunReport) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// WriteFile marshals the report as YAML to path.
func (r *RunReport) WriteFile(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}

// Report returns the report of the most recently finished execution, or
// nil when no run has reached a terminal state yet.
func (e *Engine) Report() *RunReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.report == nil {
		return nil
	}
	cp := *e.report
	return &cp
}
