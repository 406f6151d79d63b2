// Package profiler - lightweight stage timing for pipeline executions.
package profiler

import (
	"sync"
	"time"
)

// Stage is a named, timed step of a pipeline execution.
type Stage struct {
	Name     string
	Duration time.Duration
}

// StageTimer records wall-clock durations for the stages of a single
// pipeline execution. It is safe for concurrent use, though a typical
// request records its stages sequentially.
type StageTimer struct {
	mu     sync.Mutex
	stages []Stage
}

// NewStageTimer creates an empty timer.
func NewStageTimer() *StageTimer {
	return &StageTimer{}
}

// Start begins timing the named stage and returns the function that
// stops it:
//
//	stop := timer.Start("inference")
//	... work ...
//	stop()
func (t *StageTimer) Start(name string) func() {
	start := time.Now()
	return func() {
		d := time.Since(start)
		t.mu.Lock()
		t.stages = append(t.stages, Stage{Name: name, Duration: d})
		t.mu.Unlock()
	}
}

// Stages returns the recorded stages in completion order.
func (t *StageTimer) Stages() []Stage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Total returns the summed duration of all recorded stages.
func (t *StageTimer) Total() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	var total time.Duration
	for _, s := range t.stages {
		total += s.Duration
	}
	return total
}
