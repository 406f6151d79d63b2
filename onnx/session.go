package onnx

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Session owns a loaded detection model and its pre-allocated input and
// output tensors. The model handle is the only shared resource in the
// request pipeline; Run serializes access with a mutex so independent
// requests may be processed concurrently around it.
type Session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	cfg     Config

	mu sync.Mutex

	// Inference latency counters, guarded by mu.
	inferenceCount int64
	totalTime      time.Duration
}

// Stats is a snapshot of inference latency counters.
type Stats struct {
	InferenceCount int64
	TotalTime      time.Duration
	AverageTime    time.Duration
}

// NewSession loads the model once and allocates the session tensors.
//
// Arguments:
//   - cfg: Model path and tensor geometry.
//
// Returns:
//   - *Session: The ready-to-run session.
//   - error: An error if the runtime library or model cannot be loaded.
func NewSession(cfg Config) (*Session, error) {
	libPath := cfg.sharedLibPath()
	if _, err := os.Stat(libPath); os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize ORT environment")
		}
	}

	inputShape := ort.NewShape(1, 3, int64(cfg.InputSize), int64(cfg.InputSize))
	inputTensor, err := ort.NewEmptyTensor[float32](inputShape)
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}

	outputShape := ort.NewShape(1, int64(4+cfg.ClassCount), int64(cfg.AnchorCount))
	outputTensor, err := ort.NewEmptyTensor[float32](outputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "create output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "create ORT session options")
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(4)
	options.SetInterOpNumThreads(2)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrapf(err, "create ORT session for %s", cfg.ModelPath)
	}

	return &Session{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
		cfg:     cfg,
	}, nil
}

// Config returns the configuration the session was created with.
func (s *Session) Config() Config {
	return s.cfg
}

// Predict fills the input tensor via the supplied callback, executes
// the model, and returns a copy of the raw output tensor.
//
// The session tensors are shared across requests, so the whole
// fill -> run -> read sequence runs under the session lock. The
// execution itself cannot be interrupted; cancellation is cooperative:
// when ctx expires first, Predict returns the context error and any
// in-flight execution finishes in the background while still holding
// the lock. Inference time is recorded on success.
//
// Arguments:
//   - ctx: Deadline/cancellation for the only long-running step.
//   - fill: Callback that writes the prepared image into the input buffer.
//
// Returns:
//   - []float32: A private copy of the raw model output.
//   - error: The fill error, inference error, or context error.
func (s *Session) Predict(ctx context.Context, fill func(input []float32) error) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		output []float32
		err    error
	}
	done := make(chan result, 1)

	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if err := ctx.Err(); err != nil {
			done <- result{err: err}
			return
		}

		if err := fill(s.input.GetData()); err != nil {
			done <- result{err: errors.Wrap(err, "prepare input tensor")}
			return
		}

		start := time.Now()
		if err := s.session.Run(); err != nil {
			done <- result{err: errors.Wrap(err, "model inference")}
			return
		}
		s.inferenceCount++
		s.totalTime += time.Since(start)

		raw := s.output.GetData()
		output := make([]float32, len(raw))
		copy(output, raw)
		done <- result{output: output}
	}()

	select {
	case res := <-done:
		return res.output, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stats returns a snapshot of the inference latency counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		InferenceCount: s.inferenceCount,
		TotalTime:      s.totalTime,
	}
	if s.inferenceCount > 0 {
		stats.AverageTime = s.totalTime / time.Duration(s.inferenceCount)
	}
	return stats
}

// Close releases the tensors and the underlying ORT session.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
}
