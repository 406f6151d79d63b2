// Package server - HTTP detection service.
package server

import (
	"context"
	"image"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/models/yolo"
	"github.com/nvr-ai/go-detect/onnx"
	"github.com/nvr-ai/go-detect/profiler"
)

// ErrBadImage marks uploads whose bytes are not a decodable image. The
// handler maps it to a client error instead of a server failure.
var ErrBadImage = errors.New("invalid image upload")

func isBadImage(err error) bool {
	return errors.Is(err, ErrBadImage)
}

// Detector runs the full detection pipeline on one uploaded image.
type Detector interface {
	Detect(ctx context.Context, data []byte) ([]postprocess.Detection, error)
}

// Pipeline wires preprocess -> inference -> decode -> suppression for a
// single request. It holds no per-request state; the session guards the
// only shared resource, so independent requests may run concurrently.
type Pipeline struct {
	session      *onnx.Session
	table        models.ClassTable
	decode       yolo.Config
	iouThreshold float32
	logger       *zap.Logger
}

// NewPipeline assembles the request pipeline around a loaded session.
func NewPipeline(
	session *onnx.Session,
	table models.ClassTable,
	decode yolo.Config,
	iouThreshold float32,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		session:      session,
		table:        table,
		decode:       decode,
		iouThreshold: iouThreshold,
		logger:       logger,
	}
}

// Detect decodes the upload, runs the model, and returns the suppressed
// detection list in original-image coordinates. An empty list is valid
// output, not an error.
func (p *Pipeline) Detect(ctx context.Context, data []byte) ([]postprocess.Detection, error) {
	img, err := images.DecodeImage(data)
	if err != nil {
		return nil, errors.Wrap(ErrBadImage, err.Error())
	}
	return p.DetectImage(ctx, img)
}

// DetectImage runs the pipeline on an already-decoded image. Used by
// callers that produce frames directly instead of uploaded bytes.
func (p *Pipeline) DetectImage(ctx context.Context, img image.Image) ([]postprocess.Detection, error) {
	timer := profiler.NewStageTimer()
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	// Inference covers tensor preparation too; both run under the
	// session lock and the request timeout.
	size := p.session.Config().InputSize
	stop := timer.Start("inference")
	output, err := p.session.Predict(ctx, func(input []float32) error {
		return images.PrepareInput(img, input, size)
	})
	stop()
	if err != nil {
		return nil, err
	}

	stop = timer.Start("postprocess")
	candidates, err := yolo.Decode(output, width, height, p.decode, p.table)
	if err != nil {
		stop()
		return nil, err
	}
	detections := postprocess.ApplyGreedyNMS(candidates, p.iouThreshold)
	stop()

	fields := []zap.Field{
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("candidates", len(candidates)),
		zap.Int("detections", len(detections)),
	}
	for _, stage := range timer.Stages() {
		fields = append(fields, zap.Duration(stage.Name, stage.Duration))
	}
	p.logger.Debug("pipeline complete", fields...)

	return detections, nil
}
