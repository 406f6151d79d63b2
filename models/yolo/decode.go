// Package yolo - decodes raw YOLO model output tensors into detections.
package yolo

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Config carries the decode tuning knobs. They are deployment
// configuration, not request parameters.
type Config struct {
	// InputSize is the square resolution the model was exported at.
	InputSize int `json:"input_size" yaml:"input_size"`
	// ConfidenceThreshold is the hard cutoff below which candidate
	// rows are discarded.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold"`
}

// DefaultConfig returns the thresholds the pretrained COCO models are
// tuned for.
func DefaultConfig() Config {
	return Config{
		InputSize:           640,
		ConfidenceThreshold: 0.5,
	}
}

// Decode converts a raw model output tensor into candidate detections
// in original-image pixel coordinates.
//
// The model emits a [1, 4+K, N] tensor: N anchor rows of 4 box
// parameters followed by K per-class scores, laid out column-major.
// Ultralytics exports transpose the row/column axes relative to most
// other detection heads, so the [C,N] -> [N,C] transpose is done
// explicitly up front rather than folded into index arithmetic.
//
// Per row, the class with the highest score wins (first occurrence on
// ties); rows whose best score is below the confidence threshold are
// dropped. Surviving boxes are converted from center-form
// (xc, yc, w, h) in model-input space to corner-form, rescaled
// independently in x and y to the original image dimensions.
//
// Arguments:
//   - raw: The flattened model output, read-only to the decoder.
//   - imgWidth: Original image width in pixels.
//   - imgHeight: Original image height in pixels.
//   - cfg: Decode configuration.
//   - table: Class label table; its length fixes K.
//
// Returns:
//   - Unordered candidate detections; empty when no row passes the
//     threshold (that is valid output, not an error).
//   - An error if the tensor length does not match the expected shape.
func Decode(
	raw []float32,
	imgWidth, imgHeight int,
	cfg Config,
	table models.ClassTable,
) ([]postprocess.Detection, error) {
	cols := 4 + table.Len()
	if len(raw) == 0 || len(raw)%cols != 0 {
		return nil, errors.Errorf(
			"output tensor has %d values, not divisible into %d columns", len(raw), cols)
	}
	rows := len(raw) / cols

	// Transpose [C,N] to row-major [N,C]. The backing slice is copied
	// first: Dense.Transpose moves data in place and the raw output
	// belongs to the inference session.
	backing := make([]float32, len(raw))
	copy(backing, raw)
	view := tensor.New(tensor.WithShape(cols, rows), tensor.WithBacking(backing))
	if err := view.T(1, 0); err != nil {
		return nil, errors.Wrap(err, "transpose output tensor")
	}
	if err := view.Transpose(); err != nil {
		return nil, errors.Wrap(err, "materialize transposed output")
	}
	data := view.Data().([]float32)

	size := float32(cfg.InputSize)
	detections := make([]postprocess.Detection, 0, rows/64)

	for r := 0; r < rows; r++ {
		row := data[r*cols : (r+1)*cols]

		// Multi-class argmax over the score columns; strict comparison
		// keeps the lowest index on ties.
		classID := 0
		probability := float32(-1e9)
		for c := 4; c < cols; c++ {
			if row[c] > probability {
				probability = row[c]
				classID = c - 4
			}
		}

		if probability < cfg.ConfidenceThreshold {
			continue
		}

		// Center-form to corner-form, rescaled from model-input space
		// to the original image. x and y scale independently because
		// the preprocessor does not letterbox.
		xc, yc := row[0], row[1]
		w, h := row[2], row[3]
		detections = append(detections, postprocess.Detection{
			Box: images.Rect{
				X1: (xc - w/2) / size * float32(imgWidth),
				Y1: (yc - h/2) / size * float32(imgHeight),
				X2: (xc + w/2) / size * float32(imgWidth),
				Y2: (yc + h/2) / size * float32(imgHeight),
			},
			Label:      table.Name(classID),
			Confidence: probability,
		})
	}

	return detections, nil
}
