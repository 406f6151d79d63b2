// Package postprocess - Detection results and Non-Maximum Suppression.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-detect/images"
)

// Detection is a single decoded detection in original-image pixel
// coordinates. Detections are immutable after creation: suppression
// removes entries, it never edits them.
type Detection struct {
	// The bounding box of the detection (X1 <= X2, Y1 <= Y2).
	Box images.Rect
	// The human-readable class label.
	Label string
	// The confidence score in [0, 1].
	Confidence float32
}

func (d Detection) String() string {
	return fmt.Sprintf("Object %s (confidence %f): (%f, %f), (%f, %f)",
		d.Label, d.Confidence, d.Box.X1, d.Box.Y1, d.Box.X2, d.Box.Y2)
}
