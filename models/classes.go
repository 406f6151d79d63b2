// Package models - Detection model class label tables.
package models

import "fmt"

// cocoLabels is the standard 80-class detection label set, in model
// output order (no background class).
var cocoLabels = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat", "dog", "horse",
	"sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack", "umbrella", "handbag", "tie",
	"suitcase", "frisbee", "skis", "snowboard", "sports ball", "kite", "baseball bat", "baseball glove",
	"skateboard", "surfboard", "tennis racket", "bottle", "wine glass", "cup", "fork", "knife", "spoon",
	"bowl", "banana", "apple", "sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut",
	"cake", "chair", "couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator", "book",
	"clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// ClassTable is a fixed, ordered mapping from class index to label.
// It is built once at startup and injected into the decoder; it is
// never mutated afterwards.
type ClassTable struct {
	names []string
}

// NewClassTable builds a table from an ordered label list.
func NewClassTable(names []string) ClassTable {
	copied := make([]string, len(names))
	copy(copied, names)
	return ClassTable{names: copied}
}

// COCOClassTable returns the standard 80-class table used by the
// pretrained YOLO detection models this service ships with.
func COCOClassTable() ClassTable {
	return NewClassTable(cocoLabels)
}

// Len returns the number of classes in the table.
func (t ClassTable) Len() int {
	return len(t.names)
}

// Name returns the label for a class index.
//
// An out-of-range index maps to a synthetic "unknown_<idx>" label
// rather than an error; the decoder derives its class count from the
// table, so this only fires on misconfigured tables.
func (t ClassTable) Name(idx int) string {
	if idx >= 0 && idx < len(t.names) {
		return t.names[idx]
	}
	return fmt.Sprintf("unknown_%d", idx)
}
