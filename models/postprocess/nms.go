package postprocess

import (
	"sort"

	"github.com/nvr-ai/go-detect/images"
)

// ApplyGreedyNMS performs standard greedy Non-Maximum Suppression.
//
// Candidates are ordered by descending confidence (stable, so equal
// scores keep their decode order), then filtered with an index-marking
// pass: the highest-confidence unused detection is kept as an anchor,
// and every remaining detection whose IoU with the anchor reaches the
// threshold is marked used. Suppression is class-agnostic: two boxes of
// different classes still suppress each other when they overlap enough.
//
// The input slice is not modified; the returned slice is a subset of
// the input, in descending confidence order.
//
// Arguments:
//   - detections: Slice of candidate detections, in any order.
//   - iouThreshold: IoU at or above which overlapping boxes are suppressed.
//
// Returns:
//   - Filtered slice of detections. If no detections are provided, returns nil.
func ApplyGreedyNMS(detections []Detection, iouThreshold float32) []Detection {
	n := len(detections)
	if n == 0 {
		return nil
	}

	sorted := make([]Detection, n)
	copy(sorted, detections)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	filtered := make([]Detection, 0, n)
	used := make([]bool, n)

	for i := 0; i < n; i++ {
		if used[i] {
			continue
		}

		anchor := sorted[i]
		filtered = append(filtered, anchor)
		used[i] = true

		for j := i + 1; j < n; j++ {
			if used[j] {
				continue
			}

			if images.CalculateIoU(anchor.Box, sorted[j].Box) >= iouThreshold {
				used[j] = true
			}
		}
	}

	return filtered
}
