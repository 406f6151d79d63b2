package postprocess

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
)

func det(x1, y1, x2, y2, conf float32, label string) Detection {
	return Detection{
		Box:        images.Rect{X1: x1, Y1: y1, X2: x2, Y2: y2},
		Label:      label,
		Confidence: conf,
	}
}

func TestApplyGreedyNMSEmpty(t *testing.T) {
	assert.Nil(t, ApplyGreedyNMS(nil, 0.7))
	assert.Nil(t, ApplyGreedyNMS([]Detection{}, 0.7))
}

// TestApplyGreedyNMSNearDuplicates verifies that of two heavily
// overlapping boxes only the higher-confidence one survives.
func TestApplyGreedyNMSNearDuplicates(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 100, 100, 0.80, "person"),
		det(2, 2, 102, 102, 0.95, "person"),
	}

	kept := ApplyGreedyNMS(candidates, 0.7)
	require.Len(t, kept, 1)
	assert.Equal(t, float32(0.95), kept[0].Confidence)
}

// TestApplyGreedyNMSCrossClass pins the class-agnostic behavior: boxes
// of different classes still suppress each other.
func TestApplyGreedyNMSCrossClass(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 100, 100, 0.9, "dog"),
		det(1, 1, 101, 101, 0.8, "cat"),
	}

	kept := ApplyGreedyNMS(candidates, 0.7)
	require.Len(t, kept, 1)
	assert.Equal(t, "dog", kept[0].Label)
}

func TestApplyGreedyNMSDisjointBoxesAllKept(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 50, 50, 0.6, "car"),
		det(200, 200, 250, 250, 0.9, "car"),
		det(400, 0, 450, 50, 0.7, "truck"),
	}

	kept := ApplyGreedyNMS(candidates, 0.7)
	require.Len(t, kept, 3)

	// Output is confidence-descending regardless of input order.
	assert.True(t, sort.SliceIsSorted(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	}))
}

// TestApplyGreedyNMSProperties checks the structural guarantees on a
// mixed pool: output is a subset of the input, confidence-descending,
// and no surviving pair overlaps at or above the threshold.
func TestApplyGreedyNMSProperties(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 100, 100, 0.95, "person"),
		det(5, 5, 105, 105, 0.90, "person"),
		det(10, 10, 110, 110, 0.85, "dog"),
		det(300, 300, 400, 400, 0.80, "car"),
		det(305, 305, 405, 405, 0.75, "car"),
		det(600, 0, 640, 40, 0.55, "bird"),
	}

	const threshold = 0.7
	kept := ApplyGreedyNMS(candidates, threshold)
	require.NotEmpty(t, kept)

	for i := range kept {
		assert.Contains(t, candidates, kept[i], "no synthesized boxes")
		if i > 0 {
			assert.GreaterOrEqual(t, kept[i-1].Confidence, kept[i].Confidence)
		}
		for j := i + 1; j < len(kept); j++ {
			assert.Less(t, images.CalculateIoU(kept[i].Box, kept[j].Box), float32(threshold))
		}
	}
}

// TestApplyGreedyNMSIdempotent verifies suppress(suppress(X)) == suppress(X).
func TestApplyGreedyNMSIdempotent(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 100, 100, 0.95, "person"),
		det(5, 5, 105, 105, 0.90, "person"),
		det(300, 300, 400, 400, 0.80, "car"),
		det(310, 310, 410, 410, 0.78, "car"),
	}

	once := ApplyGreedyNMS(candidates, 0.7)
	twice := ApplyGreedyNMS(once, 0.7)
	assert.Equal(t, once, twice)
}

// TestApplyGreedyNMSTieOrder verifies that equal confidences resolve in
// input order (stable sort).
func TestApplyGreedyNMSTieOrder(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 50, 50, 0.8, "first"),
		det(200, 0, 250, 50, 0.8, "second"),
	}

	kept := ApplyGreedyNMS(candidates, 0.7)
	require.Len(t, kept, 2)
	assert.Equal(t, "first", kept[0].Label)
	assert.Equal(t, "second", kept[1].Label)
}

func TestApplyGreedyNMSDoesNotMutateInput(t *testing.T) {
	candidates := []Detection{
		det(0, 0, 50, 50, 0.5, "low"),
		det(0, 0, 50, 50, 0.9, "high"),
	}

	_ = ApplyGreedyNMS(candidates, 0.7)
	assert.Equal(t, "low", candidates[0].Label, "input order preserved")
}
