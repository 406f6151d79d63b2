// Package images - Image geometry and preprocessing utilities.
package images

import "github.com/chewxy/math32"

// Rect is a lightweight bounding box in pixel coordinates.
type Rect struct {
	// X2,Y2 are exclusive (like image.Rectangle).
	X1, Y1, X2, Y2 float32
}

// Area returns the area of the rectangle. A degenerate rectangle
// (zero width or height) has area 0.
func (r Rect) Area() float32 {
	return (r.X2 - r.X1) * (r.Y2 - r.Y1)
}

// IntersectionArea returns the overlapping area of two rectangles.
//
// The width and height of the intersection are clamped at zero, so two
// disjoint rectangles always yield 0 rather than a negative product.
//
// Arguments:
//   - o: The other rectangle to intersect with.
//
// Returns:
//   - float32: The intersection area in square pixels, >= 0.
func (r Rect) IntersectionArea(o Rect) float32 {
	// The intersection is bounded by the maximum of the starting
	// coordinates and the minimum of the ending coordinates.
	ix1 := math32.Max(r.X1, o.X1)
	iy1 := math32.Max(r.Y1, o.Y1)
	ix2 := math32.Min(r.X2, o.X2)
	iy2 := math32.Min(r.Y2, o.Y2)

	return math32.Max(0, ix2-ix1) * math32.Max(0, iy2-iy1)
}

// UnionArea returns the total area covered by both rectangles.
//
// Uses the principle of inclusion-exclusion so the overlapping region
// is not counted twice:
//
//	Union(A, B) = Area(A) + Area(B) - Intersection(A, B)
func (r Rect) UnionArea(o Rect) float32 {
	return r.Area() + o.Area() - r.IntersectionArea(o)
}

// CalculateIoU computes the Intersection over Union of two rectangles.
//
// IoU is the standard overlap metric used by Non-Maximum Suppression:
// 1.0 means the rectangles are identical, 0.0 means they do not overlap
// at all. When both rectangles are degenerate the union is zero; that
// case returns 0 instead of dividing by zero.
//
// Arguments:
//   - r: The first rectangle.
//   - o: The other rectangle to compare against.
//
// Returns:
//   - float32: A value in [0, 1] representing the overlap.
func CalculateIoU(r, o Rect) float32 {
	union := r.UnionArea(o)
	if union <= 0 {
		return 0
	}
	return r.IntersectionArea(o) / union
}
