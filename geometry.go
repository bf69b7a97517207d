package shelf

import "math"

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec2) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Vec2) Vec2 {
	return Vec2{(a.X + b.X) / 2, (a.Y + b.Y) / 2}
}

// Clamp restricts v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if v >= hi {
		return hi
	}
	if v >= lo {
		return v
	}
	return lo
}

// Boundary is a rectangle centred on the origin that a sticker position must
// stay inside. MinX == -MaxX and MinY == -MaxY.
type Boundary struct {
	MinX, MaxX, MinY, MaxY float64
}

// Contains reports whether p lies inside the boundary, edges included.
func (b Boundary) Contains(p Vec2) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Clamp returns the point of b closest to p.
func (b Boundary) Clamp(p Vec2) Vec2 {
	return Vec2{Clamp(p.X, b.MinX, b.MaxX), Clamp(p.Y, b.MinY, b.MaxY)}
}

// BoundaryPolicy controls how much slack a sticker gets inside its slot.
//
// ItemFraction is the share of the container a sticker covers at scale 1;
// the larger the sticker, the less room it has to move. ExtendFraction is
// the share of the container added on each side in extended mode.
type BoundaryPolicy struct {
	ItemFraction   float64
	ExtendFraction float64
}

// DefaultBoundaryPolicy is used by ComputeBoundary.
var DefaultBoundaryPolicy = BoundaryPolicy{ItemFraction: 0.5, ExtendFraction: 0.5}

// Compute returns the boundary for a sticker of the given scale inside a
// container of the given size.
func (p BoundaryPolicy) Compute(containerSize Vec2, scale float64, extended bool) Boundary {
	hx := halfExtent(containerSize.X, scale, p.ItemFraction)
	hy := halfExtent(containerSize.Y, scale, p.ItemFraction)
	if extended {
		hx += math.Max(0, containerSize.X) * p.ExtendFraction
		hy += math.Max(0, containerSize.Y) * p.ExtendFraction
	}
	return Boundary{MinX: -hx, MaxX: hx, MinY: -hy, MaxY: hy}
}

func halfExtent(size, scale, itemFraction float64) float64 {
	if size <= 0 || math.IsNaN(size) {
		return 0
	}
	return math.Max(0, size*(1-scale*itemFraction)/2)
}

// ComputeBoundary returns the boundary for a sticker using
// DefaultBoundaryPolicy.
func ComputeBoundary(containerSize Vec2, scale float64, extended bool) Boundary {
	return DefaultBoundaryPolicy.Compute(containerSize, scale, extended)
}

// --- Affine helpers ---

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
