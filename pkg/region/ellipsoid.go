package region

import (
	"fmt"
	"math"

	"voxelregion/pkg/voxel"
)

// Ellipsoid is a movable 3D neighborhood containing the integer lattice
// points inside the hyper-ellipsoid inscribed in its span box:
// sum((delta[d]/span[d])^2) <= 1. An axis with span 0 collapses to the
// single coordinate delta[d] == 0.
type Ellipsoid struct {
	box
	cachedSize int
	sizeValid  bool
}

// NewEllipsoid creates an ellipsoid neighborhood with zero span over a
// 3-dimensional extended source.
func NewEllipsoid(src *voxel.Extended) (*Ellipsoid, error) {
	if src.NumDimensions() != 3 {
		return nil, fmt.Errorf("ellipsoid neighborhood needs a 3D source, got %d dimensions", src.NumDimensions())
	}
	return &Ellipsoid{box: newBox(src)}, nil
}

// SetSpan copies the supplied per-axis half-extents and invalidates the
// cached size.
func (e *Ellipsoid) SetSpan(span []int) error {
	if len(span) != len(e.span) {
		return fmt.Errorf("span has %d entries for %d dimensions", len(span), len(e.span))
	}
	for d, s := range span {
		if s < 0 {
			return fmt.Errorf("span[%d] = %d, must be non-negative", d, s)
		}
	}
	copy(e.span, span)
	e.sizeValid = false
	return nil
}

// Size returns the exact number of lattice points inside the ellipsoid for
// the current span. The count is computed once and cached until the span
// changes; callers rely on it for pre-allocation, so it is never
// approximated.
func (e *Ellipsoid) Size() int {
	if !e.sizeValid {
		e.cachedSize = ellipsoidSize(e.span)
		e.sizeValid = true
	}
	return e.cachedSize
}

// Cursor returns a new cursor over the ellipsoid, snapshotting the current
// center and span.
func (e *Ellipsoid) Cursor() Cursor {
	return newEllipsoidCursor(e.src, e.center, e.span, e.Size())
}

// LocalizingCursor returns the same cursor type as Cursor.
func (e *Ellipsoid) LocalizingCursor() Cursor {
	return e.Cursor()
}

func (e *Ellipsoid) kind() shapeKind {
	return kindEllipsoid
}

// insideEllipsoid reports whether the relative offset lies inside the
// ellipsoid with the given half-axes. A zero half-axis admits only a zero
// offset along that axis.
func insideEllipsoid(delta, span []int) bool {
	sum := 0.0
	for d := range delta {
		if span[d] == 0 {
			if delta[d] != 0 {
				return false
			}
			continue
		}
		r := float64(delta[d]) / float64(span[d])
		sum += r * r
	}
	return sum <= 1
}

// maxOffset returns the largest non-negative value v such that delta with
// delta[d] = v still lies inside the ellipsoid, or -1 if no value does.
// Entries of delta other than d are taken as-is. The square-root estimate is
// corrected against the exact inside test so cursors and the inside test can
// never disagree on boundary points.
func maxOffset(d int, delta, span []int) int {
	saved := delta[d]
	defer func() { delta[d] = saved }()

	delta[d] = 0
	if !insideEllipsoid(delta, span) {
		return -1
	}
	if span[d] == 0 {
		return 0
	}

	rest := 0.0
	for j := range delta {
		if j == d || span[j] == 0 {
			continue
		}
		r := float64(delta[j]) / float64(span[j])
		rest += r * r
	}
	rem := 1 - rest
	if rem < 0 {
		rem = 0
	}
	v := int(float64(span[d]) * math.Sqrt(rem))
	if v > span[d] {
		v = span[d]
	}
	delta[d] = v
	for v+1 <= span[d] {
		delta[d] = v + 1
		if !insideEllipsoid(delta, span) {
			break
		}
		v++
	}
	for v > 0 {
		delta[d] = v
		if insideEllipsoid(delta, span) {
			break
		}
		v--
	}
	return v
}

// adjustHalf updates a row half-width from its value on the previous row
// without recomputing the square root: the half-width changes monotonically
// within a slice, so a couple of inside-test steps reach the new boundary.
func adjustHalf(prev, d int, delta, span []int) int {
	saved := delta[d]
	defer func() { delta[d] = saved }()

	v := prev
	if v > span[d] {
		v = span[d]
	}
	if v < 0 {
		v = 0
	}
	for v+1 <= span[d] {
		delta[d] = v + 1
		if !insideEllipsoid(delta, span) {
			break
		}
		v++
	}
	for v > 0 {
		delta[d] = v
		if insideEllipsoid(delta, span) {
			break
		}
		v--
	}
	return v
}

// ellipsoidSize counts the lattice points inside the ellipsoid exactly, one
// contiguous innermost run per row.
func ellipsoidSize(span []int) int {
	delta := make([]int, len(span))
	return countLattice(len(span)-1, delta, span)
}

func countLattice(axis int, delta, span []int) int {
	m := maxOffset(axis, delta, span)
	if m < 0 {
		return 0
	}
	if axis == 0 {
		return 2*m + 1
	}
	total := 0
	for v := -m; v <= m; v++ {
		delta[axis] = v
		total += countLattice(axis-1, delta, span)
	}
	delta[axis] = 0
	return total
}

// EllipsoidCursor enumerates an ellipsoid slice by slice: for each z it
// derives the cross-section's y range, and for each y the contiguous x run
// from the remaining ellipse equation. The x half-width is carried from row
// to row and nudged to the new boundary instead of being recomputed, so the
// per-step path is pure integer stepping.
type EllipsoidCursor struct {
	src    *voxel.Extended
	center []int
	span   []int
	delta  []int
	pos    []int
	ry     int
	hx     int
	index  int
	size   int
}

func newEllipsoidCursor(src *voxel.Extended, center, span []int, size int) *EllipsoidCursor {
	c := &EllipsoidCursor{
		src:    src,
		center: append([]int(nil), center...),
		span:   append([]int(nil), span...),
		delta:  make([]int, len(center)),
		pos:    make([]int, len(center)),
		size:   size,
	}
	c.Reset()
	return c
}

// NumDimensions returns the dimensionality of the traversed shape.
func (c *EllipsoidCursor) NumDimensions() int {
	return len(c.pos)
}

// HasNext reports whether a further coordinate remains. The center itself is
// always inside the shape, so a fresh cursor always has a next element.
func (c *EllipsoidCursor) HasNext() bool {
	return c.index+1 < c.size
}

// Fwd advances to the next in-shape coordinate.
func (c *EllipsoidCursor) Fwd() error {
	if !c.HasNext() {
		return ErrExhausted
	}
	if c.index < 0 {
		c.index = 0
		c.delta[0], c.delta[1] = 0, 0
		c.delta[2] = -c.span[2]
		c.ry = maxOffset(1, c.delta, c.span)
		c.delta[1] = -c.ry
		c.hx = maxOffset(0, c.delta, c.span)
		c.delta[0] = -c.hx
	} else {
		c.index++
		switch {
		case c.delta[0] < c.hx:
			c.delta[0]++
		case c.delta[1] < c.ry:
			c.delta[1]++
			c.hx = adjustHalf(c.hx, 0, c.delta, c.span)
			c.delta[0] = -c.hx
		default:
			c.delta[0], c.delta[1] = 0, 0
			c.delta[2]++
			c.ry = maxOffset(1, c.delta, c.span)
			c.delta[1] = -c.ry
			c.hx = maxOffset(0, c.delta, c.span)
			c.delta[0] = -c.hx
		}
	}
	for d := range c.pos {
		c.pos[d] = c.center[d] + c.delta[d]
	}
	return nil
}

// Next advances and returns the value at the new coordinate.
func (c *EllipsoidCursor) Next() (float64, error) {
	if err := c.Fwd(); err != nil {
		return 0, err
	}
	return c.src.Get(c.pos), nil
}

// Get returns the value at the current coordinate.
func (c *EllipsoidCursor) Get() float64 {
	return c.src.Get(c.pos)
}

// Set writes the value at the current coordinate.
func (c *EllipsoidCursor) Set(v float64) {
	c.src.Set(c.pos, v)
}

// Localize copies the current absolute coordinate into pos.
func (c *EllipsoidCursor) Localize(pos []int) {
	copy(pos, c.pos)
}

// Position returns the current absolute coordinate as a fresh slice.
func (c *EllipsoidCursor) Position() []int {
	return append([]int(nil), c.pos...)
}

// RelativePosition returns the current offset from the neighborhood center
// as a fresh slice.
func (c *EllipsoidCursor) RelativePosition() []int {
	return append([]int(nil), c.delta...)
}

// Reset rewinds the cursor to before the first coordinate.
func (c *EllipsoidCursor) Reset() {
	c.index = -1
	for d := range c.delta {
		c.delta[d] = 0
	}
}

// Remove is unsupported.
func (c *EllipsoidCursor) Remove() error {
	return ErrUnsupported
}
