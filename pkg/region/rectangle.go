package region

import (
	"fmt"

	"voxelregion/pkg/voxel"
)

// Rectangle is a movable n-dimensional axis-aligned box neighborhood. Every
// coordinate of the bounding box belongs to the shape, so its size is the
// product of (2*span[d]+1) over all axes.
type Rectangle struct {
	box
}

// NewRectangle creates a rectangle neighborhood over the extended source
// with a zero span, i.e. a single-voxel region at the origin.
func NewRectangle(src *voxel.Extended) *Rectangle {
	return &Rectangle{box: newBox(src)}
}

// SetSpan copies the supplied per-axis half-extents. Every entry must be
// non-negative; a zero entry collapses that axis to a single coordinate.
func (r *Rectangle) SetSpan(span []int) error {
	if len(span) != len(r.span) {
		return fmt.Errorf("span has %d entries for %d dimensions", len(span), len(r.span))
	}
	for d, s := range span {
		if s < 0 {
			return fmt.Errorf("span[%d] = %d, must be non-negative", d, s)
		}
	}
	copy(r.span, span)
	return nil
}

// Size returns the number of coordinates in the box.
func (r *Rectangle) Size() int {
	size := 1
	for _, s := range r.span {
		size *= 2*s + 1
	}
	return size
}

// Cursor returns a new row-major cursor over the box, snapshotting the
// current center and span.
func (r *Rectangle) Cursor() Cursor {
	return newRectangleCursor(r.src, r.center, r.span)
}

// LocalizingCursor returns the same cursor type as Cursor.
func (r *Rectangle) LocalizingCursor() Cursor {
	return r.Cursor()
}

func (r *Rectangle) kind() shapeKind {
	return kindRectangle
}

// RectangleCursor enumerates a box in row-major order with axis 0 varying
// fastest. It snapshots the center and span it was created with; later moves
// of the owning neighborhood do not affect it.
type RectangleCursor struct {
	src    *voxel.Extended
	center []int
	span   []int
	pos    []int
	index  int
	size   int
}

func newRectangleCursor(src *voxel.Extended, center, span []int) *RectangleCursor {
	c := &RectangleCursor{
		src:    src,
		center: append([]int(nil), center...),
		span:   append([]int(nil), span...),
		pos:    make([]int, len(center)),
	}
	c.size = 1
	for _, s := range c.span {
		c.size *= 2*s + 1
	}
	c.Reset()
	return c
}

// NewDomainCursor builds a standalone rectangle cursor around an arbitrary
// center without constructing a Rectangle neighborhood first; useful when a
// caller already knows the window it wants to walk.
func NewDomainCursor(src *voxel.Extended, center, span []int) (*RectangleCursor, error) {
	if len(center) != src.NumDimensions() || len(span) != src.NumDimensions() {
		return nil, fmt.Errorf("center/span dimensionality does not match source (%d dimensions)", src.NumDimensions())
	}
	for d, s := range span {
		if s < 0 {
			return nil, fmt.Errorf("span[%d] = %d, must be non-negative", d, s)
		}
	}
	return newRectangleCursor(src, center, span), nil
}

// NumDimensions returns the dimensionality of the traversed box.
func (c *RectangleCursor) NumDimensions() int {
	return len(c.pos)
}

// HasNext reports whether a further coordinate remains.
func (c *RectangleCursor) HasNext() bool {
	return c.index+1 < c.size
}

// Fwd advances to the next coordinate in row-major order.
func (c *RectangleCursor) Fwd() error {
	if !c.HasNext() {
		return ErrExhausted
	}
	if c.index < 0 {
		for d := range c.pos {
			c.pos[d] = c.center[d] - c.span[d]
		}
		c.index = 0
		return nil
	}
	c.index++
	for d := range c.pos {
		c.pos[d]++
		if c.pos[d] <= c.center[d]+c.span[d] {
			break
		}
		c.pos[d] = c.center[d] - c.span[d]
	}
	return nil
}

// Next advances and returns the value at the new coordinate.
func (c *RectangleCursor) Next() (float64, error) {
	if err := c.Fwd(); err != nil {
		return 0, err
	}
	return c.src.Get(c.pos), nil
}

// Get returns the value at the current coordinate.
func (c *RectangleCursor) Get() float64 {
	return c.src.Get(c.pos)
}

// Set writes the value at the current coordinate.
func (c *RectangleCursor) Set(v float64) {
	c.src.Set(c.pos, v)
}

// Localize copies the current absolute coordinate into pos.
func (c *RectangleCursor) Localize(pos []int) {
	copy(pos, c.pos)
}

// Position returns the current absolute coordinate as a fresh slice.
func (c *RectangleCursor) Position() []int {
	return append([]int(nil), c.pos...)
}

// Reset rewinds the cursor to before the first coordinate.
func (c *RectangleCursor) Reset() {
	c.index = -1
}

// Remove is unsupported.
func (c *RectangleCursor) Remove() error {
	return ErrUnsupported
}
