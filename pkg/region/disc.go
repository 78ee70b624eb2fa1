package region

import (
	"fmt"
	"math"

	"voxelregion/pkg/voxel"
)

// Disc is the 2D analogue of Sphere: a movable neighborhood defined by a
// physical radius, with span[d] = round(radius / calibration[d]) so the
// physical shape stays circular on anisotropic grids. Like Sphere it is
// resized only through SetRadius.
type Disc struct {
	box
	radius      float64
	calibration []float64
	cachedSize  int
	sizeValid   bool
}

// NewDisc creates a disc neighborhood of the given physical radius over a
// 2-dimensional extended source, using the source image's calibration.
func NewDisc(src *voxel.Extended, radius float64) (*Disc, error) {
	if src.NumDimensions() != 2 {
		return nil, fmt.Errorf("disc neighborhood needs a 2D source, got %d dimensions", src.NumDimensions())
	}
	d := &Disc{
		box:         newBox(src),
		calibration: src.Image().Calibration(),
	}
	if err := d.SetRadius(radius); err != nil {
		return nil, err
	}
	return d, nil
}

// SetRadius changes the physical radius and recomputes the per-axis span.
func (di *Disc) SetRadius(radius float64) error {
	span, err := SpanFromRadius(radius, di.calibration)
	if err != nil {
		return err
	}
	di.radius = radius
	copy(di.span, span)
	di.sizeValid = false
	return nil
}

// Radius returns the current physical radius.
func (di *Disc) Radius() float64 {
	return di.radius
}

// Size returns the exact number of lattice points inside the disc, cached
// until the radius changes.
func (di *Disc) Size() int {
	if !di.sizeValid {
		di.cachedSize = ellipsoidSize(di.span)
		di.sizeValid = true
	}
	return di.cachedSize
}

// Cursor returns a new radial cursor over the disc, snapshotting the
// current center and span.
func (di *Disc) Cursor() Cursor {
	return di.RadialCursor()
}

// LocalizingCursor returns the same cursor type as Cursor.
func (di *Disc) LocalizingCursor() Cursor {
	return di.Cursor()
}

// RadialCursor returns the concrete cursor type with offset and physical
// distance reporting.
func (di *Disc) RadialCursor() *DiscCursor {
	return &DiscCursor{
		src:         di.src,
		center:      append([]int(nil), di.center...),
		span:        append([]int(nil), di.span...),
		delta:       make([]int, 2),
		pos:         make([]int, 2),
		size:        di.Size(),
		index:       -1,
		calibration: di.calibration,
	}
}

func (di *Disc) kind() shapeKind {
	return kindDisc
}

// DiscCursor enumerates a disc row by row, emitting one contiguous x run per
// y, with the run half-width carried from row to row. It reports the offset
// and calibrated distance from the center after each step.
type DiscCursor struct {
	src         *voxel.Extended
	center      []int
	span        []int
	delta       []int
	pos         []int
	hx          int
	index       int
	size        int
	calibration []float64
}

// NumDimensions returns 2.
func (c *DiscCursor) NumDimensions() int {
	return 2
}

// HasNext reports whether a further coordinate remains.
func (c *DiscCursor) HasNext() bool {
	return c.index+1 < c.size
}

// Fwd advances to the next in-shape coordinate.
func (c *DiscCursor) Fwd() error {
	if !c.HasNext() {
		return ErrExhausted
	}
	if c.index < 0 {
		c.index = 0
		c.delta[0] = 0
		c.delta[1] = -c.span[1]
		c.hx = maxOffset(0, c.delta, c.span)
		c.delta[0] = -c.hx
	} else {
		c.index++
		if c.delta[0] < c.hx {
			c.delta[0]++
		} else {
			c.delta[1]++
			c.hx = adjustHalf(c.hx, 0, c.delta, c.span)
			c.delta[0] = -c.hx
		}
	}
	c.pos[0] = c.center[0] + c.delta[0]
	c.pos[1] = c.center[1] + c.delta[1]
	return nil
}

// Next advances and returns the value at the new coordinate.
func (c *DiscCursor) Next() (float64, error) {
	if err := c.Fwd(); err != nil {
		return 0, err
	}
	return c.src.Get(c.pos), nil
}

// Get returns the value at the current coordinate.
func (c *DiscCursor) Get() float64 {
	return c.src.Get(c.pos)
}

// Set writes the value at the current coordinate.
func (c *DiscCursor) Set(v float64) {
	c.src.Set(c.pos, v)
}

// Localize copies the current absolute coordinate into pos.
func (c *DiscCursor) Localize(pos []int) {
	copy(pos, c.pos)
}

// Position returns the current absolute coordinate as a fresh slice.
func (c *DiscCursor) Position() []int {
	return append([]int(nil), c.pos...)
}

// RelativePosition returns the current offset from the neighborhood center.
func (c *DiscCursor) RelativePosition() []int {
	return append([]int(nil), c.delta...)
}

// PhysicalOffset copies the calibrated offset vector from the center into
// dst.
func (c *DiscCursor) PhysicalOffset(dst []float64) {
	for d := range c.delta {
		dst[d] = float64(c.delta[d]) * c.calibration[d]
	}
}

// PhysicalDistance returns the calibrated euclidean distance from the
// center to the current coordinate.
func (c *DiscCursor) PhysicalDistance() float64 {
	dx := float64(c.delta[0]) * c.calibration[0]
	dy := float64(c.delta[1]) * c.calibration[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// Reset rewinds the cursor to before the first coordinate.
func (c *DiscCursor) Reset() {
	c.index = -1
	c.delta[0], c.delta[1] = 0, 0
}

// Remove is unsupported.
func (c *DiscCursor) Remove() error {
	return ErrUnsupported
}
