package region

import (
	"fmt"
	"math"

	"voxelregion/pkg/voxel"
)

// Sphere is a movable 3D neighborhood defined by a physical radius over a
// source with non-isotropic calibration. In voxel coordinates it is the
// ellipsoid with span[d] = round(radius / calibration[d]), so the physical
// shape stays round however coarsely an axis is sampled.
//
// A sphere is resized only through SetRadius; it deliberately has no
// per-axis span setter, which would break the radius semantics.
type Sphere struct {
	box
	radius      float64
	calibration []float64
	cachedSize  int
	sizeValid   bool
}

// NewSphere creates a sphere neighborhood of the given physical radius over
// a 3-dimensional extended source, using the source image's calibration.
func NewSphere(src *voxel.Extended, radius float64) (*Sphere, error) {
	if src.NumDimensions() != 3 {
		return nil, fmt.Errorf("sphere neighborhood needs a 3D source, got %d dimensions", src.NumDimensions())
	}
	s := &Sphere{
		box:         newBox(src),
		calibration: src.Image().Calibration(),
	}
	if err := s.SetRadius(radius); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRadius changes the physical radius and recomputes the per-axis span. A
// radius of 0 collapses the neighborhood to the center voxel.
func (s *Sphere) SetRadius(radius float64) error {
	span, err := SpanFromRadius(radius, s.calibration)
	if err != nil {
		return err
	}
	s.radius = radius
	copy(s.span, span)
	s.sizeValid = false
	return nil
}

// Radius returns the current physical radius.
func (s *Sphere) Radius() float64 {
	return s.radius
}

// Size returns the exact number of lattice points inside the sphere for the
// current radius, cached until the radius changes.
func (s *Sphere) Size() int {
	if !s.sizeValid {
		s.cachedSize = ellipsoidSize(s.span)
		s.sizeValid = true
	}
	return s.cachedSize
}

// Cursor returns a new radial cursor over the sphere, snapshotting the
// current center and span.
func (s *Sphere) Cursor() Cursor {
	return s.RadialCursor()
}

// LocalizingCursor returns the same cursor type as Cursor.
func (s *Sphere) LocalizingCursor() Cursor {
	return s.Cursor()
}

// RadialCursor returns the concrete cursor type, exposing the offset vector
// and physical distance from the center after each step.
func (s *Sphere) RadialCursor() *SphereCursor {
	return &SphereCursor{
		EllipsoidCursor: newEllipsoidCursor(s.src, s.center, s.span, s.Size()),
		calibration:     s.calibration,
	}
}

func (s *Sphere) kind() shapeKind {
	return kindSphere
}

// SphereCursor traverses a sphere like an ellipsoid cursor and additionally
// reports, after each step, the offset from the neighborhood center and its
// calibrated physical distance. Useful for weighting filter kernels by
// distance without recomputing coordinates.
type SphereCursor struct {
	*EllipsoidCursor
	calibration []float64
}

// PhysicalOffset copies the calibrated offset vector from the neighborhood
// center to the current coordinate into dst.
func (c *SphereCursor) PhysicalOffset(dst []float64) {
	for d := range c.delta {
		dst[d] = float64(c.delta[d]) * c.calibration[d]
	}
}

// PhysicalDistance returns the calibrated euclidean distance from the
// neighborhood center to the current coordinate.
func (c *SphereCursor) PhysicalDistance() float64 {
	sum := 0.0
	for d := range c.delta {
		v := float64(c.delta[d]) * c.calibration[d]
		sum += v * v
	}
	return math.Sqrt(sum)
}
