// Package region implements movable, resizable local neighborhoods over an
// extended voxel image: a generic n-dimensional rectangle, a 3D ellipsoid, a
// calibration-aware 3D sphere and a 2D disc, each with a cursor that
// enumerates every coordinate inside the shape. Neighborhoods are positioned
// at a center voxel and resized through a per-axis span (half-extent) or,
// for the round shapes, a physical radius converted to spans through the
// image calibration.
//
// Neighborhoods and cursors are not safe for concurrent use. Several cursors
// over the same neighborhood may coexist for read-only traversal since each
// owns its iteration state.
package region

import (
	"errors"

	"voxelregion/pkg/voxel"
)

var (
	// ErrExhausted is returned when advancing a cursor that has already
	// visited every coordinate of its shape.
	ErrExhausted = errors.New("region: cursor exhausted")

	// ErrUnsupported is returned by cursor operations that neighborhoods do
	// not support, such as Remove.
	ErrUnsupported = errors.New("region: unsupported operation")
)

// Cursor walks every coordinate inside a neighborhood exactly once. A fresh
// cursor sits before the first coordinate; the first Fwd moves onto it.
// After the last coordinate Fwd returns ErrExhausted and the cursor must be
// Reset (or a new one created) before it can be used again.
type Cursor interface {
	// HasNext reports whether a further coordinate remains.
	HasNext() bool

	// Fwd advances to the next coordinate, or returns ErrExhausted.
	Fwd() error

	// Next advances and returns the value at the new coordinate. It is
	// shorthand for Fwd followed by Get.
	Next() (float64, error)

	// Get returns the value at the current coordinate, resolved through the
	// neighborhood's extended source.
	Get() float64

	// Set writes the value at the current coordinate through the extended
	// source.
	Set(v float64)

	// Localize copies the current absolute coordinate into pos.
	Localize(pos []int)

	// Position returns the current absolute coordinate as a fresh slice.
	Position() []int

	// Reset rewinds the cursor to before the first coordinate without
	// reallocating.
	Reset()

	// Remove always returns ErrUnsupported: neighborhoods are views onto an
	// image, not collections with deletion semantics.
	Remove() error

	// NumDimensions returns the dimensionality of the traversed shape.
	NumDimensions() int
}

type shapeKind int

const (
	kindRectangle shapeKind = iota
	kindEllipsoid
	kindSphere
	kindDisc
)

// Neighborhood is the capability set shared by all shapes: a positionable,
// bounded, sized region that hands out cursors over its coordinates.
type Neighborhood interface {
	NumDimensions() int

	// SetCenter, Move and the per-axis steps reposition the region. The
	// center may be placed partially or fully outside the source image;
	// legality of reads is the extension policy's concern.
	SetCenter(pos []int)
	Move(delta []int)
	Fwd(d int)
	Bck(d int)

	// Min, Max and Dim describe the bounding box for the current center and
	// span: [center[d]-span[d], center[d]+span[d]] along each axis.
	Min(d int) int
	Max(d int) int
	Dim(d int) int

	// Size returns the exact number of coordinates inside the shape.
	Size() int

	// FirstElement returns the value at the minimum corner of the bounding
	// box.
	FirstElement() float64

	// Cursor returns a new cursor snapshotting the current center and span.
	Cursor() Cursor

	// LocalizingCursor is identical to Cursor; every cursor here tracks its
	// position cheaply, so no specialization exists.
	LocalizingCursor() Cursor

	kind() shapeKind
	spanView() []int
}

// SameIterationOrder reports whether two neighborhoods enumerate their
// coordinates in the same relative order: they must be the same concrete
// shape with equal dimensionality and equal span along every axis. The
// centers are irrelevant since traversal is relative to the center.
func SameIterationOrder(a, b Neighborhood) bool {
	if a.kind() != b.kind() {
		return false
	}
	if a.NumDimensions() != b.NumDimensions() {
		return false
	}
	sa, sb := a.spanView(), b.spanView()
	for d := range sa {
		if sa[d] != sb[d] {
			return false
		}
	}
	return true
}

// box is the shared movable-region state: a center, a per-axis span and the
// extended source the cursors read through. Shapes embed it and add their
// size formula and traversal order.
type box struct {
	center []int
	span   []int
	src    *voxel.Extended
}

func newBox(src *voxel.Extended) box {
	n := src.NumDimensions()
	return box{
		center: make([]int, n),
		span:   make([]int, n),
		src:    src,
	}
}

// NumDimensions returns the dimensionality of the region.
func (b *box) NumDimensions() int {
	return len(b.center)
}

// SetCenter places the center at an absolute position.
func (b *box) SetCenter(pos []int) {
	copy(b.center, pos)
}

// Center returns a copy of the current center.
func (b *box) Center() []int {
	return append([]int(nil), b.center...)
}

// Move shifts the center by a relative offset.
func (b *box) Move(delta []int) {
	for d := range b.center {
		b.center[d] += delta[d]
	}
}

// MoveBy shifts the center along a single axis.
func (b *box) MoveBy(distance, d int) {
	b.center[d] += distance
}

// Fwd steps the center one voxel forward along axis d.
func (b *box) Fwd(d int) {
	b.center[d]++
}

// Bck steps the center one voxel backward along axis d.
func (b *box) Bck(d int) {
	b.center[d]--
}

// Min returns the lower bound of the region along axis d.
func (b *box) Min(d int) int {
	return b.center[d] - b.span[d]
}

// Max returns the upper bound of the region along axis d.
func (b *box) Max(d int) int {
	return b.center[d] + b.span[d]
}

// Dim returns the extent of the region along axis d, 2*span[d]+1.
func (b *box) Dim(d int) int {
	return 2*b.span[d] + 1
}

// Dims copies the per-axis extents into dst.
func (b *box) Dims(dst []int) {
	for d := range b.span {
		dst[d] = 2*b.span[d] + 1
	}
}

// Span returns a copy of the per-axis half-extents.
func (b *box) Span() []int {
	return append([]int(nil), b.span...)
}

// Source returns the extended accessor the region reads through.
func (b *box) Source() *voxel.Extended {
	return b.src
}

// FirstElement returns the value at the minimum corner of the bounding box.
func (b *box) FirstElement() float64 {
	pos := make([]int, len(b.center))
	for d := range pos {
		pos[d] = b.center[d] - b.span[d]
	}
	return b.src.Get(pos)
}

func (b *box) spanView() []int {
	return b.span
}
