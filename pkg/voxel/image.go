// Package voxel provides an n-dimensional float64 voxel grid with per-axis
// physical calibration, together with out-of-bounds extension policies that
// make any integer coordinate readable. It is the source-image layer the
// region package iterates over.
package voxel

import (
	"fmt"
)

// Image is an n-dimensional voxel grid stored as a flat slice in row-major
// order, with axis 0 varying fastest. Calibration holds the physical size of
// a voxel along each axis (e.g. mm per voxel) and captures anisotropic
// sampling such as a large inter-slice gap.
type Image struct {
	// Data is the voxel values as a flat array, axis 0 fastest.
	Data []float64

	dims        []int
	strides     []int
	calibration []float64
}

// NewImage allocates a zero-filled image with the given dimensions and
// per-axis calibration. Every dimension must be positive and every
// calibration entry must be strictly positive.
func NewImage(dims []int, calibration []float64) (*Image, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("image needs at least one dimension")
	}
	if len(calibration) != len(dims) {
		return nil, fmt.Errorf("calibration has %d entries for %d dimensions", len(calibration), len(dims))
	}

	n := 1
	strides := make([]int, len(dims))
	for d, size := range dims {
		if size <= 0 {
			return nil, fmt.Errorf("dimension %d has non-positive size %d", d, size)
		}
		strides[d] = n
		n *= size
	}
	for d, c := range calibration {
		if c <= 0 {
			return nil, fmt.Errorf("calibration[%d] = %g, must be positive", d, c)
		}
	}

	im := &Image{
		Data:        make([]float64, n),
		dims:        append([]int(nil), dims...),
		strides:     strides,
		calibration: append([]float64(nil), calibration...),
	}
	return im, nil
}

// NewIsotropicImage is a convenience constructor for a grid with unit
// calibration along every axis.
func NewIsotropicImage(dims []int) (*Image, error) {
	calibration := make([]float64, len(dims))
	for d := range calibration {
		calibration[d] = 1.0
	}
	return NewImage(dims, calibration)
}

// NumDimensions returns the dimensionality of the image.
func (im *Image) NumDimensions() int {
	return len(im.dims)
}

// Dim returns the size of the image along axis d.
func (im *Image) Dim(d int) int {
	return im.dims[d]
}

// Dims returns a copy of the image dimensions.
func (im *Image) Dims() []int {
	return append([]int(nil), im.dims...)
}

// Calibration returns a copy of the per-axis physical voxel sizes.
func (im *Image) Calibration() []float64 {
	return append([]float64(nil), im.calibration...)
}

// Offset converts an in-range position into an index into Data.
func (im *Image) Offset(pos []int) int {
	off := 0
	for d, x := range pos {
		off += x * im.strides[d]
	}
	return off
}

// Get returns the value at an in-range position. Callers holding coordinates
// that may fall outside the image must go through an Extended accessor.
func (im *Image) Get(pos []int) float64 {
	return im.Data[im.Offset(pos)]
}

// Set writes the value at an in-range position.
func (im *Image) Set(pos []int, v float64) {
	im.Data[im.Offset(pos)] = v
}

// Inside reports whether the position lies within the real extent of the
// image in every dimension.
func (im *Image) Inside(pos []int) bool {
	for d, x := range pos {
		if x < 0 || x >= im.dims[d] {
			return false
		}
	}
	return true
}
