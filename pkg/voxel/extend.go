package voxel

// ExtensionPolicy selects how coordinates outside the real extent of an
// image are resolved to a value.
type ExtensionPolicy int

const (
	// ExtendMirrorSingle mirrors at the boundary without repeating the
	// boundary voxel: ... 2 1 | 0 1 2 ... n-1 | n-2 n-3 ...
	ExtendMirrorSingle ExtensionPolicy = iota

	// ExtendMirrorDouble mirrors at the boundary repeating the boundary
	// voxel: ... 1 0 | 0 1 2 ... n-1 | n-1 n-2 ...
	// This is the default policy for sphere and rectangle filtering.
	ExtendMirrorDouble

	// ExtendPeriodic tiles the image periodically along every axis.
	ExtendPeriodic

	// ExtendConstant yields a fixed fill value outside the image and
	// discards writes to out-of-range coordinates.
	ExtendConstant
)

// String returns the configuration name of the policy.
func (p ExtensionPolicy) String() string {
	switch p {
	case ExtendMirrorSingle:
		return "mirror-single"
	case ExtendMirrorDouble:
		return "mirror-double"
	case ExtendPeriodic:
		return "periodic"
	case ExtendConstant:
		return "constant"
	default:
		return "unknown"
	}
}

// Extended wraps an Image with an extension policy so that Get and Set
// accept arbitrary integer coordinates, including ones far outside the
// image's real extent. It never fails; the fold is pure integer arithmetic
// per axis.
//
// Extended does not own the image. Multiple Extended views over the same
// image may coexist.
type Extended struct {
	img    *Image
	policy ExtensionPolicy
	fill   float64
}

// Extend wraps img with the given policy. For ExtendConstant the fill value
// is zero; use ExtendWithConstant to choose it.
func Extend(img *Image, policy ExtensionPolicy) *Extended {
	return &Extended{img: img, policy: policy}
}

// ExtendWithConstant wraps img with the constant policy and the given fill
// value for out-of-range reads.
func ExtendWithConstant(img *Image, fill float64) *Extended {
	return &Extended{img: img, policy: ExtendConstant, fill: fill}
}

// Image returns the wrapped image.
func (e *Extended) Image() *Image {
	return e.img
}

// NumDimensions returns the dimensionality of the wrapped image.
func (e *Extended) NumDimensions() int {
	return len(e.img.dims)
}

// Get returns the value at an arbitrary integer position, folding
// out-of-range axes according to the policy.
func (e *Extended) Get(pos []int) float64 {
	off := 0
	for d, x := range pos {
		fx, inside := foldAxis(x, e.img.dims[d], e.policy)
		if !inside {
			return e.fill
		}
		off += fx * e.img.strides[d]
	}
	return e.img.Data[off]
}

// Set writes the value at an arbitrary integer position. Under the mirror
// and periodic policies the write lands on the folded in-range voxel; under
// the constant policy out-of-range writes are discarded.
func (e *Extended) Set(pos []int, v float64) {
	off := 0
	for d, x := range pos {
		fx, inside := foldAxis(x, e.img.dims[d], e.policy)
		if !inside {
			return
		}
		off += fx * e.img.strides[d]
	}
	e.img.Data[off] = v
}

// foldAxis maps coordinate x onto [0, n) under the policy. The returned
// flag is false only for the constant policy with x out of range.
func foldAxis(x, n int, policy ExtensionPolicy) (int, bool) {
	if x >= 0 && x < n {
		return x, true
	}
	switch policy {
	case ExtendMirrorSingle:
		if n == 1 {
			return 0, true
		}
		period := 2 * (n - 1)
		x = ((x % period) + period) % period
		if x >= n {
			x = period - x
		}
		return x, true
	case ExtendMirrorDouble:
		period := 2 * n
		x = ((x % period) + period) % period
		if x >= n {
			x = period - 1 - x
		}
		return x, true
	case ExtendPeriodic:
		return ((x % n) + n) % n, true
	default:
		return 0, false
	}
}
