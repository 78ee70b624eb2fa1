package region

import (
	"fmt"
	"math"
)

// SpanFromRadius converts a physical radius into per-axis half-extents in
// voxels, span[d] = round(radius / calibration[d]). On an anisotropic grid
// this makes a physically round region: axes with coarser sampling get a
// smaller voxel span.
//
// The radius must be non-negative and every calibration entry strictly
// positive. The conversion happens at construction or on an explicit radius
// change, never inside the per-step iteration path.
func SpanFromRadius(radius float64, calibration []float64) ([]int, error) {
	if radius < 0 {
		return nil, fmt.Errorf("negative radius %g", radius)
	}
	span := make([]int, len(calibration))
	for d, c := range calibration {
		if c <= 0 {
			return nil, fmt.Errorf("calibration[%d] = %g, must be positive", d, c)
		}
		span[d] = int(math.Round(radius / c))
	}
	return span, nil
}
