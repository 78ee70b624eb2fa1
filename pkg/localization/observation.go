// Package localization provides Gaussian peak localization on voxel images:
// sample-window gathering through neighborhood cursors, closed-form start
// point estimation from intensity-weighted moments, Levenberg-Marquardt
// refinement of an elliptic orthogonal Gaussian, and local-maxima peak
// detection.
//
// Fit parameter vectors follow a fixed positional layout that downstream
// code indexes into directly:
//
//	0            A      amplitude
//	1 .. n       x0_d   center along each axis
//	n+1 .. 2n    b_d    1 / sigma_d^2 along each axis
package localization

import (
	"fmt"

	"voxelregion/pkg/region"
	"voxelregion/pkg/voxel"
)

// Observation is a read-only window of sampled coordinates and their
// intensities, the input to start point estimation and fitting.
type Observation struct {
	// Positions holds one absolute coordinate per sample.
	Positions [][]float64

	// Intensities holds the sampled value for each position.
	Intensities []float64
}

// NumSamples returns the number of samples in the window.
func (o *Observation) NumSamples() int {
	return len(o.Intensities)
}

// GatherObservation samples the rectangular window of the given span around
// center through the extended source and returns it as an Observation. The
// window may extend past the image; boundary values come from the source's
// extension policy.
func GatherObservation(src *voxel.Extended, center, span []int) (*Observation, error) {
	cursor, err := region.NewDomainCursor(src, center, span)
	if err != nil {
		return nil, fmt.Errorf("gathering observation window: %w", err)
	}

	n := 1
	for _, s := range span {
		n *= 2*s + 1
	}
	obs := &Observation{
		Positions:   make([][]float64, 0, n),
		Intensities: make([]float64, 0, n),
	}

	pos := make([]int, len(center))
	for cursor.HasNext() {
		v, err := cursor.Next()
		if err != nil {
			return nil, err
		}
		cursor.Localize(pos)
		fpos := make([]float64, len(pos))
		for d, x := range pos {
			fpos[d] = float64(x)
		}
		obs.Positions = append(obs.Positions, fpos)
		obs.Intensities = append(obs.Intensities, v)
	}
	return obs, nil
}
