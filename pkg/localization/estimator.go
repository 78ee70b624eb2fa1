package localization

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrZeroIntensity is returned when a sample window carries no total
// intensity, which leaves the weighted centroid and variance undefined.
var ErrZeroIntensity = errors.New("localization: zero total intensity in sample window")

// StartPointEstimator computes an initial parameter guess for fitting a
// peak from a window of sampled intensities.
type StartPointEstimator interface {
	// DomainSpan suggests the per-axis half-size of the sampling window for
	// the typical peak spread the estimator was built for.
	DomainSpan() []int

	// InitializeFit returns the start parameters in the layout documented
	// on the package: amplitude, per-axis center, per-axis b = 1/sigma^2.
	InitializeFit(point []int, data *Observation) ([]float64, error)
}

// CovarianceEstimator estimates start parameters for an elliptic orthogonal
// Gaussian (axes parallel to the image axes) from intensity-weighted
// moments: amplitude from the window maximum, center from the weighted
// centroid, b from the inverse of the weighted second central moment.
//
// The estimate assumes the background intensity near the window edges is
// close to zero; a raised background biases both the centroid and the
// variance and is the caller's responsibility to remove.
type CovarianceEstimator struct {
	sigmas []float64
	span   []int
}

// NewCovarianceEstimator builds an estimator for peaks with the given
// typical spread per axis. The window half-size is ceil(2*sigma[d]). Every
// sigma must be positive.
func NewCovarianceEstimator(typicalSigmas []float64) (*CovarianceEstimator, error) {
	if len(typicalSigmas) == 0 {
		return nil, fmt.Errorf("estimator needs at least one sigma")
	}
	span := make([]int, len(typicalSigmas))
	for d, s := range typicalSigmas {
		if s <= 0 {
			return nil, fmt.Errorf("typical sigma[%d] = %g, must be positive", d, s)
		}
		span[d] = int(math.Ceil(2 * s))
	}
	return &CovarianceEstimator{
		sigmas: append([]float64(nil), typicalSigmas...),
		span:   span,
	}, nil
}

// DomainSpan returns a copy of the suggested window half-size per axis.
func (e *CovarianceEstimator) DomainSpan() []int {
	return append([]int(nil), e.span...)
}

// InitializeFit computes the start parameters from the sample window. The
// point argument is the detection coordinate the window was gathered
// around; the estimate itself derives entirely from the absolute sample
// positions.
func (e *CovarianceEstimator) InitializeFit(point []int, data *Observation) ([]float64, error) {
	nDims := len(e.sigmas)
	n := data.NumSamples()
	if n == 0 {
		return nil, ErrZeroIntensity
	}

	sum := floats.Sum(data.Intensities)
	if sum == 0 {
		return nil, ErrZeroIntensity
	}

	params := make([]float64, 2*nDims+1)
	params[0] = floats.Max(data.Intensities)

	// One pass per axis through a column view of the positions; the
	// intensities act as the weights of the moments.
	column := make([]float64, n)
	for d := 0; d < nDims; d++ {
		for i, pos := range data.Positions {
			column[i] = pos[d]
		}
		centroid := stat.Mean(column, data.Intensities)
		params[1+d] = centroid

		c := stat.MomentAbout(2, column, centroid, data.Intensities)
		if c <= 0 {
			return nil, fmt.Errorf("localization: degenerate intensity distribution along axis %d: %w", d, ErrZeroIntensity)
		}
		params[1+nDims+d] = 1 / c
	}
	return params, nil
}
