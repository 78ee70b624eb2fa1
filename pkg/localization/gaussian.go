package localization

import (
	"math"
)

// EllipticGaussianOrtho is the peak model fitted by this package: a
// Gaussian surface whose ellipse axes are parallel to the image axes,
//
//	f(x) = A * exp(-sum_d b_d * (x_d - x0_d)^2)
//
// with the parameter layout documented on the package.
type EllipticGaussianOrtho struct {
	// NDims is the dimensionality of the data the model is evaluated on.
	NDims int
}

// NumParams returns the length of the parameter vector, 2*NDims + 1.
func (g EllipticGaussianOrtho) NumParams() int {
	return 2*g.NDims + 1
}

// Value evaluates the model at a position for the given parameters.
func (g EllipticGaussianOrtho) Value(pos, params []float64) float64 {
	return params[0] * math.Exp(-g.exponent(pos, params))
}

// Gradient writes the partial derivatives of the model with respect to each
// parameter into grad, which must have length NumParams.
func (g EllipticGaussianOrtho) Gradient(pos, params, grad []float64) {
	e := math.Exp(-g.exponent(pos, params))
	grad[0] = e
	ae := params[0] * e
	for d := 0; d < g.NDims; d++ {
		dx := pos[d] - params[1+d]
		b := params[1+g.NDims+d]
		grad[1+d] = ae * 2 * b * dx
		grad[1+g.NDims+d] = -ae * dx * dx
	}
}

func (g EllipticGaussianOrtho) exponent(pos, params []float64) float64 {
	sum := 0.0
	for d := 0; d < g.NDims; d++ {
		dx := pos[d] - params[1+d]
		sum += params[1+g.NDims+d] * dx * dx
	}
	return sum
}
