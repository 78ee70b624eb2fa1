package localization

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FitConfig controls the Levenberg-Marquardt refinement.
type FitConfig struct {
	// MaxIterations caps the number of accepted or rejected steps.
	MaxIterations int

	// Tolerance stops the fit when the relative improvement of the sum of
	// squared residuals falls below it.
	Tolerance float64

	// InitialLambda is the starting damping factor; it is divided by ten on
	// every accepted step and multiplied by ten on every rejected one.
	InitialLambda float64
}

// DefaultFitConfig returns the settings used when callers have no opinion.
func DefaultFitConfig() FitConfig {
	return FitConfig{
		MaxIterations: 300,
		Tolerance:     1e-9,
		InitialLambda: 1e-3,
	}
}

// FitPeak refines start parameters for an elliptic orthogonal Gaussian
// against the sample window using damped least squares: at each step the
// normal equations (J'J + lambda*diag(J'J)) delta = J'r are solved and the
// step kept only when it lowers the squared error. The start vector is not
// modified; the refined parameters are returned.
func FitPeak(data *Observation, start []float64, cfg FitConfig) ([]float64, error) {
	if data.NumSamples() == 0 {
		return nil, fmt.Errorf("localization: cannot fit an empty sample window")
	}
	nDims := len(data.Positions[0])
	model := EllipticGaussianOrtho{NDims: nDims}
	np := model.NumParams()
	if len(start) != np {
		return nil, fmt.Errorf("localization: start vector has %d parameters, model needs %d", len(start), np)
	}
	if cfg.MaxIterations <= 0 {
		cfg = DefaultFitConfig()
	}

	n := data.NumSamples()
	params := append([]float64(nil), start...)
	trial := make([]float64, np)
	grad := make([]float64, np)

	jac := mat.NewDense(n, np, nil)
	resid := mat.NewVecDense(n, nil)
	var jtj, damped mat.Dense
	var jtr, delta mat.VecDense

	sse := sumSquaredResiduals(data, model, params)
	lambda := cfg.InitialLambda
	rejected := 0

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		for i, pos := range data.Positions {
			model.Gradient(pos, params, grad)
			jac.SetRow(i, grad)
			resid.SetVec(i, data.Intensities[i]-model.Value(pos, params))
		}

		jtj.Mul(jac.T(), jac)
		jtr.MulVec(jac.T(), resid)

		damped.CloneFrom(&jtj)
		for k := 0; k < np; k++ {
			damped.Set(k, k, jtj.At(k, k)*(1+lambda))
		}

		if err := delta.SolveVec(&damped, &jtr); err != nil {
			// Singular system; raise the damping and retry.
			lambda *= 10
			rejected++
			if rejected > 2*np+20 {
				return nil, fmt.Errorf("localization: normal equations stayed singular: %w", err)
			}
			continue
		}

		for k := 0; k < np; k++ {
			trial[k] = params[k] + delta.AtVec(k)
		}

		trialSSE := sumSquaredResiduals(data, model, trial)
		if trialSSE < sse {
			improvement := (sse - trialSSE) / sse
			copy(params, trial)
			sse = trialSSE
			lambda /= 10
			rejected = 0
			if improvement < cfg.Tolerance {
				break
			}
		} else {
			lambda *= 10
			rejected++
			if rejected > 2*np+20 {
				break
			}
		}
	}
	return params, nil
}

func sumSquaredResiduals(data *Observation, model EllipticGaussianOrtho, params []float64) float64 {
	sse := 0.0
	for i, pos := range data.Positions {
		r := data.Intensities[i] - model.Value(pos, params)
		sse += r * r
	}
	return sse
}
