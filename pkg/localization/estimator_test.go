package localization

import (
	"errors"
	"math"
	"testing"
)

// TestEstimatorDomainSpan verifies the suggested window half-size of
// ceil(2*sigma) per axis
func TestEstimatorDomainSpan(t *testing.T) {
	estimator, err := NewCovarianceEstimator([]float64{1.0, 2.5, 1.2})
	if err != nil {
		t.Fatal(err)
	}
	span := estimator.DomainSpan()
	expected := []int{2, 5, 3}
	for d := range expected {
		if span[d] != expected[d] {
			t.Errorf("expected domain span %v, got %v", expected, span)
			break
		}
	}
}

// TestEstimatorValidation verifies the sigma preconditions
func TestEstimatorValidation(t *testing.T) {
	if _, err := NewCovarianceEstimator(nil); err == nil {
		t.Error("expected an error for an empty sigma vector")
	}
	if _, err := NewCovarianceEstimator([]float64{1.0, 0}); err == nil {
		t.Error("expected an error for a zero sigma")
	}
}

// TestEstimatorRecoversBlob verifies that a symmetric Gaussian blob with
// near-zero background yields centroid and inverse-variance estimates close
// to the truth
func TestEstimatorRecoversBlob(t *testing.T) {
	amplitude := 2.0
	center := []float64{20.3, 18.7}
	sigmas := []float64{1.5, 2.0}

	obs := blobObservation(amplitude, center, sigmas, []int{20, 18}, 10)

	estimator, err := NewCovarianceEstimator(sigmas)
	if err != nil {
		t.Fatal(err)
	}
	params, err := estimator.InitializeFit([]int{20, 18}, obs)
	if err != nil {
		t.Fatal(err)
	}

	if params[0] <= 0 || params[0] > amplitude {
		t.Errorf("amplitude estimate %f outside (0, %f]", params[0], amplitude)
	}
	for d := range center {
		if math.Abs(params[1+d]-center[d]) > 1e-3 {
			t.Errorf("centroid[%d] = %f, expected %f", d, params[1+d], center[d])
		}
		expectedB := 1 / (sigmas[d] * sigmas[d])
		if math.Abs(params[3+d]-expectedB)/expectedB > 1e-2 {
			t.Errorf("b[%d] = %f, expected %f within 1%%", d, params[3+d], expectedB)
		}
	}
}

// TestEstimatorZeroIntensity verifies the defined degenerate-window error
func TestEstimatorZeroIntensity(t *testing.T) {
	estimator, err := NewCovarianceEstimator([]float64{1.0, 1.0})
	if err != nil {
		t.Fatal(err)
	}

	obs := &Observation{
		Positions:   [][]float64{{0, 0}, {1, 0}, {0, 1}},
		Intensities: []float64{0, 0, 0},
	}
	if _, err := estimator.InitializeFit([]int{0, 0}, obs); !errors.Is(err, ErrZeroIntensity) {
		t.Errorf("expected ErrZeroIntensity, got %v", err)
	}

	empty := &Observation{}
	if _, err := estimator.InitializeFit([]int{0, 0}, empty); !errors.Is(err, ErrZeroIntensity) {
		t.Errorf("expected ErrZeroIntensity for an empty window, got %v", err)
	}
}

// blobObservation samples an elliptic Gaussian of the given amplitude,
// center and spread over a square window of the given half-size around
// windowCenter
func blobObservation(amplitude float64, center, sigmas []float64, windowCenter []int, half int) *Observation {
	obs := &Observation{}
	nDims := len(center)
	if nDims != 2 {
		panic("blobObservation builds 2D windows")
	}
	for y := windowCenter[1] - half; y <= windowCenter[1]+half; y++ {
		for x := windowCenter[0] - half; x <= windowCenter[0]+half; x++ {
			pos := []float64{float64(x), float64(y)}
			e := 0.0
			for d := range pos {
				dx := pos[d] - center[d]
				e += dx * dx / (2 * sigmas[d] * sigmas[d])
			}
			obs.Positions = append(obs.Positions, pos)
			obs.Intensities = append(obs.Intensities, amplitude*math.Exp(-e))
		}
	}
	return obs
}
