package localization

import (
	"math"
	"testing"

	"voxelregion/pkg/voxel"
)

// TestFindPeaksDetectsPlantedMaxima plants two well-separated Gaussian
// blobs and expects exactly their centers back
func TestFindPeaksDetectsPlantedMaxima(t *testing.T) {
	img, err := voxel.NewIsotropicImage([]int{24, 24, 24})
	if err != nil {
		t.Fatal(err)
	}
	centers := [][]int{{6, 6, 6}, {17, 17, 17}}
	amplitudes := []float64{1.0, 0.9}
	plantBlobs(img, centers, amplitudes, 1.2)

	peaks, err := FindPeaks(img, 2.0, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks, got %d: %v", len(peaks), peaks)
	}
	for i, c := range centers {
		found := false
		for _, p := range peaks {
			if p.Position[0] == c[0] && p.Position[1] == c[1] && p.Position[2] == c[2] {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("planted peak %d at %v not detected", i, c)
		}
	}
}

// TestFindPeaksSuppression verifies kd-tree de-duplication of maxima closer
// than the minimum separation
func TestFindPeaksSuppression(t *testing.T) {
	img, err := voxel.NewIsotropicImage([]int{16, 16, 16})
	if err != nil {
		t.Fatal(err)
	}
	img.Set([]int{5, 5, 5}, 1.0)
	img.Set([]int{8, 5, 5}, 0.8)

	// Without a separation both spikes are local maxima of their radius-2
	// spheres
	peaks, err := FindPeaks(img, 2.0, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks without suppression, got %d", len(peaks))
	}

	// With a 5-voxel separation only the stronger spike survives
	peaks, err = FindPeaks(img, 2.0, 0.5, 5.0)
	if err != nil {
		t.Fatal(err)
	}
	if len(peaks) != 1 {
		t.Fatalf("expected 1 peak with suppression, got %d", len(peaks))
	}
	if peaks[0].Value != 1.0 {
		t.Errorf("the stronger peak must survive, got value %f", peaks[0].Value)
	}
}

// TestFindPeaksRejectsNon3D verifies the dimensionality precondition
func TestFindPeaksRejectsNon3D(t *testing.T) {
	img, err := voxel.NewIsotropicImage([]int{8, 8})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := FindPeaks(img, 1.0, 0.5, 0); err == nil {
		t.Error("expected an error for a 2D image")
	}
}

// plantBlobs adds isotropic Gaussian blobs of the given spread to the image
func plantBlobs(img *voxel.Image, centers [][]int, amplitudes []float64, sigma float64) {
	dims := img.Dims()
	pos := make([]int, 3)
	for z := 0; z < dims[2]; z++ {
		pos[2] = z
		for y := 0; y < dims[1]; y++ {
			pos[1] = y
			for x := 0; x < dims[0]; x++ {
				pos[0] = x
				v := img.Get(pos)
				for i, c := range centers {
					e := 0.0
					for d, xd := range []int{x, y, z} {
						dx := float64(xd - c[d])
						e += dx * dx / (2 * sigma * sigma)
					}
					v += amplitudes[i] * math.Exp(-e)
				}
				img.Set(pos, v)
			}
		}
	}
}
