package localization

import (
	"testing"

	"voxelregion/pkg/voxel"
)

// TestGatherObservation verifies that the window holds every coordinate of
// the span box with its sampled intensity
func TestGatherObservation(t *testing.T) {
	img, err := voxel.NewIsotropicImage([]int{5, 5, 5})
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Data {
		img.Data[i] = float64(i)
	}
	ext := voxel.Extend(img, voxel.ExtendMirrorDouble)

	obs, err := GatherObservation(ext, []int{2, 2, 2}, []int{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if obs.NumSamples() != 27 {
		t.Fatalf("expected 27 samples, got %d", obs.NumSamples())
	}

	// First sample is the minimum corner, row-major from there
	first := obs.Positions[0]
	if first[0] != 1 || first[1] != 1 || first[2] != 1 {
		t.Errorf("expected first sample at (1,1,1), got %v", first)
	}

	pos := make([]int, 3)
	for i, fpos := range obs.Positions {
		for d := range pos {
			pos[d] = int(fpos[d])
		}
		if obs.Intensities[i] != img.Get(pos) {
			t.Errorf("sample %d at %v: intensity %f, image holds %f", i, pos, obs.Intensities[i], img.Get(pos))
		}
	}
}

// TestGatherObservationPastBoundary verifies that windows hanging over the
// image edge are filled through the extension policy instead of failing
func TestGatherObservationPastBoundary(t *testing.T) {
	img, err := voxel.NewIsotropicImage([]int{4, 4, 4})
	if err != nil {
		t.Fatal(err)
	}
	for i := range img.Data {
		img.Data[i] = float64(i + 1)
	}
	ext := voxel.Extend(img, voxel.ExtendMirrorDouble)

	obs, err := GatherObservation(ext, []int{0, 0, 0}, []int{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if obs.NumSamples() != 27 {
		t.Fatalf("expected 27 samples, got %d", obs.NumSamples())
	}
	// The corner sample at (-1,-1,-1) mirrors onto (0,0,0)
	if obs.Intensities[0] != img.Get([]int{0, 0, 0}) {
		t.Errorf("expected the mirrored corner value %f, got %f", img.Get([]int{0, 0, 0}), obs.Intensities[0])
	}
}
