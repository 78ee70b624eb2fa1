package region

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"voxelregion/pkg/voxel"
)

// TestDiscMatchesCircleInequality builds the in-shape set two ways and
// asserts exact agreement, as for the ellipsoid
func TestDiscMatchesCircleInequality(t *testing.T) {
	for _, radius := range []float64{0, 1, 2.5, 4, 6.7} {
		disc, err := NewDisc(extendedTestImage(t, []int{40, 40}), radius)
		if err != nil {
			t.Fatal(err)
		}
		center := []int{20, 20}
		disc.SetCenter(center)
		span := disc.Span()

		visited := make(map[[2]int]bool)
		cursor := disc.Cursor()
		for cursor.HasNext() {
			if err := cursor.Fwd(); err != nil {
				t.Fatal(err)
			}
			pos := cursor.Position()
			visited[[2]int{pos[0], pos[1]}] = true
		}

		expected := make(map[[2]int]bool)
		delta := make([]int, 2)
		for dy := -span[1]; dy <= span[1]; dy++ {
			for dx := -span[0]; dx <= span[0]; dx++ {
				delta[0], delta[1] = dx, dy
				if insideEllipsoid(delta, span) {
					expected[[2]int{center[0] + dx, center[1] + dy}] = true
				}
			}
		}

		if diff := cmp.Diff(expected, visited); diff != "" {
			t.Errorf("radius %g: cursor and inside test disagree (-inside +cursor):\n%s", radius, diff)
		}
		if disc.Size() != len(expected) {
			t.Errorf("radius %g: Size() = %d, lattice count = %d", radius, disc.Size(), len(expected))
		}
	}
}

// TestDiscAnisotropicCalibration verifies the elliptical voxel footprint of
// a physically circular disc
func TestDiscAnisotropicCalibration(t *testing.T) {
	img, err := voxel.NewImage([]int{40, 40}, []float64{1.0, 2.0})
	if err != nil {
		t.Fatal(err)
	}
	disc, err := NewDisc(voxel.Extend(img, voxel.ExtendMirrorDouble), 6.0)
	if err != nil {
		t.Fatal(err)
	}
	span := disc.Span()
	if span[0] != 6 || span[1] != 3 {
		t.Errorf("expected span [6, 3], got %v", span)
	}
}

// TestDiscRadiusZero verifies the single-coordinate degenerate case
func TestDiscRadiusZero(t *testing.T) {
	disc, err := NewDisc(extendedTestImage(t, []int{10, 10}), 0)
	if err != nil {
		t.Fatal(err)
	}
	disc.SetCenter([]int{4, 5})
	if size := disc.Size(); size != 1 {
		t.Fatalf("expected size 1, got %d", size)
	}
	cursor := disc.RadialCursor()
	if _, err := cursor.Next(); err != nil {
		t.Fatal(err)
	}
	if d := cursor.PhysicalDistance(); d != 0 {
		t.Errorf("expected zero distance at the center, got %f", d)
	}
}

// TestDiscCursorReset verifies replay after reset
func TestDiscCursorReset(t *testing.T) {
	disc, err := NewDisc(extendedTestImage(t, []int{30, 30}), 4.2)
	if err != nil {
		t.Fatal(err)
	}
	disc.SetCenter([]int{15, 15})

	cursor := disc.Cursor()
	first := collectPositions(t, cursor)
	cursor.Reset()
	second := collectPositions(t, cursor)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("replay after Reset diverged (-first +second):\n%s", diff)
	}
}

// TestDiscRejectsNon2DSource verifies the dimensionality precondition
func TestDiscRejectsNon2DSource(t *testing.T) {
	if _, err := NewDisc(extendedTestImage(t, []int{10, 10, 10}), 1); err == nil {
		t.Error("expected an error for a 3D source")
	}
}
