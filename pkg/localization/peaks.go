package localization

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/kdtree"

	"voxelregion/pkg/region"
	"voxelregion/pkg/voxel"
)

// Peak is a detected local intensity maximum.
type Peak struct {
	// Position is the voxel coordinate of the maximum.
	Position []int

	// Value is the intensity at the maximum.
	Value float64
}

// peakPoint is a peak in physical coordinates for the KD-tree used during
// de-duplication.
type peakPoint struct {
	x, y, z float64
	idx     int
}

// Compare implements the kdtree.Comparable interface.
func (p peakPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(peakPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	case 2:
		return p.z - q.z
	default:
		panic("illegal dimension")
	}
}

// Dims returns the number of dimensions for the KD-tree.
func (p peakPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance between two points.
func (p peakPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(peakPoint)
	dx := p.x - q.x
	dy := p.y - q.y
	dz := p.z - q.z
	return dx*dx + dy*dy + dz*dz
}

// peakPoints is a collection of peakPoint that satisfies kdtree.Interface.
type peakPoints []peakPoint

func (p peakPoints) Index(i int) kdtree.Comparable         { return p[i] }
func (p peakPoints) Len() int                              { return len(p) }
func (p peakPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot implements the kdtree.Interface method.
func (p peakPoints) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(peakPlane{peakPoints: p, Dim: d}, kdtree.MedianOfRandoms(peakPlane{peakPoints: p, Dim: d}, 100))
}

// peakPlane implements sort.Interface and kdtree.SortSlicer for peakPoints.
type peakPlane struct {
	peakPoints
	kdtree.Dim
}

func (p peakPlane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.peakPoints[i].x < p.peakPoints[j].x
	case 1:
		return p.peakPoints[i].y < p.peakPoints[j].y
	case 2:
		return p.peakPoints[i].z < p.peakPoints[j].z
	default:
		panic("illegal dimension")
	}
}

func (p peakPlane) Slice(start, end int) kdtree.SortSlicer {
	return peakPlane{peakPoints: p.peakPoints[start:end], Dim: p.Dim}
}

func (p peakPlane) Swap(i, j int) {
	p.peakPoints[i], p.peakPoints[j] = p.peakPoints[j], p.peakPoints[i]
}

// FindPeaks scans a 3D image for voxels at or above threshold that are local
// maxima of the sphere of the given physical radius around them, then
// suppresses maxima closer than minSeparation (in physical units) to a
// stronger one. Boundary voxels are compared against mirrored values.
func FindPeaks(img *voxel.Image, radius, threshold, minSeparation float64) ([]Peak, error) {
	if img.NumDimensions() != 3 {
		return nil, fmt.Errorf("localization: peak detection needs a 3D image, got %d dimensions", img.NumDimensions())
	}
	ext := voxel.Extend(img, voxel.ExtendMirrorDouble)
	sphere, err := region.NewSphere(ext, radius)
	if err != nil {
		return nil, fmt.Errorf("localization: building scan neighborhood: %w", err)
	}

	var candidates []Peak
	dims := img.Dims()
	pos := make([]int, 3)
	for z := 0; z < dims[2]; z++ {
		pos[2] = z
		for y := 0; y < dims[1]; y++ {
			pos[1] = y
			for x := 0; x < dims[0]; x++ {
				pos[0] = x
				v := img.Get(pos)
				if v < threshold {
					continue
				}
				sphere.SetCenter(pos)
				if isLocalMax(sphere, v) {
					candidates = append(candidates, Peak{
						Position: append([]int(nil), pos...),
						Value:    v,
					})
				}
			}
		}
	}

	if minSeparation <= 0 || len(candidates) < 2 {
		return candidates, nil
	}
	return suppressClosePeaks(candidates, img.Calibration(), minSeparation), nil
}

// isLocalMax reports whether no value inside the neighborhood exceeds v.
func isLocalMax(sphere *region.Sphere, v float64) bool {
	cursor := sphere.Cursor()
	for cursor.HasNext() {
		w, err := cursor.Next()
		if err != nil {
			return false
		}
		if w > v {
			return false
		}
	}
	return true
}

// suppressClosePeaks drops every peak that has a stronger peak within the
// given physical separation. Ties are broken by scan order so exactly one
// of an equal pair survives.
func suppressClosePeaks(peaks []Peak, calibration []float64, minSeparation float64) []Peak {
	points := make(peakPoints, len(peaks))
	for i, p := range peaks {
		points[i] = peakPoint{
			x:   float64(p.Position[0]) * calibration[0],
			y:   float64(p.Position[1]) * calibration[1],
			z:   float64(p.Position[2]) * calibration[2],
			idx: i,
		}
	}
	tree := kdtree.New(points, true)

	kept := make([]Peak, 0, len(peaks))
	sepSq := minSeparation * minSeparation
	for i, p := range peaks {
		keeper := kdtree.NewDistKeeper(sepSq)
		tree.NearestSet(keeper, points[i])

		suppressed := false
		for _, item := range keeper.Heap {
			// Skip the sentinel value.
			if item.Comparable == nil {
				continue
			}
			q := item.Comparable.(peakPoint)
			if q.idx == i || item.Dist > sepSq {
				continue
			}
			other := peaks[q.idx]
			if other.Value > p.Value || (other.Value == p.Value && q.idx < i) {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, p)
		}
	}
	return kept
}
