package component

import "sort"

// StorageCurve is an ordered sequence of (volume, level) pairs with
// strictly increasing volumes, supporting linear interpolation in both
// directions.
type StorageCurve struct {
	Volumes []float64
	Levels  []float64
}

// NewStorageCurve validates and constructs a StorageCurve from parallel
// volume/level slices.
func NewStorageCurve(componentID string, volumes, levels []float64) (*StorageCurve, error) {
	if len(volumes) < 2 || len(volumes) != len(levels) {
		return nil, &InvalidStateParameterError{
			ComponentID: componentID,
			Reason:      "storage curve must have at least two matching volume/level points",
		}
	}
	for i := 1; i < len(volumes); i++ {
		if volumes[i] <= volumes[i-1] {
			return nil, &InvalidStateParameterError{
				ComponentID: componentID,
				Reason:      "storage curve volumes must be strictly increasing",
			}
		}
	}
	return &StorageCurve{Volumes: volumes, Levels: levels}, nil
}

// LevelAt linearly interpolates the level for a given volume, clamping to
// the curve's endpoints outside the convex hull.
func (c *StorageCurve) LevelAt(volume float64) float64 {
	return interp(volume, c.Volumes, c.Levels)
}

// VolumeAt linearly interpolates the volume for a given level (the
// inverse mapping), clamping to the curve's endpoints.
func (c *StorageCurve) VolumeAt(level float64) float64 {
	return interp(level, c.Levels, c.Volumes)
}

// SurfaceAreaAt returns the local surface area at volume, computed as the
// secant slope of the storage curve (dV/dL) around the bracketing
// segment; flat segments fall back to the neighboring non-flat slope.
func (c *StorageCurve) SurfaceAreaAt(volume float64) float64 {
	n := len(c.Volumes)
	idx := sort.SearchFloat64s(c.Volumes, volume)
	if idx <= 0 {
		idx = 1
	}
	if idx >= n {
		idx = n - 1
	}
	v1, v2 := c.Volumes[idx-1], c.Volumes[idx]
	l1, l2 := c.Levels[idx-1], c.Levels[idx]
	if l2 == l1 {
		return 0
	}
	return (v2 - v1) / (l2 - l1)
}

// interp performs monotone linear interpolation of y = f(x) given
// parallel xs (strictly increasing) and ys, clamping outside the range.
func interp(x float64, xs, ys []float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	idx := sort.SearchFloat64s(xs, x)
	x0, x1 := xs[idx-1], xs[idx]
	y0, y1 := ys[idx-1], ys[idx]
	frac := (x - x0) / (x1 - x0)
	return y0 + frac*(y1-y0)
}
