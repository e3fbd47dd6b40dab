// Package tile discretizes mixed continuous/integer state spaces into
// overlapping coarse-coded tilings for linear function approximation. Each
// tiling partitions the space into a regular grid; successive tilings are
// offset from the base grid by a uniform fraction of one step per
// dimension, so a point activates one tile in every tiling and nearby
// points share most of their active tiles.
package tile

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Bounds describes an integer dimension [Min, Max) tiled with unit steps.
type Bounds struct {
	Min, Max int
}

// ContinuousDimension describes a continuous dimension [Min, Max) split
// into StepCount equal tiles.
type ContinuousDimension struct {
	Min, Max  float64
	StepCount int
}

type continuousPartition struct {
	origin    float64
	stepSize  float64
	stepCount int
}

type integerPartition struct {
	origin    int
	stepCount int
}

// tiling is one grid over the full state space.
type tiling struct {
	continuous []continuousPartition
	integer    []integerPartition
	tileCount  int
}

// TilingSet is a set of offset tilings over one state space. All tilings
// index into a single shared flat feature vector of TileCount() entries.
type TilingSet struct {
	tilings []tiling
}

// NewTilingSet builds count tilings over a space with the given continuous
// and integer dimensions. Tiling i is offset from the base grid by
// i∙stepSize/count along every continuous dimension.
func NewTilingSet(continuous []ContinuousDimension, integer []Bounds, count int) *TilingSet {
	origins := make([]float64, len(continuous))
	offsetSteps := make([]float64, len(continuous))
	for i, d := range continuous {
		origins[i] = d.Min
		offsetSteps[i] = (d.Max - d.Min) / float64(d.StepCount) / float64(count)
	}

	ts := &TilingSet{tilings: make([]tiling, 0, count)}
	for n := 0; n < count; n++ {
		ts.tilings = append(ts.tilings, newTiling(continuous, integer, origins))
		for i := range origins {
			origins[i] += offsetSteps[i]
		}
	}
	return ts
}

func newTiling(continuous []ContinuousDimension, integer []Bounds, origins []float64) tiling {
	t := tiling{
		continuous: make([]continuousPartition, len(continuous)),
		integer:    make([]integerPartition, len(integer)),
		tileCount:  1,
	}
	for i, d := range continuous {
		t.continuous[i] = continuousPartition{
			origin:    origins[i],
			stepSize:  (d.Max - d.Min) / float64(d.StepCount),
			stepCount: d.StepCount,
		}
		t.tileCount *= d.StepCount
	}
	for i, b := range integer {
		t.integer[i] = integerPartition{
			origin:    b.Min,
			stepCount: b.Max - b.Min,
		}
		t.tileCount *= b.Max - b.Min
	}
	return t
}

// getTile returns the flattened index of the tile containing the point.
//
// The feature layout is fixed: iterating over tile indices, the coordinate
// in the first continuous dimension changes fastest and the coordinate in
// the last integer dimension changes slowest. Out-of-range coordinates
// saturate to the edge tiles rather than erroring.
func (t *tiling) getTile(pc []float64, pi []int) int {
	if len(pc) != len(t.continuous) || len(pi) != len(t.integer) {
		panic(fmt.Errorf("point has %d continuous and %d integer coordinates, tiling has %d and %d",
			len(pc), len(pi), len(t.continuous), len(t.integer)))
	}

	offset := 0
	for i := len(pi) - 1; i >= 0; i-- {
		p := t.integer[i]
		index := pi[i] - p.origin
		if index < 0 {
			index = 0
		}
		if index > p.stepCount-1 {
			index = p.stepCount - 1
		}
		offset = offset*p.stepCount + index
	}

	for i := len(pc) - 1; i >= 0; i-- {
		p := t.continuous[i]
		step := (pc[i] - p.origin) / p.stepSize
		if step < 0 {
			step = 0
		}
		index := int(step)
		if index > p.stepCount-1 {
			index = p.stepCount - 1
		}
		offset = offset*p.stepCount + index
	}

	return offset
}

// Count returns the number of tilings.
func (ts *TilingSet) Count() int {
	return len(ts.tilings)
}

// TileCount returns the total number of features: the sum over tilings of
// each tiling's tile count.
func (ts *TilingSet) TileCount() int {
	total := 0
	for i := range ts.tilings {
		total += ts.tilings[i].tileCount
	}
	return total
}

// GetTiles returns the indices of the tiles containing the given point, one
// per tiling, each offset by the cumulative tile count of the preceding
// tilings so they index into one shared flat feature vector.
func (ts *TilingSet) GetTiles(pc []float64, pi []int) []int {
	indices := make([]int, 0, len(ts.tilings))
	indexOffset := 0
	for i := range ts.tilings {
		t := &ts.tilings[i]
		indices = append(indices, t.getTile(pc, pi)+indexOffset)
		indexOffset += t.tileCount
	}
	return indices
}

// Features returns the point's sparse binary feature vector: TileCount()
// entries, with a 1 at each active tile index.
func (ts *TilingSet) Features(pc []float64, pi []int) *mat.VecDense {
	v := mat.NewVecDense(ts.TileCount(), nil)
	for _, index := range ts.GetTiles(pc, pi) {
		v.SetVec(index, 1.0)
	}
	return v
}
