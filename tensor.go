package tscube

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Tensor copies the cube into a (band, time, column) tensor for downstream
// numeric code.
func (c *Cube) Tensor() *tensors.Tensor {
	data := make([]int16, len(c.data))
	copy(data, c.data)
	return tensors.FromFlatDataAndDimensions(data, len(c.bands), len(c.times), len(c.columns))
}

// Tensor copies one band into a (time, column) tensor.
func (s *BandSlice) Tensor() *tensors.Tensor {
	nt := len(s.cube.times)
	nc := len(s.cube.columns)
	data := make([]int16, nt*nc)
	copy(data, s.cube.data[s.band*nt*nc:(s.band+1)*nt*nc])
	return tensors.FromFlatDataAndDimensions(data, nt, nc)
}
