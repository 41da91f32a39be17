// Package tscube reads cached Landsat timeseries lines and exposes them as
// labeled (band, time, column) cubes supporting label-based selection.
package tscube

import (
	"fmt"
	"time"
)

// DefaultBands names the bands of a stacked Landsat cache line, in the
// order the stack writer emits them.
var DefaultBands = []string{
	"blue", "green", "red", "nir", "swir1", "swir2", "temp", "fmask",
}

// Cube is a three-dimensional int16 array whose axes carry labels: band
// names, acquisition times and pixel columns. Selection is by label value
// rather than by position. A Cube is read-only once constructed.
type Cube struct {
	bands   []string
	times   []time.Time
	columns []int
	data    []int16 // C order: data[b*nt*nc + t*nc + x]

	bandIdx map[string]int
}

// NewCube wraps flat C-order data with the three label sets. Each axis
// length must equal its label count; a mismatch fails construction instead
// of surfacing later as a misaligned read.
func NewCube(data []int16, bands []string, times []time.Time, columns []int) (*Cube, error) {
	want := len(bands) * len(times) * len(columns)
	if len(data) != want {
		return nil, fmt.Errorf("label/shape mismatch: %d bands x %d times x %d columns needs %d elements, have %d",
			len(bands), len(times), len(columns), want, len(data))
	}

	bandIdx := make(map[string]int, len(bands))
	for i, name := range bands {
		if _, dup := bandIdx[name]; dup {
			return nil, fmt.Errorf("duplicate band label %q", name)
		}
		bandIdx[name] = i
	}

	return &Cube{
		bands:   bands,
		times:   times,
		columns: columns,
		data:    data,
		bandIdx: bandIdx,
	}, nil
}

// Shape returns the axis lengths (band, time, column).
func (c *Cube) Shape() (nband, ntime, ncol int) {
	return len(c.bands), len(c.times), len(c.columns)
}

// Bands returns the band labels in axis order.
func (c *Cube) Bands() []string { return c.bands }

// Times returns the time labels in axis order.
func (c *Cube) Times() []time.Time { return c.times }

// Columns returns the column labels in axis order.
func (c *Cube) Columns() []int { return c.columns }

// At returns the value at positional indices (band, time, column).
func (c *Cube) At(b, t, x int) (int16, error) {
	if b < 0 || b >= len(c.bands) || t < 0 || t >= len(c.times) || x < 0 || x >= len(c.columns) {
		return 0, fmt.Errorf("index (%d, %d, %d) out of bounds for shape (%d, %d, %d)",
			b, t, x, len(c.bands), len(c.times), len(c.columns))
	}
	return c.data[(b*len(c.times)+t)*len(c.columns)+x], nil
}

// Band selects by band label, returning a (time, column) view over the
// cube's backing array.
func (c *Cube) Band(name string) (*BandSlice, error) {
	b, ok := c.bandIdx[name]
	if !ok {
		return nil, fmt.Errorf("unknown band %q (have %v)", name, c.bands)
	}
	return &BandSlice{cube: c, band: b}, nil
}

// BandSlice is a two-dimensional (time, column) view of one band.
type BandSlice struct {
	cube *Cube
	band int
}

// Name returns the band label this slice was selected by.
func (s *BandSlice) Name() string { return s.cube.bands[s.band] }

// Times returns the time labels in axis order.
func (s *BandSlice) Times() []time.Time { return s.cube.times }

// At returns the value at positional indices (time, column).
func (s *BandSlice) At(t, x int) (int16, error) {
	return s.cube.At(s.band, t, x)
}

// Column selects by column label, returning the timeseries of this band at
// that pixel column.
func (s *BandSlice) Column(x int) (*Series, error) {
	for i, label := range s.cube.columns {
		if label == x {
			return &Series{cube: s.cube, band: s.band, col: i}, nil
		}
	}
	if len(s.cube.columns) == 0 {
		return nil, fmt.Errorf("unknown column %d (cube has no columns)", x)
	}
	return nil, fmt.Errorf("unknown column %d (have %d..%d)",
		x, s.cube.columns[0], s.cube.columns[len(s.cube.columns)-1])
}

// Series is a one-dimensional view over time: one band at one column.
type Series struct {
	cube *Cube
	band int
	col  int
}

// Band returns the band label this series belongs to.
func (s *Series) Band() string { return s.cube.bands[s.band] }

// Column returns the column label this series belongs to.
func (s *Series) Column() int { return s.cube.columns[s.col] }

// Times returns the time labels in axis order.
func (s *Series) Times() []time.Time { return s.cube.times }

// Values copies the series out of the cube in time order.
func (s *Series) Values() []int16 {
	nt := len(s.cube.times)
	nc := len(s.cube.columns)
	out := make([]int16, nt)
	for t := 0; t < nt; t++ {
		out[t] = s.cube.data[(s.band*nt+t)*nc+s.col]
	}
	return out
}
