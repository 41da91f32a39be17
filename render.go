package tscube

import (
	"fmt"
	"strings"
)

func (c *Cube) String() string {
	return fmt.Sprintf("<tscube.Cube (band: %d, time: %d, column: %d)>",
		len(c.bands), len(c.times), len(c.columns))
}

func (s *BandSlice) String() string {
	return fmt.Sprintf("<tscube.BandSlice %q (time: %d, column: %d)>",
		s.Name(), len(s.cube.times), len(s.cube.columns))
}

// String renders the series as a date/value table, one time step per line.
func (s *Series) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "<tscube.Series %q column=%d (time: %d)>\n",
		s.Band(), s.Column(), len(s.cube.times))
	values := s.Values()
	for t, when := range s.cube.times {
		fmt.Fprintf(&b, "%s  %6d\n", when.Format("2006-01-02"), values[t])
	}
	return b.String()
}
