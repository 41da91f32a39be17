// Package npz reads numpy's NPY and NPZ serialization formats: single
// arrays, and zip archives bundling several named arrays.
package npz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var npyMagic = []byte("\x93NUMPY")

// Array is one decoded NPY array: its dtype, shape and a flat C-order
// payload. Data is one of []bool, []int8, []int16, []int32, []int64,
// []uint8, []uint16, []uint32, []uint64, []float32, []float64 or
// []string depending on the dtype.
type Array struct {
	DType DType
	Shape []int
	Data  any
}

// Len returns the number of elements the shape describes.
func (a *Array) Len() int {
	n := 1
	for _, dim := range a.Shape {
		n *= dim
	}
	return n
}

// ReadNPY decodes a single NPY v1.0 or v2.0 stream.
func ReadNPY(r io.Reader) (*Array, error) {
	preamble := make([]byte, 8)
	if _, err := io.ReadFull(r, preamble); err != nil {
		return nil, fmt.Errorf("failed to read npy preamble: %w", err)
	}
	if !bytes.Equal(preamble[:6], npyMagic) {
		return nil, fmt.Errorf("not an npy stream: bad magic %q", preamble[:6])
	}

	major := preamble[6]
	var headerLen int
	switch major {
	case 1:
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy v1 header length: %w", err)
		}
		headerLen = int(n)
	case 2:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("failed to read npy v2 header length: %w", err)
		}
		headerLen = int(n)
	default:
		return nil, fmt.Errorf("unsupported npy version: %d.%d", major, preamble[7])
	}

	header := make([]byte, headerLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read npy header: %w", err)
	}

	descr, fortran, shape, err := parseHeader(string(header))
	if err != nil {
		return nil, fmt.Errorf("failed to parse npy header: %w", err)
	}
	if fortran {
		return nil, fmt.Errorf("fortran-order arrays are unsupported")
	}

	dt, err := ParseDType(descr)
	if err != nil {
		return nil, fmt.Errorf("invalid dtype: %w", err)
	}

	elements := 1
	for _, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("negative dimension in shape %v", shape)
		}
		elements *= dim
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read npy payload: %w", err)
	}
	if len(payload) != elements*dt.ItemSize {
		return nil, fmt.Errorf("payload size mismatch: shape %v of %s needs %d bytes, have %d",
			shape, descr, elements*dt.ItemSize, len(payload))
	}

	data, err := decodePayload(dt, elements, payload)
	if err != nil {
		return nil, err
	}

	return &Array{DType: dt, Shape: shape, Data: data}, nil
}

// parseHeader extracts descr, fortran_order and shape from the python dict
// literal that follows the NPY preamble, e.g.
// {'descr': '<i2', 'fortran_order': False, 'shape': (8, 447, 250), }
func parseHeader(h string) (descr string, fortran bool, shape []int, err error) {
	descr, err = headerString(h, "descr")
	if err != nil {
		return "", false, nil, err
	}

	idx := strings.Index(h, "'fortran_order':")
	if idx < 0 {
		return "", false, nil, fmt.Errorf("header missing fortran_order: %s", h)
	}
	rest := strings.TrimLeft(h[idx+len("'fortran_order':"):], " ")
	switch {
	case strings.HasPrefix(rest, "False"):
		fortran = false
	case strings.HasPrefix(rest, "True"):
		fortran = true
	default:
		return "", false, nil, fmt.Errorf("invalid fortran_order in header: %s", h)
	}

	idx = strings.Index(h, "'shape':")
	if idx < 0 {
		return "", false, nil, fmt.Errorf("header missing shape: %s", h)
	}
	open := strings.IndexByte(h[idx:], '(')
	closing := strings.IndexByte(h[idx:], ')')
	if open < 0 || closing < 0 || closing < open {
		return "", false, nil, fmt.Errorf("invalid shape tuple in header: %s", h)
	}
	for _, field := range strings.Split(h[idx+open+1:idx+closing], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue // trailing comma of a 1-tuple, or a 0-d scalar
		}
		dim, err := strconv.Atoi(field)
		if err != nil {
			return "", false, nil, fmt.Errorf("invalid dimension %q in header: %s", field, h)
		}
		shape = append(shape, dim)
	}

	return descr, fortran, shape, nil
}

func headerString(h, key string) (string, error) {
	idx := strings.Index(h, "'"+key+"':")
	if idx < 0 {
		return "", fmt.Errorf("header missing %s: %s", key, h)
	}
	rest := strings.TrimLeft(h[idx+len(key)+3:], " ")
	if len(rest) == 0 || (rest[0] != '\'' && rest[0] != '"') {
		return "", fmt.Errorf("invalid %s value in header: %s", key, h)
	}
	quote := rest[0]
	end := strings.IndexByte(rest[1:], quote)
	if end < 0 {
		return "", fmt.Errorf("unterminated %s value in header: %s", key, h)
	}
	return rest[1 : 1+end], nil
}

func decodePayload(dt DType, elements int, raw []byte) (any, error) {
	switch dt.Kind {
	case 'b':
		out := make([]bool, elements)
		for i := range out {
			out[i] = raw[i] != 0
		}
		return out, nil
	case 'i':
		switch dt.ItemSize {
		case 1:
			out := make([]int8, elements)
			for i := range out {
				out[i] = int8(raw[i])
			}
			return out, nil
		case 2:
			out := make([]int16, elements)
			for i := range out {
				out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
			}
			return out, nil
		case 4:
			out := make([]int32, elements)
			for i := range out {
				out[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
			}
			return out, nil
		case 8:
			out := make([]int64, elements)
			for i := range out {
				out[i] = int64(binary.LittleEndian.Uint64(raw[i*8:]))
			}
			return out, nil
		}
	case 'u':
		switch dt.ItemSize {
		case 1:
			out := make([]uint8, elements)
			copy(out, raw)
			return out, nil
		case 2:
			out := make([]uint16, elements)
			for i := range out {
				out[i] = binary.LittleEndian.Uint16(raw[i*2:])
			}
			return out, nil
		case 4:
			out := make([]uint32, elements)
			for i := range out {
				out[i] = binary.LittleEndian.Uint32(raw[i*4:])
			}
			return out, nil
		case 8:
			out := make([]uint64, elements)
			for i := range out {
				out[i] = binary.LittleEndian.Uint64(raw[i*8:])
			}
			return out, nil
		}
	case 'f':
		switch dt.ItemSize {
		case 4:
			out := make([]float32, elements)
			for i := range out {
				out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
			}
			return out, nil
		case 8:
			out := make([]float64, elements)
			for i := range out {
				out[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
			}
			return out, nil
		}
	case 'S':
		out := make([]string, elements)
		for i := range out {
			field := raw[i*dt.ItemSize : (i+1)*dt.ItemSize]
			out[i] = string(bytes.TrimRight(field, "\x00"))
		}
		return out, nil
	case 'U':
		out := make([]string, elements)
		for i := range out {
			field := raw[i*dt.ItemSize : (i+1)*dt.ItemSize]
			runes := make([]rune, 0, dt.Width)
			for j := 0; j < dt.Width; j++ {
				r := rune(binary.LittleEndian.Uint32(field[j*4:]))
				if r == 0 {
					break
				}
				runes = append(runes, r)
			}
			out[i] = string(runes)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot decode dtype %s (%d bytes/element)", dt.Name, dt.ItemSize)
}
