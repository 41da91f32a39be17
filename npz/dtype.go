package npz

import (
	"fmt"
	"strconv"
)

// DType is a parsed numpy dtype code such as "<i2", "<f8" or "|S17".
type DType struct {
	// Kind is the numpy kind character: 'b', 'i', 'u', 'f', 'c', 'S' or 'U'.
	Kind byte
	// Name is a Go-facing name such as "int16", "float64" or "bytes".
	Name string
	// ItemSize is the number of bytes one element occupies.
	ItemSize int
	// Width is the per-element character count for 'S' and 'U' kinds,
	// zero otherwise.
	Width int
}

// ParseDType parses a numpy-style dtype string like "<i2", "|b1" or "<U17".
// Big-endian ('>') types are rejected.
func ParseDType(s string) (DType, error) {
	if len(s) < 3 {
		return DType{}, fmt.Errorf("invalid dtype: %s", s)
	}

	switch s[0] {
	case '<', '|', '=':
	case '>':
		return DType{}, fmt.Errorf("big-endian types are unsupported: %s", s)
	default:
		return DType{}, fmt.Errorf("invalid byte order in dtype: %s", s)
	}

	kind := s[1]
	size, err := strconv.Atoi(s[2:])
	if err != nil || size <= 0 {
		return DType{}, fmt.Errorf("invalid size in dtype: %s", s)
	}

	switch kind {
	case 'b':
		return DType{Kind: kind, Name: "bool", ItemSize: size}, nil
	case 'i':
		return DType{Kind: kind, Name: fmt.Sprintf("int%d", size*8), ItemSize: size}, nil
	case 'u':
		return DType{Kind: kind, Name: fmt.Sprintf("uint%d", size*8), ItemSize: size}, nil
	case 'f':
		return DType{Kind: kind, Name: fmt.Sprintf("float%d", size*8), ItemSize: size}, nil
	case 'c':
		return DType{Kind: kind, Name: fmt.Sprintf("complex%d", size*8), ItemSize: size}, nil
	case 'S':
		// Fixed-width byte strings: one byte per character.
		return DType{Kind: kind, Name: "bytes", ItemSize: size, Width: size}, nil
	case 'U':
		// Fixed-width unicode strings: UCS-4, four bytes per character.
		return DType{Kind: kind, Name: "unicode", ItemSize: size * 4, Width: size}, nil
	default:
		return DType{}, fmt.Errorf("unsupported dtype kind: %c in %s", kind, s)
	}
}
