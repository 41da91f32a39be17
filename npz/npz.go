package npz

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Archive is an open NPZ file: a zip container whose entries are NPY
// arrays. Entry names may be looked up with or without the ".npy" suffix
// the writer appends.
type Archive struct {
	files map[string]*zip.File
}

// Open reads the zip directory of an NPZ archive.
func Open(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open npz archive: %w", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[strings.TrimSuffix(f.Name, ".npy")] = f
	}
	return &Archive{files: files}, nil
}

// Names lists the archive's entry names, sorted, without the ".npy" suffix.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.files))
	for name := range a.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get decodes the named entry.
func (a *Archive) Get(name string) (*Array, error) {
	f, ok := a.files[strings.TrimSuffix(name, ".npy")]
	if !ok {
		return nil, fmt.Errorf("no entry %q in archive", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %q: %w", name, err)
	}
	defer rc.Close()

	arr, err := ReadNPY(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entry %q: %w", name, err)
	}
	return arr, nil
}

// Int16s decodes the named entry as an int16 array, returning its flat
// C-order data and shape.
func (a *Archive) Int16s(name string) ([]int16, []int, error) {
	arr, err := a.Get(name)
	if err != nil {
		return nil, nil, err
	}
	data, ok := arr.Data.([]int16)
	if !ok {
		return nil, nil, fmt.Errorf("entry %q is %s, not int16", name, arr.DType.Name)
	}
	return data, arr.Shape, nil
}

// Strings decodes the named entry as a fixed-width string array.
func (a *Archive) Strings(name string) ([]string, []int, error) {
	arr, err := a.Get(name)
	if err != nil {
		return nil, nil, err
	}
	data, ok := arr.Data.([]string)
	if !ok {
		return nil, nil, fmt.Errorf("entry %q is %s, not a string array", name, arr.DType.Name)
	}
	return data, arr.Shape, nil
}
