package tscube_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
	_ "gocloud.dev/blob/fileblob"

	"github.com/earthobs/tscube"
)

// npyStream assembles a v1.0 NPY stream around the given payload.
func npyStream(t *testing.T, descr string, shape []int, payload []byte) []byte {
	t.Helper()

	dims := make([]string, len(shape))
	for i, d := range shape {
		dims[i] = strconv.Itoa(d)
	}
	shapeStr := strings.Join(dims, ", ")
	if len(shape) == 1 {
		shapeStr += ","
	}
	header := fmt.Sprintf("{'descr': '%s', 'fortran_order': False, 'shape': (%s), }",
		descr, shapeStr)
	total := 10 + len(header) + 1
	pad := (16 - total%16) % 16
	header += strings.Repeat(" ", pad) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	buf.Write(payload)
	return buf.Bytes()
}

// cacheArchive builds an NPZ cache archive the way the stack cache writer
// does: a "Y" int16 cube and fixed-width "image_IDs" scene identifiers.
func cacheArchive(t *testing.T, shape []int, values []int16, sceneIDs []string) []byte {
	t.Helper()

	payload := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(v))
	}

	width := 0
	for _, id := range sceneIDs {
		if len(id) > width {
			width = len(id)
		}
	}
	idPayload := make([]byte, len(sceneIDs)*width)
	for i, id := range sceneIDs {
		copy(idPayload[i*width:], id)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, stream := range map[string][]byte{
		"Y.npy":         npyStream(t, "<i2", shape, payload),
		"image_IDs.npy": npyStream(t, fmt.Sprintf("|S%d", width), []int{len(sceneIDs)}, idPayload),
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(stream)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestOpen(t *testing.T) {
	tempDir := t.TempDir()

	// 2 bands x 2 times x 3 columns, values 0..11 in C order.
	values := make([]int16, 12)
	for i := range values {
		values[i] = int16(i)
	}
	raw := cacheArchive(t, []int{2, 2, 3}, values, []string{
		"LT50350322008110PAC01",
		"LT50350322008126PAC01",
	})
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "cache.npz"), raw, 0644))

	ctx := context.Background()
	cache, err := tscube.Open(ctx, "file:///"+filepath.ToSlash(tempDir), "cache.npz")
	require.NoError(t, err)
	require.Equal(t, []int{2, 2, 3}, cache.Shape)
	require.Len(t, cache.SceneIDs, 2)

	cube, err := cache.Cube([]string{"nir", "fmask"})
	require.NoError(t, err)

	nband, ntime, ncol := cube.Shape()
	require.Equal(t, [3]int{2, 2, 3}, [3]int{nband, ntime, ncol})
	require.Equal(t, []time.Time{
		time.Date(2008, time.April, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2008, time.May, 5, 0, 0, 0, 0, time.UTC),
	}, cube.Times())

	nir, err := cube.Band("nir")
	require.NoError(t, err)
	series, err := nir.Column(1)
	require.NoError(t, err)
	require.Equal(t, []int16{1, 4}, series.Values())

	fmask, err := cube.Band("fmask")
	require.NoError(t, err)
	series, err = fmask.Column(2)
	require.NoError(t, err)
	require.Equal(t, []int16{8, 11}, series.Values())
}

func TestOpen_MissingKey(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	_, err := tscube.Open(ctx, "file:///"+filepath.ToSlash(tempDir), "absent.npz")
	require.Error(t, err)
}

func TestDecode_SceneIDCountMismatch(t *testing.T) {
	// 3 time steps but only 2 scene IDs.
	raw := cacheArchive(t, []int{1, 3, 2}, make([]int16, 6), []string{
		"LT50350322008110PAC01",
		"LT50350322008126PAC01",
	})

	_, err := tscube.Decode(raw)
	require.ErrorContains(t, err, "scene IDs")
}

func TestDecode_WrongRank(t *testing.T) {
	raw := cacheArchive(t, []int{2, 3}, make([]int16, 6), []string{
		"LT50350322008110PAC01",
		"LT50350322008126PAC01",
		"LT50350322008142PAC01",
	})

	_, err := tscube.Decode(raw)
	require.ErrorContains(t, err, "want (band, time, column)")
}

func TestCache_Cube_DefaultBands(t *testing.T) {
	// 8 bands matches DefaultBands.
	values := make([]int16, 8*1*2)
	raw := cacheArchive(t, []int{8, 1, 2}, values, []string{"LT50350322008110PAC01"})

	cache, err := tscube.Decode(raw)
	require.NoError(t, err)

	cube, err := cache.Cube(nil)
	require.NoError(t, err)
	require.Equal(t, tscube.DefaultBands, cube.Bands())

	// A 2-band cube cannot take the 8 default labels.
	raw = cacheArchive(t, []int{2, 1, 2}, values[:4], []string{"LT50350322008110PAC01"})
	cache, err = tscube.Decode(raw)
	require.NoError(t, err)
	_, err = cache.Cube(nil)
	require.ErrorContains(t, err, "band labels")
}

func TestCache_Cube_BadSceneDate(t *testing.T) {
	raw := cacheArchive(t, []int{1, 1, 2}, make([]int16, 2), []string{"LT50350322008999PAC01"})

	cache, err := tscube.Decode(raw)
	require.NoError(t, err)
	_, err = cache.Cube([]string{"nir"})
	require.ErrorContains(t, err, "day of year")
}
