package tscube

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gocloud.dev/blob"

	"github.com/earthobs/tscube/npz"
)

// Cache archive entry names, as written by the stack cache writer.
const (
	keyData     = "Y"
	keySceneIDs = "image_IDs"
)

// Cache is a fully materialized timeseries cache archive: the raw
// (band, time, column) cube and one scene identifier per time step.
type Cache struct {
	SceneIDs []string
	Data     []int16
	Shape    []int
}

// Open reads a cache archive named key from the bucket at bucketURL and
// materializes both entries. The URL is anything a registered gocloud
// driver accepts, e.g. "file:///data/cache".
func Open(ctx context.Context, bucketURL, key string) (*Cache, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket: %w", err)
	}
	defer bucket.Close()

	raw, err := bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return Decode(raw)
}

// Decode parses an in-memory cache archive.
func Decode(raw []byte) (*Cache, error) {
	archive, err := npz.Open(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, err
	}

	data, shape, err := archive.Int16s(keyData)
	if err != nil {
		return nil, err
	}
	if len(shape) != 3 {
		return nil, fmt.Errorf("entry %q has shape %v, want (band, time, column)", keyData, shape)
	}

	ids, idShape, err := archive.Strings(keySceneIDs)
	if err != nil {
		return nil, err
	}
	if len(idShape) != 1 {
		return nil, fmt.Errorf("entry %q has shape %v, want one dimension", keySceneIDs, idShape)
	}
	if idShape[0] != shape[1] {
		return nil, fmt.Errorf("have %d scene IDs for %d time steps", idShape[0], shape[1])
	}

	return &Cache{SceneIDs: ids, Data: data, Shape: shape}, nil
}

// Cube labels the cache's axes: band names from the caller (DefaultBands
// when nil), acquisition times parsed from the scene IDs, and columns
// numbered from zero. Label counts are validated against the data shape.
func (c *Cache) Cube(bands []string) (*Cube, error) {
	if len(c.Shape) != 3 {
		return nil, fmt.Errorf("cache has shape %v, want (band, time, column)", c.Shape)
	}
	if bands == nil {
		bands = DefaultBands
	}
	if len(bands) != c.Shape[0] {
		return nil, fmt.Errorf("have %d band labels for %d bands", len(bands), c.Shape[0])
	}

	times := make([]time.Time, len(c.SceneIDs))
	for i, id := range c.SceneIDs {
		t, err := SceneDate(id)
		if err != nil {
			return nil, err
		}
		times[i] = t
	}

	columns := make([]int, c.Shape[2])
	for i := range columns {
		columns[i] = i
	}

	return NewCube(c.Data, bands, times, columns)
}
