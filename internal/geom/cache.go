package geom

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type pathKey struct {
	shape string
	count int
}

// PathCache memoizes sampled guide paths. Sampling is deterministic, so a
// path is computed once per (shape, count) pair and shared across concurrent
// analyses. Returned slices are shared and must not be modified.
type PathCache struct {
	entries *lru.Cache[pathKey, []Point]
}

// NewPathCache creates a cache holding up to size sampled paths.
func NewPathCache(size int) (*PathCache, error) {
	entries, err := lru.New[pathKey, []Point](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create path cache: %w", err)
	}
	return &PathCache{entries: entries}, nil
}

// Sample returns the sampled path for the shape, computing and storing it on
// first use.
func (c *PathCache) Sample(shape Shape, count int) ([]Point, error) {
	key := pathKey{shape: fingerprint(shape), count: count}
	if points, ok := c.entries.Get(key); ok {
		return points, nil
	}
	points, err := Sample(shape, count)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, points)
	return points, nil
}

// Len returns the number of cached paths.
func (c *PathCache) Len() int {
	return c.entries.Len()
}

// fingerprint renders the shape parameters into a comparable key. Polygon
// vertices make shapes themselves non-comparable, so the key goes through a
// deterministic string form instead.
func fingerprint(shape Shape) string {
	return fmt.Sprintf("%s|%v", shape.Kind(), shape)
}
