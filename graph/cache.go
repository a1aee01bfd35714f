package graph

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// Cache memoizes built graphs and treemaps. Keys carry the dataset
// version, so a store mutation implicitly invalidates every older entry:
// a hit always returns exactly what a rebuild from the current set would.
type Cache struct {
	entries *lru.Cache
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 64
	}
	entries, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create graph cache: %w", err)
	}
	return &Cache{entries: entries}, nil
}

func graphKey(version uint64, c *Criteria) string {
	return fmt.Sprintf("graph:%d:%x", version, c.Fingerprint())
}

func groupsKey(version uint64, c *Criteria, mode GroupMode) string {
	return fmt.Sprintf("groups:%d:%x:%s", version, c.Fingerprint(), mode)
}

func (gc *Cache) GetGraph(version uint64, c *Criteria) (*Graph, bool) {
	v, ok := gc.entries.Get(graphKey(version, c))
	if !ok {
		return nil, false
	}
	return v.(*Graph), true
}

func (gc *Cache) PutGraph(version uint64, c *Criteria, g *Graph) {
	gc.entries.Add(graphKey(version, c), g)
}

func (gc *Cache) GetGroups(version uint64, c *Criteria, mode GroupMode) ([]Group, bool) {
	v, ok := gc.entries.Get(groupsKey(version, c, mode))
	if !ok {
		return nil, false
	}
	return v.([]Group), true
}

func (gc *Cache) PutGroups(version uint64, c *Criteria, mode GroupMode, groups []Group) {
	gc.entries.Add(groupsKey(version, c, mode), groups)
}

func (gc *Cache) Len() int {
	return gc.entries.Len()
}

func (gc *Cache) Purge() {
	gc.entries.Purge()
}
