package extract

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is the fixed-capacity LRU of per-key {del, add} bitmap pairs.
// Every eviction is flushed into the backing Sorter; Finish flushes
// whatever remains.
type Cache struct {
	lru    *lru.Cache[string, *DelAddBitmaps]
	sorter *Sorter
}

// NewCache returns a Cache with the given capacity, backed by sorter.
func NewCache(capacity int, sorter *Sorter) (*Cache, error) {
	c := &Cache{sorter: sorter}
	l, err := lru.NewWithEvict(capacity, func(key string, value *DelAddBitmaps) {
		c.sorter.Insert(key, value)
	})
	if err != nil {
		return nil, err
	}
	c.lru = l
	return c, nil
}

// InsertDel records docID as a deletion under key.
func (c *Cache) InsertDel(key string, docID uint32) {
	entry, ok := c.lru.Get(key)
	if !ok {
		entry = &DelAddBitmaps{}
		c.lru.Add(key, entry)
	}
	entry.InsertDel(docID)
}

// InsertAdd records docID as an addition under key.
func (c *Cache) InsertAdd(key string, docID uint32) {
	entry, ok := c.lru.Get(key)
	if !ok {
		entry = &DelAddBitmaps{}
		c.lru.Add(key, entry)
	}
	entry.InsertAdd(docID)
}

// InsertDelAdd records docID as both a deletion and an addition under
// key, the "this document was replaced" case.
func (c *Cache) InsertDelAdd(key string, docID uint32) {
	entry, ok := c.lru.Get(key)
	if !ok {
		entry = &DelAddBitmaps{}
		c.lru.Add(key, entry)
	}
	entry.InsertDel(docID)
	entry.InsertAdd(docID)
}

// Finish flushes every remaining cache entry into the sorter and
// returns it, ready for Drain.
func (c *Cache) Finish() *Sorter {
	for _, key := range c.lru.Keys() {
		if entry, ok := c.lru.Peek(key); ok {
			c.sorter.Insert(key, entry)
		}
	}
	c.lru.Purge()
	return c.sorter
}

// Len reports how many keys are currently cached (not yet evicted or flushed).
func (c *Cache) Len() int {
	return c.lru.Len()
}
