/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cache

import (
	"github.com/dgraph-io/ristretto/v2"
	"golang.org/x/sync/singleflight"
)

// every entry costs one, so maxCost bounds the number of entries
const entryCost = 1

// ristrettoCache bounds the number of entries it keeps.
// Writes wait for ristretto's buffers so that a value is visible to the next Get.
type ristrettoCache[T any] struct {
	cache *ristretto.Cache[string, T]
	loads singleflight.Group
}

var _ Cache[int] = (*ristrettoCache[int])(nil)

// NewRistrettoCacheWithSize returns a cache holding at most maxEntries entries
func NewRistrettoCacheWithSize[T any](maxEntries int64) (*ristrettoCache[T], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, T]{
		// ristretto recommends ten counters per entry
		NumCounters: 10 * maxEntries,
		MaxCost:     maxEntries,
		BufferItems: 64,

		// the cost of an entry is entryCost only, without ristretto's per-item overhead
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoCache[T]{cache: c}, nil
}

func (c *ristrettoCache[T]) Get(key string) (T, bool) {
	return c.cache.Get(key)
}

func (c *ristrettoCache[T]) Add(key string, value T) {
	c.cache.Set(key, value, entryCost)
	c.cache.Wait()
}

func (c *ristrettoCache[T]) Delete(key string) {
	c.cache.Del(key)
	c.cache.Wait()
}

func (c *ristrettoCache[T]) Clear() {
	c.cache.Clear()
	c.cache.Wait()
}

func (c *ristrettoCache[T]) GetOrLoad(key string, loader func() (T, error)) (T, bool, error) {
	if value, found := c.Get(key); found {
		return value, true, nil
	}

	// concurrent misses on the same key share a single load
	res, err, _ := c.loads.Do(key, func() (interface{}, error) {
		v, err := loader()
		if err != nil {
			return nil, err
		}
		c.Add(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.(T), false, nil
}
