/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cache

// Cache is a key-value cache whose misses can be filled by a loader
type Cache[T any] interface {
	Get(key string) (T, bool)
	// GetOrLoad returns the cached value, or the value returned by loader which is then cached.
	// The boolean tells whether the value was found in the cache.
	GetOrLoad(key string, loader func() (T, error)) (T, bool, error)
	Add(key string, value T)
	Delete(key string)
	Clear()
}

// New returns a ristretto cache bounded by maxCost entries, or a NoCache if maxCost is not positive
func New[T any](maxCost int64) (Cache[T], error) {
	if maxCost <= 0 {
		return NewNoCache[T](), nil
	}
	return NewRistrettoCacheWithSize[T](maxCost)
}
