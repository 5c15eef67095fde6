/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"sync"
)

// LazyProvider creates a value on the first request for its key and returns the same value afterwards.
// A failed creation is not cached.
type LazyProvider[I any, V any] interface {
	Get(I) (V, error)
	Length() int
}

// NewLazyProviderWithKeyMapper returns a LazyProvider whose inputs are keyed by keyMapper
func NewLazyProviderWithKeyMapper[I any, K comparable, V any](keyMapper func(I) K, provider func(I) (V, error)) *lazyProvider[I, K, V] {
	return &lazyProvider[I, K, V]{
		values:    make(map[K]V),
		provider:  provider,
		keyMapper: keyMapper,
	}
}

type lazyProvider[I any, K comparable, V any] struct {
	mu        sync.RWMutex
	values    map[K]V
	keyMapper func(I) K
	provider  func(I) (V, error)
}

func (p *lazyProvider[I, K, V]) Get(input I) (V, error) {
	key := p.keyMapper(input)

	p.mu.RLock()
	v, ok := p.values[key]
	p.mu.RUnlock()
	if ok {
		return v, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if v, ok := p.values[key]; ok {
		return v, nil
	}
	v, err := p.provider(input)
	if err != nil {
		var zero V
		return zero, err
	}
	p.values[key] = v
	return v, nil
}

func (p *lazyProvider[I, K, V]) Length() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}
