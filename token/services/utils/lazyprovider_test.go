/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package utils

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
)

type opts struct{ dataSource, label string }

func TestGet(t *testing.T) {
	p := newTestProvider()

	val, err := p.Get(opts{"db1", "v1"})
	assert.NoError(t, err)
	assert.Equal(t, "v1", val)

	// same data source, first value wins
	val, err = p.Get(opts{"db1", "v2"})
	assert.NoError(t, err)
	assert.Equal(t, "v1", val)

	val, err = p.Get(opts{"db2", "v3"})
	assert.NoError(t, err)
	assert.Equal(t, "v3", val)
	assert.Equal(t, 2, p.Length())
}

func TestError(t *testing.T) {
	p := newTestProvider()

	val, err := p.Get(opts{"error", "e1"})
	assert.EqualError(t, err, "e1")
	assert.Equal(t, "", val)
	assert.Equal(t, 0, p.Length())

	val, err = p.Get(opts{"db1", "v1"})
	assert.NoError(t, err)
	assert.Equal(t, "v1", val)
}

func TestParallel(t *testing.T) {
	const iterations = 100
	p := newTestProvider()
	vals := make(chan string, iterations)

	var wg conc.WaitGroup
	for i := 0; i < iterations; i++ {
		label := fmt.Sprintf("v%d", i)
		wg.Go(func() {
			val, err := p.Get(opts{"db1", label})
			assert.NoError(t, err)
			vals <- val
		})
	}
	wg.Wait()
	close(vals)

	values := make(map[string]struct{})
	for v := range vals {
		values[v] = struct{}{}
	}
	assert.Equal(t, 1, p.Length(), "one data source was opened")
	assert.Len(t, values, 1, "every caller got the first value")
}

func newTestProvider() LazyProvider[opts, string] {
	return NewLazyProviderWithKeyMapper(func(in opts) string {
		return in.dataSource
	}, func(in opts) (string, error) {
		if in.dataSource == "error" {
			return "", errors.New(in.label)
		}
		return in.label, nil
	})
}
