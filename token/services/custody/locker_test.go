/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package custody

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
)

func TestOwnerLockerSerializesSameOwner(t *testing.T) {
	l := newOwnerLocker()
	var inside, maxInside atomic.Int32

	var wg conc.WaitGroup
	for range 20 {
		wg.Go(func() {
			unlock := l.Lock(alice)
			defer unlock()
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, l.size())
}

func TestOwnerLockerDifferentOwners(t *testing.T) {
	l := newOwnerLocker()
	unlockAlice := l.Lock(alice)

	done := make(chan struct{})
	go func() {
		unlock := l.Lock(bob)
		unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("bob waited for alice's lock")
	}
	assert.Equal(t, 1, l.size())
	unlockAlice()
	assert.Equal(t, 0, l.size())
}
