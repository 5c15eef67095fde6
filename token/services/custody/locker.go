/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package custody

import (
	"sync"

	"github.com/hyperledger-labs/token-custody/token/driver"
)

// ownerLocker hands out one mutex per owner.
// Entries are dropped once no goroutine holds or waits for them.
type ownerLocker struct {
	mu    sync.Mutex
	locks map[driver.Identity]*ownerLock
}

type ownerLock struct {
	sync.Mutex
	refs int
}

func newOwnerLocker() *ownerLocker {
	return &ownerLocker{locks: map[driver.Identity]*ownerLock{}}
}

// Lock blocks until the lock of owner is acquired and returns the function releasing it
func (l *ownerLocker) Lock(owner driver.Identity) func() {
	l.mu.Lock()
	lock, ok := l.locks[owner]
	if !ok {
		lock = &ownerLock{}
		l.locks[owner] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.Lock()
	return func() {
		lock.Unlock()
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, owner)
		}
		l.mu.Unlock()
	}
}

func (l *ownerLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
