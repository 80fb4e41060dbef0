// Copyright 2024 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package classlock implements the mutual-exclusion primitive that
// guards a connectivity class: a binary semaphore built on
// [golang.org/x/sync/semaphore], rather than [sync.Mutex], because the
// owning root identifier may be handed off between goroutines (a class
// merge replaces the lock a waiter is holding with a freshly created
// one) and because a new lock must sometimes be constructed in the
// already-held state.
package classlock

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// A Lock is a binary semaphore. Unlike [sync.Mutex], release is not
// tied to goroutine identity: any goroutine may call Unlock once the
// lock is held, which is required here since a class's lock can be
// acquired by the thread running an acquisition protocol and later
// released by whichever goroutine calls Group.Free.
type Lock semaphore.Weighted

// New returns a Lock that is not held.
func New() *Lock {
	return (*Lock)(semaphore.NewWeighted(1))
}

// NewHeld returns a Lock that is already held by the caller. This
// backs the "created already held" constructions the protocol relies
// on: Create-and-acquire, class merge, and class split all mint a
// fresh root whose lock must never be observably unlocked before the
// owning Group finishes installing it.
func NewHeld() *Lock {
	l := New()
	if !(*semaphore.Weighted)(l).TryAcquire(1) {
		panic("classlock: new semaphore was not immediately acquirable")
	}
	return l
}

// Lock blocks until the class is exclusively held by the caller.
func (l *Lock) Lock() {
	_ = (*semaphore.Weighted)(l).Acquire(context.Background(), 1)
}

// Unlock releases the class. It may be called from any goroutine, not
// only the one that called Lock.
func (l *Lock) Unlock() {
	(*semaphore.Weighted)(l).Release(1)
}

// TryLock reports whether the class could be acquired without
// blocking. It is not used by the acquisition protocol itself (which
// always wants to block in key order) but is exposed for callers that
// want to probe contention, e.g. diagnostics or tests.
func (l *Lock) TryLock() bool {
	return (*semaphore.Weighted)(l).TryAcquire(1)
}
