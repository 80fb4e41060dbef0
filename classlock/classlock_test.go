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

package classlock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsUnlocked(t *testing.T) {
	r := require.New(t)
	l := New()
	r.True(l.TryLock())
	l.Unlock()
}

func TestNewHeldIsLocked(t *testing.T) {
	r := require.New(t)
	l := NewHeld()
	r.False(l.TryLock())
	l.Unlock()
	r.True(l.TryLock())
}

func TestUnlockFromAnyGoroutine(t *testing.T) {
	r := require.New(t)
	l := NewHeld()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l.Unlock()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		r.Fail("unlock from another goroutine timed out")
	}

	r.True(l.TryLock())
}

func TestLockBlocksUntilUnlocked(t *testing.T) {
	r := require.New(t)
	l := NewHeld()

	acquired := make(chan struct{})
	go func() {
		l.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		r.Fail("lock acquired before release")
	case <-time.After(50 * time.Millisecond):
	}

	l.Unlock()

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		r.Fail("lock never acquired after release")
	}
}
