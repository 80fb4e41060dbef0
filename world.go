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

package reslock

import (
	"sync/atomic"

	"github.com/cockroachdb/reslock/classlock"
	"github.com/cockroachdb/reslock/version"
)

// defaultRestartBudget is the number of stale-lock restarts (§4.3.5)
// an acquiring Group tolerates before it closes the fairness gate. The
// spec leaves the exact threshold unspecified (§9, open question 2);
// this default is small enough to bound interference without
// penalizing ordinary contention.
const defaultRestartBudget = 4

// World holds every piece of state the spec calls process-wide: the
// monotonic key counter that orders class locks, and the fairness
// gate. It is an explicit value rather than package-level globals
// (§9) precisely so tests can construct an isolated World per test and
// run concurrently without interfering with each other's gate or
// counter.
type World struct {
	nextKey       atomic.Uint64
	gate          *gate
	restartBudget int
	events        *Events
}

// WorldOption configures a World at construction.
type WorldOption func(*World)

// WithRestartBudget overrides the default restart budget. k must be
// positive.
func WithRestartBudget(k int) WorldOption {
	return func(w *World) {
		if k <= 0 {
			invariant("restart budget must be positive, got %d", k)
		}
		w.restartBudget = k
	}
}

// WithEvents installs performance and fairness instrumentation. See
// Events.
func WithEvents(e *Events) WorldOption {
	return func(w *World) { w.events = e }
}

// NewWorld constructs an independent World.
func NewWorld(opts ...WorldOption) *World {
	w := &World{
		gate:          newGate(),
		restartBudget: defaultRestartBudget,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// FormatVersion reports the in-memory protocol version implemented by
// this World. There is no wire format or persisted state to version;
// this exists purely as a diagnostic string (see the version package).
func (w *World) FormatVersion() string {
	return version.Current
}

func (w *World) allocID() *Id {
	return newID(w.nextKey.Add(1), classlock.New())
}

func (w *World) allocHeldID() *Id {
	return newID(w.nextKey.Add(1), classlock.NewHeld())
}
