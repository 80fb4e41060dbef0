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

import "time"

// Events provides a World with optional callbacks to monitor the
// performance and fairness of the acquisition protocol. All callbacks
// are optional and are invoked synchronously from whichever goroutine
// triggered them; they must not block or call back into this package.
//
// See WithEvents.
type Events struct {
	// OnAcquire is called once a Group finishes acquiring every root
	// it needed, with the time elapsed since the acquisition began.
	OnAcquire func(sinceStart time.Duration)
	// OnRestart is called each time the acquisition protocol locks a
	// root that turned out to be stale and has to release it.
	OnRestart func(attempt int)
	// OnGateClosed is called when a Group's restart budget is
	// exhausted and it closes the fairness gate.
	OnGateClosed func()
	// OnGateOpened is called when the gate-closing Group finishes its
	// acquisition, reopening the gate for new Groups. Free does not
	// touch the gate.
	OnGateOpened func()
	// OnFree is called when a Group releases its held roots.
	OnFree func(heldRoots int)
}

func (e *Events) onAcquire(sinceStart time.Duration) {
	if e != nil && e.OnAcquire != nil {
		e.OnAcquire(sinceStart)
	}
}

func (e *Events) onRestart(attempt int) {
	if e != nil && e.OnRestart != nil {
		e.OnRestart(attempt)
	}
}

func (e *Events) onGateClosed() {
	if e != nil && e.OnGateClosed != nil {
		e.OnGateClosed()
	}
}

func (e *Events) onGateOpened() {
	if e != nil && e.OnGateOpened != nil {
		e.OnGateOpened()
	}
}

func (e *Events) onFree(heldRoots int) {
	if e != nil && e.OnFree != nil {
		e.OnFree(heldRoots)
	}
}
