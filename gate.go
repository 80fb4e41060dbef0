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

import "sync"

// gate is the process-wide (or World-private) fairness latch of
// §4.3.5 and §5. While closed, a Group that has not yet begun its
// acquisition phase must wait before locking anything; a Group already
// mid-acquisition is unaffected. Multiple Groups may close the gate
// concurrently, each having exhausted its own restart budget; new
// Groups wait until every one of them has reopened it.
type gate struct {
	mu         sync.Mutex
	cond       *sync.Cond
	closeCount int
}

func newGate() *gate {
	g := &gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *gate) close() {
	g.mu.Lock()
	g.closeCount++
	g.mu.Unlock()
}

func (g *gate) open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closeCount == 0 {
		invariant("gate opened without a matching close")
	}
	g.closeCount--
	if g.closeCount == 0 {
		g.cond.Broadcast()
	}
}

// waitIfClosed blocks the caller, if the gate is currently closed,
// until every closer has reopened it. Called once, before a new
// Group's first lock attempt.
func (g *gate) waitIfClosed() {
	g.mu.Lock()
	for g.closeCount > 0 {
		g.cond.Wait()
	}
	g.mu.Unlock()
}
