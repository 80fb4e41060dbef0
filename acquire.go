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
	"sort"
	"time"
)

// acquireAll implements the acquisition protocol of §4.3.5. It locks
// each distinct current root of resources, in ascending key order,
// re-validating after every blocking lock that the root is still
// useful: classes can merge or split while this Group is waiting, and
// a newly introduced root always carries a strictly greater key than
// anything that existed before, so a thread locking in ascending key
// order can never form a cycle with another thread doing the same.
func (g *Group) acquireAll(resources []*Resource) {
	if len(resources) == 0 {
		return
	}

	w := g.world
	start := time.Now()

	// Only a Group's first lock attempt waits at the fairness gate;
	// once admitted, restarts proceed regardless of the gate's state.
	w.gate.waitIfClosed()

	restartBudget := w.restartBudget
	gateClosedByMe := false
	attempt := 0

	for {
		targets := g.pendingTargets(resources)
		if len(targets) == 0 {
			break
		}

		next := targets[0]
		next.lock.Lock()

		if g.adoptIfStillUseful(next, resources) {
			continue
		}

		// The class we just locked was merged or split away before we
		// got to it: it's not the current root of anything we still
		// need. Release it and recompute.
		next.lock.Unlock()
		attempt++
		w.events.onRestart(attempt)

		if restartBudget > 0 {
			restartBudget--
			if restartBudget == 0 && !gateClosedByMe {
				gateClosedByMe = true
				w.gate.close()
				w.events.onGateClosed()
			}
		}
	}

	if gateClosedByMe {
		w.gate.open()
		w.events.onGateOpened()
	}
	w.events.onAcquire(time.Since(start))
}

// pendingTargets returns the unique current roots of resources that
// are not already held, sorted ascending by key.
func (g *Group) pendingTargets(resources []*Resource) []*Id {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen := make(map[*Id]struct{}, len(resources))
	targets := make([]*Id, 0, len(resources))
	for _, r := range resources {
		root := r.CurrentRoot()
		if indexOfID(g.mu.held, root) >= 0 {
			continue
		}
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		targets = append(targets, root)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].key < targets[j].key })
	return targets
}

// adoptIfStillUseful reports whether locked is still the current root
// of at least one of resources; if so, it's added to the held set.
func (g *Group) adoptIfStillUseful(locked *Id, resources []*Resource) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	useful := false
	for _, r := range resources {
		if r.CurrentRoot() == locked {
			useful = true
			break
		}
	}
	if !useful {
		return false
	}
	if indexOfID(g.mu.held, locked) < 0 {
		g.mu.held = append(g.mu.held, locked)
		assertUniqueRoots(g.mu.held)
	}
	return true
}
