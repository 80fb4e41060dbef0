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

// Group is a transient, goroutine-owned holder of currently-acquired
// Resources. It is the only surface through which Resources are
// created, connected, disconnected, acquired, or freed.
//
// A Group moves through three states: fresh during construction,
// ACTIVE once construction completes (even with an empty acquired
// set), and FREED once Free has run. It must be used by a single
// goroutine at a time and is not reentrant.
type Group struct {
	world *World

	mu struct {
		sync.Mutex
		held      []*Id       // unique root Ids currently locked by this Group.
		resources []*Resource // Resources this Group has supplied or created, for Resources().
		freed     bool
	}
}

func newGroup(w *World) *Group {
	return &Group{world: w}
}

// NewEmptyGroup returns a Group holding no locks.
func (w *World) NewEmptyGroup() *Group {
	return newGroup(w)
}

// NewAcquiringGroup runs the acquisition protocol (§4.3.5) against
// r1…rn and returns only once every class containing any of them is
// exclusively locked. Duplicate Resources, and Resources that turn out
// to share a class, collapse to a single lock.
func (w *World) NewAcquiringGroup(resources ...*Resource) *Group {
	g := newGroup(w)
	g.mu.resources = append(g.mu.resources, resources...)
	g.acquireAll(resources)
	return g
}

// CreateAndAcquireResource allocates a brand-new Resource whose class
// lock is created already held and adds it to this Group's held set.
// The new Resource starts out in a singleton class, disconnected from
// everything.
func (g *Group) CreateAndAcquireResource() (*Resource, error) {
	g.mu.Lock()
	if g.mu.freed {
		g.mu.Unlock()
		return nil, ErrUsageAfterFree
	}
	g.mu.Unlock()

	r := g.world.newResource(true)

	g.mu.Lock()
	g.mu.held = append(g.mu.held, r.id)
	assertUniqueRoots(g.mu.held)
	g.mu.resources = append(g.mu.resources, r)
	g.mu.Unlock()

	return r, nil
}

// Connect establishes an undirected adjacency edge between a and b.
// Both Resources must have their current root in this Group's held
// set. If they are already in the same class, Connect only records the
// edge; otherwise it merges the two classes under a freshly allocated,
// already-held root and replaces both old roots in the held set with
// it (§4.3.2).
func (g *Group) Connect(a, b *Resource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mu.freed {
		return ErrUsageAfterFree
	}

	rootA := a.CurrentRoot()
	if indexOfID(g.mu.held, rootA) < 0 {
		return ErrResourceNotHeld
	}
	rootB := b.CurrentRoot()
	if indexOfID(g.mu.held, rootB) < 0 {
		return ErrResourceNotHeld
	}

	a.directConnect(b)

	if rootA == rootB {
		return nil
	}

	p := g.world.allocHeldID()
	rootA.setParent(p)
	rootB.setParent(p)

	// rootA and rootB are no longer anyone's current root: path
	// compression means no future root() walk can rename either of
	// them back. Release their locks now rather than waiting for
	// Free, or any Group already parked in next.lock.Lock() on one of
	// them (having snapshotted it as a root before this merge) would
	// block forever instead of waking up to find it stale.
	rootA.lock.Unlock()
	rootB.lock.Unlock()

	g.mu.held = replaceRoots(g.mu.held, []*Id{rootA, rootB}, p)
	assertUniqueRoots(g.mu.held)
	return nil
}

// Disconnect removes the direct edge between a and b. Both must have
// their current root in this Group's held set. If removing the edge
// still leaves b reachable from a, the class is unchanged; otherwise
// the class has split, and two freshly allocated, already-held roots
// replace the old shared root in the held set (§4.3.3).
func (g *Group) Disconnect(a, b *Resource) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mu.freed {
		return ErrUsageAfterFree
	}
	if a == b {
		return ErrSelfDisconnect
	}

	rootA := a.CurrentRoot()
	if indexOfID(g.mu.held, rootA) < 0 {
		return ErrResourceNotHeld
	}
	rootB := b.CurrentRoot()
	if indexOfID(g.mu.held, rootB) < 0 {
		return ErrResourceNotHeld
	}

	if err := a.directDisconnect(b); err != nil {
		return err
	}

	if rootA != rootB {
		// a and b were never in the same class; there was no edge to
		// begin with, and connectivity is unaffected.
		return nil
	}

	closureA := a.ConnectedClosure()
	for _, m := range closureA {
		if m == b {
			// Still reachable through some other path; class unchanged.
			return nil
		}
	}

	closureB := b.ConnectedClosure()
	p1 := g.world.allocHeldID()
	p2 := g.world.allocHeldID()
	for _, m := range closureA {
		m.resetRoot(p1)
	}
	for _, m := range closureB {
		m.resetRoot(p2)
	}

	// rootA (shared by both halves before the split) is abandoned: no
	// live resource's forest walk can reach it anymore. Release its
	// lock so any Group already blocked in next.lock.Lock() on it
	// wakes up and discovers, via adoptIfStillUseful, that it must
	// retry against p1 or p2 instead of hanging forever.
	rootA.lock.Unlock()

	g.mu.held = replaceRoots(g.mu.held, []*Id{rootA}, p1, p2)
	assertUniqueRoots(g.mu.held)
	return nil
}

// DirectlyConnectedTo returns r's direct neighbors. The caller should
// hold r's current root; this is a thin inspection helper over
// Resource.Neighbors.
func (g *Group) DirectlyConnectedTo(r *Resource) []*Resource {
	return r.Neighbors()
}

// Resources returns the Resources this Group has supplied to
// NewAcquiringGroup or created with CreateAndAcquireResource. It is
// a convenience snapshot, not part of the held-roots accounting.
func (g *Group) Resources() []*Resource {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Resource, len(g.mu.resources))
	copy(out, g.mu.resources)
	return out
}

// Free releases every held root's lock and clears the held set.
// Further operations on the Group that return an error, a second call
// to Free included, return ErrUsageAfterFree.
func (g *Group) Free() error {
	g.mu.Lock()
	if g.mu.freed {
		g.mu.Unlock()
		return ErrUsageAfterFree
	}
	g.mu.freed = true
	held := g.mu.held
	g.mu.held = nil
	g.mu.Unlock()

	for _, id := range held {
		id.lock.Unlock()
	}
	g.world.events.onFree(len(held))
	return nil
}

// assertUniqueRoots panics if held contains the same root Id twice.
// Two held entries resolving to the same class would mean this Group
// double-locked a single classlock.Lock, and Free would then release
// it twice, which panics; a duplicate here means the held set was built
// incorrectly, not a state any caller can trigger validly.
func assertUniqueRoots(held []*Id) {
	seen := make(map[*Id]struct{}, len(held))
	for _, id := range held {
		if _, ok := seen[id]; ok {
			invariant("duplicate root id %d in group's held set", id.Key())
		}
		seen[id] = struct{}{}
	}
}

func indexOfID(ids []*Id, target *Id) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}

// replaceRoots returns a copy of held with every Id in remove deleted
// and every Id in add appended.
func replaceRoots(held []*Id, remove []*Id, add ...*Id) []*Id {
	out := make([]*Id, 0, len(held)+len(add))
outer:
	for _, id := range held {
		for _, r := range remove {
			if id == r {
				continue outer
			}
		}
		out = append(out, id)
	}
	return append(out, add...)
}
