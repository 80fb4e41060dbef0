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

import "sync/atomic"

// Resource is the user-visible handle for one logical unit of mutual
// exclusion. It tracks which other Resources it is directly connected
// to and delegates locking to whichever Id is currently the root of
// its class.
//
// Resources are reference types: callers keep using a Resource after
// the Group that created it has been freed, and a Resource may be
// created, connected, or disconnected by many different Groups over
// its lifetime, never concurrently (§5).
type Resource struct {
	world *World
	id    *Id

	// neighbors, closure, and dirty implement the adjacency graph and
	// its cached transitive closure. Per §5 they are read and written
	// only by a Group that holds this Resource's current root, never
	// concurrently with any other Group operation on the same class,
	// so no additional synchronization guards them here.
	neighbors map[*Resource]struct{}
	closure   []*Resource
	dirty     bool

	// associated is the AssociatedObject slot. The spec leaves it
	// deliberately unsynchronized by the core; this package makes
	// that contract explicit with an atomic rather than silently
	// folding it under the class lock (§9, open question 3).
	associated atomic.Pointer[any]
}

func (w *World) newResource(held bool) *Resource {
	var id *Id
	if held {
		id = w.allocHeldID()
	} else {
		id = w.allocID()
	}
	r := &Resource{world: w, id: id}
	r.neighbors = map[*Resource]struct{}{r: {}}
	r.dirty = true
	return r
}

// Create returns a fresh, disconnected, unacquired Resource.
func (w *World) Create() *Resource {
	return w.newResource(false)
}

// CreateConnected allocates a new Resource already edge-connected to
// every Resource in rs. It internally acquires all of rs, creates the
// new Resource pre-acquired, connects it to each of rs, and frees.
func (w *World) CreateConnected(rs ...*Resource) (*Resource, error) {
	g := w.NewAcquiringGroup(rs...)
	defer g.Free()

	nr, err := g.CreateAndAcquireResource()
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if err := g.Connect(nr, r); err != nil {
			return nil, err
		}
	}
	return nr, nil
}

// CreateConnected returns a new Resource already edge-connected to the
// receiver.
func (r *Resource) CreateConnected() (*Resource, error) {
	return r.world.CreateConnected(r)
}

// CurrentRoot returns the Id currently at the root of this Resource's
// class. Two Resources are in the same class if and only if this
// method returns the identical Id for both.
func (r *Resource) CurrentRoot() *Id {
	return r.id.root()
}

// AssociatedObject returns the user-owned payload attached to this
// Resource, or nil if none has been set.
func (r *Resource) AssociatedObject() any {
	p := r.associated.Load()
	if p == nil {
		return nil
	}
	return *p
}

// SetAssociatedObject attaches a user-owned payload to this Resource.
// It is unsynchronized with respect to every other Resource operation:
// the slot is an atomic pointer, so concurrent calls to
// SetAssociatedObject and AssociatedObject are free of data races, but
// they carry no ordering relative to any Group's acquisition state
// (§1, §9).
func (r *Resource) SetAssociatedObject(v any) {
	r.associated.Store(&v)
}

// directConnect adds other to this Resource's adjacency list (and this
// Resource to other's), marking both closure caches dirty. It is
// idempotent: connecting an already-connected pair is a no-op.
func (r *Resource) directConnect(other *Resource) {
	if _, ok := r.neighbors[other]; ok {
		return
	}
	r.neighbors[other] = struct{}{}
	other.neighbors[r] = struct{}{}
	r.dirty = true
	other.dirty = true
	assertSymmetricEdge(r, other)
}

// directDisconnect removes the r-other edge, in both directions, if
// present. It rejects self-disconnect; otherwise a missing edge is a
// silent no-op, matching Direct-connect's idempotence.
func (r *Resource) directDisconnect(other *Resource) error {
	if other == r {
		return ErrSelfDisconnect
	}
	if _, ok := r.neighbors[other]; !ok {
		return nil
	}
	delete(r.neighbors, other)
	delete(other.neighbors, r)
	r.dirty = true
	other.dirty = true
	assertSymmetricEdge(r, other)
	return nil
}

// assertSymmetricEdge checks that r and other agree on whether they
// are adjacent. directConnect and directDisconnect are the only
// writers of the neighbors maps and both always touch both sides
// together, so disagreement here means the adjacency graph has been
// corrupted.
func assertSymmetricEdge(r, other *Resource) {
	_, rHasOther := r.neighbors[other]
	_, otherHasR := other.neighbors[r]
	if rHasOther != otherHasR {
		invariant("asymmetric adjacency between id %d and id %d", r.id.Key(), other.id.Key())
	}
}

// Neighbors returns the Resources directly connected to this one,
// including this Resource itself (adjacency is self-inclusive by
// convention).
func (r *Resource) Neighbors() []*Resource {
	out := make([]*Resource, 0, len(r.neighbors))
	for n := range r.neighbors {
		out = append(out, n)
	}
	return out
}

// ConnectedClosure returns every Resource transitively reachable from
// this one over the adjacency graph, recomputing by flood-fill only
// when the cache has been invalidated by an intervening connect or
// disconnect.
func (r *Resource) ConnectedClosure() []*Resource {
	if !r.dirty {
		return append([]*Resource(nil), r.closure...)
	}
	r.closure = floodFill(r)
	r.dirty = false
	return append([]*Resource(nil), r.closure...)
}

func floodFill(start *Resource) []*Resource {
	visited := map[*Resource]struct{}{start: {}}
	order := []*Resource{start}
	stack := []*Resource{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for nb := range n.neighbors {
			if _, ok := visited[nb]; ok {
				continue
			}
			visited[nb] = struct{}{}
			order = append(order, nb)
			stack = append(stack, nb)
		}
	}
	return order
}

// resetRoot rewrites this Resource's own Id's parent pointer to p. It
// is only called by a Group's Disconnect, after a split, while holding
// the class lock of the root being split.
func (r *Resource) resetRoot(p *Id) {
	r.id.setParent(p)
}
