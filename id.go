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
)

// Id is a node in a mutable disjoint-set forest. The root of a parent
// chain carries the classlock.Lock that protects every Resource whose
// current root resolves to it. Ids are never copied; only *Id is ever
// passed around, so pointer equality is identity.
//
// A new Id is always its own root: parent starts out pointing at
// itself. It only stops being a root when Connect or Disconnect
// re-points it at a freshly allocated Id during a merge or split.
type Id struct {
	key    uint64
	parent atomic.Pointer[Id]
	lock   *classlock.Lock
}

func newID(key uint64, lock *classlock.Lock) *Id {
	id := &Id{key: key, lock: lock}
	id.parent.Store(id)
	return id
}

// Key returns the Id's monotonic allocation order. Keys are unique and
// strictly increasing for the lifetime of the World that produced
// them, which is what lets the acquisition protocol lock classes in a
// global order without risking deadlock (§4.3.5).
func (id *Id) Key() uint64 {
	return id.key
}

// root walks the parent chain to the current root, then path-compresses
// every node visited directly onto it. Parent reads are acquire-ordered
// and the compressing writes are release-ordered, which is what makes
// this safe to call without holding any lock: a concurrent re-rooting
// of an ancestor (necessarily performed by whoever holds that
// ancestor's class lock) either happens fully before or fully after
// this walk observes it, never torn. Compression only swaps a parent
// that still holds the value the walk read, and stops at any parent
// whose key is not below the root's, so a parent that a split has
// just re-pointed at a newer root is never overwritten with an older
// one.
//
// setParent is only ever called with a freshly allocated Id, whose key
// is strictly greater than anything allocated before it, so a
// non-root's parent always carries a strictly greater key than the
// non-root itself. A chain that violates this is a cycle: corruption
// of the forest, not a state this package ever produces.
func (id *Id) root() *Id {
	r := id
	for {
		p := r.parent.Load()
		if p == r {
			break
		}
		if p.key <= r.key {
			invariant("parent chain cycle: id %d points to id %d", r.key, p.key)
		}
		r = p
	}

	cur := id
	for cur != r {
		next := cur.parent.Load()
		if next.key >= r.key {
			// next is r itself, or cur was re-pointed at a newer root
			// after the walk above; either way, leave it alone.
			break
		}
		cur.parent.CompareAndSwap(next, r)
		cur = next
	}
	return r
}

// setParent unconditionally overwrites the parent pointer. Connect
// calls it on the two roots being merged; Disconnect calls it, through
// Resource.resetRoot, on the own Id of every member of a split class.
// In both cases the caller holds the class lock of every root being
// merged or split.
func (id *Id) setParent(p *Id) {
	id.parent.Store(p)
}
