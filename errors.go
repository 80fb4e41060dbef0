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
	"errors"
	"fmt"
)

// Sentinel errors returned by Group methods. Use errors.Is to test for
// them; they are never wrapped with additional dynamic type.
var (
	// ErrUsageAfterFree is returned by any Group method that returns an
	// error, Free itself included, when called after Free has already
	// run.
	ErrUsageAfterFree = errors.New("reslock: group already freed")

	// ErrResourceNotHeld is returned by Connect and Disconnect when a
	// resource's current root is not in the group's held set.
	ErrResourceNotHeld = errors.New("reslock: resource not held by this group")

	// ErrSelfDisconnect is returned by Disconnect when both arguments
	// are the same resource.
	ErrSelfDisconnect = errors.New("reslock: cannot disconnect a resource from itself")
)

// invariant panics to report corruption of the forest or adjacency
// graph: a duplicate root in a held set (group.go's assertUniqueRoots),
// a cycle in a parent chain (id.go's root), or an asymmetric adjacency
// edge (resource.go's assertSymmetricEdge) — plus a handful of
// programmer-error conditions local to this package (a malformed
// restart budget, a gate closed/opened out of balance). The spec
// treats forest/graph corruption as fatal — there is no way to safely
// continue running against it — so this package never tries to
// recover from them.
func invariant(format string, args ...any) {
	panic(fmt.Sprintf("reslock: invariant violation: "+format, args...))
}
