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

/*
Package reslock implements a multi-resource mutual-exclusion manager:
exclusive access to one Resource implies exclusive access to every
Resource that has been declared connected to it, directly or
transitively, even though the connectivity graph can change while a
caller is in the middle of acquiring it.

	world := reslock.NewWorld()

	a := world.Create()
	b := world.Create()

	g := world.NewAcquiringGroup(a, b)
	if err := g.Connect(a, b); err != nil {
		panic(err)
	}
	g.Free()

	// a and b now share a class; acquiring either one locks both.
	g2 := world.NewAcquiringGroup(a)
	defer g2.Free()

A Group is created by NewEmptyGroup or NewAcquiringGroup (CreateConnected
also uses one internally), used by exactly one goroutine, and consumed
by Free, after which further use returns ErrUsageAfterFree.

Unrelated components can each guard a single Resource and stay
oblivious of one another; Connect and Disconnect let a caller declare,
at runtime, that two Resources must always be locked together, without
either Resource's owner needing to know about the other.
*/
package reslock
