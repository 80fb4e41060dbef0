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

// Package version holds the in-memory format version reported by a
// [github.com/cockroachdb/reslock.World]. There is no wire format or
// on-disk state to version here; this exists purely as a diagnostic
// string that callers can log or compare, so that a future,
// backward-incompatible change to the acquisition protocol has
// somewhere to announce itself.
package version

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// Current is the format version implemented by this module.
const Current = "v1.0.0"

func init() {
	if !semver.IsValid(Current) {
		panic("version: Current is not a valid semantic version: " + Current)
	}
}

// Compatible reports whether a World reporting other's format version
// can be mixed with code built against Current. Only the major version
// is consulted: a minor/patch bump may add optional behavior (the
// Events hooks, say) without breaking an older caller.
func Compatible(other string) bool {
	if !semver.IsValid(other) {
		return false
	}
	return semver.Major(other) == semver.Major(Current)
}

// String renders the current format version for logging.
func String() string {
	return fmt.Sprintf("reslock/%s", Current)
}
