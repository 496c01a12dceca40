// Copyright 2026 The ToniePlayer Project Contributors.
// SPDX-License-Identifier: Apache-2.0
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

package presence

import "time"

// Config holds the detection timing windows and counters. The defaults
// were tuned against a PN5180 whose inventory reads miss intermittently
// and ghost briefly after a tag leaves the field; change them together,
// not individually.
type Config struct {
	// DebounceWindow is the minimum elapsed time a pending tag must be
	// observed before promotion to confirmed.
	DebounceWindow time.Duration

	// MinConsistentReads is the minimum number of contiguous matching
	// probes required for promotion. Promotion needs BOTH the streak
	// and the elapsed window: a single lucky read of a nearby tag must
	// not confirm it.
	MinConsistentReads int

	// RemovalWindow is the minimum time since the confirmed tag was
	// last seen before removal may be declared.
	RemovalWindow time.Duration

	// MinEmptyForRemoval is the minimum number of consecutive empty
	// probes before removal may be declared. Removal needs BOTH the
	// window and the streak: time alone can elapse with zero probes
	// when the reader glitches.
	MinEmptyForRemoval int

	// MaxEmptyReadsReset is the consecutive-empty-read count that
	// forces a reader reinitialization while a tag is confirmed,
	// recovering from transient bus lockups without declaring removal.
	MaxEmptyReadsReset int

	// CooldownWindow suppresses re-acceptance of the tag that was just
	// removed, rejecting ghost reads from trailing RF reflections.
	CooldownWindow time.Duration

	// ValidateInterval is the cadence of the out-of-band presence
	// re-check while a tag is confirmed.
	ValidateInterval time.Duration

	// ValidateFailLimit is the number of consecutive failed validations
	// that forces removal.
	ValidateFailLimit int

	// ValidateFieldOff / ValidateFieldOn are the validation bounce hold
	// times (shorter than the removal bounce).
	ValidateFieldOff time.Duration
	ValidateFieldOn  time.Duration

	// RemovalFieldOff / RemovalFieldOn are the post-removal bounce hold
	// times, clearing any latched reader state.
	RemovalFieldOff time.Duration
	RemovalFieldOn  time.Duration
}

// DefaultConfig returns the production detection tuning.
func DefaultConfig() Config {
	return Config{
		DebounceWindow:     350 * time.Millisecond,
		MinConsistentReads: 3,
		RemovalWindow:      400 * time.Millisecond,
		MinEmptyForRemoval: 5,
		MaxEmptyReadsReset: 3,
		CooldownWindow:     1500 * time.Millisecond,
		ValidateInterval:   800 * time.Millisecond,
		ValidateFailLimit:  2,
		ValidateFieldOff:   80 * time.Millisecond,
		ValidateFieldOn:    20 * time.Millisecond,
		RemovalFieldOff:    50 * time.Millisecond,
		RemovalFieldOn:     10 * time.Millisecond,
	}
}
