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

// Package tonieplayer provides the shared contracts for the ToniePlayer
// NFC reader daemon: the validated TagID type, the Reader abstraction
// over PN5180 transports, clock and network interfaces, and the mock
// reader used throughout the test suites.
package tonieplayer

import (
	"context"
	"time"
)

// Reader is a one-shot ISO15693 inventory front end over a PN5180.
// Implementations live in transport/; the presence engine only ever
// issues single probes and field/reinit commands through this interface.
type Reader interface {
	// ProbeOnce attempts one inventory read. It returns the validated
	// TagID on success and ErrNoTag when the field is empty. Any other
	// error is indistinguishable from "no tag" to the detection path.
	ProbeOnce(ctx context.Context) (TagID, error)

	// FieldOn and FieldOff switch the RF field. Timing between the two
	// is owned by the caller.
	FieldOn(ctx context.Context) error
	FieldOff(ctx context.Context) error

	// Reinitialize performs a full reader reset and RF setup. Used both
	// on a fixed cadence and to recover from transient bus lockups.
	Reinitialize(ctx context.Context) error

	Close() error
}

// BounceField cycles the RF field off and back on with the given hold
// times. The short busy-waits are deliberate: field decay needs real
// elapsed time before a retained tag de-energizes (spec'd removal
// behavior). Errors are ignored; a failed bounce is recovered by the
// next periodic reinitialization.
func BounceField(ctx context.Context, r Reader, offFor, onFor time.Duration) {
	_ = r.FieldOff(ctx)
	sleepCtx(ctx, offFor)
	_ = r.FieldOn(ctx)
	sleepCtx(ctx, onFor)
}

// sleepCtx sleeps for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
