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

// Package presence turns noisy single-shot inventory probes into a
// stable tag present/absent signal. The Engine is pure state: it takes
// a probe result and a timestamp each tick and returns an Outcome; all
// reader side effects (reinitialization, field bounces) are requested
// through Outcome flags and performed by the caller, keeping the hot
// path allocation-free and fully deterministic under test.
package presence

import (
	"time"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

// Event is the presence transition decided in a tick, if any.
type Event int

const (
	// EventNone means no transition this tick.
	EventNone Event = iota
	// EventAppeared means a tag passed debounce and is now confirmed.
	EventAppeared
	// EventDisappeared means the confirmed tag was declared removed.
	EventDisappeared
)

// Outcome is the result of one engine tick: at most one transition plus
// reader actions the caller must perform.
type Outcome struct {
	Event Event
	// ID is the tag that appeared or disappeared.
	ID tonieplayer.TagID
	// ResetReader requests a reader reinitialization (transient stall
	// recovery). Not a removal.
	ResetReader bool
	// BounceField requests a post-removal RF off/on cycle.
	BounceField bool
}

// Engine owns the presence state machine. It is single-writer: exactly
// one goroutine may call its methods, and nothing else mutates its
// state.
type Engine struct {
	cfg Config

	confirmed tonieplayer.TagID
	pending   tonieplayer.TagID

	pendingSince  time.Time
	pendingReads  int
	lastSeen      time.Time
	lastRemoved   tonieplayer.TagID
	lastRemovedAt time.Time

	// emptyReads drives stall recovery; emptyForRemoval drives removal.
	// They reset on different conditions and must stay separate.
	emptyReads      int
	emptyForRemoval int

	validateFailures int
}

// NewEngine creates an engine with the given tuning.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Confirmed returns the currently confirmed tag, if any.
func (e *Engine) Confirmed() (tonieplayer.TagID, bool) {
	return e.confirmed, !e.confirmed.IsZero()
}

// PendingActive reports whether a debounce candidate is in flight.
func (e *Engine) PendingActive() bool {
	return !e.pending.IsZero()
}

// Idle reports whether neither a confirmed nor a pending tag exists.
func (e *Engine) Idle() bool {
	return e.confirmed.IsZero() && e.pending.IsZero()
}

// HandleProbe advances the state machine with one probe result. A zero
// id means the probe found nothing (reader errors are folded into the
// same case - the engine has no notion of reader failure beyond stall
// recovery).
func (e *Engine) HandleProbe(id tonieplayer.TagID, now time.Time) Outcome {
	if id.IsZero() {
		return e.handleEmpty(now)
	}
	return e.handleRead(id, now)
}

func (e *Engine) handleRead(id tonieplayer.TagID, now time.Time) Outcome {
	// Any read clears the removal streak, even a ghost read. The
	// removal countdown measures a genuinely quiet field.
	e.emptyForRemoval = 0

	if id == e.lastRemoved && now.Sub(e.lastRemovedAt) < e.cfg.CooldownWindow {
		// Ghost read of the tag just removed.
		return Outcome{}
	}

	switch {
	case id == e.confirmed:
		e.lastSeen = now
		e.emptyReads = 0
		e.clearPending()
		e.validateFailures = 0

	case id == e.pending:
		e.lastSeen = now
		e.emptyReads = 0
		e.pendingReads++
		if e.pendingReads >= e.cfg.MinConsistentReads && now.Sub(e.pendingSince) >= e.cfg.DebounceWindow {
			tonieplayer.Debugf("tag confirmed: %s", id)
			e.confirmed = id
			e.clearPending()
			e.lastRemoved = tonieplayer.TagID{}
			e.validateFailures = 0
			return Outcome{Event: EventAppeared, ID: id}
		}

	case e.confirmed.IsZero():
		// New candidate; replaces any other pending candidate.
		e.lastSeen = now
		e.emptyReads = 0
		e.pending = id
		e.pendingSince = now
		e.pendingReads = 1

	default:
		// A different tag while one is confirmed: single-tag
		// semantics, the confirmed tag must disappear first.
	}
	return Outcome{}
}

func (e *Engine) handleEmpty(now time.Time) Outcome {
	e.emptyReads++
	e.emptyForRemoval++

	// A single miss cancels any debounce in progress: promotion
	// requires contiguous consistent reads.
	e.clearPending()

	var out Outcome

	// Stall recovery runs before the removal check. Reinitialization
	// can therefore occur mid-removal-countdown; that ordering matches
	// hardware-validated behavior and must not be reordered.
	if e.emptyReads >= e.cfg.MaxEmptyReadsReset && !e.confirmed.IsZero() {
		out.ResetReader = true
		e.emptyReads = 0
	}

	if !e.confirmed.IsZero() &&
		now.Sub(e.lastSeen) >= e.cfg.RemovalWindow &&
		e.emptyForRemoval >= e.cfg.MinEmptyForRemoval {
		removed := e.remove(now)
		out.Event = EventDisappeared
		out.ID = removed
		out.BounceField = true
	}

	// Cooldown decay.
	if !e.lastRemoved.IsZero() && now.Sub(e.lastRemovedAt) >= e.cfg.CooldownWindow {
		e.lastRemoved = tonieplayer.TagID{}
	}

	return out
}

// NoteValidation records an out-of-band presence check result. seen is
// the tag the validation probe returned (zero for none). When the
// consecutive failure limit is reached the standard removal sequence
// runs, independent of the main-loop counters.
func (e *Engine) NoteValidation(seen tonieplayer.TagID, now time.Time) Outcome {
	if e.confirmed.IsZero() {
		return Outcome{}
	}

	if seen == e.confirmed {
		e.validateFailures = 0
		return Outcome{}
	}

	e.validateFailures++
	if e.validateFailures < e.cfg.ValidateFailLimit {
		return Outcome{}
	}

	tonieplayer.Debugf("tag removed (validation)")
	removed := e.remove(now)
	return Outcome{Event: EventDisappeared, ID: removed, BounceField: true}
}

// remove clears the confirmed tag and records the cooldown.
func (e *Engine) remove(now time.Time) tonieplayer.TagID {
	removed := e.confirmed
	e.lastRemoved = removed
	e.lastRemovedAt = now
	e.confirmed = tonieplayer.TagID{}
	e.validateFailures = 0
	return removed
}

func (e *Engine) clearPending() {
	e.pending = tonieplayer.TagID{}
	e.pendingReads = 0
}
