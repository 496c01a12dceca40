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

import (
	"context"
	"time"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

// Validator re-checks a confirmed tag out of band on a slower cadence
// than the main probe loop. It catches silent removals whose empty-read
// evidence keeps getting wiped by interleaved noise: a retained tag in
// a marginal position can produce just enough reads to defeat the
// removal counters while never actually being there for playback.
type Validator struct {
	reader  tonieplayer.Reader
	engine  *Engine
	cfg     Config
	lastRun time.Time
}

// NewValidator creates a validator bound to an engine and reader.
func NewValidator(reader tonieplayer.Reader, engine *Engine, cfg Config) *Validator {
	return &Validator{reader: reader, engine: engine, cfg: cfg}
}

// Due reports whether a validation cycle should run this tick. Only
// true while a tag is confirmed and the interval has elapsed.
func (v *Validator) Due(now time.Time) bool {
	if _, ok := v.engine.Confirmed(); !ok {
		return false
	}
	return now.Sub(v.lastRun) >= v.cfg.ValidateInterval
}

// Run performs one validation cycle: a short field bounce, one probe,
// and the engine bookkeeping. The returned Outcome carries the forced
// removal when the failure limit is reached.
func (v *Validator) Run(ctx context.Context, now time.Time) Outcome {
	v.lastRun = now
	if _, ok := v.engine.Confirmed(); !ok {
		return Outcome{}
	}

	tonieplayer.BounceField(ctx, v.reader, v.cfg.ValidateFieldOff, v.cfg.ValidateFieldOn)

	seen, err := v.reader.ProbeOnce(ctx)
	if err != nil {
		seen = tonieplayer.TagID{}
	}
	return v.engine.NoteValidation(seen, now)
}
