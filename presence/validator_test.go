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
	"testing"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
	"github.com/stretchr/testify/assert"
)

func TestValidatorDueOnlyWhileConfirmed(t *testing.T) {
	t.Parallel()
	tagA := testTag(t, 0xAA)
	reader := tonieplayer.NewMockReader()
	engine := NewEngine(DefaultConfig())
	v := NewValidator(reader, engine, DefaultConfig())

	assert.False(t, v.Due(at(0)), "nothing confirmed yet")

	confirmTag(t, engine, tagA, 0)
	assert.True(t, v.Due(at(1300)))

	v.Run(context.Background(), at(1300))
	assert.False(t, v.Due(at(1500)), "interval not yet elapsed")
	assert.True(t, v.Due(at(2200)))
}

func TestValidatorRunBouncesFieldAndProbes(t *testing.T) {
	t.Parallel()
	tagA := testTag(t, 0xAA)
	reader := tonieplayer.NewMockReader()
	engine := NewEngine(DefaultConfig())
	v := NewValidator(reader, engine, DefaultConfig())
	confirmTag(t, engine, tagA, 0)

	reader.SetSticky(tagA)
	out := v.Run(context.Background(), at(1300))
	assert.Equal(t, EventNone, out.Event)
	assert.Equal(t, 1, reader.FieldOffs)
	assert.Equal(t, 1, reader.FieldOns)
	assert.Equal(t, 1, reader.Probes)
	assert.True(t, reader.FieldIsOn(), "field left on after bounce")
}

func TestValidatorForcedRemovalSequence(t *testing.T) {
	t.Parallel()
	tagA := testTag(t, 0xAA)
	reader := tonieplayer.NewMockReader() // probes report empty field
	engine := NewEngine(DefaultConfig())
	v := NewValidator(reader, engine, DefaultConfig())
	confirmTag(t, engine, tagA, 0)

	out := v.Run(context.Background(), at(1300))
	assert.Equal(t, EventNone, out.Event)

	out = v.Run(context.Background(), at(2100))
	assert.Equal(t, EventDisappeared, out.Event)
	assert.Equal(t, tagA, out.ID)
	assert.True(t, out.BounceField)

	_, confirmed := engine.Confirmed()
	assert.False(t, confirmed)
	assert.False(t, v.Due(at(3000)), "no cadence without a confirmed tag")
}

func TestValidatorWrongTagCounts(t *testing.T) {
	t.Parallel()
	tagA := testTag(t, 0xAA)
	tagB := testTag(t, 0xBB)
	reader := tonieplayer.NewMockReader()
	engine := NewEngine(DefaultConfig())
	v := NewValidator(reader, engine, DefaultConfig())
	confirmTag(t, engine, tagA, 0)

	reader.SetSticky(tagB)
	v.Run(context.Background(), at(1300))
	out := v.Run(context.Background(), at(2100))
	assert.Equal(t, EventDisappeared, out.Event)
}
