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

package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCheckHonorsInterval(t *testing.T) {
	t.Parallel()

	samples := 0
	g := New(
		WithSampler(func() uint64 { samples++; return 1 << 20 }),
		WithRestart(func() { t.Fatal("unexpected restart") }),
	)

	g.Check(testStart)
	assert.Equal(t, 1, samples, "first check always samples")

	g.Check(testStart.Add(5 * time.Second))
	assert.Equal(t, 1, samples, "within the interval nothing is sampled")

	g.Check(testStart.Add(10 * time.Second))
	assert.Equal(t, 2, samples)
}

func TestRestartBelowFloor(t *testing.T) {
	t.Parallel()

	free := uint64(30000)
	restarts := 0
	g := New(
		WithSampler(func() uint64 { return free }),
		WithRestart(func() { restarts++ }),
	)

	assert.False(t, g.Check(testStart))
	assert.Zero(t, restarts)

	free = 19999
	assert.True(t, g.Check(testStart.Add(10*time.Second)))
	assert.Equal(t, 1, restarts)
}

func TestFloorIsExclusive(t *testing.T) {
	t.Parallel()

	g := New(
		WithSampler(func() uint64 { return DefaultMinFree }),
		WithRestart(func() { t.Fatal("restart at exactly the floor") }),
	)
	assert.False(t, g.Check(testStart), "exactly the floor is still healthy")
}

func TestMinFreeEverTracksLowWater(t *testing.T) {
	t.Parallel()

	levels := []uint64{100000, 40000, 80000}
	i := 0
	g := New(
		WithSampler(func() uint64 { v := levels[i]; i++; return v }),
		WithRestart(func() {}),
	)

	now := testStart
	for range levels {
		g.Check(now)
		now = now.Add(10 * time.Second)
	}
	assert.Equal(t, uint64(40000), g.MinFreeEver())
}

func TestMinFreeEverZeroBeforeFirstSample(t *testing.T) {
	t.Parallel()
	assert.Zero(t, New().MinFreeEver())
}
