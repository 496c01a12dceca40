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

package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBridgeName(t *testing.T) {
	t.Parallel()

	name, ok := bridgeName("1A86", "7523")
	require.True(t, ok, "lookup is case-insensitive")
	assert.Equal(t, "CH340", name)

	_, ok = bridgeName("dead", "beef")
	assert.False(t, ok)
}

func TestBest(t *testing.T) {
	t.Parallel()

	t.Run("PrefersKnownBridge", func(t *testing.T) {
		t.Parallel()
		devices := []Device{
			{Kind: KindSerial, Path: "/dev/ttyACM0"},
			{Kind: KindSerial, Path: "/dev/ttyUSB0", Preferred: true},
		}
		best, ok := Best(devices)
		require.True(t, ok)
		assert.Equal(t, "/dev/ttyUSB0", best.Path)
	})

	t.Run("FallsBackToFirst", func(t *testing.T) {
		t.Parallel()
		devices := []Device{{Kind: KindSerial, Path: "/dev/ttyACM0"}}
		best, ok := Best(devices)
		require.True(t, ok)
		assert.Equal(t, "/dev/ttyACM0", best.Path)
	})

	t.Run("Empty", func(t *testing.T) {
		t.Parallel()
		_, ok := Best(nil)
		assert.False(t, ok)
	})
}
