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

package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

func TestParseProbeLine(t *testing.T) {
	t.Parallel()

	t.Run("UID", func(t *testing.T) {
		t.Parallel()
		id, err := parseProbeLine("UID E004010812345678")
		require.NoError(t, err)
		assert.Equal(t, "E0:04:01:08:12:34:56:78", id.String())
	})

	t.Run("None", func(t *testing.T) {
		t.Parallel()
		_, err := parseProbeLine("NONE")
		assert.ErrorIs(t, err, tonieplayer.ErrNoTag)
	})

	t.Run("Garbage", func(t *testing.T) {
		t.Parallel()
		_, err := parseProbeLine("ERR 42")
		assert.ErrorIs(t, err, tonieplayer.ErrInvalidResponse)
	})
}

func TestParseUIDHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"TooShort", "E0040108"},
		{"NotHex", "E00401081234567Z"},
		{"WrongSignature", "AB04010812345678"},
		{"ZeroUID", "0000000000000000"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseUIDHex(tt.in)
			assert.ErrorIs(t, err, tonieplayer.ErrInvalidTagID)
		})
	}
}
