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

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	st, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	got := st.Get()
	assert.Equal(t, DefaultDeviceName, got.DeviceName)
	assert.Equal(t, DefaultBrightness, got.LEDBrightness)
	assert.False(t, got.Configured())
}

func TestLoadCorruptedFileYieldsDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	st, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), st.Get())
}

func TestUpdateRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := Load(path)
	require.NoError(t, err)

	err = st.Update(func(s *Settings) {
		s.ServerURL = "http://192.168.1.100:8754"
		s.DeviceName = "livingroom"
		s.PlaybackDevice = "sonos|RINCON_123"
		s.LEDBrightness = 80
	})
	require.NoError(t, err)
	assert.True(t, st.Get().Configured())

	// A fresh store sees the persisted values.
	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, st.Get(), reloaded.Get())
}

func TestUpdateRejectsInvalid(t *testing.T) {
	t.Parallel()
	st, err := Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)

	err = st.Update(func(s *Settings) { s.LEDBrightness = 500 })
	require.Error(t, err)
	assert.Equal(t, DefaultBrightness, st.Get().LEDBrightness, "failed update must not apply")

	err = st.Update(func(s *Settings) { s.ServerURL = "ftp://nope" })
	require.Error(t, err)
}

func TestPlaybackTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		device   string
		wantType string
		wantID   string
	}{
		{"Empty", "", "", ""},
		{"TypeAndID", "sonos|RINCON_123", "sonos", "RINCON_123"},
		{"IDWithSeparator", "airplay|host|7000", "airplay", "host|7000"},
		{"NoSeparator", "sonos", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := Settings{PlaybackDevice: tt.device}
			typ, id := s.PlaybackTarget()
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestFactoryReset(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "settings.json")
	st, err := Load(path)
	require.NoError(t, err)

	require.NoError(t, st.Update(func(s *Settings) {
		s.ServerURL = "http://example.local:8754"
	}))
	require.NoError(t, st.FactoryReset())

	assert.Equal(t, Default(), st.Get())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
