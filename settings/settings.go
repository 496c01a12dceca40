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

// Package settings persists the device configuration. Settings mutate
// only between detection ticks (via the web portal); the Store hands
// out immutable snapshots so the tick path never sees a half-written
// update.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ToniePlayerProject/tonieplayer/internal/syncutil"
)

// Default values applied when no settings file exists.
const (
	DefaultDeviceName = "tonieplayer"
	DefaultBrightness = 50

	minBrightness = 10
	maxBrightness = 100
)

// Settings is the persisted device configuration.
type Settings struct {
	// ServerURL is the playback server base URL. Empty means the
	// device is unconfigured (setup mode).
	ServerURL string `json:"serverUrl"`

	// DeviceName identifies this reader in heartbeats.
	DeviceName string `json:"deviceName"`

	// PlaybackDevice selects a playback target as "type|id"
	// ("sonos|RINCON_xxx"). Empty means the server default.
	PlaybackDevice string `json:"playbackDevice"`

	// LEDBrightness is the status LED brightness percentage (10-100).
	LEDBrightness int `json:"ledBrightness"`
}

// Default returns the factory settings.
func Default() Settings {
	return Settings{
		DeviceName:    DefaultDeviceName,
		LEDBrightness: DefaultBrightness,
	}
}

// Configured reports whether a server URL has been set. An
// unconfigured device runs in setup mode: portal only, no scanning.
func (s Settings) Configured() bool {
	return s.ServerURL != ""
}

// PlaybackTarget splits the PlaybackDevice string on its first '|'.
// Both values are empty when no target is configured or the separator
// is missing.
func (s Settings) PlaybackTarget() (typ, id string) {
	if s.PlaybackDevice == "" {
		return "", ""
	}
	typ, id, found := strings.Cut(s.PlaybackDevice, "|")
	if !found {
		return "", ""
	}
	return typ, id
}

// Validate checks field ranges. Called before persisting an update.
func (s Settings) Validate() error {
	if s.DeviceName == "" {
		return errors.New("deviceName required")
	}
	if s.LEDBrightness < minBrightness || s.LEDBrightness > maxBrightness {
		return fmt.Errorf("ledBrightness must be %d-%d, got %d", minBrightness, maxBrightness, s.LEDBrightness)
	}
	if s.ServerURL != "" && !strings.HasPrefix(s.ServerURL, "http://") && !strings.HasPrefix(s.ServerURL, "https://") {
		return fmt.Errorf("serverUrl must be http(s), got %q", s.ServerURL)
	}
	return nil
}

// Store owns the settings file and the current snapshot.
type Store struct {
	path    string
	mu      syncutil.RWMutex
	current Settings
}

// Load opens the store at path. A missing or corrupted file yields the
// defaults (and reports no error); the file is created on first save.
func Load(path string) (*Store, error) {
	st := &Store{path: path, current: Default()}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	var loaded Settings
	if err := json.Unmarshal(data, &loaded); err != nil {
		// Corrupted file: fall back to defaults, same as a missing
		// file. The next save overwrites it.
		return st, nil
	}
	if loaded.Validate() != nil {
		return st, nil
	}
	st.current = loaded
	return st, nil
}

// Get returns the current settings snapshot.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.current
}

// Update applies fn to a copy of the current settings, validates the
// result, and persists it atomically.
func (st *Store) Update(fn func(*Settings)) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.current
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	if err := st.save(next); err != nil {
		return err
	}
	st.current = next
	return nil
}

// FactoryReset removes the settings file and restores defaults.
func (st *Store) FactoryReset() error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if err := os.Remove(st.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove settings %s: %w", st.path, err)
	}
	st.current = Default()
	return nil
}

// save writes next to disk via a temp file rename.
func (st *Store) save(next Settings) error {
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if dir := filepath.Dir(st.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return fmt.Errorf("commit settings: %w", err)
	}
	return nil
}
