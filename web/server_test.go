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

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ToniePlayerProject/tonieplayer/settings"
)

func newTestServer(t *testing.T, configured bool) (*Server, *settings.Store, *atomic.Int32) {
	t.Helper()
	store, err := settings.Load(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	if configured {
		require.NoError(t, store.Update(func(s *settings.Settings) {
			s.ServerURL = "http://server.local:8080"
		}))
	}

	restarts := &atomic.Int32{}
	status := func() Status {
		return Status{State: "idle", Online: true, LocalIP: "10.0.0.5", FreeMemory: 1 << 20}
	}
	return NewServer(store, status, func() { restarts.Add(1) }), store, restarts
}

func TestIndexSelectsPage(t *testing.T) {
	t.Parallel()

	t.Run("SetupWhenUnconfigured", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, false)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "not configured yet")
	})

	t.Run("DashboardWhenConfigured", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, true)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/api/status")
		assert.NotContains(t, rec.Body.String(), "not configured yet")
	})
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "idle", got.State)
	assert.True(t, got.Online)
	assert.Equal(t, "10.0.0.5", got.LocalIP)
}

func TestSaveSettings(t *testing.T) {
	t.Parallel()

	t.Run("ValidPersists", func(t *testing.T) {
		t.Parallel()
		srv, store, _ := newTestServer(t, false)

		body := `{"serverUrl":"http://10.1.1.1:9000","deviceName":"shelf","ledBrightness":80}`
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader(body)))

		require.Equal(t, http.StatusOK, rec.Code)
		cfg := store.Get()
		assert.Equal(t, "http://10.1.1.1:9000", cfg.ServerURL)
		assert.Equal(t, "shelf", cfg.DeviceName)
		assert.Equal(t, 80, cfg.LEDBrightness)
	})

	t.Run("InvalidRejected", func(t *testing.T) {
		t.Parallel()
		srv, store, _ := newTestServer(t, true)
		before := store.Get()

		body := `{"serverUrl":"ftp://bad","deviceName":"shelf","ledBrightness":80}`
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader(body)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, before, store.Get(), "rejected writes leave settings untouched")
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		t.Parallel()
		srv, _, _ := newTestServer(t, true)

		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/settings", strings.NewReader("{nope")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRebootTriggersRestart(t *testing.T) {
	t.Parallel()
	srv, _, restarts := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reboot", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Eventually(t, func() bool { return restarts.Load() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestFactoryReset(t *testing.T) {
	t.Parallel()
	srv, store, restarts := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/reset", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.False(t, store.Get().Configured(), "reset clears the server URL")
	assert.Eventually(t, func() bool { return restarts.Load() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestMethodFiltering(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t, true)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reboot", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
