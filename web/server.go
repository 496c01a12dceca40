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

// Package web serves the device's configuration portal: a status page,
// a settings form, and reboot/factory-reset actions. The portal is the
// only way to configure a fresh device, so it must work before any
// server URL exists.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
	"github.com/ToniePlayerProject/tonieplayer/settings"
)

//go:embed static
var staticFS embed.FS

// Status is the live device snapshot rendered by the status API. The
// session fills it on request; the portal never reaches into the tick
// loop's state directly.
type Status struct {
	State        string `json:"state"`
	TagUID       string `json:"tag_uid,omitempty"`
	Online       bool   `json:"online"`
	LocalIP      string `json:"local_ip,omitempty"`
	SyncFailures int    `json:"sync_failures"`
	FreeMemory   uint64 `json:"free_memory"`
	UptimeSecs   int64  `json:"uptime_secs"`
}

// StatusFunc produces the current snapshot. It is called from the
// portal's goroutine and must be safe to call concurrently with the
// tick loop.
type StatusFunc func() Status

// Server is the configuration portal.
type Server struct {
	store   *settings.Store
	status  StatusFunc
	restart func()
	router  *mux.Router
}

// NewServer wires the portal routes. restart is invoked after a
// reboot or factory-reset request has been acknowledged.
func NewServer(store *settings.Store, status StatusFunc, restart func()) *Server {
	s := &Server{
		store:   store,
		status:  status,
		restart: restart,
		router:  mux.NewRouter(),
	}

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/settings", s.handleGetSettings).Methods(http.MethodGet)
	s.router.HandleFunc("/api/settings", s.handleSaveSettings).Methods(http.MethodPost)
	s.router.HandleFunc("/api/reboot", s.handleReboot).Methods(http.MethodPost)
	s.router.HandleFunc("/api/reset", s.handleReset).Methods(http.MethodPost)
	s.router.PathPrefix("/static/").Handler(http.FileServer(http.FS(staticFS)))

	return s
}

// Handler returns the portal's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves the portal until the context is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleIndex serves the setup page until a server URL exists, the
// dashboard after.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	page := "static/setup.html"
	if s.store.Get().Configured() {
		page = "static/index.html"
	}
	data, err := staticFS.ReadFile(page)
	if err != nil {
		http.Error(w, "page missing", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.status())
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.store.Get())
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var incoming settings.Settings
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&incoming); err != nil {
		http.Error(w, "invalid settings payload", http.StatusBadRequest)
		return
	}

	err := s.store.Update(func(cur *settings.Settings) { *cur = incoming })
	if err != nil {
		tonieplayer.Debugf("settings rejected: %v", err)
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, s.store.Get())
}

func (s *Server) handleReboot(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusAccepted)
	tonieplayer.Debugf("reboot requested via portal")
	go s.restart()
}

func (s *Server) handleReset(w http.ResponseWriter, _ *http.Request) {
	if err := s.store.FactoryReset(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	tonieplayer.Debugf("factory reset requested via portal")
	go s.restart()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
