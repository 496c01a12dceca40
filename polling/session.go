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

// Package polling runs the device's main loop. One goroutine owns the
// reader, the presence engine, the indicator, and the sync client;
// every piece of work happens inside a tick, in a fixed order, so no
// state needs locking beyond the status snapshot handed to the web
// portal.
package polling

import (
	"context"
	"errors"
	"time"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
	"github.com/ToniePlayerProject/tonieplayer/client"
	"github.com/ToniePlayerProject/tonieplayer/guard"
	"github.com/ToniePlayerProject/tonieplayer/indicator"
	"github.com/ToniePlayerProject/tonieplayer/internal/syncutil"
	"github.com/ToniePlayerProject/tonieplayer/presence"
	"github.com/ToniePlayerProject/tonieplayer/settings"
	"github.com/ToniePlayerProject/tonieplayer/web"
)

// Config tunes the session cadences.
type Config struct {
	// TickInterval is the pacing of the main loop.
	TickInterval time.Duration

	// NetworkCheckInterval is how often connectivity is re-verified.
	NetworkCheckInterval time.Duration

	// HeartbeatInterval is how often the reader announces itself.
	HeartbeatInterval time.Duration

	// ReaderResetInterval is how often an idle reader is
	// reinitialized to shake off silent hardware wedges.
	ReaderResetInterval time.Duration

	// MaxSyncFailures is the consecutive-failure count above which a
	// network reconnect is forced.
	MaxSyncFailures int
}

// DefaultConfig returns the production cadences.
func DefaultConfig() Config {
	return Config{
		TickInterval:         50 * time.Millisecond,
		NetworkCheckInterval: 5 * time.Second,
		HeartbeatInterval:    30 * time.Second,
		ReaderResetInterval:  30 * time.Second,
		MaxSyncFailures:      3,
	}
}

// Params carries the session's collaborators.
type Params struct {
	Reader    tonieplayer.Reader
	Engine    *presence.Engine
	Validator *presence.Validator
	Client    *client.Client
	Indicator *indicator.Controller
	Guard     *guard.Guard
	Network   tonieplayer.Network
	Store     *settings.Store
	Clock     tonieplayer.Clock

	Config   Config
	Presence presence.Config
}

// Session is the single-writer main loop.
type Session struct {
	cfg  Config
	pcfg presence.Config

	reader    tonieplayer.Reader
	engine    *presence.Engine
	validator *presence.Validator
	client    *client.Client
	indicator *indicator.Controller
	guard     *guard.Guard
	network   tonieplayer.Network
	store     *settings.Store
	clock     tonieplayer.Clock

	started       time.Time
	online        bool
	lastNetCheck  time.Time
	lastHeartbeat time.Time
	lastReset     time.Time

	// snapshot is the one piece of state read outside the loop.
	snapMu   syncutil.RWMutex
	snapshot web.Status
}

// NewSession wires a session. The clock defaults to the system clock.
func NewSession(p Params) *Session {
	if p.Clock == nil {
		p.Clock = tonieplayer.SystemClock()
	}
	now := p.Clock.Now()
	return &Session{
		cfg:       p.Config,
		pcfg:      p.Presence,
		reader:    p.Reader,
		engine:    p.Engine,
		validator: p.Validator,
		client:    p.Client,
		indicator: p.Indicator,
		guard:     p.Guard,
		network:   p.Network,
		store:     p.Store,
		clock:     p.Clock,
		started:   now,
	}
}

// Run ticks until the context is canceled.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()
	defer s.indicator.Off()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one full pass of the loop.
func (s *Session) Tick(ctx context.Context) {
	now := s.clock.Now()

	s.indicator.Tick(now)

	if s.guard.Check(now) {
		// Restart in flight; nothing below matters.
		return
	}

	if !s.store.Get().Configured() {
		s.indicator.Set(indicator.StateSetup, now)
		s.publishSnapshot(now)
		return
	}

	s.checkNetwork(ctx, now)

	// Scanning continues while offline; only the reports are skipped
	// (the client drops them itself). A tag placed during an outage is
	// still debounced so its state is current the moment the network
	// returns.
	if s.online && (s.lastHeartbeat.IsZero() || now.Sub(s.lastHeartbeat) >= s.cfg.HeartbeatInterval) {
		s.lastHeartbeat = now
		s.client.Heartbeat(ctx)
	}

	s.maybeResetIdleReader(ctx, now)

	id, err := s.reader.ProbeOnce(ctx)
	if err != nil && !errors.Is(err, tonieplayer.ErrNoTag) {
		tonieplayer.Debugf("probe error: %v", err)
		id = tonieplayer.TagID{}
	}
	s.apply(ctx, s.engine.HandleProbe(id, now), now)

	if s.validator.Due(now) {
		s.apply(ctx, s.validator.Run(ctx, now), now)
	}

	if s.client.Failures() > s.cfg.MaxSyncFailures {
		tonieplayer.Debugf("sync failures exceeded %d, reconnecting", s.cfg.MaxSyncFailures)
		if err := s.network.Reconnect(ctx); err != nil {
			tonieplayer.Debugf("reconnect: %v", err)
		}
		s.client.ResetFailures()
	}

	s.publishSnapshot(now)
}

// checkNetwork refreshes connectivity on its own cadence and keeps the
// indicator truthful about it.
func (s *Session) checkNetwork(ctx context.Context, now time.Time) {
	if !s.lastNetCheck.IsZero() && now.Sub(s.lastNetCheck) < s.cfg.NetworkCheckInterval {
		return
	}
	s.lastNetCheck = now

	wasOnline := s.online
	s.online = s.network.Online()

	switch {
	case !s.online:
		s.indicator.Set(indicator.StateConnecting, now)
		if err := s.network.Reconnect(ctx); err != nil {
			tonieplayer.Debugf("reconnect: %v", err)
			s.indicator.Set(indicator.StateError, now)
		}
	case !wasOnline:
		// Just came (or started) up.
		tonieplayer.Debugf("network up, ip=%s", s.network.LocalIP())
		if _, ok := s.engine.Confirmed(); ok {
			s.indicator.Set(indicator.StatePlaying, now)
		} else {
			s.indicator.Set(indicator.StateIdle, now)
		}
	}
}

// maybeResetIdleReader reinitializes a quiet reader on a slow cadence.
// Some readers stop answering inventory after hours in an RF-noisy
// spot; only an idle reader is reset so a present tag is never
// disturbed.
func (s *Session) maybeResetIdleReader(ctx context.Context, now time.Time) {
	if !s.engine.Idle() {
		return
	}
	if s.lastReset.IsZero() {
		s.lastReset = now
		return
	}
	if now.Sub(s.lastReset) < s.cfg.ReaderResetInterval {
		return
	}
	s.lastReset = now
	if err := s.reader.Reinitialize(ctx); err != nil {
		tonieplayer.Debugf("periodic reader reset: %v", err)
	}
}

// apply performs the reader actions and state transitions an engine
// outcome requests.
func (s *Session) apply(ctx context.Context, out presence.Outcome, now time.Time) {
	if out.ResetReader {
		if err := s.reader.Reinitialize(ctx); err != nil {
			tonieplayer.Debugf("stall recovery reset: %v", err)
		}
	}

	switch out.Event {
	case presence.EventAppeared:
		tonieplayer.Debugf("tag confirmed: %s", out.ID)
		res := s.client.ReportAppeared(ctx, out.ID)
		switch {
		case res.Found && res.Encoding:
			s.indicator.Set(indicator.StateEncoding, now)
		case res.Found:
			s.indicator.Set(indicator.StatePlaying, now)
		default:
			s.indicator.Set(indicator.StateNotFound, now)
		}

	case presence.EventDisappeared:
		tonieplayer.Debugf("tag removed: %s", out.ID)
		s.client.ReportDisappeared(ctx)
		s.indicator.Set(indicator.StateIdle, now)

	case presence.EventNone:
		switch {
		case s.engine.PendingActive():
			s.indicator.Set(indicator.StateDetecting, now)
		case s.engine.Idle() && s.indicator.State() == indicator.StateDetecting:
			// Candidate fizzled before confirmation.
			s.indicator.Set(indicator.StateIdle, now)
		}
	}

	if out.BounceField {
		tonieplayer.BounceField(ctx, s.reader, s.pcfg.RemovalFieldOff, s.pcfg.RemovalFieldOn)
	}
}

// publishSnapshot refreshes the status handed to the web portal.
func (s *Session) publishSnapshot(now time.Time) {
	var uid string
	if id, ok := s.engine.Confirmed(); ok {
		uid = id.String()
	}
	snap := web.Status{
		State:        s.indicator.State().String(),
		TagUID:       uid,
		Online:       s.online,
		SyncFailures: s.client.Failures(),
		FreeMemory:   s.guard.LastFree(),
		UptimeSecs:   int64(now.Sub(s.started) / time.Second),
	}
	if s.online {
		snap.LocalIP = s.network.LocalIP()
	}

	s.snapMu.Lock()
	s.snapshot = snap
	s.snapMu.Unlock()
}

// Status returns the latest snapshot. Safe for concurrent use; this is
// the web portal's view into the loop.
func (s *Session) Status() web.Status {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}
