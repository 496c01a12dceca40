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

// Package guard watches free memory and restarts the device before
// exhaustion can wedge it. A degraded restart beats an out-of-memory
// hang on a box nobody can reach.
package guard

import (
	"runtime"
	"time"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

const (
	// DefaultCheckInterval is how often free memory is sampled.
	DefaultCheckInterval = 10 * time.Second

	// DefaultLogInterval is how often the current level is logged.
	DefaultLogInterval = 60 * time.Second

	// DefaultMinFree is the floor in bytes below which the guard
	// restarts.
	DefaultMinFree = 20000

	// DefaultBudget is the nominal memory budget used to derive free
	// space from the runtime's allocation figure.
	DefaultBudget = 64 << 20
)

// Restart reboots the device. Exposed for the portal's reboot and
// factory-reset actions, which share the watchdog's restart path.
func Restart() {
	restartDevice()
}

// Guard periodically samples free memory against a floor. It is
// driven from the tick loop and carries no goroutine of its own.
type Guard struct {
	checkInterval time.Duration
	logInterval   time.Duration
	minFree       uint64
	budget        uint64

	sampleFree func() uint64
	restart    func()

	lastCheck   time.Time
	lastLog     time.Time
	lastFree    uint64
	minFreeEver uint64
}

// Option configures a Guard.
type Option func(*Guard)

// WithFloor overrides the restart floor in bytes.
func WithFloor(minFree uint64) Option {
	return func(g *Guard) { g.minFree = minFree }
}

// WithIntervals overrides the sample and log cadences.
func WithIntervals(check, log time.Duration) Option {
	return func(g *Guard) {
		g.checkInterval = check
		g.logInterval = log
	}
}

// WithSampler overrides how free memory is measured (tests).
func WithSampler(sample func() uint64) Option {
	return func(g *Guard) { g.sampleFree = sample }
}

// WithRestart overrides the restart action (tests).
func WithRestart(restart func()) Option {
	return func(g *Guard) { g.restart = restart }
}

// New creates a guard with the default floor, budget, and cadences.
func New(opts ...Option) *Guard {
	g := &Guard{
		checkInterval: DefaultCheckInterval,
		logInterval:   DefaultLogInterval,
		minFree:       DefaultMinFree,
		budget:        DefaultBudget,
		restart:       restartDevice,
		minFreeEver:   ^uint64(0),
	}
	g.sampleFree = g.runtimeFree
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// runtimeFree derives free space as budget minus live heap,
// saturating at zero.
func (g *Guard) runtimeFree() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapAlloc >= g.budget {
		return 0
	}
	return g.budget - ms.HeapAlloc
}

// Check samples free memory if the interval has elapsed and restarts
// when the floor is breached. Returns true when a restart was
// triggered.
func (g *Guard) Check(now time.Time) bool {
	if !g.lastCheck.IsZero() && now.Sub(g.lastCheck) < g.checkInterval {
		return false
	}
	g.lastCheck = now

	free := g.sampleFree()
	g.lastFree = free
	if free < g.minFreeEver {
		g.minFreeEver = free
	}

	if g.lastLog.IsZero() || now.Sub(g.lastLog) >= g.logInterval {
		g.lastLog = now
		tonieplayer.Debugf("memory: free=%d lowWater=%d floor=%d", free, g.minFreeEver, g.minFree)
	}

	if free < g.minFree {
		tonieplayer.Debugf("memory critical: free=%d < floor=%d, restarting", free, g.minFree)
		g.restart()
		return true
	}
	return false
}

// LastFree returns the most recent free-memory sample.
func (g *Guard) LastFree() uint64 {
	return g.lastFree
}

// MinFreeEver returns the lowest free level observed, for the status
// page.
func (g *Guard) MinFreeEver() uint64 {
	if g.minFreeEver == ^uint64(0) {
		return 0
	}
	return g.minFreeEver
}
