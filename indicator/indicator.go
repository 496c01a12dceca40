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

// Package indicator drives the status LED. Rendering is a pure
// function of state and elapsed time; the Controller layers brightness
// scaling, change suppression, and the encoding timeout on top and
// pushes frames to a led.Driver.
package indicator

import (
	"math"
	"time"

	"github.com/ToniePlayerProject/tonieplayer/led"
)

// State is the device-visible condition the LED communicates.
type State int

const (
	// StateConnecting blinks orange while the network is down.
	StateConnecting State = iota
	// StateIdle is solid blue: online, no tag.
	StateIdle
	// StateDetecting is solid purple while a candidate tag debounces.
	StateDetecting
	// StateEncoding pulses green while the server prepares audio.
	StateEncoding
	// StatePlaying is solid green.
	StatePlaying
	// StateNotFound is solid amber: tag read fine, server knows no
	// content for it.
	StateNotFound
	// StateError is solid red.
	StateError
	// StateSetup pulses magenta while the device is unconfigured.
	StateSetup
)

// String implements fmt.Stringer for logs.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateIdle:
		return "idle"
	case StateDetecting:
		return "detecting"
	case StateEncoding:
		return "encoding"
	case StatePlaying:
		return "playing"
	case StateNotFound:
		return "not-found"
	case StateError:
		return "error"
	case StateSetup:
		return "setup"
	default:
		return "unknown"
	}
}

// animated reports whether the state's frame depends on elapsed time.
func (s State) animated() bool {
	switch s {
	case StateConnecting, StateEncoding, StateSetup:
		return true
	default:
		return false
	}
}

// Color is one RGB frame at full brightness.
type Color struct {
	R, G, B uint8
}

const (
	// blinkPeriod is the on/dim cadence of the connecting blink.
	blinkPeriod = 500 * time.Millisecond

	// encodingPulsePeriod is one full sine cycle of the green pulse.
	encodingPulsePeriod = time.Second

	// setupPulsePeriod is one full cycle of the magenta pulse.
	setupPulsePeriod = 2 * time.Second

	// encodingCeiling caps how long the encoding animation may run
	// before the controller assumes playback started.
	encodingCeiling = 60 * time.Second
)

// pulse maps elapsed time onto a brightness factor in [0.3, 1.0]
// following a sine wave with the given period. The floor keeps the
// LED visibly lit at the bottom of the cycle.
func pulse(elapsed, period time.Duration) float64 {
	phase := float64(elapsed%period) / float64(period)
	return 0.3 + 0.7*(0.5+0.5*math.Sin(2*math.Pi*phase))
}

// Render computes the full-brightness frame for a state at the given
// time since the state was entered.
func Render(s State, elapsed time.Duration) Color {
	switch s {
	case StateConnecting:
		if (elapsed/blinkPeriod)%2 == 0 {
			return Color{R: 255, G: 165}
		}
		return Color{R: 128, G: 82}
	case StateIdle:
		return Color{B: 255}
	case StateDetecting:
		return Color{R: 128, B: 255}
	case StateEncoding:
		b := pulse(elapsed, encodingPulsePeriod)
		return Color{G: uint8(255 * b)}
	case StatePlaying:
		return Color{G: 255}
	case StateNotFound:
		return Color{R: 255, G: 180}
	case StateError:
		return Color{R: 255}
	case StateSetup:
		b := pulse(elapsed, setupPulsePeriod)
		v := uint8(255 * b)
		return Color{R: v, B: v}
	default:
		return Color{}
	}
}

// scale applies a 10-100 percent brightness to a frame.
func scale(c Color, brightness int) Color {
	return Color{
		R: uint8(int(c.R) * brightness / 100),
		G: uint8(int(c.G) * brightness / 100),
		B: uint8(int(c.B) * brightness / 100),
	}
}

// Controller owns the LED state and writes frames to the driver. It is
// single-writer like everything else on the tick loop, so it carries
// no locking.
type Controller struct {
	driver     led.Driver
	brightness int

	state      State
	stateSince time.Time
	lastFrame  Color
	wrote      bool
}

// NewController creates a controller starting in StateConnecting.
// Brightness is a percentage; values outside 10-100 are clamped.
func NewController(driver led.Driver, brightness int, now time.Time) *Controller {
	if brightness < 10 {
		brightness = 10
	}
	if brightness > 100 {
		brightness = 100
	}
	return &Controller{
		driver:     driver,
		brightness: brightness,
		state:      StateConnecting,
		stateSince: now,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// SetBrightness updates the brightness percentage for future frames.
func (c *Controller) SetBrightness(brightness int, now time.Time) {
	if brightness < 10 {
		brightness = 10
	}
	if brightness > 100 {
		brightness = 100
	}
	if brightness == c.brightness {
		return
	}
	c.brightness = brightness
	c.wrote = false // force a rewrite at the new level
	c.Tick(now)
}

// Set moves to a new state. Re-entering the current state is a no-op
// so animation phase is preserved.
func (c *Controller) Set(s State, now time.Time) {
	if s == c.state {
		return
	}
	c.state = s
	c.stateSince = now
	c.Tick(now)
}

// Tick renders and writes the current frame. Static states only write
// when the frame changed; animated states write every tick. Encoding
// that outlives its ceiling is treated as playing.
func (c *Controller) Tick(now time.Time) {
	if c.state == StateEncoding && now.Sub(c.stateSince) >= encodingCeiling {
		c.state = StatePlaying
		c.stateSince = now
	}

	frame := scale(Render(c.state, now.Sub(c.stateSince)), c.brightness)
	if c.wrote && frame == c.lastFrame && !c.state.animated() {
		return
	}
	if err := c.driver.SetColor(frame.R, frame.G, frame.B); err != nil {
		return
	}
	c.lastFrame = frame
	c.wrote = true
}

// Off blanks and releases the LED.
func (c *Controller) Off() {
	_ = c.driver.SetColor(0, 0, 0)
}
