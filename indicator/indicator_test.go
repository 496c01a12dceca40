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

package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// captureDriver records every frame written to it.
type captureDriver struct {
	frames []Color
}

func (d *captureDriver) SetColor(r, g, b uint8) error {
	d.frames = append(d.frames, Color{R: r, G: g, B: b})
	return nil
}

func (d *captureDriver) Close() error { return nil }

func (d *captureDriver) last(t *testing.T) Color {
	t.Helper()
	require.NotEmpty(t, d.frames)
	return d.frames[len(d.frames)-1]
}

func TestRenderStaticStates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  Color
	}{
		{StateIdle, Color{B: 255}},
		{StateDetecting, Color{R: 128, B: 255}},
		{StatePlaying, Color{G: 255}},
		{StateNotFound, Color{R: 255, G: 180}},
		{StateError, Color{R: 255}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.state.String(), func(t *testing.T) {
			t.Parallel()
			// Static states ignore elapsed time.
			assert.Equal(t, tt.want, Render(tt.state, 0))
			assert.Equal(t, tt.want, Render(tt.state, 17*time.Second))
		})
	}
}

func TestRenderConnectingBlink(t *testing.T) {
	t.Parallel()

	bright := Color{R: 255, G: 165}
	dim := Color{R: 128, G: 82}

	assert.Equal(t, bright, Render(StateConnecting, 0))
	assert.Equal(t, bright, Render(StateConnecting, 499*time.Millisecond))
	assert.Equal(t, dim, Render(StateConnecting, 500*time.Millisecond))
	assert.Equal(t, dim, Render(StateConnecting, 999*time.Millisecond))
	assert.Equal(t, bright, Render(StateConnecting, time.Second))
}

func TestRenderEncodingPulse(t *testing.T) {
	t.Parallel()

	// Phase 0 of the sine gives factor 0.3+0.7*0.5 = 0.65.
	mid := Render(StateEncoding, 0)
	assert.InDelta(t, 255*0.65, int(mid.G), 1)
	assert.Zero(t, mid.R)
	assert.Zero(t, mid.B)

	// Quarter period is the sine peak: full brightness.
	peak := Render(StateEncoding, 250*time.Millisecond)
	assert.InDelta(t, 255, int(peak.G), 1)
	assert.Zero(t, peak.R)
	assert.Zero(t, peak.B)

	// Three-quarter period is the trough: the 0.3 floor keeps it lit.
	trough := Render(StateEncoding, 750*time.Millisecond)
	assert.InDelta(t, 255*0.3, int(trough.G), 1)
	assert.NotZero(t, trough.G)
}

func TestRenderSetupPulseIsMagenta(t *testing.T) {
	t.Parallel()

	for _, elapsed := range []time.Duration{0, 500 * time.Millisecond, time.Second, 1500 * time.Millisecond} {
		c := Render(StateSetup, elapsed)
		assert.Equal(t, c.R, c.B, "magenta keeps red and blue equal")
		assert.Zero(t, c.G)
		assert.NotZero(t, c.R, "pulse floor keeps the LED lit")
	}
}

func TestControllerBrightnessScaling(t *testing.T) {
	t.Parallel()

	d := &captureDriver{}
	c := NewController(d, 50, testStart)
	c.Set(StateIdle, testStart)

	assert.Equal(t, Color{B: 127}, d.last(t))

	c.SetBrightness(100, testStart)
	assert.Equal(t, Color{B: 255}, d.last(t))
}

func TestControllerSuppressesRepeatedStaticFrames(t *testing.T) {
	t.Parallel()

	d := &captureDriver{}
	c := NewController(d, 100, testStart)
	c.Set(StateIdle, testStart)

	n := len(d.frames)
	for i := 1; i <= 10; i++ {
		c.Tick(testStart.Add(time.Duration(i) * 50 * time.Millisecond))
	}
	assert.Len(t, d.frames, n, "a static state writes once")
}

func TestControllerAnimatesEncoding(t *testing.T) {
	t.Parallel()

	d := &captureDriver{}
	c := NewController(d, 100, testStart)
	c.Set(StateEncoding, testStart)

	n := len(d.frames)
	for i := 1; i <= 5; i++ {
		c.Tick(testStart.Add(time.Duration(i) * 50 * time.Millisecond))
	}
	assert.Greater(t, len(d.frames), n, "animated states keep writing")
}

func TestControllerEncodingCeiling(t *testing.T) {
	t.Parallel()

	d := &captureDriver{}
	c := NewController(d, 100, testStart)
	c.Set(StateEncoding, testStart)

	c.Tick(testStart.Add(59 * time.Second))
	assert.Equal(t, StateEncoding, c.State())

	c.Tick(testStart.Add(60 * time.Second))
	assert.Equal(t, StatePlaying, c.State())
	assert.Equal(t, Color{G: 255}, d.last(t))
}

func TestControllerReenteringStateKeepsPhase(t *testing.T) {
	t.Parallel()

	d := &captureDriver{}
	c := NewController(d, 100, testStart)
	c.Set(StateEncoding, testStart)

	// Setting the same state later must not restart the animation
	// clock, so the ceiling still fires from the original entry.
	c.Set(StateEncoding, testStart.Add(30*time.Second))
	c.Tick(testStart.Add(60 * time.Second))
	assert.Equal(t, StatePlaying, c.State())
}
