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

package tonieplayer

import (
	"context"

	"github.com/ToniePlayerProject/tonieplayer/internal/syncutil"
)

// MockReader provides a scripted Reader implementation for tests. Probe
// results are consumed from a queue; when the queue is empty the mock
// keeps returning its sticky result (default: no tag). All counters are
// safe for concurrent access.
type MockReader struct {
	queue    []mockProbe
	sticky   mockProbe
	mu       syncutil.Mutex
	closed   bool
	fieldOn  bool
	Probes    int
	Reinits   int
	FieldOns  int
	FieldOffs int
}

type mockProbe struct {
	id  TagID
	err error
}

// NewMockReader creates a mock reader whose field is on and whose
// probes report an empty field until scripted otherwise.
func NewMockReader() *MockReader {
	return &MockReader{
		sticky:  mockProbe{err: ErrNoTag},
		fieldOn: true,
	}
}

// QueueTag schedules n successive probes returning id.
func (m *MockReader) QueueTag(id TagID, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.queue = append(m.queue, mockProbe{id: id})
	}
}

// QueueEmpty schedules n successive empty probes.
func (m *MockReader) QueueEmpty(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		m.queue = append(m.queue, mockProbe{err: ErrNoTag})
	}
}

// QueueError schedules one probe returning err.
func (m *MockReader) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockProbe{err: err})
}

// SetSticky sets the result returned once the queue is drained.
// A zero id means an empty field.
func (m *MockReader) SetSticky(id TagID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id.IsZero() {
		m.sticky = mockProbe{err: ErrNoTag}
	} else {
		m.sticky = mockProbe{id: id}
	}
}

// ProbeOnce implements Reader.
func (m *MockReader) ProbeOnce(ctx context.Context) (TagID, error) {
	if err := ctx.Err(); err != nil {
		return TagID{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return TagID{}, ErrTransportClosed
	}
	m.Probes++
	probe := m.sticky
	if len(m.queue) > 0 {
		probe = m.queue[0]
		m.queue = m.queue[1:]
	}
	return probe.id, probe.err
}

// FieldOn implements Reader.
func (m *MockReader) FieldOn(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FieldOns++
	m.fieldOn = true
	return nil
}

// FieldOff implements Reader.
func (m *MockReader) FieldOff(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FieldOffs++
	m.fieldOn = false
	return nil
}

// Reinitialize implements Reader.
func (m *MockReader) Reinitialize(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reinits++
	m.fieldOn = true
	return nil
}

// Close implements Reader.
func (m *MockReader) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// FieldIsOn reports the simulated RF field state.
func (m *MockReader) FieldIsOn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fieldOn
}
