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

// Package led abstracts the status LED hardware.
package led

// Driver sets the color of a single RGB LED.
type Driver interface {
	SetColor(r, g, b uint8) error
	Close() error
}

// Null is a Driver that discards every frame. Used on hardware
// without an LED and in tests.
type Null struct{}

func (Null) SetColor(_, _, _ uint8) error { return nil }
func (Null) Close() error                 { return nil }
