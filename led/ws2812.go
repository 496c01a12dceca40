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

package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// WS2812 drives a single WS2812B pixel by bit-banging its one-wire
// protocol over SPI MOSI. At 2.4MHz each SPI bit is ~417ns, so three
// SPI bits form one WS2812 bit: 100 for a zero, 110 for a one.
type WS2812 struct {
	port spi.PortCloser
	conn spi.Conn
}

const ws2812Speed = 2400 * physic.KiloHertz

// resetBytes of line-low after a frame latch the shift register.
// 15 bytes at 2.4MHz is 50us.
const resetBytes = 15

// NewWS2812 opens the named SPI port (empty string for the first
// available) and blanks the pixel.
func NewWS2812(portName string) (*WS2812, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	port, err := spireg.Open(portName)
	if err != nil {
		return nil, fmt.Errorf("open led spi port: %w", err)
	}
	conn, err := port.Connect(ws2812Speed, spi.Mode0, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("connect led spi port: %w", err)
	}
	w := &WS2812{port: port, conn: conn}
	if err := w.SetColor(0, 0, 0); err != nil {
		_ = port.Close()
		return nil, err
	}
	return w, nil
}

// encodeFrame expands one RGB triplet into the SPI byte stream for a
// WS2812B: 24 data bits in GRB order, three SPI bits each, followed by
// the reset latch.
func encodeFrame(r, g, b uint8) []byte {
	out := make([]byte, 0, 9+resetBytes)

	var bits uint32 // accumulated SPI bits, flushed per byte
	var nbits uint
	push := func(v uint32, n uint) {
		bits = bits<<n | v
		nbits += n
		for nbits >= 8 {
			nbits -= 8
			out = append(out, byte(bits>>nbits))
		}
	}

	for _, color := range [3]uint8{g, r, b} {
		for i := 7; i >= 0; i-- {
			if color&(1<<uint(i)) != 0 {
				push(0b110, 3)
			} else {
				push(0b100, 3)
			}
		}
	}
	// 72 bits is an exact 9 bytes; nothing left to flush.

	return append(out, make([]byte, resetBytes)...)
}

// SetColor writes one frame.
func (w *WS2812) SetColor(r, g, b uint8) error {
	if err := w.conn.Tx(encodeFrame(r, g, b), nil); err != nil {
		return fmt.Errorf("write led frame: %w", err)
	}
	return nil
}

// Close blanks the pixel and releases the port.
func (w *WS2812) Close() error {
	_ = w.SetColor(0, 0, 0)
	return w.port.Close()
}
