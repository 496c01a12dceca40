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

// Package serial drives an NFC reader behind a line-protocol serial
// bridge (a microcontroller that owns the frontend and exposes a
// simple ASCII command set). Used when the reader hangs off a USB
// adapter instead of the host's SPI bus.
//
// The protocol is one command per line:
//
//	IVT     -> "UID <16 hex digits>" or "NONE"
//	RF ON   -> "OK"
//	RF OFF  -> "OK"
//	RST     -> "OK"
package serial

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

const (
	cmdInventory = "IVT"
	cmdFieldOn   = "RF ON"
	cmdFieldOff  = "RF OFF"
	cmdReset     = "RST"

	respOK     = "OK"
	respNone   = "NONE"
	uidPrefix  = "UID "
	uidHexLen  = 16
	defaultBps = 115200

	// readTimeout bounds one response line. The bridge answers an
	// inventory within a few milliseconds.
	readTimeout = 100 * time.Millisecond
)

// Driver talks the bridge protocol over one serial port. Not safe for
// concurrent use.
type Driver struct {
	port serial.Port
	rd   *bufio.Reader
	name string
}

// New opens the named port and resets the bridge.
func New(ctx context.Context, portName string) (*Driver, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: defaultBps})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	d := &Driver{port: port, rd: bufio.NewReader(port), name: portName}
	if err := d.Reinitialize(ctx); err != nil {
		_ = port.Close()
		return nil, err
	}
	return d, nil
}

// ProbeOnce runs one inventory round through the bridge.
func (d *Driver) ProbeOnce(ctx context.Context) (tonieplayer.TagID, error) {
	line, err := d.exchange(ctx, cmdInventory)
	if err != nil {
		return tonieplayer.TagID{}, err
	}
	return parseProbeLine(line)
}

// parseProbeLine interprets one inventory response line.
func parseProbeLine(line string) (tonieplayer.TagID, error) {
	switch {
	case line == respNone:
		return tonieplayer.TagID{}, tonieplayer.ErrNoTag
	case strings.HasPrefix(line, uidPrefix):
		return parseUIDHex(strings.TrimPrefix(line, uidPrefix))
	default:
		return tonieplayer.TagID{}, fmt.Errorf("%w: %q", tonieplayer.ErrInvalidResponse, line)
	}
}

// parseUIDHex decodes the bridge's contiguous MSB-first hex UID.
func parseUIDHex(s string) (tonieplayer.TagID, error) {
	if len(s) != uidHexLen {
		return tonieplayer.TagID{}, fmt.Errorf("%w: uid %q", tonieplayer.ErrInvalidTagID, s)
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return tonieplayer.TagID{}, fmt.Errorf("%w: uid %q", tonieplayer.ErrInvalidTagID, s)
	}
	var raw [8]byte
	for i, b := range decoded {
		raw[7-i] = b
	}
	id, ok := tonieplayer.NewTagID(raw)
	if !ok {
		return tonieplayer.TagID{}, fmt.Errorf("%w: signature mismatch in %q", tonieplayer.ErrInvalidTagID, s)
	}
	return id, nil
}

// FieldOn enables the RF carrier.
func (d *Driver) FieldOn(ctx context.Context) error {
	return d.command(ctx, cmdFieldOn)
}

// FieldOff drops the RF carrier.
func (d *Driver) FieldOff(ctx context.Context) error {
	return d.command(ctx, cmdFieldOff)
}

// Reinitialize resets the bridge's frontend.
func (d *Driver) Reinitialize(ctx context.Context) error {
	if err := d.command(ctx, cmdReset); err != nil {
		return fmt.Errorf("%w: %w", tonieplayer.ErrReaderInit, err)
	}
	return nil
}

// Close drops the field and releases the port.
func (d *Driver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = d.FieldOff(ctx)
	return d.port.Close()
}

// command sends cmd and requires an OK response.
func (d *Driver) command(ctx context.Context, cmd string) error {
	line, err := d.exchange(ctx, cmd)
	if err != nil {
		return err
	}
	if line != respOK {
		return fmt.Errorf("%w: %q to %q", tonieplayer.ErrInvalidResponse, line, cmd)
	}
	return nil
}

// exchange writes one command line and reads one response line.
func (d *Driver) exchange(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := d.port.Write([]byte(cmd + "\n")); err != nil {
		return "", fmt.Errorf("%w: %w", tonieplayer.ErrTransportWrite, err)
	}
	line, err := d.rd.ReadString('\n')
	if err != nil {
		// The port read timeout surfaces as a short read.
		return "", fmt.Errorf("%w: no response to %q", tonieplayer.ErrTransportTimeout, cmd)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
