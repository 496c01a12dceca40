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

// Package spi drives a PN5180 NFC frontend over SPI. The PN5180 host
// interface pairs every SPI transfer with a BUSY handshake line; a
// separate RST line gives the driver a hard reset for stall recovery.
package spi

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

// PN5180 host interface commands.
const (
	cmdLoadRFConfig = 0x11
	cmdRFOn         = 0x16
	cmdRFOff        = 0x17
	cmdSendData     = 0x09
	cmdReadData     = 0x0A
)

// ISO15693 RF configuration indexes (ASK 100%, 26kbps).
const (
	rfConfigTx = 0x0D
	rfConfigRx = 0x8D
)

const (
	defaultFreq = 1 * physic.MegaHertz
	mode        = spi.Mode0

	// busyTimeout bounds each BUSY handshake phase.
	busyTimeout = 50 * time.Millisecond

	// resetHold is how long RST is held low on a hard reset.
	resetHold = 10 * time.Millisecond

	// inventoryResponseLen is flags + DSFID + 8 UID bytes.
	inventoryResponseLen = 10
)

// inventoryRequest is the ISO15693 single-slot inventory: flags
// (inventory, high data rate, one slot), the Inventory command, and an
// empty mask.
var inventoryRequest = []byte{0x26, 0x01, 0x00}

// Config locates the PN5180 on the host.
type Config struct {
	// PortName is the SPI port (empty for the first registered one).
	PortName string
	// GPIOChip is the gpiochip device name, "gpiochip0" by default.
	GPIOChip string
	// BusyPin and ResetPin are line offsets on GPIOChip.
	BusyPin  int
	ResetPin int
}

// DefaultConfig returns the Raspberry Pi wiring used by the stock
// carrier board.
func DefaultConfig() Config {
	return Config{
		GPIOChip: "gpiochip0",
		BusyPin:  25,
		ResetPin: 7,
	}
}

// Driver is a PN5180 reader. Not safe for concurrent use; the polling
// session is its only caller.
type Driver struct {
	port spi.PortCloser
	conn spi.Conn
	busy *gpiocdev.Line
	rst  *gpiocdev.Line
}

// New opens the SPI port and GPIO lines and brings the frontend up
// with the ISO15693 configuration, field on.
func New(ctx context.Context, cfg Config) (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	port, err := spireg.Open(cfg.PortName)
	if err != nil {
		return nil, fmt.Errorf("open SPI port %q: %w", cfg.PortName, err)
	}
	conn, err := port.Connect(defaultFreq, mode, 8)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("connect SPI: %w", err)
	}

	busy, err := gpiocdev.RequestLine(cfg.GPIOChip, cfg.BusyPin, gpiocdev.AsInput)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("request BUSY line %s:%d: %w", cfg.GPIOChip, cfg.BusyPin, err)
	}
	rst, err := gpiocdev.RequestLine(cfg.GPIOChip, cfg.ResetPin, gpiocdev.AsOutput(1))
	if err != nil {
		_ = busy.Close()
		_ = port.Close()
		return nil, fmt.Errorf("request RST line %s:%d: %w", cfg.GPIOChip, cfg.ResetPin, err)
	}

	d := &Driver{port: port, conn: conn, busy: busy, rst: rst}
	if err := d.Reinitialize(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// ProbeOnce runs one ISO15693 single-slot inventory round.
func (d *Driver) ProbeOnce(ctx context.Context) (tonieplayer.TagID, error) {
	// SEND_DATA: all 8 bits of the last byte are valid.
	cmd := append([]byte{cmdSendData, 0x00}, inventoryRequest...)
	if err := d.send(ctx, cmd); err != nil {
		return tonieplayer.TagID{}, err
	}

	resp, err := d.read(ctx, inventoryResponseLen)
	if err != nil {
		return tonieplayer.TagID{}, err
	}
	return parseInventoryResponse(resp)
}

// parseInventoryResponse extracts the UID from a 10-byte ISO15693
// inventory response: flags, DSFID, then the UID LSB first.
func parseInventoryResponse(resp []byte) (tonieplayer.TagID, error) {
	if len(resp) < inventoryResponseLen {
		return tonieplayer.TagID{}, fmt.Errorf("%w: inventory response %d bytes", tonieplayer.ErrInvalidResponse, len(resp))
	}
	if resp[0]&0x01 != 0 {
		// Error flag set: no tag answered the slot.
		return tonieplayer.TagID{}, tonieplayer.ErrNoTag
	}

	var raw [8]byte
	copy(raw[:], resp[2:10])
	id, ok := tonieplayer.NewTagID(raw)
	if !ok {
		return tonieplayer.TagID{}, tonieplayer.ErrNoTag
	}
	return id, nil
}

// FieldOn enables the RF carrier.
func (d *Driver) FieldOn(ctx context.Context) error {
	return d.send(ctx, []byte{cmdRFOn, 0x00})
}

// FieldOff drops the RF carrier.
func (d *Driver) FieldOff(ctx context.Context) error {
	return d.send(ctx, []byte{cmdRFOff, 0x00})
}

// Reinitialize hard-resets the frontend and restores the ISO15693
// configuration with the field on.
func (d *Driver) Reinitialize(ctx context.Context) error {
	if err := d.rst.SetValue(0); err != nil {
		return fmt.Errorf("%w: assert RST: %w", tonieplayer.ErrReaderInit, err)
	}
	sleepCtx(ctx, resetHold)
	if err := d.rst.SetValue(1); err != nil {
		return fmt.Errorf("%w: release RST: %w", tonieplayer.ErrReaderInit, err)
	}
	sleepCtx(ctx, resetHold)

	if err := d.send(ctx, []byte{cmdLoadRFConfig, rfConfigTx, rfConfigRx}); err != nil {
		return fmt.Errorf("%w: load RF config: %w", tonieplayer.ErrReaderInit, err)
	}
	if err := d.FieldOn(ctx); err != nil {
		return fmt.Errorf("%w: field on: %w", tonieplayer.ErrReaderInit, err)
	}
	return nil
}

// Close drops the field and releases the port and GPIO lines.
func (d *Driver) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = d.FieldOff(ctx)
	_ = d.busy.Close()
	_ = d.rst.Close()
	return d.port.Close()
}

// send waits for the frontend to be ready and clocks out one command.
func (d *Driver) send(ctx context.Context, cmd []byte) error {
	if err := d.waitBusy(ctx, 0); err != nil {
		return err
	}
	if err := d.conn.Tx(cmd, nil); err != nil {
		return fmt.Errorf("%w: %w", tonieplayer.ErrTransportWrite, err)
	}
	return nil
}

// read waits for the previous command's result and clocks in n bytes
// via READ_DATA.
func (d *Driver) read(ctx context.Context, n int) ([]byte, error) {
	if err := d.send(ctx, []byte{cmdReadData, 0x00}); err != nil {
		return nil, err
	}
	if err := d.waitBusy(ctx, 1); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := d.conn.Tx(make([]byte, n), buf); err != nil {
		return nil, fmt.Errorf("%w: %w", tonieplayer.ErrTransportRead, err)
	}
	return buf, nil
}

// waitBusy polls the BUSY line until it reaches level or the timeout
// expires.
func (d *Driver) waitBusy(ctx context.Context, level int) error {
	deadline := time.Now().Add(busyTimeout)
	for {
		v, err := d.busy.Value()
		if err != nil {
			return fmt.Errorf("%w: read BUSY: %w", tonieplayer.ErrTransportRead, err)
		}
		if v == level {
			return nil
		}
		if time.Now().After(deadline) {
			return tonieplayer.ErrTransportTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(100 * time.Microsecond):
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
