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

// tonieplayer is the reader daemon: it watches the NFC pad, reports
// tag changes to the playback server, and serves the configuration
// portal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
	"github.com/ToniePlayerProject/tonieplayer/client"
	"github.com/ToniePlayerProject/tonieplayer/detection"
	"github.com/ToniePlayerProject/tonieplayer/guard"
	"github.com/ToniePlayerProject/tonieplayer/indicator"
	"github.com/ToniePlayerProject/tonieplayer/led"
	"github.com/ToniePlayerProject/tonieplayer/polling"
	"github.com/ToniePlayerProject/tonieplayer/presence"
	"github.com/ToniePlayerProject/tonieplayer/settings"
	"github.com/ToniePlayerProject/tonieplayer/transport/serial"
	"github.com/ToniePlayerProject/tonieplayer/transport/spi"
	"github.com/ToniePlayerProject/tonieplayer/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tonieplayer:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		settingsPath = flag.String("settings", "/var/lib/tonieplayer/settings.json", "settings file path")
		readerKind   = flag.String("reader", "auto", "reader attachment: auto, spi, serial, or mock")
		readerPort   = flag.String("port", "", "reader port (SPI port name or serial device)")
		listenAddr   = flag.String("listen", ":8080", "portal listen address")
		ledPort      = flag.String("led", "", "status LED SPI port (empty disables the LED)")
		debug        = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	if *debug {
		tonieplayer.SetDebugEnabled(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := settings.Load(*settingsPath)
	if err != nil {
		return err
	}

	reader, err := openReader(ctx, *readerKind, *readerPort)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	ledDriver, err := openLED(*ledPort)
	if err != nil {
		return err
	}
	defer func() { _ = ledDriver.Close() }()

	clock := tonieplayer.SystemClock()
	network := tonieplayer.HostNetwork{}
	pcfg := presence.DefaultConfig()
	engine := presence.NewEngine(pcfg)

	session := polling.NewSession(polling.Params{
		Reader:    reader,
		Engine:    engine,
		Validator: presence.NewValidator(reader, engine, pcfg),
		Client:    client.New(store, network),
		Indicator: indicator.NewController(ledDriver, store.Get().LEDBrightness, clock.Now()),
		Guard:     guard.New(),
		Network:   network,
		Store:     store,
		Clock:     clock,
		Config:    polling.DefaultConfig(),
		Presence:  pcfg,
	})

	portal := web.NewServer(store, session.Status, guard.Restart)
	portalErr := make(chan error, 1)
	go func() { portalErr <- portal.Run(ctx, *listenAddr) }()

	tonieplayer.Debugf("starting, reader=%s portal=%s", *readerKind, *listenAddr)
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return <-portalErr
}

// openReader builds the reader for the requested attachment. In auto
// mode the best detected port wins, preferring host SPI.
func openReader(ctx context.Context, kind, port string) (tonieplayer.Reader, error) {
	switch kind {
	case "spi":
		cfg := spi.DefaultConfig()
		cfg.PortName = port
		return spi.New(ctx, cfg)
	case "serial":
		if port == "" {
			return nil, errors.New("-reader=serial requires -port")
		}
		return serial.New(ctx, port)
	case "mock":
		return tonieplayer.NewMockReader(), nil
	case "auto":
		best, ok := detection.Best(detection.Detect())
		if !ok {
			return nil, errors.New("no reader port detected; specify -reader and -port")
		}
		tonieplayer.Debugf("detected reader port: %s (%s)", best.Path, best.Description)
		if best.Kind == detection.KindSPI {
			cfg := spi.DefaultConfig()
			cfg.PortName = best.Path
			return spi.New(ctx, cfg)
		}
		return serial.New(ctx, best.Path)
	default:
		return nil, fmt.Errorf("unknown reader kind %q", kind)
	}
}

// openLED builds the status LED driver; no port means no LED.
func openLED(port string) (led.Driver, error) {
	if port == "" {
		return led.Null{}, nil
	}
	return led.NewWS2812(port)
}
