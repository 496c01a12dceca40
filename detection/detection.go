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

// Package detection discovers candidate reader ports: the host's SPI
// buses and USB serial bridges. Detection only lists candidates; it
// never opens a port.
package detection

import (
	"strings"

	"go.bug.st/serial/enumerator"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
)

// Kind says how a candidate port is attached.
type Kind int

const (
	// KindSPI is a host SPI bus.
	KindSPI Kind = iota
	// KindSerial is a USB serial bridge.
	KindSerial
)

// Device is one candidate reader port.
type Device struct {
	Kind Kind
	// Path opens the device ("SPI0.0", "/dev/ttyUSB0").
	Path string
	// Description is human-readable, for logs and the portal.
	Description string
	// Preferred marks ports whose USB identity matches a known
	// bridge adapter.
	Preferred bool
}

// knownBridges maps USB VID:PID pairs of serial adapters commonly
// used on reader bridges. VIDs and PIDs are lowercase hex as the
// enumerator reports them.
var knownBridges = map[string]string{
	"1a86:7523": "CH340",
	"10c4:ea60": "CP210x",
	"0403:6001": "FTDI FT232",
}

// bridgeName returns the adapter name for a VID:PID pair, if known.
func bridgeName(vid, pid string) (string, bool) {
	name, ok := knownBridges[strings.ToLower(vid)+":"+strings.ToLower(pid)]
	return name, ok
}

// Detect lists every candidate port, SPI buses first. Errors from one
// probe source do not hide the other's results.
func Detect() []Device {
	var out []Device

	if _, err := host.Init(); err == nil {
		for _, ref := range spireg.All() {
			out = append(out, Device{
				Kind:        KindSPI,
				Path:        ref.Name,
				Description: "SPI bus " + ref.Name,
				Preferred:   true,
			})
		}
	} else {
		tonieplayer.Debugf("spi detection unavailable: %v", err)
	}

	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		tonieplayer.Debugf("serial detection unavailable: %v", err)
		return out
	}
	for _, p := range ports {
		if !p.IsUSB {
			continue
		}
		d := Device{
			Kind:        KindSerial,
			Path:        p.Name,
			Description: p.Product,
		}
		if name, ok := bridgeName(p.VID, p.PID); ok {
			d.Preferred = true
			if d.Description == "" {
				d.Description = name
			}
		}
		out = append(out, d)
	}
	return out
}

// Best returns the first preferred device, or the first device at all.
func Best(devices []Device) (Device, bool) {
	for _, d := range devices {
		if d.Preferred {
			return d, true
		}
	}
	if len(devices) > 0 {
		return devices[0], true
	}
	return Device{}, false
}
