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
	"errors"
	"net"
)

// ErrOffline is returned by Network.Reconnect when no usable interface
// came up.
var ErrOffline = errors.New("network offline")

// Network reports host connectivity to the sync client and session.
// Actual network bring-up belongs to the host OS; Reconnect only
// re-evaluates state (and gives platform implementations a hook to kick
// their supplicant).
type Network interface {
	Online() bool
	// LocalIP returns the primary IPv4 address, or "" when offline.
	LocalIP() string
	Reconnect(ctx context.Context) error
}

// HostNetwork implements Network by inspecting the host's interfaces.
type HostNetwork struct{}

// Online reports whether any non-loopback interface is up with a global
// unicast IPv4 address.
func (HostNetwork) Online() bool {
	return hostIPv4() != ""
}

// LocalIP returns the first global unicast IPv4 address.
func (HostNetwork) LocalIP() string {
	return hostIPv4()
}

// Reconnect re-checks interface state. The OS owns association and
// DHCP, so there is nothing to drive here beyond the re-evaluation.
func (n HostNetwork) Reconnect(_ context.Context) error {
	if n.Online() {
		return nil
	}
	return ErrOffline
}

func hostIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip != nil && ip.IsGlobalUnicast() {
				return ip.String()
			}
		}
	}
	return ""
}
