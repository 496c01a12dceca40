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
	"encoding/hex"
	"fmt"
	"strings"
)

// ISO15693 UID signature bytes for NXP ICODE family tags.
// Byte 7 is the ISO15693 allocation class, byte 6 the manufacturer code.
const (
	uidAllocationClass = 0xE0
	uidManufacturerNXP = 0x04
)

// TagID is a validated 8-byte ISO15693 tag identifier. The zero value
// means "no tag"; every non-zero TagID produced by this package carries
// the 0xE0/0x04 signature. Rendering is MSB first (byte 7 leading),
// matching the order the UID is printed on the tag itself.
type TagID [8]byte

// NewTagID validates a raw 8-byte UID as returned by an ISO15693
// inventory (LSB first). It returns false for the all-zero UID and for
// UIDs that do not carry the ICODE signature.
func NewTagID(raw [8]byte) (TagID, bool) {
	allZero := true
	for _, b := range raw {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return TagID{}, false
	}
	if raw[7] != uidAllocationClass || raw[6] != uidManufacturerNXP {
		return TagID{}, false
	}
	return TagID(raw), true
}

// ParseTagID parses the colon-separated hex rendering produced by
// String. Lowercase input is accepted.
func ParseTagID(s string) (TagID, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 8 {
		return TagID{}, fmt.Errorf("%w: expected 8 groups, got %d", ErrInvalidTagID, len(parts))
	}
	var raw [8]byte
	for i, part := range parts {
		if len(part) != 2 {
			return TagID{}, fmt.Errorf("%w: bad hex group %q", ErrInvalidTagID, part)
		}
		b, err := hex.DecodeString(part)
		if err != nil {
			return TagID{}, fmt.Errorf("%w: bad hex group %q", ErrInvalidTagID, part)
		}
		// String renders byte 7 first
		raw[7-i] = b[0]
	}
	id, ok := NewTagID(raw)
	if !ok {
		return TagID{}, fmt.Errorf("%w: signature mismatch in %q", ErrInvalidTagID, s)
	}
	return id, nil
}

// IsZero reports whether the TagID is the "no tag" value.
func (id TagID) IsZero() bool {
	return id == TagID{}
}

// String renders the UID as uppercase colon-separated hex, MSB first,
// e.g. "E0:04:01:08:12:34:56:78". The zero value renders as "".
func (id TagID) String() string {
	if id.IsZero() {
		return ""
	}
	var sb strings.Builder
	sb.Grow(23)
	for i := 7; i >= 0; i-- {
		fmt.Fprintf(&sb, "%02X", id[i])
		if i > 0 {
			sb.WriteByte(':')
		}
	}
	return sb.String()
}
