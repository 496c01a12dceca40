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

import "errors"

// Error categories. Reader-level failures are deliberately coarse: the
// presence engine treats every probe failure as "no tag" (spec'd by the
// detection design), so the distinctions below exist for logging and
// transport diagnostics only.
var (
	// ErrNoTag indicates an inventory probe completed without finding a
	// tag. Not an error condition for callers in the detection path;
	// check with errors.Is.
	ErrNoTag = errors.New("no tag in field")

	// Transport errors
	ErrTransportTimeout = errors.New("transport timeout")
	ErrTransportWrite   = errors.New("transport write failed")
	ErrTransportRead    = errors.New("transport read failed")
	ErrTransportClosed  = errors.New("transport is closed")
	ErrReaderNotReady   = errors.New("reader not ready")

	// Reader/device errors
	ErrReaderInit      = errors.New("reader initialization failed")
	ErrInvalidResponse = errors.New("invalid response from reader")

	// Data errors
	ErrInvalidTagID = errors.New("invalid tag id")
)
