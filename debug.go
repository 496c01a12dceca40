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
	"fmt"
	"io"
	"os"
	"time"
)

// debugEnabled controls whether debug logging is printed to the console.
var debugEnabled = false

// sessionLogWriter, when set, receives every debug line with a timestamp
// regardless of the console debug setting.
var sessionLogWriter io.Writer

func init() {
	if os.Getenv("TONIEPLAYER_DEBUG") != "" || os.Getenv("DEBUG") != "" {
		debugEnabled = true
	}
}

// Debugf prints debug information.
// Always writes to the session log (if set) with a timestamp; prints to
// the console only when debug mode is enabled.
func Debugf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)

	if sessionLogWriter != nil {
		timestamp := time.Now().Format("15:04:05.000")
		_, _ = fmt.Fprintf(sessionLogWriter, "%s DEBUG: %s\n", timestamp, message)
	}

	if debugEnabled {
		_, _ = fmt.Printf("DEBUG: %s\n", message)
	}
}

// SetDebugEnabled allows programmatic control of console debug logging.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// SetSessionLogWriter directs all debug lines to w. Pass nil to disable.
func SetSessionLogWriter(w io.Writer) {
	sessionLogWriter = w
}
