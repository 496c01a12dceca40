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

package client

import "bytes"

// Result is the server's answer to a presence report. The zero value
// (nothing found, nothing encoding) doubles as the answer for every
// failure mode.
type Result struct {
	Found    bool
	Encoding bool
}

// scanResult extracts the found/encoding flags from a /tonie response
// body. This is deliberately not a JSON parser: the contract is that a
// missing flag means false, a space after the colon is tolerated, and
// a malformed body yields the zero Result rather than an error. Those
// semantics are load-bearing for callers that must never fail on a
// report.
func scanResult(body []byte) Result {
	return Result{
		Found:    scanBoolTrue(body, "found"),
		Encoding: scanBoolTrue(body, "encoding"),
	}
}

func scanBoolTrue(body []byte, field string) bool {
	return bytes.Contains(body, []byte(`"`+field+`":true`)) ||
		bytes.Contains(body, []byte(`"`+field+`": true`))
}
