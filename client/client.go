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

// Package client reports presence transitions to the playback server
// and interprets its responses. Reports are at-most-once and
// fire-and-forget: nothing here retries, and no call ever returns an
// error to the detection path - every failure mode collapses into the
// zero Result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	tonieplayer "github.com/ToniePlayerProject/tonieplayer"
	"github.com/ToniePlayerProject/tonieplayer/settings"
)

const (
	// requestTimeout bounds every sync call; there is no per-operation
	// timeout below the transport default.
	requestTimeout = 5 * time.Second

	// maxResponseBytes bounds how much of a response body is scanned.
	maxResponseBytes = 4096
)

// Client is the HTTP sync client. It owns the consecutive-failure
// counter; escalation on that counter is the session's job.
type Client struct {
	httpClient *http.Client
	store      *settings.Store
	network    tonieplayer.Network
	failures   int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a sync client reading its server URL and identity from
// the settings store.
func New(store *settings.Store, network tonieplayer.Network, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		store:      store,
		network:    network,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// tagRequest is the /tonie request body. UID is a pointer so removal
// reports serialize as {"uid":null}.
type tagRequest struct {
	UID          *string       `json:"uid"`
	Mode         string        `json:"mode,omitempty"`
	TargetDevice *targetDevice `json:"target_device,omitempty"`
}

type targetDevice struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ReportAppeared reports a confirmed tag and returns the server's
// verdict. Offline or in any failure mode it returns the zero Result.
func (c *Client) ReportAppeared(ctx context.Context, id tonieplayer.TagID) Result {
	uid := id.String()
	req := tagRequest{UID: &uid, Mode: "stream"}

	cfg := c.store.Get()
	if cfg.PlaybackDevice != "" {
		// A malformed target (no separator) still ships as empty
		// type/id; the server treats that as its default device.
		typ, devID := cfg.PlaybackTarget()
		req.TargetDevice = &targetDevice{Type: typ, ID: devID}
	}

	return c.postTag(ctx, cfg, req)
}

// ReportDisappeared reports tag removal. The response body is
// irrelevant for a removal; it is still scanned so failure accounting
// stays uniform.
func (c *Client) ReportDisappeared(ctx context.Context) {
	c.postTag(ctx, c.store.Get(), tagRequest{UID: nil})
}

func (c *Client) postTag(ctx context.Context, cfg settings.Settings, body tagRequest) Result {
	if !c.network.Online() || !cfg.Configured() {
		return Result{}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}
	}
	tonieplayer.Debugf("sync tx: %s", payload)

	resp, err := c.post(ctx, cfg.ServerURL+"/tonie", payload)
	if err != nil {
		// Could not obtain any HTTP status: this is the only case
		// that counts toward reconnection escalation.
		c.failures++
		tonieplayer.Debugf("sync failed (%d consecutive): %v", c.failures, err)
		return Result{}
	}
	defer func() { _ = resp.Body.Close() }()

	// Any status at all proves the server is reachable.
	c.failures = 0

	if resp.StatusCode != http.StatusOK {
		return Result{}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}
	}
	tonieplayer.Debugf("sync rx: %s", data)
	return scanResult(data)
}

// heartbeatRequest is the heartbeat body.
type heartbeatRequest struct {
	Name string `json:"name"`
}

// Heartbeat announces this reader to the server. Fire-and-forget:
// skipped silently when offline, and failures are not tracked.
func (c *Client) Heartbeat(ctx context.Context) {
	cfg := c.store.Get()
	if !c.network.Online() || !cfg.Configured() {
		return
	}

	payload, err := json.Marshal(heartbeatRequest{Name: cfg.DeviceName})
	if err != nil {
		return
	}

	url := fmt.Sprintf("%s/readers/%s/heartbeat", cfg.ServerURL, c.network.LocalIP())
	resp, err := c.post(ctx, url, payload)
	if err != nil {
		tonieplayer.Debugf("heartbeat failed: %v", err)
		return
	}
	_ = resp.Body.Close()
	tonieplayer.Debugf("heartbeat ok")
}

func (c *Client) post(ctx context.Context, url string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", url, err)
	}
	return resp, nil
}

// Failures returns the consecutive-failure count.
func (c *Client) Failures() int {
	return c.failures
}

// ResetFailures clears the counter after a reconnection attempt.
func (c *Client) ResetFailures() {
	c.failures = 0
}
