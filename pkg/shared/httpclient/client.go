// Plunder Core
// Copyright (c) 2026 The Plunder Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Plunder Core.
//
// Plunder Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Plunder Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Plunder Core.  If not, see <http://www.gnu.org/licenses/>.

// Package httpclient provides the pooled HTTP client used for all outbound
// calls (Steam Web API, metadata lookups, image downloads).
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single request round trip.
const DefaultTimeout = 10 * time.Second

// DefaultTransport provides a configured transport with connection pooling
// and reasonable timeouts.
var DefaultTransport = &http.Transport{
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	ResponseHeaderTimeout: 30 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   10,
	IdleConnTimeout:       90 * time.Second,
}

// Client wraps http.Client with the shared transport and helpers.
type Client struct {
	*http.Client
}

// NewClient creates a client with the default timeout.
func NewClient() *Client {
	return NewClientWithTimeout(DefaultTimeout)
}

// NewClientWithTimeout creates a client with a custom timeout.
func NewClientWithTimeout(timeout time.Duration) *Client {
	return &Client{
		Client: &http.Client{
			Transport: DefaultTransport,
			Timeout:   timeout,
		},
	}
}

// Get performs a GET request and returns the response.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error performing GET request: %w", err)
	}

	return resp, nil
}

// DefaultClient provides a shared HTTP client instance.
var DefaultClient = NewClient()
