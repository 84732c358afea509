// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpccalls

import (
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	requestTimeout = 30 * time.Second
)

// Client - to hold the JSON-RPC endpoint of a node
type Client struct {
	url     string
	client  *http.Client
	nextID  uint64
	verbose bool
	handle  io.Writer // if verbose is set output items here
}

// NewClient - create a JSON-RPC client for a tari-l2-node
//
// connect is HOST:PORT or a full http(s) URL
func NewClient(connect string, verbose bool, handle io.Writer) *Client {
	url := connect
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	return &Client{
		url: url,
		client: &http.Client{
			Timeout: requestTimeout,
		},
		verbose: verbose,
		handle:  handle,
	}
}
