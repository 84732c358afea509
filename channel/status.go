// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"strings"

	"github.com/tari-l2/tari-l2-node/fault"
)

// Status - lifecycle position of a channel
type Status uint8

// channel states
const (
	Opening Status = iota
	Active
	Closing
	Challenged
	Closed
)

var statusNames = []string{
	Opening:    "opening",
	Active:     "active",
	Closing:    "closing",
	Challenged: "challenged",
	Closed:     "closed",
}

// String - lower case name
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// MarshalText - status as its name
func (s Status) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fault.ErrInvalidChannelState
	}
	return []byte(statusNames[s]), nil
}

// UnmarshalText - status from its name
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fault.ErrInvalidChannelState
}
