// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package l1client

import (
	"strings"

	"github.com/tari-l2/tari-l2-node/fault"
)

// Network - a base layer network
type Network uint8

// known networks
const (
	Esmeralda Network = iota
	Mainnet
	Nextnet
	Localnet
)

type networkInfo struct {
	name     string
	endpoint string
}

var networks = map[Network]networkInfo{
	Esmeralda: {"esmeralda", "http://127.0.0.1:18143"},
	Mainnet:   {"mainnet", "http://127.0.0.1:18142"},
	Nextnet:   {"nextnet", "http://127.0.0.1:18144"},
	Localnet:  {"localnet", "http://127.0.0.1:18142"},
}

// ParseNetwork - case insensitive name lookup
func ParseNetwork(s string) (Network, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for n, info := range networks {
		if info.name == name {
			return n, nil
		}
	}
	return Esmeralda, fault.ErrInvalidNetwork
}

// Name - lower case network name
func (n Network) Name() string {
	if info, ok := networks[n]; ok {
		return info.name
	}
	return "unknown"
}

// String - same as Name
func (n Network) String() string {
	return n.Name()
}

// DefaultEndpoint - base node address for the network
func (n Network) DefaultEndpoint() string {
	if info, ok := networks[n]; ok {
		return info.endpoint
	}
	return networks[Esmeralda].endpoint
}
