// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/merkle"
)

// State - the jointly signed contents of a channel
type State struct {
	Nonce    uint64                       `json:"nonce"`
	Balances map[account.PublicKey]uint64 `json:"balances"`
	Listings []marketplace.Listing        `json:"listings"`
	Orders   []marketplace.Order          `json:"orders"`
}

// Root - BLAKE2b-256 of the packed state
func (state *State) Root() merkle.Digest {
	return merkle.NewDigest(state.Pack())
}

// Clone - deep copy
func (state *State) Clone() *State {
	s := &State{
		Nonce:    state.Nonce,
		Balances: make(map[account.PublicKey]uint64, len(state.Balances)),
		Listings: make([]marketplace.Listing, len(state.Listings)),
		Orders:   make([]marketplace.Order, len(state.Orders)),
	}
	for k, v := range state.Balances {
		s.Balances[k] = v
	}
	copy(s.Listings, state.Listings)
	copy(s.Orders, state.Orders)
	return s
}

// Apply - the state after an update
//
// the receiver is never modified; a successful update increments
// the nonce by one
func (state *State) Apply(update Update) (*State, error) {
	next := state.Clone()
	if err := update.apply(next); nil != err {
		return nil, err
	}
	next.Nonce += 1
	return next, nil
}

// Total - sum of all balances
func (state *State) Total() (uint64, error) {
	total := uint64(0)
	for _, v := range state.Balances {
		var err error
		total, err = addAmount(total, v)
		if nil != err {
			return 0, err
		}
	}
	return total, nil
}

func (state *State) listing(id merkle.Digest) *marketplace.Listing {
	for i := range state.Listings {
		if state.Listings[i].ID == id {
			return &state.Listings[i]
		}
	}
	return nil
}

func (state *State) order(id merkle.Digest) *marketplace.Order {
	for i := range state.Orders {
		if state.Orders[i].ID == id {
			return &state.Orders[i]
		}
	}
	return nil
}
