// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"encoding/hex"
	"sort"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/varint"
)

// Packed - packed records are just a byte slice
type Packed []byte

// MarshalText - packed record as hex
func (record Packed) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(len(record)))
	hex.Encode(buffer, record)
	return buffer, nil
}

// UnmarshalText - packed record from hex
func (record *Packed) UnmarshalText(s []byte) error {
	buffer := make([]byte, hex.DecodedLen(len(s)))
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return fault.ErrNotTransactionPack
	}
	*record = buffer
	return nil
}

// append a string to a buffer
//
// the field is prefixed by Varint64(length)
func appendString(buffer Packed, s string) Packed {
	l := varint.Encode(uint64(len(s)))
	buffer = append(buffer, l...)
	return append(buffer, s...)
}

// append bytes to a buffer
//
// the field is prefixed by Varint64(length)
func appendBytes(buffer Packed, data []byte) Packed {
	l := varint.Encode(uint64(len(data)))
	buffer = append(buffer, l...)
	return append(buffer, data...)
}

// append a Varint64 to buffer
func appendUint64(buffer Packed, value uint64) Packed {
	return append(buffer, varint.Encode(value)...)
}

func appendBool(buffer Packed, b bool) Packed {
	if b {
		return append(buffer, 1)
	}
	return append(buffer, 0)
}

// optional digest: a presence byte then the digest bytes
func appendOptionalDigest(buffer Packed, d *merkle.Digest) Packed {
	if nil == d {
		return append(buffer, 0)
	}
	buffer = append(buffer, 1)
	return appendBytes(buffer, d[:])
}

func appendListing(buffer Packed, l *marketplace.Listing) Packed {
	buffer = appendBytes(buffer, l.ID[:])
	buffer = appendBytes(buffer, l.Seller[:])
	buffer = appendString(buffer, l.Title)
	buffer = appendString(buffer, l.Description)
	buffer = appendUint64(buffer, l.Price)
	buffer = appendString(buffer, l.IPFSHash)
	buffer = appendString(buffer, l.Category)
	buffer = appendBool(buffer, l.Active)
	buffer = appendOptionalDigest(buffer, l.ChannelID)
	return appendUint64(buffer, l.CreatedAt)
}

func appendOrder(buffer Packed, o *marketplace.Order) Packed {
	buffer = appendBytes(buffer, o.ID[:])
	buffer = appendBytes(buffer, o.ListingID[:])
	buffer = appendBytes(buffer, o.Buyer[:])
	buffer = appendBytes(buffer, o.Seller[:])
	buffer = appendUint64(buffer, o.Amount)
	buffer = appendUint64(buffer, uint64(o.Status))
	buffer = appendOptionalDigest(buffer, o.ChannelID)
	buffer = appendUint64(buffer, o.CreatedAt)
	return appendUint64(buffer, o.UpdatedAt)
}

// participants in the given order, preceded by a count
func packParticipants(participants []account.PublicKey) Packed {
	buffer := appendUint64(nil, uint64(len(participants)))
	for _, p := range participants {
		buffer = appendBytes(buffer, p[:])
	}
	return buffer
}

// Pack - canonical form of a state
//
// nonce, balances sorted by key, listings, orders
func (state *State) Pack() Packed {
	buffer := appendUint64(nil, state.Nonce)

	keys := make([]account.PublicKey, 0, len(state.Balances))
	for k := range state.Balances {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})

	buffer = appendUint64(buffer, uint64(len(keys)))
	for _, k := range keys {
		buffer = appendBytes(buffer, k[:])
		buffer = appendUint64(buffer, state.Balances[k])
	}

	buffer = appendUint64(buffer, uint64(len(state.Listings)))
	for i := range state.Listings {
		buffer = appendListing(buffer, &state.Listings[i])
	}

	buffer = appendUint64(buffer, uint64(len(state.Orders)))
	for i := range state.Orders {
		buffer = appendOrder(buffer, &state.Orders[i])
	}
	return buffer
}
