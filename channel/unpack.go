// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/varint"
)

// upper bound on any single length prefixed field
const maximumFieldLength = 65536

// sequential reader over a packed record
//
// any malformed field panics with errTruncated, recovered by the
// exported unpack functions
type unpacker struct {
	record Packed
	n      int
}

type unpackError struct{}

var errTruncated = unpackError{}

func (u *unpacker) uint64() uint64 {
	value, count := varint.Decode(u.record[u.n:])
	if 0 == count {
		panic(errTruncated)
	}
	u.n += count
	return value
}

func (u *unpacker) bytes() []byte {
	length, count := varint.DecodeClipped(u.record[u.n:], 0, maximumFieldLength)
	if 0 == count || u.n+count+length > len(u.record) {
		panic(errTruncated)
	}
	u.n += count
	data := make([]byte, length)
	copy(data, u.record[u.n:u.n+length])
	u.n += length
	return data
}

func (u *unpacker) string() string {
	return string(u.bytes())
}

func (u *unpacker) bool() bool {
	if u.n >= len(u.record) || u.record[u.n] > 1 {
		panic(errTruncated)
	}
	b := 1 == u.record[u.n]
	u.n += 1
	return b
}

func (u *unpacker) digest() merkle.Digest {
	var d merkle.Digest
	if nil != merkle.DigestFromBytes(&d, u.bytes()) {
		panic(errTruncated)
	}
	return d
}

func (u *unpacker) optionalDigest() *merkle.Digest {
	if !u.bool() {
		return nil
	}
	d := u.digest()
	return &d
}

func (u *unpacker) publicKey() account.PublicKey {
	key, err := account.PublicKeyFromBytes(u.bytes())
	if nil != err {
		panic(errTruncated)
	}
	return key
}

func (u *unpacker) signature() account.Signature {
	sig, err := account.SignatureFromBytes(u.bytes())
	if nil != err {
		panic(errTruncated)
	}
	return sig
}

func (u *unpacker) listing() marketplace.Listing {
	return marketplace.Listing{
		ID:          u.digest(),
		Seller:      u.publicKey(),
		Title:       u.string(),
		Description: u.string(),
		Price:       u.uint64(),
		IPFSHash:    u.string(),
		Category:    u.string(),
		Active:      u.bool(),
		ChannelID:   u.optionalDigest(),
		CreatedAt:   u.uint64(),
	}
}

func (u *unpacker) order() marketplace.Order {
	o := marketplace.Order{
		ID:        u.digest(),
		ListingID: u.digest(),
		Buyer:     u.publicKey(),
		Seller:    u.publicKey(),
		Amount:    u.uint64(),
	}
	status := u.uint64()
	if status > uint64(marketplace.OrderCancelled) {
		panic(errTruncated)
	}
	o.Status = marketplace.OrderStatus(status)
	o.ChannelID = u.optionalDigest()
	o.CreatedAt = u.uint64()
	o.UpdatedAt = u.uint64()
	return o
}

// Unpack - turn a byte slice into an update
//
// returns the update and the number of bytes consumed
func (record Packed) Unpack() (update Update, n int, e error) {

	defer func() {
		if r := recover(); nil != r {
			if _, ok := r.(unpackError); !ok {
				panic(r)
			}
			update = nil
			n = 0
			e = fault.ErrNotTransactionPack
		}
	}()

	u := &unpacker{record: record}
	tag := TagType(u.uint64())

	switch tag {
	case TransferTag:
		update = &Transfer{
			From:   u.publicKey(),
			To:     u.publicKey(),
			Amount: u.uint64(),
		}

	case CreateListingTag:
		update = &CreateListing{
			Listing: u.listing(),
		}

	case UpdateListingTag:
		update = &UpdateListing{
			ListingID: u.digest(),
			Active:    u.bool(),
		}

	case CreateOrderTag:
		update = &CreateOrder{
			Order: u.order(),
		}

	case UpdateOrderStatusTag:
		o := &UpdateOrderStatus{
			OrderID: u.digest(),
		}
		status := u.uint64()
		if status > uint64(marketplace.OrderCancelled) {
			return nil, 0, fault.ErrInvalidOrderStatus
		}
		o.Status = marketplace.OrderStatus(status)
		update = o

	default:
		return nil, 0, fault.ErrUnknownUpdateType
	}
	return update, u.n, nil
}
