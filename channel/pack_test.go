// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel_test

import (
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/merkle"
)

func TestPackTransfer(t *testing.T) {
	from := account.PublicKey{0x01}
	to := account.PublicKey{0x02}
	u := &channel.Transfer{From: from, To: to, Amount: 300}

	packed := u.Pack()

	expected := []byte{0x01, 0x20}
	expected = append(expected, from[:]...)
	expected = append(expected, 0x20)
	expected = append(expected, to[:]...)
	expected = append(expected, 0xac, 0x02) // 300 as Varint64
	assert.Equal(t, channel.Packed(expected), packed, "wrong packed transfer")

	unpacked, n, err := packed.Unpack()
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, len(packed), n, "wrong consumed length")
	assert.Equal(t, u, unpacked, "wrong unpacked transfer")
}

func TestPackMarketplaceUpdates(t *testing.T) {
	id := merkle.NewDigest([]byte("channel"))
	listing := marketplace.NewListing(account.PublicKey{9}, "Chair", "oak", 42, "QmHash", "furniture", &id, 12345)
	order := marketplace.NewOrder(&listing, account.PublicKey{8}, nil, 12346)

	updates := []channel.Update{
		&channel.CreateListing{Listing: listing},
		&channel.UpdateListing{ListingID: listing.ID, Active: false},
		&channel.CreateOrder{Order: order},
		&channel.UpdateOrderStatus{OrderID: order.ID, Status: marketplace.OrderShipped},
	}
	for _, u := range updates {
		packed := u.Pack()
		unpacked, n, err := packed.Unpack()
		assert.Nil(t, err, "%s: unpack error", u.Tag())
		assert.Equal(t, len(packed), n, "%s: wrong length", u.Tag())
		assert.Equal(t, u, unpacked, "%s: wrong update", u.Tag())
	}
}

func TestUnpackErrors(t *testing.T) {
	_, _, err := channel.Packed{0x63}.Unpack()
	assert.Equal(t, fault.ErrUnknownUpdateType, err, "unknown tag accepted")

	_, _, err = channel.Packed{}.Unpack()
	assert.Equal(t, fault.ErrNotTransactionPack, err, "empty record accepted")

	packed := (&channel.Transfer{Amount: 1}).Pack()
	_, _, err = packed[:10].Unpack()
	assert.Equal(t, fault.ErrNotTransactionPack, err, "truncated record accepted")
}

func TestSignedUpdateMessage(t *testing.T) {
	key := newKey(t)
	u := &channel.UpdateListing{ListingID: merkle.Digest{1}, Active: true}
	signed := channel.NewSignedUpdate(u, 7)

	message := signed.Message()
	packed := u.Pack()
	assert.Equal(t, []byte(packed), message[:len(packed)], "message does not start with update")
	assert.Equal(t, uint64(7), binary.LittleEndian.Uint64(message[len(packed):]), "nonce not little endian")

	signature := signed.Sign(key)
	assert.Nil(t, key.PublicKey().Verify(message, signature), "signature does not verify")

	other := newKey(t)
	assert.Equal(t, fault.ErrInvalidSignature, signed.AddSignature(other.PublicKey(), signature), "foreign signature accepted")
}

func TestSignedUpdateEncoding(t *testing.T) {
	alice := newKey(t)
	bob := newKey(t)
	signed := channel.NewSignedUpdate(&channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 5}, 3)
	signed.Sign(alice)
	signed.Sign(bob)

	wire, err := channel.UnpackSignedUpdate(signed.Pack())
	assert.Nil(t, err, "unpack error")
	assert.Equal(t, signed, wire, "wire form differs")

	buffer, err := json.Marshal(signed)
	assert.Nil(t, err, "marshal error")

	var fields map[string]interface{}
	assert.Nil(t, json.Unmarshal(buffer, &fields), "not a JSON object")
	assert.Equal(t, "transfer", fields["type"], "wrong type name")

	var decoded channel.SignedUpdate
	assert.Nil(t, json.Unmarshal(buffer, &decoded), "unmarshal error")
	assert.Equal(t, *signed, decoded, "JSON form differs")
	assert.Nil(t, decoded.Verify([]account.PublicKey{alice.PublicKey(), bob.PublicKey()}), "decoded signatures invalid")
}

func TestStateRoot(t *testing.T) {
	a := account.PublicKey{1}
	b := account.PublicKey{2}

	s1 := &channel.State{Balances: map[account.PublicKey]uint64{a: 1, b: 2}}
	s2 := &channel.State{Balances: map[account.PublicKey]uint64{b: 2, a: 1}}
	assert.Equal(t, s1.Root(), s2.Root(), "root depends on map order")

	s3 := s1.Clone()
	s3.Balances[a] = 3
	assert.NotEqual(t, s1.Root(), s3.Root(), "balance change not in root")
	assert.Equal(t, uint64(1), s1.Balances[a], "clone shares balances")
}
