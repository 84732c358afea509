// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"bytes"
	"encoding/hex"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
)

const (
	checksumLength = 4
	addressLength  = 1 + account.PublicKeyLength
)

// network byte prefixed to every address
var networkBytes = map[l1client.Network]byte{
	l1client.Mainnet:   0x00,
	l1client.Esmeralda: 0x26,
	l1client.Nextnet:   0x27,
	l1client.Localnet:  0x28,
}

// NetworkByte - address prefix for a network
func NetworkByte(network l1client.Network) byte {
	return networkBytes[network]
}

func addressBytes(network l1client.Network, key account.PublicKey) []byte {
	buffer := make([]byte, 0, addressLength+checksumLength)
	buffer = append(buffer, NetworkByte(network))
	return append(buffer, key[:]...)
}

// EncodeAddressHex - hex of network byte and public key
func EncodeAddressHex(network l1client.Network, key account.PublicKey) string {
	return hex.EncodeToString(addressBytes(network, key))
}

// EncodeAddress - base58 with a four byte sha3 checksum
func EncodeAddress(network l1client.Network, key account.PublicKey) string {
	buffer := addressBytes(network, key)
	checksum := sha3.Sum256(buffer)
	return base58.Encode(append(buffer, checksum[:checksumLength]...))
}

// ParseAddress - accepts either the hex or base58 form and returns
// the network byte and public key
func ParseAddress(s string) (byte, account.PublicKey, error) {
	var key account.PublicKey

	buffer, err := hex.DecodeString(s)
	if nil != err || addressLength != len(buffer) {
		buffer, err = base58.Decode(s)
		if nil != err || addressLength+checksumLength != len(buffer) {
			return 0, key, fault.ErrInvalidAddress
		}
		checksum := sha3.Sum256(buffer[:addressLength])
		if !bytes.Equal(checksum[:checksumLength], buffer[addressLength:]) {
			return 0, key, fault.ErrInvalidAddress
		}
		buffer = buffer[:addressLength]
	}

	copy(key[:], buffer[1:])
	return buffer[0], key, nil
}
