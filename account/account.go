// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ed25519"

	"github.com/tari-l2/tari-l2-node/fault"
)

// PublicKeyLength - number of bytes in an ed25519 public key
const PublicKeyLength = ed25519.PublicKeySize

// PublicKey - identifies a channel participant, seller, buyer or wallet
//
// fixed size so it can be used as a map key
type PublicKey [PublicKeyLength]byte

// PublicKeyFromBytes - validate and copy a binary public key
func PublicKeyFromBytes(buffer []byte) (PublicKey, error) {
	var key PublicKey
	if PublicKeyLength != len(buffer) {
		return key, fault.ErrInvalidPublicKey
	}
	copy(key[:], buffer)
	return key, nil
}

// PublicKeyFromHex - parse a hex encoded public key
func PublicKeyFromHex(s string) (PublicKey, error) {
	var key PublicKey
	err := key.UnmarshalText([]byte(s))
	return key, err
}

// Bytes - binary form as a slice
func (key PublicKey) Bytes() []byte {
	return key[:]
}

// Less - ordering for deterministic packing
func (key PublicKey) Less(other PublicKey) bool {
	return bytes.Compare(key[:], other[:]) < 0
}

// IsZero - true if the key was never set
func (key PublicKey) IsZero() bool {
	return key == PublicKey{}
}

// Verify - check an ed25519 signature over a message
func (key PublicKey) Verify(message []byte, signature Signature) error {
	if !ed25519.Verify(key[:], message, signature[:]) {
		return fault.ErrInvalidSignature
	}
	return nil
}

// String - hex form for use by the fmt package (for %s)
func (key PublicKey) String() string {
	return hex.EncodeToString(key[:])
}

// GoString - for use by the fmt package (for %#v)
func (key PublicKey) GoString() string {
	return "<ed25519:" + hex.EncodeToString(key[:]) + ">"
}

// Scan - convert a hex representation for use by the format package scan routines
func (key *PublicKey) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, isHexRune)
	if nil != err {
		return err
	}
	return key.UnmarshalText(token)
}

// MarshalText - convert public key to hex text
func (key PublicKey) MarshalText() ([]byte, error) {
	buffer := make([]byte, hex.EncodedLen(PublicKeyLength))
	hex.Encode(buffer, key[:])
	return buffer, nil
}

// UnmarshalText - convert hex text to a public key
func (key *PublicKey) UnmarshalText(s []byte) error {
	if PublicKeyLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidPublicKey
	}
	buffer := make([]byte, PublicKeyLength)
	if _, err := hex.Decode(buffer, s); nil != err {
		return fault.ErrInvalidPublicKey
	}
	copy(key[:], buffer)
	return nil
}

func isHexRune(c rune) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if c >= 'A' && c <= 'F' {
		return true
	}
	if c >= 'a' && c <= 'f' {
		return true
	}
	return false
}
