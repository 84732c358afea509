// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/tari-l2/tari-l2-node/fault"
)

// DigestLength - number of bytes in the digest
const DigestLength = blake2b.Size256

// Digest - type for a 32 byte BLAKE2b-256 digest
// represented as hex for print and JSON encoding
// to convert to bytes just use d[:]
type Digest [DigestLength]byte

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return blake2b.Sum256(record)
}

// NewRandomDigest - a digest filled from the system random source
//
// used for listing, order and escrow identifiers
func NewRandomDigest() Digest {
	var d Digest
	_, err := rand.Read(d[:])
	fault.PanicIfError("merkle.NewRandomDigest", err)
	return d
}

// IsZero - true if no bytes are set
func (digest Digest) IsZero() bool {
	return digest == Digest{}
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<BLAKE2b-256:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan - convert a hex representation to a digest for use by the format package scan routines
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
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
	})
	if nil != err {
		return err
	}
	return digest.UnmarshalText(token)
}

// MarshalText - convert digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text into a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if DigestLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidDigest
	}
	buffer := make([]byte, DigestLength)
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return fault.ErrInvalidDigest
	}
	copy(digest[:], buffer)
	return nil
}

// DigestFromBytes - convert and validate a binary byte slice to a digest
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if DigestLength != len(buffer) {
		return fault.ErrInvalidDigest
	}
	copy(digest[:], buffer)
	return nil
}

// DigestFromString - parse a hex string, as received from an RPC caller
func DigestFromString(s string) (Digest, error) {
	var d Digest
	err := d.UnmarshalText([]byte(s))
	return d, err
}
