// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/ed25519"

	"github.com/tari-l2/tari-l2-node/fault"
)

// SignatureLength - number of bytes in an ed25519 signature
const SignatureLength = ed25519.SignatureSize

// Signature - the type for a signature
type Signature [SignatureLength]byte

// SignatureFromBytes - validate and copy a binary signature
func SignatureFromBytes(buffer []byte) (Signature, error) {
	var signature Signature
	if SignatureLength != len(buffer) {
		return signature, fault.ErrInvalidSignature
	}
	copy(signature[:], buffer)
	return signature, nil
}

// SignatureFromHex - parse a hex encoded signature
func SignatureFromHex(s string) (Signature, error) {
	var signature Signature
	err := signature.UnmarshalText([]byte(s))
	return signature, err
}

// String - convert a binary signature to hex string for use by the fmt package (for %s)
func (signature Signature) String() string {
	return hex.EncodeToString(signature[:])
}

// GoString - convert a binary signature to hex string for use by the fmt package (for %#v)
func (signature Signature) GoString() string {
	return "<signature:" + hex.EncodeToString(signature[:]) + ">"
}

// Scan - convert a text representation to a signature for use by the format package scan routines
func (signature *Signature) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, isHexRune)
	if nil != err {
		return err
	}
	return signature.UnmarshalText(token)
}

// MarshalText - convert signature to text
func (signature Signature) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(SignatureLength)
	b := make([]byte, size)
	hex.Encode(b, signature[:])
	return b, nil
}

// UnmarshalText - convert text into a signature
func (signature *Signature) UnmarshalText(s []byte) error {
	if SignatureLength != hex.DecodedLen(len(s)) {
		return fault.ErrInvalidSignature
	}
	sig := make([]byte, SignatureLength)
	if _, err := hex.Decode(sig, s); nil != err {
		return fault.ErrInvalidSignature
	}
	copy(signature[:], sig)
	return nil
}
