// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"golang.org/x/crypto/ed25519"

	"github.com/tari-l2/tari-l2-node/fault"
)

// SeedLength - the private key seed size
const SeedLength = ed25519.SeedSize

// PrivateKey - an ed25519 signing key
type PrivateKey struct {
	key ed25519.PrivateKey
}

// NewPrivateKey - generate a random key
func NewPrivateKey() (*PrivateKey, error) {
	return newPrivateKeyFromReader(rand.Reader)
}

func newPrivateKeyFromReader(r io.Reader) (*PrivateKey, error) {
	seed := make([]byte, SeedLength)
	if _, err := io.ReadFull(r, seed); nil != err {
		return nil, err
	}
	return PrivateKeyFromSeed(seed)
}

// PrivateKeyFromSeed - deterministic key from a 32 byte seed
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if SeedLength != len(seed) {
		return nil, fault.ErrInvalidPrivateKey
	}
	return &PrivateKey{
		key: ed25519.NewKeyFromSeed(seed),
	}, nil
}

// PrivateKeyFromHex - decode a hex seed
func PrivateKeyFromHex(s string) (*PrivateKey, error) {
	seed, err := hex.DecodeString(s)
	if nil != err {
		return nil, fault.ErrInvalidPrivateKey
	}
	return PrivateKeyFromSeed(seed)
}

// PublicKey - the matching public key
func (privateKey *PrivateKey) PublicKey() PublicKey {
	var key PublicKey
	copy(key[:], privateKey.key.Public().(ed25519.PublicKey))
	return key
}

// Sign - sign a message
func (privateKey *PrivateKey) Sign(message []byte) Signature {
	var signature Signature
	copy(signature[:], ed25519.Sign(privateKey.key, message))
	return signature
}

// Seed - the 32 byte seed, copy so it can be stored
func (privateKey *PrivateKey) Seed() []byte {
	seed := make([]byte, SeedLength)
	copy(seed, privateKey.key.Seed())
	return seed
}

// Bytes - the full 64 byte ed25519 private key
func (privateKey *PrivateKey) Bytes() []byte {
	buffer := make([]byte, len(privateKey.key))
	copy(buffer, privateKey.key)
	return buffer
}

// String - hex of the seed
func (privateKey *PrivateKey) String() string {
	return hex.EncodeToString(privateKey.key.Seed())
}

// GoString - never print the secret
func (privateKey *PrivateKey) GoString() string {
	return "<ed25519-private:" + privateKey.PublicKey().String() + ">"
}
