// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wallet - embedded key wallet with seed phrase recovery
package wallet

import (
	"encoding/binary"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
)

// key derivation constants
const (
	seedPhraseWords = 24
	entropyBits     = 256
	deriveDomain    = "derive_key"
	deriveLabel     = "tari-l2-wallet"
	deriveBranch    = "wallet"
	deriveIndex     = 0
)

// Wallet - a spend key and its optional recovery phrase
type Wallet struct {
	key        *account.PrivateKey
	seedPhrase string
	network    l1client.Network
}

// Create - a new wallet from fresh entropy
func Create(network l1client.Network) (*Wallet, error) {
	entropy, err := bip39.NewEntropy(entropyBits)
	if nil != err {
		return nil, err
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if nil != err {
		return nil, err
	}
	return fromEntropy(entropy, phrase, network)
}

// FromSeedPhrase - recover a wallet, the same phrase always gives the
// same keys
func FromSeedPhrase(phrase string, network l1client.Network) (*Wallet, error) {
	words := strings.Fields(phrase)
	if seedPhraseWords != len(words) {
		return nil, fault.ErrInvalidSeedPhraseLength
	}
	normalised := strings.ToLower(strings.Join(words, " "))

	entropy, err := bip39.EntropyFromMnemonic(normalised)
	if nil != err {
		return nil, fault.ErrInvalidSeedPhrase
	}
	return fromEntropy(entropy, normalised, network)
}

// FromPrivateKey - import a hex spend key, no seed phrase
func FromPrivateKey(s string, network l1client.Network) (*Wallet, error) {
	key, err := account.PrivateKeyFromHex(strings.TrimSpace(s))
	if nil != err {
		return nil, fault.ErrInvalidPrivateKey
	}
	return &Wallet{
		key:     key,
		network: network,
	}, nil
}

// spend key seed:
//   blake2b-512(domain || label || entropy || branch || index LE)[:32]
func deriveSeed(entropy []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write([]byte(deriveDomain))
	h.Write([]byte(deriveLabel))
	h.Write(entropy)
	h.Write([]byte(deriveBranch))
	index := make([]byte, 8)
	binary.LittleEndian.PutUint64(index, deriveIndex)
	h.Write(index)
	return h.Sum(nil)[:account.SeedLength]
}

func fromEntropy(entropy []byte, phrase string, network l1client.Network) (*Wallet, error) {
	key, err := account.PrivateKeyFromSeed(deriveSeed(entropy))
	if nil != err {
		return nil, err
	}
	return &Wallet{
		key:        key,
		seedPhrase: phrase,
		network:    network,
	}, nil
}

// PrivateKey - the spend key
func (w *Wallet) PrivateKey() *account.PrivateKey {
	return w.key
}

// PublicKey - the public spend key
func (w *Wallet) PublicKey() account.PublicKey {
	return w.key.PublicKey()
}

// PublicKeyHex - hex of the public key
func (w *Wallet) PublicKeyHex() string {
	return w.key.PublicKey().String()
}

// ExportPrivateKey - hex of the 32 byte seed
func (w *Wallet) ExportPrivateKey() string {
	return w.key.String()
}

// SeedPhrase - recovery words, empty for imported keys
func (w *Wallet) SeedPhrase() string {
	return w.seedPhrase
}

// Network - the network the addresses are for
func (w *Wallet) Network() l1client.Network {
	return w.network
}

// Address - base58 display address
func (w *Wallet) Address() string {
	return EncodeAddress(w.network, w.PublicKey())
}

// AddressHex - hex of network byte and public key
func (w *Wallet) AddressHex() string {
	return EncodeAddressHex(w.network, w.PublicKey())
}

// Sign - sign a message with the spend key
func (w *Wallet) Sign(message []byte) account.Signature {
	return w.key.Sign(message)
}
