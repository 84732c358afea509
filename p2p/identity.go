// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"crypto/rand"
	"encoding/hex"
	"io/ioutil"
	"os"
	"strings"

	crypto "github.com/libp2p/go-libp2p-core/crypto"
)

// NewIdentity - a random Ed25519 peer key
func NewIdentity() (crypto.PrivKey, error) {
	key, _, err := crypto.GenerateEd25519Key(rand.Reader)
	return key, err
}

// EncodeIdentity - hex of the marshalled key
func EncodeIdentity(key crypto.PrivKey) (string, error) {
	buffer, err := crypto.MarshalPrivateKey(key)
	if nil != err {
		return "", err
	}
	return hex.EncodeToString(buffer), nil
}

// DecodeIdentity - hex to key, surrounding white space is ignored
func DecodeIdentity(s string) (crypto.PrivKey, error) {
	buffer, err := hex.DecodeString(strings.TrimSpace(s))
	if nil != err {
		return nil, err
	}
	return crypto.UnmarshalPrivateKey(buffer)
}

// LoadIdentity - read the node key file, creating it on first run
func LoadIdentity(fileName string) (crypto.PrivKey, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil == err {
		return DecodeIdentity(string(data))
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	key, err := NewIdentity()
	if nil != err {
		return nil, err
	}
	s, err := EncodeIdentity(key)
	if nil != err {
		return nil, err
	}
	if err := ioutil.WriteFile(fileName, []byte(s+"\n"), 0600); nil != err {
		return nil, err
	}
	return key, nil
}
