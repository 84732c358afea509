// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/merkle"
)

// KeyRing - a source of locally held private keys
type KeyRing interface {
	PrivateKey(account.PublicKey) (*account.PrivateKey, bool)
}

// Keys - a fixed set of local keys
type Keys []*account.PrivateKey

// PrivateKey - find the key for a public key
func (keys Keys) PrivateKey(publicKey account.PublicKey) (*account.PrivateKey, bool) {
	for _, k := range keys {
		if k.PublicKey() == publicKey {
			return k, true
		}
	}
	return nil, false
}

// L1 - base layer operations needed by the channel lifecycle
type L1 interface {
	LockCollateral(channelID merkle.Digest, amount uint64, participants []account.PublicKey) (string, error)
	UnlockCollateral(channelID merkle.Digest, finalBalances map[account.PublicKey]uint64) (string, error)
	CheckpointState(channelID merkle.Digest, stateRoot merkle.Digest, signatures []account.Signature) (string, error)
	SubmitDispute(channelID merkle.Digest, stateRoot merkle.Digest, signatures []account.Signature) (string, error)
}
