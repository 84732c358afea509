// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
)

// MaximumActionAge - seconds a signed action stays valid
const MaximumActionAge = 300

// SignedAction - a user request authenticated by their own key
//
// the signature covers: payload || timestamp (8 byte little endian)
type SignedAction struct {
	Payload   json.RawMessage   `json:"payload"`
	PublicKey account.PublicKey `json:"public_key"`
	Signature account.Signature `json:"signature"`
	Timestamp uint64            `json:"timestamp"`
}

// NewSignedAction - sign a payload with the current time
func NewSignedAction(payload []byte, key *account.PrivateKey) *SignedAction {
	return NewSignedActionAt(payload, key, uint64(time.Now().Unix()))
}

// NewSignedActionAt - sign a payload with the given timestamp
func NewSignedActionAt(payload []byte, key *account.PrivateKey, timestamp uint64) *SignedAction {
	action := &SignedAction{
		Payload:   append(json.RawMessage{}, payload...),
		PublicKey: key.PublicKey(),
		Timestamp: timestamp,
	}
	action.Signature = key.Sign(action.message())
	return action
}

func (action *SignedAction) message() []byte {
	message := make([]byte, len(action.Payload), len(action.Payload)+8)
	copy(message, action.Payload)
	ts := make([]byte, 8)
	binary.LittleEndian.PutUint64(ts, action.Timestamp)
	return append(message, ts...)
}

// Verify - check signature and age against the current time
func (action *SignedAction) Verify() error {
	return action.VerifyAt(time.Now())
}

// VerifyAt - check signature and age against a given time
func (action *SignedAction) VerifyAt(now time.Time) error {
	if nil != action.PublicKey.Verify(action.message(), action.Signature) {
		return fault.ErrInvalidSignature
	}
	if uint64(now.Unix()) > action.Timestamp+MaximumActionAge {
		return fault.ErrActionExpired
	}
	return nil
}

// VerifyOwnership - as Verify, and the signer must be the owner
func (action *SignedAction) VerifyOwnership(owner account.PublicKey) error {
	if err := action.Verify(); nil != err {
		return err
	}
	if action.PublicKey != owner {
		return fault.ErrInvalidSignature
	}
	return nil
}
