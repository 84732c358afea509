// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"encoding/binary"
	"encoding/json"
	"sort"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
)

// SignedUpdate - an update with the nonce it produces and the
// participant signatures collected so far
type SignedUpdate struct {
	Update     Update
	Nonce      uint64
	Signatures map[account.PublicKey]account.Signature
}

// NewSignedUpdate - an unsigned update for the given nonce
func NewSignedUpdate(update Update, nonce uint64) *SignedUpdate {
	return &SignedUpdate{
		Update:     update,
		Nonce:      nonce,
		Signatures: make(map[account.PublicKey]account.Signature),
	}
}

// Message - the bytes every participant signs
//
// packed update followed by the nonce as 8 byte little endian
func (signed *SignedUpdate) Message() []byte {
	packed := signed.Update.Pack()
	message := make([]byte, len(packed), len(packed)+8)
	copy(message, packed)
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, signed.Nonce)
	return append(message, nonce...)
}

// Sign - add a signature from a local key
func (signed *SignedUpdate) Sign(key *account.PrivateKey) account.Signature {
	signature := key.Sign(signed.Message())
	signed.Signatures[key.PublicKey()] = signature
	return signature
}

// AddSignature - add a verified signature
func (signed *SignedUpdate) AddSignature(signer account.PublicKey, signature account.Signature) error {
	if err := signer.Verify(signed.Message(), signature); nil != err {
		return fault.ErrInvalidSignature
	}
	signed.Signatures[signer] = signature
	return nil
}

// Verify - every participant, and only the participants, signed
func (signed *SignedUpdate) Verify(participants []account.PublicKey) error {
	if len(signed.Signatures) != len(participants) {
		return fault.ErrInvalidSignature
	}
	message := signed.Message()
	for _, p := range participants {
		signature, ok := signed.Signatures[p]
		if !ok {
			return fault.ErrInvalidSignature
		}
		if err := p.Verify(message, signature); nil != err {
			return fault.ErrInvalidSignature
		}
	}
	return nil
}

// SignatureList - signatures in signer key order
func (signed *SignedUpdate) SignatureList() []account.Signature {
	keys := signed.signers()
	list := make([]account.Signature, 0, len(keys))
	for _, k := range keys {
		list = append(list, signed.Signatures[k])
	}
	return list
}

func (signed *SignedUpdate) signers() []account.PublicKey {
	keys := make([]account.PublicKey, 0, len(signed.Signatures))
	for k := range signed.Signatures {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].Less(keys[j])
	})
	return keys
}

// Pack - wire form for gossip
//
// packed update, nonce, signature count, then (signer, signature)
// pairs in signer order
func (signed *SignedUpdate) Pack() Packed {
	buffer := appendBytes(nil, signed.Update.Pack())
	buffer = appendUint64(buffer, signed.Nonce)
	keys := signed.signers()
	buffer = appendUint64(buffer, uint64(len(keys)))
	for _, k := range keys {
		s := signed.Signatures[k]
		buffer = appendBytes(buffer, k[:])
		buffer = appendBytes(buffer, s[:])
	}
	return buffer
}

// UnpackSignedUpdate - reverse of SignedUpdate.Pack
func UnpackSignedUpdate(record Packed) (signed *SignedUpdate, e error) {
	defer func() {
		if r := recover(); nil != r {
			if _, ok := r.(unpackError); !ok {
				panic(r)
			}
			signed = nil
			e = fault.ErrNotTransactionPack
		}
	}()

	u := &unpacker{record: record}
	update, _, err := Packed(u.bytes()).Unpack()
	if nil != err {
		return nil, err
	}
	signed = NewSignedUpdate(update, u.uint64())
	count := u.uint64()
	if count > maximumFieldLength {
		return nil, fault.ErrNotTransactionPack
	}
	for i := uint64(0); i < count; i += 1 {
		key := u.publicKey()
		signed.Signatures[key] = u.signature()
	}
	return signed, nil
}

// JSON form: the packed update is authoritative; type and update are
// for display only
type signedUpdateJSON struct {
	Type       string                                  `json:"type"`
	Update     json.RawMessage                         `json:"update,omitempty"`
	Packed     Packed                                  `json:"packed"`
	Nonce      uint64                                  `json:"nonce"`
	Signatures map[account.PublicKey]account.Signature `json:"signatures"`
}

// MarshalJSON - convert to JSON
func (signed SignedUpdate) MarshalJSON() ([]byte, error) {
	detail, err := json.Marshal(signed.Update)
	if nil != err {
		return nil, err
	}
	return json.Marshal(signedUpdateJSON{
		Type:       signed.Update.Tag().String(),
		Update:     detail,
		Packed:     signed.Update.Pack(),
		Nonce:      signed.Nonce,
		Signatures: signed.Signatures,
	})
}

// UnmarshalJSON - convert from JSON
func (signed *SignedUpdate) UnmarshalJSON(s []byte) error {
	var j signedUpdateJSON
	if err := json.Unmarshal(s, &j); nil != err {
		return err
	}
	update, _, err := j.Packed.Unpack()
	if nil != err {
		return err
	}
	signed.Update = update
	signed.Nonce = j.Nonce
	signed.Signatures = j.Signatures
	if nil == signed.Signatures {
		signed.Signatures = make(map[account.PublicKey]account.Signature)
	}
	return nil
}
