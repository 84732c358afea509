// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"encoding/binary"
	"encoding/json"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/varint"
)

// OpenRequest - ask peers whether they will join a channel
type OpenRequest struct {
	Initiator    account.PublicKey
	Participants []account.PublicKey
}

// OpenResponse - reply to an open request
type OpenResponse struct {
	ChannelID merkle.Digest
	Accepted  bool
}

// Proposal - a signed update being gathered
type Proposal struct {
	ChannelID merkle.Digest
	Signed    *channel.SignedUpdate
}

// InfoResponse - channel info, nil if the responder does not know it
type InfoResponse struct {
	ChannelID merkle.Digest
	Info      *channel.Info
}

func digestParameter(parameters [][]byte, i int) (merkle.Digest, error) {
	var d merkle.Digest
	if i >= len(parameters) {
		return d, fault.ErrTooFewParameters
	}
	err := merkle.DigestFromBytes(&d, parameters[i])
	return d, err
}

// Pack - parameters: initiator, concatenated participant keys
func (r *OpenRequest) Pack() [][]byte {
	participants := make([]byte, 0, len(r.Participants)*account.PublicKeyLength)
	for _, p := range r.Participants {
		participants = append(participants, p[:]...)
	}
	return [][]byte{r.Initiator.Bytes(), participants}
}

// UnpackOpenRequest - decode parameters
func UnpackOpenRequest(parameters [][]byte) (*OpenRequest, error) {
	if len(parameters) < 2 {
		return nil, fault.ErrTooFewParameters
	}
	initiator, err := account.PublicKeyFromBytes(parameters[0])
	if nil != err {
		return nil, err
	}
	buffer := parameters[1]
	if 0 == len(buffer) || 0 != len(buffer)%account.PublicKeyLength {
		return nil, fault.ErrInvalidMessage
	}
	r := &OpenRequest{
		Initiator: initiator,
	}
	for ; len(buffer) > 0; buffer = buffer[account.PublicKeyLength:] {
		p, err := account.PublicKeyFromBytes(buffer[:account.PublicKeyLength])
		if nil != err {
			return nil, err
		}
		r.Participants = append(r.Participants, p)
	}
	return r, nil
}

// Pack - parameters: channel id, accepted flag
func (r *OpenResponse) Pack() [][]byte {
	flag := []byte{0}
	if r.Accepted {
		flag[0] = 1
	}
	return [][]byte{r.ChannelID[:], flag}
}

// UnpackOpenResponse - decode parameters
func UnpackOpenResponse(parameters [][]byte) (*OpenResponse, error) {
	id, err := digestParameter(parameters, 0)
	if nil != err {
		return nil, err
	}
	if len(parameters) < 2 || 1 != len(parameters[1]) {
		return nil, fault.ErrInvalidMessage
	}
	return &OpenResponse{
		ChannelID: id,
		Accepted:  0 != parameters[1][0],
	}, nil
}

// Pack - parameters: channel id, packed signed update
func (p *Proposal) Pack() [][]byte {
	return [][]byte{p.ChannelID[:], p.Signed.Pack()}
}

// UnpackProposal - decode parameters
func UnpackProposal(parameters [][]byte) (*Proposal, error) {
	id, err := digestParameter(parameters, 0)
	if nil != err {
		return nil, err
	}
	if len(parameters) < 2 {
		return nil, fault.ErrTooFewParameters
	}
	signed, err := channel.UnpackSignedUpdate(parameters[1])
	if nil != err {
		return nil, err
	}
	return &Proposal{
		ChannelID: id,
		Signed:    signed,
	}, nil
}

// PackAck - parameters: channel id, varint nonce, signer, signature
func PackAck(ack *channel.Ack) [][]byte {
	return [][]byte{ack.ChannelID[:], varint.Encode(ack.Nonce), ack.Signer.Bytes(), ack.Signature[:]}
}

// UnpackAck - decode parameters
func UnpackAck(parameters [][]byte) (*channel.Ack, error) {
	id, err := digestParameter(parameters, 0)
	if nil != err {
		return nil, err
	}
	if len(parameters) < 4 {
		return nil, fault.ErrTooFewParameters
	}
	nonce, n := varint.Decode(parameters[1])
	if 0 == n {
		return nil, fault.ErrInvalidMessage
	}
	signer, err := account.PublicKeyFromBytes(parameters[2])
	if nil != err {
		return nil, err
	}
	signature, err := account.SignatureFromBytes(parameters[3])
	if nil != err {
		return nil, err
	}
	return &channel.Ack{
		ChannelID: id,
		Nonce:     nonce,
		Signer:    signer,
		Signature: signature,
	}, nil
}

// Pack - parameters: channel id, info JSON or empty
func (r *InfoResponse) Pack() ([][]byte, error) {
	if nil == r.Info {
		return [][]byte{r.ChannelID[:], {}}, nil
	}
	info, err := json.Marshal(r.Info)
	if nil != err {
		return nil, err
	}
	return [][]byte{r.ChannelID[:], info}, nil
}

// UnpackInfoResponse - decode parameters
func UnpackInfoResponse(parameters [][]byte) (*InfoResponse, error) {
	id, err := digestParameter(parameters, 0)
	if nil != err {
		return nil, err
	}
	r := &InfoResponse{
		ChannelID: id,
	}
	if len(parameters) < 2 || 0 == len(parameters[1]) {
		return r, nil
	}
	r.Info = &channel.Info{}
	if err := json.Unmarshal(parameters[1], r.Info); nil != err {
		return nil, fault.ErrInvalidMessage
	}
	return r, nil
}

// packTimestamp - ping and pong carry the sender clock
func packTimestamp(t uint64) []byte {
	buffer := make([]byte, 8)
	binary.BigEndian.PutUint64(buffer, t)
	return buffer
}
