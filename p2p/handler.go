// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/messagebus"
)

// remote channel info lifetime
const (
	infoExpiry  = 5 * time.Minute
	infoCleanup = 10 * time.Minute
)

// ChannelHandler - the channel operations peers can drive
type ChannelHandler interface {
	ReceiveProposal(merkle.Digest, *channel.SignedUpdate) ([]channel.Ack, error)
	AddSignature(merkle.Digest, uint64, account.PublicKey, account.Signature) (*channel.ProposalResult, error)
	Info(merkle.Digest) (*channel.Info, error)
	IsLocal(account.PublicKey) bool
}

// Handler - decode and act on inbound envelopes
type Handler struct {
	log      *logger.L
	chain    string
	channels ChannelHandler
	remote   *cache.Cache
}

// NewHandler - handler for one chain
func NewHandler(log *logger.L, chain string, channels ChannelHandler) *Handler {
	return &Handler{
		log:      log,
		chain:    chain,
		channels: channels,
		remote:   cache.New(infoExpiry, infoCleanup),
	}
}

// RemoteInfo - channel info last heard from a peer
func (h *Handler) RemoteInfo(id merkle.Digest) (*channel.Info, bool) {
	item, ok := h.remote.Get(id.String())
	if !ok {
		return nil, false
	}
	return item.(*channel.Info), true
}

// Handle - process one envelope and return any replies
func (h *Handler) Handle(e *Envelope) ([]messagebus.Message, error) {
	log := h.log

	if e.Chain != h.chain {
		log.Debugf("different chain: this: %s  peer: %s", h.chain, e.Chain)
		return nil, fault.ErrWrongChain
	}

	parameters := e.Parameters
	log.Debugf("received: %s  parameters: %d", e.Command, len(parameters))

	switch e.Command {

	case messagebus.Ping:
		if len(parameters) < 1 || 8 != len(parameters[0]) {
			return nil, fault.ErrInvalidMessage
		}
		return []messagebus.Message{{Command: messagebus.Pong, Parameters: [][]byte{parameters[0]}}}, nil

	case messagebus.Pong:
		if len(parameters) < 1 || 8 != len(parameters[0]) {
			return nil, fault.ErrInvalidMessage
		}
		sent := int64(binary.BigEndian.Uint64(parameters[0]))
		log.Debugf("pong: round trip: %s", time.Since(time.Unix(0, sent)))
		return nil, nil

	case messagebus.Announce:
		if len(parameters) < 1 {
			return nil, fault.ErrTooFewParameters
		}
		info := &channel.Info{}
		if err := json.Unmarshal(parameters[0], info); nil != err {
			return nil, fault.ErrInvalidMessage
		}
		h.remote.Set(info.ChannelID.String(), info, cache.DefaultExpiration)
		return nil, nil

	case messagebus.Proposal:
		p, err := UnpackProposal(parameters)
		if nil != err {
			return nil, err
		}
		acks, err := h.channels.ReceiveProposal(p.ChannelID, p.Signed)
		if fault.ErrChannelNotFound == err {
			return nil, nil // not one of ours
		}
		if nil != err {
			return nil, err
		}
		replies := make([]messagebus.Message, 0, len(acks))
		for i := range acks {
			replies = append(replies, messagebus.Message{Command: messagebus.Ack, Parameters: PackAck(&acks[i])})
		}
		return replies, nil

	case messagebus.Ack:
		ack, err := UnpackAck(parameters)
		if nil != err {
			return nil, err
		}
		result, err := h.channels.AddSignature(ack.ChannelID, ack.Nonce, ack.Signer, ack.Signature)
		if fault.ErrChannelNotFound == err || fault.ErrNoPendingUpdate == err {
			return nil, nil
		}
		if nil != err {
			return nil, err
		}
		log.Infof("ack: channel: %s  nonce: %d  signatures: %d/%d", ack.ChannelID, ack.Nonce, result.SignaturesCollected, result.SignaturesRequired)
		return nil, nil

	case messagebus.InfoRequest:
		id, err := digestParameter(parameters, 0)
		if nil != err {
			return nil, err
		}
		r := &InfoResponse{
			ChannelID: id,
		}
		info, err := h.channels.Info(id)
		if nil == err {
			r.Info = info
		}
		reply, err := r.Pack()
		if nil != err {
			return nil, err
		}
		return []messagebus.Message{{Command: messagebus.InfoResponse, Parameters: reply}}, nil

	case messagebus.InfoResponse:
		r, err := UnpackInfoResponse(parameters)
		if nil != err {
			return nil, err
		}
		if nil != r.Info {
			h.remote.Set(r.ChannelID.String(), r.Info, cache.DefaultExpiration)
		}
		return nil, nil

	case messagebus.OpenRequest:
		r, err := UnpackOpenRequest(parameters)
		if nil != err {
			return nil, err
		}
		accepted := false
		for _, p := range r.Participants {
			if p != r.Initiator && h.channels.IsLocal(p) {
				accepted = true
				break
			}
		}
		if !accepted {
			return nil, nil
		}
		response := &OpenResponse{
			ChannelID: channel.ChannelID(r.Participants),
			Accepted:  true,
		}
		return []messagebus.Message{{Command: messagebus.OpenResponse, Parameters: response.Pack()}}, nil

	case messagebus.OpenResponse:
		r, err := UnpackOpenResponse(parameters)
		if nil != err {
			return nil, err
		}
		log.Infof("open response: channel: %s  accepted: %t", r.ChannelID, r.Accepted)
		return nil, nil

	default:
		return nil, fault.ErrUnknownCommand
	}
}
