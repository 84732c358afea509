// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p_test

import (
	"encoding/json"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/messagebus"
	"github.com/tari-l2/tari-l2-node/p2p"
	"github.com/tari-l2/tari-l2-node/p2p/mocks"
)

func newHandler(t *testing.T) (*p2p.Handler, *mocks.MockChannelHandler, *gomock.Controller) {
	ctl := gomock.NewController(t)
	m := mocks.NewMockChannelHandler(ctl)
	return p2p.NewHandler(logger.New(logCategory), testChain, m), m, ctl
}

func TestHandlePing(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h, _, ctl := newHandler(t)
	defer ctl.Finish()

	ts := []byte{0, 0, 0, 0, 0, 0, 0, 42}
	replies, err := h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Ping, Parameters: [][]byte{ts}})
	assert.Nil(t, err, "ping error")
	assert.Equal(t, 1, len(replies), "wrong reply count")
	assert.Equal(t, messagebus.Pong, replies[0].Command, "wrong reply")
	assert.Equal(t, ts, replies[0].Parameters[0], "timestamp not echoed")

	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Ping})
	assert.Equal(t, fault.ErrInvalidMessage, err, "empty ping accepted")

	_, err = h.Handle(&p2p.Envelope{Chain: "mainnet", Command: messagebus.Ping, Parameters: [][]byte{ts}})
	assert.Equal(t, fault.ErrWrongChain, err, "other chain accepted")

	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: "block"})
	assert.Equal(t, fault.ErrUnknownCommand, err, "unknown command accepted")
}

func TestHandleProposal(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h, m, ctl := newHandler(t)
	defer ctl.Finish()

	alice := newKey(t)
	bob := newKey(t)
	id := channel.ChannelID([]account.PublicKey{alice.PublicKey(), bob.PublicKey()})

	signed := channel.NewSignedUpdate(&channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 10}, 1)
	signed.Sign(alice)
	ack := channel.Ack{ChannelID: id, Nonce: 1, Signer: bob.PublicKey(), Signature: signed.Sign(bob)}

	m.EXPECT().ReceiveProposal(id, gomock.Any()).Return([]channel.Ack{ack}, nil).Times(1)

	p := &p2p.Proposal{ChannelID: id, Signed: signed}
	replies, err := h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Proposal, Parameters: p.Pack()})
	assert.Nil(t, err, "proposal error")
	assert.Equal(t, 1, len(replies), "wrong reply count")
	assert.Equal(t, messagebus.Ack, replies[0].Command, "wrong reply")

	decoded, err := p2p.UnpackAck(replies[0].Parameters)
	assert.Nil(t, err, "ack unpack error")
	assert.Equal(t, &ack, decoded, "wrong ack")

	other := merkle.NewRandomDigest()
	m.EXPECT().ReceiveProposal(other, gomock.Any()).Return(nil, fault.ErrChannelNotFound).Times(1)
	p.ChannelID = other
	replies, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Proposal, Parameters: p.Pack()})
	assert.Nil(t, err, "unknown channel is not an error")
	assert.Equal(t, 0, len(replies), "reply for unknown channel")
}

func TestHandleAck(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h, m, ctl := newHandler(t)
	defer ctl.Finish()

	bob := newKey(t)
	id := merkle.NewRandomDigest()
	signature := bob.Sign([]byte("message"))

	m.EXPECT().AddSignature(id, uint64(5), bob.PublicKey(), signature).Return(&channel.ProposalResult{
		ChannelID:           id,
		Nonce:               5,
		Applied:             true,
		SignaturesCollected: 2,
		SignaturesRequired:  2,
	}, nil).Times(1)

	ack := &channel.Ack{ChannelID: id, Nonce: 5, Signer: bob.PublicKey(), Signature: signature}
	replies, err := h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Ack, Parameters: p2p.PackAck(ack)})
	assert.Nil(t, err, "ack error")
	assert.Equal(t, 0, len(replies), "ack replied")

	m.EXPECT().AddSignature(id, uint64(5), bob.PublicKey(), signature).Return(nil, fault.ErrInvalidSignature).Times(1)
	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Ack, Parameters: p2p.PackAck(ack)})
	assert.Equal(t, fault.ErrInvalidSignature, err, "bad signature hidden")
}

func TestHandleInfo(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h, m, ctl := newHandler(t)
	defer ctl.Finish()

	known := merkle.NewRandomDigest()
	unknown := merkle.NewRandomDigest()
	info := &channel.Info{ID: known, ChannelID: known, Status: channel.Active, Nonce: 4, Collateral: 1000}

	m.EXPECT().Info(known).Return(info, nil).Times(1)
	m.EXPECT().Info(unknown).Return(nil, fault.ErrChannelNotFound).Times(1)

	replies, err := h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.InfoRequest, Parameters: [][]byte{known[:]}})
	assert.Nil(t, err, "info error")
	assert.Equal(t, 1, len(replies), "wrong reply count")
	assert.Equal(t, messagebus.InfoResponse, replies[0].Command, "wrong reply")
	r, err := p2p.UnpackInfoResponse(replies[0].Parameters)
	assert.Nil(t, err, "response error")
	assert.Equal(t, uint64(1000), r.Info.Collateral, "wrong info")

	replies, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.InfoRequest, Parameters: [][]byte{unknown[:]}})
	assert.Nil(t, err, "info error")
	r, err = p2p.UnpackInfoResponse(replies[0].Parameters)
	assert.Nil(t, err, "response error")
	assert.Nil(t, r.Info, "info for unknown channel")

	// responses from peers are cached
	_, ok := h.RemoteInfo(known)
	assert.False(t, ok, "cached before any response")

	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.InfoResponse, Parameters: replies[0].Parameters})
	assert.Nil(t, err, "empty response error")
	_, ok = h.RemoteInfo(unknown)
	assert.False(t, ok, "absent info cached")

	parameters, err := (&p2p.InfoResponse{ChannelID: known, Info: info}).Pack()
	assert.Nil(t, err, "pack error")
	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.InfoResponse, Parameters: parameters})
	assert.Nil(t, err, "response error")
	cached, ok := h.RemoteInfo(known)
	assert.True(t, ok, "response not cached")
	assert.Equal(t, uint64(4), cached.Nonce, "wrong cached info")
}

func TestHandleAnnounce(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h, _, ctl := newHandler(t)
	defer ctl.Finish()

	id := merkle.NewRandomDigest()
	data, err := json.Marshal(&channel.Info{ID: id, ChannelID: id, Status: channel.Active, Nonce: 9})
	assert.Nil(t, err, "marshal error")

	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Announce, Parameters: [][]byte{data}})
	assert.Nil(t, err, "announce error")

	info, ok := h.RemoteInfo(id)
	assert.True(t, ok, "announcement not cached")
	assert.Equal(t, uint64(9), info.Nonce, "wrong nonce")

	_, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.Announce, Parameters: [][]byte{[]byte("{")}})
	assert.Equal(t, fault.ErrInvalidMessage, err, "bad announcement accepted")
}

func TestHandleOpenRequest(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	h, m, ctl := newHandler(t)
	defer ctl.Finish()

	alice := newKey(t).PublicKey()
	bob := newKey(t).PublicKey()
	participants := []account.PublicKey{alice, bob}
	r := &p2p.OpenRequest{Initiator: alice, Participants: participants}

	m.EXPECT().IsLocal(bob).Return(true).Times(1)
	replies, err := h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.OpenRequest, Parameters: r.Pack()})
	assert.Nil(t, err, "open error")
	assert.Equal(t, 1, len(replies), "wrong reply count")

	response, err := p2p.UnpackOpenResponse(replies[0].Parameters)
	assert.Nil(t, err, "response error")
	assert.True(t, response.Accepted, "not accepted")
	assert.Equal(t, channel.ChannelID(participants), response.ChannelID, "wrong channel id")

	m.EXPECT().IsLocal(bob).Return(false).Times(1)
	replies, err = h.Handle(&p2p.Envelope{Chain: testChain, Command: messagebus.OpenRequest, Parameters: r.Pack()})
	assert.Nil(t, err, "open error")
	assert.Equal(t, 0, len(replies), "non participant replied")
}
