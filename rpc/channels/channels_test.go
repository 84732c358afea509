// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channels_test

import (
	"encoding/hex"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/messagebus"
	"github.com/tari-l2/tari-l2-node/rpc/channels"
	"github.com/tari-l2/tari-l2-node/rpc/fixtures"
	"github.com/tari-l2/tari-l2-node/rpc/mocks"
)

func newKey(t *testing.T) *account.PrivateKey {
	key, err := account.NewPrivateKey()
	if nil != err {
		t.Fatalf("key error: %s", err)
	}
	return key
}

func setup(t *testing.T, network channels.Network, keys ...*account.PrivateKey) *channels.Channels {
	if err := fixtures.SetupTestStorage(); nil != err {
		t.Fatalf("storage setup error: %s", err)
	}
	messagebus.Bus.P2P.Drain()

	log := logger.New(fixtures.LogCategory)
	l1 := l1client.New(log, l1client.Esmeralda, "")
	manager, err := channel.NewManager(log, l1, channel.Keys(keys))
	if nil != err {
		t.Fatalf("channel manager error: %s", err)
	}
	return channels.New(log, manager, keys[0].PublicKey(), l1, network)
}

func teardown() {
	messagebus.Bus.P2P.Drain()
	fixtures.TeardownTestStorage()
}

func TestCreateInvitesRemoteParticipants(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := mocks.NewMockNetwork(ctl)

	local := newKey(t)
	other := newKey(t)
	remote := newKey(t)
	c := setup(t, network, local, other)
	defer teardown()

	var reply channels.CreateReply
	err := c.Create(&channels.CreateArguments{
		Participant1: pointer(local.PublicKey()),
		Participant2: pointer(other.PublicKey()),
		Collateral:   100,
	}, &reply)
	assert.Nil(t, err, "local create error")

	participants := []account.PublicKey{local.PublicKey(), remote.PublicKey()}
	network.EXPECT().RequestOpen(local.PublicKey(), participants).Times(1)

	err = c.Create(&channels.CreateArguments{
		Participant1: pointer(local.PublicKey()),
		Participant2: pointer(remote.PublicKey()),
		Collateral:   100,
	}, &reply)
	assert.Nil(t, err, "remote create error")
}

func TestInfoFromPeers(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	network := mocks.NewMockNetwork(ctl)
	c := setup(t, network, newKey(t))
	defer teardown()

	known := merkle.NewRandomDigest()
	unknown := merkle.NewRandomDigest()

	network.EXPECT().RemoteInfo(known).Return(&channel.Info{ChannelID: known, Nonce: 7}, true).Times(1)
	network.EXPECT().RemoteInfo(unknown).Return(nil, false).Times(1)
	network.EXPECT().RequestInfo(unknown).Times(1)

	var info channel.Info
	err := c.Info(&channels.IDArguments{ChannelID: known}, &info)
	assert.Nil(t, err, "remote info error")
	assert.Equal(t, known, info.ChannelID, "wrong channel")
	assert.Equal(t, uint64(7), info.Nonce, "wrong nonce")

	err = c.Info(&channels.IDArguments{ChannelID: unknown}, &info)
	assert.Equal(t, fault.ErrChannelNotFound, err, "unknown channel found")
}

func TestPendingAndCosign(t *testing.T) {
	local := newKey(t)
	remote := newKey(t)
	c := setup(t, nil, local)
	defer teardown()

	var created channels.CreateReply
	err := c.Create(&channels.CreateArguments{
		Participant1: pointer(local.PublicKey()),
		Participant2: pointer(remote.PublicKey()),
		Collateral:   1000,
	}, &created)
	if !assert.Nil(t, err, "create error") {
		t.FailNow()
	}
	id := created.ChannelID

	var pending channels.PendingReply
	err = c.Pending(&channels.IDArguments{ChannelID: id}, &pending)
	assert.Nil(t, err, "pending error")
	assert.False(t, pending.Pending, "pending update on a new channel")
	assert.Equal(t, 2, pending.SignaturesRequired, "wrong required count")

	var proposed channel.ProposalResult
	err = c.Transfer(&channels.TransferArguments{ChannelID: id, Amount: 40}, &proposed)
	assert.Nil(t, err, "transfer error")
	assert.False(t, proposed.Applied, "applied without the remote signature")

	err = c.Pending(&channels.IDArguments{ChannelID: id}, &pending)
	assert.Nil(t, err, "pending error")
	assert.True(t, pending.Pending, "no pending update")
	assert.Equal(t, uint64(1), pending.Nonce, "wrong nonce")
	assert.Equal(t, "transfer", pending.UpdateType, "wrong update type")
	assert.Equal(t, []account.PublicKey{local.PublicKey()}, pending.Signers, "wrong signers")
	assert.Equal(t, []account.PublicKey{remote.PublicKey()}, pending.Missing, "wrong missing signers")

	// the remote participant signs the published message
	message, err := hex.DecodeString(pending.Message)
	assert.Nil(t, err, "message hex error")

	var signed channel.ProposalResult
	err = c.Sign(&channels.SignArguments{
		ChannelID: id,
		Nonce:     pending.Nonce,
		Signer:    remote.PublicKey(),
		Signature: remote.Sign(message),
	}, &signed)
	assert.Nil(t, err, "sign error")
	assert.True(t, signed.Applied, "co-signed update not applied")

	err = c.Pending(&channels.IDArguments{ChannelID: id}, &pending)
	assert.Nil(t, err, "pending error")
	assert.False(t, pending.Pending, "pending update kept after co-signing")
}

func TestCollateral(t *testing.T) {
	alice := newKey(t)
	bob := newKey(t)
	c := setup(t, nil, alice, bob)
	defer teardown()

	var created channels.CreateReply
	err := c.Create(&channels.CreateArguments{
		Participant1: pointer(alice.PublicKey()),
		Participant2: pointer(bob.PublicKey()),
		Collateral:   1000,
	}, &created)
	if !assert.Nil(t, err, "create error") {
		t.FailNow()
	}

	var records channels.CollateralReply
	err = c.Collateral(&channels.IDArguments{ChannelID: created.ChannelID}, &records)
	assert.Nil(t, err, "collateral error")
	assert.True(t, records.Locked, "collateral not locked")
	if assert.NotNil(t, records.Collateral, "no lock record") {
		assert.Equal(t, uint64(1000), records.Collateral.Amount, "wrong locked amount")
		assert.Equal(t, created.L1TxID, records.Collateral.TxID, "wrong lock transaction")
	}
	assert.Equal(t, 0, len(records.Checkpoints), "checkpoints before close")
	assert.NotEqual(t, uint64(0), records.BlockHeight, "no block height")

	var closed channel.CloseResult
	err = c.Close(&channels.IDArguments{ChannelID: created.ChannelID}, &closed)
	assert.Nil(t, err, "close error")

	err = c.Collateral(&channels.IDArguments{ChannelID: created.ChannelID}, &records)
	assert.Nil(t, err, "collateral error")
	assert.False(t, records.Locked, "collateral locked after cooperative close")
	assert.Nil(t, records.Collateral, "lock record after release")
	if assert.Equal(t, 1, len(records.Checkpoints), "wrong checkpoint count") {
		assert.Equal(t, closed.CheckpointTxID, records.Checkpoints[0].TxID, "wrong checkpoint")
	}

	err = c.Collateral(&channels.IDArguments{ChannelID: merkle.NewRandomDigest()}, &records)
	assert.Equal(t, fault.ErrChannelNotFound, err, "unknown channel")
}

func pointer(key account.PublicKey) *account.PublicKey {
	return &key
}
