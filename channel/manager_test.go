// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel_test

import (
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/messagebus"
	"github.com/tari-l2/tari-l2-node/storage"
)

const testDirectory = "testing"

func setup(t *testing.T) *l1client.Client {
	os.RemoveAll(testDirectory)
	_ = os.Mkdir(testDirectory, 0700)
	_ = logger.Initialise(logger.Configuration{
		Directory: testDirectory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})
	if err := storage.Initialise(testDirectory+"/test.leveldb", storage.ReadWrite); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	messagebus.Bus.P2P.Drain()
	return l1client.New(logger.New("testing"), l1client.Esmeralda, "")
}

func teardown(t *testing.T) {
	storage.Finalise()
	logger.Finalise()
	os.RemoveAll(testDirectory)
}

func twoParty(alice account.PublicKey, bob account.PublicKey, challenge uint64) *channel.Config {
	return &channel.Config{
		Participants: []account.PublicKey{alice, bob},
		InitialBalances: map[account.PublicKey]uint64{
			alice: 600,
			bob:   400,
		},
		ChallengePeriod: challenge,
	}
}

func TestManagerLocalChannel(t *testing.T) {
	l1 := setup(t)
	defer teardown(t)

	alice := newKey(t)
	bob := newKey(t)
	m, err := channel.NewManager(logger.New("testing"), l1, channel.Keys{alice, bob})
	assert.Nil(t, err, "manager error")

	c, err := m.OpenChannel(twoParty(alice.PublicKey(), bob.PublicKey(), 60))
	assert.Nil(t, err, "open error")
	assert.Equal(t, channel.Active, c.Status, "channel not active")
	assert.NotEqual(t, "", c.L1LockTx, "no lock transaction")

	announced := <-messagebus.Bus.P2P.Chan()
	assert.Equal(t, messagebus.Announce, announced.Command, "channel not announced")

	_, err = m.OpenChannel(twoParty(alice.PublicKey(), bob.PublicKey(), 60))
	assert.Equal(t, fault.ErrChannelAlreadyExists, err, "duplicate channel")

	result, err := m.ProposeUpdate(c.ID, &channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 100})
	assert.Nil(t, err, "propose error")
	assert.True(t, result.Applied, "local update not applied")
	assert.Equal(t, uint64(1), result.Nonce, "wrong nonce")
	assert.Equal(t, 2, result.SignaturesCollected, "wrong signature count")

	balance, err := m.Balance(c.ID, bob.PublicKey())
	assert.Nil(t, err, "balance error")
	assert.Equal(t, uint64(500), balance, "transfer not applied")

	_, err = m.ProposeUpdate(c.ID, &channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 10000})
	assert.True(t, fault.IsErrInsufficientBalance(err), "overdraw proposed")

	history, err := m.History(c.ID)
	assert.Nil(t, err, "history error")
	assert.Equal(t, 1, len(history), "wrong history length")

	closed, err := m.CloseChannel(c.ID)
	assert.Nil(t, err, "close error")
	assert.Equal(t, channel.Closed, closed.Status, "cooperative close not final")
	assert.NotEqual(t, "", closed.CheckpointTxID, "no checkpoint")
	assert.NotEqual(t, "", closed.UnlockTxID, "no unlock")

	_, err = l1.LockedCollateral(c.ID)
	assert.Equal(t, fault.ErrCollateralNotFound, err, "collateral still locked")

	_, err = m.CloseChannel(c.ID)
	assert.Equal(t, fault.ErrInvalidChannelState, err, "closed twice")

	_, err = m.Get(merkle.NewRandomDigest())
	assert.Equal(t, fault.ErrChannelNotFound, err, "unknown channel found")
}

func TestManagerRemoteSignature(t *testing.T) {
	l1 := setup(t)
	defer teardown(t)

	alice := newKey(t)
	bob := newKey(t)
	m, err := channel.NewManager(logger.New("testing"), l1, channel.Keys{alice})
	assert.Nil(t, err, "manager error")

	applied := make([]uint64, 0)
	m.OnApplied(func(id merkle.Digest, signed *channel.SignedUpdate) {
		applied = append(applied, signed.Nonce)
	})

	c, err := m.OpenChannel(twoParty(alice.PublicKey(), bob.PublicKey(), 0))
	assert.Nil(t, err, "open error")

	transfer := &channel.Transfer{From: bob.PublicKey(), To: alice.PublicKey(), Amount: 50}
	result, err := m.ProposeUpdate(c.ID, transfer)
	assert.Nil(t, err, "propose error")
	assert.False(t, result.Applied, "applied without remote signature")
	assert.Equal(t, 1, result.SignaturesCollected, "wrong collected count")
	assert.Equal(t, 2, result.SignaturesRequired, "wrong required count")

	pending, err := m.PendingUpdate(c.ID)
	assert.Nil(t, err, "pending error")
	assert.NotNil(t, pending, "no pending update")
	assert.Equal(t, 0, len(applied), "pending update reported applied")

	_, err = m.ProposeUpdate(c.ID, &channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 1})
	assert.Equal(t, fault.ErrPendingUpdateExists, err, "second update proposed while one waits")

	// bob signs remotely
	remote := channel.NewSignedUpdate(transfer, 1)
	signature := remote.Sign(bob)

	_, err = m.AddSignature(c.ID, 2, bob.PublicKey(), signature)
	assert.Equal(t, fault.ErrWrongNonce, err, "wrong nonce accepted")

	stranger := newKey(t)
	_, err = m.AddSignature(c.ID, 1, stranger.PublicKey(), remote.Sign(stranger))
	assert.Equal(t, fault.ErrSignatureNotParticipant, err, "stranger signature accepted")

	_, err = m.AddSignature(c.ID, 1, bob.PublicKey(), account.Signature{})
	assert.Equal(t, fault.ErrInvalidSignature, err, "bad signature accepted")

	result, err = m.AddSignature(c.ID, 1, bob.PublicKey(), signature)
	assert.Nil(t, err, "add signature error")
	assert.True(t, result.Applied, "complete update not applied")
	assert.Equal(t, []uint64{1}, applied, "commit not reported")

	balance, err := m.Balance(c.ID, alice.PublicKey())
	assert.Nil(t, err, "balance error")
	assert.Equal(t, uint64(650), balance, "transfer not applied")

	pending, err = m.PendingUpdate(c.ID)
	assert.Nil(t, err, "pending error")
	assert.Nil(t, pending, "pending update kept")

	// bob's key is remote so the close waits for the challenge period
	closed, err := m.CloseChannel(c.ID)
	assert.Nil(t, err, "close error")
	assert.Equal(t, channel.Closing, closed.Status, "non cooperative close final")

	_, err = m.DisputeChannel(c.ID, "stale state")
	assert.Equal(t, fault.ErrL1ConnectionRequired, err, "offline dispute accepted")

	assert.Equal(t, 1, m.Settle(time.Now().Add(time.Second)), "channel not settled")
	info, err := m.Info(c.ID)
	assert.Nil(t, err, "info error")
	assert.Equal(t, channel.Closed, info.Status, "settled channel not closed")
	assert.Equal(t, 0, m.Settle(time.Now().Add(time.Hour)), "settled twice")
}

func TestManagerReceiveProposal(t *testing.T) {
	l1 := setup(t)
	defer teardown(t)

	alice := newKey(t)
	bob := newKey(t)
	m, err := channel.NewManager(logger.New("testing"), l1, channel.Keys{bob})
	assert.Nil(t, err, "manager error")

	c, err := m.OpenChannel(twoParty(alice.PublicKey(), bob.PublicKey(), 60))
	assert.Nil(t, err, "open error")

	// alice proposes from another node
	signed := channel.NewSignedUpdate(&channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 25}, 1)
	signed.Sign(alice)

	acks, err := m.ReceiveProposal(c.ID, signed)
	assert.Nil(t, err, "receive error")
	assert.Equal(t, 1, len(acks), "wrong ack count")
	assert.Equal(t, bob.PublicKey(), acks[0].Signer, "wrong signer")

	info, err := m.Info(c.ID)
	assert.Nil(t, err, "info error")
	assert.Equal(t, uint64(1), info.Nonce, "proposal not applied")

	// a repeat is ignored
	acks, err = m.ReceiveProposal(c.ID, signed)
	assert.Nil(t, err, "repeat error")
	assert.Equal(t, 0, len(acks), "repeat signed again")

	_, err = m.ReceiveProposal(merkle.NewRandomDigest(), signed)
	assert.Equal(t, fault.ErrChannelNotFound, err, "unknown channel")
}

func TestManagerReload(t *testing.T) {
	l1 := setup(t)
	defer teardown(t)

	alice := newKey(t)
	bob := newKey(t)
	m, err := channel.NewManager(logger.New("testing"), l1, channel.Keys{alice})
	assert.Nil(t, err, "manager error")

	c, err := m.OpenChannel(twoParty(alice.PublicKey(), bob.PublicKey(), 60))
	assert.Nil(t, err, "open error")
	_, err = m.ProposeUpdate(c.ID, &channel.Transfer{From: alice.PublicKey(), To: bob.PublicKey(), Amount: 1})
	assert.Nil(t, err, "propose error")

	reloaded, err := channel.NewManager(logger.New("testing"), l1, channel.Keys{alice})
	assert.Nil(t, err, "reload error")

	infos := reloaded.List()
	assert.Equal(t, 1, len(infos), "channel not persisted")
	assert.Equal(t, c.ID, infos[0].ChannelID, "wrong channel")
	assert.Equal(t, channel.Active, infos[0].Status, "wrong status")

	pending, err := reloaded.PendingUpdate(c.ID)
	assert.Nil(t, err, "pending error")
	assert.NotNil(t, pending, "pending update not persisted")
	assert.Equal(t, uint64(1), pending.Nonce, "wrong pending nonce")
}
