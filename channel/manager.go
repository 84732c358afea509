// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/messagebus"
	"github.com/tari-l2/tari-l2-node/storage"
	"github.com/tari-l2/tari-l2-node/varint"
)

// ProposalResult - outcome of proposing or co-signing an update
type ProposalResult struct {
	ChannelID           merkle.Digest `json:"channel_id"`
	Nonce               uint64        `json:"nonce"`
	Applied             bool          `json:"applied"`
	SignaturesCollected int           `json:"signatures_collected"`
	SignaturesRequired  int           `json:"signatures_required"`
}

// CloseResult - outcome of a close request
type CloseResult struct {
	ChannelID      merkle.Digest `json:"channel_id"`
	Status         Status        `json:"status"`
	CheckpointTxID string        `json:"checkpoint_tx_id"`
	UnlockTxID     string        `json:"unlock_tx_id,omitempty"`
}

// DisputeResult - outcome of a dispute
type DisputeResult struct {
	ChannelID   merkle.Digest `json:"channel_id"`
	Status      Status        `json:"status"`
	DisputeTxID string        `json:"dispute_tx_id"`
}

// Ack - a signature produced locally for a remote proposal
type Ack struct {
	ChannelID merkle.Digest
	Nonce     uint64
	Signer    account.PublicKey
	Signature account.Signature
}

// Applied - called with each update committed to a channel
//
// it runs with the manager locked so must not call back into it
type Applied func(id merkle.Digest, signed *SignedUpdate)

// Manager - all channels known to this node
type Manager struct {
	sync.RWMutex
	log      *logger.L
	l1       L1
	keys     []KeyRing
	channels map[merkle.Digest]*Channel
	pending  map[merkle.Digest]*SignedUpdate
	pool     storage.Handle
	updates  storage.Handle
	applied  []Applied
}

// NewManager - create a manager and load persisted channels
func NewManager(log *logger.L, l1 L1, keys ...KeyRing) (*Manager, error) {
	m := &Manager{
		log:      log,
		l1:       l1,
		keys:     keys,
		channels: make(map[merkle.Digest]*Channel),
		pending:  make(map[merkle.Digest]*SignedUpdate),
		pool:     storage.Pool.Channels,
		updates:  storage.Pool.PendingUpdates,
	}

	err := m.pool.NewFetchCursor().Map(func(key []byte, value []byte) error {
		c := &Channel{}
		if err := json.Unmarshal(value, c); nil != err {
			log.Errorf("channel: %x  decode error: %s", key, err)
			return fault.ErrSerialization
		}
		m.channels[c.ID] = c
		return nil
	})
	if nil != err {
		return nil, err
	}

	err = m.updates.NewFetchCursor().Map(func(key []byte, value []byte) error {
		var id merkle.Digest
		if err := merkle.DigestFromBytes(&id, key); nil != err {
			return err
		}
		signed := &SignedUpdate{}
		if err := json.Unmarshal(value, signed); nil != err {
			log.Errorf("pending: %x  decode error: %s", key, err)
			return fault.ErrSerialization
		}
		m.pending[id] = signed
		return nil
	})
	if nil != err {
		return nil, err
	}

	log.Infof("loaded channels: %d  pending updates: %d", len(m.channels), len(m.pending))
	return m, nil
}

// OnApplied - register a function to follow committed updates
func (m *Manager) OnApplied(f Applied) {
	m.Lock()
	m.applied = append(m.applied, f)
	m.Unlock()
}

func (m *Manager) localKey(key account.PublicKey) (*account.PrivateKey, bool) {
	for _, ring := range m.keys {
		if k, ok := ring.PrivateKey(key); ok {
			return k, true
		}
	}
	return nil, false
}

// all participants have keys on this node
func (m *Manager) allLocal(c *Channel) bool {
	for _, p := range c.Participants {
		if _, ok := m.localKey(p); !ok {
			return false
		}
	}
	return true
}

func (m *Manager) save(c *Channel) error {
	return m.pool.PutJSON(c.ID[:], c)
}

func (m *Manager) savePending(id merkle.Digest, signed *SignedUpdate) error {
	if nil == signed {
		delete(m.pending, id)
		m.updates.Delete(id[:])
		return nil
	}
	m.pending[id] = signed
	return m.updates.PutJSON(id[:], signed)
}

func (m *Manager) get(id merkle.Digest) (*Channel, error) {
	c, ok := m.channels[id]
	if !ok {
		return nil, fault.ErrChannelNotFound
	}
	return c, nil
}

func announce(c *Channel) {
	info, err := json.Marshal(c.Info())
	if nil != err {
		return
	}
	messagebus.Bus.P2P.Send(messagebus.Announce, info)
}

func broadcastAck(id merkle.Digest, nonce uint64, signer account.PublicKey, signature account.Signature) {
	messagebus.Bus.P2P.Send(messagebus.Ack, id[:], varint.Encode(nonce), signer[:], signature[:])
}

// OpenChannel - lock collateral on L1 and activate a new channel
func (m *Manager) OpenChannel(config *Config) (*Channel, error) {
	c, err := New(config)
	if nil != err {
		return nil, err
	}

	m.Lock()
	defer m.Unlock()

	if _, ok := m.channels[c.ID]; ok {
		return nil, fault.ErrChannelAlreadyExists
	}

	txID, err := m.l1.LockCollateral(c.ID, c.Collateral, c.Participants)
	if nil != err {
		m.log.Errorf("channel: %s  lock collateral error: %s", c.ID, err)
		return nil, err
	}
	c.L1LockTx = txID

	if err := c.Activate(); nil != err {
		return nil, err
	}
	if err := m.save(c); nil != err {
		return nil, err
	}
	m.channels[c.ID] = c

	m.log.Infof("opened channel: %s  participants: %d  collateral: %d  tx: %s", c.ID, len(c.Participants), c.Collateral, txID)
	announce(c)

	return c.Clone(), nil
}

// ProposeUpdate - sign an update with every local participant key
//
// the update is applied at once when all signatures are local,
// otherwise it waits as the pending update of the channel and is
// broadcast for co-signing; only one update may wait at a time
func (m *Manager) ProposeUpdate(id merkle.Digest, update Update) (*ProposalResult, error) {
	m.Lock()
	defer m.Unlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	if Active != c.Status {
		return nil, fault.ErrInvalidChannelState
	}
	if _, ok := m.pending[id]; ok {
		return nil, fault.ErrPendingUpdateExists
	}

	// reject an update that cannot apply before collecting signatures
	if _, err := c.State.Apply(update); nil != err {
		return nil, err
	}

	signed := NewSignedUpdate(update, c.State.Nonce+1)
	for _, p := range c.Participants {
		if key, ok := m.localKey(p); ok {
			signed.Sign(key)
		}
	}

	result := &ProposalResult{
		ChannelID:           id,
		Nonce:               signed.Nonce,
		SignaturesCollected: len(signed.Signatures),
		SignaturesRequired:  len(c.Participants),
	}

	if len(signed.Signatures) == len(c.Participants) {
		if err := m.commit(c, signed); nil != err {
			return nil, err
		}
		result.Applied = true
		messagebus.Bus.P2P.Send(messagebus.Proposal, id[:], signed.Pack())
		return result, nil
	}

	if err := m.savePending(id, signed); nil != err {
		return nil, err
	}
	m.log.Infof("channel: %s  nonce: %d  awaiting signatures: %d/%d", id, signed.Nonce, result.SignaturesCollected, result.SignaturesRequired)
	messagebus.Bus.P2P.Send(messagebus.Proposal, id[:], signed.Pack())
	return result, nil
}

// apply a complete update and persist
func (m *Manager) commit(c *Channel, signed *SignedUpdate) error {
	next := c.Clone()
	if err := next.ApplyUpdate(signed); nil != err {
		return err
	}
	if err := m.save(next); nil != err {
		return err
	}
	m.channels[c.ID] = next
	if p, ok := m.pending[c.ID]; ok && p.Nonce <= signed.Nonce {
		_ = m.savePending(c.ID, nil)
	}
	m.log.Infof("channel: %s  applied: %s  nonce: %d", c.ID, signed.Update.Tag(), signed.Nonce)
	for _, f := range m.applied {
		f(c.ID, signed)
	}
	return nil
}

// AddSignature - add a participant signature to the pending update
func (m *Manager) AddSignature(id merkle.Digest, nonce uint64, signer account.PublicKey, signature account.Signature) (*ProposalResult, error) {
	m.Lock()
	defer m.Unlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	signed, ok := m.pending[id]
	if !ok {
		return nil, fault.ErrNoPendingUpdate
	}
	if signed.Nonce != nonce {
		return nil, fault.ErrWrongNonce
	}
	if !c.IsParticipant(signer) {
		return nil, fault.ErrSignatureNotParticipant
	}

	result := &ProposalResult{
		ChannelID:          id,
		Nonce:              nonce,
		SignaturesRequired: len(c.Participants),
	}

	if existing, ok := signed.Signatures[signer]; ok && existing == signature {
		result.SignaturesCollected = len(signed.Signatures)
		return result, nil
	}
	if err := signed.AddSignature(signer, signature); nil != err {
		return nil, err
	}
	result.SignaturesCollected = len(signed.Signatures)

	if len(signed.Signatures) < len(c.Participants) {
		if err := m.savePending(id, signed); nil != err {
			return nil, err
		}
		return result, nil
	}

	if err := m.commit(c, signed); nil != err {
		return nil, err
	}
	result.Applied = true
	broadcastAck(id, nonce, signer, signature)
	return result, nil
}

// ReceiveProposal - handle a proposal gossiped by a peer
//
// a fully signed proposal is applied; otherwise it is co-signed with
// any local participant keys and the resulting acks returned for
// publication
func (m *Manager) ReceiveProposal(id merkle.Digest, signed *SignedUpdate) ([]Ack, error) {
	m.Lock()
	defer m.Unlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	if signed.Nonce <= c.State.Nonce {
		return nil, nil // already applied
	}
	if signed.Nonce != c.State.Nonce+1 {
		return nil, fault.ErrInvalidStateTransition
	}
	if _, err := c.State.Apply(signed.Update); nil != err {
		return nil, err
	}

	// keep only valid participant signatures
	message := signed.Message()
	for k, s := range signed.Signatures {
		if !c.IsParticipant(k) || nil != k.Verify(message, s) {
			delete(signed.Signatures, k)
		}
	}

	// merge with a matching local pending update
	if p, ok := m.pending[id]; ok && p.Nonce == signed.Nonce && string(p.Update.Pack()) == string(signed.Update.Pack()) {
		for k, s := range p.Signatures {
			signed.Signatures[k] = s
		}
	}

	acks := make([]Ack, 0)
	for _, p := range c.Participants {
		if _, ok := signed.Signatures[p]; ok {
			continue
		}
		if key, ok := m.localKey(p); ok {
			acks = append(acks, Ack{
				ChannelID: id,
				Nonce:     signed.Nonce,
				Signer:    p,
				Signature: signed.Sign(key),
			})
		}
	}

	if len(signed.Signatures) == len(c.Participants) {
		if err := m.commit(c, signed); nil != err {
			return nil, err
		}
		return acks, nil
	}
	if err := m.savePending(id, signed); nil != err {
		return nil, err
	}
	return acks, nil
}

// ApplyRemote - apply a fully signed update received from a peer
func (m *Manager) ApplyRemote(id merkle.Digest, signed *SignedUpdate) error {
	m.Lock()
	defer m.Unlock()

	c, err := m.get(id)
	if nil != err {
		return err
	}
	if signed.Nonce <= c.State.Nonce {
		return nil
	}
	return m.commit(c, signed)
}

// CloseChannel - checkpoint the final state and begin settlement
//
// when every participant key is held locally the close is
// cooperative and the collateral is released at once
func (m *Manager) CloseChannel(id merkle.Digest) (*CloseResult, error) {
	m.Lock()
	defer m.Unlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	if Active != c.Status {
		return nil, fault.ErrInvalidChannelState
	}

	next := c.Clone()
	checkpointTx, err := m.l1.CheckpointState(id, next.StateRoot(), next.LastSignatures())
	if nil != err {
		return nil, err
	}
	next.Checkpoints = append(next.Checkpoints, checkpointTx)
	if err := next.InitiateClose(time.Now()); nil != err {
		return nil, err
	}

	result := &CloseResult{
		ChannelID:      id,
		CheckpointTxID: checkpointTx,
	}

	if m.allLocal(next) {
		unlockTx, err := m.l1.UnlockCollateral(id, next.State.Balances)
		if nil != err {
			return nil, err
		}
		if err := next.Finalise(); nil != err {
			return nil, err
		}
		result.UnlockTxID = unlockTx
	}

	if err := m.save(next); nil != err {
		return nil, err
	}
	m.channels[id] = next
	_ = m.savePending(id, nil)
	result.Status = next.Status

	m.log.Infof("channel: %s  close: %s  checkpoint: %s", id, next.Status, checkpointTx)
	return result, nil
}

// DisputeChannel - challenge a closing channel with its latest state
func (m *Manager) DisputeChannel(id merkle.Digest, reason string) (*DisputeResult, error) {
	m.Lock()
	defer m.Unlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	if Closing != c.Status {
		return nil, fault.ErrInvalidChannelState
	}

	disputeTx, err := m.l1.SubmitDispute(id, c.StateRoot(), c.LastSignatures())
	if nil != err {
		return nil, err
	}

	next := c.Clone()
	if err := next.Challenge(); nil != err {
		return nil, err
	}
	if err := m.save(next); nil != err {
		return nil, err
	}
	m.channels[id] = next

	m.log.Warnf("channel: %s  disputed: %q  tx: %s", id, reason, disputeTx)
	return &DisputeResult{
		ChannelID:   id,
		Status:      next.Status,
		DisputeTxID: disputeTx,
	}, nil
}

// Settle - finalise every closing channel whose challenge period has
// elapsed, returns the number closed
func (m *Manager) Settle(now time.Time) int {
	m.Lock()
	defer m.Unlock()

	n := 0
	for id, c := range m.channels {
		if Closing != c.Status && Challenged != c.Status {
			continue
		}
		if now.Before(c.SettleAt()) {
			continue
		}
		unlockTx, err := m.l1.UnlockCollateral(id, c.State.Balances)
		if nil != err {
			m.log.Errorf("channel: %s  unlock error: %s", id, err)
			continue
		}
		next := c.Clone()
		if err := next.Finalise(); nil != err {
			continue
		}
		if err := m.save(next); nil != err {
			m.log.Errorf("channel: %s  save error: %s", id, err)
			continue
		}
		m.channels[id] = next
		n += 1
		m.log.Infof("channel: %s  settled  unlock: %s", id, unlockTx)
	}
	return n
}

// Get - copy of a channel
func (m *Manager) Get(id merkle.Digest) (*Channel, error) {
	m.RLock()
	defer m.RUnlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	return c.Clone(), nil
}

// Info - summary of a channel
func (m *Manager) Info(id merkle.Digest) (*Info, error) {
	m.RLock()
	defer m.RUnlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	return c.Info(), nil
}

// List - summaries of all channels, oldest first
func (m *Manager) List() []*Info {
	m.RLock()
	defer m.RUnlock()

	channels := make([]*Channel, 0, len(m.channels))
	for _, c := range m.channels {
		channels = append(channels, c)
	}
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].CreatedAt == channels[j].CreatedAt {
			return channels[i].ID.String() < channels[j].ID.String()
		}
		return channels[i].CreatedAt < channels[j].CreatedAt
	})

	infos := make([]*Info, 0, len(channels))
	for _, c := range channels {
		infos = append(infos, c.Info())
	}
	return infos
}

// Balance - balance of a participant in a channel
func (m *Manager) Balance(id merkle.Digest, participant account.PublicKey) (uint64, error) {
	m.RLock()
	defer m.RUnlock()

	c, err := m.get(id)
	if nil != err {
		return 0, err
	}
	return c.Balance(participant)
}

// History - all applied updates in order
func (m *Manager) History(id merkle.Digest) ([]*SignedUpdate, error) {
	m.RLock()
	defer m.RUnlock()

	c, err := m.get(id)
	if nil != err {
		return nil, err
	}
	return append([]*SignedUpdate{}, c.History...), nil
}

// PendingUpdate - the update awaiting signatures, nil if none
func (m *Manager) PendingUpdate(id merkle.Digest) (*SignedUpdate, error) {
	m.RLock()
	defer m.RUnlock()

	if _, err := m.get(id); nil != err {
		return nil, err
	}
	return m.pending[id], nil
}

// IsLocal - true if this node holds the key
func (m *Manager) IsLocal(key account.PublicKey) bool {
	_, ok := m.localKey(key)
	return ok
}
