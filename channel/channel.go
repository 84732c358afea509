// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"time"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
)

// DefaultChallengePeriod - seconds, one day
const DefaultChallengePeriod = 86400

// Config - parameters for opening a channel
type Config struct {
	Participants    []account.PublicKey          `json:"participants"`
	InitialBalances map[account.PublicKey]uint64 `json:"initial_balances"`
	ChallengePeriod uint64                       `json:"challenge_period"`
}

// Channel - a state channel and its signed history
type Channel struct {
	ID              merkle.Digest       `json:"id"`
	Participants    []account.PublicKey `json:"participants"`
	Collateral      uint64              `json:"collateral"`
	State           *State              `json:"state"`
	Status          Status              `json:"status"`
	ChallengePeriod uint64              `json:"challenge_period"`
	History         []*SignedUpdate     `json:"state_history"`
	CreatedAt       uint64              `json:"created_at"`
	ClosingAt       uint64              `json:"closing_at,omitempty"`
	L1LockTx        string              `json:"l1_lock_tx,omitempty"`
	Checkpoints     []string            `json:"checkpoints"`
}

// Info - summary of a channel
type Info struct {
	ID              merkle.Digest                `json:"id"`
	ChannelID       merkle.Digest                `json:"channel_id"`
	Participants    []account.PublicKey          `json:"participants"`
	Status          Status                       `json:"status"`
	Nonce           uint64                       `json:"nonce"`
	Collateral      uint64                       `json:"collateral"`
	NumListings     int                          `json:"num_listings"`
	NumOrders       int                          `json:"num_orders"`
	Balances        map[account.PublicKey]uint64 `json:"balances"`
	ChallengePeriod uint64                       `json:"challenge_period"`
	StateRoot       merkle.Digest                `json:"state_root"`
}

// ChannelID - identifier derived from the participants in order
func ChannelID(participants []account.PublicKey) merkle.Digest {
	return merkle.NewDigest(packParticipants(participants))
}

// New - a channel in the opening state
func New(config *Config) (*Channel, error) {
	if len(config.Participants) < 2 {
		return nil, fault.ErrNoParticipants
	}

	balances := make(map[account.PublicKey]uint64, len(config.Participants))
	for _, p := range config.Participants {
		if _, ok := balances[p]; ok {
			return nil, fault.ErrDuplicateParticipant
		}
		balances[p] = 0
	}

	collateral := uint64(0)
	for k, v := range config.InitialBalances {
		if _, ok := balances[k]; !ok {
			return nil, fault.ErrParticipantNotFound
		}
		balances[k] = v
		var err error
		collateral, err = addAmount(collateral, v)
		if nil != err {
			return nil, err
		}
	}

	participants := make([]account.PublicKey, len(config.Participants))
	copy(participants, config.Participants)

	return &Channel{
		ID:              ChannelID(participants),
		Participants:    participants,
		Collateral:      collateral,
		State:           &State{Balances: balances},
		Status:          Opening,
		ChallengePeriod: config.ChallengePeriod,
		History:         make([]*SignedUpdate, 0),
		CreatedAt:       uint64(time.Now().Unix()),
		Checkpoints:     make([]string, 0),
	}, nil
}

// Activate - opening → active
func (c *Channel) Activate() error {
	if Opening != c.Status {
		return fault.ErrInvalidChannelState
	}
	c.Status = Active
	return nil
}

// InitiateClose - active → closing
func (c *Channel) InitiateClose(now time.Time) error {
	if Active != c.Status {
		return fault.ErrInvalidChannelState
	}
	c.Status = Closing
	c.ClosingAt = uint64(now.Unix())
	return nil
}

// Challenge - closing → challenged
func (c *Channel) Challenge() error {
	if Closing != c.Status {
		return fault.ErrInvalidChannelState
	}
	c.Status = Challenged
	return nil
}

// Finalise - closing or challenged → closed
func (c *Channel) Finalise() error {
	if Closing != c.Status && Challenged != c.Status {
		return fault.ErrInvalidChannelState
	}
	c.Status = Closed
	return nil
}

// SettleAt - time after which a closing channel may be finalised
func (c *Channel) SettleAt() time.Time {
	return time.Unix(int64(c.ClosingAt+c.ChallengePeriod), 0)
}

// IsParticipant - check membership
func (c *Channel) IsParticipant(key account.PublicKey) bool {
	for _, p := range c.Participants {
		if p == key {
			return true
		}
	}
	return false
}

// ApplyUpdate - verify and commit a fully signed update
//
// on any error the state is unchanged
func (c *Channel) ApplyUpdate(signed *SignedUpdate) error {
	if Active != c.Status {
		return fault.ErrInvalidChannelState
	}
	if signed.Nonce != c.State.Nonce+1 {
		return fault.ErrInvalidStateTransition
	}
	if err := signed.Verify(c.Participants); nil != err {
		return err
	}
	next, err := c.State.Apply(signed.Update)
	if nil != err {
		return err
	}
	c.State = next
	c.History = append(c.History, signed)
	return nil
}

// StateRoot - digest of the current state
func (c *Channel) StateRoot() merkle.Digest {
	return c.State.Root()
}

// Balance - current balance of a participant
func (c *Channel) Balance(participant account.PublicKey) (uint64, error) {
	balance, ok := c.State.Balances[participant]
	if !ok {
		return 0, fault.ErrParticipantNotFound
	}
	return balance, nil
}

// LastSignatures - signatures of the latest applied update
func (c *Channel) LastSignatures() []account.Signature {
	if 0 == len(c.History) {
		return []account.Signature{}
	}
	return c.History[len(c.History)-1].SignatureList()
}

// Info - summary of the channel
func (c *Channel) Info() *Info {
	balances := make(map[account.PublicKey]uint64, len(c.State.Balances))
	for k, v := range c.State.Balances {
		balances[k] = v
	}
	participants := make([]account.PublicKey, len(c.Participants))
	copy(participants, c.Participants)

	return &Info{
		ID:              c.ID,
		ChannelID:       c.ID,
		Participants:    participants,
		Status:          c.Status,
		Nonce:           c.State.Nonce,
		Collateral:      c.Collateral,
		NumListings:     len(c.State.Listings),
		NumOrders:       len(c.State.Orders),
		Balances:        balances,
		ChallengePeriod: c.ChallengePeriod,
		StateRoot:       c.StateRoot(),
	}
}

// Clone - copy safe to hand outside the manager
//
// signed updates in the history are shared, they are never modified
// once applied
func (c *Channel) Clone() *Channel {
	clone := *c
	clone.State = c.State.Clone()
	clone.Participants = append([]account.PublicKey{}, c.Participants...)
	clone.History = append([]*SignedUpdate{}, c.History...)
	clone.Checkpoints = append([]string{}, c.Checkpoints...)
	return &clone
}
