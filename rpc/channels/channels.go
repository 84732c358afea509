// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channels

import (
	"encoding/hex"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/rpc/ratelimit"
)

const (
	rateLimitChannels = 200
	rateBurstChannels = 100

	// challenge period for the two participant form
	defaultChallengePeriod = 86400
)

// L1 - base layer records of a channel
type L1 interface {
	LockedCollateral(merkle.Digest) (*l1client.Collateral, error)
	Checkpoints(merkle.Digest) ([]l1client.Checkpoint, error)
	BlockHeight() uint64
}

// Network - channel traffic with other nodes
type Network interface {
	RemoteInfo(merkle.Digest) (*channel.Info, bool)
	RequestInfo(merkle.Digest)
	RequestOpen(account.PublicKey, []account.PublicKey)
}

// Channels - type for RPC calls
type Channels struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Manager *channel.Manager
	NodeKey account.PublicKey
	l1      L1
	network Network
}

// New - create the channel service, network may be nil
func New(log *logger.L, manager *channel.Manager, nodeKey account.PublicKey, l1 L1, network Network) *Channels {
	return &Channels{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitChannels, rateBurstChannels),
		Manager: manager,
		NodeKey: nodeKey,
		l1:      l1,
		network: network,
	}
}

// ---

// ListArguments - empty arguments for the channel list
type ListArguments struct{}

// List - summaries of every channel
func (c *Channels) List(_ *ListArguments, reply *[]*channel.Info) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	*reply = c.Manager.List()
	return nil
}

// ---

// CreateArguments - either two participants and a total collateral, or
// an explicit participant list with initial balances
type CreateArguments struct {
	Participant1    *account.PublicKey           `json:"participant1"`
	Participant2    *account.PublicKey           `json:"participant2"`
	Collateral      uint64                       `json:"collateral"`
	Participants    []account.PublicKey          `json:"participants"`
	InitialBalances map[account.PublicKey]uint64 `json:"initial_balances"`
	ChallengePeriod uint64                       `json:"challenge_period"`
}

// CreateReply - the opened channel
type CreateReply struct {
	ID           merkle.Digest       `json:"id"`
	ChannelID    merkle.Digest       `json:"channel_id"`
	Status       channel.Status      `json:"status"`
	Participant1 *account.PublicKey  `json:"participant1,omitempty"`
	Participant2 *account.PublicKey  `json:"participant2,omitempty"`
	Participants []account.PublicKey `json:"participants"`
	Collateral   uint64              `json:"collateral"`
	L1TxID       string              `json:"l1_tx_id"`
}

// config - channel configuration from either argument form
func (arguments *CreateArguments) config() (*channel.Config, error) {
	if nil != arguments.Participant1 || nil != arguments.Participant2 {
		if nil == arguments.Participant1 || nil == arguments.Participant2 {
			return nil, fault.MissingParameters
		}
		p1 := *arguments.Participant1
		p2 := *arguments.Participant2
		half := arguments.Collateral / 2
		return &channel.Config{
			Participants: []account.PublicKey{p1, p2},
			InitialBalances: map[account.PublicKey]uint64{
				p1: arguments.Collateral - half,
				p2: half,
			},
			ChallengePeriod: defaultChallengePeriod,
		}, nil
	}

	if 0 == len(arguments.Participants) {
		return nil, fault.MissingParameters
	}
	period := arguments.ChallengePeriod
	if 0 == period {
		period = defaultChallengePeriod
	}
	balances := arguments.InitialBalances
	if nil == balances {
		balances = make(map[account.PublicKey]uint64)
	}
	return &channel.Config{
		Participants:    arguments.Participants,
		InitialBalances: balances,
		ChallengePeriod: period,
	}, nil
}

// Create - lock collateral and open a channel
func (c *Channels) Create(arguments *CreateArguments, reply *CreateReply) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}

	config, err := arguments.config()
	if nil != err {
		return err
	}

	ch, err := c.Manager.OpenChannel(config)
	if nil != err {
		return err
	}

	reply.ID = ch.ID
	reply.ChannelID = ch.ID
	reply.Status = ch.Status
	reply.Participants = ch.Participants
	reply.Collateral = ch.Collateral
	reply.L1TxID = ch.L1LockTx
	if 2 == len(ch.Participants) {
		reply.Participant1 = &ch.Participants[0]
		reply.Participant2 = &ch.Participants[1]
	}

	c.Log.Infof("created channel: %s", ch.ID)

	// other nodes must co-sign for keys not held here
	if nil != c.network {
		for _, p := range ch.Participants {
			if !c.Manager.IsLocal(p) {
				c.network.RequestOpen(c.NodeKey, ch.Participants)
				break
			}
		}
	}
	return nil
}

// ---

// IDArguments - a single channel
type IDArguments struct {
	ChannelID merkle.Digest `json:"channel_id"`
}

// Info - summary of one channel
func (c *Channels) Info(arguments *IDArguments, reply *channel.Info) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}

	info, err := c.Manager.Info(arguments.ChannelID)
	if fault.ErrChannelNotFound == err && nil != c.network {
		if remote, ok := c.network.RemoteInfo(arguments.ChannelID); ok {
			*reply = *remote
			return nil
		}
		// a later call may find the answer
		c.network.RequestInfo(arguments.ChannelID)
	}
	if nil != err {
		return err
	}
	*reply = *info
	return nil
}

// ---

// PendingReply - the update of a channel waiting for signatures
//
// Message is the hex of the bytes each participant signs
type PendingReply struct {
	ChannelID          merkle.Digest       `json:"channel_id"`
	Pending            bool                `json:"pending"`
	Nonce              uint64              `json:"nonce,omitempty"`
	UpdateType         string              `json:"update_type,omitempty"`
	Message            string              `json:"message,omitempty"`
	Signers            []account.PublicKey `json:"signers"`
	Missing            []account.PublicKey `json:"missing"`
	SignaturesRequired int                 `json:"signatures_required"`
}

// Pending - the update awaiting co-signatures
func (c *Channels) Pending(arguments *IDArguments, reply *PendingReply) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}

	ch, err := c.Manager.Get(arguments.ChannelID)
	if nil != err {
		return err
	}
	signed, err := c.Manager.PendingUpdate(arguments.ChannelID)
	if nil != err {
		return err
	}

	reply.ChannelID = arguments.ChannelID
	reply.SignaturesRequired = len(ch.Participants)
	reply.Signers = make([]account.PublicKey, 0, len(ch.Participants))
	reply.Missing = make([]account.PublicKey, 0, len(ch.Participants))
	if nil == signed {
		return nil
	}

	reply.Pending = true
	reply.Nonce = signed.Nonce
	reply.UpdateType = signed.Update.Tag().String()
	reply.Message = hex.EncodeToString(signed.Message())
	for _, p := range ch.Participants {
		if _, ok := signed.Signatures[p]; ok {
			reply.Signers = append(reply.Signers, p)
		} else {
			reply.Missing = append(reply.Missing, p)
		}
	}
	return nil
}

// ---

// CollateralReply - base layer records of a channel
type CollateralReply struct {
	ChannelID   merkle.Digest         `json:"channel_id"`
	Locked      bool                  `json:"locked"`
	Collateral  *l1client.Collateral  `json:"collateral,omitempty"`
	Checkpoints []l1client.Checkpoint `json:"checkpoints"`
	BlockHeight uint64                `json:"block_height"`
}

// Collateral - the lock and checkpoints recorded on L1
func (c *Channels) Collateral(arguments *IDArguments, reply *CollateralReply) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}
	if _, err := c.Manager.Info(arguments.ChannelID); nil != err {
		return err
	}

	collateral, err := c.l1.LockedCollateral(arguments.ChannelID)
	if nil != err && fault.ErrCollateralNotFound != err {
		return err
	}
	checkpoints, err := c.l1.Checkpoints(arguments.ChannelID)
	if nil != err {
		return err
	}

	reply.ChannelID = arguments.ChannelID
	reply.Locked = nil != collateral
	reply.Collateral = collateral
	reply.Checkpoints = checkpoints
	reply.BlockHeight = c.l1.BlockHeight()
	return nil
}

// ---

// TransferArguments - move an amount between channel participants
type TransferArguments struct {
	ChannelID merkle.Digest      `json:"channel_id"`
	Amount    uint64             `json:"amount"`
	From      *account.PublicKey `json:"from"`
	To        *account.PublicKey `json:"to"`
}

// Transfer - propose a transfer update
//
// the sender defaults to the node key and the receiver to the other
// participant of a two party channel
func (c *Channels) Transfer(arguments *TransferArguments, reply *channel.ProposalResult) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}
	if 0 == arguments.Amount {
		return fault.ErrInvalidAmount
	}

	ch, err := c.Manager.Get(arguments.ChannelID)
	if nil != err {
		return err
	}

	from := c.NodeKey
	if nil != arguments.From {
		from = *arguments.From
	}

	var to account.PublicKey
	if nil != arguments.To {
		to = *arguments.To
	} else {
		if 2 != len(ch.Participants) {
			return fault.InvalidParameter("Recipient required for a channel with %d participants", len(ch.Participants))
		}
		to = ch.Participants[0]
		if to == from {
			to = ch.Participants[1]
		}
	}

	result, err := c.Manager.ProposeUpdate(arguments.ChannelID, &channel.Transfer{
		From:   from,
		To:     to,
		Amount: arguments.Amount,
	})
	if nil != err {
		return err
	}
	*reply = *result
	return nil
}

// ---

// Close - checkpoint and close a channel
func (c *Channels) Close(arguments *IDArguments, reply *channel.CloseResult) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}

	result, err := c.Manager.CloseChannel(arguments.ChannelID)
	if nil != err {
		return err
	}
	*reply = *result
	return nil
}

// ---

// BalanceArguments - one participant of one channel
type BalanceArguments struct {
	ChannelID   merkle.Digest     `json:"channel_id"`
	Participant account.PublicKey `json:"participant"`
}

// Balance - current balance of a participant
func (c *Channels) Balance(arguments *BalanceArguments, reply *uint64) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() || arguments.Participant.IsZero() {
		return fault.MissingParameters
	}

	balance, err := c.Manager.Balance(arguments.ChannelID, arguments.Participant)
	if nil != err {
		return err
	}
	*reply = balance
	return nil
}

// ---

// History - all applied updates of a channel
func (c *Channels) History(arguments *IDArguments, reply *[]*channel.SignedUpdate) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}

	history, err := c.Manager.History(arguments.ChannelID)
	if nil != err {
		return err
	}
	*reply = history
	return nil
}

// ---

// SignArguments - a participant signature for the pending update
type SignArguments struct {
	ChannelID merkle.Digest     `json:"channel_id"`
	Nonce     uint64            `json:"nonce"`
	Signer    account.PublicKey `json:"signer"`
	Signature account.Signature `json:"signature"`
}

// Sign - add a signature to the pending update of a channel
func (c *Channels) Sign(arguments *SignArguments, reply *channel.ProposalResult) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() || arguments.Signer.IsZero() {
		return fault.MissingParameters
	}

	result, err := c.Manager.AddSignature(arguments.ChannelID, arguments.Nonce, arguments.Signer, arguments.Signature)
	if nil != err {
		return err
	}
	*reply = *result
	return nil
}

// ---

// DisputeArguments - challenge a closing channel
type DisputeArguments struct {
	ChannelID merkle.Digest `json:"channel_id"`
	Reason    string        `json:"reason"`
}

// Dispute - submit the latest state against a closing channel
func (c *Channels) Dispute(arguments *DisputeArguments, reply *channel.DisputeResult) error {
	if err := ratelimit.Limit(c.Limiter); nil != err {
		return err
	}
	if arguments.ChannelID.IsZero() {
		return fault.MissingParameters
	}

	result, err := c.Manager.DisputeChannel(arguments.ChannelID, arguments.Reason)
	if nil != err {
		return err
	}
	*reply = *result
	return nil
}
