// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/escrow"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/rpc/ratelimit"
)

const (
	rateLimitEscrow = 100
	rateBurstEscrow = 50
)

// Escrow - type for RPC calls
type Escrow struct {
	Log     *logger.L
	Limiter *rate.Limiter
	Manager *escrow.Manager
}

// New - create the escrow service
func New(log *logger.L, manager *escrow.Manager) *Escrow {
	return &Escrow{
		Log:     log,
		Limiter: rate.NewLimiter(rateLimitEscrow, rateBurstEscrow),
		Manager: manager,
	}
}

// StatusReply - the escrow after a transition
type StatusReply struct {
	ID     merkle.Digest `json:"id"`
	Status escrow.Status `json:"status"`
}

func (e *Escrow) transition(id merkle.Digest, reply *StatusReply, f func(id merkle.Digest) (*escrow.Escrow, error)) error {
	if err := ratelimit.Limit(e.Limiter); nil != err {
		return err
	}
	if id.IsZero() {
		return fault.MissingParameters
	}

	record, err := f(id)
	if nil != err {
		return err
	}
	reply.ID = record.ID
	reply.Status = record.Status
	return nil
}

// ---

// CreateArguments - a new escrow for a listing
type CreateArguments struct {
	ListingID     merkle.Digest     `json:"listing_id"`
	Buyer         account.PublicKey `json:"buyer"`
	Seller        account.PublicKey `json:"seller"`
	Amount        uint64            `json:"amount"`
	TimeoutPeriod uint64            `json:"timeout_period"`
}

// Create - open an escrow
func (e *Escrow) Create(arguments *CreateArguments, reply *StatusReply) error {
	if err := ratelimit.Limit(e.Limiter); nil != err {
		return err
	}
	if arguments.ListingID.IsZero() || arguments.Buyer.IsZero() || arguments.Seller.IsZero() {
		return fault.MissingParameters
	}

	record, err := e.Manager.Create(arguments.ListingID, arguments.Buyer, arguments.Seller, arguments.Amount, arguments.TimeoutPeriod)
	if nil != err {
		return err
	}
	reply.ID = record.ID
	reply.Status = record.Status
	return nil
}

// ---

// FundArguments - the base layer funding transaction
type FundArguments struct {
	EscrowID merkle.Digest `json:"escrow_id"`
	L1TxID   string        `json:"l1_tx_id"`
}

// Fund - record the funding transaction
func (e *Escrow) Fund(arguments *FundArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, func(id merkle.Digest) (*escrow.Escrow, error) {
		if "" == arguments.L1TxID {
			return nil, fault.MissingParameters
		}
		return e.Manager.Fund(id, arguments.L1TxID)
	})
}

// ---

// ShipArguments - seller shipped the goods
type ShipArguments struct {
	EscrowID     merkle.Digest `json:"escrow_id"`
	TrackingInfo string        `json:"tracking_info"`
}

// Ship - mark an escrow shipped
func (e *Escrow) Ship(arguments *ShipArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, func(id merkle.Digest) (*escrow.Escrow, error) {
		return e.Manager.Ship(id, arguments.TrackingInfo)
	})
}

// ---

// IDArguments - a single escrow
type IDArguments struct {
	EscrowID merkle.Digest `json:"escrow_id"`
}

// ConfirmDelivery - buyer received the goods, release the funds
func (e *Escrow) ConfirmDelivery(arguments *IDArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, e.Manager.ConfirmDelivery)
}

// ApproveRefund - seller accepts a refund request
func (e *Escrow) ApproveRefund(arguments *IDArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, e.Manager.ApproveRefund)
}

// Cancel - withdraw an escrow that was never funded
func (e *Escrow) Cancel(arguments *IDArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, e.Manager.Cancel)
}

// ---

// ReasonArguments - a transition that carries a reason
type ReasonArguments struct {
	EscrowID merkle.Digest `json:"escrow_id"`
	Reason   string        `json:"reason"`
}

// RequestRefund - buyer asks for the funds back
func (e *Escrow) RequestRefund(arguments *ReasonArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, func(id merkle.Digest) (*escrow.Escrow, error) {
		return e.Manager.RequestRefund(id, arguments.Reason)
	})
}

// RaiseDispute - either party escalates
func (e *Escrow) RaiseDispute(arguments *ReasonArguments, reply *StatusReply) error {
	return e.transition(arguments.EscrowID, reply, func(id merkle.Digest) (*escrow.Escrow, error) {
		return e.Manager.RaiseDispute(id, arguments.Reason)
	})
}

// ---

// Get - one escrow
func (e *Escrow) Get(arguments *IDArguments, reply *escrow.Escrow) error {
	if err := ratelimit.Limit(e.Limiter); nil != err {
		return err
	}
	if arguments.EscrowID.IsZero() {
		return fault.MissingParameters
	}

	record, err := e.Manager.Get(arguments.EscrowID)
	if nil != err {
		return err
	}
	*reply = *record
	return nil
}

// ListArguments - empty arguments for all escrows
type ListArguments struct{}

// List - all escrows
func (e *Escrow) List(_ *ListArguments, reply *[]*escrow.Escrow) error {
	if err := ratelimit.Limit(e.Limiter); nil != err {
		return err
	}

	records, err := e.Manager.List()
	if nil != err {
		return err
	}
	*reply = records
	return nil
}
