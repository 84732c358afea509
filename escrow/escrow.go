// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package escrow - buyer funds held until delivery is confirmed
package escrow

import (
	"strings"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
)

// DefaultTimeoutPeriod - seconds after shipping before automatic release
const DefaultTimeoutPeriod = 86400

// Status - escrow lifecycle position
type Status uint8

// escrow states
const (
	Created Status = iota
	Funded
	Shipped
	Completed
	RefundRequested
	Refunded
	Disputed
	Cancelled
)

var statusNames = []string{
	Created:         "created",
	Funded:          "funded",
	Shipped:         "shipped",
	Completed:       "completed",
	RefundRequested: "refund_requested",
	Refunded:        "refunded",
	Disputed:        "disputed",
	Cancelled:       "cancelled",
}

// String - lower case name
func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// MarshalText - status as its name
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText - status from its name
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToLower(string(text))
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fault.InvalidParameter("unknown escrow status: %s", text)
}

// Escrow - funds held for one purchase
type Escrow struct {
	ID            merkle.Digest     `json:"id"`
	ListingID     merkle.Digest     `json:"listing_id"`
	Buyer         account.PublicKey `json:"buyer"`
	Seller        account.PublicKey `json:"seller"`
	Amount        uint64            `json:"amount"`
	Status        Status            `json:"status"`
	CreatedAt     uint64            `json:"created_at"`
	UpdatedAt     uint64            `json:"updated_at"`
	TimeoutPeriod uint64            `json:"timeout_period"`
	L1TxID        string            `json:"l1_tx_id,omitempty"`
	TrackingInfo  string            `json:"tracking_info,omitempty"`
	RefundReason  string            `json:"refund_reason,omitempty"`
	DisputeReason string            `json:"dispute_reason,omitempty"`
}

// New - an escrow awaiting funds
func New(listingID merkle.Digest, buyer account.PublicKey, seller account.PublicKey, amount uint64, timeoutPeriod uint64, now uint64) (*Escrow, error) {
	if 0 == amount {
		return nil, fault.ErrInvalidAmount
	}
	if 0 == timeoutPeriod {
		timeoutPeriod = DefaultTimeoutPeriod
	}
	return &Escrow{
		ID:            merkle.NewRandomDigest(),
		ListingID:     listingID,
		Buyer:         buyer,
		Seller:        seller,
		Amount:        amount,
		Status:        Created,
		CreatedAt:     now,
		UpdatedAt:     now,
		TimeoutPeriod: timeoutPeriod,
	}, nil
}

func (e *Escrow) move(verb string, to Status, now uint64, from ...Status) error {
	for _, s := range from {
		if s == e.Status {
			e.Status = to
			e.UpdatedAt = now
			return nil
		}
	}
	return fault.StatusError(verb, "escrow", e.Status)
}

// Fund - buyer funds locked on L1
func (e *Escrow) Fund(txID string, now uint64) error {
	if err := e.move("fund", Funded, now, Created); nil != err {
		return err
	}
	e.L1TxID = txID
	return nil
}

// MarkShipped - seller has sent the item
func (e *Escrow) MarkShipped(trackingInfo string, now uint64) error {
	if err := e.move("ship", Shipped, now, Funded); nil != err {
		return err
	}
	e.TrackingInfo = trackingInfo
	return nil
}

// ConfirmReceipt - buyer has the item, funds go to the seller
func (e *Escrow) ConfirmReceipt(now uint64) error {
	return e.move("confirm", Completed, now, Shipped)
}

// RequestRefund - buyer asks for the funds back
func (e *Escrow) RequestRefund(reason string, now uint64) error {
	if err := e.move("request refund for", RefundRequested, now, Funded, Shipped); nil != err {
		return err
	}
	e.RefundReason = reason
	return nil
}

// ApproveRefund - seller agrees to the refund
func (e *Escrow) ApproveRefund(now uint64) error {
	return e.move("approve refund for", Refunded, now, RefundRequested)
}

// RaiseDispute - either party contests the escrow
func (e *Escrow) RaiseDispute(reason string, now uint64) error {
	if err := e.move("dispute", Disputed, now, Created, Funded, Shipped, RefundRequested, Disputed); nil != err {
		return err
	}
	e.DisputeReason = reason
	return nil
}

// Cancel - abandon an escrow that was never funded
func (e *Escrow) Cancel(now uint64) error {
	return e.move("cancel", Cancelled, now, Created)
}

// AutoRelease - complete a shipped escrow whose timeout has passed
//
// returns true if the escrow changed
func (e *Escrow) AutoRelease(now uint64) bool {
	if Shipped != e.Status || now <= e.UpdatedAt || now-e.UpdatedAt <= e.TimeoutPeriod {
		return false
	}
	e.Status = Completed
	e.UpdatedAt = now
	return true
}
