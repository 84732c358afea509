// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/varint"
)

// TagType - type code for packed updates
type TagType uint64

// enumerate the possible update types
const (
	NullTag              TagType = iota // 0 never allowed
	TransferTag          TagType = iota // 1
	CreateListingTag     TagType = iota // 2
	UpdateListingTag     TagType = iota // 3
	CreateOrderTag       TagType = iota // 4
	UpdateOrderStatusTag TagType = iota // 5

	// this item must be last
	InvalidTag TagType = iota
)

var tagNames = map[TagType]string{
	TransferTag:          "transfer",
	CreateListingTag:     "create_listing",
	UpdateListingTag:     "update_listing",
	CreateOrderTag:       "create_order",
	UpdateOrderStatusTag: "update_order_status",
}

// String - name of the update type
func (t TagType) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return "invalid"
}

// Update - a change to a channel state
type Update interface {
	Tag() TagType
	Pack() Packed
	apply(state *State) error
}

// Transfer - move funds between two participants
type Transfer struct {
	From   account.PublicKey `json:"from"`
	To     account.PublicKey `json:"to"`
	Amount uint64            `json:"amount"`
}

// CreateListing - add a listing to the channel
type CreateListing struct {
	Listing marketplace.Listing `json:"listing"`
}

// UpdateListing - enable or disable a listing
type UpdateListing struct {
	ListingID merkle.Digest `json:"listing_id"`
	Active    bool          `json:"active"`
}

// CreateOrder - add an order against a channel listing
type CreateOrder struct {
	Order marketplace.Order `json:"order"`
}

// UpdateOrderStatus - move an order along the status graph
type UpdateOrderStatus struct {
	OrderID merkle.Digest           `json:"order_id"`
	Status  marketplace.OrderStatus `json:"status"`
}

// Tag - type codes
func (u *Transfer) Tag() TagType          { return TransferTag }
func (u *CreateListing) Tag() TagType     { return CreateListingTag }
func (u *UpdateListing) Tag() TagType     { return UpdateListingTag }
func (u *CreateOrder) Tag() TagType       { return CreateOrderTag }
func (u *UpdateOrderStatus) Tag() TagType { return UpdateOrderStatusTag }

// Pack - Varint64(tag) followed by fields in order as struct above
func (u *Transfer) Pack() Packed {
	message := Packed(varint.Encode(uint64(TransferTag)))
	message = appendBytes(message, u.From[:])
	message = appendBytes(message, u.To[:])
	return appendUint64(message, u.Amount)
}

// Pack - Varint64(tag) followed by the listing fields
func (u *CreateListing) Pack() Packed {
	message := Packed(varint.Encode(uint64(CreateListingTag)))
	return appendListing(message, &u.Listing)
}

// Pack - Varint64(tag) followed by fields in order as struct above
func (u *UpdateListing) Pack() Packed {
	message := Packed(varint.Encode(uint64(UpdateListingTag)))
	message = appendBytes(message, u.ListingID[:])
	return appendBool(message, u.Active)
}

// Pack - Varint64(tag) followed by the order fields
func (u *CreateOrder) Pack() Packed {
	message := Packed(varint.Encode(uint64(CreateOrderTag)))
	return appendOrder(message, &u.Order)
}

// Pack - Varint64(tag) followed by fields in order as struct above
func (u *UpdateOrderStatus) Pack() Packed {
	message := Packed(varint.Encode(uint64(UpdateOrderStatusTag)))
	message = appendBytes(message, u.OrderID[:])
	return appendUint64(message, uint64(u.Status))
}

func (u *Transfer) apply(state *State) error {
	if 0 == u.Amount {
		return fault.InvalidParameter("Transfer amount must be greater than zero")
	}
	available, ok := state.Balances[u.From]
	if !ok {
		return fault.ErrParticipantNotFound
	}
	received, ok := state.Balances[u.To]
	if !ok {
		return fault.ErrParticipantNotFound
	}
	if available < u.Amount {
		return fault.InsufficientBalanceError{Required: u.Amount, Available: available}
	}
	if u.From == u.To {
		return nil
	}
	total, err := addAmount(received, u.Amount)
	if nil != err {
		return err
	}
	state.Balances[u.From] = available - u.Amount
	state.Balances[u.To] = total
	return nil
}

func (u *CreateListing) apply(state *State) error {
	if nil != state.listing(u.Listing.ID) {
		return fault.ErrInvalidStateTransition
	}
	state.Listings = append(state.Listings, u.Listing)
	return nil
}

func (u *UpdateListing) apply(state *State) error {
	listing := state.listing(u.ListingID)
	if nil == listing {
		return fault.ErrInvalidStateTransition
	}
	listing.Active = u.Active
	return nil
}

func (u *CreateOrder) apply(state *State) error {
	listing := state.listing(u.Order.ListingID)
	if nil == listing || !listing.Active {
		return fault.ErrInvalidStateTransition
	}
	if nil != state.order(u.Order.ID) {
		return fault.ErrInvalidStateTransition
	}
	available := state.Balances[u.Order.Buyer]
	if available < u.Order.Amount {
		return fault.InsufficientBalanceError{Required: u.Order.Amount, Available: available}
	}
	state.Orders = append(state.Orders, u.Order)
	return nil
}

func (u *UpdateOrderStatus) apply(state *State) error {
	order := state.order(u.OrderID)
	if nil == order {
		return fault.ErrInvalidStateTransition
	}
	if !order.Status.CanTransition(u.Status) {
		return fault.ErrInvalidStateTransition
	}

	if marketplace.OrderCompleted == u.Status {
		available, ok := state.Balances[order.Buyer]
		if !ok {
			return fault.ErrParticipantNotFound
		}
		received, ok := state.Balances[order.Seller]
		if !ok {
			return fault.ErrParticipantNotFound
		}
		remaining, err := subAmount(available, order.Amount)
		if nil != err {
			return fault.InsufficientBalanceError{Required: order.Amount, Available: available}
		}
		if order.Buyer != order.Seller {
			total, err := addAmount(received, order.Amount)
			if nil != err {
				return err
			}
			state.Balances[order.Buyer] = remaining
			state.Balances[order.Seller] = total
		}
	}
	order.Status = u.Status
	return nil
}
