// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package market

import (
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/rpc/ratelimit"
)

const (
	rateLimitMarket = 200
	rateBurstMarket = 100
)

// Market - type for RPC calls
type Market struct {
	Log      *logger.L
	Limiter  *rate.Limiter
	Manager  *marketplace.Manager
	Channels *channel.Manager
	NodeKey  account.PublicKey
}

// New - create the marketplace service
func New(log *logger.L, manager *marketplace.Manager, channels *channel.Manager, nodeKey account.PublicKey) *Market {
	m := &Market{
		Log:      log,
		Limiter:  rate.NewLimiter(rateLimitMarket, rateBurstMarket),
		Manager:  manager,
		Channels: channels,
		NodeKey:  nodeKey,
	}
	channels.OnApplied(m.follow)
	return m
}

// propose an update to the channel only if the channel is active and
// already carries the record the update refers to
//
// returns true when the channel took the update, the stored record
// then changes in follow once every participant has signed
func (m *Market) mirror(channelID *merkle.Digest, present func(state *channel.State) bool, update channel.Update) (bool, error) {
	if nil == channelID {
		return false, nil
	}
	c, err := m.Channels.Get(*channelID)
	if nil != err {
		return false, err
	}
	if channel.Active != c.Status || !present(c.State) {
		m.Log.Debugf("channel: %s  not mirroring: %s", channelID, update.Tag())
		return false, nil
	}
	result, err := m.Channels.ProposeUpdate(*channelID, update)
	if nil != err {
		return false, err
	}
	m.Log.Debugf("channel: %s  %s  nonce: %d  applied: %t", channelID, update.Tag(), result.Nonce, result.Applied)
	return true, nil
}

// bring stored listings and orders up to date with a committed
// channel update
//
// records are only created with their own proposal so creation
// updates need nothing here
func (m *Market) follow(id merkle.Digest, signed *channel.SignedUpdate) {
	switch u := signed.Update.(type) {

	case *channel.UpdateListing:
		listing, err := m.Manager.Listing(u.ListingID)
		if nil != err || listing.Active == u.Active {
			return
		}
		if _, err := m.Manager.UpdateListing(u.ListingID, u.Active); nil != err {
			m.Log.Errorf("channel: %s  listing: %s  follow error: %s", id, u.ListingID, err)
		}

	case *channel.UpdateOrderStatus:
		order, err := m.Manager.Order(u.OrderID)
		if nil != err || order.Status == u.Status {
			return
		}
		if _, err := m.Manager.UpdateOrderStatus(u.OrderID, u.Status); nil != err {
			m.Log.Errorf("channel: %s  order: %s  follow error: %s", id, u.OrderID, err)
		}
	}
}

// ---

// CreateListingArguments - a new listing
type CreateListingArguments struct {
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Price        uint64             `json:"price"`
	Category     string             `json:"category"`
	Seller       *account.PublicKey `json:"seller"`
	SellerPubkey *account.PublicKey `json:"seller_pubkey"`
	IPFSHash     string             `json:"ipfs_hash"`
	ChannelID    *merkle.Digest     `json:"channel_id"`
}

// CreateListing - store a listing, and with a channel also propose it
// there
func (m *Market) CreateListing(arguments *CreateListingArguments, reply *marketplace.Listing) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}

	seller := m.NodeKey
	if nil != arguments.SellerPubkey {
		seller = *arguments.SellerPubkey
	} else if nil != arguments.Seller {
		seller = *arguments.Seller
	}

	if nil != arguments.ChannelID {
		if _, err := m.Channels.Info(*arguments.ChannelID); nil != err {
			return err
		}
	}

	var propose func(*marketplace.Listing) error
	if nil != arguments.ChannelID {
		propose = func(listing *marketplace.Listing) error {
			_, err := m.Channels.ProposeUpdate(*arguments.ChannelID, &channel.CreateListing{Listing: *listing})
			if nil != err {
				m.Log.Warnf("listing: %s  channel: %s  proposal error: %s", listing.ID, arguments.ChannelID, err)
			}
			return err
		}
	}

	listing, err := m.Manager.CreateListing(
		seller,
		arguments.Title,
		arguments.Description,
		arguments.Price,
		arguments.IPFSHash,
		arguments.Category,
		arguments.ChannelID,
		propose,
	)
	if nil != err {
		return err
	}

	*reply = *listing
	return nil
}

// ---

// ListingsArguments - empty arguments for all listings
type ListingsArguments struct{}

// Listings - all listings
func (m *Market) Listings(_ *ListingsArguments, reply *[]marketplace.Listing) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}

	listings, err := m.Manager.Listings()
	if nil != err {
		return err
	}
	*reply = listings
	return nil
}

// ---

// UpdateListingArguments - change the active flag of a listing
type UpdateListingArguments struct {
	ListingID merkle.Digest `json:"listing_id"`
	Active    bool          `json:"active"`
}

// UpdateListing - activate or withdraw a listing
func (m *Market) UpdateListing(arguments *UpdateListingArguments, reply *marketplace.Listing) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}
	if arguments.ListingID.IsZero() {
		return fault.MissingParameters
	}

	listing, err := m.Manager.Listing(arguments.ListingID)
	if nil != err {
		return err
	}

	present := func(state *channel.State) bool {
		for _, l := range state.Listings {
			if l.ID == arguments.ListingID {
				return true
			}
		}
		return false
	}
	update := &channel.UpdateListing{ListingID: arguments.ListingID, Active: arguments.Active}
	mirrored, err := m.mirror(listing.ChannelID, present, update)
	if nil != err {
		return err
	}

	if mirrored {
		listing, err = m.Manager.Listing(arguments.ListingID)
	} else {
		listing, err = m.Manager.UpdateListing(arguments.ListingID, arguments.Active)
	}
	if nil != err {
		return err
	}
	*reply = *listing
	return nil
}

// ---

// CreateOrderArguments - buy a listing
type CreateOrderArguments struct {
	ListingID   merkle.Digest      `json:"listing_id"`
	BuyerPubkey *account.PublicKey `json:"buyer_pubkey"`
	Buyer       *account.PublicKey `json:"buyer"`
	ChannelID   *merkle.Digest     `json:"channel_id"`
}

// CreateOrder - a pending order, and with a channel also propose it
// there
func (m *Market) CreateOrder(arguments *CreateOrderArguments, reply *marketplace.Order) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}
	if arguments.ListingID.IsZero() {
		return fault.MissingParameters
	}

	buyer := m.NodeKey
	if nil != arguments.BuyerPubkey {
		buyer = *arguments.BuyerPubkey
	} else if nil != arguments.Buyer {
		buyer = *arguments.Buyer
	}

	if nil != arguments.ChannelID {
		if _, err := m.Channels.Info(*arguments.ChannelID); nil != err {
			return err
		}
	}

	var propose func(*marketplace.Order) error
	if nil != arguments.ChannelID {
		propose = func(order *marketplace.Order) error {
			_, err := m.Channels.ProposeUpdate(*arguments.ChannelID, &channel.CreateOrder{Order: *order})
			if nil != err {
				m.Log.Warnf("order: %s  channel: %s  proposal error: %s", order.ID, arguments.ChannelID, err)
			}
			return err
		}
	}

	order, err := m.Manager.CreateOrder(arguments.ListingID, buyer, arguments.ChannelID, propose)
	if nil != err {
		return err
	}

	*reply = *order
	return nil
}

// ---

// OrdersArguments - empty arguments for all orders
type OrdersArguments struct{}

// Orders - all orders
func (m *Market) Orders(_ *OrdersArguments, reply *[]marketplace.Order) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}

	orders, err := m.Manager.Orders()
	if nil != err {
		return err
	}
	*reply = orders
	return nil
}

// ---

// UpdateOrderStatusArguments - move an order to a new status
type UpdateOrderStatusArguments struct {
	OrderID merkle.Digest `json:"order_id"`
	Status  string        `json:"status"`
}

// UpdateOrderStatus - apply a status transition
func (m *Market) UpdateOrderStatus(arguments *UpdateOrderStatusArguments, reply *marketplace.Order) error {
	if err := ratelimit.Limit(m.Limiter); nil != err {
		return err
	}
	if arguments.OrderID.IsZero() || "" == arguments.Status {
		return fault.MissingParameters
	}

	status, err := marketplace.ParseOrderStatus(arguments.Status)
	if nil != err {
		return err
	}

	order, err := m.Manager.Order(arguments.OrderID)
	if nil != err {
		return err
	}

	if !order.Status.CanTransition(status) {
		return fault.ErrInvalidStateTransition
	}

	present := func(state *channel.State) bool {
		for _, o := range state.Orders {
			if o.ID == arguments.OrderID {
				return true
			}
		}
		return false
	}
	update := &channel.UpdateOrderStatus{OrderID: arguments.OrderID, Status: status}
	mirrored, err := m.mirror(order.ChannelID, present, update)
	if nil != err {
		return err
	}

	if mirrored {
		order, err = m.Manager.Order(arguments.OrderID)
	} else {
		order, err = m.Manager.UpdateOrderStatus(arguments.OrderID, status)
	}
	if nil != err {
		return err
	}
	*reply = *order
	return nil
}
