// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/storage"
)

// Manager - persistent listings, orders and profiles
type Manager struct {
	sync.RWMutex
	log      *logger.L
	listings storage.Handle
	orders   storage.Handle
	profiles storage.Handle
}

// NewManager - manager over the opened storage pools
func NewManager(log *logger.L) *Manager {
	return &Manager{
		log:      log,
		listings: storage.Pool.Listings,
		orders:   storage.Pool.Orders,
		profiles: storage.Pool.Profiles,
	}
}

func timestamp() uint64 {
	return uint64(time.Now().Unix())
}

// CreateListing - store a new active listing
//
// a non-nil propose is called with the listing before it is stored
// and any error abandons it
func (m *Manager) CreateListing(seller account.PublicKey, title string, description string, price uint64, ipfsHash string, category string, channelID *merkle.Digest, propose func(*Listing) error) (*Listing, error) {
	if "" == strings.TrimSpace(title) {
		return nil, fault.ErrMissingTitle
	}
	if 0 == price {
		return nil, fault.ErrInvalidAmount
	}

	listing := NewListing(seller, title, description, price, ipfsHash, category, channelID, timestamp())

	m.Lock()
	defer m.Unlock()

	if nil != propose {
		if err := propose(&listing); nil != err {
			return nil, err
		}
	}
	if err := m.listings.PutJSON(listing.ID[:], listing); nil != err {
		return nil, err
	}
	m.log.Infof("listing: %s  seller: %s  price: %d", listing.ID, seller, price)
	return &listing, nil
}

// Listing - fetch one listing
func (m *Manager) Listing(id merkle.Digest) (*Listing, error) {
	m.RLock()
	defer m.RUnlock()
	return m.getListing(id)
}

func (m *Manager) getListing(id merkle.Digest) (*Listing, error) {
	var listing Listing
	found, err := m.listings.GetJSON(id[:], &listing)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrListingNotFound
	}
	return &listing, nil
}

// Listings - all listings, oldest first
func (m *Manager) Listings() ([]Listing, error) {
	m.RLock()
	defer m.RUnlock()

	listings := make([]Listing, 0)
	err := m.listings.NewFetchCursor().Map(func(key []byte, value []byte) error {
		var l Listing
		if err := json.Unmarshal(value, &l); nil != err {
			m.log.Errorf("listing: %x  decode error: %s", key, err)
			return fault.ErrSerialization
		}
		listings = append(listings, l)
		return nil
	})
	if nil != err {
		return nil, err
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return listings[i].CreatedAt < listings[j].CreatedAt
	})
	return listings, nil
}

// UpdateListing - change the active flag
func (m *Manager) UpdateListing(id merkle.Digest, active bool) (*Listing, error) {
	m.Lock()
	defer m.Unlock()

	listing, err := m.getListing(id)
	if nil != err {
		return nil, err
	}
	listing.Active = active
	if err := m.listings.PutJSON(id[:], listing); nil != err {
		return nil, err
	}
	return listing, nil
}

// CreateOrder - a pending order against an active listing
//
// propose is handled as for CreateListing
func (m *Manager) CreateOrder(listingID merkle.Digest, buyer account.PublicKey, channelID *merkle.Digest, propose func(*Order) error) (*Order, error) {
	m.Lock()
	defer m.Unlock()

	listing, err := m.getListing(listingID)
	if nil != err {
		return nil, err
	}
	if !listing.Active {
		return nil, fault.ErrListingInactive
	}

	order := NewOrder(listing, buyer, channelID, timestamp())
	if nil != propose {
		if err := propose(&order); nil != err {
			return nil, err
		}
	}
	if err := m.orders.PutJSON(order.ID[:], order); nil != err {
		return nil, err
	}
	m.log.Infof("order: %s  listing: %s  amount: %d", order.ID, listingID, order.Amount)
	return &order, nil
}

// Order - fetch one order
func (m *Manager) Order(id merkle.Digest) (*Order, error) {
	m.RLock()
	defer m.RUnlock()
	return m.getOrder(id)
}

func (m *Manager) getOrder(id merkle.Digest) (*Order, error) {
	var order Order
	found, err := m.orders.GetJSON(id[:], &order)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrOrderNotFound
	}
	return &order, nil
}

// Orders - all orders, oldest first
func (m *Manager) Orders() ([]Order, error) {
	m.RLock()
	defer m.RUnlock()

	orders := make([]Order, 0)
	err := m.orders.NewFetchCursor().Map(func(key []byte, value []byte) error {
		var o Order
		if err := json.Unmarshal(value, &o); nil != err {
			m.log.Errorf("order: %x  decode error: %s", key, err)
			return fault.ErrSerialization
		}
		orders = append(orders, o)
		return nil
	})
	if nil != err {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt < orders[j].CreatedAt
	})
	return orders, nil
}

// UpdateOrderStatus - move an order along the status graph
//
// completing an order counts a finished transaction on both profiles
func (m *Manager) UpdateOrderStatus(id merkle.Digest, status OrderStatus) (*Order, error) {
	m.Lock()
	defer m.Unlock()

	order, err := m.getOrder(id)
	if nil != err {
		return nil, err
	}
	if order.Status.IsTerminal() {
		m.log.Warnf("order: %s  already closed: %s", id, order.Status)
		return nil, fault.ErrInvalidStateTransition
	}
	if !order.Status.CanTransition(status) {
		m.log.Warnf("order: %s  rejected transition: %s → %s", id, order.Status, status)
		return nil, fault.ErrInvalidStateTransition
	}

	order.Status = status
	order.UpdatedAt = timestamp()

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return nil, err
	}
	if err := trx.PutJSON(storage.Pool.Orders, id[:], order); nil != err {
		trx.Abort()
		return nil, err
	}

	if OrderCompleted == status {
		for _, key := range []account.PublicKey{order.Buyer, order.Seller} {
			profile, err := m.getProfile(key)
			if fault.ErrProfileNotFound == err {
				continue
			}
			if nil != err {
				trx.Abort()
				return nil, err
			}
			profile.TransactionsCompleted += 1
			if err := trx.PutJSON(storage.Pool.Profiles, key[:], profile); nil != err {
				trx.Abort()
				return nil, err
			}
		}
	}

	if err := trx.Commit(); nil != err {
		return nil, err
	}
	m.log.Infof("order: %s  status: %s", id, status)
	return order, nil
}

// CreateProfile - register a new profile
func (m *Manager) CreateProfile(key account.PublicKey, name string) (*Profile, error) {
	m.Lock()
	defer m.Unlock()

	if m.profiles.Has(key[:]) {
		return nil, fault.ErrProfileExists
	}
	profile := &Profile{
		PublicKey: key,
		Name:      name,
		CreatedAt: timestamp(),
	}
	if err := m.profiles.PutJSON(key[:], profile); nil != err {
		return nil, err
	}
	return profile, nil
}

// Profile - fetch one profile
func (m *Manager) Profile(key account.PublicKey) (*Profile, error) {
	m.RLock()
	defer m.RUnlock()
	return m.getProfile(key)
}

func (m *Manager) getProfile(key account.PublicKey) (*Profile, error) {
	var profile Profile
	found, err := m.profiles.GetJSON(key[:], &profile)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrProfileNotFound
	}
	return &profile, nil
}

// UpdateProfile - apply a change signed by the profile owner
func (m *Manager) UpdateProfile(action *SignedAction) (*Profile, error) {
	m.Lock()
	defer m.Unlock()

	profile, err := m.getProfile(action.PublicKey)
	if nil != err {
		return nil, err
	}
	if err := action.VerifyOwnership(profile.PublicKey); nil != err {
		return nil, err
	}

	var update ProfileUpdate
	if err := json.Unmarshal(action.Payload, &update); nil != err {
		return nil, fault.InvalidParameter("invalid profile payload: %s", err)
	}
	profile.apply(&update)

	if err := m.profiles.PutJSON(profile.PublicKey[:], profile); nil != err {
		return nil, err
	}
	return profile, nil
}
