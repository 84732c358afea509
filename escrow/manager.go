// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package escrow

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/merkle"
	"github.com/tari-l2/tari-l2-node/storage"
)

// Verifier - checks a base layer funding transaction
type Verifier interface {
	VerifyTransaction(txID string) bool
}

// Manager - persistent escrows
type Manager struct {
	sync.Mutex
	log            *logger.L
	verifier       Verifier
	pool           storage.Handle
	defaultTimeout uint64
}

// NewManager - manager over the Escrows pool
func NewManager(log *logger.L, verifier Verifier, defaultTimeout uint64) *Manager {
	if 0 == defaultTimeout {
		defaultTimeout = DefaultTimeoutPeriod
	}
	return &Manager{
		log:            log,
		verifier:       verifier,
		pool:           storage.Pool.Escrows,
		defaultTimeout: defaultTimeout,
	}
}

func now() uint64 {
	return uint64(time.Now().Unix())
}

// Create - a new escrow in the created state
func (m *Manager) Create(listingID merkle.Digest, buyer account.PublicKey, seller account.PublicKey, amount uint64, timeoutPeriod uint64) (*Escrow, error) {
	if 0 == timeoutPeriod {
		timeoutPeriod = m.defaultTimeout
	}
	e, err := New(listingID, buyer, seller, amount, timeoutPeriod, now())
	if nil != err {
		return nil, err
	}

	m.Lock()
	defer m.Unlock()

	if err := m.pool.PutJSON(e.ID[:], e); nil != err {
		return nil, err
	}
	m.log.Infof("escrow: %s  listing: %s  amount: %d", e.ID, listingID, amount)
	return e, nil
}

func (m *Manager) get(id merkle.Digest) (*Escrow, error) {
	e := &Escrow{}
	found, err := m.pool.GetJSON(id[:], e)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrEscrowNotFound
	}
	return e, nil
}

// run one transition and persist the result
func (m *Manager) update(id merkle.Digest, transition func(e *Escrow) error) (*Escrow, error) {
	m.Lock()
	defer m.Unlock()

	e, err := m.get(id)
	if nil != err {
		return nil, err
	}
	if err := transition(e); nil != err {
		return nil, err
	}
	if err := m.pool.PutJSON(id[:], e); nil != err {
		return nil, err
	}
	m.log.Infof("escrow: %s  status: %s", id, e.Status)
	return e, nil
}

// Fund - record the L1 funding transaction
func (m *Manager) Fund(id merkle.Digest, txID string) (*Escrow, error) {
	if !m.verifier.VerifyTransaction(txID) {
		return nil, fault.InvalidParameter("unknown L1 transaction: %s", txID)
	}
	return m.update(id, func(e *Escrow) error {
		return e.Fund(txID, now())
	})
}

// Ship - seller marks the item shipped
func (m *Manager) Ship(id merkle.Digest, trackingInfo string) (*Escrow, error) {
	return m.update(id, func(e *Escrow) error {
		return e.MarkShipped(trackingInfo, now())
	})
}

// ConfirmDelivery - buyer confirms receipt
func (m *Manager) ConfirmDelivery(id merkle.Digest) (*Escrow, error) {
	return m.update(id, func(e *Escrow) error {
		return e.ConfirmReceipt(now())
	})
}

// RequestRefund - buyer asks for a refund
func (m *Manager) RequestRefund(id merkle.Digest, reason string) (*Escrow, error) {
	return m.update(id, func(e *Escrow) error {
		return e.RequestRefund(reason, now())
	})
}

// ApproveRefund - seller approves the refund
func (m *Manager) ApproveRefund(id merkle.Digest) (*Escrow, error) {
	return m.update(id, func(e *Escrow) error {
		return e.ApproveRefund(now())
	})
}

// RaiseDispute - contest the escrow
func (m *Manager) RaiseDispute(id merkle.Digest, reason string) (*Escrow, error) {
	return m.update(id, func(e *Escrow) error {
		return e.RaiseDispute(reason, now())
	})
}

// Cancel - abandon an escrow before it is funded
func (m *Manager) Cancel(id merkle.Digest) (*Escrow, error) {
	return m.update(id, func(e *Escrow) error {
		return e.Cancel(now())
	})
}

// Get - fetch one escrow
func (m *Manager) Get(id merkle.Digest) (*Escrow, error) {
	m.Lock()
	defer m.Unlock()
	return m.get(id)
}

// List - all escrows, oldest first
func (m *Manager) List() ([]*Escrow, error) {
	m.Lock()
	defer m.Unlock()
	return m.list()
}

func (m *Manager) list() ([]*Escrow, error) {
	escrows := make([]*Escrow, 0)
	err := m.pool.NewFetchCursor().Map(func(key []byte, value []byte) error {
		e := &Escrow{}
		if err := json.Unmarshal(value, e); nil != err {
			m.log.Errorf("escrow: %x  decode error: %s", key, err)
			return fault.ErrSerialization
		}
		escrows = append(escrows, e)
		return nil
	})
	if nil != err {
		return nil, err
	}
	sort.SliceStable(escrows, func(i, j int) bool {
		return escrows[i].CreatedAt < escrows[j].CreatedAt
	})
	return escrows, nil
}

// Sweep - release every shipped escrow past its timeout
//
// returns the number released
func (m *Manager) Sweep(at time.Time) (int, error) {
	m.Lock()
	defer m.Unlock()

	escrows, err := m.list()
	if nil != err {
		return 0, err
	}

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return 0, err
	}
	n := 0
	for _, e := range escrows {
		if !e.AutoRelease(uint64(at.Unix())) {
			continue
		}
		if err := trx.PutJSON(storage.Pool.Escrows, e.ID[:], e); nil != err {
			trx.Abort()
			return 0, err
		}
		m.log.Infof("escrow: %s  auto released", e.ID)
		n += 1
	}
	if 0 == n {
		trx.Abort()
		return 0, nil
	}
	if err := trx.Commit(); nil != err {
		return 0, err
	}
	return n, nil
}
