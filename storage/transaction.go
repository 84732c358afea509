// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"

	"github.com/tari-l2/tari-l2-node/fault"
)

// Transaction - batch of writes across pools applied atomically
type Transaction interface {
	Put(*PoolHandle, []byte, []byte)
	PutJSON(*PoolHandle, []byte, interface{}) error
	Delete(*PoolHandle, []byte)
	Commit() error
	Abort()
}

type cachedWrite struct {
	op    dbOperation
	key   string
	value []byte
}

// TransactionImpl - a leveldb batch plus the cache updates to apply on commit
type TransactionImpl struct {
	sync.Mutex
	batch  *leveldb.Batch
	writes []cachedWrite
	done   bool
}

// NewDBTransaction - start a new batch
func NewDBTransaction() (Transaction, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return nil, fault.NotInitialised
	}
	return &TransactionImpl{
		batch: new(leveldb.Batch),
	}, nil
}

// Put - queue a write
func (t *TransactionImpl) Put(handle *PoolHandle, key []byte, value []byte) {
	t.Lock()
	defer t.Unlock()
	prefixedKey := handle.prefixKey(key)
	t.batch.Put(prefixedKey, value)
	t.writes = append(t.writes, cachedWrite{op: dbPut, key: string(prefixedKey), value: value})
}

// PutJSON - queue a JSON encoded write
func (t *TransactionImpl) PutJSON(handle *PoolHandle, key []byte, record interface{}) error {
	value, err := json.Marshal(record)
	if nil != err {
		return fault.ErrSerialization
	}
	t.Put(handle, key, value)
	return nil
}

// Delete - queue a delete
func (t *TransactionImpl) Delete(handle *PoolHandle, key []byte) {
	t.Lock()
	defer t.Unlock()
	prefixedKey := handle.prefixKey(key)
	t.batch.Delete(prefixedKey)
	t.writes = append(t.writes, cachedWrite{op: dbDelete, key: string(prefixedKey)})
}

// Commit - write the batch
func (t *TransactionImpl) Commit() error {
	t.Lock()
	defer t.Unlock()

	if t.done {
		return fault.ErrDatabase
	}
	t.done = true

	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.db {
		return fault.NotInitialised
	}

	err := poolData.db.Write(t.batch, nil)
	if nil != err {
		poolData.log.Errorf("batch write error: %s", err)
		return fault.ErrDatabase
	}
	for _, w := range t.writes {
		poolData.cache.Set(w.op, w.key, w.value)
	}
	return nil
}

// Abort - discard the batch
func (t *TransactionImpl) Abort() {
	t.Lock()
	defer t.Unlock()
	t.batch.Reset()
	t.writes = nil
	t.done = true
}
