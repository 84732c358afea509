// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/json"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tari-l2/tari-l2-node/fault"
)

// Handle - the access methods of a single pool
type Handle interface {
	Put([]byte, []byte)
	PutJSON([]byte, interface{}) error
	Get([]byte) []byte
	GetJSON([]byte, interface{}) (bool, error)
	Has([]byte) bool
	Delete([]byte)
	NewFetchCursor() *FetchCursor
}

// PoolHandle - a prefixed key range of the database
type PoolHandle struct {
	prefix byte
	keys   ldb_util.Range
}

// Element - a key/value pair with the pool prefix removed
type Element struct {
	Key   []byte
	Value []byte
}

func newPoolHandle(prefix byte) *PoolHandle {
	p := &PoolHandle{
		prefix: prefix,
	}
	p.keys.Start = []byte{prefix}
	if prefix < 0xff {
		p.keys.Limit = []byte{prefix + 1}
	}
	return p
}

func (p *PoolHandle) prefixKey(key []byte) []byte {
	return append([]byte{p.prefix}, key...)
}

// Put - store raw bytes, a write failure is fatal
func (p *PoolHandle) Put(key []byte, value []byte) {
	poolData.RLock()
	defer poolData.RUnlock()

	k := p.prefixKey(key)
	db := mustDB("Put")
	fault.PanicIfError("pool.Put", db.Put(k, value, nil))
	poolData.cache.Set(dbPut, string(k), value)
}

// PutJSON - store a record as JSON
func (p *PoolHandle) PutJSON(key []byte, record interface{}) error {
	value, err := json.Marshal(record)
	if nil != err {
		return fault.ErrSerialization
	}
	p.Put(key, value)
	return nil
}

// Delete - remove a key
func (p *PoolHandle) Delete(key []byte) {
	poolData.RLock()
	defer poolData.RUnlock()

	k := p.prefixKey(key)
	db := mustDB("Delete")
	fault.PanicIfError("pool.Delete", db.Delete(k, nil))
	poolData.cache.Set(dbDelete, string(k), nil)
}

// Get - the stored bytes or nil
//
// the result may be shared with the cache, copy before modifying
func (p *PoolHandle) Get(key []byte) []byte {
	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return nil
	}
	k := p.prefixKey(key)
	if value, found := poolData.cache.Get(string(k)); found {
		return value
	}
	value, err := poolData.db.Get(k, nil)
	if leveldb.ErrNotFound == err {
		return nil
	}
	fault.PanicIfError("pool.Get", err)
	return value
}

// GetJSON - decode a stored record, false if absent
func (p *PoolHandle) GetJSON(key []byte, record interface{}) (bool, error) {
	value := p.Get(key)
	if nil == value {
		return false, nil
	}
	if err := json.Unmarshal(value, record); nil != err {
		return true, fault.ErrSerialization
	}
	return true, nil
}

// Has - check if a key exists
func (p *PoolHandle) Has(key []byte) bool {
	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return false
	}
	k := p.prefixKey(key)
	if _, found := poolData.cache.Get(string(k)); found {
		return true
	}
	found, err := poolData.db.Has(k, nil)
	fault.PanicIfError("pool.Has", err)
	return found
}

// caller holds poolData read lock
func mustDB(operation string) *leveldb.DB {
	if nil == poolData.db {
		fault.Panic("pool." + operation + " on closed database")
	}
	return poolData.db
}
