// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/tari-l2/tari-l2-node/fault"
)

// FetchCursor - walks one pool in key order
type FetchCursor struct {
	pool *PoolHandle
	keys ldb_util.Range
}

// NewFetchCursor - a cursor at the first key of the pool
func (p *PoolHandle) NewFetchCursor() *FetchCursor {
	return &FetchCursor{
		pool: p,
		keys: p.keys,
	}
}

// Fetch - up to count elements, advancing the cursor past them
func (cursor *FetchCursor) Fetch(count int) ([]Element, error) {
	if nil == cursor {
		return nil, fault.ErrInvalidCursor
	}
	if count <= 0 {
		return nil, fault.ErrInvalidCount
	}

	iter := cursor.iterator()
	if nil == iter {
		return nil, nil
	}

	results := make([]Element, 0, count)
	for len(results) < count && iter.Next() {
		results = append(results, copyElement(iter))
	}
	iter.Release()

	if n := len(results); n > 0 {
		// smallest key after the last one returned
		cursor.keys.Start = append(cursor.pool.prefixKey(results[n-1].Key), 0x00)
	}
	return results, iter.Error()
}

// Map - call f on every remaining element, stopping at its first error
func (cursor *FetchCursor) Map(f func(key []byte, value []byte) error) error {
	if nil == cursor {
		return fault.ErrInvalidCursor
	}

	iter := cursor.iterator()
	if nil == iter {
		return nil
	}
	defer iter.Release()

	for iter.Next() {
		e := copyElement(iter)
		if err := f(e.Key, e.Value); nil != err {
			return err
		}
	}
	return iter.Error()
}

// nil when the database is closed
func (cursor *FetchCursor) iterator() iterator.Iterator {
	poolData.RLock()
	defer poolData.RUnlock()

	if nil == poolData.db {
		return nil
	}
	keys := cursor.keys
	return poolData.db.NewIterator(&keys, nil)
}

// iterator slices are only valid until the next move
func copyElement(iter iterator.Iterator) Element {
	key := iter.Key()
	value := iter.Value()
	e := Element{
		Key:   make([]byte, len(key)-1),
		Value: make([]byte, len(value)),
	}
	copy(e.Key, key[1:])
	copy(e.Value, value)
	return e
}
