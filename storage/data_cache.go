// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"time"

	cache "github.com/patrickmn/go-cache"
)

// Cache - recently written records keyed by prefixed key
type Cache interface {
	Get(string) ([]byte, bool)
	Set(dbOperation, string, []byte)
	Clear()
}

type dbOperation int

const (
	dbPut dbOperation = iota
	dbDelete
)

const (
	cleanupInterval   = 1 * time.Minute
	defaultExpiration = 5 * time.Minute
)

type recordCache struct {
	cache *cache.Cache
}

type cacheData struct {
	op    dbOperation
	value []byte
}

func newCache() *recordCache {
	return &recordCache{
		cache: cache.New(defaultExpiration, cleanupInterval),
	}
}

// Get - a deleted key reports not found so the caller falls through
// to the database, which no longer holds it either
func (c *recordCache) Get(key string) ([]byte, bool) {
	obj, found := c.cache.Get(key)
	if !found {
		return nil, false
	}

	data := obj.(cacheData)
	if dbDelete == data.op {
		return nil, false
	}

	return data.value, true
}

func (c *recordCache) Set(op dbOperation, key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.cache.Set(key, cacheData{
		op:    op,
		value: stored,
	}, cache.DefaultExpiration)
}

func (c *recordCache) Clear() {
	c.cache.Flush()
}
