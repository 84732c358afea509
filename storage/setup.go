// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/tari-l2/tari-l2-node/fault"
)

// every field must be exported and carry a one byte prefix tag
type pools struct {
	Channels       *PoolHandle `prefix:"C"`
	PendingUpdates *PoolHandle `prefix:"U"`
	Listings       *PoolHandle `prefix:"L"`
	Orders         *PoolHandle `prefix:"O"`
	Profiles       *PoolHandle `prefix:"P"`
	Escrows        *PoolHandle `prefix:"E"`
	Collateral     *PoolHandle `prefix:"K"`
	Checkpoints    *PoolHandle `prefix:"H"`
	Wallets        *PoolHandle `prefix:"W"`
	TestData       *PoolHandle `prefix:"Z"`
}

// Pool - the set of exported pools
var Pool pools

// schema version, stored big endian under a key outside every pool
const schemaVersion uint32 = 0x0100

var schemaKey = []byte("\x00schema")

var poolData struct {
	sync.RWMutex
	log   *logger.L
	db    *leveldb.DB
	cache Cache
}

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// Initialise - open the database and bind every pool
func Initialise(database string, readOnly bool) error {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.db {
		return fault.AlreadyInitialised
	}

	poolData.log = logger.New("storage")

	db, err := leveldb.OpenFile(database, &ldb_opt.Options{
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	})
	if nil != err {
		return err
	}

	if err := checkSchema(db, readOnly); nil != err {
		poolData.log.Criticalf("database: %s  error: %s", database, err)
		db.Close()
		return err
	}

	if err := bindPools(); nil != err {
		db.Close()
		return err
	}

	poolData.db = db
	poolData.cache = newCache()
	poolData.log.Infof("opened: %s  schema: 0x%04x  read only: %t", database, schemaVersion, readOnly)
	return nil
}

// Finalise - close the database
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if nil != poolData.db {
		poolData.db.Close()
		poolData.db = nil
	}
	if nil != poolData.cache {
		poolData.cache.Clear()
	}
}

// an empty database is stamped with the current schema, a newer one
// is refused
func checkSchema(db *leveldb.DB, readOnly bool) error {
	value, err := db.Get(schemaKey, nil)
	switch err {
	case nil:
	case leveldb.ErrNotFound:
		if readOnly {
			return nil
		}
		buffer := make([]byte, 4)
		binary.BigEndian.PutUint32(buffer, schemaVersion)
		return db.Put(schemaKey, buffer, nil)
	default:
		return err
	}

	if 4 != len(value) {
		return fmt.Errorf("schema record has %d bytes, expected 4", len(value))
	}
	if v := binary.BigEndian.Uint32(value); v > schemaVersion {
		return fmt.Errorf("schema: 0x%04x is newer than supported: 0x%04x", v, schemaVersion)
	}
	return nil
}

// fill each field of Pool from its prefix tag
func bindPools() error {
	t := reflect.TypeOf(Pool)
	v := reflect.ValueOf(&Pool).Elem()

	for i := 0; i < t.NumField(); i += 1 {
		field := t.Field(i)
		tag := field.Tag.Get("prefix")
		if 1 != len(tag) {
			return fmt.Errorf("pool: %s has invalid prefix: %q", field.Name, tag)
		}
		v.Field(i).Set(reflect.ValueOf(newPoolHandle(tag[0])))
	}
	return nil
}
