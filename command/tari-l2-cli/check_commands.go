// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"strings"
)

// connection is required
func checkConnect(connect string) (string, error) {
	connect = strings.TrimSpace(connect)
	if "" == connect {
		return "", ErrRequiredConnect
	}
	return connect, nil
}

// 32 byte hex value such as a channel, listing or order id
func checkID(id string, missing error) (string, error) {
	id = strings.TrimSpace(id)
	if "" == id {
		return "", missing
	}
	b, err := hex.DecodeString(id)
	if nil != err || 32 != len(b) {
		return "", ErrInvalidID
	}
	return id, nil
}

// optional public key, empty lets the node choose
func checkPublicKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if "" == key {
		return "", nil
	}
	b, err := hex.DecodeString(key)
	if nil != err || 32 != len(b) {
		return "", ErrInvalidPublicKey
	}
	return key, nil
}

// amount must be positive
func checkAmount(amount uint64) (uint64, error) {
	if 0 == amount {
		return 0, ErrAmountIsZero
	}
	return amount, nil
}
