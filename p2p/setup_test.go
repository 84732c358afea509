// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
)

const (
	testDirectory = "testing"
	logCategory   = "testing"
	testChain     = "esmeralda"
)

func setupTestLogger() {
	os.RemoveAll(testDirectory)
	_ = os.Mkdir(testDirectory, 0700)
	_ = logger.Initialise(logger.Configuration{
		Directory: testDirectory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})
}

func teardownTestLogger() {
	logger.Finalise()
	os.RemoveAll(testDirectory)
}

func newKey(t *testing.T) *account.PrivateKey {
	key, err := account.NewPrivateKey()
	if nil != err {
		t.Fatalf("key error: %s", err)
	}
	return key
}
