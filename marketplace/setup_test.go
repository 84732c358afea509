// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package marketplace_test

import (
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/storage"
)

const (
	testDirectory = "testing"
)

func setup(t *testing.T) *marketplace.Manager {
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

	if err := storage.Initialise(testDirectory+"/test.leveldb", storage.ReadWrite); nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
	return marketplace.NewManager(logger.New("testing"))
}

func teardown(t *testing.T) {
	storage.Finalise()
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
