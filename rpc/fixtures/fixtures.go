// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fixtures

import (
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/storage"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - logger writing into a throwaway directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop the logger and remove its files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// SetupTestStorage - logger plus a leveldb under the test directory
func SetupTestStorage() error {
	SetupTestLogger()
	return storage.Initialise(filepath.Join(dir, "test.leveldb"), storage.ReadWrite)
}

// TeardownTestStorage - close the database and clean up
func TeardownTestStorage() {
	storage.Finalise()
	TeardownTestLogger()
}

// Directory - the scratch directory used by the fixtures
func Directory() string {
	return dir
}

// Certificate - a fresh self signed PEM certificate and key
func Certificate() (string, string, error) {
	validUntil := time.Now().Add(24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair("tari-l2-node testing", validUntil, false, []string{"127.0.0.1"})
	if nil != err {
		return "", "", err
	}
	return string(cert), string(key), nil
}

func removeFiles() {
	os.RemoveAll(dir)
}
