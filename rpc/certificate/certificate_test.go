// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate_test

import (
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"

	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/rpc/certificate"
	"github.com/tari-l2/tari-l2-node/rpc/fixtures"
)

func TestGet(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	cer, key, err := fixtures.Certificate()
	assert.Nil(t, err, "certificate generation error")

	tlsConfig, fingerprint, err := certificate.Get(
		logger.New(fixtures.LogCategory),
		"test",
		cer,
		key,
	)
	assert.Nil(t, err, "wrong Get")

	pair, _ := tls.X509KeyPair([]byte(cer), []byte(key))

	assert.Equal(t, sha3.Sum256(pair.Certificate[0]), fingerprint, "wrong fingerprint")
	assert.Equal(t, pair, tlsConfig.Certificates[0], "wrong config")
}

func TestGetInvalid(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	_, _, err := certificate.Get(logger.New(fixtures.LogCategory), "test", "junk", "junk")
	assert.NotNil(t, err, "junk certificate accepted")
}

func TestGenerateAndLoad(t *testing.T) {
	fixtures.SetupTestLogger()
	defer fixtures.TeardownTestLogger()

	cer := filepath.Join(fixtures.Directory(), "rpc.crt")
	key := filepath.Join(fixtures.Directory(), "rpc.key")

	err := certificate.Generate("test", cer, key, []string{"localhost"})
	assert.Nil(t, err, "generate error")

	info, err := os.Stat(key)
	assert.Nil(t, err, "missing key file")
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "wrong key file mode")

	tlsConfig, _, err := certificate.Load(logger.New(fixtures.LogCategory), "test", cer, key)
	assert.Nil(t, err, "load error")
	assert.Equal(t, 1, len(tlsConfig.Certificates), "wrong certificate count")

	err = certificate.Generate("test", cer, key, nil)
	assert.Equal(t, fault.AlreadyInitialised, err, "existing files overwritten")

	_, _, err = certificate.Load(logger.New(fixtures.LogCategory), "test", cer+".missing", key)
	assert.NotNil(t, err, "missing certificate loaded")
}
