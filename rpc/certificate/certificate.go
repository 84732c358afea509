// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package certificate

import (
	"crypto/tls"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/sha3"

	"github.com/tari-l2/tari-l2-node/fault"
)

const validity = 10 * 365 * 24 * time.Hour

// Get - build a TLS configuration from PEM text and return the
// certificate fingerprint
func Get(log *logger.L, name string, certificate string, key string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	keyPair, err := tls.X509KeyPair([]byte(certificate), []byte(key))
	if err != nil {
		log.Errorf("%s failed to load keypair: %v", name, err)
		return nil, fin, err
	}

	tlsConfiguration := &tls.Config{
		Certificates: []tls.Certificate{
			keyPair,
		},
	}

	fin = fingerprint(keyPair.Certificate[0])

	return tlsConfiguration, fin, nil
}

// Load - read a certificate and key pair from files
func Load(log *logger.L, name string, certificateFileName string, keyFileName string) (*tls.Config, [32]byte, error) {
	var fin [32]byte

	certificate, err := ioutil.ReadFile(certificateFileName)
	if nil != err {
		log.Errorf("%s: certificate: %q  error: %s", name, certificateFileName, err)
		return nil, fin, err
	}
	key, err := ioutil.ReadFile(keyFileName)
	if nil != err {
		log.Errorf("%s: private key: %q  error: %s", name, keyFileName, err)
		return nil, fin, err
	}
	return Get(log, name, string(certificate), string(key))
}

// Generate - create a self signed certificate and key pair
//
// existing files are never overwritten
func Generate(name string, certificateFileName string, keyFileName string, extraHosts []string) error {
	if exists(certificateFileName) || exists(keyFileName) {
		return fault.AlreadyInitialised
	}

	org := "tari-l2-node self signed cert for: " + name
	cert, key, err := certgen.NewTLSCertPair(org, time.Now().Add(validity), false, extraHosts)
	if nil != err {
		return err
	}

	if err := ioutil.WriteFile(certificateFileName, cert, 0644); nil != err {
		return err
	}
	if err := ioutil.WriteFile(keyFileName, key, 0600); nil != err {
		_ = os.Remove(certificateFileName)
		return err
	}
	return nil
}

func exists(name string) bool {
	_, err := os.Stat(name)
	return nil == err
}

// fingerprint - compute the fingerprint of a certificate
//
// openssl x509 -outform DER -in rpc.crt | sha3sum -a 256
func fingerprint(certificate []byte) [32]byte {
	return sha3.Sum256(certificate)
}
