// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/configuration"
)

type peerList struct {
	bootstrap []string
	dnsSeeds  []string
}

type updater chan peerList

func (u updater) UpdatePeers(bootstrap []string, dnsSeeds []string) {
	u <- peerList{bootstrap: bootstrap, dnsSeeds: dnsSeeds}
}

func TestWatcher(t *testing.T) {
	setup(t)
	defer teardown(t)

	_ = logger.Initialise(logger.Configuration{
		Directory: testDirectory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})
	defer logger.Finalise()

	fileName := write(t, "watched.json", `{"network": {"bootstrap_peers": []}}`)
	config, err := configuration.Load(fileName)
	assert.Nil(t, err, "load error")

	u := make(updater, 10)
	w, err := configuration.NewWatcher(logger.New("testing"), fileName, config, u)
	assert.Nil(t, err, "watcher error")

	shutdown := make(chan struct{})
	done := make(chan struct{})
	go func() {
		w.Run(nil, shutdown)
		close(done)
	}()

	peers := []string{"/ip4/10.0.0.3/tcp/9000"}
	err = ioutil.WriteFile(fileName, []byte(`{"network": {"bootstrap_peers": ["/ip4/10.0.0.3/tcp/9000"], "dns_seeds": ["seed.example.com"]}}`), 0600)
	assert.Nil(t, err, "rewrite error")

	select {
	case p := <-u:
		assert.Equal(t, peers, p.bootstrap, "wrong peers")
		assert.Equal(t, []string{"seed.example.com"}, p.dnsSeeds, "wrong seeds")
	case <-time.After(5 * time.Second):
		t.Fatalf("no peer update")
	}

	close(shutdown)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("watcher did not stop")
	}
}
