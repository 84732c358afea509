// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/configuration"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
)

const testDirectory = "testing"

func setup(t *testing.T) string {
	os.RemoveAll(testDirectory)
	if err := os.Mkdir(testDirectory, 0700); nil != err {
		t.Fatalf("mkdir error: %s", err)
	}
	dir, err := filepath.Abs(testDirectory)
	if nil != err {
		t.Fatalf("abs error: %s", err)
	}
	return dir
}

func teardown(t *testing.T) {
	os.RemoveAll(testDirectory)
}

func write(t *testing.T, name string, content string) string {
	fileName := filepath.Join(testDirectory, name)
	if err := ioutil.WriteFile(fileName, []byte(content), 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
	return fileName
}

func TestDefaults(t *testing.T) {
	dir := setup(t)
	defer teardown(t)

	fileName := write(t, "empty.json", "{}")
	config, err := configuration.Load(fileName)
	assert.Nil(t, err, "load error")

	assert.Equal(t, filepath.Join(dir, "data"), config.DataDirectory, "wrong data directory")
	assert.Equal(t, "http://127.0.0.1:18142", config.TariNode.Endpoint(), "wrong tari endpoint")
	assert.Equal(t, l1client.Esmeralda, config.L1Network(), "wrong network")
	assert.Equal(t, "/ip4/0.0.0.0/tcp/0", config.Network.ListenAddress, "wrong p2p listen")
	assert.Equal(t, 50, config.Network.MaxPeers, "wrong max peers")
	assert.Equal(t, "127.0.0.1:18000", config.RPC.Listen(), "wrong rpc listen")
	assert.Equal(t, 100, config.RPC.MaximumConnections, "wrong rpc connections")
	assert.Equal(t, filepath.Join(dir, "data", "rpc.crt"), config.RPC.Certificate, "wrong certificate")
	assert.Equal(t, uint64(86400), config.Escrow.DefaultTimeout, "wrong escrow timeout")
	assert.Equal(t, 60, config.Escrow.SweepInterval, "wrong sweep interval")
	assert.Equal(t, filepath.Join(dir, "data", "l2.leveldb"), config.DatabaseFile(), "wrong database")

	info, err := os.Stat(config.DataDirectory)
	assert.Nil(t, err, "data directory not created")
	assert.True(t, info.IsDir(), "data directory not a directory")
}

func TestJSON(t *testing.T) {
	setup(t)
	defer teardown(t)

	fileName := write(t, "node.json", `{
  "data_dir": "/tmp/tari-l2-json-test",
  "tari_node": {"network": "localnet", "port": 18150},
  "network": {"bootstrap_peers": ["/ip4/10.0.0.1/tcp/9000"], "max_peers": 4},
  "rpc": {"port": 18010, "tcp_listen": ["127.0.0.1:18011"]}
}`)
	defer os.RemoveAll("/tmp/tari-l2-json-test")

	config, err := configuration.Load(fileName)
	assert.Nil(t, err, "load error")
	assert.Equal(t, "/tmp/tari-l2-json-test", config.DataDirectory, "absolute path changed")
	assert.Equal(t, l1client.Localnet, config.L1Network(), "wrong network")
	assert.Equal(t, "http://127.0.0.1:18150", config.TariNode.Endpoint(), "wrong endpoint")
	assert.Equal(t, []string{"/ip4/10.0.0.1/tcp/9000"}, config.Network.BootstrapPeers, "wrong peers")
	assert.Equal(t, 4, config.Network.MaxPeers, "wrong max peers")
	assert.Equal(t, []string{"127.0.0.1:18011"}, config.RPC.TCPListen, "wrong tcp listen")
	assert.Equal(t, 100, config.RPC.MaximumConnections, "default lost")
}

func TestTOML(t *testing.T) {
	dir := setup(t)
	defer teardown(t)

	fileName := write(t, "node.toml", `
data_dir = "toml-data"

[tari_node]
network = "mainnet"

[network]
dns_seeds = ["seed.example.com"]

[rpc]
port = 18001
`)

	config, err := configuration.Load(fileName)
	assert.Nil(t, err, "load error")
	assert.Equal(t, filepath.Join(dir, "toml-data"), config.DataDirectory, "wrong data directory")
	assert.Equal(t, l1client.Mainnet, config.L1Network(), "wrong network")
	assert.Equal(t, []string{"seed.example.com"}, config.Network.DNSSeeds, "wrong seeds")
	assert.Equal(t, 18001, config.RPC.Port, "wrong port")
	assert.Equal(t, 18142, config.TariNode.Port, "default lost")
}

func TestLua(t *testing.T) {
	dir := setup(t)
	defer teardown(t)

	fileName := write(t, "node.conf", `
local M = {}
M.data_dir = "lua-data"
M.tari_node = {
    network = "nextnet",
    port = 18144,
}
M.network = {
    bootstrap_peers = { "/ip4/10.0.0.2/tcp/9000" },
    max_peers = 8,
}
return M
`)

	config, err := configuration.Load(fileName)
	assert.Nil(t, err, "load error")
	assert.Equal(t, filepath.Join(dir, "lua-data"), config.DataDirectory, "wrong data directory")
	assert.Equal(t, l1client.Nextnet, config.L1Network(), "wrong network")
	assert.Equal(t, 18144, config.TariNode.Port, "wrong port")
	assert.Equal(t, []string{"/ip4/10.0.0.2/tcp/9000"}, config.Network.BootstrapPeers, "wrong peers")
	assert.Equal(t, 8, config.Network.MaxPeers, "wrong max peers")
}

func TestWriteAndLoad(t *testing.T) {
	dir := setup(t)
	defer teardown(t)

	config := configuration.Default()
	config.TariNode.Network = "nextnet"
	config.RPC.Port = 18020
	config.Network.BootstrapPeers = []string{"/dns4/peer.example.com/tcp/9000"}

	fileName := filepath.Join(testDirectory, "written.toml")
	assert.Nil(t, configuration.WriteFile(fileName, config), "write error")

	loaded, err := configuration.Load(fileName)
	assert.Nil(t, err, "load error")
	assert.Equal(t, filepath.Join(dir, "data"), loaded.DataDirectory, "wrong data directory")
	assert.Equal(t, l1client.Nextnet, loaded.L1Network(), "wrong network")
	assert.Equal(t, 18020, loaded.RPC.Port, "wrong port")
	assert.Equal(t, config.Network.BootstrapPeers, loaded.Network.BootstrapPeers, "wrong peers")

	assert.Equal(t, fault.ErrUnsupportedConfiguration, configuration.WriteFile(filepath.Join(testDirectory, "x.lua"), config), "lua written")
}

func TestBadNetwork(t *testing.T) {
	setup(t)
	defer teardown(t)

	fileName := write(t, "bad.json", `{"tari_node": {"network": "testnet"}}`)
	_, err := configuration.Load(fileName)
	assert.NotNil(t, err, "bad network accepted")
	assert.True(t, fault.IsErrInvalid(err), "wrong error class")
}

func TestMissingFile(t *testing.T) {
	setup(t)
	defer teardown(t)

	_, err := configuration.Load(filepath.Join(testDirectory, "absent.toml"))
	assert.True(t, os.IsNotExist(err), "missing file accepted")
}
