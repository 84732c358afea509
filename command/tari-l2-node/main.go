// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"github.com/libp2p/go-libp2p-core/crypto"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/background"
	"github.com/tari-l2/tari-l2-node/channel"
	"github.com/tari-l2/tari-l2-node/configuration"
	"github.com/tari-l2/tari-l2-node/escrow"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/marketplace"
	"github.com/tari-l2/tari-l2-node/p2p"
	"github.com/tari-l2/tari-l2-node/p2p/discovery"
	"github.com/tari-l2/tari-l2-node/rpc"
	"github.com/tari-l2/tari-l2-node/rpc/server"
	"github.com/tari-l2/tari-l2-node/storage"
	"github.com/tari-l2/tari-l2-node/wallet"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "0.1.0"

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
		{Long: "log-level", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'l'},
		{Long: "output", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'o'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	command := ""
	if len(arguments) > 0 {
		command = arguments[0]
	}
	if len(options["version"]) > 0 {
		command = "version"
	}
	if len(options["help"]) > 0 {
		command = "help"
	}

	output := ""
	if len(options["output"]) > 0 {
		output = options["output"][0]
	}
	if processSetupCommand(program, command, output) {
		return
	}

	configurationFile := defaultConfigFile
	switch len(options["config"]) {
	case 0:
	case 1:
		configurationFile = options["config"][0]
	default:
		exitwithstatus.Message("%s: only one config option is allowed, %d were detected", program, len(options["config"]))
	}

	theConfiguration, err := getConfiguration(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}
	if len(options["log-level"]) > 0 {
		if err := setLogLevel(theConfiguration, options["log-level"][0]); nil != err {
			exitwithstatus.Message("%s: %s", program, err)
		}
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging.Configuration()); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("configuration: %#v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	identity, err := loadIdentity(theConfiguration)
	if nil != err {
		log.Criticalf("node identity error: %s", err)
		exitwithstatus.Message("node identity error: %s", err)
	}
	nodeKey, err := accountKey(identity)
	if nil != err {
		log.Criticalf("node key error: %s", err)
		exitwithstatus.Message("node key error: %s", err)
	}
	log.Infof("node public key: %s", nodeKey.PublicKey())

	// start the data storage
	log.Info("initialise storage")
	err = storage.Initialise(theConfiguration.DatabaseFile(), storage.ReadWrite)
	if nil != err {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("storage initialise error: %s", err)
	}
	defer storage.Finalise()

	// base layer, carry on offline if unreachable
	network := theConfiguration.L1Network()
	l1 := l1client.New(logger.New("l1client"), network, theConfiguration.TariNode.Endpoint())
	if err := l1.Connect(context.Background()); nil != err {
		log.Warnf("base node unreachable, running offline: %s", err)
	}

	wallets, err := wallet.NewStore(logger.New("wallet"), theConfiguration.DataDirectory, network)
	if nil != err {
		log.Criticalf("wallet store error: %s", err)
		exitwithstatus.Message("wallet store error: %s", err)
	}

	channels, err := channel.NewManager(logger.New("channel"), l1, channel.Keys{nodeKey}, wallets)
	if nil != err {
		log.Criticalf("channel manager error: %s", err)
		exitwithstatus.Message("channel manager error: %s", err)
	}

	market := marketplace.NewManager(logger.New("marketplace"))
	escrows := escrow.NewManager(logger.New("escrow"), l1, theConfiguration.Escrow.DefaultTimeout)

	// peer to peer
	node, err := p2p.New(logger.New("p2p"), theConfiguration.Network, network.Name(), identity, channels)
	if nil != err {
		log.Criticalf("p2p initialise error: %s", err)
		exitwithstatus.Message("p2p initialise error: %s", err)
	}
	domains := discovery.New(logger.New("discovery"), theConfiguration.Network.DNSSeeds, node, net.LookupTXT)
	node.SetDomainUpdater(domains)

	processes := background.Processes{
		node,
		domains,
		channel.NewSettlement(logger.New("settlement"), channels, theConfiguration.SettleInterval()),
		escrow.NewSweeper(logger.New("sweeper"), escrows, theConfiguration.SweepInterval()),
	}

	watcher, err := configuration.NewWatcher(logger.New("config"), configurationFile, theConfiguration, node)
	if nil != err {
		log.Warnf("configuration watcher disabled: %s", err)
	} else {
		processes = append(processes, watcher)
	}

	bg := background.Start(processes, nil)
	defer bg.Stop()

	// start up the rpc listeners
	err = rpc.Initialise(&theConfiguration.RPC, version, server.Handles{
		NodeKey:  nodeKey.PublicKey(),
		PeerID:   node.ID().Pretty(),
		L1:       l1,
		Peers:    node,
		Network:  node,
		Channels: channels,
		Market:   market,
		Escrows:  escrows,
		Wallets:  wallets,
	})
	if nil != err {
		log.Criticalf("rpc initialise error: %s", err)
		exitwithstatus.Message("rpc initialise error: %s", err)
	}
	defer rpc.Finalise()

	log.Infof("JSON-RPC listening on: http://%s", theConfiguration.RPC.Listen())

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("%s %s  rpc: http://%s\n", productName, version, theConfiguration.RPC.Listen())
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
}

// the configured identity or the node key file
func loadIdentity(config *configuration.NodeConfig) (crypto.PrivKey, error) {
	if "" != config.Network.PrivateKey {
		return p2p.DecodeIdentity(config.Network.PrivateKey)
	}
	return p2p.LoadIdentity(nodeKeyFileName(config))
}

// the account key shares the Ed25519 seed of the peer identity
func accountKey(identity crypto.PrivKey) (*account.PrivateKey, error) {
	raw, err := identity.Raw()
	if nil != err {
		return nil, err
	}
	if len(raw) < account.SeedLength {
		return nil, fault.ErrInvalidPrivateKey
	}
	return account.PrivateKeyFromSeed(raw[:account.SeedLength])
}
