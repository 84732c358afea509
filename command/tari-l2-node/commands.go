// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"

	"github.com/tari-l2/tari-l2-node/configuration"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/p2p"
	"github.com/tari-l2/tari-l2-node/rpc/certificate"
)

const (
	productName = "Tari L2 Marketplace Node"
	networkName = "Testnet"
)

// setup command handler
//
// commands that do not start the node; returns false for start
func processSetupCommand(program string, command string, output string) bool {

	switch command {
	case "init":
		if "" == output {
			output = defaultConfigFile
		}
		if _, err := os.Stat(output); nil == err {
			fmt.Printf("config file: %q already exists\n", output)
			exitwithstatus.Exit(1)
		}
		if err := writeDefaults(output); nil != err {
			fmt.Printf("write config: %q  error: %s\n", output, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("wrote config: %q\n", output)

		config, err := configuration.Load(output)
		if nil != err {
			fmt.Printf("read back config: %q  error: %s\n", output, err)
			exitwithstatus.Exit(1)
		}

		err = certificate.Generate("rpc", config.RPC.Certificate, config.RPC.PrivateKey, []string{config.RPC.ListenAddress})
		switch err {
		case nil:
			fmt.Printf("generated certificate: %q\n", config.RPC.Certificate)
		case fault.AlreadyInitialised:
			fmt.Printf("kept existing certificate: %q\n", config.RPC.Certificate)
		default:
			fmt.Printf("generate certificate error: %s\n", err)
			exitwithstatus.Exit(1)
		}

		keyFile := nodeKeyFileName(config)
		identity, err := p2p.LoadIdentity(keyFile)
		if nil != err {
			fmt.Printf("node key: %q  error: %s\n", keyFile, err)
			exitwithstatus.Exit(1)
		}
		nodeKey, err := accountKey(identity)
		if nil != err {
			fmt.Printf("node key: %q  error: %s\n", keyFile, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("node key: %q  public key: %s\n", keyFile, nodeKey.PublicKey())
		return true

	case "version", "v":
		fmt.Printf("%s\n", productName)
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Network: %s\n", networkName)
		return true

	case "start", "":
		return false

	default:
		switch command {
		case "help", "h", "?":
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--config=FILE] [--log-level=LEVEL] [command]\n\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                 (h)  - display this message\n")
		fmt.Printf("  version              (v)  - display version information\n")
		fmt.Printf("  init [--output=FILE]      - write a default configuration, RPC certificate and node key\n")
		fmt.Printf("  start                     - run the node (default)\n\n")
		fmt.Printf("log levels: trace, debug, info, warn, error, critical\n")
		return true
	}
}
