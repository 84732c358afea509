// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	connect string
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "0.1.0"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {

	app := cli.NewApp()
	app.Name = "tari-l2-cli"
	app.Usage = "talk to a tari-l2-node over JSON-RPC"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " print requests and responses",
		},
		cli.StringFlag{
			Name:  "connect, c",
			Value: "127.0.0.1:18000",
			Usage: " node JSON-RPC endpoint `HOST:PORT`",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "info",
			Usage:  "display node information",
			Action: runInfo,
		},
		{
			Name:   "l1-status",
			Usage:  "display base layer connection status",
			Action: runL1Status,
		},
		{
			Name:   "channels",
			Usage:  "list all channels",
			Action: runChannels,
		},
		{
			Name:      "open-channel",
			Usage:     "open a channel between two participants",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "participant1, a",
					Value: "",
					Usage: "*first participant public key `HEX`",
				},
				cli.StringFlag{
					Name:  "participant2, b",
					Value: "",
					Usage: "*second participant public key `HEX`",
				},
				cli.Uint64Flag{
					Name:  "collateral, m",
					Value: 0,
					Usage: "*total collateral `MICRO_TARI`",
				},
				cli.Uint64Flag{
					Name:  "challenge-period, p",
					Value: 0,
					Usage: " dispute window `SECONDS`",
				},
			},
			Action: runOpenChannel,
		},
		{
			Name:      "channel",
			Usage:     "display one channel",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				channelFlag,
				cli.BoolFlag{
					Name:  "history",
					Usage: " show the applied updates instead",
				},
			},
			Action: runChannel,
		},
		{
			Name:      "transfer",
			Usage:     "propose a transfer inside a channel",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				channelFlag,
				cli.Uint64Flag{
					Name:  "amount, m",
					Value: 0,
					Usage: "*amount `MICRO_TARI`",
				},
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: " sender public key `HEX` [node key]",
				},
				cli.StringFlag{
					Name:  "to, t",
					Value: "",
					Usage: " recipient public key `HEX` [other participant]",
				},
			},
			Action: runTransfer,
		},
		{
			Name:      "close-channel",
			Usage:     "close a channel",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				channelFlag,
			},
			Action: runCloseChannel,
		},
		{
			Name:   "listings",
			Usage:  "list marketplace listings",
			Action: runListings,
		},
		{
			Name:      "list-item",
			Usage:     "create a marketplace listing",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "title, t",
					Value: "",
					Usage: "*listing title `STRING`",
				},
				cli.StringFlag{
					Name:  "description, d",
					Value: "",
					Usage: " listing description `STRING`",
				},
				cli.Uint64Flag{
					Name:  "price, p",
					Value: 0,
					Usage: "*price `MICRO_TARI`",
				},
				cli.StringFlag{
					Name:  "category, g",
					Value: "",
					Usage: " category `STRING`",
				},
				cli.StringFlag{
					Name:  "ipfs-hash, i",
					Value: "",
					Usage: " content hash `CID`",
				},
				cli.StringFlag{
					Name:  "channel, n",
					Value: "",
					Usage: " also record in channel `CHANNEL_ID`",
				},
			},
			Action: runListItem,
		},
		{
			Name:   "orders",
			Usage:  "list marketplace orders",
			Action: runOrders,
		},
		{
			Name:      "order",
			Usage:     "place an order against a listing",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listing, l",
					Value: "",
					Usage: "*listing `LISTING_ID`",
				},
				cli.StringFlag{
					Name:  "buyer, b",
					Value: "",
					Usage: " buyer public key `HEX` [node key]",
				},
				cli.StringFlag{
					Name:  "channel, n",
					Value: "",
					Usage: " also record in channel `CHANNEL_ID`",
				},
			},
			Action: runOrder,
		},
		{
			Name:      "order-status",
			Usage:     "move an order to a new status",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "order, o",
					Value: "",
					Usage: "*order `ORDER_ID`",
				},
				cli.StringFlag{
					Name:  "status, s",
					Value: "",
					Usage: "*new status `STATUS`",
				},
			},
			Action: runOrderStatus,
		},
		{
			Name:      "wallet-create",
			Usage:     "create a new wallet on the node",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				passwordFlag,
			},
			Action: runWalletCreate,
		},
		{
			Name:      "wallet-import",
			Usage:     "import a wallet from a seed phrase or private key",
			ArgsUsage: "\n   (* = required, + = select one)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "seed, s",
					Value: "",
					Usage: "+24 word seed `PHRASE`",
				},
				cli.StringFlag{
					Name:  "key, k",
					Value: "",
					Usage: "+private key `HEX`",
				},
				passwordFlag,
			},
			Action: runWalletImport,
		},
		{
			Name:      "balance",
			Usage:     "channel balance of a participant, or base layer balance of a wallet",
			ArgsUsage: "\n   (without --channel the current wallet is used)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "channel, n",
					Value: "",
					Usage: " channel `CHANNEL_ID`",
				},
				cli.StringFlag{
					Name:  "participant, k",
					Value: "",
					Usage: " participant public key `HEX` [node key]",
				},
				cli.StringFlag{
					Name:  "seed, s",
					Value: "",
					Usage: " base layer balance of seed `PHRASE` [current wallet]",
				},
				passwordFlag,
			},
			Action: runBalance,
		},
	}

	app.Before = func(c *cli.Context) error {
		connect, err := checkConnect(c.GlobalString("connect"))
		if nil != err {
			return err
		}
		c.App.Metadata["config"] = &metadata{
			connect: connect,
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}

	return app
}

var channelFlag = cli.StringFlag{
	Name:  "channel, n",
	Value: "",
	Usage: "*channel `CHANNEL_ID`",
}

var passwordFlag = cli.StringFlag{
	Name:  "password, p",
	Value: "",
	Usage: " wallet file `PASSWORD`",
}
