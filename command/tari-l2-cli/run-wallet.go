// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strings"

	"github.com/urfave/cli"
)

func runWalletCreate(c *cli.Context) error {
	return runSimple(c, "wallet_create", map[string]interface{}{
		"password": c.String("password"),
	})
}

func runWalletImport(c *cli.Context) error {

	seed := strings.TrimSpace(c.String("seed"))
	key := strings.TrimSpace(c.String("key"))
	password := c.String("password")

	switch {
	case "" != seed && "" == key:
		return runSimple(c, "wallet_import_seed", map[string]interface{}{
			"seed_phrase": seed,
			"password":    password,
		})
	case "" == seed && "" != key:
		return runSimple(c, "wallet_import_key", map[string]interface{}{
			"private_key": key,
			"password":    password,
		})
	default:
		return ErrRequiredSeedOrKey
	}
}
