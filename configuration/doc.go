// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - node configuration file handling
//
// the reader is picked from the file extension:
//
//   .toml         go-toml, also the form written by init
//   .lua / .conf  a Lua script returning a table, most of base Lua is
//                 available such as reading files and getenv
//   anything else JSON
package configuration
