// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpc - this is to setup and handle all of the incoming JSON-RPC 2.0
// requests from clients of the layer two node
//
// requests arrive as HTTP POST on any path, on optional HTTPS
// listeners, or as newline delimited messages on raw TCP sockets;
// every transport shares the same net/rpc services
package rpc
