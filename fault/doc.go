// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - every error value a node operation can return
//
// errors are typed by class (exists, invalid, length, not found,
// process, record) so callers, including the JSON-RPC layer, can
// test the class instead of matching message text
package fault
