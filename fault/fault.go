// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

import (
	"fmt"
)

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError

// common errors - keep in alphabetic order
var (
	AlreadyInitialised          = ExistsError("already initialised")
	ErrActionExpired            = InvalidError("Action expired (timestamp too old)")
	ErrAmountOverflow           = InvalidError("amount overflow")
	ErrAmountUnderflow          = InvalidError("amount underflow")
	ErrChannelAlreadyExists     = ExistsError("channel already exists")
	ErrChannelNotFound          = NotFoundError("channel not found")
	ErrCheckpointNotFound       = NotFoundError("checkpoint not found")
	ErrCollateralNotFound       = NotFoundError("locked collateral not found")
	ErrDatabase                 = ProcessError("database error")
	ErrDuplicateParticipant     = InvalidError("duplicate participant")
	ErrEscrowNotFound           = NotFoundError("escrow not found")
	ErrInvalidAddress           = InvalidError("invalid address")
	ErrInvalidAmount            = InvalidError("amount must be greater than zero")
	ErrInvalidChannelState      = InvalidError("Invalid channel state")
	ErrInvalidCount             = InvalidError("invalid count")
	ErrInvalidCursor            = InvalidError("invalid cursor")
	ErrInvalidDigest            = InvalidError("invalid digest")
	ErrInvalidDNSTXTRecord      = InvalidError("invalid DNS TXT record")
	ErrInvalidIPAddress         = InvalidError("invalid IP address")
	ErrInvalidLoggerChannel     = InvalidError("invalid logger channel")
	ErrInvalidMessage           = RecordError("invalid peer message")
	ErrInvalidNetwork           = InvalidError("invalid network")
	ErrInvalidNodeDomain        = InvalidError("invalid node domain")
	ErrInvalidOrderStatus       = InvalidError("invalid order status")
	ErrInvalidPassword          = InvalidError("invalid password")
	ErrInvalidPrivateKey        = LengthError("Private key must be 32 bytes")
	ErrInvalidPublicKey         = LengthError("public key must be 32 bytes")
	ErrInvalidSeedPhrase        = InvalidError("invalid seed phrase")
	ErrInvalidSeedPhraseLength  = LengthError("Seed phrase must be 24 words")
	ErrInvalidSignature         = InvalidError("Invalid signature")
	ErrInvalidStateTransition   = InvalidError("Invalid state transition")
	ErrL1ConnectionRequired     = ProcessError("L1 connection required to submit disputes")
	ErrListingInactive          = InvalidError("listing is not active")
	ErrListingNotFound          = NotFoundError("listing not found")
	ErrMessageTooShort          = LengthError("message too short")
	ErrMissingTitle             = InvalidError("title is required")
	ErrNetwork                  = ProcessError("network error")
	ErrNoParticipants           = InvalidError("channel requires at least two participants")
	ErrNoPendingUpdate          = NotFoundError("no pending state update")
	ErrNoWalletFound            = NotFoundError("No wallet found. Please provide seed_phrase or private_key, or create a wallet first")
	ErrNotTransactionPack       = RecordError("not a packed state update")
	ErrOrderNotFound            = NotFoundError("order not found")
	ErrParticipantNotFound      = NotFoundError("Participant not found")
	ErrPendingUpdateExists      = ExistsError("channel has an update awaiting signatures")
	ErrProfileExists            = ExistsError("profile already exists")
	ErrProfileNotFound          = NotFoundError("profile not found")
	ErrSerialization            = ProcessError("serialization error")
	ErrSignatureNotParticipant  = InvalidError("signer is not a channel participant")
	ErrTimeout                  = ProcessError("operation timed out")
	ErrUnknownCommand           = InvalidError("unknown command")
	ErrUnknownUpdateType        = RecordError("unknown state update type")
	ErrWalletNotFound           = NotFoundError("wallet not found")
	ErrWrongChain               = InvalidError("message from a different chain")
	ErrWrongNonce               = InvalidError("nonce does not match pending update")
	MissingParameters           = InvalidError("Missing parameters")
	NotInitialised              = NotFoundError("not initialised")
	RateLimiting                = ProcessError("rate limiting")
	ErrTooFewParameters         = InvalidError("too few parameters")
	ErrUnsupportedConfiguration = InvalidError("unsupported configuration file type")
)

// InsufficientBalanceError - a transfer or order amount exceeds the
// available balance
type InsufficientBalanceError struct {
	Required  uint64
	Available uint64
}

func (e InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient balance: required %d, available %d", e.Required, e.Available)
}

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool   { _, ok := e.(RecordError); return ok }

// IsErrInsufficientBalance - true for a balance shortfall
func IsErrInsufficientBalance(e error) bool {
	_, ok := e.(InsufficientBalanceError)
	return ok
}

// InvalidParameter - build an invalid error carrying a specific message
func InvalidParameter(format string, arguments ...interface{}) error {
	return InvalidError(fmt.Sprintf(format, arguments...))
}

// StatusError - an operation is not permitted from the current status
func StatusError(verb string, kind string, status fmt.Stringer) error {
	return InvalidError(fmt.Sprintf("Cannot %s %s in status %s", verb, kind, status))
}
