// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"strings"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/rpc/ratelimit"
	"github.com/tari-l2/tari-l2-node/wallet"
)

const (
	rateLimitWallet = 20
	rateBurstWallet = 10

	walletSource  = "embedded_wallet"
	balanceSource = "wallet_utxo_scan"

	createdMessage    = "Full Tari wallet created with 24-word seed phrase. This wallet can be used for mining and marketplace. SAVE YOUR SEED PHRASE!"
	importSeedMessage = "Wallet imported successfully from 24-word seed phrase"
	importKeyMessage  = "Wallet imported from private key (no seed phrase available for this import method)"
	exportMessage     = "Wallet exported from local storage"
)

// Balances - base layer balance lookup
type Balances interface {
	Balance(address string) (uint64, error)
}

// Wallet - type for RPC calls
type Wallet struct {
	Log      *logger.L
	Limiter  *rate.Limiter
	Store    *wallet.Store
	Network  l1client.Network
	balances Balances
}

// New - create the wallet service
func New(log *logger.L, store *wallet.Store, network l1client.Network, balances Balances) *Wallet {
	return &Wallet{
		Log:      log,
		Limiter:  rate.NewLimiter(rateLimitWallet, rateBurstWallet),
		Store:    store,
		Network:  network,
		balances: balances,
	}
}

// Reply - a wallet with its secrets
type Reply struct {
	Address    string `json:"address"`
	AddressHex string `json:"address_hex"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"`
	SeedPhrase string `json:"seed_phrase"`
	Source     string `json:"source"`
	WalletFile string `json:"wallet_file"`
	Message    string `json:"message"`
}

func fill(reply *Reply, w *wallet.Wallet, file string, message string) {
	reply.Address = w.Address()
	reply.AddressHex = w.AddressHex()
	reply.PublicKey = w.PublicKeyHex()
	reply.PrivateKey = w.ExportPrivateKey()
	reply.SeedPhrase = w.SeedPhrase()
	reply.Source = walletSource
	reply.WalletFile = file
	reply.Message = message
}

// ---

// CreateArguments - optional password to seal the stored secrets
type CreateArguments struct {
	Password string `json:"password"`
}

// Create - a new wallet, saved as the current wallet
func (wa *Wallet) Create(arguments *CreateArguments, reply *Reply) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}

	w, err := wallet.Create(wa.Network)
	if nil != err {
		return err
	}
	file, err := wa.Store.Save(w, arguments.Password)
	if nil != err {
		wa.Log.Errorf("save wallet error: %s", err)
		return err
	}

	fill(reply, w, file, createdMessage)
	return nil
}

// ---

// ImportSeedArguments - recover from a seed phrase
type ImportSeedArguments struct {
	SeedPhrase string `json:"seed_phrase"`
	Password   string `json:"password"`
}

// ImportSeed - recover a wallet from its 24 words
func (wa *Wallet) ImportSeed(arguments *ImportSeedArguments, reply *Reply) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}
	if "" == strings.TrimSpace(arguments.SeedPhrase) {
		return fault.MissingParameters
	}

	w, err := wallet.FromSeedPhrase(arguments.SeedPhrase, wa.Network)
	if nil != err {
		return err
	}
	file, err := wa.Store.Save(w, arguments.Password)
	if nil != err {
		return err
	}

	fill(reply, w, file, importSeedMessage)
	return nil
}

// ---

// ImportKeyArguments - import a bare private key
type ImportKeyArguments struct {
	PrivateKey string `json:"private_key"`
	Password   string `json:"password"`
}

// ImportKey - import a wallet without a seed phrase
func (wa *Wallet) ImportKey(arguments *ImportKeyArguments, reply *Reply) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}
	if "" == arguments.PrivateKey {
		return fault.MissingParameters
	}

	w, err := wallet.FromPrivateKey(arguments.PrivateKey, wa.Network)
	if nil != err {
		return err
	}
	file, err := wa.Store.Save(w, arguments.Password)
	if nil != err {
		return err
	}

	fill(reply, w, file, importKeyMessage)
	return nil
}

// ---

// ExportArguments - a stored wallet
type ExportArguments struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Export - the secrets of a stored wallet
func (wa *Wallet) Export(arguments *ExportArguments, reply *Reply) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}
	if "" == arguments.Address {
		return fault.MissingParameters
	}

	w, err := wa.Store.Load(arguments.Address, arguments.Password)
	if nil != err {
		return err
	}

	fill(reply, w, wallet.FileName(w.AddressHex()), exportMessage)
	return nil
}

// ---

// ListArguments - empty arguments for the wallet list
type ListArguments struct{}

// List - the public parts of every stored wallet
func (wa *Wallet) List(_ *ListArguments, reply *[]wallet.Summary) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}

	summaries, err := wa.Store.List()
	if nil != err {
		return err
	}
	*reply = summaries
	return nil
}

// ---

// SignArguments - a message to sign with a stored wallet
type SignArguments struct {
	Address  string `json:"address"`
	Message  string `json:"message"`
	Password string `json:"password"`
}

// SignReply - detached signature
type SignReply struct {
	Signature account.Signature `json:"signature"`
	PublicKey account.PublicKey `json:"public_key"`
}

// Sign - sign a message
func (wa *Wallet) Sign(arguments *SignArguments, reply *SignReply) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}
	if "" == arguments.Address || "" == arguments.Message {
		return fault.MissingParameters
	}

	signature, publicKey, err := wa.Store.Sign(arguments.Address, []byte(arguments.Message), arguments.Password)
	if nil != err {
		return err
	}
	reply.Signature = signature
	reply.PublicKey = publicKey
	return nil
}

// ---

// BalanceArguments - key material is optional, the current wallet is
// used without it
type BalanceArguments struct {
	Address    string `json:"address"`
	SeedPhrase string `json:"seed_phrase"`
	PrivateKey string `json:"private_key"`
	Password   string `json:"password"`
}

// BalanceReply - base layer balance
type BalanceReply struct {
	Balance uint64 `json:"balance"`
	Address string `json:"address"`
	Source  string `json:"source"`
}

// L1Balance - scan the base layer for the balance of a wallet
func (wa *Wallet) L1Balance(arguments *BalanceArguments, reply *BalanceReply) error {
	if err := ratelimit.Limit(wa.Limiter); nil != err {
		return err
	}

	var w *wallet.Wallet
	var err error
	switch {
	case "" != arguments.SeedPhrase:
		w, err = wallet.FromSeedPhrase(arguments.SeedPhrase, wa.Network)
	case "" != arguments.PrivateKey:
		w, err = wallet.FromPrivateKey(arguments.PrivateKey, wa.Network)
	default:
		w, err = wa.Store.Current(arguments.Password)
	}
	if nil != err {
		return err
	}

	balance, err := wa.balances.Balance(w.Address())
	if nil != err {
		return err
	}

	reply.Balance = balance
	reply.Address = w.Address()
	reply.Source = balanceSource
	return nil
}
