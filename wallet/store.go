// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/tari-l2/tari-l2-node/account"
	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
	"github.com/tari-l2/tari-l2-node/storage"
)

// file names inside the data directory
const (
	CurrentWalletFile = "current_wallet.json"
	walletFilePrefix  = "wallet_"
	walletFileSuffix  = ".json"
	walletFileMode    = 0600
)

// argon2id parameters
const (
	saltLength    = 16
	nonceLength   = 24
	keyLength     = 32
	argonTime     = 1
	argonMemory   = 64 * 1024
	argonThreads  = 4
	fileNameChars = 16
)

// Record - the on disk form of a wallet
//
// a sealed record has an empty private key and seed phrase, those are
// inside the ciphertext
type Record struct {
	Address    string `json:"address"`
	AddressHex string `json:"address_hex"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key,omitempty"`
	SeedPhrase string `json:"seed_phrase,omitempty"`
	Network    string `json:"network"`
	CreatedAt  uint64 `json:"created_at"`
	Salt       string `json:"salt,omitempty"`
	Nonce      string `json:"nonce,omitempty"`
	Ciphertext string `json:"ciphertext,omitempty"`
}

// IsSealed - true if the keys are password protected
func (r *Record) IsSealed() bool {
	return "" != r.Ciphertext
}

type secrets struct {
	PrivateKey string `json:"private_key"`
	SeedPhrase string `json:"seed_phrase"`
}

type indexEntry struct {
	File    string `json:"file"`
	Address string `json:"address"`
}

// Store - wallet files in the data directory
type Store struct {
	sync.RWMutex
	log       *logger.L
	directory string
	network   l1client.Network
	index     storage.Handle
	keys      map[account.PublicKey]*account.PrivateKey
}

// NewStore - open the wallet directory, unsealed wallets become local
// signing keys
func NewStore(log *logger.L, directory string, network l1client.Network) (*Store, error) {
	s := &Store{
		log:       log,
		directory: directory,
		network:   network,
		index:     storage.Pool.Wallets,
		keys:      make(map[account.PublicKey]*account.PrivateKey),
	}

	records, err := s.list()
	if nil != err {
		return nil, err
	}
	for _, r := range records {
		if r.IsSealed() {
			continue
		}
		w, err := s.open(&r, "")
		if nil != err {
			log.Warnf("skip wallet: %s  error: %s", r.AddressHex, err)
			continue
		}
		s.keys[w.PublicKey()] = w.PrivateKey()
		_ = s.index.PutJSON(w.PublicKey().Bytes(), indexEntry{
			File:    FileName(w.AddressHex()),
			Address: w.Address(),
		})
	}
	log.Infof("wallets: %d  local keys: %d", len(records), len(s.keys))
	return s, nil
}

// FileName - the per wallet file
func FileName(addressHex string) string {
	if len(addressHex) > fileNameChars {
		addressHex = addressHex[:fileNameChars]
	}
	return walletFilePrefix + addressHex + walletFileSuffix
}

// Save - write the wallet and make it current, returns the wallet file
// path
func (s *Store) Save(w *Wallet, password string) (string, error) {
	r := Record{
		Address:    w.Address(),
		AddressHex: w.AddressHex(),
		PublicKey:  w.PublicKeyHex(),
		Network:    w.Network().Name(),
		CreatedAt:  uint64(time.Now().Unix()),
	}
	if "" == password {
		r.PrivateKey = w.ExportPrivateKey()
		r.SeedPhrase = w.SeedPhrase()
	} else if err := seal(&r, w, password); nil != err {
		return "", err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if nil != err {
		return "", err
	}

	s.Lock()
	defer s.Unlock()

	name := FileName(r.AddressHex)
	path := filepath.Join(s.directory, name)
	if err := ioutil.WriteFile(path, data, walletFileMode); nil != err {
		return "", err
	}
	if err := ioutil.WriteFile(filepath.Join(s.directory, CurrentWalletFile), data, walletFileMode); nil != err {
		return "", err
	}

	err = s.index.PutJSON(w.PublicKey().Bytes(), indexEntry{
		File:    name,
		Address: r.Address,
	})
	if nil != err {
		return "", err
	}
	s.keys[w.PublicKey()] = w.PrivateKey()

	s.log.Infof("saved wallet: %s  sealed: %t", r.Address, r.IsSealed())
	return path, nil
}

// Load - read a stored wallet by hex or base58 address
func (s *Store) Load(address string, password string) (*Wallet, error) {
	_, key, err := ParseAddress(address)
	if nil != err {
		return nil, err
	}

	s.RLock()
	defer s.RUnlock()

	var entry indexEntry
	found, err := s.index.GetJSON(key.Bytes(), &entry)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrWalletNotFound
	}

	r, err := readRecord(filepath.Join(s.directory, entry.File))
	if os.IsNotExist(err) {
		return nil, fault.ErrWalletNotFound
	} else if nil != err {
		return nil, err
	}
	return s.open(r, password)
}

// Current - the most recently saved wallet
func (s *Store) Current(password string) (*Wallet, error) {
	s.RLock()
	defer s.RUnlock()

	r, err := readRecord(filepath.Join(s.directory, CurrentWalletFile))
	if os.IsNotExist(err) {
		return nil, fault.ErrNoWalletFound
	} else if nil != err {
		return nil, err
	}
	return s.open(r, password)
}

// Summary - the public parts of a stored wallet
type Summary struct {
	Address    string `json:"address"`
	AddressHex string `json:"address_hex"`
	PublicKey  string `json:"public_key"`
	Network    string `json:"network"`
	CreatedAt  uint64 `json:"created_at"`
	Encrypted  bool   `json:"encrypted"`
}

// List - all stored wallets ordered by address
func (s *Store) List() ([]Summary, error) {
	s.RLock()
	defer s.RUnlock()

	records, err := s.list()
	if nil != err {
		return nil, err
	}
	summaries := make([]Summary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, Summary{
			Address:    r.Address,
			AddressHex: r.AddressHex,
			PublicKey:  r.PublicKey,
			Network:    r.Network,
			CreatedAt:  r.CreatedAt,
			Encrypted:  r.IsSealed(),
		})
	}
	return summaries, nil
}

func (s *Store) list() ([]Record, error) {
	names, err := filepath.Glob(filepath.Join(s.directory, walletFilePrefix+"*"+walletFileSuffix))
	if nil != err {
		return nil, err
	}

	records := make([]Record, 0, len(names))
	for _, name := range names {
		r, err := readRecord(name)
		if nil != err {
			s.log.Warnf("unreadable wallet file: %s  error: %s", name, err)
			continue
		}
		records = append(records, *r)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Address < records[j].Address
	})
	return records, nil
}

// Sign - sign a message with a stored wallet
func (s *Store) Sign(address string, message []byte, password string) (account.Signature, account.PublicKey, error) {
	w, err := s.Load(address, password)
	if nil != err {
		return account.Signature{}, account.PublicKey{}, err
	}
	return w.Sign(message), w.PublicKey(), nil
}

// PrivateKey - local key lookup for channel signing
func (s *Store) PrivateKey(key account.PublicKey) (*account.PrivateKey, bool) {
	s.RLock()
	defer s.RUnlock()
	k, ok := s.keys[key]
	return k, ok
}

func (s *Store) open(r *Record, password string) (*Wallet, error) {
	network, err := l1client.ParseNetwork(r.Network)
	if nil != err {
		network = s.network
	}

	privateKey := r.PrivateKey
	seedPhrase := r.SeedPhrase
	if r.IsSealed() {
		sec, err := unseal(r, password)
		if nil != err {
			return nil, err
		}
		privateKey = sec.PrivateKey
		seedPhrase = sec.SeedPhrase
	}

	if "" != seedPhrase {
		return FromSeedPhrase(seedPhrase, network)
	}
	return FromPrivateKey(privateKey, network)
}

func readRecord(path string) (*Record, error) {
	data, err := ioutil.ReadFile(path)
	if nil != err {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(data, &r); nil != err {
		return nil, fault.ErrSerialization
	}
	return &r, nil
}

func boxKey(password string, salt []byte) *[keyLength]byte {
	var key [keyLength]byte
	copy(key[:], argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, keyLength))
	return &key
}

func seal(r *Record, w *Wallet, password string) error {
	plaintext, err := json.Marshal(secrets{
		PrivateKey: w.ExportPrivateKey(),
		SeedPhrase: w.SeedPhrase(),
	})
	if nil != err {
		return err
	}

	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); nil != err {
		return err
	}
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); nil != err {
		return err
	}

	ciphertext := secretbox.Seal(nil, plaintext, &nonce, boxKey(password, salt))

	r.Salt = hex.EncodeToString(salt)
	r.Nonce = hex.EncodeToString(nonce[:])
	r.Ciphertext = hex.EncodeToString(ciphertext)
	return nil
}

func unseal(r *Record, password string) (*secrets, error) {
	if "" == password {
		return nil, fault.ErrInvalidPassword
	}

	salt, err := hex.DecodeString(r.Salt)
	if nil != err {
		return nil, fault.ErrSerialization
	}
	n, err := hex.DecodeString(r.Nonce)
	if nil != err || nonceLength != len(n) {
		return nil, fault.ErrSerialization
	}
	ciphertext, err := hex.DecodeString(r.Ciphertext)
	if nil != err {
		return nil, fault.ErrSerialization
	}

	var nonce [nonceLength]byte
	copy(nonce[:], n)
	plaintext, ok := secretbox.Open(nil, ciphertext, &nonce, boxKey(password, salt))
	if !ok {
		return nil, fault.ErrInvalidPassword
	}

	var sec secrets
	if err := json.Unmarshal(plaintext, &sec); nil != err {
		return nil, fault.ErrSerialization
	}
	return &sec, nil
}
