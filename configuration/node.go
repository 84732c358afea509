// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/l1client"
)

// basic defaults, relative paths are against the data directory
const (
	defaultDataDirectory = "./data"

	defaultTariAddress = "127.0.0.1"
	defaultTariPort    = 18142
	defaultTariNetwork = "esmeralda"

	defaultP2PListen = "/ip4/0.0.0.0/tcp/0"
	defaultMaxPeers  = 50

	defaultRPCAddress     = "127.0.0.1"
	defaultRPCPort        = 18000
	defaultRPCConnections = 100
	defaultKeyFile        = "rpc.key"
	defaultCertFile       = "rpc.crt"

	defaultSweepInterval  = 60
	defaultEscrowTimeout  = 86400
	defaultSettleInterval = 60

	defaultLogDirectory = "log"
	defaultLogFile      = "tari-l2-node.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// TariNodeType - base layer node access
type TariNodeType struct {
	Address string `gluamapper:"address" toml:"address" json:"address"`
	Port    int    `gluamapper:"port" toml:"port" json:"port"`
	Network string `gluamapper:"network" toml:"network" json:"network"`
}

// Endpoint - http URL of the base layer node
func (t TariNodeType) Endpoint() string {
	return fmt.Sprintf("http://%s:%d", t.Address, t.Port)
}

// NetworkType - peer to peer settings
type NetworkType struct {
	ListenAddress  string   `gluamapper:"listen_addr" toml:"listen_addr" json:"listen_addr"`
	BootstrapPeers []string `gluamapper:"bootstrap_peers" toml:"bootstrap_peers" json:"bootstrap_peers"`
	MaxPeers       int      `gluamapper:"max_peers" toml:"max_peers" json:"max_peers"`
	DNSSeeds       []string `gluamapper:"dns_seeds" toml:"dns_seeds" json:"dns_seeds"`
	PrivateKey     string   `gluamapper:"private_key" toml:"private_key" json:"private_key"`
}

// HTTPSType - extra HTTPS listeners
type HTTPSType struct {
	Listen []string `gluamapper:"listen" toml:"listen" json:"listen"`
}

// RPCType - JSON-RPC listeners
type RPCType struct {
	ListenAddress      string    `gluamapper:"listen_addr" toml:"listen_addr" json:"listen_addr"`
	Port               int       `gluamapper:"port" toml:"port" json:"port"`
	TCPListen          []string  `gluamapper:"tcp_listen" toml:"tcp_listen" json:"tcp_listen"`
	TCPUseTLS          bool      `gluamapper:"tcp_use_tls" toml:"tcp_use_tls" json:"tcp_use_tls"`
	HTTPS              HTTPSType `gluamapper:"https" toml:"https" json:"https"`
	MaximumConnections int       `gluamapper:"maximum_connections" toml:"maximum_connections" json:"maximum_connections"`
	Certificate        string    `gluamapper:"certificate" toml:"certificate" json:"certificate"`
	PrivateKey         string    `gluamapper:"private_key" toml:"private_key" json:"private_key"`
}

// Listen - the main HTTP listener address
func (r RPCType) Listen() string {
	return fmt.Sprintf("%s:%d", r.ListenAddress, r.Port)
}

// EscrowType - escrow sweeper settings, in seconds
type EscrowType struct {
	SweepInterval  int    `gluamapper:"sweep_interval" toml:"sweep_interval" json:"sweep_interval"`
	DefaultTimeout uint64 `gluamapper:"default_timeout" toml:"default_timeout" json:"default_timeout"`
}

// ChannelType - channel settlement settings, in seconds
type ChannelType struct {
	SettleInterval int `gluamapper:"settle_interval" toml:"settle_interval" json:"settle_interval"`
}

// LoggerType - log files and per tag levels
type LoggerType struct {
	Directory string            `gluamapper:"directory" toml:"directory" json:"directory"`
	File      string            `gluamapper:"file" toml:"file" json:"file"`
	Size      int               `gluamapper:"size" toml:"size" json:"size"`
	Count     int               `gluamapper:"count" toml:"count" json:"count"`
	Levels    map[string]string `gluamapper:"levels" toml:"levels" json:"levels"`
}

// Configuration - the logger form
func (l LoggerType) Configuration() logger.Configuration {
	levels := make(map[string]string, len(l.Levels))
	for k, v := range l.Levels {
		levels[k] = v
	}
	return logger.Configuration{
		Directory: l.Directory,
		File:      l.File,
		Size:      l.Size,
		Count:     l.Count,
		Levels:    levels,
	}
}

// NodeConfig - everything the node reads at startup
type NodeConfig struct {
	DataDirectory string       `gluamapper:"data_dir" toml:"data_dir" json:"data_dir"`
	TariNode      TariNodeType `gluamapper:"tari_node" toml:"tari_node" json:"tari_node"`
	Network       NetworkType  `gluamapper:"network" toml:"network" json:"network"`
	RPC           RPCType      `gluamapper:"rpc" toml:"rpc" json:"rpc"`
	Escrow        EscrowType   `gluamapper:"escrow" toml:"escrow" json:"escrow"`
	Channel       ChannelType  `gluamapper:"channel" toml:"channel" json:"channel"`
	Logging       LoggerType   `gluamapper:"logging" toml:"logging" json:"logging"`
}

// Default - a configuration with every default filled in
func Default() *NodeConfig {
	return &NodeConfig{
		DataDirectory: defaultDataDirectory,
		TariNode: TariNodeType{
			Address: defaultTariAddress,
			Port:    defaultTariPort,
			Network: defaultTariNetwork,
		},
		Network: NetworkType{
			ListenAddress:  defaultP2PListen,
			BootstrapPeers: []string{},
			MaxPeers:       defaultMaxPeers,
			DNSSeeds:       []string{},
		},
		RPC: RPCType{
			ListenAddress:      defaultRPCAddress,
			Port:               defaultRPCPort,
			TCPListen:          []string{},
			HTTPS:              HTTPSType{Listen: []string{}},
			MaximumConnections: defaultRPCConnections,
			Certificate:        defaultCertFile,
			PrivateKey:         defaultKeyFile,
		},
		Escrow: EscrowType{
			SweepInterval:  defaultSweepInterval,
			DefaultTimeout: defaultEscrowTimeout,
		},
		Channel: ChannelType{
			SettleInterval: defaultSettleInterval,
		},
		Logging: LoggerType{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "info",
			},
		},
	}
}

// Load - read, default and validate a configuration file
func Load(fileName string) (*NodeConfig, error) {
	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	config := Default()
	if err := ReadFile(fileName, config); nil != err {
		return nil, err
	}

	base, _ := filepath.Split(fileName)
	if err := config.Validate(base); nil != err {
		return nil, err
	}
	return config, nil
}

// Validate - fill zero values with defaults, make paths absolute
// against the base directory and create the data directory
func (config *NodeConfig) Validate(base string) error {
	d := Default()

	if "" == config.DataDirectory || "~" == config.DataDirectory {
		config.DataDirectory = d.DataDirectory
	}
	if "" == config.TariNode.Address {
		config.TariNode.Address = d.TariNode.Address
	}
	if 0 == config.TariNode.Port {
		config.TariNode.Port = d.TariNode.Port
	}
	if "" == config.TariNode.Network {
		config.TariNode.Network = d.TariNode.Network
	}
	if _, err := l1client.ParseNetwork(config.TariNode.Network); nil != err {
		return fault.InvalidParameter("network: %q is not supported", config.TariNode.Network)
	}
	if "" == config.Network.ListenAddress {
		config.Network.ListenAddress = d.Network.ListenAddress
	}
	if config.Network.MaxPeers <= 0 {
		config.Network.MaxPeers = d.Network.MaxPeers
	}
	if "" == config.RPC.ListenAddress {
		config.RPC.ListenAddress = d.RPC.ListenAddress
	}
	if 0 == config.RPC.Port {
		config.RPC.Port = d.RPC.Port
	}
	if config.RPC.MaximumConnections <= 0 {
		config.RPC.MaximumConnections = d.RPC.MaximumConnections
	}
	if "" == config.RPC.Certificate {
		config.RPC.Certificate = d.RPC.Certificate
	}
	if "" == config.RPC.PrivateKey {
		config.RPC.PrivateKey = d.RPC.PrivateKey
	}
	if config.Escrow.SweepInterval <= 0 {
		config.Escrow.SweepInterval = d.Escrow.SweepInterval
	}
	if 0 == config.Escrow.DefaultTimeout {
		config.Escrow.DefaultTimeout = d.Escrow.DefaultTimeout
	}
	if config.Channel.SettleInterval <= 0 {
		config.Channel.SettleInterval = d.Channel.SettleInterval
	}
	if "" == config.Logging.Directory {
		config.Logging.Directory = d.Logging.Directory
	}
	if "" == config.Logging.File {
		config.Logging.File = d.Logging.File
	}
	if config.Logging.Size <= 0 {
		config.Logging.Size = d.Logging.Size
	}
	if config.Logging.Count <= 0 {
		config.Logging.Count = d.Logging.Count
	}
	if nil == config.Logging.Levels {
		config.Logging.Levels = d.Logging.Levels
	}

	switch filepath.Dir(config.Logging.File) {
	case "", ".":
	default:
		return fault.InvalidParameter("files: %q is not plain name", config.Logging.File)
	}

	config.DataDirectory = ensureAbsolute(base, config.DataDirectory)

	for _, f := range []*string{
		&config.RPC.Certificate,
		&config.RPC.PrivateKey,
		&config.Logging.Directory,
	} {
		*f = ensureAbsolute(config.DataDirectory, *f)
	}

	for _, d := range []string{
		config.DataDirectory,
		config.Logging.Directory,
	} {
		if err := os.MkdirAll(d, 0700); nil != err {
			return err
		}
	}
	return nil
}

// L1Network - the parsed base layer network
func (config *NodeConfig) L1Network() l1client.Network {
	n, _ := l1client.ParseNetwork(config.TariNode.Network)
	return n
}

// SweepInterval - escrow sweep period
func (config *NodeConfig) SweepInterval() time.Duration {
	return time.Duration(config.Escrow.SweepInterval) * time.Second
}

// SettleInterval - channel settlement period
func (config *NodeConfig) SettleInterval() time.Duration {
	return time.Duration(config.Channel.SettleInterval) * time.Second
}

// DatabaseFile - the leveldb directory
func (config *NodeConfig) DatabaseFile() string {
	return filepath.Join(config.DataDirectory, "l2.leveldb")
}

func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
