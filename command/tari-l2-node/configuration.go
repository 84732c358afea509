// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/tari-l2/tari-l2-node/configuration"
	"github.com/tari-l2/tari-l2-node/fault"
)

const (
	defaultConfigFile = "config.toml"
	nodeKeyFile       = "node.key"
)

// log levels accepted by --log-level
var logLevels = map[string]string{
	"trace":    "debug",
	"debug":    "debug",
	"info":     "info",
	"warn":     "warn",
	"error":    "error",
	"critical": "critical",
}

// load the configuration, writing the defaults first if the file is
// missing
func getConfiguration(fileName string) (*configuration.NodeConfig, error) {
	if _, err := os.Stat(fileName); os.IsNotExist(err) {
		if err := writeDefaults(fileName); nil != err {
			return nil, err
		}
	}
	return configuration.Load(fileName)
}

func writeDefaults(fileName string) error {
	if d := filepath.Dir(fileName); "" != d {
		if err := os.MkdirAll(d, 0700); nil != err {
			return err
		}
	}
	return configuration.WriteFile(fileName, configuration.Default())
}

// override the default log level from the command line
func setLogLevel(config *configuration.NodeConfig, level string) error {
	if "" == level {
		return nil
	}
	l, ok := logLevels[strings.ToLower(level)]
	if !ok {
		return fault.InvalidParameter("log level: %q is not supported", level)
	}
	if nil == config.Logging.Levels {
		config.Logging.Levels = make(map[string]string)
	}
	config.Logging.Levels[logger.DefaultTag] = l
	return nil
}

func nodeKeyFileName(config *configuration.NodeConfig) string {
	return filepath.Join(config.DataDirectory, nodeKeyFile)
}
