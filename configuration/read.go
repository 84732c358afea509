// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/pelletier/go-toml"

	"github.com/tari-l2/tari-l2-node/fault"
)

type fileKind int

const (
	jsonFile fileKind = iota
	tomlFile
	luaFile
)

func kindOf(fileName string) fileKind {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".toml":
		return tomlFile
	case ".lua", ".conf":
		return luaFile
	default:
		return jsonFile
	}
}

// ReadFile - decode a configuration file into a struct pointer,
// fields not present in the file keep their current values
func ReadFile(fileName string, config interface{}) error {

	// since interface{} is untyped, have to verify type compatibility at run-time
	rv := reflect.ValueOf(config)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fault.ErrUnsupportedConfiguration
	}

	if luaFile == kindOf(fileName) {
		return readLua(fileName, config)
	}

	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return err
	}

	switch kindOf(fileName) {
	case tomlFile:
		return toml.Unmarshal(data, config)
	default:
		return json.Unmarshal(data, config)
	}
}

// WriteFile - encode a configuration, Lua files cannot be written
func WriteFile(fileName string, config interface{}) error {
	var data []byte
	var err error

	switch kindOf(fileName) {
	case tomlFile:
		data, err = toml.Marshal(config)
	case luaFile:
		return fault.ErrUnsupportedConfiguration
	default:
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if nil != err {
		return err
	}
	return ioutil.WriteFile(fileName, data, 0600)
}
