// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"path/filepath"
	"reflect"
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"
)

// PeerUpdater - receives new peer lists from a changed file
type PeerUpdater interface {
	UpdatePeers(bootstrapPeers []string, dnsSeeds []string)
}

// Watcher - re-reads the configuration file when it is written
type Watcher struct {
	sync.Mutex
	log      *logger.L
	fileName string
	network  NetworkType
	target   PeerUpdater
	watcher  *fsnotify.Watcher
}

// NewWatcher - watch a loaded configuration file
func NewWatcher(log *logger.L, fileName string, current *NodeConfig, target PeerUpdater) (*Watcher, error) {
	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if nil != err {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		return nil, err
	}
	if err := watcher.Add(fileName); nil != err {
		watcher.Close()
		return nil, err
	}

	return &Watcher{
		log:      log,
		fileName: fileName,
		network:  current.Network,
		target:   target,
		watcher:  watcher,
	}, nil
}

// Run - background process loop
func (w *Watcher) Run(args interface{}, shutdown <-chan struct{}) {
	log := w.log
	defer w.watcher.Close()

	log.Infof("watching: %s", w.fileName)
loop:
	for {
		select {
		case <-shutdown:
			break loop

		case err, ok := <-w.watcher.Errors:
			if !ok {
				break loop
			}
			log.Errorf("watch error: %s", err)

		case event, ok := <-w.watcher.Events:
			if !ok {
				break loop
			}
			log.Debugf("file event: %v", event)

			if isRemove(event) {
				log.Warnf("file: %s removed, stop watching", w.fileName)
				break loop
			}
			if filepath.Base(event.Name) != filepath.Base(w.fileName) {
				continue loop
			}
			if isChange(event) {
				w.reload()
			}
		}
	}
	log.Info("shutting down…")
	log.Flush()
}

// reload - a partial write fails to parse and is retried on the next event
func (w *Watcher) reload() {
	config := Default()
	if err := ReadFile(w.fileName, config); nil != err {
		w.log.Warnf("re-read: %s  error: %s", w.fileName, err)
		return
	}

	w.Lock()
	changed := !reflect.DeepEqual(w.network.BootstrapPeers, config.Network.BootstrapPeers) ||
		!reflect.DeepEqual(w.network.DNSSeeds, config.Network.DNSSeeds)
	if changed {
		w.network.BootstrapPeers = config.Network.BootstrapPeers
		w.network.DNSSeeds = config.Network.DNSSeeds
	}
	w.Unlock()

	if !changed {
		return
	}
	w.log.Infof("peers changed: bootstrap: %v  dns seeds: %v", config.Network.BootstrapPeers, config.Network.DNSSeeds)
	w.target.UpdatePeers(config.Network.BootstrapPeers, config.Network.DNSSeeds)
}

func isRemove(event fsnotify.Event) bool {
	return "" == event.Name || event.Op&fsnotify.Remove == fsnotify.Remove
}

func isChange(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Chmod == fsnotify.Chmod
}
