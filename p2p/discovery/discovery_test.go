// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/miekg/dns"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/assert"

	"github.com/tari-l2/tari-l2-node/fault"
	"github.com/tari-l2/tari-l2-node/p2p/discovery/mocks"
)

const (
	testDirectory = "testing"
	logCategory   = "testing"
	peerAddress   = "/ip4/198.51.100.7/tcp/9000/p2p/QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N"
)

func setupTestLogger() {
	os.RemoveAll(testDirectory)
	_ = os.Mkdir(testDirectory, 0700)
	_ = logger.Initialise(logger.Configuration{
		Directory: testDirectory,
		File:      "test.log",
		Size:      50000,
		Count:     10,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	})
}

func teardownTestLogger() {
	logger.Finalise()
	os.RemoveAll(testDirectory)
}

func TestParse(t *testing.T) {
	expected, err := ma.NewMultiaddr(peerAddress)
	assert.Nil(t, err, "multiaddr error")

	a, err := Parse("  tari-l2=" + peerAddress + " ")
	assert.Nil(t, err, "valid record rejected")
	assert.True(t, expected.Equal(a), "wrong address")

	_, err = Parse("bitmark-p2p=v1 a=127.0.0.1")
	assert.Equal(t, fault.ErrInvalidDNSTXTRecord, err, "foreign record accepted")

	_, err = Parse("tari-l2=not-a-multiaddr")
	assert.Equal(t, fault.ErrInvalidDNSTXTRecord, err, "bad address accepted")
}

func TestLookup(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	f := func(domain string) ([]string, error) {
		return []string{
			"v=spf1 -all",
			"tari-l2=" + peerAddress,
			"tari-l2=/ip4/198.51.100.8/tcp/9001",
		}, nil
	}
	l := NewLookuper(logger.New(logCategory), f)

	addrs, err := l.Lookup("seed.example.com")
	assert.Nil(t, err, "lookup error")
	assert.Equal(t, 2, len(addrs), "wrong address count")
	expected, _ := ma.NewMultiaddr(peerAddress)
	assert.True(t, expected.Equal(addrs[0]), "wrong first address")

	_, err = l.Lookup("")
	assert.Equal(t, fault.ErrInvalidNodeDomain, err, "empty domain accepted")

	failing := NewLookuper(logger.New(logCategory), func(string) ([]string, error) {
		return nil, errors.New("no such host")
	})
	_, err = failing.Lookup("seed.example.com")
	assert.NotNil(t, err, "lookup error lost")
}

func TestNewConnects(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := mocks.NewMockConnector(ctl)
	c.EXPECT().Connect(gomock.Any()).Return(1).Times(1)

	f := func(string) ([]string, error) {
		return []string{"tari-l2=" + peerAddress}, nil
	}
	d := New(logger.New(logCategory), []string{"seed.example.com"}, c, f)
	assert.Equal(t, []string{"seed.example.com"}, d.Domains(), "wrong domains")
}

func TestSetDomains(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	connected := make(chan struct{}, 1)
	c := mocks.NewMockConnector(ctl)
	c.EXPECT().Connect(gomock.Any()).DoAndReturn(func(interface{}) int {
		connected <- struct{}{}
		return 1
	}).Times(1)

	f := func(domain string) ([]string, error) {
		if "new.example.com" != domain {
			return nil, nil
		}
		return []string{"tari-l2=" + peerAddress}, nil
	}
	d := New(logger.New(logCategory), []string{}, c, f)
	d.interval = func(string) time.Duration { return maximumInterval }

	shutdown := make(chan struct{})
	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		d.Run(nil, shutdown)
		wg.Done()
	}()

	d.SetDomains([]string{"new.example.com"})

	select {
	case <-connected:
	case <-time.After(5 * time.Second):
		t.Fatalf("new domain not looked up")
	}

	close(shutdown)
	wg.Wait()
}

func TestRunWhenShutdown(t *testing.T) {
	setupTestLogger()
	defer teardownTestLogger()

	ctl := gomock.NewController(t)
	defer ctl.Finish()

	c := mocks.NewMockConnector(ctl)
	d := New(logger.New(logCategory), nil, c, func(string) ([]string, error) { return nil, nil })

	shutdown := make(chan struct{})
	wg := new(sync.WaitGroup)
	wg.Add(1)
	go func() {
		d.Run(nil, shutdown)
		wg.Done()
	}()

	shutdown <- struct{}{}
	wg.Wait()
}

func TestClamp(t *testing.T) {
	assert.Equal(t, time.Minute, Clamp(30*time.Second), "short TTL not raised")
	assert.Equal(t, time.Hour, Clamp(2*time.Hour), "long TTL not lowered")
	assert.Equal(t, 10*time.Minute, Clamp(10*time.Minute), "TTL changed")
}

func TestTTL(t *testing.T) {
	a := &dns.A{Hdr: dns.RR_Header{Name: "x.", Rrtype: dns.TypeA, Ttl: 120}}
	soa := &dns.SOA{Hdr: dns.RR_Header{Name: "x.", Rrtype: dns.TypeSOA, Ttl: 900}}

	assert.Equal(t, uint32(0), TTL(nil), "empty section")
	assert.Equal(t, uint32(120), TTL([]dns.RR{a}), "plain record")
	assert.Equal(t, uint32(900), TTL([]dns.RR{a, soa}), "SOA not preferred")
}
