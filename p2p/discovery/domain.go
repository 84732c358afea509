// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"net"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/miekg/dns"
	ma "github.com/multiformats/go-multiaddr"
)

const (
	minimumInterval = 1 * time.Minute
	maximumInterval = 1 * time.Hour
	configFile      = "/etc/resolv.conf"
	maxNameServers  = 3
)

// Connector - dials discovered peers
type Connector interface {
	Connect([]ma.Multiaddr) int
}

// Domain - background refresh of the seed domains
type Domain struct {
	sync.Mutex
	log       *logger.L
	domains   []string
	connector Connector
	lookuper  Lookuper
	interval  func(string) time.Duration
	changed   chan struct{}
}

// New - look up every seed domain once then return the background
// process that keeps them fresh
func New(log *logger.L, domains []string, connector Connector, f func(string) ([]string, error)) *Domain {
	log.Info("initialising…")

	d := &Domain{
		log:       log,
		domains:   domains,
		connector: connector,
		lookuper:  NewLookuper(log, f),
		changed:   make(chan struct{}, 1),
	}
	d.interval = func(domain string) time.Duration {
		return interval(domain, log)
	}
	d.refresh()
	return d
}

// SetDomains - replace the seed domains, they are looked up at once
func (d *Domain) SetDomains(domains []string) {
	d.Lock()
	d.domains = domains
	d.Unlock()

	select {
	case d.changed <- struct{}{}:
	default:
	}
}

// Domains - current seed domains
func (d *Domain) Domains() []string {
	d.Lock()
	defer d.Unlock()
	return append([]string{}, d.domains...)
}

func (d *Domain) refresh() {
	for _, domain := range d.Domains() {
		addrs, err := d.lookuper.Lookup(domain)
		if nil != err || 0 == len(addrs) {
			continue
		}
		n := d.connector.Connect(addrs)
		d.log.Infof("domain: %s  peers: %d  connected: %d", domain, len(addrs), n)
	}
}

// shortest refresh period over all domains
func (d *Domain) next() time.Duration {
	t := maximumInterval
	for _, domain := range d.Domains() {
		if i := d.interval(domain); i < t {
			t = i
		}
	}
	return t
}

// Run - background processing interface
func (d *Domain) Run(_ interface{}, shutdown <-chan struct{}) {
	timer := time.After(d.next())

loop:
	for {
		select {
		case <-timer:
			d.refresh()
			timer = time.After(d.next())

		case <-d.changed:
			d.refresh()
			timer = time.After(d.next())

		case <-shutdown:
			break loop
		}
	}
	d.log.Info("shutting down…")
	d.log.Flush()
}

// Clamp - limit a TTL derived period
func Clamp(t time.Duration) time.Duration {
	if t < minimumInterval {
		return minimumInterval
	}
	if t > maximumInterval {
		return maximumInterval
	}
	return t
}

// get the refresh interval from the SOA TTL of a domain
func interval(domain string, log *logger.L) time.Duration {
	conf, err := dns.ClientConfigFromFile(configFile)
	if nil != err {
		log.Warnf("reading %s error: %s", configFile, err)
		return maximumInterval
	}
	if 0 == len(conf.Servers) {
		log.Warn("cannot get dns name server")
		return maximumInterval
	}

	servers := conf.Servers
	if len(servers) > maxNameServers {
		servers = servers[:maxNameServers]
	}

	for _, server := range servers {
		s := net.JoinHostPort(server, conf.Port)
		c := dns.Client{}
		msg := dns.Msg{}
		msg.SetQuestion(dns.Fqdn(domain), dns.TypeSOA)

		r, _, err := c.Exchange(&msg, s)
		if nil != err {
			log.Debugf("exchange with dns server %q error: %s", s, err)
			continue
		}

		for _, section := range [][]dns.RR{r.Answer, r.Ns, r.Extra} {
			if ttl := TTL(section); 0 < ttl {
				t := Clamp(time.Duration(ttl) * time.Second)
				log.Infof("domain: %s  TTL: %d  refresh: %v", domain, ttl, t)
				return t
			}
		}
	}
	return maximumInterval
}

// TTL - from the first SOA record, else the first record
func TTL(rrs []dns.RR) uint32 {
	for _, rr := range rrs {
		if soa, ok := rr.(*dns.SOA); ok {
			return soa.Hdr.Ttl
		}
	}
	if 0 < len(rrs) {
		return rrs[0].Header().Ttl
	}
	return 0
}
