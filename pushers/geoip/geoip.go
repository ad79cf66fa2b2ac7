// Copyright 2016-2019 DutchSec (https://dutchsec.com/)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package geoip annotates events with the country of their source address.
package geoip

import (
	"io"
	"net"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
	maxminddb "github.com/oschwald/maxminddb-golang"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("simple-honeypot/channels/geoip")

// Database resolves an address into a record. *maxminddb.Reader satisfies it.
type Database interface {
	Lookup(ip net.IP, result interface{}) error
}

type record struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Channel stores source.country.isocode on every event carrying a
// source-ip before handing it to the wrapped channel.
type Channel struct {
	db      Database
	channel pushers.Channel
}

// New wraps channel with lookups against db.
func New(db Database, channel pushers.Channel) *Channel {
	return &Channel{
		db:      db,
		channel: channel,
	}
}

// Open opens the maxmind database at path.
func Open(path string, channel pushers.Channel) (*Channel, error) {
	db, err := maxminddb.Open(path)
	if err != nil {
		return nil, err
	}

	return New(db, channel), nil
}

func (c *Channel) Send(e event.Event) {
	defer c.channel.Send(e)

	ip := net.ParseIP(e.Get("source-ip"))
	if ip == nil {
		return
	}

	var r record
	if err := c.db.Lookup(ip, &r); err != nil {
		log.Errorf("Error looking up country for %s: %s", ip, err.Error())
		return
	}

	if r.Country.ISOCode == "" {
		return
	}

	e.Store("source.country.isocode", r.Country.ISOCode)
}

// Close releases the database.
func (c *Channel) Close() error {
	if closer, ok := c.db.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
