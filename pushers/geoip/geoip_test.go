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

package geoip

import (
	"errors"
	"net"
	"testing"

	"github.com/cbk914/simple-honeypot/event"
)

type fakeDB map[string]string

func (db fakeDB) Lookup(ip net.IP, result interface{}) error {
	code, ok := db[ip.String()]
	if !ok {
		return errors.New("not found")
	}

	result.(*record).Country.ISOCode = code
	return nil
}

type collector []event.Event

func (c *collector) Send(e event.Event) {
	*c = append(*c, e)
}

func TestCountryAnnotation(t *testing.T) {
	c := &collector{}
	ch := New(fakeDB{"192.0.2.10": "NL"}, c)

	addr := &net.TCPAddr{IP: net.ParseIP("192.0.2.10"), Port: 51234}

	ch.Send(event.New(event.SourceAddr(addr)))
	ch.Send(event.New(event.SourceAddr(&net.TCPAddr{IP: net.ParseIP("198.51.100.1"), Port: 1})))
	ch.Send(event.New(event.Service("ftp")))

	if len(*c) != 3 {
		t.Fatalf("expected every event to be forwarded, got %d", len(*c))
	}

	if got := (*c)[0].Get("source.country.isocode"); got != "NL" {
		t.Errorf("expected NL, got %q", got)
	}

	for _, e := range (*c)[1:] {
		if e.Has("source.country.isocode") {
			t.Errorf("unexpected country on %v", event.ToMap(e))
		}
	}
}
