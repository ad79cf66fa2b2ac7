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

package pushers_test

import (
	"testing"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
)

const (
	passed = "✓"
	failed = "✗"
)

type collector struct {
	events []event.Event
}

func (c *collector) Send(e event.Event) {
	c.events = append(c.events, e)
}

var (
	ftpLogin = event.New(
		event.Service("ftp"),
		event.Category("ftp"),
	)

	telnetCommand = event.New(
		event.Service("telnet"),
		event.Category("telnet"),
	)

	heartbeat = event.New(
		event.HeartbeatSensor,
		event.Category("heartbeat"),
	)
)

func TestRegExpFilter(t *testing.T) {
	t.Logf("Given the need to filter events based on event fields")
	{
		t.Logf("\tWhen filtering is based on the 'service' field")
		{
			fn, err := pushers.RegexFilterFunc("service", []string{"^ftp$", "^ssh$"})
			if err != nil {
				t.Fatalf("\t%s\t Should compile the expressions: %s", failed, err)
			}

			c := &collector{}
			channel := pushers.FilterChannel(c, fn)

			for _, e := range []event.Event{ftpLogin, telnetCommand, heartbeat} {
				channel.Send(e)
			}

			if dl := len(c.events); dl != 1 {
				t.Fatalf("\t%s\t Should have filtered all but one event: %d.", failed, dl)
			}
			t.Logf("\t%s\t Should have filtered all but one event.", passed)
		}

		t.Logf("\tWhen filtering is based on the 'category' field")
		{
			fn, err := pushers.RegexFilterFunc("category", []string{"Pingo"})
			if err != nil {
				t.Fatalf("\t%s\t Should compile the expressions: %s", failed, err)
			}

			c := &collector{}
			channel := pushers.FilterChannel(c, fn)

			for _, e := range []event.Event{ftpLogin, telnetCommand, heartbeat} {
				channel.Send(e)
			}

			if dl := len(c.events); dl != 0 {
				t.Fatalf("\t%s\t Should have filtered out all events: %d.", failed, dl)
			}
			t.Logf("\t%s\t Should have filtered out all events.", passed)
		}
	}
}

func TestRegExpFilterInvalidExpression(t *testing.T) {
	if _, err := pushers.RegexFilterFunc("service", []string{"("}); err == nil {
		t.Fatalf("%s Should reject an invalid expression.", failed)
	}
}

func TestTokenChannel(t *testing.T) {
	c := &collector{}

	pushers.TokenChannel(c, "b50vl5e54p1000fo3gh0").Send(event.New())

	if got := c.events[0].Get("token"); got != "b50vl5e54p1000fo3gh0" {
		t.Fatalf("%s Expected token to be set, got %q.", failed, got)
	}
}
