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

package telnet

import (
	"testing"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/services"
)

func TestTelnet(t *testing.T) {
	s, err := Telnet()
	if err != nil {
		t.Fatal(err)
	}

	e := s.Emulate()

	if got := string(e.Open()); got != "Welcome to Telnet service.\r\n" {
		t.Fatalf("greeting: %q", got)
	}

	for _, in := range []string{"ls -la\r\n", "\r\n", "", "\xff\xfb\x01"} {
		reply, _ := e.Data([]byte(in))
		if string(reply) != "Command not found.\r\n" {
			t.Errorf("%q: reply %q", in, reply)
		}

		if e.State() != services.StateInitial {
			t.Errorf("%q: state %s", in, e.State())
		}
	}

	_, options := e.Data([]byte("cat /etc/passwd\r\n"))
	if got := event.New(options...).Get("telnet.command"); got != "cat /etc/passwd" {
		t.Errorf("command %q", got)
	}
}

func TestRegistered(t *testing.T) {
	if _, ok := services.Get("telnet"); !ok {
		t.Fatal("telnet not registered")
	}
}
