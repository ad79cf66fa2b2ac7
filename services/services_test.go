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

package services

import (
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/cbk914/simple-honeypot/event"
)

func TestText(t *testing.T) {
	tests := []struct {
		in  []byte
		out string
	}{
		{[]byte("USER alice\r\n"), "USER alice\r\n"},
		{[]byte("héllo"), "héllo"},
		{[]byte{0xff, 0xfe}, ""},
		{[]byte("ok\xc3"), ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.out {
			t.Errorf("Text(%q) = %q, expected %q", tt.in, got, tt.out)
		}
	}
}

func TestGetUnknownKind(t *testing.T) {
	fn, ok := Get("gopher")
	if ok {
		t.Fatal("gopher should not be registered")
	}

	s, err := fn()
	if err != nil {
		t.Fatal(err)
	}

	e := s.Emulate()
	if e.Open() != nil {
		t.Errorf("passive emulator should not greet")
	}

	if reply, _ := e.Data([]byte("GET / HTTP/1.0\r\n\r\n")); reply != nil {
		t.Errorf("passive emulator should not reply, got %q", reply)
	}
}

func TestSSH(t *testing.T) {
	s, err := SSH()
	if err != nil {
		t.Fatal(err)
	}

	e := s.Emulate()

	if got := string(e.Open()); got != "SSH-2.0-OpenSSH_7.6p1 Ubuntu-4ubuntu0.5\r\n" {
		t.Fatalf("banner: %q", got)
	}

	// identification followed by binary key exchange data
	reply, options := e.Data([]byte("SSH-2.0-Go\r\n\x00\x00\x01\x14\x0a\x14\xff"))
	if reply != nil {
		t.Errorf("ssh should not reply, got %q", reply)
	}

	if got := event.New(options...).Get("ssh.client-version"); got != "SSH-2.0-Go" {
		t.Errorf("client version: %q", got)
	}

	if _, options := e.Data([]byte("SSH-2.0-Other\r\n")); len(options) != 0 {
		t.Errorf("only the first identification is annotated")
	}

	if e.State() != StateInitial {
		t.Errorf("state %s", e.State())
	}
}

func TestSSHBannerConfig(t *testing.T) {
	tests := []struct {
		conf   string
		banner string
		ok     bool
	}{
		{`banner = "SSH-2.0-OpenSSH_8.2p1"`, "SSH-2.0-OpenSSH_8.2p1\r\n", true},
		{`banner = "SSH-2.0-OpenSSH_8.2p1\r\n"`, "SSH-2.0-OpenSSH_8.2p1\r\n", true},
		{`port = 22`, "SSH-2.0-OpenSSH_7.6p1 Ubuntu-4ubuntu0.5\r\n", true},
		{`banner = "220 ProFTPD"`, "", false},
		{`banner = "SSH-2.0-a\nSSH-2.0-b"`, "", false},
	}

	for _, tt := range tests {
		s := struct {
			P toml.Primitive
		}{}

		md, err := toml.Decode("[P]\n"+tt.conf, &s)
		if err != nil {
			t.Fatal(err)
		}

		svc, err := SSH(WithConfig(s.P, &md))
		if (err == nil) != tt.ok {
			t.Errorf("%s: unexpected error %v", tt.conf, err)
			continue
		}

		if err != nil {
			continue
		}

		if got := string(svc.Emulate().Open()); got != tt.banner {
			t.Errorf("%s: banner %q", tt.conf, got)
		}
	}
}

func TestNames(t *testing.T) {
	found := map[string]bool{}
	Range(func(name string) {
		found[name] = true
	})

	for _, name := range []string{"ssh", "passive"} {
		if !found[name] {
			t.Errorf("%s not registered", name)
		}
	}
}

func TestStateString(t *testing.T) {
	if StateUserReceived.String() != "user_received" {
		t.Errorf("got %s", StateUserReceived)
	}
}
