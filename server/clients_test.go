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

package server

import (
	"bytes"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cbk914/simple-honeypot/config"
	"github.com/cbk914/simple-honeypot/event"
	"github.com/jlaffaye/ftp"
	"github.com/ziutek/telnet"
	"golang.org/x/crypto/ssh"
)

func addr(s config.Service) string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// A real ftp client gets as far as the TYPE command following the login.
func TestFTPClientLogin(t *testing.T) {
	svc := service(t, "ftp", "ftp")

	hp := start(t, []config.Service{svc})
	defer hp.stop(t)

	c, err := ftp.DialTimeout(addr(svc), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Quit()

	err = c.Login("anonymous", "guest@example.com")

	perr, ok := err.(*textproto.Error)
	if !ok {
		t.Fatalf("expected protocol error after login, got %v", err)
	}

	if perr.Code != ftp.StatusBadCommand {
		t.Errorf("expected 500, got %d", perr.Code)
	}

	user := hp.waitFor(t, func(e event.Event) bool {
		return e.Has("ftp.username")
	})

	if user.Get("ftp.username") != "anonymous" {
		t.Errorf("username %q", user.Get("ftp.username"))
	}

	pass := hp.waitFor(t, func(e event.Event) bool {
		return e.Has("ftp.password")
	})

	if pass.Get("ftp.password") != "guest@example.com" {
		t.Errorf("password %q", pass.Get("ftp.password"))
	}

	if user.Get("session-id") != pass.Get("session-id") {
		t.Errorf("credentials logged in different sessions")
	}
}

func TestTelnetClient(t *testing.T) {
	svc := service(t, "telnet", "telnet")

	hp := start(t, []config.Service{svc})
	defer hp.stop(t)

	c, err := telnet.DialTimeout("tcp", addr(svc), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	c.SetReadDeadline(time.Now().Add(5 * time.Second))

	if err := c.SkipUntil("Welcome to Telnet service."); err != nil {
		t.Fatal(err)
	}

	if _, err := c.Write([]byte("cat /etc/shadow\r\n")); err != nil {
		t.Fatal(err)
	}

	data, err := c.ReadUntil("found.")
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.HasSuffix(data, []byte("Command not found.")) {
		t.Errorf("got %q", data)
	}

	e := hp.waitFor(t, is(event.TypeDataReceived, "telnet"))
	if e.Get("telnet.command") != "cat /etc/shadow" {
		t.Errorf("command %q", e.Get("telnet.command"))
	}
}

// The handshake of a real ssh client stalls after the version exchange.
func TestSSHClientHandshake(t *testing.T) {
	svc := service(t, "ssh", "ssh")

	hp := start(t, []config.Service{svc})
	defer hp.stop(t)

	conn, err := net.DialTimeout("tcp", addr(svc), 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(time.Second))

	_, _, _, err = ssh.NewClientConn(conn, addr(svc), &ssh.ClientConfig{
		User:            "root",
		Auth:            []ssh.AuthMethod{ssh.Password("toor")},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err == nil {
		t.Fatal("handshake should not complete")
	}

	e := hp.waitFor(t, func(e event.Event) bool {
		return e.Has("ssh.client-version")
	})

	if v := e.Get("ssh.client-version"); !strings.HasPrefix(v, "SSH-2.0-Go") {
		t.Errorf("client version %q", v)
	}
}
