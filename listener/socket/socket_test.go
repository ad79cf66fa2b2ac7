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

package socket

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/cbk914/simple-honeypot/listener"
)

func TestSocketAccept(t *testing.T) {
	l, err := New(listener.WithAddress("127.0.0.1:0"))
	if err != nil {
		t.Fatal(err)
	}

	if l.Addr() != nil {
		t.Errorf("address before start: %s", l.Addr())
	}

	if _, err := l.Accept(); !errors.Is(err, listener.ErrNotStarted) {
		t.Errorf("expected ErrNotStarted, got %v", err)
	}

	if err := l.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err != nil {
			t.Error(err)
			return
		}

		accepted <- c
	}()

	c, err := net.Dial("tcp", l.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	sc := <-accepted
	sc.Close()

	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := l.Accept(); err == nil {
		t.Fatal("expected error after close")
	}
}

func TestSocketBindFailure(t *testing.T) {
	first, _ := New(listener.WithAddress("127.0.0.1:0"))
	if err := first.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer first.Close()

	second, _ := New(listener.WithAddress(first.Addr().String()))
	if err := second.Start(context.Background()); err == nil {
		second.Close()
		t.Fatal("expected address in use")
	}
}

func TestAddressRequired(t *testing.T) {
	if _, err := New(); err == nil {
		t.Fatal("expected error without address")
	}

	if _, ok := listener.Get("socket"); !ok {
		t.Fatal("socket not registered")
	}
}

func TestKeepAlive(t *testing.T) {
	l, err := New(listener.WithAddress("127.0.0.1:0"))
	if err != nil {
		t.Fatal(err)
	}

	if ka := l.(*socketListener).KeepAlive; ka != 3*time.Minute {
		t.Errorf("default keep-alive %s", ka)
	}

	l, err = New(
		listener.WithAddress("127.0.0.1:0"),
		listener.WithKeepAlive(15*time.Second),
	)
	if err != nil {
		t.Fatal(err)
	}

	if ka := l.(*socketListener).KeepAlive; ka != 15*time.Second {
		t.Errorf("keep-alive %s, expected 15s", ka)
	}
}

func TestNames(t *testing.T) {
	names := listener.Names()

	found := false
	for _, name := range names {
		found = found || name == "socket"
	}

	if !found {
		t.Errorf("socket missing from %v", names)
	}
}
