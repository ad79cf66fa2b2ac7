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

// Package socket implements a listener on a single tcp socket.
package socket

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/cbk914/simple-honeypot/listener"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("simple-honeypot/listener/socket")

var (
	_ = listener.Register("socket", New)
)

type socketListener struct {
	socketConfig

	m sync.Mutex
	l net.Listener
}

type socketConfig struct {
	Address   string
	KeepAlive time.Duration
}

func (sc *socketConfig) AddAddress(a string) {
	sc.Address = a
}

func (sc *socketConfig) SetKeepAlive(d time.Duration) {
	sc.KeepAlive = d
}

func New(options ...func(listener.Listener) error) (listener.Listener, error) {
	l := socketListener{
		socketConfig: socketConfig{
			KeepAlive: 3 * time.Minute,
		},
	}

	for _, option := range options {
		if err := option(&l); err != nil {
			return nil, err
		}
	}

	if l.Address == "" {
		return nil, errors.New("socket listener: address not set")
	}

	return &l, nil
}

// Start binds the socket.
func (sl *socketListener) Start(ctx context.Context) error {
	lc := net.ListenConfig{
		KeepAlive: sl.KeepAlive,
	}

	l, err := lc.Listen(ctx, "tcp", sl.Address)
	if err != nil {
		return err
	}

	sl.m.Lock()
	sl.l = l
	sl.m.Unlock()

	log.Infof("Listener started: tcp/%s", l.Addr())
	return nil
}

func (sl *socketListener) listener() net.Listener {
	sl.m.Lock()
	defer sl.m.Unlock()

	return sl.l
}

func (sl *socketListener) Accept() (net.Conn, error) {
	l := sl.listener()
	if l == nil {
		return nil, listener.ErrNotStarted
	}

	return l.Accept()
}

// Addr returns the bound address, or nil before Start.
func (sl *socketListener) Addr() net.Addr {
	l := sl.listener()
	if l == nil {
		return nil
	}

	return l.Addr()
}

func (sl *socketListener) Close() error {
	l := sl.listener()
	if l == nil {
		return nil
	}

	return l.Close()
}
