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

// Package listener defines the listener types services accept connections on.
package listener

import (
	"context"
	"errors"
	"net"
	"sort"
)

// ErrNotStarted is returned by Accept on a listener that is not bound.
var ErrNotStarted = errors.New("listener not started")

var (
	listeners = map[string]func(...func(Listener) error) (Listener, error){}
)

func Register(key string, fn func(...func(Listener) error) (Listener, error)) func(...func(Listener) error) (Listener, error) {
	listeners[key] = fn
	return fn
}

func Get(key string) (func(...func(Listener) error) (Listener, error), bool) {
	fn, ok := listeners[key]
	return fn, ok
}

// Range calls fn for every registered listener type, sorted by name.
func Range(fn func(string)) {
	keys := []string{}
	for k := range listeners {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		fn(k)
	}
}

// Names returns the registered listener types.
func Names() []string {
	names := []string{}
	Range(func(name string) {
		names = append(names, name)
	})

	return names
}

// Listener binds on Start and hands out connections until closed.
type Listener interface {
	Start(ctx context.Context) error
	Close() error
	Accept() (net.Conn, error)
	Addr() net.Addr
}
