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

// Package services contains the protocol emulators. An emulator is created
// per connection and turns inbound data into replies; it never touches the
// connection itself.
package services

import (
	"sort"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/cbk914/simple-honeypot/event"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("simple-honeypot/services")

// State is the authentication progress of a session.
type State int

const (
	StateInitial State = iota
	StateUserReceived
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateUserReceived:
		return "user_received"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Emulator is the per connection protocol state machine.
type Emulator interface {
	// Open returns the greeting sent when the connection is accepted, nil
	// for none.
	Open() []byte

	// Data returns the reply to the received chunk, nil for none, and
	// annotations for the event logging the chunk.
	Data(p []byte) ([]byte, []event.Option)

	State() State
}

// Servicer creates emulators for a configured service.
type Servicer interface {
	Emulate() Emulator
}

type ServicerFunc func(Servicer) error

var (
	services = map[string]func(...ServicerFunc) (Servicer, error){}
)

func Register(key string, fn func(...ServicerFunc) (Servicer, error)) func(...ServicerFunc) (Servicer, error) {
	services[key] = fn
	return fn
}

func Range(fn func(string)) {
	for _, k := range Names() {
		fn(k)
	}
}

// Names returns the registered kinds, sorted.
func Names() []string {
	names := []string{}
	for k := range services {
		names = append(names, k)
	}

	sort.Strings(names)
	return names
}

// Get returns the factory for kind. Unknown kinds get the passive emulator
// and ok is false.
func Get(key string) (func(...ServicerFunc) (Servicer, error), bool) {
	if fn, ok := services[key]; ok {
		return fn, true
	}

	return Passive, false
}

type TomlDecoder interface {
	PrimitiveDecode(primValue toml.Primitive, v interface{}) error
}

func WithConfig(c toml.Primitive, decoder TomlDecoder) ServicerFunc {
	return func(s Servicer) error {
		return decoder.PrimitiveDecode(c, s)
	}
}

// Text decodes p as UTF-8. Input that is not valid UTF-8 decodes to the
// empty string.
func Text(p []byte) string {
	if !utf8.Valid(p) {
		return ""
	}

	return string(p)
}
