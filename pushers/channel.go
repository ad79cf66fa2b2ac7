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

// Package pushers defines the sinks honeypot events are delivered to.
package pushers

import (
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/cbk914/simple-honeypot/event"

	logging "github.com/op/go-logging"
)

var log = logging.MustGetLogger("simple-honeypot/channels")

// Channel defines a interface which exposes a single method for delivering
// events to a giving underline service.
type Channel interface {
	Send(event.Event)
}

// ChannelFunc configures a Channel while it is being constructed.
type ChannelFunc func(Channel) error

var (
	channels = map[string]func(...ChannelFunc) (Channel, error){}
)

// Register makes a channel backend available under key.
func Register(key string, fn func(...ChannelFunc) (Channel, error)) func(...ChannelFunc) (Channel, error) {
	channels[key] = fn
	return fn
}

// Get returns the backend registered under key.
func Get(key string) (func(...ChannelFunc) (Channel, error), bool) {
	fn, ok := channels[key]
	return fn, ok
}

// Names returns the sorted names of all registered backends.
func Names() []string {
	names := []string{}
	for k := range channels {
		names = append(names, k)
	}

	sort.Strings(names)
	return names
}

// TomlDecoder decodes a delayed toml table into a value.
type TomlDecoder interface {
	PrimitiveDecode(primValue toml.Primitive, v interface{}) error
}

// WithConfig decodes the channel's toml table into the channel.
func WithConfig(c toml.Primitive, decoder TomlDecoder) ChannelFunc {
	return func(ch Channel) error {
		return decoder.PrimitiveDecode(c, ch)
	}
}

// Dummy returns a channel that drops every event.
func Dummy() Channel {
	return dummyChannel{}
}

type dummyChannel struct{}

func (dummyChannel) Send(event.Event) {}
