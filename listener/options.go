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

package listener

import "time"

type AddAddresser interface {
	AddAddress(address string)
}

// WithAddress sets the host:port the listener binds to.
func WithAddress(address string) func(Listener) error {
	return func(l Listener) error {
		if a, ok := l.(AddAddresser); ok {
			a.AddAddress(address)
		}
		return nil
	}
}

type KeepAliver interface {
	SetKeepAlive(time.Duration)
}

// WithKeepAlive sets the tcp keep-alive period of accepted connections.
func WithKeepAlive(d time.Duration) func(Listener) error {
	return func(l Listener) error {
		if k, ok := l.(KeepAliver); ok {
			k.SetKeepAlive(d)
		}
		return nil
	}
}
