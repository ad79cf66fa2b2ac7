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

package eventbus

import (
	"errors"
	"sync"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
)

// ErrNilChannel is returned when subscribing a nil channel.
var ErrNilChannel = errors.New("eventbus: nil channel")

// EventBus fans every event out to all subscribed channels.
type EventBus struct {
	m           sync.RWMutex
	subscribers []pushers.Channel
}

func New() *EventBus {
	return &EventBus{}
}

func (eb *EventBus) Subscribe(channel pushers.Channel) error {
	if channel == nil {
		return ErrNilChannel
	}

	eb.m.Lock()
	defer eb.m.Unlock()

	eb.subscribers = append(eb.subscribers, channel)
	return nil
}

// Len returns the number of subscribers.
func (eb *EventBus) Len() int {
	eb.m.RLock()
	defer eb.m.RUnlock()

	return len(eb.subscribers)
}

func (eb *EventBus) Send(e event.Event) {
	eb.m.RLock()
	defer eb.m.RUnlock()

	for _, subscriber := range eb.subscribers {
		subscriber.Send(e)
	}
}
