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

package pushers

import (
	"fmt"
	"regexp"

	"github.com/cbk914/simple-honeypot/event"
)

type filterChannel struct {
	Channel

	FilterFn FilterFunc
}

// Send delivers the event to the wrapped channel if it passes the filter.
func (mc filterChannel) Send(e event.Event) {
	if !mc.FilterFn(e) {
		return
	}

	mc.Channel.Send(e)
}

// FilterFunc defines a function for event filtering.
type FilterFunc func(event.Event) bool

// RegexFilterFunc returns a function accepting events whose field matches
// any of the expressions.
func RegexFilterFunc(field string, expressions []string) (FilterFunc, error) {
	matchers := make([]*regexp.Regexp, len(expressions))

	for i, match := range expressions {
		rx, err := regexp.Compile(match)
		if err != nil {
			return nil, fmt.Errorf("invalid %s filter %q: %w", field, match, err)
		}

		matchers[i] = rx
	}

	return func(e event.Event) bool {
		val := e.Get(field)

		for _, rx := range matchers {
			if rx.MatchString(val) {
				return true
			}
		}

		return false
	}, nil
}

// FilterChannel wraps channel so that it only receives events accepted by fn.
func FilterChannel(channel Channel, fn FilterFunc) Channel {
	return filterChannel{
		Channel:  channel,
		FilterFn: fn,
	}
}

type tokenChannel struct {
	Channel

	Token string
}

// Send stamps the sensor token on the event before delivering it.
func (mc tokenChannel) Send(e event.Event) {
	mc.Channel.Send(event.Apply(e, event.Token(mc.Token)))
}

// TokenChannel returns a Channel to set token value.
func TokenChannel(channel Channel, token string) Channel {
	return tokenChannel{
		Channel: channel,
		Token:   token,
	}
}
