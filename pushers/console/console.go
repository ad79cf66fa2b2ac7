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

package console

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cbk914/simple-honeypot/event"
	"github.com/cbk914/simple-honeypot/pushers"
)

var (
	_ = pushers.Register("console", New)
)

// skipped keys are noise on a terminal; the hex and raw payload are still
// available to structured backends.
var skipped = map[string]bool{
	"payload":     true,
	"payload-hex": true,
	"stacktrace":  true,
}

// New returns a Console writing to stdout.
func New(options ...pushers.ChannelFunc) (pushers.Channel, error) {
	c := Console{
		Writer: os.Stdout,
		ch:     make(chan map[string]interface{}, 100),
		done:   make(chan struct{}),
	}

	for _, optionFn := range options {
		if err := optionFn(&c); err != nil {
			return nil, err
		}
	}

	go c.run()

	return &c, nil
}

// Console provides a backend for outputing event details directly to
// the current console.
type Console struct {
	io.Writer

	ch   chan map[string]interface{}
	done chan struct{}
}

func printify(s string) string {
	var o strings.Builder

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			o.WriteString(fmt.Sprintf("\\x%s", hex.EncodeToString([]byte(s[:size]))))
		} else {
			o.WriteRune(r)
		}

		s = s[size:]
	}

	return o.String()
}

// Format renders an event as a single line.
func Format(e map[string]interface{}) string {
	var params []string
	for k, v := range e {
		if skipped[k] || k == "sensor" || k == "category" {
			continue
		}

		switch x := v.(type) {
		case uint32, uint16, uint8, uint,
			int64, int32, int16, int8, int:
			params = append(params, fmt.Sprintf("%s=%d", k, v))
		case time.Time:
			params = append(params, fmt.Sprintf("%s=%s", k, x.Format(time.RFC3339Nano)))
		case string:
			params = append(params, fmt.Sprintf("%s=%s", k, printify(x)))
		default:
			params = append(params, fmt.Sprintf("%s=%#v", k, v))
		}
	}

	sort.Strings(params)
	return fmt.Sprintf("%s > %s > %s", e["sensor"], e["category"], strings.Join(params, ", "))
}

func (b *Console) run() {
	defer close(b.done)

	for e := range b.ch {
		fmt.Fprintln(b.Writer, Format(e))
	}
}

// Send queues the event for printing.
func (b *Console) Send(e event.Event) {
	b.ch <- event.ToMap(e)
}

// Close flushes pending events and stops the console.
func (b *Console) Close() error {
	close(b.ch)
	<-b.done
	return nil
}
